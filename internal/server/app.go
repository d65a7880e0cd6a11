// Package server initializes and runs the timerocket server: it opens the
// database and the display cache, wires the services together and serves the
// HTTP API until a shutdown signal arrives.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/melly/timerocket/internal/logging"
	"github.com/melly/timerocket/internal/server/config"
	"github.com/melly/timerocket/internal/server/displaycache"
	"github.com/melly/timerocket/internal/server/httpapi"
	"github.com/melly/timerocket/internal/server/repositories/repomanager"
	"github.com/melly/timerocket/internal/server/services"
	"github.com/melly/timerocket/internal/server/slots"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	cache  displaycache.Cache
	server *http.Server
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	manager := repomanager.NewPostgresRepositoryManager()
	if err := manager.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	cache, err := displaycache.Open(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.DisplayCacheTTL)
	if err != nil {
		return nil, fmt.Errorf("cache init error: %w", err)
	}

	rnd := slots.NewRand(time.Now().UnixNano())
	files := services.NewFileService(cfg)

	displayService := services.NewDisplayService(db, manager, cache, files, logger)
	chestService := services.NewChestService(db, manager, files, displayService, rnd, logger)
	sentService := services.NewSentChestService(db, manager, files)
	rocketService := services.NewRocketService(db, manager, files, rnd)

	api := httpapi.NewServer(chestService, displayService, sentService, rocketService,
		[]byte(cfg.SecretKey), logger)

	return &App{
		config: cfg,
		logger: logger,
		db:     db,
		cache:  cache,
		server: &http.Server{
			Addr:    cfg.EndpointAddr,
			Handler: api.Handler(),
		},
	}, nil
}

// Run serves until the context is cancelled or a termination signal
// arrives, then shuts the HTTP server down gracefully.
func (app *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	app.initSignalHandler(cancel)

	errCh := make(chan error, 1)
	go func() {
		app.logger.Info(ctx, "starting http server", "addr", app.config.EndpointAddr)
		if err := app.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	app.logger.Info(ctx, "shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.server.Shutdown(shutdownCtx); err != nil {
		app.logger.Error(ctx, "http shutdown error", "error", err)
	}
	if err := app.cache.Close(); err != nil {
		app.logger.Error(ctx, "cache close error", "error", err)
	}
	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}

	return nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}
