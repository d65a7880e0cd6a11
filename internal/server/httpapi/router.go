package httpapi

import (
	"context"
	"net/http"

	"github.com/melly/timerocket/internal/logging"
	"github.com/melly/timerocket/internal/server/models"
	"github.com/melly/timerocket/internal/server/services"
	"github.com/melly/timerocket/internal/server/slots"
)

// Service contracts consumed by the handlers. The concrete implementations
// live in the services package; the interfaces keep handler tests free of
// database plumbing.

type ChestService interface {
	List(ctx context.Context, userID int64, category slots.Category, rocketName string, page, size int, sortBy, dir string) (*models.ChestPage, error)
	Detail(ctx context.Context, userID, chestID int64) (*models.ChestDetail, error)
	Move(ctx context.Context, userID, chestID int64, target string) error
	ToggleVisibility(ctx context.Context, userID, chestID int64) (bool, error)
	SoftDelete(ctx context.Context, userID, chestID int64) error
	Restore(ctx context.Context, userID, chestID int64) (string, error)
}

type DisplayService interface {
	GetDisplayList(ctx context.Context, userID int64) ([]models.PublicChest, error)
	GetDisplayDetail(ctx context.Context, profileUserID, chestID int64) (*models.ChestDetail, error)
	MoveLocation(ctx context.Context, userID, chestID, target int64) error
}

type SentChestService interface {
	List(ctx context.Context, userID int64, rocketName string, page, size int, sortBy, dir string) (*models.SentChestPage, error)
	Detail(ctx context.Context, userID, sentChestID int64) (*models.SentChestDetail, error)
	SoftDelete(ctx context.Context, userID, sentChestID int64) error
}

type RocketService interface {
	Send(ctx context.Context, senderUserID int64, draft models.RocketDraft, uploads []services.FileUpload) (int64, error)
	SaveTemp(ctx context.Context, senderUserID int64, draft models.RocketDraft) error
	GetTemp(ctx context.Context, senderUserID int64) (*models.Rocket, error)
	Unlock(ctx context.Context, userID, rocketID int64) error
}

// Server bundles the handlers and their dependencies.
type Server struct {
	chests    ChestService
	display   DisplayService
	sent      SentChestService
	rockets   RocketService
	secretKey []byte
	logger    logging.Logger
}

func NewServer(chests ChestService, display DisplayService, sent SentChestService,
	rockets RocketService, secretKey []byte, logger logging.Logger) *Server {
	return &Server{
		chests:    chests,
		display:   display,
		sent:      sent,
		rockets:   rockets,
		secretKey: secretKey,
		logger:    logger,
	}
}

// Handler builds the route table. Display reads are public; everything else
// requires a bearer token.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	authed := func(h http.HandlerFunc) http.Handler {
		return withAuth(s.secretKey, h)
	}

	mux.Handle("GET /api/chests", authed(s.handleChestList))
	mux.Handle("GET /api/chests/{chestID}", authed(s.handleChestDetail))
	mux.Handle("PATCH /api/chests/{chestID}/location", authed(s.handleChestMove))
	mux.Handle("PATCH /api/chests/{chestID}/visibility", authed(s.handleChestToggleVisibility))
	mux.Handle("DELETE /api/chests/{chestID}", authed(s.handleChestDelete))
	mux.Handle("POST /api/chests/{chestID}/restore", authed(s.handleChestRestore))

	mux.HandleFunc("GET /api/display/{userID}", s.handleDisplayList)
	mux.HandleFunc("GET /api/display/{userID}/chests/{chestID}", s.handleDisplayDetail)
	mux.Handle("PATCH /api/display/chests/{chestID}/location", authed(s.handleDisplayMove))

	mux.Handle("GET /api/sent-chests", authed(s.handleSentList))
	mux.Handle("GET /api/sent-chests/{sentChestID}", authed(s.handleSentDetail))
	mux.Handle("DELETE /api/sent-chests/{sentChestID}", authed(s.handleSentDelete))

	mux.Handle("POST /api/rockets", authed(s.handleRocketSend))
	mux.Handle("POST /api/rockets/temp", authed(s.handleRocketSaveTemp))
	mux.Handle("GET /api/rockets/temp", authed(s.handleRocketGetTemp))
	mux.Handle("POST /api/rockets/{rocketID}/unlock", authed(s.handleRocketUnlock))

	return mux
}
