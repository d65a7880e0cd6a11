package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/melly/timerocket/internal/common"
	"github.com/melly/timerocket/internal/dbx"
	"github.com/melly/timerocket/internal/logging"
	"github.com/melly/timerocket/internal/server/displaycache"
	"github.com/melly/timerocket/internal/server/models"
	"github.com/melly/timerocket/internal/server/repositories/repomanager"
	"github.com/melly/timerocket/internal/server/slots"
)

// DisplayService serves the public showcase: the cached per-user list of
// public chests, single-chest display views and display reordering.
//
// Reads go through the cache; the store stays the source of truth and every
// showcase-affecting mutation rewrites the cache synchronously.
type DisplayService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	cache       displaycache.Cache
	files       ObjectStorage
	logger      logging.Logger
}

func NewDisplayService(db *sql.DB, m repomanager.RepositoryManager, cache displaycache.Cache,
	files ObjectStorage, logger logging.Logger) *DisplayService {
	return &DisplayService{
		db:          db,
		repomanager: m,
		cache:       cache,
		files:       files,
		logger:      logger,
	}
}

// GetDisplayList returns a user's showcase ordered by display location. A
// cache hit skips the store entirely; a miss or a cache failure falls back
// to the store, and an empty showcase is reported as ErrorNotFound and
// never cached.
func (s *DisplayService) GetDisplayList(ctx context.Context, userID int64) ([]models.PublicChest, error) {
	cached, err := s.cache.Get(ctx, userID)
	if err == nil {
		return cached, nil
	}
	if !errors.Is(err, displaycache.ErrCacheMiss) {
		s.logger.Warn(ctx, "display cache unavailable, serving from store", "user_id", userID, "error", err)
	}

	chests, err := s.repomanager.Chests(s.db).ListPublicByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(chests) == 0 {
		return nil, fmt.Errorf("%w: user %d has no public chests", common.ErrorNotFound, userID)
	}

	if err := s.cache.Set(ctx, userID, chests); err != nil {
		s.logger.Warn(ctx, "display cache write failed", "user_id", userID, "error", err)
	}

	return chests, nil
}

// UpdateDisplayCache recomputes a user's showcase from the store and
// rewrites the cached entry. An empty showcase drops the entry instead.
func (s *DisplayService) UpdateDisplayCache(ctx context.Context, userID int64) error {
	chests, err := s.repomanager.Chests(s.db).ListPublicByOwner(ctx, userID)
	if err != nil {
		return err
	}

	if len(chests) == 0 {
		return s.cache.Invalidate(ctx, userID)
	}
	return s.cache.Set(ctx, userID, chests)
}

// GetDisplayDetail returns the full view of one showcased chest on a
// profile. The chest must be public and belong to the profile user; public
// chests are always unlocked, so the view carries content and attachments.
func (s *DisplayService) GetDisplayDetail(ctx context.Context, profileUserID, chestID int64) (*models.ChestDetail, error) {
	chestRepo := s.repomanager.Chests(s.db)
	rocketRepo := s.repomanager.Rockets(s.db)
	userRepo := s.repomanager.Users(s.db)

	chest, err := chestRepo.GetPublic(ctx, chestID)
	if err != nil {
		return nil, err
	}
	if chest.OwnerUserID != profileUserID {
		return nil, common.ErrorNotFound
	}

	rocket, err := rocketRepo.GetByID(ctx, chest.RocketID)
	if err != nil {
		return nil, err
	}
	sender, err := userRepo.GetByID(ctx, rocket.SenderUserID)
	if err != nil {
		return nil, err
	}

	views, err := buildFileViews(ctx, s.repomanager.RocketFiles(s.db), s.files, rocket.ID)
	if err != nil {
		return nil, err
	}

	lockExpiredAt := rocket.LockExpiredAt
	return &models.ChestDetail{
		RocketID:      rocket.ID,
		RocketName:    rocket.Name,
		DesignURL:     rocket.Design,
		SenderEmail:   sender.Email,
		SentAt:        rocket.SentAt,
		LockExpiredAt: &lockExpiredAt,
		IsLocked:      false,
		Content:       rocket.Content,
		Files:         views,
	}, nil
}

// MoveLocation repositions a public chest to a target display location,
// swapping with the chest already holding it when there is one. The store
// update and the cache rewrite happen before returning.
func (s *DisplayService) MoveLocation(ctx context.Context, userID, chestID, target int64) error {
	if target < 1 || target > slots.MaxDisplaySlots {
		return fmt.Errorf("%w: display location must be between 1 and %d",
			common.ErrorValidation, slots.MaxDisplaySlots)
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Chests(tx)

		chest, err := repo.GetOwnedActive(ctx, chestID, userID)
		if err != nil {
			return err
		}
		if !chest.IsPublic || chest.DisplayLocation == nil {
			return fmt.Errorf("%w: chest %d is not on display", common.ErrorInvalidState, chestID)
		}
		if *chest.DisplayLocation == target {
			return nil
		}

		occupant, err := repo.GetByDisplayLocation(ctx, userID, target)
		if err != nil && !errors.Is(err, common.ErrorNotFound) {
			return err
		}
		if occupant != nil {
			if err := repo.UpdateDisplayLocation(ctx, occupant.ID, chest.DisplayLocation); err != nil {
				return err
			}
		}
		return repo.UpdateDisplayLocation(ctx, chestID, &target)
	})
	if err != nil {
		return err
	}

	if err := s.UpdateDisplayCache(ctx, userID); err != nil {
		s.logger.Warn(ctx, "display cache refresh failed", "user_id", userID, "error", err)
	}
	return nil
}
