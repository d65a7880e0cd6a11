package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"

	"github.com/melly/timerocket/internal/common"
	"github.com/melly/timerocket/internal/dbx"
	"github.com/melly/timerocket/internal/logging"
	"github.com/melly/timerocket/internal/server/models"
	"github.com/melly/timerocket/internal/server/pagination"
	"github.com/melly/timerocket/internal/server/repositories/repomanager"
	"github.com/melly/timerocket/internal/server/slots"
)

// chestSortFields whitelists the sort keys accepted by the chest lists.
var chestSortFields = []string{"sentAt", "rocketName", "publicAt"}

// ObjectStorage is the attachment backend contract. FileService implements
// it on S3.
type ObjectStorage interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader) error
	GetPresignedGetURL(ctx context.Context, key string) (string, error)
}

// DisplayRefresher rebuilds a user's cached showcase after a mutation that
// affects it. DisplayService implements it.
type DisplayRefresher interface {
	UpdateDisplayCache(ctx context.Context, userID int64) error
}

// ChestService implements the received-chest operations: listing, detail
// with lock gating, slot repositioning, showcase membership and the
// soft-delete lifecycle.
type ChestService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	files       ObjectStorage
	refresher   DisplayRefresher
	rnd         slots.Rand
	logger      logging.Logger
}

func NewChestService(db *sql.DB, m repomanager.RepositoryManager, files ObjectStorage,
	refresher DisplayRefresher, rnd slots.Rand, logger logging.Logger) *ChestService {
	return &ChestService{
		db:          db,
		repomanager: m,
		files:       files,
		refresher:   refresher,
		rnd:         rnd,
		logger:      logger,
	}
}

// List returns one page of the user's chests in a category. An empty page
// is reported as ErrorNotFound.
func (s *ChestService) List(ctx context.Context, userID int64, category slots.Category,
	rocketName string, page, size int, sortBy, dir string) (*models.ChestPage, error) {

	p, err := pagination.New(page, size, sortBy, dir, chestSortFields)
	if err != nil {
		return nil, err
	}

	chestRepo := s.repomanager.Chests(s.db)
	sentRepo := s.repomanager.SentChests(s.db)

	items, total, err := chestRepo.ListActive(ctx, userID, category, rocketName, p)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: no chests on page %d", common.ErrorNotFound, p.Page)
	}

	receivedCount, err := chestRepo.CountActiveByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}
	sentCount, err := sentRepo.CountActiveByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}

	totalPages := p.TotalPages(total)
	return &models.ChestPage{
		Chests:        items,
		CurrentPage:   p.Page,
		PageSize:      p.Size,
		TotalElements: total,
		TotalPages:    totalPages,
		First:         p.Page == 1,
		Last:          p.Page >= totalPages,
		SortBy:        p.SortBy,
		SortDirection: string(p.Dir),
		ReceivedCount: receivedCount,
		SentCount:     sentCount,
	}, nil
}

// Detail returns the single-chest view. While the rocket is locked only
// summary fields are populated; content and attachments appear after the
// receiver unlocks it.
func (s *ChestService) Detail(ctx context.Context, userID, chestID int64) (*models.ChestDetail, error) {
	chestRepo := s.repomanager.Chests(s.db)
	rocketRepo := s.repomanager.Rockets(s.db)
	userRepo := s.repomanager.Users(s.db)

	chest, err := chestRepo.GetOwnedActive(ctx, chestID, userID)
	if err != nil {
		return nil, err
	}

	rocket, err := rocketRepo.GetByID(ctx, chest.RocketID)
	if err != nil {
		return nil, err
	}

	sender, err := userRepo.GetByID(ctx, rocket.SenderUserID)
	if err != nil {
		return nil, err
	}

	lockExpiredAt := rocket.LockExpiredAt
	detail := &models.ChestDetail{
		RocketID:      rocket.ID,
		RocketName:    rocket.Name,
		DesignURL:     rocket.Design,
		SenderEmail:   sender.Email,
		SentAt:        rocket.SentAt,
		LockExpiredAt: &lockExpiredAt,
		IsLocked:      rocket.IsLock,
	}

	if rocket.IsLock {
		return detail, nil
	}

	detail.Content = rocket.Content
	detail.Files, err = buildFileViews(ctx, s.repomanager.RocketFiles(s.db), s.files, rocket.ID)
	if err != nil {
		return nil, err
	}

	return detail, nil
}

// Move repositions a chest to a target coordinate in the same category.
// When the target slot is occupied the two chests swap places; the swap
// routes the moving chest through a throwaway location first so the
// per-owner coordinate uniqueness never has two records on one slot.
func (s *ChestService) Move(ctx context.Context, userID, chestID int64, target string) error {
	coord, err := slots.ParseCoordinate(target)
	if err != nil {
		return err
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Chests(tx)

		chest, err := repo.GetOwnedActive(ctx, chestID, userID)
		if err != nil {
			return err
		}
		if chest.Location == nil {
			return fmt.Errorf("%w: chest %d has no storage position", common.ErrorInvalidState, chestID)
		}
		if coord.Category != chest.Category {
			return fmt.Errorf("%w: cannot move a %s chest to a %s slot",
				common.ErrorInvalidState, chest.Category, coord.Category)
		}
		if *chest.Location == target {
			return nil
		}

		occupant, err := repo.GetByLocation(ctx, userID, target)
		if errors.Is(err, common.ErrorNotFound) {
			return repo.UpdateLocation(ctx, chestID, &target)
		}
		if err != nil {
			return err
		}

		sentinel := "swap:" + uuid.NewString()
		if err := repo.UpdateLocation(ctx, chestID, &sentinel); err != nil {
			return err
		}
		if err := repo.UpdateLocation(ctx, occupant.ID, chest.Location); err != nil {
			return err
		}
		return repo.UpdateLocation(ctx, chestID, &target)
	})
	if err != nil {
		return err
	}

	return nil
}

// ToggleVisibility flips a chest's public flag. Promotion requires an
// unlocked rocket and a free showcase slot; the chest takes the next
// display location. Demotion clears the public fields and leaves the other
// display locations untouched. Returns the new public state.
func (s *ChestService) ToggleVisibility(ctx context.Context, userID, chestID int64) (bool, error) {
	var isPublic bool

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		chestRepo := s.repomanager.Chests(tx)
		rocketRepo := s.repomanager.Rockets(tx)

		chest, err := chestRepo.GetOwnedActive(ctx, chestID, userID)
		if err != nil {
			return err
		}

		if chest.IsPublic {
			isPublic = false
			return chestRepo.SetVisibility(ctx, chestID, false, nil, nil)
		}

		rocket, err := rocketRepo.GetByID(ctx, chest.RocketID)
		if err != nil {
			return err
		}
		if rocket.IsLock {
			return fmt.Errorf("%w: locked rockets cannot be made public", common.ErrorInvalidState)
		}

		count, err := chestRepo.CountPublicByOwner(ctx, userID)
		if err != nil {
			return err
		}
		if count >= slots.MaxDisplaySlots {
			return fmt.Errorf("%w: display holds at most %d rockets",
				common.ErrorCapacityExceeded, slots.MaxDisplaySlots)
		}

		rank, err := slots.NewAllocator(chestRepo, s.rnd).NextDisplayLocation(ctx, userID)
		if err != nil {
			return err
		}

		now := time.Now()
		isPublic = true
		return chestRepo.SetVisibility(ctx, chestID, true, &now, &rank)
	})
	if err != nil {
		return false, err
	}

	s.refreshDisplay(ctx, userID)
	return isPublic, nil
}

// SoftDelete hides a chest, vacating its slot and its display location in
// the same statement. Deleting an already-deleted chest is a no-op.
func (s *ChestService) SoftDelete(ctx context.Context, userID, chestID int64) error {
	repo := s.repomanager.Chests(s.db)

	chest, err := repo.GetOwnedActive(ctx, chestID, userID)
	if errors.Is(err, common.ErrorNotFound) {
		if _, delErr := repo.GetOwnedDeleted(ctx, chestID, userID); delErr == nil {
			return nil
		}
		return err
	}
	if err != nil {
		return err
	}

	if err := repo.SoftDelete(ctx, chestID, time.Now()); err != nil {
		return err
	}

	if chest.IsPublic {
		s.refreshDisplay(ctx, userID)
	}
	return nil
}

// Restore brings a soft-deleted chest back. Its old slot may have been
// taken in the meantime, so it lands on a freshly allocated coordinate and
// stays private until toggled again.
func (s *ChestService) Restore(ctx context.Context, userID, chestID int64) (string, error) {
	repo := s.repomanager.Chests(s.db)

	chest, err := repo.GetOwnedDeleted(ctx, chestID, userID)
	if errors.Is(err, common.ErrorNotFound) {
		if _, liveErr := repo.GetOwnedActive(ctx, chestID, userID); liveErr == nil {
			return "", fmt.Errorf("%w: chest %d is not deleted", common.ErrorInvalidState, chestID)
		}
		return "", err
	}
	if err != nil {
		return "", err
	}

	coord, err := slots.NewAllocator(repo, s.rnd).NextCoordinate(ctx, userID, chest.Category)
	if err != nil {
		return "", err
	}

	location := coord.String()
	if err := repo.Restore(ctx, chestID, location); err != nil {
		return "", err
	}

	return location, nil
}

// refreshDisplay rebuilds the cached showcase. The store already holds the
// new truth at this point, so a refresh failure only delays visibility
// until the TTL expires.
func (s *ChestService) refreshDisplay(ctx context.Context, userID int64) {
	if err := s.refresher.UpdateDisplayCache(ctx, userID); err != nil {
		s.logger.Warn(ctx, "display cache refresh failed", "user_id", userID, "error", err)
	}
}
