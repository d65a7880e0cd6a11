package services

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/melly/timerocket/internal/common"
	"github.com/melly/timerocket/internal/server/models"
	"github.com/melly/timerocket/internal/server/pagination"
	"github.com/melly/timerocket/internal/server/repositories/repomanager"
)

var sentSortFields = []string{"sentAt", "rocketName"}

// SentChestService serves the sender-side records of launched rockets.
type SentChestService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	files       ObjectStorage
}

func NewSentChestService(db *sql.DB, m repomanager.RepositoryManager, files ObjectStorage) *SentChestService {
	return &SentChestService{
		db:          db,
		repomanager: m,
		files:       files,
	}
}

// List returns one page of the user's sent records. An empty page is
// reported as ErrorNotFound.
func (s *SentChestService) List(ctx context.Context, userID int64, rocketName string,
	page, size int, sortBy, dir string) (*models.SentChestPage, error) {

	p, err := pagination.New(page, size, sortBy, dir, sentSortFields)
	if err != nil {
		return nil, err
	}

	repo := s.repomanager.SentChests(s.db)

	items, total, err := repo.ListActive(ctx, userID, rocketName, p)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: no sent chests on page %d", common.ErrorNotFound, p.Page)
	}

	sentCount, err := repo.CountActiveByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}

	totalPages := p.TotalPages(total)
	return &models.SentChestPage{
		SentChests:    items,
		CurrentPage:   p.Page,
		PageSize:      p.Size,
		TotalElements: total,
		TotalPages:    totalPages,
		First:         p.Page == 1,
		Last:          p.Page >= totalPages,
		SortBy:        p.SortBy,
		SortDirection: string(p.Dir),
		SentCount:     sentCount,
	}, nil
}

// Detail returns the sender's view of one launched rocket. Senders always
// see the content they wrote; lock state only gates the receiver.
func (s *SentChestService) Detail(ctx context.Context, userID, sentChestID int64) (*models.SentChestDetail, error) {
	sentRepo := s.repomanager.SentChests(s.db)
	rocketRepo := s.repomanager.Rockets(s.db)
	userRepo := s.repomanager.Users(s.db)

	sent, err := sentRepo.GetOwnedActive(ctx, sentChestID, userID)
	if err != nil {
		return nil, err
	}

	rocket, err := rocketRepo.GetByID(ctx, sent.RocketID)
	if err != nil {
		return nil, err
	}

	receiver, err := userRepo.GetByID(ctx, rocket.ReceiverUserID)
	if err != nil {
		return nil, err
	}

	files, err := buildFileViews(ctx, s.repomanager.RocketFiles(s.db), s.files, rocket.ID)
	if err != nil {
		return nil, err
	}

	lockExpiredAt := rocket.LockExpiredAt
	return &models.SentChestDetail{
		RocketID:      rocket.ID,
		RocketName:    rocket.Name,
		DesignURL:     rocket.Design,
		ReceiverEmail: receiver.Email,
		SentAt:        rocket.SentAt,
		LockExpiredAt: &lockExpiredAt,
		Content:       rocket.Content,
		Files:         files,
	}, nil
}

// SoftDelete hides a sent record from the sender's lists. The receiver's
// chest is untouched.
func (s *SentChestService) SoftDelete(ctx context.Context, userID, sentChestID int64) error {
	repo := s.repomanager.SentChests(s.db)

	if _, err := repo.GetOwnedActive(ctx, sentChestID, userID); err != nil {
		return err
	}

	return repo.SoftDelete(ctx, sentChestID, time.Now())
}
