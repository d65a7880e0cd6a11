package services

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"time"

	"github.com/melly/timerocket/internal/common"
	"github.com/melly/timerocket/internal/dbx"
	"github.com/melly/timerocket/internal/server/models"
	"github.com/melly/timerocket/internal/server/repositories/repomanager"
	"github.com/melly/timerocket/internal/server/slots"
)

// FileUpload carries one attachment of a rocket being sent.
type FileUpload struct {
	OriginalName string
	ContentType  string
	Size         int64
	Order        int
	Body         io.Reader
}

// RocketService implements sending: building the locked capsule, placing it
// in the receiver's chest and recording it in the sender's sent list. It
// also owns the single per-sender temp save and the unlock step.
type RocketService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	files       ObjectStorage
	rnd         slots.Rand
}

func NewRocketService(db *sql.DB, m repomanager.RepositoryManager, files ObjectStorage, rnd slots.Rand) *RocketService {
	return &RocketService{
		db:          db,
		repomanager: m,
		files:       files,
		rnd:         rnd,
	}
}

// Send launches a rocket. Attachments are uploaded and the receiver's slot
// is allocated first; the rocket, its file rows, the receiver's chest and
// the sender's sent record are then created in one transaction.
func (s *RocketService) Send(ctx context.Context, senderUserID int64, draft models.RocketDraft, uploads []FileUpload) (int64, error) {
	now := time.Now()
	if !draft.LockExpiredAt.After(now) {
		return 0, fmt.Errorf("%w: unlock date must be in the future", common.ErrorValidation)
	}

	userRepo := s.repomanager.Users(s.db)

	sender, err := userRepo.GetByID(ctx, senderUserID)
	if err != nil {
		return 0, err
	}

	receiver := sender
	if draft.ReceiverType != slots.CategorySelf {
		receiver, err = userRepo.GetByEmail(ctx, draft.ReceiverEmail)
		if err != nil {
			return 0, err
		}
		if receiver.ID == sender.ID {
			return 0, fmt.Errorf("%w: use the 'self' receiver type to send to yourself", common.ErrorValidation)
		}
	}

	fileRows := make([]*models.RocketFile, 0, len(uploads))
	for _, u := range uploads {
		key := GetRandomStorageKey()
		if err := s.files.Upload(ctx, key, u.ContentType, u.Body); err != nil {
			return 0, fmt.Errorf("error uploading attachment %q: %w", u.OriginalName, err)
		}
		fileRows = append(fileRows, &models.RocketFile{
			OriginalName: u.OriginalName,
			UniqueName:   key,
			StorageKey:   key,
			FileType:     u.ContentType,
			FileSize:     u.Size,
			FileOrder:    u.Order,
			UploadedAt:   now,
		})
	}

	coord, err := slots.NewAllocator(s.repomanager.Chests(s.db), s.rnd).
		NextCoordinate(ctx, receiver.ID, draft.ReceiverType)
	if err != nil {
		return 0, err
	}
	location := coord.String()

	var rocketID int64
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		rocketRepo := s.repomanager.Rockets(tx)
		fileRepo := s.repomanager.RocketFiles(tx)
		chestRepo := s.repomanager.Chests(tx)
		sentRepo := s.repomanager.SentChests(tx)

		sentAt := now
		rocketID, err = rocketRepo.Create(ctx, &models.Rocket{
			SenderUserID:   sender.ID,
			ReceiverUserID: receiver.ID,
			Name:           draft.Name,
			Design:         draft.Design,
			Content:        draft.Content,
			ReceiverType:   draft.ReceiverType,
			IsLock:         true,
			LockExpiredAt:  draft.LockExpiredAt,
			SentAt:         &sentAt,
		})
		if err != nil {
			return err
		}

		for _, f := range fileRows {
			f.RocketID = rocketID
			if _, err := fileRepo.Create(ctx, f); err != nil {
				return err
			}
		}

		if _, err := chestRepo.Create(ctx, &models.Chest{
			RocketID:    rocketID,
			OwnerUserID: receiver.ID,
			Category:    draft.ReceiverType,
			Location:    &location,
		}); err != nil {
			return err
		}

		_, err = sentRepo.Create(ctx, &models.SentChest{
			RocketID:    rocketID,
			OwnerUserID: sender.ID,
		})
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("error sending rocket: %w", err)
	}

	return rocketID, nil
}

// SaveTemp stores the sender's single work-in-progress rocket, replacing
// any previous temp save.
func (s *RocketService) SaveTemp(ctx context.Context, senderUserID int64, draft models.RocketDraft) error {
	userRepo := s.repomanager.Users(s.db)

	var receiverID int64
	if draft.ReceiverEmail != "" {
		receiver, err := userRepo.GetByEmail(ctx, draft.ReceiverEmail)
		if err != nil {
			return err
		}
		receiverID = receiver.ID
	}

	rocket := &models.Rocket{
		SenderUserID:   senderUserID,
		ReceiverUserID: receiverID,
		Name:           draft.Name,
		Design:         draft.Design,
		Content:        draft.Content,
		ReceiverType:   draft.ReceiverType,
		IsLock:         true,
		LockExpiredAt:  draft.LockExpiredAt,
		IsTemp:         true,
	}

	return s.repomanager.Rockets(s.db).UpsertTemp(ctx, rocket, time.Now())
}

// GetTemp returns the sender's temp-saved rocket, if any.
func (s *RocketService) GetTemp(ctx context.Context, senderUserID int64) (*models.Rocket, error) {
	return s.repomanager.Rockets(s.db).GetTempBySender(ctx, senderUserID)
}

// Unlock opens a locked rocket for its receiver once the lock expiry has
// passed. Unlocking is one-way.
func (s *RocketService) Unlock(ctx context.Context, userID, rocketID int64) error {
	repo := s.repomanager.Rockets(s.db)

	rocket, err := repo.GetLocked(ctx, rocketID)
	if err != nil {
		return err
	}
	if rocket.ReceiverUserID != userID {
		return fmt.Errorf("%w: only the receiver can unlock a rocket", common.ErrorUnauthorized)
	}
	if time.Now().Before(rocket.LockExpiredAt) {
		return fmt.Errorf("%w: rocket stays locked until %s",
			common.ErrorInvalidState, rocket.LockExpiredAt.Format(time.RFC3339))
	}

	return repo.Unlock(ctx, rocketID)
}
