package rockets

import (
	"context"
	"time"

	"github.com/melly/timerocket/internal/server/models"
)

type Repository interface {
	// Create inserts a rocket and returns its assigned ID.
	Create(ctx context.Context, rocket *models.Rocket) (int64, error)

	// GetByID returns a rocket regardless of lock state.
	GetByID(ctx context.Context, id int64) (*models.Rocket, error)

	// GetLocked returns the rocket only if it is still locked.
	GetLocked(ctx context.Context, id int64) (*models.Rocket, error)

	// Unlock clears the lock flag.
	Unlock(ctx context.Context, id int64) error

	// GetTempBySender returns the sender's single temp-saved rocket.
	GetTempBySender(ctx context.Context, senderUserID int64) (*models.Rocket, error)

	// UpsertTemp creates or replaces the sender's temp-saved rocket.
	UpsertTemp(ctx context.Context, rocket *models.Rocket, savedAt time.Time) error
}
