package sentchests

import (
	"context"
	"time"

	"github.com/melly/timerocket/internal/server/models"
	"github.com/melly/timerocket/internal/server/pagination"
)

// Repository is the sender-side record store. Sent records carry no
// placement or display state, only the soft-delete lifecycle.
type Repository interface {
	// Create inserts a sent record and returns its assigned ID.
	Create(ctx context.Context, chest *models.SentChest) (int64, error)

	// GetOwnedActive returns a non-deleted sent record owned by ownerUserID.
	GetOwnedActive(ctx context.Context, sentChestID, ownerUserID int64) (*models.SentChest, error)

	// ListActive returns one page of the owner's non-deleted sent records,
	// optionally substring-filtered by rocket name, plus the total count
	// of the filtered set.
	ListActive(ctx context.Context, ownerUserID int64, rocketName string, p pagination.Pageable) ([]models.SentChestListItem, int64, error)

	// CountActiveByOwner returns the owner's non-deleted sent count.
	CountActiveByOwner(ctx context.Context, ownerUserID int64) (int64, error)

	// SoftDelete marks the sent record deleted.
	SoftDelete(ctx context.Context, sentChestID int64, deletedAt time.Time) error
}
