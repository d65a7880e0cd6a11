package chests

import (
	"context"
	"time"

	"github.com/melly/timerocket/internal/server/models"
	"github.com/melly/timerocket/internal/server/pagination"
	"github.com/melly/timerocket/internal/server/slots"
)

// Repository is the storage-record store for received chests: CRUD plus the
// targeted field updates the placement service composes into swaps,
// visibility toggles and the soft-delete lifecycle.
type Repository interface {
	// Create inserts a chest record and returns its assigned ID.
	Create(ctx context.Context, chest *models.Chest) (int64, error)

	// GetOwnedActive returns a non-deleted chest owned by ownerUserID.
	GetOwnedActive(ctx context.Context, chestID, ownerUserID int64) (*models.Chest, error)

	// GetOwnedDeleted returns a soft-deleted chest owned by ownerUserID.
	GetOwnedDeleted(ctx context.Context, chestID, ownerUserID int64) (*models.Chest, error)

	// GetPublic returns a non-deleted, public chest by ID.
	GetPublic(ctx context.Context, chestID int64) (*models.Chest, error)

	// GetByLocation returns the non-deleted chest occupying a coordinate,
	// or ErrorNotFound when the slot is free.
	GetByLocation(ctx context.Context, ownerUserID int64, location string) (*models.Chest, error)

	// GetByDisplayLocation returns the public chest holding a display
	// location, or ErrorNotFound when the location is free.
	GetByDisplayLocation(ctx context.Context, ownerUserID, displayLocation int64) (*models.Chest, error)

	// ListActive returns one page of the owner's non-deleted chests in a
	// category, optionally substring-filtered by rocket name, plus the
	// total row count of the filtered set.
	ListActive(ctx context.Context, ownerUserID int64, category slots.Category, rocketName string, p pagination.Pageable) ([]models.ChestListItem, int64, error)

	// CountActiveByOwner returns the owner's non-deleted chest count.
	CountActiveByOwner(ctx context.Context, ownerUserID int64) (int64, error)

	// CountPublicByOwner returns the owner's live public chest count.
	CountPublicByOwner(ctx context.Context, ownerUserID int64) (int64, error)

	// ListPublicByOwner returns the owner's public chests projected for
	// the display, ordered by display location.
	ListPublicByOwner(ctx context.Context, ownerUserID int64) ([]models.PublicChest, error)

	// LocationsByPage returns the coordinates used on one page of the
	// owner's category grid.
	LocationsByPage(ctx context.Context, ownerUserID int64, category slots.Category, page int) ([]string, error)

	// MaxDisplayLocation returns the highest live display location, or
	// nil when the owner's display is empty.
	MaxDisplayLocation(ctx context.Context, ownerUserID int64) (*int64, error)

	// UpdateLocation overwrites the chest's storage coordinate. A nil
	// location clears placement.
	UpdateLocation(ctx context.Context, chestID int64, location *string) error

	// UpdateDisplayLocation overwrites the chest's display location.
	UpdateDisplayLocation(ctx context.Context, chestID int64, displayLocation *int64) error

	// SetVisibility updates the public flag together with its dependent
	// fields in one statement.
	SetVisibility(ctx context.Context, chestID int64, isPublic bool, publicAt *time.Time, displayLocation *int64) error

	// SoftDelete marks the chest deleted and clears placement and display
	// fields as a single unit.
	SoftDelete(ctx context.Context, chestID int64, deletedAt time.Time) error

	// Restore clears the deleted flag and re-places the chest at the
	// given coordinate.
	Restore(ctx context.Context, chestID int64, location string) error
}
