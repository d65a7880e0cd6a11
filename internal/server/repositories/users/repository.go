package users

import (
	"context"

	"github.com/melly/timerocket/internal/server/models"
)

// Repository resolves user identities for ownership checks and projections.
// Account lifecycle (registration, passwords) is owned elsewhere; this
// subsystem only reads.
type Repository interface {
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
}
