package rocketfiles

import (
	"context"

	"github.com/melly/timerocket/internal/server/models"
)

type Repository interface {
	// Create inserts one attachment row and returns its assigned ID.
	Create(ctx context.Context, file *models.RocketFile) (int64, error)

	// ListByRocket returns a rocket's attachments ordered by file_order.
	ListByRocket(ctx context.Context, rocketID int64) ([]*models.RocketFile, error)
}
