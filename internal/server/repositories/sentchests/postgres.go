// Package sentchests provides PostgreSQL-backed persistence for the
// sender-side records of launched rockets.
package sentchests

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/melly/timerocket/internal/common"
	"github.com/melly/timerocket/internal/dbx"
	"github.com/melly/timerocket/internal/server/models"
	"github.com/melly/timerocket/internal/server/pagination"
)

var sortColumns = map[string]string{
	"sentAt":     "r.sent_at",
	"rocketName": "r.name",
}

// PostgresRepository implements sent-record storage over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, chest *models.SentChest) (int64, error) {
	query := `
		INSERT INTO sent_chests (rocket_id, owner_user_id, is_deleted, deleted_at)
		VALUES ($1, $2, false, NULL)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRowContext(ctx, query, chest.RocketID, chest.OwnerUserID).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}

	return id, nil
}

func (r *PostgresRepository) GetOwnedActive(ctx context.Context, sentChestID, ownerUserID int64) (*models.SentChest, error) {
	query := `
		SELECT id, rocket_id, owner_user_id, is_deleted, deleted_at FROM sent_chests
		WHERE id = $1 AND owner_user_id = $2 AND NOT is_deleted
	`

	chest := &models.SentChest{}
	var deletedAt sql.NullTime
	err := r.db.QueryRowContext(ctx, query, sentChestID, ownerUserID).
		Scan(&chest.ID, &chest.RocketID, &chest.OwnerUserID, &chest.IsDeleted, &deletedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	if deletedAt.Valid {
		t := deletedAt.Time
		chest.DeletedAt = &t
	}

	return chest, nil
}

func (r *PostgresRepository) ListActive(ctx context.Context, ownerUserID int64, rocketName string, p pagination.Pageable) ([]models.SentChestListItem, int64, error) {
	column, ok := sortColumns[p.SortBy]
	if !ok {
		return nil, 0, fmt.Errorf("%w: unknown sort field %q", common.ErrorValidation, p.SortBy)
	}
	direction := "ASC"
	if p.Dir == pagination.Desc {
		direction = "DESC"
	}

	where := `
		FROM sent_chests s
		JOIN rockets r ON r.id = s.rocket_id
		JOIN users ru ON ru.id = r.receiver_user_id
		WHERE s.owner_user_id = $1 AND NOT s.is_deleted
	`
	args := []any{ownerUserID}

	if rocketName != "" {
		where += ` AND r.name ILIKE '%' || $2 || '%'`
		args = append(args, rocketName)
	}

	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT count(*)`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}

	query := `
		SELECT s.id, r.id, r.name, r.design, ru.email, r.content
	` + where + fmt.Sprintf(` ORDER BY %s %s LIMIT $%d OFFSET $%d`,
		column, direction, len(args)+1, len(args)+2)
	args = append(args, p.Size, p.Offset())

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var items []models.SentChestListItem
	for rows.Next() {
		var item models.SentChestListItem
		if err := rows.Scan(&item.SentChestID, &item.RocketID, &item.RocketName,
			&item.DesignURL, &item.ReceiverEmail, &item.Content); err != nil {
			return nil, 0, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return items, total, nil
}

func (r *PostgresRepository) CountActiveByOwner(ctx context.Context, ownerUserID int64) (int64, error) {
	query := `SELECT count(*) FROM sent_chests WHERE owner_user_id = $1 AND NOT is_deleted`

	var count int64
	if err := r.db.QueryRowContext(ctx, query, ownerUserID).Scan(&count); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return count, nil
}

func (r *PostgresRepository) SoftDelete(ctx context.Context, sentChestID int64, deletedAt time.Time) error {
	query := `UPDATE sent_chests SET is_deleted = true, deleted_at = $2
		WHERE id = $1 AND NOT is_deleted`

	res, err := r.db.ExecContext(ctx, query, sentChestID, deletedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}

	return nil
}
