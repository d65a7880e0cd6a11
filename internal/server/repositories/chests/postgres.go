// Package chests provides the PostgreSQL-backed storage-record store for
// received chests: slot placement, display membership and the soft-delete
// lifecycle.
package chests

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
	"github.com/melly/timerocket/internal/server/slots"
)

// sortColumns whitelists the list sort fields and maps them to columns.
// The sort field itself is validated by the pagination package; this map is
// the only place a sort name meets SQL.
var sortColumns = map[string]string{
	"sentAt":     "r.sent_at",
	"rocketName": "r.name",
	"publicAt":   "c.public_at",
}

// PostgresRepository implements chest storage over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const chestColumns = `
	id, rocket_id, owner_user_id, category, location,
	is_public, public_at, display_location, is_deleted, deleted_at
`

func (r *PostgresRepository) Create(ctx context.Context, chest *models.Chest) (int64, error) {
	query := `
		INSERT INTO chests (rocket_id, owner_user_id, category, location,
			is_public, public_at, display_location, is_deleted, deleted_at)
		VALUES ($1, $2, $3, $4, false, NULL, NULL, false, NULL)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRowContext(ctx, query,
		chest.RocketID, chest.OwnerUserID, chest.Category, chest.Location).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}

	return id, nil
}

func (r *PostgresRepository) GetOwnedActive(ctx context.Context, chestID, ownerUserID int64) (*models.Chest, error) {
	query := `SELECT ` + chestColumns + ` FROM chests
		WHERE id = $1 AND owner_user_id = $2 AND NOT is_deleted`
	return r.scanOne(r.db.QueryRowContext(ctx, query, chestID, ownerUserID))
}

func (r *PostgresRepository) GetOwnedDeleted(ctx context.Context, chestID, ownerUserID int64) (*models.Chest, error) {
	query := `SELECT ` + chestColumns + ` FROM chests
		WHERE id = $1 AND owner_user_id = $2 AND is_deleted`
	return r.scanOne(r.db.QueryRowContext(ctx, query, chestID, ownerUserID))
}

func (r *PostgresRepository) GetPublic(ctx context.Context, chestID int64) (*models.Chest, error) {
	query := `SELECT ` + chestColumns + ` FROM chests
		WHERE id = $1 AND is_public AND NOT is_deleted`
	return r.scanOne(r.db.QueryRowContext(ctx, query, chestID))
}

func (r *PostgresRepository) GetByLocation(ctx context.Context, ownerUserID int64, location string) (*models.Chest, error) {
	query := `SELECT ` + chestColumns + ` FROM chests
		WHERE owner_user_id = $1 AND location = $2 AND NOT is_deleted`
	return r.scanOne(r.db.QueryRowContext(ctx, query, ownerUserID, location))
}

func (r *PostgresRepository) GetByDisplayLocation(ctx context.Context, ownerUserID, displayLocation int64) (*models.Chest, error) {
	query := `SELECT ` + chestColumns + ` FROM chests
		WHERE owner_user_id = $1 AND display_location = $2 AND is_public AND NOT is_deleted`
	return r.scanOne(r.db.QueryRowContext(ctx, query, ownerUserID, displayLocation))
}

func (r *PostgresRepository) ListActive(ctx context.Context, ownerUserID int64, category slots.Category, rocketName string, p pagination.Pageable) ([]models.ChestListItem, int64, error) {
	column, ok := sortColumns[p.SortBy]
	if !ok {
		return nil, 0, fmt.Errorf("%w: unknown sort field %q", common.ErrorValidation, p.SortBy)
	}
	direction := "ASC"
	if p.Dir == pagination.Desc {
		direction = "DESC"
	}

	where := `
		FROM chests c
		JOIN rockets r ON r.id = c.rocket_id
		JOIN users su ON su.id = r.sender_user_id
		JOIN users ru ON ru.id = r.receiver_user_id
		WHERE c.owner_user_id = $1 AND c.category = $2 AND NOT c.is_deleted
	`
	args := []any{ownerUserID, category}

	if rocketName != "" {
		where += ` AND r.name ILIKE '%' || $3 || '%'`
		args = append(args, rocketName)
	}

	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT count(*)`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}

	query := `
		SELECT c.id, r.id, r.name, r.design, su.email, ru.nickname, ru.email,
			r.content, r.lock_expired_at, c.is_public, c.public_at, c.location
	` + where + fmt.Sprintf(` ORDER BY %s %s LIMIT $%d OFFSET $%d`,
		column, direction, len(args)+1, len(args)+2)
	args = append(args, p.Size, p.Offset())

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var items []models.ChestListItem
	for rows.Next() {
		var item models.ChestListItem
		var publicAt sql.NullTime
		var location sql.NullString
		if err := rows.Scan(&item.ChestID, &item.RocketID, &item.RocketName,
			&item.DesignURL, &item.SenderEmail, &item.ReceiverNickname,
			&item.ReceiverEmail, &item.Content, &item.LockExpiredAt,
			&item.IsPublic, &publicAt, &location); err != nil {
			return nil, 0, err
		}
		if publicAt.Valid {
			t := publicAt.Time
			item.PublicAt = &t
		}
		if location.Valid {
			s := location.String
			item.Location = &s
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return items, total, nil
}

func (r *PostgresRepository) CountActiveByOwner(ctx context.Context, ownerUserID int64) (int64, error) {
	query := `SELECT count(*) FROM chests WHERE owner_user_id = $1 AND NOT is_deleted`

	var count int64
	if err := r.db.QueryRowContext(ctx, query, ownerUserID).Scan(&count); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return count, nil
}

func (r *PostgresRepository) CountPublicByOwner(ctx context.Context, ownerUserID int64) (int64, error) {
	query := `SELECT count(*) FROM chests
		WHERE owner_user_id = $1 AND is_public AND NOT is_deleted`

	var count int64
	if err := r.db.QueryRowContext(ctx, query, ownerUserID).Scan(&count); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return count, nil
}

func (r *PostgresRepository) ListPublicByOwner(ctx context.Context, ownerUserID int64) ([]models.PublicChest, error) {
	query := `
		SELECT c.id, r.id, r.name, r.design, r.receiver_type,
			su.email, ru.nickname, r.content, c.display_location
		FROM chests c
		JOIN rockets r ON r.id = c.rocket_id
		JOIN users su ON su.id = r.sender_user_id
		JOIN users ru ON ru.id = r.receiver_user_id
		WHERE c.owner_user_id = $1 AND c.is_public AND NOT c.is_deleted
		ORDER BY c.display_location
	`

	rows, err := r.db.QueryContext(ctx, query, ownerUserID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var items []models.PublicChest
	for rows.Next() {
		var item models.PublicChest
		if err := rows.Scan(&item.ChestID, &item.RocketID, &item.RocketName,
			&item.DesignURL, &item.ReceiverType, &item.SenderEmail,
			&item.ReceiverNickname, &item.Content, &item.DisplayLocation); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return items, nil
}

func (r *PostgresRepository) LocationsByPage(ctx context.Context, ownerUserID int64, category slots.Category, page int) ([]string, error) {
	query := `
		SELECT location FROM chests
		WHERE owner_user_id = $1 AND category = $2 AND location LIKE $3 AND NOT is_deleted
	`

	rows, err := r.db.QueryContext(ctx, query, ownerUserID, category, slots.PagePrefix(category, page))
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var locations []string
	for rows.Next() {
		var loc string
		if err := rows.Scan(&loc); err != nil {
			return nil, err
		}
		locations = append(locations, loc)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return locations, nil
}

func (r *PostgresRepository) MaxDisplayLocation(ctx context.Context, ownerUserID int64) (*int64, error) {
	query := `SELECT MAX(display_location) FROM chests
		WHERE owner_user_id = $1 AND is_public AND NOT is_deleted`

	var max sql.NullInt64
	if err := r.db.QueryRowContext(ctx, query, ownerUserID).Scan(&max); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	if !max.Valid {
		return nil, nil
	}
	return &max.Int64, nil
}

func (r *PostgresRepository) UpdateLocation(ctx context.Context, chestID int64, location *string) error {
	query := `UPDATE chests SET location = $2 WHERE id = $1`
	return r.execOne(ctx, query, chestID, location)
}

func (r *PostgresRepository) UpdateDisplayLocation(ctx context.Context, chestID int64, displayLocation *int64) error {
	query := `UPDATE chests SET display_location = $2 WHERE id = $1`
	return r.execOne(ctx, query, chestID, displayLocation)
}

func (r *PostgresRepository) SetVisibility(ctx context.Context, chestID int64, isPublic bool, publicAt *time.Time, displayLocation *int64) error {
	query := `UPDATE chests SET is_public = $2, public_at = $3, display_location = $4
		WHERE id = $1 AND NOT is_deleted`
	return r.execOne(ctx, query, chestID, isPublic, publicAt, displayLocation)
}

func (r *PostgresRepository) SoftDelete(ctx context.Context, chestID int64, deletedAt time.Time) error {
	query := `UPDATE chests SET is_deleted = true, deleted_at = $2,
		location = NULL, is_public = false, public_at = NULL, display_location = NULL
		WHERE id = $1 AND NOT is_deleted`
	return r.execOne(ctx, query, chestID, deletedAt)
}

func (r *PostgresRepository) Restore(ctx context.Context, chestID int64, location string) error {
	query := `UPDATE chests SET is_deleted = false, deleted_at = NULL, location = $2
		WHERE id = $1 AND is_deleted`
	return r.execOne(ctx, query, chestID, location)
}

func (r *PostgresRepository) execOne(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
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

func (r *PostgresRepository) scanOne(row *sql.Row) (*models.Chest, error) {
	chest := &models.Chest{}
	var location sql.NullString
	var publicAt, deletedAt sql.NullTime
	var displayLocation sql.NullInt64

	err := row.Scan(&chest.ID, &chest.RocketID, &chest.OwnerUserID, &chest.Category,
		&location, &chest.IsPublic, &publicAt, &displayLocation,
		&chest.IsDeleted, &deletedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if location.Valid {
		s := location.String
		chest.Location = &s
	}
	if publicAt.Valid {
		t := publicAt.Time
		chest.PublicAt = &t
	}
	if displayLocation.Valid {
		d := displayLocation.Int64
		chest.DisplayLocation = &d
	}
	if deletedAt.Valid {
		t := deletedAt.Time
		chest.DeletedAt = &t
	}

	return chest, nil
}
