// Package rockets provides PostgreSQL-backed persistence for rocket
// capsules: creation at send time, lock-state reads and the single
// per-sender temp save.
package rockets

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/melly/timerocket/internal/common"
	"github.com/melly/timerocket/internal/dbx"
	"github.com/melly/timerocket/internal/server/models"
)

// PostgresRepository implements rocket storage over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const selectColumns = `
	id, sender_user_id, receiver_user_id, name, design, content,
	receiver_type, is_lock, lock_expired_at, is_temp, temp_created_at, sent_at
`

func (r *PostgresRepository) Create(ctx context.Context, rocket *models.Rocket) (int64, error) {
	query := `
		INSERT INTO rockets (sender_user_id, receiver_user_id, name, design, content,
			receiver_type, is_lock, lock_expired_at, is_temp, sent_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, false, $9)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRowContext(ctx, query,
		rocket.SenderUserID, rocket.ReceiverUserID, rocket.Name, rocket.Design,
		rocket.Content, rocket.ReceiverType, rocket.IsLock, rocket.LockExpiredAt,
		rocket.SentAt).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}

	return id, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id int64) (*models.Rocket, error) {
	query := `SELECT ` + selectColumns + ` FROM rockets WHERE id = $1 AND NOT is_temp`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) GetLocked(ctx context.Context, id int64) (*models.Rocket, error) {
	query := `SELECT ` + selectColumns + ` FROM rockets WHERE id = $1 AND is_lock AND NOT is_temp`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id))
}

func (r *PostgresRepository) Unlock(ctx context.Context, id int64) error {
	query := `UPDATE rockets SET is_lock = false WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, id)
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

func (r *PostgresRepository) GetTempBySender(ctx context.Context, senderUserID int64) (*models.Rocket, error) {
	query := `SELECT ` + selectColumns + ` FROM rockets WHERE sender_user_id = $1 AND is_temp`
	return r.scanOne(r.db.QueryRowContext(ctx, query, senderUserID))
}

// UpsertTemp relies on the partial unique index that allows one temp rocket
// per sender.
func (r *PostgresRepository) UpsertTemp(ctx context.Context, rocket *models.Rocket, savedAt time.Time) error {
	query := `
		INSERT INTO rockets (sender_user_id, receiver_user_id, name, design, content,
			receiver_type, is_lock, lock_expired_at, is_temp, temp_created_at)
		VALUES ($1, $2, $3, $4, $5, $6, false, $7, true, $8)
		ON CONFLICT (sender_user_id) WHERE is_temp
		DO UPDATE SET
			receiver_user_id = EXCLUDED.receiver_user_id,
			name = EXCLUDED.name,
			design = EXCLUDED.design,
			content = EXCLUDED.content,
			receiver_type = EXCLUDED.receiver_type,
			lock_expired_at = EXCLUDED.lock_expired_at,
			temp_created_at = EXCLUDED.temp_created_at
	`

	var receiverID any
	if rocket.ReceiverUserID != 0 {
		receiverID = rocket.ReceiverUserID
	}

	_, err := r.db.ExecContext(ctx, query,
		rocket.SenderUserID, receiverID, rocket.Name, rocket.Design, rocket.Content,
		rocket.ReceiverType, rocket.LockExpiredAt, savedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) scanOne(row *sql.Row) (*models.Rocket, error) {
	rocket := &models.Rocket{}
	var receiverID sql.NullInt64
	var lockExpiredAt, tempCreatedAt, sentAt sql.NullTime

	err := row.Scan(&rocket.ID, &rocket.SenderUserID, &receiverID, &rocket.Name,
		&rocket.Design, &rocket.Content, &rocket.ReceiverType, &rocket.IsLock,
		&lockExpiredAt, &rocket.IsTemp, &tempCreatedAt, &sentAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if receiverID.Valid {
		rocket.ReceiverUserID = receiverID.Int64
	}
	if lockExpiredAt.Valid {
		rocket.LockExpiredAt = lockExpiredAt.Time
	}
	if tempCreatedAt.Valid {
		t := tempCreatedAt.Time
		rocket.TempCreatedAt = &t
	}
	if sentAt.Valid {
		t := sentAt.Time
		rocket.SentAt = &t
	}

	return rocket, nil
}
