// Package rocketfiles provides PostgreSQL-backed persistence for rocket
// attachment metadata. The payloads themselves live in object storage.
package rocketfiles

import (
	"context"
	"fmt"

	"github.com/melly/timerocket/internal/dbx"
	"github.com/melly/timerocket/internal/server/models"
)

// PostgresRepository implements attachment metadata storage over a dbx.DBTX
// (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, file *models.RocketFile) (int64, error) {
	query := `
		INSERT INTO rocket_files (rocket_id, original_name, unique_name, storage_key,
			file_type, file_size, file_order, uploaded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id
	`

	var id int64
	err := r.db.QueryRowContext(ctx, query,
		file.RocketID, file.OriginalName, file.UniqueName, file.StorageKey,
		file.FileType, file.FileSize, file.FileOrder, file.UploadedAt).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}

	return id, nil
}

func (r *PostgresRepository) ListByRocket(ctx context.Context, rocketID int64) ([]*models.RocketFile, error) {
	query := `
		SELECT id, rocket_id, original_name, unique_name, storage_key,
			file_type, file_size, file_order, uploaded_at
		FROM rocket_files
		WHERE rocket_id = $1
		ORDER BY file_order
	`

	rows, err := r.db.QueryContext(ctx, query, rocketID)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var result []*models.RocketFile
	for rows.Next() {
		var f models.RocketFile
		if err := rows.Scan(&f.ID, &f.RocketID, &f.OriginalName, &f.UniqueName,
			&f.StorageKey, &f.FileType, &f.FileSize, &f.FileOrder, &f.UploadedAt); err != nil {
			return nil, err
		}
		result = append(result, &f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}
