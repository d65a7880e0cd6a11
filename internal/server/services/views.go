package services

import (
	"context"
	"fmt"

	"github.com/melly/timerocket/internal/server/models"
	"github.com/melly/timerocket/internal/server/repositories/rocketfiles"
)

// buildFileViews loads a rocket's attachments and presigns a download link
// for each.
func buildFileViews(ctx context.Context, repo rocketfiles.Repository, storage ObjectStorage, rocketID int64) ([]models.RocketFileView, error) {
	files, err := repo.ListByRocket(ctx, rocketID)
	if err != nil {
		return nil, err
	}

	views := make([]models.RocketFileView, 0, len(files))
	for _, f := range files {
		url, err := storage.GetPresignedGetURL(ctx, f.StorageKey)
		if err != nil {
			return nil, fmt.Errorf("error presigning file %d: %w", f.ID, err)
		}
		views = append(views, models.RocketFileView{
			FileID:       f.ID,
			OriginalName: f.OriginalName,
			UniqueName:   f.UniqueName,
			DownloadURL:  url,
			FileType:     f.FileType,
			FileSize:     f.FileSize,
			FileOrder:    f.FileOrder,
			UploadedAt:   f.UploadedAt,
		})
	}

	return views, nil
}
