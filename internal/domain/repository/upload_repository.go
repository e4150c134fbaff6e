package repository

import (
	"context"
	"time"

	"skywage-service/internal/domain/entity"
)

// UploadRepository defines the interface for roster upload archive operations
type UploadRepository interface {
	Save(ctx context.Context, upload *entity.RosterUpload) error
	FindByUploadID(ctx context.Context, uploadID string) (*entity.RosterUpload, error)
	FindUnprocessed(ctx context.Context, limit int) ([]*entity.RosterUpload, error)
	UpdateStatusByUploadID(ctx context.Context, uploadID string, status string, startedAt time.Time) error
	UpdateProcessStepsByUploadID(ctx context.Context, uploadID string, steps entity.ProcessSteps) error
	MarkAsProcessedByUploadID(ctx context.Context, uploadID, status, errorDetail string, extractedData map[string]interface{}) error
	ResetProcessingUploads(ctx context.Context) error
}
