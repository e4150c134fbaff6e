package repository

import (
	"context"

	"skywage-service/internal/domain/entity"
)

// AuditRepository defines the interface for the append-only audit trail
type AuditRepository interface {
	Append(ctx context.Context, entry *entity.AuditTrailEntry) error
	FindByUser(ctx context.Context, userID string, limit int) ([]*entity.AuditTrailEntry, error)
}
