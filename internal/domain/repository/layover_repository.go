package repository

import (
	"context"

	"skywage-service/internal/domain/entity"
)

// LayoverRepository defines the interface for layover rest period storage
type LayoverRepository interface {
	ReplaceForMonth(ctx context.Context, userID string, month, year int, periods []*entity.LayoverRestPeriod) error
	FindByUserAndMonth(ctx context.Context, userID string, month, year int) ([]*entity.LayoverRestPeriod, error)
}
