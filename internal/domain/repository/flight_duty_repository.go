package repository

import (
	"context"

	"skywage-service/internal/domain/entity"
)

// FlightDutyRepository defines the interface for flight duty storage
type FlightDutyRepository interface {
	Create(ctx context.Context, duty *entity.FlightDuty) error
	Update(ctx context.Context, duty *entity.FlightDuty) error
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*entity.FlightDuty, error)
	FindByUserAndMonth(ctx context.Context, userID string, month, year int) ([]*entity.FlightDuty, error)
	CountByUserAndMonth(ctx context.Context, userID string, month, year int) (int64, error)
}
