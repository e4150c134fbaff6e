package repository

import (
	"context"

	"skywage-service/internal/domain/entity"
)

// MonthlyCalculationRepository defines the interface for monthly totals.
// One row exists per (user, month, year); Upsert enforces the unique key.
// Month-wide deletion goes through RosterStore so the totals row, rest
// periods and duties leave together in one transaction.
type MonthlyCalculationRepository interface {
	Upsert(ctx context.Context, calc *entity.MonthlyCalculation) error
	FindByUserAndMonth(ctx context.Context, userID string, month, year int) (*entity.MonthlyCalculation, error)
}
