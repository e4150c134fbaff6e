package repository

import (
	"context"

	"skywage-service/internal/domain/entity"
)

// RosterStore covers the multi-table writes of roster ingestion. ReplaceMonth
// deletes a month's duties, rest periods and monthly calculation and inserts
// the new duties in one transaction, so a failure mid-replacement can never
// leave the month half-written.
type RosterStore interface {
	InsertMonth(ctx context.Context, duties []*entity.FlightDuty) error
	ReplaceMonth(ctx context.Context, userID string, month, year int, duties []*entity.FlightDuty) error
	DeleteMonth(ctx context.Context, userID string, month, year int) error
}
