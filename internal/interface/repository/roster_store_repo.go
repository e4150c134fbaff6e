package repository

import (
	"context"

	"skywage-service/internal/domain/entity"
	"skywage-service/internal/domain/repository"

	"gorm.io/gorm"
)

// GormRosterStore implements the RosterStore interface
type GormRosterStore struct {
	db *gorm.DB
}

// NewGormRosterStore creates a new GORM roster store
func NewGormRosterStore(db *gorm.DB) repository.RosterStore {
	return &GormRosterStore{
		db: db,
	}
}

// InsertMonth inserts a batch of duties in one transaction
func (s *GormRosterStore) InsertMonth(ctx context.Context, duties []*entity.FlightDuty) error {
	if len(duties) == 0 {
		return nil
	}
	models := make([]*FlightDuties, 0, len(duties))
	for _, d := range duties {
		models = append(models, toDutyModel(d))
	}
	return s.db.WithContext(ctx).Create(models).Error
}

// ReplaceMonth deletes a month's duties, rest periods and totals and inserts
// the new duties, all inside one transaction. A failed replacement rolls
// back to the month as it was.
func (s *GormRosterStore) ReplaceMonth(ctx context.Context, userID string, month, year int, duties []*entity.FlightDuty) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := deleteMonth(tx, userID, month, year); err != nil {
			return err
		}
		if len(duties) == 0 {
			return nil
		}
		models := make([]*FlightDuties, 0, len(duties))
		for _, d := range duties {
			models = append(models, toDutyModel(d))
		}
		return tx.Create(models).Error
	})
}

// DeleteMonth removes a month's duties, rest periods and totals in one
// transaction.
func (s *GormRosterStore) DeleteMonth(ctx context.Context, userID string, month, year int) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return deleteMonth(tx, userID, month, year)
	})
}

func deleteMonth(tx *gorm.DB, userID string, month, year int) error {
	if err := tx.Where("user_id = ? AND month = ? AND year = ?", userID, month, year).
		Delete(&LayoverRestPeriods{}).Error; err != nil {
		return err
	}
	if err := tx.Where("user_id = ? AND month = ? AND year = ?", userID, month, year).
		Delete(&MonthlyCalculations{}).Error; err != nil {
		return err
	}
	return tx.Where("user_id = ? AND month = ? AND year = ?", userID, month, year).
		Delete(&FlightDuties{}).Error
}
