package persistence

import (
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"skywage-service/internal/interface/repository"
)

// NewPostgresDB opens a Postgres connection and migrates the salary tables
func NewPostgresDB(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	err = db.AutoMigrate(
		&repository.Profiles{},
		&repository.FlightDuties{},
		&repository.LayoverRestPeriods{},
		&repository.MonthlyCalculations{},
	)
	if err != nil {
		return nil, err
	}

	return db, nil
}
