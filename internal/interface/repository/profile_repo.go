package repository

import (
	"context"
	"time"

	"skywage-service/internal/domain/entity"
	"skywage-service/internal/domain/repository"

	"gorm.io/gorm"
)

// GormProfileRepository implements the ProfileRepository interface
type GormProfileRepository struct {
	db *gorm.DB
}

// NewGormProfileRepository creates a new GORM profile repository
func NewGormProfileRepository(db *gorm.DB) repository.ProfileRepository {
	return &GormProfileRepository{
		db: db,
	}
}

// Profiles GORM model for database mapping
type Profiles struct {
	ID          string `gorm:"primaryKey;column:id"`
	Email       string `gorm:"column:email;unique"`
	Airline     string `gorm:"column:airline"`
	Position    string `gorm:"column:position"`
	Nationality string `gorm:"column:nationality"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName overrides the default table name
func (Profiles) TableName() string {
	return "m_profiles"
}

// GetByID finds a profile by id
func (r *GormProfileRepository) GetByID(ctx context.Context, id string) (*entity.Profile, error) {
	var model Profiles
	result := r.db.WithContext(ctx).Where("id = ?", id).First(&model)
	if result.Error != nil {
		return nil, result.Error
	}
	return toProfileEntity(&model), nil
}

// GetByEmail finds a profile by email
func (r *GormProfileRepository) GetByEmail(ctx context.Context, email string) (*entity.Profile, error) {
	var model Profiles
	result := r.db.WithContext(ctx).Where("email = ?", email).First(&model)
	if result.Error != nil {
		return nil, result.Error
	}
	return toProfileEntity(&model), nil
}

func toProfileEntity(m *Profiles) *entity.Profile {
	return &entity.Profile{
		ID:          m.ID,
		Email:       m.Email,
		Airline:     m.Airline,
		Position:    entity.Position(m.Position),
		Nationality: m.Nationality,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}
