package repository

import (
	"context"

	"skywage-service/internal/domain/entity"
)

// ProfileRepository defines the interface for crew profile lookups
type ProfileRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Profile, error)
	GetByEmail(ctx context.Context, email string) (*entity.Profile, error)
}
