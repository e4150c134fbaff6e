package repository

import (
	"context"
	"time"

	"skywage-service/internal/domain/entity"
	"skywage-service/internal/domain/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormLayoverRepository implements the LayoverRepository interface
type GormLayoverRepository struct {
	db *gorm.DB
}

// NewGormLayoverRepository creates a new GORM layover repository
func NewGormLayoverRepository(db *gorm.DB) repository.LayoverRepository {
	return &GormLayoverRepository{
		db: db,
	}
}

// LayoverRestPeriods GORM model for database mapping
type LayoverRestPeriods struct {
	ID               string          `gorm:"primaryKey;column:id"`
	UserID           string          `gorm:"column:user_id;index:idx_rest_user_month"`
	OutboundFlightID string          `gorm:"column:outbound_flight_id"`
	InboundFlightID  string          `gorm:"column:inbound_flight_id"`
	RestStartTime    time.Time       `gorm:"column:rest_start_time"`
	RestEndTime      time.Time       `gorm:"column:rest_end_time"`
	RestHours        float64         `gorm:"column:rest_hours"`
	PerDiemPay       decimal.Decimal `gorm:"column:per_diem_pay;type:numeric(12,2)"`
	Month            int             `gorm:"column:month;index:idx_rest_user_month"`
	Year             int             `gorm:"column:year;index:idx_rest_user_month"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// TableName overrides the default table name
func (LayoverRestPeriods) TableName() string {
	return "t_layover_rest_periods"
}

// ReplaceForMonth swaps a month's rest periods for the freshly paired set.
// Rest periods are derived data, so delete and reinsert beats diffing.
func (r *GormLayoverRepository) ReplaceForMonth(ctx context.Context, userID string, month, year int, periods []*entity.LayoverRestPeriod) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ? AND month = ? AND year = ?", userID, month, year).
			Delete(&LayoverRestPeriods{}).Error; err != nil {
			return err
		}
		if len(periods) == 0 {
			return nil
		}
		models := make([]*LayoverRestPeriods, 0, len(periods))
		for _, p := range periods {
			models = append(models, toRestModel(p))
		}
		return tx.Create(models).Error
	})
}

// FindByUserAndMonth returns a user's rest periods for one month
func (r *GormLayoverRepository) FindByUserAndMonth(ctx context.Context, userID string, month, year int) ([]*entity.LayoverRestPeriod, error) {
	var models []LayoverRestPeriods
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND month = ? AND year = ?", userID, month, year).
		Order("rest_start_time ASC").
		Find(&models)
	if result.Error != nil {
		return nil, result.Error
	}

	periods := make([]*entity.LayoverRestPeriod, 0, len(models))
	for i := range models {
		periods = append(periods, toRestEntity(&models[i]))
	}
	return periods, nil
}

func toRestModel(p *entity.LayoverRestPeriod) *LayoverRestPeriods {
	return &LayoverRestPeriods{
		ID:               p.ID,
		UserID:           p.UserID,
		OutboundFlightID: p.OutboundFlightID,
		InboundFlightID:  p.InboundFlightID,
		RestStartTime:    p.RestStartTime,
		RestEndTime:      p.RestEndTime,
		RestHours:        p.RestHours,
		PerDiemPay:       p.PerDiemPay,
		Month:            p.Month,
		Year:             p.Year,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
	}
}

func toRestEntity(m *LayoverRestPeriods) *entity.LayoverRestPeriod {
	return &entity.LayoverRestPeriod{
		ID:               m.ID,
		UserID:           m.UserID,
		OutboundFlightID: m.OutboundFlightID,
		InboundFlightID:  m.InboundFlightID,
		RestStartTime:    m.RestStartTime,
		RestEndTime:      m.RestEndTime,
		RestHours:        m.RestHours,
		PerDiemPay:       m.PerDiemPay,
		Month:            m.Month,
		Year:             m.Year,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}
