package repository

import (
	"context"
	"time"

	"skywage-service/internal/domain/entity"
	"skywage-service/internal/domain/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormFlightDutyRepository implements the FlightDutyRepository interface
type GormFlightDutyRepository struct {
	db *gorm.DB
}

// NewGormFlightDutyRepository creates a new GORM flight duty repository
func NewGormFlightDutyRepository(db *gorm.DB) repository.FlightDutyRepository {
	return &GormFlightDutyRepository{
		db: db,
	}
}

// FlightDuties GORM model for database mapping
type FlightDuties struct {
	ID            string          `gorm:"primaryKey;column:id"`
	UserID        string          `gorm:"column:user_id;index:idx_duties_user_month"`
	Date          time.Time       `gorm:"column:date"`
	FlightNumbers []string        `gorm:"column:flight_numbers;serializer:json"`
	Sectors       []string        `gorm:"column:sectors;serializer:json"`
	DutyType      string          `gorm:"column:duty_type"`
	ReportTime    string          `gorm:"column:report_time"`
	DebriefTime   string          `gorm:"column:debrief_time"`
	DutyHours     float64         `gorm:"column:duty_hours"`
	FlightPay     decimal.Decimal `gorm:"column:flight_pay;type:numeric(12,2)"`
	IsCrossDay    bool            `gorm:"column:is_cross_day"`
	DataSource    string          `gorm:"column:data_source"`
	Month         int             `gorm:"column:month;index:idx_duties_user_month"`
	Year          int             `gorm:"column:year;index:idx_duties_user_month"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TableName overrides the default table name
func (FlightDuties) TableName() string {
	return "t_flight_duties"
}

// Create inserts a new flight duty
func (r *GormFlightDutyRepository) Create(ctx context.Context, duty *entity.FlightDuty) error {
	return r.db.WithContext(ctx).Create(toDutyModel(duty)).Error
}

// Update replaces a flight duty's stored fields
func (r *GormFlightDutyRepository) Update(ctx context.Context, duty *entity.FlightDuty) error {
	duty.UpdatedAt = time.Now()
	return r.db.WithContext(ctx).Save(toDutyModel(duty)).Error
}

// Delete removes a flight duty by id
func (r *GormFlightDutyRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Delete(&FlightDuties{}, "id = ?", id).Error
}

// FindByID finds a flight duty by id
func (r *GormFlightDutyRepository) FindByID(ctx context.Context, id string) (*entity.FlightDuty, error) {
	var model FlightDuties
	result := r.db.WithContext(ctx).Where("id = ?", id).First(&model)
	if result.Error != nil {
		return nil, result.Error
	}
	return toDutyEntity(&model), nil
}

// FindByUserAndMonth returns a user's duties for one month in date order
func (r *GormFlightDutyRepository) FindByUserAndMonth(ctx context.Context, userID string, month, year int) ([]*entity.FlightDuty, error) {
	var models []FlightDuties
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND month = ? AND year = ?", userID, month, year).
		Order("date ASC, report_time ASC").
		Find(&models)
	if result.Error != nil {
		return nil, result.Error
	}

	duties := make([]*entity.FlightDuty, 0, len(models))
	for i := range models {
		duties = append(duties, toDutyEntity(&models[i]))
	}
	return duties, nil
}

// CountByUserAndMonth counts a user's duties for one month
func (r *GormFlightDutyRepository) CountByUserAndMonth(ctx context.Context, userID string, month, year int) (int64, error) {
	var count int64
	result := r.db.WithContext(ctx).Model(&FlightDuties{}).
		Where("user_id = ? AND month = ? AND year = ?", userID, month, year).
		Count(&count)
	return count, result.Error
}

func toDutyModel(d *entity.FlightDuty) *FlightDuties {
	return &FlightDuties{
		ID:            d.ID,
		UserID:        d.UserID,
		Date:          d.Date,
		FlightNumbers: d.FlightNumbers,
		Sectors:       d.Sectors,
		DutyType:      string(d.DutyType),
		ReportTime:    d.ReportTime,
		DebriefTime:   d.DebriefTime,
		DutyHours:     d.DutyHours,
		FlightPay:     d.FlightPay,
		IsCrossDay:    d.IsCrossDay,
		DataSource:    string(d.DataSource),
		Month:         d.Month,
		Year:          d.Year,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}
}

func toDutyEntity(m *FlightDuties) *entity.FlightDuty {
	return &entity.FlightDuty{
		ID:            m.ID,
		UserID:        m.UserID,
		Date:          m.Date,
		FlightNumbers: m.FlightNumbers,
		Sectors:       m.Sectors,
		DutyType:      entity.DutyType(m.DutyType),
		ReportTime:    m.ReportTime,
		DebriefTime:   m.DebriefTime,
		DutyHours:     m.DutyHours,
		FlightPay:     m.FlightPay,
		IsCrossDay:    m.IsCrossDay,
		DataSource:    entity.DataSource(m.DataSource),
		Month:         m.Month,
		Year:          m.Year,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}
