package repository

import (
	"context"
	"time"

	"skywage-service/internal/domain/entity"
	"skywage-service/internal/domain/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormMonthlyCalculationRepository implements the MonthlyCalculationRepository interface
type GormMonthlyCalculationRepository struct {
	db *gorm.DB
}

// NewGormMonthlyCalculationRepository creates a new GORM monthly calculation repository
func NewGormMonthlyCalculationRepository(db *gorm.DB) repository.MonthlyCalculationRepository {
	return &GormMonthlyCalculationRepository{
		db: db,
	}
}

// MonthlyCalculations GORM model for database mapping
type MonthlyCalculations struct {
	ID                 string          `gorm:"primaryKey;column:id"`
	UserID             string          `gorm:"column:user_id;uniqueIndex:uq_calc_user_month"`
	Month              int             `gorm:"column:month;uniqueIndex:uq_calc_user_month"`
	Year               int             `gorm:"column:year;uniqueIndex:uq_calc_user_month"`
	BasicSalary        decimal.Decimal `gorm:"column:basic_salary;type:numeric(12,2)"`
	HousingAllowance   decimal.Decimal `gorm:"column:housing_allowance;type:numeric(12,2)"`
	TransportAllowance decimal.Decimal `gorm:"column:transport_allowance;type:numeric(12,2)"`
	TotalDutyHours     float64         `gorm:"column:total_duty_hours"`
	FlightPay          decimal.Decimal `gorm:"column:flight_pay;type:numeric(12,2)"`
	TotalRestHours     float64         `gorm:"column:total_rest_hours"`
	PerDiemPay         decimal.Decimal `gorm:"column:per_diem_pay;type:numeric(12,2)"`
	AsbyCount          int             `gorm:"column:asby_count"`
	AsbyPay            decimal.Decimal `gorm:"column:asby_pay;type:numeric(12,2)"`
	TotalFixed         decimal.Decimal `gorm:"column:total_fixed;type:numeric(12,2)"`
	TotalVariable      decimal.Decimal `gorm:"column:total_variable;type:numeric(12,2)"`
	TotalSalary        decimal.Decimal `gorm:"column:total_salary;type:numeric(12,2)"`
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// TableName overrides the default table name
func (MonthlyCalculations) TableName() string {
	return "t_monthly_calculations"
}

// Upsert writes a month's totals against the (user_id, month, year) unique
// key. An existing row keeps its id and created_at; only value columns move.
// The surviving row is read back so the caller sees the persisted identity.
func (r *GormMonthlyCalculationRepository) Upsert(ctx context.Context, calc *entity.MonthlyCalculation) error {
	model := toCalcModel(calc)
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "month"}, {Name: "year"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"basic_salary", "housing_allowance", "transport_allowance",
			"total_duty_hours", "flight_pay", "total_rest_hours", "per_diem_pay",
			"asby_count", "asby_pay", "total_fixed", "total_variable",
			"total_salary", "updated_at",
		}),
	}, clause.Returning{}).Create(model).Error
	if err != nil {
		return err
	}
	calc.ID = model.ID
	calc.CreatedAt = model.CreatedAt
	return nil
}

// FindByUserAndMonth returns the stored totals for one month
func (r *GormMonthlyCalculationRepository) FindByUserAndMonth(ctx context.Context, userID string, month, year int) (*entity.MonthlyCalculation, error) {
	var model MonthlyCalculations
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND month = ? AND year = ?", userID, month, year).
		First(&model)
	if result.Error != nil {
		return nil, result.Error
	}
	return toCalcEntity(&model), nil
}

func toCalcModel(c *entity.MonthlyCalculation) *MonthlyCalculations {
	return &MonthlyCalculations{
		ID:                 c.ID,
		UserID:             c.UserID,
		Month:              c.Month,
		Year:               c.Year,
		BasicSalary:        c.BasicSalary,
		HousingAllowance:   c.HousingAllowance,
		TransportAllowance: c.TransportAllowance,
		TotalDutyHours:     c.TotalDutyHours,
		FlightPay:          c.FlightPay,
		TotalRestHours:     c.TotalRestHours,
		PerDiemPay:         c.PerDiemPay,
		AsbyCount:          c.AsbyCount,
		AsbyPay:            c.AsbyPay,
		TotalFixed:         c.TotalFixed,
		TotalVariable:      c.TotalVariable,
		TotalSalary:        c.TotalSalary,
		CreatedAt:          c.CreatedAt,
		UpdatedAt:          c.UpdatedAt,
	}
}

func toCalcEntity(m *MonthlyCalculations) *entity.MonthlyCalculation {
	return &entity.MonthlyCalculation{
		ID:                 m.ID,
		UserID:             m.UserID,
		Month:              m.Month,
		Year:               m.Year,
		BasicSalary:        m.BasicSalary,
		HousingAllowance:   m.HousingAllowance,
		TransportAllowance: m.TransportAllowance,
		TotalDutyHours:     m.TotalDutyHours,
		FlightPay:          m.FlightPay,
		TotalRestHours:     m.TotalRestHours,
		PerDiemPay:         m.PerDiemPay,
		AsbyCount:          m.AsbyCount,
		AsbyPay:            m.AsbyPay,
		TotalFixed:         m.TotalFixed,
		TotalVariable:      m.TotalVariable,
		TotalSalary:        m.TotalSalary,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
}
