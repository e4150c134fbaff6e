package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Position is the crew rank a rate table applies to.
type Position string

const (
	PositionCCM  Position = "CCM"  // Cabin Crew Member
	PositionSCCM Position = "SCCM" // Senior Cabin Crew Member
)

// SalaryRates is one versioned rate set. Rate sets are static configuration,
// selected per calculation and never mutated.
type SalaryRates struct {
	Position           Position
	BasicSalary        decimal.Decimal
	HousingAllowance   decimal.Decimal
	TransportAllowance decimal.Decimal
	HourlyRate         decimal.Decimal
	PerDiemRate        decimal.Decimal
	AsbyHours          decimal.Decimal // fixed paid hours per airport standby
	RecurrentDayRate   decimal.Decimal // flat pay for a recurrent training day
}

// AsbyFixedPay is the flat pay for one airport standby duty.
func (r SalaryRates) AsbyFixedPay() decimal.Decimal {
	return r.AsbyHours.Mul(r.HourlyRate)
}

// MonthlyCalculation is the aggregated salary for one (user, month, year).
// It is re-derived from scratch on every duty mutation and upserted against
// its unique key.
type MonthlyCalculation struct {
	ID                 string
	UserID             string
	Month              int
	Year               int
	BasicSalary        decimal.Decimal
	HousingAllowance   decimal.Decimal
	TransportAllowance decimal.Decimal
	TotalDutyHours     float64
	FlightPay          decimal.Decimal
	TotalRestHours     float64
	PerDiemPay         decimal.Decimal
	AsbyCount          int
	AsbyPay            decimal.Decimal
	TotalFixed         decimal.Decimal
	TotalVariable      decimal.Decimal
	TotalSalary        decimal.Decimal
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
