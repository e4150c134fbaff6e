package usecase

import (
	"github.com/shopspring/decimal"

	"skywage-service/internal/domain/entity"
)

// PayCalculator computes the pay components of duties and rest periods.
// Every component is rounded half-up to 2 decimal places exactly once, at
// the point it is computed; sums of components are never re-rounded.
type PayCalculator struct{}

// NewPayCalculator creates a new pay calculator
func NewPayCalculator() *PayCalculator {
	return &PayCalculator{}
}

// round2 rounds half-up to 2 decimal places. Pay amounts are always
// non-negative, so decimal's round-half-away-from-zero is half-up here.
func round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// FlightPay returns the hourly pay component for one duty. Airport standby
// is paid as a fixed monthly component (see AsbyPay), home standby is
// unpaid, recurrent training is a flat day rate carried on the duty.
func (c *PayCalculator) FlightPay(duty *entity.FlightDuty, rates entity.SalaryRates) decimal.Decimal {
	switch duty.DutyType {
	case entity.DutyTurnaround, entity.DutyLayover:
		return round2(decimal.NewFromFloat(duty.DutyHours).Mul(rates.HourlyRate))
	case entity.DutyRecurrent:
		return round2(rates.RecurrentDayRate)
	default:
		return decimal.Zero
	}
}

// PerDiemPay returns the rest-based per diem for a layover rest period.
func (c *PayCalculator) PerDiemPay(restHours float64, rates entity.SalaryRates) decimal.Decimal {
	return round2(decimal.NewFromFloat(restHours).Mul(rates.PerDiemRate))
}

// AsbyPay returns the fixed pay for a number of airport standby duties.
func (c *PayCalculator) AsbyPay(count int, rates entity.SalaryRates) decimal.Decimal {
	if count <= 0 {
		return decimal.Zero
	}
	return round2(rates.AsbyFixedPay()).Mul(decimal.NewFromInt(int64(count)))
}
