package usecase

import (
	"fmt"

	"github.com/shopspring/decimal"

	"skywage-service/internal/domain/entity"
)

// RateEra is one effective-dated rate version. The table is append-only:
// a new pay agreement adds an era, existing eras are never edited.
type RateEra struct {
	EffectiveYear  int
	EffectiveMonth int
	Rates          map[entity.Position]entity.SalaryRates
}

// RateResolver resolves the rate set in force for a position at a given
// month. Pure lookup, no storage.
type RateResolver struct {
	eras []RateEra
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// NewRateResolver builds the resolver with the versioned rate table.
// The July 2025 pay revision raised basic salary and housing allowance;
// hourly, per diem and standby terms were unchanged.
func NewRateResolver() *RateResolver {
	return &RateResolver{
		eras: []RateEra{
			{
				EffectiveYear:  2020,
				EffectiveMonth: 1,
				Rates: map[entity.Position]entity.SalaryRates{
					entity.PositionCCM: {
						Position:           entity.PositionCCM,
						BasicSalary:        dec("3275"),
						HousingAllowance:   dec("4000"),
						TransportAllowance: dec("1000"),
						HourlyRate:         dec("50"),
						PerDiemRate:        dec("8.82"),
						AsbyHours:          dec("4"),
						RecurrentDayRate:   dec("200"),
					},
					entity.PositionSCCM: {
						Position:           entity.PositionSCCM,
						BasicSalary:        dec("4275"),
						HousingAllowance:   dec("5000"),
						TransportAllowance: dec("1000"),
						HourlyRate:         dec("62"),
						PerDiemRate:        dec("8.82"),
						AsbyHours:          dec("4"),
						RecurrentDayRate:   dec("248"),
					},
				},
			},
			{
				EffectiveYear:  2025,
				EffectiveMonth: 7,
				Rates: map[entity.Position]entity.SalaryRates{
					entity.PositionCCM: {
						Position:           entity.PositionCCM,
						BasicSalary:        dec("3405"),
						HousingAllowance:   dec("4500"),
						TransportAllowance: dec("1000"),
						HourlyRate:         dec("50"),
						PerDiemRate:        dec("8.82"),
						AsbyHours:          dec("4"),
						RecurrentDayRate:   dec("200"),
					},
					entity.PositionSCCM: {
						Position:           entity.PositionSCCM,
						BasicSalary:        dec("4446"),
						HousingAllowance:   dec("5500"),
						TransportAllowance: dec("1000"),
						HourlyRate:         dec("62"),
						PerDiemRate:        dec("8.82"),
						AsbyHours:          dec("4"),
						RecurrentDayRate:   dec("248"),
					},
				},
			},
		},
	}
}

// Resolve returns the last rate set whose effective date is at or before
// (year, month). A zero year or month selects the legacy table, which keeps
// call sites that predate rate versioning working unchanged.
func (r *RateResolver) Resolve(position entity.Position, year, month int) (entity.SalaryRates, error) {
	era := r.eras[0]
	if year > 0 && month > 0 {
		for _, candidate := range r.eras {
			if candidate.EffectiveYear > year ||
				(candidate.EffectiveYear == year && candidate.EffectiveMonth > month) {
				break
			}
			era = candidate
		}
	}

	rates, ok := era.Rates[position]
	if !ok {
		return entity.SalaryRates{}, fmt.Errorf("no salary rates for position %q", position)
	}
	return rates, nil
}
