package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"skywage-service/internal/domain/entity"
	"skywage-service/internal/domain/repository"
	"skywage-service/pkg/logger"
	"skywage-service/pkg/metrics"
)

// Recalculation states for one (user, month, year) key.
const (
	recalcIdle        = "IDLE"
	recalcRecomputing = "RECOMPUTING"
	recalcPersisted   = "PERSISTED"
	recalcFailed      = "FAILED"
)

// MonthKey identifies one calculation month.
type MonthKey struct {
	Month int
	Year  int
}

// RecalcResult reports the outcome of recomputing a set of months. Each
// month is an independent unit of work; one failure never blocks the rest.
type RecalcResult struct {
	Success bool
	Errors  []string
}

// RecalculationEngine re-derives a month's totals from the complete current
// duty set. It never patches a stale total incrementally, which makes the
// recomputation idempotent: unchanged inputs produce an identical row.
type RecalculationEngine struct {
	dutyRepo    repository.FlightDutyRepository
	layoverRepo repository.LayoverRepository
	calcRepo    repository.MonthlyCalculationRepository
	rates       *RateResolver
	pairer      *LayoverPairer
	calculator  *PayCalculator
	metrics     *metrics.Metrics
	logger      logger.Logger
}

// NewRecalculationEngine creates a new recalculation engine
func NewRecalculationEngine(
	dutyRepo repository.FlightDutyRepository,
	layoverRepo repository.LayoverRepository,
	calcRepo repository.MonthlyCalculationRepository,
	rates *RateResolver,
	pairer *LayoverPairer,
	calculator *PayCalculator,
	metrics *metrics.Metrics,
	logger logger.Logger,
) *RecalculationEngine {
	return &RecalculationEngine{
		dutyRepo:    dutyRepo,
		layoverRepo: layoverRepo,
		calcRepo:    calcRepo,
		rates:       rates,
		pairer:      pairer,
		calculator:  calculator,
		metrics:     metrics,
		logger:      logger,
	}
}

// Recalculate recomputes and persists the monthly totals for one key. The
// pairing window includes the following month so layovers spanning the
// boundary resolve once both months are loaded.
func (e *RecalculationEngine) Recalculate(ctx context.Context, userID string, month, year int, position entity.Position) (*entity.MonthlyCalculation, PairingResult, error) {
	log := e.logger.With("userId", userID, "month", month, "year", year)
	log.Info("Monthly recalculation state", "state", recalcRecomputing, "from", recalcIdle)

	fail := func(err error) (*entity.MonthlyCalculation, PairingResult, error) {
		log.Error("Monthly recalculation state", "state", recalcFailed, "error", err)
		if e.metrics != nil {
			e.metrics.ErrorsCount.WithLabelValues("recalculate").Inc()
		}
		return nil, PairingResult{}, err
	}

	rates, err := e.rates.Resolve(position, year, month)
	if err != nil {
		return fail(err)
	}

	duties, err := e.dutyRepo.FindByUserAndMonth(ctx, userID, month, year)
	if err != nil {
		return fail(fmt.Errorf("loading duties: %w", err))
	}

	nextMonth, nextYear := monthAfter(month, year)
	window, err := e.dutyRepo.FindByUserAndMonth(ctx, userID, nextMonth, nextYear)
	if err != nil {
		return fail(fmt.Errorf("loading pairing window: %w", err))
	}

	pairing := e.pairer.Pair(append(append([]*entity.FlightDuty{}, duties...), window...), rates, month, year)

	if err := e.layoverRepo.ReplaceForMonth(ctx, userID, month, year, pairing.Periods); err != nil {
		return fail(fmt.Errorf("replacing rest periods: %w", err))
	}

	calc := e.aggregate(userID, month, year, rates, duties, pairing.Periods)
	if err := e.calcRepo.Upsert(ctx, calc); err != nil {
		return fail(fmt.Errorf("persisting monthly calculation: %w", err))
	}

	if e.metrics != nil {
		e.metrics.MonthsRecomputed.Inc()
	}
	log.Info("Monthly recalculation state",
		"state", recalcPersisted,
		"totalSalary", calc.TotalSalary.String(),
		"duties", len(duties),
		"restPeriods", len(pairing.Periods))

	return calc, pairing, nil
}

// RecalculateMonths recomputes several months, each independently. Errors
// are collected per month.
func (e *RecalculationEngine) RecalculateMonths(ctx context.Context, userID string, months []MonthKey, position entity.Position) RecalcResult {
	result := RecalcResult{Success: true}
	for _, key := range months {
		if _, _, err := e.Recalculate(ctx, userID, key.Month, key.Year, position); err != nil {
			result.Success = false
			result.Errors = append(result.Errors,
				fmt.Sprintf("month %02d/%d: %v", key.Month, key.Year, err))
		}
	}
	return result
}

// aggregate derives every monthly total from scratch. Components arrive
// already rounded; sums are not re-rounded.
func (e *RecalculationEngine) aggregate(userID string, month, year int, rates entity.SalaryRates, duties []*entity.FlightDuty, periods []*entity.LayoverRestPeriod) *entity.MonthlyCalculation {
	totalDutyHours := 0.0
	flightPay := decimal.Zero
	asbyCount := 0

	for _, d := range duties {
		switch d.DutyType {
		case entity.DutyTurnaround, entity.DutyLayover:
			totalDutyHours += d.DutyHours
		case entity.DutyAsby:
			asbyCount++
		}
		flightPay = flightPay.Add(d.FlightPay)
	}

	totalRestHours := 0.0
	perDiemPay := decimal.Zero
	for _, p := range periods {
		totalRestHours += p.RestHours
		perDiemPay = perDiemPay.Add(p.PerDiemPay)
	}

	asbyPay := e.calculator.AsbyPay(asbyCount, rates)
	totalFixed := rates.BasicSalary.Add(rates.HousingAllowance).Add(rates.TransportAllowance)
	totalVariable := flightPay.Add(perDiemPay).Add(asbyPay)

	now := time.Now()
	return &entity.MonthlyCalculation{
		ID:                 uuid.NewString(),
		UserID:             userID,
		Month:              month,
		Year:               year,
		BasicSalary:        rates.BasicSalary,
		HousingAllowance:   rates.HousingAllowance,
		TransportAllowance: rates.TransportAllowance,
		TotalDutyHours:     totalDutyHours,
		FlightPay:          flightPay,
		TotalRestHours:     totalRestHours,
		PerDiemPay:         perDiemPay,
		AsbyCount:          asbyCount,
		AsbyPay:            asbyPay,
		TotalFixed:         totalFixed,
		TotalVariable:      totalVariable,
		TotalSalary:        totalFixed.Add(totalVariable),
		CreatedAt:          now,
		UpdatedAt:          now,
	}
}

func monthAfter(month, year int) (int, int) {
	if month == 12 {
		return 1, year + 1
	}
	return month + 1, year
}

func monthBefore(month, year int) (int, int) {
	if month == 1 {
		return 12, year - 1
	}
	return month - 1, year
}
