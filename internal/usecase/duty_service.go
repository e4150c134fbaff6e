package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"skywage-service/internal/domain/entity"
	"skywage-service/internal/domain/repository"
	"skywage-service/pkg/logger"
	"skywage-service/pkg/metrics"
	"skywage-service/pkg/utils"
)

// ManualDutyInput is the payload for creating or editing a single duty.
type ManualDutyInput struct {
	UserID        string          `json:"userId"`
	Date          time.Time       `json:"date"`
	FlightNumbers []string        `json:"flightNumbers"`
	Sectors       []string        `json:"sectors"`
	DutyType      entity.DutyType `json:"dutyType"`
	ReportTime    string          `json:"reportTime"`
	DebriefTime   string          `json:"debriefTime"`
	Position      entity.Position `json:"position"`
	Month         int             `json:"month"`
	Year          int             `json:"year"`
}

// BulkDeleteResult reports per-duty outcomes of a bulk deletion.
type BulkDeleteResult struct {
	Deleted int          `json:"deleted"`
	Errors  []string     `json:"errors"`
	Recalc  RecalcResult `json:"recalc"`
	Months  []MonthKey   `json:"months"`
}

// DutyService handles manual duty entry, edits and deletions. Every mutation
// leaves an audit entry and triggers a recalculation of the affected months.
type DutyService struct {
	dutyRepo    repository.FlightDutyRepository
	profileRepo repository.ProfileRepository
	store       repository.RosterStore
	auditRepo   repository.AuditRepository
	rates       *RateResolver
	calc        *PayCalculator
	recalc      *RecalculationEngine
	metrics     *metrics.Metrics
	logger      logger.Logger
}

// NewDutyService creates a new duty service
func NewDutyService(
	dutyRepo repository.FlightDutyRepository,
	profileRepo repository.ProfileRepository,
	store repository.RosterStore,
	auditRepo repository.AuditRepository,
	rates *RateResolver,
	calc *PayCalculator,
	recalc *RecalculationEngine,
	metrics *metrics.Metrics,
	logger logger.Logger,
) *DutyService {
	return &DutyService{
		dutyRepo:    dutyRepo,
		profileRepo: profileRepo,
		store:       store,
		auditRepo:   auditRepo,
		rates:       rates,
		calc:        calc,
		recalc:      recalc,
		metrics:     metrics,
		logger:      logger,
	}
}

// Create inserts a manually entered duty and recomputes the months it
// affects. A new inbound leg can close the previous month's open layover,
// so the month before is refreshed too when it holds duties.
func (s *DutyService) Create(ctx context.Context, input ManualDutyInput) (*entity.FlightDuty, error) {
	position := resolvePosition(ctx, s.profileRepo, input.UserID, input.Position)
	duty, err := s.buildDuty(input, position, entity.SourceManual)
	if err != nil {
		return nil, err
	}

	if err := s.dutyRepo.Create(ctx, duty); err != nil {
		return nil, fmt.Errorf("creating duty: %w", err)
	}
	s.metrics.DutiesCreated.Inc()

	s.appendAudit(ctx, duty.ID, duty.UserID, entity.ActionCreated, nil, dutyAuditData(duty), "manual entry")

	months := s.monthsWithNeighbors(ctx, duty.UserID, []MonthKey{{Month: duty.Month, Year: duty.Year}})
	if res := s.recalc.RecalculateMonths(ctx, duty.UserID, months, position); !res.Success {
		return nil, fmt.Errorf("recalculating after create: %v", res.Errors)
	}

	s.logger.Info("Manual duty created", "dutyId", duty.ID, "userId", duty.UserID,
		"dutyType", duty.DutyType, "month", duty.Month, "year", duty.Year)
	return duty, nil
}

// Update replaces an existing duty's fields, re-derives its hours and pay
// and recomputes every month the edit touches.
func (s *DutyService) Update(ctx context.Context, id string, input ManualDutyInput) (*entity.FlightDuty, error) {
	existing, err := s.dutyRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading duty %s: %w", id, err)
	}

	position := resolvePosition(ctx, s.profileRepo, input.UserID, input.Position)
	updated, err := s.buildDuty(input, position, entity.SourceEdited)
	if err != nil {
		return nil, err
	}
	updated.ID = existing.ID
	updated.CreatedAt = existing.CreatedAt

	if err := s.dutyRepo.Update(ctx, updated); err != nil {
		return nil, fmt.Errorf("updating duty: %w", err)
	}

	s.appendAudit(ctx, updated.ID, updated.UserID, entity.ActionUpdated,
		dutyAuditData(existing), dutyAuditData(updated), "manual edit")

	months := []MonthKey{{Month: updated.Month, Year: updated.Year}}
	if existing.Month != updated.Month || existing.Year != updated.Year {
		months = append(months, MonthKey{Month: existing.Month, Year: existing.Year})
	}
	months = s.monthsWithNeighbors(ctx, updated.UserID, months)
	if res := s.recalc.RecalculateMonths(ctx, updated.UserID, months, position); !res.Success {
		return nil, fmt.Errorf("recalculating after update: %v", res.Errors)
	}

	s.logger.Info("Duty updated", "dutyId", updated.ID, "userId", updated.UserID)
	return updated, nil
}

// Delete removes one duty and recomputes the months it affects. Deleting an
// inbound leg reopens the previous month's layover, so that month's rest
// periods and per diem must be re-derived as well.
func (s *DutyService) Delete(ctx context.Context, id string, position entity.Position) error {
	existing, err := s.dutyRepo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("loading duty %s: %w", id, err)
	}

	if err := s.dutyRepo.Delete(ctx, id); err != nil {
		return fmt.Errorf("deleting duty: %w", err)
	}

	s.appendAudit(ctx, existing.ID, existing.UserID, entity.ActionDeleted,
		dutyAuditData(existing), nil, "manual delete")

	position = resolvePosition(ctx, s.profileRepo, existing.UserID, position)
	months := s.monthsWithNeighbors(ctx, existing.UserID, []MonthKey{{Month: existing.Month, Year: existing.Year}})
	if res := s.recalc.RecalculateMonths(ctx, existing.UserID, months, position); !res.Success {
		return fmt.Errorf("recalculating after delete: %v", res.Errors)
	}

	s.logger.Info("Duty deleted", "dutyId", id, "userId", existing.UserID)
	return nil
}

// BulkDelete removes several duties concurrently, then recomputes each
// affected month exactly once.
func (s *DutyService) BulkDelete(ctx context.Context, userID string, ids []string, position entity.Position) BulkDeleteResult {
	var (
		mu     sync.Mutex
		wg     sync.WaitGroup
		result BulkDeleteResult
		months = make(map[MonthKey]bool)
	)

	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()

			existing, err := s.dutyRepo.FindByID(ctx, id)
			if err != nil {
				mu.Lock()
				result.Errors = append(result.Errors, fmt.Sprintf("duty %s: %v", id, err))
				mu.Unlock()
				return
			}
			if existing.UserID != userID {
				mu.Lock()
				result.Errors = append(result.Errors, fmt.Sprintf("duty %s: not owned by user", id))
				mu.Unlock()
				return
			}
			if err := s.dutyRepo.Delete(ctx, id); err != nil {
				mu.Lock()
				result.Errors = append(result.Errors, fmt.Sprintf("duty %s: %v", id, err))
				mu.Unlock()
				return
			}

			s.appendAudit(ctx, existing.ID, existing.UserID, entity.ActionDeleted,
				dutyAuditData(existing), nil, "bulk delete")

			mu.Lock()
			result.Deleted++
			months[MonthKey{Month: existing.Month, Year: existing.Year}] = true
			mu.Unlock()
		}(id)
	}
	wg.Wait()

	for key := range months {
		result.Months = append(result.Months, key)
	}
	result.Months = s.monthsWithNeighbors(ctx, userID, result.Months)
	position = resolvePosition(ctx, s.profileRepo, userID, position)
	result.Recalc = s.recalc.RecalculateMonths(ctx, userID, result.Months, position)

	s.logger.Info("Bulk delete completed", "userId", userID,
		"requested", len(ids), "deleted", result.Deleted, "errors", len(result.Errors))
	return result
}

// DeleteMonth removes a month's duties, rest periods and totals in one
// transaction, audits every removed duty and refreshes the previous month
// whose pairing window included the deleted duties.
func (s *DutyService) DeleteMonth(ctx context.Context, userID string, month, year int, position entity.Position) (int, error) {
	existing, err := s.dutyRepo.FindByUserAndMonth(ctx, userID, month, year)
	if err != nil {
		return 0, fmt.Errorf("loading duties: %w", err)
	}
	if len(existing) == 0 {
		return 0, nil
	}

	if err := s.store.DeleteMonth(ctx, userID, month, year); err != nil {
		return 0, fmt.Errorf("deleting month: %w", err)
	}
	for _, d := range existing {
		s.appendAudit(ctx, d.ID, d.UserID, entity.ActionDeleted, dutyAuditData(d), nil, "month deleted")
	}

	position = resolvePosition(ctx, s.profileRepo, userID, position)
	prevMonth, prevYear := monthBefore(month, year)
	if count, err := s.dutyRepo.CountByUserAndMonth(ctx, userID, prevMonth, prevYear); err == nil && count > 0 {
		if _, _, err := s.recalc.Recalculate(ctx, userID, prevMonth, prevYear, position); err != nil {
			return len(existing), fmt.Errorf("recalculating %02d/%d: %w", prevMonth, prevYear, err)
		}
	}

	s.logger.Info("Month deleted", "userId", userID, "month", month, "year", year,
		"duties", len(existing))
	return len(existing), nil
}

// AuditTrail lists the most recent audit entries for one crew member.
func (s *DutyService) AuditTrail(ctx context.Context, userID string, limit int) ([]*entity.AuditTrailEntry, error) {
	if userID == "" {
		return nil, fmt.Errorf("userId is required")
	}
	if limit <= 0 {
		limit = 50
	}
	return s.auditRepo.FindByUser(ctx, userID, limit)
}

// monthsWithNeighbors expands each mutated month with the month before it
// when that month holds duties. A duty in month M can close or reopen a
// layover whose outbound leg sits in M-1, and that rest period belongs to
// M-1's totals.
func (s *DutyService) monthsWithNeighbors(ctx context.Context, userID string, months []MonthKey) []MonthKey {
	seen := make(map[MonthKey]bool)
	var expanded []MonthKey
	add := func(key MonthKey) {
		if !seen[key] {
			seen[key] = true
			expanded = append(expanded, key)
		}
	}
	for _, key := range months {
		add(key)
		prevMonth, prevYear := monthBefore(key.Month, key.Year)
		prev := MonthKey{Month: prevMonth, Year: prevYear}
		if seen[prev] {
			continue
		}
		if count, err := s.dutyRepo.CountByUserAndMonth(ctx, userID, prevMonth, prevYear); err == nil && count > 0 {
			add(prev)
		}
	}
	return expanded
}

// resolvePosition prefers the position stored on the crew member's profile
// over the one supplied with the request. A missing profile falls back to
// the requested position.
func resolvePosition(ctx context.Context, profiles repository.ProfileRepository, userID string, requested entity.Position) entity.Position {
	profile, err := profiles.GetByID(ctx, userID)
	if err != nil || profile == nil {
		return requested
	}
	if profile.Position == entity.PositionCCM || profile.Position == entity.PositionSCCM {
		return profile.Position
	}
	return requested
}

// buildDuty validates the input and derives hours, cross-day flag and pay.
func (s *DutyService) buildDuty(input ManualDutyInput, position entity.Position, source entity.DataSource) (*entity.FlightDuty, error) {
	if input.UserID == "" {
		return nil, fmt.Errorf("userId is required")
	}
	if input.Month < 1 || input.Month > 12 {
		return nil, fmt.Errorf("month %d out of range", input.Month)
	}

	rates, err := s.rates.Resolve(position, input.Year, input.Month)
	if err != nil {
		return nil, err
	}

	report, _, err := utils.ParseTimeToken(input.ReportTime, 0)
	if err != nil {
		return nil, fmt.Errorf("report time: %w", err)
	}
	debrief, crossDay, err := utils.ParseTimeToken(input.DebriefTime, 0)
	if err != nil {
		return nil, fmt.Errorf("debrief time: %w", err)
	}

	dutyHours := utils.Duration(report, debrief, crossDay)
	if debrief.TotalMinutes < report.TotalMinutes {
		crossDay = true
	}

	now := time.Now()
	duty := &entity.FlightDuty{
		ID:            uuid.NewString(),
		UserID:        input.UserID,
		Date:          input.Date,
		FlightNumbers: input.FlightNumbers,
		Sectors:       input.Sectors,
		DutyType:      input.DutyType,
		ReportTime:    report.String(),
		DebriefTime:   debrief.String(),
		DutyHours:     dutyHours,
		IsCrossDay:    crossDay,
		DataSource:    source,
		Month:         input.Month,
		Year:          input.Year,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	duty.FlightPay = s.calc.FlightPay(duty, rates)
	return duty, nil
}

func (s *DutyService) appendAudit(ctx context.Context, flightID, userID, action string, oldData, newData map[string]interface{}, reason string) {
	entry := &entity.AuditTrailEntry{
		FlightID:     flightID,
		UserID:       userID,
		Action:       action,
		OldData:      oldData,
		NewData:      newData,
		ChangeReason: reason,
		CreatedAt:    time.Now(),
	}
	if err := s.auditRepo.Append(ctx, entry); err != nil {
		s.logger.Error("Failed to append audit entry", "flightId", flightID, "error", err)
	}
}
