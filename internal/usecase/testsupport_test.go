package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"skywage-service/internal/domain/entity"
	"skywage-service/pkg/logger"
	"skywage-service/pkg/metrics"
)

// testMetrics is shared by all tests in the package; promauto registers on
// the default registry, so it must be created exactly once per test binary.
var testMetrics = metrics.NewMetrics("skywage_test")

// nopLogger satisfies logger.Logger without output.
type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

func (n nopLogger) With(...interface{}) logger.Logger { return n }

type fakeDutyRepo struct {
	mu     sync.Mutex
	duties map[string]*entity.FlightDuty
}

func newFakeDutyRepo() *fakeDutyRepo {
	return &fakeDutyRepo{duties: make(map[string]*entity.FlightDuty)}
}

func (r *fakeDutyRepo) Create(ctx context.Context, duty *entity.FlightDuty) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.duties[duty.ID] = duty
	return nil
}

func (r *fakeDutyRepo) Update(ctx context.Context, duty *entity.FlightDuty) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.duties[duty.ID]; !ok {
		return fmt.Errorf("duty %s not found", duty.ID)
	}
	r.duties[duty.ID] = duty
	return nil
}

func (r *fakeDutyRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.duties[id]; !ok {
		return fmt.Errorf("duty %s not found", id)
	}
	delete(r.duties, id)
	return nil
}

func (r *fakeDutyRepo) FindByID(ctx context.Context, id string) (*entity.FlightDuty, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	duty, ok := r.duties[id]
	if !ok {
		return nil, fmt.Errorf("duty %s not found", id)
	}
	return duty, nil
}

func (r *fakeDutyRepo) FindByUserAndMonth(ctx context.Context, userID string, month, year int) ([]*entity.FlightDuty, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*entity.FlightDuty
	for _, d := range r.duties {
		if d.UserID == userID && d.Month == month && d.Year == year {
			result = append(result, d)
		}
	}
	return result, nil
}

func (r *fakeDutyRepo) CountByUserAndMonth(ctx context.Context, userID string, month, year int) (int64, error) {
	duties, _ := r.FindByUserAndMonth(ctx, userID, month, year)
	return int64(len(duties)), nil
}

type monthKey struct {
	user  string
	month int
	year  int
}

type fakeLayoverRepo struct {
	mu      sync.Mutex
	periods map[monthKey][]*entity.LayoverRestPeriod
}

func newFakeLayoverRepo() *fakeLayoverRepo {
	return &fakeLayoverRepo{periods: make(map[monthKey][]*entity.LayoverRestPeriod)}
}

func (r *fakeLayoverRepo) ReplaceForMonth(ctx context.Context, userID string, month, year int, periods []*entity.LayoverRestPeriod) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.periods[monthKey{userID, month, year}] = periods
	return nil
}

func (r *fakeLayoverRepo) FindByUserAndMonth(ctx context.Context, userID string, month, year int) ([]*entity.LayoverRestPeriod, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.periods[monthKey{userID, month, year}], nil
}

type fakeCalcRepo struct {
	mu      sync.Mutex
	calcs   map[monthKey]*entity.MonthlyCalculation
	upserts int
}

func newFakeCalcRepo() *fakeCalcRepo {
	return &fakeCalcRepo{calcs: make(map[monthKey]*entity.MonthlyCalculation)}
}

func (r *fakeCalcRepo) Upsert(ctx context.Context, calc *entity.MonthlyCalculation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.upserts++
	key := monthKey{calc.UserID, calc.Month, calc.Year}
	if existing, ok := r.calcs[key]; ok {
		// mirror the ON CONFLICT behavior: identity survives, values move
		calc.ID = existing.ID
		calc.CreatedAt = existing.CreatedAt
	}
	r.calcs[key] = calc
	return nil
}

func (r *fakeCalcRepo) FindByUserAndMonth(ctx context.Context, userID string, month, year int) (*entity.MonthlyCalculation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	calc, ok := r.calcs[monthKey{userID, month, year}]
	if !ok {
		return nil, fmt.Errorf("no calculation for %s %02d/%d", userID, month, year)
	}
	return calc, nil
}

func (r *fakeCalcRepo) deleteForMonth(userID string, month, year int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.calcs, monthKey{userID, month, year})
}

type fakeProfileRepo struct {
	mu       sync.Mutex
	profiles map[string]*entity.Profile
}

func newFakeProfileRepo() *fakeProfileRepo {
	return &fakeProfileRepo{profiles: make(map[string]*entity.Profile)}
}

func (r *fakeProfileRepo) add(profile *entity.Profile) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.profiles[profile.ID] = profile
}

func (r *fakeProfileRepo) GetByID(ctx context.Context, id string) (*entity.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	profile, ok := r.profiles[id]
	if !ok {
		return nil, fmt.Errorf("profile %s not found", id)
	}
	return profile, nil
}

func (r *fakeProfileRepo) GetByEmail(ctx context.Context, email string) (*entity.Profile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.profiles {
		if p.Email == email {
			return p, nil
		}
	}
	return nil, fmt.Errorf("profile %s not found", email)
}

type fakeRosterStore struct {
	duties   *fakeDutyRepo
	layovers *fakeLayoverRepo
	calcs    *fakeCalcRepo
	replaces int
	inserts  int
	failNext bool
}

func (s *fakeRosterStore) InsertMonth(ctx context.Context, duties []*entity.FlightDuty) error {
	if s.failNext {
		return fmt.Errorf("forced insert failure")
	}
	s.inserts++
	for _, d := range duties {
		s.duties.Create(ctx, d)
	}
	return nil
}

func (s *fakeRosterStore) ReplaceMonth(ctx context.Context, userID string, month, year int, duties []*entity.FlightDuty) error {
	if s.failNext {
		return fmt.Errorf("forced replace failure")
	}
	s.replaces++
	existing, _ := s.duties.FindByUserAndMonth(ctx, userID, month, year)
	for _, d := range existing {
		s.duties.Delete(ctx, d.ID)
	}
	for _, d := range duties {
		s.duties.Create(ctx, d)
	}
	return nil
}

func (s *fakeRosterStore) DeleteMonth(ctx context.Context, userID string, month, year int) error {
	existing, _ := s.duties.FindByUserAndMonth(ctx, userID, month, year)
	for _, d := range existing {
		s.duties.Delete(ctx, d.ID)
	}
	if s.layovers != nil {
		s.layovers.ReplaceForMonth(ctx, userID, month, year, nil)
	}
	if s.calcs != nil {
		s.calcs.deleteForMonth(userID, month, year)
	}
	return nil
}

type fakeUploadRepo struct {
	mu      sync.Mutex
	uploads map[string]*entity.RosterUpload
}

func newFakeUploadRepo() *fakeUploadRepo {
	return &fakeUploadRepo{uploads: make(map[string]*entity.RosterUpload)}
}

func (r *fakeUploadRepo) Save(ctx context.Context, upload *entity.RosterUpload) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.uploads[upload.UploadID] = upload
	return nil
}

func (r *fakeUploadRepo) FindByUploadID(ctx context.Context, uploadID string) (*entity.RosterUpload, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.uploads[uploadID], nil
}

func (r *fakeUploadRepo) FindUnprocessed(ctx context.Context, limit int) ([]*entity.RosterUpload, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*entity.RosterUpload
	for _, u := range r.uploads {
		if u.ProcessStatus == "" || u.ProcessStatus == entity.StatusPending {
			result = append(result, u)
		}
		if len(result) == limit {
			break
		}
	}
	return result, nil
}

func (r *fakeUploadRepo) UpdateStatusByUploadID(ctx context.Context, uploadID string, status string, startedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.uploads[uploadID]
	if !ok {
		return fmt.Errorf("no upload %s", uploadID)
	}
	u.ProcessStatus = status
	if status == entity.StatusProcessing {
		u.ProcessStartedAt = startedAt
	}
	return nil
}

func (r *fakeUploadRepo) UpdateProcessStepsByUploadID(ctx context.Context, uploadID string, steps entity.ProcessSteps) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.uploads[uploadID]; ok {
		u.ProcessSteps = steps
	}
	return nil
}

func (r *fakeUploadRepo) MarkAsProcessedByUploadID(ctx context.Context, uploadID, status, errorDetail string, extractedData map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.uploads[uploadID]
	if !ok {
		return fmt.Errorf("no upload %s", uploadID)
	}
	u.ProcessStatus = status
	u.ProcessedAt = time.Now()
	u.ErrorDetail = errorDetail
	u.ExtractedData = extractedData
	return nil
}

func (r *fakeUploadRepo) ResetProcessingUploads(ctx context.Context) error {
	return nil
}

type fakeAuditRepo struct {
	mu      sync.Mutex
	entries []*entity.AuditTrailEntry
}

func (r *fakeAuditRepo) Append(ctx context.Context, entry *entity.AuditTrailEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, entry)
	return nil
}

func (r *fakeAuditRepo) FindByUser(ctx context.Context, userID string, limit int) ([]*entity.AuditTrailEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*entity.AuditTrailEntry
	for _, e := range r.entries {
		if e.UserID == userID {
			result = append(result, e)
		}
	}
	return result, nil
}

func (r *fakeAuditRepo) countByAction(action string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, e := range r.entries {
		if e.Action == action {
			count++
		}
	}
	return count
}
