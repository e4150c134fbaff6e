package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"skywage-service/internal/domain/entity"
	"skywage-service/internal/domain/repository"
	"skywage-service/pkg/logger"
	"skywage-service/pkg/metrics"
)

// ProcessResult is returned for every upload, recoverable or not. The
// pipeline never throws past this boundary for recoverable cases.
type ProcessResult struct {
	Success              bool                        `json:"success"`
	FlightDuties         []*entity.FlightDuty        `json:"flightDuties"`
	LayoverRestPeriods   []*entity.LayoverRestPeriod `json:"layoverRestPeriods"`
	Errors               []string                    `json:"errors"`
	Warnings             []string                    `json:"warnings"`
	ReplacementPerformed bool                        `json:"replacementPerformed"`
	ReplacementRequired  bool                        `json:"replacementRequired"`
	ExistingCount        int64                       `json:"existingCount"`
}

// ExistingDataCheck reports whether a month already holds duties.
type ExistingDataCheck struct {
	Exists      bool  `json:"exists"`
	FlightCount int64 `json:"flightCount"`
}

// UploadStatus is the archive view of one upload without the file bytes.
type UploadStatus struct {
	UploadID      string                 `json:"uploadId"`
	Filename      string                 `json:"filename"`
	ProcessStatus string                 `json:"processStatus"`
	ProcessSteps  entity.ProcessSteps    `json:"processSteps"`
	ErrorDetail   string                 `json:"errorDetail,omitempty"`
	ExtractedData map[string]interface{} `json:"extractedData,omitempty"`
	ReceivedAt    time.Time              `json:"receivedAt"`
	ProcessedAt   time.Time              `json:"processedAt"`
}

// UploadProcessor runs the full ingestion pipeline for one roster upload:
// format detection, structure detection, duty building, persistence and
// monthly recalculation, wrapped by the replacement flow when the target
// month already has data.
type UploadProcessor struct {
	uploadRepo  repository.UploadRepository
	dutyRepo    repository.FlightDutyRepository
	profileRepo repository.ProfileRepository
	store       repository.RosterStore
	auditRepo   repository.AuditRepository
	formats     FormatRouter
	detector    *StructureDetector
	builder     *DutyBuilder
	rates       *RateResolver
	recalc      *RecalculationEngine
	metrics     *metrics.Metrics
	logger      logger.Logger
}

// NewUploadProcessor creates a new upload processor
func NewUploadProcessor(
	uploadRepo repository.UploadRepository,
	dutyRepo repository.FlightDutyRepository,
	profileRepo repository.ProfileRepository,
	store repository.RosterStore,
	auditRepo repository.AuditRepository,
	formats FormatRouter,
	detector *StructureDetector,
	builder *DutyBuilder,
	rates *RateResolver,
	recalc *RecalculationEngine,
	metrics *metrics.Metrics,
	logger logger.Logger,
) *UploadProcessor {
	return &UploadProcessor{
		uploadRepo:  uploadRepo,
		dutyRepo:    dutyRepo,
		profileRepo: profileRepo,
		store:       store,
		auditRepo:   auditRepo,
		formats:     formats,
		detector:    detector,
		builder:     builder,
		rates:       rates,
		recalc:      recalc,
		metrics:     metrics,
		logger:      logger,
	}
}

// SubmitUpload archives the upload and processes it synchronously.
func (p *UploadProcessor) SubmitUpload(ctx context.Context, upload *entity.RosterUpload) (*ProcessResult, error) {
	if upload.UploadID == "" {
		upload.UploadID = uuid.NewString()
	}
	upload.ReceivedAt = time.Now()
	upload.ProcessStatus = entity.StatusPending

	if err := p.uploadRepo.Save(ctx, upload); err != nil {
		return nil, fmt.Errorf("archiving upload: %w", err)
	}

	return p.ProcessUpload(ctx, upload)
}

// ProcessUpload runs the pipeline for an archived upload.
func (p *UploadProcessor) ProcessUpload(ctx context.Context, upload *entity.RosterUpload) (*ProcessResult, error) {
	started := time.Now()
	defer func() {
		p.metrics.ProcessingTime.Observe(time.Since(started).Seconds())
	}()

	log := p.logger.With("uploadId", upload.UploadID, "userId", upload.UserID,
		"month", upload.TargetMonth, "year", upload.TargetYear)
	log.Info("Starting roster upload processing", "filename", upload.Filename)

	if err := p.uploadRepo.UpdateStatusByUploadID(ctx, upload.UploadID, entity.StatusProcessing, time.Now()); err != nil {
		log.Error("Failed to update status to PROCESSING", "error", err)
		return nil, err
	}

	result := &ProcessResult{}
	steps := entity.ProcessSteps{}

	reader := p.formats.GetReader(upload.Filename, upload.MimeHint)
	if reader == nil {
		return p.finish(ctx, upload, result, steps, entity.StatusSkipped,
			fmt.Sprintf("unsupported roster format: %s", upload.Filename))
	}

	grid, err := reader.Read(upload.Data)
	if err != nil {
		return p.finish(ctx, upload, result, steps, entity.StatusFailed,
			fmt.Sprintf("reading %s roster: %v", reader.SourceType(), err))
	}

	detected, err := p.detector.Detect(grid)
	if err != nil {
		return p.finish(ctx, upload, result, steps, entity.StatusFailed, err.Error())
	}
	steps.RowsDetected = true
	p.uploadRepo.UpdateProcessStepsByUploadID(ctx, upload.UploadID, steps)

	result.Warnings = append(result.Warnings, detected.Warnings...)
	if detected.Month != upload.TargetMonth || detected.Year != upload.TargetYear {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("roster period %02d/%d differs from requested %02d/%d, requested period kept",
				detected.Month, detected.Year, upload.TargetMonth, upload.TargetYear))
	}

	position := resolvePosition(ctx, p.profileRepo, upload.UserID, upload.Position)
	rates, err := p.rates.Resolve(position, upload.TargetYear, upload.TargetMonth)
	if err != nil {
		return p.finish(ctx, upload, result, steps, entity.StatusFailed, err.Error())
	}

	var duties []*entity.FlightDuty
	for _, row := range detected.Rows {
		duty, warnings := p.builder.Build(upload.UserID, row, reader.SourceType(), rates, upload.TargetMonth, upload.TargetYear)
		result.Warnings = append(result.Warnings, warnings...)
		if duty != nil {
			duties = append(duties, duty)
		}
	}
	steps.DutiesBuilt = len(duties)
	steps.WarningCount = len(result.Warnings)
	p.uploadRepo.UpdateProcessStepsByUploadID(ctx, upload.UploadID, steps)
	p.metrics.RowWarnings.Add(float64(len(result.Warnings)))

	if len(duties) == 0 {
		return p.finish(ctx, upload, result, steps, entity.StatusSkipped,
			"no duties found in roster")
	}

	existing, err := p.dutyRepo.CountByUserAndMonth(ctx, upload.UserID, upload.TargetMonth, upload.TargetYear)
	if err != nil {
		return p.finish(ctx, upload, result, steps, entity.StatusFailed,
			fmt.Sprintf("checking existing data: %v", err))
	}

	if existing > 0 && !upload.Replace {
		// Declined or not-yet-given confirmation: nothing is touched.
		result.ReplacementRequired = true
		result.ExistingCount = existing
		log.Info("Existing data requires replacement confirmation", "existingCount", existing)
		p.uploadRepo.MarkAsProcessedByUploadID(ctx, upload.UploadID, entity.StatusSkipped,
			"existing month data, replacement not confirmed", map[string]interface{}{
				"existingCount": existing,
			})
		return result, nil
	}

	var replaced []*entity.FlightDuty
	if existing > 0 {
		replaced, err = p.dutyRepo.FindByUserAndMonth(ctx, upload.UserID, upload.TargetMonth, upload.TargetYear)
		if err != nil {
			return p.finish(ctx, upload, result, steps, entity.StatusFailed,
				fmt.Sprintf("loading duties for replacement audit: %v", err))
		}
		// Delete and reinsert run in one transaction; a failure leaves the
		// original month intact instead of empty.
		if err := p.store.ReplaceMonth(ctx, upload.UserID, upload.TargetMonth, upload.TargetYear, duties); err != nil {
			p.metrics.ErrorsCount.WithLabelValues("replace_month").Inc()
			return p.finish(ctx, upload, result, steps, entity.StatusFailed,
				fmt.Sprintf("replacing month: %v", err))
		}
		result.ReplacementPerformed = true
		result.ExistingCount = existing
	} else {
		if err := p.store.InsertMonth(ctx, duties); err != nil {
			p.metrics.ErrorsCount.WithLabelValues("insert_month").Inc()
			return p.finish(ctx, upload, result, steps, entity.StatusFailed,
				fmt.Sprintf("inserting duties: %v", err))
		}
	}
	p.metrics.DutiesCreated.Add(float64(len(duties)))

	p.appendAuditTrail(ctx, upload, replaced, duties)

	calc, pairing, err := p.recalc.Recalculate(ctx, upload.UserID, upload.TargetMonth, upload.TargetYear, position)
	if err != nil {
		return p.finish(ctx, upload, result, steps, entity.StatusFailed,
			fmt.Sprintf("recalculating month: %v", err))
	}
	steps.PairsFormed = len(pairing.Periods)
	result.Warnings = append(result.Warnings, pairing.Warnings...)
	result.FlightDuties = duties
	result.LayoverRestPeriods = pairing.Periods
	result.Success = true

	// An upload can supply the inbound leg for the previous month's open
	// layover; refresh that month when it has data.
	prevMonth, prevYear := monthBefore(upload.TargetMonth, upload.TargetYear)
	if count, err := p.dutyRepo.CountByUserAndMonth(ctx, upload.UserID, prevMonth, prevYear); err == nil && count > 0 {
		if _, _, err := p.recalc.Recalculate(ctx, upload.UserID, prevMonth, prevYear, position); err != nil {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("recalculation of adjacent month %02d/%d failed: %v", prevMonth, prevYear, err))
		}
	}

	steps.WarningCount = len(result.Warnings)
	p.uploadRepo.UpdateProcessStepsByUploadID(ctx, upload.UploadID, steps)

	extracted := map[string]interface{}{
		"dutiesBuilt":  len(duties),
		"pairsFormed":  len(pairing.Periods),
		"warningCount": len(result.Warnings),
		"totalSalary":  calc.TotalSalary.String(),
		"replaced":     result.ReplacementPerformed,
	}
	if err := p.uploadRepo.MarkAsProcessedByUploadID(ctx, upload.UploadID, entity.StatusCompleted, "", extracted); err != nil {
		log.Error("Failed to mark upload as processed", "error", err)
	}

	p.metrics.UploadsProcessed.Inc()
	log.Info("Roster upload processing completed",
		"duties", len(duties),
		"pairs", len(pairing.Periods),
		"warnings", len(result.Warnings),
		"replaced", result.ReplacementPerformed)

	return result, nil
}

// GetUploadStatus returns the archived processing state of one upload.
func (p *UploadProcessor) GetUploadStatus(ctx context.Context, uploadID string) (*UploadStatus, error) {
	upload, err := p.uploadRepo.FindByUploadID(ctx, uploadID)
	if err != nil {
		return nil, err
	}
	if upload == nil {
		return nil, fmt.Errorf("upload %s not found", uploadID)
	}
	return &UploadStatus{
		UploadID:      upload.UploadID,
		Filename:      upload.Filename,
		ProcessStatus: upload.ProcessStatus,
		ProcessSteps:  upload.ProcessSteps,
		ErrorDetail:   upload.ErrorDetail,
		ExtractedData: upload.ExtractedData,
		ReceivedAt:    upload.ReceivedAt,
		ProcessedAt:   upload.ProcessedAt,
	}, nil
}

// CheckForExistingData reports whether a month already holds duties.
func (p *UploadProcessor) CheckForExistingData(ctx context.Context, userID string, month, year int) (*ExistingDataCheck, error) {
	count, err := p.dutyRepo.CountByUserAndMonth(ctx, userID, month, year)
	if err != nil {
		return nil, err
	}
	return &ExistingDataCheck{Exists: count > 0, FlightCount: count}, nil
}

// ProcessPendingUploads retries uploads left PENDING or stuck PROCESSING,
// e.g. after a crash mid-pipeline.
func (p *UploadProcessor) ProcessPendingUploads(ctx context.Context) error {
	if err := p.uploadRepo.ResetProcessingUploads(ctx); err != nil {
		p.logger.Error("Failed to reset stale processing uploads", "error", err)
	}

	uploads, err := p.uploadRepo.FindUnprocessed(ctx, 100)
	if err != nil {
		return err
	}
	if len(uploads) == 0 {
		return nil
	}

	p.logger.Info("Processing pending uploads", "count", len(uploads))
	for _, upload := range uploads {
		if _, err := p.ProcessUpload(ctx, upload); err != nil {
			p.logger.Error("Failed to process pending upload",
				"uploadId", upload.UploadID, "error", err)
		}
	}
	return nil
}

// finish records a terminal status for recoverable pipeline outcomes.
func (p *UploadProcessor) finish(ctx context.Context, upload *entity.RosterUpload, result *ProcessResult, steps entity.ProcessSteps, status, detail string) (*ProcessResult, error) {
	result.Success = false
	result.Errors = append(result.Errors, detail)
	steps.WarningCount = len(result.Warnings)

	p.uploadRepo.UpdateProcessStepsByUploadID(ctx, upload.UploadID, steps)
	if err := p.uploadRepo.MarkAsProcessedByUploadID(ctx, upload.UploadID, status, detail, nil); err != nil {
		p.logger.Error("Failed to mark upload", "uploadId", upload.UploadID, "error", err)
	}
	if status == entity.StatusFailed {
		p.metrics.ErrorsCount.WithLabelValues("process_upload").Inc()
	}
	p.logger.Warn("Roster upload not completed",
		"uploadId", upload.UploadID, "status", status, "detail", detail)
	return result, nil
}

// appendAuditTrail writes deleted entries for replaced duties and created
// entries for new ones. Audit failures are logged, never fatal.
func (p *UploadProcessor) appendAuditTrail(ctx context.Context, upload *entity.RosterUpload, replaced, created []*entity.FlightDuty) {
	for _, old := range replaced {
		entry := &entity.AuditTrailEntry{
			FlightID:     old.ID,
			UserID:       old.UserID,
			Action:       entity.ActionDeleted,
			OldData:      dutyAuditData(old),
			ChangeReason: "month replaced by re-upload",
			CreatedAt:    time.Now(),
		}
		if err := p.auditRepo.Append(ctx, entry); err != nil {
			p.logger.Error("Failed to append audit entry", "flightId", old.ID, "error", err)
		}
	}
	for _, duty := range created {
		entry := &entity.AuditTrailEntry{
			FlightID:     duty.ID,
			UserID:       duty.UserID,
			Action:       entity.ActionCreated,
			NewData:      dutyAuditData(duty),
			ChangeReason: "roster upload " + upload.UploadID,
			CreatedAt:    time.Now(),
		}
		if err := p.auditRepo.Append(ctx, entry); err != nil {
			p.logger.Error("Failed to append audit entry", "flightId", duty.ID, "error", err)
		}
	}
}

// dutyAuditData flattens a duty for the audit trail.
func dutyAuditData(d *entity.FlightDuty) map[string]interface{} {
	return map[string]interface{}{
		"date":          d.Date.Format("2006-01-02"),
		"flightNumbers": d.FlightNumbers,
		"sectors":       d.Sectors,
		"dutyType":      string(d.DutyType),
		"reportTime":    d.ReportTime,
		"debriefTime":   d.DebriefTime,
		"dutyHours":     d.DutyHours,
		"flightPay":     d.FlightPay.String(),
		"isCrossDay":    d.IsCrossDay,
		"dataSource":    string(d.DataSource),
		"month":         d.Month,
		"year":          d.Year,
	}
}
