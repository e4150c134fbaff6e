package usecase

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"skywage-service/internal/domain/entity"
	"skywage-service/pkg/logger"
	"skywage-service/pkg/utils"
)

// lowConfidenceThreshold marks classifications worth a row warning.
const lowConfidenceThreshold = 0.8

// DutyBuilder combines a detected row, parsed times and a classification
// into a FlightDuty. Rows it cannot build become warnings, never aborts.
type DutyBuilder struct {
	classifier *utils.DutyClassifier
	calculator *PayCalculator
	logger     logger.Logger
}

// NewDutyBuilder creates a new duty builder
func NewDutyBuilder(classifier *utils.DutyClassifier, calculator *PayCalculator, logger logger.Logger) *DutyBuilder {
	return &DutyBuilder{
		classifier: classifier,
		calculator: calculator,
		logger:     logger,
	}
}

// Build returns the duty for one roster row, or nil when the row carries no
// duty (off days, unrecognizable rows, unparseable times). Warnings explain
// every skipped or best-guessed row.
func (b *DutyBuilder) Build(userID string, row DutyRow, source entity.DataSource, rates entity.SalaryRates, month, year int) (*entity.FlightDuty, []string) {
	cls := b.classifier.Classify(row.DutyText, row.DetailsText)

	warnings := append([]string{}, cls.Warnings...)
	if cls.Confidence < lowConfidenceThreshold && cls.DutyType != entity.DutyUnknown {
		warnings = append(warnings,
			fmt.Sprintf("row %d: classified as %s with confidence %.2f", row.Index+1, cls.DutyType, cls.Confidence))
	}

	switch cls.DutyType {
	case entity.DutyOff:
		return nil, nil
	case entity.DutyUnknown:
		warnings = append(warnings, fmt.Sprintf("row %d: skipped, duty not recognized", row.Index+1))
		return nil, warnings
	}

	report, _, err := utils.ParseTimeToken(row.ReportRaw, row.Index+1)
	if err != nil {
		warnings = append(warnings, fmt.Sprintf("row %d: report time: %v, row skipped", row.Index+1, err))
		return nil, warnings
	}
	debrief, crossDay, err := utils.ParseTimeToken(row.DebriefRaw, row.Index+1)
	if err != nil {
		warnings = append(warnings, fmt.Sprintf("row %d: debrief time: %v, row skipped", row.Index+1, err))
		return nil, warnings
	}

	// Turnarounds list several legs on one calendar row; report is the
	// first leg's report and debrief the last leg's, so the duration below
	// already spans first report to last debrief.
	dutyHours := utils.Duration(report, debrief, crossDay)
	if crossDay || debrief.TotalMinutes < report.TotalMinutes {
		crossDay = true
	}

	now := time.Now()
	duty := &entity.FlightDuty{
		ID:            uuid.NewString(),
		UserID:        userID,
		Date:          row.Date,
		FlightNumbers: cls.FlightNumbers,
		Sectors:       cls.Sectors,
		DutyType:      cls.DutyType,
		ReportTime:    report.String(),
		DebriefTime:   debrief.String(),
		DutyHours:     dutyHours,
		IsCrossDay:    crossDay,
		DataSource:    source,
		Month:         month,
		Year:          year,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	duty.FlightPay = b.calculator.FlightPay(duty, rates)

	return duty, warnings
}
