package usecase

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"skywage-service/internal/domain/entity"
	"skywage-service/pkg/logger"
	"skywage-service/pkg/utils"
)

// PairingResult carries the rest periods formed for one month plus the
// warnings for layover legs that found no partner.
type PairingResult struct {
	Periods  []*entity.LayoverRestPeriod
	Warnings []string
}

// LayoverPairer links outbound and inbound layover legs and computes the
// rest duration between them. Rests of several days (up to multi-day
// layovers of ~96h) fall out of the date arithmetic naturally.
type LayoverPairer struct {
	calculator *PayCalculator
	homeBase   string
	logger     logger.Logger
}

// NewLayoverPairer creates a new layover pairer
func NewLayoverPairer(calculator *PayCalculator, homeBase string, logger logger.Logger) *LayoverPairer {
	return &LayoverPairer{
		calculator: calculator,
		homeBase:   strings.ToUpper(homeBase),
		logger:     logger,
	}
}

// Pair greedily scans the duties in date order. Outbound legs are paired
// with the next unmatched inbound leg that lands back at the home base.
// The duty slice may include a trailing window from the following month so
// layovers spanning a month boundary still pair; only outbound legs inside
// (month, year) produce rest periods, attributed to that month.
func (p *LayoverPairer) Pair(duties []*entity.FlightDuty, rates entity.SalaryRates, month, year int) PairingResult {
	layovers := make([]*entity.FlightDuty, 0, len(duties))
	for _, d := range duties {
		if d.DutyType == entity.DutyLayover {
			layovers = append(layovers, d)
		}
	}
	sort.Slice(layovers, func(i, j int) bool {
		if !layovers[i].Date.Equal(layovers[j].Date) {
			return layovers[i].Date.Before(layovers[j].Date)
		}
		return layovers[i].ReportTime < layovers[j].ReportTime
	})

	var result PairingResult
	matched := make(map[string]bool)

	for i, out := range layovers {
		if matched[out.ID] || p.isInbound(out) {
			continue
		}
		if out.Month != month || out.Year != year {
			// window duties participate only as inbound partners
			continue
		}

		var in *entity.FlightDuty
		for j := i + 1; j < len(layovers); j++ {
			candidate := layovers[j]
			if matched[candidate.ID] || !p.isInbound(candidate) {
				continue
			}
			in = candidate
			break
		}
		if in == nil {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("no pair found for layover %s on %s", strings.Join(out.Sectors, " "), out.Date.Format(utils.DATE_LAYOUT)))
			continue
		}

		restStart, ok := dutyDebriefAt(out)
		if !ok {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("layover on %s has no usable debrief time", out.Date.Format(utils.DATE_LAYOUT)))
			continue
		}
		restEnd, ok := dutyReportAt(in)
		if !ok {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("layover on %s has no usable report time", in.Date.Format(utils.DATE_LAYOUT)))
			continue
		}

		restHours := restEnd.Sub(restStart).Hours()
		if restHours < 0 {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("inbound on %s reports before outbound debrief, legs left unpaired", in.Date.Format(utils.DATE_LAYOUT)))
			continue
		}

		matched[out.ID] = true
		matched[in.ID] = true

		now := time.Now()
		result.Periods = append(result.Periods, &entity.LayoverRestPeriod{
			ID:               uuid.NewString(),
			UserID:           out.UserID,
			OutboundFlightID: out.ID,
			InboundFlightID:  in.ID,
			RestStartTime:    restStart,
			RestEndTime:      restEnd,
			RestHours:        restHours,
			PerDiemPay:       p.calculator.PerDiemPay(restHours, rates),
			Month:            month,
			Year:             year,
			CreatedAt:        now,
			UpdatedAt:        now,
		})
	}

	return result
}

// isInbound reports whether the duty's last sector lands at the home base.
func (p *LayoverPairer) isInbound(d *entity.FlightDuty) bool {
	if len(d.Sectors) == 0 {
		return false
	}
	last := d.Sectors[len(d.Sectors)-1]
	parts := strings.SplitN(last, "-", 2)
	return len(parts) == 2 && strings.ToUpper(parts[1]) == p.homeBase
}

// dutyDebriefAt anchors the duty's debrief time on its calendar date,
// rolling to the next day when the debrief crossed midnight.
func dutyDebriefAt(d *entity.FlightDuty) (time.Time, bool) {
	tv, _, err := utils.ParseTimeToken(d.DebriefTime, 0)
	if err != nil {
		return time.Time{}, false
	}
	at := d.Date.Add(time.Duration(tv.TotalMinutes) * time.Minute)
	if d.IsCrossDay {
		at = at.AddDate(0, 0, 1)
	}
	return at, true
}

// dutyReportAt anchors the duty's report time on its calendar date.
func dutyReportAt(d *entity.FlightDuty) (time.Time, bool) {
	tv, _, err := utils.ParseTimeToken(d.ReportTime, 0)
	if err != nil {
		return time.Time{}, false
	}
	return d.Date.Add(time.Duration(tv.TotalMinutes) * time.Minute), true
}
