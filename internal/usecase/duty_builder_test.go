package usecase

import (
	"strings"
	"testing"
	"time"

	"skywage-service/internal/domain/entity"
	"skywage-service/pkg/utils"
)

func newTestBuilder() *DutyBuilder {
	classifier := utils.NewDutyClassifier("DXB", nopLogger{})
	return NewDutyBuilder(classifier, NewPayCalculator(), nopLogger{})
}

func testRow(dutyText, detailsText, report, debrief string) DutyRow {
	return DutyRow{
		Index:       5,
		Date:        time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC),
		DutyText:    dutyText,
		DetailsText: detailsText,
		ReportRaw:   report,
		DebriefRaw:  debrief,
	}
}

func TestBuild_Turnaround(t *testing.T) {
	b := newTestBuilder()
	rates := mustRates(t, entity.PositionCCM, 2025, 6)

	row := testRow("FZ549 FZ550", "DXB - BOM BOM - DXB", "09:20", "17:50")
	duty, warnings := b.Build("user-1", row, entity.SourceCSV, rates, 6, 2025)
	if duty == nil {
		t.Fatalf("expected duty, got nil (warnings: %v)", warnings)
	}

	if duty.DutyType != entity.DutyTurnaround {
		t.Errorf("duty type = %s, want turnaround", duty.DutyType)
	}
	if duty.DutyHours != 8.5 {
		t.Errorf("duty hours = %v, want 8.5", duty.DutyHours)
	}
	if duty.FlightPay.String() != "425" {
		t.Errorf("flight pay = %s, want 425", duty.FlightPay.String())
	}
	if duty.IsCrossDay {
		t.Error("same-day duty marked cross-day")
	}
	if len(duty.FlightNumbers) != 2 {
		t.Errorf("flight numbers = %v, want 2 entries", duty.FlightNumbers)
	}
	if duty.DataSource != entity.SourceCSV {
		t.Errorf("data source = %s, want csv", duty.DataSource)
	}
}

func TestBuild_CrossDayMarker(t *testing.T) {
	b := newTestBuilder()
	rates := mustRates(t, entity.PositionCCM, 2025, 6)

	row := testRow("FZ1793", "DXB - VKO", "22:00", "05:45¹")
	duty, _ := b.Build("user-1", row, entity.SourceCSV, rates, 6, 2025)
	if duty == nil {
		t.Fatal("expected duty, got nil")
	}

	if !duty.IsCrossDay {
		t.Error("cross-day marker not carried onto the duty")
	}
	if duty.DutyHours != 7.75 {
		t.Errorf("duty hours = %v, want 7.75", duty.DutyHours)
	}
	if duty.DebriefTime != "05:45" {
		t.Errorf("debrief time = %q, want 05:45", duty.DebriefTime)
	}
}

func TestBuild_OffDayProducesNothing(t *testing.T) {
	b := newTestBuilder()
	rates := mustRates(t, entity.PositionCCM, 2025, 6)

	duty, warnings := b.Build("user-1", testRow("Day off", "", "", ""), entity.SourceCSV, rates, 6, 2025)
	if duty != nil {
		t.Fatalf("off day built a duty: %+v", duty)
	}
	if len(warnings) != 0 {
		t.Errorf("off day produced warnings: %v", warnings)
	}
}

func TestBuild_UnknownRowWarnsAndSkips(t *testing.T) {
	b := newTestBuilder()
	rates := mustRates(t, entity.PositionCCM, 2025, 6)

	duty, warnings := b.Build("user-1", testRow("???", "", "09:00", "17:00"), entity.SourceCSV, rates, 6, 2025)
	if duty != nil {
		t.Fatal("unrecognized row built a duty")
	}
	if len(warnings) == 0 {
		t.Fatal("expected a warning for the unrecognized row")
	}
}

func TestBuild_BadTimeWarnsAndSkips(t *testing.T) {
	b := newTestBuilder()
	rates := mustRates(t, entity.PositionCCM, 2025, 6)

	duty, warnings := b.Build("user-1", testRow("FZ549 FZ550", "DXB - BOM BOM - DXB", "9h20", "17:50"), entity.SourceCSV, rates, 6, 2025)
	if duty != nil {
		t.Fatal("row with a malformed report time built a duty")
	}
	found := false
	for _, w := range warnings {
		if strings.Contains(w, "report time") {
			found = true
		}
	}
	if !found {
		t.Errorf("warnings %v do not mention the report time", warnings)
	}
}

func TestBuild_AsbyHasNoFlightPay(t *testing.T) {
	b := newTestBuilder()
	rates := mustRates(t, entity.PositionCCM, 2025, 6)

	duty, _ := b.Build("user-1", testRow("ASBY", "", "06:00", "10:00"), entity.SourceCSV, rates, 6, 2025)
	if duty == nil {
		t.Fatal("expected duty, got nil")
	}
	if duty.DutyType != entity.DutyAsby {
		t.Fatalf("duty type = %s, want asby", duty.DutyType)
	}
	if !duty.FlightPay.IsZero() {
		t.Errorf("airport standby carries flight pay %s, want 0", duty.FlightPay.String())
	}
	if duty.DutyHours != 4 {
		t.Errorf("duty hours = %v, want 4", duty.DutyHours)
	}
}
