package usecase

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"skywage-service/internal/domain/entity"
)

func newTestPairer() *LayoverPairer {
	return NewLayoverPairer(NewPayCalculator(), "DXB", nopLogger{})
}

func layoverDuty(day, month, year int, sector, report, debrief string, crossDay bool) *entity.FlightDuty {
	return &entity.FlightDuty{
		ID:          uuid.NewString(),
		UserID:      "user-1",
		Date:        time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC),
		Sectors:     []string{sector},
		DutyType:    entity.DutyLayover,
		ReportTime:  report,
		DebriefTime: debrief,
		IsCrossDay:  crossDay,
		Month:       month,
		Year:        year,
	}
}

func TestPair_OutboundInbound(t *testing.T) {
	p := newTestPairer()
	rates := mustRates(t, entity.PositionCCM, 2025, 6)

	out := layoverDuty(2, 6, 2025, "DXB-VKO", "08:00", "16:00", false)
	in := layoverDuty(3, 6, 2025, "VKO-DXB", "15:30", "23:30", false)

	result := p.Pair([]*entity.FlightDuty{out, in}, rates, 6, 2025)
	if len(result.Periods) != 1 {
		t.Fatalf("periods = %d, want 1 (warnings: %v)", len(result.Periods), result.Warnings)
	}

	period := result.Periods[0]
	if period.RestHours != 23.5 {
		t.Errorf("rest hours = %v, want 23.5", period.RestHours)
	}
	if period.PerDiemPay.String() != "207.27" {
		t.Errorf("per diem = %s, want 207.27", period.PerDiemPay.String())
	}
	if period.OutboundFlightID != out.ID || period.InboundFlightID != in.ID {
		t.Error("period does not link the outbound and inbound legs")
	}
	if period.Month != 6 || period.Year != 2025 {
		t.Errorf("period attributed to %02d/%d, want 06/2025", period.Month, period.Year)
	}
}

func TestPair_CrossDayDebriefShiftsRestStart(t *testing.T) {
	p := newTestPairer()
	rates := mustRates(t, entity.PositionCCM, 2025, 6)

	// Outbound debriefs 02:00 on day+1; rest runs from there.
	out := layoverDuty(2, 6, 2025, "DXB-VKO", "20:00", "02:00", true)
	in := layoverDuty(4, 6, 2025, "VKO-DXB", "02:00", "10:00", false)

	result := p.Pair([]*entity.FlightDuty{out, in}, rates, 6, 2025)
	if len(result.Periods) != 1 {
		t.Fatalf("periods = %d, want 1 (warnings: %v)", len(result.Periods), result.Warnings)
	}
	if got := result.Periods[0].RestHours; got != 24 {
		t.Errorf("rest hours = %v, want 24", got)
	}
}

func TestPair_UnpairedOutboundWarns(t *testing.T) {
	p := newTestPairer()
	rates := mustRates(t, entity.PositionCCM, 2025, 6)

	out := layoverDuty(28, 6, 2025, "DXB-VKO", "08:00", "16:00", false)

	result := p.Pair([]*entity.FlightDuty{out}, rates, 6, 2025)
	if len(result.Periods) != 0 {
		t.Fatalf("periods = %d, want 0", len(result.Periods))
	}
	if len(result.Warnings) != 1 || !strings.Contains(result.Warnings[0], "no pair found") {
		t.Errorf("warnings = %v, want one no-pair warning", result.Warnings)
	}
}

func TestPair_MonthBoundaryAttributedToOutboundMonth(t *testing.T) {
	p := newTestPairer()
	rates := mustRates(t, entity.PositionCCM, 2025, 6)

	out := layoverDuty(30, 6, 2025, "DXB-VKO", "08:00", "16:00", false)
	in := layoverDuty(1, 7, 2025, "VKO-DXB", "15:30", "23:30", false)

	// June recalculation with the July window appended.
	result := p.Pair([]*entity.FlightDuty{out, in}, rates, 6, 2025)
	if len(result.Periods) != 1 {
		t.Fatalf("periods = %d, want 1 (warnings: %v)", len(result.Periods), result.Warnings)
	}
	if result.Periods[0].Month != 6 {
		t.Errorf("period month = %d, want 6 (outbound month)", result.Periods[0].Month)
	}

	// July recalculation must not claim the same pair: its only layover leg
	// is inbound, so no period forms.
	julyRates := mustRates(t, entity.PositionCCM, 2025, 7)
	julyResult := p.Pair([]*entity.FlightDuty{in}, julyRates, 7, 2025)
	if len(julyResult.Periods) != 0 {
		t.Errorf("july periods = %d, want 0", len(julyResult.Periods))
	}
}

func TestPair_InboundBeforeOutboundWarns(t *testing.T) {
	p := newTestPairer()
	rates := mustRates(t, entity.PositionCCM, 2025, 6)

	// Inbound reports before the outbound debriefs: corrupt data, no pair.
	out := layoverDuty(2, 6, 2025, "DXB-VKO", "08:00", "16:00", false)
	in := layoverDuty(2, 6, 2025, "VKO-DXB", "10:00", "14:00", false)

	result := p.Pair([]*entity.FlightDuty{out, in}, rates, 6, 2025)
	if len(result.Periods) != 0 {
		t.Fatalf("periods = %d, want 0", len(result.Periods))
	}
	if len(result.Warnings) == 0 {
		t.Fatal("expected a warning for the out-of-order legs")
	}
}

func TestPair_TwoLayoversPairInOrder(t *testing.T) {
	p := newTestPairer()
	rates := mustRates(t, entity.PositionCCM, 2025, 6)

	out1 := layoverDuty(2, 6, 2025, "DXB-VKO", "08:00", "16:00", false)
	in1 := layoverDuty(3, 6, 2025, "VKO-DXB", "15:30", "23:30", false)
	out2 := layoverDuty(10, 6, 2025, "DXB-COK", "06:00", "12:00", false)
	in2 := layoverDuty(11, 6, 2025, "COK-DXB", "13:00", "19:00", false)

	// Shuffled input; pairing sorts by date.
	result := p.Pair([]*entity.FlightDuty{in2, out1, in1, out2}, rates, 6, 2025)
	if len(result.Periods) != 2 {
		t.Fatalf("periods = %d, want 2 (warnings: %v)", len(result.Periods), result.Warnings)
	}
	if result.Periods[0].InboundFlightID != in1.ID {
		t.Error("first period paired with the wrong inbound leg")
	}
	if result.Periods[1].InboundFlightID != in2.ID {
		t.Error("second period paired with the wrong inbound leg")
	}
}
