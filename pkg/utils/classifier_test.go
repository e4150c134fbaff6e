package utils

import (
	"testing"

	"skywage-service/internal/domain/entity"
	"skywage-service/pkg/logger"
)

type nopLogger struct{}

func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

func (n nopLogger) With(...interface{}) logger.Logger { return n }

func newTestClassifier() *DutyClassifier {
	return NewDutyClassifier("DXB", nopLogger{})
}

func TestClassify_KeywordRules(t *testing.T) {
	cases := []struct {
		duty    string
		details string
		want    entity.DutyType
	}{
		{"ASBY", "", entity.DutyAsby},
		{"Airport Standby", "", entity.DutyAsby},
		{"SBY", "", entity.DutySby},
		{"Home Standby", "", entity.DutySby},
		{"Recurrent", "SEP day 1", entity.DutyRecurrent},
		{"Training", "", entity.DutyRecurrent},
		{"Business Promotion", "road show", entity.DutyBusinessPromotion},
		{"Day off", "", entity.DutyOff},
		{"REST DAY", "", entity.DutyOff},
		{"Additional Day OFF", "", entity.DutyOff},
	}
	c := newTestClassifier()
	for _, tc := range cases {
		got := c.Classify(tc.duty, tc.details)
		if got.DutyType != tc.want {
			t.Fatalf("Classify(%q, %q) = %s, want %s", tc.duty, tc.details, got.DutyType, tc.want)
		}
		if got.Confidence != 1.0 {
			t.Fatalf("Classify(%q) keyword confidence = %v, want 1.0", tc.duty, got.Confidence)
		}
	}
}

func TestClassify_AsbyNotSwallowedBySby(t *testing.T) {
	got := newTestClassifier().Classify("ASBY", "")
	if got.DutyType != entity.DutyAsby {
		t.Fatalf("ASBY classified as %s", got.DutyType)
	}
}

func TestClassify_Turnaround(t *testing.T) {
	got := newTestClassifier().Classify("FZ321 FZ322", "DXB - KHI KHI - DXB")
	if got.DutyType != entity.DutyTurnaround {
		t.Fatalf("turnaround row classified as %s (%s)", got.DutyType, got.Reasoning)
	}
	if got.Confidence != 1.0 {
		t.Fatalf("turnaround confidence = %v, want 1.0", got.Confidence)
	}
	if len(got.FlightNumbers) != 2 || len(got.Sectors) != 2 {
		t.Fatalf("extracted %v / %v", got.FlightNumbers, got.Sectors)
	}
}

func TestClassify_LayoverLegs(t *testing.T) {
	c := newTestClassifier()

	outbound := c.Classify("FZ1929", "DXB - TBS")
	if outbound.DutyType != entity.DutyLayover || outbound.Confidence != 1.0 {
		t.Fatalf("outbound leg = %s (conf %v)", outbound.DutyType, outbound.Confidence)
	}

	inbound := c.Classify("FZ1930", "TBS - DXB")
	if inbound.DutyType != entity.DutyLayover || inbound.Confidence != 1.0 {
		t.Fatalf("inbound leg = %s (conf %v)", inbound.DutyType, inbound.Confidence)
	}
}

func TestClassify_AmbiguousStillGuesses(t *testing.T) {
	c := newTestClassifier()

	got := c.Classify("FZ777", "")
	if got.DutyType == entity.DutyOff {
		t.Fatalf("ambiguous row must not default to off")
	}
	if got.Confidence >= 1.0 {
		t.Fatalf("ambiguous row confidence = %v, want < 1", got.Confidence)
	}
	if len(got.Warnings) == 0 {
		t.Fatal("ambiguous row should warn")
	}

	unknown := c.Classify("", "???")
	if unknown.DutyType != entity.DutyUnknown {
		t.Fatalf("empty row = %s, want unknown", unknown.DutyType)
	}
	if unknown.Confidence <= 0 || unknown.Confidence >= 1 {
		t.Fatalf("unknown confidence out of range: %v", unknown.Confidence)
	}
}

func TestClassify_SectorAwayFromBaseWarns(t *testing.T) {
	got := newTestClassifier().Classify("FZ555", "KHI - TBS")
	if got.DutyType != entity.DutyLayover {
		t.Fatalf("away sector = %s, want layover", got.DutyType)
	}
	if got.Confidence >= 1.0 || len(got.Warnings) == 0 {
		t.Fatalf("away sector should be low confidence with warning, got %v %v", got.Confidence, got.Warnings)
	}
}
