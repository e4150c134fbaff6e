package formats

import (
	"testing"

	"github.com/xuri/excelize/v2"

	"skywage-service/internal/domain/entity"
)

func buildWorkbook(t *testing.T, cells map[string]string) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	for ref, value := range cells {
		if err := f.SetCellValue("Sheet1", ref, value); err != nil {
			t.Fatalf("SetCellValue(%s): %v", ref, err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("WriteToBuffer: %v", err)
	}
	return buf.Bytes()
}

func TestExcelReader_CanHandle(t *testing.T) {
	r := NewExcelRosterReader(nopLogger{})

	cases := []struct {
		filename string
		mimeHint string
		want     bool
	}{
		{"roster.xlsx", "", true},
		{"ROSTER.XLSM", "", true},
		{"export", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", true},
		{"roster.csv", "", false},
	}
	for _, tc := range cases {
		if got := r.CanHandle(tc.filename, tc.mimeHint); got != tc.want {
			t.Errorf("CanHandle(%q, %q) = %v, want %v", tc.filename, tc.mimeHint, got, tc.want)
		}
	}
	if r.SourceType() != entity.SourceExcel {
		t.Errorf("source type = %s, want excel", r.SourceType())
	}
}

func TestExcelReader_Read(t *testing.T) {
	r := NewExcelRosterReader(nopLogger{})

	data := buildWorkbook(t, map[string]string{
		"A1": "flydubai",
		"A2": "Date",
		"B2": "Duties",
		"A3": "01/06/2025",
		"B3": "FZ549",
	})

	grid, err := r.Read(data)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(grid.Rows) < 3 {
		t.Fatalf("rows = %d, want at least 3", len(grid.Rows))
	}
	if grid.Cell(0, 0) != "flydubai" {
		t.Errorf("cell(0,0) = %q", grid.Cell(0, 0))
	}
	if grid.Cell(2, 1) != "FZ549" {
		t.Errorf("cell(2,1) = %q", grid.Cell(2, 1))
	}
}

func TestExcelReader_NotAWorkbook(t *testing.T) {
	r := NewExcelRosterReader(nopLogger{})
	if _, err := r.Read([]byte("plain text, not a zip")); err == nil {
		t.Fatal("expected error for non-xlsx bytes")
	}
}
