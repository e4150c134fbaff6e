package usecase

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"skywage-service/pkg/logger"
)

const (
	// airlineMarker must appear in the designated top row of every export.
	airlineMarker = "FLYDUBAI"

	// defaultDataStart is the fixed row offset where duty rows begin; the
	// row above it is the column header row.
	defaultDataStart = 4

	headerScanRows = 10
	headerScanCols = 12
)

// dateRangePattern matches the month/year metadata cell, e.g.
// "01/06/2025 - 30/06/2025".
var dateRangePattern = regexp.MustCompile(`(\d{1,2})/(\d{1,2})/(\d{4})\s*-\s*(\d{1,2})/(\d{1,2})/(\d{4})`)

// Non-duty calendar rows are roster vocabulary, not duties. They are skipped
// silently; warning on every day off would drown real problems.
var nonDutyRowVocabulary = []string{
	"ADDITIONAL DAY OFF",
	"DAY OFF",
	"REST DAY",
	"ANNUAL LEAVE",
	"OFF",
}

type columnMap struct {
	date    int
	duties  int
	details int
	report  int
	debrief int
}

var defaultColumns = columnMap{date: 0, duties: 1, details: 2, report: 3, debrief: 5}

// DutyRow is one detected duty row with its raw cells.
type DutyRow struct {
	Index       int // zero-based row index in the source grid
	Date        time.Time
	DutyText    string
	DetailsText string
	ReportRaw   string
	DebriefRaw  string
}

// DetectedRoster is the validated structure of an ingested roster file.
type DetectedRoster struct {
	Month        int
	Year         int
	EmployeeInfo string
	Rows         []DutyRow
	Warnings     []string
}

// StructureDetector locates header/data boundaries and metadata cells in a
// normalized roster grid.
type StructureDetector struct {
	logger logger.Logger
}

// NewStructureDetector creates a new structure detector
func NewStructureDetector(logger logger.Logger) *StructureDetector {
	return &StructureDetector{logger: logger}
}

// Detect validates the required markers and extracts the duty rows. A
// failure here is structural: the whole file is rejected.
func (d *StructureDetector) Detect(grid *RosterGrid) (*DetectedRoster, error) {
	if len(grid.Rows) <= defaultDataStart {
		return nil, fmt.Errorf("roster has only %d rows, expected data from row %d", len(grid.Rows), defaultDataStart+1)
	}

	if !rowContainsMarker(grid, 0, airlineMarker) {
		return nil, fmt.Errorf("airline identifier %q not found in the top row", airlineMarker)
	}

	month, year, err := d.extractPeriod(grid)
	if err != nil {
		return nil, err
	}

	cols, dataStart, warnings := d.resolveLayout(grid)
	if dataStart < 0 {
		return nil, fmt.Errorf("unable to locate the duty header row within the first %d rows", headerScanRows)
	}

	result := &DetectedRoster{
		Month:        month,
		Year:         year,
		EmployeeInfo: employeeInfo(grid),
		Warnings:     warnings,
	}

	sentinelSeen := false
	for i := dataStart; i < len(grid.Rows); i++ {
		dutyText := grid.Cell(i, cols.duties)
		first := grid.Cell(i, 0)

		if isSentinelRow(first, dutyText) {
			sentinelSeen = true
			break
		}
		if isBlankRow(grid, i) {
			continue
		}
		if isNonDutyRow(dutyText) {
			continue
		}

		date, ok := parseRosterDate(grid.Cell(i, cols.date), year)
		if !ok {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("row %d: unparseable date %q, row skipped", i+1, grid.Cell(i, cols.date)))
			continue
		}
		if int(date.Month()) != month || date.Year() != year {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("row %d: date %s falls outside roster period %02d/%d", i+1, date.Format("02/01/2006"), month, year))
		}

		result.Rows = append(result.Rows, DutyRow{
			Index:       i,
			Date:        date,
			DutyText:    dutyText,
			DetailsText: grid.Cell(i, cols.details),
			ReportRaw:   grid.Cell(i, cols.report),
			DebriefRaw:  grid.Cell(i, cols.debrief),
		})
	}

	if !sentinelSeen {
		result.Warnings = append(result.Warnings, "totals sentinel row not found, processed to end of file")
	}

	d.logger.Info("Roster structure detected",
		"month", month,
		"year", year,
		"dutyRows", len(result.Rows),
		"warnings", len(result.Warnings))

	return result, nil
}

// extractPeriod finds the month/year date-range metadata cell in the top
// rows of the grid.
func (d *StructureDetector) extractPeriod(grid *RosterGrid) (int, int, error) {
	for row := 0; row < defaultDataStart && row < len(grid.Rows); row++ {
		for col := 0; col < headerScanCols; col++ {
			match := dateRangePattern.FindStringSubmatch(grid.Cell(row, col))
			if match == nil {
				continue
			}
			month, _ := strconv.Atoi(match[2])
			year, _ := strconv.Atoi(match[3])
			if month < 1 || month > 12 {
				continue
			}
			return month, year, nil
		}
	}
	return 0, 0, fmt.Errorf("month/year date range not found in the metadata rows")
}

// resolveLayout returns the column mapping and first data row. The fixed
// layout is tried first; when export drift moved the header, a bounded scan
// re-derives the mapping from header keywords.
func (d *StructureDetector) resolveLayout(grid *RosterGrid) (columnMap, int, []string) {
	if isHeaderRow(grid, defaultDataStart-1) {
		return defaultColumns, defaultDataStart, nil
	}

	for row := 0; row < headerScanRows && row < len(grid.Rows); row++ {
		if !isHeaderRow(grid, row) {
			continue
		}
		cols := defaultColumns
		for col := 0; col < headerScanCols; col++ {
			switch keyword := strings.ToUpper(grid.Cell(row, col)); {
			case strings.Contains(keyword, "DATE"):
				cols.date = col
			case strings.Contains(keyword, "DUTIES"), strings.Contains(keyword, "DUTY"):
				cols.duties = col
			case strings.Contains(keyword, "DETAILS"), strings.Contains(keyword, "SECTOR"):
				cols.details = col
			case strings.Contains(keyword, "REPORT"):
				cols.report = col
			case strings.Contains(keyword, "DEBRIEF"):
				cols.debrief = col
			}
		}
		warning := fmt.Sprintf("duty header found at row %d instead of row %d, column mapping re-derived", row+1, defaultDataStart)
		d.logger.Warn("Roster layout drift", "headerRow", row+1)
		return cols, row + 1, []string{warning}
	}

	return columnMap{}, -1, nil
}

func isHeaderRow(grid *RosterGrid, row int) bool {
	hasDate, hasDuties := false, false
	for col := 0; col < headerScanCols; col++ {
		cell := strings.ToUpper(grid.Cell(row, col))
		if strings.Contains(cell, "DATE") {
			hasDate = true
		}
		if strings.Contains(cell, "DUTIES") || strings.Contains(cell, "DUTY") {
			hasDuties = true
		}
	}
	return hasDate && hasDuties
}

func rowContainsMarker(grid *RosterGrid, row int, marker string) bool {
	for col := 0; col < headerScanCols; col++ {
		if strings.Contains(strings.ToUpper(grid.Cell(row, col)), marker) {
			return true
		}
	}
	return false
}

func employeeInfo(grid *RosterGrid) string {
	var parts []string
	for col := 0; col < headerScanCols; col++ {
		if cell := grid.Cell(1, col); cell != "" {
			parts = append(parts, cell)
		}
	}
	return strings.Join(parts, " ")
}

func isBlankRow(grid *RosterGrid, row int) bool {
	for col := 0; col < headerScanCols; col++ {
		if grid.Cell(row, col) != "" {
			return false
		}
	}
	return true
}

func isSentinelRow(first, dutyText string) bool {
	for _, cell := range []string{first, dutyText} {
		if strings.HasPrefix(strings.ToUpper(cell), "TOTAL") {
			return true
		}
	}
	return false
}

func isNonDutyRow(dutyText string) bool {
	upper := strings.ToUpper(strings.TrimSpace(dutyText))
	for _, vocab := range nonDutyRowVocabulary {
		if upper == vocab {
			return true
		}
	}
	return false
}

// parseRosterDate accepts "02/06/2025" and the short "02/06" form, filling
// the year from the roster metadata.
func parseRosterDate(cell string, year int) (time.Time, bool) {
	cell = strings.TrimSpace(cell)
	if cell == "" {
		return time.Time{}, false
	}
	// Some exports prefix the weekday ("Mon 02/06/2025").
	if fields := strings.Fields(cell); len(fields) > 1 {
		cell = fields[len(fields)-1]
	}
	parts := strings.Split(cell, "/")
	if len(parts) < 2 || len(parts) > 3 {
		return time.Time{}, false
	}
	day, err := strconv.Atoi(parts[0])
	if err != nil {
		return time.Time{}, false
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return time.Time{}, false
	}
	y := year
	if len(parts) == 3 {
		y, err = strconv.Atoi(parts[2])
		if err != nil {
			return time.Time{}, false
		}
	}
	if day < 1 || day > 31 || m < 1 || m > 12 {
		return time.Time{}, false
	}
	return time.Date(y, time.Month(m), day, 0, 0, 0, 0, time.UTC), true
}
