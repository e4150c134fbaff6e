package formats

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"skywage-service/internal/domain/entity"
	"skywage-service/internal/usecase"
	"skywage-service/pkg/logger"
)

// ExcelRosterReader reads roster exports in xlsx form
type ExcelRosterReader struct {
	logger logger.Logger
}

// NewExcelRosterReader creates a new Excel roster reader
func NewExcelRosterReader(logger logger.Logger) *ExcelRosterReader {
	return &ExcelRosterReader{
		logger: logger,
	}
}

// CanHandle determines if this reader can process the given file
func (r *ExcelRosterReader) CanHandle(filename, mimeHint string) bool {
	lower := strings.ToLower(filename)
	if strings.HasSuffix(lower, ".xlsx") || strings.HasSuffix(lower, ".xlsm") {
		return true
	}
	return strings.Contains(mimeHint, "spreadsheetml")
}

// SourceType reports the data source recorded on duties from this format
func (r *ExcelRosterReader) SourceType() entity.DataSource {
	return entity.SourceExcel
}

// Read normalizes the first sheet of the workbook into a row/cell grid
func (r *ExcelRosterReader) Read(data []byte) (*usecase.RosterGrid, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("sheet %q is empty", sheets[0])
	}

	r.logger.Debug("Read Excel roster", "sheet", sheets[0], "rows", len(rows))
	return &usecase.RosterGrid{Rows: rows}, nil
}
