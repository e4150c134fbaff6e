package formats

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"

	"skywage-service/internal/domain/entity"
	"skywage-service/internal/usecase"
	"skywage-service/pkg/logger"
)

// CSVRosterReader reads roster exports in CSV form
type CSVRosterReader struct {
	logger logger.Logger
}

// NewCSVRosterReader creates a new CSV roster reader
func NewCSVRosterReader(logger logger.Logger) *CSVRosterReader {
	return &CSVRosterReader{
		logger: logger,
	}
}

// CanHandle determines if this reader can process the given file
func (r *CSVRosterReader) CanHandle(filename, mimeHint string) bool {
	if strings.HasSuffix(strings.ToLower(filename), ".csv") {
		return true
	}
	return strings.Contains(mimeHint, "text/csv")
}

// SourceType reports the data source recorded on duties from this format
func (r *CSVRosterReader) SourceType() entity.DataSource {
	return entity.SourceCSV
}

// Read normalizes the raw CSV bytes into a row/cell grid
func (r *CSVRosterReader) Read(data []byte) (*usecase.RosterGrid, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	// Roster exports have ragged rows and stray quotes
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parsing csv: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("csv file is empty")
	}

	r.logger.Debug("Read CSV roster", "rows", len(rows))
	return &usecase.RosterGrid{Rows: rows}, nil
}
