package usecase

import (
	"strings"

	"skywage-service/internal/domain/entity"
)

// RosterGrid is the uniform row/cell view a format adapter produces from a
// roster export, before any structure is assumed.
type RosterGrid struct {
	Rows [][]string
}

// Cell returns the trimmed cell at (row, col). Ragged rows are common in
// exports; out-of-range access yields the empty string.
func (g *RosterGrid) Cell(row, col int) string {
	if row < 0 || row >= len(g.Rows) {
		return ""
	}
	r := g.Rows[row]
	if col < 0 || col >= len(r) {
		return ""
	}
	return strings.TrimSpace(r[col])
}

// RosterReader defines the interface for roster format adapters
type RosterReader interface {
	// CanHandle determines if this reader can process the given file
	CanHandle(filename, mimeHint string) bool

	// SourceType reports the data source recorded on duties from this format
	SourceType() entity.DataSource

	// Read normalizes the raw file bytes into a row/cell grid
	Read(data []byte) (*RosterGrid, error)
}

// FormatRouter routes an uploaded file to the appropriate format reader
type FormatRouter interface {
	// Register registers a reader for a file format
	Register(reader RosterReader)

	// GetReader returns the appropriate reader for a given file, or nil
	GetReader(filename, mimeHint string) RosterReader
}
