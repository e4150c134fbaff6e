package router

import (
	"skywage-service/internal/usecase"
	"skywage-service/pkg/logger"
)

// FormatRouter routes uploaded files to appropriate readers based on filename
// and mime hint
type FormatRouter struct {
	readers []usecase.RosterReader
	logger  logger.Logger
}

// NewFormatRouter creates a new format router
func NewFormatRouter(logger logger.Logger) *FormatRouter {
	return &FormatRouter{
		readers: make([]usecase.RosterReader, 0),
		logger:  logger,
	}
}

// Register registers a reader for a file format
func (r *FormatRouter) Register(reader usecase.RosterReader) {
	r.readers = append(r.readers, reader)
	r.logger.Info("Registered roster reader", "source", reader.SourceType())
}

// GetReader returns the appropriate reader for a given file
func (r *FormatRouter) GetReader(filename, mimeHint string) usecase.RosterReader {
	for _, reader := range r.readers {
		if reader.CanHandle(filename, mimeHint) {
			return reader
		}
	}
	return nil
}
