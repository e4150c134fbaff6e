package entity

import (
	"time"
)

// Upload Process Status
const (
	StatusPending    = "PENDING"
	StatusProcessing = "PROCESSING"
	StatusCompleted  = "COMPLETED"
	StatusFailed     = "FAILED"
	StatusSkipped    = "SKIPPED"
)

// RosterUpload is an archived roster file together with its processing
// state. The raw bytes are kept so a stuck upload can be reprocessed.
type RosterUpload struct {
	UploadID         string                 `bson:"uploadId"`
	UserID           string                 `bson:"userId"`
	Filename         string                 `bson:"filename"`
	MimeHint         string                 `bson:"mimeHint"`
	Data             []byte                 `bson:"data"`
	Position         Position               `bson:"position"`
	TargetMonth      int                    `bson:"targetMonth"`
	TargetYear       int                    `bson:"targetYear"`
	Replace          bool                   `bson:"replace"`
	ReceivedAt       time.Time              `bson:"receivedAt"`
	ProcessedAt      time.Time              `bson:"processedAt"`
	ProcessStatus    string                 `bson:"processStatus"`
	ProcessStartedAt time.Time              `bson:"processStartedAt"`
	ProcessSteps     ProcessSteps           `bson:"processSteps"`
	ErrorDetail      string                 `bson:"errorDetail"`
	ExtractedData    map[string]interface{} `bson:"extractedData"`
}

// ProcessSteps tracks how far an upload got through the pipeline.
type ProcessSteps struct {
	RowsDetected bool `bson:"rowsDetected"`
	DutiesBuilt  int  `bson:"dutiesBuilt"`  // duties created from the roster
	PairsFormed  int  `bson:"pairsFormed"`  // layover pairs resolved
	WarningCount int  `bson:"warningCount"` // row-level warnings accumulated
}
