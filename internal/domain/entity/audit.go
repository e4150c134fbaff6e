package entity

import "time"

// Audit actions
const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// AuditTrailEntry is one append-only record of a flight duty mutation.
type AuditTrailEntry struct {
	ID           string                 `bson:"_id,omitempty"`
	FlightID     string                 `bson:"flightId"`
	UserID       string                 `bson:"userId"`
	Action       string                 `bson:"action"`
	OldData      map[string]interface{} `bson:"oldData,omitempty"`
	NewData      map[string]interface{} `bson:"newData,omitempty"`
	ChangeReason string                 `bson:"changeReason"`
	CreatedAt    time.Time              `bson:"createdAt"`
}
