package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// DutyType is the closed set of duty classifications.
type DutyType string

const (
	DutyTurnaround        DutyType = "turnaround"
	DutyLayover           DutyType = "layover"
	DutyAsby              DutyType = "asby"
	DutySby               DutyType = "sby"
	DutyRecurrent         DutyType = "recurrent"
	DutyOff               DutyType = "off"
	DutyBusinessPromotion DutyType = "business_promotion"
	DutyUnknown           DutyType = "unknown"
)

// DataSource records where a flight duty came from.
type DataSource string

const (
	SourceCSV    DataSource = "csv"
	SourceExcel  DataSource = "excel"
	SourceManual DataSource = "manual"
	SourceEdited DataSource = "edited"
)

// FlightDuty represents one duty on a crew member's roster. Duties are
// created by ingestion or manual entry, replaced whole on edit, and owned by
// exactly one user.
type FlightDuty struct {
	ID            string
	UserID        string
	Date          time.Time
	FlightNumbers []string
	Sectors       []string
	DutyType      DutyType
	ReportTime    string
	DebriefTime   string
	DutyHours     float64
	FlightPay     decimal.Decimal
	IsCrossDay    bool
	DataSource    DataSource
	Month         int
	Year          int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
