package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// LayoverRestPeriod links the outbound and inbound legs of a layover and
// carries the rest-based per diem. It is derived entirely from its two
// flight duties and recreated whenever pairing recomputes.
type LayoverRestPeriod struct {
	ID               string
	UserID           string
	OutboundFlightID string
	InboundFlightID  string
	RestStartTime    time.Time
	RestEndTime      time.Time
	RestHours        float64
	PerDiemPay       decimal.Decimal
	Month            int
	Year             int
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
