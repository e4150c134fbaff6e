package entity

import "time"

// Profile is a crew member account.
type Profile struct {
	ID          string
	Email       string
	Airline     string
	Position    Position
	Nationality string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
