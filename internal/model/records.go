package model

import "time"

// RentalReport is an uploaded P&L export kept verbatim.
type RentalReport struct {
	CreatedAt time.Time `json:"created_at"`
	Property  string    `json:"property"`
	RawCSV    string    `json:"raw_csv,omitempty"`
	ID        int64     `json:"id"`
	Year      int       `json:"year"`
}

// User is an account allowed past the login gate.
type User struct {
	CreatedAt    time.Time `json:"created_at"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
}
