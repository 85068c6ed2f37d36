// Package domain contains the core data types for the Reactivities API.
// This package has no dependencies on other internal packages and is
// imported by every layer (repo, service, mediator, handler).
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Activity is a single scheduled activity, the only resource the API serves.
// ID is assigned when the record is created and never changes afterwards.
// Latitude and Longitude are not checked against City or Venue.
type Activity struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Date        time.Time `json:"date"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	City        string    `json:"city"`
	Venue       string    `json:"venue"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	IsCancelled bool      `json:"isCancelled"`
}
