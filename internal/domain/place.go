package domain

import (
	"time"

	"github.com/google/uuid"
)

// Place is a point of interest scheduled on a given day of a trip.
// DayNumber is 1-based.
type Place struct {
	ID           uuid.UUID
	TripID       uuid.UUID
	LocationName string
	Notes        string
	DayNumber    int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
