package domain

// ItineraryRow is a single row in a trip export.
// It is a flat, denormalized view: one row per place, with trip fields
// repeated on every row. A trip with no places yields one row with zero
// values for all place fields.
type ItineraryRow struct {
	// Trip fields, repeated for every place on the trip.
	TripID        string
	TripTitle     string
	TripStartDate string // "2006-01-02", empty when unset
	TripEndDate   string

	// Place fields; zero values when the trip has no places.
	DayNumber    int
	LocationName string
	PlaceNotes   string
}
