package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/trip-planner/backend/internal/domain"
	"github.com/pkordes/trip-planner/backend/internal/repo"
)

// ExportService assembles a flat itinerary of one trip.
type ExportService struct {
	trips      repo.TripRepo
	places     repo.PlaceRepo
	visibility domain.ReadVisibility
}

// NewExportService constructs an ExportService backed by the provided repos.
func NewExportService(trips repo.TripRepo, places repo.PlaceRepo, visibility domain.ReadVisibility) *ExportService {
	return &ExportService{trips: trips, places: places, visibility: visibility}
}

// Export returns one ItineraryRow per place in day order.
// A trip with no places contributes one row with empty place fields.
func (s *ExportService) Export(ctx context.Context, callerID, tripID uuid.UUID) ([]domain.ItineraryRow, error) {
	const op = "service.ExportService.Export"

	trip, err := loadReadableTrip(ctx, s.trips, s.visibility, callerID, tripID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	places, err := s.places.ListByTripID(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	base := domain.ItineraryRow{
		TripID:        trip.ID.String(),
		TripTitle:     trip.Title,
		TripStartDate: formatDate(trip.StartDate),
		TripEndDate:   formatDate(trip.EndDate),
	}
	if len(places) == 0 {
		return []domain.ItineraryRow{base}, nil
	}

	rows := make([]domain.ItineraryRow, 0, len(places))
	for _, p := range places {
		row := base
		row.DayNumber = p.DayNumber
		row.LocationName = p.LocationName
		row.PlaceNotes = p.Notes
		rows = append(rows, row)
	}
	return rows, nil
}

func formatDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.DateOnly)
}
