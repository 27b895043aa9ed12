package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/pkordes/trip-planner/backend/internal/domain"
	"github.com/pkordes/trip-planner/backend/internal/repo"
)

// PlaceService implements business logic for the places of a trip.
// Writes require the caller to own or collaborate on the parent trip.
type PlaceService struct {
	trips      repo.TripRepo
	places     repo.PlaceRepo
	visibility domain.ReadVisibility
}

// NewPlaceService constructs a PlaceService.
func NewPlaceService(trips repo.TripRepo, places repo.PlaceRepo, visibility domain.ReadVisibility) *PlaceService {
	return &PlaceService{trips: trips, places: places, visibility: visibility}
}

// Create validates and adds a place to place.TripID.
func (s *PlaceService) Create(ctx context.Context, callerID uuid.UUID, place domain.Place) (domain.Place, error) {
	const op = "service.PlaceService.Create"

	if err := validatePlace(place); err != nil {
		return domain.Place{}, fmt.Errorf("%s: %w", op, err)
	}
	if _, err := loadEditableTrip(ctx, s.trips, callerID, place.TripID); err != nil {
		return domain.Place{}, fmt.Errorf("%s: %w", op, err)
	}

	place.LocationName = strings.TrimSpace(place.LocationName)
	created, err := s.places.Create(ctx, place)
	if err != nil {
		return domain.Place{}, fmt.Errorf("%s: %w", op, err)
	}
	return created, nil
}

// Get returns one place of a readable trip.
func (s *PlaceService) Get(ctx context.Context, callerID, tripID, placeID uuid.UUID) (domain.Place, error) {
	const op = "service.PlaceService.Get"

	if _, err := loadReadableTrip(ctx, s.trips, s.visibility, callerID, tripID); err != nil {
		return domain.Place{}, fmt.Errorf("%s: %w", op, err)
	}
	p, err := s.places.GetByID(ctx, tripID, placeID)
	if err != nil {
		return domain.Place{}, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

// List returns every place of a readable trip ordered by day.
func (s *PlaceService) List(ctx context.Context, callerID, tripID uuid.UUID) ([]domain.Place, error) {
	const op = "service.PlaceService.List"

	if _, err := loadReadableTrip(ctx, s.trips, s.visibility, callerID, tripID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	places, err := s.places.ListByTripID(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if places == nil {
		places = []domain.Place{}
	}
	return places, nil
}

// Update overwrites a place's name, notes and day.
func (s *PlaceService) Update(ctx context.Context, callerID uuid.UUID, place domain.Place) (domain.Place, error) {
	const op = "service.PlaceService.Update"

	if err := validatePlace(place); err != nil {
		return domain.Place{}, fmt.Errorf("%s: %w", op, err)
	}
	if _, err := loadEditableTrip(ctx, s.trips, callerID, place.TripID); err != nil {
		return domain.Place{}, fmt.Errorf("%s: %w", op, err)
	}

	place.LocationName = strings.TrimSpace(place.LocationName)
	updated, err := s.places.Update(ctx, place)
	if err != nil {
		return domain.Place{}, fmt.Errorf("%s: %w", op, err)
	}
	return updated, nil
}

// Delete removes a place.
func (s *PlaceService) Delete(ctx context.Context, callerID, tripID, placeID uuid.UUID) error {
	const op = "service.PlaceService.Delete"

	if _, err := loadEditableTrip(ctx, s.trips, callerID, tripID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.places.Delete(ctx, tripID, placeID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func validatePlace(p domain.Place) error {
	if strings.TrimSpace(p.LocationName) == "" {
		return fmt.Errorf("%w: location name is required", domain.ErrValidation)
	}
	if p.DayNumber < 1 {
		return fmt.Errorf("%w: day number must be 1 or greater", domain.ErrValidation)
	}
	return nil
}
