// Package service contains the business logic for the trip planner API.
// Services validate inputs, enforce capability checks, and orchestrate repo
// calls. The caller's user id is always passed in explicitly; no SQL lives here.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/pkordes/trip-planner/backend/internal/domain"
	"github.com/pkordes/trip-planner/backend/internal/logx"
	"github.com/pkordes/trip-planner/backend/internal/repo"
)

// TripService implements business logic for Trip operations.
type TripService struct {
	trips      repo.TripRepo
	users      repo.UserRepo
	visibility domain.ReadVisibility
}

// NewTripService constructs a TripService. visibility decides who may read
// a trip that they neither own nor collaborate on.
func NewTripService(trips repo.TripRepo, users repo.UserRepo, visibility domain.ReadVisibility) *TripService {
	return &TripService{trips: trips, users: users, visibility: visibility}
}

// Create validates and persists a new trip owned by callerID. The owner email
// is copied from the caller's account.
func (s *TripService) Create(ctx context.Context, callerID uuid.UUID, trip domain.Trip) (domain.Trip, error) {
	const op = "service.TripService.Create"

	if err := validateTrip(trip); err != nil {
		return domain.Trip{}, fmt.Errorf("%s: %w", op, err)
	}

	owner, err := s.users.GetByID(ctx, callerID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Trip{}, fmt.Errorf("%s: %w: unknown caller", op, domain.ErrUnauthorized)
		}
		return domain.Trip{}, fmt.Errorf("%s: %w", op, err)
	}

	trip.Title = strings.TrimSpace(trip.Title)
	trip.OwnerID = owner.ID
	trip.OwnerEmail = owner.Email
	trip.Collaborators = nil

	created, err := s.trips.Create(ctx, trip)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("%s: %w", op, err)
	}
	logx.FromContext(ctx).InfoContext(ctx, "trip created", "trip_id", created.ID, "owner_id", created.OwnerID)
	return created, nil
}

// Get returns a trip the caller is allowed to read.
func (s *TripService) Get(ctx context.Context, callerID, tripID uuid.UUID) (domain.Trip, error) {
	trip, err := loadReadableTrip(ctx, s.trips, s.visibility, callerID, tripID)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Get: %w", err)
	}
	return trip, nil
}

// List returns one page of the trips the caller owns or collaborates on,
// newest first.
func (s *TripService) List(ctx context.Context, callerID uuid.UUID, p domain.PaginationParams) (domain.Page[domain.Trip], error) {
	trips, total, err := s.trips.ListForMemberPaged(ctx, callerID, p)
	if err != nil {
		return domain.Page[domain.Trip]{}, fmt.Errorf("service.TripService.List: %w", err)
	}
	if trips == nil {
		trips = []domain.Trip{}
	}
	return domain.Page[domain.Trip]{Items: trips, Total: total, Params: p}, nil
}

// Update overwrites title, description and dates. Owner only.
func (s *TripService) Update(ctx context.Context, callerID uuid.UUID, trip domain.Trip) (domain.Trip, error) {
	const op = "service.TripService.Update"

	if err := validateTrip(trip); err != nil {
		return domain.Trip{}, fmt.Errorf("%s: %w", op, err)
	}

	existing, err := s.trips.GetByID(ctx, trip.ID)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("%s: %w", op, err)
	}
	if !existing.AccessFor(callerID).IsOwner {
		return domain.Trip{}, fmt.Errorf("%s: %w: only the owner can edit a trip", op, domain.ErrForbidden)
	}

	existing.Title = strings.TrimSpace(trip.Title)
	existing.Description = trip.Description
	existing.StartDate = trip.StartDate
	existing.EndDate = trip.EndDate

	updated, err := s.trips.Update(ctx, existing)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("%s: %w", op, err)
	}
	return updated, nil
}

// Delete removes a trip together with its places and invites. Owner only.
func (s *TripService) Delete(ctx context.Context, callerID, tripID uuid.UUID) error {
	const op = "service.TripService.Delete"

	trip, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if !trip.AccessFor(callerID).IsOwner {
		return fmt.Errorf("%s: %w: only the owner can delete a trip", op, domain.ErrForbidden)
	}
	if err := s.trips.Delete(ctx, tripID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	logx.FromContext(ctx).InfoContext(ctx, "trip deleted", "trip_id", tripID)
	return nil
}

// RemoveCollaborator drops userID from the trip. The owner may remove anyone;
// a collaborator may only remove themselves.
func (s *TripService) RemoveCollaborator(ctx context.Context, callerID, tripID, userID uuid.UUID) error {
	const op = "service.TripService.RemoveCollaborator"

	trip, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	access := trip.AccessFor(callerID)
	leaving := access.IsCollaborator && callerID == userID
	if !access.IsOwner && !leaving {
		return fmt.Errorf("%s: %w: only the owner can remove collaborators", op, domain.ErrForbidden)
	}
	if err := s.trips.RemoveCollaborator(ctx, tripID, userID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// validateTrip enforces the field rules shared by Create and Update.
func validateTrip(t domain.Trip) error {
	if strings.TrimSpace(t.Title) == "" {
		return fmt.Errorf("%w: title is required", domain.ErrValidation)
	}
	if t.StartDate != nil && t.EndDate != nil && t.EndDate.Before(*t.StartDate) {
		return fmt.Errorf("%w: end date must not be before start date", domain.ErrValidation)
	}
	return nil
}

// loadReadableTrip fetches a trip and applies the read visibility rule.
func loadReadableTrip(ctx context.Context, trips repo.TripRepo, v domain.ReadVisibility, callerID, tripID uuid.UUID) (domain.Trip, error) {
	trip, err := trips.GetByID(ctx, tripID)
	if err != nil {
		return domain.Trip{}, err
	}
	if !v.CanRead(trip.AccessFor(callerID)) {
		return domain.Trip{}, fmt.Errorf("%w: not a member of this trip", domain.ErrForbidden)
	}
	return trip, nil
}

// loadEditableTrip fetches a trip and requires the caller to be a member.
func loadEditableTrip(ctx context.Context, trips repo.TripRepo, callerID, tripID uuid.UUID) (domain.Trip, error) {
	trip, err := trips.GetByID(ctx, tripID)
	if err != nil {
		return domain.Trip{}, err
	}
	if !trip.AccessFor(callerID).CanEdit() {
		return domain.Trip{}, fmt.Errorf("%w: only the owner or a collaborator can edit places", domain.ErrForbidden)
	}
	return trip, nil
}
