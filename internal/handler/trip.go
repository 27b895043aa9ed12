package handler

import (
	"context"
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/trip-planner/backend/internal/domain"
)

// CreateTrip handles POST /trips.
func (s *Server) CreateTrip(ctx context.Context, req request) (responseObject, error) {
	caller, err := req.callerID()
	if err != nil {
		return nil, err
	}
	var body TripInput
	if err := req.decodeBody(&body); err != nil {
		return nil, err
	}

	created, err := s.trips.Create(ctx, caller, requestToTrip(body))
	if err != nil {
		return nil, err
	}
	return created201(tripToResponse(created)), nil
}

// ListTrips handles GET /trips.
// Supports ?page= and ?limit= query parameters (defaults: page=1, limit=20, max=100).
func (s *Server) ListTrips(ctx context.Context, req request) (responseObject, error) {
	caller, err := req.callerID()
	if err != nil {
		return nil, err
	}
	params, err := req.pagination()
	if err != nil {
		return nil, err
	}

	page, err := s.trips.List(ctx, caller, params)
	if err != nil {
		return nil, err
	}

	data := make([]Trip, len(page.Items))
	for i, t := range page.Items {
		data[i] = tripToResponse(t)
	}
	return ok200(TripList{
		Data: data,
		Pagination: Pagination{
			Page:  page.Params.Page,
			Limit: page.Params.Limit,
			Total: int(page.Total),
		},
	}), nil
}

// GetTrip handles GET /trips/{tripId}.
func (s *Server) GetTrip(ctx context.Context, req request) (responseObject, error) {
	caller, tripID, err := req.callerAndTrip()
	if err != nil {
		return nil, err
	}

	trip, err := s.trips.Get(ctx, caller, tripID)
	if err != nil {
		return nil, labelNotFound(err, "trip not found")
	}
	return ok200(tripToResponse(trip)), nil
}

// UpdateTrip handles PUT /trips/{tripId}. The body replaces title,
// description and dates; ownership and collaborators are not editable here.
func (s *Server) UpdateTrip(ctx context.Context, req request) (responseObject, error) {
	caller, tripID, err := req.callerAndTrip()
	if err != nil {
		return nil, err
	}
	var body TripInput
	if err := req.decodeBody(&body); err != nil {
		return nil, err
	}

	trip := requestToTrip(body)
	trip.ID = tripID
	updated, err := s.trips.Update(ctx, caller, trip)
	if err != nil {
		return nil, labelNotFound(err, "trip not found")
	}
	return ok200(tripToResponse(updated)), nil
}

// DeleteTrip handles DELETE /trips/{tripId}.
func (s *Server) DeleteTrip(ctx context.Context, req request) (responseObject, error) {
	caller, tripID, err := req.callerAndTrip()
	if err != nil {
		return nil, err
	}

	if err := s.trips.Delete(ctx, caller, tripID); err != nil {
		return nil, labelNotFound(err, "trip not found")
	}
	return noContent204Response{}, nil
}

// RemoveCollaborator handles DELETE /trips/{tripId}/collaborators/{userId}.
func (s *Server) RemoveCollaborator(ctx context.Context, req request) (responseObject, error) {
	caller, tripID, err := req.callerAndTrip()
	if err != nil {
		return nil, err
	}
	userID, err := req.pathID("userId")
	if err != nil {
		return nil, err
	}

	if err := s.trips.RemoveCollaborator(ctx, caller, tripID, userID); err != nil {
		return nil, labelNotFound(err, "collaborator not found")
	}
	return noContent204Response{}, nil
}

// requestToTrip maps the request body to a domain.Trip.
func requestToTrip(body TripInput) domain.Trip {
	t := domain.Trip{
		Title:     body.Title,
		StartDate: dateToTime(body.StartDate),
		EndDate:   dateToTime(body.EndDate),
	}
	if body.Description != nil {
		t.Description = *body.Description
	}
	return t
}

// tripToResponse maps a domain.Trip to the wire type.
func tripToResponse(t domain.Trip) Trip {
	collaborators := make([]openapi_types.UUID, len(t.Collaborators))
	copy(collaborators, t.Collaborators)
	return Trip{
		Id:            t.ID,
		Title:         t.Title,
		Description:   t.Description,
		StartDate:     timeToDate(t.StartDate),
		EndDate:       timeToDate(t.EndDate),
		OwnerId:       t.OwnerID,
		OwnerEmail:    emailOrNil(t.OwnerEmail),
		Collaborators: collaborators,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
	}
}

func dateToTime(d *openapi_types.Date) *time.Time {
	if d == nil {
		return nil
	}
	t := d.Time
	return &t
}

func timeToDate(t *time.Time) *openapi_types.Date {
	if t == nil {
		return nil
	}
	return &openapi_types.Date{Time: *t}
}
