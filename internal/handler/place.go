package handler

import (
	"context"

	"github.com/pkordes/trip-planner/backend/internal/domain"
)

// CreatePlace handles POST /trips/{tripId}/places.
func (s *Server) CreatePlace(ctx context.Context, req request) (responseObject, error) {
	caller, tripID, err := req.callerAndTrip()
	if err != nil {
		return nil, err
	}
	var body PlaceInput
	if err := req.decodeBody(&body); err != nil {
		return nil, err
	}

	place := requestToPlace(body)
	place.TripID = tripID
	created, err := s.places.Create(ctx, caller, place)
	if err != nil {
		return nil, labelNotFound(err, "trip not found")
	}
	return created201(placeToResponse(created)), nil
}

// ListPlaces handles GET /trips/{tripId}/places, ordered by day.
func (s *Server) ListPlaces(ctx context.Context, req request) (responseObject, error) {
	caller, tripID, err := req.callerAndTrip()
	if err != nil {
		return nil, err
	}

	places, err := s.places.List(ctx, caller, tripID)
	if err != nil {
		return nil, labelNotFound(err, "trip not found")
	}
	out := make([]Place, len(places))
	for i, p := range places {
		out[i] = placeToResponse(p)
	}
	return ok200(out), nil
}

// GetPlace handles GET /trips/{tripId}/places/{placeId}.
func (s *Server) GetPlace(ctx context.Context, req request) (responseObject, error) {
	caller, tripID, err := req.callerAndTrip()
	if err != nil {
		return nil, err
	}
	placeID, err := req.pathID("placeId")
	if err != nil {
		return nil, err
	}

	place, err := s.places.Get(ctx, caller, tripID, placeID)
	if err != nil {
		return nil, labelNotFound(err, "place not found")
	}
	return ok200(placeToResponse(place)), nil
}

// UpdatePlace handles PUT /trips/{tripId}/places/{placeId}.
func (s *Server) UpdatePlace(ctx context.Context, req request) (responseObject, error) {
	caller, tripID, err := req.callerAndTrip()
	if err != nil {
		return nil, err
	}
	placeID, err := req.pathID("placeId")
	if err != nil {
		return nil, err
	}
	var body PlaceInput
	if err := req.decodeBody(&body); err != nil {
		return nil, err
	}

	place := requestToPlace(body)
	place.ID = placeID
	place.TripID = tripID
	updated, err := s.places.Update(ctx, caller, place)
	if err != nil {
		return nil, labelNotFound(err, "place not found")
	}
	return ok200(placeToResponse(updated)), nil
}

// DeletePlace handles DELETE /trips/{tripId}/places/{placeId}.
func (s *Server) DeletePlace(ctx context.Context, req request) (responseObject, error) {
	caller, tripID, err := req.callerAndTrip()
	if err != nil {
		return nil, err
	}
	placeID, err := req.pathID("placeId")
	if err != nil {
		return nil, err
	}

	if err := s.places.Delete(ctx, caller, tripID, placeID); err != nil {
		return nil, labelNotFound(err, "place not found")
	}
	return noContent204Response{}, nil
}

func requestToPlace(body PlaceInput) domain.Place {
	p := domain.Place{
		LocationName: body.LocationName,
		DayNumber:    body.DayNumber,
	}
	if body.Notes != nil {
		p.Notes = *body.Notes
	}
	return p
}

func placeToResponse(p domain.Place) Place {
	return Place{
		Id:           p.ID,
		TripId:       p.TripID,
		LocationName: p.LocationName,
		Notes:        p.Notes,
		DayNumber:    p.DayNumber,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}
