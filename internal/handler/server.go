// Package handler implements the HTTP handlers for the Trip Planner API.
// All handlers are methods on Server written in strict form (see strict.go):
// they return a typed response object or an error and never write to the
// connection themselves. Methods are split into domain-specific files
// (health.go, trip.go, etc.) and NewRouter mounts them on a chi router.
package handler

import (
	"context"

	"github.com/google/uuid"

	"github.com/pkordes/trip-planner/backend/internal/domain"
)

// TripServicer defines the trip operations the handlers depend on.
// Defining the interface here (in the consumer package) lets handler tests
// inject a mock without touching the database or service layer.
type TripServicer interface {
	Create(ctx context.Context, callerID uuid.UUID, trip domain.Trip) (domain.Trip, error)
	Get(ctx context.Context, callerID, tripID uuid.UUID) (domain.Trip, error)
	List(ctx context.Context, callerID uuid.UUID, p domain.PaginationParams) (domain.Page[domain.Trip], error)
	Update(ctx context.Context, callerID uuid.UUID, trip domain.Trip) (domain.Trip, error)
	Delete(ctx context.Context, callerID, tripID uuid.UUID) error
	RemoveCollaborator(ctx context.Context, callerID, tripID, userID uuid.UUID) error
}

// PlaceServicer defines the place operations the handlers depend on.
type PlaceServicer interface {
	Create(ctx context.Context, callerID uuid.UUID, place domain.Place) (domain.Place, error)
	Get(ctx context.Context, callerID, tripID, placeID uuid.UUID) (domain.Place, error)
	List(ctx context.Context, callerID, tripID uuid.UUID) ([]domain.Place, error)
	Update(ctx context.Context, callerID uuid.UUID, place domain.Place) (domain.Place, error)
	Delete(ctx context.Context, callerID, tripID, placeID uuid.UUID) error
}

// InviteServicer defines the invite lifecycle operations.
type InviteServicer interface {
	Create(ctx context.Context, tripID uuid.UUID, email string, callerID uuid.UUID) (domain.Invite, error)
	Accept(ctx context.Context, token string, callerID uuid.UUID) (domain.Invite, error)
	ListByTrip(ctx context.Context, callerID, tripID uuid.UUID) ([]domain.Invite, error)
}

// AuthServicer defines account registration and sign-in.
type AuthServicer interface {
	Register(ctx context.Context, email, password string) (domain.User, string, error)
	SignIn(ctx context.Context, email, password string) (domain.User, string, error)
	Me(ctx context.Context, callerID uuid.UUID) (domain.User, error)
}

// ExportServicer produces the flat itinerary of one trip.
type ExportServicer interface {
	Export(ctx context.Context, callerID, tripID uuid.UUID) ([]domain.ItineraryRow, error)
}

// Services groups the dependencies of Server. Tests may leave fields nil
// when they never reach the matching routes.
type Services struct {
	Trips   TripServicer
	Places  PlaceServicer
	Invites InviteServicer
	Auth    AuthServicer
	Export  ExportServicer
}

// Server holds the services every handler method calls into.
type Server struct {
	trips   TripServicer
	places  PlaceServicer
	invites InviteServicer
	auth    AuthServicer
	export  ExportServicer
}

// NewServer constructs the Server with all its dependencies.
func NewServer(svc Services) *Server {
	return &Server{
		trips:   svc.Trips,
		places:  svc.Places,
		invites: svc.Invites,
		auth:    svc.Auth,
		export:  svc.Export,
	}
}
