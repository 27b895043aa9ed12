package handler

import (
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"
)

// Wire types for the JSON API. Field names and formats follow
// spec/openapi.yaml; keep the two in step when either changes.

// ErrorDetail is the body of every non-2xx response.
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps ErrorDetail under the "error" key.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

type User struct {
	Id        openapi_types.UUID   `json:"id"`
	Email     *openapi_types.Email `json:"email,omitempty"`
	CreatedAt time.Time            `json:"createdAt"`
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}

type Trip struct {
	Id            openapi_types.UUID   `json:"id"`
	Title         string               `json:"title"`
	Description   string               `json:"description"`
	StartDate     *openapi_types.Date  `json:"startDate,omitempty"`
	EndDate       *openapi_types.Date  `json:"endDate,omitempty"`
	OwnerId       openapi_types.UUID   `json:"ownerId"`
	OwnerEmail    *openapi_types.Email `json:"ownerEmail,omitempty"`
	Collaborators []openapi_types.UUID `json:"collaborators"`
	CreatedAt     time.Time            `json:"createdAt"`
	UpdatedAt     time.Time            `json:"updatedAt"`
}

// TripInput is the body of POST /trips and PUT /trips/{tripId}.
type TripInput struct {
	Title       string              `json:"title"`
	Description *string             `json:"description,omitempty"`
	StartDate   *openapi_types.Date `json:"startDate,omitempty"`
	EndDate     *openapi_types.Date `json:"endDate,omitempty"`
}

type Pagination struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
}

type TripList struct {
	Data       []Trip     `json:"data"`
	Pagination Pagination `json:"pagination"`
}

type Place struct {
	Id           openapi_types.UUID `json:"id"`
	TripId       openapi_types.UUID `json:"tripId"`
	LocationName string             `json:"locationName"`
	Notes        string             `json:"notes"`
	DayNumber    int                `json:"dayNumber"`
	CreatedAt    time.Time          `json:"createdAt"`
	UpdatedAt    time.Time          `json:"updatedAt"`
}

// PlaceInput is the body of POST and PUT on places.
type PlaceInput struct {
	LocationName string  `json:"locationName"`
	Notes        *string `json:"notes,omitempty"`
	DayNumber    int     `json:"dayNumber"`
}

// Invite never carries the token; the invitee receives it by email only.
type Invite struct {
	Id         openapi_types.UUID   `json:"id"`
	TripId     openapi_types.UUID   `json:"tripId"`
	Email      *openapi_types.Email `json:"email,omitempty"`
	Status     string               `json:"status"`
	InvitedBy  openapi_types.UUID   `json:"invitedBy"`
	AcceptedBy *openapi_types.UUID  `json:"acceptedBy,omitempty"`
	CreatedAt  time.Time            `json:"createdAt"`
	ExpiresAt  time.Time            `json:"expiresAt"`
	AcceptedAt *time.Time           `json:"acceptedAt,omitempty"`
}

type CreateInviteRequest struct {
	TripId openapi_types.UUID `json:"tripId"`
	Email  string             `json:"email"`
}

type AcceptInviteRequest struct {
	Token string `json:"token"`
}

// InviteResult is returned by create and accept.
type InviteResult struct {
	Message string `json:"message"`
	Invite  Invite `json:"invite"`
}

type InviteList struct {
	Data []Invite `json:"data"`
}

// ItineraryRow is one line of GET /trips/{tripId}/export.
type ItineraryRow struct {
	TripId        openapi_types.UUID  `json:"tripId"`
	TripTitle     string              `json:"tripTitle"`
	TripStartDate *openapi_types.Date `json:"tripStartDate,omitempty"`
	TripEndDate   *openapi_types.Date `json:"tripEndDate,omitempty"`
	DayNumber     *int                `json:"dayNumber,omitempty"`
	LocationName  *string             `json:"locationName,omitempty"`
	PlaceNotes    *string             `json:"placeNotes,omitempty"`
}
