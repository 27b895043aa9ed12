// Package domain contains the core data types for the trip planner.
// It has no dependencies on the transport or storage layers and is imported
// by every other internal package (repo, service, handler).
package domain

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

// Trip is the top-level aggregate. Places and invites belong to a trip and
// derive their access rules from its owner and collaborator set.
type Trip struct {
	ID          uuid.UUID
	Title       string
	Description string
	StartDate   *time.Time // nil when no start date was chosen
	EndDate     *time.Time
	OwnerID     uuid.UUID
	OwnerEmail  string
	// Collaborators never contains OwnerID.
	Collaborators []uuid.UUID
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Access is the capability set of one caller on one trip.
type Access struct {
	IsOwner        bool
	IsCollaborator bool
}

// CanEdit reports whether the caller may create, update, or delete places.
func (a Access) CanEdit() bool {
	return a.IsOwner || a.IsCollaborator
}

// AccessFor computes the caller's capabilities on the trip.
func (t Trip) AccessFor(callerID uuid.UUID) Access {
	return Access{
		IsOwner:        callerID != uuid.Nil && t.OwnerID == callerID,
		IsCollaborator: callerID != uuid.Nil && slices.Contains(t.Collaborators, callerID),
	}
}

// ReadVisibility controls who may read a trip and its places.
type ReadVisibility string

const (
	// VisibilityMembers restricts reads to the owner and collaborators.
	VisibilityMembers ReadVisibility = "members"
	// VisibilityPublic lets any authenticated caller holding the trip id read it.
	VisibilityPublic ReadVisibility = "public"
)

// CanRead reports whether a caller with access a may read a trip under v.
func (v ReadVisibility) CanRead(a Access) bool {
	if v == VisibilityPublic {
		return true
	}
	return a.CanEdit()
}
