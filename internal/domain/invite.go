package domain

import (
	"time"

	"github.com/google/uuid"
)

// InviteStatus is the lifecycle state of an invite.
// The only legal transition is pending → accepted.
type InviteStatus string

const (
	InviteStatusPending  InviteStatus = "pending"
	InviteStatusAccepted InviteStatus = "accepted"
)

// DefaultInviteTTL is how long an invite stays usable after creation.
const DefaultInviteTTL = 7 * 24 * time.Hour

// DefaultInviteRetention is how long an expired pending invite is kept before
// the sweep removes it. Until then accepting it still reports ErrExpired.
const DefaultInviteRetention = 30 * 24 * time.Hour

// Invite grants collaborator access to one trip for one email address.
//
// Token holds the raw token and is only populated on the value returned by
// the creation flow, so the invite link can be built. Storage keeps
// TokenHash only.
type Invite struct {
	ID         uuid.UUID
	TripID     uuid.UUID
	Email      string
	Token      string
	TokenHash  string
	Status     InviteStatus
	InvitedBy  uuid.UUID
	AcceptedBy *uuid.UUID
	CreatedAt  time.Time
	ExpiresAt  time.Time
	AcceptedAt *time.Time
}

// IsExpired reports whether the invite is unusable at now.
func (i Invite) IsExpired(now time.Time) bool {
	return !now.Before(i.ExpiresAt)
}
