package domain

import "errors"

// Error kinds shared by every layer. Repos and services wrap these with
// fmt.Errorf("...: %w", ...) and handlers classify them with errors.Is.
var (
	// ErrValidation marks missing or malformed input (InvalidRequest).
	// Handlers map it to HTTP 400.
	ErrValidation = errors.New("validation error")

	// ErrNotFound is returned when the requested trip, place, invite, or user
	// does not exist. Handlers map it to HTTP 404.
	ErrNotFound = errors.New("not found")

	// ErrForbidden is returned when the caller lacks the capability the
	// operation requires (owner-only or member-only actions).
	ErrForbidden = errors.New("forbidden")

	// ErrConflict covers duplicate pending invites, already-used invites and
	// duplicate account emails.
	ErrConflict = errors.New("conflict")

	// ErrExpired is returned when an invite is presented at or after its
	// expiry, even if it is still pending.
	ErrExpired = errors.New("expired")

	// ErrConfiguration is returned when a record is missing metadata the
	// operation depends on (e.g. a trip without an owner email).
	ErrConfiguration = errors.New("configuration error")

	// ErrNotification is returned when an email could not be dispatched after
	// the record it announces was already persisted.
	ErrNotification = errors.New("notification error")

	// ErrUnauthorized is returned for bad credentials or a missing identity.
	ErrUnauthorized = errors.New("unauthorized")
)
