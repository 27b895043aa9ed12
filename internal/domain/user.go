package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// User is a registered account.
type User struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// Identity is the verified caller of a request. It is passed explicitly into
// every service operation instead of being read from shared state.
type Identity struct {
	UserID uuid.UUID
	Email  string
}

// NormalizeEmail trims and lower-cases an email so comparisons and unique
// lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
