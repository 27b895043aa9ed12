package repo_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/trip-planner/backend/internal/domain"
	"github.com/pkordes/trip-planner/backend/internal/repo"
	"github.com/pkordes/trip-planner/backend/testutil"
)

// newTestTx opens a transaction against the test database. The transaction
// is rolled back when the test finishes, giving free per-test isolation.
func newTestTx(t *testing.T) pgx.Tx {
	t.Helper()
	pool := testutil.NewPool(t)

	tx, err := pool.Begin(context.Background())
	require.NoError(t, err, "begin transaction")

	t.Cleanup(func() {
		_ = tx.Rollback(context.Background())
	})
	return tx
}

// newTestRepos returns every repo bound to one rolled-back transaction.
func newTestRepos(t *testing.T) repo.Repos {
	t.Helper()
	return repo.NewRepos(newTestTx(t))
}

// mustCreateUser inserts a user with a unique email.
func mustCreateUser(t *testing.T, users repo.UserRepo) domain.User {
	t.Helper()
	u, err := users.Create(context.Background(), domain.User{
		Email:        fmt.Sprintf("user-%s@example.com", uuid.NewString()[:8]),
		PasswordHash: "not-a-real-hash",
	})
	require.NoError(t, err, "create user")
	return u
}

// mustCreateTrip inserts a trip owned by owner.
func mustCreateTrip(t *testing.T, trips repo.TripRepo, owner domain.User) domain.Trip {
	t.Helper()
	trip, err := trips.Create(context.Background(), domain.Trip{
		Title:      "Lisbon long weekend",
		OwnerID:    owner.ID,
		OwnerEmail: owner.Email,
	})
	require.NoError(t, err, "create trip")
	return trip
}
