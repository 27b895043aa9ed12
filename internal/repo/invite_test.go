package repo_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/trip-planner/backend/internal/domain"
	"github.com/pkordes/trip-planner/backend/internal/repo"
)

func inviteFixture(trip domain.Trip, email, tokenHash string, now time.Time) domain.Invite {
	return domain.Invite{
		TripID:    trip.ID,
		Email:     email,
		TokenHash: tokenHash,
		InvitedBy: trip.OwnerID,
		CreatedAt: now,
		ExpiresAt: now.Add(domain.DefaultInviteTTL),
	}
}

func TestInviteRepo_CreateAndLookup(t *testing.T) {
	rs := newTestRepos(t)
	ctx := context.Background()
	owner := mustCreateUser(t, rs.Users)
	trip := mustCreateTrip(t, rs.Trips, owner)
	now := time.Now().UTC().Truncate(time.Microsecond)

	created, err := rs.Invites.Create(ctx, inviteFixture(trip, "bea@example.com", "hash-1", now))
	require.NoError(t, err)
	assert.Equal(t, domain.InviteStatusPending, created.Status)
	assert.Nil(t, created.AcceptedBy)
	assert.Nil(t, created.AcceptedAt)
	assert.True(t, created.ExpiresAt.Equal(now.Add(domain.DefaultInviteTTL)))

	pending, err := rs.Invites.HasPending(ctx, trip.ID, "bea@example.com")
	require.NoError(t, err)
	assert.True(t, pending)

	got, err := rs.Invites.GetByTokenHash(ctx, "hash-1")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	_, err = rs.Invites.GetByTokenHash(ctx, "unknown")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestInviteRepo_Create_DuplicatePending(t *testing.T) {
	rs := newTestRepos(t)
	ctx := context.Background()
	owner := mustCreateUser(t, rs.Users)
	trip := mustCreateTrip(t, rs.Trips, owner)
	now := time.Now().UTC()

	_, err := rs.Invites.Create(ctx, inviteFixture(trip, "bea@example.com", "hash-1", now))
	require.NoError(t, err)

	_, err = rs.Invites.Create(ctx, inviteFixture(trip, "bea@example.com", "hash-2", now))
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestInviteRepo_MarkAccepted(t *testing.T) {
	rs := newTestRepos(t)
	ctx := context.Background()
	owner := mustCreateUser(t, rs.Users)
	guest := mustCreateUser(t, rs.Users)
	trip := mustCreateTrip(t, rs.Trips, owner)
	now := time.Now().UTC()

	inv, err := rs.Invites.Create(ctx, inviteFixture(trip, guest.Email, "hash-1", now))
	require.NoError(t, err)

	accepted, err := rs.Invites.MarkAccepted(ctx, inv.ID, guest.ID, now)
	require.NoError(t, err)
	assert.Equal(t, domain.InviteStatusAccepted, accepted.Status)
	require.NotNil(t, accepted.AcceptedBy)
	assert.Equal(t, guest.ID, *accepted.AcceptedBy)
	require.NotNil(t, accepted.AcceptedAt)

	_, err = rs.Invites.MarkAccepted(ctx, inv.ID, guest.ID, now)
	assert.ErrorIs(t, err, domain.ErrConflict, "second accept must fail")

	// An accepted invite no longer blocks a fresh one for the same email.
	pending, err := rs.Invites.HasPending(ctx, trip.ID, guest.Email)
	require.NoError(t, err)
	assert.False(t, pending)
	_, err = rs.Invites.Create(ctx, inviteFixture(trip, guest.Email, "hash-2", now))
	assert.NoError(t, err)
}

func TestInviteRepo_ListByTripID_NewestFirst(t *testing.T) {
	rs := newTestRepos(t)
	ctx := context.Background()
	owner := mustCreateUser(t, rs.Users)
	trip := mustCreateTrip(t, rs.Trips, owner)
	now := time.Now().UTC()

	older, err := rs.Invites.Create(ctx, inviteFixture(trip, "a@example.com", "hash-a", now.Add(-time.Hour)))
	require.NoError(t, err)
	newer, err := rs.Invites.Create(ctx, inviteFixture(trip, "b@example.com", "hash-b", now))
	require.NoError(t, err)

	invites, err := rs.Invites.ListByTripID(ctx, trip.ID)
	require.NoError(t, err)
	require.Len(t, invites, 2)
	assert.Equal(t, newer.ID, invites[0].ID)
	assert.Equal(t, older.ID, invites[1].ID)
}

func TestInviteRepo_DeleteExpiredPending(t *testing.T) {
	rs := newTestRepos(t)
	ctx := context.Background()
	owner := mustCreateUser(t, rs.Users)
	guest := mustCreateUser(t, rs.Users)
	trip := mustCreateTrip(t, rs.Trips, owner)
	now := time.Now().UTC()

	stale := inviteFixture(trip, "stale@example.com", "hash-stale", now.Add(-30*24*time.Hour))
	_, err := rs.Invites.Create(ctx, stale)
	require.NoError(t, err)

	fresh := inviteFixture(trip, "fresh@example.com", "hash-fresh", now)
	_, err = rs.Invites.Create(ctx, fresh)
	require.NoError(t, err)

	// Accepted invites are history and survive the sweep even when expired.
	used, err := rs.Invites.Create(ctx, inviteFixture(trip, guest.Email, "hash-used", now.Add(-30*24*time.Hour)))
	require.NoError(t, err)
	_, err = rs.Invites.MarkAccepted(ctx, used.ID, guest.ID, now.Add(-29*24*time.Hour))
	require.NoError(t, err)

	n, err := rs.Invites.DeleteExpiredPending(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	invites, err := rs.Invites.ListByTripID(ctx, trip.ID)
	require.NoError(t, err)
	assert.Len(t, invites, 2)
}

func TestTxRunner_RollsBackOnError(t *testing.T) {
	tx := newTestTx(t)
	ctx := context.Background()
	rs := repo.NewRepos(tx)
	owner := mustCreateUser(t, rs.Users)
	trip := mustCreateTrip(t, rs.Trips, owner)
	guest := mustCreateUser(t, rs.Users)

	boom := errors.New("boom")
	err := repo.NewTxRunner(tx).InTx(ctx, func(r repo.Repos) error {
		require.NoError(t, r.Trips.AddCollaborator(ctx, trip.ID, guest.ID))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := rs.Trips.GetByID(ctx, trip.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Collaborators, "collaborator write should have rolled back")

	err = repo.NewTxRunner(tx).InTx(ctx, func(r repo.Repos) error {
		return r.Trips.AddCollaborator(ctx, trip.ID, guest.ID)
	})
	require.NoError(t, err)

	got, err = rs.Trips.GetByID(ctx, trip.ID)
	require.NoError(t, err)
	assert.Len(t, got.Collaborators, 1)
}
