package testutil_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/trip-planner/backend/migrations"
	"github.com/pkordes/trip-planner/backend/testutil"
)

// schemaTables lists every table the migrations own.
var schemaTables = []string{"users", "trips", "trip_collaborators", "places", "invites"}

// schemaIndexes lists indexes that back uniqueness rules of the invite flow.
var schemaIndexes = []string{"users_email_key", "invites_token_hash_key", "invites_one_pending_per_email"}

// TestMigrations applies every migration from an empty schema, checks the
// resulting objects, re-applies to confirm Up is a no-op, then rolls all the
// way back. It resets first because the repo TestMain may already have
// migrated the shared database.
func TestMigrations(t *testing.T) {
	db := testutil.NewSQLDB(t)
	ctx := context.Background()

	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	require.NoError(t, err)

	_, err = provider.DownTo(ctx, 0)
	require.NoError(t, err, "initial reset")

	applied, err := migrations.Up(ctx, db)
	require.NoError(t, err)
	assert.Positive(t, applied)

	for _, table := range schemaTables {
		assert.True(t, exists(t, db, tableQuery, table), "table %q missing after up", table)
	}
	for _, index := range schemaIndexes {
		assert.True(t, exists(t, db, indexQuery, index), "index %q missing after up", index)
	}

	again, err := migrations.Up(ctx, db)
	require.NoError(t, err)
	assert.Zero(t, again, "second Up applied migrations")

	_, err = provider.DownTo(ctx, 0)
	require.NoError(t, err, "goose down-to 0")

	for _, table := range schemaTables {
		assert.False(t, exists(t, db, tableQuery, table), "table %q left after down", table)
	}

	// Leave the schema migrated for any package tests that run afterwards.
	_, err = migrations.Up(ctx, db)
	require.NoError(t, err)
}

const (
	tableQuery = `SELECT EXISTS (
		SELECT 1 FROM information_schema.tables
		WHERE table_schema = 'public' AND table_name = $1)`
	indexQuery = `SELECT EXISTS (
		SELECT 1 FROM pg_indexes
		WHERE schemaname = 'public' AND indexname = $1)`
)

func exists(t *testing.T, db *sql.DB, query, name string) bool {
	t.Helper()
	var ok bool
	require.NoError(t, db.QueryRowContext(context.Background(), query, name).Scan(&ok), "lookup %q", name)
	return ok
}
