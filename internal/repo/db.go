// Package repo contains all database access logic for the trip planner.
// Each resource has its own file with an interface and a Postgres implementation.
// No business logic lives here, only SQL and type mapping.
package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// SQLSTATE codes the repos translate into domain errors.
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows integration
// tests to pass a transaction that is rolled back after each test.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// beginner is satisfied by *pgxpool.Pool and pgx.Tx. On a pgx.Tx, Begin opens
// a savepoint, so a TxRunner built on a test transaction still rolls back
// cleanly with it.
type beginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// scanner is satisfied by both pgx.Row and pgx.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// Repos bundles every repository bound to the same connection or transaction.
type Repos struct {
	Users   UserRepo
	Trips   TripRepo
	Places  PlaceRepo
	Invites InviteRepo
}

// NewRepos builds all repositories on top of db.
func NewRepos(db db) Repos {
	return Repos{
		Users:   NewUserRepo(db),
		Trips:   NewTripRepo(db),
		Places:  NewPlaceRepo(db),
		Invites: NewInviteRepo(db),
	}
}

// TxRunner runs a unit of work atomically. Every write made through the
// Repos handed to fn commits together, or none do.
type TxRunner interface {
	InTx(ctx context.Context, fn func(r Repos) error) error
}

type pgTxRunner struct {
	b beginner
}

// NewTxRunner returns a TxRunner that opens transactions on b.
func NewTxRunner(b beginner) TxRunner {
	return &pgTxRunner{b: b}
}

// InTx begins a transaction, calls fn with repos bound to it, and commits if
// fn returns nil. Any error from fn rolls the transaction back and is
// returned unchanged so callers can still classify it with errors.Is.
func (t *pgTxRunner) InTx(ctx context.Context, fn func(r Repos) error) error {
	tx, err := t.b.Begin(ctx)
	if err != nil {
		return fmt.Errorf("repo.TxRunner.InTx: begin: %w", err)
	}
	// Rollback after a successful Commit is a no-op.
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(NewRepos(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("repo.TxRunner.InTx: commit: %w", err)
	}
	return nil
}

// pgErrorCode returns the SQLSTATE of err, or "" if err is not a Postgres error.
func pgErrorCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}
