package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/trip-planner/backend/internal/domain"
)

// TripRepo defines the persistence operations for Trips and their
// collaborator sets. The service layer depends on this interface, not the
// Postgres implementation.
type TripRepo interface {
	// Create inserts a new trip and returns the persisted record (with
	// DB-generated id, created_at, and updated_at populated).
	Create(ctx context.Context, trip domain.Trip) (domain.Trip, error)

	// GetByID retrieves a trip together with its collaborators.
	// Returns domain.ErrNotFound if no trip with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error)

	// ListForMemberPaged returns one page of the trips userID owns or
	// collaborates on, newest first, and the total count.
	ListForMemberPaged(ctx context.Context, userID uuid.UUID, p domain.PaginationParams) ([]domain.Trip, int64, error)

	// Update overwrites title, description, and dates. Owner fields are never
	// touched. Returns domain.ErrNotFound if no trip with that ID exists.
	Update(ctx context.Context, trip domain.Trip) (domain.Trip, error)

	// Delete removes a trip and, by cascade, its places, collaborators, and invites.
	Delete(ctx context.Context, id uuid.UUID) error

	// AddCollaborator adds userID to the trip's collaborator set.
	// Idempotent: adding an existing member is a no-op.
	AddCollaborator(ctx context.Context, tripID, userID uuid.UUID) error

	// RemoveCollaborator removes userID from the collaborator set.
	// Returns domain.ErrNotFound if userID was not a collaborator.
	RemoveCollaborator(ctx context.Context, tripID, userID uuid.UUID) error
}

// tripColumns selects a trip row aliased as t, with its collaborator ids
// aggregated in insertion order.
const tripColumns = `
	t.id, t.title, t.description, t.start_date, t.end_date,
	t.owner_id, t.owner_email, t.created_at, t.updated_at,
	COALESCE((
		SELECT array_agg(c.user_id ORDER BY c.added_at, c.user_id)
		FROM trip_collaborators c
		WHERE c.trip_id = t.id
	), '{}'::uuid[])`

// pgTripRepo is the Postgres implementation of TripRepo.
type pgTripRepo struct {
	db db
}

// NewTripRepo constructs a TripRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewTripRepo(db db) TripRepo {
	return &pgTripRepo{db: db}
}

func (r *pgTripRepo) Create(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	const q = `
		INSERT INTO trips AS t (title, description, start_date, end_date, owner_id, owner_email)
		VALUES (@title, @description, @start_date, @end_date, @owner_id, @owner_email)
		RETURNING ` + tripColumns

	args := pgx.NamedArgs{
		"title":       trip.Title,
		"description": trip.Description,
		"start_date":  trip.StartDate, // nil becomes NULL
		"end_date":    trip.EndDate,
		"owner_id":    trip.OwnerID,
		"owner_email": trip.OwnerEmail,
	}

	result, err := scanTrip(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Create: %w", err)
	}
	return result, nil
}

func (r *pgTripRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	const q = `SELECT ` + tripColumns + ` FROM trips t WHERE t.id = @id`

	result, err := scanTrip(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.GetByID: %w", err)
	}
	return result, nil
}

func (r *pgTripRepo) ListForMemberPaged(ctx context.Context, userID uuid.UUID, p domain.PaginationParams) ([]domain.Trip, int64, error) {
	const where = `
		WHERE t.owner_id = @user_id
		   OR EXISTS (
			SELECT 1 FROM trip_collaborators m
			WHERE m.trip_id = t.id AND m.user_id = @user_id
		   )`

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM trips t`+where, pgx.NamedArgs{"user_id": userID}).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("repo.TripRepo.ListForMemberPaged: count: %w", err)
	}

	q := `SELECT ` + tripColumns + ` FROM trips t` + where + `
		ORDER BY t.created_at DESC, t.id
		LIMIT @limit OFFSET @offset`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{
		"user_id": userID,
		"limit":   p.Limit,
		"offset":  p.Offset(),
	})
	if err != nil {
		return nil, 0, fmt.Errorf("repo.TripRepo.ListForMemberPaged: %w", err)
	}
	defer rows.Close()

	trips := []domain.Trip{}
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("repo.TripRepo.ListForMemberPaged: scan: %w", err)
		}
		trips = append(trips, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("repo.TripRepo.ListForMemberPaged: rows: %w", err)
	}
	return trips, total, nil
}

func (r *pgTripRepo) Update(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	const q = `
		UPDATE trips AS t
		SET title       = @title,
		    description = @description,
		    start_date  = @start_date,
		    end_date    = @end_date,
		    updated_at  = now()
		WHERE t.id = @id
		RETURNING ` + tripColumns

	args := pgx.NamedArgs{
		"id":          trip.ID,
		"title":       trip.Title,
		"description": trip.Description,
		"start_date":  trip.StartDate,
		"end_date":    trip.EndDate,
	}

	result, err := scanTrip(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Trip{}, fmt.Errorf("repo.TripRepo.Update: %w", err)
	}
	return result, nil
}

func (r *pgTripRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM trips WHERE id = @id`, pgx.NamedArgs{"id": id})
	if err != nil {
		return fmt.Errorf("repo.TripRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.TripRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

func (r *pgTripRepo) AddCollaborator(ctx context.Context, tripID, userID uuid.UUID) error {
	const q = `
		INSERT INTO trip_collaborators (trip_id, user_id)
		VALUES (@trip_id, @user_id)
		ON CONFLICT (trip_id, user_id) DO NOTHING`

	_, err := r.db.Exec(ctx, q, pgx.NamedArgs{"trip_id": tripID, "user_id": userID})
	if err != nil {
		if pgErrorCode(err) == pgForeignKeyViolation {
			return fmt.Errorf("repo.TripRepo.AddCollaborator: %w", domain.ErrNotFound)
		}
		return fmt.Errorf("repo.TripRepo.AddCollaborator: %w", err)
	}
	return nil
}

func (r *pgTripRepo) RemoveCollaborator(ctx context.Context, tripID, userID uuid.UUID) error {
	const q = `DELETE FROM trip_collaborators WHERE trip_id = @trip_id AND user_id = @user_id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"trip_id": tripID, "user_id": userID})
	if err != nil {
		return fmt.Errorf("repo.TripRepo.RemoveCollaborator: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.TripRepo.RemoveCollaborator: %w", domain.ErrNotFound)
	}
	return nil
}

// scanTrip maps a row selected with tripColumns into a domain.Trip.
func scanTrip(s scanner) (domain.Trip, error) {
	var (
		t         domain.Trip
		id        pgtype.UUID
		ownerID   pgtype.UUID
		startDate pgtype.Date
		endDate   pgtype.Date
		collabs   []pgtype.UUID
	)

	err := s.Scan(&id, &t.Title, &t.Description, &startDate, &endDate,
		&ownerID, &t.OwnerEmail, &t.CreatedAt, &t.UpdatedAt, &collabs)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Trip{}, domain.ErrNotFound
		}
		return domain.Trip{}, err
	}

	t.ID = uuid.UUID(id.Bytes)
	t.OwnerID = uuid.UUID(ownerID.Bytes)
	t.StartDate = dateOrNil(startDate)
	t.EndDate = dateOrNil(endDate)
	t.Collaborators = make([]uuid.UUID, 0, len(collabs))
	for _, c := range collabs {
		t.Collaborators = append(t.Collaborators, uuid.UUID(c.Bytes))
	}
	return t, nil
}
