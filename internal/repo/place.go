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

// PlaceRepo defines the persistence operations for Places.
// All write and single-read operations are scoped by tripID so a place can
// only be reached through its parent trip.
type PlaceRepo interface {
	// Create inserts a new place and returns the persisted record.
	// Returns domain.ErrNotFound if the parent trip does not exist.
	Create(ctx context.Context, place domain.Place) (domain.Place, error)

	// GetByID retrieves a single place, scoped to the given tripID.
	GetByID(ctx context.Context, tripID, placeID uuid.UUID) (domain.Place, error)

	// ListByTripID returns all places of a trip ordered by day_number, then
	// creation time.
	ListByTripID(ctx context.Context, tripID uuid.UUID) ([]domain.Place, error)

	// Update overwrites the mutable fields of a place, scoped to place.TripID.
	Update(ctx context.Context, place domain.Place) (domain.Place, error)

	// Delete removes a place by ID, scoped to the given tripID.
	Delete(ctx context.Context, tripID, placeID uuid.UUID) error
}

const placeColumns = `id, trip_id, location_name, notes, day_number, created_at, updated_at`

// pgPlaceRepo is the Postgres implementation of PlaceRepo.
type pgPlaceRepo struct {
	db db
}

// NewPlaceRepo constructs a PlaceRepo backed by the provided db connection.
func NewPlaceRepo(db db) PlaceRepo {
	return &pgPlaceRepo{db: db}
}

func (r *pgPlaceRepo) Create(ctx context.Context, place domain.Place) (domain.Place, error) {
	const q = `
		INSERT INTO places (trip_id, location_name, notes, day_number)
		VALUES (@trip_id, @location_name, @notes, @day_number)
		RETURNING ` + placeColumns

	args := pgx.NamedArgs{
		"trip_id":       place.TripID,
		"location_name": place.LocationName,
		"notes":         place.Notes,
		"day_number":    place.DayNumber,
	}

	result, err := scanPlace(r.db.QueryRow(ctx, q, args))
	if err != nil {
		if pgErrorCode(err) == pgForeignKeyViolation {
			return domain.Place{}, fmt.Errorf("repo.PlaceRepo.Create: %w", domain.ErrNotFound)
		}
		return domain.Place{}, fmt.Errorf("repo.PlaceRepo.Create: %w", err)
	}
	return result, nil
}

func (r *pgPlaceRepo) GetByID(ctx context.Context, tripID, placeID uuid.UUID) (domain.Place, error) {
	const q = `SELECT ` + placeColumns + ` FROM places WHERE id = @id AND trip_id = @trip_id`

	result, err := scanPlace(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": placeID, "trip_id": tripID}))
	if err != nil {
		return domain.Place{}, fmt.Errorf("repo.PlaceRepo.GetByID: %w", err)
	}
	return result, nil
}

func (r *pgPlaceRepo) ListByTripID(ctx context.Context, tripID uuid.UUID) ([]domain.Place, error) {
	const q = `
		SELECT ` + placeColumns + `
		FROM places
		WHERE trip_id = @trip_id
		ORDER BY day_number, created_at, id`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"trip_id": tripID})
	if err != nil {
		return nil, fmt.Errorf("repo.PlaceRepo.ListByTripID: %w", err)
	}
	defer rows.Close()

	places := []domain.Place{}
	for rows.Next() {
		p, err := scanPlace(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.PlaceRepo.ListByTripID: scan: %w", err)
		}
		places = append(places, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.PlaceRepo.ListByTripID: rows: %w", err)
	}
	return places, nil
}

func (r *pgPlaceRepo) Update(ctx context.Context, place domain.Place) (domain.Place, error) {
	const q = `
		UPDATE places
		SET location_name = @location_name,
		    notes         = @notes,
		    day_number    = @day_number,
		    updated_at    = now()
		WHERE id = @id AND trip_id = @trip_id
		RETURNING ` + placeColumns

	args := pgx.NamedArgs{
		"id":            place.ID,
		"trip_id":       place.TripID,
		"location_name": place.LocationName,
		"notes":         place.Notes,
		"day_number":    place.DayNumber,
	}

	result, err := scanPlace(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Place{}, fmt.Errorf("repo.PlaceRepo.Update: %w", err)
	}
	return result, nil
}

func (r *pgPlaceRepo) Delete(ctx context.Context, tripID, placeID uuid.UUID) error {
	const q = `DELETE FROM places WHERE id = @id AND trip_id = @trip_id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": placeID, "trip_id": tripID})
	if err != nil {
		return fmt.Errorf("repo.PlaceRepo.Delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("repo.PlaceRepo.Delete: %w", domain.ErrNotFound)
	}
	return nil
}

func scanPlace(s scanner) (domain.Place, error) {
	var (
		p      domain.Place
		id     pgtype.UUID
		tripID pgtype.UUID
	)
	err := s.Scan(&id, &tripID, &p.LocationName, &p.Notes, &p.DayNumber, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Place{}, domain.ErrNotFound
		}
		return domain.Place{}, err
	}
	p.ID = uuid.UUID(id.Bytes)
	p.TripID = uuid.UUID(tripID.Bytes)
	return p, nil
}
