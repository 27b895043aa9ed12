package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/pkordes/trip-planner/backend/internal/domain"
)

// InviteRepo defines the persistence operations for Invites.
type InviteRepo interface {
	// Create inserts a pending invite. Returns domain.ErrConflict if a pending
	// invite for the same (trip, email) already exists.
	Create(ctx context.Context, inv domain.Invite) (domain.Invite, error)

	// HasPending reports whether a pending invite exists for (tripID, email),
	// regardless of its expiry.
	HasPending(ctx context.Context, tripID uuid.UUID, email string) (bool, error)

	// GetByTokenHash looks an invite up by token fingerprint. Inside a
	// transaction the row stays locked until commit or rollback.
	GetByTokenHash(ctx context.Context, tokenHash string) (domain.Invite, error)

	// MarkAccepted flips a pending invite to accepted. Returns
	// domain.ErrConflict if the invite is no longer pending.
	MarkAccepted(ctx context.Context, id, acceptedBy uuid.UUID, at time.Time) (domain.Invite, error)

	// ListByTripID returns every invite of a trip, newest first.
	ListByTripID(ctx context.Context, tripID uuid.UUID) ([]domain.Invite, error)

	// DeleteExpiredPending removes pending invites whose expiry is at or
	// before cutoff and returns how many were removed.
	DeleteExpiredPending(ctx context.Context, cutoff time.Time) (int64, error)
}

const inviteColumns = `id, trip_id, email, token_hash, status, invited_by, accepted_by, created_at, expires_at, accepted_at`

type pgInviteRepo struct {
	db db
}

// NewInviteRepo constructs an InviteRepo backed by the provided db connection.
func NewInviteRepo(db db) InviteRepo {
	return &pgInviteRepo{db: db}
}

func (r *pgInviteRepo) Create(ctx context.Context, inv domain.Invite) (domain.Invite, error) {
	const q = `
		INSERT INTO invites (trip_id, email, token_hash, status, invited_by, created_at, expires_at)
		VALUES (@trip_id, @email, @token_hash, 'pending', @invited_by, @created_at, @expires_at)
		RETURNING ` + inviteColumns

	args := pgx.NamedArgs{
		"trip_id":    inv.TripID,
		"email":      inv.Email,
		"token_hash": inv.TokenHash,
		"invited_by": inv.InvitedBy,
		"created_at": inv.CreatedAt,
		"expires_at": inv.ExpiresAt,
	}

	result, err := scanInvite(r.db.QueryRow(ctx, q, args))
	if err != nil {
		switch pgErrorCode(err) {
		case pgUniqueViolation:
			return domain.Invite{}, fmt.Errorf("repo.InviteRepo.Create: %w: invite already sent", domain.ErrConflict)
		case pgForeignKeyViolation:
			return domain.Invite{}, fmt.Errorf("repo.InviteRepo.Create: %w", domain.ErrNotFound)
		}
		return domain.Invite{}, fmt.Errorf("repo.InviteRepo.Create: %w", err)
	}
	return result, nil
}

func (r *pgInviteRepo) HasPending(ctx context.Context, tripID uuid.UUID, email string) (bool, error) {
	const q = `
		SELECT EXISTS (
			SELECT 1 FROM invites
			WHERE trip_id = @trip_id AND email = @email AND status = 'pending'
		)`

	var exists bool
	if err := r.db.QueryRow(ctx, q, pgx.NamedArgs{"trip_id": tripID, "email": email}).Scan(&exists); err != nil {
		return false, fmt.Errorf("repo.InviteRepo.HasPending: %w", err)
	}
	return exists, nil
}

func (r *pgInviteRepo) GetByTokenHash(ctx context.Context, tokenHash string) (domain.Invite, error) {
	const q = `SELECT ` + inviteColumns + ` FROM invites WHERE token_hash = @token_hash FOR UPDATE`

	result, err := scanInvite(r.db.QueryRow(ctx, q, pgx.NamedArgs{"token_hash": tokenHash}))
	if err != nil {
		return domain.Invite{}, fmt.Errorf("repo.InviteRepo.GetByTokenHash: %w", err)
	}
	return result, nil
}

func (r *pgInviteRepo) MarkAccepted(ctx context.Context, id, acceptedBy uuid.UUID, at time.Time) (domain.Invite, error) {
	const q = `
		UPDATE invites
		SET status      = 'accepted',
		    accepted_by = @accepted_by,
		    accepted_at = @accepted_at
		WHERE id = @id AND status = 'pending'
		RETURNING ` + inviteColumns

	result, err := scanInvite(r.db.QueryRow(ctx, q, pgx.NamedArgs{
		"id":          id,
		"accepted_by": acceptedBy,
		"accepted_at": at,
	}))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Invite{}, fmt.Errorf("repo.InviteRepo.MarkAccepted: %w: invite already used", domain.ErrConflict)
		}
		return domain.Invite{}, fmt.Errorf("repo.InviteRepo.MarkAccepted: %w", err)
	}
	return result, nil
}

func (r *pgInviteRepo) ListByTripID(ctx context.Context, tripID uuid.UUID) ([]domain.Invite, error) {
	const q = `
		SELECT ` + inviteColumns + `
		FROM invites
		WHERE trip_id = @trip_id
		ORDER BY created_at DESC, id`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"trip_id": tripID})
	if err != nil {
		return nil, fmt.Errorf("repo.InviteRepo.ListByTripID: %w", err)
	}
	defer rows.Close()

	invites := []domain.Invite{}
	for rows.Next() {
		inv, err := scanInvite(rows)
		if err != nil {
			return nil, fmt.Errorf("repo.InviteRepo.ListByTripID: scan: %w", err)
		}
		invites = append(invites, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repo.InviteRepo.ListByTripID: rows: %w", err)
	}
	return invites, nil
}

func (r *pgInviteRepo) DeleteExpiredPending(ctx context.Context, cutoff time.Time) (int64, error) {
	const q = `DELETE FROM invites WHERE status = 'pending' AND expires_at <= @cutoff`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"cutoff": cutoff})
	if err != nil {
		return 0, fmt.Errorf("repo.InviteRepo.DeleteExpiredPending: %w", err)
	}
	return tag.RowsAffected(), nil
}

func scanInvite(s scanner) (domain.Invite, error) {
	var (
		inv        domain.Invite
		id         pgtype.UUID
		tripID     pgtype.UUID
		invitedBy  pgtype.UUID
		acceptedBy pgtype.UUID
		acceptedAt pgtype.Timestamptz
		status     string
	)
	err := s.Scan(&id, &tripID, &inv.Email, &inv.TokenHash, &status, &invitedBy,
		&acceptedBy, &inv.CreatedAt, &inv.ExpiresAt, &acceptedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.Invite{}, domain.ErrNotFound
		}
		return domain.Invite{}, err
	}
	inv.ID = uuid.UUID(id.Bytes)
	inv.TripID = uuid.UUID(tripID.Bytes)
	inv.InvitedBy = uuid.UUID(invitedBy.Bytes)
	inv.Status = domain.InviteStatus(status)
	inv.AcceptedBy = uuidOrNil(acceptedBy)
	inv.AcceptedAt = timeOrNil(acceptedAt)
	return inv, nil
}
