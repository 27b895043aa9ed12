package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/trip-planner/backend/internal/auth"
	"github.com/pkordes/trip-planner/backend/internal/domain"
	"github.com/pkordes/trip-planner/backend/internal/logx"
	"github.com/pkordes/trip-planner/backend/internal/mailer"
	"github.com/pkordes/trip-planner/backend/internal/repo"
)

// InviteSender delivers the invite email. *mailer.InviteMailer satisfies it.
type InviteSender interface {
	SendInvite(ctx context.Context, e mailer.InviteEmail) error
}

// InviteConfig holds the tunables of the invite lifecycle.
type InviteConfig struct {
	// TTL is how long an invite stays usable. Zero means domain.DefaultInviteTTL.
	TTL time.Duration
	// AppURL is the frontend base URL the invite link points at.
	AppURL string
	// Retention is how long past expiry a pending invite survives the sweep.
	// Zero means domain.DefaultInviteRetention.
	Retention time.Duration
}

// InviteService creates, accepts, lists and sweeps collaborator invites.
type InviteService struct {
	trips   repo.TripRepo
	invites repo.InviteRepo
	tx      repo.TxRunner
	sender  InviteSender
	cfg     InviteConfig

	now           func() time.Time
	generateToken func() (string, error)
}

// NewInviteService constructs an InviteService. tx must open transactions on
// the same database the repos read from.
func NewInviteService(trips repo.TripRepo, invites repo.InviteRepo, tx repo.TxRunner, sender InviteSender, cfg InviteConfig) *InviteService {
	if cfg.TTL <= 0 {
		cfg.TTL = domain.DefaultInviteTTL
	}
	if cfg.Retention <= 0 {
		cfg.Retention = domain.DefaultInviteRetention
	}
	return &InviteService{
		trips:         trips,
		invites:       invites,
		tx:            tx,
		sender:        sender,
		cfg:           cfg,
		now:           time.Now,
		generateToken: auth.GenerateInviteToken,
	}
}

// SetClock replaces the time source. Tests use it to step past expiry.
func (s *InviteService) SetClock(now func() time.Time) {
	s.now = now
}

// Create mints a pending invite for email on tripID and emails the link.
//
// Checks run in order and stop at the first failure: inputs present, trip
// exists, caller owns the trip, trip has an owner email, invitee is not the
// owner, no pending invite for the same address. When the email cannot be
// sent the invite stays persisted and the error wraps domain.ErrNotification.
func (s *InviteService) Create(ctx context.Context, tripID uuid.UUID, email string, callerID uuid.UUID) (domain.Invite, error) {
	const op = "service.InviteService.Create"
	log := logx.FromContext(ctx)

	email = domain.NormalizeEmail(email)
	if tripID == uuid.Nil || email == "" || callerID == uuid.Nil {
		return domain.Invite{}, fmt.Errorf("%s: %w: trip id, email and caller are required", op, domain.ErrValidation)
	}
	if !validEmail(email) {
		return domain.Invite{}, fmt.Errorf("%s: %w: email is not a valid address", op, domain.ErrValidation)
	}

	trip, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		return domain.Invite{}, fmt.Errorf("%s: %w", op, err)
	}
	if trip.OwnerID != callerID {
		log.WarnContext(ctx, "invite attempted by non-owner", slog.String("trip_id", tripID.String()), slog.String("caller_id", callerID.String()))
		return domain.Invite{}, fmt.Errorf("%s: %w: only the owner can invite", op, domain.ErrForbidden)
	}
	if trip.OwnerEmail == "" {
		log.ErrorContext(ctx, "trip has no owner email", slog.String("trip_id", tripID.String()))
		return domain.Invite{}, fmt.Errorf("%s: %w: trip has no owner email", op, domain.ErrConfiguration)
	}
	if email == domain.NormalizeEmail(trip.OwnerEmail) {
		return domain.Invite{}, fmt.Errorf("%s: %w: cannot invite yourself", op, domain.ErrValidation)
	}

	pending, err := s.invites.HasPending(ctx, tripID, email)
	if err != nil {
		return domain.Invite{}, fmt.Errorf("%s: %w", op, err)
	}
	if pending {
		return domain.Invite{}, fmt.Errorf("%s: %w: invite already sent", op, domain.ErrConflict)
	}

	token, err := s.generateToken()
	if err != nil {
		return domain.Invite{}, fmt.Errorf("%s: generate token: %w", op, err)
	}

	now := s.now().UTC()
	inv, err := s.invites.Create(ctx, domain.Invite{
		TripID:    tripID,
		Email:     email,
		TokenHash: auth.FingerprintToken(token),
		Status:    domain.InviteStatusPending,
		InvitedBy: callerID,
		CreatedAt: now,
		ExpiresAt: now.Add(s.cfg.TTL),
	})
	if err != nil {
		// A concurrent creator can win the race between HasPending and the
		// insert; the partial unique index reports that as ErrConflict.
		return domain.Invite{}, fmt.Errorf("%s: %w", op, err)
	}
	inv.Token = token

	log.InfoContext(ctx, "invite created",
		slog.String("invite_id", inv.ID.String()),
		slog.String("trip_id", tripID.String()),
	)

	err = s.sender.SendInvite(ctx, mailer.InviteEmail{
		To:           email,
		TripTitle:    trip.Title,
		InviterEmail: trip.OwnerEmail,
		Link:         s.inviteLink(token),
		ExpiresAt:    inv.ExpiresAt,
	})
	if err != nil {
		log.ErrorContext(ctx, "invite email failed", slog.String("invite_id", inv.ID.String()), slog.Any("error", err))
		return inv, fmt.Errorf("%s: %w: %v", op, domain.ErrNotification, err)
	}
	return inv, nil
}

// Accept redeems token for callerID: the caller joins the trip's
// collaborators and the invite flips to accepted. Both writes happen in one
// transaction with the invite row locked, so a failure leaves no trace and
// concurrent accepts of the same token cannot both succeed.
func (s *InviteService) Accept(ctx context.Context, token string, callerID uuid.UUID) (domain.Invite, error) {
	const op = "service.InviteService.Accept"
	log := logx.FromContext(ctx)

	token = strings.TrimSpace(token)
	if token == "" || callerID == uuid.Nil {
		return domain.Invite{}, fmt.Errorf("%s: %w: token and caller are required", op, domain.ErrValidation)
	}

	var accepted domain.Invite
	err := s.tx.InTx(ctx, func(r repo.Repos) error {
		inv, err := r.Invites.GetByTokenHash(ctx, auth.FingerprintToken(token))
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				return fmt.Errorf("%w: invite not found", domain.ErrNotFound)
			}
			return err
		}
		if inv.Status != domain.InviteStatusPending {
			return fmt.Errorf("%w: invite already used", domain.ErrConflict)
		}
		now := s.now().UTC()
		if inv.IsExpired(now) {
			return fmt.Errorf("%w: invite has expired", domain.ErrExpired)
		}

		trip, err := r.Trips.GetByID(ctx, inv.TripID)
		if err != nil {
			return err
		}
		if trip.OwnerID == callerID {
			return fmt.Errorf("%w: the trip owner cannot accept an invite", domain.ErrValidation)
		}

		if err := r.Trips.AddCollaborator(ctx, inv.TripID, callerID); err != nil {
			return err
		}
		accepted, err = r.Invites.MarkAccepted(ctx, inv.ID, callerID, now)
		return err
	})
	if err != nil {
		log.WarnContext(ctx, "invite acceptance failed", slog.String("caller_id", callerID.String()), slog.Any("error", err))
		return domain.Invite{}, fmt.Errorf("%s: %w", op, err)
	}

	log.InfoContext(ctx, "invite accepted",
		slog.String("invite_id", accepted.ID.String()),
		slog.String("trip_id", accepted.TripID.String()),
		slog.String("user_id", callerID.String()),
	)
	return accepted, nil
}

// ListByTrip returns every invite of a trip, newest first. Owner only.
func (s *InviteService) ListByTrip(ctx context.Context, callerID, tripID uuid.UUID) ([]domain.Invite, error) {
	const op = "service.InviteService.ListByTrip"

	trip, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !trip.AccessFor(callerID).IsOwner {
		return nil, fmt.Errorf("%s: %w: only the owner can view invites", op, domain.ErrForbidden)
	}
	invites, err := s.invites.ListByTripID(ctx, tripID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if invites == nil {
		invites = []domain.Invite{}
	}
	return invites, nil
}

// SweepExpired deletes pending invites that expired more than the retention
// window ago and returns how many were removed. Accepted invites are kept.
// Invites inside the window stay so Accept keeps answering ErrExpired.
func (s *InviteService) SweepExpired(ctx context.Context) (int64, error) {
	cutoff := s.now().UTC().Add(-s.cfg.Retention)
	n, err := s.invites.DeleteExpiredPending(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("service.InviteService.SweepExpired: %w", err)
	}
	return n, nil
}

func (s *InviteService) inviteLink(token string) string {
	return strings.TrimRight(s.cfg.AppURL, "/") + "/invite?token=" + url.QueryEscape(token)
}

// validEmail reports whether s is a bare address such as "a@b.co".
func validEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s && strings.Contains(s, "@")
}
