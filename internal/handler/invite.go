package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/pkordes/trip-planner/backend/internal/domain"
	"github.com/pkordes/trip-planner/backend/internal/logx"
)

// CreateInvite handles POST /invites.
//
// When the invite is stored but the email could not be sent the response is
// 502 notification_failed; the invite stays pending and is listed for the
// owner. The address cannot be invited again until the sweep removes the
// stale pending invite.
func (s *Server) CreateInvite(ctx context.Context, req request) (responseObject, error) {
	caller, err := req.callerID()
	if err != nil {
		return nil, err
	}
	var body CreateInviteRequest
	if err := req.decodeBody(&body); err != nil {
		return nil, err
	}

	inv, err := s.invites.Create(ctx, body.TripId, body.Email, caller)
	if err != nil {
		if errors.Is(err, domain.ErrNotification) {
			logx.FromContext(ctx).WarnContext(ctx, "invite stored without email",
				slog.String("invite_id", inv.ID.String()), slog.Any("error", err))
			return jsonResponse{
				status: http.StatusBadGateway,
				body:   errorBody("notification_failed", "invite created but the email could not be sent"),
			}, nil
		}
		return nil, labelNotFound(err, "trip not found")
	}
	return created201(InviteResult{
		Message: "Invite sent to " + inv.Email,
		Invite:  inviteToResponse(inv),
	}), nil
}

// AcceptInvite handles POST /invites/accept.
func (s *Server) AcceptInvite(ctx context.Context, req request) (responseObject, error) {
	caller, err := req.callerID()
	if err != nil {
		return nil, err
	}
	var body AcceptInviteRequest
	if err := req.decodeBody(&body); err != nil {
		return nil, err
	}

	inv, err := s.invites.Accept(ctx, body.Token, caller)
	if err != nil {
		return nil, labelNotFound(err, "invite not found")
	}
	return ok200(InviteResult{
		Message: "Invite accepted; you are now a collaborator on this trip",
		Invite:  inviteToResponse(inv),
	}), nil
}

// ListInvites handles GET /trips/{tripId}/invites (owner only).
func (s *Server) ListInvites(ctx context.Context, req request) (responseObject, error) {
	caller, tripID, err := req.callerAndTrip()
	if err != nil {
		return nil, err
	}

	invites, err := s.invites.ListByTrip(ctx, caller, tripID)
	if err != nil {
		return nil, labelNotFound(err, "trip not found")
	}
	out := make([]Invite, len(invites))
	for i, inv := range invites {
		out[i] = inviteToResponse(inv)
	}
	return ok200(InviteList{Data: out}), nil
}

// inviteToResponse drops Token and TokenHash.
func inviteToResponse(inv domain.Invite) Invite {
	return Invite{
		Id:         inv.ID,
		TripId:     inv.TripID,
		Email:      emailOrNil(inv.Email),
		Status:     string(inv.Status),
		InvitedBy:  inv.InvitedBy,
		AcceptedBy: inv.AcceptedBy,
		CreatedAt:  inv.CreatedAt,
		ExpiresAt:  inv.ExpiresAt,
		AcceptedAt: inv.AcceptedAt,
	}
}
