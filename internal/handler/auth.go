package handler

import (
	"context"

	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/trip-planner/backend/internal/domain"
)

// Register handles POST /auth/register.
func (s *Server) Register(ctx context.Context, req request) (responseObject, error) {
	var body Credentials
	if err := req.decodeBody(&body); err != nil {
		return nil, err
	}

	user, token, err := s.auth.Register(ctx, body.Email, body.Password)
	if err != nil {
		return nil, err
	}
	return created201(AuthResponse{User: userToResponse(user), Token: token}), nil
}

// Login handles POST /auth/login.
func (s *Server) Login(ctx context.Context, req request) (responseObject, error) {
	var body Credentials
	if err := req.decodeBody(&body); err != nil {
		return nil, err
	}

	user, token, err := s.auth.SignIn(ctx, body.Email, body.Password)
	if err != nil {
		return nil, err
	}
	return ok200(AuthResponse{User: userToResponse(user), Token: token}), nil
}

// GetMe handles GET /me.
func (s *Server) GetMe(ctx context.Context, req request) (responseObject, error) {
	caller, err := req.callerID()
	if err != nil {
		return nil, err
	}

	user, err := s.auth.Me(ctx, caller)
	if err != nil {
		return nil, labelNotFound(err, "user not found")
	}
	return ok200(userToResponse(user)), nil
}

// userToResponse never copies the password hash.
func userToResponse(u domain.User) User {
	return User{
		Id:        u.ID,
		Email:     emailOrNil(u.Email),
		CreatedAt: u.CreatedAt,
	}
}

// emailOrNil returns nil for an empty address so it is omitted from JSON.
func emailOrNil(s string) *openapi_types.Email {
	if s == "" {
		return nil
	}
	e := openapi_types.Email(s)
	return &e
}
