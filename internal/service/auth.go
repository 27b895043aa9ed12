package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/pkordes/trip-planner/backend/internal/domain"
	"github.com/pkordes/trip-planner/backend/internal/logx"
	"github.com/pkordes/trip-planner/backend/internal/repo"
)

// MinPasswordLength is the shortest password Register accepts.
const MinPasswordLength = 8

// PasswordHasher hashes and checks passwords. *auth.BcryptHasher satisfies it.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// TokenIssuer signs bearer tokens. *auth.JWT satisfies it.
type TokenIssuer interface {
	Issue(id domain.Identity) (string, error)
}

// AuthService registers accounts and signs users in.
type AuthService struct {
	users  repo.UserRepo
	hasher PasswordHasher
	tokens TokenIssuer
}

// NewAuthService constructs an AuthService.
func NewAuthService(users repo.UserRepo, hasher PasswordHasher, tokens TokenIssuer) *AuthService {
	return &AuthService{users: users, hasher: hasher, tokens: tokens}
}

// Register creates an account and returns it with a bearer token.
func (s *AuthService) Register(ctx context.Context, email, password string) (domain.User, string, error) {
	const op = "service.AuthService.Register"

	email = domain.NormalizeEmail(email)
	if !validEmail(email) {
		return domain.User{}, "", fmt.Errorf("%s: %w: email is not a valid address", op, domain.ErrValidation)
	}
	if len(password) < MinPasswordLength {
		return domain.User{}, "", fmt.Errorf("%s: %w: password must be at least %d characters", op, domain.ErrValidation, MinPasswordLength)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		// bcrypt rejects passwords over 72 bytes.
		return domain.User{}, "", fmt.Errorf("%s: %w: %v", op, domain.ErrValidation, err)
	}

	user, err := s.users.Create(ctx, domain.User{Email: email, PasswordHash: hash})
	if err != nil {
		return domain.User{}, "", fmt.Errorf("%s: %w", op, err)
	}

	token, err := s.tokens.Issue(domain.Identity{UserID: user.ID, Email: user.Email})
	if err != nil {
		return domain.User{}, "", fmt.Errorf("%s: %w", op, err)
	}
	logx.FromContext(ctx).InfoContext(ctx, "user registered", slog.String("user_id", user.ID.String()))
	return user, token, nil
}

// SignIn checks credentials and returns the user with a fresh bearer token.
// Unknown emails and wrong passwords are indistinguishable to the caller.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (domain.User, string, error) {
	const op = "service.AuthService.SignIn"

	user, err := s.users.GetByEmail(ctx, domain.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.User{}, "", fmt.Errorf("%s: %w: invalid email or password", op, domain.ErrUnauthorized)
		}
		return domain.User{}, "", fmt.Errorf("%s: %w", op, err)
	}
	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		logx.FromContext(ctx).WarnContext(ctx, "sign-in failed", slog.String("user_id", user.ID.String()))
		return domain.User{}, "", fmt.Errorf("%s: %w: invalid email or password", op, domain.ErrUnauthorized)
	}

	token, err := s.tokens.Issue(domain.Identity{UserID: user.ID, Email: user.Email})
	if err != nil {
		return domain.User{}, "", fmt.Errorf("%s: %w", op, err)
	}
	return user, token, nil
}

// Me returns the account behind a verified identity.
func (s *AuthService) Me(ctx context.Context, callerID uuid.UUID) (domain.User, error) {
	user, err := s.users.GetByID(ctx, callerID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.User{}, fmt.Errorf("service.AuthService.Me: %w: account no longer exists", domain.ErrUnauthorized)
		}
		return domain.User{}, fmt.Errorf("service.AuthService.Me: %w", err)
	}
	return user, nil
}
