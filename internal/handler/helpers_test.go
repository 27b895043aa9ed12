package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/trip-planner/backend/internal/domain"
	"github.com/pkordes/trip-planner/backend/internal/handler"
)

// ---- mocks -----------------------------------------------------------------
// Set only the method fields your test needs.

type mockTripServicer struct {
	create             func(ctx context.Context, callerID uuid.UUID, trip domain.Trip) (domain.Trip, error)
	get                func(ctx context.Context, callerID, tripID uuid.UUID) (domain.Trip, error)
	list               func(ctx context.Context, callerID uuid.UUID, p domain.PaginationParams) (domain.Page[domain.Trip], error)
	update             func(ctx context.Context, callerID uuid.UUID, trip domain.Trip) (domain.Trip, error)
	delete             func(ctx context.Context, callerID, tripID uuid.UUID) error
	removeCollaborator func(ctx context.Context, callerID, tripID, userID uuid.UUID) error
}

func (m *mockTripServicer) Create(ctx context.Context, callerID uuid.UUID, t domain.Trip) (domain.Trip, error) {
	return m.create(ctx, callerID, t)
}
func (m *mockTripServicer) Get(ctx context.Context, callerID, tripID uuid.UUID) (domain.Trip, error) {
	return m.get(ctx, callerID, tripID)
}
func (m *mockTripServicer) List(ctx context.Context, callerID uuid.UUID, p domain.PaginationParams) (domain.Page[domain.Trip], error) {
	return m.list(ctx, callerID, p)
}
func (m *mockTripServicer) Update(ctx context.Context, callerID uuid.UUID, t domain.Trip) (domain.Trip, error) {
	return m.update(ctx, callerID, t)
}
func (m *mockTripServicer) Delete(ctx context.Context, callerID, tripID uuid.UUID) error {
	return m.delete(ctx, callerID, tripID)
}
func (m *mockTripServicer) RemoveCollaborator(ctx context.Context, callerID, tripID, userID uuid.UUID) error {
	return m.removeCollaborator(ctx, callerID, tripID, userID)
}

type mockPlaceServicer struct {
	create func(ctx context.Context, callerID uuid.UUID, place domain.Place) (domain.Place, error)
	get    func(ctx context.Context, callerID, tripID, placeID uuid.UUID) (domain.Place, error)
	list   func(ctx context.Context, callerID, tripID uuid.UUID) ([]domain.Place, error)
	update func(ctx context.Context, callerID uuid.UUID, place domain.Place) (domain.Place, error)
	delete func(ctx context.Context, callerID, tripID, placeID uuid.UUID) error
}

func (m *mockPlaceServicer) Create(ctx context.Context, callerID uuid.UUID, p domain.Place) (domain.Place, error) {
	return m.create(ctx, callerID, p)
}
func (m *mockPlaceServicer) Get(ctx context.Context, callerID, tripID, placeID uuid.UUID) (domain.Place, error) {
	return m.get(ctx, callerID, tripID, placeID)
}
func (m *mockPlaceServicer) List(ctx context.Context, callerID, tripID uuid.UUID) ([]domain.Place, error) {
	return m.list(ctx, callerID, tripID)
}
func (m *mockPlaceServicer) Update(ctx context.Context, callerID uuid.UUID, p domain.Place) (domain.Place, error) {
	return m.update(ctx, callerID, p)
}
func (m *mockPlaceServicer) Delete(ctx context.Context, callerID, tripID, placeID uuid.UUID) error {
	return m.delete(ctx, callerID, tripID, placeID)
}

type mockInviteServicer struct {
	create     func(ctx context.Context, tripID uuid.UUID, email string, callerID uuid.UUID) (domain.Invite, error)
	accept     func(ctx context.Context, token string, callerID uuid.UUID) (domain.Invite, error)
	listByTrip func(ctx context.Context, callerID, tripID uuid.UUID) ([]domain.Invite, error)
}

func (m *mockInviteServicer) Create(ctx context.Context, tripID uuid.UUID, email string, callerID uuid.UUID) (domain.Invite, error) {
	return m.create(ctx, tripID, email, callerID)
}
func (m *mockInviteServicer) Accept(ctx context.Context, token string, callerID uuid.UUID) (domain.Invite, error) {
	return m.accept(ctx, token, callerID)
}
func (m *mockInviteServicer) ListByTrip(ctx context.Context, callerID, tripID uuid.UUID) ([]domain.Invite, error) {
	return m.listByTrip(ctx, callerID, tripID)
}

type mockAuthServicer struct {
	register func(ctx context.Context, email, password string) (domain.User, string, error)
	signIn   func(ctx context.Context, email, password string) (domain.User, string, error)
	me       func(ctx context.Context, callerID uuid.UUID) (domain.User, error)
}

func (m *mockAuthServicer) Register(ctx context.Context, email, password string) (domain.User, string, error) {
	return m.register(ctx, email, password)
}
func (m *mockAuthServicer) SignIn(ctx context.Context, email, password string) (domain.User, string, error) {
	return m.signIn(ctx, email, password)
}
func (m *mockAuthServicer) Me(ctx context.Context, callerID uuid.UUID) (domain.User, error) {
	return m.me(ctx, callerID)
}

type mockExportServicer struct {
	export func(ctx context.Context, callerID, tripID uuid.UUID) ([]domain.ItineraryRow, error)
}

func (m *mockExportServicer) Export(ctx context.Context, callerID, tripID uuid.UUID) ([]domain.ItineraryRow, error) {
	return m.export(ctx, callerID, tripID)
}

// compile-time checks: the mocks must satisfy the handler interfaces.
var (
	_ handler.TripServicer   = (*mockTripServicer)(nil)
	_ handler.PlaceServicer  = (*mockPlaceServicer)(nil)
	_ handler.InviteServicer = (*mockInviteServicer)(nil)
	_ handler.AuthServicer   = (*mockAuthServicer)(nil)
	_ handler.ExportServicer = (*mockExportServicer)(nil)
)

// uuidVerifier accepts any bearer token that parses as a UUID and treats it
// as the caller's user id.
type uuidVerifier struct{}

func (uuidVerifier) Verify(raw string) (domain.Identity, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return domain.Identity{}, errors.New("bad token")
	}
	return domain.Identity{UserID: id, Email: "caller@example.com"}, nil
}

// ---- helpers ---------------------------------------------------------------

// newHTTPHandler wires a Server with the given mocks into the real router.
// This mirrors how main.go wires it in production.
func newHTTPHandler(svc handler.Services) http.Handler {
	return handler.NewRouter(handler.NewServer(svc), handler.RouterOptions{
		Logger:      slog.New(slog.DiscardHandler),
		Verifier:    uuidVerifier{},
		CORSOrigins: []string{"http://localhost:3000"},
		OpenAPI:     []byte("openapi: 3.0.3\n"),
	})
}

// do sends a request as caller (uuid.Nil sends no Authorization header).
func do(t *testing.T, h http.Handler, method, path string, caller uuid.UUID, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if caller != uuid.Nil {
		req.Header.Set("Authorization", "Bearer "+caller.String())
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

// errorCode returns the "code" of an error envelope.
func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decode[handler.ErrorResponse](t, rec).Error.Code
}
