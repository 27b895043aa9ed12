package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pkordes/trip-planner/backend/internal/domain"
	"github.com/pkordes/trip-planner/backend/internal/logx"
	"github.com/pkordes/trip-planner/backend/internal/middleware"
)

// Handlers are written in strict form: each takes the request context and a
// request accessor and returns either a typed response object or an error.
// strict adapts them to chi, writes the response and maps errors through
// writeServiceError, so no handler touches http.ResponseWriter.

// responseObject writes itself to the client.
type responseObject interface {
	visitResponse(w http.ResponseWriter) error
}

// strictFunc is the signature every API handler method has.
type strictFunc func(ctx context.Context, req request) (responseObject, error)

// strict adapts h to an http.HandlerFunc.
func strict(h strictFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp, err := h(r.Context(), request{r: r})
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		if err := resp.visitResponse(w); err != nil {
			logx.FromContext(r.Context()).WarnContext(r.Context(), "write response failed", slog.Any("error", err))
		}
	}
}

// jsonResponse is a JSON body with a status code.
type jsonResponse struct {
	status int
	body   any
}

func (resp jsonResponse) visitResponse(w http.ResponseWriter) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.status)
	return json.NewEncoder(w).Encode(resp.body)
}

func ok200(body any) jsonResponse { return jsonResponse{status: http.StatusOK, body: body} }
func created201(body any) jsonResponse { return jsonResponse{status: http.StatusCreated, body: body} }

// noContent204Response is an empty 204.
type noContent204Response struct{}

func (noContent204Response) visitResponse(w http.ResponseWriter) error {
	w.WriteHeader(http.StatusNoContent)
	return nil
}

// csv200Response is a CSV attachment.
type csv200Response struct {
	filename string
	body     *bytes.Buffer
}

func (resp csv200Response) visitResponse(w http.ResponseWriter) error {
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="`+resp.filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(resp.body.Len()))
	w.WriteHeader(http.StatusOK)
	_, err := resp.body.WriteTo(w)
	return err
}

// request gives handlers typed access to the incoming request. Every
// accessor returns an error wrapping a domain sentinel, ready to hand back
// to strict.
type request struct {
	r *http.Request
}

// callerID returns the authenticated user id stored by middleware.RequireAuth.
func (req request) callerID() (uuid.UUID, error) {
	id, ok := middleware.IdentityFrom(req.r.Context())
	if !ok || id.UserID == uuid.Nil {
		return uuid.Nil, fmt.Errorf("%w: missing identity", domain.ErrUnauthorized)
	}
	return id.UserID, nil
}

// pathID parses the chi URL parameter name as a UUID.
func (req request) pathID(name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(req.r, name))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %s must be a UUID", domain.ErrValidation, name)
	}
	return id, nil
}

// callerAndTrip is the common prefix of every /trips/{tripId} handler.
func (req request) callerAndTrip() (caller, tripID uuid.UUID, err error) {
	if caller, err = req.callerID(); err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	if tripID, err = req.pathID("tripId"); err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return caller, tripID, nil
}

// decodeBody reads the JSON body into dst. A body cut off by the size limit
// keeps its *http.MaxBytesError so it maps to 413.
func (req request) decodeBody(dst any) error {
	if err := json.NewDecoder(req.r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return fmt.Errorf("decode body: %w", err)
		}
		return fmt.Errorf("%w: request body must be valid JSON", domain.ErrValidation)
	}
	return nil
}

// query returns the named query parameter, or "".
func (req request) query(name string) string {
	return req.r.URL.Query().Get(name)
}

// pagination reads ?page= and ?limit=. Absent values take the defaults;
// non-numeric values are rejected.
func (req request) pagination() (domain.PaginationParams, error) {
	var page, limit *int
	for name, dst := range map[string]**int{"page": &page, "limit": &limit} {
		raw := req.query(name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return domain.PaginationParams{}, fmt.Errorf("%w: %s must be an integer", domain.ErrValidation, name)
		}
		*dst = &n
	}
	return domain.NewPaginationParams(page, limit), nil
}
