package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/pkordes/trip-planner/backend/internal/middleware"
)

// defaultMaxBodyBytes applies when RouterOptions.MaxBodyBytes is zero.
const defaultMaxBodyBytes = 1 << 20

// RouterOptions carries the cross-cutting settings of the HTTP stack.
type RouterOptions struct {
	Logger       *slog.Logger
	Verifier     middleware.TokenVerifier
	CORSOrigins  []string
	MaxBodyBytes int64
	// OpenAPI is served verbatim at /openapi.yaml and rendered under /docs/.
	OpenAPI []byte
	// AuthLimit and InviteLimit default to middleware.StrictLimit and
	// middleware.ModerateLimit.
	AuthLimit   *middleware.RateLimit
	InviteLimit *middleware.RateLimit
}

// NewRouter mounts every endpoint of the API on a chi router.
//
// Middleware is applied in order: RequestID → RealIP → SlogLogger →
// Recoverer → CORS → MaxBodySize. Everything except /healthz, the docs and
// the /auth endpoints requires a bearer token.
func NewRouter(s *Server, opts RouterOptions) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	maxBody := opts.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = defaultMaxBodyBytes
	}
	authLimit := middleware.StrictLimit
	if opts.AuthLimit != nil {
		authLimit = *opts.AuthLimit
	}
	inviteLimit := middleware.ModerateLimit
	if opts.InviteLimit != nil {
		inviteLimit = *opts.InviteLimit
	}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.NewCORSHandler(opts.CORSOrigins))
	r.Use(middleware.NewMaxBodySizeHandler(maxBody))

	r.Get("/healthz", strict(s.GetHealth))
	r.Get("/openapi.yaml", serveOpenAPI(opts.OpenAPI))
	r.Get("/docs/*", httpSwagger.Handler(httpSwagger.URL("/openapi.yaml")))

	r.Group(func(r chi.Router) {
		r.Use(middleware.NewRateLimiter(authLimit, middleware.ClientIP))
		r.Post("/auth/register", strict(s.Register))
		r.Post("/auth/login", strict(s.Login))
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(opts.Verifier))

		r.Get("/me", strict(s.GetMe))

		r.Route("/trips", func(r chi.Router) {
			r.Post("/", strict(s.CreateTrip))
			r.Get("/", strict(s.ListTrips))

			r.Route("/{tripId}", func(r chi.Router) {
				r.Get("/", strict(s.GetTrip))
				r.Put("/", strict(s.UpdateTrip))
				r.Delete("/", strict(s.DeleteTrip))
				r.Delete("/collaborators/{userId}", strict(s.RemoveCollaborator))

				r.Post("/places", strict(s.CreatePlace))
				r.Get("/places", strict(s.ListPlaces))
				r.Get("/places/{placeId}", strict(s.GetPlace))
				r.Put("/places/{placeId}", strict(s.UpdatePlace))
				r.Delete("/places/{placeId}", strict(s.DeletePlace))

				r.Get("/invites", strict(s.ListInvites))
				r.Get("/export", strict(s.ExportTrip))
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.NewRateLimiter(inviteLimit, middleware.ClientIP))
			r.Post("/invites", strict(s.CreateInvite))
			r.Post("/invites/accept", strict(s.AcceptInvite))
		})
	})

	return r
}

func serveOpenAPI(doc []byte) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		if len(doc) == 0 {
			writeJSON(w, http.StatusNotFound, errorBody("not_found", "api description not available"))
			return
		}
		w.Header().Set("Content-Type", "application/yaml")
		_, _ = w.Write(doc)
	}
}
