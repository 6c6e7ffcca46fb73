package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/connectify/user-api/internal/auth"
	"github.com/connectify/user-api/internal/observability"
	"github.com/connectify/user-api/internal/ratelimit"
	"github.com/connectify/user-api/internal/repository"
)

// =============================================================================
// Router
// =============================================================================

// Router assembles the HTTP routes of the API.
type Router struct {
	config RouterConfig
}

// RouterConfig holds the handlers and middleware the router wires together.
type RouterConfig struct {
	Auth        *AuthHandler
	User        *UserHandler
	Friendship  *FriendshipHandler
	AuthMW      *auth.Middleware
	Limiter     *ratelimit.Limiter
	Metrics     *observability.Metrics
	DB          repository.DatabaseHealth
	CacheHealth func(ctx context.Context) error
	Logger      zerolog.Logger
}

// NewRouter creates a router.
func NewRouter(config RouterConfig) *Router {
	return &Router{config: config}
}

// Handler builds the route tree. Public auth routes carry only their
// per-route throttle; everything under /user and /friendship additionally
// requires a bearer token.
func (rt *Router) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(rt.config.Metrics.Middleware)
	r.Use(rt.requestLogger)

	r.Get("/health", rt.handleHealth)

	r.Route("/auth", func(r chi.Router) {
		r.With(rt.config.Limiter.Signup()).Post("/signup", rt.config.Auth.Signup)
		r.With(rt.config.Limiter.Confirm()).Post("/signup/confirm", rt.config.Auth.Confirm)
		r.With(rt.config.Limiter.Login()).Post("/login", rt.config.Auth.Login)
		r.With(rt.config.Limiter.Login()).Post("/password/forgot", rt.config.Auth.Forgot)
		r.With(rt.config.Limiter.Login()).Post("/password/reset", rt.config.Auth.Reset)
	})

	r.Route("/user", func(r chi.Router) {
		r.Use(rt.config.AuthMW.RequireAuth)
		r.With(rt.config.Limiter.ProfileRead()).Get("/my-profile", rt.config.User.Profile)
		r.With(rt.config.Limiter.ProfileUpdate()).Patch("/my-profile/update", rt.config.User.UpdateProfile)
		r.With(rt.config.Limiter.ProfileUpdate()).Post("/my-profile/avatar", rt.config.User.UploadAvatar)
		r.With(rt.config.Limiter.ProfileUpdate()).Delete("/my-profile/avatar", rt.config.User.RemoveAvatar)
	})

	r.Route("/friendship", func(r chi.Router) {
		r.Use(rt.config.AuthMW.RequireAuth)
		r.Post("/send", rt.config.Friendship.Send)
		r.Post("/{id}/respond", rt.config.Friendship.Respond)
		r.Get("/list", rt.config.Friendship.List)
		r.Get("/pending", rt.config.Friendship.Pending)
	})

	return r
}

// handleHealth reports liveness of the database and the session cache.
func (rt *Router) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	checks := map[string]string{
		"database": "healthy",
		"cache":    "healthy",
	}

	if rt.config.DB != nil {
		if err := rt.config.DB.Health(r.Context()); err != nil {
			checks["database"] = "unhealthy"
			status = http.StatusServiceUnavailable
		}
	}
	if rt.config.CacheHealth != nil {
		if err := rt.config.CacheHealth(r.Context()); err != nil {
			checks["cache"] = "unhealthy"
			status = http.StatusServiceUnavailable
		}
	}

	body := map[string]any{"status": "healthy", "checks": checks}
	if status != http.StatusOK {
		body["status"] = "unhealthy"
	}
	writeJSON(w, status, body)
}

// requestLogger logs each request at debug level with its outcome status.
func (rt *Router) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		rt.config.Logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Msg("request")
	})
}
