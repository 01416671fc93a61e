// Package adapthttp implements the HTTP adapter for the application.
package adapthttp

import (
	"context"
	"net/http"
	"time"

	"foodloss/internal/app"
	"foodloss/internal/domain"
	"foodloss/internal/metrics"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"
)

// OIDCConfig holds the SSO provider wiring. Enabled is false when SSO is not
// configured.
type OIDCConfig struct {
	Enabled      bool
	Provider     *oidc.Provider
	OAuth2Config oauth2.Config
}

// ReadinessCheck reports whether a dependency is reachable.
type ReadinessCheck func(ctx context.Context) error

// Server is the driving HTTP adapter that routes requests to application
// services.
type Server struct {
	authSvc *app.AuthService
	waste   *app.WasteService
	stats   *app.StatsService
	points  *app.PointsService
	webDir  string

	oidcConfig       OIDCConfig
	metrics          *metrics.Metrics
	limiter          *loginLimiter
	ready            map[string]ReadinessCheck
	trustForwardAuth bool
	disableAuth      bool
	localUser        *domain.User
}

// Option configures a Server.
type Option func(*Server)

// WithOIDC enables SSO login.
func WithOIDC(cfg OIDCConfig) Option {
	return func(s *Server) { s.oidcConfig = cfg }
}

// WithMetrics instruments routes and serves /metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// WithLoginRate limits login attempts per client IP.
func WithLoginRate(perMinute int) Option {
	return func(s *Server) { s.limiter = newLoginLimiter(perMinute) }
}

// WithForwardAuth trusts the Remote-User header set by a reverse proxy.
func WithForwardAuth(enabled bool) Option {
	return func(s *Server) { s.trustForwardAuth = enabled }
}

// WithReadinessCheck adds a dependency probed by /api/ready.
func WithReadinessCheck(name string, check ReadinessCheck) Option {
	return func(s *Server) { s.ready[name] = check }
}

// New creates a Server wired to the given application services.
func New(authSvc *app.AuthService, waste *app.WasteService, stats *app.StatsService, points *app.PointsService, webDir string, opts ...Option) *Server {
	s := &Server{
		authSvc: authSvc,
		waste:   waste,
		stats:   stats,
		points:  points,
		webDir:  webDir,
		limiter: newLoginLimiter(10),
		ready:   make(map[string]ReadinessCheck),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// WithoutAuth disables authentication. Every request acts as user 1.
func (s *Server) WithoutAuth() *Server {
	s.disableAuth = true
	s.localUser = &domain.User{ID: 1, Username: "local"}
	return s
}

// Handler returns the root http.Handler for the application.
func (s *Server) Handler() http.Handler {
	api := http.NewServeMux()
	s.handle(api, "GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})
	s.handle(api, "GET /ready", s.handleReady)

	s.handle(api, "GET /auth/config", s.handleConfig)
	s.handle(api, "POST /auth/register", s.handleRegister)
	s.handle(api, "POST /auth/login", s.handleLogin)
	s.handle(api, "POST /auth/logout", s.handleLogout)
	s.handle(api, "GET /auth/sso/login", s.handleSSOLogin)
	s.handle(api, "GET /auth/sso/callback", s.handleSSOCallback)

	protected := http.NewServeMux()
	s.handle(protected, "GET /me", s.handleMe)
	s.handle(protected, "GET /reasons", s.handleReasons)

	s.handle(protected, "POST /records", s.handleRecordCreate)
	s.handle(protected, "GET /records/recent", s.handleRecordsRecent)
	s.handle(protected, "POST /records/undo-last", s.handleRecordsUndoLast)
	s.handle(protected, "DELETE /records/{id}", s.handleRecordDelete)

	s.handle(protected, "GET /stats/weekly", s.handleStatsWeekly)

	s.handle(protected, "GET /points", s.handlePoints)
	s.handle(protected, "POST /points/weekly", s.handlePointsWeekly)

	api.Handle("/", s.authMiddleware(protected))

	root := http.NewServeMux()
	root.Handle("/api/", http.StripPrefix("/api", api))
	if s.metrics != nil {
		root.Handle("GET /metrics", s.metrics.Handler())
	}
	root.Handle("/", spaFromDisk(s.webDir))

	return s.loggingMiddleware(withNoCache(root))
}

func (s *Server) handle(mux *http.ServeMux, pattern string, h http.HandlerFunc) {
	mux.Handle(pattern, s.instrument(pattern, h))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	checks := make(map[string]string, len(s.ready))
	for name, check := range s.ready {
		if err := check(ctx); err != nil {
			checks[name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}
	writeJSON(w, status, map[string]any{"ok": status == http.StatusOK, "checks": checks})
}
