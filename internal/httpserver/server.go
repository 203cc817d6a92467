package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/radiusdt/vector-insights/internal/config"
	"github.com/radiusdt/vector-insights/internal/metrics"
	"github.com/radiusdt/vector-insights/internal/middleware"
	"github.com/radiusdt/vector-insights/internal/models"
	"github.com/radiusdt/vector-insights/internal/reporting"
)

// DefaultWindowDays is the report window used when a request names no range.
const DefaultWindowDays = 30

// Reporter builds the reports served over HTTP. *reporting.Service
// implements it.
type Reporter interface {
	BuildTree(ctx context.Context, projectID string, rng reporting.Range) ([]reporting.Row, error)
	BuildSummary(ctx context.Context, projectID string, rng reporting.Range) (reporting.Summary, error)
	AttributeAd(ctx context.Context, projectID, adID string, rng reporting.Range) (reporting.AdAttribution, error)
}

// HealthChecker is a dependency reported by /health.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Dependencies holds all external dependencies for the server.
type Dependencies struct {
	Reports     Reporter
	Config      *config.Config
	Logger      *zap.Logger
	Metrics     *metrics.Metrics
	RateLimiter *middleware.RateLimitMiddleware
	// Checks are pinged by /health, keyed by the name shown in the response.
	Checks map[string]HealthChecker
}

// Server wraps the reporting HTTP handlers.
type Server struct {
	reports Reporter
	checks  map[string]HealthChecker
	logger  *zap.Logger
	config  *config.Config
	now     func() time.Time
}

// NewServer constructs a new http.Handler with all routes registered.
func NewServer(deps *Dependencies) http.Handler {
	return newServer(deps).routes(deps)
}

func newServer(deps *Dependencies) *Server {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		reports: deps.Reports,
		checks:  deps.Checks,
		logger:  logger,
		config:  deps.Config,
		now:     time.Now,
	}
}

func (s *Server) routes(deps *Dependencies) http.Handler {
	cfg := s.config
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware(s.logger).Handler)
	r.Use(middleware.RequestID)
	r.Use(middleware.NewLoggingMiddleware(s.logger, deps.Metrics, "/health", cfg.Metrics.Path).Handler)
	rl := deps.RateLimiter
	if rl == nil {
		rl = middleware.NewRateLimitMiddleware(cfg.RateLimit, s.logger, deps.Metrics)
	}
	r.Use(rl.Handler)
	r.Use(middleware.NewAuthMiddleware(cfg.Auth, s.logger).Handler)

	r.Get("/health", s.handleHealth)
	if cfg.Metrics.Enabled && deps.Metrics != nil {
		r.Method(http.MethodGet, cfg.Metrics.Path, deps.Metrics.Handler())
	}

	r.Route("/projects/{projectID}", func(r chi.Router) {
		r.Get("/reports/tree", s.handleTree)
		r.Get("/reports/summary", s.handleSummary)
		r.Get("/ads/{adID}/attribution", s.handleAdAttribution)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		s.errorResponse(w, "not found", http.StatusNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		s.errorResponse(w, "method not allowed", http.StatusMethodNotAllowed)
	})
	return r
}

// ---- Health ----

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := "ok"
	deps := make(map[string]string, len(s.checks))
	for name, c := range s.checks {
		if err := c.Health(ctx); err != nil {
			s.logger.Warn("health check failed", zap.String("dependency", name), zap.Error(err))
			deps[name] = "down"
			status = "degraded"
			continue
		}
		deps[name] = "up"
	}

	code := http.StatusOK
	if status != "ok" {
		code = http.StatusServiceUnavailable
	}
	s.jsonResponseCode(w, map[string]any{"status": status, "dependencies": deps}, code)
}

// ---- Reports ----

func (s *Server) handleTree(w http.ResponseWriter, r *http.Request) {
	rng, err := parseRange(r.URL.Query(), s.now())
	if err != nil {
		s.errorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}
	rows, err := s.reports.BuildTree(r.Context(), chi.URLParam(r, "projectID"), rng)
	if err != nil {
		s.reportError(w, r, err)
		return
	}
	s.jsonResponse(w, rows)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	rng, err := parseRange(r.URL.Query(), s.now())
	if err != nil {
		s.errorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}
	sum, err := s.reports.BuildSummary(r.Context(), chi.URLParam(r, "projectID"), rng)
	if err != nil {
		s.reportError(w, r, err)
		return
	}
	s.jsonResponse(w, sum)
}

func (s *Server) handleAdAttribution(w http.ResponseWriter, r *http.Request) {
	rng, err := parseRange(r.URL.Query(), s.now())
	if err != nil {
		s.errorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}
	res, err := s.reports.AttributeAd(r.Context(), chi.URLParam(r, "projectID"), chi.URLParam(r, "adID"), rng)
	if err != nil {
		s.reportError(w, r, err)
		return
	}
	s.jsonResponse(w, res)
}

func (s *Server) reportError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, reporting.ErrInvalidRange):
		s.errorResponse(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, context.Canceled):
		// Client went away.
		s.logger.Debug("report request canceled", zap.String("path", r.URL.Path))
	default:
		s.logger.Error("report failed",
			zap.String("request_id", middleware.RequestIDFromContext(r.Context())),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		s.errorResponse(w, "failed to build report", http.StatusInternalServerError)
	}
}

// parseRange reads the report window from start/end (unix ms) or
// start_date/end_date (YYYY-MM-DD). The two forms cannot be mixed. Without
// parameters the window is the last DefaultWindowDays days ending today.
func parseRange(q url.Values, now time.Time) (reporting.Range, error) {
	hasMs := q.Has("start") || q.Has("end")
	hasDates := q.Has("start_date") || q.Has("end_date")

	switch {
	case hasMs && hasDates:
		return reporting.Range{}, fmt.Errorf("%w: use either start/end or start_date/end_date", reporting.ErrInvalidRange)
	case hasMs:
		start, err := parseMs(q, "start")
		if err != nil {
			return reporting.Range{}, err
		}
		end, err := parseMs(q, "end")
		if err != nil {
			return reporting.Range{}, err
		}
		rng := reporting.Range{StartTs: start, EndTs: end}
		return rng, rng.Validate()
	case hasDates:
		start, err := parseDate(q, "start_date")
		if err != nil {
			return reporting.Range{}, err
		}
		end, err := parseDate(q, "end_date")
		if err != nil {
			return reporting.Range{}, err
		}
		rng := reporting.Range{StartTs: start, EndTs: end}
		return rng, rng.Validate()
	}

	today := now.UTC().Truncate(24 * time.Hour)
	return reporting.Range{
		StartTs: today.AddDate(0, 0, -(DefaultWindowDays - 1)).UnixMilli(),
		EndTs:   today.UnixMilli(),
	}, nil
}

func parseMs(q url.Values, key string) (int64, error) {
	v := q.Get(key)
	if v == "" {
		return 0, fmt.Errorf("%w: %s is required", reporting.ErrInvalidRange, key)
	}
	ms, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be unix milliseconds", reporting.ErrInvalidRange, key)
	}
	return ms, nil
}

func parseDate(q url.Values, key string) (int64, error) {
	v := q.Get(key)
	if v == "" {
		return 0, fmt.Errorf("%w: %s is required", reporting.ErrInvalidRange, key)
	}
	ts, err := models.DateToTs(v)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be YYYY-MM-DD", reporting.ErrInvalidRange, key)
	}
	return ts, nil
}

// ---- Helper Methods ----

func (s *Server) jsonResponse(w http.ResponseWriter, data interface{}) {
	s.jsonResponseCode(w, data, http.StatusOK)
}

func (s *Server) jsonResponseCode(w http.ResponseWriter, data interface{}, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Warn("failed to write response", zap.Error(err))
	}
}

func (s *Server) errorResponse(w http.ResponseWriter, message string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}
