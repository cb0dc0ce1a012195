// Package api declares the dashboard HTTP contracts and route registration.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/okian/sleeplab/internal/adapters/http/swagger"
	"github.com/okian/sleeplab/internal/domain/correlation"
	"github.com/okian/sleeplab/internal/domain/model"
	"github.com/okian/sleeplab/pkg/logger"
)

// DatasetSource hands out the dataset currently being served. It may
// return nil before the first successful load.
type DatasetSource interface {
	Dataset() *model.Dataset
}

// Server wires HTTP routes for the dashboard.
type Server struct {
	source         DatasetSource
	stats          StatsProvider
	references     []string
	candidates     []string
	threshold      float64
	defaultWeeks   int
	allowedOrigins []string
	now            func() time.Time
	log            logger.Logger
}

// NewServer creates a new dashboard server.
func NewServer(source DatasetSource, opts ...Option) *Server {
	s := &Server{
		source:       source,
		references:   correlation.DefaultReferences,
		candidates:   correlation.DefaultCandidates,
		threshold:    correlation.DefaultThreshold,
		defaultWeeks: 4,
		now:          time.Now,
		log:          logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	if len(s.allowedOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: s.allowedOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodOptions},
			AllowedHeaders: []string{"Accept", "Content-Type"},
			MaxAge:         300,
		}))
	}

	r.Get("/", MetricsMiddleware(s.HandleDashboard, "dashboard"))
	r.Get("/healthz", MetricsMiddleware(HandleHealth, "healthz"))
	swagger.Register(r)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/nights", MetricsMiddleware(s.HandleNights, "nights"))
		r.Get("/summary", MetricsMiddleware(s.HandleSummary, "summary"))
		r.Get("/trends", MetricsMiddleware(s.HandleTrends, "trends"))
		r.Get("/correlations", MetricsMiddleware(s.HandleCorrelations, "correlations"))
		if s.stats != nil {
			r.Get("/stats", MetricsMiddleware(NewStatsHandler(s.stats).HandleStats, "stats"))
		}
	})
	return r
}

// dataset returns the served dataset or answers 503.
func (s *Server) dataset(w http.ResponseWriter) (*model.Dataset, bool) {
	ds := s.source.Dataset()
	if ds == nil {
		writeError(w, http.StatusServiceUnavailable, "unavailable", ErrUnavailable)
		return nil, false
	}
	return ds, true
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
