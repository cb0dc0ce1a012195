package api

import (
	"time"

	"github.com/okian/sleeplab/pkg/logger"
)

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithCorrelation sets the references, candidates and threshold used by
// the correlations endpoint.
func WithCorrelation(references, candidates []string, threshold float64) Option {
	return func(s *Server) {
		if len(references) > 0 {
			s.references = references
		}
		if len(candidates) > 0 {
			s.candidates = candidates
		}
		if threshold > 0 {
			s.threshold = threshold
		}
	}
}

// WithDefaultWeeks sets the look-back window used when no from date is given.
func WithDefaultWeeks(weeks int) Option {
	return func(s *Server) {
		if weeks > 0 {
			s.defaultWeeks = weeks
		}
	}
}

// WithAllowedOrigins enables CORS for the listed origins.
func WithAllowedOrigins(origins []string) Option {
	return func(s *Server) {
		s.allowedOrigins = origins
	}
}

// WithStats exposes a stats provider at /api/v1/stats.
func WithStats(p StatsProvider) Option {
	return func(s *Server) {
		s.stats = p
	}
}

// WithClock overrides the clock that anchors the default window.
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		if now != nil {
			s.now = now
		}
	}
}

// WithLogger sets the server logger.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.log = l
		}
	}
}
