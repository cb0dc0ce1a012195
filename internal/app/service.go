// Package service orchestrates pipeline runs and holds the dataset served
// by the dashboard.
package service

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/okian/sleeplab/internal/config"
	"github.com/okian/sleeplab/internal/domain/model"
	"github.com/okian/sleeplab/internal/domain/prep"
	"github.com/okian/sleeplab/pkg/logger"
)

// Service runs the pipeline and its collaborators for one configuration.
type Service struct {
	mu sync.RWMutex

	cfg      *config.Config
	pipeline *prep.Pipeline

	// Served dataset state
	dataset   *model.Dataset
	loadedAt  time.Time
	reloads   int
	lastError error

	// Watcher state
	newWatcher func() (*fsnotify.Watcher, error)
	watcher    *fsnotify.Watcher
	debounce   time.Duration
	started    bool
	stopCh     chan struct{}
	doneCh     chan struct{}

	stdout io.Writer
	now    func() time.Time
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithStdout sets where reports are echoed.
func WithStdout(w io.Writer) Option {
	return func(s *Service) {
		if w != nil {
			s.stdout = w
		}
	}
}

// WithReloadDebounce sets how long file events settle before a reload.
func WithReloadDebounce(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.debounce = d
		}
	}
}

// WithClock overrides the clock used for timestamps and default dates.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// New constructs a Service from a validated configuration.
func New(cfg *config.Config, opts ...Option) (*Service, error) {
	s := &Service{
		cfg:        cfg,
		debounce:   250 * time.Millisecond,
		newWatcher: fsnotify.NewWatcher,
		stdout:     os.Stdout,
		now:        time.Now,
		logger:     logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	loc, err := prep.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("service: %w", err)
	}
	s.pipeline, err = prep.New(
		prep.WithTimezone(loc),
		prep.WithMinTimeInBed(cfg.MinTimeInBed()),
		prep.WithZeroReadinessAsMissing(cfg.ZeroReadinessAsMissing),
		prep.WithLogger(s.logger.Named("prep")),
	)
	if err != nil {
		return nil, fmt.Errorf("service: %w", err)
	}
	return s, nil
}

// Config returns the configuration the service was built with.
func (s *Service) Config() *config.Config {
	return s.cfg
}

// runLogger tags the log lines of one run.
func (s *Service) runLogger(runID string) logger.Logger {
	return s.logger.With(logger.String("run_id", runID))
}

func msSince(t time.Time) float64 {
	return float64(time.Since(t).Microseconds()) / 1000
}
