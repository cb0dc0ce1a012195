// Package config defines sleeplab configuration structures and loading hooks.
//
// Conventions:
// - Provide New(ctx) to build a Config with defaults.
// - Load layers defaults, an optional YAML file and SLEEPLAB_ env vars.
// - Errors are wrapped with this package's sentinel kinds.
package config

import (
	"context"
	"time"

	"github.com/okian/sleeplab/internal/domain/correlation"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level" validate:"oneof=debug info warn warning error"`

	// LogFormat selects the slog handler: text or json.
	LogFormat string `koanf:"log_format" validate:"oneof=text json"`

	// RawFile is the vendor JSON document the pipeline reads.
	RawFile string `koanf:"raw_file" validate:"required"`

	// OrigSnapshot and ModifiedSnapshot are the pre- and post-derivation TSV exports.
	OrigSnapshot     string `koanf:"orig_snapshot" validate:"required"`
	ModifiedSnapshot string `koanf:"modified_snapshot" validate:"required"`

	// WorkbookFile enables an xlsx copy of the dataset when non-empty.
	WorkbookFile string `koanf:"workbook_file"`

	// ReportFile receives the correlation report text.
	ReportFile string `koanf:"report_file" validate:"required"`

	// PlotDir receives PNG charts.
	PlotDir string `koanf:"plot_dir" validate:"required"`

	// MetricsFile enables a Prometheus textfile export when non-empty.
	MetricsFile string `koanf:"metrics_file"`

	// Timezone is the reference zone bedtimes are converted to before the offset is dropped.
	Timezone string `koanf:"timezone" validate:"required"`

	// MinTimeInBedSeconds is the exclusive lower bound for a qualifying night.
	MinTimeInBedSeconds int `koanf:"min_time_in_bed_seconds" validate:"gte=0"`

	// ZeroReadinessAsMissing restores the legacy rule that a readiness value of 0 is no measurement.
	ZeroReadinessAsMissing bool `koanf:"zero_readiness_as_missing"`

	// CorrelationThreshold is the |r| at or above which a candidate counts as correlated.
	CorrelationThreshold float64 `koanf:"correlation_threshold" validate:"gt=0,lt=1"`

	// References are the columns analyzed as independent variables.
	References []string `koanf:"references" validate:"min=1,dive,required"`

	// Candidates are the columns correlated against each reference.
	Candidates []string `koanf:"candidates" validate:"min=1,dive,required"`

	// APIBaseURL is the vendor cloud API root.
	APIBaseURL string `koanf:"api_base_url" validate:"required,url"`

	// TokenFile holds the personal access token.
	TokenFile string `koanf:"token_file" validate:"required"`

	// StartDate is the first day fetched (YYYY-MM-DD). Empty means one year back.
	StartDate string `koanf:"start_date" validate:"omitempty,datetime=2006-01-02"`

	// FetchTimeoutSeconds bounds the single fetch attempt.
	FetchTimeoutSeconds int `koanf:"fetch_timeout_seconds" validate:"gt=0"`

	// Addr configures the dashboard listen address, e.g. ":8501".
	Addr string `koanf:"addr" validate:"required"`

	// DashboardWeeks sets the default look-back window of the dashboard.
	DashboardWeeks int `koanf:"dashboard_weeks" validate:"gt=0"`

	// AllowedOrigins enables CORS for the dashboard API when non-empty.
	AllowedOrigins []string `koanf:"allowed_origins"`
}

// DefaultCandidates are the columns correlated against each reference.
var DefaultCandidates = correlation.DefaultCandidates

// New creates a Config holding the defaults. Context is accepted first to
// satisfy the project-wide convention and is currently unused.
func New(_ context.Context) *Config {
	return &Config{
		LogLevel:             "info",
		LogFormat:            "text",
		RawFile:              "data/data_sleep.json",
		OrigSnapshot:         "data/data_sleep_orig.tsv",
		ModifiedSnapshot:     "data/data_sleep_modified.tsv",
		ReportFile:           "report/sleep_report.txt",
		PlotDir:              "plot",
		Timezone:             "Europe/Berlin",
		MinTimeInBedSeconds:  4 * 3600,
		CorrelationThreshold: 0.2,
		References:           append([]string(nil), correlation.DefaultReferences...),
		Candidates:           append([]string(nil), DefaultCandidates...),
		APIBaseURL:           "https://api.ouraring.com",
		TokenFile:            "token.txt",
		FetchTimeoutSeconds:  15,
		Addr:                 ":8501",
		DashboardWeeks:       4,
	}
}

// MinTimeInBed returns the filter threshold as a duration.
func (c *Config) MinTimeInBed() time.Duration {
	return time.Duration(c.MinTimeInBedSeconds) * time.Second
}

// FetchTimeout returns the fetch timeout as a duration.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutSeconds) * time.Second
}
