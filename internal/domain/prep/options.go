package prep

import (
	"time"

	"github.com/okian/sleeplab/pkg/logger"
)

// Option applies a configuration option to the Pipeline.
type Option func(*Pipeline)

// WithTimezone sets the reference zone bedtimes are converted to.
func WithTimezone(loc *time.Location) Option {
	return func(p *Pipeline) {
		if loc != nil {
			p.loc = loc
		}
	}
}

// WithMinTimeInBed sets the exclusive lower bound for a qualifying night.
func WithMinTimeInBed(d time.Duration) Option {
	return func(p *Pipeline) {
		p.minTimeInBed = d
	}
}

// WithZeroReadinessAsMissing treats a readiness value of 0 as no measurement.
func WithZeroReadinessAsMissing(enabled bool) Option {
	return func(p *Pipeline) {
		p.zeroReadinessAsMissing = enabled
	}
}

// WithLogger sets the logger used for warnings during preparation.
func WithLogger(l logger.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.log = l
		}
	}
}
