// Package correlation ranks dataset columns by their Pearson correlation
// with a reference column.
package correlation

import (
	"fmt"
	"math"
	"slices"

	"github.com/okian/sleeplab/internal/domain/model"
	"github.com/okian/sleeplab/internal/domain/prep"
)

// DefaultThreshold is the |r| from which a candidate counts as correlated.
const DefaultThreshold = 0.2

// DefaultReferences are the columns analyzed when none are configured.
var DefaultReferences = []string{"start of sleep", "sleep total h"}

// DefaultCandidates are the columns correlated against each reference.
var DefaultCandidates = []string{
	"sleep total h",
	"HR average",
	"HR mini",
	"HRV average",
	"latency min",
	"time awake h",
	"efficiency",
	"REM sleep %",
	"deep sleep %",
	"light sleep %",
	"average_breath",
	"restless_periods",
}

// Sign classifies a coefficient against the threshold.
type Sign int

const (
	Negligible Sign = iota
	Positive
	Negative
)

func (s Sign) String() string {
	switch s {
	case Positive:
		return "positive"
	case Negative:
		return "negative"
	default:
		return "negligible"
	}
}

// Entry is one candidate's correlation with the reference. R is NaN when
// the coefficient is undefined.
type Entry struct {
	Column  string
	R       float64
	Pairs   int
	Defined bool
	Sign    Sign
}

// Result holds the ranked entries for one reference column.
type Result struct {
	Reference string
	Threshold float64
	Entries   []Entry
}

// Positive returns entries at or above the threshold, strongest first.
func (r Result) Positive() []Entry { return r.bySign(Positive) }

// Negative returns entries at or below the negated threshold, strongest first.
func (r Result) Negative() []Entry { return r.bySign(Negative) }

func (r Result) bySign(s Sign) []Entry {
	var out []Entry
	for _, e := range r.Entries {
		if e.Sign == s {
			out = append(out, e)
		}
	}
	return out
}

// Option applies a configuration option to Analyze.
type Option func(*analyzer)

type analyzer struct {
	threshold float64
}

// WithThreshold sets the classification threshold.
func WithThreshold(t float64) Option {
	return func(a *analyzer) {
		if t > 0 {
			a.threshold = t
		}
	}
}

// Analyze correlates every candidate with reference. Missing values are
// excluded pairwise. Coefficients are rounded to three decimals and entries
// sorted by descending |r|, keeping candidate order on ties; undefined
// coefficients sort last. The reference itself is skipped.
func Analyze(ds *model.Dataset, reference string, candidates []string, opts ...Option) (Result, error) {
	a := analyzer{threshold: DefaultThreshold}
	for _, opt := range opts {
		opt(&a)
	}

	ref, err := ds.Column(reference)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrUnknownReference, err)
	}

	res := Result{Reference: reference, Threshold: a.threshold}
	for _, name := range candidates {
		if name == reference {
			continue
		}
		col, err := ds.Column(name)
		if err != nil {
			return Result{}, fmt.Errorf("%w: %w", ErrUnknownCandidate, err)
		}
		r, pairs, ok := Pearson(ref, col)
		e := Entry{Column: name, R: math.NaN(), Pairs: pairs}
		if ok {
			e.R = prep.Round(r, 3).Or(math.NaN())
			e.Defined = !math.IsNaN(e.R)
			e.Sign = classify(e.R, a.threshold)
		}
		res.Entries = append(res.Entries, e)
	}

	slices.SortStableFunc(res.Entries, func(x, y Entry) int {
		switch {
		case x.Defined && !y.Defined:
			return -1
		case !x.Defined && y.Defined:
			return 1
		case !x.Defined:
			return 0
		}
		ax, ay := math.Abs(x.R), math.Abs(y.R)
		switch {
		case ax > ay:
			return -1
		case ax < ay:
			return 1
		}
		return 0
	})
	return res, nil
}

func classify(r, threshold float64) Sign {
	switch {
	case r >= threshold:
		return Positive
	case r <= -threshold:
		return Negative
	default:
		return Negligible
	}
}
