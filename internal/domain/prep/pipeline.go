// Package prep turns raw vendor night records into the analysis dataset.
//
// The pipeline is synchronous and all-or-nothing: a malformed record fails
// the whole run before anything is written by callers.
package prep

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/okian/sleeplab/internal/domain/model"
	"github.com/okian/sleeplab/pkg/logger"
	"github.com/okian/sleeplab/pkg/metrics"
)

// Pipeline filters, normalizes and derives night records.
type Pipeline struct {
	loc                    *time.Location
	minTimeInBed           time.Duration
	zeroReadinessAsMissing bool
	log                    logger.Logger
}

// Result carries both stages of a run: the normalized records behind the
// pre-derivation export and the derived dataset.
type Result struct {
	Normalized []model.NormalizedRecord
	Dataset    *model.Dataset
}

// New creates a Pipeline. The reference zone defaults to DefaultTimezone.
func New(opts ...Option) (*Pipeline, error) {
	p := &Pipeline{
		minTimeInBed: DefaultMinTimeInBed,
		log:          logger.Nop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.loc == nil {
		loc, err := LoadLocation(DefaultTimezone)
		if err != nil {
			return nil, err
		}
		p.loc = loc
	}
	return p, nil
}

// Prepare runs the pipeline over decoded records.
func (p *Pipeline) Prepare(ctx context.Context, records []model.RawNightRecord) (*Result, error) {
	metrics.RecordRecordsRead(len(records))

	start := time.Now()
	kept := Filter(records, p.minTimeInBed)
	metrics.RecordRecordsFiltered(len(records) - len(kept))
	metrics.RecordStageDuration("filter", msSince(start))

	start = time.Now()
	normalized := make([]model.NormalizedRecord, 0, len(kept))
	for _, r := range kept {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		n, err := normalize(r, p.loc)
		if err != nil {
			metrics.RecordPipelineFailure("normalize")
			return nil, err
		}
		normalized = append(normalized, n)
	}
	normalized = p.uniqueDays(ctx, normalized)
	metrics.RecordStageDuration("normalize", msSince(start))

	start = time.Now()
	rows := make([]model.NightRow, len(normalized))
	for i := range normalized {
		rows[i] = derive(normalized[i], p.zeroReadinessAsMissing)
	}
	ds, err := model.NewDataset(rows)
	if err != nil {
		metrics.RecordPipelineFailure("derive")
		return nil, fmt.Errorf("build dataset: %w", err)
	}
	metrics.RecordStageDuration("derive", msSince(start))
	recordMissing(ds)
	metrics.UpdateRows(ds.Len())

	p.log.Debug(ctx, "prepared sleep dataset",
		logger.Int("records", len(records)),
		logger.Int("qualifying", len(kept)),
		logger.Int("rows", ds.Len()))

	return &Result{Normalized: normalized, Dataset: ds}, nil
}

// uniqueDays keeps one record per day, the one with the longest time in
// bed (first wins on ties), and returns them sorted by day.
func (p *Pipeline) uniqueDays(ctx context.Context, records []model.NormalizedRecord) []model.NormalizedRecord {
	best := make(map[string]int, len(records))
	out := make([]model.NormalizedRecord, 0, len(records))
	for _, r := range records {
		key := r.Day.Format(model.DayLayout)
		i, seen := best[key]
		if !seen {
			best[key] = len(out)
			out = append(out, r)
			continue
		}
		metrics.RecordDuplicateDay()
		winner := out[i]
		if *r.Raw.TimeInBed > *winner.Raw.TimeInBed {
			out[i] = r
		}
		p.log.Warn(ctx, "multiple qualifying nights for one day, keeping the longest",
			logger.String("day", key),
			logger.String("kept", out[i].Raw.ID),
			logger.String("dropped", dropped(winner, r, out[i]).Raw.ID))
	}
	slices.SortStableFunc(out, func(a, b model.NormalizedRecord) int {
		return a.Day.Compare(b.Day)
	})
	return out
}

func dropped(a, b, kept model.NormalizedRecord) model.NormalizedRecord {
	if a.Raw.ID == kept.Raw.ID {
		return b
	}
	return a
}

func recordMissing(ds *model.Dataset) {
	for _, col := range model.NightColumns() {
		if col.Number == nil {
			continue
		}
		missing := 0
		for i := range ds.Rows() {
			if !col.Number(&ds.Rows()[i]).Valid {
				missing++
			}
		}
		metrics.RecordMissingCells(col.Name, missing)
	}
}

func msSince(t time.Time) float64 {
	return float64(time.Since(t).Microseconds()) / 1000
}
