package service

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/okian/sleeplab/internal/adapters/chart"
	"github.com/okian/sleeplab/internal/adapters/console"
	"github.com/okian/sleeplab/internal/adapters/rawfile"
	"github.com/okian/sleeplab/internal/adapters/snapshot"
	"github.com/okian/sleeplab/internal/domain/correlation"
	"github.com/okian/sleeplab/internal/domain/prep"
	"github.com/okian/sleeplab/pkg/logger"
	"github.com/okian/sleeplab/pkg/metrics"
)

// ReportOptions selects what a report run emits besides the report file.
type ReportOptions struct {
	// Format of the stdout rendition: text, yaml or json.
	Format string
	// Charts enables PNG output into the plot directory.
	Charts bool
}

// Report is the outcome of a report run.
type Report struct {
	Results []correlation.Result
	Charts  []string
}

// Prepare loads the raw document, derives the dataset and replaces both
// snapshots (and the workbook when configured). Nothing is written unless
// every record was processed.
func (s *Service) Prepare(ctx context.Context) (*prep.Result, error) {
	log := s.runLogger(uuid.NewString())
	return s.prepare(ctx, log)
}

func (s *Service) prepare(ctx context.Context, log logger.Logger) (*prep.Result, error) {
	begin := time.Now()

	records, err := rawfile.Load(s.cfg.RawFile)
	if err != nil {
		metrics.RecordPipelineFailure("load")
		log.Error(ctx, "load raw file failed", logger.String("path", s.cfg.RawFile), logger.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrLoad, err)
	}

	res, err := s.pipeline.Prepare(ctx, records)
	if err != nil {
		metrics.RecordPipelineFailure("prepare")
		log.Error(ctx, "prepare failed", logger.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrPrepare, err)
	}

	files, err := snapshot.Stage(res, s.cfg.OrigSnapshot, s.cfg.ModifiedSnapshot)
	if err != nil {
		metrics.RecordPipelineFailure("encode")
		return nil, fmt.Errorf("%w: %w", ErrWrite, err)
	}
	if s.cfg.WorkbookFile != "" {
		wb, err := snapshot.StageWorkbook(res.Dataset, s.cfg.WorkbookFile)
		if err != nil {
			metrics.RecordPipelineFailure("encode")
			return nil, fmt.Errorf("%w: %w", ErrWrite, err)
		}
		files = append(files, wb)
	}

	writeStart := time.Now()
	if err := snapshot.Commit(files); err != nil {
		metrics.RecordPipelineFailure("write")
		log.Error(ctx, "write snapshots failed", logger.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrWrite, err)
	}
	metrics.RecordStageDuration("write", msSince(writeStart))
	for _, f := range files {
		metrics.RecordSnapshotWrite(f.Kind)
	}

	metrics.UpdateLastSuccess(s.now().Unix())
	log.Info(ctx, "dataset prepared",
		logger.Int("records", len(records)),
		logger.Int("rows", res.Dataset.Len()),
		logger.String("modified", s.cfg.ModifiedSnapshot),
		logger.Duration("took", time.Since(begin)))
	s.exportMetrics(ctx, log)
	return res, nil
}

// Report prepares the dataset, correlates every configured reference and
// writes the text report. The report is echoed to stdout in opts.Format.
func (s *Service) Report(ctx context.Context, opts ReportOptions) (*Report, error) {
	log := s.runLogger(uuid.NewString())
	switch opts.Format {
	case "":
		opts.Format = correlation.FormatText
	case correlation.FormatText, correlation.FormatYAML, correlation.FormatJSON:
	default:
		return nil, fmt.Errorf("%w: %q", correlation.ErrUnknownFormat, opts.Format)
	}

	prepared, err := s.prepare(ctx, log)
	if err != nil {
		return nil, err
	}
	ds := prepared.Dataset

	out := &Report{}
	for _, ref := range s.cfg.References {
		r, err := correlation.Analyze(ds, ref, s.cfg.Candidates,
			correlation.WithThreshold(s.cfg.CorrelationThreshold))
		if err != nil {
			metrics.RecordPipelineFailure("correlate")
			return nil, fmt.Errorf("%w: %w", ErrPrepare, err)
		}
		for _, e := range r.Entries {
			if e.Defined {
				metrics.UpdateCorrelation(r.Reference, e.Column, e.R)
			}
		}
		out.Results = append(out.Results, r)
	}

	var text bytes.Buffer
	if err := correlation.WriteText(&text, out.Results); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrWrite, err)
	}
	if err := snapshot.WriteFileAtomic(s.cfg.ReportFile, text.Bytes()); err != nil {
		metrics.RecordPipelineFailure("write")
		return nil, fmt.Errorf("%w: %w", ErrWrite, err)
	}

	if err := s.echo(out, opts.Format); err != nil {
		return nil, err
	}

	if opts.Charts {
		r := chart.New(s.cfg.PlotDir)
		for _, res := range out.Results {
			paths, err := r.Correlations(ds, res)
			if err != nil {
				metrics.RecordPipelineFailure("chart")
				return nil, fmt.Errorf("%w: %w", ErrWrite, err)
			}
			out.Charts = append(out.Charts, paths...)
		}
		path, err := r.Scatter(ds)
		if err != nil {
			metrics.RecordPipelineFailure("chart")
			return nil, fmt.Errorf("%w: %w", ErrWrite, err)
		}
		out.Charts = append(out.Charts, path)
	}

	log.Info(ctx, "report written",
		logger.String("path", s.cfg.ReportFile),
		logger.Int("references", len(out.Results)),
		logger.Int("charts", len(out.Charts)))
	s.exportMetrics(ctx, log)
	return out, nil
}

func (s *Service) echo(r *Report, format string) error {
	if format == correlation.FormatText {
		if err := console.WriteReport(s.stdout, r.Results); err != nil {
			return fmt.Errorf("%w: %w", ErrWrite, err)
		}
		return nil
	}
	data, err := correlation.Render(r.Results, format)
	if err != nil {
		return err
	}
	if _, err := s.stdout.Write(data); err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	return nil
}

// exportMetrics is best effort; a failed textfile never fails the run.
func (s *Service) exportMetrics(ctx context.Context, log logger.Logger) {
	if s.cfg.MetricsFile == "" {
		return
	}
	if err := os.MkdirAll(filepath.Dir(s.cfg.MetricsFile), 0o755); err != nil {
		log.Warn(ctx, "create metrics directory failed", logger.Error(err))
		return
	}
	if err := metrics.WriteTextfile(s.cfg.MetricsFile); err != nil {
		log.Warn(ctx, "write metrics textfile failed", logger.Error(err))
	}
}
