package service

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/okian/sleeplab/internal/adapters/rawfile"
	"github.com/okian/sleeplab/internal/domain/model"
	"github.com/okian/sleeplab/pkg/logger"
	"github.com/okian/sleeplab/pkg/metrics"
)

// Start loads the dataset and watches the raw file for replacements. A
// failed initial load is returned; later failures keep the last good
// dataset in place.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return ErrStarted
	}
	s.started = true
	s.mu.Unlock()

	if err := s.Reload(ctx); err != nil {
		s.abortStart()
		return err
	}

	w, err := s.newWatcher()
	if err != nil {
		s.abortStart()
		return fmt.Errorf("service: watcher: %w", err)
	}
	// The directory is watched since atomic replacement swaps the inode.
	if err := w.Add(filepath.Dir(s.cfg.RawFile)); err != nil {
		_ = w.Close()
		s.abortStart()
		return fmt.Errorf("service: watch %s: %w", s.cfg.RawFile, err)
	}

	stopCh, doneCh := make(chan struct{}), make(chan struct{})
	s.mu.Lock()
	s.watcher, s.stopCh, s.doneCh = w, stopCh, doneCh
	s.mu.Unlock()

	go s.watch(ctx, w, stopCh, doneCh)

	s.logger.Info(ctx, "watching raw file", logger.String("path", s.cfg.RawFile))
	return nil
}

func (s *Service) abortStart() {
	s.mu.Lock()
	s.started = false
	s.mu.Unlock()
}

// Stop ends the watcher and waits for it to exit.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	stopCh, doneCh, w := s.stopCh, s.doneCh, s.watcher
	s.stopCh, s.doneCh, s.watcher = nil, nil, nil
	s.mu.Unlock()

	if stopCh != nil {
		close(stopCh)
		<-doneCh
	}
	if w != nil {
		_ = w.Close()
	}
}

// Reload rebuilds the dataset from the raw file without writing snapshots.
func (s *Service) Reload(ctx context.Context) error {
	records, err := rawfile.Load(s.cfg.RawFile)
	if err == nil {
		var ds *model.Dataset
		ds, err = s.derive(ctx, records)
		if err == nil {
			s.mu.Lock()
			s.dataset = ds
			s.loadedAt = s.now()
			s.reloads++
			s.lastError = nil
			s.mu.Unlock()
			metrics.RecordDatasetReload("ok")
			s.logger.Info(ctx, "dataset loaded", logger.Int("rows", ds.Len()))
			return nil
		}
	}

	s.mu.Lock()
	s.lastError = err
	s.mu.Unlock()
	metrics.RecordDatasetReload("error")
	s.logger.Error(ctx, "dataset reload failed", logger.Error(err))
	return fmt.Errorf("%w: %w", ErrLoad, err)
}

func (s *Service) derive(ctx context.Context, records []model.RawNightRecord) (*model.Dataset, error) {
	res, err := s.pipeline.Prepare(ctx, records)
	if err != nil {
		return nil, err
	}
	return res.Dataset, nil
}

// Dataset returns the last successfully loaded dataset, or nil.
func (s *Service) Dataset() *model.Dataset {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dataset
}

// Stats reports the served dataset state.
func (s *Service) Stats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]any{
		"raw_file": s.cfg.RawFile,
		"reloads":  s.reloads,
		"watching": s.watcher != nil,
	}
	if s.dataset != nil {
		rows := s.dataset.Rows()
		stats["rows"] = len(rows)
		if len(rows) > 0 {
			stats["first_day"] = rows[0].Day.Format(model.DayLayout)
			stats["last_day"] = rows[len(rows)-1].Day.Format(model.DayLayout)
		}
		stats["loaded_at"] = s.loadedAt.UTC().Format(time.RFC3339)
	}
	if s.lastError != nil {
		stats["last_error"] = s.lastError.Error()
	}
	return stats
}

func (s *Service) watch(ctx context.Context, w *fsnotify.Watcher, stopCh, doneCh chan struct{}) {
	defer close(doneCh)

	target := filepath.Clean(s.cfg.RawFile)
	timer := time.NewTimer(s.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ctx.Done():
			return
		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			timer.Reset(s.debounce)
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			if !errors.Is(err, fsnotify.ErrEventOverflow) {
				s.logger.Warn(ctx, "watcher error", logger.Error(err))
				continue
			}
			timer.Reset(s.debounce)
		case <-timer.C:
			_ = s.Reload(ctx)
		}
	}
}
