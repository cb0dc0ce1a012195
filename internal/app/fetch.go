package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/okian/sleeplab/internal/adapters/ouraapi"
	"github.com/okian/sleeplab/internal/adapters/rawfile"
	"github.com/okian/sleeplab/pkg/logger"
)

// FetchStart resolves the first fetched day: the configured start date,
// or one year before today.
func (s *Service) FetchStart() (time.Time, error) {
	if s.cfg.StartDate == "" {
		y, m, d := s.now().AddDate(-1, 0, 0).Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), nil
	}
	t, err := time.Parse(time.DateOnly, s.cfg.StartDate)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: start date %q: %w", ErrFetch, s.cfg.StartDate, err)
	}
	return t, nil
}

// Fetch downloads sleep records from start on and replaces the raw file.
// The previous file is kept when the request or the response is bad.
func (s *Service) Fetch(ctx context.Context, start time.Time) (int, error) {
	token, err := ouraapi.ReadToken(s.cfg.TokenFile)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	client, err := ouraapi.New(s.cfg.APIBaseURL, token,
		ouraapi.WithTimeout(s.cfg.FetchTimeout()),
		ouraapi.WithLogger(s.logger.Named("ouraapi")))
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrFetch, err)
	}

	body, err := client.FetchSleep(ctx, start)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	records, err := rawfile.Decode(bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	if err := ouraapi.Save(s.cfg.RawFile, body); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrWrite, err)
	}

	s.logger.Info(ctx, "raw file replaced",
		logger.String("path", s.cfg.RawFile),
		logger.Int("records", len(records)))
	return len(records), nil
}
