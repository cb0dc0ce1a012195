// Package ouraapi fetches sleep documents from the vendor cloud API.
package ouraapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/okian/sleeplab/internal/adapters/rawfile"
	"github.com/okian/sleeplab/internal/adapters/snapshot"
	"github.com/okian/sleeplab/pkg/logger"
	"github.com/okian/sleeplab/pkg/metrics"
)

// SleepPath is the sleep collection endpoint below the base URL.
const SleepPath = "/v2/usercollection/sleep"

// DefaultTimeout bounds the single request attempt.
const DefaultTimeout = 15 * time.Second

// Sentinel error kinds for this package.
var (
	ErrNoToken  = errors.New("missing access token")
	ErrRequest  = errors.New("sleep request failed")
	ErrResponse = errors.New("unexpected sleep response")
)

// Client performs one authenticated request per call; there are no retries.
type Client struct {
	http *resty.Client
	log  logger.Logger
}

// Option applies a configuration option to the Client.
type Option func(*Client)

// WithTimeout sets the request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.SetTimeout(d)
		}
	}
}

// WithLogger sets the client logger.
func WithLogger(l logger.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// New creates a client for baseURL authenticating with token.
func New(baseURL, token string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(token) == "" {
		return nil, ErrNoToken
	}
	c := &Client{
		http: resty.New().
			SetBaseURL(strings.TrimRight(baseURL, "/")).
			SetTimeout(DefaultTimeout).
			SetHeader("Accept", "application/json").
			SetAuthToken(strings.TrimSpace(token)),
		log: logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// ReadToken loads a personal access token from a file.
func ReadToken(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("%w: read %s: %w", ErrNoToken, path, err)
	}
	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", fmt.Errorf("%w: %s is empty", ErrNoToken, path)
	}
	return token, nil
}

// FetchSleep requests every sleep record from start on and returns the
// response body once it is known to hold a "data" list.
func (c *Client) FetchSleep(ctx context.Context, start time.Time) ([]byte, error) {
	begin := time.Now()
	defer func() {
		metrics.RecordFetchDuration(float64(time.Since(begin).Milliseconds()))
	}()

	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("start_date", start.Format("2006-01-02")).
		Get(SleepPath)
	if err != nil {
		metrics.RecordFetchError()
		c.log.Error(ctx, "sleep request failed", logger.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrRequest, err)
	}
	if !resp.IsSuccess() {
		metrics.RecordFetchError()
		c.log.Error(ctx, "sleep request rejected",
			logger.Int("status_code", resp.StatusCode()),
			logger.String("body", truncate(resp.String(), 200)))
		return nil, fmt.Errorf("%w: status %d", ErrRequest, resp.StatusCode())
	}

	body := resp.Body()
	records, err := rawfile.Decode(bytes.NewReader(body))
	if err != nil {
		metrics.RecordFetchError()
		return nil, fmt.Errorf("%w: %w", ErrResponse, err)
	}
	c.log.Info(ctx, "fetched sleep records",
		logger.Int("records", len(records)),
		logger.String("start_date", start.Format("2006-01-02")))
	return body, nil
}

// Save pretty-prints a fetched document with one-space indentation and
// replaces path with it.
func Save(path string, body []byte) error {
	var buf bytes.Buffer
	if err := json.Indent(&buf, body, "", " "); err != nil {
		return fmt.Errorf("%w: %w", ErrResponse, err)
	}
	buf.WriteByte('\n')
	return snapshot.WriteFileAtomic(path, buf.Bytes())
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
