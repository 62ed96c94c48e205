package levelgen

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/dimspell/trapline/internal/app/logger/logging"
	"github.com/dimspell/trapline/internal/metrics"
)

const (
	DefaultTimeout    = 3 * time.Second
	DefaultMaxRetries = 2

	maxBodySize = 1 << 20
)

type Client struct {
	URL        string
	HTTPClient *http.Client

	// Timeout bounds the whole request including retries.
	Timeout    time.Duration
	MaxRetries uint64
}

func NewClient(url string) *Client {
	return &Client{
		URL:        url,
		HTTPClient: &http.Client{},
		Timeout:    DefaultTimeout,
		MaxRetries: DefaultMaxRetries,
	}
}

// Generate asks the service for a level. Malformed or unplayable responses
// are not retried.
func (c *Client) Generate(ctx context.Context) (Level, error) {
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	var level Level
	operation := func() error {
		lvl, err := c.fetch(ctx)
		if err != nil {
			return err
		}
		if err := lvl.Validate(); err != nil {
			return backoff.Permanent(err)
		}
		level = lvl
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 200 * time.Millisecond
	err := backoff.RetryNotify(
		operation,
		backoff.WithContext(backoff.WithMaxRetries(b, c.MaxRetries), ctx),
		func(err error, d time.Duration) {
			slog.Debug("Retrying level request", "in", d.String(), logging.Error(err))
		},
	)
	if err != nil {
		return Level{}, err
	}
	return level, nil
}

func (c *Client) fetch(ctx context.Context) (Level, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL, nil)
	if err != nil {
		return Level{}, backoff.Permanent(err)
	}
	req.Header.Set("Accept", "application/json")

	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return Level{}, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 500:
		return Level{}, fmt.Errorf("bad status: %s", resp.Status)
	case resp.StatusCode != http.StatusOK:
		return Level{}, backoff.Permanent(fmt.Errorf("bad status: %s", resp.Status))
	}

	var level Level
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodySize)).Decode(&level); err != nil {
		return Level{}, backoff.Permanent(fmt.Errorf("%w: %v", ErrInvalidLevel, err))
	}
	return level, nil
}

// Load returns a generated level, or the fallback level when the client has
// no address or generation fails for any reason. It never blocks longer than
// the client timeout.
func (c *Client) Load(ctx context.Context) Level {
	if c == nil || c.URL == "" {
		slog.Debug("No level service configured, using the fallback level")
		return Fallback()
	}

	level, err := c.Generate(ctx)
	if err != nil {
		slog.Warn("Level generation failed, using the fallback level", "url", c.URL, logging.Error(err))
		metrics.LevelFallbacks.Inc()
		return Fallback()
	}
	return level
}
