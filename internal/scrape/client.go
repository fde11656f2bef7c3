package scrape

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/sethvargo/go-retry"

	"outreach/internal/config"
)

// ErrUpstream wraps every failure talking to the scraping provider so
// the HTTP layer can map it to a 502.
var ErrUpstream = errors.New("upstream scrape error")

// Client talks to the upstream actor-run API. Each Scrape call runs the
// platform's actor synchronously and returns its normalized dataset.
type Client struct {
	baseURL  string
	token    string
	httpc    *http.Client
	adapters map[Platform]Adapter
	logger   *slog.Logger

	// backoffBase is the first retry sleep; doubles per attempt.
	backoffBase time.Duration
}

func NewClient(cfg config.UpstreamConfig, logger *slog.Logger) *Client {
	timeout := time.Duration(cfg.TimeoutMs) * time.Millisecond
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return &Client{
		baseURL:     cfg.BaseURL,
		token:       cfg.APIToken,
		httpc:       &http.Client{Timeout: timeout},
		adapters:    NewAdapters(cfg.Actors),
		logger:      logger,
		backoffBase: 2 * time.Second,
	}
}

// Scrape runs the platform's actor against a batch of accounts. It makes
// up to three attempts with exponential backoff; rate limits, server
// errors, and network failures are all retried.
func (c *Client) Scrape(ctx context.Context, platform Platform, accounts []string, maxPerAccount int) ([]Profile, error) {
	adapter, ok := c.adapters[platform]
	if !ok {
		return nil, fmt.Errorf("no actor configured for platform %q", platform)
	}

	body, err := json.Marshal(adapter.BuildInput(accounts, maxPerAccount))
	if err != nil {
		return nil, fmt.Errorf("build actor input: %w", err)
	}

	endpoint := fmt.Sprintf("%s/v2/acts/%s/run-sync-get-dataset-items?token=%s",
		c.baseURL, url.PathEscape(adapter.ActorID()), url.QueryEscape(c.token))

	var raw []map[string]any
	backoff := retry.WithMaxRetries(2, retry.NewExponential(c.backoffBase))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		raw = nil
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpc.Do(req)
		if err != nil {
			return retry.RetryableError(fmt.Errorf("%w: %v", ErrUpstream, err))
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
			payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			return retry.RetryableError(fmt.Errorf("%w: actor run returned %d: %s",
				ErrUpstream, resp.StatusCode, payload))
		}

		if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
			return retry.RetryableError(fmt.Errorf("%w: decode dataset: %v", ErrUpstream, err))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	profiles := make([]Profile, 0, len(raw))
	for _, item := range raw {
		if p, ok := adapter.Normalize(item); ok {
			profiles = append(profiles, p)
		}
	}

	if c.logger != nil {
		c.logger.Debug("scraped batch",
			"platform", string(platform),
			"accounts", len(accounts),
			"profiles", len(profiles))
	}
	return profiles, nil
}
