package recordstore

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
	"golang.org/x/time/rate"

	"outreach/internal/config"
)

const (
	// writeChunk is the record-store API's hard cap per write request.
	writeChunk = 10
)

var (
	// ErrUnavailable wraps transport and server-side failures so the
	// HTTP layer can map them to a 502.
	ErrUnavailable = errors.New("record store unavailable")

	// ErrDuplicateTable is returned by CreateTable when the name is
	// already taken; provisioning treats it as a skip, not a failure.
	ErrDuplicateTable = errors.New("table name already exists")
)

// Record is one row in a record-store table.
type Record struct {
	ID     string         `json:"id,omitempty"`
	Fields map[string]any `json:"fields"`
}

// QueueTable names the per-queue table, 1-based: WorkQueue_01 ...
func QueueTable(i int) string {
	return fmt.Sprintf("WorkQueue_%02d", i)
}

// Client is a REST client for the external record store. The tenant id
// doubles as the base id. Requests are paced to roughly five per second
// and batched writes get up to three attempts with 1s/2s backoff.
type Client struct {
	baseURL string
	token   string
	httpc   *http.Client
	limiter *rate.Limiter
	logger  *slog.Logger

	backoffBase time.Duration
}

func NewClient(cfg config.RecordStoreConfig, logger *slog.Logger) *Client {
	timeout := time.Duration(cfg.TimeoutMs) * time.Millisecond
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:     cfg.BaseURL,
		token:       cfg.AccessToken,
		httpc:       &http.Client{Timeout: timeout},
		limiter:     rate.NewLimiter(rate.Every(200*time.Millisecond), 1),
		logger:      logger,
		backoffBase: time.Second,
	}
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	var payload io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return err
		}
		payload = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, payload)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnprocessableEntity {
		var apiErr struct {
			Error struct {
				Type string `json:"type"`
			} `json:"error"`
		}
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Error.Type == "DUPLICATE_TABLE_NAME" {
			return ErrDuplicateTable
		}
		return fmt.Errorf("record store rejected %s %s: %s", method, path, raw)
	}
	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return fmt.Errorf("%w: %s %s returned %d", ErrUnavailable, method, path, resp.StatusCode)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("record store %s %s returned %d: %s", method, path, resp.StatusCode, raw)
	}

	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

// withBackoff retries transient failures with exponential backoff,
// three attempts in total.
func (c *Client) withBackoff(ctx context.Context, fn func(ctx context.Context) error) error {
	backoff := retry.WithMaxRetries(2, retry.NewExponential(c.backoffBase))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := fn(ctx)
		if errors.Is(err, ErrUnavailable) {
			return retry.RetryableError(err)
		}
		return err
	})
}

// ListRecords fetches every record in a table, following pagination.
func (c *Client) ListRecords(ctx context.Context, baseID, table string) ([]Record, error) {
	var all []Record
	offset := ""
	for {
		path := fmt.Sprintf("/v0/%s/%s", url.PathEscape(baseID), url.PathEscape(table))
		if offset != "" {
			path += "?offset=" + url.QueryEscape(offset)
		}

		var page struct {
			Records []Record `json:"records"`
			Offset  string   `json:"offset"`
		}
		if err := c.do(ctx, http.MethodGet, path, nil, &page); err != nil {
			return nil, err
		}
		all = append(all, page.Records...)
		if page.Offset == "" {
			return all, nil
		}
		offset = page.Offset
	}
}

// CreateRecords pushes records in chunks of ten. Each chunk retries with
// backoff; the first chunk that exhausts its retries stops the push and
// the count of records created so far is returned alongside the error.
func (c *Client) CreateRecords(ctx context.Context, baseID, table string, records []Record) (int, error) {
	path := fmt.Sprintf("/v0/%s/%s", url.PathEscape(baseID), url.PathEscape(table))
	created := 0
	for start := 0; start < len(records); start += writeChunk {
		end := start + writeChunk
		if end > len(records) {
			end = len(records)
		}
		batch := records[start:end]

		err := c.withBackoff(ctx, func(ctx context.Context) error {
			return c.do(ctx, http.MethodPost, path, map[string]any{"records": batch}, nil)
		})
		if err != nil {
			return created, err
		}
		created += len(batch)
	}
	return created, nil
}

// UpdateRecord patches a single record's fields.
func (c *Client) UpdateRecord(ctx context.Context, baseID, table, recordID string, fields map[string]any) error {
	path := fmt.Sprintf("/v0/%s/%s/%s",
		url.PathEscape(baseID), url.PathEscape(table), url.PathEscape(recordID))
	return c.withBackoff(ctx, func(ctx context.Context) error {
		return c.do(ctx, http.MethodPatch, path, map[string]any{"fields": fields}, nil)
	})
}

// DeleteRecords removes records in chunks of ten and returns the ids
// that were actually deleted. A chunk that exhausts its retries stops
// the deletion; earlier chunks stay deleted.
func (c *Client) DeleteRecords(ctx context.Context, baseID, table string, recordIDs []string) ([]string, error) {
	var deleted []string
	for start := 0; start < len(recordIDs); start += writeChunk {
		end := start + writeChunk
		if end > len(recordIDs) {
			end = len(recordIDs)
		}
		batch := recordIDs[start:end]

		q := url.Values{}
		for _, id := range batch {
			q.Add("records[]", id)
		}
		path := fmt.Sprintf("/v0/%s/%s?%s",
			url.PathEscape(baseID), url.PathEscape(table), q.Encode())

		err := c.withBackoff(ctx, func(ctx context.Context) error {
			return c.do(ctx, http.MethodDelete, path, nil, nil)
		})
		if err != nil {
			return deleted, err
		}
		deleted = append(deleted, batch...)
	}
	return deleted, nil
}

// ListTables returns the table names in a base's schema.
func (c *Client) ListTables(ctx context.Context, baseID string) ([]string, error) {
	var schema struct {
		Tables []struct {
			Name string `json:"name"`
		} `json:"tables"`
	}
	path := fmt.Sprintf("/v0/meta/bases/%s/tables", url.PathEscape(baseID))
	if err := c.do(ctx, http.MethodGet, path, nil, &schema); err != nil {
		return nil, err
	}
	names := make([]string, len(schema.Tables))
	for i, t := range schema.Tables {
		names[i] = t.Name
	}
	return names, nil
}

// FieldSpec describes one column when creating a table.
type FieldSpec struct {
	Name    string         `json:"name"`
	Type    string         `json:"type"`
	Options map[string]any `json:"options,omitempty"`
}

// CreateTable creates a table in the base. ErrDuplicateTable is returned
// when the name is taken.
func (c *Client) CreateTable(ctx context.Context, baseID, name string, fields []FieldSpec) error {
	path := fmt.Sprintf("/v0/meta/bases/%s/tables", url.PathEscape(baseID))
	return c.do(ctx, http.MethodPost, path, map[string]any{
		"name":   name,
		"fields": fields,
	}, nil)
}
