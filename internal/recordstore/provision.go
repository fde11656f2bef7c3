package recordstore

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
)

// Queue tables between 1 and MaxQueueTables may be provisioned per base.
const MaxQueueTables = 200

var queueTablePattern = regexp.MustCompile(`^WorkQueue_\d{2,}$`)

// IsQueueTable reports whether a table name belongs to the queue family.
func IsQueueTable(name string) bool {
	return queueTablePattern.MatchString(name)
}

// QueueFieldSpecs is the column layout every queue table carries.
func QueueFieldSpecs() []FieldSpec {
	return []FieldSpec{
		{Name: "profile_id", Type: "singleLineText"},
		{Name: "username", Type: "singleLineText"},
		{Name: "display_name", Type: "singleLineText"},
		{Name: "position", Type: "number", Options: map[string]any{"precision": 0}},
		{Name: "campaign_date", Type: "date", Options: map[string]any{
			"dateFormat": map[string]any{"name": "iso"},
		}},
		{Name: "state", Type: "singleSelect", Options: map[string]any{
			"choices": []map[string]any{
				{"name": "pending"},
				{"name": "followed"},
				{"name": "unfollow"},
				{"name": "completed"},
			},
		}},
	}
}

// ProvisionResult summarizes one base-provisioning run.
type ProvisionResult struct {
	Created int      `json:"created"`
	Skipped int      `json:"skipped"`
	Failed  []string `json:"failed,omitempty"`
}

// ProvisionQueueTables creates WorkQueue_01..WorkQueue_n in the base.
// Tables that already exist count as skipped; other failures are
// collected per table and do not stop the run.
func (c *Client) ProvisionQueueTables(ctx context.Context, baseID string, n int) (ProvisionResult, error) {
	var res ProvisionResult
	if n < 1 || n > MaxQueueTables {
		return res, fmt.Errorf("queue table count must be between 1 and %d, got %d", MaxQueueTables, n)
	}

	fields := QueueFieldSpecs()
	for i := 1; i <= n; i++ {
		name := QueueTable(i)
		err := c.CreateTable(ctx, baseID, name, fields)
		switch {
		case err == nil:
			res.Created++
		case errors.Is(err, ErrDuplicateTable):
			res.Skipped++
		default:
			res.Failed = append(res.Failed, name)
			if c.logger != nil {
				c.logger.Warn("create queue table failed", "base_id", baseID, "table", name, "error", err)
			}
		}
	}
	return res, nil
}

// VerifyResult reports how a base's schema compares to the expected
// queue table set.
type VerifyResult struct {
	Valid   bool     `json:"valid"`
	Found   int      `json:"found"`
	Missing []string `json:"missing,omitempty"`
	Extra   []string `json:"extra,omitempty"`
}

// VerifyQueueTables checks that WorkQueue_01..WorkQueue_n all exist and
// reports queue tables beyond n as extra.
func (c *Client) VerifyQueueTables(ctx context.Context, baseID string, n int) (VerifyResult, error) {
	var res VerifyResult
	tables, err := c.ListTables(ctx, baseID)
	if err != nil {
		return res, err
	}

	present := make(map[string]struct{}, len(tables))
	for _, t := range tables {
		if IsQueueTable(t) {
			present[t] = struct{}{}
			res.Found++
		}
	}

	for i := 1; i <= n; i++ {
		name := QueueTable(i)
		if _, ok := present[name]; ok {
			delete(present, name)
		} else {
			res.Missing = append(res.Missing, name)
		}
	}
	for name := range present {
		res.Extra = append(res.Extra, name)
	}
	sort.Strings(res.Extra)

	res.Valid = len(res.Missing) == 0
	return res, nil
}

// CountQueueTables returns how many queue tables the base's schema holds.
func (c *Client) CountQueueTables(ctx context.Context, baseID string) (int, error) {
	tables, err := c.ListTables(ctx, baseID)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, t := range tables {
		if IsQueueTable(t) {
			count++
		}
	}
	return count, nil
}
