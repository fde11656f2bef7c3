package store

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
)

func TestPlaceholders(t *testing.T) {
	cases := []struct {
		start, count int
		want         string
	}{
		{1, 1, "$1"},
		{1, 3, "$1, $2, $3"},
		{4, 2, "$4, $5"},
	}
	for _, tc := range cases {
		if got := placeholders(tc.start, tc.count); got != tc.want {
			t.Errorf("placeholders(%d, %d) = %q, want %q", tc.start, tc.count, got, tc.want)
		}
	}
}

func TestChunk(t *testing.T) {
	items := make([]int, 23)
	batches := chunk(items, 10)
	if len(batches) != 3 {
		t.Fatalf("batches = %d, want 3", len(batches))
	}
	if len(batches[0]) != 10 || len(batches[1]) != 10 || len(batches[2]) != 3 {
		t.Fatalf("batch sizes = %d/%d/%d", len(batches[0]), len(batches[1]), len(batches[2]))
	}

	if chunk([]int{}, 10) != nil {
		t.Error("empty input should chunk to nil")
	}
	if chunk(items, 0) != nil {
		t.Error("non-positive size should chunk to nil")
	}
}

type fakeResult int64

func (r fakeResult) LastInsertId() (int64, error) { return 0, nil }
func (r fakeResult) RowsAffected() (int64, error) { return int64(r), nil }

// fakeExecer fails every multi-row insert and scripts the per-row
// outcomes by profile id.
type fakeExecer struct {
	rowErrs  map[string]error
	affected map[string]int64
	calls    int
}

func (f *fakeExecer) ExecContext(_ context.Context, query string, args ...any) (sql.Result, error) {
	f.calls++
	if strings.Contains(query, "), (") || len(args) > 4 {
		return nil, errors.New("batch insert rejected")
	}
	id, _ := args[1].(string)
	if err := f.rowErrs[id]; err != nil {
		return nil, err
	}
	if n, ok := f.affected[id]; ok {
		return fakeResult(n), nil
	}
	return fakeResult(1), nil
}

func TestInsertRawBatchFallsBackPerRow(t *testing.T) {
	db := &fakeExecer{
		rowErrs: map[string]error{"p2": errors.New("value too long")},
	}
	batch := []ProfileInput{
		{ID: "p1", Username: "u1"},
		{ID: "p2", Username: "u2"},
		{ID: "p3", Username: "u3"},
	}

	inserted, failed := insertRawBatch(context.Background(), db, "appTest12345", batch)
	if inserted != 2 || failed != 1 {
		t.Fatalf("inserted/failed = %d/%d, want 2/1", inserted, failed)
	}
	// one batch attempt plus one per row
	if db.calls != 4 {
		t.Fatalf("calls = %d, want 4", db.calls)
	}
}

func TestInsertGlobalBatchFallsBackPerRow(t *testing.T) {
	db := &fakeExecer{
		rowErrs:  map[string]error{"p2": errors.New("value too long")},
		affected: map[string]int64{"p3": 0},
	}
	batch := []ProfileInput{
		{ID: "p1", Username: "u1"},
		{ID: "p2", Username: "u2"},
		{ID: "p3", Username: "u3"},
	}

	added, skipped, failed := insertGlobalBatch(context.Background(), db, "appTest12345", batch)
	if added != 1 || skipped != 1 || failed != 1 {
		t.Fatalf("added/skipped/failed = %d/%d/%d, want 1/1/1", added, skipped, failed)
	}
}
