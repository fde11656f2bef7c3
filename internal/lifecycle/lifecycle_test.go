package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"

	"outreach/internal/config"
	"outreach/internal/recordstore"
	"outreach/internal/store"
)

type fakeStore struct {
	unfollowDue []store.Assignment
	completed   []store.Assignment

	states  map[uuid.UUID]string
	deleted map[uuid.UUID]bool

	purgedRaw, purgedCampaigns, purgedAssignments int64
	tenants                                       []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		states:  map[uuid.UUID]string{},
		deleted: map[uuid.UUID]bool{},
	}
}

func (f *fakeStore) ListAssignmentsForUnfollow(_ context.Context, _ string, _ time.Time) ([]store.Assignment, error) {
	return f.unfollowDue, nil
}

func (f *fakeStore) ListCompletedAssignmentsBefore(_ context.Context, _ string, _ time.Time) ([]store.Assignment, error) {
	return f.completed, nil
}

func (f *fakeStore) UpdateAssignmentState(_ context.Context, _ string, id uuid.UUID, state string) error {
	f.states[id] = state
	return nil
}

func (f *fakeStore) DeleteAssignment(_ context.Context, _ string, id uuid.UUID) error {
	f.deleted[id] = true
	return nil
}

func (f *fakeStore) DeleteRawProfilesBefore(_ context.Context, _ string, _ time.Time) (int64, error) {
	f.purgedRaw = 5
	return 5, nil
}

func (f *fakeStore) DeleteCampaignsBefore(_ context.Context, _ string, _ time.Time) (int64, error) {
	f.purgedCampaigns = 2
	return 2, nil
}

func (f *fakeStore) DeleteAssignmentsBefore(_ context.Context, _ string, _ time.Time) (int64, error) {
	f.purgedAssignments = 9
	return 9, nil
}

func (f *fakeStore) ListTenantIDs(_ context.Context) ([]string, error) {
	return f.tenants, nil
}

type fakeRecords struct {
	tables        map[string][]recordstore.Record
	updated       map[string]map[string]any
	deleteErr     map[string]error
	deletedIDs    map[string][]string
	failListTable string
}

func newFakeRecords() *fakeRecords {
	return &fakeRecords{
		tables:     map[string][]recordstore.Record{},
		updated:    map[string]map[string]any{},
		deleteErr:  map[string]error{},
		deletedIDs: map[string][]string{},
	}
}

func (f *fakeRecords) ListRecords(_ context.Context, _ string, table string) ([]recordstore.Record, error) {
	if table == f.failListTable {
		return nil, errors.New("record store unavailable")
	}
	return f.tables[table], nil
}

func (f *fakeRecords) UpdateRecord(_ context.Context, _ string, _ string, recordID string, fields map[string]any) error {
	f.updated[recordID] = fields
	return nil
}

func (f *fakeRecords) DeleteRecords(_ context.Context, _ string, table string, ids []string) ([]string, error) {
	if err := f.deleteErr[table]; err != nil {
		// Fail after the first chunk of ten.
		n := len(ids)
		if n > 10 {
			n = 10
		}
		f.deletedIDs[table] = ids[:n]
		return ids[:n], err
	}
	f.deletedIDs[table] = ids
	return ids, nil
}

func testEngine(st *fakeStore, rs *fakeRecords) *Engine {
	cfg := &config.Config{}
	e := NewEngine(cfg, st, rs, slog.New(slog.NewTextHandler(os.Stderr, nil)))
	e.now = func() time.Time { return time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC) }
	return e
}

func assignment(q, pos int, state string) store.Assignment {
	return store.Assignment{
		AssignmentID: uuid.New(),
		ProfileID:    fmt.Sprintf("p-%d-%d", q, pos),
		Username:     fmt.Sprintf("user_%d_%d", q, pos),
		QueueIndex:   q,
		Position:     pos,
		State:        state,
	}
}

func TestMarkUnfollowDueAgesUnionOfStates(t *testing.T) {
	st := newFakeStore()
	rs := newFakeRecords()

	pending := assignment(1, 1, store.StatePending)
	followed := assignment(1, 2, store.StateFollowed)
	placeholder := assignment(0, 0, store.StatePending)
	st.unfollowDue = []store.Assignment{pending, followed, placeholder}

	rs.tables["WorkQueue_01"] = []recordstore.Record{
		{ID: "rec-a", Fields: map[string]any{"profile_id": pending.ProfileID}},
		{ID: "rec-b", Fields: map[string]any{"profile_id": followed.ProfileID}},
	}

	stats, err := testEngine(st, rs).MarkUnfollowDue(t.Context(), "app12345678")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.Marked != 3 {
		t.Fatalf("marked = %d, want 3 (pending and followed both age)", stats.Marked)
	}
	for _, a := range []store.Assignment{pending, followed, placeholder} {
		if st.states[a.AssignmentID] != store.StateUnfollow {
			t.Errorf("assignment %s not moved to unfollow", a.ProfileID)
		}
	}
	// only queue-assigned rows get an external update
	if stats.Pushed != 2 {
		t.Errorf("pushed = %d, want 2", stats.Pushed)
	}
	if fields, ok := rs.updated["rec-a"]; !ok || fields["state"] != store.StateUnfollow {
		t.Errorf("external record not updated: %v", rs.updated)
	}
}

func TestMarkUnfollowDueCountsPushFailures(t *testing.T) {
	st := newFakeStore()
	rs := newFakeRecords()

	a := assignment(2, 1, store.StatePending)
	st.unfollowDue = []store.Assignment{a}
	rs.failListTable = "WorkQueue_02"

	stats, err := testEngine(st, rs).MarkUnfollowDue(t.Context(), "app12345678")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.Marked != 1 || stats.PushFailed != 1 {
		t.Fatalf("stats = %+v, want marked=1 push_failed=1", stats)
	}
	// internal state moves even when the mirror fails
	if st.states[a.AssignmentID] != store.StateUnfollow {
		t.Error("internal state should still advance")
	}
}

func TestDeleteCompletedExternalFirst(t *testing.T) {
	st := newFakeStore()
	rs := newFakeRecords()

	withRecord := assignment(1, 1, store.StateCompleted)
	noRecord := assignment(1, 2, store.StateCompleted)
	st.completed = []store.Assignment{withRecord, noRecord}

	rs.tables["WorkQueue_01"] = []recordstore.Record{
		{ID: "rec-1", Fields: map[string]any{"profile_id": withRecord.ProfileID}},
	}

	stats, err := testEngine(st, rs).DeleteCompletedAfterDelay(t.Context(), "app12345678")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.Eligible != 2 || stats.ExternalDeleted != 1 || stats.Deleted != 2 {
		t.Fatalf("stats = %+v", stats)
	}
	if !st.deleted[withRecord.AssignmentID] || !st.deleted[noRecord.AssignmentID] {
		t.Error("both rows should be deleted internally")
	}
	if len(rs.deletedIDs["WorkQueue_01"]) != 1 {
		t.Errorf("external deletes = %v", rs.deletedIDs)
	}
}

func TestDeleteCompletedSkipsRowsWhoseExternalDeleteFailed(t *testing.T) {
	st := newFakeStore()
	rs := newFakeRecords()

	rows := make([]store.Assignment, 12)
	var records []recordstore.Record
	for i := range rows {
		rows[i] = assignment(1, i+1, store.StateCompleted)
		records = append(records, recordstore.Record{
			ID:     fmt.Sprintf("rec-%02d", i),
			Fields: map[string]any{"profile_id": rows[i].ProfileID},
		})
	}
	st.completed = rows
	rs.tables["WorkQueue_01"] = records
	rs.deleteErr["WorkQueue_01"] = errors.New("record store unavailable")

	stats, err := testEngine(st, rs).DeleteCompletedAfterDelay(t.Context(), "app12345678")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// first chunk of ten deleted externally and internally, the two
	// stragglers stay for the next sweep
	if stats.ExternalDeleted != 10 || stats.Deleted != 10 || stats.Skipped != 2 {
		t.Fatalf("stats = %+v", stats)
	}
	if len(st.deleted) != 10 {
		t.Fatalf("internal deletes = %d, want 10", len(st.deleted))
	}
}

func TestPurgeOldDataNeverTouchesGlobalPool(t *testing.T) {
	st := newFakeStore()
	rs := newFakeRecords()

	stats, err := testEngine(st, rs).PurgeOldData(t.Context(), "app12345678")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.RawProfiles != 5 || stats.Campaigns != 2 || stats.Assignments != 9 {
		t.Fatalf("stats = %+v", stats)
	}
	// the fake store has no method for purging global profiles at all;
	// the Store interface not exposing one is the guarantee
}

func TestRunSweepsCoversAllTenants(t *testing.T) {
	st := newFakeStore()
	st.tenants = []string{"app11111111", "app22222222"}
	rs := newFakeRecords()

	testEngine(st, rs).RunSweeps(t.Context())
	if st.purgedRaw == 0 {
		t.Error("sweeps should have run the purge")
	}
}
