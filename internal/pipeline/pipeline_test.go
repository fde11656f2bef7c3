package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"testing"
	"time"

	"github.com/google/uuid"

	"outreach/internal/config"
	"outreach/internal/lifecycle"
	"outreach/internal/recordstore"
	"outreach/internal/store"
)

type fakeStore struct {
	queueCount    int
	queueCountErr error

	campaigns   map[uuid.UUID]*store.Campaign
	assignments map[uuid.UUID][]store.Assignment

	poolSize  int
	selectErr error
}

func newFakePipelineStore() *fakeStore {
	return &fakeStore{
		queueCountErr: errors.New("no settings row"),
		campaigns:     map[uuid.UUID]*store.Campaign{},
		assignments:   map[uuid.UUID][]store.Assignment{},
	}
}

func (f *fakeStore) CreateCampaignWithSelection(_ context.Context, tenantID string, campaignID uuid.UUID, date time.Time, targets int) ([]store.Assignment, error) {
	if f.selectErr != nil {
		return nil, f.selectErr
	}
	if f.poolSize == 0 {
		return nil, store.ErrNoProfilesAvailable
	}
	n := targets
	if f.poolSize < n {
		n = f.poolSize
	}
	rows := make([]store.Assignment, n)
	for i := range rows {
		rows[i] = store.Assignment{
			AssignmentID: uuid.New(),
			TenantID:     tenantID,
			CampaignID:   campaignID,
			ProfileID:    fmt.Sprintf("p%03d", i),
			Username:     fmt.Sprintf("user%03d", i),
			State:        store.StatePending,
		}
	}
	f.campaigns[campaignID] = &store.Campaign{
		CampaignID:    campaignID,
		TenantID:      tenantID,
		CampaignDate:  date,
		TotalAssigned: n,
	}
	f.assignments[campaignID] = rows
	return rows, nil
}

func (f *fakeStore) GetCampaign(_ context.Context, _ string, id uuid.UUID) (store.Campaign, error) {
	c, ok := f.campaigns[id]
	if !ok {
		return store.Campaign{}, errors.New("campaign not found")
	}
	return *c, nil
}

func (f *fakeStore) SetCampaignDistributed(_ context.Context, _ string, id uuid.UUID) error {
	f.campaigns[id].Distributed = true
	return nil
}

func (f *fakeStore) SetCampaignSynced(_ context.Context, _ string, id uuid.UUID, synced bool) error {
	f.campaigns[id].Synced = synced
	return nil
}

func (f *fakeStore) ListPlaceholderAssignments(_ context.Context, _ string, campaignID uuid.UUID) ([]store.Assignment, error) {
	var out []store.Assignment
	for _, a := range f.assignments[campaignID] {
		if a.QueueIndex == 0 {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *fakeStore) ListPackedAssignments(_ context.Context, _ string, campaignID uuid.UUID) ([]store.Assignment, error) {
	var out []store.Assignment
	for _, a := range f.assignments[campaignID] {
		if a.QueueIndex > 0 {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].QueueIndex != out[j].QueueIndex {
			return out[i].QueueIndex < out[j].QueueIndex
		}
		return out[i].Position < out[j].Position
	})
	return out, nil
}

func (f *fakeStore) ListActiveAssignments(_ context.Context, _ string) ([]store.Assignment, error) {
	var out []store.Assignment
	for _, rows := range f.assignments {
		out = append(out, rows...)
	}
	return out, nil
}

func (f *fakeStore) AssignSlot(_ context.Context, _ string, assignmentID uuid.UUID, queueIndex, position int) error {
	for id, rows := range f.assignments {
		for i := range rows {
			if rows[i].AssignmentID == assignmentID {
				f.assignments[id][i].QueueIndex = queueIndex
				f.assignments[id][i].Position = position
				return nil
			}
		}
	}
	return errors.New("assignment not found")
}

func (f *fakeStore) UpdateAssignmentState(_ context.Context, _ string, assignmentID uuid.UUID, state string) error {
	for id, rows := range f.assignments {
		for i := range rows {
			if rows[i].AssignmentID == assignmentID {
				f.assignments[id][i].State = state
				return nil
			}
		}
	}
	return errors.New("assignment not found")
}

func (f *fakeStore) GetTenantQueueCount(_ context.Context, _ string) (int, error) {
	if f.queueCountErr != nil {
		return 0, f.queueCountErr
	}
	return f.queueCount, nil
}

type fakeRecordStore struct {
	tables map[string][]recordstore.Record
	schema []string
	nextID int

	createErrTable string
	createCalls    map[string]int
}

func newFakeRecordStore() *fakeRecordStore {
	return &fakeRecordStore{
		tables:      map[string][]recordstore.Record{},
		createCalls: map[string]int{},
	}
}

func (f *fakeRecordStore) ListRecords(_ context.Context, _ string, table string) ([]recordstore.Record, error) {
	return f.tables[table], nil
}

func (f *fakeRecordStore) CreateRecords(_ context.Context, _ string, table string, records []recordstore.Record) (int, error) {
	f.createCalls[table]++
	if table == f.createErrTable {
		return 0, recordstore.ErrUnavailable
	}
	for _, rec := range records {
		f.nextID++
		rec.ID = fmt.Sprintf("rec%04d", f.nextID)
		f.tables[table] = append(f.tables[table], rec)
	}
	return len(records), nil
}

func (f *fakeRecordStore) UpdateRecord(_ context.Context, _ string, table, recordID string, fields map[string]any) error {
	for i, rec := range f.tables[table] {
		if rec.ID == recordID {
			for k, v := range fields {
				f.tables[table][i].Fields[k] = v
			}
			return nil
		}
	}
	return errors.New("record not found")
}

func (f *fakeRecordStore) DeleteRecords(_ context.Context, _ string, table string, ids []string) ([]string, error) {
	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}
	var kept []recordstore.Record
	var deleted []string
	for _, rec := range f.tables[table] {
		if _, ok := drop[rec.ID]; ok {
			deleted = append(deleted, rec.ID)
			continue
		}
		kept = append(kept, rec)
	}
	f.tables[table] = kept
	return deleted, nil
}

func (f *fakeRecordStore) ListTables(_ context.Context, _ string) ([]string, error) {
	return f.schema, nil
}

func testService(st *fakeStore, rs *fakeRecordStore, queues, perQueue int) *Service {
	cfg := &config.Config{}
	cfg.Pipeline.QueueCountDefault = queues
	cfg.Pipeline.ProfilesPerQueueDefault = perQueue
	return NewService(cfg, st, rs, slog.New(slog.NewTextHandler(os.Stderr, nil)))
}

const tenant = "app12345678"

func TestQueueCountDiscoveryChain(t *testing.T) {
	st := newFakePipelineStore()
	rs := newFakeRecordStore()
	svc := testService(st, rs, 0, 180)

	// nothing anywhere: hardcoded fallback
	if n := svc.QueueCount(t.Context(), tenant); n != 80 {
		t.Errorf("fallback = %d, want 80", n)
	}

	// config default beats the fallback
	svc.cfg.Pipeline.QueueCountDefault = 40
	if n := svc.QueueCount(t.Context(), tenant); n != 40 {
		t.Errorf("config default = %d, want 40", n)
	}

	// schema count beats config; only queue tables count
	rs.schema = []string{"WorkQueue_01", "WorkQueue_02", "WorkQueue_03", "Notes"}
	if n := svc.QueueCount(t.Context(), tenant); n != 3 {
		t.Errorf("schema count = %d, want 3", n)
	}

	// tenant settings beat everything
	st.queueCountErr = nil
	st.queueCount = 12
	if n := svc.QueueCount(t.Context(), tenant); n != 12 {
		t.Errorf("settings = %d, want 12", n)
	}
}

func TestDailySelectRequestsQueuesTimesPerQueue(t *testing.T) {
	st := newFakePipelineStore()
	st.poolSize = 1000
	svc := testService(st, newFakeRecordStore(), 2, 3)

	res, err := svc.DailySelect(t.Context(), tenant, time.Date(2026, 8, 24, 9, 30, 0, 0, time.UTC), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Requested != 6 || res.Selected != 6 {
		t.Errorf("requested/selected = %d/%d, want 6/6", res.Requested, res.Selected)
	}
	if res.CampaignDate != "2026-08-24" {
		t.Errorf("campaign date = %q", res.CampaignDate)
	}
}

func TestDailySelectShortPool(t *testing.T) {
	st := newFakePipelineStore()
	st.poolSize = 4
	svc := testService(st, newFakeRecordStore(), 2, 3)

	res, err := svc.DailySelect(t.Context(), tenant, time.Time{}, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Requested != 6 || res.Selected != 4 {
		t.Errorf("requested/selected = %d/%d, want 6/4", res.Requested, res.Selected)
	}
}

func TestDailySelectEmptyPool(t *testing.T) {
	st := newFakePipelineStore()
	svc := testService(st, newFakeRecordStore(), 2, 3)

	_, err := svc.DailySelect(t.Context(), tenant, time.Time{}, 0)
	if !errors.Is(err, store.ErrNoProfilesAvailable) {
		t.Fatalf("err = %v, want ErrNoProfilesAvailable", err)
	}
}

func TestDistributePacksQueuesInOrder(t *testing.T) {
	st := newFakePipelineStore()
	svc := testService(st, newFakeRecordStore(), 2, 3)

	// Seed 7 placeholders directly, one more than the 2x3 slots, so the
	// distributor sees an oversized pool.
	campaignID := uuid.New()
	st.campaigns[campaignID] = &store.Campaign{
		CampaignID:    campaignID,
		TenantID:      tenant,
		TotalAssigned: 7,
	}
	for i := 0; i < 7; i++ {
		st.assignments[campaignID] = append(st.assignments[campaignID], store.Assignment{
			AssignmentID: uuid.New(),
			TenantID:     tenant,
			CampaignID:   campaignID,
			ProfileID:    fmt.Sprintf("p%03d", i),
			Username:     fmt.Sprintf("user%03d", i),
			State:        store.StatePending,
		})
	}

	res, err := svc.Distribute(t.Context(), tenant, campaignID, 0)
	if err != nil {
		t.Fatalf("distribute: %v", err)
	}
	if res.TotalDistributed != 6 || res.QueuesUsed != 2 || res.TotalAvailable != 7 {
		t.Fatalf("result = %+v", res)
	}

	// the overflow profile stays behind as a placeholder
	leftovers, _ := st.ListPlaceholderAssignments(t.Context(), tenant, campaignID)
	if len(leftovers) != 1 {
		t.Fatalf("placeholders left = %d, want 1", len(leftovers))
	}

	packed, _ := st.ListPackedAssignments(t.Context(), tenant, campaignID)
	seen := map[[2]int]bool{}
	for _, a := range packed {
		if a.QueueIndex < 1 || a.QueueIndex > 2 || a.Position < 1 || a.Position > 3 {
			t.Errorf("slot out of range: queue=%d position=%d", a.QueueIndex, a.Position)
		}
		key := [2]int{a.QueueIndex, a.Position}
		if seen[key] {
			t.Errorf("duplicate slot %v", key)
		}
		seen[key] = true
	}
	if len(seen) != 6 {
		t.Errorf("filled %d distinct slots, want 6", len(seen))
	}
}

func TestDistributePartialFillUsesEarlyQueues(t *testing.T) {
	st := newFakePipelineStore()
	st.poolSize = 4
	svc := testService(st, newFakeRecordStore(), 3, 3)

	sel, _ := svc.DailySelect(t.Context(), tenant, time.Time{}, 0)
	res, err := svc.Distribute(t.Context(), tenant, sel.CampaignID, 0)
	if err != nil {
		t.Fatalf("distribute: %v", err)
	}
	// 4 profiles fill queue 1 fully and queue 2 partially
	if res.TotalDistributed != 4 || res.QueuesUsed != 2 {
		t.Fatalf("result = %+v", res)
	}
}

func TestDistributeTwiceIsRejected(t *testing.T) {
	st := newFakePipelineStore()
	st.poolSize = 6
	svc := testService(st, newFakeRecordStore(), 2, 3)

	sel, _ := svc.DailySelect(t.Context(), tenant, time.Time{}, 0)
	if _, err := svc.Distribute(t.Context(), tenant, sel.CampaignID, 0); err != nil {
		t.Fatalf("first distribute: %v", err)
	}
	if _, err := svc.Distribute(t.Context(), tenant, sel.CampaignID, 0); !errors.Is(err, ErrAlreadyDistributed) {
		t.Fatalf("second distribute err = %v, want ErrAlreadyDistributed", err)
	}
}

func TestSyncCampaignPushesEveryQueue(t *testing.T) {
	st := newFakePipelineStore()
	st.poolSize = 6
	rs := newFakeRecordStore()
	st.queueCountErr = nil
	st.queueCount = 2
	svc := testService(st, rs, 2, 3)

	sel, _ := svc.DailySelect(t.Context(), tenant, time.Time{}, 0)
	if _, err := svc.Distribute(t.Context(), tenant, sel.CampaignID, 0); err != nil {
		t.Fatalf("distribute: %v", err)
	}

	res, err := svc.SyncCampaign(t.Context(), tenant, sel.CampaignID)
	if err != nil {
		t.Fatalf("sync: %v", err)
	}
	if !res.Synced || res.QueuesSynced != 2 || res.RecordsSynced != 6 {
		t.Fatalf("result = %+v", res)
	}
	if len(rs.tables["WorkQueue_01"]) != 3 || len(rs.tables["WorkQueue_02"]) != 3 {
		t.Fatalf("table sizes = %d/%d", len(rs.tables["WorkQueue_01"]), len(rs.tables["WorkQueue_02"]))
	}
	rec := rs.tables["WorkQueue_01"][0]
	for _, field := range []string{"profile_id", "username", "display_name", "position", "campaign_date", "state"} {
		if _, ok := rec.Fields[field]; !ok {
			t.Errorf("pushed record missing field %q", field)
		}
	}
	if !st.campaigns[sel.CampaignID].Synced {
		t.Error("campaign not flagged synced")
	}
}

func TestSyncCampaignIsIdempotent(t *testing.T) {
	st := newFakePipelineStore()
	st.poolSize = 6
	rs := newFakeRecordStore()
	st.queueCountErr = nil
	st.queueCount = 2
	svc := testService(st, rs, 2, 3)

	sel, _ := svc.DailySelect(t.Context(), tenant, time.Time{}, 0)
	svc.Distribute(t.Context(), tenant, sel.CampaignID, 0)

	if _, err := svc.SyncCampaign(t.Context(), tenant, sel.CampaignID); err != nil {
		t.Fatalf("first sync: %v", err)
	}
	if _, err := svc.SyncCampaign(t.Context(), tenant, sel.CampaignID); err != nil {
		t.Fatalf("second sync: %v", err)
	}
	// the retry cleared its own rows first, no duplicates
	if n := len(rs.tables["WorkQueue_01"]); n != 3 {
		t.Fatalf("table size after resync = %d, want 3", n)
	}
}

func TestSyncCampaignPartialFailure(t *testing.T) {
	st := newFakePipelineStore()
	st.poolSize = 6
	rs := newFakeRecordStore()
	rs.createErrTable = "WorkQueue_01"
	st.queueCountErr = nil
	st.queueCount = 2
	svc := testService(st, rs, 2, 3)

	sel, _ := svc.DailySelect(t.Context(), tenant, time.Time{}, 0)
	svc.Distribute(t.Context(), tenant, sel.CampaignID, 0)

	res, err := svc.SyncCampaign(t.Context(), tenant, sel.CampaignID)
	if err != nil {
		t.Fatalf("sync should not fail outright: %v", err)
	}
	if res.Synced || res.QueuesSynced != 1 {
		t.Fatalf("result = %+v, want synced=false queues_synced=1", res)
	}
	// the healthy queue still got its rows
	if len(rs.tables["WorkQueue_02"]) != 3 {
		t.Errorf("healthy queue rows = %d", len(rs.tables["WorkQueue_02"]))
	}
	if st.campaigns[sel.CampaignID].Synced {
		t.Error("campaign must not be flagged synced")
	}
}

func TestSyncCampaignBeforeDistribution(t *testing.T) {
	st := newFakePipelineStore()
	st.poolSize = 6
	svc := testService(st, newFakeRecordStore(), 2, 3)

	sel, _ := svc.DailySelect(t.Context(), tenant, time.Time{}, 0)
	if _, err := svc.SyncCampaign(t.Context(), tenant, sel.CampaignID); !errors.Is(err, ErrNotDistributed) {
		t.Fatalf("err = %v, want ErrNotDistributed", err)
	}
}

func TestSyncStatusesPullsChangedStatesOnly(t *testing.T) {
	st := newFakePipelineStore()
	st.poolSize = 6
	rs := newFakeRecordStore()
	st.queueCountErr = nil
	st.queueCount = 2
	svc := testService(st, rs, 2, 3)

	sel, _ := svc.DailySelect(t.Context(), tenant, time.Time{}, 0)
	svc.Distribute(t.Context(), tenant, sel.CampaignID, 0)
	svc.SyncCampaign(t.Context(), tenant, sel.CampaignID)

	// queue workers flip two records to followed
	rs.tables["WorkQueue_01"][0].Fields["state"] = store.StateFollowed
	rs.tables["WorkQueue_01"][1].Fields["state"] = store.StateFollowed

	res, err := svc.SyncStatuses(t.Context(), tenant)
	if err != nil {
		t.Fatalf("pull: %v", err)
	}
	if res.Updated != 2 || res.RecordsMatched != 6 {
		t.Fatalf("result = %+v, want updated=2 matched=6", res)
	}

	// a second pull finds nothing to change
	res, err = svc.SyncStatuses(t.Context(), tenant)
	if err != nil {
		t.Fatalf("second pull: %v", err)
	}
	if res.Updated != 0 {
		t.Fatalf("second pull updated = %d, want 0", res.Updated)
	}

	followed := 0
	packed, _ := st.ListPackedAssignments(t.Context(), tenant, sel.CampaignID)
	for _, a := range packed {
		if a.State == store.StateFollowed {
			followed++
		}
	}
	if followed != 2 {
		t.Fatalf("followed assignments = %d, want 2", followed)
	}
}

type fakeCleaner struct {
	called bool
	err    error
}

func (f *fakeCleaner) PurgeOldData(_ context.Context, _ string) (lifecycle.PurgeStats, error) {
	f.called = true
	return lifecycle.PurgeStats{RawProfiles: 1}, f.err
}

func TestRunDailyHappyPath(t *testing.T) {
	st := newFakePipelineStore()
	st.poolSize = 6
	rs := newFakeRecordStore()
	st.queueCountErr = nil
	st.queueCount = 2
	svc := testService(st, rs, 2, 3)
	cleaner := &fakeCleaner{}

	res := svc.RunDaily(t.Context(), tenant, time.Time{}, 0, cleaner)
	for name, step := range map[string]StepResult{
		"selection":    res.Selection,
		"distribution": res.Distribution,
		"sync":         res.Sync,
		"cleanup":      res.Cleanup,
	} {
		if step.Status != "ok" {
			t.Errorf("%s = %+v, want ok", name, step)
		}
	}
	if !cleaner.called {
		t.Error("cleaner not invoked")
	}
}

func TestRunDailySkipsDependentsButStillCleans(t *testing.T) {
	st := newFakePipelineStore() // empty pool, selection fails
	svc := testService(st, newFakeRecordStore(), 2, 3)
	cleaner := &fakeCleaner{}

	res := svc.RunDaily(t.Context(), tenant, time.Time{}, 0, cleaner)
	if res.Selection.Status != "failed" {
		t.Errorf("selection = %+v", res.Selection)
	}
	if res.Distribution.Status != "skipped" || res.Sync.Status != "skipped" {
		t.Errorf("dependents = %+v / %+v, want skipped", res.Distribution, res.Sync)
	}
	if res.Cleanup.Status != "ok" || !cleaner.called {
		t.Errorf("cleanup = %+v, called=%v", res.Cleanup, cleaner.called)
	}
}

func TestRunDailyWithoutCleaner(t *testing.T) {
	st := newFakePipelineStore()
	st.poolSize = 6
	st.queueCountErr = nil
	st.queueCount = 2
	svc := testService(st, newFakeRecordStore(), 2, 3)

	res := svc.RunDaily(t.Context(), tenant, time.Time{}, 0, nil)
	if res.Cleanup.Status != "skipped" {
		t.Errorf("cleanup = %+v, want skipped", res.Cleanup)
	}
}
