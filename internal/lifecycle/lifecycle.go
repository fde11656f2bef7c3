package lifecycle

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"outreach/internal/config"
	"outreach/internal/metrics"
	"outreach/internal/recordstore"
	"outreach/internal/store"
)

// Store is the slice of the persistence layer the sweeps use.
type Store interface {
	ListAssignmentsForUnfollow(ctx context.Context, tenantID string, cutoff time.Time) ([]store.Assignment, error)
	ListCompletedAssignmentsBefore(ctx context.Context, tenantID string, cutoff time.Time) ([]store.Assignment, error)
	UpdateAssignmentState(ctx context.Context, tenantID string, assignmentID uuid.UUID, state string) error
	DeleteAssignment(ctx context.Context, tenantID string, assignmentID uuid.UUID) error
	DeleteRawProfilesBefore(ctx context.Context, tenantID string, cutoff time.Time) (int64, error)
	DeleteCampaignsBefore(ctx context.Context, tenantID string, cutoff time.Time) (int64, error)
	DeleteAssignmentsBefore(ctx context.Context, tenantID string, cutoff time.Time) (int64, error)
	ListTenantIDs(ctx context.Context) ([]string, error)
}

// RecordStore is the slice of the external record-store client the
// sweeps use to keep queue tables in step with internal state.
type RecordStore interface {
	ListRecords(ctx context.Context, baseID, table string) ([]recordstore.Record, error)
	UpdateRecord(ctx context.Context, baseID, table, recordID string, fields map[string]any) error
	DeleteRecords(ctx context.Context, baseID, table string, recordIDs []string) ([]string, error)
}

// Engine runs the assignment aging state machine and retention purges.
type Engine struct {
	store   Store
	records RecordStore
	cfg     *config.Config
	logger  *slog.Logger

	now func() time.Time
}

func NewEngine(cfg *config.Config, st Store, rs RecordStore, logger *slog.Logger) *Engine {
	return &Engine{
		store:   st,
		records: rs,
		cfg:     cfg,
		logger:  logger,
		now:     time.Now,
	}
}

func (e *Engine) unfollowAfter() time.Duration {
	days := e.cfg.Lifecycle.UnfollowAfterDays
	if days <= 0 {
		days = 7
	}
	return time.Duration(days) * 24 * time.Hour
}

func (e *Engine) deleteAfter() time.Duration {
	hours := e.cfg.Lifecycle.DeleteAfterHours
	if hours <= 0 {
		hours = 24
	}
	return time.Duration(hours) * time.Hour
}

func (e *Engine) purgeAfter() time.Duration {
	days := e.cfg.Lifecycle.PurgeAfterDays
	if days <= 0 {
		days = 8
	}
	return time.Duration(days) * 24 * time.Hour
}

// UnfollowStats reports one aging sweep.
type UnfollowStats struct {
	Marked     int `json:"marked"`
	Pushed     int `json:"pushed"`
	PushFailed int `json:"push_failed"`
}

// MarkUnfollowDue flips pending and followed assignments older than the
// unfollow delay to the unfollow state, then mirrors the new state into
// each queue table. External failures are counted, never fatal.
func (e *Engine) MarkUnfollowDue(ctx context.Context, tenantID string) (UnfollowStats, error) {
	var stats UnfollowStats
	cutoff := e.now().UTC().Add(-e.unfollowAfter())

	due, err := e.store.ListAssignmentsForUnfollow(ctx, tenantID, cutoff)
	if err != nil {
		return stats, err
	}

	marked := make([]store.Assignment, 0, len(due))
	for _, a := range due {
		if err := e.store.UpdateAssignmentState(ctx, tenantID, a.AssignmentID, store.StateUnfollow); err != nil {
			e.logger.Error("mark unfollow failed",
				"tenant_id", tenantID, "assignment_id", a.AssignmentID, "error", err)
			continue
		}
		stats.Marked++
		marked = append(marked, a)
	}

	groups := groupByQueue(marked)
	for _, q := range sortedQueues(groups) {
		if q == 0 {
			// Placeholders have no external record to update.
			continue
		}
		rows := groups[q]
		table := recordstore.QueueTable(q)
		records, err := e.records.ListRecords(ctx, tenantID, table)
		if err != nil {
			stats.PushFailed += len(rows)
			e.logger.Warn("unfollow push: list table failed",
				"tenant_id", tenantID, "table", table, "error", err)
			continue
		}
		byProfile := indexByProfile(records)

		for _, a := range rows {
			rec, ok := byProfile[a.ProfileID]
			if !ok {
				stats.PushFailed++
				continue
			}
			if err := e.records.UpdateRecord(ctx, tenantID, table, rec.ID,
				map[string]any{"state": store.StateUnfollow}); err != nil {
				stats.PushFailed++
				e.logger.Warn("unfollow push failed",
					"tenant_id", tenantID, "table", table, "profile_id", a.ProfileID, "error", err)
				continue
			}
			stats.Pushed++
		}
	}

	metrics.RecordLifecycle("mark_unfollow", int64(stats.Marked))
	return stats, nil
}

// DeleteStats reports one delete-completed sweep.
type DeleteStats struct {
	Eligible        int `json:"eligible"`
	ExternalDeleted int `json:"external_deleted"`
	Deleted         int `json:"deleted"`
	Skipped         int `json:"skipped"`
}

// DeleteCompletedAfterDelay removes assignments that have sat in the
// completed state past the delay: external record first, internal row
// only once the external side is gone. Rows whose external delete fails
// are skipped and retried on the next sweep.
func (e *Engine) DeleteCompletedAfterDelay(ctx context.Context, tenantID string) (DeleteStats, error) {
	var stats DeleteStats
	cutoff := e.now().UTC().Add(-e.deleteAfter())

	eligible, err := e.store.ListCompletedAssignmentsBefore(ctx, tenantID, cutoff)
	if err != nil {
		return stats, err
	}
	stats.Eligible = len(eligible)

	groups := groupByQueue(eligible)
	for _, q := range sortedQueues(groups) {
		rows := groups[q]
		deletable := rows

		if q > 0 {
			table := recordstore.QueueTable(q)
			records, err := e.records.ListRecords(ctx, tenantID, table)
			if err != nil {
				stats.Skipped += len(rows)
				e.logger.Warn("delete sweep: list table failed",
					"tenant_id", tenantID, "table", table, "error", err)
				continue
			}
			byProfile := indexByProfile(records)

			var recordIDs []string
			rowByRecord := make(map[string]store.Assignment)
			deletable = nil
			for _, a := range rows {
				rec, ok := byProfile[a.ProfileID]
				if !ok {
					// No external record left; safe to drop internally.
					deletable = append(deletable, a)
					continue
				}
				recordIDs = append(recordIDs, rec.ID)
				rowByRecord[rec.ID] = a
			}

			deleted, err := e.records.DeleteRecords(ctx, tenantID, table, recordIDs)
			stats.ExternalDeleted += len(deleted)
			for _, id := range deleted {
				deletable = append(deletable, rowByRecord[id])
			}
			if err != nil {
				stats.Skipped += len(recordIDs) - len(deleted)
				e.logger.Warn("delete sweep: external delete failed",
					"tenant_id", tenantID, "table", table, "error", err)
			}
		}

		for _, a := range deletable {
			if err := e.store.DeleteAssignment(ctx, tenantID, a.AssignmentID); err != nil {
				stats.Skipped++
				e.logger.Error("delete assignment failed",
					"tenant_id", tenantID, "assignment_id", a.AssignmentID, "error", err)
				continue
			}
			stats.Deleted++
		}
	}

	metrics.RecordLifecycle("delete_completed", int64(stats.Deleted))
	return stats, nil
}

// PurgeStats reports one retention purge.
type PurgeStats struct {
	RawProfiles int64 `json:"raw_profiles"`
	Campaigns   int64 `json:"campaigns"`
	Assignments int64 `json:"assignments"`
}

// PurgeOldData deletes raw profiles, campaigns, and assignments older
// than the retention window. The deduplicated global profile pool is
// never purged.
func (e *Engine) PurgeOldData(ctx context.Context, tenantID string) (PurgeStats, error) {
	var stats PurgeStats
	cutoff := e.now().UTC().Add(-e.purgeAfter())

	var err error
	if stats.RawProfiles, err = e.store.DeleteRawProfilesBefore(ctx, tenantID, cutoff); err != nil {
		return stats, err
	}
	if stats.Campaigns, err = e.store.DeleteCampaignsBefore(ctx, tenantID, cutoff); err != nil {
		return stats, err
	}
	if stats.Assignments, err = e.store.DeleteAssignmentsBefore(ctx, tenantID, cutoff); err != nil {
		return stats, err
	}

	metrics.RecordLifecycle("purge", stats.RawProfiles+stats.Campaigns+stats.Assignments)
	e.logger.Info("retention purge",
		"tenant_id", tenantID,
		"raw_profiles", stats.RawProfiles,
		"campaigns", stats.Campaigns,
		"assignments", stats.Assignments)
	return stats, nil
}

// RunSweeps runs every sweep for every known tenant. Per-tenant errors
// are logged and do not stop the loop.
func (e *Engine) RunSweeps(ctx context.Context) {
	tenants, err := e.store.ListTenantIDs(ctx)
	if err != nil {
		e.logger.Error("list tenants for sweeps failed", "error", err)
		return
	}

	for _, tenantID := range tenants {
		if _, err := e.MarkUnfollowDue(ctx, tenantID); err != nil {
			e.logger.Error("unfollow sweep failed", "tenant_id", tenantID, "error", err)
		}
		if _, err := e.DeleteCompletedAfterDelay(ctx, tenantID); err != nil {
			e.logger.Error("delete sweep failed", "tenant_id", tenantID, "error", err)
		}
		if _, err := e.PurgeOldData(ctx, tenantID); err != nil {
			e.logger.Error("purge sweep failed", "tenant_id", tenantID, "error", err)
		}
	}
}

func groupByQueue(rows []store.Assignment) map[int][]store.Assignment {
	groups := make(map[int][]store.Assignment)
	for _, a := range rows {
		groups[a.QueueIndex] = append(groups[a.QueueIndex], a)
	}
	return groups
}

func indexByProfile(records []recordstore.Record) map[string]recordstore.Record {
	idx := make(map[string]recordstore.Record, len(records))
	for _, rec := range records {
		pid, _ := rec.Fields["profile_id"].(string)
		if pid != "" {
			idx[pid] = rec
		}
	}
	return idx
}

func sortedQueues(groups map[int][]store.Assignment) []int {
	out := make([]int, 0, len(groups))
	for q := range groups {
		out = append(out, q)
	}
	sort.Ints(out)
	return out
}
