package pipeline

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"outreach/internal/metrics"
	"outreach/internal/recordstore"
	"outreach/internal/store"
)

// SyncResult reports one outbound sync run.
type SyncResult struct {
	CampaignID    uuid.UUID `json:"campaign_id"`
	QueuesSynced  int       `json:"queues_synced"`
	QueuesTotal   int       `json:"queues_total"`
	RecordsSynced int       `json:"records_synced"`
	Synced        bool      `json:"campaign_status"`
}

// SyncCampaign mirrors a distributed campaign into the external record
// store, one table per queue. Each queue's existing records for these
// profiles are cleared first so the push is idempotent. A queue that
// keeps failing after retries is skipped and the rest continue; the
// campaign only counts as synced when every queue mirrored fully and at
// least one record was pushed.
func (s *Service) SyncCampaign(ctx context.Context, tenantID string, campaignID uuid.UUID) (SyncResult, error) {
	campaign, err := s.store.GetCampaign(ctx, tenantID, campaignID)
	if err != nil {
		return SyncResult{}, err
	}

	packed, err := s.store.ListPackedAssignments(ctx, tenantID, campaignID)
	if err != nil {
		return SyncResult{}, err
	}
	if len(packed) == 0 {
		return SyncResult{}, ErrNotDistributed
	}

	groups := make(map[int][]store.Assignment)
	for _, a := range packed {
		groups[a.QueueIndex] = append(groups[a.QueueIndex], a)
	}
	queueIndexes := make([]int, 0, len(groups))
	for q := range groups {
		queueIndexes = append(queueIndexes, q)
	}
	sort.Ints(queueIndexes)

	queuesTotal := s.QueueCount(ctx, tenantID)
	campaignDate := campaign.CampaignDate.Format("2006-01-02")

	queuesSynced := 0
	recordsSynced := 0
	for _, q := range queueIndexes {
		table := recordstore.QueueTable(q)
		rows := groups[q]

		if err := s.clearQueueRecords(ctx, tenantID, table, rows); err != nil {
			s.logger.Warn("clear queue before push failed",
				"tenant_id", tenantID, "table", table, "error", err)
			continue
		}

		records := make([]recordstore.Record, len(rows))
		for i, a := range rows {
			records[i] = recordstore.Record{Fields: map[string]any{
				"profile_id":    a.ProfileID,
				"username":      a.Username,
				"display_name":  a.DisplayName,
				"position":      a.Position,
				"campaign_date": campaignDate,
				"state":         a.State,
			}}
		}

		n, err := s.records.CreateRecords(ctx, tenantID, table, records)
		recordsSynced += n
		if err != nil {
			s.logger.Warn("queue push failed, skipping remainder of table",
				"tenant_id", tenantID, "table", table, "pushed", n, "error", err)
			continue
		}
		queuesSynced++
	}

	synced := queuesSynced == queuesTotal && recordsSynced > 0
	if err := s.store.SetCampaignSynced(ctx, tenantID, campaignID, synced); err != nil {
		return SyncResult{}, err
	}

	metrics.RecordSync("push", recordsSynced)
	s.logger.Info("campaign sync",
		"tenant_id", tenantID,
		"campaign_id", campaignID,
		"queues_synced", queuesSynced,
		"queues_total", queuesTotal,
		"records_synced", recordsSynced,
		"synced", synced)

	return SyncResult{
		CampaignID:    campaignID,
		QueuesSynced:  queuesSynced,
		QueuesTotal:   queuesTotal,
		RecordsSynced: recordsSynced,
		Synced:        synced,
	}, nil
}

// clearQueueRecords deletes a queue table's records for the profiles
// about to be pushed, so a retried sync cannot duplicate them.
func (s *Service) clearQueueRecords(ctx context.Context, tenantID, table string, rows []store.Assignment) error {
	existing, err := s.records.ListRecords(ctx, tenantID, table)
	if err != nil {
		return err
	}
	if len(existing) == 0 {
		return nil
	}

	pushing := make(map[string]struct{}, len(rows))
	for _, a := range rows {
		pushing[a.ProfileID] = struct{}{}
	}

	var stale []string
	for _, rec := range existing {
		pid, _ := rec.Fields["profile_id"].(string)
		if _, ok := pushing[pid]; ok {
			stale = append(stale, rec.ID)
		}
	}
	if len(stale) == 0 {
		return nil
	}

	_, err = s.records.DeleteRecords(ctx, tenantID, table, stale)
	return err
}

// PullResult reports one inbound status sync.
type PullResult struct {
	QueuesChecked  int `json:"queues_checked"`
	RecordsMatched int `json:"records_matched"`
	Updated        int `json:"updated"`
}

// SyncStatuses pulls every queue table and copies changed states back
// onto the matching assignments, keyed by (profile, queue). Unchanged
// rows are untouched, so the pull is idempotent.
func (s *Service) SyncStatuses(ctx context.Context, tenantID string) (PullResult, error) {
	active, err := s.store.ListActiveAssignments(ctx, tenantID)
	if err != nil {
		return PullResult{}, err
	}

	type slotKey struct {
		profileID  string
		queueIndex int
	}
	index := make(map[slotKey]store.Assignment, len(active))
	for _, a := range active {
		index[slotKey{a.ProfileID, a.QueueIndex}] = a
	}

	queues := s.QueueCount(ctx, tenantID)
	var res PullResult
	for q := 1; q <= queues; q++ {
		records, err := s.records.ListRecords(ctx, tenantID, recordstore.QueueTable(q))
		if err != nil {
			s.logger.Warn("status pull failed for table",
				"tenant_id", tenantID, "table", recordstore.QueueTable(q), "error", err)
			continue
		}
		res.QueuesChecked++

		for _, rec := range records {
			pid, _ := rec.Fields["profile_id"].(string)
			state, _ := rec.Fields["state"].(string)
			if pid == "" || state == "" {
				continue
			}
			a, ok := index[slotKey{pid, q}]
			if !ok {
				continue
			}
			res.RecordsMatched++
			if a.State == state {
				continue
			}
			if err := s.store.UpdateAssignmentState(ctx, tenantID, a.AssignmentID, state); err != nil {
				s.logger.Error("apply pulled state failed",
					"tenant_id", tenantID, "assignment_id", a.AssignmentID, "error", err)
				continue
			}
			res.Updated++
		}
	}

	metrics.RecordSync("pull", res.Updated)
	return res, nil
}
