package pipeline

import (
	"context"
	"errors"
	"time"

	"outreach/internal/lifecycle"
	"outreach/internal/store"
)

// Cleaner runs the retention sweep at the end of the daily workflow.
type Cleaner interface {
	PurgeOldData(ctx context.Context, tenantID string) (lifecycle.PurgeStats, error)
}

// StepResult is one step of the daily workflow summary.
type StepResult struct {
	Status string `json:"status"` // ok | failed | skipped
	Error  string `json:"error,omitempty"`
	Detail any    `json:"detail,omitempty"`
}

// RunDailyResult is the per-step summary of one full workflow run.
type RunDailyResult struct {
	Selection    StepResult `json:"selection"`
	Distribution StepResult `json:"distribution"`
	Sync         StepResult `json:"sync"`
	Cleanup      StepResult `json:"cleanup"`
}

// RunDaily chains selection, distribution, and sync, then always runs
// cleanup. A failed step skips its dependents but never aborts the
// independent steps after it.
func (s *Service) RunDaily(ctx context.Context, tenantID string, date time.Time, perQueue int, cleaner Cleaner) RunDailyResult {
	var res RunDailyResult

	selection, err := s.DailySelect(ctx, tenantID, date, perQueue)
	if err != nil {
		res.Selection = StepResult{Status: "failed", Error: err.Error()}
		res.Distribution = StepResult{Status: "skipped"}
		res.Sync = StepResult{Status: "skipped"}
		if errors.Is(err, store.ErrNoProfilesAvailable) {
			s.logger.Info("daily workflow: nothing to select", "tenant_id", tenantID)
		} else {
			s.logger.Error("daily workflow: selection failed", "tenant_id", tenantID, "error", err)
		}
	} else {
		res.Selection = StepResult{Status: "ok", Detail: selection}

		distribution, err := s.Distribute(ctx, tenantID, selection.CampaignID, perQueue)
		if err != nil {
			res.Distribution = StepResult{Status: "failed", Error: err.Error()}
			res.Sync = StepResult{Status: "skipped"}
			s.logger.Error("daily workflow: distribution failed",
				"tenant_id", tenantID, "campaign_id", selection.CampaignID, "error", err)
		} else {
			res.Distribution = StepResult{Status: "ok", Detail: distribution}

			sync, err := s.SyncCampaign(ctx, tenantID, selection.CampaignID)
			if err != nil {
				res.Sync = StepResult{Status: "failed", Error: err.Error()}
				s.logger.Error("daily workflow: sync failed",
					"tenant_id", tenantID, "campaign_id", selection.CampaignID, "error", err)
			} else {
				res.Sync = StepResult{Status: "ok", Detail: sync}
			}
		}
	}

	// Cleanup is independent of the campaign steps.
	if cleaner == nil {
		res.Cleanup = StepResult{Status: "skipped"}
		return res
	}
	purged, err := cleaner.PurgeOldData(ctx, tenantID)
	if err != nil {
		res.Cleanup = StepResult{Status: "failed", Error: err.Error()}
		return res
	}
	res.Cleanup = StepResult{Status: "ok", Detail: purged}
	return res
}
