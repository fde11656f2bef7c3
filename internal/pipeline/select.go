package pipeline

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// SelectionResult reports one daily-selection run.
type SelectionResult struct {
	CampaignID   uuid.UUID `json:"campaign_id"`
	CampaignDate string    `json:"campaign_date"`
	Queues       int       `json:"queues"`
	PerQueue     int       `json:"per_queue"`
	Requested    int       `json:"requested"`
	Selected     int       `json:"selected"`
}

// DailySelect creates today's campaign and reserves up to queues x
// perQueue unused profiles as placeholder assignments. An empty pool
// surfaces store.ErrNoProfilesAvailable with no campaign left behind.
func (s *Service) DailySelect(ctx context.Context, tenantID string, date time.Time, perQueue int) (SelectionResult, error) {
	if date.IsZero() {
		date = time.Now().UTC()
	}
	date = date.Truncate(24 * time.Hour)

	perQueue = s.profilesPerQueue(perQueue)
	queues := s.QueueCount(ctx, tenantID)
	targets := queues * perQueue

	campaignID := uuid.New()
	assignments, err := s.store.CreateCampaignWithSelection(ctx, tenantID, campaignID, date, targets)
	if err != nil {
		return SelectionResult{}, err
	}

	s.logger.Info("daily selection",
		"tenant_id", tenantID,
		"campaign_id", campaignID,
		"requested", targets,
		"selected", len(assignments))

	return SelectionResult{
		CampaignID:   campaignID,
		CampaignDate: date.Format("2006-01-02"),
		Queues:       queues,
		PerQueue:     perQueue,
		Requested:    targets,
		Selected:     len(assignments),
	}, nil
}
