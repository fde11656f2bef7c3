package pipeline

import (
	"context"
	"math/rand/v2"

	"github.com/google/uuid"

	"outreach/internal/store"
)

// DistributionResult reports one distribution pass.
type DistributionResult struct {
	CampaignID       uuid.UUID `json:"campaign_id"`
	QueuesUsed       int       `json:"queues_used"`
	TotalDistributed int       `json:"total_distributed"`
	TotalAvailable   int       `json:"total_available"`
}

// Distribute shuffles a campaign's placeholder assignments and packs
// them into queue slots: queue 1 positions 1..perQueue, then queue 2,
// and so on. Profiles beyond queues x perQueue stay at queue 0. Running
// it again on a distributed campaign is an error, not a reshuffle.
func (s *Service) Distribute(ctx context.Context, tenantID string, campaignID uuid.UUID, perQueue int) (DistributionResult, error) {
	campaign, err := s.store.GetCampaign(ctx, tenantID, campaignID)
	if err != nil {
		return DistributionResult{}, err
	}

	placeholders, err := s.store.ListPlaceholderAssignments(ctx, tenantID, campaignID)
	if err != nil {
		return DistributionResult{}, err
	}
	if len(placeholders) == 0 {
		if campaign.Distributed {
			return DistributionResult{}, ErrAlreadyDistributed
		}
		return DistributionResult{}, store.ErrNoProfilesAvailable
	}

	perQueue = s.profilesPerQueue(perQueue)
	queues := s.QueueCount(ctx, tenantID)

	rand.Shuffle(len(placeholders), func(i, j int) {
		placeholders[i], placeholders[j] = placeholders[j], placeholders[i]
	})

	q, p := 1, 1
	distributed := 0
	lastQueue := 0
	for _, a := range placeholders {
		if q > queues {
			break
		}
		if err := s.store.AssignSlot(ctx, tenantID, a.AssignmentID, q, p); err != nil {
			return DistributionResult{}, err
		}
		distributed++
		lastQueue = q
		p++
		if p > perQueue {
			p = 1
			q++
		}
	}

	if err := s.store.SetCampaignDistributed(ctx, tenantID, campaignID); err != nil {
		return DistributionResult{}, err
	}

	s.logger.Info("campaign distributed",
		"tenant_id", tenantID,
		"campaign_id", campaignID,
		"queues_used", lastQueue,
		"distributed", distributed,
		"available", len(placeholders))

	return DistributionResult{
		CampaignID:       campaignID,
		QueuesUsed:       lastQueue,
		TotalDistributed: distributed,
		TotalAvailable:   len(placeholders),
	}, nil
}
