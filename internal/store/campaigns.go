package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// CreateCampaignWithSelection runs daily selection in one transaction:
// insert the campaign row, pull up to targets unused profiles, mark them
// used, and create a placeholder assignment (queue 0, position 0) per
// profile. An empty pool rolls everything back and returns
// ErrNoProfilesAvailable.
func (s *Store) CreateCampaignWithSelection(ctx context.Context, tenantID string, campaignID uuid.UUID, date time.Time, targets int) ([]Assignment, error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO campaigns (campaign_id, tenant_id, campaign_date) VALUES ($1, $2, $3)",
		campaignID, tenantID, date); err != nil {
		return nil, fmt.Errorf("insert campaign: %w", err)
	}

	rows, err := tx.QueryContext(ctx,
		`SELECT profile_id, username, display_name
		 FROM global_profiles
		 WHERE tenant_id = $1 AND NOT used
		 ORDER BY created_at
		 LIMIT $2
		 FOR UPDATE`,
		tenantID, targets)
	if err != nil {
		return nil, fmt.Errorf("select unused: %w", err)
	}

	var selected []ProfileInput
	for rows.Next() {
		var p ProfileInput
		if err := rows.Scan(&p.ID, &p.Username, &p.DisplayName); err != nil {
			rows.Close()
			return nil, err
		}
		selected = append(selected, p)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(selected) == 0 {
		return nil, ErrNoProfilesAvailable
	}

	now := time.Now().UTC()
	assignments := make([]Assignment, 0, len(selected))
	ids := make([]string, 0, len(selected))
	for _, p := range selected {
		assignments = append(assignments, Assignment{
			AssignmentID: uuid.New(),
			CampaignID:   campaignID,
			TenantID:     tenantID,
			ProfileID:    p.ID,
			Username:     p.Username,
			DisplayName:  p.DisplayName,
			State:        StatePending,
			AssignedAt:   now,
			UpdatedAt:    now,
		})
		ids = append(ids, p.ID)
	}

	for _, batch := range chunk(ids, insertChunk) {
		args := make([]any, 0, len(batch)+1)
		args = append(args, tenantID)
		for _, id := range batch {
			args = append(args, id)
		}
		if _, err := tx.ExecContext(ctx,
			"UPDATE global_profiles SET used = TRUE, used_at = now() WHERE tenant_id = $1 AND profile_id IN ("+
				placeholders(2, len(batch))+")",
			args...); err != nil {
			return nil, fmt.Errorf("mark used: %w", err)
		}
	}

	for _, batch := range chunk(assignments, insertChunk) {
		var b []byte
		b = append(b, `INSERT INTO assignments
			(assignment_id, campaign_id, tenant_id, profile_id, username, display_name, state, assigned_at, updated_at)
			VALUES `...)
		args := make([]any, 0, len(batch)*9)
		for i, a := range batch {
			if i > 0 {
				b = append(b, ", "...)
			}
			b = append(b, '(')
			b = append(b, placeholders(len(args)+1, 9)...)
			b = append(b, ')')
			args = append(args, a.AssignmentID, a.CampaignID, a.TenantID, a.ProfileID,
				a.Username, a.DisplayName, a.State, a.AssignedAt, a.UpdatedAt)
		}
		if _, err := tx.ExecContext(ctx, string(b), args...); err != nil {
			return nil, fmt.Errorf("insert assignments: %w", err)
		}
	}

	if _, err := tx.ExecContext(ctx,
		"UPDATE campaigns SET total_assigned = $3 WHERE tenant_id = $1 AND campaign_id = $2",
		tenantID, campaignID, len(assignments)); err != nil {
		return nil, fmt.Errorf("update campaign total: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return assignments, nil
}

// GetCampaign fetches one campaign scoped to a tenant.
func (s *Store) GetCampaign(ctx context.Context, tenantID string, id uuid.UUID) (Campaign, error) {
	var c Campaign
	err := s.DB.QueryRowContext(ctx,
		`SELECT campaign_id, tenant_id, campaign_date, total_assigned, distributed, synced, created_at
		 FROM campaigns WHERE tenant_id = $1 AND campaign_id = $2`,
		tenantID, id).
		Scan(&c.CampaignID, &c.TenantID, &c.CampaignDate, &c.TotalAssigned, &c.Distributed, &c.Synced, &c.CreatedAt)
	return c, err
}

// SetCampaignDistributed marks a campaign as packed into queues.
func (s *Store) SetCampaignDistributed(ctx context.Context, tenantID string, id uuid.UUID) error {
	_, err := s.DB.ExecContext(ctx,
		"UPDATE campaigns SET distributed = TRUE WHERE tenant_id = $1 AND campaign_id = $2",
		tenantID, id)
	return err
}

// SetCampaignSynced records the outcome of an external sync.
func (s *Store) SetCampaignSynced(ctx context.Context, tenantID string, id uuid.UUID, synced bool) error {
	_, err := s.DB.ExecContext(ctx,
		"UPDATE campaigns SET synced = $3 WHERE tenant_id = $1 AND campaign_id = $2",
		tenantID, id, synced)
	return err
}

// DeleteCampaignsBefore removes campaigns created before the cutoff.
func (s *Store) DeleteCampaignsBefore(ctx context.Context, tenantID string, cutoff time.Time) (int64, error) {
	res, err := s.DB.ExecContext(ctx,
		"DELETE FROM campaigns WHERE tenant_id = $1 AND created_at < $2",
		tenantID, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
