package store

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const assignmentColumns = `assignment_id, campaign_id, tenant_id, profile_id, username,
	display_name, queue_index, position, state, assigned_at, updated_at`

func (s *Store) queryAssignments(ctx context.Context, query string, args ...any) ([]Assignment, error) {
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Assignment
	for rows.Next() {
		var a Assignment
		if err := rows.Scan(&a.AssignmentID, &a.CampaignID, &a.TenantID, &a.ProfileID,
			&a.Username, &a.DisplayName, &a.QueueIndex, &a.Position, &a.State,
			&a.AssignedAt, &a.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// ListPlaceholderAssignments returns a campaign's still-unpacked rows
// (queue 0).
func (s *Store) ListPlaceholderAssignments(ctx context.Context, tenantID string, campaignID uuid.UUID) ([]Assignment, error) {
	return s.queryAssignments(ctx,
		"SELECT "+assignmentColumns+
			" FROM assignments WHERE tenant_id = $1 AND campaign_id = $2 AND queue_index = 0 ORDER BY assigned_at",
		tenantID, campaignID)
}

// ListPackedAssignments returns a campaign's queue-assigned rows ordered
// by queue then position.
func (s *Store) ListPackedAssignments(ctx context.Context, tenantID string, campaignID uuid.UUID) ([]Assignment, error) {
	return s.queryAssignments(ctx,
		"SELECT "+assignmentColumns+
			" FROM assignments WHERE tenant_id = $1 AND campaign_id = $2 AND queue_index > 0 ORDER BY queue_index, position",
		tenantID, campaignID)
}

// ListActiveAssignments returns every queue-assigned row for a tenant,
// across campaigns. Status pulls match against this set.
func (s *Store) ListActiveAssignments(ctx context.Context, tenantID string) ([]Assignment, error) {
	return s.queryAssignments(ctx,
		"SELECT "+assignmentColumns+
			" FROM assignments WHERE tenant_id = $1 AND queue_index > 0 ORDER BY queue_index, position",
		tenantID)
}

// AssignSlot moves a placeholder into a concrete queue slot.
func (s *Store) AssignSlot(ctx context.Context, tenantID string, assignmentID uuid.UUID, queueIndex, position int) error {
	_, err := s.DB.ExecContext(ctx,
		`UPDATE assignments SET queue_index = $3, position = $4, updated_at = now()
		 WHERE tenant_id = $1 AND assignment_id = $2`,
		tenantID, assignmentID, queueIndex, position)
	return err
}

// UpdateAssignmentState sets a new lifecycle state and bumps updated_at.
func (s *Store) UpdateAssignmentState(ctx context.Context, tenantID string, assignmentID uuid.UUID, state string) error {
	_, err := s.DB.ExecContext(ctx,
		`UPDATE assignments SET state = $3, updated_at = now()
		 WHERE tenant_id = $1 AND assignment_id = $2`,
		tenantID, assignmentID, state)
	return err
}

// ListAssignmentsForUnfollow returns pending/followed rows assigned on or
// before the cutoff.
func (s *Store) ListAssignmentsForUnfollow(ctx context.Context, tenantID string, cutoff time.Time) ([]Assignment, error) {
	return s.queryAssignments(ctx,
		"SELECT "+assignmentColumns+
			" FROM assignments WHERE tenant_id = $1 AND state IN ($2, $3) AND assigned_at <= $4 ORDER BY queue_index, position",
		tenantID, StatePending, StateFollowed, cutoff)
}

// ListCompletedAssignmentsBefore returns completed rows whose last update
// is on or before the cutoff.
func (s *Store) ListCompletedAssignmentsBefore(ctx context.Context, tenantID string, cutoff time.Time) ([]Assignment, error) {
	return s.queryAssignments(ctx,
		"SELECT "+assignmentColumns+
			" FROM assignments WHERE tenant_id = $1 AND state = $2 AND updated_at <= $3 ORDER BY queue_index, position",
		tenantID, StateCompleted, cutoff)
}

// DeleteAssignment removes a single assignment row.
func (s *Store) DeleteAssignment(ctx context.Context, tenantID string, assignmentID uuid.UUID) error {
	_, err := s.DB.ExecContext(ctx,
		"DELETE FROM assignments WHERE tenant_id = $1 AND assignment_id = $2",
		tenantID, assignmentID)
	return err
}

// DeleteAssignmentsBefore removes assignments created before the cutoff.
func (s *Store) DeleteAssignmentsBefore(ctx context.Context, tenantID string, cutoff time.Time) (int64, error) {
	res, err := s.DB.ExecContext(ctx,
		"DELETE FROM assignments WHERE tenant_id = $1 AND assigned_at < $2",
		tenantID, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
