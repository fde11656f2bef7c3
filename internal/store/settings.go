package store

import "context"

// GetTenantQueueCount returns the per-tenant queue count override, or
// sql.ErrNoRows when none is stored.
func (s *Store) GetTenantQueueCount(ctx context.Context, tenantID string) (int, error) {
	var n int
	err := s.DB.QueryRowContext(ctx,
		"SELECT num_queues FROM tenant_settings WHERE tenant_id = $1",
		tenantID).Scan(&n)
	return n, err
}

// SetTenantQueueCount upserts the per-tenant queue count. Base
// provisioning records the created table count here.
func (s *Store) SetTenantQueueCount(ctx context.Context, tenantID string, numQueues int) error {
	_, err := s.DB.ExecContext(ctx,
		`INSERT INTO tenant_settings (tenant_id, num_queues) VALUES ($1, $2)
		 ON CONFLICT (tenant_id) DO UPDATE SET num_queues = EXCLUDED.num_queues, updated_at = now()`,
		tenantID, numQueues)
	return err
}

// ListTenantIDs returns every tenant known to the system, for the
// lifecycle sweeps.
func (s *Store) ListTenantIDs(ctx context.Context) ([]string, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT tenant_id FROM tenant_settings
		 UNION SELECT DISTINCT tenant_id FROM campaigns
		 UNION SELECT DISTINCT tenant_id FROM global_profiles`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
