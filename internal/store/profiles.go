package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

const (
	existsProbeChunk = 5000
	insertChunk      = 1000
)

// IngestStats summarizes one bulk ingestion call.
type IngestStats struct {
	Received        int `json:"received"`
	InsertedRaw     int `json:"inserted_raw"`
	AddedToGlobal   int `json:"added_to_global"`
	SkippedExisting int `json:"skipped_existing"`
	FailedRows      int `json:"failed_rows"`
}

// execer is the write surface the insert fallbacks need. *sql.DB
// satisfies it.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// IngestProfiles runs the bulk-safe ingestion algorithm: probe which
// profile ids already exist in chunks, append every valid profile to the
// raw table, and insert only the new ones into the global table. A
// duplicate that appears between probe and insert counts as skipped, not
// as an error. A batch whose multi-row insert fails is retried row by
// row; rows that still fail are counted in FailedRows and the run keeps
// going.
func (s *Store) IngestProfiles(ctx context.Context, tenantID string, profiles []ProfileInput) (IngestStats, error) {
	stats := IngestStats{Received: len(profiles)}

	valid := make([]ProfileInput, 0, len(profiles))
	for _, p := range profiles {
		if p.ID == "" || p.Username == "" {
			continue
		}
		valid = append(valid, p)
	}
	if len(valid) == 0 {
		return stats, nil
	}

	existing, err := s.existingProfileIDs(ctx, tenantID, valid)
	if err != nil {
		return stats, fmt.Errorf("probe existing profiles: %w", err)
	}

	newProfiles := make([]ProfileInput, 0, len(valid))
	for _, p := range valid {
		if _, ok := existing[p.ID]; ok {
			stats.SkippedExisting++
		} else {
			newProfiles = append(newProfiles, p)
		}
	}

	for _, batch := range chunk(valid, insertChunk) {
		inserted, failed := insertRawBatch(ctx, s.DB, tenantID, batch)
		stats.InsertedRaw += inserted
		stats.FailedRows += failed
		s.ingestPause(ctx)
	}

	for _, batch := range chunk(newProfiles, insertChunk) {
		added, skipped, failed := insertGlobalBatch(ctx, s.DB, tenantID, batch)
		stats.AddedToGlobal += added
		stats.SkippedExisting += skipped
		stats.FailedRows += failed
		s.ingestPause(ctx)
	}

	return stats, nil
}

func (s *Store) ingestPause(ctx context.Context) {
	if s.IngestDelay <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(s.IngestDelay):
	}
}

func (s *Store) existingProfileIDs(ctx context.Context, tenantID string, profiles []ProfileInput) (map[string]struct{}, error) {
	existing := make(map[string]struct{})

	ids := make([]string, len(profiles))
	for i, p := range profiles {
		ids[i] = p.ID
	}

	for _, batch := range chunk(ids, existsProbeChunk) {
		args := make([]any, 0, len(batch)+1)
		args = append(args, tenantID)
		for _, id := range batch {
			args = append(args, id)
		}

		query := "SELECT profile_id FROM global_profiles WHERE tenant_id = $1 AND profile_id IN (" +
			placeholders(2, len(batch)) + ")"
		rows, err := s.DB.QueryContext(ctx, query, args...)
		if err != nil {
			return nil, err
		}
		for rows.Next() {
			var id string
			if err := rows.Scan(&id); err != nil {
				rows.Close()
				return nil, err
			}
			existing[id] = struct{}{}
		}
		if err := rows.Close(); err != nil {
			return nil, err
		}
		if err := rows.Err(); err != nil {
			return nil, err
		}
	}

	return existing, nil
}

// insertRawBatch appends a batch to raw_profiles. If the multi-row insert
// fails, it falls back to per-row inserts so one bad row cannot sink the
// whole batch. Rows that still fail are counted, never fatal.
func insertRawBatch(ctx context.Context, db execer, tenantID string, batch []ProfileInput) (inserted, failed int) {
	query, args := buildRawInsert(tenantID, batch)
	if _, err := db.ExecContext(ctx, query, args...); err == nil {
		return len(batch), 0
	}

	for _, p := range batch {
		_, err := db.ExecContext(ctx,
			"INSERT INTO raw_profiles (tenant_id, profile_id, username, display_name) VALUES ($1, $2, $3, $4)",
			tenantID, p.ID, p.Username, p.DisplayName)
		if err != nil {
			failed++
			continue
		}
		inserted++
	}
	return inserted, failed
}

func buildRawInsert(tenantID string, batch []ProfileInput) (string, []any) {
	var b []byte
	b = append(b, "INSERT INTO raw_profiles (tenant_id, profile_id, username, display_name) VALUES "...)
	args := make([]any, 0, len(batch)*4)
	for i, p := range batch {
		if i > 0 {
			b = append(b, ", "...)
		}
		b = append(b, '(')
		b = append(b, placeholders(len(args)+1, 4)...)
		b = append(b, ')')
		args = append(args, tenantID, p.ID, p.Username, p.DisplayName)
	}
	return string(b), args
}

// insertGlobalBatch inserts new rows into global_profiles with the same
// fallback policy as the raw table: a failed multi-row insert is retried
// row by row. Conflicts lost to a concurrent writer count as skipped.
func insertGlobalBatch(ctx context.Context, db execer, tenantID string, batch []ProfileInput) (added, skipped, failed int) {
	query, args := buildGlobalInsert(tenantID, batch)
	if res, err := db.ExecContext(ctx, query, args...); err == nil {
		if n, err := res.RowsAffected(); err == nil {
			return int(n), len(batch) - int(n), 0
		}
	}

	for _, p := range batch {
		res, err := db.ExecContext(ctx,
			"INSERT INTO global_profiles (tenant_id, profile_id, username, display_name) VALUES ($1, $2, $3, $4) ON CONFLICT (tenant_id, profile_id) DO NOTHING",
			tenantID, p.ID, p.Username, p.DisplayName)
		if err != nil {
			failed++
			continue
		}
		n, err := res.RowsAffected()
		if err != nil {
			failed++
			continue
		}
		if n > 0 {
			added++
		} else {
			skipped++
		}
	}
	return added, skipped, failed
}

func buildGlobalInsert(tenantID string, batch []ProfileInput) (string, []any) {
	var b []byte
	b = append(b, "INSERT INTO global_profiles (tenant_id, profile_id, username, display_name) VALUES "...)
	args := make([]any, 0, len(batch)*4)
	for i, p := range batch {
		if i > 0 {
			b = append(b, ", "...)
		}
		b = append(b, '(')
		b = append(b, placeholders(len(args)+1, 4)...)
		b = append(b, ')')
		args = append(args, tenantID, p.ID, p.Username, p.DisplayName)
	}
	b = append(b, " ON CONFLICT (tenant_id, profile_id) DO NOTHING"...)
	return string(b), args
}

// SelectUnusedProfiles returns up to limit unused profiles for a tenant,
// oldest first. Campaign selection uses the transactional variant in
// CreateCampaignWithSelection; this is the standalone read.
func (s *Store) SelectUnusedProfiles(ctx context.Context, tenantID string, limit int) ([]GlobalProfile, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT tenant_id, profile_id, username, display_name, used, used_at, created_at
		 FROM global_profiles
		 WHERE tenant_id = $1 AND NOT used
		 ORDER BY created_at
		 LIMIT $2`,
		tenantID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []GlobalProfile
	for rows.Next() {
		var p GlobalProfile
		if err := rows.Scan(&p.TenantID, &p.ProfileID, &p.Username, &p.DisplayName, &p.Used, &p.UsedAt, &p.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// MarkProfilesUsed flips used=false rows to used and stamps used_at.
// Already-used rows are left untouched.
func (s *Store) MarkProfilesUsed(ctx context.Context, tenantID string, profileIDs []string) (int64, error) {
	var total int64
	for _, batch := range chunk(profileIDs, insertChunk) {
		args := make([]any, 0, len(batch)+1)
		args = append(args, tenantID)
		for _, id := range batch {
			args = append(args, id)
		}
		res, err := s.DB.ExecContext(ctx,
			"UPDATE global_profiles SET used = TRUE, used_at = now() WHERE tenant_id = $1 AND NOT used AND profile_id IN ("+
				placeholders(2, len(batch))+")",
			args...)
		if err != nil {
			return total, err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

// DeleteRawProfilesBefore removes raw rows scraped before the cutoff.
func (s *Store) DeleteRawProfilesBefore(ctx context.Context, tenantID string, cutoff time.Time) (int64, error) {
	res, err := s.DB.ExecContext(ctx,
		"DELETE FROM raw_profiles WHERE tenant_id = $1 AND scraped_at < $2",
		tenantID, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
