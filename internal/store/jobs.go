package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// CreateScrapeJob persists a freshly submitted job in the queued state.
func (s *Store) CreateScrapeJob(ctx context.Context, job ScrapeJob) error {
	accounts, err := json.Marshal(job.Accounts)
	if err != nil {
		return fmt.Errorf("marshal accounts: %w", err)
	}

	_, err = s.DB.ExecContext(ctx,
		`INSERT INTO scrape_jobs
		 (job_id, tenant_id, status, platform, accounts, target_gender, max_per_account, total_batches)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		job.JobID, job.TenantID, job.Status, job.Platform, accounts,
		job.TargetGender, job.MaxPerAccount, job.TotalBatches)
	return err
}

const scrapeJobColumns = `job_id, tenant_id, status, platform, accounts, target_gender,
	max_per_account, total_batches, current_batch, progress, profiles_scraped,
	total_scraped, total_filtered, error_message, created_at, started_at, completed_at, updated_at`

func scanScrapeJob(scan func(dest ...any) error) (ScrapeJob, error) {
	var job ScrapeJob
	var accounts []byte
	err := scan(&job.JobID, &job.TenantID, &job.Status, &job.Platform, &accounts,
		&job.TargetGender, &job.MaxPerAccount, &job.TotalBatches, &job.CurrentBatch,
		&job.Progress, &job.ProfilesScraped, &job.TotalScraped, &job.TotalFiltered,
		&job.ErrorMessage, &job.CreatedAt, &job.StartedAt, &job.CompletedAt, &job.UpdatedAt)
	if err != nil {
		return ScrapeJob{}, err
	}
	if len(accounts) > 0 {
		if err := json.Unmarshal(accounts, &job.Accounts); err != nil {
			return ScrapeJob{}, fmt.Errorf("unmarshal accounts: %w", err)
		}
	}
	return job, nil
}

// GetScrapeJob fetches one job scoped to a tenant. sql.ErrNoRows passes
// through for missing ids.
func (s *Store) GetScrapeJob(ctx context.Context, tenantID string, id uuid.UUID) (ScrapeJob, error) {
	row := s.DB.QueryRowContext(ctx,
		"SELECT "+scrapeJobColumns+" FROM scrape_jobs WHERE tenant_id = $1 AND job_id = $2",
		tenantID, id)
	return scanScrapeJob(row.Scan)
}

// ListQueuedScrapeJobs returns up to limit queued jobs across all
// tenants, oldest first. The worker polls this.
func (s *Store) ListQueuedScrapeJobs(ctx context.Context, limit int) ([]ScrapeJob, error) {
	rows, err := s.DB.QueryContext(ctx,
		"SELECT "+scrapeJobColumns+" FROM scrape_jobs WHERE status = 'queued' ORDER BY created_at LIMIT $1",
		limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []ScrapeJob
	for rows.Next() {
		job, err := scanScrapeJob(rows.Scan)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, rows.Err()
}

// ClaimScrapeJob transitions a queued job to processing. It reports false
// when another worker won the race.
func (s *Store) ClaimScrapeJob(ctx context.Context, id uuid.UUID) (bool, error) {
	res, err := s.DB.ExecContext(ctx,
		`UPDATE scrape_jobs
		 SET status = 'processing', started_at = now(), updated_at = now()
		 WHERE job_id = $1 AND status = 'queued'`,
		id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// AdvanceScrapeJobBatch records one finished batch: bumps the batch
// counter, adds the batch's scraped count, and refreshes progress. The
// scraped counter only ever grows.
func (s *Store) AdvanceScrapeJobBatch(ctx context.Context, id uuid.UUID, scraped int) error {
	_, err := s.DB.ExecContext(ctx,
		`UPDATE scrape_jobs
		 SET current_batch = current_batch + 1,
		     profiles_scraped = profiles_scraped + $2,
		     progress = LEAST(99, (current_batch + 1) * 100.0 / GREATEST(total_batches, 1)),
		     updated_at = now()
		 WHERE job_id = $1`,
		id, scraped)
	return err
}

// CompleteScrapeJob marks a job finished with its final totals.
func (s *Store) CompleteScrapeJob(ctx context.Context, id uuid.UUID, totalScraped, totalFiltered int) error {
	_, err := s.DB.ExecContext(ctx,
		`UPDATE scrape_jobs
		 SET status = 'completed', progress = 100, total_scraped = $2, total_filtered = $3,
		     error_message = NULL, completed_at = now(), updated_at = now()
		 WHERE job_id = $1`,
		id, totalScraped, totalFiltered)
	return err
}

// FailScrapeJob marks a job failed with the first error encountered.
// Totals persisted so far (partial results) are kept.
func (s *Store) FailScrapeJob(ctx context.Context, id uuid.UUID, msg string) error {
	_, err := s.DB.ExecContext(ctx,
		`UPDATE scrape_jobs
		 SET status = 'failed', error_message = $2, completed_at = now(), updated_at = now()
		 WHERE job_id = $1`,
		id, msg)
	return err
}

// InsertScrapeResults writes aggregated results in chunks and returns the
// number of rows written.
func (s *Store) InsertScrapeResults(ctx context.Context, tenantID string, jobID uuid.UUID, profiles []ProfileInput) (int, error) {
	written := 0
	for _, batch := range chunk(profiles, insertChunk) {
		var b []byte
		b = append(b, "INSERT INTO scrape_results (job_id, tenant_id, profile_id, username, display_name) VALUES "...)
		args := make([]any, 0, len(batch)*5)
		for i, p := range batch {
			if i > 0 {
				b = append(b, ", "...)
			}
			b = append(b, '(')
			b = append(b, placeholders(len(args)+1, 5)...)
			b = append(b, ')')
			args = append(args, jobID, tenantID, p.ID, p.Username, p.DisplayName)
		}
		if _, err := s.DB.ExecContext(ctx, string(b), args...); err != nil {
			return written, err
		}
		written += len(batch)
	}
	return written, nil
}

// CountScrapeResults returns the total result count for one job.
func (s *Store) CountScrapeResults(ctx context.Context, tenantID string, jobID uuid.UUID) (int, error) {
	var n int
	err := s.DB.QueryRowContext(ctx,
		"SELECT count(*) FROM scrape_results WHERE tenant_id = $1 AND job_id = $2",
		tenantID, jobID).Scan(&n)
	return n, err
}

// ListScrapeResults pages through one job's results, newest first.
func (s *Store) ListScrapeResults(ctx context.Context, tenantID string, jobID uuid.UUID, limit, offset int) ([]ScrapeResult, error) {
	rows, err := s.DB.QueryContext(ctx,
		`SELECT job_id, tenant_id, profile_id, username, display_name, created_at
		 FROM scrape_results
		 WHERE tenant_id = $1 AND job_id = $2
		 ORDER BY created_at DESC
		 LIMIT $3 OFFSET $4`,
		tenantID, jobID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ScrapeResult
	for rows.Next() {
		var r ScrapeResult
		if err := rows.Scan(&r.JobID, &r.TenantID, &r.ProfileID, &r.Username, &r.DisplayName, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
