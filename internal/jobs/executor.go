package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"outreach/internal/gender"
	"outreach/internal/metrics"
	"outreach/internal/scrape"
	"outreach/internal/store"
)

// Scraper runs one batch of accounts against the upstream provider.
type Scraper interface {
	Scrape(ctx context.Context, platform scrape.Platform, accounts []string, maxPerAccount int) ([]scrape.Profile, error)
}

// ExecutorStore is the slice of the store the executor needs.
type ExecutorStore interface {
	AdvanceScrapeJobBatch(ctx context.Context, id uuid.UUID, scraped int) error
	InsertScrapeResults(ctx context.Context, tenantID string, jobID uuid.UUID, profiles []store.ProfileInput) (int, error)
	CompleteScrapeJob(ctx context.Context, id uuid.UUID, totalScraped, totalFiltered int) error
	FailScrapeJob(ctx context.Context, id uuid.UUID, msg string) error
}

// Executor runs one scrape job end to end: fan the accounts out into
// concurrent batches, wait on the barrier, then aggregate exactly once.
type Executor struct {
	store   ExecutorStore
	scraper Scraper
	logger  *slog.Logger

	softLimit time.Duration
	hardLimit time.Duration
}

func NewExecutor(st ExecutorStore, sc Scraper, softLimit, hardLimit time.Duration, logger *slog.Logger) *Executor {
	if softLimit <= 0 {
		softLimit = 115 * time.Minute
	}
	if hardLimit <= 0 {
		hardLimit = 2 * time.Hour
	}
	return &Executor{
		store:     st,
		scraper:   sc,
		logger:    logger,
		softLimit: softLimit,
		hardLimit: hardLimit,
	}
}

type batchResult struct {
	kept     []store.ProfileInput
	scraped  int
	filtered int
	err      error
}

// Execute processes a claimed job. Every batch reports into the barrier
// whether it succeeded or not; partial results from successful batches
// are persisted even when the job ends up failed.
func (e *Executor) Execute(ctx context.Context, job store.ScrapeJob) {
	hardCtx, cancel := context.WithTimeout(ctx, e.hardLimit)
	defer cancel()
	softCtx, softCancel := context.WithTimeout(hardCtx, e.softLimit)
	defer softCancel()

	batches := partitionAccounts(job.Accounts, batchSize)
	results := make([]batchResult, len(batches))

	var wg sync.WaitGroup
	for i, accounts := range batches {
		wg.Add(1)
		go func(i int, accounts []string) {
			defer wg.Done()
			results[i] = e.runBatch(softCtx, job, accounts)
		}(i, accounts)
	}
	wg.Wait()

	var kept []store.ProfileInput
	totalScraped := 0
	var firstErr error
	for _, r := range results {
		kept = append(kept, r.kept...)
		totalScraped += r.scraped
		if r.err != nil && firstErr == nil {
			firstErr = r.err
		}
	}

	if len(kept) > 0 {
		if _, err := e.store.InsertScrapeResults(hardCtx, job.TenantID, job.JobID, kept); err != nil {
			if firstErr == nil {
				firstErr = fmt.Errorf("persist results: %w", err)
			}
			e.logger.Error("persist scrape results failed",
				"tenant_id", job.TenantID, "job_id", job.JobID, "error", err)
		}
	}

	// A failed batch never preempts its siblings: the job stays processing
	// until every batch has returned, surviving results are persisted, and
	// only then is the terminal state written, exactly once.
	if firstErr != nil {
		if err := e.store.FailScrapeJob(context.WithoutCancel(ctx), job.JobID, firstErr.Error()); err != nil {
			e.logger.Error("mark job failed errored", "job_id", job.JobID, "error", err)
		}
		metrics.RecordJob(string(StatusFailed))
		e.logger.Warn("scrape job failed",
			"tenant_id", job.TenantID, "job_id", job.JobID,
			"results_kept", len(kept), "error", firstErr)
		return
	}

	if err := e.store.CompleteScrapeJob(context.WithoutCancel(ctx), job.JobID, totalScraped, len(kept)); err != nil {
		e.logger.Error("mark job completed errored", "job_id", job.JobID, "error", err)
		return
	}
	metrics.RecordJob(string(StatusCompleted))
	e.logger.Info("scrape job completed",
		"tenant_id", job.TenantID, "job_id", job.JobID,
		"total_scraped", totalScraped, "total_filtered", len(kept))
}

func (e *Executor) runBatch(ctx context.Context, job store.ScrapeJob, accounts []string) batchResult {
	profiles, err := e.scraper.Scrape(ctx, scrape.Platform(job.Platform), accounts, job.MaxPerAccount)
	if err != nil {
		_ = e.store.AdvanceScrapeJobBatch(context.WithoutCancel(ctx), job.JobID, 0)
		return batchResult{err: err}
	}

	target := gender.Gender(job.TargetGender)
	kept := make([]store.ProfileInput, 0, len(profiles))
	filtered := 0
	for _, p := range profiles {
		if gender.Matches(gender.Classify(p.Username, p.DisplayName), target) {
			kept = append(kept, store.ProfileInput{
				ID:          p.ID,
				Username:    p.Username,
				DisplayName: p.DisplayName,
			})
		} else {
			filtered++
		}
	}

	if err := e.store.AdvanceScrapeJobBatch(ctx, job.JobID, len(profiles)); err != nil {
		return batchResult{kept: kept, scraped: len(profiles), filtered: filtered, err: err}
	}
	return batchResult{kept: kept, scraped: len(profiles), filtered: filtered}
}
