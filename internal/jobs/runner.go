package jobs

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"outreach/internal/config"
	"outreach/internal/store"
)

// RunnerStore is the slice of the store the runner polls.
type RunnerStore interface {
	ListQueuedScrapeJobs(ctx context.Context, limit int) ([]store.ScrapeJob, error)
	ClaimScrapeJob(ctx context.Context, id uuid.UUID) (bool, error)
}

// JobExecutor executes a single claimed scrape job.
type JobExecutor interface {
	Execute(ctx context.Context, job store.ScrapeJob)
}

// Runner polls the scrape_jobs table and dispatches claimed jobs to a
// bounded worker pool. Each worker retires after a fixed number of jobs
// and is replaced by a fresh goroutine.
type Runner struct {
	cfg      *config.Config
	store    RunnerStore
	executor JobExecutor
	logger   *slog.Logger
}

func NewRunner(cfg *config.Config, st RunnerStore, exec JobExecutor, logger *slog.Logger) *Runner {
	return &Runner{
		cfg:      cfg,
		store:    st,
		executor: exec,
		logger:   logger,
	}
}

// Start launches the poll loop in the current goroutine. Callers
// typically run this in its own goroutine and keep the process alive.
func (r *Runner) Start(ctx context.Context) {
	pollInterval := time.Duration(r.cfg.Worker.PollIntervalMs) * time.Millisecond
	if pollInterval <= 0 {
		pollInterval = 2 * time.Second
	}

	poolSize := r.cfg.Worker.MaxConcurrentJobs
	if poolSize <= 0 {
		poolSize = 4
	}

	recycleAfter := r.cfg.Worker.MaxTasksPerWorker
	if recycleAfter <= 0 {
		recycleAfter = 50
	}

	queue := make(chan store.ScrapeJob)
	var inflight atomic.Int64
	for i := 0; i < poolSize; i++ {
		go r.workerLoop(ctx, queue, &inflight, recycleAfter)
	}

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		capacity := poolSize - int(inflight.Load())
		if capacity <= 0 {
			continue
		}

		jobs, err := r.store.ListQueuedScrapeJobs(ctx, capacity)
		if err != nil {
			r.logger.Error("poll queued jobs failed", "error", err)
			continue
		}

		for _, job := range jobs {
			claimed, err := r.store.ClaimScrapeJob(ctx, job.JobID)
			if err != nil {
				r.logger.Error("claim job failed", "job_id", job.JobID, "error", err)
				continue
			}
			if !claimed {
				continue
			}
			inflight.Add(1)
			select {
			case queue <- job:
			case <-ctx.Done():
				return
			}
		}
	}
}

// workerLoop consumes jobs until the context ends or the worker hits its
// recycle threshold, at which point a replacement takes over the queue.
func (r *Runner) workerLoop(ctx context.Context, queue chan store.ScrapeJob, inflight *atomic.Int64, recycleAfter int) {
	done := 0
	for {
		select {
		case <-ctx.Done():
			return
		case job := <-queue:
			r.executor.Execute(ctx, job)
			inflight.Add(-1)
			done++
			if done >= recycleAfter {
				go r.workerLoop(ctx, queue, inflight, recycleAfter)
				return
			}
		}
	}
}
