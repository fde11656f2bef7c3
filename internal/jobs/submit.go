package jobs

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"outreach/internal/gender"
	"outreach/internal/scrape"
	"outreach/internal/store"
)

const (
	// batchSize caps how many source accounts one batch task scrapes.
	batchSize = 50

	// defaultPerAccount applies when no total count is requested.
	defaultPerAccount = 5
)

var (
	ErrNoAccounts = errors.New("at least one account is required")
	ErrBadCount   = errors.New("total_scrape_count spread across accounts must be at least 1 each")
	ErrBadGender  = errors.New("target_gender must be male or female")
)

// SubmitInput is a validated-on-entry scrape submission.
type SubmitInput struct {
	TenantID         string
	Accounts         []string
	TotalScrapeCount int
	TargetGender     string
	Platform         string
}

// SubmitStore is the slice of the store Submit needs.
type SubmitStore interface {
	CreateScrapeJob(ctx context.Context, job store.ScrapeJob) error
}

// Submit validates a request, splits the per-account quota, and persists
// a queued job for the runner to pick up.
func Submit(ctx context.Context, st SubmitStore, in SubmitInput) (store.ScrapeJob, error) {
	if len(in.Accounts) == 0 {
		return store.ScrapeJob{}, ErrNoAccounts
	}
	if !gender.ValidTarget(in.TargetGender) {
		return store.ScrapeJob{}, ErrBadGender
	}
	platform, err := scrape.ParsePlatform(in.Platform)
	if err != nil {
		return store.ScrapeJob{}, err
	}

	perAccount := defaultPerAccount
	if in.TotalScrapeCount > 0 {
		perAccount = in.TotalScrapeCount / len(in.Accounts)
		if perAccount < 1 {
			return store.ScrapeJob{}, ErrBadCount
		}
	}

	job := store.ScrapeJob{
		JobID:         newUUID(),
		TenantID:      in.TenantID,
		Status:        string(StatusQueued),
		Platform:      string(platform),
		Accounts:      in.Accounts,
		TargetGender:  in.TargetGender,
		MaxPerAccount: perAccount,
		TotalBatches:  len(partitionAccounts(in.Accounts, batchSize)),
	}
	if err := st.CreateScrapeJob(ctx, job); err != nil {
		return store.ScrapeJob{}, err
	}
	return job, nil
}

// partitionAccounts splits accounts into consecutive batches of at most
// size entries.
func partitionAccounts(accounts []string, size int) [][]string {
	if len(accounts) == 0 {
		return nil
	}
	batches := make([][]string, 0, (len(accounts)+size-1)/size)
	for start := 0; start < len(accounts); start += size {
		end := start + size
		if end > len(accounts) {
			end = len(accounts)
		}
		batches = append(batches, accounts[start:end])
	}
	return batches
}

// newUUID prefers time-ordered v7 ids and falls back to v4.
func newUUID() uuid.UUID {
	if id, err := uuid.NewV7(); err == nil {
		return id
	}
	return uuid.New()
}
