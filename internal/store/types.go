package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNoProfilesAvailable is returned by campaign selection when the
// tenant's unused profile pool is empty.
var ErrNoProfilesAvailable = errors.New("no unused profiles available")

// Assignment states. An assignment moves pending -> followed ->
// unfollow -> completed; aging sweeps force pending/followed rows to
// unfollow after the configured delay.
const (
	StatePending   = "pending"
	StateFollowed  = "followed"
	StateUnfollow  = "unfollow"
	StateCompleted = "completed"
)

// ProfileInput is a profile as received from ingestion or scraping.
type ProfileInput struct {
	ID          string
	Username    string
	DisplayName string
}

// GlobalProfile is a deduplicated profile row with usage tracking.
type GlobalProfile struct {
	TenantID    string
	ProfileID   string
	Username    string
	DisplayName string
	Used        bool
	UsedAt      sql.NullTime
	CreatedAt   time.Time
}

type Campaign struct {
	CampaignID    uuid.UUID
	TenantID      string
	CampaignDate  time.Time
	TotalAssigned int
	Distributed   bool
	Synced        bool
	CreatedAt     time.Time
}

type Assignment struct {
	AssignmentID uuid.UUID
	CampaignID   uuid.UUID
	TenantID     string
	ProfileID    string
	Username     string
	DisplayName  string
	QueueIndex   int
	Position     int
	State        string
	AssignedAt   time.Time
	UpdatedAt    time.Time
}

type ScrapeJob struct {
	JobID           uuid.UUID
	TenantID        string
	Status          string
	Platform        string
	Accounts        []string
	TargetGender    string
	MaxPerAccount   int
	TotalBatches    int
	CurrentBatch    int
	Progress        float64
	ProfilesScraped int
	TotalScraped    int
	TotalFiltered   int
	ErrorMessage    sql.NullString
	CreatedAt       time.Time
	StartedAt       sql.NullTime
	CompletedAt     sql.NullTime
	UpdatedAt       time.Time
}

type ScrapeResult struct {
	JobID       uuid.UUID
	TenantID    string
	ProfileID   string
	Username    string
	DisplayName string
	CreatedAt   time.Time
}
