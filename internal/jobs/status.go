package jobs

// Status represents the lifecycle state of a scrape job in the
// scrape_jobs table. These values must match the text values stored
// in the database (scrape_jobs.status).
//
// Centralizing these here avoids scattering string literals like
// "queued" or "completed" across packages.
type Status string

const (
	StatusQueued     Status = "queued"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)
