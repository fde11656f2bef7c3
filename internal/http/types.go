package http

import "time"

// ErrorResponse is the error envelope every endpoint shares.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Code    string `json:"code,omitempty"`
	Error   string `json:"error"`
}

// ScrapeFollowersRequest is the payload for POST /api/scrape-followers.
type ScrapeFollowersRequest struct {
	TenantID         string   `json:"tenant_id,omitempty"`
	Accounts         []string `json:"accounts"`
	TotalScrapeCount int      `json:"total_scrape_count,omitempty"`
	TargetGender     string   `json:"target_gender"`
	Platform         string   `json:"platform,omitempty"`
}

type ScrapeFollowersResponse struct {
	Success      bool   `json:"success"`
	JobID        string `json:"job_id"`
	Status       string `json:"status"`
	TotalBatches int    `json:"total_batches"`
	StatusURL    string `json:"status_url"`
	ResultsURL   string `json:"results_url"`
}

type JobStatusResponse struct {
	Success         bool    `json:"success"`
	JobID           string  `json:"job_id"`
	Status          string  `json:"status"`
	Platform        string  `json:"platform"`
	Progress        float64 `json:"progress"`
	CurrentBatch    int     `json:"current_batch"`
	TotalBatches    int     `json:"total_batches"`
	ProfilesScraped int     `json:"profiles_scraped"`
	TotalScraped    int     `json:"total_scraped,omitempty"`
	TotalFiltered   int     `json:"total_filtered,omitempty"`
	Error           string  `json:"error,omitempty"`
}

type ResultItem struct {
	ProfileID   string    `json:"profile_id"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type JobResultsResponse struct {
	Success bool         `json:"success"`
	JobID   string       `json:"job_id"`
	Total   int          `json:"total"`
	Limit   int          `json:"limit"`
	Offset  int          `json:"offset"`
	Results []ResultItem `json:"results"`
}

// IngestRequest is the payload for POST /api/ingest.
type IngestRequest struct {
	TenantID string `json:"tenant_id,omitempty"`
	Profiles []struct {
		ProfileID   string `json:"profile_id"`
		Username    string `json:"username"`
		DisplayName string `json:"display_name,omitempty"`
	} `json:"profiles"`
}

type RunDailyRequest struct {
	TenantID        string `json:"tenant_id,omitempty"`
	Date            string `json:"date,omitempty"` // YYYY-MM-DD, default today
	ProfilesPerTask int    `json:"profiles_per_task,omitempty"`
}

type CreateBaseRequest struct {
	TenantID  string `json:"tenant_id,omitempty"`
	NumQueues int    `json:"num_queues"`
}
