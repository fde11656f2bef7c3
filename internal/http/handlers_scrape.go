package http

import (
	"fmt"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"outreach/internal/jobs"
)

// scrapeFollowersHandler accepts a follower-scrape submission and queues
// it for the background worker. The response carries polling URLs.
func (s *Server) scrapeFollowersHandler(c *fiber.Ctx) error {
	var req ScrapeFollowersRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid JSON body")
	}

	job, err := jobs.Submit(c.Context(), s.store, jobs.SubmitInput{
		TenantID:         tenantID(c),
		Accounts:         req.Accounts,
		TotalScrapeCount: req.TotalScrapeCount,
		TargetGender:     req.TargetGender,
		Platform:         req.Platform,
	})
	if err != nil {
		return fail(c, err)
	}

	s.logger.Info("scrape job submitted",
		"tenant_id", job.TenantID,
		"job_id", job.JobID,
		"platform", job.Platform,
		"accounts", len(job.Accounts),
		"total_batches", job.TotalBatches)

	return c.Status(fiber.StatusAccepted).JSON(ScrapeFollowersResponse{
		Success:      true,
		JobID:        job.JobID.String(),
		Status:       job.Status,
		TotalBatches: job.TotalBatches,
		StatusURL:    fmt.Sprintf("/api/job-status/%s", job.JobID),
		ResultsURL:   fmt.Sprintf("/api/job-results/%s", job.JobID),
	})
}

func (s *Server) jobStatusHandler(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid job id")
	}

	job, err := s.store.GetScrapeJob(c.Context(), tenantID(c), id)
	if err != nil {
		return fail(c, err)
	}

	resp := JobStatusResponse{
		Success:         true,
		JobID:           job.JobID.String(),
		Status:          job.Status,
		Platform:        job.Platform,
		Progress:        job.Progress,
		CurrentBatch:    job.CurrentBatch,
		TotalBatches:    job.TotalBatches,
		ProfilesScraped: job.ProfilesScraped,
		TotalScraped:    job.TotalScraped,
		TotalFiltered:   job.TotalFiltered,
	}
	if job.ErrorMessage.Valid {
		resp.Error = job.ErrorMessage.String
	}
	return c.JSON(resp)
}

const (
	resultsDefaultLimit = 100
	resultsMaxLimit     = 5000
)

// jobResultsHandler pages through a completed job's filtered profiles.
// Results are withheld until the job reaches a terminal successful state.
func (s *Server) jobResultsHandler(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid job id")
	}

	limit := resultsDefaultLimit
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return badRequest(c, "invalid limit value")
		}
		if n > resultsMaxLimit {
			return badRequest(c, fmt.Sprintf("limit exceeds the maximum of %d", resultsMaxLimit))
		}
		limit = n
	}

	offset := 0
	if v := c.Query("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return badRequest(c, "invalid offset value")
		}
		offset = n
	}

	job, err := s.store.GetScrapeJob(c.Context(), tenantID(c), id)
	if err != nil {
		return fail(c, err)
	}
	if job.Status != string(jobs.StatusCompleted) {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Success: false,
			Code:    "JOB_NOT_COMPLETE",
			Error:   fmt.Sprintf("job is %s; results are available once it completes", job.Status),
		})
	}

	total, err := s.store.CountScrapeResults(c.Context(), tenantID(c), id)
	if err != nil {
		return fail(c, err)
	}
	results, err := s.store.ListScrapeResults(c.Context(), tenantID(c), id, limit, offset)
	if err != nil {
		return fail(c, err)
	}

	items := make([]ResultItem, len(results))
	for i, r := range results {
		items[i] = ResultItem{
			ProfileID:   r.ProfileID,
			Username:    r.Username,
			DisplayName: r.DisplayName,
			CreatedAt:   r.CreatedAt,
		}
	}

	return c.JSON(JobResultsResponse{
		Success: true,
		JobID:   id.String(),
		Total:   total,
		Limit:   limit,
		Offset:  offset,
		Results: items,
	})
}
