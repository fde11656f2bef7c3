package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func parseRunDailyRequest(c *fiber.Ctx) (RunDailyRequest, time.Time, error) {
	var req RunDailyRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return req, time.Time{}, err
		}
	}

	var date time.Time
	if req.Date != "" {
		var err error
		date, err = time.Parse("2006-01-02", req.Date)
		if err != nil {
			return req, time.Time{}, err
		}
	}
	return req, date, nil
}

// runDailyHandler runs the full daily workflow: select, distribute,
// sync, cleanup. Individual step failures are reported per step, not as
// an HTTP error.
func (s *Server) runDailyHandler(c *fiber.Ctx) error {
	req, date, err := parseRunDailyRequest(c)
	if err != nil {
		return badRequest(c, "invalid body; date must be YYYY-MM-DD")
	}

	res := s.pipeline.RunDaily(c.Context(), tenantID(c), date, req.ProfilesPerTask, s.lifecycle)
	return c.JSON(fiber.Map{
		"success": true,
		"steps":   res,
	})
}

func (s *Server) dailySelectionHandler(c *fiber.Ctx) error {
	req, date, err := parseRunDailyRequest(c)
	if err != nil {
		return badRequest(c, "invalid body; date must be YYYY-MM-DD")
	}

	res, err := s.pipeline.DailySelect(c.Context(), tenantID(c), date, req.ProfilesPerTask)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"success":   true,
		"selection": res,
	})
}

func (s *Server) distributeHandler(c *fiber.Ctx) error {
	campaignID, err := uuid.Parse(c.Params("campaign_id"))
	if err != nil {
		return badRequest(c, "invalid campaign id")
	}

	req, _, err := parseRunDailyRequest(c)
	if err != nil {
		return badRequest(c, "invalid JSON body")
	}

	res, err := s.pipeline.Distribute(c.Context(), tenantID(c), campaignID, req.ProfilesPerTask)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"success":      true,
		"distribution": res,
	})
}

func (s *Server) syncCampaignHandler(c *fiber.Ctx) error {
	campaignID, err := uuid.Parse(c.Params("campaign_id"))
	if err != nil {
		return badRequest(c, "invalid campaign id")
	}

	res, err := s.pipeline.SyncCampaign(c.Context(), tenantID(c), campaignID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"sync":    res,
	})
}

// syncStatusesHandler pulls worker-written states from every queue table
// back onto the matching assignments.
func (s *Server) syncStatusesHandler(c *fiber.Ctx) error {
	res, err := s.pipeline.SyncStatuses(c.Context(), tenantID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"pull":    res,
	})
}
