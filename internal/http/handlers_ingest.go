package http

import (
	"github.com/gofiber/fiber/v2"

	"outreach/internal/metrics"
	"outreach/internal/store"
)

// ingestHandler bulk-loads profiles into the raw table and the
// deduplicated global pool.
func (s *Server) ingestHandler(c *fiber.Ctx) error {
	var req IngestRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid JSON body")
	}
	if len(req.Profiles) == 0 {
		return badRequest(c, "profiles must not be empty")
	}

	profiles := make([]store.ProfileInput, len(req.Profiles))
	for i, p := range req.Profiles {
		profiles[i] = store.ProfileInput{
			ID:          p.ProfileID,
			Username:    p.Username,
			DisplayName: p.DisplayName,
		}
	}

	stats, err := s.store.IngestProfiles(c.Context(), tenantID(c), profiles)
	if err != nil {
		return fail(c, err)
	}

	metrics.RecordIngest(stats.InsertedRaw, stats.AddedToGlobal, stats.SkippedExisting)
	s.logger.Info("profiles ingested",
		"tenant_id", tenantID(c),
		"received", stats.Received,
		"inserted_raw", stats.InsertedRaw,
		"added_to_global", stats.AddedToGlobal,
		"skipped_existing", stats.SkippedExisting)

	return c.JSON(fiber.Map{
		"success": true,
		"stats":   stats,
	})
}
