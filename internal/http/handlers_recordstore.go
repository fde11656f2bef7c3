package http

import (
	"github.com/gofiber/fiber/v2"
)

// createBaseHandler provisions the tenant's queue tables in the external
// record store and remembers the queue count.
func (s *Server) createBaseHandler(c *fiber.Ctx) error {
	var req CreateBaseRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid JSON body")
	}
	if req.NumQueues <= 0 {
		return badRequest(c, "num_queues must be positive")
	}

	res, err := s.records.ProvisionQueueTables(c.Context(), tenantID(c), req.NumQueues)
	if err != nil {
		return fail(c, err)
	}

	if err := s.store.SetTenantQueueCount(c.Context(), tenantID(c), req.NumQueues); err != nil {
		return fail(c, err)
	}

	s.logger.Info("base provisioned",
		"tenant_id", tenantID(c),
		"num_queues", req.NumQueues,
		"created", res.Created,
		"skipped", res.Skipped,
		"failed", len(res.Failed))

	return c.JSON(fiber.Map{
		"success":   true,
		"provision": res,
	})
}

// verifyBaseHandler compares the base's schema against the expected
// queue table set. num_queues defaults to the resolved queue count.
func (s *Server) verifyBaseHandler(c *fiber.Ctx) error {
	var req CreateBaseRequest
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return badRequest(c, "invalid JSON body")
		}
	}

	n := req.NumQueues
	if n <= 0 {
		n = s.pipeline.QueueCount(c.Context(), tenantID(c))
	}

	res, err := s.records.VerifyQueueTables(c.Context(), tenantID(c), n)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"verify":  res,
	})
}
