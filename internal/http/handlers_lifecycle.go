package http

import (
	"github.com/gofiber/fiber/v2"
)

func (s *Server) markUnfollowDueHandler(c *fiber.Ctx) error {
	stats, err := s.lifecycle.MarkUnfollowDue(c.Context(), tenantID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"stats":   stats,
	})
}

func (s *Server) deleteCompletedHandler(c *fiber.Ctx) error {
	stats, err := s.lifecycle.DeleteCompletedAfterDelay(c.Context(), tenantID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"stats":   stats,
	})
}
