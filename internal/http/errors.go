package http

import (
	"database/sql"
	"errors"

	"github.com/gofiber/fiber/v2"

	"outreach/internal/jobs"
	"outreach/internal/pipeline"
	"outreach/internal/recordstore"
	"outreach/internal/scrape"
	"outreach/internal/store"
	"outreach/internal/tenant"
)

// errStatus maps a domain error to an HTTP status and stable error code.
func errStatus(err error) (int, string) {
	switch {
	case errors.Is(err, tenant.ErrRequired):
		return fiber.StatusBadRequest, "TENANT_REQUIRED"
	case errors.Is(err, tenant.ErrInvalid):
		return fiber.StatusBadRequest, "TENANT_INVALID"
	case errors.Is(err, sql.ErrNoRows):
		return fiber.StatusNotFound, "NOT_FOUND"
	case errors.Is(err, store.ErrNoProfilesAvailable):
		return fiber.StatusBadRequest, "NO_PROFILES_AVAILABLE"
	case errors.Is(err, jobs.ErrNoAccounts),
		errors.Is(err, jobs.ErrBadCount),
		errors.Is(err, jobs.ErrBadGender),
		errors.Is(err, scrape.ErrBadPlatform):
		return fiber.StatusBadRequest, "BAD_REQUEST"
	case errors.Is(err, pipeline.ErrAlreadyDistributed):
		return fiber.StatusConflict, "ALREADY_DISTRIBUTED"
	case errors.Is(err, pipeline.ErrNotDistributed):
		return fiber.StatusBadRequest, "NOT_DISTRIBUTED"
	case errors.Is(err, scrape.ErrUpstream):
		return fiber.StatusBadGateway, "UPSTREAM_ERROR"
	case errors.Is(err, recordstore.ErrUnavailable):
		return fiber.StatusBadGateway, "RECORD_STORE_UNAVAILABLE"
	default:
		return fiber.StatusInternalServerError, "INTERNAL_ERROR"
	}
}

func fail(c *fiber.Ctx, err error) error {
	status, code := errStatus(err)
	return c.Status(status).JSON(ErrorResponse{
		Success: false,
		Code:    code,
		Error:   err.Error(),
	})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
		Success: false,
		Code:    "BAD_REQUEST",
		Error:   msg,
	})
}
