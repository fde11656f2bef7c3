package http

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"

	"outreach/internal/config"
	"outreach/internal/tenant"
)

// tenantMiddleware resolves the tenant id from the X-Tenant-Id header or
// the request body's tenant_id field and attaches it as "tenant_id".
func tenantMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var bodyID string
		if len(c.Body()) > 0 {
			var probe struct {
				TenantID string `json:"tenant_id"`
			}
			// Probe only; handlers parse the body themselves.
			_ = json.Unmarshal(c.Body(), &probe)
			bodyID = probe.TenantID
		}

		id, err := tenant.Resolve(c.Get("X-Tenant-Id"), bodyID)
		if err != nil {
			return fail(c, err)
		}

		c.Locals("tenant_id", id)
		return c.Next()
	}
}

// tenantID extracts the id set by tenantMiddleware.
func tenantID(c *fiber.Ctx) string {
	id, _ := c.Locals("tenant_id").(string)
	return id
}

// rateLimitMiddleware enforces a per-minute fixed-window rate limit per
// tenant using Redis.
func rateLimitMiddleware(cfg *config.Config, rdb *redis.Client) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limit := cfg.RateLimit.DefaultPerMinute
		if limit <= 0 {
			return c.Next()
		}

		now := time.Now().UTC()
		window := now.Format("200601021504") // YYYYMMDDHHMM minute window
		key := fmt.Sprintf("outreach:rl:%s:%s", tenantID(c), window)

		ctx := c.Context()
		count, err := rdb.Incr(ctx, key).Result()
		if err != nil {
			// Redis being down should not take the API with it.
			return c.Next()
		}
		if count == 1 {
			// First hit in this window; set TTL
			_ = rdb.Expire(ctx, key, time.Minute)
		}

		if count > int64(limit) {
			return c.Status(fiber.StatusTooManyRequests).JSON(ErrorResponse{
				Success: false,
				Code:    "RATE_LIMIT_EXCEEDED",
				Error:   "Rate limit exceeded, try again later",
			})
		}

		return c.Next()
	}
}
