package http

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"outreach/internal/config"
	"outreach/internal/lifecycle"
	"outreach/internal/metrics"
	"outreach/internal/pipeline"
	"outreach/internal/recordstore"
	"outreach/internal/store"
)

type Server struct {
	app       *fiber.App
	config    *config.Config
	store     *store.Store
	pipeline  *pipeline.Service
	lifecycle *lifecycle.Engine
	records   *recordstore.Client
	logger    *slog.Logger
}

func NewServer(cfg *config.Config, st *store.Store, pl *pipeline.Service, lc *lifecycle.Engine, rc *recordstore.Client, logger *slog.Logger) *Server {
	app := fiber.New()

	s := &Server{
		app:       app,
		config:    cfg,
		store:     st,
		pipeline:  pl,
		lifecycle: lc,
		records:   rc,
		logger:    logger,
	}

	if len(cfg.CORS.AllowedOrigins) > 0 {
		app.Use(cors.New(cors.Config{
			AllowOrigins: strings.Join(cfg.CORS.AllowedOrigins, ","),
			AllowHeaders: "Origin, Content-Type, Accept, X-Tenant-Id",
		}))
	}

	// Request logging + metrics middleware
	app.Use(func(c *fiber.Ctx) error {
		start := time.Now()

		// Ensure a request ID exists
		reqID := c.Get("X-Request-Id")
		if reqID == "" {
			reqID = uuid.New().String()
		}
		c.Locals("request_id", reqID)

		err := c.Next()

		latency := time.Since(start)
		status := c.Response().StatusCode()
		method := c.Method()
		path := c.Path()

		metrics.RecordRequest(method, path, status, latency.Milliseconds())

		if logger != nil {
			logger.Info("request",
				"request_id", reqID,
				"method", method,
				"path", path,
				"status", status,
				"latency_ms", latency.Milliseconds(),
			)
		}

		return err
	})

	// Redis client for rate limiting and health checks
	var rdb *redis.Client
	if cfg.Redis.URL != "" {
		if opt, err := redis.ParseURL(cfg.Redis.URL); err == nil {
			rdb = redis.NewClient(opt)
		}
	}

	// Health endpoints
	app.Get("/healthz", func(c *fiber.Ctx) error {
		// Shallow health: process is up
		if c.Query("deep") != "true" {
			return c.JSON(fiber.Map{"status": "ok"})
		}

		// Deep health: check DB and Redis connectivity.
		ctx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
		defer cancel()

		dbStatus := "ok"
		if err := st.DB.PingContext(ctx); err != nil {
			dbStatus = "error"
		}

		redisStatus := "disabled"
		if rdb != nil {
			if err := rdb.Ping(ctx).Err(); err != nil {
				redisStatus = "error"
			} else {
				redisStatus = "ok"
			}
		}

		status := "ok"
		if dbStatus != "ok" || redisStatus == "error" {
			status = "error"
		}

		return c.JSON(fiber.Map{
			"status": status,
			"db":     dbStatus,
			"redis":  redisStatus,
		})
	})

	// Prometheus-style metrics endpoint
	app.Get("/metrics", func(c *fiber.Ctx) error {
		c.Type("text/plain")
		return c.SendString(metrics.Export())
	})

	var rateMw fiber.Handler
	if rdb != nil {
		rateMw = rateLimitMiddleware(cfg, rdb)
	} else {
		rateMw = func(c *fiber.Ctx) error { return c.Next() }
	}

	api := app.Group("/api", tenantMiddleware(), rateMw)
	s.registerRoutes(api)

	return s
}

func (s *Server) Listen() error {
	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)
	return s.app.Listen(addr)
}

func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

func (s *Server) registerRoutes(group fiber.Router) {
	group.Post("/scrape-followers", s.scrapeFollowersHandler)
	group.Get("/job-status/:id", s.jobStatusHandler)
	group.Get("/job-results/:id", s.jobResultsHandler)

	group.Post("/ingest", s.ingestHandler)

	group.Post("/run-daily", s.runDailyHandler)
	group.Post("/daily-selection", s.dailySelectionHandler)
	group.Post("/distribute/:campaign_id", s.distributeHandler)
	group.Post("/sync-campaign/:campaign_id", s.syncCampaignHandler)
	group.Post("/sync-statuses", s.syncStatusesHandler)

	group.Post("/mark-unfollow-due", s.markUnfollowDueHandler)
	group.Post("/delete-completed-after-delay", s.deleteCompletedHandler)

	group.Post("/recordstore/create-base", s.createBaseHandler)
	group.Post("/recordstore/verify-base", s.verifyBaseHandler)
}
