package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"log/slog"
	"os"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"outreach/internal/config"
	server "outreach/internal/http"
	"outreach/internal/jobs"
	"outreach/internal/lifecycle"
	"outreach/internal/migrate"
	"outreach/internal/pipeline"
	"outreach/internal/recordstore"
	"outreach/internal/scrape"
	"outreach/internal/store"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	role := flag.String("role", "all", "process role: api|worker|all")
	flag.Parse()

	cfg := config.Load(*configPath)

	// Run migrations on a short-lived connection
	if err := migrate.Run(cfg.Database.DSN, cfg.Database.MigrationsDir); err != nil {
		log.Fatalf("migrations failed: %v", err)
	}

	// Create a shared *sql.DB with pooling for the Store
	db, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		log.Fatalf("open db failed: %v", err)
	}
	if cfg.Database.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	} else {
		db.SetMaxOpenConns(20)
	}
	if cfg.Database.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	} else {
		db.SetMaxIdleConns(10)
	}
	if cfg.Database.ConnMaxLifetimeMinutes > 0 {
		db.SetConnMaxLifetime(time.Duration(cfg.Database.ConnMaxLifetimeMinutes) * time.Minute)
	} else {
		db.SetConnMaxLifetime(30 * time.Minute)
	}

	st := store.New(db)
	st.IngestDelay = time.Duration(cfg.Pipeline.IngestDelayMs) * time.Millisecond

	// Set up logger
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{}))

	records := recordstore.NewClient(cfg.RecordStore, logger)
	pl := pipeline.NewService(cfg, st, records, logger)
	lc := lifecycle.NewEngine(cfg, st, records, logger)

	rootCtx := context.Background()

	startWorker := func() {
		scraper := scrape.NewClient(cfg.Upstream, logger)
		exec := jobs.NewExecutor(st, scraper,
			time.Duration(cfg.Worker.SoftTimeLimitMinutes)*time.Minute,
			time.Duration(cfg.Worker.HardTimeLimitMinutes)*time.Minute,
			logger)
		runner := jobs.NewRunner(cfg, st, exec, logger)
		go runner.Start(rootCtx)

		if cfg.Lifecycle.Enabled {
			if _, err := lc.StartScheduler(rootCtx); err != nil {
				log.Fatalf("lifecycle scheduler failed: %v", err)
			}
		}
	}

	switch *role {
	case "api":
		// API-only: no background worker in this process.
		s := server.NewServer(cfg, st, pl, lc, records, logger)
		if err := s.Listen(); err != nil {
			log.Fatalf("server failed: %v", err)
		}
	case "worker":
		// Worker-only: run the job runner and sweeps, block forever.
		startWorker()
		select {}
	case "all":
		// Default: run both API and worker in one process.
		startWorker()
		s := server.NewServer(cfg, st, pl, lc, records, logger)
		if err := s.Listen(); err != nil {
			log.Fatalf("server failed: %v", err)
		}
	default:
		log.Fatalf("invalid role: %s (expected api|worker|all)", *role)
	}
}
