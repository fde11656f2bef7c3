package lifecycle

import (
	"context"

	"github.com/robfig/cron/v3"
)

// StartScheduler runs the sweeps on the configured cron schedule until
// the context ends. It returns immediately; the cron runs in the
// background.
func (e *Engine) StartScheduler(ctx context.Context) (*cron.Cron, error) {
	schedule := e.cfg.Lifecycle.Schedule
	if schedule == "" {
		schedule = "0 3 * * *"
	}

	c := cron.New()
	if _, err := c.AddFunc(schedule, func() {
		e.RunSweeps(context.WithoutCancel(ctx))
	}); err != nil {
		return nil, err
	}
	c.Start()

	go func() {
		<-ctx.Done()
		c.Stop()
	}()

	e.logger.Info("lifecycle scheduler started", "schedule", schedule)
	return c, nil
}
