// Package scheduler wires the publication sweep to a cron cadence. It is one
// of the two trigger paths into publisher.Sweep; the other is the on-demand
// HTTP endpoint. The cron tick is the authoritative path: it guarantees
// eventual publication whether or not any client is watching a countdown.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/kreyolab/formations/internal/publisher"
	"github.com/robfig/cron/v3"
)

// Start registers the sweep on cronExpr (e.g. "*/2 * * * *") and starts the
// cron runner. The returned cron can be stopped by the caller on shutdown.
func Start(sweeper *publisher.Sweeper, cronExpr string) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(cronExpr, func() {
		runSweep(sweeper)
	})
	if err != nil {
		return nil, err
	}
	c.Start()
	slog.Info("publication sweep scheduled", "cron", cronExpr)
	return c, nil
}

// runSweep executes one sweep and logs a structured summary. A failed run is
// logged and dropped; the next tick retries.
func runSweep(sweeper *publisher.Sweeper) {
	start := time.Now()
	res, err := sweeper.Sweep(context.Background())
	if err != nil {
		slog.Error("publication sweep failed",
			"duration_ms", time.Since(start).Milliseconds(),
			"error", err)
		return
	}
	slog.Info("publication sweep finished",
		"published", res.Count,
		"duration_ms", time.Since(start).Milliseconds())
}
