package cleanup

import (
	"context"
	"log/slog"
	"time"
)

// Sweeper removes expired entries and reports how many were dropped
type Sweeper interface {
	SweepExpired(ctx context.Context) (int, error)
}

// Cleaner periodically sweeps expired view sessions
type Cleaner struct {
	sweeper  Sweeper
	interval time.Duration
}

// NewCleaner creates a new cleanup worker
func NewCleaner(sweeper Sweeper, interval time.Duration) *Cleaner {
	if interval <= 0 {
		interval = 5 * time.Minute
	}

	return &Cleaner{
		sweeper:  sweeper,
		interval: interval,
	}
}

// Start begins the cleanup worker in a goroutine
func (c *Cleaner) Start(ctx context.Context) {
	go c.run(ctx)
}

// run is the main loop for the cleanup worker
func (c *Cleaner) run(ctx context.Context) {
	slog.Info("cleanup worker started", "interval", c.interval)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	c.cleanup(ctx)

	for {
		select {
		case <-ctx.Done():
			slog.Info("cleanup worker stopped")
			return
		case <-ticker.C:
			c.cleanup(ctx)
		}
	}
}

// cleanup runs one sweep cycle
func (c *Cleaner) cleanup(ctx context.Context) int {
	slog.Debug("running cleanup cycle")

	removed, err := c.sweeper.SweepExpired(ctx)
	if err != nil {
		slog.Error("failed to sweep expired sessions", "error", err)
		return 0
	}

	if removed == 0 {
		slog.Debug("no expired sessions found")
		return 0
	}

	slog.Info("expired sessions removed", "count", removed)
	return removed
}
