package scheduler

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// RefreshFunc re-imports the dataset
type RefreshFunc func(ctx context.Context) error

// RefreshTriggerConfig holds configuration for the daily dataset refresh
type RefreshTriggerConfig struct {
	// Hour and Minute give the UTC time of day to refresh
	Hour   int
	Minute int

	// CheckInterval is how often to check if it's time to run
	CheckInterval time.Duration

	// Timeout bounds a single refresh
	Timeout time.Duration
}

// DefaultRefreshTriggerConfig returns default refresh configuration
func DefaultRefreshTriggerConfig() RefreshTriggerConfig {
	return RefreshTriggerConfig{
		Hour:          defaultHour,
		Minute:        defaultMinute,
		CheckInterval: time.Minute,
		Timeout:       5 * time.Minute,
	}
}

// RefreshTrigger runs a dataset refresh once a day at a fixed UTC time
type RefreshTrigger struct {
	config  RefreshTriggerConfig
	refresh RefreshFunc
	logger  *zap.Logger
	now     func() time.Time

	cancel      context.CancelFunc
	wg          sync.WaitGroup
	mu          sync.Mutex
	isRunning   bool
	lastRunDate string
}

// NewRefreshTrigger creates a new refresh trigger
func NewRefreshTrigger(config RefreshTriggerConfig, refresh RefreshFunc, logger *zap.Logger) *RefreshTrigger {
	defaults := DefaultRefreshTriggerConfig()
	if config.CheckInterval <= 0 {
		config.CheckInterval = defaults.CheckInterval
	}
	if config.Timeout <= 0 {
		config.Timeout = defaults.Timeout
	}
	return &RefreshTrigger{
		config:  config,
		refresh: refresh,
		logger:  logger,
		now:     time.Now,
	}
}

// Start starts the trigger loop. Calling Start on a running trigger is a no-op.
func (r *RefreshTrigger) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.isRunning {
		return
	}
	r.isRunning = true

	ctx, r.cancel = context.WithCancel(ctx)
	r.wg.Add(1)
	go r.runLoop(ctx)

	r.logger.Info("Dataset refresh trigger started",
		zap.Int("hour_utc", r.config.Hour),
		zap.Int("minute_utc", r.config.Minute),
		zap.Duration("check_interval", r.config.CheckInterval),
	)
}

// Stop stops the trigger and waits for a running refresh to finish or for
// ctx to expire
func (r *RefreshTrigger) Stop(ctx context.Context) error {
	r.mu.Lock()
	if !r.isRunning {
		r.mu.Unlock()
		return nil
	}
	r.isRunning = false
	cancel := r.cancel
	r.mu.Unlock()

	cancel()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		r.logger.Info("Dataset refresh trigger stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *RefreshTrigger) runLoop(ctx context.Context) {
	defer r.wg.Done()

	ticker := time.NewTicker(r.config.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.checkAndTrigger(ctx)
		}
	}
}

// checkAndTrigger runs the refresh when the clock matches the configured
// time and it has not run yet today. It reports whether it ran.
func (r *RefreshTrigger) checkAndTrigger(ctx context.Context) bool {
	now := r.now().UTC()
	if now.Hour() != r.config.Hour || now.Minute() != r.config.Minute {
		return false
	}

	currentDate := now.Format("2006-01-02")
	r.mu.Lock()
	if r.lastRunDate == currentDate {
		r.mu.Unlock()
		return false
	}
	r.lastRunDate = currentDate
	r.mu.Unlock()

	r.logger.Info("Triggering scheduled dataset refresh")
	runCtx, cancel := context.WithTimeout(ctx, r.config.Timeout)
	defer cancel()

	start := time.Now()
	if err := r.refresh(runCtx); err != nil {
		r.logger.Error("Scheduled dataset refresh failed", zap.Error(err))
		return true
	}
	r.logger.Info("Scheduled dataset refresh completed", zap.Duration("duration", time.Since(start)))
	return true
}
