// Package worker runs the periodic daily challenge trigger.
package worker

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/scorecore/internal/config"
	"github.com/scorecore/internal/postgres"
	"github.com/scorecore/internal/redis"
	"github.com/scorecore/internal/scheduler"
	"github.com/scorecore/internal/websocket"
)

// ScheduleWorker fires the challenge scheduler on an interval. The interval
// can be much shorter than the scheduling period; the scheduler's claim
// makes extra ticks harmless.
type ScheduleWorker struct {
	scheduler *scheduler.Scheduler
	cache     *redis.CacheService
	postgres  *postgres.Repository
	hub       *websocket.Hub
	config    *config.SchedulerConfig
	logger    *slog.Logger
	stopCh    chan struct{}
	doneCh    chan struct{}
	mu        sync.Mutex
	running   bool
}

// NewScheduleWorker creates a new schedule worker
func NewScheduleWorker(
	sched *scheduler.Scheduler,
	cache *redis.CacheService,
	pg *postgres.Repository,
	hub *websocket.Hub,
	cfg *config.SchedulerConfig,
	logger *slog.Logger,
) *ScheduleWorker {
	return &ScheduleWorker{
		scheduler: sched,
		cache:     cache,
		postgres:  pg,
		hub:       hub,
		config:    cfg,
		logger:    logger,
		stopCh:    make(chan struct{}),
		doneCh:    make(chan struct{}),
	}
}

// Start begins the background scheduling process
func (w *ScheduleWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	w.logger.Info("schedule worker started", "interval", w.config.CheckInterval)

	go w.run(ctx)
	return nil
}

// Stop stops the background scheduling process
func (w *ScheduleWorker) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return nil
	}
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh

	w.mu.Lock()
	w.running = false
	w.mu.Unlock()

	w.logger.Info("schedule worker stopped")
	return nil
}

// run is the main worker loop
func (w *ScheduleWorker) run(ctx context.Context) {
	defer close(w.doneCh)

	// Run once immediately so the current period is covered without
	// waiting for the first tick.
	w.RunOnce(ctx)

	ticker := time.NewTicker(w.config.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.RunOnce(ctx)
		}
	}
}

// RunOnce runs a single scheduling attempt (useful for manual triggers)
func (w *ScheduleWorker) RunOnce(ctx context.Context) {
	event, err := w.scheduler.RunScheduledWork(ctx, time.Now())
	if err != nil {
		w.logger.Error("scheduling attempt failed", "error", err)
		return
	}
	if event == nil {
		// Lost the claim or the period is already scheduled.
		return
	}

	if err := w.cache.CacheSchedule(ctx, &event.Schedule); err != nil {
		w.logger.Warn("failed to cache new schedule", "error", err)
	}

	payload, err := json.Marshal(event)
	if err != nil {
		w.logger.Error("failed to marshal schedule event", "error", err)
	} else if err := w.postgres.RecordScheduleEvent(ctx, event, payload); err != nil {
		w.logger.Warn("failed to record schedule event", "error", err)
	}

	w.hub.BroadcastChallengeUpdate(event)
}

// IsRunning returns whether the worker is currently running
func (w *ScheduleWorker) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}
