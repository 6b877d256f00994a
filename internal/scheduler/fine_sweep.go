// Package scheduler fires the daily fine sweep and audit cleanup on cron
// schedules. What a firing does is supplied as a Trigger, so the server can
// enqueue a background task while tests call RunNow directly.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Trigger performs one scheduled run.
type Trigger func(ctx context.Context) error

type Config struct {
	Enabled         bool
	Schedule        string // fine sweep
	CleanupSchedule string // audit cleanup; empty disables
}

// RunStatus describes the most recent sweep trigger.
type RunStatus struct {
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration"`
	Error     string        `json:"error,omitempty"`
}

// Status is a snapshot for the API.
type Status struct {
	Enabled  bool       `json:"enabled"`
	Running  bool       `json:"running"`
	Schedule string     `json:"schedule"`
	Describe string     `json:"description"`
	NextRun  *time.Time `json:"next_run,omitempty"`
	LastRun  *RunStatus `json:"last_run,omitempty"`
}

// FineSweepScheduler manages the daily overdue sweep.
type FineSweepScheduler struct {
	cfg     Config
	sweep   Trigger
	cleanup Trigger
	log     *zap.Logger

	cron         *cron.Cron
	sweepEntry   cron.EntryID
	cleanupEntry cron.EntryID
	mu           sync.RWMutex
	isRunning    bool
	ctx          context.Context
	cancelFunc   context.CancelFunc

	statusMu sync.RWMutex
	lastRun  *RunStatus
}

// NewFineSweepScheduler creates a new scheduler instance. cleanup may be nil.
func NewFineSweepScheduler(cfg Config, sweep, cleanup Trigger, log *zap.Logger) *FineSweepScheduler {
	return &FineSweepScheduler{
		cfg:     cfg,
		sweep:   sweep,
		cleanup: cleanup,
		log:     log.Named("scheduler"),
		cron:    cron.New(cron.WithParser(parser)),
	}
}

// Start begins the scheduler if the sweep is enabled.
func (s *FineSweepScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if !s.cfg.Enabled {
		s.log.Info("fine sweep scheduler disabled")
		return nil
	}

	if err := ValidateCronSchedule(s.cfg.Schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.cfg.Schedule, err)
	}
	if s.cleanup != nil && s.cfg.CleanupSchedule != "" {
		if err := ValidateCronSchedule(s.cfg.CleanupSchedule); err != nil {
			return fmt.Errorf("invalid cleanup schedule '%s': %w", s.cfg.CleanupSchedule, err)
		}
	}

	s.ctx, s.cancelFunc = context.WithCancel(ctx)

	entryID, err := s.cron.AddFunc(s.cfg.Schedule, func() {
		_ = s.runSweep(s.ctx)
	})
	if err != nil {
		s.cancelFunc()
		return fmt.Errorf("failed to schedule fine sweep: %w", err)
	}
	s.sweepEntry = entryID

	if s.cleanup != nil && s.cfg.CleanupSchedule != "" {
		entryID, err := s.cron.AddFunc(s.cfg.CleanupSchedule, func() {
			if err := s.cleanup(s.ctx); err != nil {
				s.log.Error("audit cleanup trigger failed", zap.Error(err))
			}
		})
		if err != nil {
			s.cron.Remove(s.sweepEntry)
			s.cancelFunc()
			return fmt.Errorf("failed to schedule audit cleanup: %w", err)
		}
		s.cleanupEntry = entryID
	}

	s.cron.Start()
	s.isRunning = true

	nextRun, _ := NextRunTime(s.cfg.Schedule, time.Now())
	s.log.Info("fine sweep scheduler started",
		zap.String("schedule", s.cfg.Schedule),
		zap.String("description", CronDescription(s.cfg.Schedule)),
		zap.Timep("next_run", nextRun))

	done := s.ctx.Done()
	go func() {
		<-done
		s.Stop()
	}()

	return nil
}

// Stop gracefully stops the scheduler, waiting for a running sweep.
func (s *FineSweepScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	stopped := s.cron.Stop()
	<-stopped.Done()

	s.cron.Remove(s.sweepEntry)
	if s.cleanupEntry != 0 {
		s.cron.Remove(s.cleanupEntry)
		s.cleanupEntry = 0
	}
	s.cancelFunc()
	s.isRunning = false

	s.log.Info("fine sweep scheduler stopped")
}

// RunNow runs the sweep trigger synchronously.
func (s *FineSweepScheduler) RunNow(ctx context.Context) error {
	return s.runSweep(ctx)
}

// IsRunning returns whether the scheduler is active.
func (s *FineSweepScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// GetNextRunTime returns when the next sweep will occur.
func (s *FineSweepScheduler) GetNextRunTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}

	entry := s.cron.Entry(s.sweepEntry)
	if !entry.Valid() {
		return nil
	}
	next := entry.Next
	return &next
}

// LastRun returns the outcome of the most recent sweep trigger, if any.
func (s *FineSweepScheduler) LastRun() *RunStatus {
	s.statusMu.RLock()
	defer s.statusMu.RUnlock()
	if s.lastRun == nil {
		return nil
	}
	status := *s.lastRun
	return &status
}

// Status reports the schedule and the latest trigger outcome.
func (s *FineSweepScheduler) Status() Status {
	return Status{
		Enabled:  s.cfg.Enabled,
		Running:  s.IsRunning(),
		Schedule: s.cfg.Schedule,
		Describe: CronDescription(s.cfg.Schedule),
		NextRun:  s.GetNextRunTime(),
		LastRun:  s.LastRun(),
	}
}

func (s *FineSweepScheduler) runSweep(ctx context.Context) error {
	start := time.Now()
	err := s.sweep(ctx)

	status := &RunStatus{StartedAt: start, Duration: time.Since(start)}
	if err != nil {
		status.Error = err.Error()
		s.log.Error("fine sweep trigger failed", zap.Error(err))
	} else {
		s.log.Info("fine sweep triggered", zap.Duration("duration", status.Duration))
	}

	s.statusMu.Lock()
	s.lastRun = status
	s.statusMu.Unlock()
	return err
}
