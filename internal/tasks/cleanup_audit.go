package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mikestefanello/backlite"
	"go.uber.org/zap"
)

// DefaultAuditRetentionDays applies when a cleanup task carries no retention.
const DefaultAuditRetentionDays = 90

// AuditTrail is the audit store the cleanup prunes. Each run is recorded back
// into it, successful or not, so pruning leaves its own trace.
type AuditTrail interface {
	DeleteOldEvents(retention time.Duration) (int64, error)
	LogMaintenance(ctx context.Context, action, description string, metadata map[string]any, err error)
}

// CleanupAuditEventsTask prunes audit events older than RetentionDays.
// Trigger records who asked for it, as on GenerateFinesTask.
type CleanupAuditEventsTask struct {
	RetentionDays int    `json:"retention_days"`
	Trigger       string `json:"trigger,omitempty"`
}

func (t CleanupAuditEventsTask) retentionDays() int {
	if t.RetentionDays <= 0 {
		return DefaultAuditRetentionDays
	}
	return t.RetentionDays
}

// Config returns the queue configuration for audit cleanup tasks.
func (t CleanupAuditEventsTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "cleanup_audit_events",
		MaxAttempts: 3,
		Backoff:     5 * time.Minute,
		Timeout:     2 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// CleanupAuditEventsProcessor prunes the trail and records the run in it.
// A failed run is recorded too and returned so backlite retries it.
func CleanupAuditEventsProcessor(trail AuditTrail, log *zap.Logger) backlite.QueueProcessor[CleanupAuditEventsTask] {
	return func(ctx context.Context, task CleanupAuditEventsTask) error {
		if trail == nil {
			return errors.New("audit trail not configured")
		}

		days := task.retentionDays()
		started := time.Now()
		deleted, err := trail.DeleteOldEvents(time.Duration(days) * 24 * time.Hour)
		elapsed := time.Since(started)

		metadata := map[string]any{
			"retention_days": days,
			"trigger":        task.Trigger,
			"deleted":        deleted,
			"duration_ms":    elapsed.Milliseconds(),
		}
		if err != nil {
			err = fmt.Errorf("prune audit events: %w", err)
			trail.LogMaintenance(ctx, "audit_cleanup",
				fmt.Sprintf("Audit cleanup failed (retention %d days)", days), metadata, err)
			return err
		}

		trail.LogMaintenance(ctx, "audit_cleanup",
			fmt.Sprintf("Removed %d audit events older than %d days", deleted, days), metadata, nil)
		log.Info("audit events pruned",
			zap.Int64("deleted", deleted),
			zap.Int("retention_days", days),
			zap.String("trigger", task.Trigger),
			zap.Duration("duration", elapsed))
		return nil
	}
}

// NewCleanupAuditEventsQueue creates a backlite queue for audit cleanup tasks.
func NewCleanupAuditEventsQueue(trail AuditTrail, log *zap.Logger) backlite.Queue {
	return backlite.NewQueue(CleanupAuditEventsProcessor(trail, log))
}
