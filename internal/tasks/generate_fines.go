package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/mikestefanello/backlite"
	"go.uber.org/zap"

	"github.com/mrlokans/library/internal/fines"
)

// FineSweeper runs one overdue sweep.
type FineSweeper interface {
	GenerateFinesForOverdueBooks(ctx context.Context) (*fines.SweepReport, error)
}

// ReportArchiver keeps the full sweep report somewhere durable.
type ReportArchiver interface {
	SaveJSON(prefix, runID string, at time.Time, data any) (string, error)
}

// GenerateFinesTask runs the overdue sweep. Trigger records who asked for
// it ("schedule", "api", ...) and only shows up in logs.
type GenerateFinesTask struct {
	Trigger string `json:"trigger,omitempty"`
}

// Config returns the queue configuration for sweep tasks.
func (t GenerateFinesTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "generate_fines",
		MaxAttempts: 3,
		Backoff:     time.Minute,
		Timeout:     10 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   7 * 24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// GenerateFinesProcessor creates a processor function for GenerateFinesTask.
// archive may be nil. A failure to archive is logged but does not fail the
// task, since the fines themselves are already committed.
func GenerateFinesProcessor(sweeper FineSweeper, archive ReportArchiver, log *zap.Logger) backlite.QueueProcessor[GenerateFinesTask] {
	return func(ctx context.Context, task GenerateFinesTask) error {
		if sweeper == nil {
			return fmt.Errorf("fine sweeper not configured")
		}

		report, err := sweeper.GenerateFinesForOverdueBooks(ctx)
		if err != nil {
			return fmt.Errorf("generate fines: %w", err)
		}

		fields := []zap.Field{
			zap.String("run_id", report.RunID),
			zap.String("trigger", task.Trigger),
			zap.Int("evaluated", report.Evaluated),
			zap.Int("created", report.Count(fines.ActionCreated)),
			zap.Int("updated", report.Count(fines.ActionUpdated)),
			zap.Int("errors", len(report.Errors)),
		}

		if archive != nil {
			name, err := archive.SaveJSON("fine-sweep", report.RunID, report.StartedAt, report)
			if err != nil {
				log.Error("failed to archive sweep report", zap.String("run_id", report.RunID), zap.Error(err))
			} else {
				fields = append(fields, zap.String("archive", name))
			}
		}

		log.Info("fine sweep task finished", fields...)
		return nil
	}
}

// NewGenerateFinesQueue creates a backlite queue for sweep tasks.
func NewGenerateFinesQueue(sweeper FineSweeper, archive ReportArchiver, log *zap.Logger) backlite.Queue {
	return backlite.NewQueue(GenerateFinesProcessor(sweeper, archive, log))
}
