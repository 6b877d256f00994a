package tasks

import (
	"fmt"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/library/internal/errs"
)

// TaskTypeInfo describes a task type that can be triggered by hand.
type TaskTypeInfo struct {
	Type        string `json:"type"`
	Description string `json:"description"`
	Queue       string `json:"queue"`
}

// RunParams are the optional knobs a manual run may carry.
type RunParams struct {
	RetentionDays int    `json:"retention_days,omitempty" form:"retention_days"`
	Trigger       string `json:"trigger,omitempty" form:"trigger"`
}

// Types lists the manually runnable task types.
func Types() []TaskTypeInfo {
	return []TaskTypeInfo{
		{
			Type:        "generate_fines",
			Description: "Assess fines for loans past their due date and mark them overdue",
			Queue:       GenerateFinesTask{}.Config().Name,
		},
		{
			Type:        "cleanup_audit_events",
			Description: "Delete audit events older than the retention period",
			Queue:       CleanupAuditEventsTask{}.Config().Name,
		},
	}
}

// NewTask builds the task for a type name. Unknown types are a validation
// error.
func NewTask(taskType string, params RunParams) (backlite.Task, error) {
	trigger := params.Trigger
	if trigger == "" {
		trigger = "manual"
	}
	switch taskType {
	case "generate_fines":
		return GenerateFinesTask{Trigger: trigger}, nil
	case "cleanup_audit_events":
		if params.RetentionDays < 0 {
			return nil, fmt.Errorf("%w: retention_days must not be negative", errs.ErrValidation)
		}
		return CleanupAuditEventsTask{RetentionDays: params.RetentionDays, Trigger: trigger}, nil
	default:
		return nil, fmt.Errorf("%w: unknown task type: %s", errs.ErrValidation, taskType)
	}
}
