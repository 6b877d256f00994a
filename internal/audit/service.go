// Package audit records a durable trail of circulation and fine events.
//
// Audit writes never fail the operation being audited: errors are logged
// and dropped.
package audit

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"github.com/mrlokans/library/internal/entities"
)

// EventStore persists audit events.
type EventStore interface {
	LogEvent(ctx context.Context, event *entities.AuditEvent) error
	GetEvents(ctx context.Context, eventType entities.AuditEventType, limit, offset int) ([]entities.AuditEvent, int64, error)
	GetEventsForEntity(ctx context.Context, entityType string, entityID uint) ([]entities.AuditEvent, error)
	DeleteOldEvents(retention time.Duration) (int64, error)
}

// Service provides high-level audit logging functionality.
type Service struct {
	repo EventStore
	log  *zap.Logger
}

// NewService creates a new audit service.
func NewService(repo EventStore, log *zap.Logger) *Service {
	return &Service{repo: repo, log: log.Named("audit")}
}

// Log records a generic audit event.
func (s *Service) Log(ctx context.Context, event *entities.AuditEvent) error {
	return s.repo.LogEvent(ctx, event)
}

// LogLoan records a loan lifecycle event (issue, return, lost).
func (s *Service) LogLoan(ctx context.Context, action string, loanID uint, description string, err error) {
	s.record(ctx, newEvent(entities.AuditEventLoan, action, "loan", loanID, description, nil, err))
}

// LogFine records a fine event (created, updated, paid, waived).
func (s *Service) LogFine(ctx context.Context, action string, fineID uint, description string, metadata map[string]any, err error) {
	s.record(ctx, newEvent(entities.AuditEventFine, action, "fine", fineID, description, metadata, err))
}

// LogPolicy records a fine policy change.
func (s *Service) LogPolicy(ctx context.Context, policyID uint, description string) {
	s.record(ctx, newEvent(entities.AuditEventPolicy, "policy_create", "policy", policyID, description, nil, nil))
}

// LogCatalog records a catalog or account change.
func (s *Service) LogCatalog(ctx context.Context, action, entityType string, entityID uint, description string) {
	s.record(ctx, newEvent(entities.AuditEventCatalog, action, entityType, entityID, description, nil, nil))
}

// LogSweep records the outcome of an overdue sweep.
func (s *Service) LogSweep(ctx context.Context, description string, metadata map[string]any, err error) {
	s.record(ctx, newEvent(entities.AuditEventSweep, "fine_sweep", "", 0, description, metadata, err))
}

// LogMaintenance records a housekeeping run. The event is written after the
// run, so a pruning run never deletes its own record.
func (s *Service) LogMaintenance(ctx context.Context, action, description string, metadata map[string]any, err error) {
	s.record(ctx, newEvent(entities.AuditEventMaintenance, action, "", 0, description, metadata, err))
}

// GetEvents retrieves paginated audit events, optionally of one type.
func (s *Service) GetEvents(ctx context.Context, eventType entities.AuditEventType, limit, offset int) ([]entities.AuditEvent, int64, error) {
	return s.repo.GetEvents(ctx, eventType, limit, offset)
}

// History returns every event recorded against one entity, oldest first.
func (s *Service) History(ctx context.Context, entityType string, entityID uint) ([]entities.AuditEvent, error) {
	return s.repo.GetEventsForEntity(ctx, entityType, entityID)
}

// DeleteOldEvents removes events older than the retention period.
func (s *Service) DeleteOldEvents(retention time.Duration) (int64, error) {
	return s.repo.DeleteOldEvents(retention)
}

func (s *Service) record(ctx context.Context, event *entities.AuditEvent) {
	if err := s.repo.LogEvent(ctx, event); err != nil {
		s.log.Warn("failed to log audit event",
			zap.String("action", event.Action),
			zap.Error(err))
	}
}

func newEvent(eventType entities.AuditEventType, action, entityType string, entityID uint, description string, metadata map[string]any, err error) *entities.AuditEvent {
	event := &entities.AuditEvent{
		EventType:   eventType,
		Action:      action,
		Description: truncate(description, 500),
		EntityType:  entityType,
		Status:      entities.AuditStatusSuccess,
	}
	if entityID != 0 {
		id := entityID
		event.EntityID = &id
	}
	if len(metadata) > 0 {
		if b, e := json.Marshal(metadata); e == nil {
			event.Metadata = string(b)
		}
	}
	if err != nil {
		event.Status = entities.AuditStatusFailed
		event.ErrorMsg = truncate(err.Error(), 500)
	}
	return event
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
