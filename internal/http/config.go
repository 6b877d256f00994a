package http

import (
	"go.uber.org/zap"

	"github.com/mrlokans/library/internal/audit"
	"github.com/mrlokans/library/internal/catalog"
	"github.com/mrlokans/library/internal/circulation"
	"github.com/mrlokans/library/internal/fines"
)

// RouterConfig contains all dependencies and configuration needed
// to create the HTTP router.
type RouterConfig struct {
	// Core services
	Catalog     *catalog.Service
	Circulation *circulation.Service
	Fines       *fines.Engine
	Audit       *audit.Service

	// Health checks; nil reports "not configured"
	Database Pinger

	// Sweep schedule status (optional)
	Scheduler SweepStatus

	// Task queue client (optional); task routes are omitted when nil
	TaskClient TaskQueue

	// Application info
	Version string

	Logger *zap.Logger
}
