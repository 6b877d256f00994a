package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/mrlokans/library/internal/audit"
	"github.com/mrlokans/library/internal/catalog"
	"github.com/mrlokans/library/internal/circulation"
	"github.com/mrlokans/library/internal/database"
	auditrepo "github.com/mrlokans/library/internal/database/audit"
	"github.com/mrlokans/library/internal/database/books"
	"github.com/mrlokans/library/internal/database/dbctx"
	finesrepo "github.com/mrlokans/library/internal/database/fines"
	"github.com/mrlokans/library/internal/database/loans"
	"github.com/mrlokans/library/internal/database/policies"
	"github.com/mrlokans/library/internal/database/students"
	"github.com/mrlokans/library/internal/database/suggestions"
	"github.com/mrlokans/library/internal/fines"
	"github.com/mrlokans/library/internal/http"
	"github.com/mrlokans/library/internal/scheduler"
	"github.com/mrlokans/library/internal/tasks"
)

// =============================================================================
// Data Access Layer
// =============================================================================

// Fine engine stores
var _ fines.LoanStore = (*loans.Repository)(nil)
var _ fines.FineStore = (*finesrepo.Repository)(nil)
var _ fines.PolicyStore = (*policies.Repository)(nil)
var _ fines.Transactor = (*dbctx.Transactor)(nil)

// Circulation stores
var _ circulation.BookStore = (*books.Repository)(nil)
var _ circulation.StudentStore = (*students.Repository)(nil)
var _ circulation.LoanStore = (*loans.Repository)(nil)
var _ circulation.Transactor = (*dbctx.Transactor)(nil)

// Catalog stores
var _ catalog.BookStore = (*books.Repository)(nil)
var _ catalog.StudentStore = (*students.Repository)(nil)
var _ catalog.SuggestionStore = (*suggestions.Repository)(nil)
var _ catalog.Transactor = (*dbctx.Transactor)(nil)

// Audit store
var _ audit.EventStore = (*auditrepo.Repository)(nil)

// =============================================================================
// Services
// =============================================================================

// The fine engine backs circulation
var _ circulation.FineEngine = (*fines.Engine)(nil)

// Audit service implementations
var _ fines.AuditLogger = (*audit.Service)(nil)
var _ circulation.AuditLogger = (*audit.Service)(nil)
var _ catalog.AuditLogger = (*audit.Service)(nil)
var _ tasks.AuditTrail = (*audit.Service)(nil)

// =============================================================================
// Background Work
// =============================================================================

var _ tasks.FineSweeper = (*fines.Engine)(nil)
var _ tasks.ReportArchiver = (*audit.Archive)(nil)
var _ http.TaskQueue = (*tasks.Client)(nil)
var _ http.SweepStatus = (*scheduler.FineSweepScheduler)(nil)
var _ http.Pinger = (*database.Database)(nil)
