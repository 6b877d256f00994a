// Package interfaces documents the core abstractions used throughout the application.
//
// Services declare the narrow interfaces they consume; concrete gorm
// repositories and services satisfy them. checks.go pins every pairing at
// compile time.
//
// # Interface Categories
//
// ## Data Access Interfaces
//
//   - fines.LoanStore, fines.FineStore, fines.PolicyStore: fine engine storage (internal/fines/engine.go)
//   - circulation.BookStore, circulation.StudentStore, circulation.LoanStore: loan lifecycle storage (internal/circulation/service.go)
//   - catalog.BookStore, catalog.StudentStore, catalog.SuggestionStore: catalog storage (internal/catalog/service.go)
//   - audit.EventStore: audit trail storage (internal/audit/service.go)
//   - Transactor: runs a closure in one database transaction carried by the context (internal/database/dbctx)
//
// ## Service Interfaces
//
//   - circulation.FineEngine: fine assessment used by returns and lost copies
//   - AuditLogger (per package): records domain events
//
// ## Background Work Interfaces
//
//   - tasks.FineSweeper, tasks.AuditTrail: work run by the queue
//   - tasks.ReportArchiver: keeps sweep reports on disk
//   - http.TaskQueue, http.SweepStatus: what the API needs from the queue and scheduler
//
// # Adding a New Database Domain
//
// To add a new data domain (e.g., reservations):
//
//  1. Create sub-package: internal/database/reservations/
//
//  2. Define repository:
//
//     type Repository struct { db *gorm.DB }
//
//     func NewRepository(db *gorm.DB) *Repository
//
//  3. Implement interface methods, reading the connection with
//     dbctx.Conn(ctx, r.db) so calls join an open transaction
//
//  4. Add the model to database.Models and the repository to database.Database
//
//  5. Add compile-time check:
//
//     var _ reservation.Store = (*reservations.Repository)(nil)
//
// # Adding a New Background Task
//
//  1. Define the task type with a Config() backlite.QueueConfig in internal/tasks/
//
//  2. Write a processor and a NewXQueue constructor
//
//  3. Register the queue in entrypoint.go and list it in tasks.Types
//
// # Compile-Time Interface Checks
//
// All implementations should include compile-time checks to ensure they satisfy
// their interfaces. This catches missing methods at compile time rather than runtime:
//
//	var _ SomeInterface = (*MyImplementation)(nil)
//
// See checks.go for examples.
package interfaces
