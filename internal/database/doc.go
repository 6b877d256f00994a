// Package database provides the data access layer for the application.
//
// # Architecture
//
// The database layer is organized into domain-specific sub-packages:
//
//	database/
//	├── database.go      # Connection setup, migrations, repository wiring
//	├── dbctx/           # Transactions carried through context.Context
//	├── books/           # Catalog and copy counters
//	├── students/        # Student accounts
//	├── loans/           # Loan ledger and status transitions
//	├── fines/           # Fine ledger
//	├── policies/        # Fine policy rows
//	├── suggestions/     # Student book suggestions
//	└── audit/           # Audit events
//
// # Transactions
//
// Every repository method takes a context and resolves its connection with
// dbctx.Conn. Services open a unit of work with Database.Tx:
//
//	err := db.Tx.WithinTransaction(ctx, func(ctx context.Context) error {
//		if err := db.Loans.CreateLoan(ctx, loan); err != nil {
//			return err
//		}
//		return db.Books.AdjustAvailableCopies(ctx, loan.BookID, -1)
//	})
//
// Services depend on small interfaces declared next to them; the
// repositories satisfy those interfaces (see internal/interfaces/checks.go).
//
// # Errors
//
// Lookups by ID translate gorm.ErrRecordNotFound into errs.ErrNotFound, and
// guarded status updates that match no row return errs.ErrInvalidTransition.
package database
