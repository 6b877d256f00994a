// Package circulation implements the loan state machine: issuing books,
// returning them, the overdue sweep and declaring copies lost.
//
//	issued ──sweep──▶ overdue ──return──▶ returned
//	   │                 │
//	   ├──────return─────┼──────────────▶ returned
//	   └──mark lost──────┴──────────────▶ lost
//
// Every operation that touches more than one row runs in a single database
// transaction, so a failed Issue never leaves a decremented copy counter
// behind and a Return never records a fine without closing the loan.
package circulation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/mrlokans/library/internal/entities"
	"github.com/mrlokans/library/internal/errs"
	"github.com/mrlokans/library/internal/fines"
)

// DefaultLoanDays is the loan period used when Issue gets no due date.
const DefaultLoanDays = 14

type BookStore interface {
	GetBookByID(ctx context.Context, id uint) (*entities.Book, error)
	AdjustAvailableCopies(ctx context.Context, id uint, delta int) error
	RetireCopy(ctx context.Context, id uint) error
}

type StudentStore interface {
	GetStudentByID(ctx context.Context, id uint) (*entities.Student, error)
}

type LoanStore interface {
	CreateLoan(ctx context.Context, loan *entities.Loan) error
	GetLoanByID(ctx context.Context, id uint) (*entities.Loan, error)
	FindActiveLoan(ctx context.Context, studentID, bookID uint) (*entities.Loan, error)
	CountActiveLoans(ctx context.Context, studentID uint) (int64, error)
	ListLoansForStudent(ctx context.Context, studentID uint, status entities.LoanStatus) ([]entities.Loan, error)
	MarkReturned(ctx context.Context, id uint, returnedAt time.Time) error
	MarkLost(ctx context.Context, id uint, notes string) error
}

// FineEngine is the part of fines.Engine the loan lifecycle drives.
type FineEngine interface {
	AssessFine(ctx context.Context, loan entities.Loan, at time.Time) (*fines.Assessment, error)
	GenerateFinesForOverdueBooks(ctx context.Context) (*fines.SweepReport, error)
}

type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type AuditLogger interface {
	LogLoan(ctx context.Context, action string, loanID uint, description string, err error)
}

type Dependencies struct {
	Books    BookStore
	Students StudentStore
	Loans    LoanStore
	Fines    FineEngine
	Tx       Transactor
	Audit    AuditLogger // optional
}

type Service struct {
	books    BookStore
	students StudentStore
	loans    LoanStore
	fines    FineEngine
	tx       Transactor
	audit    AuditLogger
	log      *zap.Logger

	now      func() time.Time
	loanDays int
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithLoanDays sets the default loan period.
func WithLoanDays(days int) Option {
	return func(s *Service) {
		if days > 0 {
			s.loanDays = days
		}
	}
}

func NewService(deps Dependencies, log *zap.Logger, opts ...Option) *Service {
	s := &Service{
		books:    deps.Books,
		students: deps.Students,
		loans:    deps.Loans,
		fines:    deps.Fines,
		tx:       deps.Tx,
		audit:    deps.Audit,
		log:      log.Named("circulation"),
		now:      func() time.Time { return time.Now().UTC() },
		loanDays: DefaultLoanDays,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// EndOfDay returns the last instant of t's calendar day in UTC. Due dates are
// stored this way so a return at any time on the due day is on time.
func EndOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 23, 59, 59, int(time.Second-time.Nanosecond), time.UTC)
}

// Issue lends a copy of a book to a student. A zero dueDate means the
// default loan period from today.
func (s *Service) Issue(ctx context.Context, studentID, bookID uint, dueDate time.Time) (*entities.Loan, error) {
	now := s.now()
	if dueDate.IsZero() {
		dueDate = now.AddDate(0, 0, s.loanDays)
	}
	dueDate = EndOfDay(dueDate)
	if !dueDate.After(now) {
		return nil, fmt.Errorf("%w: due date %s is in the past", errs.ErrValidation, dueDate.Format(time.DateOnly))
	}

	var loan *entities.Loan
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		student, err := s.students.GetStudentByID(ctx, studentID)
		if err != nil {
			return err
		}
		if !student.IsActive {
			return fmt.Errorf("student %d is inactive: %w", studentID, errs.ErrUnavailable)
		}

		book, err := s.books.GetBookByID(ctx, bookID)
		if err != nil {
			return err
		}
		if !book.IsActive {
			return fmt.Errorf("book %d is inactive: %w", bookID, errs.ErrUnavailable)
		}
		if book.AvailableCopies <= 0 {
			return fmt.Errorf("book %d has no available copies: %w", bookID, errs.ErrUnavailable)
		}

		if _, err := s.loans.FindActiveLoan(ctx, studentID, bookID); err == nil {
			return fmt.Errorf("student %d, book %d: %w", studentID, bookID, errs.ErrDuplicateLoan)
		} else if !errors.Is(err, errs.ErrNotFound) {
			return err
		}

		active, err := s.loans.CountActiveLoans(ctx, studentID)
		if err != nil {
			return err
		}
		if active >= int64(student.MaxBooksAllowed) {
			return fmt.Errorf("student %d has %d of %d books: %w", studentID, active, student.MaxBooksAllowed, errs.ErrLimitExceeded)
		}

		loan = &entities.Loan{
			BookID:    bookID,
			StudentID: studentID,
			IssueDate: now,
			DueDate:   dueDate,
			Status:    entities.LoanStatusIssued,
		}
		if err := s.loans.CreateLoan(ctx, loan); err != nil {
			return fmt.Errorf("create loan: %w", err)
		}
		if err := s.books.AdjustAvailableCopies(ctx, bookID, -1); err != nil {
			return err
		}
		loan.Book = *book
		loan.Book.AvailableCopies--
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("book issued",
		zap.Uint("loan_id", loan.ID),
		zap.Uint("student_id", studentID),
		zap.Uint("book_id", bookID),
		zap.Time("due_date", loan.DueDate))
	if s.audit != nil {
		s.audit.LogLoan(ctx, "loan_issue", loan.ID,
			fmt.Sprintf("Issued %q to student %d, due %s", loan.Book.Title, studentID, loan.DueDate.Format(time.DateOnly)), nil)
	}
	return loan, nil
}

// ReturnResult is a closed loan and what closing it did to its fines. Fine
// is the pending fine the student owes for the loan. Cleared is a pending
// fine an earlier evaluation left behind that the closing one found was not
// owed.
type ReturnResult struct {
	Loan       *entities.Loan     `json:"loan"`
	FineAction fines.UpsertAction `json:"fine_action"`
	Fine       *entities.Fine     `json:"fine,omitempty"`
	Cleared    *entities.Fine     `json:"cleared_fine,omitempty"`
}

func (r *ReturnResult) apply(a *fines.Assessment) {
	r.FineAction = a.Action
	if a.Fine == nil {
		return
	}
	if a.Fine.Status == entities.FineStatusPending {
		r.Fine = a.Fine
	} else {
		r.Cleared = a.Fine
	}
}

// Return closes a loan. A zero returnDate means now. The loan's fine is
// evaluated at the return date before the loan is closed, so a late return
// brings the pending fine up to date and a timely one clears any pending
// fine left by the sweep.
func (s *Service) Return(ctx context.Context, loanID uint, returnDate time.Time) (*ReturnResult, error) {
	if returnDate.IsZero() {
		returnDate = s.now()
	}
	returnDate = returnDate.UTC()

	var result ReturnResult
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		loan, err := s.loans.GetLoanByID(ctx, loanID)
		if err != nil {
			return err
		}
		switch loan.Status {
		case entities.LoanStatusReturned:
			return fmt.Errorf("loan %d: %w", loanID, errs.ErrAlreadyReturned)
		case entities.LoanStatusLost:
			return fmt.Errorf("loan %d was declared lost: %w", loanID, errs.ErrUnavailable)
		}
		if returnDate.Before(loan.IssueDate) {
			return fmt.Errorf("%w: return date precedes issue date", errs.ErrValidation)
		}

		assessment, err := s.fines.AssessFine(ctx, *loan, returnDate)
		if err != nil {
			return fmt.Errorf("assess fine for loan %d: %w", loanID, err)
		}
		result.apply(assessment)

		if err := s.loans.MarkReturned(ctx, loanID, returnDate); err != nil {
			return err
		}
		if err := s.books.AdjustAvailableCopies(ctx, loan.BookID, 1); err != nil {
			return err
		}

		loan.Status = entities.LoanStatusReturned
		loan.ReturnDate = &returnDate
		loan.Book.AvailableCopies++
		result.Loan = loan
		return nil
	})
	if err != nil {
		if !errs.Conflict(err) && !errors.Is(err, errs.ErrNotFound) && s.audit != nil {
			s.audit.LogLoan(ctx, "loan_return", loanID, "Return failed", err)
		}
		return nil, err
	}

	fields := []zap.Field{zap.Uint("loan_id", loanID), zap.Uint("book_id", result.Loan.BookID)}
	desc := fmt.Sprintf("Returned %q", result.Loan.Book.Title)
	if result.Fine != nil {
		fields = append(fields, zap.String("fine", result.Fine.Amount.StringFixed(2)))
		desc += fmt.Sprintf(", fine %s for %d days", result.Fine.Amount.StringFixed(2), result.Fine.DaysOverdue)
	}
	if result.Cleared != nil {
		fields = append(fields, zap.Uint("cleared_fine_id", result.Cleared.ID))
		desc += fmt.Sprintf(", pending fine %d cleared", result.Cleared.ID)
	}
	s.log.Info("book returned", fields...)
	if s.audit != nil {
		s.audit.LogLoan(ctx, "loan_return", loanID, desc, nil)
	}
	return &result, nil
}

// SweepOverdue runs the daily overdue sweep.
func (s *Service) SweepOverdue(ctx context.Context) (*fines.SweepReport, error) {
	return s.fines.GenerateFinesForOverdueBooks(ctx)
}

// MarkLost closes an active loan whose copy will not come back. The fine is
// brought up to date, and the copy is retired from the catalog.
func (s *Service) MarkLost(ctx context.Context, loanID uint, notes string) (*ReturnResult, error) {
	now := s.now()

	var result ReturnResult
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		loan, err := s.loans.GetLoanByID(ctx, loanID)
		if err != nil {
			return err
		}
		switch loan.Status {
		case entities.LoanStatusReturned:
			return fmt.Errorf("loan %d: %w", loanID, errs.ErrAlreadyReturned)
		case entities.LoanStatusLost:
			return fmt.Errorf("loan %d is already lost: %w", loanID, errs.ErrInvalidTransition)
		}

		assessment, err := s.fines.AssessFine(ctx, *loan, now)
		if err != nil {
			return fmt.Errorf("assess fine for loan %d: %w", loanID, err)
		}
		result.apply(assessment)

		if err := s.loans.MarkLost(ctx, loanID, notes); err != nil {
			return err
		}
		if err := s.books.RetireCopy(ctx, loan.BookID); err != nil {
			return err
		}

		loan.Status = entities.LoanStatusLost
		loan.Notes = notes
		loan.Book.TotalCopies--
		result.Loan = loan
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("loan marked lost", zap.Uint("loan_id", loanID), zap.Uint("book_id", result.Loan.BookID))
	if s.audit != nil {
		s.audit.LogLoan(ctx, "loan_lost", loanID, fmt.Sprintf("Copy of %q declared lost: %s", result.Loan.Book.Title, notes), nil)
	}
	return &result, nil
}

// GetLoan returns one loan with its book.
func (s *Service) GetLoan(ctx context.Context, loanID uint) (*entities.Loan, error) {
	return s.loans.GetLoanByID(ctx, loanID)
}

// StudentLoans lists a student's loans, optionally filtered by status.
func (s *Service) StudentLoans(ctx context.Context, studentID uint, status entities.LoanStatus) ([]entities.Loan, error) {
	if _, err := s.students.GetStudentByID(ctx, studentID); err != nil {
		return nil, err
	}
	loans, err := s.loans.ListLoansForStudent(ctx, studentID, status)
	if err != nil {
		return nil, err
	}
	if loans == nil {
		loans = []entities.Loan{}
	}
	return loans, nil
}
