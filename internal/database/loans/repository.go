// Package loans provides database operations for the loan ledger.
//
// Status changes are compare-and-set updates: a transition only applies when
// the stored status is one of the expected source states, so a sweep and an
// interactive return racing on the same loan cannot both win.
package loans

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/library/internal/database/dbctx"
	"github.com/mrlokans/library/internal/entities"
	"github.com/mrlokans/library/internal/errs"
)

var activeStatuses = []entities.LoanStatus{entities.LoanStatusIssued, entities.LoanStatusOverdue}

// Repository handles all loan database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new loans repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateLoan inserts a new loan.
func (r *Repository) CreateLoan(ctx context.Context, loan *entities.Loan) error {
	return dbctx.Conn(ctx, r.db).Omit("Book", "Student").Create(loan).Error
}

// GetLoanByID retrieves a loan with its book.
func (r *Repository) GetLoanByID(ctx context.Context, id uint) (*entities.Loan, error) {
	var loan entities.Loan
	err := dbctx.Conn(ctx, r.db).Preload("Book").First(&loan, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("loan %d: %w", id, errs.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &loan, nil
}

// FindActiveLoan returns the issued or overdue loan of a book to a student.
func (r *Repository) FindActiveLoan(ctx context.Context, studentID, bookID uint) (*entities.Loan, error) {
	var loan entities.Loan
	err := dbctx.Conn(ctx, r.db).
		Where("student_id = ? AND book_id = ? AND status IN ?", studentID, bookID, activeStatuses).
		First(&loan).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &loan, nil
}

// CountActiveLoans counts the student's issued and overdue loans.
func (r *Repository) CountActiveLoans(ctx context.Context, studentID uint) (int64, error) {
	var count int64
	err := dbctx.Conn(ctx, r.db).Model(&entities.Loan{}).
		Where("student_id = ? AND status IN ?", studentID, activeStatuses).
		Count(&count).Error
	return count, err
}

// CountActiveLoansForBook counts copies of a book currently out on loan.
func (r *Repository) CountActiveLoansForBook(ctx context.Context, bookID uint) (int64, error) {
	var count int64
	err := dbctx.Conn(ctx, r.db).Model(&entities.Loan{}).
		Where("book_id = ? AND status IN ?", bookID, activeStatuses).
		Count(&count).Error
	return count, err
}

// ListLoansDueBefore returns loans in one of the given statuses whose due
// date is strictly before the cutoff, oldest due first.
func (r *Repository) ListLoansDueBefore(ctx context.Context, statuses []entities.LoanStatus, before time.Time) ([]entities.Loan, error) {
	var loans []entities.Loan
	err := dbctx.Conn(ctx, r.db).
		Where("status IN ? AND due_date < ?", statuses, before).
		Order("due_date ASC, id ASC").
		Find(&loans).Error
	return loans, err
}

// ListLoansForStudent returns a student's loans, newest first. An empty
// status returns every loan.
func (r *Repository) ListLoansForStudent(ctx context.Context, studentID uint, status entities.LoanStatus) ([]entities.Loan, error) {
	var loans []entities.Loan
	q := dbctx.Conn(ctx, r.db).Preload("Book").Where("student_id = ?", studentID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	err := q.Order("issue_date DESC, id DESC").Find(&loans).Error
	return loans, err
}

// MarkOverdue moves an issued loan to overdue. Loans in any other state are
// left alone and reported with errs.ErrInvalidTransition.
func (r *Repository) MarkOverdue(ctx context.Context, id uint) error {
	return r.transition(ctx, id, []entities.LoanStatus{entities.LoanStatusIssued}, map[string]any{
		"status": entities.LoanStatusOverdue,
	})
}

// MarkReturned closes an active loan.
func (r *Repository) MarkReturned(ctx context.Context, id uint, returnedAt time.Time) error {
	return r.transition(ctx, id, activeStatuses, map[string]any{
		"status":      entities.LoanStatusReturned,
		"return_date": returnedAt,
	})
}

// MarkLost closes an active loan without returning the copy.
func (r *Repository) MarkLost(ctx context.Context, id uint, notes string) error {
	return r.transition(ctx, id, activeStatuses, map[string]any{
		"status": entities.LoanStatusLost,
		"notes":  notes,
	})
}

func (r *Repository) transition(ctx context.Context, id uint, from []entities.LoanStatus, updates map[string]any) error {
	result := dbctx.Conn(ctx, r.db).Model(&entities.Loan{}).
		Where("id = ? AND status IN ?", id, from).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("loan %d to %v: %w", id, updates["status"], errs.ErrInvalidTransition)
	}
	return nil
}
