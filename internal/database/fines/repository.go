// Package fines provides database operations for the fine ledger.
package fines

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

// Repository handles all fine database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new fines repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateFine inserts a new fine.
func (r *Repository) CreateFine(ctx context.Context, fine *entities.Fine) error {
	return dbctx.Conn(ctx, r.db).Create(fine).Error
}

// GetFineByID retrieves a fine.
func (r *Repository) GetFineByID(ctx context.Context, id uint) (*entities.Fine, error) {
	var fine entities.Fine
	err := dbctx.Conn(ctx, r.db).First(&fine, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("fine %d: %w", id, errs.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &fine, nil
}

// ListFinesForLoan returns a loan's fines in one of the given statuses,
// oldest first. No statuses means all of them.
func (r *Repository) ListFinesForLoan(ctx context.Context, loanID uint, statuses ...entities.FineStatus) ([]entities.Fine, error) {
	var fines []entities.Fine
	q := dbctx.Conn(ctx, r.db).Where("loan_id = ?", loanID)
	if len(statuses) > 0 {
		q = q.Where("status IN ?", statuses)
	}
	err := q.Order("created_at ASC, id ASC").Find(&fines).Error
	return fines, err
}

// ListFinesForStudent returns a student's fines, newest first. An empty
// status returns every fine.
func (r *Repository) ListFinesForStudent(ctx context.Context, studentID uint, status entities.FineStatus) ([]entities.Fine, error) {
	var fines []entities.Fine
	q := dbctx.Conn(ctx, r.db).Where("student_id = ?", studentID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	err := q.Order("created_at DESC, id DESC").Find(&fines).Error
	return fines, err
}

// UpdatePendingAmount rewrites the computed fields and notes of a pending fine.
func (r *Repository) UpdatePendingAmount(ctx context.Context, fine *entities.Fine) error {
	return r.guardedUpdate(ctx, fine.ID, entities.FineStatusPending, map[string]any{
		"amount":            fine.Amount,
		"days_overdue":      fine.DaysOverdue,
		"fine_rate_per_day": fine.FineRatePerDay,
		"notes":             fine.Notes,
	})
}

// MarkPaid settles a pending fine.
func (r *Repository) MarkPaid(ctx context.Context, id uint, paidAt time.Time) error {
	return r.guardedUpdate(ctx, id, entities.FineStatusPending, map[string]any{
		"status":    entities.FineStatusPaid,
		"paid_date": paidAt,
	})
}

// MarkWaived forgives a pending fine.
func (r *Repository) MarkWaived(ctx context.Context, id uint, notes string) error {
	return r.guardedUpdate(ctx, id, entities.FineStatusPending, map[string]any{
		"status": entities.FineStatusWaived,
		"notes":  notes,
	})
}

func (r *Repository) guardedUpdate(ctx context.Context, id uint, from entities.FineStatus, updates map[string]any) error {
	result := dbctx.Conn(ctx, r.db).Model(&entities.Fine{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("fine %d is no longer %s: %w", id, from, errs.ErrInvalidTransition)
	}
	return nil
}
