// Package suggestions provides database operations for student book suggestions.
package suggestions

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

// Repository handles all suggestion database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new suggestions repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) CreateSuggestion(ctx context.Context, s *entities.BookSuggestion) error {
	return dbctx.Conn(ctx, r.db).Create(s).Error
}

func (r *Repository) GetSuggestionByID(ctx context.Context, id uint) (*entities.BookSuggestion, error) {
	var s entities.BookSuggestion
	err := dbctx.Conn(ctx, r.db).First(&s, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("suggestion %d: %w", id, errs.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// ListSuggestions returns suggestions newest first. An empty status returns
// all of them.
func (r *Repository) ListSuggestions(ctx context.Context, status entities.SuggestionStatus) ([]entities.BookSuggestion, error) {
	var list []entities.BookSuggestion
	q := dbctx.Conn(ctx, r.db).Order("created_at DESC, id DESC")
	if status != "" {
		q = q.Where("status = ?", status)
	}
	err := q.Find(&list).Error
	return list, err
}

// Review moves a pending suggestion to approved or rejected.
func (r *Repository) Review(ctx context.Context, id uint, status entities.SuggestionStatus, notes string, at time.Time) error {
	result := dbctx.Conn(ctx, r.db).Model(&entities.BookSuggestion{}).
		Where("id = ? AND status = ?", id, entities.SuggestionStatusPending).
		Updates(map[string]any{
			"status":       status,
			"review_notes": notes,
			"reviewed_at":  at,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("suggestion %d is not pending: %w", id, errs.ErrInvalidTransition)
	}
	return nil
}
