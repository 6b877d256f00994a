// Package books provides database operations for the book catalog.
//
// Copy counters are only changed through AdjustAvailableCopies and
// RetireCopy, which update in a single guarded statement so the
// 0 <= available_copies <= total_copies invariant holds in storage.
//
// # Usage
//
//	repo := books.NewRepository(db)
//	book, err := repo.GetBookByID(ctx, 7)
package books

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/mrlokans/library/internal/database/dbctx"
	"github.com/mrlokans/library/internal/entities"
	"github.com/mrlokans/library/internal/errs"
)

// Repository handles all catalog database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new books repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateBook inserts a new book.
func (r *Repository) CreateBook(ctx context.Context, book *entities.Book) error {
	return dbctx.Conn(ctx, r.db).Create(book).Error
}

// GetBookByID retrieves a book, active or not.
func (r *Repository) GetBookByID(ctx context.Context, id uint) (*entities.Book, error) {
	var book entities.Book
	err := dbctx.Conn(ctx, r.db).First(&book, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("book %d: %w", id, errs.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// ListBooks returns books ordered by title, optionally filtered by a
// case-insensitive title/author/ISBN match.
func (r *Repository) ListBooks(ctx context.Context, query string, includeInactive bool) ([]entities.Book, error) {
	var books []entities.Book
	q := dbctx.Conn(ctx, r.db).Order("title ASC")
	if !includeInactive {
		q = q.Where("is_active = ?", true)
	}
	if query != "" {
		pattern := "%" + query + "%"
		q = q.Where("(LOWER(title) LIKE LOWER(?) OR LOWER(author) LIKE LOWER(?) OR isbn = ?)", pattern, pattern, query)
	}
	err := q.Find(&books).Error
	return books, err
}

// UpdateBook saves descriptive fields and counters of an existing book.
func (r *Repository) UpdateBook(ctx context.Context, book *entities.Book) error {
	return dbctx.Conn(ctx, r.db).Save(book).Error
}

// DeactivateBook soft-deletes a book; it stays referenced by loans.
func (r *Repository) DeactivateBook(ctx context.Context, id uint) error {
	result := dbctx.Conn(ctx, r.db).Model(&entities.Book{}).Where("id = ?", id).Update("is_active", false)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("book %d: %w", id, errs.ErrNotFound)
	}
	return nil
}

// AdjustAvailableCopies moves the available counter by delta. It fails with
// errs.ErrUnavailable when the result would leave [0, total_copies].
func (r *Repository) AdjustAvailableCopies(ctx context.Context, id uint, delta int) error {
	result := dbctx.Conn(ctx, r.db).Model(&entities.Book{}).
		Where("id = ? AND available_copies + ? >= 0 AND available_copies + ? <= total_copies", id, delta, delta).
		Update("available_copies", gorm.Expr("available_copies + ?", delta))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("book %d copy counter: %w", id, errs.ErrUnavailable)
	}
	return nil
}

// RetireCopy removes one issued copy from the catalog, used when a loan is
// declared lost. Available copies are unchanged.
func (r *Repository) RetireCopy(ctx context.Context, id uint) error {
	result := dbctx.Conn(ctx, r.db).Model(&entities.Book{}).
		Where("id = ? AND total_copies > available_copies", id).
		Update("total_copies", gorm.Expr("total_copies - 1"))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("book %d has no issued copy to retire: %w", id, errs.ErrUnavailable)
	}
	return nil
}
