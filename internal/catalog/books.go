package catalog

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/mrlokans/library/internal/entities"
	"github.com/mrlokans/library/internal/errs"
	"github.com/mrlokans/library/internal/validation"
)

// BookInput describes a new book.
type BookInput struct {
	Title           string `json:"title" validate:"required,max=512"`
	Author          string `json:"author" validate:"max=256"`
	ISBN            string `json:"isbn" validate:"omitempty,max=20"`
	Publisher       string `json:"publisher" validate:"max=256"`
	PublicationYear int    `json:"publication_year" validate:"gte=0,lte=9999"`
	Category        string `json:"category" validate:"max=100"`
	TotalCopies     int    `json:"total_copies" validate:"gte=1,lte=10000"`
}

// BookUpdate changes selected fields of a book. Nil fields are left alone.
type BookUpdate struct {
	Title           *string `json:"title" validate:"omitempty,min=1,max=512"`
	Author          *string `json:"author" validate:"omitempty,max=256"`
	ISBN            *string `json:"isbn" validate:"omitempty,max=20"`
	Publisher       *string `json:"publisher" validate:"omitempty,max=256"`
	PublicationYear *int    `json:"publication_year" validate:"omitempty,gte=0,lte=9999"`
	Category        *string `json:"category" validate:"omitempty,max=100"`
	TotalCopies     *int    `json:"total_copies" validate:"omitempty,gte=0,lte=10000"`
}

func (s *Service) CreateBook(ctx context.Context, in BookInput) (*entities.Book, error) {
	in.Title = strings.TrimSpace(in.Title)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	book := &entities.Book{
		Title:           in.Title,
		Author:          strings.TrimSpace(in.Author),
		ISBN:            strings.TrimSpace(in.ISBN),
		Publisher:       in.Publisher,
		PublicationYear: in.PublicationYear,
		Category:        in.Category,
		TotalCopies:     in.TotalCopies,
		AvailableCopies: in.TotalCopies,
		IsActive:        true,
	}
	if err := s.books.CreateBook(ctx, book); err != nil {
		return nil, fmt.Errorf("create book: %w", err)
	}

	s.log.Info("book added", zap.Uint("book_id", book.ID), zap.String("title", book.Title), zap.Int("copies", book.TotalCopies))
	s.record(ctx, "book_create", "book", book.ID, fmt.Sprintf("Added %q (%d copies)", book.Title, book.TotalCopies))
	return book, nil
}

func (s *Service) GetBook(ctx context.Context, id uint) (*entities.Book, error) {
	return s.books.GetBookByID(ctx, id)
}

// ListBooks searches the catalog by title, author or ISBN.
func (s *Service) ListBooks(ctx context.Context, query string, includeInactive bool) ([]entities.Book, error) {
	books, err := s.books.ListBooks(ctx, strings.TrimSpace(query), includeInactive)
	if err != nil {
		return nil, err
	}
	if books == nil {
		books = []entities.Book{}
	}
	return books, nil
}

// UpdateBook applies an update. Changing TotalCopies moves AvailableCopies
// by the same amount, and fails if more copies are on loan than would remain.
func (s *Service) UpdateBook(ctx context.Context, id uint, in BookUpdate) (*entities.Book, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	var book *entities.Book
	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		var err error
		book, err = s.books.GetBookByID(ctx, id)
		if err != nil {
			return err
		}

		if in.Title != nil {
			book.Title = strings.TrimSpace(*in.Title)
		}
		if in.Author != nil {
			book.Author = strings.TrimSpace(*in.Author)
		}
		if in.ISBN != nil {
			book.ISBN = strings.TrimSpace(*in.ISBN)
		}
		if in.Publisher != nil {
			book.Publisher = *in.Publisher
		}
		if in.PublicationYear != nil {
			book.PublicationYear = *in.PublicationYear
		}
		if in.Category != nil {
			book.Category = *in.Category
		}
		if in.TotalCopies != nil {
			delta := *in.TotalCopies - book.TotalCopies
			if book.AvailableCopies+delta < 0 {
				onLoan := book.TotalCopies - book.AvailableCopies
				return fmt.Errorf("%w: %d copies are on loan, cannot reduce to %d", errs.ErrValidation, onLoan, *in.TotalCopies)
			}
			book.TotalCopies += delta
			book.AvailableCopies += delta
		}
		if book.Title == "" {
			return fmt.Errorf("%w: title must not be empty", errs.ErrValidation)
		}

		return s.books.UpdateBook(ctx, book)
	})
	if err != nil {
		return nil, err
	}

	s.record(ctx, "book_update", "book", book.ID, fmt.Sprintf("Updated %q", book.Title))
	return book, nil
}

// DeactivateBook withdraws a book from lending. Open loans are unaffected.
func (s *Service) DeactivateBook(ctx context.Context, id uint) error {
	if err := s.books.DeactivateBook(ctx, id); err != nil {
		return err
	}
	s.log.Info("book deactivated", zap.Uint("book_id", id))
	s.record(ctx, "book_deactivate", "book", id, fmt.Sprintf("Deactivated book %d", id))
	return nil
}
