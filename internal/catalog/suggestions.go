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

// SuggestionInput is a student's request to acquire a book.
type SuggestionInput struct {
	StudentID uint   `json:"student_id" validate:"required"`
	Title     string `json:"title" validate:"required,max=512"`
	Author    string `json:"author" validate:"max=256"`
	ISBN      string `json:"isbn" validate:"omitempty,max=20"`
	Reason    string `json:"reason" validate:"max=2000"`
}

func (s *Service) SubmitSuggestion(ctx context.Context, in SuggestionInput) (*entities.BookSuggestion, error) {
	in.Title = strings.TrimSpace(in.Title)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	student, err := s.students.GetStudentByID(ctx, in.StudentID)
	if err != nil {
		return nil, err
	}
	if !student.IsActive {
		return nil, fmt.Errorf("student %d is inactive: %w", in.StudentID, errs.ErrUnavailable)
	}

	suggestion := &entities.BookSuggestion{
		StudentID: in.StudentID,
		Title:     in.Title,
		Author:    strings.TrimSpace(in.Author),
		ISBN:      strings.TrimSpace(in.ISBN),
		Reason:    in.Reason,
		Status:    entities.SuggestionStatusPending,
	}
	if err := s.suggestions.CreateSuggestion(ctx, suggestion); err != nil {
		return nil, fmt.Errorf("create suggestion: %w", err)
	}

	s.log.Info("suggestion submitted", zap.Uint("suggestion_id", suggestion.ID), zap.Uint("student_id", in.StudentID))
	return suggestion, nil
}

func (s *Service) ListSuggestions(ctx context.Context, status entities.SuggestionStatus) ([]entities.BookSuggestion, error) {
	switch status {
	case "", entities.SuggestionStatusPending, entities.SuggestionStatusApproved, entities.SuggestionStatusRejected:
	default:
		return nil, fmt.Errorf("%w: unknown suggestion status %q", errs.ErrValidation, status)
	}
	list, err := s.suggestions.ListSuggestions(ctx, status)
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []entities.BookSuggestion{}
	}
	return list, nil
}

// ReviewSuggestion approves or rejects a pending suggestion.
func (s *Service) ReviewSuggestion(ctx context.Context, id uint, approve bool, notes string) (*entities.BookSuggestion, error) {
	status := entities.SuggestionStatusRejected
	if approve {
		status = entities.SuggestionStatusApproved
	}

	if _, err := s.suggestions.GetSuggestionByID(ctx, id); err != nil {
		return nil, err
	}
	if err := s.suggestions.Review(ctx, id, status, notes, s.now()); err != nil {
		return nil, err
	}

	suggestion, err := s.suggestions.GetSuggestionByID(ctx, id)
	if err != nil {
		return nil, err
	}
	s.record(ctx, "suggestion_"+string(status), "suggestion", id, fmt.Sprintf("Suggestion %q %s", suggestion.Title, status))
	return suggestion, nil
}
