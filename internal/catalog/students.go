package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/mrlokans/library/internal/entities"
	"github.com/mrlokans/library/internal/errs"
	"github.com/mrlokans/library/internal/validation"
)

// StudentInput registers a student. MaxBooksAllowed defaults when zero.
type StudentInput struct {
	StudentNumber   string `json:"student_number" validate:"required,max=50"`
	Name            string `json:"name" validate:"required,max=256"`
	Email           string `json:"email" validate:"required,email,max=255"`
	MaxBooksAllowed int    `json:"max_books_allowed" validate:"omitempty,gte=1,lte=50"`
}

func (s *Service) CreateStudent(ctx context.Context, in StudentInput) (*entities.Student, error) {
	in.StudentNumber = strings.TrimSpace(in.StudentNumber)
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	student := &entities.Student{
		StudentNumber:   in.StudentNumber,
		Name:            in.Name,
		Email:           in.Email,
		MaxBooksAllowed: in.MaxBooksAllowed,
		IsActive:        true,
	}
	if student.MaxBooksAllowed == 0 {
		student.MaxBooksAllowed = s.maxBooks
	}

	err := s.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		existing, err := s.students.FindByNumberOrEmail(ctx, in.StudentNumber, in.Email)
		if err == nil {
			return fmt.Errorf("student %s / %s matches student %d: %w", in.StudentNumber, in.Email, existing.ID, errs.ErrAlreadyExists)
		}
		if !errors.Is(err, errs.ErrNotFound) {
			return err
		}
		return s.students.CreateStudent(ctx, student)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("student registered", zap.Uint("student_id", student.ID), zap.String("student_number", student.StudentNumber))
	s.record(ctx, "student_create", "student", student.ID, fmt.Sprintf("Registered student %s", student.StudentNumber))
	return student, nil
}

func (s *Service) GetStudent(ctx context.Context, id uint) (*entities.Student, error) {
	return s.students.GetStudentByID(ctx, id)
}

// DeactivateStudent stops a student from borrowing or suggesting books.
func (s *Service) DeactivateStudent(ctx context.Context, id uint) error {
	if err := s.students.DeactivateStudent(ctx, id); err != nil {
		return err
	}
	s.record(ctx, "student_deactivate", "student", id, fmt.Sprintf("Deactivated student %d", id))
	return nil
}
