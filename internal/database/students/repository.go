// Package students provides database operations for student accounts.
package students

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/mrlokans/library/internal/database/dbctx"
	"github.com/mrlokans/library/internal/entities"
	"github.com/mrlokans/library/internal/errs"
)

// Repository handles all student database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new students repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreateStudent inserts a new student.
func (r *Repository) CreateStudent(ctx context.Context, student *entities.Student) error {
	return dbctx.Conn(ctx, r.db).Create(student).Error
}

// GetStudentByID retrieves a student, active or not.
func (r *Repository) GetStudentByID(ctx context.Context, id uint) (*entities.Student, error) {
	var student entities.Student
	err := dbctx.Conn(ctx, r.db).First(&student, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("student %d: %w", id, errs.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &student, nil
}

// FindByNumberOrEmail returns a student matching either unique key.
func (r *Repository) FindByNumberOrEmail(ctx context.Context, number, email string) (*entities.Student, error) {
	var student entities.Student
	err := dbctx.Conn(ctx, r.db).Where("student_number = ? OR email = ?", number, email).First(&student).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &student, nil
}

// DeactivateStudent blocks a student from borrowing.
func (r *Repository) DeactivateStudent(ctx context.Context, id uint) error {
	result := dbctx.Conn(ctx, r.db).Model(&entities.Student{}).Where("id = ?", id).Update("is_active", false)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("student %d: %w", id, errs.ErrNotFound)
	}
	return nil
}
