// Package policies provides database operations for fine policies.
package policies

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/mrlokans/library/internal/database/dbctx"
	"github.com/mrlokans/library/internal/entities"
	"github.com/mrlokans/library/internal/errs"
)

// Repository handles all fine policy database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new policies repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// CreatePolicy inserts a new policy row.
func (r *Repository) CreatePolicy(ctx context.Context, policy *entities.FinePolicy) error {
	return dbctx.Conn(ctx, r.db).Create(policy).Error
}

// GetMostRecentActive returns the newest active policy, or errs.ErrNotFound
// when none exists.
func (r *Repository) GetMostRecentActive(ctx context.Context) (*entities.FinePolicy, error) {
	var policy entities.FinePolicy
	err := dbctx.Conn(ctx, r.db).
		Where("is_active = ?", true).
		Order("created_at DESC, id DESC").
		First(&policy).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &policy, nil
}

// ListPolicies returns every policy, newest first.
func (r *Repository) ListPolicies(ctx context.Context) ([]entities.FinePolicy, error) {
	var policies []entities.FinePolicy
	err := dbctx.Conn(ctx, r.db).Order("created_at DESC, id DESC").Find(&policies).Error
	return policies, err
}
