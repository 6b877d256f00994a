package fines

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mrlokans/library/internal/entities"
	"github.com/mrlokans/library/internal/errs"
	"github.com/mrlokans/library/internal/validation"
)

// DefaultPolicy is used when no active policy row exists:
// 5.00 per day, no grace period, no cap.
func DefaultPolicy() entities.FinePolicy {
	return entities.FinePolicy{
		RatePerDay:      decimal.NewFromInt(5),
		GracePeriodDays: 0,
		IsActive:        true,
	}
}

// PolicyReader looks up the policy in force.
type PolicyReader interface {
	GetMostRecentActive(ctx context.Context) (*entities.FinePolicy, error)
}

// ResolveCurrentPolicy returns the most recently created active policy, or
// DefaultPolicy when there is none. Storage errors are returned as is.
func ResolveCurrentPolicy(ctx context.Context, store PolicyReader) (entities.FinePolicy, error) {
	policy, err := store.GetMostRecentActive(ctx)
	if errors.Is(err, errs.ErrNotFound) {
		return DefaultPolicy(), nil
	}
	if err != nil {
		return entities.FinePolicy{}, fmt.Errorf("resolve fine policy: %w", err)
	}
	return *policy, nil
}

// PolicyInput describes a new fine policy.
type PolicyInput struct {
	RatePerDay      decimal.Decimal  `json:"rate_per_day" validate:"gt=0"`
	GracePeriodDays int              `json:"grace_period_days" validate:"gte=0,lte=365"`
	MaxFineAmount   *decimal.Decimal `json:"max_fine_amount,omitempty" validate:"omitempty,gt=0"`
}

// CurrentPolicy resolves the policy in force.
func (e *Engine) CurrentPolicy(ctx context.Context) (entities.FinePolicy, error) {
	return ResolveCurrentPolicy(ctx, e.policies)
}

// CreatePolicy stores a new policy, which becomes current immediately.
// Existing fines keep the rate they were computed with.
func (e *Engine) CreatePolicy(ctx context.Context, in PolicyInput) (*entities.FinePolicy, error) {
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	policy := &entities.FinePolicy{
		RatePerDay:      in.RatePerDay.Round(2),
		GracePeriodDays: in.GracePeriodDays,
		IsActive:        true,
		CreatedAt:       e.now(),
	}
	if in.MaxFineAmount != nil {
		policy.MaxFineAmount = decimal.NewNullDecimal(in.MaxFineAmount.Round(2))
	}

	if err := e.policies.CreatePolicy(ctx, policy); err != nil {
		return nil, fmt.Errorf("create fine policy: %w", err)
	}

	desc := fmt.Sprintf("Fine policy: %s/day, %d grace days", policy.RatePerDay.StringFixed(2), policy.GracePeriodDays)
	if policy.MaxFineAmount.Valid {
		desc += ", cap " + policy.MaxFineAmount.Decimal.StringFixed(2)
	}
	e.log.Info("fine policy created",
		zap.Uint("policy_id", policy.ID),
		zap.String("rate_per_day", policy.RatePerDay.StringFixed(2)),
		zap.Int("grace_period_days", policy.GracePeriodDays))
	if e.audit != nil {
		e.audit.LogPolicy(ctx, policy.ID, desc)
	}

	return policy, nil
}

// ListPolicies returns every policy, newest first.
func (e *Engine) ListPolicies(ctx context.Context) ([]entities.FinePolicy, error) {
	return e.policies.ListPolicies(ctx)
}
