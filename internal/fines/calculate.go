package fines

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/mrlokans/library/internal/entities"
)

const day = 24 * time.Hour

// FineResult is the outcome of evaluating one loan against a policy.
type FineResult struct {
	Amount      decimal.Decimal `json:"amount"`
	DaysOverdue int             `json:"days_overdue"`
	RatePerDay  decimal.Decimal `json:"rate_per_day"`
}

// CalculateFine evaluates a loan at a point in time. It returns nil when no
// fine is due: the loan is returned, it is not past its due date, or it is
// still inside the grace period.
//
// Elapsed time is rounded up to whole days, so one second past the due date
// counts as a full day.
func CalculateFine(loan entities.Loan, policy entities.FinePolicy, at time.Time) *FineResult {
	if loan.Status == entities.LoanStatusReturned || !at.After(loan.DueDate) {
		return nil
	}

	days := ElapsedDays(loan.DueDate, at) - policy.GracePeriodDays
	if days <= 0 {
		return nil
	}

	amount := policy.RatePerDay.Mul(decimal.NewFromInt(int64(days)))
	if policy.MaxFineAmount.Valid && amount.GreaterThan(policy.MaxFineAmount.Decimal) {
		amount = policy.MaxFineAmount.Decimal
	}

	return &FineResult{
		Amount:      amount,
		DaysOverdue: days,
		RatePerDay:  policy.RatePerDay,
	}
}

// ElapsedDays returns the whole days from since to until, rounded up.
// It is zero when until is not after since.
func ElapsedDays(since, until time.Time) int {
	d := until.Sub(since)
	if d <= 0 {
		return 0
	}
	days := int(d / day)
	if d%day != 0 {
		days++
	}
	return days
}
