package fines

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/library/internal/entities"
)

func policy(rate int64, grace int) entities.FinePolicy {
	return entities.FinePolicy{RatePerDay: decimal.NewFromInt(rate), GracePeriodDays: grace, IsActive: true}
}

func loanDue(due time.Time) entities.Loan {
	return entities.Loan{ID: 1, StudentID: 42, BookID: 7, DueDate: due, Status: entities.LoanStatusIssued}
}

func TestCalculateFine(t *testing.T) {
	due := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)

	t.Run("returned exactly on due date has no fine", func(t *testing.T) {
		assert.Nil(t, CalculateFine(loanDue(due), policy(5, 0), due))
	})

	t.Run("before due date has no fine", func(t *testing.T) {
		assert.Nil(t, CalculateFine(loanDue(due), policy(5, 0), due.Add(-time.Hour)))
	})

	t.Run("one day late", func(t *testing.T) {
		res := CalculateFine(loanDue(due), policy(5, 0), due.AddDate(0, 0, 1))
		require.NotNil(t, res)
		assert.Equal(t, 1, res.DaysOverdue)
		assert.Equal(t, "5.00", res.Amount.StringFixed(2))
	})

	t.Run("partial day rounds up", func(t *testing.T) {
		res := CalculateFine(loanDue(due), policy(5, 0), due.Add(time.Second))
		require.NotNil(t, res)
		assert.Equal(t, 1, res.DaysOverdue)
	})

	t.Run("five days late at default rate", func(t *testing.T) {
		res := CalculateFine(loanDue(due), DefaultPolicy(), time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC))
		require.NotNil(t, res)
		assert.Equal(t, 5, res.DaysOverdue)
		assert.Equal(t, "25.00", res.Amount.StringFixed(2))
		assert.Equal(t, "5.00", res.RatePerDay.StringFixed(2))
	})

	t.Run("within grace period", func(t *testing.T) {
		assert.Nil(t, CalculateFine(loanDue(due), policy(5, 3), due.AddDate(0, 0, 2)))
		assert.Nil(t, CalculateFine(loanDue(due), policy(5, 3), due.AddDate(0, 0, 3)))
	})

	t.Run("grace days are subtracted", func(t *testing.T) {
		res := CalculateFine(loanDue(due), policy(5, 3), due.AddDate(0, 0, 5))
		require.NotNil(t, res)
		assert.Equal(t, 2, res.DaysOverdue)
		assert.Equal(t, "10.00", res.Amount.StringFixed(2))
	})

	t.Run("amount is capped", func(t *testing.T) {
		p := policy(5, 0)
		p.MaxFineAmount = decimal.NewNullDecimal(decimal.NewFromInt(20))

		res := CalculateFine(loanDue(due), p, due.AddDate(0, 0, 10))
		require.NotNil(t, res)
		assert.Equal(t, 10, res.DaysOverdue)
		assert.Equal(t, "20.00", res.Amount.StringFixed(2))
	})

	t.Run("cap above amount is ignored", func(t *testing.T) {
		p := policy(5, 0)
		p.MaxFineAmount = decimal.NewNullDecimal(decimal.NewFromInt(100))

		res := CalculateFine(loanDue(due), p, due.AddDate(0, 0, 3))
		require.NotNil(t, res)
		assert.Equal(t, "15.00", res.Amount.StringFixed(2))
	})

	t.Run("fractional rate", func(t *testing.T) {
		p := entities.FinePolicy{RatePerDay: decimal.RequireFromString("0.25")}

		res := CalculateFine(loanDue(due), p, due.AddDate(0, 0, 3))
		require.NotNil(t, res)
		assert.Equal(t, "0.75", res.Amount.StringFixed(2))
	})

	t.Run("returned loan has no fine", func(t *testing.T) {
		loan := loanDue(due)
		loan.Status = entities.LoanStatusReturned
		assert.Nil(t, CalculateFine(loan, policy(5, 0), due.AddDate(0, 0, 30)))
	})

	t.Run("overdue loan keeps accruing", func(t *testing.T) {
		loan := loanDue(due)
		loan.Status = entities.LoanStatusOverdue
		res := CalculateFine(loan, policy(5, 0), due.AddDate(0, 0, 4))
		require.NotNil(t, res)
		assert.Equal(t, 4, res.DaysOverdue)
	})

	t.Run("same inputs give the same result", func(t *testing.T) {
		at := due.AddDate(0, 0, 7).Add(3 * time.Hour)
		first := CalculateFine(loanDue(due), policy(5, 1), at)
		second := CalculateFine(loanDue(due), policy(5, 1), at)
		require.NotNil(t, first)
		assert.Equal(t, first.DaysOverdue, second.DaysOverdue)
		assert.True(t, first.Amount.Equal(second.Amount))
	})
}

func TestElapsedDays(t *testing.T) {
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		until time.Time
		want  int
	}{
		{"same instant", base, 0},
		{"earlier", base.Add(-48 * time.Hour), 0},
		{"one nanosecond", base.Add(time.Nanosecond), 1},
		{"exactly one day", base.Add(24 * time.Hour), 1},
		{"one day and a minute", base.Add(24*time.Hour + time.Minute), 2},
		{"thirty days", base.AddDate(0, 0, 30), 30},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ElapsedDays(base, tc.until))
		})
	}
}
