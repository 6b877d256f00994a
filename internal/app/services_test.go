package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mrlokans/library/internal/catalog"
	"github.com/mrlokans/library/internal/config"
	"github.com/mrlokans/library/internal/database/testdb"
	"github.com/mrlokans/library/internal/entities"
)

func TestNewServices_SharedWiring(t *testing.T) {
	ctx := context.Background()
	db := testdb.New(t)
	now := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

	svc := NewServices(db, Options{DefaultLoanDays: 7, DefaultMaxBooks: 2, Clock: func() time.Time { return now }}, zap.NewNop())

	student, err := svc.Catalog.CreateStudent(ctx, catalog.StudentInput{StudentNumber: "S-1", Name: "Ada", Email: "ada@example.com"})
	require.NoError(t, err)
	assert.Equal(t, 2, student.MaxBooksAllowed)

	book, err := svc.Catalog.CreateBook(ctx, catalog.BookInput{Title: "Dune", TotalCopies: 1})
	require.NoError(t, err)

	loan, err := svc.Circulation.Issue(ctx, student.ID, book.ID, time.Time{})
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 8, 0, 0, 0, 0, time.UTC), loan.DueDate.Truncate(24*time.Hour))

	now = time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
	report, err := svc.Fines.GenerateFinesForOverdueBooks(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, report.Evaluated)

	events, total, err := svc.Audit.GetEvents(ctx, entities.AuditEventSweep, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, events, 1)
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := &config.Config{}
	cfg.FineSweep.AccrueOverdue = true
	cfg.Circulation.DefaultLoanDays = 21
	cfg.Circulation.DefaultMaxBooks = 5

	opts := OptionsFromConfig(cfg)
	assert.True(t, opts.AccrueOverdue)
	assert.Equal(t, 21, opts.DefaultLoanDays)
	assert.Equal(t, 5, opts.DefaultMaxBooks)
	assert.Nil(t, opts.Clock)
}
