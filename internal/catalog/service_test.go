package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mrlokans/library/internal/audit"
	"github.com/mrlokans/library/internal/database"
	"github.com/mrlokans/library/internal/database/testdb"
	"github.com/mrlokans/library/internal/entities"
	"github.com/mrlokans/library/internal/errs"
)

func setupService(t *testing.T, opts ...Option) (*Service, *database.Database) {
	db := testdb.New(t)
	svc := NewService(Dependencies{
		Books:       db.Books,
		Students:    db.Students,
		Suggestions: db.Suggestions,
		Tx:          db.Tx,
		Audit:       audit.NewService(db.Audit, zap.NewNop()),
	}, zap.NewNop(), opts...)
	return svc, db
}

func ptr[T any](v T) *T {
	return &v
}

func TestService_CreateBook(t *testing.T) {
	ctx := context.Background()
	svc, db := setupService(t)

	t.Run("valid book", func(t *testing.T) {
		book, err := svc.CreateBook(ctx, BookInput{Title: "  Dune ", Author: "Frank Herbert", ISBN: "9780441013593", TotalCopies: 3})
		require.NoError(t, err)
		assert.NotZero(t, book.ID)
		assert.Equal(t, "Dune", book.Title)
		assert.Equal(t, 3, book.AvailableCopies)
		assert.True(t, book.IsActive)

		var events []entities.AuditEvent
		require.NoError(t, db.DB.Where("action = ?", "book_create").Find(&events).Error)
		assert.Len(t, events, 1)
	})

	t.Run("invalid input", func(t *testing.T) {
		_, err := svc.CreateBook(ctx, BookInput{Title: "   ", TotalCopies: 1})
		assert.ErrorIs(t, err, errs.ErrValidation)

		_, err = svc.CreateBook(ctx, BookInput{Title: "No copies"})
		assert.ErrorIs(t, err, errs.ErrValidation)
		assert.Contains(t, err.Error(), "total_copies")
	})
}

func TestService_ListBooks(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t)

	dune, err := svc.CreateBook(ctx, BookInput{Title: "Dune", Author: "Frank Herbert", TotalCopies: 1})
	require.NoError(t, err)
	_, err = svc.CreateBook(ctx, BookInput{Title: "Emma", Author: "Jane Austen", ISBN: "9780141439587", TotalCopies: 1})
	require.NoError(t, err)
	_, err = svc.CreateBook(ctx, BookInput{Title: "Persuasion", Author: "Jane Austen", TotalCopies: 1})
	require.NoError(t, err)
	require.NoError(t, svc.DeactivateBook(ctx, dune.ID))

	tests := []struct {
		name            string
		query           string
		includeInactive bool
		want            []string
	}{
		{"active only", "", false, []string{"Emma", "Persuasion"}},
		{"including inactive", "", true, []string{"Dune", "Emma", "Persuasion"}},
		{"by author", "austen", false, []string{"Emma", "Persuasion"}},
		{"by isbn", "9780141439587", false, []string{"Emma"}},
		{"no match", "tolkien", false, nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			books, err := svc.ListBooks(ctx, tc.query, tc.includeInactive)
			require.NoError(t, err)
			var titles []string
			for _, b := range books {
				titles = append(titles, b.Title)
			}
			assert.Equal(t, tc.want, titles)
		})
	}
}

func TestService_UpdateBook(t *testing.T) {
	ctx := context.Background()
	svc, db := setupService(t)

	book, err := svc.CreateBook(ctx, BookInput{Title: "Dune", TotalCopies: 3})
	require.NoError(t, err)
	// Two copies out on loan.
	require.NoError(t, db.Books.AdjustAvailableCopies(ctx, book.ID, -2))

	t.Run("descriptive fields", func(t *testing.T) {
		updated, err := svc.UpdateBook(ctx, book.ID, BookUpdate{Author: ptr("Frank Herbert"), Category: ptr("Sci-Fi")})
		require.NoError(t, err)
		assert.Equal(t, "Frank Herbert", updated.Author)
		assert.Equal(t, "Sci-Fi", updated.Category)
		assert.Equal(t, "Dune", updated.Title)
	})

	t.Run("adding copies makes them available", func(t *testing.T) {
		updated, err := svc.UpdateBook(ctx, book.ID, BookUpdate{TotalCopies: ptr(5)})
		require.NoError(t, err)
		assert.Equal(t, 5, updated.TotalCopies)
		assert.Equal(t, 3, updated.AvailableCopies)
	})

	t.Run("cannot drop below copies on loan", func(t *testing.T) {
		_, err := svc.UpdateBook(ctx, book.ID, BookUpdate{TotalCopies: ptr(1)})
		assert.ErrorIs(t, err, errs.ErrValidation)

		stored, err := svc.GetBook(ctx, book.ID)
		require.NoError(t, err)
		assert.Equal(t, 5, stored.TotalCopies)
		assert.Equal(t, 3, stored.AvailableCopies)
	})

	t.Run("missing book", func(t *testing.T) {
		_, err := svc.UpdateBook(ctx, 999, BookUpdate{Title: ptr("X")})
		assert.ErrorIs(t, err, errs.ErrNotFound)
	})
}

func TestService_CreateStudent(t *testing.T) {
	ctx := context.Background()
	svc, _ := setupService(t, WithDefaultMaxBooks(4))

	student, err := svc.CreateStudent(ctx, StudentInput{StudentNumber: "S-42", Name: "Ada", Email: "Ada@Example.com"})
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", student.Email)
	assert.Equal(t, 4, student.MaxBooksAllowed)
	assert.True(t, student.IsActive)

	t.Run("duplicate number", func(t *testing.T) {
		_, err := svc.CreateStudent(ctx, StudentInput{StudentNumber: "S-42", Name: "Bob", Email: "bob@example.com"})
		assert.ErrorIs(t, err, errs.ErrAlreadyExists)
	})

	t.Run("duplicate email", func(t *testing.T) {
		_, err := svc.CreateStudent(ctx, StudentInput{StudentNumber: "S-43", Name: "Ada", Email: "ada@example.com"})
		assert.ErrorIs(t, err, errs.ErrAlreadyExists)
	})

	t.Run("invalid email", func(t *testing.T) {
		_, err := svc.CreateStudent(ctx, StudentInput{StudentNumber: "S-44", Name: "Eve", Email: "not-an-email"})
		assert.ErrorIs(t, err, errs.ErrValidation)
	})

	t.Run("deactivate", func(t *testing.T) {
		require.NoError(t, svc.DeactivateStudent(ctx, student.ID))
		stored, err := svc.GetStudent(ctx, student.ID)
		require.NoError(t, err)
		assert.False(t, stored.IsActive)

		assert.ErrorIs(t, svc.DeactivateStudent(ctx, 999), errs.ErrNotFound)
	})
}

func TestService_Suggestions(t *testing.T) {
	ctx := context.Background()
	reviewedAt := time.Date(2024, 2, 1, 10, 0, 0, 0, time.UTC)
	svc, _ := setupService(t, WithClock(func() time.Time { return reviewedAt }))

	student, err := svc.CreateStudent(ctx, StudentInput{StudentNumber: "S-1", Name: "Ada", Email: "ada@example.com"})
	require.NoError(t, err)

	first, err := svc.SubmitSuggestion(ctx, SuggestionInput{StudentID: student.ID, Title: "SICP", Reason: "classic"})
	require.NoError(t, err)
	assert.Equal(t, entities.SuggestionStatusPending, first.Status)
	second, err := svc.SubmitSuggestion(ctx, SuggestionInput{StudentID: student.ID, Title: "TAOCP"})
	require.NoError(t, err)

	t.Run("unknown student", func(t *testing.T) {
		_, err := svc.SubmitSuggestion(ctx, SuggestionInput{StudentID: 999, Title: "X"})
		assert.ErrorIs(t, err, errs.ErrNotFound)
	})

	t.Run("missing title", func(t *testing.T) {
		_, err := svc.SubmitSuggestion(ctx, SuggestionInput{StudentID: student.ID})
		assert.ErrorIs(t, err, errs.ErrValidation)
	})

	t.Run("approve", func(t *testing.T) {
		reviewed, err := svc.ReviewSuggestion(ctx, first.ID, true, "ordering two copies")
		require.NoError(t, err)
		assert.Equal(t, entities.SuggestionStatusApproved, reviewed.Status)
		assert.Equal(t, "ordering two copies", reviewed.ReviewNotes)
		require.NotNil(t, reviewed.ReviewedAt)
		assert.True(t, reviewed.ReviewedAt.Equal(reviewedAt))
	})

	t.Run("only pending suggestions can be reviewed", func(t *testing.T) {
		_, err := svc.ReviewSuggestion(ctx, first.ID, false, "")
		assert.ErrorIs(t, err, errs.ErrInvalidTransition)
	})

	t.Run("list by status", func(t *testing.T) {
		pending, err := svc.ListSuggestions(ctx, entities.SuggestionStatusPending)
		require.NoError(t, err)
		require.Len(t, pending, 1)
		assert.Equal(t, second.ID, pending[0].ID)

		all, err := svc.ListSuggestions(ctx, "")
		require.NoError(t, err)
		assert.Len(t, all, 2)

		_, err = svc.ListSuggestions(ctx, "archived")
		assert.ErrorIs(t, err, errs.ErrValidation)
	})

	t.Run("inactive student", func(t *testing.T) {
		require.NoError(t, svc.DeactivateStudent(ctx, student.ID))
		_, err := svc.SubmitSuggestion(ctx, SuggestionInput{StudentID: student.ID, Title: "X"})
		assert.ErrorIs(t, err, errs.ErrUnavailable)
	})
}
