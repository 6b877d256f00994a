package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikestefanello/backlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mrlokans/library/internal/audit"
	"github.com/mrlokans/library/internal/catalog"
	"github.com/mrlokans/library/internal/circulation"
	"github.com/mrlokans/library/internal/database"
	"github.com/mrlokans/library/internal/database/testdb"
	"github.com/mrlokans/library/internal/entities"
	"github.com/mrlokans/library/internal/fines"
	"github.com/mrlokans/library/internal/tasks"
)

type apiFixture struct {
	db     *database.Database
	router *gin.Engine
	queue  *fakeQueue
	now    time.Time
}

func setupAPI(t *testing.T) *apiFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	f := &apiFixture{
		db:    testdb.New(t),
		queue: &fakeQueue{statuses: map[string]backlite.TaskStatus{}},
		now:   time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC),
	}
	clock := func() time.Time { return f.now }
	log := zap.NewNop()
	auditSvc := audit.NewService(f.db.Audit, log)

	engine := fines.NewEngine(fines.Dependencies{
		Loans:    f.db.Loans,
		Fines:    f.db.Fines,
		Policies: f.db.Policies,
		Tx:       f.db.Tx,
		Audit:    auditSvc,
	}, log, fines.WithClock(clock))

	f.router = NewRouter(RouterConfig{
		Catalog: catalog.NewService(catalog.Dependencies{
			Books:       f.db.Books,
			Students:    f.db.Students,
			Suggestions: f.db.Suggestions,
			Tx:          f.db.Tx,
			Audit:       auditSvc,
		}, log, catalog.WithClock(clock)),
		Circulation: circulation.NewService(circulation.Dependencies{
			Books:    f.db.Books,
			Students: f.db.Students,
			Loans:    f.db.Loans,
			Fines:    engine,
			Tx:       f.db.Tx,
			Audit:    auditSvc,
		}, log, circulation.WithClock(clock)),
		Fines:      engine,
		Audit:      auditSvc,
		Database:   f.db,
		TaskClient: f.queue,
		Version:    "test",
		Logger:     log,
	})
	return f
}

func (f *apiFixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func (f *apiFixture) createBook(t *testing.T, title string, copies int) entities.Book {
	w := f.do(t, http.MethodPost, "/api/books", gin.H{"title": title, "author": "Author", "total_copies": copies})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[entities.Book](t, w)
}

func (f *apiFixture) createStudent(t *testing.T, number string, maxBooks int) entities.Student {
	w := f.do(t, http.MethodPost, "/api/students", gin.H{
		"student_number":    number,
		"name":              "Student " + number,
		"email":             number + "@example.com",
		"max_books_allowed": maxBooks,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[entities.Student](t, w)
}

func (f *apiFixture) issue(t *testing.T, studentID, bookID uint, due string) *httptest.ResponseRecorder {
	return f.do(t, http.MethodPost, "/api/loans", gin.H{"student_id": studentID, "book_id": bookID, "due_date": due})
}

type fakeQueue struct {
	enqueued []backlite.Task
	statuses map[string]backlite.TaskStatus
	err      error
}

func (q *fakeQueue) Enqueue(ctx context.Context, task backlite.Task) (string, error) {
	if q.err != nil {
		return "", q.err
	}
	q.enqueued = append(q.enqueued, task)
	return "task-1", nil
}

func (q *fakeQueue) Status(ctx context.Context, taskID string) (backlite.TaskStatus, error) {
	status, ok := q.statuses[taskID]
	if !ok {
		return backlite.TaskStatusNotFound, nil
	}
	return status, nil
}

func TestHealth(t *testing.T) {
	f := setupAPI(t)

	w := f.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	health := decode[HealthResponse](t, w)
	assert.Equal(t, "healthy", health.Status)
	assert.Equal(t, "test", health.Version)
	assert.Equal(t, "ok", health.Checks["database"])

	w = f.do(t, http.MethodGet, "/ping", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHealth_NoDatabase(t *testing.T) {
	gin.SetMode(gin.TestMode)
	controller := NewHealthController(nil, "1.0.0")

	router := gin.New()
	router.GET("/health", controller.Status)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "not configured", decode[HealthResponse](t, w).Checks["database"])
}

type failingPinger struct{}

func (failingPinger) Ping(ctx context.Context) error { return errors.New("disk I/O error") }

func TestHealth_Unhealthy(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/health", NewHealthController(failingPinger{}, "").Status)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/health", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "unhealthy", decode[HealthResponse](t, w).Status)
}

func TestBooksAPI(t *testing.T) {
	f := setupAPI(t)
	book := f.createBook(t, "Dune", 2)
	f.createBook(t, "Emma", 1)

	t.Run("list and search", func(t *testing.T) {
		w := f.do(t, http.MethodGet, "/api/books", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, float64(2), decode[map[string]any](t, w)["count"])

		w = f.do(t, http.MethodGet, "/api/books?q=dune", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, float64(1), decode[map[string]any](t, w)["count"])
	})

	t.Run("get", func(t *testing.T) {
		w := f.do(t, http.MethodGet, "/api/books/9999", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)

		w = f.do(t, http.MethodGet, "/api/books/abc", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("create rejects invalid input", func(t *testing.T) {
		w := f.do(t, http.MethodPost, "/api/books", gin.H{"title": "", "total_copies": 1})
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "validation", decode[ErrorResponse](t, w).Code)
	})

	t.Run("update copies", func(t *testing.T) {
		w := f.do(t, http.MethodPatch, "/api/books/"+itoa(book.ID), gin.H{"total_copies": 5})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		updated := decode[entities.Book](t, w)
		assert.Equal(t, 5, updated.TotalCopies)
		assert.Equal(t, 5, updated.AvailableCopies)
	})

	t.Run("deactivate", func(t *testing.T) {
		w := f.do(t, http.MethodDelete, "/api/books/"+itoa(book.ID), nil)
		require.Equal(t, http.StatusOK, w.Code)

		w = f.do(t, http.MethodGet, "/api/books", nil)
		assert.Equal(t, float64(1), decode[map[string]any](t, w)["count"])

		w = f.do(t, http.MethodGet, "/api/books?include_inactive=true", nil)
		assert.Equal(t, float64(2), decode[map[string]any](t, w)["count"])
	})
}

func TestStudentsAPI(t *testing.T) {
	f := setupAPI(t)
	student := f.createStudent(t, "S-1", 3)

	w := f.do(t, http.MethodGet, "/api/students/"+itoa(student.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "s-1@example.com", decode[entities.Student](t, w).Email)

	w = f.do(t, http.MethodPost, "/api/students", gin.H{
		"student_number": "S-1",
		"name":           "Dup",
		"email":          "other@example.com",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "already_exists", decode[ErrorResponse](t, w).Code)

	w = f.do(t, http.MethodGet, "/api/students/404/loans", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = f.do(t, http.MethodGet, "/api/students/"+itoa(student.ID)+"/loans?status=borrowed", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, http.MethodGet, "/api/students/404/fines", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = f.do(t, http.MethodDelete, "/api/students/"+itoa(student.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)

	book := f.createBook(t, "Dune", 1)
	w = f.issue(t, student.ID, book.ID, "2024-01-10")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "unavailable", decode[ErrorResponse](t, w).Code)
}

func TestLoanLifecycleAPI(t *testing.T) {
	f := setupAPI(t)
	student := f.createStudent(t, "S-1", 3)
	book := f.createBook(t, "Dune", 1)

	w := f.issue(t, student.ID, book.ID, "2024-01-10")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	loan := decode[entities.Loan](t, w)
	assert.Equal(t, entities.LoanStatusIssued, loan.Status)

	t.Run("no copies left", func(t *testing.T) {
		other := f.createStudent(t, "S-2", 3)
		w := f.issue(t, other.ID, book.ID, "2024-01-10")
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "unavailable", decode[ErrorResponse](t, w).Code)
	})

	t.Run("due date in the past", func(t *testing.T) {
		other := f.createBook(t, "Emma", 1)
		w := f.issue(t, student.ID, other.ID, "2023-12-01")
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = f.issue(t, student.ID, other.ID, "next week")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown student", func(t *testing.T) {
		w := f.issue(t, 999, book.ID, "2024-01-10")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("late return charges a fine", func(t *testing.T) {
		w := f.do(t, http.MethodPost, "/api/loans/"+itoa(loan.ID)+"/return", gin.H{"return_date": "2024-01-15"})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		result := decode[circulation.ReturnResult](t, w)
		assert.Equal(t, entities.LoanStatusReturned, result.Loan.Status)
		require.NotNil(t, result.Fine)
		assert.Equal(t, 5, result.Fine.DaysOverdue)
		assert.Equal(t, "25.00", result.Fine.Amount.StringFixed(2))

		w = f.do(t, http.MethodGet, "/api/books/"+itoa(book.ID), nil)
		assert.Equal(t, 1, decode[entities.Book](t, w).AvailableCopies)

		w = f.do(t, http.MethodGet, "/api/students/"+itoa(student.ID)+"/fines?status=pending", nil)
		require.Equal(t, http.StatusOK, w.Code)
		summary := decode[fines.StudentFines](t, w)
		assert.Len(t, summary.Fines, 1)
		assert.Equal(t, "25.00", summary.Outstanding.StringFixed(2))
	})

	t.Run("second return", func(t *testing.T) {
		w := f.do(t, http.MethodPost, "/api/loans/"+itoa(loan.ID)+"/return", nil)
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "already_returned", decode[ErrorResponse](t, w).Code)
	})

	t.Run("loan history", func(t *testing.T) {
		w := f.do(t, http.MethodGet, "/api/students/"+itoa(student.ID)+"/loans?status=returned", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, float64(1), decode[map[string]any](t, w)["count"])

		w = f.do(t, http.MethodGet, "/api/loans/"+itoa(loan.ID), nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.NotNil(t, decode[entities.Loan](t, w).ReturnDate)
	})
}

func TestIssueLimitAPI(t *testing.T) {
	f := setupAPI(t)
	student := f.createStudent(t, "S-1", 1)
	first := f.createBook(t, "Dune", 2)
	second := f.createBook(t, "Emma", 1)

	require.Equal(t, http.StatusCreated, f.issue(t, student.ID, first.ID, "").Code)

	w := f.issue(t, student.ID, first.ID, "")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "duplicate_loan", decode[ErrorResponse](t, w).Code)

	w = f.issue(t, student.ID, second.ID, "")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "limit_exceeded", decode[ErrorResponse](t, w).Code)

	w = f.do(t, http.MethodPost, "/api/loans", gin.H{"book_id": second.ID})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestFinesAPI(t *testing.T) {
	f := setupAPI(t)
	student := f.createStudent(t, "S-1", 3)
	dune := f.createBook(t, "Dune", 1)
	emma := f.createBook(t, "Emma", 1)

	require.Equal(t, http.StatusCreated, f.issue(t, student.ID, dune.ID, "2024-01-10").Code)
	require.Equal(t, http.StatusCreated, f.issue(t, student.ID, emma.ID, "2024-01-12").Code)

	f.now = time.Date(2024, 1, 15, 1, 0, 0, 0, time.UTC)

	w := f.do(t, http.MethodPost, "/api/fines/generate", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	report := decode[fines.SweepReport](t, w)
	assert.Equal(t, 2, report.Evaluated)
	assert.Equal(t, 2, report.Count(fines.ActionCreated))
	assert.Empty(t, report.Errors)
	assert.NotEmpty(t, report.RunID)

	w = f.do(t, http.MethodGet, "/api/students/"+itoa(student.ID)+"/fines", nil)
	summary := decode[fines.StudentFines](t, w)
	require.Len(t, summary.Fines, 2)
	// 5 days on Dune (ceil of 4d1h) and 3 days on Emma.
	assert.Equal(t, "40.00", summary.Outstanding.StringFixed(2))

	first, second := summary.Fines[0].ID, summary.Fines[1].ID

	t.Run("rerun is idempotent", func(t *testing.T) {
		w := f.do(t, http.MethodPost, "/api/fines/generate", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 0, decode[fines.SweepReport](t, w).Evaluated)
	})

	t.Run("pay", func(t *testing.T) {
		w := f.do(t, http.MethodPost, "/api/fines/"+itoa(first)+"/pay", nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		paid := decode[entities.Fine](t, w)
		assert.Equal(t, entities.FineStatusPaid, paid.Status)
		require.NotNil(t, paid.PaidDate)

		w = f.do(t, http.MethodPost, "/api/fines/"+itoa(first)+"/pay", nil)
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "already_paid", decode[ErrorResponse](t, w).Code)

		w = f.do(t, http.MethodPost, "/api/fines/"+itoa(first)+"/waive", gin.H{"notes": "too late"})
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "cannot_waive_paid", decode[ErrorResponse](t, w).Code)
	})

	t.Run("waive", func(t *testing.T) {
		w := f.do(t, http.MethodPost, "/api/fines/"+itoa(second)+"/waive", gin.H{"notes": "hardship"})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		waived := decode[entities.Fine](t, w)
		assert.Equal(t, entities.FineStatusWaived, waived.Status)
		assert.Equal(t, "hardship", waived.Notes)

		w = f.do(t, http.MethodPost, "/api/fines/"+itoa(second)+"/pay", nil)
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "fine_waived", decode[ErrorResponse](t, w).Code)
	})

	t.Run("outstanding after settlement", func(t *testing.T) {
		w := f.do(t, http.MethodGet, "/api/students/"+itoa(student.ID)+"/fines", nil)
		assert.True(t, decode[fines.StudentFines](t, w).Outstanding.IsZero())
	})

	t.Run("missing fine", func(t *testing.T) {
		w := f.do(t, http.MethodGet, "/api/fines/9999", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)

		w = f.do(t, http.MethodPost, "/api/fines/9999/pay", nil)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("schedule without scheduler", func(t *testing.T) {
		w := f.do(t, http.MethodGet, "/api/fines/schedule", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, false, decode[map[string]any](t, w)["running"])
	})
}

func TestFinePolicyAPI(t *testing.T) {
	f := setupAPI(t)

	w := f.do(t, http.MethodGet, "/api/fine-policy", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "5.00", decode[entities.FinePolicy](t, w).RatePerDay.StringFixed(2))

	w = f.do(t, http.MethodPost, "/api/fine-policies", gin.H{"rate_per_day": "2.50", "grace_period_days": 2, "max_fine_amount": "20"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = f.do(t, http.MethodGet, "/api/fine-policy", nil)
	current := decode[entities.FinePolicy](t, w)
	assert.Equal(t, "2.50", current.RatePerDay.StringFixed(2))
	assert.Equal(t, 2, current.GracePeriodDays)
	require.True(t, current.MaxFineAmount.Valid)
	assert.Equal(t, "20.00", current.MaxFineAmount.Decimal.StringFixed(2))

	w = f.do(t, http.MethodPost, "/api/fine-policies", gin.H{"rate_per_day": "0", "grace_period_days": 0})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, http.MethodPost, "/api/fine-policies", gin.H{"rate_per_day": "1", "grace_period_days": -1})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, http.MethodGet, "/api/fine-policies", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), decode[map[string]any](t, w)["count"])
}

func TestSuggestionsAPI(t *testing.T) {
	f := setupAPI(t)
	student := f.createStudent(t, "S-1", 3)

	w := f.do(t, http.MethodPost, "/api/suggestions", gin.H{"student_id": student.ID, "title": "Middlemarch", "reason": "Course reading"})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	suggestion := decode[entities.BookSuggestion](t, w)
	assert.Equal(t, entities.SuggestionStatusPending, suggestion.Status)

	w = f.do(t, http.MethodPost, "/api/suggestions", gin.H{"student_id": 999, "title": "Nope"})
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = f.do(t, http.MethodPost, "/api/suggestions/"+itoa(suggestion.ID)+"/review", gin.H{"notes": "missing decision"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = f.do(t, http.MethodPost, "/api/suggestions/"+itoa(suggestion.ID)+"/review", gin.H{"approve": true, "notes": "ordered"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, entities.SuggestionStatusApproved, decode[entities.BookSuggestion](t, w).Status)

	w = f.do(t, http.MethodPost, "/api/suggestions/"+itoa(suggestion.ID)+"/review", gin.H{"approve": false})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = f.do(t, http.MethodGet, "/api/suggestions?status=approved", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), decode[map[string]any](t, w)["count"])

	w = f.do(t, http.MethodGet, "/api/suggestions?status=shelved", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTasksAPI(t *testing.T) {
	f := setupAPI(t)

	w := f.do(t, http.MethodGet, "/api/tasks/types", nil)
	require.Equal(t, http.StatusOK, w.Code)
	types := decode[map[string][]tasks.TaskTypeInfo](t, w)["task_types"]
	assert.Len(t, types, 2)

	w = f.do(t, http.MethodPost, "/api/tasks/generate_fines/run", nil)
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())
	require.Len(t, f.queue.enqueued, 1)
	assert.Equal(t, tasks.GenerateFinesTask{Trigger: "manual"}, f.queue.enqueued[0])

	w = f.do(t, http.MethodPost, "/api/tasks/cleanup_audit_events/run", gin.H{"retention_days": 30})
	require.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, tasks.CleanupAuditEventsTask{RetentionDays: 30, Trigger: "manual"}, f.queue.enqueued[1])

	w = f.do(t, http.MethodPost, "/api/tasks/enrich_book/run", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	f.queue.statuses["task-1"] = backlite.TaskStatusSuccess
	w = f.do(t, http.MethodGet, "/api/tasks/task-1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "success", decode[map[string]string](t, w)["status"])

	f.queue.err = errors.New("database is locked")
	w = f.do(t, http.MethodPost, "/api/tasks/generate_fines/run", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "internal server error", decode[ErrorResponse](t, w).Error)
}

func TestAuditAPI(t *testing.T) {
	f := setupAPI(t)
	student := f.createStudent(t, "S-1", 3)
	book := f.createBook(t, "Dune", 1)
	w := f.issue(t, student.ID, book.ID, "2024-01-10")
	require.Equal(t, http.StatusCreated, w.Code)
	loan := decode[entities.Loan](t, w)

	w = f.do(t, http.MethodGet, "/api/audit", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(3), decode[map[string]any](t, w)["total"])

	w = f.do(t, http.MethodGet, "/api/audit?type=loan", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(1), decode[map[string]any](t, w)["total"])

	w = f.do(t, http.MethodGet, "/api/audit/loan/"+itoa(loan.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	history := decode[struct {
		Events []entities.AuditEvent `json:"events"`
	}](t, w)
	require.Len(t, history.Events, 1)
	assert.Equal(t, "loan_issue", history.Events[0].Action)
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
