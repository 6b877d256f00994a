// Package catalog manages the book catalog, student accounts and student
// book suggestions. Copy counters are adjusted here only when the number of
// owned copies changes; lending and returning belong to circulation.
package catalog

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/mrlokans/library/internal/entities"
)

type BookStore interface {
	CreateBook(ctx context.Context, book *entities.Book) error
	GetBookByID(ctx context.Context, id uint) (*entities.Book, error)
	ListBooks(ctx context.Context, query string, includeInactive bool) ([]entities.Book, error)
	UpdateBook(ctx context.Context, book *entities.Book) error
	DeactivateBook(ctx context.Context, id uint) error
}

type StudentStore interface {
	CreateStudent(ctx context.Context, student *entities.Student) error
	GetStudentByID(ctx context.Context, id uint) (*entities.Student, error)
	FindByNumberOrEmail(ctx context.Context, number, email string) (*entities.Student, error)
	DeactivateStudent(ctx context.Context, id uint) error
}

type SuggestionStore interface {
	CreateSuggestion(ctx context.Context, s *entities.BookSuggestion) error
	GetSuggestionByID(ctx context.Context, id uint) (*entities.BookSuggestion, error)
	ListSuggestions(ctx context.Context, status entities.SuggestionStatus) ([]entities.BookSuggestion, error)
	Review(ctx context.Context, id uint, status entities.SuggestionStatus, notes string, at time.Time) error
}

type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type AuditLogger interface {
	LogCatalog(ctx context.Context, action, entityType string, entityID uint, description string)
}

type Dependencies struct {
	Books       BookStore
	Students    StudentStore
	Suggestions SuggestionStore
	Tx          Transactor
	Audit       AuditLogger // optional
}

type Service struct {
	books       BookStore
	students    StudentStore
	suggestions SuggestionStore
	tx          Transactor
	audit       AuditLogger
	log         *zap.Logger

	maxBooks int
	now      func() time.Time
}

type Option func(*Service)

// WithDefaultMaxBooks sets the borrowing limit of students created without one.
func WithDefaultMaxBooks(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxBooks = n
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func NewService(deps Dependencies, log *zap.Logger, opts ...Option) *Service {
	s := &Service{
		books:       deps.Books,
		students:    deps.Students,
		suggestions: deps.Suggestions,
		tx:          deps.Tx,
		audit:       deps.Audit,
		log:         log.Named("catalog"),
		maxBooks:    entities.DefaultMaxBooksAllowed,
		now:         func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) record(ctx context.Context, action, entityType string, id uint, description string) {
	if s.audit != nil {
		s.audit.LogCatalog(ctx, action, entityType, id, description)
	}
}
