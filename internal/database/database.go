package database

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mrlokans/library/internal/database/audit"
	"github.com/mrlokans/library/internal/database/books"
	"github.com/mrlokans/library/internal/database/dbctx"
	"github.com/mrlokans/library/internal/database/fines"
	"github.com/mrlokans/library/internal/database/loans"
	"github.com/mrlokans/library/internal/database/policies"
	"github.com/mrlokans/library/internal/database/students"
	"github.com/mrlokans/library/internal/database/suggestions"
	"github.com/mrlokans/library/internal/entities"
)

// Models lists every table managed by AutoMigrate.
var Models = []any{
	&entities.Book{},
	&entities.Student{},
	&entities.Loan{},
	&entities.FinePolicy{},
	&entities.Fine{},
	&entities.BookSuggestion{},
	&entities.AuditEvent{},
}

type Database struct {
	DB *gorm.DB

	Books       *books.Repository
	Students    *students.Repository
	Loans       *loans.Repository
	Fines       *fines.Repository
	Policies    *policies.Repository
	Suggestions *suggestions.Repository
	Audit       *audit.Repository
	Tx          *dbctx.Transactor
}

// Options tunes NewDatabase.
type Options struct {
	// Debug logs every SQL statement.
	Debug bool
	// Logger receives lifecycle messages. Defaults to a no-op logger.
	Logger *zap.Logger
}

func NewDatabase(dbPath string, opts Options) (*Database, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	level := logger.Silent
	if opts.Debug {
		level = logger.Info
	}

	// Foreign keys on, and a busy timeout so the scheduler's sweep and
	// interactive requests queue instead of failing with SQLITE_BUSY.
	dsn := dbPath + "?_foreign_keys=on&_busy_timeout=5000&_journal=WAL"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(level),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(Models...); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	log.Info("database initialized", zap.String("path", dbPath))

	return newDatabase(db), nil
}

// FromGorm wraps an already opened and migrated connection.
func FromGorm(db *gorm.DB) *Database {
	return newDatabase(db)
}

func newDatabase(db *gorm.DB) *Database {
	return &Database{
		DB:          db,
		Books:       books.NewRepository(db),
		Students:    students.NewRepository(db),
		Loans:       loans.NewRepository(db),
		Fines:       fines.NewRepository(db),
		Policies:    policies.NewRepository(db),
		Suggestions: suggestions.NewRepository(db),
		Audit:       audit.NewRepository(db),
		Tx:          dbctx.NewTransactor(db),
	}
}

// Ping checks connectivity.
func (d *Database) Ping(ctx context.Context) error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
