// Package app assembles the domain services over one database so the server
// and the CLI commands share the same wiring.
package app

import (
	"time"

	"go.uber.org/zap"

	"github.com/mrlokans/library/internal/audit"
	"github.com/mrlokans/library/internal/catalog"
	"github.com/mrlokans/library/internal/circulation"
	"github.com/mrlokans/library/internal/config"
	"github.com/mrlokans/library/internal/database"
	"github.com/mrlokans/library/internal/fines"
)

// Options carries the settings the services care about.
type Options struct {
	AccrueOverdue   bool
	DefaultLoanDays int
	DefaultMaxBooks int
	// Clock overrides the wall clock; tests only.
	Clock func() time.Time
}

// OptionsFromConfig picks the service settings out of the application config.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		AccrueOverdue:   cfg.FineSweep.AccrueOverdue,
		DefaultLoanDays: cfg.Circulation.DefaultLoanDays,
		DefaultMaxBooks: cfg.Circulation.DefaultMaxBooks,
	}
}

type Services struct {
	Audit       *audit.Service
	Fines       *fines.Engine
	Circulation *circulation.Service
	Catalog     *catalog.Service
}

func NewServices(db *database.Database, opts Options, log *zap.Logger) *Services {
	auditSvc := audit.NewService(db.Audit, log)

	fineOpts := []fines.Option{fines.WithAccrueOverdue(opts.AccrueOverdue)}
	circOpts := []circulation.Option{circulation.WithLoanDays(opts.DefaultLoanDays)}
	catOpts := []catalog.Option{catalog.WithDefaultMaxBooks(opts.DefaultMaxBooks)}
	if opts.Clock != nil {
		fineOpts = append(fineOpts, fines.WithClock(opts.Clock))
		circOpts = append(circOpts, circulation.WithClock(opts.Clock))
		catOpts = append(catOpts, catalog.WithClock(opts.Clock))
	}

	engine := fines.NewEngine(fines.Dependencies{
		Loans:    db.Loans,
		Fines:    db.Fines,
		Policies: db.Policies,
		Tx:       db.Tx,
		Audit:    auditSvc,
	}, log, fineOpts...)

	return &Services{
		Audit: auditSvc,
		Fines: engine,
		Circulation: circulation.NewService(circulation.Dependencies{
			Books:    db.Books,
			Students: db.Students,
			Loans:    db.Loans,
			Fines:    engine,
			Tx:       db.Tx,
			Audit:    auditSvc,
		}, log, circOpts...),
		Catalog: catalog.NewService(catalog.Dependencies{
			Books:       db.Books,
			Students:    db.Students,
			Suggestions: db.Suggestions,
			Tx:          db.Tx,
			Audit:       auditSvc,
		}, log, catOpts...),
	}
}
