// Package fines computes overdue fines and keeps the fine ledger in step with
// the loan ledger.
//
// CalculateFine is pure. Engine adds storage: UpsertFine keeps at most one
// pending fine per loan by updating it in place, which makes repeated sweeps
// and return-time recomputation idempotent. The daily sweep,
// GenerateFinesForOverdueBooks, processes each loan in its own transaction
// and collects per-loan failures in its report instead of aborting.
package fines

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mrlokans/library/internal/entities"
	"github.com/mrlokans/library/internal/errs"
)

// LoanStore is the part of the loan ledger the engine reads and transitions.
type LoanStore interface {
	ListLoansDueBefore(ctx context.Context, statuses []entities.LoanStatus, before time.Time) ([]entities.Loan, error)
	MarkOverdue(ctx context.Context, id uint) error
}

// FineStore is the fine ledger.
type FineStore interface {
	CreateFine(ctx context.Context, fine *entities.Fine) error
	GetFineByID(ctx context.Context, id uint) (*entities.Fine, error)
	ListFinesForLoan(ctx context.Context, loanID uint, statuses ...entities.FineStatus) ([]entities.Fine, error)
	ListFinesForStudent(ctx context.Context, studentID uint, status entities.FineStatus) ([]entities.Fine, error)
	UpdatePendingAmount(ctx context.Context, fine *entities.Fine) error
	MarkPaid(ctx context.Context, id uint, paidAt time.Time) error
	MarkWaived(ctx context.Context, id uint, notes string) error
}

// PolicyStore holds fine policy rows.
type PolicyStore interface {
	PolicyReader
	CreatePolicy(ctx context.Context, policy *entities.FinePolicy) error
	ListPolicies(ctx context.Context) ([]entities.FinePolicy, error)
}

// Transactor runs fn inside one storage transaction.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// AuditLogger receives fine, policy and sweep events.
type AuditLogger interface {
	LogFine(ctx context.Context, action string, fineID uint, description string, metadata map[string]any, err error)
	LogPolicy(ctx context.Context, policyID uint, description string)
	LogSweep(ctx context.Context, description string, metadata map[string]any, err error)
}

// Dependencies groups the stores the engine works against.
type Dependencies struct {
	Loans    LoanStore
	Fines    FineStore
	Policies PolicyStore
	Tx       Transactor
	Audit    AuditLogger // optional
}

type Engine struct {
	loans    LoanStore
	fines    FineStore
	policies PolicyStore
	tx       Transactor
	audit    AuditLogger
	log      *zap.Logger

	now           func() time.Time
	accrueOverdue bool
}

type Option func(*Engine)

// WithClock replaces time.Now, for tests and replays.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// WithAccrueOverdue makes the sweep re-evaluate loans that are already
// overdue, so their pending fines grow every day instead of only at return.
func WithAccrueOverdue(enabled bool) Option {
	return func(e *Engine) {
		e.accrueOverdue = enabled
	}
}

func NewEngine(deps Dependencies, log *zap.Logger, opts ...Option) *Engine {
	e := &Engine{
		loans:    deps.Loans,
		fines:    deps.Fines,
		policies: deps.Policies,
		tx:       deps.Tx,
		audit:    deps.Audit,
		log:      log.Named("fines"),
		now:      utcNow,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Timestamps are stored as text, so they must share one zone to compare.
func utcNow() time.Time {
	return time.Now().UTC()
}

// Now returns the engine's clock reading.
func (e *Engine) Now() time.Time {
	return e.now()
}

// CalculateFine evaluates a loan against the current policy.
func (e *Engine) CalculateFine(ctx context.Context, loan entities.Loan, at time.Time) (*FineResult, error) {
	policy, err := ResolveCurrentPolicy(ctx, e.policies)
	if err != nil {
		return nil, err
	}
	return CalculateFine(loan, policy, at), nil
}

// UpsertAction describes what an upsert did to the fine ledger.
type UpsertAction string

const (
	ActionCreated     UpsertAction = "created"
	ActionUpdated     UpsertAction = "updated"
	ActionNotDue      UpsertAction = "not_due"      // evaluated on or before the due date
	ActionWithinGrace UpsertAction = "within_grace" // overdue but no fine accrued yet
	ActionSettled     UpsertAction = "settled"      // earlier paid/waived fines already cover the amount
	ActionCleared     UpsertAction = "cleared"      // a pending fine was dropped because nothing is owed
)

// Assessment is the result of bringing one loan's fine up to date.
type Assessment struct {
	Action UpsertAction   `json:"action"`
	Fine   *entities.Fine `json:"fine,omitempty"`
	Result *FineResult    `json:"result,omitempty"`
}

// AssessFine calculates the loan's fine at the given time and upserts it.
// Callers that need atomicity with other writes pass a transactional ctx.
func (e *Engine) AssessFine(ctx context.Context, loan entities.Loan, at time.Time) (*Assessment, error) {
	result, err := e.CalculateFine(ctx, loan, at)
	if err != nil {
		return nil, err
	}
	return e.assess(ctx, loan, at, result)
}

// assess applies an evaluation to the ledger. An evaluation that owes nothing
// still clears a pending fine left by an earlier one, so the pending fine
// never outlives the latest evaluation.
func (e *Engine) assess(ctx context.Context, loan entities.Loan, at time.Time, result *FineResult) (*Assessment, error) {
	if result != nil {
		action, fine, err := e.UpsertFine(ctx, loan, *result)
		if err != nil {
			return nil, err
		}
		return &Assessment{Action: action, Fine: fine, Result: result}, nil
	}

	pending, err := e.fines.ListFinesForLoan(ctx, loan.ID, entities.FineStatusPending)
	if err != nil {
		return nil, fmt.Errorf("list pending fines for loan %d: %w", loan.ID, err)
	}
	if len(pending) > 0 {
		note := fmt.Sprintf("cleared %s: nothing owed as of %s",
			pending[0].Amount.StringFixed(2), at.Format(time.DateOnly))
		fine, err := e.clearPending(ctx, &pending[0], note)
		if err != nil {
			return nil, err
		}
		return &Assessment{Action: ActionCleared, Fine: fine}, nil
	}

	if !at.After(loan.DueDate) {
		return &Assessment{Action: ActionNotDue}, nil
	}
	return &Assessment{Action: ActionWithinGrace}, nil
}

// clearPending zeroes a pending fine and waives it. A zero amount keeps the
// row from offsetting later fines on the same loan; the note keeps what it
// carried.
func (e *Engine) clearPending(ctx context.Context, fine *entities.Fine, note string) (*entities.Fine, error) {
	previous := fine.Amount
	fine.Amount = decimal.Zero
	fine.DaysOverdue = 0
	fine.Notes = note
	if err := e.fines.UpdatePendingAmount(ctx, fine); err != nil {
		return nil, fmt.Errorf("clear fine %d: %w", fine.ID, err)
	}
	if err := e.fines.MarkWaived(ctx, fine.ID, note); err != nil {
		return nil, fmt.Errorf("clear fine %d: %w", fine.ID, err)
	}
	fine.Status = entities.FineStatusWaived

	e.log.Info("pending fine cleared",
		zap.Uint("loan_id", fine.LoanID),
		zap.Uint("fine_id", fine.ID),
		zap.String("previous_amount", previous.StringFixed(2)))
	if e.audit != nil {
		e.audit.LogFine(ctx, "fine_clear", fine.ID, note,
			map[string]any{"loan_id": fine.LoanID, "student_id": fine.StudentID, "previous_amount": previous.StringFixed(2)}, nil)
	}
	return fine, nil
}

// UpsertFine records a computed fine for a loan. A pending fine for the loan
// is updated in place; otherwise a new pending fine is created. Amounts of
// fines the loan already settled (paid or waived) are deducted and noted on
// the row. When nothing remains no fine is created, and a pending one is
// cleared.
func (e *Engine) UpsertFine(ctx context.Context, loan entities.Loan, result FineResult) (UpsertAction, *entities.Fine, error) {
	existing, err := e.fines.ListFinesForLoan(ctx, loan.ID)
	if err != nil {
		return "", nil, fmt.Errorf("list fines for loan %d: %w", loan.ID, err)
	}

	var pending *entities.Fine
	settled := decimal.Zero
	for i := range existing {
		switch existing[i].Status {
		case entities.FineStatusPending:
			pending = &existing[i]
		case entities.FineStatusPaid, entities.FineStatusWaived:
			settled = settled.Add(existing[i].Amount)
		}
	}

	amount := result.Amount.Sub(settled)
	if amount.IsNegative() {
		amount = decimal.Zero
	}
	notes := ""
	if settled.IsPositive() {
		notes = fmt.Sprintf("%s for %d days, net of %s settled",
			result.Amount.StringFixed(2), result.DaysOverdue, settled.StringFixed(2))
	}

	if amount.IsZero() {
		if pending != nil {
			cleared, err := e.clearPending(ctx, pending, notes)
			if err != nil {
				return "", nil, err
			}
			return ActionSettled, cleared, nil
		}
		return ActionSettled, nil, nil
	}

	if pending != nil {
		return e.updatePending(ctx, pending, amount, notes, result)
	}

	fine := &entities.Fine{
		LoanID:         loan.ID,
		StudentID:      loan.StudentID,
		Amount:         amount,
		DaysOverdue:    result.DaysOverdue,
		FineRatePerDay: result.RatePerDay,
		Status:         entities.FineStatusPending,
		Notes:          notes,
	}
	if err := e.fines.CreateFine(ctx, fine); err != nil {
		// A concurrent writer may have created the pending fine first; the
		// unique index rejects ours, so fold into theirs.
		again, lerr := e.fines.ListFinesForLoan(ctx, loan.ID, entities.FineStatusPending)
		if lerr != nil || len(again) == 0 {
			return "", nil, fmt.Errorf("create fine for loan %d: %w", loan.ID, err)
		}
		return e.updatePending(ctx, &again[0], amount, notes, result)
	}

	e.log.Debug("fine created",
		zap.Uint("loan_id", loan.ID),
		zap.Uint("fine_id", fine.ID),
		zap.String("amount", fine.Amount.StringFixed(2)),
		zap.Int("days_overdue", fine.DaysOverdue))

	return ActionCreated, fine, nil
}

func (e *Engine) updatePending(ctx context.Context, fine *entities.Fine, amount decimal.Decimal, notes string, result FineResult) (UpsertAction, *entities.Fine, error) {
	fine.Amount = amount
	fine.DaysOverdue = result.DaysOverdue
	fine.FineRatePerDay = result.RatePerDay
	fine.Notes = notes
	if err := e.fines.UpdatePendingAmount(ctx, fine); err != nil {
		return "", nil, fmt.Errorf("update fine %d: %w", fine.ID, err)
	}
	return ActionUpdated, fine, nil
}

// PayFine settles a pending fine.
func (e *Engine) PayFine(ctx context.Context, fineID uint, paidAt time.Time) (*entities.Fine, error) {
	fine, err := e.fines.GetFineByID(ctx, fineID)
	if err != nil {
		return nil, err
	}
	if err := checkPending(fine, errs.ErrAlreadyPaid); err != nil {
		return nil, err
	}

	if err := e.fines.MarkPaid(ctx, fineID, paidAt); err != nil {
		return nil, e.remapTransition(ctx, fineID, errs.ErrAlreadyPaid, err)
	}

	fine.Status = entities.FineStatusPaid
	fine.PaidDate = &paidAt

	e.log.Info("fine paid", zap.Uint("fine_id", fineID), zap.String("amount", fine.Amount.StringFixed(2)))
	if e.audit != nil {
		e.audit.LogFine(ctx, "fine_pay", fineID,
			fmt.Sprintf("Fine of %s paid", fine.Amount.StringFixed(2)),
			map[string]any{"loan_id": fine.LoanID, "student_id": fine.StudentID}, nil)
	}
	return fine, nil
}

// WaiveFine forgives a pending fine.
func (e *Engine) WaiveFine(ctx context.Context, fineID uint, notes string) (*entities.Fine, error) {
	fine, err := e.fines.GetFineByID(ctx, fineID)
	if err != nil {
		return nil, err
	}
	if err := checkPending(fine, errs.ErrCannotWaivePaid); err != nil {
		return nil, err
	}

	if err := e.fines.MarkWaived(ctx, fineID, notes); err != nil {
		return nil, e.remapTransition(ctx, fineID, errs.ErrCannotWaivePaid, err)
	}

	fine.Status = entities.FineStatusWaived
	fine.Notes = notes

	e.log.Info("fine waived", zap.Uint("fine_id", fineID), zap.String("amount", fine.Amount.StringFixed(2)))
	if e.audit != nil {
		e.audit.LogFine(ctx, "fine_waive", fineID,
			fmt.Sprintf("Fine of %s waived", fine.Amount.StringFixed(2)),
			map[string]any{"loan_id": fine.LoanID, "student_id": fine.StudentID, "notes": notes}, nil)
	}
	return fine, nil
}

// checkPending rejects terminal fines. paidErr is returned for paid fines.
func checkPending(fine *entities.Fine, paidErr error) error {
	switch fine.Status {
	case entities.FineStatusPaid:
		return fmt.Errorf("fine %d: %w", fine.ID, paidErr)
	case entities.FineStatusWaived:
		return fmt.Errorf("fine %d: %w", fine.ID, errs.ErrFineWaived)
	}
	return nil
}

// remapTransition turns a lost compare-and-set race into the error the
// caller would have seen had it read the fine a moment later.
func (e *Engine) remapTransition(ctx context.Context, fineID uint, paidErr, err error) error {
	if !errors.Is(err, errs.ErrInvalidTransition) {
		return err
	}
	fine, gerr := e.fines.GetFineByID(ctx, fineID)
	if gerr != nil {
		return gerr
	}
	if cerr := checkPending(fine, paidErr); cerr != nil {
		return cerr
	}
	return err
}

// GetFine returns one fine.
func (e *Engine) GetFine(ctx context.Context, fineID uint) (*entities.Fine, error) {
	return e.fines.GetFineByID(ctx, fineID)
}

// StudentFines lists a student's fines with the outstanding total.
type StudentFines struct {
	StudentID   uint            `json:"student_id"`
	Fines       []entities.Fine `json:"fines"`
	Outstanding decimal.Decimal `json:"outstanding"`
}

// GetStudentFines lists a student's fines, optionally filtered by status.
// Outstanding always reflects every pending fine of the student.
func (e *Engine) GetStudentFines(ctx context.Context, studentID uint, status entities.FineStatus) (*StudentFines, error) {
	list, err := e.fines.ListFinesForStudent(ctx, studentID, status)
	if err != nil {
		return nil, fmt.Errorf("list fines for student %d: %w", studentID, err)
	}

	pending := list
	if status != entities.FineStatusPending {
		pending, err = e.fines.ListFinesForStudent(ctx, studentID, entities.FineStatusPending)
		if err != nil {
			return nil, fmt.Errorf("list pending fines for student %d: %w", studentID, err)
		}
	}

	outstanding := decimal.Zero
	for _, f := range pending {
		outstanding = outstanding.Add(f.Amount)
	}

	if list == nil {
		list = []entities.Fine{}
	}
	return &StudentFines{StudentID: studentID, Fines: list, Outstanding: outstanding}, nil
}
