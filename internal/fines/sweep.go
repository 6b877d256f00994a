package fines

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mrlokans/library/internal/entities"
	"github.com/mrlokans/library/internal/errs"
)

// SweepResult is the outcome for one loan.
type SweepResult struct {
	LoanID uint         `json:"loan_id"`
	FineID uint         `json:"fine_id,omitempty"`
	Action UpsertAction `json:"action"`
}

// SweepError is a per-loan failure. The sweep continues past it.
type SweepError struct {
	LoanID uint   `json:"loan_id"`
	Error  string `json:"error"`
}

// SweepReport summarises one run of GenerateFinesForOverdueBooks.
type SweepReport struct {
	RunID      string        `json:"run_id"`
	StartedAt  time.Time     `json:"started_at"`
	FinishedAt time.Time     `json:"finished_at"`
	Evaluated  int           `json:"evaluated"`
	Results    []SweepResult `json:"results"`
	Errors     []SweepError  `json:"errors"`
}

// Count returns how many results carry the given action.
func (r *SweepReport) Count(action UpsertAction) int {
	n := 0
	for _, res := range r.Results {
		if res.Action == action {
			n++
		}
	}
	return n
}

// GenerateFinesForOverdueBooks is the daily sweep. It selects issued loans
// whose due date has passed, brings each loan's pending fine up to date and
// marks the loan overdue. Each loan runs in its own transaction: a failure
// rolls back that loan only and is recorded in the report.
//
// The returned error is non-nil only when the candidate loans could not be
// listed at all.
func (e *Engine) GenerateFinesForOverdueBooks(ctx context.Context) (*SweepReport, error) {
	now := e.now()
	report := &SweepReport{
		RunID:     uuid.NewString(),
		StartedAt: now,
		Results:   []SweepResult{},
		Errors:    []SweepError{},
	}
	log := e.log.With(zap.String("run_id", report.RunID))

	statuses := []entities.LoanStatus{entities.LoanStatusIssued}
	if e.accrueOverdue {
		statuses = append(statuses, entities.LoanStatusOverdue)
	}

	candidates, err := e.loans.ListLoansDueBefore(ctx, statuses, now)
	if err != nil {
		err = fmt.Errorf("list overdue loans: %w", err)
		log.Error("fine sweep failed", zap.Error(err))
		if e.audit != nil {
			e.audit.LogSweep(ctx, "Fine sweep failed", map[string]any{"run_id": report.RunID}, err)
		}
		return nil, err
	}

	// One policy for the whole run, so every loan in a report is priced alike.
	policy, err := ResolveCurrentPolicy(ctx, e.policies)
	if err != nil {
		log.Error("fine sweep failed", zap.Error(err))
		return nil, err
	}

	report.Evaluated = len(candidates)
	for _, loan := range candidates {
		res, err := e.sweepLoan(ctx, loan, policy, now)
		if err != nil {
			log.Warn("fine sweep: loan failed", zap.Uint("loan_id", loan.ID), zap.Error(err))
			report.Errors = append(report.Errors, SweepError{LoanID: loan.ID, Error: err.Error()})
			continue
		}
		report.Results = append(report.Results, *res)
	}
	report.FinishedAt = e.now()

	log.Info("fine sweep completed",
		zap.Int("evaluated", report.Evaluated),
		zap.Int("created", report.Count(ActionCreated)),
		zap.Int("updated", report.Count(ActionUpdated)),
		zap.Int("cleared", report.Count(ActionCleared)),
		zap.Int("failed", len(report.Errors)),
		zap.Duration("duration", report.FinishedAt.Sub(report.StartedAt)))

	if e.audit != nil {
		var sweepErr error
		if len(report.Errors) > 0 {
			sweepErr = fmt.Errorf("%d of %d loans failed", len(report.Errors), report.Evaluated)
		}
		e.audit.LogSweep(ctx,
			fmt.Sprintf("Fine sweep: %d loans evaluated, %d fines created, %d updated",
				report.Evaluated, report.Count(ActionCreated), report.Count(ActionUpdated)),
			map[string]any{
				"run_id":    report.RunID,
				"evaluated": report.Evaluated,
				"created":   report.Count(ActionCreated),
				"updated":   report.Count(ActionUpdated),
				"cleared":   report.Count(ActionCleared),
				"failed":    len(report.Errors),
			}, sweepErr)
	}

	return report, nil
}

func (e *Engine) sweepLoan(ctx context.Context, loan entities.Loan, policy entities.FinePolicy, now time.Time) (res *SweepResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			res, err = nil, fmt.Errorf("panic: %v", r)
		}
	}()

	err = e.tx.WithinTransaction(ctx, func(ctx context.Context) error {
		assessment, err := e.assess(ctx, loan, now, CalculateFine(loan, policy, now))
		if err != nil {
			return err
		}

		if loan.Status == entities.LoanStatusIssued {
			if err := e.loans.MarkOverdue(ctx, loan.ID); err != nil {
				if errors.Is(err, errs.ErrInvalidTransition) {
					// Returned or lost since the listing; its own path priced it.
					return fmt.Errorf("loan %d changed during sweep: %w", loan.ID, err)
				}
				return fmt.Errorf("mark loan %d overdue: %w", loan.ID, err)
			}
		}

		res = &SweepResult{LoanID: loan.ID, Action: assessment.Action}
		if assessment.Fine != nil {
			res.FineID = assessment.Fine.ID
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}
