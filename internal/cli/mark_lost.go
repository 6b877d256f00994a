package cli

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/mrlokans/library/internal/app"
	"github.com/mrlokans/library/internal/config"
)

// MarkLostCommand declares the copy held by a loan lost. This is an
// administrative action with no HTTP route.
type MarkLostCommand struct {
	DatabasePath string
	LoanID       uint
	Notes        string
	Verbose      bool

	Out io.Writer
}

func NewMarkLostCommand() *MarkLostCommand {
	return &MarkLostCommand{Out: os.Stdout}
}

func (cmd *MarkLostCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("mark-lost", flag.ContinueOnError)

	var loanID uint64
	fs.StringVar(&cmd.DatabasePath, "db", config.DefaultDatabasePath, "Path to the library database")
	fs.Uint64Var(&loanID, "loan", 0, "ID of the loan whose copy was lost (required)")
	fs.StringVar(&cmd.Notes, "notes", "", "Reason recorded on the loan")
	fs.BoolVar(&cmd.Verbose, "verbose", false, "Enable verbose logging")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s mark-lost -loan <id> [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Mark an issued or overdue loan as lost. The copy is removed from stock and\n")
		fmt.Fprintf(os.Stderr, "any fine accrued so far is brought up to date.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if loanID == 0 {
		return fmt.Errorf("required flag -loan not provided")
	}
	cmd.LoanID = uint(loanID)
	return nil
}

func (cmd *MarkLostCommand) Run(ctx context.Context) error {
	db, log, err := openDatabase(cmd.DatabasePath, cmd.Verbose)
	if err != nil {
		return err
	}
	defer db.Close()
	defer func() { _ = log.Sync() }()

	services := app.NewServices(db, app.Options{}, log)

	result, err := services.Circulation.MarkLost(ctx, cmd.LoanID, cmd.Notes)
	if err != nil {
		return fmt.Errorf("mark loan %d lost: %w", cmd.LoanID, err)
	}

	fmt.Fprintf(cmd.Out, "Loan %d marked lost\n", result.Loan.ID)
	if result.Fine != nil {
		fmt.Fprintf(cmd.Out, "Pending fine %d: %s (%d days overdue)\n",
			result.Fine.ID, result.Fine.Amount.StringFixed(2), result.Fine.DaysOverdue)
	}
	return nil
}
