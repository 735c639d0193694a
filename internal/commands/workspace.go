package commands

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/ledgercore/internal/accounts"
	"github.com/cleared-dev/ledgercore/internal/auditlog"
	"github.com/cleared-dev/ledgercore/internal/config"
	"github.com/cleared-dev/ledgercore/internal/gitops"
	"github.com/cleared-dev/ledgercore/internal/journal"
	"github.com/cleared-dev/ledgercore/internal/model"
	"github.com/cleared-dev/ledgercore/internal/statement"
)

const dateFormat = "2006-01-02"

// workspace is an opened ledger directory.
type workspace struct {
	dir      string
	actor    string
	cfg      *config.Config
	opts     statement.Options
	accounts *accounts.Service
	journals *journal.Service
}

func openWorkspace(g *globalFlags) (*workspace, error) {
	dir, err := filepath.Abs(g.dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}
	cfg, err := config.Load(filepath.Join(dir, config.FileName))
	if err != nil {
		return nil, fmt.Errorf("%w (run ledgercore init first)", err)
	}
	opts, err := cfg.ReportOptions()
	if err != nil {
		return nil, err
	}
	accts, err := accounts.Load(dir)
	if err != nil {
		return nil, err
	}
	return &workspace{
		dir:      dir,
		actor:    g.actor,
		cfg:      cfg,
		opts:     opts,
		accounts: accts,
		journals: journal.NewService(dir, accts),
	}, nil
}

// record commits pending changes when auto-commit is on and appends an
// audit log row carrying the commit hash.
func (w *workspace) record(action, details, reference string) error {
	var hash string
	if w.cfg.Git.AutoCommit && gitops.IsRepo(w.dir) {
		author := gitops.Author{Name: w.cfg.Git.AuthorName, Email: w.cfg.Git.AuthorEmail}
		h, err := gitops.CommitAll(w.dir, action+": "+details, author)
		if err != nil {
			return fmt.Errorf("committing: %w", err)
		}
		hash = h
	}
	return auditlog.Append(w.dir, []auditlog.Entry{{
		Timestamp:  time.Now().UTC(),
		Actor:      w.actor,
		Action:     action,
		Details:    details,
		Reference:  reference,
		CommitHash: hash,
	}})
}

// account resolves an account by number.
func (w *workspace) account(number string) (model.Account, error) {
	a, ok := w.accounts.ByNumber(strings.TrimSpace(number))
	if !ok {
		return model.Account{}, fmt.Errorf("no account numbered %q", number)
	}
	return a, nil
}

// bankAccount resolves the ledger account backing a bank feed. Without
// configured feeds the first Cash account is used.
func (w *workspace) bankAccount(name string) (model.Account, error) {
	if len(w.cfg.BankAccounts) == 0 && name == "" {
		cash := w.accounts.ByType(model.AccountTypeCash)
		if len(cash) == 0 {
			return model.Account{}, fmt.Errorf("no bank accounts configured and no Cash account in the chart")
		}
		return cash[0], nil
	}
	id, err := w.cfg.BankAccountID(name)
	if err != nil {
		return model.Account{}, err
	}
	a, ok := w.accounts.Get(id)
	if !ok {
		return model.Account{}, fmt.Errorf("bank account %q points at unknown account %d", name, id)
	}
	return a, nil
}

func (w *workspace) warn(cmd *cobra.Command, format string, args ...any) {
	fmt.Fprintf(cmd.ErrOrStderr(), "warning: "+format+"\n", args...)
}

func parseDate(s string) (time.Time, error) {
	t, err := time.Parse(dateFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, want YYYY-MM-DD", s)
	}
	return t, nil
}

// rangeFlags are the --from/--to and --fiscal-year bounds shared by reports.
type rangeFlags struct {
	from   string
	to     string
	fiscal int
}

func (r *rangeFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&r.from, "from", "", "first day included (YYYY-MM-DD)")
	cmd.Flags().StringVar(&r.to, "to", "", "last day included (YYYY-MM-DD)")
	cmd.Flags().IntVar(&r.fiscal, "fiscal-year", 0, "the fiscal year beginning in this calendar year")
}

func (r *rangeFlags) parse(cfg *config.Config) (model.DateRange, error) {
	if r.fiscal != 0 {
		if r.from != "" || r.to != "" {
			return model.DateRange{}, fmt.Errorf("--fiscal-year cannot be combined with --from or --to")
		}
		return fiscalYear(cfg, r.fiscal)
	}

	var rng model.DateRange
	var err error
	if r.from != "" {
		if rng.From, err = parseDate(r.from); err != nil {
			return rng, err
		}
	}
	if r.to != "" {
		if rng.To, err = parseDate(r.to); err != nil {
			return rng, err
		}
	}
	if !rng.From.IsZero() && !rng.To.IsZero() && rng.To.Before(rng.From) {
		return rng, fmt.Errorf("--to %s is before --from %s", r.to, r.from)
	}
	return rng, nil
}

// fiscalYear returns the fiscal year that begins in the given calendar year.
// December 31 always falls inside it.
func fiscalYear(cfg *config.Config, year int) (model.DateRange, error) {
	return cfg.FiscalYear(time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC))
}

func describeRange(rng model.DateRange) string {
	switch {
	case rng.Open():
		return "all dates"
	case rng.From.IsZero():
		return "through " + rng.To.Format(dateFormat)
	case rng.To.IsZero():
		return "from " + rng.From.Format(dateFormat)
	}
	return rng.From.Format(dateFormat) + " to " + rng.To.Format(dateFormat)
}
