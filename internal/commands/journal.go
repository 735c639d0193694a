package commands

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/cleared-dev/ledgercore/internal/auditlog"
	"github.com/cleared-dev/ledgercore/internal/balance"
	"github.com/cleared-dev/ledgercore/internal/journal"
	"github.com/cleared-dev/ledgercore/internal/model"
)

func newJournalCommand(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Post and list journals",
	}
	cmd.AddCommand(newJournalPostCommand(g), newJournalListCommand(g))
	return cmd
}

func newJournalPostCommand(g *globalFlags) *cobra.Command {
	var (
		date    string
		ref     string
		desc    string
		id      string
		debits  []string
		credits []string
	)

	cmd := &cobra.Command{
		Use:   "post",
		Short: "Validate and post a journal",
		Long: `Post a journal with one or more debit and credit legs, each given as
ACCOUNT=AMOUNT where ACCOUNT is an account number. Debits must equal credits.`,
		Example: `  ledgercore journal post --date 2025-01-15 --desc "January rent" \
    --debit 5201=1200.00 --credit 1101=1200.00`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := openWorkspace(g)
			if err != nil {
				return err
			}

			at, err := parseDate(date)
			if err != nil {
				return err
			}
			j := model.Journal{ID: id, TransactionDate: at, ReferenceID: ref, Description: desc}
			for _, leg := range debits {
				e, err := w.parseLeg(leg, true)
				if err != nil {
					return err
				}
				e.Description = desc
				j.Entries = append(j.Entries, e)
			}
			for _, leg := range credits {
				e, err := w.parseLeg(leg, false)
				if err != nil {
					return err
				}
				e.Description = desc
				j.Entries = append(j.Entries, e)
			}

			if problems := journal.Check(j, w.accounts); len(problems) > 0 {
				for _, p := range problems {
					fmt.Fprintf(cmd.ErrOrStderr(), "rejected: %s\n", p)
				}
				return problems[0]
			}

			tr, err := w.tracker()
			if err != nil {
				return err
			}
			w.journals.Use(tr)

			posted, err := w.journals.Post(j)
			if err != nil {
				return err
			}
			if err := balance.SaveSnapshot(w.dir, tr); err != nil {
				return err
			}

			total, _ := posted.Totals()
			fmt.Fprintf(cmd.OutOrStdout(), "Posted %s (%d entries, %s)\n", posted.ID, len(posted.Entries), total.StringFixed(2))
			return w.record(auditlog.ActionPostJournal,
				fmt.Sprintf("%s %s", posted.ID, firstNonEmpty(desc, ref, "journal")), posted.ID)
		},
	}

	cmd.Flags().StringVar(&date, "date", "", "transaction date (YYYY-MM-DD, required)")
	_ = cmd.MarkFlagRequired("date")
	cmd.Flags().StringVar(&ref, "ref", "", "external reference")
	cmd.Flags().StringVar(&desc, "desc", "", "description")
	cmd.Flags().StringVar(&id, "id", "", "journal ID (assigned when empty)")
	cmd.Flags().StringArrayVar(&debits, "debit", nil, "debit leg ACCOUNT=AMOUNT (repeatable)")
	cmd.Flags().StringArrayVar(&credits, "credit", nil, "credit leg ACCOUNT=AMOUNT (repeatable)")
	return cmd
}

func (w *workspace) parseLeg(leg string, debit bool) (model.JournalEntry, error) {
	i := strings.LastIndex(leg, "=")
	if i <= 0 {
		return model.JournalEntry{}, fmt.Errorf("leg %q: want ACCOUNT=AMOUNT", leg)
	}
	a, err := w.account(leg[:i])
	if err != nil {
		return model.JournalEntry{}, fmt.Errorf("leg %q: %w", leg, err)
	}
	amt, err := decimal.NewFromString(strings.TrimSpace(leg[i+1:]))
	if err != nil {
		return model.JournalEntry{}, fmt.Errorf("leg %q: invalid amount: %w", leg, err)
	}
	e := model.JournalEntry{AccountID: a.ID, Debit: decimal.Zero, Credit: decimal.Zero}
	if debit {
		e.Debit = amt
	} else {
		e.Credit = amt
	}
	return e, nil
}

// tracker loads the persisted balances, rebuilding them from the journals
// when no snapshot exists.
func (w *workspace) tracker() (*balance.Tracker, error) {
	tr := balance.NewTracker(w.opts.Policy)
	net, ok, err := balance.LoadSnapshot(w.dir)
	if err != nil {
		return nil, err
	}
	if ok {
		tr.Restore(net)
		return tr, nil
	}
	if err := w.journals.Track(tr); err != nil {
		return nil, err
	}
	return tr, nil
}

func newJournalListCommand(g *globalFlags) *cobra.Command {
	var rf rangeFlags
	var accountNumber string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List posted journals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := openWorkspace(g)
			if err != nil {
				return err
			}
			rng, err := rf.parse(w.cfg)
			if err != nil {
				return err
			}
			accountID := 0
			if accountNumber != "" {
				a, err := w.account(accountNumber)
				if err != nil {
					return err
				}
				accountID = a.ID
			}

			journals, err := w.journals.All()
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			shown := 0
			for _, j := range journals {
				if !rng.Contains(j.TransactionDate) || !touches(j, accountID) {
					continue
				}
				shown++
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t\t\n", j.ID, j.TransactionDate.Format(dateFormat), j.ReferenceID, j.Description)
				for _, e := range j.Entries {
					a, _ := w.accounts.Get(e.AccountID)
					fmt.Fprintf(tw, "  %s\t%s\t%s\t\t%s\t%s\n", e.ID, a.Number, a.Name, blankZero(e.Debit), blankZero(e.Credit))
				}
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			if shown == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No journals.")
			}
			return nil
		},
	}

	rf.register(cmd)
	cmd.Flags().StringVar(&accountNumber, "account", "", "only journals touching this account number")
	return cmd
}

func touches(j model.Journal, accountID int) bool {
	if accountID == 0 {
		return true
	}
	for _, e := range j.Entries {
		if e.AccountID == accountID {
			return true
		}
	}
	return false
}

func blankZero(d decimal.Decimal) string {
	if d.IsZero() {
		return ""
	}
	return d.StringFixed(2)
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
