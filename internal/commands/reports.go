package commands

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/cleared-dev/ledgercore/internal/model"
	"github.com/cleared-dev/ledgercore/internal/statement"
)

func newBalanceCommand(g *globalFlags) *cobra.Command {
	var asOf string

	cmd := &cobra.Command{
		Use:   "balance ACCOUNT",
		Short: "Show an account's balance on its normal side",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := openWorkspace(g)
			if err != nil {
				return err
			}
			a, err := w.account(args[0])
			if err != nil {
				return err
			}
			rng, err := asOfRange(asOf)
			if err != nil {
				return err
			}
			postings, err := w.journals.Postings(a.ID, rng)
			if err != nil {
				return err
			}
			bal := w.opts.Policy.ComputeBalance(a, postings, rng)
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s: %s (%s-normal, %s)\n",
				a.Number, a.Name, bal.StringFixed(2), w.opts.Policy.NormalBalance(a.Type), describeRange(rng))
			return nil
		},
	}

	cmd.Flags().StringVar(&asOf, "as-of", "", "include postings through this day (YYYY-MM-DD)")
	return cmd
}

func newRunningCommand(g *globalFlags) *cobra.Command {
	var rf rangeFlags

	cmd := &cobra.Command{
		Use:   "running ACCOUNT",
		Short: "Show an account's postings with the running balance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := openWorkspace(g)
			if err != nil {
				return err
			}
			a, err := w.account(args[0])
			if err != nil {
				return err
			}
			rng, err := rf.parse(w.cfg)
			if err != nil {
				return err
			}
			// Earlier postings feed the opening balance.
			postings, err := w.journals.Postings(a.ID, model.DateRange{})
			if err != nil {
				return err
			}
			run := w.opts.Policy.ComputeRunningBalance(a, postings, rng)

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s (%s-normal), %s\n", a.Number, a.Name, run.Side, describeRange(rng))
			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "DATE\tENTRY\tDESCRIPTION\tDEBIT\tCREDIT\tBALANCE")
			fmt.Fprintf(tw, "\t\tOpening balance\t\t\t%s\n", run.Opening.StringFixed(2))
			for _, l := range run.Lines {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
					l.Posting.Date.Format(dateFormat), l.Posting.ID, postingDescription(l.Posting),
					blankZero(l.Posting.Debit), blankZero(l.Posting.Credit), l.Balance.StringFixed(2))
			}
			fmt.Fprintf(tw, "\t\tClosing balance\t\t\t%s\n", run.Closing.StringFixed(2))
			return tw.Flush()
		},
	}

	rf.register(cmd)
	return cmd
}

func newLedgerCommand(g *globalFlags) *cobra.Command {
	var rf rangeFlags
	var accountNumber string

	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "General ledger report for every account or one",
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
			postings, err := w.journals.Postings(0, model.DateRange{})
			if err != nil {
				return err
			}
			gl, err := statement.BuildGeneralLedger(w.accounts.All(), postings, rng, accountID, w.opts)
			if err != nil {
				return err
			}
			return printGeneralLedger(cmd.OutOrStdout(), gl)
		},
	}

	rf.register(cmd)
	cmd.Flags().StringVar(&accountNumber, "account", "", "restrict to one account number and show running balances")
	return cmd
}

func printGeneralLedger(out io.Writer, gl statement.GeneralLedger) error {
	title := "General ledger"
	if gl.Account != nil {
		title += fmt.Sprintf(": %s %s", gl.Account.Number, gl.Account.Name)
	}
	fmt.Fprintf(out, "%s, %s\n", title, describeRange(gl.Range))

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	if gl.Account != nil {
		fmt.Fprintln(tw, "DATE\tENTRY\tDESCRIPTION\tDEBIT\tCREDIT\tBALANCE")
		fmt.Fprintf(tw, "\t\tOpening balance\t\t\t%s\n", gl.Opening.StringFixed(2))
		for _, l := range gl.Lines {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
				l.Posting.Date.Format(dateFormat), l.Posting.ID, postingDescription(l.Posting),
				blankZero(l.Posting.Debit), blankZero(l.Posting.Credit), l.Balance.StringFixed(2))
		}
	} else {
		fmt.Fprintln(tw, "DATE\tENTRY\tACCOUNT\tDESCRIPTION\tDEBIT\tCREDIT")
		for _, l := range gl.Lines {
			fmt.Fprintf(tw, "%s\t%s\t%s %s\t%s\t%s\t%s\n",
				l.Posting.Date.Format(dateFormat), l.Posting.ID, l.Account.Number, l.Account.Name,
				postingDescription(l.Posting), blankZero(l.Posting.Debit), blankZero(l.Posting.Credit))
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(out, "Total debits: %s  Total credits: %s  Difference: %s\n",
		gl.TotalDebit.StringFixed(2), gl.TotalCredit.StringFixed(2), gl.Difference.StringFixed(2))
	fmt.Fprintf(out, "Status: %s\n", gl.Status())
	return nil
}

func newTrialBalanceCommand(g *globalFlags) *cobra.Command {
	var rf rangeFlags

	cmd := &cobra.Command{
		Use:   "trial-balance",
		Short: "List every account's net balance in debit and credit columns",
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
			postings, err := w.journals.Postings(0, rng)
			if err != nil {
				return err
			}
			tb := statement.BuildTrialBalance(w.accounts.All(), postings, rng, w.opts)
			return printTrialBalance(cmd.OutOrStdout(), tb)
		},
	}

	rf.register(cmd)
	return cmd
}

func printTrialBalance(out io.Writer, tb statement.TrialBalance) error {
	fmt.Fprintf(out, "Trial balance, %s\n", describeRange(tb.Range))
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NUMBER\tNAME\tDEBIT\tCREDIT")
	for _, r := range tb.Rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", r.Account.Number, r.Account.Name, blankZero(r.Debit), blankZero(r.Credit))
	}
	fmt.Fprintf(tw, "\tTOTAL\t%s\t%s\n", tb.TotalDebit.StringFixed(2), tb.TotalCredit.StringFixed(2))
	if err := tw.Flush(); err != nil {
		return err
	}
	printStatus(out, tb.Status(), tb.Balanced, tb.Difference)
	return nil
}

func newBalanceSheetCommand(g *globalFlags) *cobra.Command {
	var asOf string
	var fiscal int

	cmd := &cobra.Command{
		Use:   "balance-sheet",
		Short: "Assets, liabilities and equity as of a date",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := openWorkspace(g)
			if err != nil {
				return err
			}
			at := time.Now().UTC()
			switch {
			case fiscal != 0 && asOf != "":
				return fmt.Errorf("--fiscal-year cannot be combined with --as-of")
			case fiscal != 0:
				fy, err := fiscalYear(w.cfg, fiscal)
				if err != nil {
					return err
				}
				at = fy.To
			case asOf != "":
				if at, err = parseDate(asOf); err != nil {
					return err
				}
			}
			journals, err := w.journals.All()
			if err != nil {
				return err
			}
			bs := statement.BuildBalanceSheet(w.accounts.All(), journals, at, w.opts)
			for _, warning := range bs.Warnings {
				w.warn(cmd, "%s", warning)
			}
			return printBalanceSheet(cmd.OutOrStdout(), bs)
		},
	}

	cmd.Flags().StringVar(&asOf, "as-of", "", "report date (YYYY-MM-DD, default today)")
	cmd.Flags().IntVar(&fiscal, "fiscal-year", 0, "report as of the last day of the fiscal year beginning in this calendar year")
	return cmd
}

func printBalanceSheet(out io.Writer, bs statement.BalanceSheet) error {
	fmt.Fprintf(out, "Balance sheet as of %s\n", bs.AsOf.Format(dateFormat))
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	section := func(title string, s statement.Section) {
		fmt.Fprintf(tw, "%s\t\t\n", title)
		for _, l := range s.Lines {
			if l.Amount.IsZero() {
				continue
			}
			fmt.Fprintf(tw, "  %s %s\t%s\t\n", l.Account.Number, l.Account.Name, l.Amount.StringFixed(2))
		}
		fmt.Fprintf(tw, "Total %s\t%s\t\n", title, s.Total.StringFixed(2))
	}
	total := func(label string, v decimal.Decimal) { fmt.Fprintf(tw, "%s\t%s\t\n", label, v.StringFixed(2)) }

	section("Assets", bs.Assets)
	section("Contra assets", bs.ContraAssets)
	total("TOTAL ASSETS", bs.TotalAssets)
	fmt.Fprintln(tw, "\t\t")
	section("Liabilities", bs.Liabilities)
	section("Equity", bs.Equity)
	section("Revenue", bs.Revenue)
	section("Expenses", bs.Expenses)
	total("Net income", bs.NetIncome)
	total("TOTAL EQUITY", bs.TotalEquity)
	total("TOTAL LIABILITIES + EQUITY", bs.TotalLiabilities.Add(bs.TotalEquity))
	if err := tw.Flush(); err != nil {
		return err
	}
	printStatus(out, bs.Status(), bs.Balanced, bs.Difference)
	return nil
}

func printStatus(out io.Writer, status string, balanced bool, diff decimal.Decimal) {
	if balanced {
		fmt.Fprintf(out, "Status: %s\n", status)
		return
	}
	fmt.Fprintf(out, "Status: %s (difference %s)\n", status, diff.StringFixed(2))
}

func asOfRange(asOf string) (model.DateRange, error) {
	if asOf == "" {
		return model.DateRange{}, nil
	}
	t, err := parseDate(asOf)
	if err != nil {
		return model.DateRange{}, err
	}
	return model.Through(t), nil
}

func postingDescription(p model.Posting) string {
	return firstNonEmpty(p.Description, p.JournalDescription, p.Reference)
}
