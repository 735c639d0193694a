package commands

import (
	"fmt"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/ledgercore/internal/auditlog"
	"github.com/cleared-dev/ledgercore/internal/importer"
	"github.com/cleared-dev/ledgercore/internal/model"
	"github.com/cleared-dev/ledgercore/internal/reconcile"
)

type reconcileFlags struct {
	bank string
}

func newReconcileCommand(g *globalFlags) *cobra.Command {
	rf := &reconcileFlags{}
	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Match bank statement lines to ledger entries",
	}
	cmd.PersistentFlags().StringVar(&rf.bank, "bank", "", "bank account name from the config (default: first configured)")
	cmd.AddCommand(
		newReconcileImportCommand(g),
		newReconcileListCommand(g, rf),
		newReconcileSuggestCommand(g, rf),
		newReconcileMatchCommand(g, rf),
	)
	return cmd
}

// openBook loads the stored bank lines and matches over the bank account's
// ledger entries.
func (w *workspace) openBook(rf *reconcileFlags) (*reconcile.Store, *reconcile.Book, model.Account, error) {
	bank, err := w.bankAccount(rf.bank)
	if err != nil {
		return nil, nil, model.Account{}, err
	}
	entries, err := w.journals.Postings(bank.ID, model.DateRange{})
	if err != nil {
		return nil, nil, model.Account{}, err
	}
	store := reconcile.NewStore(w.dir)
	book, err := store.Open(entries)
	if err != nil {
		return nil, nil, model.Account{}, err
	}
	return store, book, bank, nil
}

func newReconcileImportCommand(g *globalFlags) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "import [file]",
		Short: "Import a bank statement CSV",
		Long: `Import a bank statement CSV. Without a file, every CSV in import/ is
imported and moved to import/processed/.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := openWorkspace(g)
			if err != nil {
				return err
			}
			reg := importer.DefaultRegistry()
			store := reconcile.NewStore(w.dir)

			var paths []string
			scanned := len(args) == 0
			if scanned {
				files, err := importer.Scan(w.dir)
				if err != nil {
					return err
				}
				for _, f := range files {
					paths = append(paths, f.Path)
				}
				if len(paths) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No files to import.")
					return nil
				}
			} else {
				paths = args
			}

			var names []string
			for _, path := range paths {
				lines, err := reg.ParseFile(format, path)
				if err != nil {
					return err
				}
				added, err := store.AddLines(lines)
				if err != nil {
					return err
				}
				name := filepath.Base(path)
				fmt.Fprintf(cmd.OutOrStdout(), "Imported %d new lines from %s (%d already present)\n",
					added, name, len(lines)-added)
				if scanned {
					if err := importer.MarkProcessed(w.dir, name); err != nil {
						return err
					}
				}
				names = append(names, name)
			}
			return w.record(auditlog.ActionImportBank, "imported "+strings.Join(names, ", "), strings.Join(names, ";"))
		},
	}

	cmd.Flags().StringVar(&format, "format", "chase", "bank CSV format")
	return cmd
}

func newReconcileListCommand(g *globalFlags, rf *reconcileFlags) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List unmatched bank lines and ledger entries",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := openWorkspace(g)
			if err != nil {
				return err
			}
			_, book, bank, err := w.openBook(rf)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			lines := book.UnmatchedLines()
			if all {
				lines = book.Lines()
			}
			fmt.Fprintf(out, "Bank lines (%s %s):\n", bank.Number, bank.Name)
			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tDATE\tDESCRIPTION\tAMOUNT\tMATCHED")
			for _, l := range lines {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%t\n", l.ID, l.TransactionDate.Format(dateFormat), l.Description, l.Amount.StringFixed(2), l.Matched)
			}
			if err := tw.Flush(); err != nil {
				return err
			}

			fmt.Fprintln(out, "Unmatched ledger entries:")
			tw = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ENTRY\tDATE\tDESCRIPTION\tAMOUNT")
			for _, e := range book.UnmatchedEntries() {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.ID, e.Date.Format(dateFormat), postingDescription(e), e.Signed().StringFixed(2))
			}
			return tw.Flush()
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "include matched bank lines")
	return cmd
}

func newReconcileSuggestCommand(g *globalFlags, rf *reconcileFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "suggest LINE",
		Short: "List ledger entries with the same amount as a bank line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := openWorkspace(g)
			if err != nil {
				return err
			}
			_, book, _, err := w.openBook(rf)
			if err != nil {
				return err
			}
			line, err := resolveLine(book, args[0])
			if err != nil {
				return err
			}
			candidates, err := book.Suggest(line.ID)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s %s %s\n", line.ID, line.TransactionDate.Format(dateFormat), line.Description, line.Amount.StringFixed(2))
			if line.Matched {
				fmt.Fprintln(out, "Already matched.")
				return nil
			}
			if len(candidates) == 0 {
				fmt.Fprintln(out, "No unmatched entries with this amount.")
				return nil
			}
			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			for _, e := range candidates {
				fmt.Fprintf(tw, "  %s\t%s\t%s\t%s\n", e.ID, e.Date.Format(dateFormat), postingDescription(e), e.Signed().StringFixed(2))
			}
			return tw.Flush()
		},
	}
}

func newReconcileMatchCommand(g *globalFlags, rf *reconcileFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "match LINE ENTRY",
		Short: "Reconcile a bank line with a ledger entry",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := openWorkspace(g)
			if err != nil {
				return err
			}
			store, book, _, err := w.openBook(rf)
			if err != nil {
				return err
			}
			line, err := resolveLine(book, args[0])
			if err != nil {
				return err
			}
			m, err := book.Match(line.ID, args[1])
			if err != nil {
				return err
			}
			if err := store.Save(book); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Matched %s to %s (%s)\n", m.BankLineID, m.EntryID, line.Amount.StringFixed(2))
			return w.record(auditlog.ActionReconcile,
				fmt.Sprintf("bank line %s matched to %s", m.BankLineID, m.EntryID), m.BankLineID)
		},
	}
}

// resolveLine finds a bank line by ID or unique ID prefix.
func resolveLine(book *reconcile.Book, ref string) (model.BankStatementLine, error) {
	var found []model.BankStatementLine
	for _, l := range book.Lines() {
		if l.ID == ref {
			return l, nil
		}
		if strings.HasPrefix(l.ID, ref) {
			found = append(found, l)
		}
	}
	switch len(found) {
	case 0:
		return model.BankStatementLine{}, &reconcile.MatchRejected{Reason: reconcile.ReasonUnknownBankLine, BankLineID: ref}
	case 1:
		return found[0], nil
	}
	return model.BankStatementLine{}, fmt.Errorf("bank line prefix %q is ambiguous (%d lines)", ref, len(found))
}
