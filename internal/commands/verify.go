package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/ledgercore/internal/auditlog"
	"github.com/cleared-dev/ledgercore/internal/balance"
	"github.com/cleared-dev/ledgercore/internal/model"
)

func newVerifyCommand(g *globalFlags) *cobra.Command {
	var rebuild bool

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Compare stored balances with balances recomputed from the journals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := openWorkspace(g)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if rebuild {
				tr := balance.NewTracker(w.opts.Policy)
				if err := w.journals.Track(tr); err != nil {
					return err
				}
				if err := balance.SaveSnapshot(w.dir, tr); err != nil {
					return err
				}
				fmt.Fprintln(out, "Rebuilt stored balances from the journals.")
				return w.record(auditlog.ActionVerifyBalance, "rebuilt stored balances", "")
			}

			net, ok, err := balance.LoadSnapshot(w.dir)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(out, "No stored balances yet; nothing to verify.")
				return nil
			}
			tr := balance.NewTracker(w.opts.Policy)
			tr.Restore(net)

			postings, err := w.journals.Postings(0, model.DateRange{})
			if err != nil {
				return err
			}
			drifts := tr.Verify(w.accounts.All(), postings)
			if len(drifts) == 0 {
				fmt.Fprintf(out, "All %d account balances match the journals.\n", len(w.accounts.All()))
				return nil
			}

			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "NUMBER\tNAME\tSTORED\tCOMPUTED")
			for _, d := range drifts {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", d.Account.Number, d.Account.Name, d.Materialized.StringFixed(2), d.Computed.StringFixed(2))
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			return fmt.Errorf("%d account balances drifted; run verify --rebuild after reviewing", len(drifts))
		},
	}

	cmd.Flags().BoolVar(&rebuild, "rebuild", false, "recompute stored balances from the journals")
	return cmd
}
