package commands

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/ledgercore/internal/auditlog"
)

func newLogCommand(g *globalFlags) *cobra.Command {
	var action string

	cmd := &cobra.Command{
		Use:   "log",
		Short: "Show the audit log",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := openWorkspace(g)
			if err != nil {
				return err
			}
			entries, err := auditlog.Read(w.dir)
			if err != nil {
				return err
			}
			if action != "" {
				entries = auditlog.Filter(entries, action)
			}

			out := cmd.OutOrStdout()
			if len(entries) == 0 {
				fmt.Fprintln(out, "No audit entries.")
				return nil
			}
			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "TIMESTAMP\tACTOR\tACTION\tREFERENCE\tCOMMIT\tDETAILS")
			for _, e := range entries {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
					e.Timestamp.UTC().Format(time.RFC3339), e.Actor, e.Action, e.Reference, shortHash(e.CommitHash), e.Details)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&action, "action", "", "only rows with this action (e.g. post_journal)")
	return cmd
}

func shortHash(h string) string {
	if len(h) > 7 {
		return h[:7]
	}
	return h
}
