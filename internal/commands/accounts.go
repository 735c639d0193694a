package commands

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/ledgercore/internal/accounts"
	"github.com/cleared-dev/ledgercore/internal/model"
	"github.com/cleared-dev/ledgercore/internal/statement"
)

func newAccountsCommand(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "accounts",
		Short: "Inspect the chart of accounts",
	}
	cmd.AddCommand(newAccountsListCommand(g), newAccountsTreeCommand(g))
	return cmd
}

func newAccountsListCommand(g *globalFlags) *cobra.Command {
	var under string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List accounts with their normal balance and statement category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := openWorkspace(g)
			if err != nil {
				return err
			}

			accts := w.accounts.All()
			if under != "" {
				n := findNode(w.accounts.Hierarchy(), strings.TrimSpace(under))
				if n == nil {
					return fmt.Errorf("no account numbered %q", under)
				}
				accts = append([]model.Account{n.Account}, n.Descendants()...)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNUMBER\tNAME\tTYPE\tNORMAL\tCATEGORY")
			for _, a := range accts {
				c := model.Classify(a.Type)
				category := string(c.Category)
				if c.Unclassified() {
					category = "-"
				} else if c.Ambiguous() {
					category += "?"
				}
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\n",
					a.ID, a.Number, a.Name, a.Type, w.opts.Policy.NormalBalance(a.Type), category)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&under, "under", "", "only this account number and its sub-accounts")
	return cmd
}

// findNode returns the hierarchy node numbered number, descending only into
// subtrees whose number is a prefix of it.
func findNode(roots []*accounts.Node, number string) *accounts.Node {
	var found *accounts.Node
	accounts.Walk(roots, func(n *accounts.Node, _ int) bool {
		if found != nil {
			return false
		}
		if n.Account.Number == number {
			found = n
			return false
		}
		return strings.HasPrefix(number, n.Account.Number)
	})
	return found
}

func newAccountsTreeCommand(g *globalFlags) *cobra.Command {
	var asOf string
	var rollup bool

	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Show the account hierarchy with balances",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := openWorkspace(g)
			if err != nil {
				return err
			}
			rng := model.DateRange{}
			if asOf != "" {
				t, err := parseDate(asOf)
				if err != nil {
					return err
				}
				rng = model.Through(t)
			}
			if cmd.Flags().Changed("rollup") {
				w.opts.Rollup = rollup
			}

			postings, err := w.journals.Postings(0, rng)
			if err != nil {
				return err
			}
			nodes := statement.ChartView(w.accounts.Hierarchy(), postings, rng, w.opts)

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', tabwriter.AlignRight)
			statement.WalkChart(nodes, func(n *statement.ChartNode, depth int) {
				label := strings.Repeat("  ", depth) + n.Account.Number + " " + n.Account.Name
				fmt.Fprintf(tw, "%s\t%s\t\n", label, n.Shown(w.opts.Rollup).StringFixed(2))
			})
			return tw.Flush()
		},
	}

	cmd.Flags().StringVar(&asOf, "as-of", "", "include postings through this day (YYYY-MM-DD)")
	cmd.Flags().BoolVar(&rollup, "rollup", false, "show parent accounts with their subtree totals")
	return cmd
}
