package commands

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/ledgercore/internal/buildinfo"
)

type globalFlags struct {
	dir   string
	actor string
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	g := &globalFlags{}

	rootCmd := &cobra.Command{
		Use:     "ledgercore",
		Short:   "Double-entry ledger for small businesses",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&g.dir, "dir", "C", ".", "ledger directory")
	rootCmd.PersistentFlags().StringVar(&g.actor, "actor", defaultActor(), "name recorded in the audit log")

	rootCmd.AddCommand(
		newInitCommand(g),
		newAccountsCommand(g),
		newJournalCommand(g),
		newBalanceCommand(g),
		newRunningCommand(g),
		newLedgerCommand(g),
		newTrialBalanceCommand(g),
		newBalanceSheetCommand(g),
		newReconcileCommand(g),
		newVerifyCommand(g),
		newLogCommand(g),
	)

	return rootCmd
}

func defaultActor() string {
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "ledgercore"
}
