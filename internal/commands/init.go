package commands

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/cleared-dev/ledgercore/internal/accounts"
	"github.com/cleared-dev/ledgercore/internal/auditlog"
	"github.com/cleared-dev/ledgercore/internal/config"
	"github.com/cleared-dev/ledgercore/internal/gitops"
	"github.com/cleared-dev/ledgercore/internal/model"
)

func newInitCommand(g *globalFlags) *cobra.Command {
	var name string
	var entityType string
	var noGit bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new ledger",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := g.dir
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}

			return runInit(cmd, absDir, name, entityType, g.actor, noGit)
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "business name (required)")
	_ = cmd.MarkFlagRequired("name")
	cmd.Flags().StringVar(&entityType, "entity-type", "sole_proprietorship", "entity type")
	cmd.Flags().BoolVar(&noGit, "no-git", false, "do not create a git repository")

	return cmd
}

func runInit(cmd *cobra.Command, dir, name, entityType, actor string, noGit bool) error {
	if _, err := os.Stat(filepath.Join(dir, config.FileName)); err == nil {
		return fmt.Errorf("%s already exists in %s", config.FileName, dir)
	}

	dirs := []string{
		"accounts",
		"logs",
		"reconcile",
		"import",
		filepath.Join("import", "processed"),
	}
	for _, d := range dirs {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	chart := accounts.DefaultChart(entityType)
	svc, err := accounts.NewService(chart)
	if err != nil {
		return fmt.Errorf("building chart of accounts: %w", err)
	}
	if err := svc.Save(dir); err != nil {
		return fmt.Errorf("writing chart of accounts: %w", err)
	}

	useGit := !noGit
	if useGit {
		if _, err := exec.LookPath("git"); err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), "warning: git not found; continuing without version control")
			useGit = false
		}
	}

	cfg := config.Default(name, entityType)
	cfg.Git.AutoCommit = useGit
	for _, a := range svc.ByType(model.AccountTypeCash) {
		cfg.BankAccounts = append(cfg.BankAccounts, config.BankAccount{Name: a.Name, Type: "checking", AccountID: a.ID})
	}
	if err := config.Save(filepath.Join(dir, config.FileName), cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	gitignore := "exports/\n.ledgercore-cache/\n"
	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(gitignore), 0o644); err != nil {
		return fmt.Errorf("writing .gitignore: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "import", ".gitkeep"), []byte{}, 0o644); err != nil {
		return fmt.Errorf("writing .gitkeep: %w", err)
	}

	var hash string
	if useGit {
		if err := gitops.Init(dir); err != nil {
			return fmt.Errorf("git init: %w", err)
		}
		hash, err = gitops.CommitAll(dir, "init: Initialize "+name, gitops.Author{Name: cfg.Git.AuthorName, Email: cfg.Git.AuthorEmail})
		if err != nil {
			return fmt.Errorf("initial commit: %w", err)
		}
	}

	if err := auditlog.Append(dir, []auditlog.Entry{{
		Timestamp:  time.Now().UTC(),
		Actor:      actor,
		Action:     auditlog.ActionInit,
		Details:    fmt.Sprintf("initialized %s (%s, %d accounts)", name, entityType, len(chart)),
		CommitHash: hash,
	}}); err != nil {
		return err
	}

	if hash != "" {
		fmt.Fprintf(cmd.OutOrStdout(), "Initialized ledger at %s (%s)\n", dir, hash)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "Initialized ledger at %s\n", dir)
	}
	return nil
}
