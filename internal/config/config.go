package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/cleared-dev/ledgercore/internal/balance"
	"github.com/cleared-dev/ledgercore/internal/model"
	"github.com/cleared-dev/ledgercore/internal/statement"
)

// FileName is the config file at the root of a ledger directory.
const FileName = "ledgercore.yaml"

// Config represents the top-level ledgercore.yaml configuration.
type Config struct {
	Business     BusinessConfig `yaml:"business"`
	Fiscal       FiscalConfig   `yaml:"fiscal"`
	BankAccounts []BankAccount  `yaml:"bank_accounts,omitempty"`
	Ledger       LedgerConfig   `yaml:"ledger"`
	Git          GitConfig      `yaml:"git"`
}

// BusinessConfig identifies the business entity.
type BusinessConfig struct {
	Name       string `yaml:"name"`
	EntityType string `yaml:"entity_type"`
}

// FiscalConfig defines the fiscal year boundaries.
type FiscalConfig struct {
	YearStart string `yaml:"year_start"` // "MM-DD" format, e.g. "01-01"
}

// BankAccount maps a bank feed to a chart-of-accounts entry.
type BankAccount struct {
	Name      string `yaml:"name"`
	Type      string `yaml:"type"`
	LastFour  string `yaml:"last_four"`
	AccountID int    `yaml:"account_id"`
}

// LedgerConfig controls balance conventions and report checks.
type LedgerConfig struct {
	// Tolerance is the largest report difference still shown as balanced.
	Tolerance string `yaml:"tolerance"`
	// OwnerCapitalNormal and DrawingsNormal are "debit" or "credit".
	OwnerCapitalNormal string `yaml:"owner_capital_normal"`
	DrawingsNormal     string `yaml:"drawings_normal"`
	// RollupBalances shows parent accounts with their subtree totals.
	RollupBalances bool `yaml:"rollup_balances"`
}

// GitConfig controls git integration.
type GitConfig struct {
	AutoCommit  bool   `yaml:"auto_commit"`
	AuthorName  string `yaml:"author_name"`
	AuthorEmail string `yaml:"author_email"`
}

// Load reads a ledgercore.yaml file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with sensible defaults for a new project.
func Default(businessName, entityType string) *Config {
	return &Config{
		Business: BusinessConfig{
			Name:       businessName,
			EntityType: entityType,
		},
		Fiscal: FiscalConfig{
			YearStart: "01-01",
		},
		Ledger: LedgerConfig{
			Tolerance:          "0.01",
			OwnerCapitalNormal: string(model.Debit),
			DrawingsNormal:     string(model.Debit),
		},
		Git: GitConfig{
			AutoCommit:  true,
			AuthorName:  "Ledgercore",
			AuthorEmail: "ledgercore@cleared.dev",
		},
	}
}

// Policy returns the balance policy with the configured owner's capital and
// drawings conventions. Unset fields keep the default.
func (c *Config) Policy() (balance.Policy, error) {
	p := balance.DefaultPolicy()
	for _, o := range []struct {
		field string
		value string
		typ   model.AccountType
	}{
		{"owner_capital_normal", c.Ledger.OwnerCapitalNormal, model.AccountTypeOwnersCapital},
		{"drawings_normal", c.Ledger.DrawingsNormal, model.AccountTypeDrawings},
	} {
		if o.value == "" {
			continue
		}
		side, err := parseSide(o.value)
		if err != nil {
			return balance.Policy{}, fmt.Errorf("ledger.%s: %w", o.field, err)
		}
		p = p.WithOverride(o.typ, side)
	}
	return p, nil
}

// ReportOptions returns statement options built from the ledger section.
func (c *Config) ReportOptions() (statement.Options, error) {
	opts := statement.DefaultOptions()
	p, err := c.Policy()
	if err != nil {
		return statement.Options{}, err
	}
	opts.Policy = p
	opts.Rollup = c.Ledger.RollupBalances
	if c.Ledger.Tolerance != "" {
		tol, err := decimal.NewFromString(c.Ledger.Tolerance)
		if err != nil {
			return statement.Options{}, fmt.Errorf("ledger.tolerance: %w", err)
		}
		if tol.IsNegative() {
			return statement.Options{}, fmt.Errorf("ledger.tolerance: must not be negative, got %s", tol)
		}
		opts.Tolerance = tol
	}
	return opts, nil
}

// BankAccountID returns the chart account for the named bank feed, or the
// first configured feed when name is empty.
func (c *Config) BankAccountID(name string) (int, error) {
	if len(c.BankAccounts) == 0 {
		return 0, fmt.Errorf("no bank accounts configured")
	}
	if name == "" {
		return c.BankAccounts[0].AccountID, nil
	}
	for _, b := range c.BankAccounts {
		if strings.EqualFold(b.Name, name) {
			return b.AccountID, nil
		}
	}
	return 0, fmt.Errorf("bank account %q not configured", name)
}

// FiscalYear returns the fiscal year containing t.
func (c *Config) FiscalYear(t time.Time) (model.DateRange, error) {
	ys := c.Fiscal.YearStart
	if ys == "" {
		ys = "01-01"
	}
	start, err := time.Parse("01-02", ys)
	if err != nil {
		return model.DateRange{}, fmt.Errorf("fiscal.year_start %q: %w", ys, err)
	}
	from := time.Date(t.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	if from.After(t) {
		from = from.AddDate(-1, 0, 0)
	}
	return model.DateRange{From: from, To: from.AddDate(1, 0, -1)}, nil
}

func parseSide(s string) (model.Side, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case string(model.Debit):
		return model.Debit, nil
	case string(model.Credit):
		return model.Credit, nil
	}
	return "", fmt.Errorf("want debit or credit, got %q", s)
}
