package commands_test

import (
	"bytes"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/ledgercore/internal/accounts"
	"github.com/cleared-dev/ledgercore/internal/auditlog"
	"github.com/cleared-dev/ledgercore/internal/commands"
	"github.com/cleared-dev/ledgercore/internal/config"
	"github.com/cleared-dev/ledgercore/internal/importer"
	"github.com/cleared-dev/ledgercore/internal/journal"
	"github.com/cleared-dev/ledgercore/internal/reconcile"
)

const chaseFixture = "../../testdata/chase_checking.csv"

type result struct {
	out string
	err string
}

func runLedgercore(t *testing.T, args ...string) (result, error) {
	t.Helper()
	root := commands.NewRootCommand()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(args)
	err := root.Execute()
	return result{out: stdout.String(), err: stderr.String()}, err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	res, err := runLedgercore(t, args...)
	require.NoError(t, err, "ledgercore %v\nstderr: %s", args, res.err)
	return res.out
}

func newLedger(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	mustRun(t, "init", dir, "--name", "Test Biz", "--no-git", "--actor", "tester")
	return dir
}

// seed posts an owner investment and a software charge.
func seed(t *testing.T, dir string) {
	t.Helper()
	mustRun(t, "-C", dir, "journal", "post", "--date", "2025-01-02", "--desc", "Owner investment",
		"--debit", "1101=10000.00", "--credit", "3101=10000.00")
	mustRun(t, "-C", dir, "journal", "post", "--date", "2025-01-03", "--desc", "GitHub Pro",
		"--debit", "5205=4.00", "--credit", "1101=4.00")
}

func TestInit_CreatesStructure(t *testing.T) {
	dir := newLedger(t)

	for _, d := range []string{"accounts", "logs", "reconcile", "import", filepath.Join("import", "processed")} {
		info, err := os.Stat(filepath.Join(dir, d))
		require.NoError(t, err, "directory %s should exist", d)
		assert.True(t, info.IsDir(), "%s should be a directory", d)
	}
	_, err := os.Stat(filepath.Join(dir, ".git"))
	assert.True(t, os.IsNotExist(err), "--no-git skips the repository")
}

func TestInit_Config(t *testing.T) {
	dir := newLedger(t)

	cfg, err := config.Load(filepath.Join(dir, config.FileName))
	require.NoError(t, err)
	assert.Equal(t, "Test Biz", cfg.Business.Name)
	assert.Equal(t, "sole_proprietorship", cfg.Business.EntityType)
	assert.False(t, cfg.Git.AutoCommit)
	require.Len(t, cfg.BankAccounts, 1)
	assert.Equal(t, "Business Checking", cfg.BankAccounts[0].Name)
	assert.Equal(t, 3, cfg.BankAccounts[0].AccountID)
}

func TestInit_Accounts(t *testing.T) {
	dir := newLedger(t)

	svc, err := accounts.Load(dir)
	require.NoError(t, err)
	assert.Len(t, svc.All(), 33)
	a, ok := svc.ByNumber("3101")
	require.True(t, ok)
	assert.Equal(t, "Owner's Capital", a.Name)
}

func TestInit_AuditLog(t *testing.T) {
	dir := newLedger(t)

	entries, err := auditlog.Read(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, auditlog.ActionInit, entries[0].Action)
	assert.Equal(t, "tester", entries[0].Actor)
}

func TestInit_RefusesExisting(t *testing.T) {
	dir := newLedger(t)
	_, err := runLedgercore(t, "init", dir, "--name", "Again", "--no-git")
	assert.ErrorContains(t, err, "already exists")
}

func TestInit_Git(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
	dir := t.TempDir()
	out := mustRun(t, "init", dir, "--name", "Git Biz")
	assert.Contains(t, out, "Initialized ledger at")

	_, err := os.Stat(filepath.Join(dir, ".git"))
	require.NoError(t, err)

	log := exec.Command("git", "log", "--format=%s", "-1")
	log.Dir = dir
	msg, err := log.Output()
	require.NoError(t, err)
	assert.Contains(t, string(msg), "init: Initialize Git Biz")

	entries, err := auditlog.Read(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.NotEmpty(t, entries[0].CommitHash)

	mustRun(t, "-C", dir, "journal", "post", "--date", "2025-01-02",
		"--debit", "1101=50", "--credit", "3101=50")
	entries, err = auditlog.Read(dir)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.NotEmpty(t, entries[1].CommitHash)
}

func TestJournalPost(t *testing.T) {
	dir := newLedger(t)

	out := mustRun(t, "-C", dir, "journal", "post", "--date", "2025-01-02", "--ref", "DEP-1",
		"--desc", "Owner investment", "--debit", "1101=10000.00", "--credit", "3101=10000.00")
	assert.Equal(t, "Posted 2025-01-001 (2 entries, 10000.00)\n", out)

	out = mustRun(t, "-C", dir, "journal", "post", "--date", "2025-01-20", "--desc", "Split purchase",
		"--debit", "5203=120.00", "--debit", "5205=30.00", "--credit", "1101=150.00")
	assert.Equal(t, "Posted 2025-01-002 (3 entries, 150.00)\n", out)

	data, err := os.ReadFile(filepath.Join(dir, "2025", "01", "journal.csv"))
	require.NoError(t, err)
	assert.Contains(t, string(data), journal.Header)
	assert.Contains(t, string(data), "2025-01-002,2025-01-002c,2025-01-20")

	entries, err := auditlog.Read(dir)
	require.NoError(t, err)
	posts := auditlog.Filter(entries, auditlog.ActionPostJournal)
	require.Len(t, posts, 2)
	assert.Equal(t, "2025-01-001", posts[0].Reference)
}

func TestJournalPost_Rejected(t *testing.T) {
	dir := newLedger(t)

	res, err := runLedgercore(t, "-C", dir, "journal", "post", "--date", "2025-01-02",
		"--debit", "1101=100.00", "--credit", "3101=90.00")
	require.Error(t, err)
	assert.ErrorIs(t, err, journal.ErrInvalidJournal)
	assert.Equal(t, journal.KindUnbalanced, journal.KindOf(err))
	assert.Contains(t, res.err, "rejected: unbalanced")
	assert.Contains(t, res.err, "difference 10.00")

	_, statErr := os.Stat(filepath.Join(dir, "2025", "01", "journal.csv"))
	assert.True(t, os.IsNotExist(statErr), "rejected journals are not written")

	_, err = runLedgercore(t, "-C", dir, "journal", "post", "--date", "2025-01-02",
		"--debit", "9999=1", "--credit", "3101=1")
	assert.ErrorContains(t, err, `no account numbered "9999"`)

	_, err = runLedgercore(t, "-C", dir, "journal", "post", "--date", "2025-01-02",
		"--debit", "1101=0", "--credit", "3101=0")
	assert.Equal(t, journal.KindZeroAmount, journal.KindOf(err))
}

func TestJournalList(t *testing.T) {
	dir := newLedger(t)
	seed(t, dir)

	out := mustRun(t, "-C", dir, "journal", "list")
	assert.Contains(t, out, "2025-01-001")
	assert.Contains(t, out, "2025-01-002b")
	assert.Contains(t, out, "Owner investment")

	out = mustRun(t, "-C", dir, "journal", "list", "--account", "5205")
	assert.NotContains(t, out, "2025-01-001")
	assert.Contains(t, out, "2025-01-002")

	out = mustRun(t, "-C", dir, "journal", "list", "--from", "2025-02-01")
	assert.Equal(t, "No journals.\n", out)
}

func TestBalance(t *testing.T) {
	dir := newLedger(t)
	seed(t, dir)

	out := mustRun(t, "-C", dir, "balance", "1101")
	assert.Equal(t, "1101 Business Checking: 9996.00 (debit-normal, all dates)\n", out)

	out = mustRun(t, "-C", dir, "balance", "1101", "--as-of", "2025-01-02")
	assert.Contains(t, out, "10000.00")

	out = mustRun(t, "-C", dir, "balance", "3101")
	assert.Contains(t, out, "-10000.00 (debit-normal")
}

func TestRunningAndLedger(t *testing.T) {
	dir := newLedger(t)
	seed(t, dir)

	out := mustRun(t, "-C", dir, "running", "1101", "--from", "2025-01-03")
	assert.Contains(t, out, "Opening balance")
	assert.Contains(t, out, "10000.00")
	assert.Contains(t, out, "9996.00")

	out = mustRun(t, "-C", dir, "ledger")
	assert.Contains(t, out, "General ledger, all dates")
	assert.Contains(t, out, "Total debits: 10004.00  Total credits: 10004.00  Difference: 0.00")
	assert.Contains(t, out, "Status: BALANCED")

	out = mustRun(t, "-C", dir, "ledger", "--account", "1101")
	assert.Contains(t, out, "General ledger: 1101 Business Checking")
	assert.Contains(t, out, "Status: NOT BALANCED")

	_, err := runLedgercore(t, "-C", dir, "ledger", "--from", "2025-02-01", "--to", "2025-01-01")
	assert.ErrorContains(t, err, "is before")
}

func TestTrialBalanceAndBalanceSheet(t *testing.T) {
	dir := newLedger(t)
	seed(t, dir)

	out := mustRun(t, "-C", dir, "trial-balance")
	assert.Contains(t, out, "Business Checking")
	assert.Contains(t, out, "9996.00")
	assert.Contains(t, out, "Status: BALANCED")

	out = mustRun(t, "-C", dir, "balance-sheet", "--as-of", "2025-01-31")
	assert.Contains(t, out, "Balance sheet as of 2025-01-31")
	assert.Contains(t, out, "TOTAL ASSETS")
	assert.Contains(t, out, "Net income")
	assert.Contains(t, out, "-4.00")
	assert.Contains(t, out, "Status: BALANCED")
}

func TestTrialBalance_ShowsDifference(t *testing.T) {
	dir := newLedger(t)
	seed(t, dir)

	// A one-sided row written outside ledgercore.
	f, err := os.OpenFile(filepath.Join(dir, "2025", "01", "journal.csv"), os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString("2025-01-099,2025-01-099a,2025-01-20,,,3,manual,50.00,\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	out := mustRun(t, "-C", dir, "trial-balance")
	assert.Contains(t, out, "10046.00")
	assert.Contains(t, out, "Status: NOT BALANCED (difference 50.00)")
}

func TestReports_FiscalYear(t *testing.T) {
	dir := newLedger(t)
	seed(t, dir)

	out := mustRun(t, "-C", dir, "trial-balance", "--fiscal-year", "2025")
	assert.Contains(t, out, "Trial balance, 2025-01-01 to 2025-12-31")
	assert.Contains(t, out, "9996.00")

	out = mustRun(t, "-C", dir, "trial-balance", "--fiscal-year", "2024")
	assert.NotContains(t, out, "9996.00")
	assert.Contains(t, out, "Status: BALANCED")

	out = mustRun(t, "-C", dir, "balance-sheet", "--fiscal-year", "2025")
	assert.Contains(t, out, "Balance sheet as of 2025-12-31")
	assert.Contains(t, out, "Status: BALANCED")

	path := filepath.Join(dir, config.FileName)
	cfg, err := config.Load(path)
	require.NoError(t, err)
	cfg.Fiscal.YearStart = "07-01"
	require.NoError(t, config.Save(path, cfg))

	out = mustRun(t, "-C", dir, "ledger", "--fiscal-year", "2024")
	assert.Contains(t, out, "2024-07-01 to 2025-06-30")
	assert.Contains(t, out, "Total debits: 10004.00")

	out = mustRun(t, "-C", dir, "balance-sheet", "--fiscal-year", "2024")
	assert.Contains(t, out, "Balance sheet as of 2025-06-30")

	_, err = runLedgercore(t, "-C", dir, "ledger", "--fiscal-year", "2024", "--from", "2025-01-01")
	assert.ErrorContains(t, err, "cannot be combined")
	_, err = runLedgercore(t, "-C", dir, "balance-sheet", "--fiscal-year", "2024", "--as-of", "2025-01-01")
	assert.ErrorContains(t, err, "cannot be combined")
}

func TestLog(t *testing.T) {
	dir := newLedger(t)
	seed(t, dir)

	out := mustRun(t, "-C", dir, "log")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4, out)
	assert.Contains(t, lines[0], "TIMESTAMP")
	assert.Contains(t, lines[1], "init")
	assert.Contains(t, lines[1], "tester")

	out = mustRun(t, "-C", dir, "log", "--action", auditlog.ActionPostJournal)
	lines = strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3, out)
	assert.Contains(t, lines[1], "2025-01-001")
	assert.Contains(t, lines[2], "2025-01-002")

	out = mustRun(t, "-C", dir, "log", "--action", auditlog.ActionReconcile)
	assert.Equal(t, "No audit entries.\n", out)
}

func TestBalanceSheet_ConventionalCapital(t *testing.T) {
	dir := newLedger(t)
	seed(t, dir)

	path := filepath.Join(dir, config.FileName)
	cfg, err := config.Load(path)
	require.NoError(t, err)
	cfg.Ledger.OwnerCapitalNormal = "credit"
	require.NoError(t, config.Save(path, cfg))

	out := mustRun(t, "-C", dir, "balance", "3101")
	assert.Contains(t, out, "10000.00 (credit-normal")
	out = mustRun(t, "-C", dir, "balance-sheet", "--as-of", "2025-01-31")
	assert.Contains(t, out, "Status: BALANCED")
}

func TestAccounts(t *testing.T) {
	dir := newLedger(t)
	seed(t, dir)

	out := mustRun(t, "-C", dir, "accounts", "list")
	assert.Contains(t, out, "Owner's Capital")
	assert.Contains(t, out, "contra_asset")

	out = mustRun(t, "-C", dir, "accounts", "list", "--under", "11")
	assert.Contains(t, out, "Current Assets")
	assert.Contains(t, out, "1101")
	assert.Contains(t, out, "1104")
	assert.NotContains(t, out, "1201")
	assert.NotContains(t, out, "Owner's Capital")
	_, err := runLedgercore(t, "-C", dir, "accounts", "list", "--under", "19")
	assert.ErrorContains(t, err, `no account numbered "19"`)

	flat := mustRun(t, "-C", dir, "accounts", "tree")
	rolled := mustRun(t, "-C", dir, "accounts", "tree", "--rollup")
	assert.Contains(t, flat, "1101 Business Checking")
	assert.NotEqual(t, flat, rolled)
	assert.Contains(t, rolled, "9996.00")
}

func TestReconcile(t *testing.T) {
	dir := newLedger(t)
	seed(t, dir)

	out := mustRun(t, "-C", dir, "reconcile", "import", chaseFixture)
	assert.Contains(t, out, "Imported 6 new lines from chase_checking.csv (0 already present)")
	out = mustRun(t, "-C", dir, "reconcile", "import", chaseFixture)
	assert.Contains(t, out, "Imported 0 new lines from chase_checking.csv (6 already present)")

	github := importer.LineID("chase_20250103_GITHUBPROS")
	again := importer.LineID("chase_20250115_GITHUBPROS")

	out = mustRun(t, "-C", dir, "reconcile", "suggest", github)
	assert.Contains(t, out, "2025-01-002b")
	assert.NotContains(t, out, "2025-01-001a")

	out = mustRun(t, "-C", dir, "reconcile", "match", github[:8], "2025-01-002b")
	assert.Contains(t, out, "Matched "+github+" to 2025-01-002b (-4.00)")

	_, err := runLedgercore(t, "-C", dir, "reconcile", "match", github, "2025-01-002b")
	assert.Equal(t, reconcile.ReasonBankLineMatched, reconcile.ReasonOf(err))

	_, err = runLedgercore(t, "-C", dir, "reconcile", "match", again, "2025-01-002b")
	assert.Equal(t, reconcile.ReasonEntryMatched, reconcile.ReasonOf(err))

	_, err = runLedgercore(t, "-C", dir, "reconcile", "match", again, "2025-01-001a")
	assert.Equal(t, reconcile.ReasonAmountMismatch, reconcile.ReasonOf(err))

	_, err = runLedgercore(t, "-C", dir, "reconcile", "match", "no-such-line", "2025-01-001a")
	assert.Equal(t, reconcile.ReasonUnknownBankLine, reconcile.ReasonOf(err))

	out = mustRun(t, "-C", dir, "reconcile", "list")
	assert.NotContains(t, out, github)
	assert.Contains(t, out, again)
	assert.Contains(t, out, "2025-01-001a")
	assert.NotContains(t, out, "2025-01-002b")

	matches, err := reconcile.NewStore(dir).Matches()
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "2025-01-002b", matches[0].EntryID)

	entries, err := auditlog.Read(dir)
	require.NoError(t, err)
	assert.Len(t, auditlog.Filter(entries, auditlog.ActionImportBank), 2)
	assert.Len(t, auditlog.Filter(entries, auditlog.ActionReconcile), 1)
}

func TestReconcileImport_ScansImportDir(t *testing.T) {
	dir := newLedger(t)
	data, err := os.ReadFile(chaseFixture)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "import", "jan.csv"), data, 0o644))

	out := mustRun(t, "-C", dir, "reconcile", "import")
	assert.Contains(t, out, "Imported 6 new lines from jan.csv")

	_, err = os.Stat(filepath.Join(dir, "import", "processed", "jan.csv"))
	assert.NoError(t, err)

	out = mustRun(t, "-C", dir, "reconcile", "import")
	assert.Equal(t, "No files to import.\n", out)
}

func TestVerify(t *testing.T) {
	dir := newLedger(t)

	out := mustRun(t, "-C", dir, "verify")
	assert.Contains(t, out, "No stored balances yet")

	seed(t, dir)
	out = mustRun(t, "-C", dir, "verify")
	assert.Equal(t, "All 33 account balances match the journals.\n", out)

	// A journal written outside ledgercore leaves the stored balances stale.
	f, err := os.OpenFile(filepath.Join(dir, "2025", "01", "journal.csv"), os.O_APPEND|os.O_WRONLY, 0o644)
	require.NoError(t, err)
	_, err = f.WriteString("2025-01-099,2025-01-099a,2025-01-20,,,3,manual,50.00,\n" +
		"2025-01-099,2025-01-099b,2025-01-20,,,25,manual,,50.00\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	res, err := runLedgercore(t, "-C", dir, "verify")
	assert.ErrorContains(t, err, "2 account balances drifted")
	assert.Contains(t, res.out, "9996.00")
	assert.Contains(t, res.out, "10046.00")

	mustRun(t, "-C", dir, "verify", "--rebuild")
	out = mustRun(t, "-C", dir, "verify")
	assert.Contains(t, out, "match the journals")
}

func TestOpenWorkspace_Missing(t *testing.T) {
	_, err := runLedgercore(t, "-C", t.TempDir(), "trial-balance")
	assert.ErrorContains(t, err, "run ledgercore init first")
}
