package reconcile

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/ledgercore/internal/model"
)

var (
	testTime = time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC)
	cashID   = 3
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func bankLine(id, amount string, day int) model.BankStatementLine {
	return model.BankStatementLine{
		ID:              id,
		TransactionDate: time.Date(2025, 1, day, 0, 0, 0, 0, time.UTC),
		Description:     "line " + id,
		Amount:          dec(amount),
		Reference:       "ref-" + id,
		Type:            "ACH_DEBIT",
	}
}

func posting(entryID, debit, credit string, day int) model.Posting {
	return model.Posting{
		JournalEntry: model.JournalEntry{
			ID:        entryID,
			AccountID: cashID,
			Debit:     dec(debit),
			Credit:    dec(credit),
		},
		Date: time.Date(2025, 1, day, 0, 0, 0, 0, time.UTC),
	}
}

func fixedClock() time.Time { return testTime }

func sampleBook() *Book {
	lines := []model.BankStatementLine{
		bankLine("L1", "-4.00", 3),
		bankLine("L2", "3500.00", 4),
		bankLine("L3", "-4.00", 10),
	}
	entries := []model.Posting{
		posting("2025-01-001b", "0", "4", 3),
		posting("2025-01-002a", "3500", "0", 4),
		posting("2025-01-003b", "0", "4.00", 10),
	}
	return NewBook(lines, entries, nil, WithClock(fixedClock))
}

func TestMatchTransactions(t *testing.T) {
	line := bankLine("L1", "-4.00", 3)
	entry := posting("2025-01-001b", "0", "4", 3).JournalEntry

	assert.NoError(t, MatchTransactions(line, entry))

	err := MatchTransactions(line, posting("x", "4", "0", 3).JournalEntry)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMatchRejected))
	assert.Equal(t, ReasonAmountMismatch, ReasonOf(err))
	assert.Contains(t, err.Error(), "bank -4 != entry 4")

	line.Matched = true
	assert.Equal(t, ReasonBankLineMatched, ReasonOf(MatchTransactions(line, entry)))
}

func TestMatchTransactions_ExactEquality(t *testing.T) {
	line := bankLine("L1", "-4.00", 3)
	err := MatchTransactions(line, posting("e", "0", "4.001", 3).JournalEntry)
	assert.Equal(t, ReasonAmountMismatch, ReasonOf(err))
}

func TestBookMatch(t *testing.T) {
	b := sampleBook()

	m, err := b.Match("L1", "2025-01-001b")
	require.NoError(t, err)
	assert.Equal(t, Match{BankLineID: "L1", EntryID: "2025-01-001b", MatchedAt: testTime}, m)

	_, err = b.Match("L1", "2025-01-003b")
	assert.Equal(t, ReasonBankLineMatched, ReasonOf(err))

	_, err = b.Match("L3", "2025-01-001b")
	assert.Equal(t, ReasonEntryMatched, ReasonOf(err))
	assert.Contains(t, err.Error(), "already matched to bank line L1")

	_, err = b.Match("nope", "2025-01-001b")
	assert.Equal(t, ReasonUnknownBankLine, ReasonOf(err))

	_, err = b.Match("L3", "nope")
	assert.Equal(t, ReasonUnknownEntry, ReasonOf(err))

	_, err = b.Match("L2", "2025-01-003b")
	assert.Equal(t, ReasonAmountMismatch, ReasonOf(err))

	// A rejected attempt leaves both sides available.
	_, err = b.Match("L2", "2025-01-002a")
	require.NoError(t, err)

	assert.Len(t, b.Matches(), 2)
	unmatched := b.UnmatchedLines()
	require.Len(t, unmatched, 1)
	assert.Equal(t, "L3", unmatched[0].ID)
	entries := b.UnmatchedEntries()
	require.Len(t, entries, 1)
	assert.Equal(t, "2025-01-003b", entries[0].ID)
}

func TestBookSuggest(t *testing.T) {
	b := sampleBook()

	got, err := b.Suggest("L3")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "2025-01-001b", got[0].ID)
	assert.Equal(t, "2025-01-003b", got[1].ID)

	_, err = b.Match("L1", "2025-01-001b")
	require.NoError(t, err)

	got, err = b.Suggest("L3")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "2025-01-003b", got[0].ID)

	got, err = b.Suggest("L1")
	require.NoError(t, err)
	assert.Empty(t, got, "matched lines have no candidates")

	_, err = b.Suggest("missing")
	assert.Equal(t, ReasonUnknownBankLine, ReasonOf(err))
}

func TestBookPriorMatches(t *testing.T) {
	lines := []model.BankStatementLine{bankLine("L1", "-4.00", 3), bankLine("L2", "-4.00", 4)}
	entries := []model.Posting{posting("2025-01-001b", "0", "4", 3), posting("2025-01-002b", "0", "4", 4)}
	prior := []Match{{BankLineID: "L1", EntryID: "2025-01-001b", MatchedAt: testTime}}

	b := NewBook(lines, entries, prior)
	assert.True(t, b.Lines()[0].Matched)
	assert.False(t, b.Lines()[1].Matched)

	_, err := b.Match("L2", "2025-01-001b")
	assert.Equal(t, ReasonEntryMatched, ReasonOf(err))
	_, err = b.Match("L2", "2025-01-002b")
	assert.NoError(t, err)
}

func TestBookConcurrentMatchOneWins(t *testing.T) {
	lines := []model.BankStatementLine{bankLine("L1", "-4.00", 3)}
	var entries []model.Posting
	for i := 0; i < 20; i++ {
		entries = append(entries, posting(string(rune('a'+i))+"-entry", "0", "4", 3))
	}
	b := NewBook(lines, entries, nil)

	var wins atomic.Int32
	var wg sync.WaitGroup
	for _, e := range entries {
		wg.Add(1)
		go func(entryID string) {
			defer wg.Done()
			if _, err := b.Match("L1", entryID); err == nil {
				wins.Add(1)
			} else {
				assert.Equal(t, ReasonBankLineMatched, ReasonOf(err))
			}
		}(e.ID)
	}
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
	assert.Len(t, b.Matches(), 1)
}

func TestStoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)

	added, err := s.AddLines([]model.BankStatementLine{bankLine("L1", "-4.00", 3), bankLine("L2", "3500.00", 4)})
	require.NoError(t, err)
	assert.Equal(t, 2, added)

	added, err = s.AddLines([]model.BankStatementLine{bankLine("L2", "3500.00", 4), bankLine("L3", "-4.00", 10)})
	require.NoError(t, err)
	assert.Equal(t, 1, added, "re-importing a line is a no-op")

	entries := []model.Posting{posting("2025-01-001b", "0", "4", 3)}
	b, err := s.Open(entries, WithClock(fixedClock))
	require.NoError(t, err)
	require.Len(t, b.Lines(), 3)

	_, err = b.Match("L1", "2025-01-001b")
	require.NoError(t, err)
	require.NoError(t, s.Save(b))

	reopened, err := s.Open(entries)
	require.NoError(t, err)
	assert.Equal(t, b.Matches(), reopened.Matches())
	lines := reopened.Lines()
	assert.True(t, lines[0].Matched)
	assert.Equal(t, "3500", lines[1].Amount.String())
	assert.Equal(t, "ref-L2", lines[1].Reference)

	_, err = reopened.Match("L3", "2025-01-001b")
	assert.Equal(t, ReasonEntryMatched, ReasonOf(err))

	// Matched flags survive a later import.
	_, err = s.AddLines([]model.BankStatementLine{bankLine("L1", "-4.00", 3)})
	require.NoError(t, err)
	stored, err := s.Lines()
	require.NoError(t, err)
	assert.True(t, stored[0].Matched)
}

func TestStoreEmpty(t *testing.T) {
	s := NewStore(t.TempDir())
	lines, err := s.Lines()
	require.NoError(t, err)
	assert.Empty(t, lines)
	matches, err := s.Matches()
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestStoreKeepsSubCentAmounts(t *testing.T) {
	s := NewStore(t.TempDir())
	_, err := s.AddLines([]model.BankStatementLine{bankLine("FX1", "-12.345", 5)})
	require.NoError(t, err)

	lines, err := s.Lines()
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, "-12.345", lines[0].Amount.String())

	b, err := s.Open([]model.Posting{posting("2025-01-004b", "0", "12.345", 5)})
	require.NoError(t, err)
	_, err = b.Match("FX1", "2025-01-004b")
	assert.NoError(t, err)
}

func TestStoreSave_FailedLinesWriteKeepsMatch(t *testing.T) {
	dir := t.TempDir()
	s := NewStore(dir)
	_, err := s.AddLines([]model.BankStatementLine{bankLine("L1", "-4.00", 3)})
	require.NoError(t, err)

	entries := []model.Posting{posting("2025-01-001b", "0", "4", 3)}
	b, err := s.Open(entries, WithClock(fixedClock))
	require.NoError(t, err)
	_, err = b.Match("L1", "2025-01-001b")
	require.NoError(t, err)

	// A non-empty directory in place of bank-lines.csv makes its rename fail.
	linesPath := filepath.Join(dir, "reconcile", "bank-lines.csv")
	original, err := os.ReadFile(linesPath)
	require.NoError(t, err)
	require.NoError(t, os.Remove(linesPath))
	require.NoError(t, os.MkdirAll(filepath.Join(linesPath, "blocker"), 0o755))
	require.Error(t, s.Save(b))

	require.NoError(t, os.RemoveAll(linesPath))
	require.NoError(t, os.WriteFile(linesPath, original, 0o644))

	reopened, err := s.Open(entries)
	require.NoError(t, err)
	assert.Len(t, reopened.Matches(), 1)
	assert.Empty(t, reopened.UnmatchedLines())
	_, err = reopened.Match("L1", "2025-01-001b")
	assert.Equal(t, ReasonBankLineMatched, ReasonOf(err))
}
