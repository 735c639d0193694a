package reconcile

import (
	"sort"
	"sync"
	"time"

	"github.com/cleared-dev/ledgercore/internal/balance"
	"github.com/cleared-dev/ledgercore/internal/model"
)

// Match records one accepted pairing.
type Match struct {
	BankLineID string
	EntryID    string
	MatchedAt  time.Time
}

// Book holds bank lines, candidate ledger entries and the matches between
// them. Each bank line and each entry takes part in at most one match.
type Book struct {
	mu      sync.Mutex
	now     func() time.Time
	lines   []model.BankStatementLine
	lineIdx map[string]int
	entries map[string]model.Posting
	order   []string // entry IDs, chronological
	byLine  map[string]Match
	byEntry map[string]Match
	matches []Match
}

// BookOption configures a Book.
type BookOption func(*Book)

// WithClock sets the time source for MatchedAt.
func WithClock(now func() time.Time) BookOption {
	return func(b *Book) { b.now = now }
}

// NewBook builds a Book over the given lines, candidate entries and prior
// matches. Prior matches mark their line and entry as consumed.
func NewBook(lines []model.BankStatementLine, entries []model.Posting, prior []Match, opts ...BookOption) *Book {
	b := &Book{
		now:     time.Now,
		lineIdx: make(map[string]int, len(lines)),
		entries: make(map[string]model.Posting, len(entries)),
		byLine:  make(map[string]Match),
		byEntry: make(map[string]Match),
	}
	for _, o := range opts {
		o(b)
	}

	for _, l := range lines {
		if _, dup := b.lineIdx[l.ID]; dup {
			continue
		}
		b.lineIdx[l.ID] = len(b.lines)
		b.lines = append(b.lines, l)
	}

	sorted := make([]model.Posting, len(entries))
	copy(sorted, entries)
	balance.SortChronological(sorted)
	for _, e := range sorted {
		if _, dup := b.entries[e.ID]; dup {
			continue
		}
		b.entries[e.ID] = e
		b.order = append(b.order, e.ID)
	}

	for _, m := range prior {
		b.record(m)
	}
	return b
}

func (b *Book) record(m Match) {
	b.byLine[m.BankLineID] = m
	b.byEntry[m.EntryID] = m
	b.matches = append(b.matches, m)
	if i, ok := b.lineIdx[m.BankLineID]; ok {
		b.lines[i].Matched = true
	}
}

// Match pairs a bank line with a ledger entry. Only one of any number of
// concurrent calls naming the same line or entry succeeds.
func (b *Book) Match(lineID, entryID string) (Match, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	i, ok := b.lineIdx[lineID]
	if !ok {
		return Match{}, &MatchRejected{Reason: ReasonUnknownBankLine, BankLineID: lineID, EntryID: entryID}
	}
	entry, ok := b.entries[entryID]
	if !ok {
		return Match{}, &MatchRejected{Reason: ReasonUnknownEntry, BankLineID: lineID, EntryID: entryID}
	}
	if _, taken := b.byLine[lineID]; taken {
		return Match{}, &MatchRejected{Reason: ReasonBankLineMatched, BankLineID: lineID, EntryID: entryID}
	}
	if prev, taken := b.byEntry[entryID]; taken {
		return Match{}, &MatchRejected{
			Reason:     ReasonEntryMatched,
			BankLineID: lineID,
			EntryID:    entryID,
			Detail:     "already matched to bank line " + prev.BankLineID,
		}
	}
	if err := MatchTransactions(b.lines[i], entry.JournalEntry); err != nil {
		return Match{}, err
	}

	m := Match{BankLineID: lineID, EntryID: entryID, MatchedAt: b.now().UTC()}
	b.record(m)
	return m, nil
}

// Suggest lists unmatched entries whose signed amount equals the bank
// line's amount, oldest first.
func (b *Book) Suggest(lineID string) ([]model.Posting, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	i, ok := b.lineIdx[lineID]
	if !ok {
		return nil, &MatchRejected{Reason: ReasonUnknownBankLine, BankLineID: lineID}
	}
	line := b.lines[i]
	if line.Matched {
		return nil, nil
	}
	var out []model.Posting
	for _, eid := range b.order {
		if _, taken := b.byEntry[eid]; taken {
			continue
		}
		e := b.entries[eid]
		if e.Signed().Equal(line.Amount) {
			out = append(out, e)
		}
	}
	return out, nil
}

// Lines returns every bank line in load order with its matched flag.
func (b *Book) Lines() []model.BankStatementLine {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]model.BankStatementLine, len(b.lines))
	copy(out, b.lines)
	return out
}

// UnmatchedLines returns bank lines not yet reconciled, by date.
func (b *Book) UnmatchedLines() []model.BankStatementLine {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []model.BankStatementLine
	for _, l := range b.lines {
		if !l.Matched {
			out = append(out, l)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].TransactionDate.Before(out[j].TransactionDate) })
	return out
}

// UnmatchedEntries returns candidate entries not yet reconciled, oldest first.
func (b *Book) UnmatchedEntries() []model.Posting {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []model.Posting
	for _, eid := range b.order {
		if _, taken := b.byEntry[eid]; !taken {
			out = append(out, b.entries[eid])
		}
	}
	return out
}

// Matches returns every accepted match in acceptance order.
func (b *Book) Matches() []Match {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Match, len(b.matches))
	copy(out, b.matches)
	return out
}
