package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Journal is a single balanced multi-line accounting transaction.
type Journal struct {
	ID              string // "YYYY-MM-NNN"
	TransactionDate time.Time
	ReferenceID     string
	Description     string
	Entries         []JournalEntry
}

// JournalEntry is one debit-or-credit line of a journal.
type JournalEntry struct {
	ID          string // journal ID plus leg suffix, e.g. "2025-01-001a"
	JournalID   string
	AccountID   int
	Debit       decimal.Decimal // zero if credit side
	Credit      decimal.Decimal // zero if debit side
	Description string
}

// Signed returns debit minus credit.
func (e JournalEntry) Signed() decimal.Decimal {
	return e.Debit.Sub(e.Credit)
}

// Totals returns the debit and credit sums across all entries.
func (j Journal) Totals() (debit, credit decimal.Decimal) {
	debit, credit = decimal.Zero, decimal.Zero
	for _, e := range j.Entries {
		debit = debit.Add(e.Debit)
		credit = credit.Add(e.Credit)
	}
	return debit, credit
}

// Posting is a journal entry carrying its journal's date and reference, the
// flattened shape balance computations consume.
type Posting struct {
	JournalEntry
	Date               time.Time
	Reference          string
	JournalDescription string
}

// Postings flattens a journal into postings in entry order.
func (j Journal) Postings() []Posting {
	out := make([]Posting, len(j.Entries))
	for i, e := range j.Entries {
		if e.JournalID == "" {
			e.JournalID = j.ID
		}
		out[i] = Posting{
			JournalEntry:       e,
			Date:               j.TransactionDate,
			Reference:          j.ReferenceID,
			JournalDescription: j.Description,
		}
	}
	return out
}

// FlattenJournals returns the postings of every journal.
func FlattenJournals(journals []Journal) []Posting {
	var out []Posting
	for _, j := range journals {
		out = append(out, j.Postings()...)
	}
	return out
}

// DateRange bounds a report by transaction date. Both ends are inclusive and
// compared by calendar day; a zero bound is open.
type DateRange struct {
	From time.Time
	To   time.Time
}

// Through returns an open-start range ending on asOf.
func Through(asOf time.Time) DateRange {
	return DateRange{To: asOf}
}

// Contains reports whether t falls inside the range.
func (r DateRange) Contains(t time.Time) bool {
	day := truncateDay(t)
	if !r.From.IsZero() && day.Before(truncateDay(r.From)) {
		return false
	}
	if !r.To.IsZero() && day.After(truncateDay(r.To)) {
		return false
	}
	return true
}

// Open reports whether neither bound is set.
func (r DateRange) Open() bool {
	return r.From.IsZero() && r.To.IsZero()
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
