package balance

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ledgercore/internal/id"
	"github.com/cleared-dev/ledgercore/internal/model"
)

// ComputeBalance folds the postings for acct within rng using the default policy.
func ComputeBalance(acct model.Account, postings []model.Posting, rng model.DateRange) decimal.Decimal {
	return DefaultPolicy().ComputeBalance(acct, postings, rng)
}

// ComputeBalance returns Σdebit − Σcredit for debit-normal accounts and
// Σcredit − Σdebit for credit-normal ones. Postings for other accounts and
// postings outside rng are ignored.
func (p Policy) ComputeBalance(acct model.Account, postings []model.Posting, rng model.DateRange) decimal.Decimal {
	side := p.NormalBalance(acct.Type)
	total := decimal.Zero
	for _, ps := range postings {
		if ps.AccountID != acct.ID || !rng.Contains(ps.Date) {
			continue
		}
		total = total.Add(Delta(side, ps.JournalEntry))
	}
	return total
}

// RunningLine is one posting with the account balance after it.
type RunningLine struct {
	Posting model.Posting
	Delta   decimal.Decimal
	Balance decimal.Decimal
}

// Running is a single-account running-balance report.
type Running struct {
	Account model.Account
	Side    model.Side
	Opening decimal.Decimal // balance of postings dated before the range
	Lines   []RunningLine
	Closing decimal.Decimal
}

// ComputeRunningBalance uses the default policy.
func ComputeRunningBalance(acct model.Account, postings []model.Posting, rng model.DateRange) Running {
	return DefaultPolicy().ComputeRunningBalance(acct, postings, rng)
}

// ComputeRunningBalance accumulates acct's postings within rng in date order.
// Postings on the same day are ordered by entry ID, which follows creation
// order. The running balance starts from the balance of earlier postings.
func (p Policy) ComputeRunningBalance(acct model.Account, postings []model.Posting, rng model.DateRange) Running {
	side := p.NormalBalance(acct.Type)
	run := Running{Account: acct, Side: side, Opening: decimal.Zero}

	var in []model.Posting
	for _, ps := range postings {
		if ps.AccountID != acct.ID {
			continue
		}
		switch {
		case rng.Contains(ps.Date):
			in = append(in, ps)
		case !rng.From.IsZero() && ps.Date.Before(rng.From):
			run.Opening = run.Opening.Add(Delta(side, ps.JournalEntry))
		}
	}
	SortChronological(in)

	bal := run.Opening
	run.Lines = make([]RunningLine, 0, len(in))
	for _, ps := range in {
		d := Delta(side, ps.JournalEntry)
		bal = bal.Add(d)
		run.Lines = append(run.Lines, RunningLine{Posting: ps, Delta: d, Balance: bal})
	}
	run.Closing = bal
	return run
}

// SortChronological orders postings by calendar day, then by entry ID.
func SortChronological(postings []model.Posting) {
	sort.SliceStable(postings, func(i, j int) bool {
		di, dj := dayOf(postings[i]), dayOf(postings[j])
		if !di.Equal(dj) {
			return di.Before(dj)
		}
		return id.Compare(postings[i].ID, postings[j].ID) < 0
	})
}

func dayOf(ps model.Posting) time.Time {
	y, m, d := ps.Date.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
