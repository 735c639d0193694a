package statement

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ledgercore/internal/balance"
	"github.com/cleared-dev/ledgercore/internal/model"
)

// LedgerLine is one posting in a general ledger report.
type LedgerLine struct {
	Posting model.Posting
	Account model.Account
	// Balance is the running balance; set in single-account mode only.
	Balance *decimal.Decimal
}

// GeneralLedger lists postings in a date range, for every account or one.
type GeneralLedger struct {
	Range       model.DateRange
	Account     *model.Account // nil in all-accounts mode
	Opening     decimal.Decimal
	Lines       []LedgerLine
	TotalDebit  decimal.Decimal
	TotalCredit decimal.Decimal
	Difference  decimal.Decimal // TotalDebit - TotalCredit
	Balanced    bool
}

// BuildGeneralLedger lists postings within rng chronologically. With a
// non-zero accountID only that account's postings are listed and each line
// carries the running balance.
func BuildGeneralLedger(accts []model.Account, postings []model.Posting, rng model.DateRange, accountID int, opts Options) (GeneralLedger, error) {
	byID := indexAccounts(accts)
	gl := GeneralLedger{Range: rng, TotalDebit: decimal.Zero, TotalCredit: decimal.Zero, Opening: decimal.Zero}

	if accountID != 0 {
		acct, ok := byID[accountID]
		if !ok {
			return GeneralLedger{}, fmt.Errorf("%w: %d", ErrUnknownAccount, accountID)
		}
		gl.Account = &acct

		run := opts.Policy.ComputeRunningBalance(acct, postings, rng)
		gl.Opening = run.Opening
		for _, rl := range run.Lines {
			bal := rl.Balance
			gl.Lines = append(gl.Lines, LedgerLine{Posting: rl.Posting, Account: acct, Balance: &bal})
		}
	} else {
		var in []model.Posting
		for _, ps := range postings {
			if rng.Contains(ps.Date) {
				in = append(in, ps)
			}
		}
		balance.SortChronological(in)
		for _, ps := range in {
			gl.Lines = append(gl.Lines, LedgerLine{Posting: ps, Account: byID[ps.AccountID]})
		}
	}

	for _, l := range gl.Lines {
		gl.TotalDebit = gl.TotalDebit.Add(l.Posting.Debit)
		gl.TotalCredit = gl.TotalCredit.Add(l.Posting.Credit)
	}
	gl.Difference = gl.TotalDebit.Sub(gl.TotalCredit)
	gl.Balanced = opts.withinTolerance(gl.Difference)
	return gl, nil
}

// Status returns BALANCED or NOT BALANCED.
func (gl GeneralLedger) Status() string { return Status(gl.Balanced) }

// TrialBalanceRow is one account's net balance placed in its debit or credit column.
type TrialBalanceRow struct {
	Account model.Account
	Debit   decimal.Decimal
	Credit  decimal.Decimal
}

// TrialBalance lists every account with a non-zero net balance.
type TrialBalance struct {
	Range       model.DateRange
	Rows        []TrialBalanceRow
	TotalDebit  decimal.Decimal
	TotalCredit decimal.Decimal
	Difference  decimal.Decimal
	Balanced    bool
}

// BuildTrialBalance nets each account's postings within rng. A positive
// debit-minus-credit net goes in the debit column, a negative one in the
// credit column. Rows are ordered by account number.
func BuildTrialBalance(accts []model.Account, postings []model.Posting, rng model.DateRange, opts Options) TrialBalance {
	net := make(map[int]decimal.Decimal)
	for _, ps := range postings {
		if rng.Contains(ps.Date) {
			net[ps.AccountID] = net[ps.AccountID].Add(ps.Signed())
		}
	}

	tb := TrialBalance{Range: rng, TotalDebit: decimal.Zero, TotalCredit: decimal.Zero}
	for _, a := range sortedByNumber(accts) {
		n, ok := net[a.ID]
		if !ok || n.IsZero() {
			continue
		}
		row := TrialBalanceRow{Account: a, Debit: decimal.Zero, Credit: decimal.Zero}
		if n.IsPositive() {
			row.Debit = n
		} else {
			row.Credit = n.Neg()
		}
		tb.Rows = append(tb.Rows, row)
		tb.TotalDebit = tb.TotalDebit.Add(row.Debit)
		tb.TotalCredit = tb.TotalCredit.Add(row.Credit)
	}
	tb.Difference = tb.TotalDebit.Sub(tb.TotalCredit)
	tb.Balanced = opts.withinTolerance(tb.Difference)
	return tb
}

// Status returns BALANCED or NOT BALANCED.
func (tb TrialBalance) Status() string { return Status(tb.Balanced) }

func indexAccounts(accts []model.Account) map[int]model.Account {
	byID := make(map[int]model.Account, len(accts))
	for _, a := range accts {
		byID[a.ID] = a
	}
	return byID
}

func sortedByNumber(accts []model.Account) []model.Account {
	out := make([]model.Account, len(accts))
	copy(out, accts)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out
}
