package statement

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ledgercore/internal/model"
)

// ClassificationWarning reports an account whose type matched more than one
// statement category, or none. The sheet uses the first match and excludes
// unmatched accounts.
type ClassificationWarning struct {
	Account model.Account
	Matched []model.Category
}

func (w ClassificationWarning) String() string {
	if len(w.Matched) == 0 {
		return fmt.Sprintf("account %s (%s): type %q matches no statement category; excluded",
			w.Account.Number, w.Account.Name, w.Account.Type)
	}
	names := make([]string, len(w.Matched))
	for i, c := range w.Matched {
		names[i] = string(c)
	}
	return fmt.Sprintf("account %s (%s): type %q matches %s; reported as %s",
		w.Account.Number, w.Account.Name, w.Account.Type, strings.Join(names, ", "), names[0])
}

// SheetLine is one account on the balance sheet.
type SheetLine struct {
	Account model.Account
	// Balance is the account balance on its normal side.
	Balance decimal.Decimal
	// Amount is Balance expressed on the section's natural side, the value
	// summed into the section total.
	Amount decimal.Decimal
}

// Section is a group of accounts sharing a statement category.
type Section struct {
	Category model.Category
	Lines    []SheetLine
	Total    decimal.Decimal
}

func (s *Section) add(l SheetLine) {
	s.Lines = append(s.Lines, l)
	s.Total = s.Total.Add(l.Amount)
}

// BalanceSheet is the position of the books as of a date.
type BalanceSheet struct {
	AsOf             time.Time
	Assets           Section
	ContraAssets     Section
	Liabilities      Section
	Equity           Section
	Revenue          Section
	Expenses         Section
	NetIncome        decimal.Decimal // Revenue.Total - Expenses.Total
	TotalAssets      decimal.Decimal // Assets.Total - ContraAssets.Total
	TotalLiabilities decimal.Decimal
	TotalEquity      decimal.Decimal // Equity.Total + NetIncome
	Difference       decimal.Decimal // TotalAssets - (TotalLiabilities + TotalEquity)
	Balanced         bool
	Warnings         []ClassificationWarning
}

// Status returns BALANCED or NOT BALANCED.
func (bs BalanceSheet) Status() string { return Status(bs.Balanced) }

// BuildBalanceSheet classifies every account by its type's statement
// category and totals postings dated on or before asOf.
//
// Each account lands in exactly one section. An account whose normal side
// differs from its section's (a debit-normal Owner's Capital, Drawings) is
// sign-flipped into the section, so the sheet balances whenever every
// journal does.
func BuildBalanceSheet(accts []model.Account, journals []model.Journal, asOf time.Time, opts Options) BalanceSheet {
	postings := model.FlattenJournals(journals)
	rng := model.Through(asOf)

	bs := BalanceSheet{
		AsOf:         asOf,
		Assets:       Section{Category: model.CategoryAsset, Total: decimal.Zero},
		ContraAssets: Section{Category: model.CategoryContraAsset, Total: decimal.Zero},
		Liabilities:  Section{Category: model.CategoryLiability, Total: decimal.Zero},
		Equity:       Section{Category: model.CategoryEquity, Total: decimal.Zero},
		Revenue:      Section{Category: model.CategoryRevenue, Total: decimal.Zero},
		Expenses:     Section{Category: model.CategoryExpense, Total: decimal.Zero},
	}
	sections := map[model.Category]*Section{
		model.CategoryAsset:       &bs.Assets,
		model.CategoryContraAsset: &bs.ContraAssets,
		model.CategoryLiability:   &bs.Liabilities,
		model.CategoryEquity:      &bs.Equity,
		model.CategoryRevenue:     &bs.Revenue,
		model.CategoryExpense:     &bs.Expenses,
	}

	for _, a := range sortedByNumber(accts) {
		c := model.Classify(a.Type)
		if c.Ambiguous() || c.Unclassified() {
			bs.Warnings = append(bs.Warnings, ClassificationWarning{Account: a, Matched: c.Matched})
		}
		if c.Unclassified() {
			continue
		}

		side := opts.Policy.NormalBalance(a.Type)
		bal := opts.Policy.ComputeBalance(a, postings, rng)
		amount := bal
		if side != c.Category.NaturalSide() {
			amount = bal.Neg()
		}
		sections[c.Category].add(SheetLine{Account: a, Balance: bal, Amount: amount})
	}

	bs.NetIncome = bs.Revenue.Total.Sub(bs.Expenses.Total)
	bs.TotalAssets = bs.Assets.Total.Sub(bs.ContraAssets.Total)
	bs.TotalLiabilities = bs.Liabilities.Total
	bs.TotalEquity = bs.Equity.Total.Add(bs.NetIncome)
	bs.Difference = bs.TotalAssets.Sub(bs.TotalLiabilities.Add(bs.TotalEquity))
	bs.Balanced = opts.withinTolerance(bs.Difference)
	return bs
}
