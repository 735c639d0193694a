// Package statement composes balances into reports: the general ledger,
// the trial balance, the balance sheet and the chart-of-accounts view.
package statement

import (
	"errors"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ledgercore/internal/balance"
)

// ErrUnknownAccount is returned when a report names an account that is not
// in the registry.
var ErrUnknownAccount = errors.New("unknown account")

// Options control how reports compute and verify totals.
type Options struct {
	Policy balance.Policy
	// Tolerance bounds the difference still reported as balanced.
	Tolerance decimal.Decimal
	// Rollup makes parent accounts in the chart view show their subtree total.
	Rollup bool
}

// DefaultOptions uses the default policy and a one-cent tolerance.
func DefaultOptions() Options {
	return Options{
		Policy:    balance.DefaultPolicy(),
		Tolerance: decimal.New(1, -2),
	}
}

func (o Options) withinTolerance(diff decimal.Decimal) bool {
	return diff.Abs().LessThan(o.Tolerance)
}

// Status labels a balanced flag.
func Status(balanced bool) string {
	if balanced {
		return "BALANCED"
	}
	return "NOT BALANCED"
}
