// Package balance folds journal entries into per-account balances.
package balance

import (
	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ledgercore/internal/model"
)

// Policy decides which side each account type's balance grows on. Types
// without an override use the side tagged on the type itself.
type Policy struct {
	overrides map[model.AccountType]model.Side
}

// DefaultPolicy keeps the tagged sides, which treat Owner's Capital and
// Drawings as debit-normal.
func DefaultPolicy() Policy {
	return Policy{}
}

// ConventionalPolicy treats Owner's Capital as credit-normal, the usual
// accounting convention. Drawings stay debit-normal.
func ConventionalPolicy() Policy {
	return DefaultPolicy().WithOverride(model.AccountTypeOwnersCapital, model.Credit)
}

// WithOverride returns a copy of p with t forced to side.
func (p Policy) WithOverride(t model.AccountType, side model.Side) Policy {
	next := make(map[model.AccountType]model.Side, len(p.overrides)+1)
	for k, v := range p.overrides {
		next[k] = v
	}
	next[t] = side
	return Policy{overrides: next}
}

// NormalBalance returns the side on which t's balance grows.
func (p Policy) NormalBalance(t model.AccountType) model.Side {
	if side, ok := p.overrides[t]; ok {
		return side
	}
	return model.Classify(t).NormalBalance
}

// Delta is the change one entry makes to a balance of the given side.
func Delta(side model.Side, e model.JournalEntry) decimal.Decimal {
	if side == model.Credit {
		return e.Credit.Sub(e.Debit)
	}
	return e.Debit.Sub(e.Credit)
}

// ToSide converts a debit-minus-credit amount into a balance on side.
func ToSide(side model.Side, signed decimal.Decimal) decimal.Decimal {
	if side == model.Credit {
		return signed.Neg()
	}
	return signed
}
