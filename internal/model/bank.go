package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// BankStatementLine is one row of an uploaded bank statement.
type BankStatementLine struct {
	ID              string
	TransactionDate time.Time
	Description     string
	Amount          decimal.Decimal // negative = money out, positive = money in
	Reference       string
	Type            string // bank transaction type (ACH_DEBIT, etc.)
	Matched         bool
}
