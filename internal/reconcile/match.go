// Package reconcile pairs bank statement lines with ledger entries.
package reconcile

import (
	"errors"
	"fmt"

	"github.com/cleared-dev/ledgercore/internal/model"
)

// ErrMatchRejected is wrapped by every MatchRejected.
var ErrMatchRejected = errors.New("match rejected")

// Reason identifies why a match was rejected.
type Reason string

const (
	ReasonAmountMismatch  Reason = "amount_mismatch"
	ReasonBankLineMatched Reason = "bank_line_matched"
	ReasonEntryMatched    Reason = "entry_matched"
	ReasonUnknownBankLine Reason = "unknown_bank_line"
	ReasonUnknownEntry    Reason = "unknown_entry"
)

// MatchRejected is returned when a bank line and entry cannot be paired.
type MatchRejected struct {
	Reason     Reason
	BankLineID string
	EntryID    string
	Detail     string
}

func (e *MatchRejected) Error() string {
	msg := fmt.Sprintf("%s: bank line %s, entry %s", e.Reason, e.BankLineID, e.EntryID)
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

func (e *MatchRejected) Is(target error) bool { return target == ErrMatchRejected }

// ReasonOf returns the rejection reason of err, or "" if err is not a
// MatchRejected.
func ReasonOf(err error) Reason {
	var mr *MatchRejected
	if errors.As(err, &mr) {
		return mr.Reason
	}
	return ""
}

// MatchTransactions checks whether line can reconcile entry. The entry is
// signed debit minus credit and must equal the bank amount exactly. A line
// already marked matched is rejected.
func MatchTransactions(line model.BankStatementLine, entry model.JournalEntry) error {
	if line.Matched {
		return &MatchRejected{Reason: ReasonBankLineMatched, BankLineID: line.ID, EntryID: entry.ID}
	}
	signed := entry.Signed()
	if !line.Amount.Equal(signed) {
		return &MatchRejected{
			Reason:     ReasonAmountMismatch,
			BankLineID: line.ID,
			EntryID:    entry.ID,
			Detail:     fmt.Sprintf("bank %s != entry %s", line.Amount.String(), signed.String()),
		}
	}
	return nil
}
