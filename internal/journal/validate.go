package journal

import (
	"errors"
	"fmt"

	"github.com/cleared-dev/ledgercore/internal/model"
)

// ErrInvalidJournal is wrapped by every ValidationError.
var ErrInvalidJournal = errors.New("invalid journal")

// Kind names the rule a rejected journal broke.
type Kind string

const (
	KindTooFewEntries  Kind = "too_few_entries"
	KindMissingDate    Kind = "missing_date"
	KindNegativeAmount Kind = "negative_amount"
	KindBothSides      Kind = "both_sides"
	KindEmptyEntry     Kind = "empty_entry"
	KindMissingAccount Kind = "missing_account"
	KindZeroAmount     Kind = "zero_amount"
	KindUnbalanced     Kind = "unbalanced"
)

// ValidationError describes a single rule violation.
type ValidationError struct {
	Kind        Kind
	JournalID   string
	EntryID     string // empty for journal-level rules
	Description string
}

func (e ValidationError) Error() string {
	if e.EntryID != "" {
		return fmt.Sprintf("%s [%s %s]: %s", e.Kind, e.JournalID, e.EntryID, e.Description)
	}
	return fmt.Sprintf("%s [%s]: %s", e.Kind, e.JournalID, e.Description)
}

// Is reports whether target is ErrInvalidJournal.
func (e ValidationError) Is(target error) bool {
	return target == ErrInvalidJournal
}

// AccountChecker tests whether an account ID exists in the chart of accounts.
type AccountChecker interface {
	Exists(id int) bool
}

// AccountIDs is an AccountChecker over a fixed set of IDs.
type AccountIDs map[int]bool

// Exists implements AccountChecker.
func (s AccountIDs) Exists(id int) bool { return s[id] }

// Check returns every rule a candidate journal breaks, in rule order:
// structure, then each entry, then the totals.
func Check(j model.Journal, accounts AccountChecker) []ValidationError {
	var errs []ValidationError
	add := func(kind Kind, entryID, format string, args ...any) {
		errs = append(errs, ValidationError{
			Kind:        kind,
			JournalID:   j.ID,
			EntryID:     entryID,
			Description: fmt.Sprintf(format, args...),
		})
	}

	if len(j.Entries) < 2 {
		add(KindTooFewEntries, "", "journal has %d entries, need at least 2", len(j.Entries))
	}
	if j.TransactionDate.IsZero() {
		add(KindMissingDate, "", "journal has no transaction date")
	}

	debit, credit := j.Totals()
	// An all-zero journal is reported once, as zero_amount.
	allZero := debit.IsZero() && credit.IsZero()

	for i, e := range j.Entries {
		ref := e.ID
		if ref == "" {
			ref = fmt.Sprintf("#%d", i+1)
		}

		if e.Debit.IsNegative() || e.Credit.IsNegative() {
			add(KindNegativeAmount, ref, "debit %s / credit %s must not be negative", e.Debit, e.Credit)
		}
		switch {
		case e.Debit.IsPositive() && e.Credit.IsPositive():
			add(KindBothSides, ref, "entry has both debit %s and credit %s", e.Debit.StringFixed(2), e.Credit.StringFixed(2))
		case e.Debit.IsZero() && e.Credit.IsZero() && !allZero:
			add(KindEmptyEntry, ref, "entry has neither debit nor credit")
		}

		if !accounts.Exists(e.AccountID) {
			add(KindMissingAccount, ref, "unknown account %d", e.AccountID)
		}
	}

	switch {
	case !debit.Equal(credit):
		add(KindUnbalanced, "", "debits (%s) != credits (%s), difference %s",
			debit.StringFixed(2), credit.StringFixed(2), debit.Sub(credit).StringFixed(2))
	case !debit.IsPositive():
		add(KindZeroAmount, "", "journal total is %s", debit.StringFixed(2))
	}

	return errs
}

// ValidateJournal accepts a candidate journal or rejects it with the first
// ValidationError found. Amounts are compared exactly.
func ValidateJournal(j model.Journal, accounts AccountChecker) error {
	if errs := Check(j, accounts); len(errs) > 0 {
		return errs[0]
	}
	return nil
}

// KindOf returns the Kind of a validation error, or "" for other errors.
func KindOf(err error) Kind {
	var ve ValidationError
	if errors.As(err, &ve) {
		return ve.Kind
	}
	return ""
}
