package journal

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ledgercore/internal/model"
)

// Header is the CSV header for journal.csv.
const Header = "journal_id,entry_id,date,reference,journal_description,account_id,description,debit,credit"

const (
	numFields     = 9
	dateFormat    = "2006-01-02"
	colJournalID  = 0
	colEntryID    = 1
	colDate       = 2
	colRef        = 3
	colJournalDsc = 4
	colAcctID     = 5
	colDesc       = 6
	colDebit      = 7
	colCredit     = 8
)

// ReadJournals reads all journals from a journal.csv reader. Rows sharing a
// journal_id are grouped in file order.
func ReadJournals(r io.Reader) ([]model.Journal, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading journal CSV: %w", err)
	}

	if len(records) == 0 {
		return nil, nil
	}

	// Skip header row.
	var journals []model.Journal
	index := make(map[string]int)
	for i, rec := range records[1:] {
		j, e, err := UnmarshalRow(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		pos, seen := index[j.ID]
		if !seen {
			pos = len(journals)
			index[j.ID] = pos
			journals = append(journals, j)
		}
		journals[pos].Entries = append(journals[pos].Entries, e)
	}
	return journals, nil
}

// WriteJournals writes journals to a journal.csv writer (including header).
func WriteJournals(w io.Writer, journals []model.Journal) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	row := 2
	for _, j := range journals {
		for _, rec := range MarshalJournal(j) {
			if err := cw.Write(rec); err != nil {
				return fmt.Errorf("writing row %d: %w", row, err)
			}
			row++
		}
	}
	return cw.Error()
}

// AppendJournal appends one journal's rows to an existing journal.csv writer (no header).
func AppendJournal(w io.Writer, j model.Journal) error {
	cw := csv.NewWriter(w)
	if err := cw.WriteAll(MarshalJournal(j)); err != nil {
		return fmt.Errorf("writing journal %s: %w", j.ID, err)
	}
	return nil
}

// formatAmount writes cents with two places and keeps any finer digits.
func formatAmount(d decimal.Decimal) string {
	if d.Equal(d.Round(2)) {
		return d.StringFixed(2)
	}
	return d.String()
}

// MarshalJournal converts a Journal to CSV rows, one per entry.
func MarshalJournal(j model.Journal) [][]string {
	rows := make([][]string, 0, len(j.Entries))
	for _, e := range j.Entries {
		row := make([]string, numFields)
		row[colJournalID] = j.ID
		row[colEntryID] = e.ID
		row[colDate] = j.TransactionDate.Format(dateFormat)
		row[colRef] = j.ReferenceID
		row[colJournalDsc] = j.Description
		row[colAcctID] = strconv.Itoa(e.AccountID)
		row[colDesc] = e.Description

		if !e.Debit.IsZero() {
			row[colDebit] = formatAmount(e.Debit)
		}
		if !e.Credit.IsZero() {
			row[colCredit] = formatAmount(e.Credit)
		}
		rows = append(rows, row)
	}
	return rows
}

// UnmarshalRow converts a CSV row to its journal header and entry.
func UnmarshalRow(record []string) (model.Journal, model.JournalEntry, error) {
	if len(record) != numFields {
		return model.Journal{}, model.JournalEntry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	date, err := time.Parse(dateFormat, record[colDate])
	if err != nil {
		return model.Journal{}, model.JournalEntry{}, fmt.Errorf("parsing date %q: %w", record[colDate], err)
	}

	accountID, err := strconv.Atoi(record[colAcctID])
	if err != nil {
		return model.Journal{}, model.JournalEntry{}, fmt.Errorf("parsing account_id %q: %w", record[colAcctID], err)
	}

	debit, credit := decimal.Zero, decimal.Zero

	if record[colDebit] != "" {
		debit, err = decimal.NewFromString(record[colDebit])
		if err != nil {
			return model.Journal{}, model.JournalEntry{}, fmt.Errorf("parsing debit %q: %w", record[colDebit], err)
		}
	}

	if record[colCredit] != "" {
		credit, err = decimal.NewFromString(record[colCredit])
		if err != nil {
			return model.Journal{}, model.JournalEntry{}, fmt.Errorf("parsing credit %q: %w", record[colCredit], err)
		}
	}

	j := model.Journal{
		ID:              record[colJournalID],
		TransactionDate: date,
		ReferenceID:     record[colRef],
		Description:     record[colJournalDsc],
	}
	e := model.JournalEntry{
		ID:          record[colEntryID],
		JournalID:   record[colJournalID],
		AccountID:   accountID,
		Debit:       debit,
		Credit:      credit,
		Description: record[colDesc],
	}
	return j, e, nil
}
