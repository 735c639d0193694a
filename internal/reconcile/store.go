package reconcile

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ledgercore/internal/model"
)

// LinesHeader is the CSV header for bank-lines.csv.
const LinesHeader = "bank_line_id,date,description,amount,reference,type,matched"

// MatchesHeader is the CSV header for matches.csv.
const MatchesHeader = "bank_line_id,entry_id,matched_at"

const (
	reconcileDir = "reconcile"
	linesFile    = "reconcile/bank-lines.csv"
	matchesFile  = "reconcile/matches.csv"
	dateFormat   = "2006-01-02"

	numLineFields = 7
	colLineID     = 0
	colLineDate   = 1
	colLineDesc   = 2
	colLineAmount = 3
	colLineRef    = 4
	colLineType   = 5
	colLineMatch  = 6

	numMatchFields = 3
)

// Store persists bank lines and matches under <dataDir>/reconcile/.
type Store struct {
	dataDir string
}

// NewStore creates a Store rooted at dataDir.
func NewStore(dataDir string) *Store {
	return &Store{dataDir: dataDir}
}

// Open loads the persisted lines and matches into a Book over entries.
func (s *Store) Open(entries []model.Posting, opts ...BookOption) (*Book, error) {
	lines, err := s.Lines()
	if err != nil {
		return nil, err
	}
	matches, err := s.Matches()
	if err != nil {
		return nil, err
	}
	return NewBook(lines, entries, matches, opts...), nil
}

// Save writes the book's matches and then its lines, replacing the previous
// files. Open derives matched flags from the matches.
func (s *Store) Save(b *Book) error {
	if err := os.MkdirAll(filepath.Join(s.dataDir, reconcileDir), 0o755); err != nil {
		return fmt.Errorf("creating reconcile dir: %w", err)
	}
	lines, matches := b.Lines(), b.Matches()
	if err := writeFileAtomic(filepath.Join(s.dataDir, matchesFile), func(w io.Writer) error {
		return WriteMatches(w, matches)
	}); err != nil {
		return err
	}
	return writeFileAtomic(filepath.Join(s.dataDir, linesFile), func(w io.Writer) error {
		return WriteLines(w, lines)
	})
}

// AddLines merges imported lines into the stored set and returns how many
// were new. Lines already stored, by ID, keep their matched flag.
func (s *Store) AddLines(incoming []model.BankStatementLine) (int, error) {
	existing, err := s.Lines()
	if err != nil {
		return 0, err
	}
	seen := make(map[string]bool, len(existing))
	for _, l := range existing {
		seen[l.ID] = true
	}
	added := 0
	for _, l := range incoming {
		if seen[l.ID] {
			continue
		}
		seen[l.ID] = true
		l.Matched = false
		existing = append(existing, l)
		added++
	}
	if added == 0 {
		return 0, nil
	}

	if err := os.MkdirAll(filepath.Join(s.dataDir, reconcileDir), 0o755); err != nil {
		return 0, fmt.Errorf("creating reconcile dir: %w", err)
	}
	err = writeFileAtomic(filepath.Join(s.dataDir, linesFile), func(w io.Writer) error {
		return WriteLines(w, existing)
	})
	return added, err
}

// Lines reads the stored bank lines. A missing file yields none.
func (s *Store) Lines() ([]model.BankStatementLine, error) {
	f, err := os.Open(filepath.Join(s.dataDir, linesFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening bank lines: %w", err)
	}
	defer f.Close()
	return ReadLines(f)
}

// Matches reads the stored matches. A missing file yields none.
func (s *Store) Matches() ([]Match, error) {
	f, err := os.Open(filepath.Join(s.dataDir, matchesFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening matches: %w", err)
	}
	defer f.Close()
	return ReadMatches(f)
}

func writeFileAtomic(path string, write func(io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := write(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replacing %s: %w", path, err)
	}
	return nil
}

// MarshalLine converts a bank line to a CSV row.
func MarshalLine(l model.BankStatementLine) []string {
	row := make([]string, numLineFields)
	row[colLineID] = l.ID
	row[colLineDate] = l.TransactionDate.Format(dateFormat)
	row[colLineDesc] = l.Description
	row[colLineAmount] = l.Amount.String()
	row[colLineRef] = l.Reference
	row[colLineType] = l.Type
	row[colLineMatch] = strconv.FormatBool(l.Matched)
	return row
}

// UnmarshalLine converts a CSV row to a bank line.
func UnmarshalLine(record []string) (model.BankStatementLine, error) {
	if len(record) != numLineFields {
		return model.BankStatementLine{}, fmt.Errorf("expected %d fields, got %d", numLineFields, len(record))
	}
	date, err := time.Parse(dateFormat, record[colLineDate])
	if err != nil {
		return model.BankStatementLine{}, fmt.Errorf("parsing date %q: %w", record[colLineDate], err)
	}
	amount, err := decimal.NewFromString(record[colLineAmount])
	if err != nil {
		return model.BankStatementLine{}, fmt.Errorf("parsing amount %q: %w", record[colLineAmount], err)
	}
	matched, err := strconv.ParseBool(record[colLineMatch])
	if err != nil {
		return model.BankStatementLine{}, fmt.Errorf("parsing matched %q: %w", record[colLineMatch], err)
	}
	return model.BankStatementLine{
		ID:              record[colLineID],
		TransactionDate: date,
		Description:     record[colLineDesc],
		Amount:          amount,
		Reference:       record[colLineRef],
		Type:            record[colLineType],
		Matched:         matched,
	}, nil
}

// ReadLines reads bank lines from a bank-lines.csv reader.
func ReadLines(r io.Reader) ([]model.BankStatementLine, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numLineFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading bank lines CSV: %w", err)
	}
	if len(records) <= 1 {
		return nil, nil
	}

	lines := make([]model.BankStatementLine, 0, len(records)-1)
	for i, rec := range records[1:] {
		l, err := UnmarshalLine(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		lines = append(lines, l)
	}
	return lines, nil
}

// WriteLines writes bank lines with a header.
func WriteLines(w io.Writer, lines []model.BankStatementLine) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(strings.Split(LinesHeader, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, l := range lines {
		if err := cw.Write(MarshalLine(l)); err != nil {
			return fmt.Errorf("writing line %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadMatches reads matches from a matches.csv reader.
func ReadMatches(r io.Reader) ([]Match, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numMatchFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading matches CSV: %w", err)
	}
	if len(records) <= 1 {
		return nil, nil
	}

	matches := make([]Match, 0, len(records)-1)
	for i, rec := range records[1:] {
		at, err := time.Parse(time.RFC3339, rec[2])
		if err != nil {
			return nil, fmt.Errorf("row %d: parsing matched_at %q: %w", i+2, rec[2], err)
		}
		matches = append(matches, Match{BankLineID: rec[0], EntryID: rec[1], MatchedAt: at})
	}
	return matches, nil
}

// WriteMatches writes matches with a header.
func WriteMatches(w io.Writer, matches []Match) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(strings.Split(MatchesHeader, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, m := range matches {
		if err := cw.Write([]string{m.BankLineID, m.EntryID, m.MatchedAt.Format(time.RFC3339)}); err != nil {
			return fmt.Errorf("writing match %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
