package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ledgercore/internal/model"
)

// ChaseParser parses Chase bank checking CSV exports.
type ChaseParser struct{}

const (
	chaseDateFormat = "01/02/2006"
	chaseNumFields  = 7
	chaseColDate    = 1
	chaseColDesc    = 2
	chaseColAmount  = 3
	chaseColType    = 4
)

// lineNamespace scopes bank line IDs derived from import references.
var lineNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://cleared.dev/ledgercore/bank-line"))

// LineID derives a stable bank line ID from an import reference.
func LineID(reference string) string {
	return uuid.NewSHA1(lineNamespace, []byte(reference)).String()
}

// Format returns the parser name.
func (p *ChaseParser) Format() string { return "chase" }

// Parse reads a Chase CSV and returns its statement lines in file order.
// Rows sharing a date and description prefix get a numeric suffix on their
// reference so every line keeps a distinct ID.
func (p *ChaseParser) Parse(r io.Reader) ([]model.BankStatementLine, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = chaseNumFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading chase CSV: %w", err)
	}

	if len(records) <= 1 {
		return nil, nil
	}

	seen := make(map[string]int)
	var lines []model.BankStatementLine
	for i, rec := range records[1:] {
		line, err := parseChaseRow(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		seen[line.Reference]++
		if n := seen[line.Reference]; n > 1 {
			line.Reference = fmt.Sprintf("%s_%d", line.Reference, n)
		}
		line.ID = LineID(line.Reference)
		lines = append(lines, line)
	}
	return lines, nil
}

func parseChaseRow(rec []string) (model.BankStatementLine, error) {
	date, err := time.Parse(chaseDateFormat, rec[chaseColDate])
	if err != nil {
		return model.BankStatementLine{}, fmt.Errorf("parsing date %q: %w", rec[chaseColDate], err)
	}

	amount, err := decimal.NewFromString(rec[chaseColAmount])
	if err != nil {
		return model.BankStatementLine{}, fmt.Errorf("parsing amount %q: %w", rec[chaseColAmount], err)
	}

	desc := strings.TrimSpace(rec[chaseColDesc])
	return model.BankStatementLine{
		TransactionDate: date,
		Description:     desc,
		Amount:          amount,
		Reference:       makeChaseRef(date, desc),
		Type:            rec[chaseColType],
	}, nil
}

// makeChaseRef creates a reference like chase_20250103_GITHUBPROS.
func makeChaseRef(date time.Time, desc string) string {
	prefix := strings.Map(func(r rune) rune {
		if r >= 'A' && r <= 'Z' || r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, desc)
	if len(prefix) > 10 {
		prefix = prefix[:10]
	}
	return fmt.Sprintf("chase_%s_%s", date.Format("20060102"), prefix)
}
