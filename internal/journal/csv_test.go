package journal

import (
	"bytes"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/ledgercore/internal/model"
)

func sampleJournal() model.Journal {
	return model.Journal{
		ID:              "2025-01-001",
		TransactionDate: date(2025, 1, 3),
		ReferenceID:     "INV-1042",
		Description:     "Consulting, invoice 1042",
		Entries: []model.JournalEntry{
			{ID: "2025-01-001a", JournalID: "2025-01-001", AccountID: 3, Debit: dec("3500.00"), Credit: decimal.Zero, Description: "deposit"},
			{ID: "2025-01-001b", JournalID: "2025-01-001", AccountID: 25, Debit: decimal.Zero, Credit: dec("3500.00"), Description: "fee, consulting"},
		},
	}
}

func TestJournalRoundTrip(t *testing.T) {
	in := []model.Journal{sampleJournal()}

	var buf bytes.Buffer
	require.NoError(t, WriteJournals(&buf, in))

	got, err := ReadJournals(&buf)
	require.NoError(t, err)
	require.Len(t, got, 1)

	j := got[0]
	assert.Equal(t, in[0].ID, j.ID)
	assert.Equal(t, in[0].ReferenceID, j.ReferenceID)
	assert.Equal(t, in[0].Description, j.Description)
	assert.True(t, in[0].TransactionDate.Equal(j.TransactionDate))
	require.Len(t, j.Entries, 2)
	for i := range j.Entries {
		assert.Equal(t, in[0].Entries[i].ID, j.Entries[i].ID)
		assert.Equal(t, in[0].Entries[i].JournalID, j.Entries[i].JournalID)
		assert.Equal(t, in[0].Entries[i].AccountID, j.Entries[i].AccountID)
		assert.Equal(t, in[0].Entries[i].Description, j.Entries[i].Description)
		assert.True(t, in[0].Entries[i].Debit.Equal(j.Entries[i].Debit))
		assert.True(t, in[0].Entries[i].Credit.Equal(j.Entries[i].Credit))
	}
}

func TestMarshalJournal_BlankZeroSide(t *testing.T) {
	rows := MarshalJournal(sampleJournal())
	require.Len(t, rows, 2)
	assert.Equal(t, "3500.00", rows[0][colDebit])
	assert.Equal(t, "", rows[0][colCredit])
	assert.Equal(t, "", rows[1][colDebit])
	assert.Equal(t, "3500.00", rows[1][colCredit])
	assert.Equal(t, "2025-01-03", rows[0][colDate])
}

func TestMarshalJournal_KeepsSubCentDigits(t *testing.T) {
	j := sampleJournal()
	j.Entries[0].Debit = dec("0.001")
	j.Entries[1].Credit = dec("0.001")
	rows := MarshalJournal(j)
	assert.Equal(t, "0.001", rows[0][colDebit])
	assert.Equal(t, "0.001", rows[1][colCredit])

	j.Entries[0].Debit = dec("12.5")
	assert.Equal(t, "12.50", MarshalJournal(j)[0][colDebit])
}

func TestReadJournals_GroupsInterleavedRows(t *testing.T) {
	data := Header + "\n" +
		"2025-01-001,2025-01-001a,2025-01-03,,first,3,,10.00,\n" +
		"2025-01-002,2025-01-002a,2025-01-04,,second,3,,5.00,\n" +
		"2025-01-001,2025-01-001b,2025-01-03,,first,25,,,10.00\n" +
		"2025-01-002,2025-01-002b,2025-01-04,,second,25,,,5.00\n"
	got, err := ReadJournals(strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "2025-01-001", got[0].ID)
	assert.Len(t, got[0].Entries, 2)
	assert.Equal(t, "2025-01-002", got[1].ID)
	assert.Len(t, got[1].Entries, 2)
}

func TestReadJournals_Empty(t *testing.T) {
	got, err := ReadJournals(strings.NewReader(""))
	require.NoError(t, err)
	assert.Nil(t, got)

	got, err = ReadJournals(strings.NewReader(Header + "\n"))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestUnmarshalRow_Errors(t *testing.T) {
	tests := []struct {
		name string
		row  []string
		want string
	}{
		{"bad date", []string{"j", "e", "01/03/2025", "", "", "3", "", "1.00", ""}, "parsing date"},
		{"bad account", []string{"j", "e", "2025-01-03", "", "", "x", "", "1.00", ""}, "parsing account_id"},
		{"bad debit", []string{"j", "e", "2025-01-03", "", "", "3", "", "abc", ""}, "parsing debit"},
		{"bad credit", []string{"j", "e", "2025-01-03", "", "", "3", "", "", "abc"}, "parsing credit"},
		{"short row", []string{"j", "e"}, "expected 9 fields"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := UnmarshalRow(tt.row)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestUnmarshalRow_BlankAmountsAreZero(t *testing.T) {
	_, e, err := UnmarshalRow([]string{"2025-01-001", "2025-01-001a", "2025-01-03", "", "", "3", "", "", "7.50"})
	require.NoError(t, err)
	assert.True(t, e.Debit.IsZero())
	assert.Equal(t, "7.50", e.Credit.StringFixed(2))
}
