package accounts

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/ledgercore/internal/model"
)

func TestRoundTrip(t *testing.T) {
	accounts := []model.Account{
		{ID: 3, Number: "1101", Name: "Business Checking", Type: model.AccountTypeCash, Description: "Primary checking account"},
		{ID: 33, Number: "5205", Name: "Software & SaaS", Type: model.AccountTypeGeneralAdminExpense, Description: "Software subscriptions"},
	}

	var buf bytes.Buffer
	err := WriteAccounts(&buf, accounts)
	require.NoError(t, err)

	got, err := ReadAccounts(&buf)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, accounts, got)
}

func TestReadAccounts_NormalizesType(t *testing.T) {
	data := "account_id,number,name,type,description\n1,1101,Checking,cash,\n2,6000,Misc,Sundry Costs,\n"
	got, err := ReadAccounts(strings.NewReader(data))
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, model.AccountTypeCash, got[0].Type)
	assert.Equal(t, model.AccountType("Sundry Costs"), got[1].Type, "unknown types are kept verbatim")
}

func TestReadAccounts_Errors(t *testing.T) {
	tests := []struct {
		name string
		data string
		want string
	}{
		{"bad id", "h1,h2,h3,h4,h5\nx,1101,Checking,Cash,\n", "parsing account_id"},
		{"missing number", "h1,h2,h3,h4,h5\n1, ,Checking,Cash,\n", "has no number"},
		{"wrong field count", "h1,h2,h3,h4,h5\n1,1101,Checking\n", "wrong number of fields"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadAccounts(strings.NewReader(tt.data))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestReadAccounts_Empty(t *testing.T) {
	got, err := ReadAccounts(strings.NewReader(""))
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestReadTestdata(t *testing.T) {
	f, err := os.Open("../../testdata/chart-of-accounts.csv")
	require.NoError(t, err)
	defer f.Close()

	accounts, err := ReadAccounts(f)
	require.NoError(t, err)
	require.Len(t, accounts, 13)

	for _, acct := range accounts {
		assert.True(t, acct.Type.Known(), "account %s has unknown type %q", acct.Number, acct.Type)
	}
}

func TestDefaultChart(t *testing.T) {
	chart := DefaultChart("sole_proprietorship")
	require.NotEmpty(t, chart)

	numbers := make(map[string]bool)
	for _, acct := range chart {
		assert.False(t, numbers[acct.Number], "duplicate number %s", acct.Number)
		numbers[acct.Number] = true
		assert.NotEmpty(t, acct.Name, "account %s missing name", acct.Number)
		assert.True(t, acct.Type.Known(), "account %s has unknown type %q", acct.Number, acct.Type)
	}
	assert.True(t, numbers["1101"], "expected Business Checking (1101)")
	assert.True(t, numbers["1209"], "expected Accumulated Depreciation (1209)")
}

func TestDefaultChart_UnknownEntityType(t *testing.T) {
	assert.Equal(t, DefaultChart("sole_proprietorship"), DefaultChart("unknown_type"))
}

func TestDefaultChartRoundTrip(t *testing.T) {
	chart := DefaultChart("sole_proprietorship")

	var buf bytes.Buffer
	require.NoError(t, WriteAccounts(&buf, chart))

	got, err := ReadAccounts(&buf)
	require.NoError(t, err)
	assert.Equal(t, chart, got)
}
