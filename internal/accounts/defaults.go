package accounts

import "github.com/cleared-dev/ledgercore/internal/model"

// DefaultChart returns the default chart of accounts for an entity type.
func DefaultChart(entityType string) []model.Account {
	switch entityType {
	case "sole_proprietorship":
		return soleProprietorChart()
	default:
		return soleProprietorChart()
	}
}

func soleProprietorChart() []model.Account {
	return []model.Account{
		{ID: 1, Number: "1", Name: "Assets", Type: model.AccountTypeAsset},
		{ID: 2, Number: "11", Name: "Current Assets", Type: model.AccountTypeCurrentAssets},
		{ID: 3, Number: "1101", Name: "Business Checking", Type: model.AccountTypeCash, Description: "Primary checking account"},
		{ID: 4, Number: "1102", Name: "Accounts Receivable", Type: model.AccountTypeAccountsReceivable},
		{ID: 5, Number: "1103", Name: "Inventory", Type: model.AccountTypeInventory},
		{ID: 6, Number: "1104", Name: "Prepaid Expenses", Type: model.AccountTypePrepaidExpenses},
		{ID: 7, Number: "12", Name: "Non-Current Assets", Type: model.AccountTypeNonCurrentAssets},
		{ID: 8, Number: "1201", Name: "Machinery", Type: model.AccountTypeMachinery},
		{ID: 9, Number: "1202", Name: "Buildings", Type: model.AccountTypeBuildings},
		{ID: 10, Number: "1203", Name: "Vehicles", Type: model.AccountTypeVehicles},
		{ID: 11, Number: "1209", Name: "Accumulated Depreciation", Type: model.AccountTypeAccumulatedDepreciation},
		{ID: 12, Number: "2", Name: "Liabilities", Type: model.AccountTypeLiability},
		{ID: 13, Number: "21", Name: "Current Liabilities", Type: model.AccountTypeCurrentLiabilities},
		{ID: 14, Number: "2101", Name: "Accounts Payable", Type: model.AccountTypeAccountsPayable},
		{ID: 15, Number: "2102", Name: "Wages Payable", Type: model.AccountTypeWagesPayable},
		{ID: 16, Number: "2103", Name: "Unearned Revenue", Type: model.AccountTypeUnearnedRevenue},
		{ID: 17, Number: "22", Name: "Non-Current Liabilities", Type: model.AccountTypeNonCurrentLiabilities},
		{ID: 18, Number: "2201", Name: "Notes Payable", Type: model.AccountTypeNotesPayable},
		{ID: 19, Number: "3", Name: "Equity", Type: model.AccountTypeEquity},
		{ID: 20, Number: "3101", Name: "Owner's Capital", Type: model.AccountTypeOwnersCapital},
		{ID: 21, Number: "3102", Name: "Owner's Drawings", Type: model.AccountTypeDrawings},
		{ID: 22, Number: "3103", Name: "Retained Earnings", Type: model.AccountTypeRetainedEarnings},
		{ID: 23, Number: "4", Name: "Revenue", Type: model.AccountTypeRevenue},
		{ID: 24, Number: "4101", Name: "Sales Revenue", Type: model.AccountTypeSalesRevenue},
		{ID: 25, Number: "4102", Name: "Service Revenue", Type: model.AccountTypeServiceRevenue},
		{ID: 26, Number: "4103", Name: "Interest Income", Type: model.AccountTypeInterestIncome},
		{ID: 27, Number: "5", Name: "Expenses", Type: model.AccountTypeExpense},
		{ID: 28, Number: "5101", Name: "Cost of Goods Sold", Type: model.AccountTypeCostOfGoodsSold},
		{ID: 29, Number: "5201", Name: "Rent", Type: model.AccountTypeRentExpense},
		{ID: 30, Number: "5202", Name: "Wages", Type: model.AccountTypeWagesExpense},
		{ID: 31, Number: "5203", Name: "Utilities", Type: model.AccountTypeUtilitiesExpense},
		{ID: 32, Number: "5204", Name: "Depreciation", Type: model.AccountTypeDepreciationExpense},
		{ID: 33, Number: "5205", Name: "General & Administrative", Type: model.AccountTypeGeneralAdminExpense, Description: "Software, office supplies, professional services"},
	}
}
