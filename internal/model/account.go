package model

import (
	"sort"
	"strings"
)

// AccountType classifies accounts in the chart of accounts.
type AccountType string

const (
	AccountTypeAsset                   AccountType = "Asset"
	AccountTypeCurrentAssets           AccountType = "Current Assets"
	AccountTypeCash                    AccountType = "Cash"
	AccountTypeAccountsReceivable      AccountType = "Accounts Receivable"
	AccountTypeInventory               AccountType = "Inventory"
	AccountTypePrepaidExpenses         AccountType = "Prepaid Expenses"
	AccountTypeNonCurrentAssets        AccountType = "Non-Current Assets"
	AccountTypeFixedAssets             AccountType = "Fixed Assets"
	AccountTypeMachinery               AccountType = "Machinery"
	AccountTypeBuildings               AccountType = "Buildings"
	AccountTypeVehicles                AccountType = "Vehicles"
	AccountTypeAccumulatedDepreciation AccountType = "Accumulated Depreciation"

	AccountTypeExpense             AccountType = "Expense"
	AccountTypeCostOfGoodsSold     AccountType = "Cost of Goods Sold"
	AccountTypeRentExpense         AccountType = "Rent Expense"
	AccountTypeWagesExpense        AccountType = "Wages Expense"
	AccountTypeUtilitiesExpense    AccountType = "Utilities Expense"
	AccountTypeDepreciationExpense AccountType = "Depreciation Expense"
	AccountTypeGeneralAdminExpense AccountType = "General & Administrative Expense"

	AccountTypeLiability             AccountType = "Liability"
	AccountTypeCurrentLiabilities    AccountType = "Current Liabilities"
	AccountTypeNonCurrentLiabilities AccountType = "Non-Current Liabilities"
	AccountTypeAccountsPayable       AccountType = "Accounts Payable"
	AccountTypeWagesPayable          AccountType = "Wages Payable"
	AccountTypeUnearnedRevenue       AccountType = "Unearned Revenue"
	AccountTypeNotesPayable          AccountType = "Notes Payable"
	AccountTypeBondsPayable          AccountType = "Bonds Payable"

	AccountTypeEquity           AccountType = "Equity"
	AccountTypeOwnersCapital    AccountType = "Owner's Capital"
	AccountTypeDrawings         AccountType = "Drawings"
	AccountTypeRetainedEarnings AccountType = "Retained Earnings"

	AccountTypeRevenue        AccountType = "Revenue"
	AccountTypeSalesRevenue   AccountType = "Sales Revenue"
	AccountTypeServiceRevenue AccountType = "Service Revenue"
	AccountTypeInterestIncome AccountType = "Interest Income"
)

// Side is the side of a journal entry on which an account's balance grows.
type Side string

const (
	Debit  Side = "debit"
	Credit Side = "credit"
)

// Category is the statement section an account reports under.
type Category string

const (
	CategoryAsset       Category = "asset"
	CategoryContraAsset Category = "contra_asset"
	CategoryLiability   Category = "liability"
	CategoryEquity      Category = "equity"
	CategoryRevenue     Category = "revenue"
	CategoryExpense     Category = "expense"
)

// NaturalSide is the side on which a category's statement amounts are positive.
func (c Category) NaturalSide() Side {
	switch c {
	case CategoryAsset, CategoryExpense:
		return Debit
	default:
		return Credit
	}
}

// TypeInfo is the tag pair carried by every member of the closed type enumeration.
type TypeInfo struct {
	NormalBalance Side
	Category      Category
}

// typeInfo holds the tags for each known type. Owner's Capital and Drawings are
// debit-normal here; balance.Policy can override them.
var typeInfo = map[AccountType]TypeInfo{
	AccountTypeAsset:                   {Debit, CategoryAsset},
	AccountTypeCurrentAssets:           {Debit, CategoryAsset},
	AccountTypeCash:                    {Debit, CategoryAsset},
	AccountTypeAccountsReceivable:      {Debit, CategoryAsset},
	AccountTypeInventory:               {Debit, CategoryAsset},
	AccountTypePrepaidExpenses:         {Debit, CategoryAsset},
	AccountTypeNonCurrentAssets:        {Debit, CategoryAsset},
	AccountTypeFixedAssets:             {Debit, CategoryAsset},
	AccountTypeMachinery:               {Debit, CategoryAsset},
	AccountTypeBuildings:               {Debit, CategoryAsset},
	AccountTypeVehicles:                {Debit, CategoryAsset},
	AccountTypeAccumulatedDepreciation: {Credit, CategoryContraAsset},

	AccountTypeExpense:             {Debit, CategoryExpense},
	AccountTypeCostOfGoodsSold:     {Debit, CategoryExpense},
	AccountTypeRentExpense:         {Debit, CategoryExpense},
	AccountTypeWagesExpense:        {Debit, CategoryExpense},
	AccountTypeUtilitiesExpense:    {Debit, CategoryExpense},
	AccountTypeDepreciationExpense: {Debit, CategoryExpense},
	AccountTypeGeneralAdminExpense: {Debit, CategoryExpense},

	AccountTypeLiability:             {Credit, CategoryLiability},
	AccountTypeCurrentLiabilities:    {Credit, CategoryLiability},
	AccountTypeNonCurrentLiabilities: {Credit, CategoryLiability},
	AccountTypeAccountsPayable:       {Credit, CategoryLiability},
	AccountTypeWagesPayable:          {Credit, CategoryLiability},
	AccountTypeUnearnedRevenue:       {Credit, CategoryLiability},
	AccountTypeNotesPayable:          {Credit, CategoryLiability},
	AccountTypeBondsPayable:          {Credit, CategoryLiability},

	AccountTypeEquity:           {Credit, CategoryEquity},
	AccountTypeOwnersCapital:    {Debit, CategoryEquity},
	AccountTypeDrawings:         {Debit, CategoryEquity},
	AccountTypeRetainedEarnings: {Credit, CategoryEquity},

	AccountTypeRevenue:        {Credit, CategoryRevenue},
	AccountTypeSalesRevenue:   {Credit, CategoryRevenue},
	AccountTypeServiceRevenue: {Credit, CategoryRevenue},
	AccountTypeInterestIncome: {Credit, CategoryRevenue},
}

// Info returns the tag pair for a known type.
func (t AccountType) Info() (TypeInfo, bool) {
	info, ok := typeInfo[t]
	return info, ok
}

// Known reports whether t is a member of the closed enumeration.
func (t AccountType) Known() bool {
	_, ok := typeInfo[t]
	return ok
}

// KnownTypes returns every member of the enumeration in name order.
func KnownTypes() []AccountType {
	out := make([]AccountType, 0, len(typeInfo))
	for t := range typeInfo {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ParseAccountType maps a free-form type string onto the enumeration,
// ignoring case and surrounding space. Unknown strings are returned as-is.
func ParseAccountType(s string) AccountType {
	s = strings.TrimSpace(s)
	for _, t := range KnownTypes() {
		if strings.EqualFold(string(t), s) {
			return t
		}
	}
	return AccountType(s)
}

// Account is one entry in the chart of accounts.
type Account struct {
	ID          int
	Number      string // code whose prefixes encode ancestry, e.g. "1101"
	Name        string
	Type        AccountType
	Description string
}
