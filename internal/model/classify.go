package model

import "strings"

// categoryRule maps type-name fragments to a category. Rules are listed in
// precedence order.
type categoryRule struct {
	category  Category
	fragments []string
}

var legacyRules = []categoryRule{
	{CategoryContraAsset, []string{"accumulated depreciation"}},
	{CategoryLiability, []string{"liability", "liabilities", "payable"}},
	{CategoryEquity, []string{"equity", "capital", "drawing"}},
	{CategoryRevenue, []string{"revenue", "sales", "income"}},
	{CategoryExpense, []string{"expense", "cost of goods sold"}},
	{CategoryAsset, []string{"asset", "cash", "receivable", "inventory", "prepaid", "machinery", "building", "vehicle"}},
}

// Classification is the result of resolving an account type to its tags.
type Classification struct {
	TypeInfo
	// Matched lists every category a free-form type matched. It has length
	// one for known types.
	Matched []Category
}

// Ambiguous reports whether the type matched more than one category.
func (c Classification) Ambiguous() bool { return len(c.Matched) > 1 }

// Unclassified reports whether no category matched.
func (c Classification) Unclassified() bool { return len(c.Matched) == 0 }

// Classify resolves t to its tag pair. Known types use their fixed tags.
// Free-form types fall back to fragment matching; the first matching rule
// wins and every match is reported so the caller can surface ambiguity.
func Classify(t AccountType) Classification {
	if info, ok := t.Info(); ok {
		return Classification{TypeInfo: info, Matched: []Category{info.Category}}
	}

	lower := strings.ToLower(string(t))
	var matched []Category
	for _, rule := range legacyRules {
		for _, frag := range rule.fragments {
			if strings.Contains(lower, frag) {
				matched = append(matched, rule.category)
				break
			}
		}
	}
	if len(matched) == 0 {
		return Classification{}
	}
	cat := matched[0]
	return Classification{
		TypeInfo: TypeInfo{NormalBalance: cat.NaturalSide(), Category: cat},
		Matched:  matched,
	}
}
