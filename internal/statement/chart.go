package statement

import (
	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ledgercore/internal/accounts"
	"github.com/cleared-dev/ledgercore/internal/model"
)

// ChartNode is one account in the chart-of-accounts balance view.
type ChartNode struct {
	Account model.Account
	Side    model.Side
	// Own is the balance of postings made directly to this account.
	Own decimal.Decimal
	// Rollup is Own plus every descendant's Rollup, each converted to this
	// account's normal side.
	Rollup   decimal.Decimal
	Children []*ChartNode
}

// Shown is the balance displayed for the node: Rollup when rollup is set,
// Own otherwise.
func (n *ChartNode) Shown(rollup bool) decimal.Decimal {
	if rollup {
		return n.Rollup
	}
	return n.Own
}

// BuildChartView pairs every node of the account hierarchy with its balance
// over rng.
func BuildChartView(accts []model.Account, postings []model.Posting, rng model.DateRange, opts Options) []*ChartNode {
	return ChartView(accounts.BuildHierarchy(accts), postings, rng, opts)
}

// ChartView is BuildChartView over an already built hierarchy.
func ChartView(nodes []*accounts.Node, postings []model.Posting, rng model.DateRange, opts Options) []*ChartNode {
	out := make([]*ChartNode, 0, len(nodes))
	for _, n := range nodes {
		side := opts.Policy.NormalBalance(n.Account.Type)
		own := opts.Policy.ComputeBalance(n.Account, postings, rng)
		cn := &ChartNode{
			Account:  n.Account,
			Side:     side,
			Own:      own,
			Rollup:   own,
			Children: ChartView(n.Children, postings, rng, opts),
		}
		for _, child := range cn.Children {
			amt := child.Rollup
			if child.Side != side {
				amt = amt.Neg()
			}
			cn.Rollup = cn.Rollup.Add(amt)
		}
		out = append(out, cn)
	}
	return out
}

// WalkChart visits every chart node depth-first with its depth.
func WalkChart(nodes []*ChartNode, fn func(n *ChartNode, depth int)) {
	var visit func(ns []*ChartNode, depth int)
	visit = func(ns []*ChartNode, depth int) {
		for _, n := range ns {
			fn(n, depth)
			visit(n.Children, depth+1)
		}
	}
	visit(nodes, 0)
}
