package accounts

import (
	"sort"

	"github.com/cleared-dev/ledgercore/internal/model"
)

// Node is one account in the chart-of-accounts forest.
type Node struct {
	Account  model.Account
	Children []*Node
}

// BuildHierarchy derives a parent/child forest from account numbers.
//
// Accounts are sorted by number. An account's parent is the registered
// account whose number is the longest proper prefix of its own; accounts
// without one become roots. Codes of any length are handled the same way.
// Children keep the number order. Numbers are assumed unique.
func BuildHierarchy(accts []model.Account) []*Node {
	sorted := make([]model.Account, len(accts))
	copy(sorted, accts)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Number != sorted[j].Number {
			return sorted[i].Number < sorted[j].Number
		}
		return sorted[i].ID < sorted[j].ID
	})

	nodes := make(map[string]*Node, len(sorted))
	var roots []*Node
	for _, a := range sorted {
		n := &Node{Account: a}
		if parent := findParent(a.Number, nodes); parent != nil {
			parent.Children = append(parent.Children, n)
		} else {
			roots = append(roots, n)
		}
		if _, dup := nodes[a.Number]; !dup {
			nodes[a.Number] = n
		}
	}
	return roots
}

// findParent strips one trailing character at a time until the remaining
// prefix names a registered account. Prefixes shorter than one character are
// never tested. A prefix always sorts before the numbers extending it, so
// every candidate parent has already been registered.
func findParent(number string, nodes map[string]*Node) *Node {
	for p := len(number) - 1; p >= 1; p-- {
		if n, ok := nodes[number[:p]]; ok {
			return n
		}
	}
	return nil
}

// Walk visits every node depth-first in order, passing its depth (roots are 0).
// Returning false from fn skips the node's children.
func Walk(roots []*Node, fn func(n *Node, depth int) bool) {
	var visit func(ns []*Node, depth int)
	visit = func(ns []*Node, depth int) {
		for _, n := range ns {
			if fn(n, depth) {
				visit(n.Children, depth+1)
			}
		}
	}
	visit(roots, 0)
}

// Descendants returns every account below n, depth-first.
func (n *Node) Descendants() []model.Account {
	var out []model.Account
	Walk(n.Children, func(c *Node, _ int) bool {
		out = append(out, c.Account)
		return true
	})
	return out
}
