package balance

import (
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ledgercore/internal/model"
)

// Tracker keeps a materialized debit-minus-credit total per account, updated
// as journals are accepted. The fold in ComputeBalance remains the source of
// truth; Verify compares the two.
type Tracker struct {
	mu     sync.RWMutex
	policy Policy
	net    map[int]decimal.Decimal
}

// NewTracker returns an empty Tracker.
func NewTracker(p Policy) *Tracker {
	return &Tracker{policy: p, net: make(map[int]decimal.Decimal)}
}

// Reset rebuilds the totals from postings.
func (t *Tracker) Reset(postings []model.Posting) {
	net := make(map[int]decimal.Decimal)
	for _, ps := range postings {
		net[ps.AccountID] = net[ps.AccountID].Add(ps.Signed())
	}
	t.mu.Lock()
	t.net = net
	t.mu.Unlock()
}

// Apply adds an accepted journal to the totals.
func (t *Tracker) Apply(j model.Journal) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, e := range j.Entries {
		t.net[e.AccountID] = t.net[e.AccountID].Add(e.Signed())
	}
}

// Balance returns the materialized balance of acct on its normal side.
func (t *Tracker) Balance(acct model.Account) decimal.Decimal {
	t.mu.RLock()
	net := t.net[acct.ID]
	t.mu.RUnlock()
	return ToSide(t.policy.NormalBalance(acct.Type), net)
}

// Drift is a disagreement between the materialized and folded balance.
type Drift struct {
	Account      model.Account
	Materialized decimal.Decimal
	Computed     decimal.Decimal
}

// Verify recomputes every account's balance from postings and reports the
// accounts whose materialized balance differs, ordered by account number.
func (t *Tracker) Verify(accts []model.Account, postings []model.Posting) []Drift {
	var drifts []Drift
	for _, a := range accts {
		computed := t.policy.ComputeBalance(a, postings, model.DateRange{})
		materialized := t.Balance(a)
		if !computed.Equal(materialized) {
			drifts = append(drifts, Drift{Account: a, Materialized: materialized, Computed: computed})
		}
	}
	sort.Slice(drifts, func(i, j int) bool {
		return drifts[i].Account.Number < drifts[j].Account.Number
	})
	return drifts
}
