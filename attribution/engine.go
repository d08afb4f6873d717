/*
engine.go - Proportional revenue allocation

PURPOSE:
  For each transaction inside the reporting window, split its amount evenly
  across the people eligible at its timestamp. If nobody is eligible the
  full amount routes to the unassigned bucket for that hour slot instead of
  silently disappearing.

CONSERVATION:
  Shares are exact decimal divisions; they are never rounded before display.
  For divisors like 3 the decimal library carries its division precision,
  so the conservation invariant holds to well below display precision and
  is asserted in tests with a tolerance far tighter than a cent.

SEE ALSO:
  - types.go: Fragment and EligibilityProvider
  - aggregate.go: Consumes the fragment list
*/
package attribution

import (
	"github.com/shopspring/decimal"

	"github.com/atlas/coverage-engine/schedule"
)

// Engine allocates transactions against an eligibility source.
type Engine struct {
	Provider EligibilityProvider
}

func NewEngine(p EligibilityProvider) *Engine {
	return &Engine{Provider: p}
}

// Allocate splits every in-range transaction among the people eligible at
// its timestamp. Transactions outside the range are ignored. An empty
// transaction set yields an empty, well-formed allocation.
func (e *Engine) Allocate(txs []Transaction, r schedule.DateRange) (*Allocation, error) {
	if !r.Valid() {
		return nil, schedule.ErrInvalidDateRange
	}

	alloc := &Allocation{
		Unassigned: decimal.Zero,
		ByCategory: make(map[string]decimal.Decimal),
		TotalInput: decimal.Zero,
	}

	for _, tx := range txs {
		date := schedule.DayOf(tx.At)
		if !r.Contains(date) {
			continue
		}
		hour := tx.At.Hour()

		alloc.TotalInput = alloc.TotalInput.Add(tx.Amount)
		if tx.Category != "" {
			alloc.ByCategory[tx.Category] = alloc.ByCategory[tx.Category].Add(tx.Amount)
		}

		eligible := e.Provider.EligibleAt(date, schedule.TimeOfDayOf(tx.At))
		if len(eligible) == 0 {
			alloc.Unassigned = alloc.Unassigned.Add(tx.Amount)
			alloc.Fragments = append(alloc.Fragments, Fragment{
				Person: Unassigned,
				Date:   date,
				Hour:   hour,
				Amount: tx.Amount,
			})
			continue
		}

		share := tx.Amount.Div(decimal.NewFromInt(int64(len(eligible))))
		for _, p := range eligible {
			alloc.Fragments = append(alloc.Fragments, Fragment{
				Person:   p,
				Date:     date,
				Hour:     hour,
				Amount:   share,
				Eligible: true,
			})
		}
	}

	return alloc, nil
}
