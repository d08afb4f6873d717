/*
Package attribution splits transaction revenue among the personnel eligible
at each transaction's timestamp and rolls the results into the run's reports.

PURPOSE:
  The schedule package answers "who may receive revenue at time t"; this
  package takes that answer plus the transaction stream and produces the
  hourly coverage matrix, daily summary, period totals (with commission),
  and concurrency statistics.

KEY CONCEPTS IN THIS FILE (types.go):
  - Transaction: One monetary event (timestamp, amount, optional category)
  - Fragment: One person's share of one transaction in one hour slot
  - Unassigned: The pseudo-person receiving revenue no one was eligible for
  - EligibilityProvider: The seam between resolver-driven and grid-driven runs

DESIGN PRINCIPLES:
  1. Precision: All money is decimal.Decimal; no float arithmetic touches
     an allocated amount
  2. Conservation: Every transaction's amount is fully accounted for across
     its fragments plus the unassigned bucket
  3. Recompute from scratch: Allocations and aggregates are pure functions
     of their inputs; nothing is patched incrementally

SEE ALSO:
  - engine.go: The allocation algorithm
  - grid.go: The operator-editable eligibility overlay
  - aggregate.go: Report assembly
*/
package attribution

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/atlas/coverage-engine/schedule"
)

// =============================================================================
// TRANSACTION - Read-only monetary input
// =============================================================================

type Transaction struct {
	At       time.Time
	Amount   decimal.Decimal
	Category string // optional; feeds eligibility-independent sub-metrics
}

// =============================================================================
// UNASSIGNED - Sentinel pseudo-person
// =============================================================================

// UnassignedName is the display name of the bucket receiving revenue for
// which zero persons were eligible.
const UnassignedName = "SIN ASIGNAR"

// UnassignedOrdinal marks fragments routed to the unassigned bucket.
const UnassignedOrdinal = -1

// Unassigned is the pseudo-person for zero-eligible routing.
var Unassigned = schedule.Person{Name: UnassignedName, Ordinal: UnassignedOrdinal}

// =============================================================================
// FRAGMENT - One person's share of one transaction
// =============================================================================

type Fragment struct {
	Person schedule.Person
	Date   schedule.DayDate
	Hour   int
	Amount decimal.Decimal

	// Eligible is false only for unassigned fragments; person fragments
	// are emitted exclusively for eligible people.
	Eligible bool
}

// =============================================================================
// ALLOCATION - The full fragment set for one run
// =============================================================================

type Allocation struct {
	Fragments  []Fragment
	Unassigned decimal.Decimal
	ByCategory map[string]decimal.Decimal

	// TotalInput is the sum of all allocated transaction amounts; the
	// conservation invariant says Fragments + Unassigned == TotalInput.
	TotalInput decimal.Decimal
}

// =============================================================================
// ELIGIBILITY PROVIDER - Seam between resolver and grid
// =============================================================================

// EligibilityProvider yields the eligible person set at a moment. The
// schedule resolver implements it for computed runs; the Grid implements it
// (at hour granularity) once an operator session exists.
type EligibilityProvider interface {
	EligibleAt(date schedule.DayDate, t schedule.TimeOfDay) []schedule.Person
}

// ResolverProvider adapts schedule.Resolver to EligibilityProvider.
type ResolverProvider struct {
	Resolver *schedule.Resolver
}

func (rp ResolverProvider) EligibleAt(date schedule.DayDate, t schedule.TimeOfDay) []schedule.Person {
	_, eligible := rp.Resolver.ResolveAt(date, t)
	return eligible
}
