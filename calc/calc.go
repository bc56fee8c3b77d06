// Package calc provides reference prize-calculation policies and a named
// registry for resolving the calculator stored in a pool record.
//
// No formula is mandated by the ledger; each pool names its policy at
// creation time. All calculators are pure functions over the pool totals and
// the contribution's stake.
package calc

import (
	"math/bits"
	"sync"

	"github.com/prizepoolorg/libprizepool-go/escrow"
)

// Proportional pays each contribution its pro-rata share of the earmarked
// budget:
//
//	win = amountDistributing * contributionAmount / amountCollected
//
// Integer division truncates; the remainder stays in the budget. A pool with
// nothing collected yields a zero win, which the ledger treats as a fatal
// policy failure.
type Proportional struct{}

// Compile-time interface check.
var _ escrow.PrizeCalculator = Proportional{}

// CalculatePrizeAmount returns the pro-rata win amount.
func (Proportional) CalculatePrizeAmount(amountDistributing, amountCollected, contributionAmount uint64) uint64 {
	if amountCollected == 0 {
		return 0
	}
	if contributionAmount > amountCollected {
		// Inconsistent inputs; never pay more than the full budget.
		contributionAmount = amountCollected
	}
	return mulDiv(amountDistributing, contributionAmount, amountCollected)
}

// FixedFraction pays a fixed per-mille of the contribution's own stake,
// independent of the pool totals.
type FixedFraction struct {
	// PerMille is the payout rate in thousandths of the stake.
	PerMille uint64
}

// Compile-time interface check.
var _ escrow.PrizeCalculator = FixedFraction{}

// CalculatePrizeAmount returns contributionAmount * PerMille / 1000.
func (f FixedFraction) CalculatePrizeAmount(_, _, contributionAmount uint64) uint64 {
	return mulDiv(contributionAmount, f.PerMille, 1000)
}

// mulDiv computes a*b/c with a 128-bit intermediate product. A quotient that
// would not fit in uint64 yields 0, which the ledger surfaces as a fatal
// zero-win policy failure.
func mulDiv(a, b, c uint64) uint64 {
	if c == 0 {
		return 0
	}
	hi, lo := bits.Mul64(a, b)
	if hi >= c {
		return 0
	}
	quo, _ := bits.Div64(hi, lo, c)
	return quo
}

// Registry maps calculator names to implementations. The ledger resolves a
// pool's calculator name against the registry at creation time and again at
// payout time.
type Registry struct {
	mu    sync.RWMutex
	calcs map[string]escrow.PrizeCalculator
}

// Compile-time interface check.
var _ escrow.CalculatorRegistry = (*Registry)(nil)

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{calcs: make(map[string]escrow.PrizeCalculator)}
}

// Register binds a name to a calculator, replacing any previous binding.
func (r *Registry) Register(name string, c escrow.PrizeCalculator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calcs[name] = c
}

// Lookup resolves a calculator by name.
func (r *Registry) Lookup(name string) (escrow.PrizeCalculator, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.calcs[name]
	return c, ok
}
