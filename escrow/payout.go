package escrow

import (
	"fmt"
	"math"
)

// Payout settles a single contribution against the pool's earmarked
// distribution budget. Callable by anyone once the pool is Distributing.
//
// A contribution settles exactly once: a second call fails with
// ErrAlreadyPaid and changes nothing. A zero win amount, a win that would
// overshoot the earmarked budget, and a rejected asset transfer are all fatal
// invariant errors; in every failure case no state is retained.
//
// The asset transfer executes before the store commit. A store failure after
// a successful transfer is returned to the caller and leaves the payout
// unrecorded; the operator must reconcile the custody balance against the
// pool record before retrying, or the retry pays the contribution twice.
func (l *Ledger) Payout(poolID PoolID, contributionID ContributionID) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.initialized {
		return ErrNotInitialized
	}
	if l.paused {
		return ErrPaused
	}

	p, err := l.store.GetPool(poolID)
	if err != nil {
		return err
	}
	if p.Status != StatusDistributing {
		return fmt.Errorf("%w: status %s", ErrNotDistributing, p.Status)
	}
	if p.AmountDistributing <= p.Paidout {
		return ErrNoBudget
	}

	c, ok := p.Contributions[contributionID]
	if !ok {
		return ErrContributionNotFound
	}
	if c.Paidout != 0 {
		return ErrAlreadyPaid
	}

	calculator, ok := l.calcs.Lookup(p.Calculator)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCalculator, p.Calculator)
	}

	win := calculator.CalculatePrizeAmount(p.AmountDistributing, p.AmountCollected, c.Amount)
	if win == 0 {
		return ErrZeroWinAmount
	}
	if win > math.MaxUint64-p.Paidout || p.Paidout+win > p.AmountDistributing {
		return fmt.Errorf("%w: %d paid, %d earmarked, %d calculated",
			ErrBudgetExceeded, p.Paidout, p.AmountDistributing, win)
	}

	if err := l.assets.Transfer(l.custody, c.Owner, win); err != nil {
		return fmt.Errorf("%w: %w", ErrTransferFailed, err)
	}

	c.Paidout = win
	p.Paidout += win
	if err := l.store.PutPool(p); err != nil {
		return err
	}

	l.events.Emit(Event{
		Kind:         EventPaidout,
		Pool:         p.ID,
		Contribution: contributionID,
		Owner:        c.Owner,
		Amount:       win,
	})
	return nil
}
