package escrow

import (
	"fmt"
	"math"
)

// ReceiveTokens is the inbound settlement entry point. The asset ledger
// invokes it after moving amount units from the depositor into custody; token
// must be the asset ledger identity registered at initialization. The payload
// must decode to exactly a (pool, contribution) identifier pair.
//
// Returning an error obliges the caller to roll the transfer back; the ledger
// itself retains no state on any failure.
func (l *Ledger) ReceiveTokens(token, from AccountID, amount uint64, payload []byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.initialized {
		return ErrNotInitialized
	}
	if token != l.token {
		return fmt.Errorf("%w: %s", ErrUnknownToken, token)
	}
	if l.paused {
		return ErrPaused
	}
	if amount == 0 {
		return ErrZeroAmount
	}
	if from.IsZero() {
		return ErrZeroDepositor
	}

	poolID, contributionID, err := DecodeDepositPayload(payload)
	if err != nil {
		return err
	}

	p, err := l.contributionChecksLocked(poolID, contributionID, amount)
	if err != nil {
		return err
	}
	return l.commitContributionLocked(p, contributionID, from, amount)
}

// Deposit is the pull-style deposit path for embedders that do not deliver
// settlements through ReceiveTokens. The depositor must have approved the
// custody account as spender on the asset ledger; the transfer happens after
// all validation and before any state mutation.
func (l *Ledger) Deposit(depositor AccountID, poolID PoolID, contributionID ContributionID, amount uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.initialized {
		return ErrNotInitialized
	}
	if l.paused {
		return ErrPaused
	}
	if amount == 0 {
		return ErrZeroAmount
	}
	if depositor.IsZero() {
		return ErrZeroDepositor
	}

	p, err := l.contributionChecksLocked(poolID, contributionID, amount)
	if err != nil {
		return err
	}

	if err := l.assets.TransferFrom(l.custody, depositor, l.custody, amount); err != nil {
		return fmt.Errorf("%w: %w", ErrTransferFailed, err)
	}
	return l.commitContributionLocked(p, contributionID, depositor, amount)
}

// contributionChecksLocked runs the acceptance gates against a pool copy:
// pool active, window open, identifier unused, limit respected.
func (l *Ledger) contributionChecksLocked(poolID PoolID, contributionID ContributionID, amount uint64) (*Pool, error) {
	p, err := l.store.GetPool(poolID)
	if err != nil {
		return nil, err
	}
	if p.Status != StatusActive {
		return nil, fmt.Errorf("%w: status %s", ErrPoolNotActive, p.Status)
	}

	now := l.now().Unix()
	if now < p.ContributionStart || now >= p.ContributionEnd {
		return nil, fmt.Errorf("%w: now %d not in [%d, %d)", ErrOutsideWindow, now, p.ContributionStart, p.ContributionEnd)
	}

	if _, exists := p.Contributions[contributionID]; exists {
		return nil, ErrDuplicateContribution
	}

	if amount > math.MaxUint64-p.AmountCollected {
		return nil, fmt.Errorf("%w: collected amount overflow", ErrLimitExceeded)
	}
	if p.AmountLimit != 0 && p.AmountCollected+amount > p.AmountLimit {
		return nil, fmt.Errorf("%w: %d collected, %d limit, %d offered",
			ErrLimitExceeded, p.AmountCollected, p.AmountLimit, amount)
	}
	return p, nil
}

// commitContributionLocked records the contribution, the pool totals and the
// wallet index entry in one atomic store write, then notifies.
func (l *Ledger) commitContributionLocked(p *Pool, contributionID ContributionID, owner AccountID, amount uint64) error {
	p.Contributions[contributionID] = &Contribution{Owner: owner, Amount: amount}
	p.AmountCollected += amount

	ref := ContributionRef{Pool: p.ID, Contribution: contributionID}
	if err := l.store.PutPoolWithRef(p, owner, ref); err != nil {
		return err
	}

	l.events.Emit(Event{
		Kind:         EventContributionAdded,
		Pool:         p.ID,
		Contribution: contributionID,
		Owner:        owner,
		Amount:       amount,
	})
	return nil
}
