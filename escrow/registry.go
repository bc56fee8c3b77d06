package escrow

import "fmt"

// strictTransitions is the explicit lifecycle table enforced by
// WithStrictTransitions. Funded is only reachable through
// TransferToDestination and is terminal.
var strictTransitions = map[Status][]Status{
	StatusActive:       {StatusDistributing, StatusPaused},
	StatusDistributing: {StatusActive, StatusPaused},
	StatusPaused:       {StatusActive, StatusDistributing},
	StatusFunded:       {},
}

// CreatePool creates a new pool in the Active state. Re-creating an existing
// pool is rejected: overwriting a live record would desynchronize the
// collected amount from the contribution set.
func (l *Ledger) CreatePool(caller AccountID, id PoolID, destination AccountID, start, end int64, limit uint64, calculator string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.auth.IsAuthorized(caller, ActionCreatePool) {
		return fmt.Errorf("%w: %s", ErrUnauthorized, ActionCreatePool)
	}
	if !l.initialized {
		return ErrNotInitialized
	}
	if id == (PoolID{}) {
		return fmt.Errorf("%w: zero pool id", ErrPoolNotFound)
	}
	if destination.IsZero() {
		return ErrZeroDestination
	}
	if start >= end {
		return fmt.Errorf("%w: [%d, %d)", ErrInvalidWindow, start, end)
	}
	if _, ok := l.calcs.Lookup(calculator); !ok {
		return fmt.Errorf("%w: %q", ErrUnknownCalculator, calculator)
	}
	if _, err := l.store.GetPool(id); err == nil {
		return ErrPoolExists
	}

	p := &Pool{
		ID:                id,
		Destination:       destination,
		ContributionStart: start,
		ContributionEnd:   end,
		Status:            StatusActive,
		AmountLimit:       limit,
		Calculator:        calculator,
		Contributions:     make(map[ContributionID]*Contribution),
	}
	if err := l.store.PutPool(p); err != nil {
		return err
	}

	l.events.Emit(Event{Kind: EventPoolAdded, Pool: id})
	return nil
}

// SetStatus records an operator-driven status transition. By default any
// transition between non-NotSet statuses is accepted; under strict
// transitions the lifecycle table applies and Funded is unreachable here.
func (l *Ledger) SetStatus(caller AccountID, id PoolID, status Status) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.auth.IsAuthorized(caller, ActionSetStatus) {
		return fmt.Errorf("%w: %s", ErrUnauthorized, ActionSetStatus)
	}
	if !l.initialized {
		return ErrNotInitialized
	}

	p, err := l.store.GetPool(id)
	if err != nil {
		return err
	}
	old, err := l.setStatusLocked(p, status)
	if err != nil {
		return err
	}
	return l.commitStatusLocked(p, old)
}

// SetDistributing transitions the pool to Distributing and earmarks the
// payout budget in one atomic step.
func (l *Ledger) SetDistributing(caller AccountID, id PoolID, amountDistributing uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.auth.IsAuthorized(caller, ActionSetDistributing) {
		return fmt.Errorf("%w: %s", ErrUnauthorized, ActionSetDistributing)
	}
	if !l.initialized {
		return ErrNotInitialized
	}
	if amountDistributing == 0 {
		return ErrZeroAmount
	}

	p, err := l.store.GetPool(id)
	if err != nil {
		return err
	}
	old, err := l.setStatusLocked(p, StatusDistributing)
	if err != nil {
		return err
	}
	p.AmountDistributing = amountDistributing
	return l.commitStatusLocked(p, old)
}

// TransferToDestination moves the pool's collected funds from custody to the
// destination account and marks the pool Funded. A failed transfer is fatal
// and retains no state.
//
// The transfer executes before the store commit; if the commit fails the pool
// stays in its previous status with the funds already forwarded, and the
// error obliges the operator to reconcile before retrying.
func (l *Ledger) TransferToDestination(caller AccountID, id PoolID) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.auth.IsAuthorized(caller, ActionTransferDestination) {
		return fmt.Errorf("%w: %s", ErrUnauthorized, ActionTransferDestination)
	}
	if !l.initialized {
		return ErrNotInitialized
	}

	p, err := l.store.GetPool(id)
	if err != nil {
		return err
	}
	if p.Status == StatusFunded {
		return ErrPoolFunded
	}

	if p.AmountCollected > 0 {
		if err := l.assets.Transfer(l.custody, p.Destination, p.AmountCollected); err != nil {
			return fmt.Errorf("%w: %w", ErrTransferFailed, err)
		}
	}

	old := p.Status
	p.Status = StatusFunded
	if err := l.store.PutPool(p); err != nil {
		return err
	}

	l.events.Emit(Event{Kind: EventPoolStatusChanged, Pool: p.ID, OldStatus: old, NewStatus: StatusFunded})
	return nil
}

// setStatusLocked validates and applies a status change to the pool copy,
// returning the previous status.
func (l *Ledger) setStatusLocked(p *Pool, status Status) (Status, error) {
	old := p.Status
	if !status.valid() {
		return old, fmt.Errorf("%w: %s", ErrInvalidStatus, status)
	}
	if l.strict {
		if status == StatusFunded {
			return old, fmt.Errorf("%w: %s -> %s (funded only via destination transfer)", ErrInvalidTransition, p.Status, status)
		}
		if !transitionAllowed(p.Status, status) {
			return old, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, p.Status, status)
		}
	}
	p.Status = status
	return old, nil
}

// commitStatusLocked persists the pool copy and emits the status change.
func (l *Ledger) commitStatusLocked(p *Pool, old Status) error {
	if err := l.store.PutPool(p); err != nil {
		return err
	}
	l.events.Emit(Event{Kind: EventPoolStatusChanged, Pool: p.ID, OldStatus: old, NewStatus: p.Status})
	return nil
}

// transitionAllowed checks the strict lifecycle table.
func transitionAllowed(from, to Status) bool {
	for _, s := range strictTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}
