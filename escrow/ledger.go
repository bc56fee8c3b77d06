package escrow

import (
	"fmt"
	"sync"
	"time"
)

// AssetLedger is the external collaborator that moves asset units between
// accounts. Any reported failure is fatal for the enclosing ledger operation.
type AssetLedger interface {
	// Transfer moves amount units from one account to another.
	Transfer(from, to AccountID, amount uint64) error

	// TransferFrom moves amount units from an account that previously
	// approved the spender.
	TransferFrom(spender, from, to AccountID, amount uint64) error

	// BalanceOf returns the current balance of an account.
	BalanceOf(account AccountID) uint64
}

// PrizeCalculator converts a contribution's stake and the pool totals into a
// payout amount. Implementations must be pure.
type PrizeCalculator interface {
	CalculatePrizeAmount(amountDistributing, amountCollected, contributionAmount uint64) uint64
}

// CalculatorRegistry resolves calculator names stored in pool records to
// calculator implementations.
type CalculatorRegistry interface {
	Lookup(name string) (PrizeCalculator, bool)
}

// Action names an administrative operation gated by the Authorizer.
type Action string

// Administrative actions.
const (
	ActionInitialize          Action = "initialize"
	ActionCreatePool          Action = "create-pool"
	ActionSetStatus           Action = "set-status"
	ActionSetDistributing     Action = "set-distributing"
	ActionTransferDestination Action = "transfer-destination"
	ActionPause               Action = "pause"
	ActionWithdrawStray       Action = "withdraw-stray"
)

// Authorizer is the external collaborator deciding which callers may perform
// administrative actions.
type Authorizer interface {
	IsAuthorized(caller AccountID, action Action) bool
}

// Ledger is the pooled-contribution escrow core. A single mutex serializes
// every state-reading and state-mutating operation so that each executes to
// completion with all-or-nothing semantics; external calls to the asset
// ledger happen inside the critical section after validation and before any
// store mutation.
type Ledger struct {
	mu     sync.Mutex
	store  PoolStore
	assets AssetLedger
	auth   Authorizer
	calcs  CalculatorRegistry
	events EventSink
	now    func() time.Time
	strict bool

	initialized bool
	token       AccountID // asset ledger identity accepted at the settlement entry point
	custody     AccountID // account holding collected funds
	paused      bool
}

// Option configures a Ledger.
type Option func(*Ledger)

// WithEventSink installs a notification sink. The default discards events.
func WithEventSink(sink EventSink) Option {
	return func(l *Ledger) { l.events = sink }
}

// WithStrictTransitions enforces the explicit pool lifecycle table instead of
// the default permissive transitions between non-NotSet statuses.
func WithStrictTransitions() Option {
	return func(l *Ledger) { l.strict = true }
}

// WithClock overrides the time source used for contribution window checks.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// NewLedger creates a ledger over the given store and collaborators. The
// ledger must be initialized with the token and custody accounts before any
// mutating operation.
func NewLedger(store PoolStore, assets AssetLedger, auth Authorizer, calcs CalculatorRegistry, opts ...Option) (*Ledger, error) {
	if store == nil {
		return nil, fmt.Errorf("escrow: nil pool store")
	}
	if assets == nil {
		return nil, fmt.Errorf("escrow: nil asset ledger")
	}
	if auth == nil {
		return nil, fmt.Errorf("escrow: nil authorizer")
	}
	if calcs == nil {
		return nil, fmt.Errorf("escrow: nil calculator registry")
	}
	l := &Ledger{
		store:  store,
		assets: assets,
		auth:   auth,
		calcs:  calcs,
		events: NopSink{},
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Initialize binds the ledger to its token and custody accounts. Called
// exactly once per process, before any mutating operation.
func (l *Ledger) Initialize(caller, token, custody AccountID) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.auth.IsAuthorized(caller, ActionInitialize) {
		return fmt.Errorf("%w: %s", ErrUnauthorized, ActionInitialize)
	}
	if l.initialized {
		return ErrAlreadyInitialized
	}
	if token.IsZero() {
		return fmt.Errorf("%w: token", ErrInvalidAccount)
	}
	if custody.IsZero() {
		return fmt.Errorf("%w: custody", ErrInvalidAccount)
	}

	l.token = token
	l.custody = custody
	l.initialized = true
	return nil
}

// SetPaused sets the global pause flag. While paused, non-administrative
// mutating operations are rejected; administrative operations remain
// available.
func (l *Ledger) SetPaused(caller AccountID, paused bool) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.auth.IsAuthorized(caller, ActionPause) {
		return fmt.Errorf("%w: %s", ErrUnauthorized, ActionPause)
	}
	l.paused = paused
	return nil
}

// Paused reports the global pause flag.
func (l *Ledger) Paused() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.paused
}

// WithdrawStray moves custody funds that are not tracked by any pool to the
// given account. Tracked liability is the collected balance of pools not yet
// funded plus the remaining earmarked budget of every pool.
func (l *Ledger) WithdrawStray(caller, to AccountID, amount uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.auth.IsAuthorized(caller, ActionWithdrawStray) {
		return fmt.Errorf("%w: %s", ErrUnauthorized, ActionWithdrawStray)
	}
	if !l.initialized {
		return ErrNotInitialized
	}
	if to.IsZero() {
		return fmt.Errorf("%w: recipient", ErrInvalidAccount)
	}
	if amount == 0 {
		return ErrZeroAmount
	}

	liability, err := l.trackedLiabilityLocked()
	if err != nil {
		return err
	}

	balance := l.assets.BalanceOf(l.custody)
	stray := uint64(0)
	if balance > liability {
		stray = balance - liability
	}
	if amount > stray {
		return fmt.Errorf("%w: %d available, %d requested", ErrInsufficientStray, stray, amount)
	}

	if err := l.assets.Transfer(l.custody, to, amount); err != nil {
		return fmt.Errorf("%w: %w", ErrTransferFailed, err)
	}
	return nil
}

// trackedLiabilityLocked sums the custody funds accounted for by pools.
func (l *Ledger) trackedLiabilityLocked() (uint64, error) {
	pools, err := l.store.ListPools()
	if err != nil {
		return 0, err
	}
	var liability uint64
	for _, p := range pools {
		if p.Status != StatusFunded {
			liability += p.AmountCollected
		}
		if p.AmountDistributing > p.Paidout {
			liability += p.AmountDistributing - p.Paidout
		}
	}
	return liability, nil
}

// Pool returns a copy of the pool record.
func (l *Ledger) Pool(id PoolID) (*Pool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.store.GetPool(id)
}

// Contribution returns a copy of the contribution record.
func (l *Ledger) Contribution(poolID PoolID, contributionID ContributionID) (*Contribution, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	p, err := l.store.GetPool(poolID)
	if err != nil {
		return nil, err
	}
	c, ok := p.Contributions[contributionID]
	if !ok {
		return nil, ErrContributionNotFound
	}
	cc := *c
	return &cc, nil
}
