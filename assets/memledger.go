// Package assets provides an in-memory fungible asset ledger implementing
// the escrow.AssetLedger collaborator interface.
//
// The ledger supports guarded accounts: an account registered with a
// settlement receiver rejects plain transfers and only gains funds through
// TransferAndNotify, which delivers the deposit payload to the receiver and
// rolls the balance move back if the receiver rejects it. This reproduces the
// all-or-nothing settlement semantics the escrow core requires from its asset
// collaborator.
package assets

import (
	"fmt"
	"math"
	"sync"

	"github.com/prizepoolorg/libprizepool-go/escrow"
)

// TokenReceiver accepts notified settlements into a guarded account.
// escrow.Ledger.ReceiveTokens satisfies this interface.
type TokenReceiver interface {
	ReceiveTokens(token, from escrow.AccountID, amount uint64, payload []byte) error
}

// MemLedger is an in-memory asset ledger. The Identity account names the
// ledger itself and is passed to receivers as the settlement caller token.
type MemLedger struct {
	// Identity is the token identity reported to settlement receivers.
	Identity escrow.AccountID

	mu         sync.Mutex
	balances   map[escrow.AccountID]uint64
	allowances map[escrow.AccountID]map[escrow.AccountID]uint64 // owner -> spender -> amount
	receivers  map[escrow.AccountID]TokenReceiver
}

// Compile-time interface check.
var _ escrow.AssetLedger = (*MemLedger)(nil)

// NewMemLedger creates an empty ledger with the given token identity.
func NewMemLedger(identity escrow.AccountID) *MemLedger {
	return &MemLedger{
		Identity:   identity,
		balances:   make(map[escrow.AccountID]uint64),
		allowances: make(map[escrow.AccountID]map[escrow.AccountID]uint64),
		receivers:  make(map[escrow.AccountID]TokenReceiver),
	}
}

// Mint credits newly issued units to an account, bypassing guards.
func (l *MemLedger) Mint(to escrow.AccountID, amount uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if to.IsZero() {
		return ErrZeroAccount
	}
	if amount > math.MaxUint64-l.balances[to] {
		return ErrBalanceOverflow
	}
	l.balances[to] += amount
	return nil
}

// Guard registers a settlement receiver for an account. From then on plain
// transfers into the account are rejected; deposits must go through
// TransferAndNotify.
func (l *MemLedger) Guard(account escrow.AccountID, receiver TokenReceiver) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.receivers[account] = receiver
}

// BalanceOf returns the current balance of an account.
func (l *MemLedger) BalanceOf(account escrow.AccountID) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[account]
}

// Approve grants spender the right to move up to amount units from owner.
func (l *MemLedger) Approve(owner, spender escrow.AccountID, amount uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if owner.IsZero() || spender.IsZero() {
		return ErrZeroAccount
	}
	m, ok := l.allowances[owner]
	if !ok {
		m = make(map[escrow.AccountID]uint64)
		l.allowances[owner] = m
	}
	m[spender] = amount
	return nil
}

// Transfer moves amount units between accounts. Transfers into a guarded
// account are rejected.
func (l *MemLedger) Transfer(from, to escrow.AccountID, amount uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.moveLocked(from, to, amount, false)
}

// TransferFrom moves amount units from an account within the spender's
// approved allowance. Transfers into a guarded account are rejected.
func (l *MemLedger) TransferFrom(spender, from, to escrow.AccountID, amount uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	allowance := l.allowances[from][spender]
	if allowance < amount {
		return fmt.Errorf("%w: %d approved, %d requested", ErrInsufficientAllowance, allowance, amount)
	}
	// A guarded account pulling funds into itself is its owner acting
	// deliberately; the guard only blocks third-party credits.
	if err := l.moveLocked(from, to, amount, spender == to); err != nil {
		return err
	}
	l.allowances[from][spender] = allowance - amount
	return nil
}

// TransferAndNotify moves amount units into a guarded account and delivers
// the payload to its receiver. If the receiver rejects the settlement the
// balance move is rolled back and nothing is retained.
func (l *MemLedger) TransferAndNotify(from, to escrow.AccountID, amount uint64, payload []byte) error {
	l.mu.Lock()
	receiver, ok := l.receivers[to]
	if !ok {
		l.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNotGuarded, to)
	}
	if err := l.moveLocked(from, to, amount, true); err != nil {
		l.mu.Unlock()
		return err
	}
	token := l.Identity
	l.mu.Unlock()

	// Receiver runs outside the balance lock so it can query BalanceOf.
	if err := receiver.ReceiveTokens(token, from, amount, payload); err != nil {
		l.mu.Lock()
		rollbackErr := l.moveLocked(to, from, amount, true)
		l.mu.Unlock()
		if rollbackErr != nil {
			return fmt.Errorf("assets: settlement rollback failed: %w (receiver: %w)", rollbackErr, err)
		}
		return err
	}
	return nil
}

// moveLocked performs the balance move. bypassGuard allows credits into a
// guarded account for notified settlements and rollbacks.
func (l *MemLedger) moveLocked(from, to escrow.AccountID, amount uint64, bypassGuard bool) error {
	if from.IsZero() || to.IsZero() {
		return ErrZeroAccount
	}
	if amount == 0 {
		return ErrZeroAmount
	}
	if !bypassGuard {
		if _, guarded := l.receivers[to]; guarded {
			return fmt.Errorf("%w: %s", ErrGuardedAccount, to)
		}
	}
	if l.balances[from] < amount {
		return fmt.Errorf("%w: %s has %d, needs %d", ErrInsufficientBalance, from, l.balances[from], amount)
	}
	if amount > math.MaxUint64-l.balances[to] {
		return ErrBalanceOverflow
	}
	l.balances[from] -= amount
	l.balances[to] += amount
	return nil
}
