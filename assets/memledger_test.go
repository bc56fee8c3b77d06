package assets

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prizepoolorg/libprizepool-go/escrow"
)

func makeAccount(seed byte) escrow.AccountID {
	var a escrow.AccountID
	for i := range a {
		a[i] = seed
	}
	return a
}

var (
	tokenIdentity = makeAccount(0x01)
	alice         = makeAccount(0xAA)
	bob           = makeAccount(0xBB)
	custody       = makeAccount(0xCC)
)

// stubReceiver records notified settlements and optionally rejects them.
type stubReceiver struct {
	err   error
	calls int

	token   escrow.AccountID
	from    escrow.AccountID
	amount  uint64
	payload []byte
}

func (r *stubReceiver) ReceiveTokens(token, from escrow.AccountID, amount uint64, payload []byte) error {
	r.calls++
	r.token = token
	r.from = from
	r.amount = amount
	r.payload = payload
	return r.err
}

func TestMintAndBalance(t *testing.T) {
	l := NewMemLedger(tokenIdentity)

	assert.Equal(t, uint64(0), l.BalanceOf(alice))
	require.NoError(t, l.Mint(alice, 500))
	assert.Equal(t, uint64(500), l.BalanceOf(alice))

	assert.ErrorIs(t, l.Mint(escrow.AccountID{}, 100), ErrZeroAccount)
}

func TestTransfer(t *testing.T) {
	l := NewMemLedger(tokenIdentity)
	require.NoError(t, l.Mint(alice, 500))

	require.NoError(t, l.Transfer(alice, bob, 200))
	assert.Equal(t, uint64(300), l.BalanceOf(alice))
	assert.Equal(t, uint64(200), l.BalanceOf(bob))

	assert.ErrorIs(t, l.Transfer(alice, bob, 1000), ErrInsufficientBalance)
	assert.ErrorIs(t, l.Transfer(alice, bob, 0), ErrZeroAmount)
	assert.ErrorIs(t, l.Transfer(escrow.AccountID{}, bob, 100), ErrZeroAccount)
	assert.ErrorIs(t, l.Transfer(alice, escrow.AccountID{}, 100), ErrZeroAccount)
}

func TestGuardedAccount(t *testing.T) {
	l := NewMemLedger(tokenIdentity)
	require.NoError(t, l.Mint(alice, 500))
	l.Guard(custody, &stubReceiver{})

	// Plain transfers into a guarded account are rejected.
	err := l.Transfer(alice, custody, 100)
	assert.ErrorIs(t, err, ErrGuardedAccount)
	assert.Equal(t, uint64(500), l.BalanceOf(alice))
	assert.Equal(t, uint64(0), l.BalanceOf(custody))

	// Transfers out of a guarded account are unrestricted.
	require.NoError(t, l.Mint(custody, 300))
	require.NoError(t, l.Transfer(custody, bob, 100))
	assert.Equal(t, uint64(100), l.BalanceOf(bob))
}

func TestApproveAndTransferFrom(t *testing.T) {
	l := NewMemLedger(tokenIdentity)
	require.NoError(t, l.Mint(alice, 500))
	require.NoError(t, l.Approve(alice, bob, 300))

	require.NoError(t, l.TransferFrom(bob, alice, bob, 200))
	assert.Equal(t, uint64(300), l.BalanceOf(alice))
	assert.Equal(t, uint64(200), l.BalanceOf(bob))

	// Allowance was consumed.
	err := l.TransferFrom(bob, alice, bob, 200)
	assert.ErrorIs(t, err, ErrInsufficientAllowance)

	require.NoError(t, l.TransferFrom(bob, alice, bob, 100))
	assert.Equal(t, uint64(200), l.BalanceOf(alice))
}

func TestTransferFromIntoGuardedAccount(t *testing.T) {
	l := NewMemLedger(tokenIdentity)
	require.NoError(t, l.Mint(alice, 500))
	l.Guard(custody, &stubReceiver{})
	require.NoError(t, l.Approve(alice, custody, 300))

	// A guarded account pulling into itself bypasses its own guard.
	require.NoError(t, l.TransferFrom(custody, alice, custody, 200))
	assert.Equal(t, uint64(200), l.BalanceOf(custody))

	// Third-party spenders still cannot credit the guarded account.
	require.NoError(t, l.Approve(alice, bob, 300))
	err := l.TransferFrom(bob, alice, custody, 100)
	assert.ErrorIs(t, err, ErrGuardedAccount)
}

func TestTransferAndNotify(t *testing.T) {
	l := NewMemLedger(tokenIdentity)
	require.NoError(t, l.Mint(alice, 500))

	receiver := &stubReceiver{}
	l.Guard(custody, receiver)

	payload := []byte("settlement payload")
	require.NoError(t, l.TransferAndNotify(alice, custody, 200, payload))

	assert.Equal(t, uint64(300), l.BalanceOf(alice))
	assert.Equal(t, uint64(200), l.BalanceOf(custody))

	assert.Equal(t, 1, receiver.calls)
	assert.Equal(t, tokenIdentity, receiver.token)
	assert.Equal(t, alice, receiver.from)
	assert.Equal(t, uint64(200), receiver.amount)
	assert.Equal(t, payload, receiver.payload)
}

func TestTransferAndNotifyUnguarded(t *testing.T) {
	l := NewMemLedger(tokenIdentity)
	require.NoError(t, l.Mint(alice, 500))

	err := l.TransferAndNotify(alice, bob, 100, nil)
	assert.ErrorIs(t, err, ErrNotGuarded)
	assert.Equal(t, uint64(500), l.BalanceOf(alice))
}

func TestTransferAndNotifyRollback(t *testing.T) {
	l := NewMemLedger(tokenIdentity)
	require.NoError(t, l.Mint(alice, 500))

	rejection := errors.New("settlement rejected")
	receiver := &stubReceiver{err: rejection}
	l.Guard(custody, receiver)

	err := l.TransferAndNotify(alice, custody, 200, nil)
	assert.ErrorIs(t, err, rejection)

	// The balance move was rolled back.
	assert.Equal(t, uint64(500), l.BalanceOf(alice))
	assert.Equal(t, uint64(0), l.BalanceOf(custody))
	assert.Equal(t, 1, receiver.calls)
}

func TestTransferAndNotifyInsufficientBalance(t *testing.T) {
	l := NewMemLedger(tokenIdentity)
	require.NoError(t, l.Mint(alice, 100))

	receiver := &stubReceiver{}
	l.Guard(custody, receiver)

	err := l.TransferAndNotify(alice, custody, 200, nil)
	assert.ErrorIs(t, err, ErrInsufficientBalance)
	assert.Equal(t, 0, receiver.calls)
}
