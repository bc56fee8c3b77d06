package assets

import "errors"

var (
	// ErrInsufficientBalance indicates the source account cannot cover the
	// transfer.
	ErrInsufficientBalance = errors.New("assets: insufficient balance")

	// ErrInsufficientAllowance indicates the spender's approved allowance
	// cannot cover the transfer.
	ErrInsufficientAllowance = errors.New("assets: insufficient allowance")

	// ErrZeroAccount indicates a transfer endpoint is the zero account.
	ErrZeroAccount = errors.New("assets: zero account")

	// ErrZeroAmount indicates a zero transfer amount.
	ErrZeroAmount = errors.New("assets: zero amount")

	// ErrGuardedAccount indicates a direct transfer into an account that only
	// accepts notified settlements.
	ErrGuardedAccount = errors.New("assets: account rejects direct transfers")

	// ErrNotGuarded indicates a notified transfer into an account with no
	// registered receiver.
	ErrNotGuarded = errors.New("assets: account has no settlement receiver")

	// ErrBalanceOverflow indicates the credit would overflow the recipient
	// balance.
	ErrBalanceOverflow = errors.New("assets: balance overflow")
)
