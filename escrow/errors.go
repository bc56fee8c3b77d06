package escrow

import "errors"

// Validation errors. The enclosing operation aborts cleanly with no state
// change; the caller may retry after correcting the condition.
var (
	// ErrNotInitialized indicates the ledger has not been initialized yet.
	ErrNotInitialized = errors.New("escrow: ledger not initialized")

	// ErrAlreadyInitialized indicates Initialize was called twice.
	ErrAlreadyInitialized = errors.New("escrow: ledger already initialized")

	// ErrUnauthorized indicates the caller may not perform the action.
	ErrUnauthorized = errors.New("escrow: caller not authorized")

	// ErrPaused indicates the ledger is globally paused.
	ErrPaused = errors.New("escrow: ledger is paused")

	// ErrUnknownToken indicates a settlement from an unrecognized token ledger.
	ErrUnknownToken = errors.New("escrow: settlement from unknown token ledger")

	// ErrZeroAmount indicates a zero contribution or transfer amount.
	ErrZeroAmount = errors.New("escrow: zero amount")

	// ErrZeroDepositor indicates the depositor account is not set.
	ErrZeroDepositor = errors.New("escrow: depositor account not set")

	// ErrZeroDestination indicates the pool destination account is not set.
	ErrZeroDestination = errors.New("escrow: destination account not set")

	// ErrInvalidAccount indicates a malformed account encoding.
	ErrInvalidAccount = errors.New("escrow: invalid account")

	// ErrInvalidPayload indicates the deposit payload is malformed.
	ErrInvalidPayload = errors.New("escrow: invalid deposit payload")

	// ErrInvalidWindow indicates the contribution window is empty or inverted.
	ErrInvalidWindow = errors.New("escrow: invalid contribution window")

	// ErrInvalidStatus indicates an unknown or unreachable status value.
	ErrInvalidStatus = errors.New("escrow: invalid status")

	// ErrInvalidTransition indicates a transition forbidden by the strict
	// lifecycle table.
	ErrInvalidTransition = errors.New("escrow: invalid status transition")

	// ErrPoolNotFound indicates the pool does not exist.
	ErrPoolNotFound = errors.New("escrow: pool not found")

	// ErrPoolExists indicates the pool identifier is already in use.
	ErrPoolExists = errors.New("escrow: pool already exists")

	// ErrPoolNotActive indicates the pool is not accepting contributions.
	ErrPoolNotActive = errors.New("escrow: pool not active")

	// ErrPoolFunded indicates the pool's collected funds were already
	// transferred to the destination.
	ErrPoolFunded = errors.New("escrow: pool already funded")

	// ErrOutsideWindow indicates the contribution window is not open.
	ErrOutsideWindow = errors.New("escrow: outside contribution window")

	// ErrLimitExceeded indicates the contribution would exceed the pool limit.
	ErrLimitExceeded = errors.New("escrow: contribution limit exceeded")

	// ErrDuplicateContribution indicates the contribution identifier is
	// already in use within the pool.
	ErrDuplicateContribution = errors.New("escrow: duplicate contribution")

	// ErrContributionNotFound indicates the contribution does not exist.
	ErrContributionNotFound = errors.New("escrow: contribution not found")

	// ErrNotDistributing indicates the pool is not in the distributing state.
	ErrNotDistributing = errors.New("escrow: pool not distributing")

	// ErrNoBudget indicates the pool's distribution budget is exhausted.
	ErrNoBudget = errors.New("escrow: no remaining distribution budget")

	// ErrUnknownCalculator indicates the calculator name is not registered.
	ErrUnknownCalculator = errors.New("escrow: unknown prize calculator")

	// ErrInsufficientStray indicates the withdrawal exceeds the untracked
	// custody balance.
	ErrInsufficientStray = errors.New("escrow: insufficient stray funds")
)

// Fatal invariant errors. These signal a logic or policy bug rather than a
// correctable input; the operation aborts with no state retained and the
// condition must not be silently ignored.
var (
	// ErrAlreadyPaid indicates a second payout attempt on a settled
	// contribution.
	ErrAlreadyPaid = errors.New("escrow: contribution already paid out")

	// ErrZeroWinAmount indicates the prize calculator produced no payout.
	ErrZeroWinAmount = errors.New("escrow: calculated win amount is zero")

	// ErrBudgetExceeded indicates the calculated win would overshoot the
	// earmarked distribution budget.
	ErrBudgetExceeded = errors.New("escrow: payout exceeds distribution budget")

	// ErrTransferFailed indicates the asset ledger rejected a settlement
	// transfer.
	ErrTransferFailed = errors.New("escrow: asset transfer failed")
)

// IsFatal reports whether err is a fatal invariant error as opposed to a
// recoverable validation error.
func IsFatal(err error) bool {
	return errors.Is(err, ErrAlreadyPaid) ||
		errors.Is(err, ErrZeroWinAmount) ||
		errors.Is(err, ErrBudgetExceeded) ||
		errors.Is(err, ErrTransferFailed)
}
