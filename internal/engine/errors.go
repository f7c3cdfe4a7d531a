// =============================
// File: internal/engine/errors.go
// =============================
package engine

import (
	"errors"
	"fmt"

	"github.com/solcurve/launchpad/internal/ledger"
)

var (
	// ErrProtocolNotInitialized is returned by every operation that needs
	// protocol state before InitializeProtocol has run.
	ErrProtocolNotInitialized = errors.New("protocol state not initialized")

	// ErrProtocolAlreadyInitialized guards against a second initialization.
	ErrProtocolAlreadyInitialized = errors.New("protocol state already initialized")

	// ErrAlreadyMinted is returned when a meme id has already been issued.
	ErrAlreadyMinted = errors.New("meme token already minted")

	// ErrPoolNotInitialized is returned by swaps and quotes against a mint
	// that has no pool yet.
	ErrPoolNotInitialized = errors.New("amm pool not initialized")

	// ErrPoolAlreadyInitialized guards one-shot pool creation.
	ErrPoolAlreadyInitialized = errors.New("amm pool already initialized")

	// ErrTokenNotFound is returned when no meme token exists for the given
	// id or mint.
	ErrTokenNotFound = errors.New("meme token not found")
)

// InsufficientFeeError reports a minter that cannot cover the flat mint fee.
type InsufficientFeeError struct {
	Required  uint64
	Available uint64
}

func (e *InsufficientFeeError) Error() string {
	return fmt.Sprintf("insufficient fee: required %d lamports, available %d", e.Required, e.Available)
}

// InsufficientFundsError reports a debit that exceeds the payer's balance
// outside the fee path (pool seeding, swap inputs).
type InsufficientFundsError struct {
	Account  string
	Required uint64
	Balance  uint64
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds on %s: required %d, balance %d", e.Account, e.Required, e.Balance)
}

// SlippageExceededError reports a swap whose computed output fell below the
// caller's minimum. The trade is not applied.
type SlippageExceededError struct {
	MinOut uint64
	Actual uint64
}

func (e *SlippageExceededError) Error() string {
	return fmt.Sprintf("slippage exceeded: minimum out %d, actual out %d", e.MinOut, e.Actual)
}

// IsRetryable reports whether the operation may be retried as-is. Only
// optimistic-concurrency conflicts qualify; business-rule and configuration
// failures are deterministic and retrying them cannot help.
func IsRetryable(err error) bool {
	return errors.Is(err, ledger.ErrConflict)
}

// IsBusinessRule reports whether the error is a deterministic rejection of
// the request itself rather than an infrastructure failure.
func IsBusinessRule(err error) bool {
	var feeErr *InsufficientFeeError
	var fundsErr *InsufficientFundsError
	var slipErr *SlippageExceededError
	return errors.Is(err, ErrAlreadyMinted) ||
		errors.Is(err, ErrPoolAlreadyInitialized) ||
		errors.Is(err, ErrProtocolAlreadyInitialized) ||
		errors.As(err, &feeErr) ||
		errors.As(err, &fundsErr) ||
		errors.As(err, &slipErr)
}
