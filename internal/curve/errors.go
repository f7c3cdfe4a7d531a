// =============================
// File: internal/curve/errors.go
// =============================
package curve

import "errors"

var (
	// ErrZeroAmount is returned when the input amount of a swap is zero.
	ErrZeroAmount = errors.New("curve: swap amount must be greater than zero")

	// ErrZeroReserve is returned when an effective reserve is zero. A live
	// pool can never reach this state; it indicates corrupted reserves.
	ErrZeroReserve = errors.New("curve: zero effective reserve")

	// ErrOverflow is returned when reserve or amount arithmetic exceeds the
	// 64-bit range. Never clamped.
	ErrOverflow = errors.New("curve: arithmetic overflow")

	// ErrInsufficientLiquidity is returned when the computed output exceeds
	// the withdrawable (real) reserve on the output side.
	ErrInsufficientLiquidity = errors.New("curve: insufficient real reserve for output")
)
