// =============================
// File: internal/curve/constants.go
// =============================
package curve

// Swap fee: 0.3% = 3/1000, floor-applied to the input amount before the
// constant-product formula. The fee stays inside the input-side real reserve.
const (
	FeeNumerator   uint64 = 3
	FeeDenominator uint64 = 1000
)
