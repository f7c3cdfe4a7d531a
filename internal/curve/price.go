// =============================
// File: internal/curve/price.go
// =============================
package curve

import "github.com/shopspring/decimal"

// SpotPrice returns the current effective price, base units per token unit.
// Advisory only: display and min-out selection, never settlement.
func SpotPrice(r Reserves) (decimal.Decimal, error) {
	effBase, err := r.EffectiveBase()
	if err != nil {
		return decimal.Decimal{}, err
	}
	effToken, err := r.EffectiveToken()
	if err != nil {
		return decimal.Decimal{}, err
	}
	if effToken == 0 {
		return decimal.Decimal{}, ErrZeroReserve
	}
	return decimal.NewFromUint64(effBase).Div(decimal.NewFromUint64(effToken)), nil
}

// PriceImpact reports the relative change of the effective price across a
// hypothetical trade, in percent. Positive values mean the price moved
// against subsequent buyers. It informs a caller-chosen min-out and must
// never gate settlement.
func PriceImpact(before, after Reserves) (decimal.Decimal, error) {
	pBefore, err := SpotPrice(before)
	if err != nil {
		return decimal.Decimal{}, err
	}
	pAfter, err := SpotPrice(after)
	if err != nil {
		return decimal.Decimal{}, err
	}
	if pBefore.IsZero() {
		return decimal.Decimal{}, ErrZeroReserve
	}
	hundred := decimal.NewFromInt(100)
	return pAfter.Sub(pBefore).Div(pBefore).Mul(hundred), nil
}
