// =============================
// File: internal/curve/curve.go
// =============================

// Package curve implements the constant-product settlement math for
// bonding-curve pools. Prices are computed against effective reserves
// (virtual + real): the virtual component shapes the early part of the curve
// and is never withdrawable, the real component tracks escrowed balances.
//
// The same functions serve the advisory quoting path and the authoritative
// settlement path. All amounts are integer base units; 128-bit intermediates
// are used so quoting and settlement can never diverge by rounding.
package curve

import (
	"math/big"
	"math/bits"
)

// Reserves is the full reserve state of one pool.
type Reserves struct {
	RealBase     uint64
	RealToken    uint64
	VirtualBase  uint64
	VirtualToken uint64
}

// EffectiveBase returns virtual + real base reserve with overflow detection.
func (r Reserves) EffectiveBase() (uint64, error) {
	return checkedAdd(r.VirtualBase, r.RealBase)
}

// EffectiveToken returns virtual + real token reserve with overflow detection.
func (r Reserves) EffectiveToken() (uint64, error) {
	return checkedAdd(r.VirtualToken, r.RealToken)
}

// Quote is the outcome of pricing a single swap.
type Quote struct {
	// AmountOut is the amount credited to the user.
	AmountOut uint64
	// Fee is the part of the input retained inside the input-side reserve.
	Fee uint64
}

// BuyQuote prices spending baseIn base units for tokens.
func BuyQuote(r Reserves, baseIn uint64) (Quote, error) {
	effBase, err := r.EffectiveBase()
	if err != nil {
		return Quote{}, err
	}
	effToken, err := r.EffectiveToken()
	if err != nil {
		return Quote{}, err
	}
	return swapOut(baseIn, effBase, effToken)
}

// SellQuote prices spending tokenIn token units for base currency.
func SellQuote(r Reserves, tokenIn uint64) (Quote, error) {
	effBase, err := r.EffectiveBase()
	if err != nil {
		return Quote{}, err
	}
	effToken, err := r.EffectiveToken()
	if err != nil {
		return Quote{}, err
	}
	return swapOut(tokenIn, effToken, effBase)
}

// ApplyBuy settles a buy: it prices the trade exactly like BuyQuote and
// returns the updated reserves. The full baseIn (fee included) enters the
// real base reserve; virtual reserves never change.
func ApplyBuy(r Reserves, baseIn uint64) (Reserves, Quote, error) {
	q, err := BuyQuote(r, baseIn)
	if err != nil {
		return r, Quote{}, err
	}
	if q.AmountOut >= r.RealToken {
		return r, Quote{}, ErrInsufficientLiquidity
	}
	newBase, err := checkedAdd(r.RealBase, baseIn)
	if err != nil {
		return r, Quote{}, err
	}
	out := r
	out.RealBase = newBase
	out.RealToken = r.RealToken - q.AmountOut
	return out, q, nil
}

// ApplySell settles a sell symmetrically to ApplyBuy.
func ApplySell(r Reserves, tokenIn uint64) (Reserves, Quote, error) {
	q, err := SellQuote(r, tokenIn)
	if err != nil {
		return r, Quote{}, err
	}
	if q.AmountOut >= r.RealBase {
		return r, Quote{}, ErrInsufficientLiquidity
	}
	newToken, err := checkedAdd(r.RealToken, tokenIn)
	if err != nil {
		return r, Quote{}, err
	}
	out := r
	out.RealToken = newToken
	out.RealBase = r.RealBase - q.AmountOut
	return out, q, nil
}

// swapOut applies the fee to amountIn and runs the constant-product formula:
// out = floor(afterFee * outReserve / (inReserve + afterFee)).
func swapOut(amountIn, inReserve, outReserve uint64) (Quote, error) {
	if amountIn == 0 {
		return Quote{}, ErrZeroAmount
	}
	if inReserve == 0 || outReserve == 0 {
		return Quote{}, ErrZeroReserve
	}

	fee, err := mulDiv(amountIn, FeeNumerator, FeeDenominator)
	if err != nil {
		return Quote{}, err
	}
	afterFee := amountIn - fee

	denom, err := checkedAdd(inReserve, afterFee)
	if err != nil {
		return Quote{}, err
	}
	out, err := mulDiv(afterFee, outReserve, denom)
	if err != nil {
		return Quote{}, err
	}
	return Quote{AmountOut: out, Fee: fee}, nil
}

// mulDiv computes floor(a*b/den) with a 128-bit intermediate, failing when
// the result does not fit in 64 bits.
func mulDiv(a, b, den uint64) (uint64, error) {
	if den == 0 {
		return 0, ErrZeroReserve
	}
	res := new(big.Int).Mul(new(big.Int).SetUint64(a), new(big.Int).SetUint64(b))
	res.Quo(res, new(big.Int).SetUint64(den))
	if !res.IsUint64() {
		return 0, ErrOverflow
	}
	return res.Uint64(), nil
}

func checkedAdd(a, b uint64) (uint64, error) {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 {
		return 0, ErrOverflow
	}
	return sum, nil
}
