package curve

import (
	"math"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Canonical launch reserves: 0.02 native units + 800M tokens real,
// 30 native units + 1.073B tokens virtual.
func seedReserves() Reserves {
	return Reserves{
		RealBase:     20_000_000,
		RealToken:    800_000_000_000_000_000,
		VirtualBase:  30_000_000_000,
		VirtualToken: 1_073_000_000_000_000_000,
	}
}

// expectedOut recomputes floor(afterFee * outReserve / (inReserve + afterFee))
// independently of the implementation.
func expectedOut(t *testing.T, amountIn, inReserve, outReserve uint64) (out, fee uint64) {
	t.Helper()
	feeBig := new(big.Int).Mul(new(big.Int).SetUint64(amountIn), big.NewInt(int64(FeeNumerator)))
	feeBig.Quo(feeBig, big.NewInt(int64(FeeDenominator)))
	require.True(t, feeBig.IsUint64())
	fee = feeBig.Uint64()

	afterFee := new(big.Int).SetUint64(amountIn - fee)
	num := new(big.Int).Mul(afterFee, new(big.Int).SetUint64(outReserve))
	den := new(big.Int).Add(new(big.Int).SetUint64(inReserve), afterFee)
	num.Quo(num, den)
	require.True(t, num.IsUint64())
	return num.Uint64(), fee
}

func TestBuySeedScenario(t *testing.T) {
	r := seedReserves()
	baseIn := uint64(10_000_000)

	effBase, err := r.EffectiveBase()
	require.NoError(t, err)
	effToken, err := r.EffectiveToken()
	require.NoError(t, err)
	wantOut, wantFee := expectedOut(t, baseIn, effBase, effToken)

	after, q, err := ApplyBuy(r, baseIn)
	require.NoError(t, err)

	assert.Equal(t, uint64(30_000), q.Fee, "0.3%% of 10,000,000")
	assert.Equal(t, wantFee, q.Fee)
	assert.Equal(t, wantOut, q.AmountOut)

	// The full input, fee included, strengthens the real base reserve.
	assert.Equal(t, uint64(30_000_000), after.RealBase)
	assert.Equal(t, r.RealToken-q.AmountOut, after.RealToken)

	// Virtual reserves never move.
	assert.Equal(t, r.VirtualBase, after.VirtualBase)
	assert.Equal(t, r.VirtualToken, after.VirtualToken)

	t.Logf("base_in=%d fee=%d tokens_out=%d", baseIn, q.Fee, q.AmountOut)
}

func TestSellMatchesFormula(t *testing.T) {
	r := seedReserves()
	tokenIn := uint64(500_000_000_000_000)

	effBase, err := r.EffectiveBase()
	require.NoError(t, err)
	effToken, err := r.EffectiveToken()
	require.NoError(t, err)
	wantOut, wantFee := expectedOut(t, tokenIn, effToken, effBase)

	after, q, err := ApplySell(r, tokenIn)
	require.NoError(t, err)
	assert.Equal(t, wantFee, q.Fee)
	assert.Equal(t, wantOut, q.AmountOut)
	assert.Equal(t, r.RealToken+tokenIn, after.RealToken)
	assert.Equal(t, r.RealBase-q.AmountOut, after.RealBase)
	assert.Equal(t, r.VirtualBase, after.VirtualBase)
	assert.Equal(t, r.VirtualToken, after.VirtualToken)
}

func TestQuoteMatchesSettlement(t *testing.T) {
	r := seedReserves()

	for _, amount := range []uint64{1_000, 777_777, 10_000_000, 5_000_000_000} {
		quote, err := BuyQuote(r, amount)
		require.NoError(t, err)
		_, settled, err := ApplyBuy(r, amount)
		require.NoError(t, err)
		assert.Equal(t, quote, settled, "buy quote/settle divergence for %d", amount)
	}

	for _, amount := range []uint64{1_000_000, 42_000_000_000, 900_000_000_000_000} {
		quote, err := SellQuote(r, amount)
		require.NoError(t, err)
		_, settled, err := ApplySell(r, amount)
		require.NoError(t, err)
		assert.Equal(t, quote, settled, "sell quote/settle divergence for %d", amount)
	}
}

func TestBuyPriceMonotonic(t *testing.T) {
	r := seedReserves()
	prev, err := SpotPrice(r)
	require.NoError(t, err)

	for i := 0; i < 50; i++ {
		var q Quote
		r, q, err = ApplyBuy(r, 50_000_000)
		require.NoError(t, err)
		require.NotZero(t, q.AmountOut)

		price, err := SpotPrice(r)
		require.NoError(t, err)
		assert.True(t, price.GreaterThanOrEqual(prev),
			"price decreased after buy %d: %s -> %s", i, prev, price)
		prev = price
	}
}

func TestSellPriceMonotonic(t *testing.T) {
	r := seedReserves()
	// Trade some base in first so sells have real base to pay out.
	r, _, err := ApplyBuy(r, 2_000_000_000)
	require.NoError(t, err)

	prev, err := SpotPrice(r)
	require.NoError(t, err)

	for i := 0; i < 50; i++ {
		var q Quote
		r, q, err = ApplySell(r, 100_000_000_000_000)
		require.NoError(t, err)
		require.NotZero(t, q.AmountOut)

		price, err := SpotPrice(r)
		require.NoError(t, err)
		assert.True(t, price.LessThanOrEqual(prev),
			"price increased after sell %d: %s -> %s", i, prev, price)
		prev = price
	}
}

func TestRoundTripNeverProfits(t *testing.T) {
	for _, baseIn := range []uint64{100_000, 10_000_000, 1_000_000_000, 20_000_000_000} {
		r := seedReserves()
		mid, buy, err := ApplyBuy(r, baseIn)
		require.NoError(t, err)

		_, sell, err := ApplySell(mid, buy.AmountOut)
		require.NoError(t, err)

		assert.LessOrEqual(t, sell.AmountOut, baseIn,
			"round trip profited: in=%d out=%d", baseIn, sell.AmountOut)
	}
}

func TestZeroAmountRejected(t *testing.T) {
	_, err := BuyQuote(seedReserves(), 0)
	assert.ErrorIs(t, err, ErrZeroAmount)
	_, err = SellQuote(seedReserves(), 0)
	assert.ErrorIs(t, err, ErrZeroAmount)
}

func TestZeroReserveRejected(t *testing.T) {
	_, err := BuyQuote(Reserves{}, 1_000)
	assert.ErrorIs(t, err, ErrZeroReserve)
}

func TestEffectiveReserveOverflow(t *testing.T) {
	r := seedReserves()
	r.VirtualBase = math.MaxUint64
	r.RealBase = 1
	_, err := BuyQuote(r, 1_000)
	assert.ErrorIs(t, err, ErrOverflow)
}

func TestDenominatorOverflow(t *testing.T) {
	r := Reserves{VirtualBase: math.MaxUint64 - 10, RealBase: 0, VirtualToken: 1_000_000, RealToken: 1_000}
	_, err := BuyQuote(r, 100)
	assert.ErrorIs(t, err, ErrOverflow)
}

func TestInsufficientLiquidityLeavesReservesUntouched(t *testing.T) {
	r := Reserves{
		RealBase:     20_000_000,
		RealToken:    1_000, // nearly drained
		VirtualBase:  30_000_000_000,
		VirtualToken: 1_073_000_000_000_000_000,
	}
	after, _, err := ApplyBuy(r, 50_000_000_000)
	assert.ErrorIs(t, err, ErrInsufficientLiquidity)
	assert.Equal(t, r, after)
}

func TestPriceImpactAdvisory(t *testing.T) {
	r := seedReserves()
	after, _, err := ApplyBuy(r, 5_000_000_000)
	require.NoError(t, err)

	impact, err := PriceImpact(r, after)
	require.NoError(t, err)
	assert.True(t, impact.IsPositive(), "buy must push the price up, got %s", impact)

	afterSell, _, err := ApplySell(after, 100_000_000_000_000_000)
	require.NoError(t, err)
	impact, err = PriceImpact(after, afterSell)
	require.NoError(t, err)
	assert.True(t, impact.IsNegative(), "sell must push the price down, got %s", impact)
}

func TestFeeFloorsToZeroOnDust(t *testing.T) {
	// 333 * 3 / 1000 floors to 0: dust trades pay no fee by construction.
	q, err := BuyQuote(seedReserves(), 333)
	require.NoError(t, err)
	assert.Zero(t, q.Fee)
}
