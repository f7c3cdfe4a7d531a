// =============================
// File: internal/engine/swap.go
// =============================
package engine

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/solcurve/launchpad/internal/curve"
	"github.com/solcurve/launchpad/internal/ledger"
)

// SwapResult describes an executed trade.
type SwapResult struct {
	Pool      solana.PublicKey
	Mint      solana.PublicKey
	AmountIn  uint64
	AmountOut uint64
	Fee       uint64
	Reserves  curve.Reserves
}

// SwapBaseForToken buys tokens with baseIn base units against mint's pool.
// The whole input, fee included, enters the base escrow; tokens leave the
// token escrow. If the computed output falls below minTokenOut the trade is
// rejected with SlippageExceededError and no state changes. Pass
// minTokenOut=0 to accept any output.
func (e *Engine) SwapBaseForToken(ctx context.Context, trader, mint solana.PublicKey, baseIn, minTokenOut uint64) (*SwapResult, error) {
	var result *SwapResult
	err := e.led.Update(ctx, func(tx ledger.Tx) error {
		poolAddr, pool, err := e.loadPool(tx, mint)
		if err != nil {
			return err
		}

		next, q, err := curve.ApplyBuy(poolReserves(pool), baseIn)
		if err != nil {
			return err
		}
		if q.AmountOut < minTokenOut {
			return &SlippageExceededError{MinOut: minTokenOut, Actual: q.AmountOut}
		}

		if err := e.debitLamports(tx, trader, baseIn, "trader"); err != nil {
			return err
		}
		if err := e.creditLamports(tx, pool.BaseVault, baseIn); err != nil {
			return err
		}
		if err := e.debitTokens(tx, pool.TokenVault, mint, q.AmountOut, "pool token vault"); err != nil {
			return err
		}
		if err := e.creditTokens(tx, trader, mint, q.AmountOut); err != nil {
			return err
		}

		pool.RealBaseReserve = next.RealBase
		pool.RealTokenReserve = next.RealToken
		if err := e.storeRecord(tx, poolAddr, &pool); err != nil {
			return err
		}

		result = &SwapResult{
			Pool:      poolAddr,
			Mint:      mint,
			AmountIn:  baseIn,
			AmountOut: q.AmountOut,
			Fee:       q.Fee,
			Reserves:  next,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.logSwap("buy", trader, result)
	e.sink.Emit(newEvent(EventSwapExecuted, SwapExecutedData{
		Pool:      result.Pool,
		Trader:    trader,
		BaseToken: true,
		AmountIn:  result.AmountIn,
		AmountOut: result.AmountOut,
		Fee:       result.Fee,
	}))
	return result, nil
}

// SwapTokenForBase sells tokenIn tokens for base units against mint's pool.
// The whole input enters the token escrow; base units leave the base escrow.
// Pass minBaseOut=0 to accept any output.
func (e *Engine) SwapTokenForBase(ctx context.Context, trader, mint solana.PublicKey, tokenIn, minBaseOut uint64) (*SwapResult, error) {
	var result *SwapResult
	err := e.led.Update(ctx, func(tx ledger.Tx) error {
		poolAddr, pool, err := e.loadPool(tx, mint)
		if err != nil {
			return err
		}

		next, q, err := curve.ApplySell(poolReserves(pool), tokenIn)
		if err != nil {
			return err
		}
		if q.AmountOut < minBaseOut {
			return &SlippageExceededError{MinOut: minBaseOut, Actual: q.AmountOut}
		}

		if err := e.debitTokens(tx, trader, mint, tokenIn, "trader"); err != nil {
			return err
		}
		if err := e.creditTokens(tx, pool.TokenVault, mint, tokenIn); err != nil {
			return err
		}
		if err := e.debitLamports(tx, pool.BaseVault, q.AmountOut, "pool base vault"); err != nil {
			return err
		}
		if err := e.creditLamports(tx, trader, q.AmountOut); err != nil {
			return err
		}

		pool.RealBaseReserve = next.RealBase
		pool.RealTokenReserve = next.RealToken
		if err := e.storeRecord(tx, poolAddr, &pool); err != nil {
			return err
		}

		result = &SwapResult{
			Pool:      poolAddr,
			Mint:      mint,
			AmountIn:  tokenIn,
			AmountOut: q.AmountOut,
			Fee:       q.Fee,
			Reserves:  next,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.logSwap("sell", trader, result)
	e.sink.Emit(newEvent(EventSwapExecuted, SwapExecutedData{
		Pool:      result.Pool,
		Trader:    trader,
		BaseToken: false,
		AmountIn:  result.AmountIn,
		AmountOut: result.AmountOut,
		Fee:       result.Fee,
	}))
	return result, nil
}

// QuoteBuy prices a buy of baseIn without touching state. The returned
// quote uses the same arithmetic as settlement, so a quote followed by an
// immediate swap against unchanged reserves yields exactly the quoted
// output.
func (e *Engine) QuoteBuy(ctx context.Context, mint solana.PublicKey, baseIn uint64) (curve.Quote, error) {
	var q curve.Quote
	err := e.led.View(ctx, func(tx ledger.Tx) error {
		_, pool, err := e.loadPool(tx, mint)
		if err != nil {
			return err
		}
		q, err = curve.BuyQuote(poolReserves(pool), baseIn)
		return err
	})
	return q, err
}

// QuoteSell prices a sell of tokenIn without touching state.
func (e *Engine) QuoteSell(ctx context.Context, mint solana.PublicKey, tokenIn uint64) (curve.Quote, error) {
	var q curve.Quote
	err := e.led.View(ctx, func(tx ledger.Tx) error {
		_, pool, err := e.loadPool(tx, mint)
		if err != nil {
			return err
		}
		q, err = curve.SellQuote(poolReserves(pool), tokenIn)
		return err
	})
	return q, err
}

func (e *Engine) logSwap(side string, trader solana.PublicKey, r *SwapResult) {
	e.log.Info("swap executed",
		zap.String("side", side),
		zap.String("pool", r.Pool.String()),
		zap.String("trader", trader.String()),
		zap.Uint64("amount_in", r.AmountIn),
		zap.Uint64("amount_out", r.AmountOut),
		zap.Uint64("fee", r.Fee))
}
