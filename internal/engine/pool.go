// =============================
// File: internal/engine/pool.go
// =============================
package engine

import (
	"context"
	"errors"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/solcurve/launchpad/internal/curve"
	"github.com/solcurve/launchpad/internal/ledger"
	"github.com/solcurve/launchpad/internal/state"
)

// PoolInfo describes a pool's addresses and current reserves.
type PoolInfo struct {
	Address    solana.PublicKey
	TokenMint  solana.PublicKey
	BaseVault  solana.PublicKey
	TokenVault solana.PublicKey
	Reserves   curve.Reserves
}

// InitializeAmmPool creates the bonding-curve pool for mint. All seed
// amounts are protocol constants: the initializer funds the base escrow with
// PoolSeedLamports, the program vault funds the token escrow with
// PoolSeedTokens, and the virtual reserves are fixed. Callers cannot choose
// ratios. A pool can be created at most once per mint.
func (e *Engine) InitializeAmmPool(ctx context.Context, initializer, mint solana.PublicKey) (*PoolInfo, error) {
	poolAddr, poolBump, err := e.addr.AmmPool(mint)
	if err != nil {
		return nil, err
	}
	baseVault, _, err := e.addr.PoolBaseVault(mint)
	if err != nil {
		return nil, err
	}
	tokenVault, _, err := e.addr.PoolTokenVault(mint)
	if err != nil {
		return nil, err
	}
	vault, _, err := e.addr.Vault(mint)
	if err != nil {
		return nil, err
	}

	pool := state.AmmPool{
		TokenMint:           mint,
		BaseVault:           baseVault,
		TokenVault:          tokenVault,
		RealBaseReserve:     PoolSeedLamports,
		RealTokenReserve:    PoolSeedTokens,
		VirtualBaseReserve:  VirtualBaseReserve,
		VirtualTokenReserve: VirtualTokenReserve,
		Bump:                poolBump,
		IsInitialized:       true,
	}

	err = e.led.Update(ctx, func(tx ledger.Tx) error {
		if _, err := e.tokenState(tx, mint); err != nil {
			return err
		}

		exists, err := accountExists(tx, poolAddr)
		if err != nil {
			return err
		}
		if exists {
			return ErrPoolAlreadyInitialized
		}

		// Base escrow from the initializer, token escrow from the vault.
		// The vault is debited exactly once per mint; the pool existence
		// check above is what enforces that.
		if err := e.debitLamports(tx, initializer, PoolSeedLamports, "initializer"); err != nil {
			return err
		}
		if err := e.creditLamports(tx, baseVault, PoolSeedLamports); err != nil {
			return err
		}
		if err := e.debitTokens(tx, vault, mint, PoolSeedTokens, "vault"); err != nil {
			return err
		}
		if err := e.creditTokens(tx, tokenVault, mint, PoolSeedTokens); err != nil {
			return err
		}

		return e.storeRecord(tx, poolAddr, &pool)
	})
	if err != nil {
		return nil, err
	}

	e.log.Info("amm pool initialized",
		zap.String("pool", poolAddr.String()),
		zap.String("mint", mint.String()),
		zap.Uint64("real_base", PoolSeedLamports),
		zap.Uint64("real_token", PoolSeedTokens))
	e.sink.Emit(newEvent(EventPoolInitialized, PoolInitializedData{
		Pool:         poolAddr,
		Mint:         mint,
		BaseReserve:  PoolSeedLamports,
		TokenReserve: PoolSeedTokens,
	}))

	return &PoolInfo{
		Address:    poolAddr,
		TokenMint:  mint,
		BaseVault:  baseVault,
		TokenVault: tokenVault,
		Reserves:   poolReserves(pool),
	}, nil
}

// GetPoolState returns the pool's addresses and current reserves, or
// ErrPoolNotInitialized if no pool exists for mint.
func (e *Engine) GetPoolState(ctx context.Context, mint solana.PublicKey) (*PoolInfo, error) {
	poolAddr, _, err := e.addr.AmmPool(mint)
	if err != nil {
		return nil, err
	}

	var pool state.AmmPool
	err = e.led.View(ctx, func(tx ledger.Tx) error {
		return e.loadRecord(tx, poolAddr, &pool)
	})
	if errors.Is(err, ledger.ErrNotFound) {
		return nil, ErrPoolNotInitialized
	}
	if err != nil {
		return nil, err
	}

	return &PoolInfo{
		Address:    poolAddr,
		TokenMint:  pool.TokenMint,
		BaseVault:  pool.BaseVault,
		TokenVault: pool.TokenVault,
		Reserves:   poolReserves(pool),
	}, nil
}

// tokenState loads the registry record for mint, mapping a missing mint or
// registry entry to ErrTokenNotFound.
func (e *Engine) tokenState(tx ledger.Tx, mint solana.PublicKey) (state.MemeTokenState, error) {
	var tm state.TokenMint
	if err := e.loadRecord(tx, mint, &tm); err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			return state.MemeTokenState{}, ErrTokenNotFound
		}
		return state.MemeTokenState{}, err
	}

	stateAddr, _, err := e.addr.MemeTokenState(tm.MemeID)
	if err != nil {
		return state.MemeTokenState{}, err
	}
	var mts state.MemeTokenState
	if err := e.loadRecord(tx, stateAddr, &mts); err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			return state.MemeTokenState{}, ErrTokenNotFound
		}
		return state.MemeTokenState{}, err
	}
	return mts, nil
}

// loadPool loads the pool record for mint inside a transaction, mapping a
// missing record to ErrPoolNotInitialized.
func (e *Engine) loadPool(tx ledger.Tx, mint solana.PublicKey) (solana.PublicKey, state.AmmPool, error) {
	poolAddr, _, err := e.addr.AmmPool(mint)
	if err != nil {
		return solana.PublicKey{}, state.AmmPool{}, err
	}
	var pool state.AmmPool
	if err := e.loadRecord(tx, poolAddr, &pool); err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			return solana.PublicKey{}, state.AmmPool{}, ErrPoolNotInitialized
		}
		return solana.PublicKey{}, state.AmmPool{}, err
	}
	return poolAddr, pool, nil
}

func poolReserves(pool state.AmmPool) curve.Reserves {
	return curve.Reserves{
		RealBase:     pool.RealBaseReserve,
		RealToken:    pool.RealTokenReserve,
		VirtualBase:  pool.VirtualBaseReserve,
		VirtualToken: pool.VirtualTokenReserve,
	}
}
