// =============================
// File: internal/engine/query.go
// =============================
package engine

import (
	"context"
	"errors"
	"sort"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"

	"github.com/solcurve/launchpad/internal/ledger"
	"github.com/solcurve/launchpad/internal/state"
)

// TokenInfo describes an issued meme token.
type TokenInfo struct {
	MemeID    [32]byte
	Mint      solana.PublicKey
	Minter    solana.PublicKey
	CreatedAt int64
}

// GetMemeTokenState returns the registry entry for memeID, or
// ErrTokenNotFound if the meme was never issued.
func (e *Engine) GetMemeTokenState(ctx context.Context, memeID [32]byte) (*TokenInfo, error) {
	stateAddr, _, err := e.addr.MemeTokenState(memeID)
	if err != nil {
		return nil, err
	}

	var mts state.MemeTokenState
	err = e.led.View(ctx, func(tx ledger.Tx) error {
		return e.loadRecord(tx, stateAddr, &mts)
	})
	if errors.Is(err, ledger.ErrNotFound) {
		return nil, ErrTokenNotFound
	}
	if err != nil {
		return nil, err
	}

	return &TokenInfo{
		MemeID:    mts.MemeID,
		Mint:      mts.Mint,
		Minter:    mts.Minter,
		CreatedAt: mts.CreatedAt,
	}, nil
}

// ListMemeTokens enumerates every issued token, oldest first. Full ledger
// scan; intended for tooling, not hot paths.
func (e *Engine) ListMemeTokens(ctx context.Context) ([]TokenInfo, error) {
	var out []TokenInfo
	err := e.led.Each(ctx, func(acc *ledger.Account) error {
		if !state.Is(acc.Data, &state.MemeTokenState{}) {
			return nil
		}
		var mts state.MemeTokenState
		if err := state.Unmarshal(acc.Data, &mts); err != nil {
			return err
		}
		out = append(out, TokenInfo{
			MemeID:    mts.MemeID,
			Mint:      mts.Mint,
			Minter:    mts.Minter,
			CreatedAt: mts.CreatedAt,
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt < out[j].CreatedAt })
	return out, nil
}

// Distribution reports how an issued supply is split between the minter and
// the vault, measured against the canonical constants.
type Distribution struct {
	MinterBalance uint64
	VaultBalance  uint64
	MinterPercent decimal.Decimal
	VaultPercent  decimal.Decimal
	Correct       bool
}

// CheckDistribution recomputes the expected issuance split for mint and
// compares it to the balances actually held. Swaps move vault tokens into
// the pool escrow, so this check is meaningful only before pool
// initialization; afterwards Correct reports false by construction.
func (e *Engine) CheckDistribution(ctx context.Context, mint solana.PublicKey) (*Distribution, error) {
	var d Distribution
	err := e.led.View(ctx, func(tx ledger.Tx) error {
		mts, err := e.tokenState(tx, mint)
		if err != nil {
			return err
		}
		vault, _, err := e.addr.Vault(mint)
		if err != nil {
			return err
		}

		minterHolding, err := e.holding(tx, mts.Minter, mint)
		if err != nil {
			return err
		}
		vaultHolding, err := e.holding(tx, vault, mint)
		if err != nil {
			return err
		}
		d.MinterBalance = minterHolding.Amount
		d.VaultBalance = vaultHolding.Amount
		return nil
	})
	if err != nil {
		return nil, err
	}

	total := decimal.NewFromUint64(TotalSupply)
	d.MinterPercent = decimal.NewFromUint64(d.MinterBalance).Div(total).Mul(decimal.NewFromInt(100))
	d.VaultPercent = decimal.NewFromUint64(d.VaultBalance).Div(total).Mul(decimal.NewFromInt(100))
	d.Correct = d.MinterBalance == MinterShare() && d.VaultBalance == VaultShare()
	return &d, nil
}

// GetBalance returns the lamport balance of addr. A missing account reads
// as zero.
func (e *Engine) GetBalance(ctx context.Context, addr solana.PublicKey) (uint64, error) {
	var lamports uint64
	err := e.led.View(ctx, func(tx ledger.Tx) error {
		acc, err := tx.Account(addr)
		if errors.Is(err, ledger.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		lamports = acc.Lamports
		return nil
	})
	return lamports, err
}

// GetTokenBalance returns (owner, mint)'s token balance. A missing holding
// reads as zero.
func (e *Engine) GetTokenBalance(ctx context.Context, owner, mint solana.PublicKey) (uint64, error) {
	var amount uint64
	err := e.led.View(ctx, func(tx ledger.Tx) error {
		h, err := e.holding(tx, owner, mint)
		if err != nil {
			return err
		}
		amount = h.Amount
		return nil
	})
	return amount, err
}
