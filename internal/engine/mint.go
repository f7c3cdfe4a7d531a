// =============================
// File: internal/engine/mint.go
// =============================
package engine

import (
	"context"
	"errors"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/solcurve/launchpad/internal/addressing"
	"github.com/solcurve/launchpad/internal/ledger"
	"github.com/solcurve/launchpad/internal/state"
)

// MintResult describes a completed issuance.
type MintResult struct {
	MemeID        [32]byte
	Mint          solana.PublicKey
	StateAddress  solana.PublicKey
	Vault         solana.PublicKey
	MinterHolding solana.PublicKey
	MinterShare   uint64
	VaultShare    uint64
	FeePaid       uint64
}

// MintMemeToken issues the token for memeID. The full supply is minted in
// one step: the minter's incentive share to the minter's holding, the rest
// to the program vault. The flat mint fee moves from the minter's wallet to
// the fee vault in the same transaction. A meme id can be issued at most
// once; a second attempt fails with ErrAlreadyMinted.
func (e *Engine) MintMemeToken(ctx context.Context, minter solana.PublicKey, memeID [32]byte) (*MintResult, error) {
	stateAddr, stateBump, err := e.addr.MemeTokenState(memeID)
	if err != nil {
		return nil, err
	}
	mint, _, err := e.addr.MemeMint(memeID)
	if err != nil {
		return nil, err
	}
	vault, _, err := e.addr.Vault(mint)
	if err != nil {
		return nil, err
	}
	minterHolding, _, err := addressing.HoldingAddress(minter, mint)
	if err != nil {
		return nil, err
	}

	minterShare := MinterShare()
	vaultShare := VaultShare()

	err = e.led.Update(ctx, func(tx ledger.Tx) error {
		ps, err := e.protocolState(tx)
		if err != nil {
			return err
		}

		exists, err := accountExists(tx, stateAddr)
		if err != nil {
			return err
		}
		if exists {
			return ErrAlreadyMinted
		}

		// Fee first: the minter pays or nothing happens.
		wallet, err := tx.Account(minter)
		if errors.Is(err, ledger.ErrNotFound) {
			return &InsufficientFeeError{Required: ps.FeeLamports, Available: 0}
		}
		if err != nil {
			return err
		}
		if wallet.Lamports < ps.FeeLamports {
			return &InsufficientFeeError{Required: ps.FeeLamports, Available: wallet.Lamports}
		}
		wallet.Lamports -= ps.FeeLamports
		tx.PutAccount(wallet)
		if err := e.creditLamports(tx, ps.FeeVault, ps.FeeLamports); err != nil {
			return err
		}

		// Mint authority is the program vault so no external key can ever
		// mint again.
		if err := e.storeRecord(tx, mint, &state.TokenMint{
			MemeID:        memeID,
			MintAuthority: vault,
			Supply:        TotalSupply,
			Decimals:      TokenDecimals,
		}); err != nil {
			return err
		}
		if err := e.creditTokens(tx, minter, mint, minterShare); err != nil {
			return err
		}
		if err := e.creditTokens(tx, vault, mint, vaultShare); err != nil {
			return err
		}

		return e.storeRecord(tx, stateAddr, &state.MemeTokenState{
			MemeID:        memeID,
			Mint:          mint,
			Minter:        minter,
			CreatedAt:     e.clock().Unix(),
			IsInitialized: true,
			Bump:          stateBump,
		})
	})
	if err != nil {
		return nil, err
	}

	e.log.Info("meme token minted",
		zap.String("mint", mint.String()),
		zap.String("minter", minter.String()),
		zap.Uint64("minter_share", minterShare),
		zap.Uint64("vault_share", vaultShare))
	e.sink.Emit(newEvent(EventTokenMinted, TokenMintedData{
		MemeID:      memeID,
		Mint:        mint,
		Minter:      minter,
		MinterShare: minterShare,
		VaultShare:  vaultShare,
		FeePaid:     MintFeeLamports,
	}))

	return &MintResult{
		MemeID:        memeID,
		Mint:          mint,
		StateAddress:  stateAddr,
		Vault:         vault,
		MinterHolding: minterHolding,
		MinterShare:   minterShare,
		VaultShare:    vaultShare,
		FeePaid:       MintFeeLamports,
	}, nil
}
