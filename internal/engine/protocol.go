// =============================
// File: internal/engine/protocol.go
// =============================
package engine

import (
	"context"
	"errors"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/solcurve/launchpad/internal/ledger"
	"github.com/solcurve/launchpad/internal/state"
)

// ProtocolInfo describes the initialized protocol configuration.
type ProtocolInfo struct {
	Address     solana.PublicKey
	Authority   solana.PublicKey
	FeeVault    solana.PublicKey
	FeeLamports uint64
}

// InitializeProtocol creates the singleton protocol state and its fee vault.
// The mint fee is fixed at MintFeeLamports and immutable afterwards; a second
// call fails with ErrProtocolAlreadyInitialized.
func (e *Engine) InitializeProtocol(ctx context.Context, authority solana.PublicKey) (*ProtocolInfo, error) {
	stateAddr, bump, err := e.addr.ProtocolState()
	if err != nil {
		return nil, err
	}
	feeVault, _, err := e.addr.FeeVault()
	if err != nil {
		return nil, err
	}

	ps := state.ProtocolState{
		Authority:   authority,
		FeeLamports: MintFeeLamports,
		FeeVault:    feeVault,
		Bump:        bump,
	}

	err = e.led.Update(ctx, func(tx ledger.Tx) error {
		exists, err := accountExists(tx, stateAddr)
		if err != nil {
			return err
		}
		if exists {
			return ErrProtocolAlreadyInitialized
		}
		if err := e.storeRecord(tx, stateAddr, &ps); err != nil {
			return err
		}
		// Fee vault starts empty; issuance fees accumulate here.
		return e.creditLamports(tx, feeVault, 0)
	})
	if err != nil {
		return nil, err
	}

	e.log.Info("protocol initialized",
		zap.String("authority", authority.String()),
		zap.String("fee_vault", feeVault.String()),
		zap.Uint64("fee_lamports", MintFeeLamports))
	e.sink.Emit(newEvent(EventProtocolInitialized, ProtocolInitializedData{
		Authority: authority,
		FeeVault:  feeVault,
		Fee:       MintFeeLamports,
	}))

	return &ProtocolInfo{
		Address:     stateAddr,
		Authority:   authority,
		FeeVault:    feeVault,
		FeeLamports: MintFeeLamports,
	}, nil
}

// GetProtocolState returns the protocol configuration, or
// ErrProtocolNotInitialized before InitializeProtocol has run.
func (e *Engine) GetProtocolState(ctx context.Context) (*ProtocolInfo, error) {
	stateAddr, _, err := e.addr.ProtocolState()
	if err != nil {
		return nil, err
	}

	var ps state.ProtocolState
	err = e.led.View(ctx, func(tx ledger.Tx) error {
		return e.loadRecord(tx, stateAddr, &ps)
	})
	if errors.Is(err, ledger.ErrNotFound) {
		return nil, ErrProtocolNotInitialized
	}
	if err != nil {
		return nil, err
	}

	return &ProtocolInfo{
		Address:     stateAddr,
		Authority:   ps.Authority,
		FeeVault:    ps.FeeVault,
		FeeLamports: ps.FeeLamports,
	}, nil
}

// protocolState loads the protocol record inside a transaction, mapping a
// missing record to ErrProtocolNotInitialized.
func (e *Engine) protocolState(tx ledger.Tx) (state.ProtocolState, error) {
	stateAddr, _, err := e.addr.ProtocolState()
	if err != nil {
		return state.ProtocolState{}, err
	}
	var ps state.ProtocolState
	if err := e.loadRecord(tx, stateAddr, &ps); err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			return state.ProtocolState{}, ErrProtocolNotInitialized
		}
		return state.ProtocolState{}, err
	}
	return ps, nil
}
