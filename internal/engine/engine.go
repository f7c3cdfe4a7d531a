// =============================
// File: internal/engine/engine.go
// =============================

// Package engine implements the launchpad's core operations: one-shot token
// issuance gated by a flat fee, fixed-constant pool seeding, and
// constant-product swaps. Every mutating operation is a single ledger
// transaction; the engine performs no retries and no I/O of its own.
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/solcurve/launchpad/internal/addressing"
	"github.com/solcurve/launchpad/internal/ledger"
	"github.com/solcurve/launchpad/internal/state"
)

// Engine executes protocol operations against a ledger.
type Engine struct {
	led   ledger.Ledger
	addr  *addressing.Deriver
	log   *zap.Logger
	sink  Sink
	clock func() time.Time
}

// Option configures optional Engine collaborators.
type Option func(*Engine)

// WithSink routes post-commit events to s.
func WithSink(s Sink) Option {
	return func(e *Engine) { e.sink = s }
}

// WithClock overrides the issuance timestamp source. Used by tests.
func WithClock(clock func() time.Time) Option {
	return func(e *Engine) { e.clock = clock }
}

// New creates an engine bound to a ledger and a program identity. The
// program identity namespaces all derived addresses.
func New(led ledger.Ledger, programID solana.PublicKey, log *zap.Logger, opts ...Option) *Engine {
	e := &Engine{
		led:   led,
		addr:  addressing.NewDeriver(programID),
		log:   log,
		sink:  NopSink{},
		clock: time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Deriver exposes the engine's address derivation for callers that need to
// compute addresses without executing an operation.
func (e *Engine) Deriver() *addressing.Deriver { return e.addr }

// loadRecord reads and decodes a record stored at addr.
func (e *Engine) loadRecord(tx ledger.Tx, addr solana.PublicKey, rec state.Record) error {
	acc, err := tx.Account(addr)
	if err != nil {
		return err
	}
	if err := state.Unmarshal(acc.Data, rec); err != nil {
		return fmt.Errorf("record at %s: %w", addr, err)
	}
	return nil
}

// storeRecord encodes rec and writes it at addr, owned by the program.
func (e *Engine) storeRecord(tx ledger.Tx, addr solana.PublicKey, rec state.Record) error {
	data, err := state.Marshal(rec)
	if err != nil {
		return err
	}
	acc, err := tx.Account(addr)
	if errors.Is(err, ledger.ErrNotFound) {
		acc = &ledger.Account{Address: addr, Owner: e.addr.ProgramID()}
	} else if err != nil {
		return err
	}
	acc.Data = data
	tx.PutAccount(acc)
	return nil
}

// accountExists reports whether any account lives at addr.
func accountExists(tx ledger.Tx, addr solana.PublicKey) (bool, error) {
	_, err := tx.Account(addr)
	if errors.Is(err, ledger.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// creditLamports adds amount to the account at addr, creating it if needed.
func (e *Engine) creditLamports(tx ledger.Tx, addr solana.PublicKey, amount uint64) error {
	acc, err := tx.Account(addr)
	if errors.Is(err, ledger.ErrNotFound) {
		acc = &ledger.Account{Address: addr, Owner: e.addr.ProgramID()}
	} else if err != nil {
		return err
	}
	acc.Lamports += amount
	tx.PutAccount(acc)
	return nil
}

// debitLamports removes amount from the account at addr. A missing account
// is treated as a zero balance.
func (e *Engine) debitLamports(tx ledger.Tx, addr solana.PublicKey, amount uint64, label string) error {
	acc, err := tx.Account(addr)
	if errors.Is(err, ledger.ErrNotFound) {
		return &InsufficientFundsError{Account: label, Required: amount, Balance: 0}
	}
	if err != nil {
		return err
	}
	if acc.Lamports < amount {
		return &InsufficientFundsError{Account: label, Required: amount, Balance: acc.Lamports}
	}
	acc.Lamports -= amount
	tx.PutAccount(acc)
	return nil
}

// holding reads the token holding for (owner, mint). A missing account is a
// zero balance.
func (e *Engine) holding(tx ledger.Tx, owner, mint solana.PublicKey) (state.TokenHolding, error) {
	addr, _, err := addressing.HoldingAddress(owner, mint)
	if err != nil {
		return state.TokenHolding{}, err
	}
	var h state.TokenHolding
	if err := e.loadRecord(tx, addr, &h); err != nil {
		if errors.Is(err, ledger.ErrNotFound) {
			return state.TokenHolding{Mint: mint, Owner: owner}, nil
		}
		return state.TokenHolding{}, err
	}
	return h, nil
}

func (e *Engine) putHolding(tx ledger.Tx, h state.TokenHolding) error {
	addr, _, err := addressing.HoldingAddress(h.Owner, h.Mint)
	if err != nil {
		return err
	}
	return e.storeRecord(tx, addr, &h)
}

// creditTokens adds amount to (owner, mint)'s holding.
func (e *Engine) creditTokens(tx ledger.Tx, owner, mint solana.PublicKey, amount uint64) error {
	h, err := e.holding(tx, owner, mint)
	if err != nil {
		return err
	}
	h.Amount += amount
	return e.putHolding(tx, h)
}

// debitTokens removes amount from (owner, mint)'s holding.
func (e *Engine) debitTokens(tx ledger.Tx, owner, mint solana.PublicKey, amount uint64, label string) error {
	h, err := e.holding(tx, owner, mint)
	if err != nil {
		return err
	}
	if h.Amount < amount {
		return &InsufficientFundsError{Account: label, Required: amount, Balance: h.Amount}
	}
	h.Amount -= amount
	return e.putHolding(tx, h)
}

// Airdrop credits lamports to an arbitrary account. Development and test
// helper; real deployments fund wallets externally.
func (e *Engine) Airdrop(ctx context.Context, addr solana.PublicKey, lamports uint64) error {
	return e.led.Update(ctx, func(tx ledger.Tx) error {
		return e.creditLamports(tx, addr, lamports)
	})
}
