// =============================
// File: internal/ledger/pebbledb/pebbledb.go
// =============================

// Package pebbledb persists the ledger in PebbleDB. Accounts are stored at
// their 32-byte address under a versioned envelope; commits are serialized
// by a single writer lock and validated against the versions the transaction
// observed, so the optimistic-concurrency contract matches the memory
// backend exactly.
package pebbledb

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/cockroachdb/pebble"
	"github.com/gagliardetto/solana-go"

	"github.com/solcurve/launchpad/internal/ledger"
)

// envelope: version u64 | owner 32 | lamports u64 | data
const envelopeHeaderLen = 8 + 32 + 8

// Store is a pebble-backed ledger.
type Store struct {
	db       *pebble.DB
	commitMu sync.Mutex
	closed   bool
	mu       sync.RWMutex
}

// Open opens (or creates) a ledger database at path.
func Open(path string) (*Store, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("open pebble at %s: %w", path, err)
	}
	return &Store{db: db}, nil
}

func encodeEnvelope(acc *ledger.Account) []byte {
	out := make([]byte, envelopeHeaderLen+len(acc.Data))
	binary.LittleEndian.PutUint64(out[0:8], acc.Version)
	copy(out[8:40], acc.Owner.Bytes())
	binary.LittleEndian.PutUint64(out[40:48], acc.Lamports)
	copy(out[envelopeHeaderLen:], acc.Data)
	return out
}

func decodeEnvelope(addr solana.PublicKey, raw []byte) (*ledger.Account, error) {
	if len(raw) < envelopeHeaderLen {
		return nil, fmt.Errorf("pebbledb: short envelope for %s: %d bytes", addr, len(raw))
	}
	acc := &ledger.Account{
		Address:  addr,
		Owner:    solana.PublicKeyFromBytes(raw[8:40]),
		Lamports: binary.LittleEndian.Uint64(raw[40:48]),
		Version:  binary.LittleEndian.Uint64(raw[0:8]),
	}
	if n := len(raw) - envelopeHeaderLen; n > 0 {
		acc.Data = make([]byte, n)
		copy(acc.Data, raw[envelopeHeaderLen:])
	}
	return acc, nil
}

func (s *Store) get(addr solana.PublicKey) (*ledger.Account, error) {
	raw, closer, err := s.db.Get(addr.Bytes())
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, ledger.ErrNotFound
		}
		return nil, fmt.Errorf("pebbledb get %s: %w", addr, err)
	}
	defer closer.Close()
	return decodeEnvelope(addr, raw)
}

type pebbleTx struct {
	s        *Store
	base     map[solana.PublicKey]uint64
	writes   map[solana.PublicKey]*ledger.Account
	readOnly bool
	violated bool
	err      error
}

func (tx *pebbleTx) Account(addr solana.PublicKey) (*ledger.Account, error) {
	if acc, ok := tx.writes[addr]; ok {
		return acc.Clone(), nil
	}

	acc, err := tx.s.get(addr)
	if err != nil && !errors.Is(err, ledger.ErrNotFound) {
		tx.err = err
		return nil, err
	}

	if _, touched := tx.base[addr]; !touched {
		if acc != nil {
			tx.base[addr] = acc.Version
		} else {
			tx.base[addr] = 0
		}
	}
	if acc == nil {
		return nil, ledger.ErrNotFound
	}
	return acc, nil
}

func (tx *pebbleTx) PutAccount(acc *ledger.Account) {
	if tx.readOnly {
		tx.violated = true
		return
	}
	if _, touched := tx.base[acc.Address]; !touched {
		cur, err := tx.s.get(acc.Address)
		switch {
		case err == nil:
			tx.base[acc.Address] = cur.Version
		case errors.Is(err, ledger.ErrNotFound):
			tx.base[acc.Address] = 0
		default:
			tx.err = err
			return
		}
	}
	tx.writes[acc.Address] = acc.Clone()
}

// View implements ledger.Ledger.
func (s *Store) View(ctx context.Context, fn func(ledger.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.isClosed() {
		return ledger.ErrClosed
	}

	tx := &pebbleTx{
		s:        s,
		base:     make(map[solana.PublicKey]uint64),
		writes:   make(map[solana.PublicKey]*ledger.Account),
		readOnly: true,
	}
	if err := fn(tx); err != nil {
		return err
	}
	if tx.err != nil {
		return tx.err
	}
	if tx.violated {
		return ledger.ErrReadOnly
	}
	return nil
}

// Update implements ledger.Ledger.
func (s *Store) Update(ctx context.Context, fn func(ledger.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.isClosed() {
		return ledger.ErrClosed
	}

	tx := &pebbleTx{
		s:      s,
		base:   make(map[solana.PublicKey]uint64),
		writes: make(map[solana.PublicKey]*ledger.Account),
	}
	if err := fn(tx); err != nil {
		return err
	}
	if tx.err != nil {
		return tx.err
	}
	if len(tx.writes) == 0 {
		return nil
	}

	s.commitMu.Lock()
	defer s.commitMu.Unlock()
	if s.isClosed() {
		return ledger.ErrClosed
	}

	for addr, base := range tx.base {
		cur, err := s.get(addr)
		switch {
		case err == nil:
			if cur.Version != base {
				return ledger.ErrConflict
			}
		case errors.Is(err, ledger.ErrNotFound):
			if base != 0 {
				return ledger.ErrConflict
			}
		default:
			return err
		}
	}

	batch := s.db.NewBatch()
	defer batch.Close()
	for addr, acc := range tx.writes {
		next := acc.Clone()
		next.Version = tx.base[addr] + 1
		if err := batch.Set(addr.Bytes(), encodeEnvelope(next), nil); err != nil {
			return fmt.Errorf("pebbledb batch set %s: %w", addr, err)
		}
	}
	if err := batch.Commit(pebble.Sync); err != nil {
		return fmt.Errorf("pebbledb commit: %w", err)
	}
	return nil
}

// Each implements ledger.Ledger.
func (s *Store) Each(ctx context.Context, fn func(*ledger.Account) error) error {
	if s.isClosed() {
		return ledger.ErrClosed
	}

	iter, err := s.db.NewIter(nil)
	if err != nil {
		return fmt.Errorf("pebbledb iterator: %w", err)
	}
	defer iter.Close()

	for iter.First(); iter.Valid(); iter.Next() {
		if err := ctx.Err(); err != nil {
			return err
		}
		key := iter.Key()
		if len(key) != solana.PublicKeyLength {
			continue
		}
		acc, err := decodeEnvelope(solana.PublicKeyFromBytes(key), iter.Value())
		if err != nil {
			return err
		}
		if err := fn(acc); err != nil {
			return err
		}
	}
	return iter.Error()
}

func (s *Store) isClosed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

// Close implements ledger.Ledger.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}
