// =============================
// File: internal/ledger/memory.go
// =============================
package ledger

import (
	"context"
	"sync"

	"github.com/gagliardetto/solana-go"
)

// Memory is the in-process ledger backend. Suited for tests and single-node
// development; the pebbledb backend covers persistence.
type Memory struct {
	mu       sync.RWMutex
	accounts map[solana.PublicKey]*Account
	closed   bool
}

// NewMemory creates an empty in-memory ledger.
func NewMemory() *Memory {
	return &Memory{accounts: make(map[solana.PublicKey]*Account)}
}

// memTx buffers reads and writes for one Update attempt. base records the
// version of every touched address as first observed (0 = absent), which the
// commit re-validates.
type memTx struct {
	l        *Memory
	base     map[solana.PublicKey]uint64
	writes   map[solana.PublicKey]*Account
	readOnly bool
	violated bool
}

func (tx *memTx) Account(addr solana.PublicKey) (*Account, error) {
	if acc, ok := tx.writes[addr]; ok {
		return acc.Clone(), nil
	}

	tx.l.mu.RLock()
	acc, ok := tx.l.accounts[addr]
	tx.l.mu.RUnlock()

	if _, touched := tx.base[addr]; !touched {
		if ok {
			tx.base[addr] = acc.Version
		} else {
			tx.base[addr] = 0
		}
	}
	if !ok {
		return nil, ErrNotFound
	}
	return acc.Clone(), nil
}

func (tx *memTx) PutAccount(acc *Account) {
	if tx.readOnly {
		tx.violated = true
		return
	}
	if _, touched := tx.base[acc.Address]; !touched {
		tx.l.mu.RLock()
		cur, ok := tx.l.accounts[acc.Address]
		tx.l.mu.RUnlock()
		if ok {
			tx.base[acc.Address] = cur.Version
		} else {
			tx.base[acc.Address] = 0
		}
	}
	tx.writes[acc.Address] = acc.Clone()
}

// View implements Ledger.
func (m *Memory) View(ctx context.Context, fn func(Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.RLock()
	closed := m.closed
	m.mu.RUnlock()
	if closed {
		return ErrClosed
	}

	tx := &memTx{
		l:        m,
		base:     make(map[solana.PublicKey]uint64),
		writes:   make(map[solana.PublicKey]*Account),
		readOnly: true,
	}
	if err := fn(tx); err != nil {
		return err
	}
	if tx.violated {
		return ErrReadOnly
	}
	return nil
}

// Update implements Ledger.
func (m *Memory) Update(ctx context.Context, fn func(Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.RLock()
	closed := m.closed
	m.mu.RUnlock()
	if closed {
		return ErrClosed
	}

	tx := &memTx{
		l:      m,
		base:   make(map[solana.PublicKey]uint64),
		writes: make(map[solana.PublicKey]*Account),
	}
	if err := fn(tx); err != nil {
		return err
	}
	if len(tx.writes) == 0 {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return ErrClosed
	}

	// Validate the whole touched set before applying anything.
	for addr, base := range tx.base {
		var cur uint64
		if acc, ok := m.accounts[addr]; ok {
			cur = acc.Version
		}
		if cur != base {
			return ErrConflict
		}
	}

	for addr, acc := range tx.writes {
		next := acc.Clone()
		next.Version = tx.base[addr] + 1
		m.accounts[addr] = next
	}
	return nil
}

// Each implements Ledger.
func (m *Memory) Each(ctx context.Context, fn func(*Account) error) error {
	m.mu.RLock()
	if m.closed {
		m.mu.RUnlock()
		return ErrClosed
	}
	snapshot := make([]*Account, 0, len(m.accounts))
	for _, acc := range m.accounts {
		snapshot = append(snapshot, acc.Clone())
	}
	m.mu.RUnlock()

	for _, acc := range snapshot {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(acc); err != nil {
			return err
		}
	}
	return nil
}

// Close implements Ledger.
func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
