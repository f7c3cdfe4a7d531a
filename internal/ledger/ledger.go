// =============================
// File: internal/ledger/ledger.go
// =============================

// Package ledger provides the atomic account store the protocol engine runs
// against. Every state-mutating operation executes inside a single Update:
// all of its reads and writes commit together or not at all. Commits use
// optimistic concurrency — an Update whose read set was modified underneath
// it fails with ErrConflict and must be retried against fresh state by the
// caller. Updates touching disjoint accounts proceed independently.
package ledger

import (
	"context"
	"errors"

	"github.com/gagliardetto/solana-go"
)

var (
	// ErrNotFound is returned when no account exists at an address.
	ErrNotFound = errors.New("ledger: account not found")

	// ErrConflict is returned when a commit lost a race with another update
	// to an overlapping account set. Retryable with a fresh state read.
	ErrConflict = errors.New("ledger: account modified concurrently")

	// ErrReadOnly is returned when a View transaction attempts a write.
	ErrReadOnly = errors.New("ledger: write inside read-only transaction")

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("ledger: closed")
)

// Account is one entry of the ledger: native balance plus opaque record data
// owned by a program. Version increments on every committed write.
type Account struct {
	Address  solana.PublicKey
	Owner    solana.PublicKey
	Lamports uint64
	Data     []byte
	Version  uint64
}

// Clone returns a deep copy so transaction-local mutation never aliases the
// committed store.
func (a *Account) Clone() *Account {
	if a == nil {
		return nil
	}
	out := *a
	if a.Data != nil {
		out.Data = make([]byte, len(a.Data))
		copy(out.Data, a.Data)
	}
	return &out
}

// Tx is a transaction handle. Reads observe committed state plus the
// transaction's own writes; writes are buffered until commit.
type Tx interface {
	// Account returns a copy of the account at addr, or ErrNotFound.
	Account(addr solana.PublicKey) (*Account, error)

	// PutAccount buffers a create-or-replace of the account.
	PutAccount(acc *Account)
}

// Ledger is the account store. Implementations: memory (this package) and
// pebbledb.
type Ledger interface {
	// View runs fn against a read-only snapshot of current state.
	View(ctx context.Context, fn func(Tx) error) error

	// Update runs fn and atomically commits its writes. Returns ErrConflict
	// when any account fn touched changed since it was first observed.
	Update(ctx context.Context, fn func(Tx) error) error

	// Each calls fn for every account. Enumeration is a full scan by design;
	// indexing is an external concern.
	Each(ctx context.Context, fn func(*Account) error) error

	Close() error
}
