// =============================
// File: internal/engine/events.go
// =============================
package engine

import (
	"time"

	"github.com/gagliardetto/solana-go"
)

// EventType represents the type of engine event
type EventType int

const (
	EventProtocolInitialized EventType = iota
	EventTokenMinted
	EventPoolInitialized
	EventSwapExecuted
)

// Event represents an engine event
type Event struct {
	Type      EventType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// Sink receives events emitted after a successful commit. Implementations
// must not block; the engine calls Emit synchronously.
type Sink interface {
	Emit(Event)
}

// NopSink discards all events.
type NopSink struct{}

func (NopSink) Emit(Event) {}

// ProtocolInitializedData contains data for protocol initialization events
type ProtocolInitializedData struct {
	Authority solana.PublicKey `json:"authority"`
	FeeVault  solana.PublicKey `json:"fee_vault"`
	Fee       uint64           `json:"fee_lamports"`
}

// TokenMintedData contains data for token issuance events
type TokenMintedData struct {
	MemeID      [32]byte         `json:"meme_id"`
	Mint        solana.PublicKey `json:"mint"`
	Minter      solana.PublicKey `json:"minter"`
	MinterShare uint64           `json:"minter_share"`
	VaultShare  uint64           `json:"vault_share"`
	FeePaid     uint64           `json:"fee_paid"`
}

// PoolInitializedData contains data for pool creation events
type PoolInitializedData struct {
	Pool         solana.PublicKey `json:"pool"`
	Mint         solana.PublicKey `json:"mint"`
	BaseReserve  uint64           `json:"base_reserve"`
	TokenReserve uint64           `json:"token_reserve"`
}

// SwapExecutedData contains data for swap events
type SwapExecutedData struct {
	Pool      solana.PublicKey `json:"pool"`
	Trader    solana.PublicKey `json:"trader"`
	BaseToken bool             `json:"base_to_token"`
	AmountIn  uint64           `json:"amount_in"`
	AmountOut uint64           `json:"amount_out"`
	Fee       uint64           `json:"fee"`
}

func newEvent(eventType EventType, data interface{}) Event {
	return Event{
		Type:      eventType,
		Timestamp: time.Now(),
		Data:      data,
	}
}
