// =============================
// File: internal/state/records.go
// =============================

// Package state defines the fixed-schema records persisted at the protocol's
// derived addresses. Each record is borsh-encoded behind an 8-byte
// discriminator and a schema-version byte; decoding never branches on field
// presence.
package state

import (
	"github.com/gagliardetto/solana-go"
)

// ProtocolState is the singleton configuration record gating issuance.
// Created once; the mint fee is immutable after initialization.
type ProtocolState struct {
	Authority   solana.PublicKey
	FeeLamports uint64
	FeeVault    solana.PublicKey
	Bump        uint8
}

// MemeTokenState is the per-meme registry record. At most one exists per
// meme id; it is immutable after issuance.
type MemeTokenState struct {
	MemeID        [32]byte
	Mint          solana.PublicKey
	Minter        solana.PublicKey
	CreatedAt     int64
	IsInitialized bool
	Bump          uint8
}

// AmmPool is the per-mint bonding-curve pool record. Addresses are fixed at
// initialization; only the real reserves ever change.
type AmmPool struct {
	TokenMint           solana.PublicKey
	BaseVault           solana.PublicKey
	TokenVault          solana.PublicKey
	RealBaseReserve     uint64
	RealTokenReserve    uint64
	VirtualBaseReserve  uint64
	VirtualTokenReserve uint64
	Bump                uint8
	IsInitialized       bool
}

// TokenMint is the ledger's bookkeeping record for an issued token. It
// carries the meme id so pool operations keyed by mint can locate the
// registry entry without a secondary index.
type TokenMint struct {
	MemeID        [32]byte
	MintAuthority solana.PublicKey
	Supply        uint64
	Decimals      uint8
}

// TokenHolding is a single balance of one mint held by one owner.
type TokenHolding struct {
	Mint   solana.PublicKey
	Owner  solana.PublicKey
	Amount uint64
}
