// =============================
// File: internal/addressing/addressing.go
// =============================

// Package addressing maps protocol entities to deterministic program-derived
// addresses. Derivation is pure: identical inputs always produce the same
// address and bump, the canonical bump is the highest valid one, and derived
// addresses are off-curve so no keypair can sign for them.
package addressing

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// Seed tags. Kept byte-identical to the reference deployment so derived
// addresses stay compatible.
var seed = struct {
	ProtocolState  []byte
	FeeVault       []byte
	MemeTokenState []byte
	Vault          []byte
	MemeMint       []byte
	AmmPool        []byte
	PoolSolVault   []byte
	PoolTokenVault []byte
}{
	ProtocolState:  []byte("protocol_state_v2"),
	FeeVault:       []byte("fee_vault"),
	MemeTokenState: []byte("meme_token_state"),
	Vault:          []byte("vault"),
	MemeMint:       []byte("meme_mint"),
	AmmPool:        []byte("amm_pool"),
	PoolSolVault:   []byte("pool_sol_vault"),
	PoolTokenVault: []byte("pool_token_vault"),
}

// Deriver computes the protocol's deterministic addresses for one program id.
type Deriver struct {
	programID solana.PublicKey
}

// NewDeriver creates a Deriver bound to the given program id.
func NewDeriver(programID solana.PublicKey) *Deriver {
	return &Deriver{programID: programID}
}

// ProgramID returns the program the addresses are derived against.
func (d *Deriver) ProgramID() solana.PublicKey { return d.programID }

func (d *Deriver) derive(tag []byte, inputs ...[]byte) (solana.PublicKey, uint8, error) {
	seeds := make([][]byte, 0, 1+len(inputs))
	seeds = append(seeds, tag)
	seeds = append(seeds, inputs...)

	addr, bump, err := solana.FindProgramAddress(seeds, d.programID)
	if err != nil {
		// Bump search space exhausted. Unreachable under canonical bump
		// selection; treat as fatal for the request.
		return solana.PublicKey{}, 0, fmt.Errorf("derive %q: %w", tag, err)
	}
	return addr, bump, nil
}

// ProtocolState derives the singleton protocol state address.
func (d *Deriver) ProtocolState() (solana.PublicKey, uint8, error) {
	return d.derive(seed.ProtocolState)
}

// FeeVault derives the mint-fee collection address.
func (d *Deriver) FeeVault() (solana.PublicKey, uint8, error) {
	return d.derive(seed.FeeVault)
}

// MemeTokenState derives the per-meme registry record address.
func (d *Deriver) MemeTokenState(memeID [32]byte) (solana.PublicKey, uint8, error) {
	return d.derive(seed.MemeTokenState, memeID[:])
}

// MemeMint derives the token mint address for a meme.
func (d *Deriver) MemeMint(memeID [32]byte) (solana.PublicKey, uint8, error) {
	return d.derive(seed.MemeMint, memeID[:])
}

// Vault derives the program-owned supply vault for a mint.
func (d *Deriver) Vault(mint solana.PublicKey) (solana.PublicKey, uint8, error) {
	return d.derive(seed.Vault, mint.Bytes())
}

// AmmPool derives the bonding-curve pool record address for a mint.
func (d *Deriver) AmmPool(mint solana.PublicKey) (solana.PublicKey, uint8, error) {
	return d.derive(seed.AmmPool, mint.Bytes())
}

// PoolBaseVault derives the pool's base-currency escrow for a mint.
func (d *Deriver) PoolBaseVault(mint solana.PublicKey) (solana.PublicKey, uint8, error) {
	return d.derive(seed.PoolSolVault, mint.Bytes())
}

// PoolTokenVault derives the pool's token escrow for a mint.
func (d *Deriver) PoolTokenVault(mint solana.PublicKey) (solana.PublicKey, uint8, error) {
	return d.derive(seed.PoolTokenVault, mint.Bytes())
}

// HoldingAddress derives the associated holding account for (owner, mint).
// Used for external identities and for the vault's token balance.
func HoldingAddress(owner, mint solana.PublicKey) (solana.PublicKey, uint8, error) {
	addr, bump, err := solana.FindAssociatedTokenAddress(owner, mint)
	if err != nil {
		return solana.PublicKey{}, 0, fmt.Errorf("derive holding for %s: %w", owner, err)
	}
	return addr, bump, nil
}
