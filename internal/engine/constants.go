// =============================
// File: internal/engine/constants.go
// =============================
package engine

// Issuance and pool-seeding parameters. These mirror the on-chain program
// configuration and must not be changed between deployments of the same
// ledger: every derived balance in an existing ledger assumes them.
const (
	// TokenDecimals is the mint precision; all token amounts below are in
	// base units (10^9 base units per whole token).
	TokenDecimals = 9

	// TotalSupply is minted exactly once per meme token: one billion whole
	// tokens in base units.
	TotalSupply uint64 = 1_000_000_000_000_000_000

	// MinterShareBps is the creator's cut of the total supply, in basis
	// points. The remainder goes to the protocol vault.
	MinterShareBps uint64 = 10
	BpsDenominator uint64 = 10_000

	// MintFeeLamports is the flat fee debited from the minter on issuance.
	MintFeeLamports uint64 = 10_000_000

	// Pool seeding. Real reserves start from the vault's holdings; virtual
	// reserves are constants that shape the curve and never change.
	PoolSeedLamports    uint64 = 20_000_000
	PoolSeedTokens      uint64 = 800_000_000_000_000_000
	VirtualBaseReserve  uint64 = 30_000_000_000
	VirtualTokenReserve uint64 = 1_073_000_000_000_000_000
)

// MinterShare returns the portion of the supply credited to the creator.
func MinterShare() uint64 {
	return TotalSupply / BpsDenominator * MinterShareBps
}

// VaultShare returns the portion of the supply held by the protocol vault.
func VaultShare() uint64 {
	return TotalSupply - MinterShare()
}
