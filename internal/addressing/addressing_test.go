package addressing

import (
	"crypto/rand"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testProgramID = solana.MustPublicKeyFromBase58("23YiQzmDxCYcX8Vu9Fkbov2NoFfUJCjNhKTH2GFfRDyM")

func randomMemeID(t *testing.T) [32]byte {
	t.Helper()
	var id [32]byte
	_, err := rand.Read(id[:])
	require.NoError(t, err)
	return id
}

func TestDerivationIsDeterministic(t *testing.T) {
	d := NewDeriver(testProgramID)
	memeID := randomMemeID(t)

	a1, b1, err := d.MemeTokenState(memeID)
	require.NoError(t, err)
	a2, b2, err := d.MemeTokenState(memeID)
	require.NoError(t, err)

	assert.Equal(t, a1, a2)
	assert.Equal(t, b1, b2)
}

func TestDistinctTagsDoNotCollide(t *testing.T) {
	d := NewDeriver(testProgramID)
	memeID := randomMemeID(t)

	mint, _, err := d.MemeMint(memeID)
	require.NoError(t, err)

	seen := map[solana.PublicKey]string{}
	put := func(name string, addr solana.PublicKey, err error) {
		require.NoError(t, err)
		prev, dup := seen[addr]
		assert.False(t, dup, "%s collides with %s at %s", name, prev, addr)
		seen[addr] = name
	}

	ps, _, err := d.ProtocolState()
	put("protocol_state", ps, err)
	fv, _, err := d.FeeVault()
	put("fee_vault", fv, err)
	ms, _, err := d.MemeTokenState(memeID)
	put("meme_token_state", ms, err)
	put("meme_mint", mint, nil)
	v, _, err := d.Vault(mint)
	put("vault", v, err)
	pool, _, err := d.AmmPool(mint)
	put("amm_pool", pool, err)
	bv, _, err := d.PoolBaseVault(mint)
	put("pool_sol_vault", bv, err)
	tv, _, err := d.PoolTokenVault(mint)
	put("pool_token_vault", tv, err)
}

func TestDistinctInputsDistinctAddresses(t *testing.T) {
	d := NewDeriver(testProgramID)

	a, _, err := d.MemeTokenState(randomMemeID(t))
	require.NoError(t, err)
	b, _, err := d.MemeTokenState(randomMemeID(t))
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestDerivedAddressesAreOffCurve(t *testing.T) {
	d := NewDeriver(testProgramID)
	memeID := randomMemeID(t)

	mint, _, err := d.MemeMint(memeID)
	require.NoError(t, err)
	pool, _, err := d.AmmPool(mint)
	require.NoError(t, err)

	// Off-curve addresses have no corresponding signing key.
	assert.False(t, mint.IsOnCurve())
	assert.False(t, pool.IsOnCurve())
}

func TestDifferentProgramsDifferentAddresses(t *testing.T) {
	other := solana.NewWallet().PublicKey()
	memeID := randomMemeID(t)

	a, _, err := NewDeriver(testProgramID).MemeMint(memeID)
	require.NoError(t, err)
	b, _, err := NewDeriver(other).MemeMint(memeID)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestHoldingAddressDeterministic(t *testing.T) {
	owner := solana.NewWallet().PublicKey()
	d := NewDeriver(testProgramID)
	mint, _, err := d.MemeMint(randomMemeID(t))
	require.NoError(t, err)

	a, _, err := HoldingAddress(owner, mint)
	require.NoError(t, err)
	b, _, err := HoldingAddress(owner, mint)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}
