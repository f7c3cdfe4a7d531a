// ==================================
// File: internal/wallet/wallet_test.go
// ==================================
package wallet

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWalletRoundTrip(t *testing.T) {
	gen := Generate()

	w, err := NewWallet(gen.PrivateKey.String())
	require.NoError(t, err)
	assert.Equal(t, gen.PublicKey, w.PublicKey)
}

func TestNewWalletRejectsBadKey(t *testing.T) {
	_, err := NewWallet("not-a-key")
	assert.Error(t, err)

	// Valid base58 but wrong length.
	_, err = NewWallet("3yZe7d")
	assert.Error(t, err)
}

func TestLoadWallets(t *testing.T) {
	a := Generate()
	b := Generate()

	csv := "name,private_key\nalice," + a.PrivateKey.String() + "\nbob," + b.PrivateKey.String() + "\n"
	path := filepath.Join(t.TempDir(), "wallets.csv")
	require.NoError(t, os.WriteFile(path, []byte(csv), 0600))

	wallets, err := LoadWallets(path)
	require.NoError(t, err)
	require.Len(t, wallets, 2)
	assert.Equal(t, a.PublicKey, wallets["alice"].PublicKey)
	assert.Equal(t, b.PublicKey, wallets["bob"].PublicKey)
}

func TestHoldingForCached(t *testing.T) {
	w := Generate()
	mint := solana.NewWallet().PublicKey()

	first, err := w.HoldingFor(mint)
	require.NoError(t, err)
	second, err := w.HoldingFor(mint)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	expected, _, err := solana.FindAssociatedTokenAddress(w.PublicKey, mint)
	require.NoError(t, err)
	assert.Equal(t, expected, first)
}
