package state

import (
	"testing"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolRecordRoundTrip(t *testing.T) {
	in := AmmPool{
		TokenMint:           solana.NewWallet().PublicKey(),
		BaseVault:           solana.NewWallet().PublicKey(),
		TokenVault:          solana.NewWallet().PublicKey(),
		RealBaseReserve:     20_000_000,
		RealTokenReserve:    800_000_000_000_000_000,
		VirtualBaseReserve:  30_000_000_000,
		VirtualTokenReserve: 1_073_000_000_000_000_000,
		Bump:                254,
		IsInitialized:       true,
	}

	data, err := Marshal(&in)
	require.NoError(t, err)

	var out AmmPool
	require.NoError(t, Unmarshal(data, &out))
	assert.Equal(t, in, out)
}

func TestMemeTokenStateRoundTrip(t *testing.T) {
	in := MemeTokenState{
		MemeID:        [32]byte{1, 2, 3},
		Mint:          solana.NewWallet().PublicKey(),
		Minter:        solana.NewWallet().PublicKey(),
		CreatedAt:     time.Now().Unix(),
		IsInitialized: true,
		Bump:          253,
	}

	data, err := Marshal(&in)
	require.NoError(t, err)

	var out MemeTokenState
	require.NoError(t, Unmarshal(data, &out))
	assert.Equal(t, in, out)
}

func TestUnmarshalRejectsWrongRecordKind(t *testing.T) {
	data, err := Marshal(&ProtocolState{FeeLamports: 10_000_000})
	require.NoError(t, err)

	var pool AmmPool
	assert.ErrorIs(t, Unmarshal(data, &pool), ErrBadDiscriminator)
}

func TestUnmarshalRejectsUnknownSchemaVersion(t *testing.T) {
	data, err := Marshal(&TokenHolding{Amount: 1})
	require.NoError(t, err)
	data[8] = SchemaVersion + 1

	var h TokenHolding
	assert.ErrorIs(t, Unmarshal(data, &h), ErrUnknownSchema)
}

func TestUnmarshalRejectsShortData(t *testing.T) {
	var h TokenHolding
	assert.ErrorIs(t, Unmarshal([]byte{1, 2, 3}, &h), ErrShortData)
}

func TestIsMatchesKindWithoutDecoding(t *testing.T) {
	data, err := Marshal(&MemeTokenState{IsInitialized: true})
	require.NoError(t, err)

	assert.True(t, Is(data, &MemeTokenState{}))
	assert.False(t, Is(data, &AmmPool{}))
	assert.False(t, Is(nil, &AmmPool{}))
}
