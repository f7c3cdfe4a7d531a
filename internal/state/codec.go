// =============================
// File: internal/state/codec.go
// =============================
package state

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"

	bin "github.com/gagliardetto/binary"
)

// SchemaVersion tags every persisted record for forward evolution. Decoders
// reject versions they do not know.
const SchemaVersion uint8 = 1

const headerLen = 8 + 1 // discriminator + schema version

var (
	ErrShortData        = errors.New("state: record data too short")
	ErrBadDiscriminator = errors.New("state: record discriminator mismatch")
	ErrUnknownSchema    = errors.New("state: unknown record schema version")
)

// Record is any persisted protocol record.
type Record interface {
	discriminator() [8]byte
}

func (ProtocolState) discriminator() [8]byte  { return discProtocolState }
func (MemeTokenState) discriminator() [8]byte { return discMemeTokenState }
func (AmmPool) discriminator() [8]byte        { return discAmmPool }
func (TokenMint) discriminator() [8]byte      { return discTokenMint }
func (TokenHolding) discriminator() [8]byte   { return discTokenHolding }

var (
	discProtocolState  = accountDiscriminator("ProtocolState")
	discMemeTokenState = accountDiscriminator("MemeTokenState")
	discAmmPool        = accountDiscriminator("AmmPool")
	discTokenMint      = accountDiscriminator("TokenMint")
	discTokenHolding   = accountDiscriminator("TokenHolding")
)

// accountDiscriminator derives the 8-byte record tag from the record name,
// anchor style: sha256("account:<Name>")[0:8].
func accountDiscriminator(name string) [8]byte {
	sum := sha256.Sum256([]byte("account:" + name))
	var out [8]byte
	copy(out[:], sum[:8])
	return out
}

// Marshal encodes a record as discriminator || schema version || borsh body.
func Marshal(rec Record) ([]byte, error) {
	var buf bytes.Buffer
	disc := rec.discriminator()
	buf.Write(disc[:])
	buf.WriteByte(SchemaVersion)

	if err := bin.NewBorshEncoder(&buf).Encode(rec); err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes record data into rec, validating the discriminator and
// schema version first.
func Unmarshal(data []byte, rec Record) error {
	if len(data) < headerLen {
		return ErrShortData
	}
	disc := rec.discriminator()
	if !bytes.Equal(data[:8], disc[:]) {
		return ErrBadDiscriminator
	}
	if data[8] != SchemaVersion {
		return fmt.Errorf("%w: %d", ErrUnknownSchema, data[8])
	}
	if err := bin.NewBorshDecoder(data[headerLen:]).Decode(rec); err != nil {
		return fmt.Errorf("decode record: %w", err)
	}
	return nil
}

// Is reports whether raw account data holds a record of the same kind as rec,
// without decoding the body. Used by full-scan enumeration.
func Is(data []byte, rec Record) bool {
	if len(data) < headerLen {
		return false
	}
	disc := rec.discriminator()
	return bytes.Equal(data[:8], disc[:])
}
