// ==================================
// File: internal/wallet/wallet.go
// ==================================
package wallet

import (
	"encoding/csv"
	"fmt"
	"os"

	"github.com/gagliardetto/solana-go"
	"github.com/mr-tron/base58"

	"github.com/solcurve/launchpad/internal/addressing"
)

// Wallet identifies an actor on the ledger and caches that actor's derived
// token holding addresses.
type Wallet struct {
	PrivateKey   solana.PrivateKey
	PublicKey    solana.PublicKey
	holdingCache map[string]solana.PublicKey
}

// NewWallet creates a wallet from a base58-encoded private key.
func NewWallet(privateKeyBase58 string) (*Wallet, error) {
	privateKeyBytes, err := base58.Decode(privateKeyBase58)
	if err != nil {
		return nil, fmt.Errorf("failed to decode private key: %w", err)
	}
	if len(privateKeyBytes) != 64 {
		return nil, fmt.Errorf("invalid private key length: expected 64 bytes, got %d", len(privateKeyBytes))
	}
	privateKey := solana.PrivateKey(privateKeyBytes)
	return &Wallet{
		PrivateKey:   privateKey,
		PublicKey:    privateKey.PublicKey(),
		holdingCache: make(map[string]solana.PublicKey),
	}, nil
}

// Generate creates a wallet with a fresh random key.
func Generate() *Wallet {
	w := solana.NewWallet()
	return &Wallet{
		PrivateKey:   w.PrivateKey,
		PublicKey:    w.PublicKey(),
		holdingCache: make(map[string]solana.PublicKey),
	}
}

// LoadWallets loads wallets from a CSV file with columns [Name, PrivateKeyBase58].
func LoadWallets(path string) (map[string]*Wallet, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("CSV file is empty or missing data")
	}

	wallets := make(map[string]*Wallet)
	for _, record := range records[1:] {
		if len(record) != 2 {
			continue
		}
		name := record[0]
		w, err := NewWallet(record[1])
		if err != nil {
			continue
		}
		wallets[name] = w
	}
	return wallets, nil
}

// HoldingFor returns this wallet's token holding address for mint. Results
// are cached per mint.
func (w *Wallet) HoldingFor(mint solana.PublicKey) (solana.PublicKey, error) {
	mintStr := mint.String()
	if addr, ok := w.holdingCache[mintStr]; ok {
		return addr, nil
	}
	addr, _, err := addressing.HoldingAddress(w.PublicKey, mint)
	if err != nil {
		return solana.PublicKey{}, err
	}
	w.holdingCache[mintStr] = addr
	return addr, nil
}

// PrecomputeHoldings derives and caches holding addresses for a list of
// mints up front.
func (w *Wallet) PrecomputeHoldings(mints []solana.PublicKey) error {
	for _, mint := range mints {
		if _, err := w.HoldingFor(mint); err != nil {
			return fmt.Errorf("failed to derive holding for mint %s: %w", mint.String(), err)
		}
	}
	return nil
}

// String returns the wallet's public key.
func (w *Wallet) String() string {
	return w.PublicKey.String()
}
