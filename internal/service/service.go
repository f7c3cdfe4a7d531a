// =============================
// File: internal/service/service.go
// =============================

// Package service wraps the engine with the retry policy the engine itself
// refuses to own: stale-state conflicts from the optimistic ledger are
// retried with exponential backoff against fresh reads, while configuration
// and business-rule rejections surface immediately.
package service

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"github.com/solcurve/launchpad/internal/curve"
	"github.com/solcurve/launchpad/internal/engine"
)

// DefaultMaxElapsed bounds the total retry window per operation.
const DefaultMaxElapsed = 15 * time.Second

// Service executes engine operations with bounded retries.
type Service struct {
	eng        *engine.Engine
	log        *zap.Logger
	maxElapsed time.Duration
}

// Option configures the service.
type Option func(*Service)

// WithMaxElapsed overrides the total retry window.
func WithMaxElapsed(d time.Duration) Option {
	return func(s *Service) { s.maxElapsed = d }
}

// New wraps eng with the default retry policy.
func New(eng *engine.Engine, log *zap.Logger, opts ...Option) *Service {
	s := &Service{
		eng:        eng,
		log:        log,
		maxElapsed: DefaultMaxElapsed,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Engine exposes the wrapped engine for read-only helpers that need no
// retry policy.
func (s *Service) Engine() *engine.Engine { return s.eng }

// retry runs op until it succeeds, returns a non-retryable error, or the
// retry window closes. Each attempt re-reads current state inside the
// engine; nothing stale is ever replayed.
func retry[T any](ctx context.Context, s *Service, name string, op func() (T, error)) (T, error) {
	attempt := 0
	return backoff.Retry(
		ctx,
		func() (T, error) {
			attempt++
			out, err := op()
			if err == nil {
				return out, nil
			}
			if engine.IsRetryable(err) {
				s.log.Debug("retrying on ledger conflict",
					zap.String("operation", name),
					zap.Int("attempt", attempt),
					zap.Error(err))
				return out, err
			}
			return out, backoff.Permanent(err)
		},
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxElapsedTime(s.maxElapsed),
	)
}

// InitializeProtocol creates the protocol singleton.
func (s *Service) InitializeProtocol(ctx context.Context, authority solana.PublicKey) (*engine.ProtocolInfo, error) {
	return retry(ctx, s, "initialize_protocol", func() (*engine.ProtocolInfo, error) {
		return s.eng.InitializeProtocol(ctx, authority)
	})
}

// MintMemeToken issues the token for memeID.
func (s *Service) MintMemeToken(ctx context.Context, minter solana.PublicKey, memeID [32]byte) (*engine.MintResult, error) {
	return retry(ctx, s, "mint_meme_token", func() (*engine.MintResult, error) {
		return s.eng.MintMemeToken(ctx, minter, memeID)
	})
}

// InitializeAmmPool seeds the bonding-curve pool for mint.
func (s *Service) InitializeAmmPool(ctx context.Context, initializer, mint solana.PublicKey) (*engine.PoolInfo, error) {
	return retry(ctx, s, "initialize_amm_pool", func() (*engine.PoolInfo, error) {
		return s.eng.InitializeAmmPool(ctx, initializer, mint)
	})
}

// SwapBaseForToken buys tokens, retrying conflicts against fresh reserves.
// The slippage bound still holds on every attempt.
func (s *Service) SwapBaseForToken(ctx context.Context, trader, mint solana.PublicKey, baseIn, minTokenOut uint64) (*engine.SwapResult, error) {
	return retry(ctx, s, "swap_base_for_token", func() (*engine.SwapResult, error) {
		return s.eng.SwapBaseForToken(ctx, trader, mint, baseIn, minTokenOut)
	})
}

// SwapTokenForBase sells tokens, retrying conflicts against fresh reserves.
func (s *Service) SwapTokenForBase(ctx context.Context, trader, mint solana.PublicKey, tokenIn, minBaseOut uint64) (*engine.SwapResult, error) {
	return retry(ctx, s, "swap_token_for_base", func() (*engine.SwapResult, error) {
		return s.eng.SwapTokenForBase(ctx, trader, mint, tokenIn, minBaseOut)
	})
}

// QuoteBuy prices a buy against current reserves.
func (s *Service) QuoteBuy(ctx context.Context, mint solana.PublicKey, baseIn uint64) (curve.Quote, error) {
	return s.eng.QuoteBuy(ctx, mint, baseIn)
}

// QuoteSell prices a sell against current reserves.
func (s *Service) QuoteSell(ctx context.Context, mint solana.PublicKey, tokenIn uint64) (curve.Quote, error) {
	return s.eng.QuoteSell(ctx, mint, tokenIn)
}

// GetPoolState reads the pool for mint.
func (s *Service) GetPoolState(ctx context.Context, mint solana.PublicKey) (*engine.PoolInfo, error) {
	return s.eng.GetPoolState(ctx, mint)
}

// GetMemeTokenState reads the registry entry for memeID.
func (s *Service) GetMemeTokenState(ctx context.Context, memeID [32]byte) (*engine.TokenInfo, error) {
	return s.eng.GetMemeTokenState(ctx, memeID)
}

// CheckDistribution verifies the issuance split for mint.
func (s *Service) CheckDistribution(ctx context.Context, mint solana.PublicKey) (*engine.Distribution, error) {
	return s.eng.CheckDistribution(ctx, mint)
}
