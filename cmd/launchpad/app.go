// ====================================
// File: cmd/launchpad/app.go
// ====================================
package main

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/solcurve/launchpad/internal/config"
	"github.com/solcurve/launchpad/internal/engine"
	"github.com/solcurve/launchpad/internal/events"
	"github.com/solcurve/launchpad/internal/export"
	"github.com/solcurve/launchpad/internal/ledger"
	"github.com/solcurve/launchpad/internal/ledger/pebbledb"
	"github.com/solcurve/launchpad/internal/logger"
	"github.com/solcurve/launchpad/internal/service"
	"github.com/solcurve/launchpad/internal/wallet"
)

type options struct {
	configPath string
	action     string
	walletName string
	actor      string
	meme       string
	mint       string
	amount     uint64
	minOut     uint64
	traders    int
	rounds     int
}

type app struct {
	opts    *options
	cfg     *config.Config
	log     *logger.Logger
	led     ledger.Ledger
	bus     *events.Bus
	svc     *service.Service
	wallets map[string]*wallet.Wallet
}

func newApp(opts *options) (*app, error) {
	cfg, err := config.LoadConfig(opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	log, err := logger.New(&logger.Config{
		LogFile:     cfg.LogFile,
		Development: cfg.Development,
	})
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}

	programID, err := cfg.Program()
	if err != nil {
		return nil, err
	}

	var led ledger.Ledger
	if cfg.LedgerPath != "" {
		led, err = pebbledb.Open(cfg.LedgerPath)
		if err != nil {
			return nil, fmt.Errorf("open ledger: %w", err)
		}
		log.Info("using persistent ledger", zap.String("path", cfg.LedgerPath))
	} else {
		led = ledger.NewMemory()
		log.Info("using in-memory ledger")
	}

	bus := events.NewBus(log.Logger, cfg.EventBufferSize)
	eng := engine.New(led, programID, log.WithComponent("engine"), engine.WithSink(bus))
	svc := service.New(eng, log.WithComponent("service"),
		service.WithMaxElapsed(time.Duration(cfg.RetryMaxElapsedMs)*time.Millisecond))

	a := &app{
		opts: opts,
		cfg:  cfg,
		log:  log,
		led:  led,
		bus:  bus,
		svc:  svc,
	}
	if cfg.WalletsFile != "" {
		a.wallets, err = wallet.LoadWallets(cfg.WalletsFile)
		if err != nil {
			return nil, fmt.Errorf("load wallets: %w", err)
		}
	}
	return a, nil
}

func (a *app) Close() {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	_ = a.bus.Shutdown(shutdownCtx)
	_ = a.led.Close()
	_ = a.log.Close()
}

// memeIdentity hashes a human-readable meme name into the 32-byte id the
// protocol addresses by.
func memeIdentity(name string) [32]byte {
	return sha256.Sum256([]byte(name))
}

func (a *app) actorKey() (solana.PublicKey, error) {
	if a.opts.actor != "" {
		return solana.PublicKeyFromBase58(a.opts.actor)
	}
	if a.opts.walletName != "" {
		w, ok := a.wallets[a.opts.walletName]
		if !ok {
			return solana.PublicKey{}, fmt.Errorf("wallet %q not found in %s", a.opts.walletName, a.cfg.WalletsFile)
		}
		return w.PublicKey, nil
	}
	return solana.PublicKey{}, errors.New("an actor is required: pass --wallet or --actor")
}

func (a *app) mintKey() (solana.PublicKey, error) {
	if a.opts.mint != "" {
		return solana.PublicKeyFromBase58(a.opts.mint)
	}
	if a.opts.meme != "" {
		mint, _, err := a.svc.Engine().Deriver().MemeMint(memeIdentity(a.opts.meme))
		return mint, err
	}
	return solana.PublicKey{}, errors.New("a token is required: pass --mint or --meme")
}

func (a *app) Run(ctx context.Context) error {
	switch a.opts.action {
	case "init-protocol":
		return a.initProtocol(ctx)
	case "mint":
		return a.mint(ctx)
	case "init-pool":
		return a.initPool(ctx)
	case "buy":
		return a.buy(ctx)
	case "sell":
		return a.sell(ctx)
	case "quote":
		return a.quote(ctx)
	case "pool-state":
		return a.poolState(ctx)
	case "token-state":
		return a.tokenState(ctx)
	case "list":
		return a.list(ctx)
	case "distribution":
		return a.distribution(ctx)
	case "airdrop":
		return a.airdrop(ctx)
	case "simulate":
		return a.simulate(ctx)
	default:
		return fmt.Errorf("unknown action %q", a.opts.action)
	}
}

func (a *app) initProtocol(ctx context.Context) error {
	authority, err := a.actorKey()
	if err != nil {
		return err
	}
	info, err := a.svc.InitializeProtocol(ctx, authority)
	if err != nil {
		return err
	}
	fmt.Printf("protocol state: %s\nfee vault: %s\nmint fee: %d lamports\n",
		info.Address, info.FeeVault, info.FeeLamports)
	return nil
}

func (a *app) mint(ctx context.Context) error {
	minter, err := a.actorKey()
	if err != nil {
		return err
	}
	if a.opts.meme == "" {
		return errors.New("missing --meme")
	}
	res, err := a.svc.MintMemeToken(ctx, minter, memeIdentity(a.opts.meme))
	if err != nil {
		return err
	}
	fmt.Printf("mint: %s\nstate: %s\nvault: %s\nminter holding: %s\nminter share: %d\nvault share: %d\nfee paid: %d\n",
		res.Mint, res.StateAddress, res.Vault, res.MinterHolding, res.MinterShare, res.VaultShare, res.FeePaid)
	return nil
}

func (a *app) initPool(ctx context.Context) error {
	initializer, err := a.actorKey()
	if err != nil {
		return err
	}
	mint, err := a.mintKey()
	if err != nil {
		return err
	}
	pool, err := a.svc.InitializeAmmPool(ctx, initializer, mint)
	if err != nil {
		return err
	}
	fmt.Printf("pool: %s\nbase vault: %s\ntoken vault: %s\nreserves: real %d/%d virtual %d/%d\n",
		pool.Address, pool.BaseVault, pool.TokenVault,
		pool.Reserves.RealBase, pool.Reserves.RealToken,
		pool.Reserves.VirtualBase, pool.Reserves.VirtualToken)
	return nil
}

func (a *app) buy(ctx context.Context) error {
	trader, err := a.actorKey()
	if err != nil {
		return err
	}
	mint, err := a.mintKey()
	if err != nil {
		return err
	}
	if a.opts.amount == 0 {
		return errors.New("missing --amount")
	}
	res, err := a.svc.SwapBaseForToken(ctx, trader, mint, a.opts.amount, a.opts.minOut)
	if err != nil {
		return err
	}
	fmt.Printf("bought %d token units for %d base units (fee %d)\n", res.AmountOut, res.AmountIn, res.Fee)
	return nil
}

func (a *app) sell(ctx context.Context) error {
	trader, err := a.actorKey()
	if err != nil {
		return err
	}
	mint, err := a.mintKey()
	if err != nil {
		return err
	}
	if a.opts.amount == 0 {
		return errors.New("missing --amount")
	}
	res, err := a.svc.SwapTokenForBase(ctx, trader, mint, a.opts.amount, a.opts.minOut)
	if err != nil {
		return err
	}
	fmt.Printf("sold %d token units for %d base units (fee %d)\n", res.AmountIn, res.AmountOut, res.Fee)
	return nil
}

func (a *app) quote(ctx context.Context) error {
	mint, err := a.mintKey()
	if err != nil {
		return err
	}
	if a.opts.amount == 0 {
		return errors.New("missing --amount")
	}
	buy, err := a.svc.QuoteBuy(ctx, mint, a.opts.amount)
	if err != nil {
		return err
	}
	sell, err := a.svc.QuoteSell(ctx, mint, a.opts.amount)
	if err != nil {
		return err
	}
	fmt.Printf("buy %d base -> %d tokens (fee %d)\nsell %d tokens -> %d base (fee %d)\n",
		a.opts.amount, buy.AmountOut, buy.Fee,
		a.opts.amount, sell.AmountOut, sell.Fee)
	return nil
}

func (a *app) poolState(ctx context.Context) error {
	mint, err := a.mintKey()
	if err != nil {
		return err
	}
	pool, err := a.svc.GetPoolState(ctx, mint)
	if err != nil {
		return err
	}
	fmt.Printf("pool: %s\nreal reserves: %d base / %d token\nvirtual reserves: %d base / %d token\n",
		pool.Address,
		pool.Reserves.RealBase, pool.Reserves.RealToken,
		pool.Reserves.VirtualBase, pool.Reserves.VirtualToken)
	return nil
}

func (a *app) tokenState(ctx context.Context) error {
	if a.opts.meme == "" {
		return errors.New("missing --meme")
	}
	info, err := a.svc.GetMemeTokenState(ctx, memeIdentity(a.opts.meme))
	if err != nil {
		return err
	}
	fmt.Printf("mint: %s\nminter: %s\ncreated: %s\n",
		info.Mint, info.Minter, time.Unix(info.CreatedAt, 0).UTC().Format(time.RFC3339))
	return nil
}

func (a *app) list(ctx context.Context) error {
	tokens, err := a.svc.Engine().ListMemeTokens(ctx)
	if err != nil {
		return err
	}
	for _, tok := range tokens {
		fmt.Printf("%s  minter=%s  created=%s\n",
			tok.Mint, tok.Minter, time.Unix(tok.CreatedAt, 0).UTC().Format(time.RFC3339))
	}
	fmt.Printf("%d tokens\n", len(tokens))
	return nil
}

func (a *app) distribution(ctx context.Context) error {
	mint, err := a.mintKey()
	if err != nil {
		return err
	}
	d, err := a.svc.CheckDistribution(ctx, mint)
	if err != nil {
		return err
	}
	fmt.Printf("minter: %d (%s%%)\nvault: %d (%s%%)\ncorrect: %v\n",
		d.MinterBalance, d.MinterPercent, d.VaultBalance, d.VaultPercent, d.Correct)
	return nil
}

func (a *app) airdrop(ctx context.Context) error {
	target, err := a.actorKey()
	if err != nil {
		return err
	}
	if a.opts.amount == 0 {
		return errors.New("missing --amount")
	}
	if err := a.svc.Engine().Airdrop(ctx, target, a.opts.amount); err != nil {
		return err
	}
	fmt.Printf("credited %d lamports to %s\n", a.opts.amount, target)
	return nil
}

// simulate drives concurrent traders against one pool to exercise conflict
// retries end to end. It bootstraps its own protocol, token, and pool when
// the ledger is empty, and writes the captured swap history to exports/.
func (a *app) simulate(ctx context.Context) error {
	eng := a.svc.Engine()
	log := a.log.WithOperation("simulate")

	recorder := export.NewRecorder()
	sub := a.bus.SubscribeFunc(engine.EventSwapExecuted, recorder.HandleEvent)
	defer sub.Unsubscribe()

	authority := wallet.Generate()
	if _, err := a.svc.InitializeProtocol(ctx, authority.PublicKey); err != nil &&
		!errors.Is(err, engine.ErrProtocolAlreadyInitialized) {
		return err
	}

	minter := wallet.Generate()
	if err := eng.Airdrop(ctx, minter.PublicKey, 1_000_000_000); err != nil {
		return err
	}
	id := memeIdentity(fmt.Sprintf("simulation-%d", time.Now().UnixNano()))
	res, err := a.svc.MintMemeToken(ctx, minter.PublicKey, id)
	if err != nil {
		return err
	}
	if _, err := a.svc.InitializeAmmPool(ctx, minter.PublicKey, res.Mint); err != nil {
		return err
	}
	log.Info("simulation pool ready", zap.String("mint", res.Mint.String()))

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < a.opts.traders; i++ {
		trader := wallet.Generate()
		if err := eng.Airdrop(ctx, trader.PublicKey, 1_000_000_000); err != nil {
			return err
		}
		g.Go(func() error {
			for r := 0; r < a.opts.rounds; r++ {
				buy, err := a.svc.SwapBaseForToken(gctx, trader.PublicKey, res.Mint, 1_000_000, 0)
				if err != nil {
					return fmt.Errorf("trader %s buy: %w", trader, err)
				}
				if _, err := a.svc.SwapTokenForBase(gctx, trader.PublicKey, res.Mint, buy.AmountOut, 0); err != nil {
					return fmt.Errorf("trader %s sell: %w", trader, err)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	pool, err := a.svc.GetPoolState(ctx, res.Mint)
	if err != nil {
		return err
	}
	fmt.Printf("simulation complete: %d traders x %d rounds\nfinal reserves: %d base / %d token\n",
		a.opts.traders, a.opts.rounds, pool.Reserves.RealBase, pool.Reserves.RealToken)

	// Drain the bus so every swap event reaches the recorder, then write
	// the run's history.
	drainCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := a.bus.Shutdown(drainCtx); err != nil {
		log.Warn("event bus drain timed out", zap.Error(err))
	}
	path, err := export.NewExporter(a.log.WithComponent("export")).Export(recorder.Records(), export.Options{
		Format:    export.FormatCSV,
		OutputDir: "exports",
	})
	if err != nil {
		return err
	}
	fmt.Printf("swap history written to %s\n", path)
	return nil
}
