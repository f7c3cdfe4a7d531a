// ====================================
// File: cmd/launchpad/main.go
// ====================================
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

func main() {
	flags := pflag.NewFlagSet("launchpad", pflag.ExitOnError)

	opts := &options{}
	flags.StringVar(&opts.configPath, "config", "configs/config.yaml", "path to the configuration file")
	flags.StringVar(&opts.action, "action", "", "operation to run: init-protocol, mint, init-pool, buy, sell, quote, pool-state, token-state, list, distribution, airdrop, simulate")
	flags.StringVar(&opts.walletName, "wallet", "", "wallet name from the wallets CSV")
	flags.StringVar(&opts.actor, "actor", "", "actor public key (base58), overrides --wallet")
	flags.StringVar(&opts.meme, "meme", "", "meme identity (hashed to a 32-byte id)")
	flags.StringVar(&opts.mint, "mint", "", "token mint address (base58)")
	flags.Uint64Var(&opts.amount, "amount", 0, "amount in base units")
	flags.Uint64Var(&opts.minOut, "min-out", 0, "minimum acceptable output (0 disables the bound)")
	flags.IntVar(&opts.traders, "traders", 4, "concurrent traders for simulate")
	flags.IntVar(&opts.rounds, "rounds", 10, "buy/sell rounds per trader for simulate")

	if err := flags.Parse(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	if opts.action == "" {
		fmt.Fprintln(os.Stderr, "missing --action")
		flags.Usage()
		os.Exit(2)
	}

	app, err := newApp(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "startup failed: %v\n", err)
		os.Exit(1)
	}
	defer app.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := app.Run(ctx); err != nil {
		app.log.Error("operation failed", zap.String("action", opts.action), zap.Error(err))
		os.Exit(1)
	}
}
