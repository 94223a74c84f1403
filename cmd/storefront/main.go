// Command storefront is the terminal storefront client.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/xenking/kart-storefront/internal/storefront"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx)
	stop()
	if err != nil {
		_, _ = fmt.Fprintln(os.Stderr, "storefront:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfg, err := storefront.LoadConfig()
	if err != nil {
		return err
	}
	lg, err := storefront.NewLogger(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = lg.Sync() }()

	return storefront.Run(ctx, lg, cfg)
}
