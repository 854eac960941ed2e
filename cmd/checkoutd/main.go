// Command checkoutd serves checkout price estimates over HTTP.
//
// Configuration is read from CHECKOUT_* environment variables and an optional
// .env file in the working directory. See internal/app.Config.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrymomot/checkoutkit/internal/app"
	"github.com/dmitrymomot/checkoutkit/pkg/config"
	"github.com/dmitrymomot/checkoutkit/pkg/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "checkoutd:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load[app.Config](config.WithPrefix(app.EnvPrefix))
	if err != nil {
		return err
	}

	log, err := app.NewLogger(cfg)
	if err != nil {
		return err
	}
	logger.SetAsDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Warn("close failed", logger.Error(err))
		}
	}()

	if err := a.Run(ctx); err != nil {
		return err
	}
	log.Info("checkoutd stopped", slog.String("env", cfg.Env))
	return nil
}
