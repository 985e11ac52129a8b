package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"github.com/techwiz-hq/api-smoke-harness/internal/app"
	"github.com/techwiz-hq/api-smoke-harness/internal/config"
	"github.com/techwiz-hq/api-smoke-harness/internal/logger"
)

func main() {
	if err := run(); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintf(os.Stderr, "avatarcheck start failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load("avatarcheck", os.Args[1:])
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.Init(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	avatar, err := app.NewAvatarApp(cfg, log)
	if err != nil {
		logger.ErrorObj("failed to initialize avatar check", "error", err)
		return err
	}

	return avatar.Run(ctx)
}
