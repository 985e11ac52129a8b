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
		fmt.Fprintf(os.Stderr, "profileflow start failed: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load("profileflow", os.Args[1:])
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.Init(cfg)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Close()

	logger.InfoObj("profileflow starting", "config", cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	flow, err := app.NewFlowApp(cfg, log, os.Stdin, os.Stdout)
	if err != nil {
		logger.ErrorObj("failed to initialize profile flow", "error", err)
		return err
	}

	// The outcome is already logged by the flow; it never changes the exit code.
	outcome, err := flow.Run(ctx)
	if err != nil {
		return fmt.Errorf("profile flow run: %w", err)
	}
	logger.InfoObj("profileflow finished", "outcome", map[string]any{
		"run_id": outcome.RunID,
		"final":  outcome.Final.String(),
	})
	return nil
}
