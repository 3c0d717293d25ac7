package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jeancollas/paypal-sdk-go/internal/app"
	"github.com/jeancollas/paypal-sdk-go/internal/config"
	"github.com/jeancollas/paypal-sdk-go/internal/logger"
	"github.com/jeancollas/paypal-sdk-go/internal/requestfile"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "paypalctl: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: paypalctl <request-file.yaml|json>")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, err := logger.Init(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Close()

	logger.InfoObj("paypalctl starting", "config", cfg.Redacted())

	file, err := requestfile.Load(args[0])
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runner, err := app.NewRunner(ctx, cfg, log, os.Stdout)
	if err != nil {
		logger.ErrorObj("failed to initialize runner", "error", err)
		return err
	}
	defer runner.Close()

	return runner.Run(ctx, file)
}
