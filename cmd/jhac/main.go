// Command jhac imports or exports an impex script through a hybris
// Administration Console.
// Usage: jhac -endpoint URL -user U -password P (-import FILE | -export FILE) [-out DIR]
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jlolling/jhac/internal/app"
	"github.com/jlolling/jhac/internal/cli"
	"github.com/jlolling/jhac/internal/logging"
)

func main() {
	os.Exit(run())
}

func run() int {
	args, err := cli.ParseArgs(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "jhac: %v\n", err)
		return app.ExitFailure
	}

	cfg, err := app.LoadConfig(args.ConfigFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "jhac: %v\n", err)
		return app.ExitFailure
	}
	cfg.ApplyArgs(args)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "jhac: invalid configuration: %v\n", err)
		return app.ExitFailure
	}

	logger, err := logging.NewLeveledLogger("jhac", cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "jhac: %v\n", err)
		return app.ExitFailure
	}
	defer func() { _ = logger.Sync() }()

	application, err := app.NewApplication(cfg, args, logger)
	if err != nil {
		logger.Error("failed to start", logging.Field{Key: "error", Value: err})
		return app.ExitFailure
	}
	defer func() { _ = application.Shutdown() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err = application.Run(ctx, os.Stdout)
	if err != nil && !errors.Is(err, app.ErrImpexFailed) {
		fmt.Fprintf(os.Stderr, "jhac: %v\n", err)
	}
	return app.ExitCode(err)
}
