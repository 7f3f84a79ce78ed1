package main

import (
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/desertthunder/spinsync/internal/shared"
)

func main() {
	logger := shared.NewLogger(nil)

	if err := shared.LoadEnv(); err != nil {
		logger.Warn("failed to load .env", "error", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	runner := NewRunner(RunnerOpts{Logger: logger})

	if err := runner.app().Run(ctx, os.Args); err != nil {
		if errors.Is(err, shared.ErrNotImplemented) {
			logger.Warn("not implemented")
			stop()
			os.Exit(0)
		}
		stop()
		logger.Fatalf("application error: %v", err)
	}
}
