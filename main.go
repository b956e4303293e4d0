package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"nitemix/cmd"
	applog "nitemix/internal/log"
	"nitemix/pkg/build"
)

// main wires build metadata, signal handling and the CLI. Commands own
// their full lifecycle; a termination signal cancels their context and each
// command drains its pipeline before returning.
func main() {
	if err := build.Initialize(); err != nil {
		applog.Fatalf("initializing build info: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.Execute(ctx); err != nil && !errors.Is(err, context.Canceled) {
		applog.Fatalf("%v", err)
	}
}
