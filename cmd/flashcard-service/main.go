package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"cardsync/internal/app/bootstrap"
)

// Flashcard service entrypoint.
// Data flow:
// 1) Load config.
// 2) Build app wiring (store, transport, loopback cache, replicator).
// 3) Serve HTTP and consume replicated changes until a signal arrives.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.BuildFlashcardService(ctx)
	if err != nil {
		slog.Error("flashcard service bootstrap failed", "event", "bootstrap_failed", "error", err.Error())
		os.Exit(1)
	}

	runErr := app.Run(ctx)
	if err := app.Close(); err != nil && runErr == nil {
		runErr = err
	}
	if runErr != nil {
		slog.Error("flashcard service stopped with error", "event", "process_failed", "error", runErr.Error())
		os.Exit(1)
	}
}
