package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"cardsync/internal/app/bootstrap"
)

// Quiz service entrypoint. Reads flashcards from flashcard-service through
// circuit breakers and serves quizzes until a signal arrives.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.BuildQuizService(ctx)
	if err != nil {
		slog.Error("quiz service bootstrap failed", "event", "bootstrap_failed", "error", err.Error())
		os.Exit(1)
	}

	runErr := app.Run(ctx)
	if err := app.Close(); err != nil && runErr == nil {
		runErr = err
	}
	if runErr != nil {
		slog.Error("quiz service stopped with error", "event", "process_failed", "error", runErr.Error())
		os.Exit(1)
	}
}
