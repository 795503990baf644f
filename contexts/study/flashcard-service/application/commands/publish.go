package commands

import (
	"context"
	"log/slog"

	"cardsync/contexts/study/flashcard-service/domain/entities"
	"cardsync/contexts/study/flashcard-service/ports"
)

// publishChange reports delivery failures through the returned error only.
// The local write has already been committed and is not rolled back.
func publishChange(
	ctx context.Context,
	publisher ports.ChangePublisher,
	logger *slog.Logger,
	op ports.ChangeOperation,
	flashcard entities.Flashcard,
) error {
	if publisher == nil {
		return nil
	}
	if err := publisher.PublishChange(ctx, op, flashcard); err != nil {
		logger.Warn("flashcard change not replicated",
			"event", "flashcard_change_not_replicated",
			"module", "study/flashcard-service",
			"layer", "application",
			"operation", string(op),
			"flashcard_id", flashcard.ID,
			"error", err.Error(),
		)
		return err
	}
	return nil
}
