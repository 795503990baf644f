package commands

import (
	"context"
	"log/slog"

	application "cardsync/contexts/study/flashcard-service/application"
	domainerrors "cardsync/contexts/study/flashcard-service/domain/errors"
	"cardsync/contexts/study/flashcard-service/ports"
)

type DeleteFlashcardUseCase struct {
	Flashcards ports.FlashcardRepository
	Changes    ports.ChangePublisher
	Logger     *slog.Logger
}

// Execute removes the flashcard and broadcasts the last known snapshot.
func (uc DeleteFlashcardUseCase) Execute(ctx context.Context, flashcardID int) (ChangeResult, error) {
	logger := application.ResolveLogger(uc.Logger)

	existing, found, err := uc.Flashcards.FindByID(ctx, flashcardID)
	if err != nil {
		return ChangeResult{}, err
	}
	if !found {
		return ChangeResult{}, domainerrors.ErrFlashcardNotFound
	}
	if err := uc.Flashcards.Delete(ctx, flashcardID); err != nil {
		return ChangeResult{}, err
	}

	logger.Info("flashcard deleted",
		"event", "flashcard_deleted",
		"module", "study/flashcard-service",
		"layer", "application",
		"flashcard_id", flashcardID,
	)
	return ChangeResult{
		Flashcard:      existing,
		ReplicationErr: publishChange(ctx, uc.Changes, logger, ports.ChangeDelete, existing),
	}, nil
}
