package queries

import (
	"context"
	"log/slog"

	application "cardsync/contexts/study/flashcard-service/application"
	"cardsync/contexts/study/flashcard-service/domain/entities"
	"cardsync/contexts/study/flashcard-service/ports"
)

type ListFlashcardsUseCase struct {
	Flashcards ports.FlashcardRepository
	Logger     *slog.Logger
}

func (uc ListFlashcardsUseCase) Execute(ctx context.Context) ([]entities.Flashcard, error) {
	logger := application.ResolveLogger(uc.Logger)
	items, err := uc.Flashcards.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	logger.Debug("flashcards listed",
		"event", "flashcards_listed",
		"module", "study/flashcard-service",
		"layer", "application",
		"count", len(items),
	)
	return items, nil
}
