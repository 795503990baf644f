package queries

import (
	"context"
	"log/slog"

	"cardsync/contexts/study/flashcard-service/domain/entities"
	domainerrors "cardsync/contexts/study/flashcard-service/domain/errors"
	"cardsync/contexts/study/flashcard-service/ports"
)

type GetFlashcardUseCase struct {
	Flashcards ports.FlashcardRepository
	Logger     *slog.Logger
}

func (uc GetFlashcardUseCase) Execute(ctx context.Context, flashcardID int) (entities.Flashcard, error) {
	item, found, err := uc.Flashcards.FindByID(ctx, flashcardID)
	if err != nil {
		return entities.Flashcard{}, err
	}
	if !found {
		return entities.Flashcard{}, domainerrors.ErrFlashcardNotFound
	}
	return item, nil
}

type InstanceInfoUseCase struct {
	Instance ports.InstanceInfo
}

// Execute reports which instance answered, so callers can observe load balancing.
func (uc InstanceInfoUseCase) Execute(_ context.Context) ports.InstanceInfo {
	return uc.Instance
}
