package commands

import (
	"context"
	"log/slog"

	application "cardsync/contexts/study/flashcard-service/application"
	"cardsync/contexts/study/flashcard-service/domain/entities"
	domainerrors "cardsync/contexts/study/flashcard-service/domain/errors"
	"cardsync/contexts/study/flashcard-service/ports"
)

type UpdateFlashcardCommand struct {
	ID       int
	Question string
	Answer   string
	Category string
}

type UpdateFlashcardUseCase struct {
	Flashcards ports.FlashcardRepository
	Changes    ports.ChangePublisher
	Logger     *slog.Logger
}

func (uc UpdateFlashcardUseCase) Execute(ctx context.Context, cmd UpdateFlashcardCommand) (ChangeResult, error) {
	logger := application.ResolveLogger(uc.Logger)

	_, found, err := uc.Flashcards.FindByID(ctx, cmd.ID)
	if err != nil {
		return ChangeResult{}, err
	}
	if !found {
		return ChangeResult{}, domainerrors.ErrFlashcardNotFound
	}

	flashcard := entities.Flashcard{
		ID:       cmd.ID,
		Question: cmd.Question,
		Answer:   cmd.Answer,
		Category: cmd.Category,
	}.Normalize()
	if !flashcard.ValidateContent() {
		return ChangeResult{}, domainerrors.ErrInvalidFlashcard
	}
	if err := uc.Flashcards.Save(ctx, flashcard); err != nil {
		return ChangeResult{}, err
	}

	logger.Info("flashcard updated",
		"event", "flashcard_updated",
		"module", "study/flashcard-service",
		"layer", "application",
		"flashcard_id", flashcard.ID,
	)
	return ChangeResult{
		Flashcard:      flashcard,
		ReplicationErr: publishChange(ctx, uc.Changes, logger, ports.ChangeUpdate, flashcard),
	}, nil
}
