package commands

import (
	"context"
	"fmt"
	"log/slog"

	application "cardsync/contexts/study/flashcard-service/application"
	"cardsync/contexts/study/flashcard-service/domain/entities"
	domainerrors "cardsync/contexts/study/flashcard-service/domain/errors"
	"cardsync/contexts/study/flashcard-service/ports"
)

type CreateFlashcardCommand struct {
	ID       int
	Question string
	Answer   string
	Category string
}

type CreateFlashcardUseCase struct {
	Flashcards ports.FlashcardRepository
	Changes    ports.ChangePublisher
	Logger     *slog.Logger
}

// ChangeResult is returned by every mutating use case. ReplicationErr is set
// when the change was stored locally but could not be broadcast.
type ChangeResult struct {
	Flashcard      entities.Flashcard
	ReplicationErr error
}

func (uc CreateFlashcardUseCase) Execute(ctx context.Context, cmd CreateFlashcardCommand) (ChangeResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	if cmd.ID != 0 {
		return ChangeResult{}, fmt.Errorf("%w: id must not be set on create", domainerrors.ErrInvalidFlashcard)
	}

	flashcard := entities.Flashcard{
		Question: cmd.Question,
		Answer:   cmd.Answer,
		Category: cmd.Category,
	}.Normalize()
	if !flashcard.ValidateContent() {
		return ChangeResult{}, domainerrors.ErrInvalidFlashcard
	}

	created, err := uc.Flashcards.Create(ctx, flashcard)
	if err != nil {
		return ChangeResult{}, err
	}

	logger.Info("flashcard created",
		"event", "flashcard_created",
		"module", "study/flashcard-service",
		"layer", "application",
		"flashcard_id", created.ID,
	)
	return ChangeResult{
		Flashcard:      created,
		ReplicationErr: publishChange(ctx, uc.Changes, logger, ports.ChangeCreate, created),
	}, nil
}
