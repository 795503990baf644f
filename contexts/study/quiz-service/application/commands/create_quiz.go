package commands

import (
	"context"
	"fmt"
	"log/slog"

	application "cardsync/contexts/study/quiz-service/application"
	"cardsync/contexts/study/quiz-service/domain/entities"
	domainerrors "cardsync/contexts/study/quiz-service/domain/errors"
	"cardsync/contexts/study/quiz-service/ports"
)

type CreateQuizCommand struct {
	ID           int
	Title        string
	FlashcardIDs []int
}

type CreateQuizUseCase struct {
	Quizzes ports.QuizRepository
	Logger  *slog.Logger
}

func (uc CreateQuizUseCase) Execute(ctx context.Context, cmd CreateQuizCommand) (entities.Quiz, error) {
	logger := application.ResolveLogger(uc.Logger)
	if cmd.ID != 0 {
		return entities.Quiz{}, fmt.Errorf("%w: id must not be set on create", domainerrors.ErrInvalidQuiz)
	}

	quiz := entities.Quiz{
		Title:        cmd.Title,
		FlashcardIDs: cmd.FlashcardIDs,
	}.Normalize()
	if !quiz.Validate() {
		return entities.Quiz{}, domainerrors.ErrInvalidQuiz
	}

	created, err := uc.Quizzes.Create(ctx, quiz)
	if err != nil {
		return entities.Quiz{}, err
	}
	logger.Info("quiz created",
		"event", "quiz_created",
		"module", "study/quiz-service",
		"layer", "application",
		"quiz_id", created.ID,
		"flashcards", len(created.FlashcardIDs),
	)
	return created, nil
}
