package queries

import (
	"context"

	"cardsync/contexts/study/quiz-service/domain/entities"
	domainerrors "cardsync/contexts/study/quiz-service/domain/errors"
	"cardsync/contexts/study/quiz-service/ports"
)

type ListQuizzesUseCase struct {
	Quizzes ports.QuizRepository
}

func (uc ListQuizzesUseCase) Execute(ctx context.Context) ([]entities.Quiz, error) {
	return uc.Quizzes.FindAll(ctx)
}

type GetQuizUseCase struct {
	Quizzes ports.QuizRepository
}

func (uc GetQuizUseCase) Execute(ctx context.Context, quizID int) (entities.Quiz, error) {
	quiz, found, err := uc.Quizzes.FindByID(ctx, quizID)
	if err != nil {
		return entities.Quiz{}, err
	}
	if !found {
		return entities.Quiz{}, domainerrors.ErrQuizNotFound
	}
	return quiz, nil
}
