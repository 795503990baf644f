package quizservice

import (
	"log/slog"

	httpadapter "cardsync/contexts/study/quiz-service/adapters/http"
	"cardsync/contexts/study/quiz-service/adapters/memory"
	"cardsync/contexts/study/quiz-service/application/commands"
	"cardsync/contexts/study/quiz-service/application/queries"
	"cardsync/contexts/study/quiz-service/domain/entities"
	"cardsync/contexts/study/quiz-service/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Store   *memory.Store
}

type Dependencies struct {
	Quizzes    ports.QuizRepository
	Flashcards ports.FlashcardDirectory
	// Guards may be nil; the breaker endpoint then reports no guards.
	Guards ports.GuardInspector
	Logger *slog.Logger
}

func NewModule(deps Dependencies) Module {
	return Module{
		Handler: httpadapter.Handler{
			CreateQuiz: commands.CreateQuizUseCase{
				Quizzes: deps.Quizzes,
				Logger:  deps.Logger,
			},
			ListQuizzes: queries.ListQuizzesUseCase{
				Quizzes: deps.Quizzes,
			},
			GetQuiz: queries.GetQuizUseCase{
				Quizzes: deps.Quizzes,
			},
			ListCards: queries.ListCardsUseCase{
				Flashcards: deps.Flashcards,
				Logger:     deps.Logger,
			},
			FlashcardServiceInfo: queries.FlashcardServiceInfoUseCase{
				Flashcards: deps.Flashcards,
				Logger:     deps.Logger,
			},
			GuardStatus: queries.GuardStatusUseCase{
				Guards: deps.Guards,
			},
			Logger: deps.Logger,
		},
	}
}

func NewInMemoryModule(seed []entities.Quiz, flashcards ports.FlashcardDirectory, guards ports.GuardInspector, logger *slog.Logger) Module {
	store := memory.NewStore(seed)
	module := NewModule(Dependencies{
		Quizzes:    store,
		Flashcards: flashcards,
		Guards:     guards,
		Logger:     logger,
	})
	module.Store = store
	return module
}
