package queries

import (
	"context"
	"log/slog"

	application "cardsync/contexts/study/quiz-service/application"
	"cardsync/contexts/study/quiz-service/ports"
)

type ListCardsUseCase struct {
	Flashcards ports.FlashcardDirectory
	Logger     *slog.Logger
}

func (uc ListCardsUseCase) Execute(ctx context.Context) ports.FlashcardListing {
	listing := uc.Flashcards.ListFlashcards(ctx)
	if !listing.Available {
		application.ResolveLogger(uc.Logger).Warn("flashcards unavailable, serving fallback",
			"event", "quiz_cards_fallback",
			"module", "study/quiz-service",
			"layer", "application",
		)
	}
	return listing
}

type FlashcardServiceInfoUseCase struct {
	Flashcards ports.FlashcardDirectory
	Logger     *slog.Logger
}

func (uc FlashcardServiceInfoUseCase) Execute(ctx context.Context) ports.FlashcardServiceStatus {
	status := uc.Flashcards.ServiceInfo(ctx)
	if !status.Available {
		application.ResolveLogger(uc.Logger).Warn("flashcard service info unavailable, serving fallback",
			"event", "quiz_port_fallback",
			"module", "study/quiz-service",
			"layer", "application",
		)
	}
	return status
}

type GuardStatusUseCase struct {
	Guards ports.GuardInspector
}

func (uc GuardStatusUseCase) Execute(_ context.Context) []ports.GuardStatus {
	if uc.Guards == nil {
		return nil
	}
	return uc.Guards.GuardStatuses()
}
