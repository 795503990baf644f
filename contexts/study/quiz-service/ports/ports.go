package ports

import (
	"context"

	"cardsync/contexts/study/quiz-service/domain/entities"
)

type QuizRepository interface {
	// Create stores a new quiz and returns it with its assigned id.
	Create(ctx context.Context, quiz entities.Quiz) (entities.Quiz, error)
	FindAll(ctx context.Context) ([]entities.Quiz, error)
	FindByID(ctx context.Context, quizID int) (entities.Quiz, bool, error)
}

// FlashcardListing is the answer of a guarded flashcard lookup. Available is
// false when the value is a fallback because flashcard-service is unreachable.
type FlashcardListing struct {
	Flashcards []entities.Flashcard
	Available  bool
}

type FlashcardServiceStatus struct {
	Info      entities.FlashcardServiceInfo
	Available bool
}

// FlashcardDirectory reads from flashcard-service. Implementations never fail;
// unavailability is reported through the Available flags.
type FlashcardDirectory interface {
	ListFlashcards(ctx context.Context) FlashcardListing
	ServiceInfo(ctx context.Context) FlashcardServiceStatus
}

type GuardCounts struct {
	Requests             uint32
	TotalSuccesses       uint32
	TotalFailures        uint32
	ConsecutiveSuccesses uint32
	ConsecutiveFailures  uint32
}

type GuardStatus struct {
	Name   string
	State  string
	Counts GuardCounts
}

type GuardInspector interface {
	GuardStatuses() []GuardStatus
}
