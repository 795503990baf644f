package queries

import (
	"context"
	"errors"
	"testing"

	"cardsync/contexts/study/quiz-service/adapters/memory"
	"cardsync/contexts/study/quiz-service/domain/entities"
	domainerrors "cardsync/contexts/study/quiz-service/domain/errors"
	"cardsync/contexts/study/quiz-service/ports"
)

type staticDirectory struct {
	listing ports.FlashcardListing
	status  ports.FlashcardServiceStatus
}

func (d staticDirectory) ListFlashcards(context.Context) ports.FlashcardListing { return d.listing }

func (d staticDirectory) ServiceInfo(context.Context) ports.FlashcardServiceStatus { return d.status }

func TestGetQuizNotFound(t *testing.T) {
	uc := GetQuizUseCase{Quizzes: memory.NewStore(nil)}

	_, err := uc.Execute(context.Background(), 3)
	if !errors.Is(err, domainerrors.ErrQuizNotFound) {
		t.Fatalf("expected ErrQuizNotFound, got %v", err)
	}
}

func TestListQuizzes(t *testing.T) {
	uc := ListQuizzesUseCase{Quizzes: memory.NewStore([]entities.Quiz{{ID: 2, Title: "B"}, {ID: 1, Title: "A"}})}

	items, err := uc.Execute(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(items) != 2 || items[0].ID != 1 {
		t.Fatalf("unexpected items %+v", items)
	}
}

func TestListCardsPassesFallbackThrough(t *testing.T) {
	uc := ListCardsUseCase{Flashcards: staticDirectory{listing: ports.FlashcardListing{Available: false}}}

	if listing := uc.Execute(context.Background()); listing.Available {
		t.Fatalf("expected unavailable listing")
	}
}

func TestFlashcardServiceInfo(t *testing.T) {
	uc := FlashcardServiceInfoUseCase{Flashcards: staticDirectory{status: ports.FlashcardServiceStatus{
		Info:      entities.FlashcardServiceInfo{InstanceID: "i-2"},
		Available: true,
	}}}

	status := uc.Execute(context.Background())
	if !status.Available || status.Info.InstanceID != "i-2" {
		t.Fatalf("unexpected status %+v", status)
	}
}

func TestGuardStatusWithoutInspector(t *testing.T) {
	if statuses := (GuardStatusUseCase{}).Execute(context.Background()); statuses != nil {
		t.Fatalf("expected no statuses, got %+v", statuses)
	}
}
