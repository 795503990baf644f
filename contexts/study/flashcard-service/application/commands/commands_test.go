package commands

import (
	"context"
	"errors"
	"testing"

	"cardsync/contexts/study/flashcard-service/adapters/memory"
	"cardsync/contexts/study/flashcard-service/domain/entities"
	domainerrors "cardsync/contexts/study/flashcard-service/domain/errors"
	"cardsync/contexts/study/flashcard-service/ports"
)

type publishedChange struct {
	op        ports.ChangeOperation
	flashcard entities.Flashcard
}

type recordingPublisher struct {
	changes []publishedChange
	err     error
}

func (p *recordingPublisher) PublishChange(_ context.Context, op ports.ChangeOperation, flashcard entities.Flashcard) error {
	if p.err != nil {
		return p.err
	}
	p.changes = append(p.changes, publishedChange{op: op, flashcard: flashcard})
	return nil
}

func TestCreateFlashcardStoresThenPublishes(t *testing.T) {
	store := memory.NewStore(nil)
	publisher := &recordingPublisher{}
	uc := CreateFlashcardUseCase{Flashcards: store, Changes: publisher}

	result, err := uc.Execute(context.Background(), CreateFlashcardCommand{
		Question: "  What is a goroutine?  ",
		Answer:   "A lightweight thread managed by the Go runtime",
		Category: "go",
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if result.Flashcard.ID == 0 {
		t.Fatal("expected assigned id")
	}
	if result.Flashcard.Question != "What is a goroutine?" {
		t.Fatalf("expected trimmed question, got %q", result.Flashcard.Question)
	}
	if result.ReplicationErr != nil {
		t.Fatalf("unexpected replication error: %v", result.ReplicationErr)
	}
	if len(publisher.changes) != 1 || publisher.changes[0].op != ports.ChangeCreate {
		t.Fatalf("expected one CREATE change, got %+v", publisher.changes)
	}
	if publisher.changes[0].flashcard != result.Flashcard {
		t.Fatalf("published snapshot differs from stored flashcard: %+v", publisher.changes[0].flashcard)
	}
}

func TestCreateFlashcardRejectsPresetID(t *testing.T) {
	publisher := &recordingPublisher{}
	uc := CreateFlashcardUseCase{Flashcards: memory.NewStore(nil), Changes: publisher}

	_, err := uc.Execute(context.Background(), CreateFlashcardCommand{ID: 4, Question: "q", Answer: "a"})
	if !errors.Is(err, domainerrors.ErrInvalidFlashcard) {
		t.Fatalf("expected invalid flashcard, got %v", err)
	}
	if len(publisher.changes) != 0 {
		t.Fatal("rejected create must not publish")
	}
}

func TestCreateFlashcardRequiresQuestionAndAnswer(t *testing.T) {
	uc := CreateFlashcardUseCase{Flashcards: memory.NewStore(nil)}

	_, err := uc.Execute(context.Background(), CreateFlashcardCommand{Question: "  ", Answer: "a"})
	if !errors.Is(err, domainerrors.ErrInvalidFlashcard) {
		t.Fatalf("expected invalid flashcard, got %v", err)
	}
}

func TestCreateFlashcardKeepsLocalWriteWhenPublishFails(t *testing.T) {
	store := memory.NewStore(nil)
	deliveryErr := errors.New("broker unavailable")
	uc := CreateFlashcardUseCase{Flashcards: store, Changes: &recordingPublisher{err: deliveryErr}}

	result, err := uc.Execute(context.Background(), CreateFlashcardCommand{Question: "q", Answer: "a"})
	if err != nil {
		t.Fatalf("create must succeed locally, got %v", err)
	}
	if !errors.Is(result.ReplicationErr, deliveryErr) {
		t.Fatalf("expected replication error, got %v", result.ReplicationErr)
	}
	if _, found, _ := store.FindByID(context.Background(), result.Flashcard.ID); !found {
		t.Fatal("local write must not be rolled back")
	}
}

func TestUpdateFlashcardRequiresExistingFlashcard(t *testing.T) {
	publisher := &recordingPublisher{}
	uc := UpdateFlashcardUseCase{Flashcards: memory.NewStore(nil), Changes: publisher}

	_, err := uc.Execute(context.Background(), UpdateFlashcardCommand{ID: 2, Question: "q", Answer: "a"})
	if !errors.Is(err, domainerrors.ErrFlashcardNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if len(publisher.changes) != 0 {
		t.Fatal("failed update must not publish")
	}
}

func TestUpdateFlashcardPublishesUpdate(t *testing.T) {
	store := memory.NewStore([]entities.Flashcard{{ID: 2, Question: "old", Answer: "a"}})
	publisher := &recordingPublisher{}
	uc := UpdateFlashcardUseCase{Flashcards: store, Changes: publisher}

	result, err := uc.Execute(context.Background(), UpdateFlashcardCommand{ID: 2, Question: "B", Answer: "a"})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	stored, _, _ := store.FindByID(context.Background(), 2)
	if stored.Question != "B" || result.Flashcard.Question != "B" {
		t.Fatalf("expected updated question, got stored=%q result=%q", stored.Question, result.Flashcard.Question)
	}
	if len(publisher.changes) != 1 || publisher.changes[0].op != ports.ChangeUpdate {
		t.Fatalf("expected one UPDATE change, got %+v", publisher.changes)
	}
}

func TestDeleteFlashcardPublishesLastSnapshot(t *testing.T) {
	existing := entities.Flashcard{ID: 9, Question: "q", Answer: "a", Category: "c"}
	store := memory.NewStore([]entities.Flashcard{existing})
	publisher := &recordingPublisher{}
	uc := DeleteFlashcardUseCase{Flashcards: store, Changes: publisher}

	if _, err := uc.Execute(context.Background(), 9); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, found, _ := store.FindByID(context.Background(), 9); found {
		t.Fatal("expected flashcard to be removed")
	}
	if len(publisher.changes) != 1 || publisher.changes[0].flashcard != existing || publisher.changes[0].op != ports.ChangeDelete {
		t.Fatalf("expected DELETE with last snapshot, got %+v", publisher.changes)
	}

	_, err := uc.Execute(context.Background(), 9)
	if !errors.Is(err, domainerrors.ErrFlashcardNotFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}

func TestCommandsRunWithoutPublisher(t *testing.T) {
	uc := CreateFlashcardUseCase{Flashcards: memory.NewStore(nil)}

	result, err := uc.Execute(context.Background(), CreateFlashcardCommand{Question: "q", Answer: "a"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if result.ReplicationErr != nil {
		t.Fatalf("unexpected replication error: %v", result.ReplicationErr)
	}
}
