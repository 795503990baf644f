package memory

import (
	"context"
	"testing"

	"cardsync/contexts/study/flashcard-service/domain/entities"
)

func TestCreateAssignsIncreasingIDs(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()

	first, err := store.Create(ctx, entities.Flashcard{Question: "q1", Answer: "a1"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	second, err := store.Create(ctx, entities.Flashcard{Question: "q2", Answer: "a2"})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if first.ID != 1 || second.ID != 2 {
		t.Fatalf("expected ids 1 and 2, got %d and %d", first.ID, second.ID)
	}
}

func TestSaveUpsertsAndAdvancesIDs(t *testing.T) {
	store := NewStore(nil)
	ctx := context.Background()

	if err := store.Save(ctx, entities.Flashcard{ID: 10, Question: "replicated", Answer: "a"}); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if err := store.Save(ctx, entities.Flashcard{ID: 10, Question: "replicated again", Answer: "a"}); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	items, _ := store.FindAll(ctx)
	if len(items) != 1 || items[0].Question != "replicated again" {
		t.Fatalf("expected single upserted row, got %+v", items)
	}

	created, _ := store.Create(ctx, entities.Flashcard{Question: "local", Answer: "a"})
	if created.ID != 11 {
		t.Fatalf("expected id after replicated rows, got %d", created.ID)
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	store := NewStore([]entities.Flashcard{{ID: 1, Question: "q", Answer: "a"}})
	ctx := context.Background()

	if err := store.Delete(ctx, 1); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if err := store.Delete(ctx, 99); err != nil {
		t.Fatalf("deleting an absent id must succeed, got %v", err)
	}
	if _, found, _ := store.FindByID(ctx, 1); found {
		t.Fatal("expected flashcard to be gone")
	}
}

func TestFindAllOrdersByID(t *testing.T) {
	store := NewStore([]entities.Flashcard{{ID: 3}, {ID: 1}, {ID: 2}})

	items, err := store.FindAll(context.Background())
	if err != nil {
		t.Fatalf("find all failed: %v", err)
	}
	for i, item := range items {
		if item.ID != i+1 {
			t.Fatalf("expected ordered ids, got %+v", items)
		}
	}
}
