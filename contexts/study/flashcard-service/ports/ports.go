package ports

import (
	"context"

	"cardsync/contexts/study/flashcard-service/domain/entities"
)

type FlashcardRepository interface {
	// Create stores a new flashcard and returns it with its assigned id.
	Create(ctx context.Context, flashcard entities.Flashcard) (entities.Flashcard, error)
	// Save upserts by id.
	Save(ctx context.Context, flashcard entities.Flashcard) error
	// Delete removes by id. Deleting an absent id is not an error.
	Delete(ctx context.Context, flashcardID int) error
	FindAll(ctx context.Context) ([]entities.Flashcard, error)
	FindByID(ctx context.Context, flashcardID int) (entities.Flashcard, bool, error)
}

type ChangeOperation string

const (
	ChangeCreate ChangeOperation = "CREATE"
	ChangeUpdate ChangeOperation = "UPDATE"
	ChangeDelete ChangeOperation = "DELETE"
)

// ChangePublisher broadcasts a committed local change to the other instances.
type ChangePublisher interface {
	PublishChange(ctx context.Context, op ChangeOperation, flashcard entities.Flashcard) error
}

type InstanceInfo struct {
	ServiceName string
	InstanceID  string
	Port        string
}
