package memory

import (
	"context"
	"sort"
	"sync"

	"cardsync/contexts/study/flashcard-service/domain/entities"
)

// Store is an in-process FlashcardRepository for single-binary runs and tests.
type Store struct {
	mu         sync.RWMutex
	flashcards map[int]entities.Flashcard
	lastID     int
}

func NewStore(seed []entities.Flashcard) *Store {
	s := &Store{flashcards: make(map[int]entities.Flashcard, len(seed))}
	for _, item := range seed {
		s.flashcards[item.ID] = item
		if item.ID > s.lastID {
			s.lastID = item.ID
		}
	}
	return s
}

func (s *Store) Create(_ context.Context, flashcard entities.Flashcard) (entities.Flashcard, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastID++
	flashcard.ID = s.lastID
	s.flashcards[flashcard.ID] = flashcard
	return flashcard, nil
}

func (s *Store) Save(_ context.Context, flashcard entities.Flashcard) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.flashcards[flashcard.ID] = flashcard
	// keep locally assigned ids clear of replicated ones
	if flashcard.ID > s.lastID {
		s.lastID = flashcard.ID
	}
	return nil
}

func (s *Store) Delete(_ context.Context, flashcardID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.flashcards, flashcardID)
	return nil
}

func (s *Store) FindAll(_ context.Context) ([]entities.Flashcard, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]entities.Flashcard, 0, len(s.flashcards))
	for _, item := range s.flashcards {
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].ID < items[j].ID
	})
	return items, nil
}

func (s *Store) FindByID(_ context.Context, flashcardID int) (entities.Flashcard, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.flashcards[flashcardID]
	return item, ok, nil
}
