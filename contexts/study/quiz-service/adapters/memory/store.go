package memory

import (
	"context"
	"sort"
	"sync"

	"cardsync/contexts/study/quiz-service/domain/entities"
	domainerrors "cardsync/contexts/study/quiz-service/domain/errors"
)

type Store struct {
	mu      sync.RWMutex
	quizzes map[int]entities.Quiz
	titles  map[string]int
	lastID  int
}

func NewStore(seed []entities.Quiz) *Store {
	s := &Store{
		quizzes: make(map[int]entities.Quiz, len(seed)),
		titles:  make(map[string]int, len(seed)),
	}
	for _, quiz := range seed {
		s.quizzes[quiz.ID] = quiz.Normalize()
		s.titles[quiz.TitleKey()] = quiz.ID
		if quiz.ID > s.lastID {
			s.lastID = quiz.ID
		}
	}
	return s
}

func (s *Store) Create(_ context.Context, quiz entities.Quiz) (entities.Quiz, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.titles[quiz.TitleKey()]; exists {
		return entities.Quiz{}, domainerrors.ErrQuizAlreadyExists
	}
	s.lastID++
	quiz = quiz.Normalize()
	quiz.ID = s.lastID
	s.quizzes[quiz.ID] = quiz
	s.titles[quiz.TitleKey()] = quiz.ID
	return quiz.Normalize(), nil
}

func (s *Store) FindAll(_ context.Context) ([]entities.Quiz, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make([]entities.Quiz, 0, len(s.quizzes))
	for _, quiz := range s.quizzes {
		items = append(items, quiz.Normalize())
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].ID < items[j].ID
	})
	return items, nil
}

func (s *Store) FindByID(_ context.Context, quizID int) (entities.Quiz, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	quiz, ok := s.quizzes[quizID]
	if !ok {
		return entities.Quiz{}, false, nil
	}
	return quiz.Normalize(), true, nil
}
