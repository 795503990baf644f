package postgresadapter

import (
	"errors"
	"fmt"
	"testing"

	"cardsync/contexts/study/quiz-service/domain/entities"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

func TestIsUniqueViolation(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{name: "pg unique", err: fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"}), want: true},
		{name: "gorm duplicated key", err: gorm.ErrDuplicatedKey, want: true},
		{name: "pg other", err: &pgconn.PgError{Code: "23502"}, want: false},
		{name: "plain", err: errors.New("boom"), want: false},
	}
	for _, tc := range cases {
		if got := isUniqueViolation(tc.err); got != tc.want {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, got)
		}
	}
}

func TestQuizModelMapping(t *testing.T) {
	row := quizModelFromEntity(entities.Quiz{ID: 3, Title: "  Go Basics ", FlashcardIDs: []int{1, 2}})
	if row.TitleKey != "go basics" {
		t.Fatalf("unexpected title key %q", row.TitleKey)
	}

	quiz := row.toEntity()
	if quiz.ID != 3 || len(quiz.FlashcardIDs) != 2 {
		t.Fatalf("unexpected quiz %+v", quiz)
	}
}
