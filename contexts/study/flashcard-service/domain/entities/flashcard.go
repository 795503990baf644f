package entities

import (
	"strconv"
	"strings"
)

const (
	MaxQuestionLength = 500
	MaxAnswerLength   = 2000
	MaxCategoryLength = 100
)

type Flashcard struct {
	ID       int
	Question string
	Answer   string
	Category string
}

func (f Flashcard) EntityID() string {
	return strconv.Itoa(f.ID)
}

func (f Flashcard) Normalize() Flashcard {
	f.Question = strings.TrimSpace(f.Question)
	f.Answer = strings.TrimSpace(f.Answer)
	f.Category = strings.TrimSpace(f.Category)
	return f
}

// ValidateContent checks the editable fields; identity is checked by the caller.
func (f Flashcard) ValidateContent() bool {
	return f.Question != "" &&
		len(f.Question) <= MaxQuestionLength &&
		f.Answer != "" &&
		len(f.Answer) <= MaxAnswerLength &&
		len(f.Category) <= MaxCategoryLength
}
