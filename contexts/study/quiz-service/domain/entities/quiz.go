package entities

import "strings"

const MaxTitleLength = 200

type Quiz struct {
	ID           int
	Title        string
	FlashcardIDs []int
}

func (q Quiz) Normalize() Quiz {
	q.Title = strings.TrimSpace(q.Title)
	q.FlashcardIDs = append([]int(nil), q.FlashcardIDs...)
	return q
}

func (q Quiz) Validate() bool {
	if q.Title == "" || len(q.Title) > MaxTitleLength {
		return false
	}
	for _, id := range q.FlashcardIDs {
		if id <= 0 {
			return false
		}
	}
	return true
}

// TitleKey is the identity used for title uniqueness.
func (q Quiz) TitleKey() string {
	return strings.ToLower(strings.TrimSpace(q.Title))
}
