package entities

// Flashcard is the quiz-side view of a flashcard owned by flashcard-service.
type Flashcard struct {
	ID       int
	Question string
	Answer   string
	Category string
}

// FlashcardServiceInfo identifies the flashcard-service instance that answered.
type FlashcardServiceInfo struct {
	Service    string
	InstanceID string
	Port       string
}
