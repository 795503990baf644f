package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type QuizDTO struct {
	ID           int    `json:"id"`
	Title        string `json:"title"`
	FlashcardIDs []int  `json:"flashcard_ids"`
}

type CreateQuizRequest struct {
	ID           int    `json:"id"`
	Title        string `json:"title"`
	FlashcardIDs []int  `json:"flashcard_ids"`
}

type FlashcardDTO struct {
	ID       int    `json:"id"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Category string `json:"category"`
}

// CardsResponse is the handler result for the guarded listing. Only Flashcards
// is written to the body.
type CardsResponse struct {
	Flashcards []FlashcardDTO
	Available  bool
}

type FlashcardServiceInfoDTO struct {
	Service    string `json:"service"`
	InstanceID string `json:"instance_id"`
	Port       string `json:"port"`
}

type FlashcardServiceInfoResponse struct {
	Info      FlashcardServiceInfoDTO
	Available bool
}

type GuardCountsDTO struct {
	Requests             uint32 `json:"requests"`
	TotalSuccesses       uint32 `json:"total_successes"`
	TotalFailures        uint32 `json:"total_failures"`
	ConsecutiveSuccesses uint32 `json:"consecutive_successes"`
	ConsecutiveFailures  uint32 `json:"consecutive_failures"`
}

type GuardStatusDTO struct {
	Name   string         `json:"name"`
	State  string         `json:"state"`
	Counts GuardCountsDTO `json:"counts"`
}

type GuardStatusResponse struct {
	Guards []GuardStatusDTO `json:"guards"`
}
