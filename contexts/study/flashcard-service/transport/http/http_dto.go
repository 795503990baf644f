package http

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type FlashcardDTO struct {
	ID       int    `json:"id"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Category string `json:"category"`
}

type CreateFlashcardRequest struct {
	ID       int    `json:"id"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Category string `json:"category"`
}

type UpdateFlashcardRequest struct {
	ID       int    `json:"id"`
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Category string `json:"category"`
}

// MutationResponse is what the handler returns for writes. Only Flashcard is
// written to the body; ReplicationError becomes a Warning header.
type MutationResponse struct {
	Flashcard        FlashcardDTO
	ReplicationError string
}

type InstanceInfoResponse struct {
	Service    string `json:"service"`
	InstanceID string `json:"instance_id"`
	Port       string `json:"port"`
}
