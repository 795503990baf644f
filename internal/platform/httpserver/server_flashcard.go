package httpserver

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	flashcardservice "cardsync/contexts/study/flashcard-service"
	flashcarderrors "cardsync/contexts/study/flashcard-service/domain/errors"
	flashcardhttp "cardsync/contexts/study/flashcard-service/transport/http"
)

type flashcardRoutes struct {
	module flashcardservice.Module
}

func NewFlashcardServer(module flashcardservice.Module, logger *slog.Logger, addr string) *Server {
	s := newServer(logger, addr)
	routes := flashcardRoutes{module: module}

	s.mux.HandleFunc("GET /flashcards", routes.handleList)
	s.mux.HandleFunc("POST /flashcards", routes.handleCreate)
	s.mux.HandleFunc("GET /flashcards/port", routes.handleInstanceInfo)
	s.mux.HandleFunc("GET /flashcards/{id}", routes.handleGet)
	s.mux.HandleFunc("PUT /flashcards/{id}", routes.handleUpdate)
	s.mux.HandleFunc("DELETE /flashcards/{id}", routes.handleDelete)
	return s
}

func (rt flashcardRoutes) handleList(w http.ResponseWriter, r *http.Request) {
	resp, err := rt.module.Handler.ListFlashcardsHandler(r.Context())
	if err != nil {
		writeFlashcardDomainError(w, err)
		return
	}
	if len(resp) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (rt flashcardRoutes) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeFlashcardError(w, http.StatusBadRequest, "invalid_id", "id must be a positive integer")
		return
	}
	resp, err := rt.module.Handler.GetFlashcardHandler(r.Context(), id)
	if err != nil {
		writeFlashcardDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (rt flashcardRoutes) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req flashcardhttp.CreateFlashcardRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeFlashcardError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := rt.module.Handler.CreateFlashcardHandler(r.Context(), req)
	if err != nil {
		writeFlashcardDomainError(w, err)
		return
	}
	writeFlashcardMutation(w, http.StatusCreated, resp)
}

func (rt flashcardRoutes) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeFlashcardError(w, http.StatusBadRequest, "invalid_id", "id must be a positive integer")
		return
	}
	var req flashcardhttp.UpdateFlashcardRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeFlashcardError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := rt.module.Handler.UpdateFlashcardHandler(r.Context(), id, req)
	if err != nil {
		writeFlashcardDomainError(w, err)
		return
	}
	writeFlashcardMutation(w, http.StatusOK, resp)
}

func (rt flashcardRoutes) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeFlashcardError(w, http.StatusBadRequest, "invalid_id", "id must be a positive integer")
		return
	}
	resp, err := rt.module.Handler.DeleteFlashcardHandler(r.Context(), id)
	if err != nil {
		writeFlashcardDomainError(w, err)
		return
	}
	writeFlashcardMutation(w, http.StatusOK, resp)
}

func (rt flashcardRoutes) handleInstanceInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, rt.module.Handler.InstanceInfoHandler(r.Context()))
}

// writeFlashcardMutation answers with the stored flashcard. A change that was
// stored but not replicated is still a success and carries a Warning header.
func writeFlashcardMutation(w http.ResponseWriter, status int, resp flashcardhttp.MutationResponse) {
	if resp.ReplicationError != "" {
		w.Header().Set("Warning", `199 cardsync "change not replicated: `+sanitizeWarning(resp.ReplicationError)+`"`)
	}
	writeJSON(w, status, resp.Flashcard)
}

func sanitizeWarning(message string) string {
	quoted := strconv.Quote(message)
	return quoted[1 : len(quoted)-1]
}

func writeFlashcardDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, flashcarderrors.ErrFlashcardNotFound):
		writeFlashcardError(w, http.StatusNotFound, "flashcard_not_found", err.Error())
	case errors.Is(err, flashcarderrors.ErrFlashcardIDMismatch):
		writeFlashcardError(w, http.StatusBadRequest, "flashcard_id_mismatch", err.Error())
	case errors.Is(err, flashcarderrors.ErrInvalidFlashcard):
		writeFlashcardError(w, http.StatusBadRequest, "invalid_flashcard", err.Error())
	default:
		writeFlashcardError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeFlashcardError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, flashcardhttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}
