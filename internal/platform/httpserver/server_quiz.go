package httpserver

import (
	"errors"
	"log/slog"
	"net/http"

	quizservice "cardsync/contexts/study/quiz-service"
	quizerrors "cardsync/contexts/study/quiz-service/domain/errors"
	quizhttp "cardsync/contexts/study/quiz-service/transport/http"
)

const flashcardServiceUnavailable = "Flashcard Service is currently unavailable"

type quizRoutes struct {
	module quizservice.Module
}

func NewQuizServer(module quizservice.Module, logger *slog.Logger, addr string) *Server {
	s := newServer(logger, addr)
	routes := quizRoutes{module: module}

	s.mux.HandleFunc("GET /quizzes", routes.handleList)
	s.mux.HandleFunc("POST /quizzes", routes.handleCreate)
	s.mux.HandleFunc("GET /quizzes/cards", routes.handleCards)
	s.mux.HandleFunc("GET /quizzes/port", routes.handleFlashcardServiceInfo)
	s.mux.HandleFunc("GET /quizzes/breaker", routes.handleGuardStatus)
	s.mux.HandleFunc("GET /quizzes/{id}", routes.handleGet)
	return s
}

func (rt quizRoutes) handleList(w http.ResponseWriter, r *http.Request) {
	resp, err := rt.module.Handler.ListQuizzesHandler(r.Context())
	if err != nil {
		writeQuizDomainError(w, err)
		return
	}
	if len(resp) == 0 {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (rt quizRoutes) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeQuizError(w, http.StatusBadRequest, "invalid_id", "id must be a positive integer")
		return
	}
	resp, err := rt.module.Handler.GetQuizHandler(r.Context(), id)
	if err != nil {
		writeQuizDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (rt quizRoutes) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req quizhttp.CreateQuizRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeQuizError(w, http.StatusBadRequest, "invalid_json", "request body must be valid JSON")
		return
	}
	resp, err := rt.module.Handler.CreateQuizHandler(r.Context(), req)
	if err != nil {
		writeQuizDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

func (rt quizRoutes) handleCards(w http.ResponseWriter, r *http.Request) {
	resp := rt.module.Handler.ListCardsHandler(r.Context())
	switch {
	case !resp.Available:
		w.WriteHeader(http.StatusServiceUnavailable)
	case len(resp.Flashcards) == 0:
		w.WriteHeader(http.StatusNoContent)
	default:
		writeJSON(w, http.StatusOK, resp.Flashcards)
	}
}

func (rt quizRoutes) handleFlashcardServiceInfo(w http.ResponseWriter, r *http.Request) {
	resp := rt.module.Handler.FlashcardServiceInfoHandler(r.Context())
	if !resp.Available {
		writeText(w, http.StatusServiceUnavailable, flashcardServiceUnavailable)
		return
	}
	writeJSON(w, http.StatusOK, resp.Info)
}

func (rt quizRoutes) handleGuardStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, rt.module.Handler.GuardStatusHandler(r.Context()))
}

func writeQuizDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, quizerrors.ErrQuizNotFound):
		// absent quizzes answer 204, not 404
		w.WriteHeader(http.StatusNoContent)
	case errors.Is(err, quizerrors.ErrInvalidQuiz):
		writeQuizError(w, http.StatusBadRequest, "invalid_quiz", err.Error())
	case errors.Is(err, quizerrors.ErrQuizAlreadyExists):
		writeQuizError(w, http.StatusConflict, "quiz_already_exists", err.Error())
	default:
		writeQuizError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

func writeQuizError(w http.ResponseWriter, status int, code string, message string) {
	writeJSON(w, status, quizhttp.ErrorResponse{
		Code:    code,
		Message: message,
	})
}
