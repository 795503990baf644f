package httpadapter

import (
	"context"
	"log/slog"

	application "cardsync/contexts/study/flashcard-service/application"
	"cardsync/contexts/study/flashcard-service/application/commands"
	"cardsync/contexts/study/flashcard-service/application/queries"
	"cardsync/contexts/study/flashcard-service/domain/entities"
	domainerrors "cardsync/contexts/study/flashcard-service/domain/errors"
	httptransport "cardsync/contexts/study/flashcard-service/transport/http"
)

type Handler struct {
	CreateFlashcard commands.CreateFlashcardUseCase
	UpdateFlashcard commands.UpdateFlashcardUseCase
	DeleteFlashcard commands.DeleteFlashcardUseCase
	ListFlashcards  queries.ListFlashcardsUseCase
	GetFlashcard    queries.GetFlashcardUseCase
	InstanceInfo    queries.InstanceInfoUseCase
	Logger          *slog.Logger
}

// ListFlashcardsHandler godoc
// @Summary List flashcards
// @Description Returns every flashcard known to this instance. Answers 204 when there are none.
// @Tags flashcard-service
// @Produce json
// @Success 200 {array} httptransport.FlashcardDTO
// @Success 204
// @Failure 500 {object} httptransport.ErrorResponse
// @Router /flashcards [get]
func (h Handler) ListFlashcardsHandler(ctx context.Context) ([]httptransport.FlashcardDTO, error) {
	items, err := h.ListFlashcards.Execute(ctx)
	if err != nil {
		return nil, err
	}
	return mapFlashcards(items), nil
}

// GetFlashcardHandler godoc
// @Summary Get flashcard
// @Tags flashcard-service
// @Produce json
// @Param id path int true "Flashcard id"
// @Success 200 {object} httptransport.FlashcardDTO
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Router /flashcards/{id} [get]
func (h Handler) GetFlashcardHandler(ctx context.Context, flashcardID int) (httptransport.FlashcardDTO, error) {
	item, err := h.GetFlashcard.Execute(ctx, flashcardID)
	if err != nil {
		return httptransport.FlashcardDTO{}, err
	}
	return mapFlashcard(item), nil
}

// CreateFlashcardHandler godoc
// @Summary Create flashcard
// @Description Stores the flashcard and replicates it to the other instances. The id must be omitted or zero.
// @Tags flashcard-service
// @Accept json
// @Produce json
// @Param request body httptransport.CreateFlashcardRequest true "Flashcard"
// @Success 201 {object} httptransport.FlashcardDTO
// @Header 201 {string} Warning "Set when the change could not be replicated"
// @Failure 400 {object} httptransport.ErrorResponse
// @Router /flashcards [post]
func (h Handler) CreateFlashcardHandler(
	ctx context.Context,
	req httptransport.CreateFlashcardRequest,
) (httptransport.MutationResponse, error) {
	result, err := h.CreateFlashcard.Execute(ctx, commands.CreateFlashcardCommand{
		ID:       req.ID,
		Question: req.Question,
		Answer:   req.Answer,
		Category: req.Category,
	})
	if err != nil {
		return httptransport.MutationResponse{}, err
	}
	return h.mutationResponse(result), nil
}

// UpdateFlashcardHandler godoc
// @Summary Update flashcard
// @Tags flashcard-service
// @Accept json
// @Produce json
// @Param id path int true "Flashcard id"
// @Param request body httptransport.UpdateFlashcardRequest true "Flashcard"
// @Success 200 {object} httptransport.FlashcardDTO
// @Header 200 {string} Warning "Set when the change could not be replicated"
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Router /flashcards/{id} [put]
func (h Handler) UpdateFlashcardHandler(
	ctx context.Context,
	flashcardID int,
	req httptransport.UpdateFlashcardRequest,
) (httptransport.MutationResponse, error) {
	if req.ID != 0 && req.ID != flashcardID {
		return httptransport.MutationResponse{}, domainerrors.ErrFlashcardIDMismatch
	}
	result, err := h.UpdateFlashcard.Execute(ctx, commands.UpdateFlashcardCommand{
		ID:       flashcardID,
		Question: req.Question,
		Answer:   req.Answer,
		Category: req.Category,
	})
	if err != nil {
		return httptransport.MutationResponse{}, err
	}
	return h.mutationResponse(result), nil
}

// DeleteFlashcardHandler godoc
// @Summary Delete flashcard
// @Tags flashcard-service
// @Produce json
// @Param id path int true "Flashcard id"
// @Success 200 {object} httptransport.FlashcardDTO
// @Header 200 {string} Warning "Set when the change could not be replicated"
// @Failure 404 {object} httptransport.ErrorResponse
// @Router /flashcards/{id} [delete]
func (h Handler) DeleteFlashcardHandler(ctx context.Context, flashcardID int) (httptransport.MutationResponse, error) {
	result, err := h.DeleteFlashcard.Execute(ctx, flashcardID)
	if err != nil {
		return httptransport.MutationResponse{}, err
	}
	return h.mutationResponse(result), nil
}

// InstanceInfoHandler godoc
// @Summary Instance information
// @Description Reports which instance served the request.
// @Tags flashcard-service
// @Produce json
// @Success 200 {object} httptransport.InstanceInfoResponse
// @Router /flashcards/port [get]
func (h Handler) InstanceInfoHandler(ctx context.Context) httptransport.InstanceInfoResponse {
	info := h.InstanceInfo.Execute(ctx)
	return httptransport.InstanceInfoResponse{
		Service:    info.ServiceName,
		InstanceID: info.InstanceID,
		Port:       info.Port,
	}
}

func (h Handler) mutationResponse(result commands.ChangeResult) httptransport.MutationResponse {
	resp := httptransport.MutationResponse{Flashcard: mapFlashcard(result.Flashcard)}
	if result.ReplicationErr != nil {
		application.ResolveLogger(h.Logger).Warn("responding without replication",
			"event", "http_flashcard_replication_degraded",
			"module", "study/flashcard-service",
			"layer", "transport",
			"flashcard_id", result.Flashcard.ID,
		)
		resp.ReplicationError = result.ReplicationErr.Error()
	}
	return resp
}

func mapFlashcard(item entities.Flashcard) httptransport.FlashcardDTO {
	return httptransport.FlashcardDTO{
		ID:       item.ID,
		Question: item.Question,
		Answer:   item.Answer,
		Category: item.Category,
	}
}

func mapFlashcards(items []entities.Flashcard) []httptransport.FlashcardDTO {
	result := make([]httptransport.FlashcardDTO, 0, len(items))
	for _, item := range items {
		result = append(result, mapFlashcard(item))
	}
	return result
}
