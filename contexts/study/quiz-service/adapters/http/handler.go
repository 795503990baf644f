package httpadapter

import (
	"context"
	"log/slog"

	"cardsync/contexts/study/quiz-service/application/commands"
	"cardsync/contexts/study/quiz-service/application/queries"
	"cardsync/contexts/study/quiz-service/domain/entities"
	httptransport "cardsync/contexts/study/quiz-service/transport/http"
)

type Handler struct {
	CreateQuiz           commands.CreateQuizUseCase
	ListQuizzes          queries.ListQuizzesUseCase
	GetQuiz              queries.GetQuizUseCase
	ListCards            queries.ListCardsUseCase
	FlashcardServiceInfo queries.FlashcardServiceInfoUseCase
	GuardStatus          queries.GuardStatusUseCase
	Logger               *slog.Logger
}

// ListQuizzesHandler godoc
// @Summary List quizzes
// @Description Answers 204 when no quiz exists.
// @Tags quiz-service
// @Produce json
// @Success 200 {array} httptransport.QuizDTO
// @Success 204
// @Failure 500 {object} httptransport.ErrorResponse
// @Router /quizzes [get]
func (h Handler) ListQuizzesHandler(ctx context.Context) ([]httptransport.QuizDTO, error) {
	items, err := h.ListQuizzes.Execute(ctx)
	if err != nil {
		return nil, err
	}
	result := make([]httptransport.QuizDTO, 0, len(items))
	for _, item := range items {
		result = append(result, mapQuiz(item))
	}
	return result, nil
}

// GetQuizHandler godoc
// @Summary Get quiz
// @Description Answers 204 when the quiz does not exist.
// @Tags quiz-service
// @Produce json
// @Param id path int true "Quiz id"
// @Success 200 {object} httptransport.QuizDTO
// @Success 204
// @Failure 400 {object} httptransport.ErrorResponse
// @Router /quizzes/{id} [get]
func (h Handler) GetQuizHandler(ctx context.Context, quizID int) (httptransport.QuizDTO, error) {
	item, err := h.GetQuiz.Execute(ctx, quizID)
	if err != nil {
		return httptransport.QuizDTO{}, err
	}
	return mapQuiz(item), nil
}

// CreateQuizHandler godoc
// @Summary Create quiz
// @Description The id must be omitted or zero.
// @Tags quiz-service
// @Accept json
// @Produce json
// @Param request body httptransport.CreateQuizRequest true "Quiz"
// @Success 201 {object} httptransport.QuizDTO
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 409 {object} httptransport.ErrorResponse
// @Router /quizzes [post]
func (h Handler) CreateQuizHandler(ctx context.Context, req httptransport.CreateQuizRequest) (httptransport.QuizDTO, error) {
	created, err := h.CreateQuiz.Execute(ctx, commands.CreateQuizCommand{
		ID:           req.ID,
		Title:        req.Title,
		FlashcardIDs: req.FlashcardIDs,
	})
	if err != nil {
		return httptransport.QuizDTO{}, err
	}
	return mapQuiz(created), nil
}

// ListCardsHandler godoc
// @Summary List flashcards through quiz-service
// @Description Reads flashcard-service behind a circuit breaker. Answers 503 with an empty body while it is unavailable.
// @Tags quiz-service
// @Produce json
// @Success 200 {array} httptransport.FlashcardDTO
// @Success 204
// @Failure 503
// @Router /quizzes/cards [get]
func (h Handler) ListCardsHandler(ctx context.Context) httptransport.CardsResponse {
	listing := h.ListCards.Execute(ctx)
	items := make([]httptransport.FlashcardDTO, 0, len(listing.Flashcards))
	for _, item := range listing.Flashcards {
		items = append(items, httptransport.FlashcardDTO{
			ID:       item.ID,
			Question: item.Question,
			Answer:   item.Answer,
			Category: item.Category,
		})
	}
	return httptransport.CardsResponse{Flashcards: items, Available: listing.Available}
}

// FlashcardServiceInfoHandler godoc
// @Summary Flashcard service instance
// @Description Reports which flashcard-service instance answered.
// @Tags quiz-service
// @Produce json
// @Success 200 {object} httptransport.FlashcardServiceInfoDTO
// @Failure 503 {string} string "Flashcard Service is currently unavailable"
// @Router /quizzes/port [get]
func (h Handler) FlashcardServiceInfoHandler(ctx context.Context) httptransport.FlashcardServiceInfoResponse {
	status := h.FlashcardServiceInfo.Execute(ctx)
	return httptransport.FlashcardServiceInfoResponse{
		Info: httptransport.FlashcardServiceInfoDTO{
			Service:    status.Info.Service,
			InstanceID: status.Info.InstanceID,
			Port:       status.Info.Port,
		},
		Available: status.Available,
	}
}

// GuardStatusHandler godoc
// @Summary Circuit breaker state
// @Tags quiz-service
// @Produce json
// @Success 200 {object} httptransport.GuardStatusResponse
// @Router /quizzes/breaker [get]
func (h Handler) GuardStatusHandler(ctx context.Context) httptransport.GuardStatusResponse {
	statuses := h.GuardStatus.Execute(ctx)
	resp := httptransport.GuardStatusResponse{Guards: make([]httptransport.GuardStatusDTO, 0, len(statuses))}
	for _, status := range statuses {
		resp.Guards = append(resp.Guards, httptransport.GuardStatusDTO{
			Name:  status.Name,
			State: status.State,
			Counts: httptransport.GuardCountsDTO{
				Requests:             status.Counts.Requests,
				TotalSuccesses:       status.Counts.TotalSuccesses,
				TotalFailures:        status.Counts.TotalFailures,
				ConsecutiveSuccesses: status.Counts.ConsecutiveSuccesses,
				ConsecutiveFailures:  status.Counts.ConsecutiveFailures,
			},
		})
	}
	return resp
}

func mapQuiz(item entities.Quiz) httptransport.QuizDTO {
	ids := item.FlashcardIDs
	if ids == nil {
		ids = []int{}
	}
	return httptransport.QuizDTO{
		ID:           item.ID,
		Title:        item.Title,
		FlashcardIDs: ids,
	}
}
