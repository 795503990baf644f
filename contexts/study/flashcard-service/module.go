package flashcardservice

import (
	"log/slog"

	httpadapter "cardsync/contexts/study/flashcard-service/adapters/http"
	"cardsync/contexts/study/flashcard-service/adapters/memory"
	"cardsync/contexts/study/flashcard-service/application/commands"
	"cardsync/contexts/study/flashcard-service/application/queries"
	"cardsync/contexts/study/flashcard-service/domain/entities"
	"cardsync/contexts/study/flashcard-service/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Store   *memory.Store
}

type Dependencies struct {
	Flashcards ports.FlashcardRepository
	// Changes may be nil; the module then runs without replication.
	Changes  ports.ChangePublisher
	Instance ports.InstanceInfo
	Logger   *slog.Logger
}

func NewModule(deps Dependencies) Module {
	return Module{
		Handler: httpadapter.Handler{
			CreateFlashcard: commands.CreateFlashcardUseCase{
				Flashcards: deps.Flashcards,
				Changes:    deps.Changes,
				Logger:     deps.Logger,
			},
			UpdateFlashcard: commands.UpdateFlashcardUseCase{
				Flashcards: deps.Flashcards,
				Changes:    deps.Changes,
				Logger:     deps.Logger,
			},
			DeleteFlashcard: commands.DeleteFlashcardUseCase{
				Flashcards: deps.Flashcards,
				Changes:    deps.Changes,
				Logger:     deps.Logger,
			},
			ListFlashcards: queries.ListFlashcardsUseCase{
				Flashcards: deps.Flashcards,
				Logger:     deps.Logger,
			},
			GetFlashcard: queries.GetFlashcardUseCase{
				Flashcards: deps.Flashcards,
				Logger:     deps.Logger,
			},
			InstanceInfo: queries.InstanceInfoUseCase{
				Instance: deps.Instance,
			},
			Logger: deps.Logger,
		},
	}
}

func NewInMemoryModule(seed []entities.Flashcard, changes ports.ChangePublisher, logger *slog.Logger) Module {
	store := memory.NewStore(seed)
	module := NewModule(Dependencies{
		Flashcards: store,
		Changes:    changes,
		Instance: ports.InstanceInfo{
			ServiceName: "flashcard-service",
			InstanceID:  "local",
		},
		Logger: logger,
	})
	module.Store = store
	return module
}
