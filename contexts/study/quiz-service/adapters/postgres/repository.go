package postgresadapter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"cardsync/contexts/study/quiz-service/domain/entities"
	domainerrors "cardsync/contexts/study/quiz-service/domain/errors"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const uniqueViolation = "23505"

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{db: db, logger: logger}
}

func (r *Repository) Migrate(ctx context.Context) error {
	if err := r.db.WithContext(ctx).AutoMigrate(&quizModel{}); err != nil {
		return fmt.Errorf("migrate quizzes: %w", err)
	}
	return nil
}

func (r *Repository) Create(ctx context.Context, quiz entities.Quiz) (entities.Quiz, error) {
	row := quizModelFromEntity(quiz)
	row.ID = 0
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			r.logger.Info("quiz title already taken",
				"event", "quiz_create_conflict",
				"module", "study/quiz-service",
				"layer", "adapter",
			)
			return entities.Quiz{}, domainerrors.ErrQuizAlreadyExists
		}
		return entities.Quiz{}, err
	}
	return row.toEntity(), nil
}

func (r *Repository) FindAll(ctx context.Context) ([]entities.Quiz, error) {
	var rows []quizModel
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	items := make([]entities.Quiz, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) FindByID(ctx context.Context, quizID int) (entities.Quiz, bool, error) {
	var row quizModel
	err := r.db.WithContext(ctx).Where("id = ?", quizID).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Quiz{}, false, nil
		}
		return entities.Quiz{}, false, err
	}
	return row.toEntity(), true, nil
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolation
}

type quizModel struct {
	ID           int    `gorm:"column:id;primaryKey;autoIncrement"`
	Title        string `gorm:"column:title;not null"`
	TitleKey     string `gorm:"column:title_key;not null;uniqueIndex"`
	FlashcardIDs []int  `gorm:"column:flashcard_ids;type:jsonb;serializer:json"`
}

func (quizModel) TableName() string {
	return "quizzes"
}

func quizModelFromEntity(quiz entities.Quiz) quizModel {
	return quizModel{
		ID:           quiz.ID,
		Title:        quiz.Title,
		TitleKey:     quiz.TitleKey(),
		FlashcardIDs: append([]int(nil), quiz.FlashcardIDs...),
	}
}

func (m quizModel) toEntity() entities.Quiz {
	return entities.Quiz{
		ID:           m.ID,
		Title:        m.Title,
		FlashcardIDs: append([]int(nil), m.FlashcardIDs...),
	}
}
