package postgresadapter

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"cardsync/contexts/study/flashcard-service/domain/entities"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Migrate creates or updates the flashcards table.
func (r *Repository) Migrate(ctx context.Context) error {
	if err := r.db.WithContext(ctx).AutoMigrate(&flashcardModel{}); err != nil {
		return fmt.Errorf("migrate flashcards: %w", err)
	}
	return nil
}

func (r *Repository) Create(ctx context.Context, flashcard entities.Flashcard) (entities.Flashcard, error) {
	row := flashcardModelFromEntity(flashcard)
	row.ID = 0
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return entities.Flashcard{}, err
	}
	return row.toEntity(), nil
}

// syncSequenceSQL moves the id sequence past rows written with explicit ids,
// so a later local Create does not collide with a replicated row.
const syncSequenceSQL = `SELECT setval(pg_get_serial_sequence('flashcards', 'id'), GREATEST((SELECT MAX(id) FROM flashcards), 1))`

// Save inserts or overwrites the row with the flashcard id.
func (r *Repository) Save(ctx context.Context, flashcard entities.Flashcard) error {
	row := flashcardModelFromEntity(flashcard)
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
			Create(&row).
			Error
		if err != nil {
			return err
		}
		if err := tx.Exec(syncSequenceSQL).Error; err != nil {
			return fmt.Errorf("sync flashcard id sequence: %w", err)
		}
		return nil
	})
}

func (r *Repository) Delete(ctx context.Context, flashcardID int) error {
	result := r.db.WithContext(ctx).
		Where("id = ?", flashcardID).
		Delete(&flashcardModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		r.logger.Debug("flashcard already absent",
			"event", "flashcard_delete_noop",
			"module", "study/flashcard-service",
			"layer", "adapter",
			"flashcard_id", flashcardID,
		)
	}
	return nil
}

func (r *Repository) FindAll(ctx context.Context) ([]entities.Flashcard, error) {
	var rows []flashcardModel
	if err := r.db.WithContext(ctx).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	items := make([]entities.Flashcard, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) FindByID(ctx context.Context, flashcardID int) (entities.Flashcard, bool, error) {
	var row flashcardModel
	err := r.db.WithContext(ctx).
		Where("id = ?", flashcardID).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Flashcard{}, false, nil
		}
		return entities.Flashcard{}, false, err
	}
	return row.toEntity(), true, nil
}

type flashcardModel struct {
	ID       int    `gorm:"column:id;primaryKey;autoIncrement"`
	Question string `gorm:"column:question;not null"`
	Answer   string `gorm:"column:answer;not null"`
	Category string `gorm:"column:category"`
}

func (flashcardModel) TableName() string {
	return "flashcards"
}

func flashcardModelFromEntity(flashcard entities.Flashcard) flashcardModel {
	return flashcardModel{
		ID:       flashcard.ID,
		Question: flashcard.Question,
		Answer:   flashcard.Answer,
		Category: flashcard.Category,
	}
}

func (m flashcardModel) toEntity() entities.Flashcard {
	return entities.Flashcard{
		ID:       m.ID,
		Question: m.Question,
		Answer:   m.Answer,
		Category: m.Category,
	}
}
