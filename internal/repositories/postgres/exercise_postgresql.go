package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/matelog-ae/course-service/internal/models"
	"github.com/matelog-ae/course-service/internal/repositories"
)

type ExercisePostgreSQL struct {
	db *gorm.DB
}

func NewExercisePostgreSQL(db *gorm.DB) repositories.ExerciseRepository {
	return &ExercisePostgreSQL{db: db}
}

func (e *ExercisePostgreSQL) GetByID(ctx context.Context, id uint) (*models.Exercise, error) {
	var exercise models.Exercise
	if err := e.db.WithContext(ctx).
		Preload("Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("label ASC")
		}).
		First(&exercise, id).Error; err != nil {
		return nil, err
	}
	return &exercise, nil
}

func (e *ExercisePostgreSQL) ListByTopic(ctx context.Context, topicID uint) ([]models.Exercise, error) {
	var exercises []models.Exercise
	if err := e.db.WithContext(ctx).
		Where("topic_id = ? AND is_active = ?", topicID, true).
		Order("sort_order ASC").
		Preload("Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("label ASC")
		}).
		Find(&exercises).Error; err != nil {
		return nil, err
	}
	return exercises, nil
}

// Save writes the exercise and its options in one transaction so the answer
// key can never point at an option that was not stored.
func (e *ExercisePostgreSQL) Save(ctx context.Context, exercise *models.Exercise) error {
	return e.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Options").Save(exercise).Error; err != nil {
			return err
		}

		if err := tx.Where("exercise_id = ?", exercise.ID).
			Delete(&models.ChoiceOption{}).Error; err != nil {
			return err
		}

		if len(exercise.Options) == 0 {
			return nil
		}
		for i := range exercise.Options {
			exercise.Options[i].ID = 0
			exercise.Options[i].ExerciseID = exercise.ID
		}
		return tx.Create(&exercise.Options).Error
	})
}
