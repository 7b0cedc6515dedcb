package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/matelog-ae/course-service/internal/models"
	"github.com/matelog-ae/course-service/internal/repositories"
)

type AnswerPostgreSQL struct {
	db *gorm.DB
}

func NewAnswerPostgreSQL(db *gorm.DB) repositories.AnswerRepository {
	return &AnswerPostgreSQL{db: db}
}

func (a *AnswerPostgreSQL) Create(ctx context.Context, record *models.AnswerRecord) error {
	return a.db.WithContext(ctx).Create(record).Error
}

func (a *AnswerPostgreSQL) GetByExercise(ctx context.Context, userID, exerciseID, progressID uint) (*models.AnswerRecord, error) {
	var record models.AnswerRecord
	err := a.db.WithContext(ctx).
		Where("user_id = ? AND exercise_id = ? AND topic_progress_id = ?", userID, exerciseID, progressID).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &record, nil
}

func (a *AnswerPostgreSQL) ListByEpoch(ctx context.Context, userID, progressID uint) ([]*models.AnswerRecord, error) {
	var records []*models.AnswerRecord
	if err := a.db.WithContext(ctx).
		Where("user_id = ? AND topic_progress_id = ?", userID, progressID).
		Order("created_at ASC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

func (a *AnswerPostgreSQL) DeleteEpoch(ctx context.Context, userID, progressID uint) error {
	return a.db.WithContext(ctx).
		Where("user_id = ? AND topic_progress_id = ?", userID, progressID).
		Delete(&models.AnswerRecord{}).Error
}

func (a *AnswerPostgreSQL) CountByEpoch(ctx context.Context, userID, progressID uint) (int64, error) {
	var count int64
	if err := a.db.WithContext(ctx).
		Model(&models.AnswerRecord{}).
		Where("user_id = ? AND topic_progress_id = ?", userID, progressID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
