package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/matelog-ae/course-service/internal/models"
	"github.com/matelog-ae/course-service/internal/repositories"
)

type TopicPostgreSQL struct {
	db *gorm.DB
}

func NewTopicPostgreSQL(db *gorm.DB) repositories.TopicRepository {
	return &TopicPostgreSQL{db: db}
}

func (t *TopicPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Topic, error) {
	var topic models.Topic
	if err := t.db.WithContext(ctx).First(&topic, id).Error; err != nil {
		return nil, err
	}
	return &topic, nil
}

func (t *TopicPostgreSQL) GetByIDWithDetails(ctx context.Context, id uint) (*models.Topic, error) {
	var topic models.Topic
	if err := t.db.WithContext(ctx).
		Preload("Lesson").
		Preload("Contents", func(db *gorm.DB) *gorm.DB {
			return db.Where("is_active = ?", true).Order("sort_order ASC")
		}).
		Preload("Exercises", func(db *gorm.DB) *gorm.DB {
			return db.Where("is_active = ?", true).Order("sort_order ASC")
		}).
		Preload("Exercises.Options", func(db *gorm.DB) *gorm.DB {
			return db.Order("label ASC")
		}).
		First(&topic, id).Error; err != nil {
		return nil, err
	}
	return &topic, nil
}

func (t *TopicPostgreSQL) ListByLesson(ctx context.Context, lessonID uint) ([]*models.Topic, error) {
	var topics []*models.Topic
	if err := t.db.WithContext(ctx).
		Where("lesson_id = ? AND is_active = ?", lessonID, true).
		Order("sort_order ASC").
		Find(&topics).Error; err != nil {
		return nil, err
	}
	return topics, nil
}

func (t *TopicPostgreSQL) GetNextInLesson(ctx context.Context, lessonID uint, afterOrder int) (*models.Topic, error) {
	var topic models.Topic
	err := t.db.WithContext(ctx).
		Where("lesson_id = ? AND sort_order > ? AND is_active = ?", lessonID, afterOrder, true).
		Order("sort_order ASC").
		First(&topic).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &topic, nil
}
