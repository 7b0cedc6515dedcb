package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/matelog-ae/course-service/internal/models"
	"github.com/matelog-ae/course-service/internal/repositories"
)

type LessonPostgreSQL struct {
	db *gorm.DB
}

func NewLessonPostgreSQL(db *gorm.DB) repositories.LessonRepository {
	return &LessonPostgreSQL{db: db}
}

func (l *LessonPostgreSQL) GetByID(ctx context.Context, id uint) (*models.Lesson, error) {
	var lesson models.Lesson
	if err := l.db.WithContext(ctx).First(&lesson, id).Error; err != nil {
		return nil, err
	}
	return &lesson, nil
}

func (l *LessonPostgreSQL) GetByIDWithTopics(ctx context.Context, id uint) (*models.Lesson, error) {
	var lesson models.Lesson
	if err := l.db.WithContext(ctx).
		Preload("Topics", func(db *gorm.DB) *gorm.DB {
			return db.Where("is_active = ?", true).Order("sort_order ASC")
		}).
		First(&lesson, id).Error; err != nil {
		return nil, err
	}
	return &lesson, nil
}

func (l *LessonPostgreSQL) List(ctx context.Context, filters repositories.LessonFilters) ([]*models.Lesson, error) {
	var lessons []*models.Lesson

	query := l.db.WithContext(ctx).Model(&models.Lesson{}).Order("sort_order ASC")
	if filters.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit).Offset(filters.Offset)
	}

	if err := query.
		Preload("Topics", func(db *gorm.DB) *gorm.DB {
			return db.Where("is_active = ?", true).Order("sort_order ASC")
		}).
		Find(&lessons).Error; err != nil {
		return nil, err
	}

	return lessons, nil
}
