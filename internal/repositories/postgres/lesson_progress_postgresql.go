package postgres

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/matelog-ae/course-service/internal/models"
	"github.com/matelog-ae/course-service/internal/repositories"
)

type LessonProgressPostgreSQL struct {
	db *gorm.DB
}

func NewLessonProgressPostgreSQL(db *gorm.DB) repositories.LessonProgressRepository {
	return &LessonProgressPostgreSQL{db: db}
}

func (l *LessonProgressPostgreSQL) GetOrCreate(ctx context.Context, userID, lessonID uint) (*models.LessonProgress, error) {
	row := models.LessonProgress{
		UserID:   userID,
		LessonID: lessonID,
		State:    models.LessonNotStarted,
	}
	if err := l.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&row).Error; err != nil {
		return nil, err
	}
	return l.Get(ctx, userID, lessonID)
}

func (l *LessonProgressPostgreSQL) Get(ctx context.Context, userID, lessonID uint) (*models.LessonProgress, error) {
	var progress models.LessonProgress
	if err := l.db.WithContext(ctx).
		Where("user_id = ? AND lesson_id = ?", userID, lessonID).
		First(&progress).Error; err != nil {
		return nil, err
	}
	return &progress, nil
}

func (l *LessonProgressPostgreSQL) Update(ctx context.Context, progress *models.LessonProgress) error {
	return l.db.WithContext(ctx).Save(progress).Error
}
