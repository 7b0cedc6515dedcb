package postgres

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/matelog-ae/course-service/internal/models"
	"github.com/matelog-ae/course-service/internal/repositories"
)

type ProgressPostgreSQL struct {
	db *gorm.DB
}

func NewProgressPostgreSQL(db *gorm.DB) repositories.ProgressRepository {
	return &ProgressPostgreSQL{db: db}
}

// GetOrCreate inserts under the (user, topic) unique index with DO NOTHING,
// then reads back, so concurrent first access yields one row.
func (p *ProgressPostgreSQL) GetOrCreate(ctx context.Context, userID, topicID uint, unlocked bool) (*models.TopicProgress, error) {
	row := models.TopicProgress{
		UserID:   userID,
		TopicID:  topicID,
		State:    models.TopicNotStarted,
		Unlocked: unlocked,
	}
	if err := p.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&row).Error; err != nil {
		return nil, err
	}
	return p.Get(ctx, userID, topicID)
}

func (p *ProgressPostgreSQL) Get(ctx context.Context, userID, topicID uint) (*models.TopicProgress, error) {
	var progress models.TopicProgress
	if err := p.db.WithContext(ctx).
		Where("user_id = ? AND topic_id = ?", userID, topicID).
		Preload("ViewedContent").
		First(&progress).Error; err != nil {
		return nil, err
	}
	return &progress, nil
}

func (p *ProgressPostgreSQL) GetForUpdate(ctx context.Context, userID, topicID uint) (*models.TopicProgress, error) {
	var progress models.TopicProgress
	if err := p.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ? AND topic_id = ?", userID, topicID).
		First(&progress).Error; err != nil {
		return nil, err
	}
	return &progress, nil
}

func (p *ProgressPostgreSQL) Update(ctx context.Context, progress *models.TopicProgress) error {
	return p.db.WithContext(ctx).Omit("ViewedContent").Save(progress).Error
}

func (p *ProgressPostgreSQL) EnsureUnlocked(ctx context.Context, userID, topicID uint) error {
	row := models.TopicProgress{
		UserID:   userID,
		TopicID:  topicID,
		State:    models.TopicNotStarted,
		Unlocked: true,
	}
	if err := p.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&row).Error; err != nil {
		return err
	}
	return p.db.WithContext(ctx).
		Model(&models.TopicProgress{}).
		Where("user_id = ? AND topic_id = ?", userID, topicID).
		Update("unlocked", true).Error
}

func (p *ProgressPostgreSQL) AddViewedContent(ctx context.Context, progress *models.TopicProgress, content *models.ContentBlock) error {
	return p.db.WithContext(ctx).
		Model(progress).
		Association("ViewedContent").
		Append(content)
}

func (p *ProgressPostgreSQL) ListByUserAndLesson(ctx context.Context, userID, lessonID uint) ([]*models.TopicProgress, error) {
	var rows []*models.TopicProgress
	if err := p.db.WithContext(ctx).
		Joins("JOIN topics ON topics.id = topic_progress.topic_id").
		Where("topic_progress.user_id = ? AND topics.lesson_id = ? AND topics.is_active = ?", userID, lessonID, true).
		Order("topics.sort_order ASC").
		Preload("Topic").
		Preload("ViewedContent").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
