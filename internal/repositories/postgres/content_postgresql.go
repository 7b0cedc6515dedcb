package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/matelog-ae/course-service/internal/models"
	"github.com/matelog-ae/course-service/internal/repositories"
)

type ContentPostgreSQL struct {
	db *gorm.DB
}

func NewContentPostgreSQL(db *gorm.DB) repositories.ContentRepository {
	return &ContentPostgreSQL{db: db}
}

func (c *ContentPostgreSQL) GetByID(ctx context.Context, id uint) (*models.ContentBlock, error) {
	var content models.ContentBlock
	if err := c.db.WithContext(ctx).First(&content, id).Error; err != nil {
		return nil, err
	}
	return &content, nil
}

func (c *ContentPostgreSQL) ListByTopic(ctx context.Context, topicID uint) ([]models.ContentBlock, error) {
	var contents []models.ContentBlock
	if err := c.db.WithContext(ctx).
		Where("topic_id = ? AND is_active = ?", topicID, true).
		Order("sort_order ASC").
		Find(&contents).Error; err != nil {
		return nil, err
	}
	return contents, nil
}
