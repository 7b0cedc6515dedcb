package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/matelog-ae/course-service/internal/models"
	"github.com/matelog-ae/course-service/internal/repositories"
)

type AttemptPostgreSQL struct {
	db *gorm.DB
}

func NewAttemptPostgreSQL(db *gorm.DB) repositories.AttemptRepository {
	return &AttemptPostgreSQL{db: db}
}

func (a *AttemptPostgreSQL) Create(ctx context.Context, attempt *models.TopicAttempt) error {
	return a.db.WithContext(ctx).Create(attempt).Error
}

func (a *AttemptPostgreSQL) GetLatest(ctx context.Context, userID, topicID uint) (*models.TopicAttempt, error) {
	var attempt models.TopicAttempt
	err := a.db.WithContext(ctx).
		Where("user_id = ? AND topic_id = ?", userID, topicID).
		Order("number DESC").
		First(&attempt).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &attempt, nil
}

func (a *AttemptPostgreSQL) ListByUserAndTopic(ctx context.Context, userID, topicID uint, filters repositories.AttemptFilters) ([]*models.TopicAttempt, error) {
	var attempts []*models.TopicAttempt

	query := a.db.WithContext(ctx).
		Where("user_id = ? AND topic_id = ?", userID, topicID).
		Order("number ASC")
	query = a.applyFilters(query, filters)

	if err := query.Find(&attempts).Error; err != nil {
		return nil, err
	}
	return attempts, nil
}

func (a *AttemptPostgreSQL) applyFilters(query *gorm.DB, filters repositories.AttemptFilters) *gorm.DB {
	if filters.Passed != nil {
		query = query.Where("passed = ?", *filters.Passed)
	}
	if filters.DateFrom != nil {
		query = query.Where("finished_at >= ?", *filters.DateFrom)
	}
	if filters.DateTo != nil {
		query = query.Where("finished_at <= ?", *filters.DateTo)
	}
	if filters.Limit > 0 {
		query = query.Limit(filters.Limit).Offset(filters.Offset)
	}
	return query
}
