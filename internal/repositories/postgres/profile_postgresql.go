package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/matelog-ae/course-service/internal/models"
	"github.com/matelog-ae/course-service/internal/repositories"
)

type ProfilePostgreSQL struct {
	db *gorm.DB
}

func NewProfilePostgreSQL(db *gorm.DB) repositories.ProfileRepository {
	return &ProfilePostgreSQL{db: db}
}

func (p *ProfilePostgreSQL) GetByUserID(ctx context.Context, userID uint) (*models.LearnerProfile, error) {
	var profile models.LearnerProfile
	err := p.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}
