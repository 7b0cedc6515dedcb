package models

import (
	"time"
)

// Topic is an ordered unit inside a lesson. Order is 1-based and unique per
// lesson; the first topic of a lesson is reachable without any prior progress.
type Topic struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	LessonID    uint   `json:"lesson_id" gorm:"not null;index" validate:"required"`
	Title       string `json:"title" gorm:"not null;size:200" validate:"required,min=1,max=200"`
	Description string `json:"description" gorm:"type:text"`
	Order       int    `json:"order" gorm:"column:sort_order;not null;uniqueIndex:idx_topics_lesson_order" validate:"required,min=1"`
	IsActive    bool   `json:"is_active" gorm:"default:true;index"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Lesson    *Lesson        `json:"lesson,omitempty" gorm:"foreignKey:LessonID"`
	Contents  []ContentBlock `json:"contents,omitempty" gorm:"foreignKey:TopicID"`
	Exercises []Exercise     `json:"exercises,omitempty" gorm:"foreignKey:TopicID"`
}

func (t *Topic) IsFirst() bool {
	return t.Order == 1
}

func (Topic) TableName() string {
	return "topics"
}
