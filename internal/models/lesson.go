package models

import (
	"time"
)

// Lesson is the top level of the course catalog. Lessons are soft-deactivated
// (IsActive) so IDs stay stable for research exports; the core never writes them.
type Lesson struct {
	ID          uint   `json:"id" gorm:"primaryKey"`
	Title       string `json:"title" gorm:"not null;size:200" validate:"required,min=1,max=200"`
	Description string `json:"description" gorm:"type:text"` // HTML from the authoring widget, opaque here
	Order       int    `json:"order" gorm:"column:sort_order;not null;uniqueIndex" validate:"required,min=1"`
	IsActive    bool   `json:"is_active" gorm:"default:true;index"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Topics []Topic `json:"topics" gorm:"foreignKey:LessonID"`
}

func (Lesson) TableName() string {
	return "lessons"
}

// ActiveTopics filters the preloaded topics; callers rely on the repository
// having loaded them in sort order.
func (l *Lesson) ActiveTopics() []Topic {
	out := make([]Topic, 0, len(l.Topics))
	for _, t := range l.Topics {
		if t.IsActive {
			out = append(out, t)
		}
	}
	return out
}
