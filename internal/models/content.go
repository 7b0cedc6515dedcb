package models

import (
	"time"
)

type ContentKind string

const (
	ContentTheory       ContentKind = "THEORY"
	ContentExample      ContentKind = "EXAMPLE"
	ContentExtraExample ContentKind = "EXTRA_EXAMPLE"
	ContentSummary      ContentKind = "SUMMARY"
)

// ContentBlock is a readable unit inside a topic (theory page, worked example,
// summary). Extra examples are optional reinforcement and never count toward
// topic completion.
type ContentBlock struct {
	ID       uint        `json:"id" gorm:"primaryKey"`
	TopicID  uint        `json:"topic_id" gorm:"not null;index" validate:"required"`
	Kind     ContentKind `json:"kind" gorm:"not null;size:20;index" validate:"required,content_kind"`
	Title    string      `json:"title" gorm:"size:200"`
	Body     string      `json:"body" gorm:"type:text"` // rendered by the client, stored verbatim
	Order    int         `json:"order" gorm:"column:sort_order;not null"`
	IsActive bool        `json:"is_active" gorm:"default:true;index"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Topic *Topic `json:"-" gorm:"foreignKey:TopicID"`
}

// Countable reports whether viewing this block advances topic completion.
func (c *ContentBlock) Countable() bool {
	return c.Kind != ContentExtraExample
}

// CountCountable returns how many blocks in the slice advance completion.
func CountCountable(blocks []ContentBlock) int {
	n := 0
	for i := range blocks {
		if blocks[i].Countable() {
			n++
		}
	}
	return n
}

func (ContentBlock) TableName() string {
	return "content_blocks"
}
