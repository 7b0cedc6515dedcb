package models

import (
	"time"
)

type TopicProgressState string

const (
	TopicNotStarted TopicProgressState = "NOT_STARTED"
	TopicStarted    TopicProgressState = "STARTED"
	TopicCompleted  TopicProgressState = "COMPLETED"
)

type LessonProgressState string

const (
	LessonNotStarted LessonProgressState = "NOT_STARTED"
	LessonInProgress LessonProgressState = "IN_PROGRESS"
	LessonCompleted  LessonProgressState = "COMPLETED"
)

// PassThreshold is the minimum accuracy, in percent, to complete a topic.
const PassThreshold = 80.0

// TopicProgress tracks one learner through one topic. A row is created lazily
// on first access; the unique index makes the get-or-create race safe.
type TopicProgress struct {
	ID              uint               `json:"id" gorm:"primaryKey"`
	UserID          uint               `json:"user_id" gorm:"not null;uniqueIndex:idx_topic_progress_user_topic;index"`
	TopicID         uint               `json:"topic_id" gorm:"not null;uniqueIndex:idx_topic_progress_user_topic"`
	State           TopicProgressState `json:"state" gorm:"not null;size:20;default:NOT_STARTED"`
	Unlocked        bool               `json:"unlocked" gorm:"default:false"`
	AccuracyPercent float64            `json:"accuracy_percent" gorm:"type:decimal(5,2);default:0"`
	AttemptsMade    int                `json:"attempts_made" gorm:"default:0"`
	StartedAt       *time.Time         `json:"started_at"`
	CompletedAt     *time.Time         `json:"completed_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Topic         *Topic         `json:"topic,omitempty" gorm:"foreignKey:TopicID"`
	ViewedContent []ContentBlock `json:"viewed_content,omitempty" gorm:"many2many:topic_progress_viewed_content"`
}

func (TopicProgress) TableName() string {
	return "topic_progress"
}

// ViewedCountable returns how many viewed blocks count toward completion.
func (p *TopicProgress) ViewedCountable() int {
	return CountCountable(p.ViewedContent)
}

// HasViewed reports whether the given content block was already registered.
func (p *TopicProgress) HasViewed(contentID uint) bool {
	for i := range p.ViewedContent {
		if p.ViewedContent[i].ID == contentID {
			return true
		}
	}
	return false
}

// AnswerRecord is the grade of one exercise within one attempt epoch. The
// unique index over (user, exercise, progress) makes resubmission a no-op;
// a retry deletes the epoch's records wholesale.
type AnswerRecord struct {
	ID              uint    `json:"id" gorm:"primaryKey"`
	UserID          uint    `json:"user_id" gorm:"not null;uniqueIndex:idx_answers_user_exercise_progress;index"`
	ExerciseID      uint    `json:"exercise_id" gorm:"not null;uniqueIndex:idx_answers_user_exercise_progress"`
	TopicProgressID uint    `json:"topic_progress_id" gorm:"not null;uniqueIndex:idx_answers_user_exercise_progress;index"`
	Answer          string  `json:"answer" gorm:"type:text;not null"`
	Correct         bool    `json:"correct" gorm:"not null"`
	UsedHelp        bool    `json:"used_help" gorm:"default:false"`
	ResponseSeconds float64 `json:"response_seconds" gorm:"type:decimal(8,2);default:0"`

	CreatedAt time.Time `json:"created_at"`

	Exercise *Exercise `json:"-" gorm:"foreignKey:ExerciseID"`
}

func (AnswerRecord) TableName() string {
	return "answer_records"
}

// TopicAttempt is the frozen snapshot of one finalization, kept for the
// research export. Number matches AttemptsMade at the moment of finalizing.
type TopicAttempt struct {
	ID                 uint       `json:"id" gorm:"primaryKey"`
	UserID             uint       `json:"user_id" gorm:"not null;uniqueIndex:idx_attempts_user_topic_number;index"`
	TopicID            uint       `json:"topic_id" gorm:"not null;uniqueIndex:idx_attempts_user_topic_number"`
	Number             int        `json:"number" gorm:"not null;uniqueIndex:idx_attempts_user_topic_number"`
	CorrectCount       int        `json:"correct_count" gorm:"default:0"`
	IncorrectCount     int        `json:"incorrect_count" gorm:"default:0"`
	TotalCount         int        `json:"total_count" gorm:"default:0"`
	AccuracyPercent    float64    `json:"accuracy_percent" gorm:"type:decimal(5,2);default:0"`
	HelpUsedCount      int        `json:"help_used_count" gorm:"default:0"`
	TotalSeconds       float64    `json:"total_seconds" gorm:"type:decimal(10,2);default:0"`
	AvgSecondsPerItem  float64    `json:"avg_seconds_per_item" gorm:"type:decimal(8,2);default:0"`
	Passed             bool       `json:"passed" gorm:"default:false"`
	ImprovementPercent *float64   `json:"improvement_percent" gorm:"type:decimal(6,2)"`
	StartedAt          *time.Time `json:"started_at"`
	FinishedAt         time.Time  `json:"finished_at"`

	CreatedAt time.Time `json:"created_at"`
}

func (TopicAttempt) TableName() string {
	return "topic_attempts"
}

// LessonProgress is the per-lesson aggregate derived from topic progress.
type LessonProgress struct {
	ID                uint                `json:"id" gorm:"primaryKey"`
	UserID            uint                `json:"user_id" gorm:"not null;uniqueIndex:idx_lesson_progress_user_lesson;index"`
	LessonID          uint                `json:"lesson_id" gorm:"not null;uniqueIndex:idx_lesson_progress_user_lesson"`
	State             LessonProgressState `json:"state" gorm:"not null;size:20;default:NOT_STARTED"`
	CompletionPercent float64             `json:"completion_percent" gorm:"type:decimal(5,2);default:0"`
	StartedAt         *time.Time          `json:"started_at"`
	CompletedAt       *time.Time          `json:"completed_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Lesson *Lesson `json:"lesson,omitempty" gorm:"foreignKey:LessonID"`
}

func (LessonProgress) TableName() string {
	return "lesson_progress"
}
