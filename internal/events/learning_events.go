package events

import (
	"time"

	"github.com/ThreeDotsLabs/watermill"
)

// EventType represents different types of learning events
type EventType string

const (
	// Exercise events
	EventAnswerSubmitted EventType = "answer.submitted"

	// Topic events
	EventTopicFinalized EventType = "topic.finalized"
	EventTopicUnlocked  EventType = "topic.unlocked"
	EventTopicRetried   EventType = "topic.retried"
	EventContentViewed  EventType = "content.viewed"

	// Lesson events
	EventLessonCompleted EventType = "lesson.completed"

	// Telemetry events
	EventScreenTime  EventType = "telemetry.screen_time"
	EventButtonClick EventType = "telemetry.button_click"
)

// LearningEvent is the envelope every published event shares
type LearningEvent struct {
	ID        string                 `json:"id"`
	Type      EventType              `json:"type"`
	Timestamp time.Time              `json:"timestamp"`
	Source    string                 `json:"source"`
	Version   string                 `json:"version"`
	Data      interface{}            `json:"data"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// Event payloads

type AnswerSubmittedEvent struct {
	UserID          uint      `json:"user_id"`
	ExerciseID      uint      `json:"exercise_id"`
	TopicID         uint      `json:"topic_id"`
	Correct         bool      `json:"correct"`
	UsedHelp        bool      `json:"used_help"`
	ResponseSeconds float64   `json:"response_seconds"`
	SubmittedAt     time.Time `json:"submitted_at"`
}

type TopicFinalizedEvent struct {
	UserID          uint      `json:"user_id"`
	TopicID         uint      `json:"topic_id"`
	LessonID        uint      `json:"lesson_id"`
	AttemptNumber   int       `json:"attempt_number"`
	AccuracyPercent float64   `json:"accuracy_percent"`
	Passed          bool      `json:"passed"`
	FinalizedAt     time.Time `json:"finalized_at"`
}

type TopicUnlockedEvent struct {
	UserID     uint      `json:"user_id"`
	TopicID    uint      `json:"topic_id"`
	LessonID   uint      `json:"lesson_id"`
	UnlockedAt time.Time `json:"unlocked_at"`
}

type TopicRetriedEvent struct {
	UserID         uint      `json:"user_id"`
	TopicID        uint      `json:"topic_id"`
	AttemptsMade   int       `json:"attempts_made"`
	AnswersDropped int64     `json:"answers_dropped"`
	RetriedAt      time.Time `json:"retried_at"`
}

type ContentViewedEvent struct {
	UserID    uint      `json:"user_id"`
	ContentID uint      `json:"content_id"`
	TopicID   uint      `json:"topic_id"`
	Counted   bool      `json:"counted"`
	ViewedAt  time.Time `json:"viewed_at"`
}

type LessonCompletedEvent struct {
	UserID            uint      `json:"user_id"`
	LessonID          uint      `json:"lesson_id"`
	CompletionPercent float64   `json:"completion_percent"`
	CompletedAt       time.Time `json:"completed_at"`
}

// Event factory functions

func newEvent(eventType EventType, data interface{}) *LearningEvent {
	return &LearningEvent{
		ID:        watermill.NewUUID(),
		Type:      eventType,
		Timestamp: time.Now(),
		Source:    "course-service",
		Version:   "1.0",
		Data:      data,
	}
}

func NewAnswerSubmittedEvent(userID, exerciseID, topicID uint, correct, usedHelp bool, responseSeconds float64) *LearningEvent {
	return newEvent(EventAnswerSubmitted, AnswerSubmittedEvent{
		UserID:          userID,
		ExerciseID:      exerciseID,
		TopicID:         topicID,
		Correct:         correct,
		UsedHelp:        usedHelp,
		ResponseSeconds: responseSeconds,
		SubmittedAt:     time.Now(),
	})
}

func NewTopicFinalizedEvent(userID, topicID, lessonID uint, attemptNumber int, accuracy float64, passed bool) *LearningEvent {
	return newEvent(EventTopicFinalized, TopicFinalizedEvent{
		UserID:          userID,
		TopicID:         topicID,
		LessonID:        lessonID,
		AttemptNumber:   attemptNumber,
		AccuracyPercent: accuracy,
		Passed:          passed,
		FinalizedAt:     time.Now(),
	})
}

func NewTopicUnlockedEvent(userID, topicID, lessonID uint) *LearningEvent {
	return newEvent(EventTopicUnlocked, TopicUnlockedEvent{
		UserID:     userID,
		TopicID:    topicID,
		LessonID:   lessonID,
		UnlockedAt: time.Now(),
	})
}

func NewTopicRetriedEvent(userID, topicID uint, attemptsMade int, answersDropped int64) *LearningEvent {
	return newEvent(EventTopicRetried, TopicRetriedEvent{
		UserID:         userID,
		TopicID:        topicID,
		AttemptsMade:   attemptsMade,
		AnswersDropped: answersDropped,
		RetriedAt:      time.Now(),
	})
}

func NewContentViewedEvent(userID, contentID, topicID uint, counted bool) *LearningEvent {
	return newEvent(EventContentViewed, ContentViewedEvent{
		UserID:    userID,
		ContentID: contentID,
		TopicID:   topicID,
		Counted:   counted,
		ViewedAt:  time.Now(),
	})
}

func NewLessonCompletedEvent(userID, lessonID uint, completionPercent float64) *LearningEvent {
	return newEvent(EventLessonCompleted, LessonCompletedEvent{
		UserID:            userID,
		LessonID:          lessonID,
		CompletionPercent: completionPercent,
		CompletedAt:       time.Now(),
	})
}

func NewTelemetryEvent(eventType EventType, data interface{}) *LearningEvent {
	return newEvent(eventType, data)
}
