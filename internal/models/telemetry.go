package models

import (
	"time"

	"gorm.io/datatypes"
)

type ScreenKind string

const (
	ScreenTheory   ScreenKind = "THEORY"
	ScreenExample  ScreenKind = "EXAMPLE"
	ScreenExercise ScreenKind = "EXERCISE"
)

type ButtonKind string

const (
	ButtonBack         ButtonKind = "BACK"
	ButtonGoExercises  ButtonKind = "GO_EXERCISES"
	ButtonReturn       ButtonKind = "RETURN"
	ButtonExtraExample ButtonKind = "EXTRA_EXAMPLE"
	ButtonHelp         ButtonKind = "HELP"
)

// ScreenTimeEvent is one dwell measurement reported by the client. Events are
// append-only; per-topic aggregates are derived at read time, never stored.
type ScreenTimeEvent struct {
	ID          uint           `json:"id" gorm:"primaryKey"`
	UserID      uint           `json:"user_id" gorm:"not null;index:idx_screen_time_user_topic"`
	TopicID     uint           `json:"topic_id" gorm:"not null;index:idx_screen_time_user_topic"`
	ContentID   *uint          `json:"content_id"`
	ExerciseID  *uint          `json:"exercise_id"`
	Kind        ScreenKind     `json:"kind" gorm:"not null;size:20" validate:"required,screen_kind"`
	Ordinal     int            `json:"ordinal" gorm:"default:0"`
	Seconds     float64        `json:"seconds" gorm:"type:decimal(10,2);not null" validate:"required,min=0"`
	TabSwitched bool           `json:"tab_switched" gorm:"default:false"`
	Metadata    datatypes.JSON `json:"metadata,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

func (ScreenTimeEvent) TableName() string {
	return "screen_time_events"
}

// ButtonClickEvent records one navigation or help interaction.
type ButtonClickEvent struct {
	ID       uint           `json:"id" gorm:"primaryKey"`
	UserID   uint           `json:"user_id" gorm:"not null;index:idx_button_clicks_user_topic"`
	TopicID  *uint          `json:"topic_id" gorm:"index:idx_button_clicks_user_topic"`
	Button   ButtonKind     `json:"button" gorm:"not null;size:20" validate:"required,button_kind"`
	Metadata datatypes.JSON `json:"metadata,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

func (ButtonClickEvent) TableName() string {
	return "button_click_events"
}

// TopicTelemetrySummary is the derived per-topic view of the event log.
// It is computed on demand and never persisted.
type TopicTelemetrySummary struct {
	TopicID            uint    `json:"topic_id"`
	TheorySeconds      float64 `json:"theory_seconds"`
	ExampleSeconds     float64 `json:"example_seconds"`
	ExerciseSeconds    float64 `json:"exercise_seconds"`
	TabSwitchCount     int     `json:"tab_switch_count"`
	BackClicks         int     `json:"back_clicks"`
	GoExercisesClicks  int     `json:"go_exercises_clicks"`
	ReturnClicks       int     `json:"return_clicks"`
	ExtraExampleClicks int     `json:"extra_example_clicks"`
	HelpClicks         int     `json:"help_clicks"`
}
