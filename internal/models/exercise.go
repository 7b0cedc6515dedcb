package models

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/unicode/norm"

	apperrors "github.com/matelog-ae/course-service/internal/errors"
)

type ExerciseKind string

const (
	ExerciseOpen           ExerciseKind = "OPEN"
	ExerciseMultipleChoice ExerciseKind = "MULTIPLE"
)

type DifficultyLevel string

const (
	DifficultyEasy   DifficultyLevel = "EASY"
	DifficultyMedium DifficultyLevel = "MEDIUM"
	DifficultyHard   DifficultyLevel = "HARD"
)

// OptionLabels are the letters a multiple choice exercise may key on.
var OptionLabels = []string{"A", "B", "C", "D"}

// Exercise is a single question inside a topic. Obligatory exercises are
// served to every learner; the rest are banded by difficulty and handed out
// according to the learner's profile.
type Exercise struct {
	ID            uint            `json:"id" gorm:"primaryKey"`
	TopicID       uint            `json:"topic_id" gorm:"not null;index;uniqueIndex:idx_exercises_topic_order" validate:"required"`
	Kind          ExerciseKind    `json:"kind" gorm:"not null;size:20;index" validate:"required,exercise_kind"`
	Difficulty    DifficultyLevel `json:"difficulty" gorm:"not null;size:20;index" validate:"required,difficulty_level"`
	Instructions  string          `json:"instructions" gorm:"type:text"`
	Statement     string          `json:"statement" gorm:"type:text;not null" validate:"required"`
	HelpText      string          `json:"help_text" gorm:"type:text"`
	CorrectAnswer string          `json:"-" gorm:"not null;size:500" validate:"required"`
	FeedbackCorrect   string      `json:"feedback_correct" gorm:"type:text"`
	FeedbackIncorrect string      `json:"feedback_incorrect" gorm:"type:text"`
	ShowDifficulty bool           `json:"show_difficulty" gorm:"default:false"`
	Obligatory    bool            `json:"obligatory" gorm:"default:false;index"`
	Order         int             `json:"order" gorm:"column:sort_order;not null;uniqueIndex:idx_exercises_topic_order"`
	IsActive      bool            `json:"is_active" gorm:"default:true;index"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Topic   *Topic         `json:"-" gorm:"foreignKey:TopicID"`
	Options []ChoiceOption `json:"options,omitempty" gorm:"foreignKey:ExerciseID"`
}

func (Exercise) TableName() string {
	return "exercises"
}

// ChoiceOption is one lettered alternative of a multiple choice exercise.
type ChoiceOption struct {
	ID         uint   `json:"id" gorm:"primaryKey"`
	ExerciseID uint   `json:"exercise_id" gorm:"not null;uniqueIndex:idx_options_exercise_label"`
	Label      string `json:"label" gorm:"not null;size:1;uniqueIndex:idx_options_exercise_label" validate:"required,option_label"`
	Text       string `json:"text" gorm:"type:text;not null" validate:"required"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (ChoiceOption) TableName() string {
	return "choice_options"
}

// NormalizeAnswer reduces free text to its comparable form: runs of whitespace
// collapse to one space, everything is lowercased, combining marks and
// punctuation are dropped. "  La   Derivada. " and "la derivada" normalize to
// the same string.
func NormalizeAnswer(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	s = strings.ToLower(s)

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range norm.NFD.String(s) {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		if unicode.IsPunct(r) || unicode.IsSymbol(r) {
			continue
		}
		b.WriteRune(r)
	}
	return strings.TrimSpace(b.String())
}

// CheckAnswer grades a raw learner answer against the stored key. Multiple
// choice compares letters case-insensitively; open text compares the
// normalized forms of both sides.
func (e *Exercise) CheckAnswer(raw string) bool {
	if e.Kind == ExerciseMultipleChoice {
		return strings.EqualFold(strings.TrimSpace(raw), strings.TrimSpace(e.CorrectAnswer))
	}
	return NormalizeAnswer(raw) == NormalizeAnswer(e.CorrectAnswer)
}

// Normalize canonicalizes the stored key before persisting: multiple choice
// keys become an uppercase letter, open keys keep their original casing but
// collapse runs of whitespace and lose the surrounding ones.
func (e *Exercise) Normalize() {
	if e.Kind == ExerciseMultipleChoice {
		e.CorrectAnswer = strings.ToUpper(strings.TrimSpace(e.CorrectAnswer))
		return
	}
	e.CorrectAnswer = strings.Join(strings.Fields(e.CorrectAnswer), " ")
}

// ValidateAnswerKey enforces the save-time rules that struct tags cannot
// express: a multiple choice key must be one of the defined option letters,
// and that option must actually exist on the exercise.
func (e *Exercise) ValidateAnswerKey() error {
	if e.CorrectAnswer == "" {
		return apperrors.ValidationErrors{
			*apperrors.NewValidationErrorWithRule("correct_answer", "is required", "required", e.CorrectAnswer),
		}
	}
	if e.Kind != ExerciseMultipleChoice {
		return nil
	}

	valid := false
	for _, l := range OptionLabels {
		if e.CorrectAnswer == l {
			valid = true
			break
		}
	}
	if !valid {
		return apperrors.ValidationErrors{
			*apperrors.NewValidationErrorWithRule("correct_answer", "must be a single letter between A and D", "option_label", e.CorrectAnswer),
		}
	}

	for _, opt := range e.Options {
		if strings.EqualFold(opt.Label, e.CorrectAnswer) {
			return nil
		}
	}
	return apperrors.ValidationErrors{
		*apperrors.NewValidationError("correct_answer", fmt.Sprintf("option '%s' is not defined on this exercise", e.CorrectAnswer), e.CorrectAnswer),
	}
}
