package models

import (
	"time"
)

type LearnerGroup string

const (
	GroupControl      LearnerGroup = "CONTROL"
	GroupExperimental LearnerGroup = "EXPERIMENTAL"
)

type EfficacyClass string

const (
	EfficacyHigh   EfficacyClass = "HIGH"
	EfficacyMedium EfficacyClass = "MEDIUM"
	EfficacyLow    EfficacyClass = "LOW"
	// EfficacyNone marks a learner not yet classified by the diagnostic.
	EfficacyNone EfficacyClass = ""
)

// LearnerProfile carries the study assignment for one learner. The profile is
// written by the enrollment flow; this service only reads it, and treats a
// missing profile as "serve everything".
type LearnerProfile struct {
	ID                 uint          `json:"id" gorm:"primaryKey"`
	UserID             uint          `json:"user_id" gorm:"not null;uniqueIndex"`
	Group              LearnerGroup  `json:"group" gorm:"column:learner_group;size:20" validate:"omitempty,learner_group"`
	SelfEfficacy       EfficacyClass `json:"self_efficacy" gorm:"size:20" validate:"omitempty,efficacy_class"`
	AccessCode         string        `json:"access_code" gorm:"size:40;index"`
	PreTestDone        bool          `json:"pre_test_done" gorm:"default:false"`
	DiagnosticDone     bool          `json:"diagnostic_done" gorm:"default:false"`
	PostTestDone       bool          `json:"post_test_done" gorm:"default:false"`
	FinalSurveyDone    bool          `json:"final_survey_done" gorm:"default:false"`
	ClassifiedAt       *time.Time    `json:"classified_at"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (LearnerProfile) TableName() string {
	return "learner_profiles"
}
