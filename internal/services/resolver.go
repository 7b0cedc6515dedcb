package services

import (
	"github.com/matelog-ae/course-service/internal/models"
)

// extraBands maps a self-efficacy class to the difficulty bands served on top
// of the obligatory exercises in the experimental arm. Unclassified learners
// get no extra bands.
var extraBands = map[models.EfficacyClass][]models.DifficultyLevel{
	models.EfficacyHigh:   {models.DifficultyMedium, models.DifficultyHard},
	models.EfficacyMedium: {models.DifficultyMedium},
	models.EfficacyLow:    {models.DifficultyEasy, models.DifficultyMedium},
}

// ResolveExerciseSet returns the exercises this learner is served, preserving
// input order. Serving, membership checks and denominators all go through the
// same predicate, so they can never disagree about the set.
func ResolveExerciseSet(exercises []models.Exercise, profile *models.LearnerProfile) []models.Exercise {
	include := exercisePredicate(profile)
	out := make([]models.Exercise, 0, len(exercises))
	for i := range exercises {
		if include(&exercises[i]) {
			out = append(out, exercises[i])
		}
	}
	return out
}

// InExerciseSet reports whether one exercise belongs to the learner's set.
func InExerciseSet(exercise *models.Exercise, profile *models.LearnerProfile) bool {
	return exercisePredicate(profile)(exercise)
}

// exercisePredicate builds the membership test for the learner's set. A
// missing profile and an unrecognized group both fall back to everything, so
// a misconfigured learner is never walled off from the course.
func exercisePredicate(profile *models.LearnerProfile) func(*models.Exercise) bool {
	if profile == nil {
		return func(*models.Exercise) bool { return true }
	}

	switch profile.Group {
	case models.GroupControl:
		return func(ex *models.Exercise) bool { return ex.Obligatory }
	case models.GroupExperimental:
		bands := extraBands[profile.SelfEfficacy]
		return func(ex *models.Exercise) bool {
			if ex.Obligatory {
				return true
			}
			for _, band := range bands {
				if ex.Difficulty == band {
					return true
				}
			}
			return false
		}
	default:
		return func(*models.Exercise) bool { return true }
	}
}
