package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/matelog-ae/course-service/internal/models"
)

// topicExercises is a small catalog covering every band: two obligatory
// exercises plus one EASY, two MEDIUM and two HARD optional ones.
func topicExercises() []models.Exercise {
	return []models.Exercise{
		{ID: 1, Difficulty: models.DifficultyEasy, Obligatory: true},
		{ID: 2, Difficulty: models.DifficultyEasy},
		{ID: 3, Difficulty: models.DifficultyMedium},
		{ID: 4, Difficulty: models.DifficultyMedium},
		{ID: 5, Difficulty: models.DifficultyHard},
		{ID: 6, Difficulty: models.DifficultyHard},
		{ID: 7, Difficulty: models.DifficultyHard, Obligatory: true},
	}
}

func experimentalProfile(class models.EfficacyClass) *models.LearnerProfile {
	return &models.LearnerProfile{
		UserID:       1,
		Group:        models.GroupExperimental,
		SelfEfficacy: class,
	}
}

func exerciseIDs(exercises []models.Exercise) []uint {
	ids := make([]uint, 0, len(exercises))
	for i := range exercises {
		ids = append(ids, exercises[i].ID)
	}
	return ids
}

func TestResolveExerciseSet(t *testing.T) {
	exercises := topicExercises()

	tests := []struct {
		name    string
		profile *models.LearnerProfile
		wantIDs []uint
	}{
		{
			name:    "no profile serves everything",
			profile: nil,
			wantIDs: []uint{1, 2, 3, 4, 5, 6, 7},
		},
		{
			name:    "unknown group serves everything",
			profile: &models.LearnerProfile{UserID: 1, Group: "PILOT"},
			wantIDs: []uint{1, 2, 3, 4, 5, 6, 7},
		},
		{
			name:    "control group gets obligatory only",
			profile: &models.LearnerProfile{UserID: 1, Group: models.GroupControl},
			wantIDs: []uint{1, 7},
		},
		{
			name:    "experimental high gets medium and hard bands",
			profile: experimentalProfile(models.EfficacyHigh),
			wantIDs: []uint{1, 3, 4, 5, 6, 7},
		},
		{
			name:    "experimental medium gets medium band",
			profile: experimentalProfile(models.EfficacyMedium),
			wantIDs: []uint{1, 3, 4, 7},
		},
		{
			name:    "experimental low gets easy and medium bands",
			profile: experimentalProfile(models.EfficacyLow),
			wantIDs: []uint{1, 2, 3, 4, 7},
		},
		{
			name:    "experimental unclassified gets obligatory only",
			profile: experimentalProfile(models.EfficacyNone),
			wantIDs: []uint{1, 7},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveExerciseSet(exercises, tt.profile)
			assert.Equal(t, tt.wantIDs, exerciseIDs(got))
		})
	}
}

func TestResolveExerciseSet_PreservesOrder(t *testing.T) {
	exercises := []models.Exercise{
		{ID: 9, Difficulty: models.DifficultyHard},
		{ID: 3, Difficulty: models.DifficultyMedium},
		{ID: 7, Difficulty: models.DifficultyHard, Obligatory: true},
		{ID: 1, Difficulty: models.DifficultyMedium},
	}

	got := ResolveExerciseSet(exercises, experimentalProfile(models.EfficacyMedium))
	assert.Equal(t, []uint{3, 7, 1}, exerciseIDs(got))
}

func TestInExerciseSet_AgreesWithResolver(t *testing.T) {
	exercises := topicExercises()
	profiles := []*models.LearnerProfile{
		nil,
		{UserID: 1, Group: models.GroupControl},
		experimentalProfile(models.EfficacyHigh),
		experimentalProfile(models.EfficacyMedium),
		experimentalProfile(models.EfficacyLow),
		experimentalProfile(models.EfficacyNone),
	}

	for _, profile := range profiles {
		set := ResolveExerciseSet(exercises, profile)
		inSet := make(map[uint]bool, len(set))
		for i := range set {
			inSet[set[i].ID] = true
		}
		for i := range exercises {
			assert.Equal(t, inSet[exercises[i].ID], InExerciseSet(&exercises[i], profile),
				"membership disagreement for exercise %d", exercises[i].ID)
		}
	}
}
