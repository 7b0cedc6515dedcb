package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/matelog-ae/course-service/internal/models"
	"github.com/matelog-ae/course-service/internal/repositories"
)

type TelemetryPostgreSQL struct {
	db *gorm.DB
}

func NewTelemetryPostgreSQL(db *gorm.DB) repositories.TelemetryRepository {
	return &TelemetryPostgreSQL{db: db}
}

func (t *TelemetryPostgreSQL) CreateScreenTime(ctx context.Context, event *models.ScreenTimeEvent) error {
	return t.db.WithContext(ctx).Create(event).Error
}

func (t *TelemetryPostgreSQL) CreateButtonClick(ctx context.Context, event *models.ButtonClickEvent) error {
	return t.db.WithContext(ctx).Create(event).Error
}

// SummarizeTopic folds the append-only event log into per-topic totals.
func (t *TelemetryPostgreSQL) SummarizeTopic(ctx context.Context, userID, topicID uint) (*models.TopicTelemetrySummary, error) {
	summary := models.TopicTelemetrySummary{TopicID: topicID}

	type screenRow struct {
		Kind        models.ScreenKind
		Seconds     float64
		TabSwitches int64
	}
	var screenRows []screenRow
	if err := t.db.WithContext(ctx).
		Model(&models.ScreenTimeEvent{}).
		Select("kind, COALESCE(SUM(seconds), 0) AS seconds, COUNT(*) FILTER (WHERE tab_switched) AS tab_switches").
		Where("user_id = ? AND topic_id = ?", userID, topicID).
		Group("kind").
		Scan(&screenRows).Error; err != nil {
		return nil, err
	}
	for _, row := range screenRows {
		switch row.Kind {
		case models.ScreenTheory:
			summary.TheorySeconds = row.Seconds
		case models.ScreenExample:
			summary.ExampleSeconds = row.Seconds
		case models.ScreenExercise:
			summary.ExerciseSeconds = row.Seconds
		}
		summary.TabSwitchCount += int(row.TabSwitches)
	}

	type clickRow struct {
		Button models.ButtonKind
		Clicks int64
	}
	var clickRows []clickRow
	if err := t.db.WithContext(ctx).
		Model(&models.ButtonClickEvent{}).
		Select("button, COUNT(*) AS clicks").
		Where("user_id = ? AND topic_id = ?", userID, topicID).
		Group("button").
		Scan(&clickRows).Error; err != nil {
		return nil, err
	}
	for _, row := range clickRows {
		switch row.Button {
		case models.ButtonBack:
			summary.BackClicks = int(row.Clicks)
		case models.ButtonGoExercises:
			summary.GoExercisesClicks = int(row.Clicks)
		case models.ButtonReturn:
			summary.ReturnClicks = int(row.Clicks)
		case models.ButtonExtraExample:
			summary.ExtraExampleClicks = int(row.Clicks)
		case models.ButtonHelp:
			summary.HelpClicks = int(row.Clicks)
		}
	}

	return &summary, nil
}
