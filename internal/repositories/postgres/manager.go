package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/matelog-ae/course-service/internal/repositories"
)

// Manager implements repositories.Repository over a single *gorm.DB. A
// transactional Manager shares the tx handle across all entity repositories.
type Manager struct {
	db *gorm.DB

	lesson         repositories.LessonRepository
	topic          repositories.TopicRepository
	content        repositories.ContentRepository
	exercise       repositories.ExerciseRepository
	progress       repositories.ProgressRepository
	lessonProgress repositories.LessonProgressRepository
	answer         repositories.AnswerRepository
	attempt        repositories.AttemptRepository
	profile        repositories.ProfileRepository
	telemetry      repositories.TelemetryRepository
}

func NewManager(db *gorm.DB) repositories.Repository {
	return &Manager{
		db:             db,
		lesson:         NewLessonPostgreSQL(db),
		topic:          NewTopicPostgreSQL(db),
		content:        NewContentPostgreSQL(db),
		exercise:       NewExercisePostgreSQL(db),
		progress:       NewProgressPostgreSQL(db),
		lessonProgress: NewLessonProgressPostgreSQL(db),
		answer:         NewAnswerPostgreSQL(db),
		attempt:        NewAttemptPostgreSQL(db),
		profile:        NewProfilePostgreSQL(db),
		telemetry:      NewTelemetryPostgreSQL(db),
	}
}

func (m *Manager) Lesson() repositories.LessonRepository                 { return m.lesson }
func (m *Manager) Topic() repositories.TopicRepository                   { return m.topic }
func (m *Manager) Content() repositories.ContentRepository               { return m.content }
func (m *Manager) Exercise() repositories.ExerciseRepository             { return m.exercise }
func (m *Manager) Progress() repositories.ProgressRepository             { return m.progress }
func (m *Manager) LessonProgress() repositories.LessonProgressRepository { return m.lessonProgress }
func (m *Manager) Answer() repositories.AnswerRepository                 { return m.answer }
func (m *Manager) Attempt() repositories.AttemptRepository               { return m.attempt }
func (m *Manager) Profile() repositories.ProfileRepository               { return m.profile }
func (m *Manager) Telemetry() repositories.TelemetryRepository           { return m.telemetry }

func (m *Manager) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewManager(tx))
	})
}

func (m *Manager) Ping(ctx context.Context) error {
	sqlDB, err := m.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (m *Manager) Close() error {
	sqlDB, err := m.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
