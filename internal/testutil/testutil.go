// Package testutil provides in-memory databases and fixtures for tests.
package testutil

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/projectplanning/planning-cloud-api/internal/database"
	"github.com/projectplanning/planning-cloud-api/internal/models"
	"github.com/projectplanning/planning-cloud-api/internal/repository"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DiscardLogger returns a logger that drops every record.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// NewDB opens a migrated in-memory SQLite database that is closed when the
// test ends. A single connection keeps every query on the same database.
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, database.Migrate(db, DiscardLogger()))

	t.Cleanup(func() {
		sqlDB.Close()
	})
	return db
}

// NewStore returns a store over a fresh in-memory database.
func NewStore(t testing.TB) (repository.Store, *gorm.DB) {
	t.Helper()
	db := NewDB(t)
	return repository.NewStore(db, database.NoRetry), db
}

// CreateTaskType inserts a task type.
func CreateTaskType(t testing.TB, db *gorm.DB, title string) *models.TaskType {
	t.Helper()
	taskType := &models.TaskType{Title: title}
	require.NoError(t, db.Create(taskType).Error)
	return taskType
}

// TaskOption customizes a task created by CreateTask.
type TaskOption func(*models.Task)

func WithStatus(status models.TaskStatus) TaskOption {
	return func(t *models.Task) { t.Status = status }
}

func WithProject(projectID uint64) TaskOption {
	return func(t *models.Task) { t.ProjectID = &projectID }
}

func WithTakenBy(userID uint64) TaskOption {
	return func(t *models.Task) { t.TakenBy = &userID }
}

func WithDueDate(due time.Time) TaskOption {
	return func(t *models.Task) { t.DueDate = &due }
}

func WithCreatedAt(createdAt time.Time) TaskOption {
	return func(t *models.Task) { t.CreatedAt = createdAt }
}

func WithCoverageRequest(coverage bool) TaskOption {
	return func(t *models.Task) { t.IsCoverageRequest = coverage }
}

// CreateTask inserts a todo task of the given type.
func CreateTask(t testing.TB, db *gorm.DB, title string, taskTypeID uint64, opts ...TaskOption) *models.Task {
	t.Helper()
	task := &models.Task{
		Title:      title,
		Status:     models.TaskStatusTodo,
		TaskTypeID: taskTypeID,
	}
	for _, opt := range opts {
		opt(task)
	}
	require.NoError(t, db.Omit("TaskType", "Commitments", "Observations").Create(task).Error)
	return task
}

// CreateCommitment inserts a commitment of an ONG for a task.
func CreateCommitment(t testing.TB, db *gorm.DB, taskID, ongID uint64, status models.CommitmentStatus) *models.Commitment {
	t.Helper()
	commitment := &models.Commitment{
		TaskID: taskID,
		OngID:  ongID,
		Status: status,
	}
	require.NoError(t, db.Omit("Task").Create(commitment).Error)
	return commitment
}

// CreateObservation inserts an observation, resolved when resolution is non-nil.
func CreateObservation(t testing.TB, db *gorm.DB, taskID uint64, text string, resolution *string) *models.TaskObservation {
	t.Helper()
	observation := &models.TaskObservation{
		TaskID:       taskID,
		Observations: text,
		Resolution:   resolution,
	}
	if resolution != nil {
		now := time.Now()
		observation.ResolvedAt = &now
	}
	require.NoError(t, db.Omit("Task").Create(observation).Error)
	return observation
}

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}
