package repository

import (
	"context"
	"time"

	"github.com/projectplanning/planning-cloud-api/internal/models"
)

// Store groups the repositories that share one database handle. Inside
// Transaction every repository obtained from tx runs on the same transaction.
type Store interface {
	TaskTypes() TaskTypeRepository
	Tasks() TaskRepository
	Commitments() CommitmentRepository
	Observations() ObservationRepository

	// Transaction runs fn atomically, re-running it under the store's retry
	// policy when the database aborts it because of a concurrent writer.
	Transaction(ctx context.Context, fn func(tx Store) error) error
}

// TaskTypeRepository defines the interface for task type data access
type TaskTypeRepository interface {
	// List returns all task types ordered by title
	List(ctx context.Context) ([]models.TaskType, error)

	// FindByID finds a task type by ID
	FindByID(ctx context.Context, id uint64) (*models.TaskType, error)

	// FindByTitle finds a task type by its unique title
	FindByTitle(ctx context.Context, title string) (*models.TaskType, error)

	// Create creates a new task type
	Create(ctx context.Context, taskType *models.TaskType) error

	// FirstOrCreate returns the task type with the title, creating it when missing
	FirstOrCreate(ctx context.Context, title string) (*models.TaskType, bool, error)

	// Update updates a task type
	Update(ctx context.Context, taskType *models.TaskType) error

	// Delete deletes a task type, returning the number of deleted rows
	Delete(ctx context.Context, id uint64) (int64, error)

	// CountTasks counts tasks referencing the task type
	CountTasks(ctx context.Context, id uint64) (int64, error)
}

// TaskRepository defines the interface for task data access
type TaskRepository interface {
	// Create creates a new task
	Create(ctx context.Context, task *models.Task) error

	// CreateBatch inserts all tasks in one statement
	CreateBatch(ctx context.Context, tasks []models.Task) error

	// FindByID finds a task by ID with optional preloading
	FindByID(ctx context.Context, id uint64, preload ...string) (*models.Task, error)

	// FindByIDForUpdate finds a task and locks its row for the current transaction
	FindByIDForUpdate(ctx context.Context, id uint64) (*models.Task, error)

	// FindByIDs finds tasks by ID ordered by ID
	FindByIDs(ctx context.Context, ids []uint64, preload ...string) ([]models.Task, error)

	// List retrieves tasks with filtering and pagination
	List(ctx context.Context, filter TaskFilter) ([]models.Task, int64, error)

	// ProjectTaskIDs returns the IDs of every task in a project
	ProjectTaskIDs(ctx context.Context, projectID uint64) ([]uint64, error)

	// Update saves all fields of a task
	Update(ctx context.Context, task *models.Task) error

	// UpdateStatus sets the status of a task
	UpdateStatus(ctx context.Context, task *models.Task, status models.TaskStatus) error

	// Delete deletes a task together with its commitments and observations,
	// returning the number of deleted tasks
	Delete(ctx context.Context, id uint64) (int64, error)

	// Count counts tasks, optionally restricted to one status
	Count(ctx context.Context, status *models.TaskStatus) (int64, error)

	// CountPerDay counts tasks created since the given instant grouped by calendar day
	CountPerDay(ctx context.Context, status *models.TaskStatus, since time.Time) ([]DayCount, error)
}

// TaskFilter holds filtering options for listing tasks
type TaskFilter struct {
	Status            *models.TaskStatus
	ProjectID         *uint64
	TakenBy           *uint64
	TaskTypeID        *uint64
	IsCoverageRequest *bool
	// Unassigned keeps only tasks without an approved commitment
	Unassigned bool
	Preload    []string
	Page       int
	PageSize   int
}

// DayCount is one bucket of a per-day aggregation.
type DayCount struct {
	Date  string `json:"date"`
	Total int64  `json:"total"`
}

// CommitmentRepository defines the interface for commitment data access
type CommitmentRepository interface {
	// Create creates a new commitment
	Create(ctx context.Context, commitment *models.Commitment) error

	// FindByID finds a commitment by ID
	FindByID(ctx context.Context, id uint64) (*models.Commitment, error)

	// FindByIDForUpdate finds a commitment and locks its row for the current transaction
	FindByIDForUpdate(ctx context.Context, id uint64) (*models.Commitment, error)

	// List retrieves commitments matching the filter ordered by ID
	List(ctx context.Context, filter CommitmentFilter) ([]models.Commitment, error)

	// FindApprovedByTask finds the approved commitment of a task other than excludeID
	FindApprovedByTask(ctx context.Context, taskID, excludeID uint64) (*models.Commitment, error)

	// UpdateStatus sets the status of a commitment
	UpdateStatus(ctx context.Context, commitment *models.Commitment, status models.CommitmentStatus) error
}

// CommitmentFilter holds filtering options for listing commitments
type CommitmentFilter struct {
	TaskID  *uint64
	TaskIDs []uint64
	OngID   *uint64
	Status  *models.CommitmentStatus
}

// ObservationRepository defines the interface for task observation data access
type ObservationRepository interface {
	// Create creates a new observation
	Create(ctx context.Context, observation *models.TaskObservation) error

	// FindByID finds an observation by ID with optional preloading
	FindByID(ctx context.Context, id uint64, preload ...string) (*models.TaskObservation, error)

	// FindByIDForUpdate finds an observation and locks its row for the current transaction
	FindByIDForUpdate(ctx context.Context, id uint64) (*models.TaskObservation, error)

	// Update saves all fields of an observation
	Update(ctx context.Context, observation *models.TaskObservation) error

	// ListByTask retrieves the observations of a task with pagination
	ListByTask(ctx context.Context, filter ObservationFilter) ([]models.TaskObservation, int64, error)
}

// ObservationFilter holds filtering options for listing observations
type ObservationFilter struct {
	TaskID   uint64
	Resolved *bool
	Page     int
	PageSize int
}
