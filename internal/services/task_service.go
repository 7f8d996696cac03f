package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/projectplanning/planning-cloud-api/internal/constants"
	apierrors "github.com/projectplanning/planning-cloud-api/internal/errors"
	"github.com/projectplanning/planning-cloud-api/internal/models"
	"github.com/projectplanning/planning-cloud-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrTaskNotFound           = apierrors.NotFound("task not found")
	ErrTitleRequired          = apierrors.Validation("title is required")
	ErrTitleLength            = apierrors.Validationf("title must be between %d and %d characters", constants.MinTaskTitleLength, constants.MaxTaskTitleLength)
	ErrDescriptionTooLong     = apierrors.Validationf("description must be at most %d characters", constants.MaxTaskDescriptionLength)
	ErrTaskTypeIDRequired     = apierrors.Validation("taskTypeId is required")
	ErrUnknownTaskType        = apierrors.Validation("taskTypeId does not reference an existing task type")
	ErrNegativeHours          = apierrors.Validation("estimatedHours and actualHours must not be negative")
	ErrInvalidTaskStatus      = apierrors.Validation("status must be one of todo, in_progress, done")
	ErrNoTasksProvided        = apierrors.Validation("a non-empty array of tasks is required")
	ErrTooManyTasks           = apierrors.Validationf("at most %d tasks can be created at once", constants.MaxBulkTasks)
	ErrDraftTextRequired      = apierrors.Validation("text is required")
	ErrAIServiceNotConfigured = apierrors.Unavailable("AI service is not configured")
	ErrAINoTasksGenerated     = apierrors.Validation("AI did not generate any tasks")
	ErrAINoValidTasks         = apierrors.Validation("no valid tasks could be drafted from AI output")
)

// TaskService handles task business logic
type TaskService struct {
	store     repository.Store
	aiService *AIService
	now       func() time.Time
}

// NewTaskService creates a new TaskService. aiService may be nil when task
// drafting is not configured.
func NewTaskService(store repository.Store, aiService *AIService) *TaskService {
	return &TaskService{
		store:     store,
		aiService: aiService,
		now:       time.Now,
	}
}

// ListTasksInput represents filters for listing tasks
type ListTasksInput struct {
	Status              *models.TaskStatus
	ProjectID           *uint64
	TakenBy             *uint64
	TaskTypeID          *uint64
	IsCoverageRequest   *bool
	IncludeCommitments  bool
	IncludeObservations bool
	Page                int
	PageSize            int
}

// CreateTaskInput represents input for creating a task
type CreateTaskInput struct {
	Title             string
	Description       string
	Status            models.TaskStatus
	DueDate           *time.Time
	EstimatedHours    *float64
	ActualHours       *float64
	ProjectID         *uint64
	TakenBy           *uint64
	CreatedBy         *uint64
	TaskTypeID        uint64
	IsCoverageRequest *bool
}

// UpdateTaskInput represents input for updating a task. Nil fields are left
// untouched.
type UpdateTaskInput struct {
	Title             *string
	Description       *string
	Status            *models.TaskStatus
	DueDate           *time.Time
	ClearDueDate      bool
	EstimatedHours    *float64
	ActualHours       *float64
	ProjectID         *uint64
	TakenBy           *uint64
	TaskTypeID        *uint64
	IsCoverageRequest *bool
}

// ListTasks returns tasks matching the filters, newest first
func (s *TaskService) ListTasks(ctx context.Context, input ListTasksInput) ([]models.Task, int64, error) {
	tasks, total, err := s.store.Tasks().List(ctx, s.buildFilter(input))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}
	return tasks, total, nil
}

// ListTasksByProject returns the tasks of one project
func (s *TaskService) ListTasksByProject(ctx context.Context, projectID uint64, input ListTasksInput) ([]models.Task, int64, error) {
	if projectID == 0 {
		return nil, 0, ErrProjectIDRequired
	}

	filter := s.buildFilter(input)
	filter.ProjectID = &projectID

	tasks, total, err := s.store.Tasks().List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list project tasks: %w", err)
	}
	return tasks, total, nil
}

// ListUnassignedTasksByProject returns the tasks of a project that have no
// approved commitment
func (s *TaskService) ListUnassignedTasksByProject(ctx context.Context, projectID uint64, input ListTasksInput) ([]models.Task, int64, error) {
	if projectID == 0 {
		return nil, 0, ErrProjectIDRequired
	}

	filter := s.buildFilter(input)
	filter.ProjectID = &projectID
	filter.Unassigned = true

	tasks, total, err := s.store.Tasks().List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list unassigned tasks: %w", err)
	}
	return tasks, total, nil
}

// GetTask returns a task with related data
func (s *TaskService) GetTask(ctx context.Context, taskID uint64) (*models.Task, error) {
	task, err := s.store.Tasks().FindByID(ctx, taskID, "TaskType", "Commitments", "Observations")
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, fmt.Errorf("failed to find task: %w", err)
	}

	return task, nil
}

// CreateTask validates and stores a new task
func (s *TaskService) CreateTask(ctx context.Context, input CreateTaskInput) (*models.Task, error) {
	task := newTask(input, false)
	if verr := validateTask(task); verr != nil {
		return nil, verr
	}

	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		task.ID = 0
		if err := ensureTaskTypes(ctx, tx, []uint64{task.TaskTypeID}); err != nil {
			return err
		}
		return tx.Tasks().Create(ctx, task)
	})
	if err != nil {
		return nil, failed("create task", err)
	}

	return s.store.Tasks().FindByID(ctx, task.ID, "TaskType")
}

// CreateTasksBulk validates every row before inserting all of them in one
// transaction. Rows default to coverage requests.
func (s *TaskService) CreateTasksBulk(ctx context.Context, inputs []CreateTaskInput) ([]models.Task, error) {
	if len(inputs) == 0 {
		return nil, ErrNoTasksProvided
	}
	if len(inputs) > constants.MaxBulkTasks {
		return nil, ErrTooManyTasks
	}

	tasks := make([]models.Task, len(inputs))
	typeIDs := make([]uint64, 0, len(inputs))
	for i, input := range inputs {
		task := newTask(input, true)
		if verr := validateTask(task); verr != nil {
			return nil, apierrors.Validationf("task %d: %s", i+1, verr.Message)
		}
		tasks[i] = *task
		typeIDs = append(typeIDs, task.TaskTypeID)
	}

	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		for i := range tasks {
			tasks[i].ID = 0
		}
		if err := ensureTaskTypes(ctx, tx, uniqueUint64(typeIDs)); err != nil {
			return err
		}
		return tx.Tasks().CreateBatch(ctx, tasks)
	})
	if err != nil {
		return nil, failed("create tasks", err)
	}

	ids := make([]uint64, len(tasks))
	for i := range tasks {
		ids[i] = tasks[i].ID
	}

	created, err := s.store.Tasks().FindByIDs(ctx, ids, "TaskType")
	if err != nil {
		return nil, fmt.Errorf("failed to load created tasks: %w", err)
	}
	return created, nil
}

// UpdateTask applies a partial update to an existing task
func (s *TaskService) UpdateTask(ctx context.Context, taskID uint64, input UpdateTaskInput) (*models.Task, error) {
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		task, err := tx.Tasks().FindByIDForUpdate(ctx, taskID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTaskNotFound
			}
			return err
		}

		typeChanged := applyTaskUpdate(task, input)
		if verr := validateTask(task); verr != nil {
			return verr
		}

		if typeChanged {
			if err := ensureTaskTypes(ctx, tx, []uint64{task.TaskTypeID}); err != nil {
				return err
			}
		}

		return tx.Tasks().Update(ctx, task)
	})
	if err != nil {
		return nil, failed("update task", err)
	}

	return s.store.Tasks().FindByID(ctx, taskID, "TaskType")
}

// UpdateTaskStatus sets the status of a task. Any status may follow any other.
func (s *TaskService) UpdateTaskStatus(ctx context.Context, taskID uint64, status models.TaskStatus) (*models.Task, error) {
	if !status.Valid() {
		return nil, ErrInvalidTaskStatus
	}

	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		task, err := tx.Tasks().FindByIDForUpdate(ctx, taskID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTaskNotFound
			}
			return err
		}
		return tx.Tasks().UpdateStatus(ctx, task, status)
	})
	if err != nil {
		return nil, failed("update task status", err)
	}

	return s.store.Tasks().FindByID(ctx, taskID, "TaskType")
}

// DeleteTask deletes a task together with its commitments and observations
func (s *TaskService) DeleteTask(ctx context.Context, taskID uint64) error {
	deleted, err := s.store.Tasks().Delete(ctx, taskID)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if deleted == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// DraftTasks asks the AI service to extract task drafts from free text. The
// drafts are validated but never stored.
func (s *TaskService) DraftTasks(ctx context.Context, text string) ([]DraftedTask, error) {
	if s.aiService == nil {
		return nil, ErrAIServiceNotConfigured
	}
	if strings.TrimSpace(text) == "" {
		return nil, ErrDraftTextRequired
	}

	drafts, err := s.aiService.DraftTasksFromText(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to draft tasks: %w", err)
	}

	if len(drafts) == 0 {
		return nil, ErrAINoTasksGenerated
	}
	if len(drafts) > constants.MaxDraftedTasks {
		drafts = drafts[:constants.MaxDraftedTasks]
	}

	validDrafts := make([]DraftedTask, 0, len(drafts))
	cutoff := s.now().Add(-24 * time.Hour)
	for _, draft := range drafts {
		draft.Title = strings.TrimSpace(draft.Title)
		n := utf8.RuneCountInString(draft.Title)
		if n < constants.MinTaskTitleLength || n > constants.MaxTaskTitleLength {
			continue
		}

		if utf8.RuneCountInString(draft.Description) > constants.MaxTaskDescriptionLength {
			draft.Description = string([]rune(draft.Description)[:constants.MaxTaskDescriptionLength])
		}

		if draft.DueDate != nil && draft.DueDate.Before(cutoff) {
			draft.DueDate = nil
		}

		validDrafts = append(validDrafts, draft)
	}

	if len(validDrafts) == 0 {
		return nil, ErrAINoValidTasks
	}

	return validDrafts, nil
}

func (s *TaskService) buildFilter(input ListTasksInput) repository.TaskFilter {
	filter := repository.TaskFilter{
		Status:            input.Status,
		ProjectID:         input.ProjectID,
		TakenBy:           input.TakenBy,
		TaskTypeID:        input.TaskTypeID,
		IsCoverageRequest: input.IsCoverageRequest,
		Page:              input.Page,
		PageSize:          input.PageSize,
	}

	if input.IncludeCommitments {
		filter.Preload = append(filter.Preload, "Commitments")
	}
	if input.IncludeObservations {
		filter.Preload = append(filter.Preload, "Observations")
	}

	return filter
}

// newTask builds a task from input, applying the status and coverage defaults
func newTask(input CreateTaskInput, coverageDefault bool) *models.Task {
	status := input.Status
	if status == "" {
		status = models.TaskStatusTodo
	}

	isCoverageRequest := coverageDefault
	if input.IsCoverageRequest != nil {
		isCoverageRequest = *input.IsCoverageRequest
	}

	return &models.Task{
		Title:             strings.TrimSpace(input.Title),
		Description:       input.Description,
		Status:            status,
		DueDate:           input.DueDate,
		EstimatedHours:    input.EstimatedHours,
		ActualHours:       input.ActualHours,
		ProjectID:         input.ProjectID,
		TakenBy:           input.TakenBy,
		CreatedBy:         input.CreatedBy,
		TaskTypeID:        input.TaskTypeID,
		IsCoverageRequest: isCoverageRequest,
	}
}

// applyTaskUpdate copies the set fields of input onto task and reports
// whether the task type changed
func applyTaskUpdate(task *models.Task, input UpdateTaskInput) bool {
	if input.Title != nil {
		task.Title = strings.TrimSpace(*input.Title)
	}
	if input.Description != nil {
		task.Description = *input.Description
	}
	if input.Status != nil {
		task.Status = *input.Status
	}
	if input.ClearDueDate {
		task.DueDate = nil
	} else if input.DueDate != nil {
		task.DueDate = input.DueDate
	}
	if input.EstimatedHours != nil {
		task.EstimatedHours = input.EstimatedHours
	}
	if input.ActualHours != nil {
		task.ActualHours = input.ActualHours
	}
	if input.ProjectID != nil {
		task.ProjectID = input.ProjectID
	}
	if input.TakenBy != nil {
		task.TakenBy = input.TakenBy
	}
	if input.IsCoverageRequest != nil {
		task.IsCoverageRequest = *input.IsCoverageRequest
	}

	typeChanged := false
	if input.TaskTypeID != nil && *input.TaskTypeID != task.TaskTypeID {
		task.TaskTypeID = *input.TaskTypeID
		typeChanged = true
	}
	return typeChanged
}

// validateTask checks the field constraints of a task
func validateTask(task *models.Task) *apierrors.Error {
	if task.Title == "" {
		return ErrTitleRequired
	}
	if n := utf8.RuneCountInString(task.Title); n < constants.MinTaskTitleLength || n > constants.MaxTaskTitleLength {
		return ErrTitleLength
	}
	if utf8.RuneCountInString(task.Description) > constants.MaxTaskDescriptionLength {
		return ErrDescriptionTooLong
	}
	if task.TaskTypeID == 0 {
		return ErrTaskTypeIDRequired
	}
	if !task.Status.Valid() {
		return ErrInvalidTaskStatus
	}
	if (task.EstimatedHours != nil && *task.EstimatedHours < 0) || (task.ActualHours != nil && *task.ActualHours < 0) {
		return ErrNegativeHours
	}
	return nil
}

// ensureTaskTypes verifies that every referenced task type exists
func ensureTaskTypes(ctx context.Context, tx repository.Store, ids []uint64) error {
	for _, id := range ids {
		if _, err := tx.TaskTypes().FindByID(ctx, id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUnknownTaskType
			}
			return err
		}
	}
	return nil
}

// failed wraps persistence errors while passing domain errors through unchanged
func failed(action string, err error) error {
	if err == nil {
		return nil
	}
	var domainErr *apierrors.Error
	if errors.As(err, &domainErr) {
		return err
	}
	return fmt.Errorf("failed to %s: %w", action, err)
}

// uniqueUint64 removes duplicate values from a slice of uint64
func uniqueUint64(values []uint64) []uint64 {
	seen := make(map[uint64]struct{}, len(values))
	result := make([]uint64, 0, len(values))

	for _, v := range values {
		if _, exists := seen[v]; exists {
			continue
		}
		seen[v] = struct{}{}
		result = append(result, v)
	}

	return result
}
