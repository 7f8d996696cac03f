package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/projectplanning/planning-cloud-api/internal/constants"
	apierrors "github.com/projectplanning/planning-cloud-api/internal/errors"
	"github.com/projectplanning/planning-cloud-api/internal/models"
	"github.com/projectplanning/planning-cloud-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrTaskTypeNotFound      = apierrors.NotFound("task type not found")
	ErrTaskTypeTitleRequired = apierrors.Validation("title is required")
	ErrTaskTypeTitleLength   = apierrors.Validationf("title must be between %d and %d characters", constants.MinTaskTypeTitleLength, constants.MaxTaskTypeTitleLength)
	ErrTaskTypeTitleTaken    = apierrors.Conflict("a task type with this title already exists")
	ErrTaskTypeInUse         = apierrors.Conflict("task type is referenced by existing tasks")
)

// TaskTypeService handles task type business logic
type TaskTypeService struct {
	store repository.Store
}

// NewTaskTypeService creates a new TaskTypeService
func NewTaskTypeService(store repository.Store) *TaskTypeService {
	return &TaskTypeService{store: store}
}

// SeedResult reports what EnsureDefaultTaskTypes changed
type SeedResult struct {
	Created  []string          `json:"created"`
	Existing []string          `json:"existing"`
	Types    []models.TaskType `json:"taskTypes"`
}

// ListTaskTypes returns all task types ordered by title
func (s *TaskTypeService) ListTaskTypes(ctx context.Context) ([]models.TaskType, error) {
	taskTypes, err := s.store.TaskTypes().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list task types: %w", err)
	}
	return taskTypes, nil
}

// GetTaskType returns a task type by ID
func (s *TaskTypeService) GetTaskType(ctx context.Context, id uint64) (*models.TaskType, error) {
	taskType, err := s.store.TaskTypes().FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTaskTypeNotFound
		}
		return nil, fmt.Errorf("failed to find task type: %w", err)
	}
	return taskType, nil
}

// CreateTaskType creates a task type with a unique title
func (s *TaskTypeService) CreateTaskType(ctx context.Context, title string) (*models.TaskType, error) {
	title, verr := normalizeTaskTypeTitle(title)
	if verr != nil {
		return nil, verr
	}

	taskType := &models.TaskType{Title: title}
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		taskType.ID = 0
		if err := ensureTitleFree(ctx, tx, title, 0); err != nil {
			return err
		}
		return tx.TaskTypes().Create(ctx, taskType)
	})
	if err != nil {
		return nil, failed("create task type", err)
	}
	return taskType, nil
}

// UpdateTaskType renames a task type
func (s *TaskTypeService) UpdateTaskType(ctx context.Context, id uint64, title string) (*models.TaskType, error) {
	title, verr := normalizeTaskTypeTitle(title)
	if verr != nil {
		return nil, verr
	}

	var taskType *models.TaskType
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		var err error
		taskType, err = tx.TaskTypes().FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTaskTypeNotFound
			}
			return err
		}

		if err := ensureTitleFree(ctx, tx, title, id); err != nil {
			return err
		}

		taskType.Title = title
		return tx.TaskTypes().Update(ctx, taskType)
	})
	if err != nil {
		return nil, failed("update task type", err)
	}
	return taskType, nil
}

// DeleteTaskType deletes a task type that no task references
func (s *TaskTypeService) DeleteTaskType(ctx context.Context, id uint64) error {
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		inUse, err := tx.TaskTypes().CountTasks(ctx, id)
		if err != nil {
			return err
		}
		if inUse > 0 {
			return ErrTaskTypeInUse
		}

		deleted, err := tx.TaskTypes().Delete(ctx, id)
		if err != nil {
			return err
		}
		if deleted == 0 {
			return ErrTaskTypeNotFound
		}
		return nil
	})
	return failed("delete task type", err)
}

// EnsureDefaultTaskTypes inserts the built-in task types that are missing.
// Running it again changes nothing.
func (s *TaskTypeService) EnsureDefaultTaskTypes(ctx context.Context) (*SeedResult, error) {
	result := &SeedResult{Created: []string{}, Existing: []string{}}

	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		result.Created = result.Created[:0]
		result.Existing = result.Existing[:0]

		for _, title := range constants.DefaultTaskTypes {
			_, created, err := tx.TaskTypes().FirstOrCreate(ctx, title)
			if err != nil {
				return fmt.Errorf("failed to ensure task type %q: %w", title, err)
			}
			if created {
				result.Created = append(result.Created, title)
			} else {
				result.Existing = append(result.Existing, title)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result.Types, err = s.store.TaskTypes().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list task types: %w", err)
	}
	return result, nil
}

func normalizeTaskTypeTitle(title string) (string, *apierrors.Error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", ErrTaskTypeTitleRequired
	}
	if n := utf8.RuneCountInString(title); n < constants.MinTaskTypeTitleLength || n > constants.MaxTaskTypeTitleLength {
		return "", ErrTaskTypeTitleLength
	}
	return title, nil
}

// ensureTitleFree fails with a conflict when another task type uses title
func ensureTitleFree(ctx context.Context, tx repository.Store, title string, selfID uint64) error {
	existing, err := tx.TaskTypes().FindByTitle(ctx, title)
	if err == nil {
		if existing.ID == selfID {
			return nil
		}
		return ErrTaskTypeTitleTaken
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	return err
}
