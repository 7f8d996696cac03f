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
	ErrObservationNotFound        = apierrors.NotFound("observation not found")
	ErrObservationIDRequired      = apierrors.Validation("observationId is required")
	ErrObservationRequired        = apierrors.Validation("observations are required")
	ErrObservationTooLong         = apierrors.Validationf("observations must be at most %d characters", constants.MaxObservationLength)
	ErrResolutionRequired         = apierrors.Validation("resolution is required")
	ErrResolutionTooLong          = apierrors.Validationf("resolution must be at most %d characters", constants.MaxResolutionLength)
	ErrTaskNotInProgress          = apierrors.Validation("observations can only be added to tasks in progress")
	ErrObservationAlreadyResolved = apierrors.Validation("observation has already been resolved")
)

// ObservationService handles task observation business logic
type ObservationService struct {
	store repository.Store
	now   func() time.Time
}

// NewObservationService creates a new ObservationService
func NewObservationService(store repository.Store) *ObservationService {
	return &ObservationService{store: store, now: time.Now}
}

// CreateObservationInput represents input for recording an observation
type CreateObservationInput struct {
	TaskID       uint64
	Observations string
	CreatedBy    *uint64
	BonitaCaseID *int64
}

// ResolveObservationInput represents input for resolving an observation
type ResolveObservationInput struct {
	ObservationID uint64
	Resolution    string
	ResolvedBy    *uint64
}

// ListObservationsInput represents filters for listing the observations of a task
type ListObservationsInput struct {
	TaskID   uint64
	Resolved *bool
	Page     int
	PageSize int
}

// CreateObservation appends an observation to a task in progress
func (s *ObservationService) CreateObservation(ctx context.Context, input CreateObservationInput) (*models.TaskObservation, error) {
	if input.TaskID == 0 {
		return nil, ErrTaskIDRequired
	}

	text := strings.TrimSpace(input.Observations)
	if text == "" {
		return nil, ErrObservationRequired
	}
	if utf8.RuneCountInString(text) > constants.MaxObservationLength {
		return nil, ErrObservationTooLong
	}

	observation := &models.TaskObservation{
		TaskID:       input.TaskID,
		Observations: text,
		CreatedBy:    input.CreatedBy,
		BonitaCaseID: input.BonitaCaseID,
	}

	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		observation.ID = 0

		// Holding the task row keeps its status stable until the insert commits.
		task, err := tx.Tasks().FindByIDForUpdate(ctx, input.TaskID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTaskNotFound
			}
			return err
		}

		if task.Status != models.TaskStatusInProgress {
			return ErrTaskNotInProgress
		}

		return tx.Observations().Create(ctx, observation)
	})
	if err != nil {
		return nil, failed("create observation", err)
	}

	return s.store.Observations().FindByID(ctx, observation.ID, "Task")
}

// ResolveObservation records the resolution of an observation. An observation
// can be resolved only once.
func (s *ObservationService) ResolveObservation(ctx context.Context, input ResolveObservationInput) (*models.TaskObservation, error) {
	if input.ObservationID == 0 {
		return nil, ErrObservationIDRequired
	}

	resolution := strings.TrimSpace(input.Resolution)
	if resolution == "" {
		return nil, ErrResolutionRequired
	}
	if utf8.RuneCountInString(resolution) > constants.MaxResolutionLength {
		return nil, ErrResolutionTooLong
	}

	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		observation, err := tx.Observations().FindByIDForUpdate(ctx, input.ObservationID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrObservationNotFound
			}
			return err
		}

		if observation.IsResolved() {
			return ErrObservationAlreadyResolved
		}

		resolvedAt := s.now()
		observation.Resolution = &resolution
		observation.ResolvedBy = input.ResolvedBy
		observation.ResolvedAt = &resolvedAt

		return tx.Observations().Update(ctx, observation)
	})
	if err != nil {
		return nil, failed("resolve observation", err)
	}

	return s.store.Observations().FindByID(ctx, input.ObservationID, "Task")
}

// ListObservationsByTask returns the observations of an existing task, newest first
func (s *ObservationService) ListObservationsByTask(ctx context.Context, input ListObservationsInput) ([]models.TaskObservation, int64, error) {
	if input.TaskID == 0 {
		return nil, 0, ErrTaskIDRequired
	}

	if _, err := s.store.Tasks().FindByID(ctx, input.TaskID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, 0, ErrTaskNotFound
		}
		return nil, 0, fmt.Errorf("failed to find task: %w", err)
	}

	observations, total, err := s.store.Observations().ListByTask(ctx, repository.ObservationFilter{
		TaskID:   input.TaskID,
		Resolved: input.Resolved,
		Page:     input.Page,
		PageSize: input.PageSize,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list observations: %w", err)
	}

	return observations, total, nil
}
