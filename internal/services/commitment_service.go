package services

import (
	"context"
	"errors"
	"fmt"

	apierrors "github.com/projectplanning/planning-cloud-api/internal/errors"
	"github.com/projectplanning/planning-cloud-api/internal/models"
	"github.com/projectplanning/planning-cloud-api/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrCommitmentNotFound       = apierrors.NotFound("commitment not found")
	ErrCommitmentIDRequired     = apierrors.Validation("commitmentId is required")
	ErrTaskIDRequired           = apierrors.Validation("taskId is required")
	ErrOngIDRequired            = apierrors.Validation("ongId is required")
	ErrProjectIDRequired        = apierrors.Validation("projectId is required")
	ErrInvalidCommitmentStatus  = apierrors.Validation("status must be one of pending, approved, rejected, done")
	ErrCommitmentTaskMismatch   = apierrors.Validation("commitment does not belong to the given task")
	ErrCommitmentAlreadyDone    = apierrors.Validation("a completed commitment cannot be rejected")
	ErrApprovedCommitmentExists = apierrors.Conflict("an approved commitment already exists for this task")
)

// CommitmentService handles commitment business logic. Every multi-step
// mutation runs in one transaction that locks the commitment row before the
// task row.
type CommitmentService struct {
	store repository.Store
}

// NewCommitmentService creates a new CommitmentService
func NewCommitmentService(store repository.Store) *CommitmentService {
	return &CommitmentService{store: store}
}

// ListCommitmentsInput represents filters for listing commitments
type ListCommitmentsInput struct {
	TaskID *uint64
	OngID  *uint64
	Status *models.CommitmentStatus
}

// CreateCommitmentInput represents input for proposing a commitment
type CreateCommitmentInput struct {
	TaskID      uint64
	OngID       uint64
	Status      models.CommitmentStatus
	Description *string
}

// ListCommitments returns commitments matching the filters
func (s *CommitmentService) ListCommitments(ctx context.Context, input ListCommitmentsInput) ([]models.Commitment, error) {
	if input.Status != nil && !input.Status.Valid() {
		return nil, ErrInvalidCommitmentStatus
	}

	commitments, err := s.store.Commitments().List(ctx, repository.CommitmentFilter{
		TaskID: input.TaskID,
		OngID:  input.OngID,
		Status: input.Status,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list commitments: %w", err)
	}
	return commitments, nil
}

// ListCommitmentsByTask returns the commitments proposed for a task
func (s *CommitmentService) ListCommitmentsByTask(ctx context.Context, taskID uint64) ([]models.Commitment, error) {
	if taskID == 0 {
		return nil, ErrTaskIDRequired
	}

	commitments, err := s.store.Commitments().List(ctx, repository.CommitmentFilter{TaskID: &taskID})
	if err != nil {
		return nil, fmt.Errorf("failed to list task commitments: %w", err)
	}
	return commitments, nil
}

// ListCommitmentsByProject returns the commitments of every task in a project
func (s *CommitmentService) ListCommitmentsByProject(ctx context.Context, projectID uint64) ([]models.Commitment, error) {
	if projectID == 0 {
		return nil, ErrProjectIDRequired
	}

	taskIDs, err := s.store.Tasks().ProjectTaskIDs(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve project tasks: %w", err)
	}
	if len(taskIDs) == 0 {
		return []models.Commitment{}, nil
	}

	commitments, err := s.store.Commitments().List(ctx, repository.CommitmentFilter{TaskIDs: taskIDs})
	if err != nil {
		return nil, fmt.Errorf("failed to list project commitments: %w", err)
	}
	return commitments, nil
}

// CreateCommitment stores a new commitment for an existing task. A commitment
// created as approved is subject to the same single-approval check as
// AssignCommitment.
func (s *CommitmentService) CreateCommitment(ctx context.Context, input CreateCommitmentInput) (*models.Commitment, error) {
	if input.TaskID == 0 {
		return nil, ErrTaskIDRequired
	}
	if input.OngID == 0 {
		return nil, ErrOngIDRequired
	}

	status := input.Status
	if status == "" {
		status = models.CommitmentStatusPending
	}
	if !status.Valid() {
		return nil, ErrInvalidCommitmentStatus
	}

	commitment := &models.Commitment{
		TaskID:      input.TaskID,
		OngID:       input.OngID,
		Status:      status,
		Description: input.Description,
	}

	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		commitment.ID = 0

		if _, err := tx.Tasks().FindByIDForUpdate(ctx, input.TaskID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTaskNotFound
			}
			return err
		}

		if status == models.CommitmentStatusApproved {
			if err := ensureNoOtherApproved(ctx, tx, input.TaskID, 0); err != nil {
				return err
			}
		}

		return tx.Commitments().Create(ctx, commitment)
	})
	if err != nil {
		return nil, failed("create commitment", err)
	}

	return commitment, nil
}

// AssignCommitment approves a commitment for the task it belongs to. It fails
// when the commitment belongs to another task or when a different commitment
// of the task is already approved. Approving the approved commitment again is
// a no-op.
func (s *CommitmentService) AssignCommitment(ctx context.Context, commitmentID, taskID uint64) (*models.Commitment, error) {
	if commitmentID == 0 {
		return nil, ErrCommitmentIDRequired
	}
	if taskID == 0 {
		return nil, ErrTaskIDRequired
	}

	var commitment *models.Commitment
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		var err error
		commitment, err = tx.Commitments().FindByIDForUpdate(ctx, commitmentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCommitmentNotFound
			}
			return err
		}

		if commitment.TaskID != taskID {
			return ErrCommitmentTaskMismatch
		}

		// Serializes concurrent approvals for the same task.
		if _, err := tx.Tasks().FindByIDForUpdate(ctx, taskID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTaskNotFound
			}
			return err
		}

		if err := ensureNoOtherApproved(ctx, tx, taskID, commitment.ID); err != nil {
			return err
		}

		if commitment.Status == models.CommitmentStatusApproved {
			return nil
		}
		return tx.Commitments().UpdateStatus(ctx, commitment, models.CommitmentStatusApproved)
	})
	if err != nil {
		return nil, failed("assign commitment", err)
	}

	return commitment, nil
}

// MarkCommitmentDone marks a commitment and its task as done. Either both rows
// change or neither does.
func (s *CommitmentService) MarkCommitmentDone(ctx context.Context, commitmentID uint64) (*models.Commitment, *models.Task, error) {
	if commitmentID == 0 {
		return nil, nil, ErrCommitmentIDRequired
	}

	var (
		commitment *models.Commitment
		task       *models.Task
	)
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		var err error
		commitment, err = tx.Commitments().FindByIDForUpdate(ctx, commitmentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCommitmentNotFound
			}
			return err
		}

		task, err = tx.Tasks().FindByIDForUpdate(ctx, commitment.TaskID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTaskNotFound
			}
			return err
		}

		if err := tx.Commitments().UpdateStatus(ctx, commitment, models.CommitmentStatusDone); err != nil {
			return err
		}
		return tx.Tasks().UpdateStatus(ctx, task, models.TaskStatusDone)
	})
	if err != nil {
		return nil, nil, failed("mark commitment as done", err)
	}

	return commitment, task, nil
}

// RejectCommitment marks a commitment as rejected
func (s *CommitmentService) RejectCommitment(ctx context.Context, commitmentID uint64) (*models.Commitment, error) {
	if commitmentID == 0 {
		return nil, ErrCommitmentIDRequired
	}

	var commitment *models.Commitment
	err := s.store.Transaction(ctx, func(tx repository.Store) error {
		var err error
		commitment, err = tx.Commitments().FindByIDForUpdate(ctx, commitmentID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCommitmentNotFound
			}
			return err
		}

		switch commitment.Status {
		case models.CommitmentStatusRejected:
			return nil
		case models.CommitmentStatusDone:
			return ErrCommitmentAlreadyDone
		}
		return tx.Commitments().UpdateStatus(ctx, commitment, models.CommitmentStatusRejected)
	})
	if err != nil {
		return nil, failed("reject commitment", err)
	}

	return commitment, nil
}

// ensureNoOtherApproved fails with a conflict when a commitment of the task
// other than excludeID is approved
func ensureNoOtherApproved(ctx context.Context, tx repository.Store, taskID, excludeID uint64) error {
	_, err := tx.Commitments().FindApprovedByTask(ctx, taskID, excludeID)
	if err == nil {
		return ErrApprovedCommitmentExists
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	return err
}
