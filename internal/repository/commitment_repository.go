package repository

import (
	"context"

	"github.com/projectplanning/planning-cloud-api/internal/database"
	"github.com/projectplanning/planning-cloud-api/internal/models"
	"gorm.io/gorm"
)

// GormCommitmentRepository is a GORM implementation of CommitmentRepository
type GormCommitmentRepository struct {
	db *gorm.DB
}

// NewCommitmentRepository creates a new CommitmentRepository
func NewCommitmentRepository(db *gorm.DB) CommitmentRepository {
	return &GormCommitmentRepository{db: db}
}

// Create creates a new commitment
func (r *GormCommitmentRepository) Create(ctx context.Context, commitment *models.Commitment) error {
	return r.db.WithContext(ctx).Omit("Task").Create(commitment).Error
}

// FindByID finds a commitment by ID
func (r *GormCommitmentRepository) FindByID(ctx context.Context, id uint64) (*models.Commitment, error) {
	var commitment models.Commitment
	if err := r.db.WithContext(ctx).First(&commitment, id).Error; err != nil {
		return nil, err
	}
	return &commitment, nil
}

// FindByIDForUpdate finds a commitment and locks its row
func (r *GormCommitmentRepository) FindByIDForUpdate(ctx context.Context, id uint64) (*models.Commitment, error) {
	var commitment models.Commitment
	if err := database.ForUpdate(r.db.WithContext(ctx)).First(&commitment, id).Error; err != nil {
		return nil, err
	}
	return &commitment, nil
}

// List retrieves commitments matching the filter ordered by ID
func (r *GormCommitmentRepository) List(ctx context.Context, filter CommitmentFilter) ([]models.Commitment, error) {
	query := r.db.WithContext(ctx).Model(&models.Commitment{})

	if filter.TaskID != nil {
		query = query.Where("task_id = ?", *filter.TaskID)
	}
	if filter.TaskIDs != nil {
		if len(filter.TaskIDs) == 0 {
			return []models.Commitment{}, nil
		}
		query = query.Where("task_id IN ?", filter.TaskIDs)
	}
	if filter.OngID != nil {
		query = query.Where("ong_id = ?", *filter.OngID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	var commitments []models.Commitment
	if err := query.Order("id ASC").Find(&commitments).Error; err != nil {
		return nil, err
	}
	return commitments, nil
}

// FindApprovedByTask finds the approved commitment of a task other than excludeID
func (r *GormCommitmentRepository) FindApprovedByTask(ctx context.Context, taskID, excludeID uint64) (*models.Commitment, error) {
	var commitment models.Commitment
	err := r.db.WithContext(ctx).
		Where("task_id = ? AND status = ? AND id <> ?", taskID, models.CommitmentStatusApproved, excludeID).
		Order("id ASC").
		First(&commitment).Error
	if err != nil {
		return nil, err
	}
	return &commitment, nil
}

// UpdateStatus sets the status of a commitment
func (r *GormCommitmentRepository) UpdateStatus(ctx context.Context, commitment *models.Commitment, status models.CommitmentStatus) error {
	if err := r.db.WithContext(ctx).Model(commitment).Update("status", status).Error; err != nil {
		return err
	}
	commitment.Status = status
	return nil
}
