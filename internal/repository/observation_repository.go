package repository

import (
	"context"

	"github.com/projectplanning/planning-cloud-api/internal/database"
	"github.com/projectplanning/planning-cloud-api/internal/models"
	"gorm.io/gorm"
)

// GormObservationRepository is a GORM implementation of ObservationRepository
type GormObservationRepository struct {
	db *gorm.DB
}

// NewObservationRepository creates a new ObservationRepository
func NewObservationRepository(db *gorm.DB) ObservationRepository {
	return &GormObservationRepository{db: db}
}

// Create creates a new observation
func (r *GormObservationRepository) Create(ctx context.Context, observation *models.TaskObservation) error {
	return r.db.WithContext(ctx).Omit("Task").Create(observation).Error
}

// FindByID finds an observation by ID with optional preloading
func (r *GormObservationRepository) FindByID(ctx context.Context, id uint64, preload ...string) (*models.TaskObservation, error) {
	var observation models.TaskObservation
	query := r.db.WithContext(ctx)
	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&observation, id).Error; err != nil {
		return nil, err
	}
	return &observation, nil
}

// FindByIDForUpdate finds an observation and locks its row
func (r *GormObservationRepository) FindByIDForUpdate(ctx context.Context, id uint64) (*models.TaskObservation, error) {
	var observation models.TaskObservation
	if err := database.ForUpdate(r.db.WithContext(ctx)).First(&observation, id).Error; err != nil {
		return nil, err
	}
	return &observation, nil
}

// Update saves all fields of an observation
func (r *GormObservationRepository) Update(ctx context.Context, observation *models.TaskObservation) error {
	return r.db.WithContext(ctx).Omit("Task").Save(observation).Error
}

// ListByTask retrieves the observations of a task, newest first
func (r *GormObservationRepository) ListByTask(ctx context.Context, filter ObservationFilter) ([]models.TaskObservation, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.TaskObservation{}).
		Where("task_id = ?", filter.TaskID)

	if filter.Resolved != nil {
		if *filter.Resolved {
			query = query.Where("resolution IS NOT NULL")
		} else {
			query = query.Where("resolution IS NULL")
		}
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query.Order("created_at DESC").Order("id DESC")
	if filter.Page > 0 && filter.PageSize > 0 {
		listQuery = listQuery.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	var observations []models.TaskObservation
	if err := listQuery.Find(&observations).Error; err != nil {
		return nil, 0, err
	}
	return observations, total, nil
}
