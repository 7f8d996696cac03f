package repository

import (
	"context"
	"errors"

	"github.com/projectplanning/planning-cloud-api/internal/models"
	"gorm.io/gorm"
)

// GormTaskTypeRepository is a GORM implementation of TaskTypeRepository
type GormTaskTypeRepository struct {
	db *gorm.DB
}

// NewTaskTypeRepository creates a new TaskTypeRepository
func NewTaskTypeRepository(db *gorm.DB) TaskTypeRepository {
	return &GormTaskTypeRepository{db: db}
}

func (r *GormTaskTypeRepository) List(ctx context.Context) ([]models.TaskType, error) {
	var taskTypes []models.TaskType
	if err := r.db.WithContext(ctx).Order("title ASC").Find(&taskTypes).Error; err != nil {
		return nil, err
	}
	return taskTypes, nil
}

func (r *GormTaskTypeRepository) FindByID(ctx context.Context, id uint64) (*models.TaskType, error) {
	var taskType models.TaskType
	if err := r.db.WithContext(ctx).First(&taskType, id).Error; err != nil {
		return nil, err
	}
	return &taskType, nil
}

func (r *GormTaskTypeRepository) FindByTitle(ctx context.Context, title string) (*models.TaskType, error) {
	var taskType models.TaskType
	if err := r.db.WithContext(ctx).Where("title = ?", title).First(&taskType).Error; err != nil {
		return nil, err
	}
	return &taskType, nil
}

func (r *GormTaskTypeRepository) Create(ctx context.Context, taskType *models.TaskType) error {
	return r.db.WithContext(ctx).Create(taskType).Error
}

func (r *GormTaskTypeRepository) FirstOrCreate(ctx context.Context, title string) (*models.TaskType, bool, error) {
	existing, err := r.FindByTitle(ctx, title)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	taskType := &models.TaskType{Title: title}
	if err := r.Create(ctx, taskType); err != nil {
		return nil, false, err
	}
	return taskType, true, nil
}

func (r *GormTaskTypeRepository) Update(ctx context.Context, taskType *models.TaskType) error {
	return r.db.WithContext(ctx).Save(taskType).Error
}

func (r *GormTaskTypeRepository) Delete(ctx context.Context, id uint64) (int64, error) {
	result := r.db.WithContext(ctx).Delete(&models.TaskType{}, id)
	return result.RowsAffected, result.Error
}

func (r *GormTaskTypeRepository) CountTasks(ctx context.Context, id uint64) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Task{}).Where("task_type_id = ?", id).Count(&count).Error
	return count, err
}
