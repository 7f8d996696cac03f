package repository

import (
	"context"
	"time"

	"github.com/projectplanning/planning-cloud-api/internal/database"
	"github.com/projectplanning/planning-cloud-api/internal/models"
	"gorm.io/gorm"
)

// GormTaskRepository is a GORM implementation of TaskRepository
type GormTaskRepository struct {
	db *gorm.DB
}

// NewTaskRepository creates a new TaskRepository
func NewTaskRepository(db *gorm.DB) TaskRepository {
	return &GormTaskRepository{db: db}
}

// Create creates a new task
func (r *GormTaskRepository) Create(ctx context.Context, task *models.Task) error {
	return r.db.WithContext(ctx).Omit("TaskType", "Commitments", "Observations").Create(task).Error
}

// CreateBatch inserts all tasks in one statement
func (r *GormTaskRepository) CreateBatch(ctx context.Context, tasks []models.Task) error {
	if len(tasks) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Omit("TaskType", "Commitments", "Observations").Create(&tasks).Error
}

// FindByID finds a task by ID with optional preloading
func (r *GormTaskRepository) FindByID(ctx context.Context, id uint64, preload ...string) (*models.Task, error) {
	var task models.Task
	query := r.db.WithContext(ctx)

	// Apply preloading if specified
	for _, p := range preload {
		query = query.Preload(p)
	}

	if err := query.First(&task, id).Error; err != nil {
		return nil, err
	}

	return &task, nil
}

// FindByIDForUpdate finds a task and locks its row
func (r *GormTaskRepository) FindByIDForUpdate(ctx context.Context, id uint64) (*models.Task, error) {
	var task models.Task
	if err := database.ForUpdate(r.db.WithContext(ctx)).First(&task, id).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

// FindByIDs finds tasks by ID ordered by ID
func (r *GormTaskRepository) FindByIDs(ctx context.Context, ids []uint64, preload ...string) ([]models.Task, error) {
	if len(ids) == 0 {
		return []models.Task{}, nil
	}

	query := r.db.WithContext(ctx)
	for _, p := range preload {
		query = query.Preload(p)
	}

	var tasks []models.Task
	if err := query.Where("id IN ?", ids).Order("id ASC").Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

// List retrieves tasks with filtering and pagination
func (r *GormTaskRepository) List(ctx context.Context, filter TaskFilter) ([]models.Task, int64, error) {
	var tasks []models.Task

	query := r.db.WithContext(ctx).Model(&models.Task{})

	// Apply filters
	if filter.Status != nil {
		query = query.Where("tasks.status = ?", *filter.Status)
	}
	if filter.ProjectID != nil {
		query = query.Where("tasks.project_id = ?", *filter.ProjectID)
	}
	if filter.TakenBy != nil {
		query = query.Where("tasks.taken_by = ?", *filter.TakenBy)
	}
	if filter.TaskTypeID != nil {
		query = query.Where("tasks.task_type_id = ?", *filter.TaskTypeID)
	}
	if filter.IsCoverageRequest != nil {
		query = query.Where("tasks.is_coverage_request = ?", *filter.IsCoverageRequest)
	}
	if filter.Unassigned {
		assignedSubQuery := r.db.Model(&models.Commitment{}).
			Select("DISTINCT commitments.task_id").
			Where("commitments.status = ?", models.CommitmentStatusApproved)
		query = query.Where("tasks.id NOT IN (?)", assignedSubQuery)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listQuery := query.Order("tasks.created_at DESC").Order("tasks.id DESC")

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		listQuery = listQuery.Offset(offset).Limit(filter.PageSize)
	}

	listQuery = listQuery.Preload("TaskType")
	for _, p := range filter.Preload {
		listQuery = listQuery.Preload(p)
	}

	if err := listQuery.Find(&tasks).Error; err != nil {
		return nil, 0, err
	}

	return tasks, total, nil
}

// ProjectTaskIDs returns the IDs of every task in a project
func (r *GormTaskRepository) ProjectTaskIDs(ctx context.Context, projectID uint64) ([]uint64, error) {
	var ids []uint64
	err := r.db.WithContext(ctx).Model(&models.Task{}).
		Where("project_id = ?", projectID).
		Order("id ASC").
		Pluck("id", &ids).Error
	return ids, err
}

// Update saves all fields of a task
func (r *GormTaskRepository) Update(ctx context.Context, task *models.Task) error {
	return r.db.WithContext(ctx).Omit("TaskType", "Commitments", "Observations").Save(task).Error
}

// UpdateStatus sets the status of a task
func (r *GormTaskRepository) UpdateStatus(ctx context.Context, task *models.Task, status models.TaskStatus) error {
	if err := r.db.WithContext(ctx).Model(task).Update("status", status).Error; err != nil {
		return err
	}
	task.Status = status
	return nil
}

// Delete deletes a task and its dependents in a transaction
func (r *GormTaskRepository) Delete(ctx context.Context, id uint64) (int64, error) {
	var deleted int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", id).Delete(&models.TaskObservation{}).Error; err != nil {
			return err
		}

		if err := tx.Where("task_id = ?", id).Delete(&models.Commitment{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&models.Task{}, id)
		deleted = result.RowsAffected
		return result.Error
	})
	return deleted, err
}

// Count counts tasks, optionally restricted to one status
func (r *GormTaskRepository) Count(ctx context.Context, status *models.TaskStatus) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.Task{})
	if status != nil {
		query = query.Where("status = ?", *status)
	}
	err := query.Count(&count).Error
	return count, err
}

// CountPerDay counts tasks created since the given instant grouped by calendar day
func (r *GormTaskRepository) CountPerDay(ctx context.Context, status *models.TaskStatus, since time.Time) ([]DayCount, error) {
	bucket := dayBucketExpr(r.db.Dialector.Name())

	query := r.db.WithContext(ctx).Model(&models.Task{}).
		Select(bucket+" AS bucket, COUNT(*) AS total").
		Where("created_at >= ?", since)
	if status != nil {
		query = query.Where("status = ?", *status)
	}

	var rows []struct {
		Bucket string
		Total  int64
	}
	if err := query.Group(bucket).Order("bucket ASC").Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make([]DayCount, len(rows))
	for i, row := range rows {
		counts[i] = DayCount{Date: row.Bucket, Total: row.Total}
	}
	return counts, nil
}

// dayBucketExpr renders created_at as a YYYY-MM-DD string in the given dialect
func dayBucketExpr(dialect string) string {
	switch dialect {
	case "postgres":
		return "TO_CHAR(DATE_TRUNC('day', created_at), 'YYYY-MM-DD')"
	case "mysql":
		return "DATE_FORMAT(created_at, '%Y-%m-%d')"
	default:
		return "strftime('%Y-%m-%d', created_at)"
	}
}
