package dto

import (
	"time"

	"github.com/projectplanning/planning-cloud-api/internal/models"
)

// TaskTypeDTO represents a task type in API responses
type TaskTypeDTO struct {
	ID    uint64 `json:"id"`
	Title string `json:"title"`
}

// TaskSummaryDTO is the short task form embedded in observations
type TaskSummaryDTO struct {
	ID     uint64            `json:"id"`
	Title  string            `json:"title"`
	Status models.TaskStatus `json:"status"`
}

// TaskDTO represents a task in API responses
type TaskDTO struct {
	ID                uint64            `json:"id"`
	Title             string            `json:"title"`
	Description       string            `json:"description"`
	Status            models.TaskStatus `json:"status"`
	DueDate           *time.Time        `json:"dueDate"`
	EstimatedHours    *float64          `json:"estimatedHours"`
	ActualHours       *float64          `json:"actualHours"`
	ProjectID         *uint64           `json:"projectId"`
	TakenBy           *uint64           `json:"takenBy"`
	CreatedBy         *uint64           `json:"createdBy"`
	TaskTypeID        uint64            `json:"taskTypeId"`
	IsCoverageRequest bool              `json:"isCoverageRequest"`
	IsOverdue         bool              `json:"isOverdue"`
	Progress          int               `json:"progress"`
	CreatedAt         time.Time         `json:"createdAt"`
	UpdatedAt         time.Time         `json:"updatedAt"`
	TaskType          *TaskTypeDTO      `json:"taskType,omitempty"`
	Commitments       []CommitmentDTO   `json:"commitments,omitempty"`
	Observations      []ObservationDTO  `json:"observations,omitempty"`
}

// Conversion functions

// ToTaskTypeDTO converts a TaskType model to TaskTypeDTO
func ToTaskTypeDTO(taskType models.TaskType) TaskTypeDTO {
	return TaskTypeDTO{
		ID:    taskType.ID,
		Title: taskType.Title,
	}
}

// ToTaskTypeDTOs converts a slice of task types
func ToTaskTypeDTOs(taskTypes []models.TaskType) []TaskTypeDTO {
	items := make([]TaskTypeDTO, len(taskTypes))
	for i, taskType := range taskTypes {
		items[i] = ToTaskTypeDTO(taskType)
	}
	return items
}

// ToTaskDTO converts a Task model to TaskDTO. now decides isOverdue.
func ToTaskDTO(task models.Task, now time.Time) TaskDTO {
	dto := TaskDTO{
		ID:                task.ID,
		Title:             task.Title,
		Description:       task.Description,
		Status:            task.Status,
		DueDate:           task.DueDate,
		EstimatedHours:    task.EstimatedHours,
		ActualHours:       task.ActualHours,
		ProjectID:         task.ProjectID,
		TakenBy:           task.TakenBy,
		CreatedBy:         task.CreatedBy,
		TaskTypeID:        task.TaskTypeID,
		IsCoverageRequest: task.IsCoverageRequest,
		IsOverdue:         task.IsOverdue(now),
		Progress:          task.Progress(),
		CreatedAt:         task.CreatedAt,
		UpdatedAt:         task.UpdatedAt,
	}

	// Include task type if preloaded
	if task.TaskType.ID != 0 {
		taskType := ToTaskTypeDTO(task.TaskType)
		dto.TaskType = &taskType
	}

	if len(task.Commitments) > 0 {
		dto.Commitments = ToCommitmentDTOs(task.Commitments)
	}

	if len(task.Observations) > 0 {
		dto.Observations = make([]ObservationDTO, len(task.Observations))
		for i, observation := range task.Observations {
			dto.Observations[i] = ToObservationDTO(observation)
		}
	}

	return dto
}

// ToTaskDTOs converts a slice of tasks
func ToTaskDTOs(tasks []models.Task, now time.Time) []TaskDTO {
	items := make([]TaskDTO, len(tasks))
	for i, task := range tasks {
		items[i] = ToTaskDTO(task, now)
	}
	return items
}

// ToTaskSummaryDTO converts a Task model to TaskSummaryDTO
func ToTaskSummaryDTO(task models.Task) TaskSummaryDTO {
	return TaskSummaryDTO{
		ID:     task.ID,
		Title:  task.Title,
		Status: task.Status,
	}
}
