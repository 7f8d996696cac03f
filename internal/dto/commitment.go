package dto

import (
	"time"

	"github.com/projectplanning/planning-cloud-api/internal/models"
)

// CommitmentDTO represents a commitment in API responses
type CommitmentDTO struct {
	ID          uint64                  `json:"id"`
	TaskID      uint64                  `json:"taskId"`
	OngID       uint64                  `json:"ongId"`
	Status      models.CommitmentStatus `json:"status"`
	Description *string                 `json:"description"`
	CreatedAt   time.Time               `json:"createdAt"`
	UpdatedAt   time.Time               `json:"updatedAt"`
}

// CommitmentDoneDTO is the result of marking a commitment as done
type CommitmentDoneDTO struct {
	Commitment CommitmentDTO `json:"commitment"`
	Task       TaskDTO       `json:"task"`
}

// ObservationDTO represents a task observation in API responses
type ObservationDTO struct {
	ID           uint64          `json:"id"`
	TaskID       uint64          `json:"taskId"`
	Observations string          `json:"observations"`
	Resolution   *string         `json:"resolution"`
	CreatedBy    *uint64         `json:"createdBy"`
	ResolvedBy   *uint64         `json:"resolvedBy"`
	ResolvedAt   *time.Time      `json:"resolvedAt"`
	BonitaCaseID *int64          `json:"bonitaCaseId"`
	IsResolved   bool            `json:"isResolved"`
	CreatedAt    time.Time       `json:"createdAt"`
	UpdatedAt    time.Time       `json:"updatedAt"`
	Task         *TaskSummaryDTO `json:"task,omitempty"`
}

// ToCommitmentDTO converts a Commitment model to CommitmentDTO
func ToCommitmentDTO(commitment models.Commitment) CommitmentDTO {
	return CommitmentDTO{
		ID:          commitment.ID,
		TaskID:      commitment.TaskID,
		OngID:       commitment.OngID,
		Status:      commitment.Status,
		Description: commitment.Description,
		CreatedAt:   commitment.CreatedAt,
		UpdatedAt:   commitment.UpdatedAt,
	}
}

// ToCommitmentDTOs converts a slice of commitments
func ToCommitmentDTOs(commitments []models.Commitment) []CommitmentDTO {
	items := make([]CommitmentDTO, len(commitments))
	for i, commitment := range commitments {
		items[i] = ToCommitmentDTO(commitment)
	}
	return items
}

// ToObservationDTO converts a TaskObservation model to ObservationDTO
func ToObservationDTO(observation models.TaskObservation) ObservationDTO {
	dto := ObservationDTO{
		ID:           observation.ID,
		TaskID:       observation.TaskID,
		Observations: observation.Observations,
		Resolution:   observation.Resolution,
		CreatedBy:    observation.CreatedBy,
		ResolvedBy:   observation.ResolvedBy,
		ResolvedAt:   observation.ResolvedAt,
		BonitaCaseID: observation.BonitaCaseID,
		IsResolved:   observation.IsResolved(),
		CreatedAt:    observation.CreatedAt,
		UpdatedAt:    observation.UpdatedAt,
	}

	// Include task if preloaded
	if observation.Task != nil {
		task := ToTaskSummaryDTO(*observation.Task)
		dto.Task = &task
	}

	return dto
}

// ToObservationDTOs converts a slice of observations
func ToObservationDTOs(observations []models.TaskObservation) []ObservationDTO {
	items := make([]ObservationDTO, len(observations))
	for i, observation := range observations {
		items[i] = ToObservationDTO(observation)
	}
	return items
}
