package models

import (
	"time"
)

type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "todo"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusDone       TaskStatus = "done"
)

// Valid reports whether s is one of the known task statuses.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusTodo, TaskStatusInProgress, TaskStatusDone:
		return true
	}
	return false
}

type Task struct {
	ID                uint64     `gorm:"primarykey" json:"id"`
	Title             string     `gorm:"type:varchar(150);not null" json:"title"`
	Description       string     `gorm:"type:text" json:"description"`
	Status            TaskStatus `gorm:"type:varchar(20);not null;default:'todo';index" json:"status"`
	DueDate           *time.Time `gorm:"index" json:"dueDate"`
	EstimatedHours    *float64   `gorm:"type:decimal(5,2)" json:"estimatedHours"`
	ActualHours       *float64   `gorm:"type:decimal(5,2)" json:"actualHours"`
	ProjectID         *uint64    `gorm:"index" json:"projectId"`
	TakenBy           *uint64    `gorm:"index" json:"takenBy"`
	CreatedBy         *uint64    `gorm:"index" json:"createdBy"`
	TaskTypeID        uint64     `gorm:"not null;index" json:"taskTypeId"`
	IsCoverageRequest bool       `gorm:"not null;default:false;index" json:"isCoverageRequest"`
	CreatedAt         time.Time  `gorm:"index" json:"createdAt"`
	UpdatedAt         time.Time  `json:"updatedAt"`

	// Relations
	TaskType     TaskType          `gorm:"foreignKey:TaskTypeID" json:"taskType,omitempty"`
	Commitments  []Commitment      `gorm:"foreignKey:TaskID" json:"commitments,omitempty"`
	Observations []TaskObservation `gorm:"foreignKey:TaskID" json:"observations,omitempty"`
}

// IsOverdue reports whether the due date has passed without the task being done.
func (t *Task) IsOverdue(now time.Time) bool {
	return t.DueDate != nil && t.DueDate.Before(now) && t.Status != TaskStatusDone
}

// Progress maps the status onto a completion percentage.
func (t *Task) Progress() int {
	switch t.Status {
	case TaskStatusInProgress:
		return 25
	case TaskStatusDone:
		return 100
	default:
		return 0
	}
}
