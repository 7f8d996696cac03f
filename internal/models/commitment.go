package models

import "time"

type CommitmentStatus string

const (
	CommitmentStatusPending  CommitmentStatus = "pending"
	CommitmentStatusApproved CommitmentStatus = "approved"
	CommitmentStatusRejected CommitmentStatus = "rejected"
	CommitmentStatusDone     CommitmentStatus = "done"
)

func (s CommitmentStatus) Valid() bool {
	switch s {
	case CommitmentStatusPending, CommitmentStatusApproved, CommitmentStatusRejected, CommitmentStatusDone:
		return true
	}
	return false
}

// Commitment is an ONG's proposal to fulfill a task. At most one commitment
// per task is approved at a time.
type Commitment struct {
	ID          uint64           `gorm:"primarykey" json:"id"`
	TaskID      uint64           `gorm:"not null;index" json:"taskId"`
	OngID       uint64           `gorm:"not null;index" json:"ongId"`
	Status      CommitmentStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	Description *string          `gorm:"type:text" json:"description"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`

	// Relations
	Task *Task `gorm:"foreignKey:TaskID" json:"task,omitempty"`
}
