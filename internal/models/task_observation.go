package models

import "time"

type TaskObservation struct {
	ID           uint64     `gorm:"primarykey" json:"id"`
	TaskID       uint64     `gorm:"not null;index" json:"taskId"`
	Observations string     `gorm:"type:text;not null" json:"observations"`
	Resolution   *string    `gorm:"type:text" json:"resolution"`
	CreatedBy    *uint64    `gorm:"index" json:"createdBy"`
	ResolvedBy   *uint64    `gorm:"index" json:"resolvedBy"`
	ResolvedAt   *time.Time `gorm:"index" json:"resolvedAt"`
	BonitaCaseID *int64     `gorm:"index" json:"bonitaCaseId"`
	CreatedAt    time.Time  `gorm:"index" json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`

	// Relations
	Task *Task `gorm:"foreignKey:TaskID" json:"task,omitempty"`
}

// IsResolved reports whether a resolution has been recorded.
func (o *TaskObservation) IsResolved() bool {
	return o.Resolution != nil
}
