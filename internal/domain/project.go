package domain

import "time"

// ProjectStatus tracks project progress.
type ProjectStatus string

const (
	ProjectStatusPlanning   ProjectStatus = "PLANNING"
	ProjectStatusInProgress ProjectStatus = "IN_PROGRESS"
	ProjectStatusOnHold     ProjectStatus = "ON_HOLD"
	ProjectStatusCompleted  ProjectStatus = "COMPLETED"
)

// Project belongs to a team and is soft-deleted with it.
type Project struct {
	ID             string
	TeamID         string
	Name           string
	Description    string
	Status         ProjectStatus
	LastModifiedBy *string
	DeletedAt      *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
