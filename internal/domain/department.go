package domain

import "time"

// Department groups teams inside an organization.
type Department struct {
	ID             string
	OrganizationID string
	Name           string
	Description    string
	DeletedAt      *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}
