package domain

import "time"

// Invitation is a pending request for an email address to join an organization.
// Only a hash of the code is kept.
type Invitation struct {
	OrganizationID string    `json:"organizationId"`
	Email          string    `json:"email"`
	CodeHash       string    `json:"codeHash"`
	InvitedBy      string    `json:"invitedBy"`
	ExpiresAt      time.Time `json:"expiresAt"`
}
