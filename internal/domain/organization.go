package domain

import "time"

// Organization is the tenant boundary owning teams.
type Organization struct {
	ID          string
	Name        string
	Description string
	LogoURL     *string
	OwnerIDs    []string
	MemberIDs   []string
	DeletedAt   *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsOwner reports whether userID is listed as an owner.
func (o *Organization) IsOwner(userID string) bool {
	return containsID(o.OwnerIDs, userID)
}

// IsMember reports whether userID belongs to the organization.
func (o *Organization) IsMember(userID string) bool {
	return containsID(o.MemberIDs, userID)
}

func containsID(ids []string, id string) bool {
	if id == "" {
		return false
	}
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}
	return false
}
