package domain

import "time"

// TeamRole is the role of a member inside a team.
type TeamRole string

const (
	TeamRoleLeader TeamRole = "LEADER"
	TeamRoleMember TeamRole = "MEMBER"
)

// Valid reports whether r is a known role.
func (r TeamRole) Valid() bool {
	return r == TeamRoleLeader || r == TeamRoleMember
}

// Team represents a sub-group of an organization.
type Team struct {
	ID             string
	OrganizationID string
	DepartmentID   *string
	Name           string
	Description    string
	Avatar         *string
	CreatedBy      string
	DeletedAt      *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// TeamMember links a user to a team. Removal is a soft delete.
type TeamMember struct {
	ID        string
	TeamID    string
	UserID    string
	Role      TeamRole
	IsActive  bool
	DeletedAt *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
	User      *UserSummary
}

// Live reports whether the membership is neither removed nor deactivated.
func (m *TeamMember) Live() bool {
	return m.DeletedAt == nil && m.IsActive
}
