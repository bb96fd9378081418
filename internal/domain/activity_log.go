package domain

import "time"

// EntityType names the kind of entity an activity record describes.
type EntityType string

const (
	EntityTeam         EntityType = "TEAM"
	EntityProject      EntityType = "PROJECT"
	EntityOrganization EntityType = "ORGANIZATION"
)

// ActivityAction is the verb of an activity record.
type ActivityAction string

const (
	ActionCreated       ActivityAction = "CREATED"
	ActionUpdated       ActivityAction = "UPDATED"
	ActionDeleted       ActivityAction = "DELETED"
	ActionMemberAdded   ActivityAction = "MEMBER_ADDED"
	ActionMemberRemoved ActivityAction = "MEMBER_REMOVED"
	ActionOwnerAdded    ActivityAction = "OWNER_ADDED"
	ActionInvited       ActivityAction = "INVITED"
	ActionMemberJoined  ActivityAction = "MEMBER_JOINED"
)

// ActivityLog is an immutable audit trail entry.
type ActivityLog struct {
	ID             string
	EntityType     EntityType
	Action         ActivityAction
	UserID         string
	OrganizationID *string
	TeamID         *string
	ProjectID      *string
	Details        map[string]any
	CreatedAt      time.Time
}
