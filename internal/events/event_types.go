package events

import (
	"time"

	"github.com/teamhub/team-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventActivityRecorded  EventType = "activity_recorded"
	EventInvitationCreated EventType = "invitation_created"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID             string      `json:"id"`
	Type           EventType   `json:"type"`
	OrganizationID string      `json:"organization_id"`
	ActorID        string      `json:"actor_id"`
	Timestamp      time.Time   `json:"timestamp"`
	Payload        interface{} `json:"payload"`
}

// ActivityRecordedPayload mirrors a committed activity log entry.
type ActivityRecordedPayload struct {
	ActivityID string                `json:"activity_id"`
	EntityType domain.EntityType     `json:"entity_type"`
	Action     domain.ActivityAction `json:"action"`
	TeamID     *string               `json:"team_id,omitempty"`
	ProjectID  *string               `json:"project_id,omitempty"`
}

// InvitationCreatedPayload carries what the mailer needs to deliver a code.
type InvitationCreatedPayload struct {
	Email            string    `json:"email"`
	OrganizationName string    `json:"organization_name"`
	Code             string    `json:"-"`
	ExpiresAt        time.Time `json:"expires_at"`
}
