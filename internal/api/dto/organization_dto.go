package dto

import (
	"time"

	"github.com/teamhub/team-service/internal/domain"
	"github.com/teamhub/team-service/internal/service"
)

// AddOwnersRequest payload.
type AddOwnersRequest struct {
	UserIDs []string `json:"userIds"`
}

// InviteRequest payload.
type InviteRequest struct {
	Email string `json:"email"`
}

// AcceptInvitationRequest payload.
type AcceptInvitationRequest struct {
	Code string `json:"code"`
}

// OrganizationResponse is the public shape of an organization.
type OrganizationResponse struct {
	ID          string               `json:"id"`
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Logo        *string              `json:"logo"`
	Owners      []domain.UserSummary `json:"owners,omitempty"`
	Members     []domain.UserSummary `json:"members,omitempty"`
	CreatedAt   time.Time            `json:"createdAt"`
	UpdatedAt   time.Time            `json:"updatedAt"`
}

// InvitationResponse describes an issued invitation. Code is omitted in production.
type InvitationResponse struct {
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expiresAt"`
	Code      string    `json:"code,omitempty"`
}

// ActivityResponse is one audit record.
type ActivityResponse struct {
	ID             string                `json:"id"`
	EntityType     domain.EntityType     `json:"entityType"`
	Action         domain.ActivityAction `json:"action"`
	UserID         string                `json:"userId"`
	OrganizationID *string               `json:"organizationId"`
	TeamID         *string               `json:"teamId"`
	ProjectID      *string               `json:"projectId"`
	Details        map[string]any        `json:"details"`
	CreatedAt      time.Time             `json:"createdAt"`
}

// ActivityListResponse data of GET /activity.
type ActivityListResponse struct {
	Activities []ActivityResponse `json:"activities"`
	Page       int                `json:"page"`
	Limit      int                `json:"limit"`
}

// ToAddOwnersInput converts the request payload.
func (r AddOwnersRequest) ToAddOwnersInput() service.AddOwnersInput {
	return service.AddOwnersInput{UserIDs: r.UserIDs}
}

// NewOrganizationResponse maps a bare organization.
func NewOrganizationResponse(org *domain.Organization) OrganizationResponse {
	return OrganizationResponse{
		ID:          org.ID,
		Name:        org.Name,
		Description: org.Description,
		Logo:        org.LogoURL,
		CreatedAt:   org.CreatedAt,
		UpdatedAt:   org.UpdatedAt,
	}
}

// NewOrganizationViewResponse maps an organization with owners and members.
func NewOrganizationViewResponse(view *service.OrganizationView) OrganizationResponse {
	resp := NewOrganizationResponse(view.Organization)
	resp.Owners = view.Owners
	resp.Members = view.Members
	return resp
}

// NewInvitationResponse maps an issued invitation.
func NewInvitationResponse(result *service.InvitationResult) InvitationResponse {
	return InvitationResponse{Email: result.Email, ExpiresAt: result.ExpiresAt, Code: result.Code}
}

// NewActivityListResponse maps a page of activity records.
func NewActivityListResponse(page *service.ActivityPage) ActivityListResponse {
	items := make([]ActivityResponse, 0, len(page.Entries))
	for _, entry := range page.Entries {
		items = append(items, ActivityResponse{
			ID:             entry.ID,
			EntityType:     entry.EntityType,
			Action:         entry.Action,
			UserID:         entry.UserID,
			OrganizationID: entry.OrganizationID,
			TeamID:         entry.TeamID,
			ProjectID:      entry.ProjectID,
			Details:        entry.Details,
			CreatedAt:      entry.CreatedAt,
		})
	}
	return ActivityListResponse{Activities: items, Page: page.Page, Limit: page.Limit}
}
