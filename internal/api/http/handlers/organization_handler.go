package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/teamhub/team-service/internal/api/dto"
	"github.com/teamhub/team-service/internal/domain"
	"github.com/teamhub/team-service/internal/service"
)

// OrganizationHandler serves organization, invitation and activity endpoints.
type OrganizationHandler struct {
	organizations  *service.OrganizationService
	invitations    *service.InvitationService
	maxUploadBytes int
}

// NewOrganizationHandler constructs handler.
func NewOrganizationHandler(organizations *service.OrganizationService, invitations *service.InvitationService, maxUploadBytes int) *OrganizationHandler {
	return &OrganizationHandler{organizations: organizations, invitations: invitations, maxUploadBytes: maxUploadBytes}
}

// GetOrganization GET /api/organization/:organizationId.
func (h *OrganizationHandler) GetOrganization(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	view, err := h.organizations.GetOrganization(c.UserContext(), actor, c.Params("organizationId"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "", fiber.Map{"organization": dto.NewOrganizationViewResponse(view)})
}

// AddOwners POST /api/organization/:organizationId/addOwner.
func (h *OrganizationHandler) AddOwners(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	var req dto.AddOwnersRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	view, err := h.organizations.AddOwners(c.UserContext(), actor, c.Params("organizationId"), req.ToAddOwnersInput())
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Owners added successfully.", fiber.Map{"organization": dto.NewOrganizationViewResponse(view)})
}

// UploadLogo POST /api/organization/:organizationId/logo/upload.
func (h *OrganizationHandler) UploadLogo(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	upload, err := readUpload(c, h.maxUploadBytes)
	if err != nil {
		return err
	}
	org, err := h.organizations.UploadLogo(c.UserContext(), actor, c.Params("organizationId"), upload)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Organization logo uploaded successfully", fiber.Map{"organization": dto.NewOrganizationResponse(org)})
}

// DeleteLogo DELETE /api/organization/:organizationId/logo/delete.
func (h *OrganizationHandler) DeleteLogo(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	org, err := h.organizations.DeleteLogo(c.UserContext(), actor, c.Params("organizationId"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Organization logo deleted successfully", fiber.Map{"organization": dto.NewOrganizationResponse(org)})
}

// Invite POST /api/organization/:organizationId/invitations.
func (h *OrganizationHandler) Invite(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	var req dto.InviteRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	result, err := h.invitations.Invite(c.UserContext(), actor, c.Params("organizationId"), service.InviteInput{Email: req.Email})
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, "Invitation sent successfully.", dto.NewInvitationResponse(result))
}

// AcceptInvitation POST /api/organization/:organizationId/invitations/accept.
func (h *OrganizationHandler) AcceptInvitation(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	var req dto.AcceptInvitationRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	org, err := h.invitations.AcceptInvitation(c.UserContext(), actor, c.Params("organizationId"), service.AcceptInvitationInput{Code: req.Code})
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Invitation accepted successfully.", fiber.Map{"organization": dto.NewOrganizationResponse(org)})
}

// ListActivity GET /api/organization/:organizationId/activity.
func (h *OrganizationHandler) ListActivity(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	query := service.ActivityQuery{
		Page:  c.QueryInt("page", 1),
		Limit: c.QueryInt("limit", 0),
	}
	if teamID := strings.TrimSpace(c.Query("teamId")); teamID != "" {
		query.TeamID = &teamID
	}
	if entity := strings.ToUpper(strings.TrimSpace(c.Query("entityType"))); entity != "" {
		entityType := domain.EntityType(entity)
		query.EntityType = &entityType
	}
	page, err := h.organizations.ListActivity(c.UserContext(), actor, c.Params("organizationId"), query)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "", dto.NewActivityListResponse(page))
}
