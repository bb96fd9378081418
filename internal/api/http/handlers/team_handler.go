package handlers

import (
	"fmt"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/teamhub/team-service/internal/api/dto"
	"github.com/teamhub/team-service/internal/service"
)

// TeamHandler serves team endpoints under an organization.
type TeamHandler struct {
	service        *service.TeamService
	maxUploadBytes int
}

// NewTeamHandler constructs handler.
func NewTeamHandler(teamService *service.TeamService, maxUploadBytes int) *TeamHandler {
	return &TeamHandler{service: teamService, maxUploadBytes: maxUploadBytes}
}

// CreateTeam POST /api/organization/:organizationId/team.
func (h *TeamHandler) CreateTeam(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	var req dto.CreateTeamRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	result, err := h.service.CreateTeam(c.UserContext(), actor, c.Params("organizationId"), req.ToCreateTeamInput())
	if err != nil {
		return err
	}
	return respond(c, http.StatusCreated, "Team created successfully.", dto.NewCreateTeamResponse(result))
}

// ListTeams GET /api/organization/:organizationId/teams/all.
func (h *TeamHandler) ListTeams(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	page, err := h.service.ListTeams(c.UserContext(), actor, c.Params("organizationId"), service.ListTeamsInput{
		Page:   c.QueryInt("page", 1),
		Limit:  c.QueryInt("limit", 0),
		Search: c.Query("search"),
	})
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "", dto.NewTeamListResponse(page))
}

// GetTeam GET /api/organization/:organizationId/teams/:teamId.
func (h *TeamHandler) GetTeam(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	detail, err := h.service.GetTeam(c.UserContext(), actor, c.Params("organizationId"), c.Params("teamId"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "", dto.NewTeamDetailResponse(detail))
}

// UpdateTeam PUT /api/organization/:organizationId/team/:teamId.
func (h *TeamHandler) UpdateTeam(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	var req dto.UpdateTeamRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	team, err := h.service.UpdateTeam(c.UserContext(), actor, c.Params("organizationId"), c.Params("teamId"), req.ToUpdateTeamInput())
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Team updated successfully.", fiber.Map{"team": dto.NewTeamResponse(team)})
}

// DeleteTeam DELETE /api/organization/:organizationId/team/:teamId.
func (h *TeamHandler) DeleteTeam(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	result, err := h.service.DeleteTeam(c.UserContext(), actor, c.Params("organizationId"), c.Params("teamId"))
	if err != nil {
		return err
	}
	message := fmt.Sprintf("Team deleted successfully. %d project(s) were also deleted.", len(result.DeletedProjects))
	return respond(c, http.StatusOK, message, dto.NewDeleteTeamResponse(result))
}

// AddMembers POST /api/organization/:organizationId/team/:teamId/addMember.
func (h *TeamHandler) AddMembers(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	var req dto.AddMembersRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}
	result, err := h.service.AddTeamMembers(c.UserContext(), actor, c.Params("organizationId"), c.Params("teamId"), req.ToAddMembersInput())
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Members added successfully.", dto.NewAddMembersResponse(result))
}

// RemoveMember DELETE /api/organization/:organizationId/team/:teamId/members/:userId.
func (h *TeamHandler) RemoveMember(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	member, err := h.service.RemoveTeamMember(c.UserContext(), actor, c.Params("organizationId"), c.Params("teamId"), c.Params("userId"))
	if err != nil {
		return err
	}
	name := member.UserID
	if member.User != nil {
		name = member.User.FullName()
	}
	message := fmt.Sprintf("Team member %s removed successfully", name)
	return respond(c, http.StatusOK, message, fiber.Map{"member": dto.NewTeamMemberResponse(*member)})
}

// UploadAvatar POST /api/organization/:organizationId/team/:teamId/avatar/upload.
func (h *TeamHandler) UploadAvatar(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	upload, err := readUpload(c, h.maxUploadBytes)
	if err != nil {
		return err
	}
	team, err := h.service.UploadTeamAvatar(c.UserContext(), actor, c.Params("organizationId"), c.Params("teamId"), upload)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Team avatar uploaded successfully", fiber.Map{"team": dto.NewTeamResponse(team)})
}

// DeleteAvatar DELETE /api/organization/:organizationId/team/:teamId/avatar/delete.
func (h *TeamHandler) DeleteAvatar(c *fiber.Ctx) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	team, err := h.service.DeleteTeamAvatar(c.UserContext(), actor, c.Params("organizationId"), c.Params("teamId"))
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, "Team avatar deleted successfully", fiber.Map{"team": dto.NewTeamResponse(team)})
}
