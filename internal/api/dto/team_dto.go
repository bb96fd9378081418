package dto

import (
	"time"

	"github.com/teamhub/team-service/internal/domain"
	"github.com/teamhub/team-service/internal/service"
)

// MemberRequest names a user and the role they take on the team.
type MemberRequest struct {
	UserID string          `json:"userId"`
	Role   domain.TeamRole `json:"role"`
}

// CreateTeamRequest payload.
type CreateTeamRequest struct {
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	Avatar       *string         `json:"avatar"`
	DepartmentID *string         `json:"departmentId"`
	Members      []MemberRequest `json:"members"`
}

// AddMembersRequest payload.
type AddMembersRequest struct {
	Members []MemberRequest `json:"members"`
}

// UpdateTeamRequest payload. Absent fields are left unchanged.
type UpdateTeamRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Avatar      *string `json:"avatar"`
}

// TeamResponse is the public shape of a team.
type TeamResponse struct {
	ID             string     `json:"id"`
	OrganizationID string     `json:"organizationId"`
	DepartmentID   *string    `json:"departmentId"`
	Name           string     `json:"name"`
	Description    string     `json:"description"`
	Avatar         *string    `json:"avatar"`
	CreatedBy      string     `json:"createdBy"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
	DeletedAt      *time.Time `json:"deletedAt,omitempty"`
}

// CreatedTeamResponse is the short team shape returned on creation.
type CreatedTeamResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// TeamMemberResponse is a membership row with its user embedded.
type TeamMemberResponse struct {
	ID        string              `json:"id"`
	TeamID    string              `json:"teamId"`
	UserID    string              `json:"userId"`
	Role      domain.TeamRole     `json:"role"`
	IsActive  bool                `json:"isActive"`
	CreatedAt time.Time           `json:"createdAt"`
	User      *domain.UserSummary `json:"user,omitempty"`
}

// ProjectResponse is a project as embedded in a team.
type ProjectResponse struct {
	ID          string               `json:"id"`
	Name        string               `json:"name"`
	Description string               `json:"description"`
	Status      domain.ProjectStatus `json:"status"`
	CreatedAt   time.Time            `json:"createdAt"`
	UpdatedAt   time.Time            `json:"updatedAt"`
}

// DepartmentResponse is the department summary embedded in a team.
type DepartmentResponse struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// CreateTeamResponse data of POST /team.
type CreateTeamResponse struct {
	Team        CreatedTeamResponse  `json:"team"`
	TeamLeader  TeamMemberResponse   `json:"teamLeader"`
	TeamMembers []TeamMemberResponse `json:"teamMembers"`
}

// AddMembersResponse data of POST /addMember.
type AddMembersResponse struct {
	Added    []TeamMemberResponse `json:"added"`
	Restored []TeamMemberResponse `json:"restored"`
	Members  []TeamMemberResponse `json:"members"`
}

// DeleteTeamResponse data of DELETE /team/:teamId.
type DeleteTeamResponse struct {
	Team            TeamResponse      `json:"team"`
	DeletedProjects []ProjectResponse `json:"deletedProjects"`
}

// TeamListItem is a team as shown in listings.
type TeamListItem struct {
	TeamResponse
	Creator *domain.UserSummary  `json:"creator"`
	Members []TeamMemberResponse `json:"members"`
}

// TeamListResponse data of GET /teams/all.
type TeamListResponse struct {
	Teams      []TeamListItem     `json:"teams"`
	Pagination service.Pagination `json:"pagination"`
}

// TeamDetailTeam is the team block of GET /teams/:teamId.
type TeamDetailTeam struct {
	TeamResponse
	Department *DepartmentResponse `json:"department"`
	Creator    CreatorResponse     `json:"creator"`
}

// CreatorResponse names the team creator, falling back to N/A when the user is gone.
type CreatorResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// TeamDetailResponse data of GET /teams/:teamId.
type TeamDetailResponse struct {
	Team       TeamDetailTeam         `json:"team"`
	Members    []TeamMemberResponse   `json:"members"`
	Projects   []ProjectResponse      `json:"projects"`
	Statistics service.TeamStatistics `json:"statistics"`
}

// ToCreateTeamInput converts the request payload.
func (r CreateTeamRequest) ToCreateTeamInput() service.CreateTeamInput {
	return service.CreateTeamInput{
		Name:         r.Name,
		Description:  r.Description,
		Avatar:       r.Avatar,
		DepartmentID: r.DepartmentID,
		Members:      memberInputs(r.Members),
	}
}

// ToAddMembersInput converts the request payload.
func (r AddMembersRequest) ToAddMembersInput() service.AddMembersInput {
	return service.AddMembersInput{Members: memberInputs(r.Members)}
}

// ToUpdateTeamInput converts the request payload.
func (r UpdateTeamRequest) ToUpdateTeamInput() service.UpdateTeamInput {
	return service.UpdateTeamInput{Name: r.Name, Description: r.Description, Avatar: r.Avatar}
}

func memberInputs(members []MemberRequest) []service.MemberInput {
	if members == nil {
		return nil
	}
	out := make([]service.MemberInput, 0, len(members))
	for _, m := range members {
		out = append(out, service.MemberInput{UserID: m.UserID, Role: m.Role})
	}
	return out
}

// NewTeamResponse maps a domain team.
func NewTeamResponse(team *domain.Team) TeamResponse {
	return TeamResponse{
		ID:             team.ID,
		OrganizationID: team.OrganizationID,
		DepartmentID:   team.DepartmentID,
		Name:           team.Name,
		Description:    team.Description,
		Avatar:         team.Avatar,
		CreatedBy:      team.CreatedBy,
		CreatedAt:      team.CreatedAt,
		UpdatedAt:      team.UpdatedAt,
		DeletedAt:      team.DeletedAt,
	}
}

// NewTeamMemberResponse maps a membership row.
func NewTeamMemberResponse(m domain.TeamMember) TeamMemberResponse {
	return TeamMemberResponse{
		ID:        m.ID,
		TeamID:    m.TeamID,
		UserID:    m.UserID,
		Role:      m.Role,
		IsActive:  m.IsActive,
		CreatedAt: m.CreatedAt,
		User:      m.User,
	}
}

// NewTeamMemberResponses maps membership rows, never returning nil.
func NewTeamMemberResponses(members []domain.TeamMember) []TeamMemberResponse {
	out := make([]TeamMemberResponse, 0, len(members))
	for _, m := range members {
		out = append(out, NewTeamMemberResponse(m))
	}
	return out
}

// NewProjectResponses maps projects, never returning nil.
func NewProjectResponses(projects []domain.Project) []ProjectResponse {
	out := make([]ProjectResponse, 0, len(projects))
	for _, p := range projects {
		out = append(out, ProjectResponse{
			ID:          p.ID,
			Name:        p.Name,
			Description: p.Description,
			Status:      p.Status,
			CreatedAt:   p.CreatedAt,
			UpdatedAt:   p.UpdatedAt,
		})
	}
	return out
}

// NewCreateTeamResponse maps the CreateTeam result.
func NewCreateTeamResponse(result *service.CreateTeamResult) CreateTeamResponse {
	return CreateTeamResponse{
		Team: CreatedTeamResponse{
			ID:          result.Team.ID,
			Name:        result.Team.Name,
			Description: result.Team.Description,
		},
		TeamLeader:  NewTeamMemberResponse(result.Leader),
		TeamMembers: NewTeamMemberResponses(result.Members),
	}
}

// NewAddMembersResponse maps the AddTeamMembers result.
func NewAddMembersResponse(result *service.AddMembersResult) AddMembersResponse {
	return AddMembersResponse{
		Added:    NewTeamMemberResponses(result.Added),
		Restored: NewTeamMemberResponses(result.Restored),
		Members:  NewTeamMemberResponses(result.Members),
	}
}

// NewDeleteTeamResponse maps the DeleteTeam result.
func NewDeleteTeamResponse(result *service.DeleteTeamResult) DeleteTeamResponse {
	return DeleteTeamResponse{
		Team:            NewTeamResponse(result.Team),
		DeletedProjects: NewProjectResponses(result.DeletedProjects),
	}
}

// NewTeamListResponse maps a page of teams.
func NewTeamListResponse(page *service.TeamPage) TeamListResponse {
	items := make([]TeamListItem, 0, len(page.Teams))
	for i := range page.Teams {
		overview := page.Teams[i]
		items = append(items, TeamListItem{
			TeamResponse: NewTeamResponse(&overview.Team),
			Creator:      overview.Creator,
			Members:      NewTeamMemberResponses(overview.Members),
		})
	}
	return TeamListResponse{Teams: items, Pagination: page.Pagination}
}

// NewTeamDetailResponse maps the full team view.
func NewTeamDetailResponse(detail *service.TeamDetail) TeamDetailResponse {
	team := TeamDetailTeam{
		TeamResponse: NewTeamResponse(&detail.Team),
		Creator:      CreatorResponse{ID: detail.Team.CreatedBy, Name: "N/A", Email: "N/A"},
	}
	if detail.Department != nil {
		team.Department = &DepartmentResponse{ID: detail.Department.ID, Name: detail.Department.Name}
	}
	if detail.Creator != nil {
		team.Creator = CreatorResponse{
			ID:    detail.Creator.ID,
			Name:  detail.Creator.FullName(),
			Email: detail.Creator.Email,
		}
	}
	return TeamDetailResponse{
		Team:       team,
		Members:    NewTeamMemberResponses(detail.Members),
		Projects:   NewProjectResponses(detail.Projects),
		Statistics: detail.Statistics,
	}
}
