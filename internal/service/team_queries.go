package service

import (
	"context"
	"fmt"

	"github.com/teamhub/team-service/internal/domain"
	"github.com/teamhub/team-service/internal/repository"
)

// ListTeamsInput pages through an organization's teams.
type ListTeamsInput struct {
	Page   int
	Limit  int
	Search string
}

// Pagination describes the returned page.
type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalItems int `json:"totalItems"`
	TotalPages int `json:"totalPages"`
}

// TeamOverview is a team as shown in listings.
type TeamOverview struct {
	Team    domain.Team
	Members []domain.TeamMember
	Creator *domain.UserSummary
}

// TeamPage is one page of TeamOverview.
type TeamPage struct {
	Teams      []TeamOverview
	Pagination Pagination
}

// TeamStatistics summarizes a team's members and projects.
type TeamStatistics struct {
	ActiveMembers      int `json:"activeMembers"`
	TotalProjects      int `json:"totalProjects"`
	ProjectsInProgress int `json:"projectsInProgress"`
	CompletedProjects  int `json:"completedProjects"`
}

// TeamDetail is the full view of one team. Members lists role MEMBER only;
// leaders are counted in Statistics.ActiveMembers.
type TeamDetail struct {
	Team       domain.Team
	Department *domain.Department
	Creator    *domain.UserSummary
	Members    []domain.TeamMember
	Projects   []domain.Project
	Statistics TeamStatistics
}

// ListTeams returns live teams of the organization, newest first. Any member
// of the organization may list.
func (s *TeamService) ListTeams(ctx context.Context, actor domain.Actor, organizationID string, input ListTeamsInput) (*TeamPage, error) {
	if err := requireIDs(organizationID, "Organization ID"); err != nil {
		return nil, err
	}
	org, err := NewResolver(s.store).ResolveOrganization(ctx, organizationID)
	if err != nil {
		return nil, err
	}
	decision, err := NewPolicy(s.store.TeamMembers()).CanView(ctx, actor, org, &domain.Team{})
	if err != nil {
		return nil, err
	}
	if err := decision.Err(); err != nil {
		return nil, err
	}

	page, limit := s.normalizePage(input.Page, input.Limit)
	filter := repository.TeamFilter{
		OrganizationID: org.ID,
		Search:         input.Search,
		Limit:          limit,
		Offset:         (page - 1) * limit,
	}

	total, err := s.store.Teams().Count(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("count teams: %w", err)
	}
	teams, err := s.store.Teams().List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}

	teamIDs := make([]string, 0, len(teams))
	creatorIDs := make([]string, 0, len(teams))
	for _, team := range teams {
		teamIDs = append(teamIDs, team.ID)
		creatorIDs = append(creatorIDs, team.CreatedBy)
	}

	members, err := s.store.TeamMembers().ListLive(ctx, teamIDs, nil)
	if err != nil {
		return nil, fmt.Errorf("list team members: %w", err)
	}
	byTeam := make(map[string][]domain.TeamMember, len(teams))
	for _, m := range members {
		byTeam[m.TeamID] = append(byTeam[m.TeamID], m)
	}

	creators, err := NewResolver(s.store).ResolveUsers(ctx, creatorIDs)
	if err != nil {
		return nil, err
	}

	result := &TeamPage{
		Teams: make([]TeamOverview, 0, len(teams)),
		Pagination: Pagination{
			Page:       page,
			Limit:      limit,
			TotalItems: total,
			TotalPages: (total + limit - 1) / limit,
		},
	}
	for _, team := range teams {
		overview := TeamOverview{Team: team, Members: byTeam[team.ID]}
		if creator, ok := creators[team.CreatedBy]; ok {
			summary := creator.Summary()
			overview.Creator = &summary
		}
		result.Teams = append(result.Teams, overview)
	}
	return result, nil
}

// GetTeam returns one live team with its department, creator, members,
// projects and statistics.
func (s *TeamService) GetTeam(ctx context.Context, actor domain.Actor, organizationID, teamID string) (*TeamDetail, error) {
	if err := requireIDs(organizationID, "Organization ID", teamID, "Team ID"); err != nil {
		return nil, err
	}
	resolver := NewResolver(s.store)
	org, err := resolver.ResolveOrganization(ctx, organizationID)
	if err != nil {
		return nil, err
	}
	resolved, err := resolver.ResolveTeam(ctx, teamID, org.ID, TeamQuery{
		Fields: TeamWithMembers | TeamWithProjects | TeamWithDepartment | TeamWithCreator,
	})
	if err != nil {
		return nil, err
	}
	decision, err := NewPolicy(s.store.TeamMembers()).CanView(ctx, actor, org, resolved.Team)
	if err != nil {
		return nil, err
	}
	if err := decision.Err(); err != nil {
		return nil, err
	}

	detail := &TeamDetail{
		Team:       *resolved.Team,
		Department: resolved.Department,
		Creator:    resolved.Creator,
		Members:    make([]domain.TeamMember, 0, len(resolved.Members)),
		Projects:   resolved.Projects,
		Statistics: TeamStatistics{
			ActiveMembers: len(resolved.Members),
			TotalProjects: len(resolved.Projects),
		},
	}
	for _, m := range resolved.Members {
		if m.Role == domain.TeamRoleMember {
			detail.Members = append(detail.Members, m)
		}
	}
	for _, p := range resolved.Projects {
		switch p.Status {
		case domain.ProjectStatusInProgress:
			detail.Statistics.ProjectsInProgress++
		case domain.ProjectStatusCompleted:
			detail.Statistics.CompletedProjects++
		}
	}
	return detail, nil
}

func (s *TeamService) normalizePage(page, limit int) (int, int) {
	defaultLimit := s.pagination.DefaultLimit
	if defaultLimit <= 0 {
		defaultLimit = 10
	}
	if limit < 1 {
		limit = defaultLimit
	}
	if s.pagination.MaxLimit > 0 && limit > s.pagination.MaxLimit {
		limit = s.pagination.MaxLimit
	}
	return clampPage(page, limit), limit
}
