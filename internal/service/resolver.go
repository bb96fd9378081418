package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/teamhub/team-service/internal/domain"
	"github.com/teamhub/team-service/internal/repository"
	apperrors "github.com/teamhub/team-service/pkg/util/errorutil"
)

// TeamFields selects the related data ResolveTeam loads alongside the team.
type TeamFields uint8

const (
	TeamWithMembers TeamFields = 1 << iota
	TeamWithProjects
	TeamWithDepartment
	TeamWithCreator
)

// TeamQuery scopes and shapes a team lookup.
type TeamQuery struct {
	DepartmentID *string
	Fields       TeamFields
	// NotFoundMessage overrides the default "Team not found".
	NotFoundMessage string
}

// ResolvedTeam is a live team plus whatever TeamQuery.Fields requested.
type ResolvedTeam struct {
	Team       *domain.Team
	Members    []domain.TeamMember
	Projects   []domain.Project
	Department *domain.Department
	Creator    *domain.UserSummary
}

// Resolver turns identifiers into live entities. Soft-deleted rows resolve
// to the same typed NotFound error as rows that never existed.
type Resolver struct {
	store repository.Store
}

// NewResolver binds a resolver to store, which may be transactional.
func NewResolver(store repository.Store) *Resolver {
	return &Resolver{store: store}
}

// ResolveOrganization returns the live organization or NotFound.
func (r *Resolver) ResolveOrganization(ctx context.Context, id string) (*domain.Organization, error) {
	if !isUUID(id) {
		return nil, apperrors.NewNotFound("Organization", nil)
	}
	org, err := r.store.Organizations().GetByID(ctx, id)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NewNotFound("Organization", nil)
	}
	if err != nil {
		return nil, fmt.Errorf("resolve organization: %w", err)
	}
	return org, nil
}

// ResolveTeam returns the live team of organizationID or NotFound.
func (r *Resolver) ResolveTeam(ctx context.Context, id, organizationID string, q TeamQuery) (*ResolvedTeam, error) {
	notFound := func() error {
		if q.NotFoundMessage != "" {
			return apperrors.NewNotFoundMessage(q.NotFoundMessage)
		}
		return apperrors.NewNotFound("Team", nil)
	}
	if !isUUID(id) {
		return nil, notFound()
	}

	team, err := r.store.Teams().Get(ctx, repository.TeamLookup{
		ID:             id,
		OrganizationID: organizationID,
		DepartmentID:   q.DepartmentID,
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, notFound()
	}
	if err != nil {
		return nil, fmt.Errorf("resolve team: %w", err)
	}

	resolved := &ResolvedTeam{Team: team}
	if q.Fields&TeamWithMembers != 0 {
		members, err := r.store.TeamMembers().ListLive(ctx, []string{team.ID}, nil)
		if err != nil {
			return nil, fmt.Errorf("load team members: %w", err)
		}
		resolved.Members = members
	}
	if q.Fields&TeamWithProjects != 0 {
		projects, err := r.store.Projects().ListLiveByTeam(ctx, team.ID)
		if err != nil {
			return nil, fmt.Errorf("load team projects: %w", err)
		}
		resolved.Projects = projects
	}
	if q.Fields&TeamWithDepartment != 0 && team.DepartmentID != nil {
		dept, err := r.store.Departments().GetByID(ctx, *team.DepartmentID, organizationID)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("load team department: %w", err)
		}
		resolved.Department = dept
	}
	if q.Fields&TeamWithCreator != 0 {
		creators, err := r.ResolveUsers(ctx, []string{team.CreatedBy})
		if err != nil {
			return nil, err
		}
		if creator, ok := creators[team.CreatedBy]; ok {
			summary := creator.Summary()
			resolved.Creator = &summary
		}
	}
	return resolved, nil
}

// ResolveUsers loads the live users among ids, keyed by id. Unknown, malformed
// and deleted ids are absent from the result.
func (r *Resolver) ResolveUsers(ctx context.Context, ids []string) (map[string]*domain.User, error) {
	valid := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if _, dup := seen[id]; dup || !isUUID(id) {
			continue
		}
		seen[id] = struct{}{}
		valid = append(valid, id)
	}

	result := make(map[string]*domain.User, len(valid))
	if len(valid) == 0 {
		return result, nil
	}
	users, err := r.store.Users().ListByIDs(ctx, valid)
	if err != nil {
		return nil, fmt.Errorf("resolve users: %w", err)
	}
	for i := range users {
		result[users[i].ID] = &users[i]
	}
	return result, nil
}

func isUUID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
