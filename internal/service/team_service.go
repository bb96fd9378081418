package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/teamhub/team-service/internal/config"
	"github.com/teamhub/team-service/internal/domain"
	"github.com/teamhub/team-service/internal/repository"
	"github.com/teamhub/team-service/internal/storage"
	"github.com/teamhub/team-service/internal/validation"
	apperrors "github.com/teamhub/team-service/pkg/util/errorutil"
)

const (
	teamAvatarFolder = "team_avatars"

	msgTeamNameTaken        = "Team with this name already exists"
	msgTeamNameTakenRace    = "Team with this name already exists in this organization"
	msgTeamDeleteNotFound   = "Team not found or already deleted"
	msgMemberNotFound       = "Team member not found or already removed"
	msgSoleLeader           = "Cannot remove the only team leader. Please assign another leader first."
	msgNoFile               = "No file uploaded"
	msgTeamAvatarNotFound   = "Team avatar not found"
	msgOnlyImages           = "Only image files are allowed"
	msgUpdateNeedsField     = `"value" must have at least 1 key`
	cascadeReasonTeamDelete = "Team deletion cascade"
)

// MemberInput requests a user be placed on a team.
type MemberInput struct {
	UserID string          `json:"userId" validate:"required,uuid"`
	Role   domain.TeamRole `json:"role" validate:"omitempty,oneof=LEADER MEMBER"`
}

func (m MemberInput) role() domain.TeamRole {
	if m.Role == "" {
		return domain.TeamRoleMember
	}
	return m.Role
}

// CreateTeamInput is the payload of CreateTeam.
type CreateTeamInput struct {
	Name         string        `json:"name" validate:"required,min=2,max=100"`
	Description  string        `json:"description" validate:"max=500"`
	Avatar       *string       `json:"avatar" validate:"omitnil,http_url_or_empty"`
	DepartmentID *string       `json:"departmentId" validate:"omitempty,uuid"`
	Members      []MemberInput `json:"members" validate:"omitempty,max=100,dive"`
}

// AddMembersInput is the payload of AddTeamMembers.
type AddMembersInput struct {
	Members []MemberInput `json:"members" validate:"required,min=1,max=100,dive"`
}

// UpdateTeamInput carries only the fields to change. An empty avatar clears it.
type UpdateTeamInput struct {
	Name        *string `json:"name" validate:"omitnil,min=2,max=100"`
	Description *string `json:"description" validate:"omitnil,max=500"`
	Avatar      *string `json:"avatar" validate:"omitnil,http_url_or_empty"`
}

func (in UpdateTeamInput) empty() bool {
	return in.Name == nil && in.Description == nil && in.Avatar == nil
}

// Upload is a file received from the client.
type Upload struct {
	Filename string
	Data     []byte
}

// CreateTeamResult is the team with its creator as LEADER and every member row.
type CreateTeamResult struct {
	Team    *domain.Team
	Leader  domain.TeamMember
	Members []domain.TeamMember
}

// AddMembersResult separates newly inserted rows from restored ones.
type AddMembersResult struct {
	Added    []domain.TeamMember
	Restored []domain.TeamMember
	Members  []domain.TeamMember
}

// DeleteTeamResult lists the projects removed with the team.
type DeleteTeamResult struct {
	Team            *domain.Team
	DeletedProjects []domain.Project
}

// TeamService runs team mutations and queries.
type TeamService struct {
	store      repository.Store
	tx         repository.TxRunner
	blobs      storage.BlobStore
	validator  *validation.Validator
	activity   *ActivityRecorder
	logger     *zap.Logger
	pagination config.PaginationConfig
	now        func() time.Time
}

// TeamDependencies encapsulates collaborators required by TeamService.
type TeamDependencies struct {
	Store      repository.Store
	Tx         repository.TxRunner
	Blobs      storage.BlobStore
	Validator  *validation.Validator
	Activity   *ActivityRecorder
	Logger     *zap.Logger
	Pagination config.PaginationConfig
	Now        func() time.Time
}

// NewTeamService constructs the service.
func NewTeamService(deps TeamDependencies) *TeamService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	activity := deps.Activity
	if activity == nil {
		activity = NewActivityRecorder(nil, nil, logger)
	}
	v := deps.Validator
	if v == nil {
		v = validation.New()
	}
	return &TeamService{
		store:      deps.Store,
		tx:         deps.Tx,
		blobs:      deps.Blobs,
		validator:  v,
		activity:   activity,
		logger:     logger,
		pagination: deps.Pagination,
		now:        deps.Now,
	}
}

func (s *TeamService) clock() time.Time {
	return timeOrNow(s.now)
}

// guard resolves the organization and team, then authorizes action.
func (s *TeamService) guard(ctx context.Context, actor domain.Actor, organizationID, teamID string, action Action, q TeamQuery) (*domain.Organization, *ResolvedTeam, error) {
	resolver := NewResolver(s.store)
	org, err := resolver.ResolveOrganization(ctx, organizationID)
	if err != nil {
		return nil, nil, err
	}
	resolved, err := resolver.ResolveTeam(ctx, teamID, org.ID, q)
	if err != nil {
		return nil, nil, err
	}
	decision, err := NewPolicy(s.store.TeamMembers()).Authorize(ctx, actor, org, resolved.Team, action)
	if err != nil {
		return nil, nil, err
	}
	if err := decision.Err(); err != nil {
		return nil, nil, err
	}
	return org, resolved, nil
}

// reloadTeam re-reads the team inside a transaction so no write lands on a
// team deleted since it was first resolved.
func reloadTeam(ctx context.Context, store repository.Store, team *domain.Team, notFoundMessage string) (*domain.Team, error) {
	resolved, err := NewResolver(store).ResolveTeam(ctx, team.ID, team.OrganizationID, TeamQuery{NotFoundMessage: notFoundMessage})
	if err != nil {
		return nil, err
	}
	return resolved.Team, nil
}

// CreateTeam creates a team with the actor as LEADER plus the requested members.
// Requested users that do not resolve, repeat an earlier entry or name the
// creator are skipped.
func (s *TeamService) CreateTeam(ctx context.Context, actor domain.Actor, organizationID string, input CreateTeamInput) (*CreateTeamResult, error) {
	if err := requireIDs(organizationID, "Organization ID"); err != nil {
		return nil, err
	}
	org, err := NewResolver(s.store).ResolveOrganization(ctx, organizationID)
	if err != nil {
		return nil, err
	}
	decision, err := NewPolicy(s.store.TeamMembers()).Authorize(ctx, actor, org, &domain.Team{}, ActionCreate)
	if err != nil {
		return nil, err
	}
	if err := decision.Err(); err != nil {
		return nil, err
	}
	input.Name = strings.TrimSpace(input.Name)
	if err := s.validator.Struct(input); err != nil {
		return nil, err
	}

	if input.DepartmentID != nil {
		if _, err := s.store.Departments().GetByID(ctx, *input.DepartmentID, org.ID); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.NewNotFound("Department", nil)
			}
			return nil, fmt.Errorf("resolve department: %w", err)
		}
	}

	taken, err := s.store.Teams().NameTaken(ctx, org.ID, input.Name, "")
	if err != nil {
		return nil, fmt.Errorf("check team name: %w", err)
	}
	if taken {
		return nil, apperrors.NewConflict(msgTeamNameTaken, map[string]any{"name": input.Name})
	}

	var (
		result  CreateTeamResult
		records []*domain.ActivityLog
	)
	err = s.tx.WithTx(ctx, func(store repository.Store) error {
		team := &domain.Team{
			OrganizationID: org.ID,
			DepartmentID:   input.DepartmentID,
			Name:           input.Name,
			Description:    input.Description,
			Avatar:         nonEmpty(input.Avatar),
			CreatedBy:      actor.UserID,
		}
		if err := store.Teams().Create(ctx, team); err != nil {
			return err
		}

		leader := &domain.TeamMember{TeamID: team.ID, UserID: actor.UserID, Role: domain.TeamRoleLeader}
		if err := store.TeamMembers().Create(ctx, leader); err != nil {
			return err
		}

		requested := make([]string, 0, len(input.Members))
		for _, m := range input.Members {
			requested = append(requested, m.UserID)
		}
		users, err := NewResolver(store).ResolveUsers(ctx, requested)
		if err != nil {
			return err
		}

		placed := map[string]struct{}{actor.UserID: {}}
		var skipped []string
		for _, m := range input.Members {
			if _, dup := placed[m.UserID]; dup {
				continue
			}
			if _, ok := users[m.UserID]; !ok {
				skipped = append(skipped, m.UserID)
				continue
			}
			placed[m.UserID] = struct{}{}
			member := &domain.TeamMember{TeamID: team.ID, UserID: m.UserID, Role: m.role()}
			if err := store.TeamMembers().Create(ctx, member); err != nil {
				return err
			}
		}
		if len(skipped) > 0 {
			s.logger.Debug("skipped unresolved team members",
				zap.String("team_id", team.ID),
				zap.Strings("user_ids", skipped))
		}

		members, err := store.TeamMembers().ListLive(ctx, []string{team.ID}, nil)
		if err != nil {
			return err
		}

		record, err := s.activity.Record(ctx, store.ActivityLogs(), ActivityEntry{
			EntityType:     domain.EntityTeam,
			Action:         domain.ActionCreated,
			ActorID:        actor.UserID,
			OrganizationID: org.ID,
			TeamID:         stringPtr(team.ID),
			Details: map[string]any{
				"teamName":        team.Name,
				"teamDescription": team.Description,
				"createdBy":       actor.UserID,
			},
		})
		if err != nil {
			return err
		}
		records = append(records, record)

		result.Team = team
		result.Members = members
		result.Leader = *leader
		for _, m := range members {
			if m.UserID == actor.UserID {
				result.Leader = m
			}
		}
		return nil
	})
	if err != nil {
		if apperrors.IsUniqueViolation(err, repository.TeamNameConstraint) {
			return nil, apperrors.NewConflict(msgTeamNameTakenRace, map[string]any{"name": input.Name})
		}
		return nil, err
	}

	s.activity.Published(ctx, records...)
	return &result, nil
}

// AddTeamMembers inserts, restores or skips each requested member. Adding a
// user who is already an active member is a no-op, as is losing an insert race.
func (s *TeamService) AddTeamMembers(ctx context.Context, actor domain.Actor, organizationID, teamID string, input AddMembersInput) (*AddMembersResult, error) {
	if err := requireIDs(organizationID, "Organization ID", teamID, "Team ID"); err != nil {
		return nil, err
	}
	org, resolved, err := s.guard(ctx, actor, organizationID, teamID, ActionAddMembers, TeamQuery{})
	if err != nil {
		return nil, err
	}
	if err := s.validator.Struct(input); err != nil {
		return nil, err
	}

	var (
		result  AddMembersResult
		records []*domain.ActivityLog
	)
	err = s.tx.WithTx(ctx, func(store repository.Store) error {
		team, err := reloadTeam(ctx, store, resolved.Team, "")
		if err != nil {
			return err
		}

		requested := make([]string, 0, len(input.Members))
		for _, m := range input.Members {
			requested = append(requested, m.UserID)
		}
		users, err := NewResolver(store).ResolveUsers(ctx, requested)
		if err != nil {
			return err
		}

		handled := make(map[string]struct{}, len(input.Members))
		var changed []map[string]any
		for _, m := range input.Members {
			if _, dup := handled[m.UserID]; dup {
				continue
			}
			handled[m.UserID] = struct{}{}
			if _, ok := users[m.UserID]; !ok {
				continue
			}

			existing, err := store.TeamMembers().Find(ctx, team.ID, m.UserID)
			switch {
			case errors.Is(err, pgx.ErrNoRows):
				member := &domain.TeamMember{TeamID: team.ID, UserID: m.UserID, Role: m.role()}
				inserted, err := store.TeamMembers().InsertIfAbsent(ctx, member)
				if err != nil {
					return err
				}
				if !inserted {
					continue
				}
				result.Added = append(result.Added, *member)
				changed = append(changed, map[string]any{"userId": m.UserID, "role": string(member.Role), "restored": false})
			case err != nil:
				return err
			case existing.Live():
				continue
			default:
				if err := store.TeamMembers().Restore(ctx, existing.ID, m.role()); err != nil {
					return err
				}
				existing.Role = m.role()
				existing.IsActive = true
				existing.DeletedAt = nil
				result.Restored = append(result.Restored, *existing)
				changed = append(changed, map[string]any{"userId": m.UserID, "role": string(existing.Role), "restored": true})
			}
		}

		if len(changed) > 0 {
			record, err := s.activity.Record(ctx, store.ActivityLogs(), ActivityEntry{
				EntityType:     domain.EntityTeam,
				Action:         domain.ActionMemberAdded,
				ActorID:        actor.UserID,
				OrganizationID: org.ID,
				TeamID:         stringPtr(team.ID),
				Details: map[string]any{
					"newMembers": changed,
					"addedBy":    actor.UserID,
				},
			})
			if err != nil {
				return err
			}
			records = append(records, record)
		}

		members, err := store.TeamMembers().ListLive(ctx, []string{team.ID}, nil)
		if err != nil {
			return err
		}
		result.Members = members
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.activity.Published(ctx, records...)
	return &result, nil
}

// RemoveTeamMember soft-deletes a membership. The team creator can only be
// removed while another active LEADER remains.
func (s *TeamService) RemoveTeamMember(ctx context.Context, actor domain.Actor, organizationID, teamID, userID string) (*domain.TeamMember, error) {
	if err := requireIDs(organizationID, "Organization ID", teamID, "Team ID", userID, "User ID"); err != nil {
		return nil, err
	}
	org, resolved, err := s.guard(ctx, actor, organizationID, teamID, ActionRemoveMembers, TeamQuery{})
	if err != nil {
		return nil, err
	}
	if !isUUID(userID) {
		return nil, apperrors.NewNotFoundMessage(msgMemberNotFound)
	}

	var (
		removed *domain.TeamMember
		records []*domain.ActivityLog
	)
	err = s.tx.WithTx(ctx, func(store repository.Store) error {
		team, err := reloadTeam(ctx, store, resolved.Team, "")
		if err != nil {
			return err
		}

		member, err := store.TeamMembers().Find(ctx, team.ID, userID)
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFoundMessage(msgMemberNotFound)
		}
		if err != nil {
			return err
		}
		if member.DeletedAt != nil {
			return apperrors.NewNotFoundMessage(msgMemberNotFound)
		}

		if userID == team.CreatedBy {
			leaders, err := store.TeamMembers().CountActiveLeaders(ctx, team.ID, userID)
			if err != nil {
				return err
			}
			if leaders == 0 {
				return apperrors.NewInvariantViolation(msgSoleLeader)
			}
		}

		removedAt := s.clock()
		if err := store.TeamMembers().SoftDelete(ctx, member.ID, removedAt); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewNotFoundMessage(msgMemberNotFound)
			}
			return err
		}
		member.DeletedAt = &removedAt
		member.IsActive = false

		users, err := NewResolver(store).ResolveUsers(ctx, []string{userID})
		if err != nil {
			return err
		}
		removedDetail := map[string]any{"userId": userID, "role": string(member.Role)}
		if user, ok := users[userID]; ok {
			summary := user.Summary()
			member.User = &summary
			removedDetail["name"] = summary.FullName()
			removedDetail["email"] = summary.Email
		}

		record, err := s.activity.Record(ctx, store.ActivityLogs(), ActivityEntry{
			EntityType:     domain.EntityTeam,
			Action:         domain.ActionMemberRemoved,
			ActorID:        actor.UserID,
			OrganizationID: org.ID,
			TeamID:         stringPtr(team.ID),
			Details: map[string]any{
				"removedMember": removedDetail,
				"removedBy":     actor.UserID,
				"removedAt":     removedAt,
			},
		})
		if err != nil {
			return err
		}
		records = append(records, record)
		removed = member
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.activity.Published(ctx, records...)
	return removed, nil
}

// UpdateTeam applies the provided fields. A new name must be free among the
// organization's live teams other than this one.
func (s *TeamService) UpdateTeam(ctx context.Context, actor domain.Actor, organizationID, teamID string, input UpdateTeamInput) (*domain.Team, error) {
	if err := requireIDs(organizationID, "Organization ID", teamID, "Team ID"); err != nil {
		return nil, err
	}
	org, resolved, err := s.guard(ctx, actor, organizationID, teamID, ActionUpdate, TeamQuery{})
	if err != nil {
		return nil, err
	}
	if input.Name != nil {
		trimmed := strings.TrimSpace(*input.Name)
		input.Name = &trimmed
	}
	if err := s.validator.Struct(input); err != nil {
		return nil, err
	}
	if input.empty() {
		return nil, validation.Fail(msgUpdateNeedsField)
	}

	conflict := func(name string) error {
		return apperrors.NewConflict(
			fmt.Sprintf("A team with the name %q already exists in this organization", name),
			map[string]any{"name": name})
	}
	if input.Name != nil && *input.Name != resolved.Team.Name {
		taken, err := s.store.Teams().NameTaken(ctx, org.ID, *input.Name, resolved.Team.ID)
		if err != nil {
			return nil, fmt.Errorf("check team name: %w", err)
		}
		if taken {
			return nil, conflict(*input.Name)
		}
	}

	var (
		updated *domain.Team
		records []*domain.ActivityLog
	)
	err = s.tx.WithTx(ctx, func(store repository.Store) error {
		team, err := reloadTeam(ctx, store, resolved.Team, "")
		if err != nil {
			return err
		}
		before := teamSnapshot(team)

		if input.Name != nil {
			team.Name = *input.Name
		}
		if input.Description != nil {
			team.Description = *input.Description
		}
		if input.Avatar != nil {
			team.Avatar = nonEmpty(input.Avatar)
		}
		if err := store.Teams().Update(ctx, team); err != nil {
			return err
		}

		details, err := UpdateDetails(before, teamSnapshot(team))
		if err != nil {
			return err
		}
		record, err := s.activity.Record(ctx, store.ActivityLogs(), ActivityEntry{
			EntityType:     domain.EntityTeam,
			Action:         domain.ActionUpdated,
			ActorID:        actor.UserID,
			OrganizationID: org.ID,
			TeamID:         stringPtr(team.ID),
			Details:        details,
		})
		if err != nil {
			return err
		}
		records = append(records, record)
		updated = team
		return nil
	})
	if err != nil {
		if input.Name != nil && apperrors.IsUniqueViolation(err, repository.TeamNameConstraint) {
			return nil, conflict(*input.Name)
		}
		return nil, err
	}

	s.activity.Published(ctx, records...)
	return updated, nil
}

// UploadTeamAvatar stores the image, then points the team at it. The blob it
// replaces is removed once the row is committed.
func (s *TeamService) UploadTeamAvatar(ctx context.Context, actor domain.Actor, organizationID, teamID string, upload Upload) (*domain.Team, error) {
	if err := requireIDs(organizationID, "Organization ID", teamID, "Team ID"); err != nil {
		return nil, err
	}
	org, resolved, err := s.guard(ctx, actor, organizationID, teamID, ActionUpdateAvatar, TeamQuery{})
	if err != nil {
		return nil, err
	}
	if len(upload.Data) == 0 {
		return nil, apperrors.NewBadRequest(msgNoFile)
	}

	url, err := s.blobs.Upload(ctx, upload.Data, teamAvatarFolder)
	if err != nil {
		if errors.Is(err, storage.ErrNotImage) {
			return nil, validation.Fail(msgOnlyImages)
		}
		return nil, fmt.Errorf("upload team avatar: %w", err)
	}

	var (
		updated  *domain.Team
		previous *string
		records  []*domain.ActivityLog
	)
	err = s.tx.WithTx(ctx, func(store repository.Store) error {
		team, err := reloadTeam(ctx, store, resolved.Team, "")
		if err != nil {
			return err
		}
		previous = team.Avatar
		team.Avatar = &url
		if err := store.Teams().Update(ctx, team); err != nil {
			return err
		}
		record, err := s.activity.Record(ctx, store.ActivityLogs(), ActivityEntry{
			EntityType:     domain.EntityTeam,
			Action:         domain.ActionUpdated,
			ActorID:        actor.UserID,
			OrganizationID: org.ID,
			TeamID:         stringPtr(team.ID),
			Details: map[string]any{
				"action":     "AVATAR_UPLOADED",
				"avatar":     url,
				"uploadedAt": s.clock(),
			},
		})
		if err != nil {
			return err
		}
		records = append(records, record)
		updated = team
		return nil
	})
	if err != nil {
		s.deleteBlob(ctx, url)
		return nil, err
	}

	if previous != nil && *previous != url {
		s.deleteBlob(ctx, *previous)
	}
	s.activity.Published(ctx, records...)
	return updated, nil
}

// DeleteTeamAvatar removes the blob, then clears the team's avatar.
func (s *TeamService) DeleteTeamAvatar(ctx context.Context, actor domain.Actor, organizationID, teamID string) (*domain.Team, error) {
	if err := requireIDs(organizationID, "Organization ID", teamID, "Team ID"); err != nil {
		return nil, err
	}
	org, resolved, err := s.guard(ctx, actor, organizationID, teamID, ActionDeleteAvatar, TeamQuery{})
	if err != nil {
		return nil, err
	}
	if resolved.Team.Avatar == nil {
		return nil, apperrors.NewNotFoundMessage(msgTeamAvatarNotFound)
	}

	s.deleteBlob(ctx, *resolved.Team.Avatar)

	var (
		updated *domain.Team
		records []*domain.ActivityLog
	)
	err = s.tx.WithTx(ctx, func(store repository.Store) error {
		team, err := reloadTeam(ctx, store, resolved.Team, "")
		if err != nil {
			return err
		}
		if team.Avatar == nil {
			return apperrors.NewNotFoundMessage(msgTeamAvatarNotFound)
		}
		team.Avatar = nil
		if err := store.Teams().Update(ctx, team); err != nil {
			return err
		}
		record, err := s.activity.Record(ctx, store.ActivityLogs(), ActivityEntry{
			EntityType:     domain.EntityTeam,
			Action:         domain.ActionUpdated,
			ActorID:        actor.UserID,
			OrganizationID: org.ID,
			TeamID:         stringPtr(team.ID),
			Details: map[string]any{
				"action":    "AVATAR_REMOVED",
				"removedAt": s.clock(),
				"removedBy": actor.UserID,
			},
		})
		if err != nil {
			return err
		}
		records = append(records, record)
		updated = team
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.activity.Published(ctx, records...)
	return updated, nil
}

// DeleteTeam soft-deletes the team and every live project under it, writing
// one activity record for the team and one per project.
func (s *TeamService) DeleteTeam(ctx context.Context, actor domain.Actor, organizationID, teamID string) (*DeleteTeamResult, error) {
	if err := requireIDs(organizationID, "Organization ID", teamID, "Team ID"); err != nil {
		return nil, err
	}
	org, resolved, err := s.guard(ctx, actor, organizationID, teamID, ActionDelete, TeamQuery{NotFoundMessage: msgTeamDeleteNotFound})
	if err != nil {
		return nil, err
	}

	var (
		result  DeleteTeamResult
		records []*domain.ActivityLog
	)
	err = s.tx.WithTx(ctx, func(store repository.Store) error {
		team, err := reloadTeam(ctx, store, resolved.Team, msgTeamDeleteNotFound)
		if err != nil {
			return err
		}

		deletedAt := s.clock()
		projects, err := store.Projects().SoftDeleteByTeam(ctx, team.ID, actor.UserID, deletedAt)
		if err != nil {
			return err
		}
		if err := store.Teams().SoftDelete(ctx, team.ID, deletedAt); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperrors.NewNotFoundMessage(msgTeamDeleteNotFound)
			}
			return err
		}
		team.DeletedAt = &deletedAt

		summaries := make([]map[string]any, 0, len(projects))
		for _, p := range projects {
			summaries = append(summaries, map[string]any{"id": p.ID, "name": p.Name})
		}
		record, err := s.activity.Record(ctx, store.ActivityLogs(), ActivityEntry{
			EntityType:     domain.EntityTeam,
			Action:         domain.ActionDeleted,
			ActorID:        actor.UserID,
			OrganizationID: org.ID,
			TeamID:         stringPtr(team.ID),
			Details: map[string]any{
				"deletedAt":            deletedAt,
				"deletedBy":            actor.UserID,
				"teamName":             team.Name,
				"deletedProjectsCount": len(projects),
				"deletedProjects":      summaries,
			},
		})
		if err != nil {
			return err
		}
		records = append(records, record)

		for _, p := range projects {
			record, err := s.activity.Record(ctx, store.ActivityLogs(), ActivityEntry{
				EntityType:     domain.EntityProject,
				Action:         domain.ActionDeleted,
				ActorID:        actor.UserID,
				OrganizationID: org.ID,
				TeamID:         stringPtr(team.ID),
				ProjectID:      stringPtr(p.ID),
				Details: map[string]any{
					"projectName": p.Name,
					"deletedAt":   deletedAt,
					"deletedBy":   actor.UserID,
					"reason":      cascadeReasonTeamDelete,
				},
			})
			if err != nil {
				return err
			}
			records = append(records, record)
		}

		result.Team = team
		result.DeletedProjects = projects
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.activity.Published(ctx, records...)
	return &result, nil
}

func (s *TeamService) deleteBlob(ctx context.Context, url string) {
	if err := s.blobs.Delete(ctx, url); err != nil {
		s.logger.Warn("blob delete failed", zap.String("url", url), zap.Error(err))
	}
}

func teamSnapshot(team *domain.Team) map[string]any {
	snapshot := map[string]any{
		"name":        team.Name,
		"description": team.Description,
		"avatar":      nil,
	}
	if team.Avatar != nil {
		snapshot["avatar"] = *team.Avatar
	}
	return snapshot
}
