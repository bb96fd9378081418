package service

import (
	"context"
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/teamhub/team-service/internal/domain"
	"github.com/teamhub/team-service/internal/events"
	apperrors "github.com/teamhub/team-service/pkg/util/errorutil"
)

type world struct {
	*fixture
	admin    domain.User
	owner    domain.User
	leader   domain.User
	member   domain.User
	outsider domain.User
	org      domain.Organization
}

func newWorld(t *testing.T) *world {
	t.Helper()
	f := newFixture(t)
	w := &world{fixture: f}
	w.admin = f.db.addUser("Ada", "Admin", domain.GlobalRoleAdmin)
	w.owner = f.db.addUser("Olivia", "Owner", domain.GlobalRoleUser)
	w.leader = f.db.addUser("Lee", "Leader", domain.GlobalRoleUser)
	w.member = f.db.addUser("Mo", "Member", domain.GlobalRoleUser)
	w.outsider = f.db.addUser("Oscar", "Outsider", domain.GlobalRoleUser)
	w.org = f.db.addOrg("Acme", w.owner.ID)
	f.db.joinOrg(w.org.ID, w.leader.ID)
	f.db.joinOrg(w.org.ID, w.member.ID)
	return w
}

// seedTeam creates a team owned by the organization owner with leader and
// member on it.
func (w *world) seedTeam(name string) domain.Team {
	team := w.db.addTeam(w.org.ID, name, w.owner.ID)
	w.db.addMember(team.ID, w.leader.ID, domain.TeamRoleLeader)
	w.db.addMember(team.ID, w.member.ID, domain.TeamRoleMember)
	return team
}

func countFiles(t *testing.T, root string) int {
	t.Helper()
	n := 0
	err := filepath.WalkDir(root, func(_ string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			n++
		}
		return nil
	})
	require.NoError(t, err)
	return n
}

func TestCreateTeamEndToEnd(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()

	result, err := w.teams.CreateTeam(ctx, actorOf(w.owner), w.org.ID, CreateTeamInput{
		Name:        "  Platform  ",
		Description: "Runs the platform",
		Members: []MemberInput{
			{UserID: w.member.ID},
			{UserID: w.leader.ID, Role: domain.TeamRoleLeader},
			{UserID: uuid.NewString()},
			{UserID: w.member.ID, Role: domain.TeamRoleLeader},
			{UserID: w.owner.ID, Role: domain.TeamRoleMember},
		},
	})
	require.NoError(t, err)
	require.Equal(t, "Platform", result.Team.Name)
	require.Equal(t, w.owner.ID, result.Team.CreatedBy)
	require.Equal(t, w.owner.ID, result.Leader.UserID)
	require.Equal(t, domain.TeamRoleLeader, result.Leader.Role)
	require.Len(t, result.Members, 3)

	roles := map[string]domain.TeamRole{}
	for _, m := range result.Members {
		roles[m.UserID] = m.Role
		require.NotNil(t, m.User)
	}
	require.Equal(t, domain.TeamRoleLeader, roles[w.owner.ID])
	require.Equal(t, domain.TeamRoleLeader, roles[w.leader.ID])
	require.Equal(t, domain.TeamRoleMember, roles[w.member.ID])

	created := w.db.logsFor(domain.ActionCreated)
	require.Len(t, created, 1)
	require.Equal(t, domain.EntityTeam, created[0].EntityType)
	require.Equal(t, result.Team.ID, *created[0].TeamID)
	require.Equal(t, "Platform", created[0].Details["teamName"])

	require.Len(t, w.published, 1)
	require.Equal(t, events.EventActivityRecorded, w.published[0].Type)
	require.Equal(t, w.org.ID, w.published[0].OrganizationID)
}

func TestCreateTeamFailures(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()

	_, err := w.teams.CreateTeam(ctx, actorOf(w.owner), " ", CreateTeamInput{Name: "X"})
	requireDomainError(t, err, apperrors.CodeBadRequest, "Organization ID is required")

	_, err = w.teams.CreateTeam(ctx, actorOf(w.owner), "not-a-uuid", CreateTeamInput{Name: "Core"})
	requireDomainError(t, err, apperrors.CodeNotFound, "Organization not found")

	_, err = w.teams.CreateTeam(ctx, actorOf(w.member), w.org.ID, CreateTeamInput{Name: "Core"})
	requireDomainError(t, err, apperrors.CodeForbidden, "You do not have permission to create teams in this organization")

	_, err = w.teams.CreateTeam(ctx, actorOf(w.owner), w.org.ID, CreateTeamInput{
		Name:    "",
		Members: []MemberInput{{UserID: "bogus", Role: "BOSS"}},
	})
	domainErr := requireDomainError(t, err, apperrors.CodeValidationFailed, "Validation failed")
	require.Equal(t, []string{
		`"name" is required`,
		`"members[0].userId" must be a valid GUID`,
		`"members[0].role" must be one of [LEADER, MEMBER]`,
	}, domainErr.Fields)

	missing := uuid.NewString()
	_, err = w.teams.CreateTeam(ctx, actorOf(w.owner), w.org.ID, CreateTeamInput{Name: "Core", DepartmentID: &missing})
	requireDomainError(t, err, apperrors.CodeNotFound, "Department not found")

	require.Empty(t, w.db.teams)
	require.Empty(t, w.db.logs)
}

func TestCreateTeamInDeletedOrganization(t *testing.T) {
	w := newWorld(t)
	w.db.softDeleteOrg(w.org.ID)

	_, err := w.teams.CreateTeam(context.Background(), actorOf(w.admin), w.org.ID, CreateTeamInput{Name: "Core"})
	requireDomainError(t, err, apperrors.CodeNotFound, "Organization not found")
}

func TestCreateTeamWithDepartment(t *testing.T) {
	w := newWorld(t)
	dept := w.db.addDepartment(w.org.ID, "Engineering")

	result, err := w.teams.CreateTeam(context.Background(), actorOf(w.admin), w.org.ID, CreateTeamInput{Name: "Core", DepartmentID: &dept.ID})
	require.NoError(t, err)
	require.Equal(t, dept.ID, *result.Team.DepartmentID)
	require.Equal(t, w.admin.ID, result.Leader.UserID)
}

func TestTeamNameUniquenessAmongLiveTeams(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()

	first, err := w.teams.CreateTeam(ctx, actorOf(w.owner), w.org.ID, CreateTeamInput{Name: "Core"})
	require.NoError(t, err)

	_, err = w.teams.CreateTeam(ctx, actorOf(w.owner), w.org.ID, CreateTeamInput{Name: "Core"})
	domainErr := requireDomainError(t, err, apperrors.CodeConflict, "Team with this name already exists")
	require.Equal(t, http.StatusConflict, domainErr.HTTPStatus)

	other := w.db.addOrg("Other", w.owner.ID)
	_, err = w.teams.CreateTeam(ctx, actorOf(w.owner), other.ID, CreateTeamInput{Name: "Core"})
	require.NoError(t, err)

	_, err = w.teams.DeleteTeam(ctx, actorOf(w.owner), w.org.ID, first.Team.ID)
	require.NoError(t, err)

	_, err = w.teams.CreateTeam(ctx, actorOf(w.owner), w.org.ID, CreateTeamInput{Name: "Core"})
	require.NoError(t, err)
}

func TestCreateTeamNameRaceMapsToConflict(t *testing.T) {
	w := newWorld(t)
	w.seedTeam("Core")
	w.db.hideTakenNames = true
	teamsBefore := len(w.db.teams)
	membersBefore := len(w.db.members)

	_, err := w.teams.CreateTeam(context.Background(), actorOf(w.owner), w.org.ID, CreateTeamInput{Name: "Core"})
	requireDomainError(t, err, apperrors.CodeConflict, "Team with this name already exists in this organization")
	require.Len(t, w.db.teams, teamsBefore)
	require.Len(t, w.db.members, membersBefore)
	require.Empty(t, w.db.logs)
	require.Empty(t, w.published)
}

func TestCreateTeamRollsBackWhenActivityFails(t *testing.T) {
	w := newWorld(t)
	w.db.failLogs = errors.New("disk full")

	_, err := w.teams.CreateTeam(context.Background(), actorOf(w.owner), w.org.ID, CreateTeamInput{
		Name:    "Core",
		Members: []MemberInput{{UserID: w.member.ID}},
	})
	require.ErrorContains(t, err, "disk full")
	require.Empty(t, w.db.teams)
	require.Empty(t, w.db.members)
}

func TestAddTeamMembersIsIdempotent(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	team := w.db.addTeam(w.org.ID, "Core", w.owner.ID)

	input := AddMembersInput{Members: []MemberInput{{UserID: w.member.ID}, {UserID: w.leader.ID, Role: domain.TeamRoleLeader}}}
	first, err := w.teams.AddTeamMembers(ctx, actorOf(w.owner), w.org.ID, team.ID, input)
	require.NoError(t, err)
	require.Len(t, first.Added, 2)
	require.Empty(t, first.Restored)
	require.Len(t, first.Members, 3)

	second, err := w.teams.AddTeamMembers(ctx, actorOf(w.owner), w.org.ID, team.ID, input)
	require.NoError(t, err)
	require.Empty(t, second.Added)
	require.Empty(t, second.Restored)
	require.Len(t, second.Members, 3)

	require.Len(t, w.db.logsFor(domain.ActionMemberAdded), 1)
}

func TestAddTeamMembersRestoresRemovedMember(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	team := w.seedTeam("Core")
	w.db.softDeleteMember(team.ID, w.member.ID)
	original, _ := w.db.findMember(team.ID, w.member.ID)

	result, err := w.teams.AddTeamMembers(ctx, actorOf(w.leader), w.org.ID, team.ID, AddMembersInput{
		Members: []MemberInput{{UserID: w.member.ID, Role: domain.TeamRoleLeader}},
	})
	require.NoError(t, err)
	require.Empty(t, result.Added)
	require.Len(t, result.Restored, 1)
	require.Equal(t, original.ID, result.Restored[0].ID)

	restored, ok := w.db.findMember(team.ID, w.member.ID)
	require.True(t, ok)
	require.Nil(t, restored.DeletedAt)
	require.True(t, restored.IsActive)
	require.Equal(t, domain.TeamRoleLeader, restored.Role)

	rows := 0
	for _, m := range w.db.members {
		if m.TeamID == team.ID && m.UserID == w.member.ID {
			rows++
		}
	}
	require.Equal(t, 1, rows)

	logs := w.db.logsFor(domain.ActionMemberAdded)
	require.Len(t, logs, 1)
	changed := logs[0].Details["newMembers"].([]map[string]any)
	require.Equal(t, true, changed[0]["restored"])
}

func TestAddTeamMembersAuthorization(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	team := w.seedTeam("Core")
	input := AddMembersInput{Members: []MemberInput{{UserID: w.outsider.ID}}}

	_, err := w.teams.AddTeamMembers(ctx, actorOf(w.member), w.org.ID, team.ID, input)
	requireDomainError(t, err, apperrors.CodeForbidden, "You do not have permission to add members to this team")

	_, err = w.teams.AddTeamMembers(ctx, actorOf(w.owner), w.org.ID, uuid.NewString(), input)
	requireDomainError(t, err, apperrors.CodeNotFound, "Team not found")

	w.db.softDeleteTeam(team.ID)
	_, err = w.teams.AddTeamMembers(ctx, actorOf(w.owner), w.org.ID, team.ID, input)
	requireDomainError(t, err, apperrors.CodeNotFound, "Team not found")

	_, err = w.teams.AddTeamMembers(ctx, actorOf(w.owner), w.org.ID, "", input)
	requireDomainError(t, err, apperrors.CodeBadRequest, "Team ID is required")
}

func TestAddTeamMembersValidation(t *testing.T) {
	w := newWorld(t)
	team := w.seedTeam("Core")

	_, err := w.teams.AddTeamMembers(context.Background(), actorOf(w.owner), w.org.ID, team.ID, AddMembersInput{})
	requireDomainError(t, err, apperrors.CodeValidationFailed, "Validation failed")
}

func TestRemoveTeamMember(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	team := w.seedTeam("Core")

	removed, err := w.teams.RemoveTeamMember(ctx, actorOf(w.leader), w.org.ID, team.ID, w.member.ID)
	require.NoError(t, err)
	require.NotNil(t, removed.DeletedAt)
	require.NotNil(t, removed.User)
	require.Equal(t, "Mo Member", removed.User.FullName())

	row, _ := w.db.findMember(team.ID, w.member.ID)
	require.NotNil(t, row.DeletedAt)
	require.False(t, row.IsActive)

	logs := w.db.logsFor(domain.ActionMemberRemoved)
	require.Len(t, logs, 1)
	require.Equal(t, w.leader.ID, logs[0].UserID)

	_, err = w.teams.RemoveTeamMember(ctx, actorOf(w.leader), w.org.ID, team.ID, w.member.ID)
	requireDomainError(t, err, apperrors.CodeNotFound, "Team member not found or already removed")

	_, err = w.teams.RemoveTeamMember(ctx, actorOf(w.leader), w.org.ID, team.ID, w.outsider.ID)
	requireDomainError(t, err, apperrors.CodeNotFound, "Team member not found or already removed")

	_, err = w.teams.RemoveTeamMember(ctx, actorOf(w.leader), w.org.ID, team.ID, "42")
	requireDomainError(t, err, apperrors.CodeNotFound, "Team member not found or already removed")

	_, err = w.teams.RemoveTeamMember(ctx, actorOf(w.leader), w.org.ID, team.ID, "")
	requireDomainError(t, err, apperrors.CodeBadRequest, "User ID is required")
}

func TestRemoveTeamMemberGuardsSoleCreatorLeader(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	team := w.db.addTeam(w.org.ID, "Core", w.leader.ID)
	w.db.addMember(team.ID, w.member.ID, domain.TeamRoleMember)

	_, err := w.teams.RemoveTeamMember(ctx, actorOf(w.owner), w.org.ID, team.ID, w.leader.ID)
	domainErr := requireDomainError(t, err, apperrors.CodeInvariantViolation,
		"Cannot remove the only team leader. Please assign another leader first.")
	require.Equal(t, http.StatusBadRequest, domainErr.HTTPStatus)
	row, _ := w.db.findMember(team.ID, w.leader.ID)
	require.Nil(t, row.DeletedAt)
	require.Empty(t, w.db.logs)

	_, err = w.teams.AddTeamMembers(ctx, actorOf(w.owner), w.org.ID, team.ID, AddMembersInput{
		Members: []MemberInput{{UserID: w.member.ID}, {UserID: w.outsider.ID, Role: domain.TeamRoleLeader}},
	})
	require.NoError(t, err)

	_, err = w.teams.RemoveTeamMember(ctx, actorOf(w.owner), w.org.ID, team.ID, w.leader.ID)
	require.NoError(t, err)
}

func TestRemoveNonCreatorLeaderIsUnguarded(t *testing.T) {
	w := newWorld(t)
	team := w.db.addTeam(w.org.ID, "Core", w.member.ID)
	w.db.softDeleteMember(team.ID, w.member.ID)
	w.db.addMember(team.ID, w.leader.ID, domain.TeamRoleLeader)

	_, err := w.teams.RemoveTeamMember(context.Background(), actorOf(w.owner), w.org.ID, team.ID, w.leader.ID)
	require.NoError(t, err)
}

func TestUpdateTeam(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	team := w.seedTeam("Core")
	desc := "Core services"

	updated, err := w.teams.UpdateTeam(ctx, actorOf(w.leader), w.org.ID, team.ID, UpdateTeamInput{Description: &desc})
	require.NoError(t, err)
	require.Equal(t, "Core", updated.Name)
	require.Equal(t, desc, updated.Description)
	require.Equal(t, desc, w.db.teams[team.ID].Description)

	logs := w.db.logsFor(domain.ActionUpdated)
	require.Len(t, logs, 1)
	changes := logs[0].Details["changes"].([]map[string]any)
	require.Len(t, changes, 1)
	require.Equal(t, "replace", changes[0]["op"])
	require.Equal(t, "/description", changes[0]["path"])
	require.Equal(t, desc, changes[0]["value"])
}

func TestUpdateTeamValidationAndConflicts(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	team := w.seedTeam("Core")
	w.seedTeam("Edge")

	_, err := w.teams.UpdateTeam(ctx, actorOf(w.owner), w.org.ID, team.ID, UpdateTeamInput{})
	domainErr := requireDomainError(t, err, apperrors.CodeValidationFailed, "Validation failed")
	require.Equal(t, []string{`"value" must have at least 1 key`}, domainErr.Fields)

	short := "x"
	_, err = w.teams.UpdateTeam(ctx, actorOf(w.owner), w.org.ID, team.ID, UpdateTeamInput{Name: &short})
	domainErr = requireDomainError(t, err, apperrors.CodeValidationFailed, "")
	require.Equal(t, []string{`"name" length must be at least 2 characters long`}, domainErr.Fields)

	taken := "Edge"
	_, err = w.teams.UpdateTeam(ctx, actorOf(w.owner), w.org.ID, team.ID, UpdateTeamInput{Name: &taken})
	requireDomainError(t, err, apperrors.CodeConflict, `A team with the name "Edge" already exists in this organization`)

	w.db.hideTakenNames = true
	_, err = w.teams.UpdateTeam(ctx, actorOf(w.owner), w.org.ID, team.ID, UpdateTeamInput{Name: &taken})
	requireDomainError(t, err, apperrors.CodeConflict, `A team with the name "Edge" already exists in this organization`)
	require.Equal(t, "Core", w.db.teams[team.ID].Name)
	require.Empty(t, w.db.logs)

	same := "Core"
	_, err = w.teams.UpdateTeam(ctx, actorOf(w.owner), w.org.ID, team.ID, UpdateTeamInput{Name: &same})
	require.NoError(t, err)

	_, err = w.teams.UpdateTeam(ctx, actorOf(w.member), w.org.ID, team.ID, UpdateTeamInput{Name: &same})
	requireDomainError(t, err, apperrors.CodeForbidden, "You do not have permission to update this team")
}

func TestUpdateTeamClearsAvatar(t *testing.T) {
	w := newWorld(t)
	team := w.seedTeam("Core")
	avatar := "https://cdn.example.com/a.png"
	stored := w.db.teams[team.ID]
	stored.Avatar = &avatar
	w.db.teams[team.ID] = stored

	empty := ""
	updated, err := w.teams.UpdateTeam(context.Background(), actorOf(w.owner), w.org.ID, team.ID, UpdateTeamInput{Avatar: &empty})
	require.NoError(t, err)
	require.Nil(t, updated.Avatar)
	require.Nil(t, w.db.teams[team.ID].Avatar)
}

func TestTeamAvatarLinkMustBeHTTP(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	team := w.seedTeam("Core")

	for _, link := range []string{"javascript:alert(1)", "ftp://files.example.com/a.png"} {
		link := link
		_, err := w.teams.UpdateTeam(ctx, actorOf(w.owner), w.org.ID, team.ID, UpdateTeamInput{Avatar: &link})
		domainErr := requireDomainError(t, err, apperrors.CodeValidationFailed, "")
		require.Equal(t, []string{`"avatar" must be a valid uri`}, domainErr.Fields)

		_, err = w.teams.CreateTeam(ctx, actorOf(w.owner), w.org.ID, CreateTeamInput{Name: "Edge", Avatar: &link})
		requireDomainError(t, err, apperrors.CodeValidationFailed, "")
	}

	empty := ""
	created, err := w.teams.CreateTeam(ctx, actorOf(w.owner), w.org.ID, CreateTeamInput{Name: "Edge", Avatar: &empty})
	require.NoError(t, err)
	require.Nil(t, created.Team.Avatar)

	link := "https://cdn.example.com/core.png"
	updated, err := w.teams.UpdateTeam(ctx, actorOf(w.owner), w.org.ID, team.ID, UpdateTeamInput{Avatar: &link})
	require.NoError(t, err)
	require.Equal(t, link, *updated.Avatar)
}

func TestTeamAvatarLifecycle(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	team := w.seedTeam("Core")
	root := w.blobs.Root()

	_, err := w.teams.UploadTeamAvatar(ctx, actorOf(w.owner), w.org.ID, team.ID, Upload{})
	requireDomainError(t, err, apperrors.CodeBadRequest, "No file uploaded")

	_, err = w.teams.UploadTeamAvatar(ctx, actorOf(w.owner), w.org.ID, team.ID, Upload{Filename: "notes.txt", Data: []byte("plain text")})
	domainErr := requireDomainError(t, err, apperrors.CodeValidationFailed, "")
	require.Equal(t, []string{"Only image files are allowed"}, domainErr.Fields)
	require.Zero(t, countFiles(t, root))

	first, err := w.teams.UploadTeamAvatar(ctx, actorOf(w.leader), w.org.ID, team.ID, Upload{Filename: "a.png", Data: pngBytes})
	require.NoError(t, err)
	require.NotNil(t, first.Avatar)
	require.True(t, strings.HasPrefix(*first.Avatar, "/uploads/team_avatars/"))
	require.Equal(t, 1, countFiles(t, root))

	second, err := w.teams.UploadTeamAvatar(ctx, actorOf(w.leader), w.org.ID, team.ID, Upload{Filename: "b.png", Data: pngBytes})
	require.NoError(t, err)
	require.NotEqual(t, *first.Avatar, *second.Avatar)
	require.Equal(t, 1, countFiles(t, root))

	cleared, err := w.teams.DeleteTeamAvatar(ctx, actorOf(w.leader), w.org.ID, team.ID)
	require.NoError(t, err)
	require.Nil(t, cleared.Avatar)
	require.Zero(t, countFiles(t, root))

	_, err = w.teams.DeleteTeamAvatar(ctx, actorOf(w.leader), w.org.ID, team.ID)
	requireDomainError(t, err, apperrors.CodeNotFound, "Team avatar not found")

	require.Len(t, w.db.logsFor(domain.ActionUpdated), 3)
}

func TestUploadTeamAvatarRemovesBlobWhenWriteFails(t *testing.T) {
	w := newWorld(t)
	team := w.seedTeam("Core")
	w.db.failLogs = errors.New("disk full")

	_, err := w.teams.UploadTeamAvatar(context.Background(), actorOf(w.owner), w.org.ID, team.ID, Upload{Data: pngBytes})
	require.ErrorContains(t, err, "disk full")
	require.Zero(t, countFiles(t, w.blobs.Root()))
	require.Nil(t, w.db.teams[team.ID].Avatar)
}

func TestDeleteTeamCascadesToProjects(t *testing.T) {
	w := newWorld(t)
	ctx := context.Background()
	team := w.seedTeam("Core")
	w.db.addProject(team.ID, "API", domain.ProjectStatusInProgress)
	w.db.addProject(team.ID, "Docs", domain.ProjectStatusPlanning)
	gone := w.db.addProject(team.ID, "Legacy", domain.ProjectStatusCompleted)
	at := baseTime
	gone.DeletedAt = &at
	w.db.projects[gone.ID] = gone
	otherTeam := w.seedTeam("Edge")
	keep := w.db.addProject(otherTeam.ID, "Keep", domain.ProjectStatusOnHold)

	result, err := w.teams.DeleteTeam(ctx, actorOf(w.leader), w.org.ID, team.ID)
	require.NoError(t, err)
	require.NotNil(t, result.Team.DeletedAt)
	require.Len(t, result.DeletedProjects, 2)
	for _, p := range result.DeletedProjects {
		require.NotNil(t, p.DeletedAt)
		require.Equal(t, w.leader.ID, *p.LastModifiedBy)
	}
	require.Nil(t, w.db.projects[keep.ID].DeletedAt)
	require.NotNil(t, w.db.teams[team.ID].DeletedAt)

	deleted := w.db.logsFor(domain.ActionDeleted)
	require.Len(t, deleted, 3)
	require.Equal(t, domain.EntityTeam, deleted[0].EntityType)
	require.Equal(t, 2, deleted[0].Details["deletedProjectsCount"])
	for _, l := range deleted[1:] {
		require.Equal(t, domain.EntityProject, l.EntityType)
		require.NotNil(t, l.ProjectID)
		require.Equal(t, "Team deletion cascade", l.Details["reason"])
	}
	require.Len(t, w.published, 3)

	_, err = w.teams.DeleteTeam(ctx, actorOf(w.leader), w.org.ID, team.ID)
	requireDomainError(t, err, apperrors.CodeNotFound, "Team not found or already deleted")
}

func TestDeleteTeamWithoutProjects(t *testing.T) {
	w := newWorld(t)
	team := w.seedTeam("Core")

	result, err := w.teams.DeleteTeam(context.Background(), actorOf(w.admin), w.org.ID, team.ID)
	require.NoError(t, err)
	require.Empty(t, result.DeletedProjects)
	require.Len(t, w.db.logs, 1)
}

func TestDeleteTeamRollsBackOnFailure(t *testing.T) {
	w := newWorld(t)
	team := w.seedTeam("Core")
	p := w.db.addProject(team.ID, "API", domain.ProjectStatusInProgress)
	w.db.failLogs = errors.New("disk full")

	_, err := w.teams.DeleteTeam(context.Background(), actorOf(w.owner), w.org.ID, team.ID)
	require.ErrorContains(t, err, "disk full")
	require.Nil(t, w.db.teams[team.ID].DeletedAt)
	require.Nil(t, w.db.projects[p.ID].DeletedAt)
}

func TestDeleteTeamForbiddenForPlainMember(t *testing.T) {
	w := newWorld(t)
	team := w.seedTeam("Core")

	_, err := w.teams.DeleteTeam(context.Background(), actorOf(w.member), w.org.ID, team.ID)
	requireDomainError(t, err, apperrors.CodeForbidden, "You do not have permission to delete this team")
	require.Equal(t, 0, w.tx.calls)
}
