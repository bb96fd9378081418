package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/teamhub/team-service/internal/config"
	"github.com/teamhub/team-service/internal/domain"
	"github.com/teamhub/team-service/internal/events"
	"github.com/teamhub/team-service/internal/repository"
	"github.com/teamhub/team-service/internal/storage"
	apperrors "github.com/teamhub/team-service/pkg/util/errorutil"
)

var baseTime = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

// memDB is an in-memory stand-in for postgres honoring the same soft-delete
// and uniqueness rules as the SQL repositories.
type memDB struct {
	seq         int
	users       map[string]domain.User
	orgs        map[string]domain.Organization
	departments map[string]domain.Department
	teams       map[string]domain.Team
	members     map[string]domain.TeamMember
	projects    map[string]domain.Project
	logs        []domain.ActivityLog

	// hideTakenNames makes NameTaken report false so the unique index is
	// what catches a duplicate, as when two requests race.
	hideTakenNames bool
	failLogs       error
}

func newMemDB() *memDB {
	return &memDB{
		users:       map[string]domain.User{},
		orgs:        map[string]domain.Organization{},
		departments: map[string]domain.Department{},
		teams:       map[string]domain.Team{},
		members:     map[string]domain.TeamMember{},
		projects:    map[string]domain.Project{},
	}
}

func (db *memDB) tick() time.Time {
	db.seq++
	return baseTime.Add(time.Duration(db.seq) * time.Second)
}

type memSnapshot struct {
	seq         int
	users       map[string]domain.User
	orgs        map[string]domain.Organization
	departments map[string]domain.Department
	teams       map[string]domain.Team
	members     map[string]domain.TeamMember
	projects    map[string]domain.Project
	logs        []domain.ActivityLog
}

func copyMap[V any](m map[string]V) map[string]V {
	out := make(map[string]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func (db *memDB) snapshot() memSnapshot {
	orgs := make(map[string]domain.Organization, len(db.orgs))
	for k, o := range db.orgs {
		o.OwnerIDs = append([]string(nil), o.OwnerIDs...)
		o.MemberIDs = append([]string(nil), o.MemberIDs...)
		orgs[k] = o
	}
	return memSnapshot{
		seq:         db.seq,
		users:       copyMap(db.users),
		orgs:        orgs,
		departments: copyMap(db.departments),
		teams:       copyMap(db.teams),
		members:     copyMap(db.members),
		projects:    copyMap(db.projects),
		logs:        append([]domain.ActivityLog(nil), db.logs...),
	}
}

func (db *memDB) restore(s memSnapshot) {
	db.seq = s.seq
	db.users = s.users
	db.orgs = s.orgs
	db.departments = s.departments
	db.teams = s.teams
	db.members = s.members
	db.projects = s.projects
	db.logs = s.logs
}

func uniqueViolation(constraint string) error {
	return &pgconn.PgError{Code: "23505", ConstraintName: constraint, Message: "duplicate key value violates unique constraint"}
}

// seeding

func (db *memDB) addUser(first, last string, role domain.GlobalRole) domain.User {
	now := db.tick()
	u := domain.User{
		ID:        uuid.NewString(),
		FirstName: first,
		LastName:  last,
		Email:     strings.ToLower(first) + "@example.com",
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
	db.users[u.ID] = u
	return u
}

func (db *memDB) addOrg(name string, owners ...string) domain.Organization {
	now := db.tick()
	o := domain.Organization{
		ID:        uuid.NewString(),
		Name:      name,
		OwnerIDs:  append([]string(nil), owners...),
		MemberIDs: append([]string(nil), owners...),
		CreatedAt: now,
		UpdatedAt: now,
	}
	db.orgs[o.ID] = o
	return o
}

func (db *memDB) joinOrg(orgID, userID string) {
	o := db.orgs[orgID]
	o.MemberIDs = append(o.MemberIDs, userID)
	db.orgs[orgID] = o
}

func (db *memDB) addDepartment(orgID, name string) domain.Department {
	now := db.tick()
	d := domain.Department{ID: uuid.NewString(), OrganizationID: orgID, Name: name, CreatedAt: now, UpdatedAt: now}
	db.departments[d.ID] = d
	return d
}

// addTeam seeds a live team and its creator as active LEADER.
func (db *memDB) addTeam(orgID, name, createdBy string) domain.Team {
	now := db.tick()
	t := domain.Team{
		ID:             uuid.NewString(),
		OrganizationID: orgID,
		Name:           name,
		CreatedBy:      createdBy,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	db.teams[t.ID] = t
	db.addMember(t.ID, createdBy, domain.TeamRoleLeader)
	return t
}

func (db *memDB) addMember(teamID, userID string, role domain.TeamRole) domain.TeamMember {
	now := db.tick()
	m := domain.TeamMember{
		ID:        uuid.NewString(),
		TeamID:    teamID,
		UserID:    userID,
		Role:      role,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	db.members[m.ID] = m
	return m
}

func (db *memDB) addProject(teamID, name string, status domain.ProjectStatus) domain.Project {
	now := db.tick()
	p := domain.Project{ID: uuid.NewString(), TeamID: teamID, Name: name, Status: status, CreatedAt: now, UpdatedAt: now}
	db.projects[p.ID] = p
	return p
}

func (db *memDB) softDeleteOrg(id string) {
	o := db.orgs[id]
	at := db.tick()
	o.DeletedAt = &at
	db.orgs[id] = o
}

func (db *memDB) softDeleteTeam(id string) {
	t := db.teams[id]
	at := db.tick()
	t.DeletedAt = &at
	db.teams[id] = t
}

func (db *memDB) softDeleteMember(teamID, userID string) {
	for id, m := range db.members {
		if m.TeamID == teamID && m.UserID == userID {
			at := db.tick()
			m.DeletedAt = &at
			m.IsActive = false
			db.members[id] = m
		}
	}
}

// org returns a copy of the stored organization, soft-deleted or not.
func (db *memDB) org(id string) *domain.Organization {
	o := db.orgs[id]
	return &o
}

func (db *memDB) findMember(teamID, userID string) (domain.TeamMember, bool) {
	for _, m := range db.members {
		if m.TeamID == teamID && m.UserID == userID {
			return m, true
		}
	}
	return domain.TeamMember{}, false
}

func (db *memDB) logsFor(action domain.ActivityAction) []domain.ActivityLog {
	var out []domain.ActivityLog
	for _, l := range db.logs {
		if l.Action == action {
			out = append(out, l)
		}
	}
	return out
}

// store

type memStore struct{ db *memDB }

func (s memStore) Users() repository.UserRepository                 { return memUsers(s) }
func (s memStore) Organizations() repository.OrganizationRepository { return memOrgs(s) }
func (s memStore) Departments() repository.DepartmentRepository     { return memDepartments(s) }
func (s memStore) Teams() repository.TeamRepository                 { return memTeams(s) }
func (s memStore) TeamMembers() repository.TeamMemberRepository     { return memMembers(s) }
func (s memStore) Projects() repository.ProjectRepository           { return memProjects(s) }
func (s memStore) ActivityLogs() repository.ActivityLogRepository   { return memLogs(s) }

type memTx struct {
	db    *memDB
	calls int
}

func (t *memTx) WithTx(_ context.Context, fn func(repository.Store) error) error {
	t.calls++
	snap := t.db.snapshot()
	if err := fn(memStore{db: t.db}); err != nil {
		t.db.restore(snap)
		return err
	}
	return nil
}

type memUsers memStore

func (r memUsers) GetByID(_ context.Context, id string) (*domain.User, error) {
	u, ok := r.db.users[id]
	if !ok || u.DeletedAt != nil {
		return nil, pgx.ErrNoRows
	}
	return &u, nil
}

func (r memUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.db.users {
		if u.DeletedAt == nil && strings.EqualFold(u.Email, email) {
			u := u
			return &u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (r memUsers) ListByIDs(_ context.Context, ids []string) ([]domain.User, error) {
	var out []domain.User
	for _, id := range ids {
		if u, ok := r.db.users[id]; ok && u.DeletedAt == nil {
			out = append(out, u)
		}
	}
	return out, nil
}

type memOrgs memStore

func (r memOrgs) GetByID(_ context.Context, id string) (*domain.Organization, error) {
	o, ok := r.db.orgs[id]
	if !ok || o.DeletedAt != nil {
		return nil, pgx.ErrNoRows
	}
	o.OwnerIDs = append([]string(nil), o.OwnerIDs...)
	o.MemberIDs = append([]string(nil), o.MemberIDs...)
	return &o, nil
}

func (r memOrgs) AddOwner(_ context.Context, organizationID, userID string) (bool, error) {
	o := r.db.orgs[organizationID]
	if o.IsOwner(userID) {
		return false, nil
	}
	o.OwnerIDs = append(o.OwnerIDs, userID)
	r.db.orgs[organizationID] = o
	return true, nil
}

func (r memOrgs) AddMember(_ context.Context, organizationID, userID string) (bool, error) {
	o := r.db.orgs[organizationID]
	if o.IsMember(userID) {
		return false, nil
	}
	o.MemberIDs = append(o.MemberIDs, userID)
	r.db.orgs[organizationID] = o
	return true, nil
}

func (r memOrgs) UpdateLogo(_ context.Context, organizationID string, logoURL *string) error {
	o, ok := r.db.orgs[organizationID]
	if !ok || o.DeletedAt != nil {
		return pgx.ErrNoRows
	}
	o.LogoURL = logoURL
	o.UpdatedAt = r.db.tick()
	r.db.orgs[organizationID] = o
	return nil
}

type memDepartments memStore

func (r memDepartments) GetByID(_ context.Context, id, organizationID string) (*domain.Department, error) {
	d, ok := r.db.departments[id]
	if !ok || d.DeletedAt != nil || d.OrganizationID != organizationID {
		return nil, pgx.ErrNoRows
	}
	return &d, nil
}

type memTeams memStore

func (r memTeams) nameInUse(orgID, name, excludeID string) bool {
	for _, t := range r.db.teams {
		if t.DeletedAt == nil && t.OrganizationID == orgID && t.Name == name && t.ID != excludeID {
			return true
		}
	}
	return false
}

func (r memTeams) Create(_ context.Context, team *domain.Team) error {
	if r.nameInUse(team.OrganizationID, team.Name, "") {
		return uniqueViolation(repository.TeamNameConstraint)
	}
	now := r.db.tick()
	team.ID = uuid.NewString()
	team.CreatedAt = now
	team.UpdatedAt = now
	r.db.teams[team.ID] = *team
	return nil
}

func (r memTeams) Update(_ context.Context, team *domain.Team) error {
	stored, ok := r.db.teams[team.ID]
	if !ok || stored.DeletedAt != nil {
		return pgx.ErrNoRows
	}
	if r.nameInUse(stored.OrganizationID, team.Name, team.ID) {
		return uniqueViolation(repository.TeamNameConstraint)
	}
	stored.Name = team.Name
	stored.Description = team.Description
	stored.Avatar = team.Avatar
	stored.UpdatedAt = r.db.tick()
	r.db.teams[team.ID] = stored
	team.UpdatedAt = stored.UpdatedAt
	return nil
}

func (r memTeams) Get(_ context.Context, lookup repository.TeamLookup) (*domain.Team, error) {
	t, ok := r.db.teams[lookup.ID]
	if !ok || t.DeletedAt != nil || t.OrganizationID != lookup.OrganizationID {
		return nil, pgx.ErrNoRows
	}
	if lookup.DepartmentID != nil && (t.DepartmentID == nil || *t.DepartmentID != *lookup.DepartmentID) {
		return nil, pgx.ErrNoRows
	}
	return &t, nil
}

func (r memTeams) NameTaken(_ context.Context, organizationID, name, excludeID string) (bool, error) {
	if r.db.hideTakenNames {
		return false, nil
	}
	return r.nameInUse(organizationID, name, excludeID), nil
}

func (r memTeams) SoftDelete(_ context.Context, id string, at time.Time) error {
	t, ok := r.db.teams[id]
	if !ok || t.DeletedAt != nil {
		return pgx.ErrNoRows
	}
	t.DeletedAt = &at
	t.UpdatedAt = at
	r.db.teams[id] = t
	return nil
}

func (r memTeams) filtered(filter repository.TeamFilter) []domain.Team {
	search := strings.ToLower(strings.TrimSpace(filter.Search))
	var out []domain.Team
	for _, t := range r.db.teams {
		if t.DeletedAt != nil || t.OrganizationID != filter.OrganizationID {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(t.Name), search) {
			continue
		}
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r memTeams) List(_ context.Context, filter repository.TeamFilter) ([]domain.Team, error) {
	all := r.filtered(filter)
	if filter.Offset >= len(all) {
		return nil, nil
	}
	end := filter.Offset + filter.Limit
	if end > len(all) {
		end = len(all)
	}
	return all[filter.Offset:end], nil
}

func (r memTeams) Count(_ context.Context, filter repository.TeamFilter) (int, error) {
	return len(r.filtered(filter)), nil
}

type memMembers memStore

func (r memMembers) Create(_ context.Context, member *domain.TeamMember) error {
	if _, exists := r.db.findMember(member.TeamID, member.UserID); exists {
		return uniqueViolation(repository.TeamMemberConstraint)
	}
	now := r.db.tick()
	member.ID = uuid.NewString()
	member.IsActive = true
	member.CreatedAt = now
	member.UpdatedAt = now
	r.db.members[member.ID] = *member
	return nil
}

func (r memMembers) InsertIfAbsent(ctx context.Context, member *domain.TeamMember) (bool, error) {
	if _, exists := r.db.findMember(member.TeamID, member.UserID); exists {
		return false, nil
	}
	return true, r.Create(ctx, member)
}

func (r memMembers) Find(_ context.Context, teamID, userID string) (*domain.TeamMember, error) {
	m, ok := r.db.findMember(teamID, userID)
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &m, nil
}

func (r memMembers) Restore(_ context.Context, id string, role domain.TeamRole) error {
	m, ok := r.db.members[id]
	if !ok {
		return pgx.ErrNoRows
	}
	m.DeletedAt = nil
	m.IsActive = true
	m.Role = role
	m.UpdatedAt = r.db.tick()
	r.db.members[id] = m
	return nil
}

func (r memMembers) SoftDelete(_ context.Context, id string, at time.Time) error {
	m, ok := r.db.members[id]
	if !ok || m.DeletedAt != nil {
		return pgx.ErrNoRows
	}
	m.DeletedAt = &at
	m.IsActive = false
	m.UpdatedAt = at
	r.db.members[id] = m
	return nil
}

func (r memMembers) IsActiveLeader(_ context.Context, teamID, userID string) (bool, error) {
	m, ok := r.db.findMember(teamID, userID)
	return ok && m.DeletedAt == nil && m.IsActive && m.Role == domain.TeamRoleLeader, nil
}

func (r memMembers) CountActiveLeaders(_ context.Context, teamID, excludeUserID string) (int, error) {
	count := 0
	for _, m := range r.db.members {
		if m.TeamID == teamID && m.UserID != excludeUserID && m.Role == domain.TeamRoleLeader && m.IsActive && m.DeletedAt == nil {
			count++
		}
	}
	return count, nil
}

func (r memMembers) ListLive(_ context.Context, teamIDs []string, role *domain.TeamRole) ([]domain.TeamMember, error) {
	wanted := make(map[string]bool, len(teamIDs))
	for _, id := range teamIDs {
		wanted[id] = true
	}
	var out []domain.TeamMember
	for _, m := range r.db.members {
		if !wanted[m.TeamID] || m.DeletedAt != nil || (role != nil && m.Role != *role) {
			continue
		}
		u, ok := r.db.users[m.UserID]
		if !ok {
			continue
		}
		summary := u.Summary()
		m.User = &summary
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

type memProjects memStore

func (r memProjects) ListLiveByTeam(_ context.Context, teamID string) ([]domain.Project, error) {
	var out []domain.Project
	for _, p := range r.db.projects {
		if p.TeamID == teamID && p.DeletedAt == nil {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r memProjects) SoftDeleteByTeam(ctx context.Context, teamID, actorID string, at time.Time) ([]domain.Project, error) {
	live, _ := r.ListLiveByTeam(ctx, teamID)
	out := make([]domain.Project, 0, len(live))
	for _, p := range live {
		p.DeletedAt = &at
		p.LastModifiedBy = &actorID
		p.UpdatedAt = at
		r.db.projects[p.ID] = p
		out = append(out, p)
	}
	return out, nil
}

type memLogs memStore

func (r memLogs) Create(_ context.Context, entry *domain.ActivityLog) error {
	if r.db.failLogs != nil {
		return r.db.failLogs
	}
	entry.ID = uuid.NewString()
	entry.CreatedAt = r.db.tick()
	r.db.logs = append(r.db.logs, *entry)
	return nil
}

func (r memLogs) List(_ context.Context, filter repository.ActivityFilter) ([]domain.ActivityLog, error) {
	var out []domain.ActivityLog
	for i := len(r.db.logs) - 1; i >= 0; i-- {
		l := r.db.logs[i]
		if l.OrganizationID == nil || *l.OrganizationID != filter.OrganizationID {
			continue
		}
		if filter.TeamID != nil && (l.TeamID == nil || *l.TeamID != *filter.TeamID) {
			continue
		}
		if filter.EntityType != nil && l.EntityType != *filter.EntityType {
			continue
		}
		out = append(out, l)
	}
	if filter.Offset >= len(out) {
		return nil, nil
	}
	end := filter.Offset + filter.Limit
	if end > len(out) {
		end = len(out)
	}
	return out[filter.Offset:end], nil
}

// invitations

type memInvitations struct {
	items map[string]domain.Invitation
	ttls  map[string]time.Duration
}

func newMemInvitations() *memInvitations {
	return &memInvitations{items: map[string]domain.Invitation{}, ttls: map[string]time.Duration{}}
}

func (s *memInvitations) Save(_ context.Context, inv domain.Invitation, ttl time.Duration) error {
	key := repository.InvitationKey(inv.OrganizationID, inv.Email)
	s.items[key] = inv
	s.ttls[key] = ttl
	return nil
}

func (s *memInvitations) Get(_ context.Context, organizationID, email string) (*domain.Invitation, error) {
	inv, ok := s.items[repository.InvitationKey(organizationID, email)]
	if !ok {
		return nil, repository.ErrInvitationNotFound
	}
	return &inv, nil
}

func (s *memInvitations) Delete(_ context.Context, organizationID, email string) error {
	delete(s.items, repository.InvitationKey(organizationID, email))
	return nil
}

// fixture

type fixture struct {
	db          *memDB
	tx          *memTx
	blobs       *storage.FSStore
	invites     *memInvitations
	dispatcher  events.Dispatcher
	published   []events.Event
	teams       *TeamService
	orgs        *OrganizationService
	invitations *InvitationService
	now         time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		db:         newMemDB(),
		invites:    newMemInvitations(),
		dispatcher: events.NewInMemoryDispatcher(),
		now:        time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC),
	}
	f.tx = &memTx{db: f.db}

	blobs, err := storage.NewFSStore(config.StorageConfig{Root: t.TempDir(), PublicBaseURL: "/uploads"}, zap.NewNop())
	require.NoError(t, err)
	f.blobs = blobs

	record := func(_ context.Context, e events.Event) error {
		f.published = append(f.published, e)
		return nil
	}
	f.dispatcher.Subscribe(events.EventActivityRecorded, record)
	f.dispatcher.Subscribe(events.EventInvitationCreated, record)

	store := memStore{db: f.db}
	clock := func() time.Time { return f.now }
	activity := NewActivityRecorder(f.dispatcher, nil, zap.NewNop())

	f.teams = NewTeamService(TeamDependencies{
		Store:      store,
		Tx:         f.tx,
		Blobs:      blobs,
		Activity:   activity,
		Pagination: config.PaginationConfig{DefaultLimit: 10, MaxLimit: 50},
		Now:        clock,
	})
	f.orgs = NewOrganizationService(OrganizationDependencies{
		Store:    store,
		Tx:       f.tx,
		Blobs:    blobs,
		Activity: activity,
		Now:      clock,
	})
	f.invitations = NewInvitationService(config.Config{
		App:        config.AppConfig{Env: "test"},
		Auth:       config.AuthConfig{BcryptCost: 4},
		Invitation: config.InvitationConfig{TTLMinutes: 15},
	}, InvitationDependencies{
		Store:      store,
		Tx:         f.tx,
		Invites:    f.invites,
		Dispatcher: f.dispatcher,
		Activity:   activity,
		Now:        clock,
		NewCode:    func() (string, error) { return "424242", nil },
	})
	return f
}

func actorOf(u domain.User) domain.Actor {
	return domain.ActorFromUser(&u)
}

func requireDomainError(t *testing.T, err error, code, message string) *apperrors.DomainError {
	t.Helper()
	require.Error(t, err)
	var domainErr *apperrors.DomainError
	require.True(t, errors.As(err, &domainErr), "expected DomainError, got %T: %v", err, err)
	require.Equal(t, code, domainErr.Code)
	if message != "" {
		require.Equal(t, message, domainErr.Message)
	}
	return domainErr
}

// pngBytes is a 1x1 transparent PNG.
var pngBytes = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d,
	0x49, 0x48, 0x44, 0x52, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4, 0x89, 0x00, 0x00, 0x00,
	0x0d, 0x49, 0x44, 0x41, 0x54, 0x78, 0x9c, 0x63, 0x00, 0x01, 0x00, 0x00,
	0x05, 0x00, 0x01, 0x0d, 0x0a, 0x2d, 0xb4, 0x00, 0x00, 0x00, 0x00, 0x49,
	0x45, 0x4e, 0x44, 0xae, 0x42, 0x60, 0x82,
}
