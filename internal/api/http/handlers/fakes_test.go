package handlers_test

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/teamhub/team-service/internal/domain"
	"github.com/teamhub/team-service/internal/repository"
)

// fakeDB backs the handful of repository calls the routes under test make.
// Methods it does not implement come from the embedded nil interfaces and
// panic if reached.
type fakeDB struct {
	mu      sync.Mutex
	seq     int
	users   map[string]domain.User
	orgs    map[string]domain.Organization
	teams   map[string]domain.Team
	members []domain.TeamMember
	logs    []domain.ActivityLog
}

func newFakeDB() *fakeDB {
	return &fakeDB{
		users: map[string]domain.User{},
		orgs:  map[string]domain.Organization{},
		teams: map[string]domain.Team{},
	}
}

func (db *fakeDB) tick() time.Time {
	db.seq++
	return time.Date(2026, 5, 1, 9, 0, db.seq, 0, time.UTC)
}

func (db *fakeDB) addUser(first string, role domain.GlobalRole) domain.User {
	u := domain.User{
		ID:        uuid.NewString(),
		FirstName: first,
		LastName:  "Test",
		Email:     strings.ToLower(first) + "@example.com",
		Role:      role,
	}
	db.users[u.ID] = u
	return u
}

func (db *fakeDB) addOrg(name string, owner string, members ...string) domain.Organization {
	o := domain.Organization{
		ID:        uuid.NewString(),
		Name:      name,
		OwnerIDs:  []string{owner},
		MemberIDs: append([]string{owner}, members...),
	}
	db.orgs[o.ID] = o
	return o
}

func (db *fakeDB) WithTx(_ context.Context, fn func(repository.Store) error) error {
	return fn(db)
}

func (db *fakeDB) Users() repository.UserRepository                 { return fakeUsers{db: db} }
func (db *fakeDB) Organizations() repository.OrganizationRepository { return fakeOrgs{db: db} }
func (db *fakeDB) Departments() repository.DepartmentRepository     { return nil }
func (db *fakeDB) Teams() repository.TeamRepository                 { return fakeTeams{db: db} }
func (db *fakeDB) TeamMembers() repository.TeamMemberRepository     { return fakeMembers{db: db} }
func (db *fakeDB) Projects() repository.ProjectRepository           { return nil }
func (db *fakeDB) ActivityLogs() repository.ActivityLogRepository   { return fakeLogs{db: db} }

type fakeUsers struct {
	repository.UserRepository
	db *fakeDB
}

func (r fakeUsers) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	u, ok := r.db.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &u, nil
}

func (r fakeUsers) ListByIDs(_ context.Context, ids []string) ([]domain.User, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []domain.User
	for _, id := range ids {
		if u, ok := r.db.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

type fakeOrgs struct {
	repository.OrganizationRepository
	db *fakeDB
}

func (r fakeOrgs) GetByID(_ context.Context, id string) (*domain.Organization, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	o, ok := r.db.orgs[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &o, nil
}

type fakeTeams struct {
	repository.TeamRepository
	db *fakeDB
}

func (r fakeTeams) Create(_ context.Context, team *domain.Team) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	now := r.db.tick()
	team.ID = uuid.NewString()
	team.CreatedAt = now
	team.UpdatedAt = now
	r.db.teams[team.ID] = *team
	return nil
}

func (r fakeTeams) Update(_ context.Context, team *domain.Team) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.teams[team.ID]; !ok {
		return pgx.ErrNoRows
	}
	team.UpdatedAt = r.db.tick()
	r.db.teams[team.ID] = *team
	return nil
}

func (r fakeTeams) Get(_ context.Context, lookup repository.TeamLookup) (*domain.Team, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	t, ok := r.db.teams[lookup.ID]
	if !ok || t.OrganizationID != lookup.OrganizationID || t.DeletedAt != nil {
		return nil, pgx.ErrNoRows
	}
	return &t, nil
}

func (r fakeTeams) NameTaken(_ context.Context, organizationID, name, excludeID string) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, t := range r.db.teams {
		if t.OrganizationID == organizationID && t.Name == name && t.ID != excludeID && t.DeletedAt == nil {
			return true, nil
		}
	}
	return false, nil
}

func (r fakeTeams) filtered(filter repository.TeamFilter) []domain.Team {
	var out []domain.Team
	for _, t := range r.db.teams {
		if t.OrganizationID == filter.OrganizationID && t.DeletedAt == nil {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r fakeTeams) List(_ context.Context, filter repository.TeamFilter) ([]domain.Team, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	all := r.filtered(filter)
	if filter.Offset >= len(all) {
		return nil, nil
	}
	end := min(filter.Offset+filter.Limit, len(all))
	return all[filter.Offset:end], nil
}

func (r fakeTeams) Count(_ context.Context, filter repository.TeamFilter) (int, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return len(r.filtered(filter)), nil
}

type fakeMembers struct {
	repository.TeamMemberRepository
	db *fakeDB
}

func (r fakeMembers) Create(_ context.Context, member *domain.TeamMember) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	now := r.db.tick()
	member.ID = uuid.NewString()
	member.IsActive = true
	member.CreatedAt = now
	member.UpdatedAt = now
	r.db.members = append(r.db.members, *member)
	return nil
}

func (r fakeMembers) IsActiveLeader(_ context.Context, teamID, userID string) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, m := range r.db.members {
		if m.TeamID == teamID && m.UserID == userID && m.Role == domain.TeamRoleLeader && m.Live() {
			return true, nil
		}
	}
	return false, nil
}

func (r fakeMembers) ListLive(_ context.Context, teamIDs []string, role *domain.TeamRole) ([]domain.TeamMember, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	wanted := make(map[string]bool, len(teamIDs))
	for _, id := range teamIDs {
		wanted[id] = true
	}
	var out []domain.TeamMember
	for _, m := range r.db.members {
		if !wanted[m.TeamID] || !m.Live() || (role != nil && m.Role != *role) {
			continue
		}
		if u, ok := r.db.users[m.UserID]; ok {
			summary := u.Summary()
			m.User = &summary
		}
		out = append(out, m)
	}
	return out, nil
}

type fakeLogs struct {
	repository.ActivityLogRepository
	db *fakeDB
}

func (r fakeLogs) Create(_ context.Context, entry *domain.ActivityLog) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	entry.ID = uuid.NewString()
	entry.CreatedAt = r.db.tick()
	r.db.logs = append(r.db.logs, *entry)
	return nil
}
