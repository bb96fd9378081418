package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/teamhub/team-service/internal/domain"
)

// TeamMemberConstraint is the unique key over (team_id, user_id).
const TeamMemberConstraint = "team_members_team_user_key"

// TeamMemberRepository manages team memberships.
type TeamMemberRepository interface {
	Create(ctx context.Context, member *domain.TeamMember) error
	// InsertIfAbsent inserts member unless a row for the same team and user
	// exists, deleted or not. It reports whether a row was written.
	InsertIfAbsent(ctx context.Context, member *domain.TeamMember) (bool, error)
	// Find returns the membership row including soft-deleted ones.
	Find(ctx context.Context, teamID, userID string) (*domain.TeamMember, error)
	Restore(ctx context.Context, id string, role domain.TeamRole) error
	SoftDelete(ctx context.Context, id string, at time.Time) error
	IsActiveLeader(ctx context.Context, teamID, userID string) (bool, error)
	CountActiveLeaders(ctx context.Context, teamID, excludeUserID string) (int, error)
	ListLive(ctx context.Context, teamIDs []string, role *domain.TeamRole) ([]domain.TeamMember, error)
}

type teamMemberRepository struct {
	db DBTX
}

const memberColumns = `id, team_id, user_id, role, is_active, deleted_at, created_at, updated_at`

func (r *teamMemberRepository) Create(ctx context.Context, member *domain.TeamMember) error {
	const query = `
        INSERT INTO team_members (team_id, user_id, role, is_active)
        VALUES ($1,$2,$3,TRUE)
        RETURNING id, is_active, created_at, updated_at`
	return r.db.QueryRow(ctx, query,
		member.TeamID,
		member.UserID,
		member.Role,
	).Scan(&member.ID, &member.IsActive, &member.CreatedAt, &member.UpdatedAt)
}

func (r *teamMemberRepository) InsertIfAbsent(ctx context.Context, member *domain.TeamMember) (bool, error) {
	const query = `
        INSERT INTO team_members (team_id, user_id, role, is_active)
        VALUES ($1,$2,$3,TRUE)
        ON CONFLICT (team_id, user_id) DO NOTHING
        RETURNING id, is_active, created_at, updated_at`
	err := r.db.QueryRow(ctx, query,
		member.TeamID,
		member.UserID,
		member.Role,
	).Scan(&member.ID, &member.IsActive, &member.CreatedAt, &member.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *teamMemberRepository) Find(ctx context.Context, teamID, userID string) (*domain.TeamMember, error) {
	query := fmt.Sprintf(`SELECT %s FROM team_members WHERE team_id=$1 AND user_id=$2`, memberColumns)
	var member domain.TeamMember
	if err := r.db.QueryRow(ctx, query, teamID, userID).Scan(
		&member.ID,
		&member.TeamID,
		&member.UserID,
		&member.Role,
		&member.IsActive,
		&member.DeletedAt,
		&member.CreatedAt,
		&member.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &member, nil
}

func (r *teamMemberRepository) Restore(ctx context.Context, id string, role domain.TeamRole) error {
	const query = `
        UPDATE team_members SET deleted_at=NULL, is_active=TRUE, role=$1, updated_at=NOW()
        WHERE id=$2`
	cmd, err := r.db.Exec(ctx, query, role, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *teamMemberRepository) SoftDelete(ctx context.Context, id string, at time.Time) error {
	query := fmt.Sprintf(`
        UPDATE team_members SET deleted_at=$1, is_active=FALSE, updated_at=$1
        WHERE id=$2 AND %s`, live(""))
	cmd, err := r.db.Exec(ctx, query, at, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *teamMemberRepository) IsActiveLeader(ctx context.Context, teamID, userID string) (bool, error) {
	query := fmt.Sprintf(`
        SELECT EXISTS (SELECT 1 FROM team_members
        WHERE team_id=$1 AND user_id=$2 AND role=$3 AND is_active=TRUE AND %s)`, live(""))
	var leader bool
	if err := r.db.QueryRow(ctx, query, teamID, userID, domain.TeamRoleLeader).Scan(&leader); err != nil {
		return false, err
	}
	return leader, nil
}

func (r *teamMemberRepository) CountActiveLeaders(ctx context.Context, teamID, excludeUserID string) (int, error) {
	query := fmt.Sprintf(`
        SELECT COUNT(*) FROM team_members
        WHERE team_id=$1 AND user_id<>$2 AND role=$3 AND is_active=TRUE AND %s`, live(""))
	var count int
	if err := r.db.QueryRow(ctx, query, teamID, excludeUserID, domain.TeamRoleLeader).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *teamMemberRepository) ListLive(ctx context.Context, teamIDs []string, role *domain.TeamRole) ([]domain.TeamMember, error) {
	if len(teamIDs) == 0 {
		return nil, nil
	}
	args := []any{teamIDs}
	clauses := []string{"tm.team_id = ANY($1::uuid[])", live("tm")}
	if role != nil {
		args = append(args, *role)
		clauses = append(clauses, fmt.Sprintf("tm.role=$%d", len(args)))
	}
	query := fmt.Sprintf(`
        SELECT tm.id, tm.team_id, tm.user_id, tm.role, tm.is_active, tm.deleted_at, tm.created_at, tm.updated_at,
               u.id, u.first_name, u.last_name, u.email, u.profile_pic
        FROM team_members tm
        JOIN users u ON u.id = tm.user_id
        WHERE %s
        ORDER BY tm.created_at ASC`, strings.Join(clauses, " AND "))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.TeamMember
	for rows.Next() {
		var member domain.TeamMember
		var user domain.UserSummary
		if err := rows.Scan(
			&member.ID,
			&member.TeamID,
			&member.UserID,
			&member.Role,
			&member.IsActive,
			&member.DeletedAt,
			&member.CreatedAt,
			&member.UpdatedAt,
			&user.ID,
			&user.FirstName,
			&user.LastName,
			&user.Email,
			&user.ProfilePic,
		); err != nil {
			return nil, err
		}
		member.User = &user
		result = append(result, member)
	}
	return result, rows.Err()
}
