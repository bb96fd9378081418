package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/teamhub/team-service/internal/domain"
)

// TeamNameConstraint is the partial unique index over live team names.
const TeamNameConstraint = "teams_org_name_live_key"

// TeamRepository manages persistence for teams.
type TeamRepository interface {
	Create(ctx context.Context, team *domain.Team) error
	Update(ctx context.Context, team *domain.Team) error
	Get(ctx context.Context, lookup TeamLookup) (*domain.Team, error)
	NameTaken(ctx context.Context, organizationID, name, excludeID string) (bool, error)
	SoftDelete(ctx context.Context, id string, at time.Time) error
	List(ctx context.Context, filter TeamFilter) ([]domain.Team, error)
	Count(ctx context.Context, filter TeamFilter) (int, error)
}

// TeamLookup addresses a single live team inside its organization.
type TeamLookup struct {
	ID             string
	OrganizationID string
	DepartmentID   *string
}

// TeamFilter selects live teams of an organization.
type TeamFilter struct {
	OrganizationID string
	Search         string
	Limit          int
	Offset         int
}

type teamRepository struct {
	db DBTX
}

const teamColumns = `id, organization_id, department_id, name, description, avatar, created_by, deleted_at, created_at, updated_at`

func (r *teamRepository) Create(ctx context.Context, team *domain.Team) error {
	const query = `
        INSERT INTO teams (organization_id, department_id, name, description, avatar, created_by)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id, created_at, updated_at`
	return r.db.QueryRow(ctx, query,
		team.OrganizationID,
		team.DepartmentID,
		team.Name,
		team.Description,
		team.Avatar,
		team.CreatedBy,
	).Scan(&team.ID, &team.CreatedAt, &team.UpdatedAt)
}

func (r *teamRepository) Update(ctx context.Context, team *domain.Team) error {
	query := fmt.Sprintf(`
        UPDATE teams SET name=$1, description=$2, avatar=$3, updated_at=NOW()
        WHERE id=$4 AND %s
        RETURNING updated_at`, live(""))
	return r.db.QueryRow(ctx, query,
		team.Name,
		team.Description,
		team.Avatar,
		team.ID,
	).Scan(&team.UpdatedAt)
}

func (r *teamRepository) Get(ctx context.Context, lookup TeamLookup) (*domain.Team, error) {
	args := []any{lookup.ID, lookup.OrganizationID}
	clauses := []string{"id=$1", "organization_id=$2", live("")}
	if lookup.DepartmentID != nil {
		args = append(args, *lookup.DepartmentID)
		clauses = append(clauses, fmt.Sprintf("department_id=$%d", len(args)))
	}
	query := fmt.Sprintf(`SELECT %s FROM teams WHERE %s`, teamColumns, strings.Join(clauses, " AND "))
	return scanTeam(r.db.QueryRow(ctx, query, args...))
}

func (r *teamRepository) NameTaken(ctx context.Context, organizationID, name, excludeID string) (bool, error) {
	args := []any{organizationID, name}
	clauses := []string{"organization_id=$1", "name=$2", live("")}
	if excludeID != "" {
		args = append(args, excludeID)
		clauses = append(clauses, fmt.Sprintf("id<>$%d", len(args)))
	}
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM teams WHERE %s)`, strings.Join(clauses, " AND "))
	var taken bool
	if err := r.db.QueryRow(ctx, query, args...).Scan(&taken); err != nil {
		return false, err
	}
	return taken, nil
}

func (r *teamRepository) SoftDelete(ctx context.Context, id string, at time.Time) error {
	query := fmt.Sprintf(`UPDATE teams SET deleted_at=$1, updated_at=$1 WHERE id=$2 AND %s`, live(""))
	cmd, err := r.db.Exec(ctx, query, at, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *teamRepository) List(ctx context.Context, filter TeamFilter) ([]domain.Team, error) {
	where, args := teamFilterClauses(filter)

	limit := filter.Limit
	if limit <= 0 {
		limit = 10
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`SELECT %s FROM teams WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		teamColumns, where, limit, offset)
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Team
	for rows.Next() {
		team, err := scanTeam(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *team)
	}
	return result, rows.Err()
}

func (r *teamRepository) Count(ctx context.Context, filter TeamFilter) (int, error) {
	where, args := teamFilterClauses(filter)
	var total int
	if err := r.db.QueryRow(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM teams WHERE %s`, where), args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

func teamFilterClauses(filter TeamFilter) (string, []any) {
	args := []any{filter.OrganizationID}
	clauses := []string{"organization_id=$1", live("")}
	if search := strings.TrimSpace(filter.Search); search != "" {
		args = append(args, containsPattern(search))
		clauses = append(clauses, fmt.Sprintf(`name ILIKE $%d ESCAPE '\'`, len(args)))
	}
	return strings.Join(clauses, " AND "), args
}

func scanTeam(row pgx.Row) (*domain.Team, error) {
	var team domain.Team
	if err := row.Scan(
		&team.ID,
		&team.OrganizationID,
		&team.DepartmentID,
		&team.Name,
		&team.Description,
		&team.Avatar,
		&team.CreatedBy,
		&team.DeletedAt,
		&team.CreatedAt,
		&team.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &team, nil
}
