package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/teamhub/team-service/internal/domain"
)

// ProjectRepository manages projects owned by teams.
type ProjectRepository interface {
	ListLiveByTeam(ctx context.Context, teamID string) ([]domain.Project, error)
	// SoftDeleteByTeam removes every live project of the team, stamping
	// lastModifiedBy, and returns the rows it touched.
	SoftDeleteByTeam(ctx context.Context, teamID, actorID string, at time.Time) ([]domain.Project, error)
}

type projectRepository struct {
	db DBTX
}

const projectColumns = `id, team_id, name, description, status, last_modified_by, deleted_at, created_at, updated_at`

func (r *projectRepository) ListLiveByTeam(ctx context.Context, teamID string) ([]domain.Project, error) {
	query := fmt.Sprintf(`SELECT %s FROM projects WHERE team_id=$1 AND %s ORDER BY created_at DESC`, projectColumns, live(""))
	rows, err := r.db.Query(ctx, query, teamID)
	if err != nil {
		return nil, err
	}
	return scanProjects(rows)
}

func (r *projectRepository) SoftDeleteByTeam(ctx context.Context, teamID, actorID string, at time.Time) ([]domain.Project, error) {
	query := fmt.Sprintf(`
        UPDATE projects SET deleted_at=$1, last_modified_by=$2, updated_at=$1
        WHERE team_id=$3 AND %s
        RETURNING %s`, live(""), projectColumns)
	rows, err := r.db.Query(ctx, query, at, actorID, teamID)
	if err != nil {
		return nil, err
	}
	return scanProjects(rows)
}

func scanProjects(rows pgx.Rows) ([]domain.Project, error) {
	defer rows.Close()

	var result []domain.Project
	for rows.Next() {
		var project domain.Project
		if err := rows.Scan(
			&project.ID,
			&project.TeamID,
			&project.Name,
			&project.Description,
			&project.Status,
			&project.LastModifiedBy,
			&project.DeletedAt,
			&project.CreatedAt,
			&project.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, project)
	}
	return result, rows.Err()
}
