package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/teamhub/team-service/internal/domain"
)

// ActivityLogRepository appends and reads audit records. There is no update or delete path.
type ActivityLogRepository interface {
	Create(ctx context.Context, entry *domain.ActivityLog) error
	List(ctx context.Context, filter ActivityFilter) ([]domain.ActivityLog, error)
}

// ActivityFilter narrows activity listings.
type ActivityFilter struct {
	OrganizationID string
	TeamID         *string
	EntityType     *domain.EntityType
	Limit          int
	Offset         int
}

type activityLogRepository struct {
	db DBTX
}

func (r *activityLogRepository) Create(ctx context.Context, entry *domain.ActivityLog) error {
	const query = `
        INSERT INTO activity_logs (entity_type, action, user_id, organization_id, team_id, project_id, details)
        VALUES ($1,$2,$3,$4,$5,$6,$7)
        RETURNING id, created_at`
	details := entry.Details
	if details == nil {
		details = map[string]any{}
	}
	return r.db.QueryRow(ctx, query,
		entry.EntityType,
		entry.Action,
		entry.UserID,
		entry.OrganizationID,
		entry.TeamID,
		entry.ProjectID,
		details,
	).Scan(&entry.ID, &entry.CreatedAt)
}

func (r *activityLogRepository) List(ctx context.Context, filter ActivityFilter) ([]domain.ActivityLog, error) {
	args := []any{filter.OrganizationID}
	clauses := []string{"organization_id=$1"}
	if filter.TeamID != nil {
		args = append(args, *filter.TeamID)
		clauses = append(clauses, fmt.Sprintf("team_id=$%d", len(args)))
	}
	if filter.EntityType != nil {
		args = append(args, *filter.EntityType)
		clauses = append(clauses, fmt.Sprintf("entity_type=$%d", len(args)))
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := fmt.Sprintf(`
        SELECT id, entity_type, action, user_id, organization_id, team_id, project_id, details, created_at
        FROM activity_logs WHERE %s ORDER BY created_at DESC LIMIT %d OFFSET %d`,
		strings.Join(clauses, " AND "), limit, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.ActivityLog
	for rows.Next() {
		var entry domain.ActivityLog
		if err := rows.Scan(
			&entry.ID,
			&entry.EntityType,
			&entry.Action,
			&entry.UserID,
			&entry.OrganizationID,
			&entry.TeamID,
			&entry.ProjectID,
			&entry.Details,
			&entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}
