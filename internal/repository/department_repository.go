package repository

import (
	"context"
	"fmt"

	"github.com/teamhub/team-service/internal/domain"
)

// DepartmentRepository reads departments scoped to an organization.
type DepartmentRepository interface {
	GetByID(ctx context.Context, id, organizationID string) (*domain.Department, error)
}

type departmentRepository struct {
	db DBTX
}

func (r *departmentRepository) GetByID(ctx context.Context, id, organizationID string) (*domain.Department, error) {
	query := fmt.Sprintf(`
        SELECT id, organization_id, name, description, deleted_at, created_at, updated_at
        FROM departments WHERE id=$1 AND organization_id=$2 AND %s`, live(""))
	var dept domain.Department
	if err := r.db.QueryRow(ctx, query, id, organizationID).Scan(
		&dept.ID,
		&dept.OrganizationID,
		&dept.Name,
		&dept.Description,
		&dept.DeletedAt,
		&dept.CreatedAt,
		&dept.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &dept, nil
}
