package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/teamhub/team-service/internal/domain"
)

// OrganizationRepository manages organizations with their owner and member sets.
type OrganizationRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Organization, error)
	AddOwner(ctx context.Context, organizationID, userID string) (bool, error)
	AddMember(ctx context.Context, organizationID, userID string) (bool, error)
	UpdateLogo(ctx context.Context, organizationID string, logoURL *string) error
}

type organizationRepository struct {
	db DBTX
}

func (r *organizationRepository) GetByID(ctx context.Context, id string) (*domain.Organization, error) {
	query := fmt.Sprintf(`
        SELECT id, name, description, logo_url, deleted_at, created_at, updated_at
        FROM organizations WHERE id=$1 AND %s`, live(""))
	var org domain.Organization
	if err := r.db.QueryRow(ctx, query, id).Scan(
		&org.ID,
		&org.Name,
		&org.Description,
		&org.LogoURL,
		&org.DeletedAt,
		&org.CreatedAt,
		&org.UpdatedAt,
	); err != nil {
		return nil, err
	}

	owners, err := r.userIDs(ctx, `SELECT user_id FROM organization_owners WHERE organization_id=$1 ORDER BY created_at ASC`, id)
	if err != nil {
		return nil, err
	}
	members, err := r.userIDs(ctx, `SELECT user_id FROM organization_members WHERE organization_id=$1 ORDER BY joined_at ASC`, id)
	if err != nil {
		return nil, err
	}
	org.OwnerIDs = owners
	org.MemberIDs = members
	return &org, nil
}

func (r *organizationRepository) AddOwner(ctx context.Context, organizationID, userID string) (bool, error) {
	const query = `
        INSERT INTO organization_owners (organization_id, user_id) VALUES ($1,$2)
        ON CONFLICT (organization_id, user_id) DO NOTHING`
	cmd, err := r.db.Exec(ctx, query, organizationID, userID)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *organizationRepository) AddMember(ctx context.Context, organizationID, userID string) (bool, error) {
	const query = `
        INSERT INTO organization_members (organization_id, user_id) VALUES ($1,$2)
        ON CONFLICT (organization_id, user_id) DO NOTHING`
	cmd, err := r.db.Exec(ctx, query, organizationID, userID)
	if err != nil {
		return false, err
	}
	return cmd.RowsAffected() > 0, nil
}

func (r *organizationRepository) UpdateLogo(ctx context.Context, organizationID string, logoURL *string) error {
	query := fmt.Sprintf(`UPDATE organizations SET logo_url=$1, updated_at=NOW() WHERE id=$2 AND %s`, live(""))
	cmd, err := r.db.Exec(ctx, query, logoURL, organizationID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *organizationRepository) userIDs(ctx context.Context, query, organizationID string) ([]string, error) {
	rows, err := r.db.Query(ctx, query, organizationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
