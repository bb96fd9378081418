package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/teamhub/team-service/internal/domain"
	"github.com/teamhub/team-service/internal/repository"
	"github.com/teamhub/team-service/internal/storage"
	"github.com/teamhub/team-service/internal/validation"
	apperrors "github.com/teamhub/team-service/pkg/util/errorutil"
)

const (
	organizationLogoFolder = "organization_logos"

	msgManageOrganization = "You do not have permission to manage this organization"
	msgViewOrganization   = "You do not have permission to view this organization"
	msgLogoNotFound       = "Organization logo not found"
)

// AddOwnersInput lists users to promote to organization owner.
type AddOwnersInput struct {
	UserIDs []string `json:"userIds" validate:"required,min=1,max=50,dive,uuid"`
}

// ActivityQuery pages through an organization's activity log.
type ActivityQuery struct {
	TeamID     *string
	EntityType *domain.EntityType
	Page       int
	Limit      int
}

// ActivityPage is one page of audit records.
type ActivityPage struct {
	Entries []domain.ActivityLog
	Page    int
	Limit   int
}

// OrganizationView is an organization with its people resolved.
type OrganizationView struct {
	Organization *domain.Organization
	Owners       []domain.UserSummary
	Members      []domain.UserSummary
}

// OrganizationService manages organization ownership, logo and audit trail.
type OrganizationService struct {
	store     repository.Store
	tx        repository.TxRunner
	blobs     storage.BlobStore
	validator *validation.Validator
	activity  *ActivityRecorder
	logger    *zap.Logger
	now       func() time.Time
}

// OrganizationDependencies encapsulates collaborators of OrganizationService.
type OrganizationDependencies struct {
	Store     repository.Store
	Tx        repository.TxRunner
	Blobs     storage.BlobStore
	Validator *validation.Validator
	Activity  *ActivityRecorder
	Logger    *zap.Logger
	Now       func() time.Time
}

// NewOrganizationService constructs the service.
func NewOrganizationService(deps OrganizationDependencies) *OrganizationService {
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
	return &OrganizationService{
		store:     deps.Store,
		tx:        deps.Tx,
		blobs:     deps.Blobs,
		validator: v,
		activity:  activity,
		logger:    logger,
		now:       deps.Now,
	}
}

// requireOrganizationAdmin allows global admins and organization owners.
func requireOrganizationAdmin(actor domain.Actor, org *domain.Organization) error {
	if actor.IsAdmin() || org.IsOwner(actor.UserID) {
		return nil
	}
	return errForbidden(msgManageOrganization)
}

func (s *OrganizationService) manageable(ctx context.Context, actor domain.Actor, organizationID string) (*domain.Organization, error) {
	if err := requireIDs(organizationID, "Organization ID"); err != nil {
		return nil, err
	}
	org, err := NewResolver(s.store).ResolveOrganization(ctx, organizationID)
	if err != nil {
		return nil, err
	}
	if err := requireOrganizationAdmin(actor, org); err != nil {
		return nil, err
	}
	return org, nil
}

// GetOrganization returns the organization to admins, owners and members.
func (s *OrganizationService) GetOrganization(ctx context.Context, actor domain.Actor, organizationID string) (*OrganizationView, error) {
	if err := requireIDs(organizationID, "Organization ID"); err != nil {
		return nil, err
	}
	org, err := NewResolver(s.store).ResolveOrganization(ctx, organizationID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && !org.IsOwner(actor.UserID) && !org.IsMember(actor.UserID) {
		return nil, errForbidden(msgViewOrganization)
	}
	return s.view(ctx, s.store, org)
}

// AddOwners promotes existing users to owner. Unknown users and current owners
// are skipped; new owners also become members.
func (s *OrganizationService) AddOwners(ctx context.Context, actor domain.Actor, organizationID string, input AddOwnersInput) (*OrganizationView, error) {
	org, err := s.manageable(ctx, actor, organizationID)
	if err != nil {
		return nil, err
	}
	if err := s.validator.Struct(input); err != nil {
		return nil, err
	}

	var (
		view    *OrganizationView
		records []*domain.ActivityLog
	)
	err = s.tx.WithTx(ctx, func(store repository.Store) error {
		resolver := NewResolver(store)
		current, err := resolver.ResolveOrganization(ctx, org.ID)
		if err != nil {
			return err
		}
		users, err := resolver.ResolveUsers(ctx, input.UserIDs)
		if err != nil {
			return err
		}

		var added []string
		for _, id := range input.UserIDs {
			if _, ok := users[id]; !ok {
				continue
			}
			promoted, err := store.Organizations().AddOwner(ctx, current.ID, id)
			if err != nil {
				return err
			}
			if _, err := store.Organizations().AddMember(ctx, current.ID, id); err != nil {
				return err
			}
			if promoted {
				added = append(added, id)
			}
		}

		if len(added) > 0 {
			record, err := s.activity.Record(ctx, store.ActivityLogs(), ActivityEntry{
				EntityType:     domain.EntityOrganization,
				Action:         domain.ActionOwnerAdded,
				ActorID:        actor.UserID,
				OrganizationID: current.ID,
				Details: map[string]any{
					"newOwners": added,
					"addedBy":   actor.UserID,
				},
			})
			if err != nil {
				return err
			}
			records = append(records, record)
		}

		refreshed, err := resolver.ResolveOrganization(ctx, current.ID)
		if err != nil {
			return err
		}
		view, err = s.view(ctx, store, refreshed)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.activity.Published(ctx, records...)
	return view, nil
}

// UploadLogo stores the image, then points the organization at it.
func (s *OrganizationService) UploadLogo(ctx context.Context, actor domain.Actor, organizationID string, upload Upload) (*domain.Organization, error) {
	org, err := s.manageable(ctx, actor, organizationID)
	if err != nil {
		return nil, err
	}
	if len(upload.Data) == 0 {
		return nil, apperrors.NewBadRequest(msgNoFile)
	}

	url, err := s.blobs.Upload(ctx, upload.Data, organizationLogoFolder)
	if err != nil {
		if errors.Is(err, storage.ErrNotImage) {
			return nil, validation.Fail(msgOnlyImages)
		}
		return nil, fmt.Errorf("upload organization logo: %w", err)
	}

	previous := org.LogoURL
	records, err := s.setLogo(ctx, actor, org, &url, map[string]any{
		"action":     "LOGO_UPLOADED",
		"logo":       url,
		"uploadedAt": timeOrNow(s.now),
	})
	if err != nil {
		s.deleteBlob(ctx, url)
		return nil, err
	}
	if previous != nil && *previous != url {
		s.deleteBlob(ctx, *previous)
	}

	s.activity.Published(ctx, records...)
	org.LogoURL = &url
	return org, nil
}

// DeleteLogo removes the blob, then clears the organization's logo.
func (s *OrganizationService) DeleteLogo(ctx context.Context, actor domain.Actor, organizationID string) (*domain.Organization, error) {
	org, err := s.manageable(ctx, actor, organizationID)
	if err != nil {
		return nil, err
	}
	if org.LogoURL == nil {
		return nil, apperrors.NewNotFoundMessage(msgLogoNotFound)
	}

	s.deleteBlob(ctx, *org.LogoURL)
	records, err := s.setLogo(ctx, actor, org, nil, map[string]any{
		"action":    "LOGO_REMOVED",
		"removedAt": timeOrNow(s.now),
		"removedBy": actor.UserID,
	})
	if err != nil {
		return nil, err
	}

	s.activity.Published(ctx, records...)
	org.LogoURL = nil
	return org, nil
}

// ListActivity returns the organization's audit trail, newest first.
func (s *OrganizationService) ListActivity(ctx context.Context, actor domain.Actor, organizationID string, query ActivityQuery) (*ActivityPage, error) {
	org, err := s.manageable(ctx, actor, organizationID)
	if err != nil {
		return nil, err
	}

	limit := query.Limit
	if limit < 1 || limit > 100 {
		limit = 50
	}
	page := clampPage(query.Page, limit)

	entries, err := s.store.ActivityLogs().List(ctx, repository.ActivityFilter{
		OrganizationID: org.ID,
		TeamID:         query.TeamID,
		EntityType:     query.EntityType,
		Limit:          limit,
		Offset:         (page - 1) * limit,
	})
	if err != nil {
		return nil, fmt.Errorf("list activity: %w", err)
	}
	return &ActivityPage{Entries: entries, Page: page, Limit: limit}, nil
}

func (s *OrganizationService) setLogo(ctx context.Context, actor domain.Actor, org *domain.Organization, logo *string, details map[string]any) ([]*domain.ActivityLog, error) {
	var records []*domain.ActivityLog
	err := s.tx.WithTx(ctx, func(store repository.Store) error {
		if err := store.Organizations().UpdateLogo(ctx, org.ID, logo); err != nil {
			return err
		}
		record, err := s.activity.Record(ctx, store.ActivityLogs(), ActivityEntry{
			EntityType:     domain.EntityOrganization,
			Action:         domain.ActionUpdated,
			ActorID:        actor.UserID,
			OrganizationID: org.ID,
			Details:        details,
		})
		if err != nil {
			return err
		}
		records = append(records, record)
		return nil
	})
	return records, err
}

func (s *OrganizationService) view(ctx context.Context, store repository.Store, org *domain.Organization) (*OrganizationView, error) {
	resolver := NewResolver(store)
	people, err := resolver.ResolveUsers(ctx, append(append([]string{}, org.OwnerIDs...), org.MemberIDs...))
	if err != nil {
		return nil, err
	}
	view := &OrganizationView{
		Organization: org,
		Owners:       summaries(org.OwnerIDs, people),
		Members:      summaries(org.MemberIDs, people),
	}
	return view, nil
}

func (s *OrganizationService) deleteBlob(ctx context.Context, url string) {
	if err := s.blobs.Delete(ctx, url); err != nil {
		s.logger.Warn("blob delete failed", zap.String("url", url), zap.Error(err))
	}
}

func summaries(ids []string, users map[string]*domain.User) []domain.UserSummary {
	result := make([]domain.UserSummary, 0, len(ids))
	for _, id := range ids {
		if user, ok := users[id]; ok {
			result = append(result, user.Summary())
		}
	}
	return result
}
