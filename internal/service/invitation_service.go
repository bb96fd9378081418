package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/teamhub/team-service/internal/auth"
	"github.com/teamhub/team-service/internal/config"
	"github.com/teamhub/team-service/internal/domain"
	"github.com/teamhub/team-service/internal/events"
	"github.com/teamhub/team-service/internal/repository"
	"github.com/teamhub/team-service/internal/validation"
	apperrors "github.com/teamhub/team-service/pkg/util/errorutil"
)

const (
	invitationCodeDigits = 6

	msgAlreadyMember   = "User is already a member of this organization"
	msgInvalidCode     = "Invalid or expired invitation code"
	msgInviteeMismatch = "This invitation was issued to a different email address"
)

// InviteInput names who to invite.
type InviteInput struct {
	Email string `json:"email" validate:"required,email,max=254"`
}

// AcceptInvitationInput carries the code the invitee received.
type AcceptInvitationInput struct {
	Code string `json:"code" validate:"required,len=6,numeric"`
}

// InvitationResult describes an issued invitation. Code is only populated
// outside production.
type InvitationResult struct {
	Email     string
	ExpiresAt time.Time
	Code      string
}

// InvitationService issues and redeems organization invitation codes.
type InvitationService struct {
	store      repository.Store
	tx         repository.TxRunner
	invites    repository.InvitationStore
	dispatcher events.Dispatcher
	validator  *validation.Validator
	activity   *ActivityRecorder
	logger     *zap.Logger
	ttl        time.Duration
	bcryptCost int
	exposeCode bool
	now        func() time.Time
	newCode    func() (string, error)
}

// InvitationDependencies encapsulates collaborators of InvitationService.
type InvitationDependencies struct {
	Store      repository.Store
	Tx         repository.TxRunner
	Invites    repository.InvitationStore
	Dispatcher events.Dispatcher
	Validator  *validation.Validator
	Activity   *ActivityRecorder
	Logger     *zap.Logger
	Now        func() time.Time
	NewCode    func() (string, error)
}

// NewInvitationService constructs the service.
func NewInvitationService(cfg config.Config, deps InvitationDependencies) *InvitationService {
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
	newCode := deps.NewCode
	if newCode == nil {
		newCode = randomCode
	}
	return &InvitationService{
		store:      deps.Store,
		tx:         deps.Tx,
		invites:    deps.Invites,
		dispatcher: deps.Dispatcher,
		validator:  v,
		activity:   activity,
		logger:     logger,
		ttl:        cfg.Invitation.TTL(),
		bcryptCost: cfg.Auth.BcryptCost,
		exposeCode: !cfg.App.IsProduction(),
		now:        deps.Now,
		newCode:    newCode,
	}
}

// Invite issues a code for email to join the organization. Reissuing replaces
// any pending code for the same address.
func (s *InvitationService) Invite(ctx context.Context, actor domain.Actor, organizationID string, input InviteInput) (*InvitationResult, error) {
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
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	if err := s.validator.Struct(input); err != nil {
		return nil, err
	}

	invitee, err := s.store.Users().GetByEmail(ctx, input.Email)
	switch {
	case errors.Is(err, pgx.ErrNoRows):
	case err != nil:
		return nil, fmt.Errorf("lookup invitee: %w", err)
	case org.IsMember(invitee.ID):
		return nil, apperrors.NewConflict(msgAlreadyMember, map[string]any{"email": input.Email})
	}

	code, err := s.newCode()
	if err != nil {
		return nil, fmt.Errorf("generate invitation code: %w", err)
	}
	hash, err := auth.HashSecret(code, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash invitation code: %w", err)
	}

	expiresAt := timeOrNow(s.now).Add(s.ttl)
	invitation := domain.Invitation{
		OrganizationID: org.ID,
		Email:          input.Email,
		CodeHash:       hash,
		InvitedBy:      actor.UserID,
		ExpiresAt:      expiresAt,
	}

	var records []*domain.ActivityLog
	err = s.tx.WithTx(ctx, func(store repository.Store) error {
		record, err := s.activity.Record(ctx, store.ActivityLogs(), ActivityEntry{
			EntityType:     domain.EntityOrganization,
			Action:         domain.ActionInvited,
			ActorID:        actor.UserID,
			OrganizationID: org.ID,
			Details: map[string]any{
				"email":     input.Email,
				"invitedBy": actor.UserID,
				"expiresAt": expiresAt,
			},
		})
		if err != nil {
			return err
		}
		records = append(records, record)
		return s.invites.Save(ctx, invitation, s.ttl)
	})
	if err != nil {
		return nil, err
	}

	s.activity.Published(ctx, records...)
	s.publish(ctx, events.Event{
		Type:           events.EventInvitationCreated,
		OrganizationID: org.ID,
		ActorID:        actor.UserID,
		Payload: events.InvitationCreatedPayload{
			Email:            input.Email,
			OrganizationName: org.Name,
			Code:             code,
			ExpiresAt:        expiresAt,
		},
	})

	result := &InvitationResult{Email: input.Email, ExpiresAt: expiresAt}
	if s.exposeCode {
		result.Code = code
	}
	return result, nil
}

// AcceptInvitation redeems the code issued to the actor's email and makes the
// actor a member. Redeeming while already a member only consumes the code.
func (s *InvitationService) AcceptInvitation(ctx context.Context, actor domain.Actor, organizationID string, input AcceptInvitationInput) (*domain.Organization, error) {
	if err := requireIDs(organizationID, "Organization ID"); err != nil {
		return nil, err
	}
	org, err := NewResolver(s.store).ResolveOrganization(ctx, organizationID)
	if err != nil {
		return nil, err
	}
	input.Code = strings.TrimSpace(input.Code)
	if err := s.validator.Struct(input); err != nil {
		return nil, err
	}

	invitation, err := s.invites.Get(ctx, org.ID, actor.Email)
	if errors.Is(err, repository.ErrInvitationNotFound) {
		return nil, apperrors.NewNotFound("Invitation", nil)
	}
	if err != nil {
		return nil, fmt.Errorf("load invitation: %w", err)
	}
	if !strings.EqualFold(invitation.Email, actor.Email) {
		return nil, errForbidden(msgInviteeMismatch)
	}
	if timeOrNow(s.now).After(invitation.ExpiresAt) {
		return nil, validation.Fail(msgInvalidCode)
	}
	if err := auth.CompareSecret(invitation.CodeHash, input.Code); err != nil {
		return nil, validation.Fail(msgInvalidCode)
	}

	var (
		joined  *domain.Organization
		records []*domain.ActivityLog
	)
	err = s.tx.WithTx(ctx, func(store repository.Store) error {
		resolver := NewResolver(store)
		current, err := resolver.ResolveOrganization(ctx, org.ID)
		if err != nil {
			return err
		}
		added, err := store.Organizations().AddMember(ctx, current.ID, actor.UserID)
		if err != nil {
			return err
		}
		if added {
			record, err := s.activity.Record(ctx, store.ActivityLogs(), ActivityEntry{
				EntityType:     domain.EntityOrganization,
				Action:         domain.ActionMemberJoined,
				ActorID:        actor.UserID,
				OrganizationID: current.ID,
				Details: map[string]any{
					"email":     actor.Email,
					"invitedBy": invitation.InvitedBy,
				},
			})
			if err != nil {
				return err
			}
			records = append(records, record)
		}
		joined, err = resolver.ResolveOrganization(ctx, current.ID)
		return err
	})
	if err != nil {
		return nil, err
	}

	if err := s.invites.Delete(ctx, org.ID, actor.Email); err != nil {
		s.logger.Warn("invitation cleanup failed", zap.String("organization_id", org.ID), zap.Error(err))
	}
	s.activity.Published(ctx, records...)
	return joined, nil
}

func (s *InvitationService) publish(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = timeOrNow(s.now)
	}
	if err := s.dispatcher.Publish(ctx, event); err != nil {
		s.logger.Warn("event delivery failed", zap.String("type", string(event.Type)), zap.Error(err))
	}
}

func randomCode() (string, error) {
	limit := big.NewInt(1)
	for i := 0; i < invitationCodeDigits; i++ {
		limit.Mul(limit, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, limit)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", invitationCodeDigits, n.Int64()), nil
}
