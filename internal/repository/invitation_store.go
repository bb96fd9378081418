package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/teamhub/team-service/internal/domain"
)

// ErrInvitationNotFound is returned when no pending invitation exists.
var ErrInvitationNotFound = errors.New("invitation not found")

// InvitationStore keeps pending organization invitations until they expire.
type InvitationStore interface {
	Save(ctx context.Context, invitation domain.Invitation, ttl time.Duration) error
	Get(ctx context.Context, organizationID, email string) (*domain.Invitation, error)
	Delete(ctx context.Context, organizationID, email string) error
}

type redisInvitationStore struct {
	client redis.Cmdable
}

// NewRedisInvitationStore stores invitations as JSON values with a TTL.
func NewRedisInvitationStore(client redis.Cmdable) InvitationStore {
	return &redisInvitationStore{client: client}
}

// InvitationKey is the redis key of an invitation.
func InvitationKey(organizationID, email string) string {
	return fmt.Sprintf("org:invite:%s:%s", organizationID, strings.ToLower(strings.TrimSpace(email)))
}

func (s *redisInvitationStore) Save(ctx context.Context, invitation domain.Invitation, ttl time.Duration) error {
	payload, err := json.Marshal(invitation)
	if err != nil {
		return fmt.Errorf("encode invitation: %w", err)
	}
	return s.client.Set(ctx, InvitationKey(invitation.OrganizationID, invitation.Email), payload, ttl).Err()
}

func (s *redisInvitationStore) Get(ctx context.Context, organizationID, email string) (*domain.Invitation, error) {
	raw, err := s.client.Get(ctx, InvitationKey(organizationID, email)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrInvitationNotFound
	}
	if err != nil {
		return nil, err
	}
	var invitation domain.Invitation
	if err := json.Unmarshal(raw, &invitation); err != nil {
		return nil, fmt.Errorf("decode invitation: %w", err)
	}
	return &invitation, nil
}

func (s *redisInvitationStore) Delete(ctx context.Context, organizationID, email string) error {
	return s.client.Del(ctx, InvitationKey(organizationID, email)).Err()
}
