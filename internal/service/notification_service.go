package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/teamhub/team-service/internal/config"
	"github.com/teamhub/team-service/internal/events"
)

// NotificationService handles emitting notifications for domain events.
type NotificationService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	cfg        config.NotificationConfig
}

// NewNotificationService creates the service.
func NewNotificationService(dispatcher events.Dispatcher, logger *zap.Logger, cfg config.NotificationConfig) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NotificationService{
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
}

// RegisterHandlers subscribes to events.
func (n *NotificationService) RegisterHandlers() {
	if n.dispatcher == nil {
		return
	}
	n.dispatcher.Subscribe(events.EventActivityRecorded, n.handleActivityRecorded)
	n.dispatcher.Subscribe(events.EventInvitationCreated, n.handleInvitationCreated)
}

func (n *NotificationService) handleActivityRecorded(ctx context.Context, event events.Event) error {
	n.logger.Info("ActivityRecorded",
		zap.String("organization_id", event.OrganizationID),
		zap.String("actor_id", event.ActorID),
		zap.Any("payload", event.Payload))
	n.sendWebhookNotificationStub(ctx, event)
	return nil
}

func (n *NotificationService) handleInvitationCreated(ctx context.Context, event events.Event) error {
	payload, ok := event.Payload.(events.InvitationCreatedPayload)
	if !ok {
		n.logger.Warn("unexpected invitation payload", zap.String("event_id", event.ID))
		return nil
	}
	// The code itself must never reach the logs.
	n.logger.Info("InvitationCreated",
		zap.String("organization_id", event.OrganizationID),
		zap.String("email", payload.Email),
		zap.Time("expires_at", payload.ExpiresAt))
	n.sendEmailNotificationStub(ctx, event, payload.Email)
	return nil
}

func (n *NotificationService) sendEmailNotificationStub(_ context.Context, event events.Event, to string) {
	if strings.TrimSpace(n.cfg.EmailFrom) == "" {
		return
	}
	n.logger.Debug("sendEmailNotificationStub",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("to", to),
		zap.String("organization_id", event.OrganizationID),
		zap.String("event_type", string(event.Type)))
}

func (n *NotificationService) sendWebhookNotificationStub(_ context.Context, event events.Event) {
	if strings.TrimSpace(n.cfg.WebhookURL) == "" {
		return
	}
	n.logger.Debug("sendWebhookNotificationStub",
		zap.String("url", n.cfg.WebhookURL),
		zap.String("organization_id", event.OrganizationID),
		zap.String("event_type", string(event.Type)))
}
