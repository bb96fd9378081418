package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/wI2L/jsondiff"
	"go.uber.org/zap"

	"github.com/teamhub/team-service/internal/domain"
	"github.com/teamhub/team-service/internal/events"
	"github.com/teamhub/team-service/internal/observability"
	"github.com/teamhub/team-service/internal/repository"
)

// ActivityEntry describes one audit record before it is written.
type ActivityEntry struct {
	EntityType     domain.EntityType
	Action         domain.ActivityAction
	ActorID        string
	OrganizationID string
	TeamID         *string
	ProjectID      *string
	Details        map[string]any
}

// ActivityRecorder appends audit records and announces them once committed.
type ActivityRecorder struct {
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// NewActivityRecorder creates the recorder. dispatcher and metrics may be nil.
func NewActivityRecorder(dispatcher events.Dispatcher, metrics *observability.Metrics, logger *zap.Logger) *ActivityRecorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ActivityRecorder{dispatcher: dispatcher, metrics: metrics, logger: logger}
}

// Record appends entry through logs. Callers pass the transactional
// repository so the record commits or rolls back with the mutation it describes.
func (r *ActivityRecorder) Record(ctx context.Context, logs repository.ActivityLogRepository, entry ActivityEntry) (*domain.ActivityLog, error) {
	record := &domain.ActivityLog{
		EntityType: entry.EntityType,
		Action:     entry.Action,
		UserID:     entry.ActorID,
		TeamID:     entry.TeamID,
		ProjectID:  entry.ProjectID,
		Details:    entry.Details,
	}
	if entry.OrganizationID != "" {
		record.OrganizationID = stringPtr(entry.OrganizationID)
	}
	if err := logs.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("record %s %s activity: %w", entry.EntityType, entry.Action, err)
	}
	return record, nil
}

// Published emits an event per committed record. Delivery failures are logged.
func (r *ActivityRecorder) Published(ctx context.Context, records ...*domain.ActivityLog) {
	for _, record := range records {
		if record == nil {
			continue
		}
		r.metrics.RecordActivity(string(record.EntityType), string(record.Action))
		if r.dispatcher == nil {
			continue
		}
		orgID := ""
		if record.OrganizationID != nil {
			orgID = *record.OrganizationID
		}
		err := r.dispatcher.Publish(ctx, events.Event{
			ID:             uuid.NewString(),
			Type:           events.EventActivityRecorded,
			OrganizationID: orgID,
			ActorID:        record.UserID,
			Timestamp:      record.CreatedAt,
			Payload: events.ActivityRecordedPayload{
				ActivityID: record.ID,
				EntityType: record.EntityType,
				Action:     record.Action,
				TeamID:     record.TeamID,
				ProjectID:  record.ProjectID,
			},
		})
		if err != nil {
			r.logger.Warn("activity event delivery failed",
				zap.String("activity_id", record.ID),
				zap.Error(err))
		}
	}
}

// UpdateDetails describes a change from before to after: both snapshots plus an
// RFC 6902 patch under "changes".
func UpdateDetails(before, after map[string]any) (map[string]any, error) {
	patch, err := jsondiff.Compare(before, after)
	if err != nil {
		return nil, fmt.Errorf("diff activity details: %w", err)
	}
	changes, err := patchToMaps(patch)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"before":  before,
		"after":   after,
		"changes": changes,
	}, nil
}

// patchToMaps renders the patch as plain JSON values so details stay
// comparable whether read back from postgres or from memory.
func patchToMaps(patch jsondiff.Patch) ([]map[string]any, error) {
	changes := []map[string]any{}
	if len(patch) == 0 {
		return changes, nil
	}
	raw, err := json.Marshal(patch)
	if err != nil {
		return nil, fmt.Errorf("encode activity patch: %w", err)
	}
	if err := json.Unmarshal(raw, &changes); err != nil {
		return nil, fmt.Errorf("decode activity patch: %w", err)
	}
	return changes, nil
}
