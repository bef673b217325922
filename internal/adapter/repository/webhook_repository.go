package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domainErrors "github.com/lumenhq/paysvc/internal/domain/errors"
	"github.com/lumenhq/paysvc/internal/domain/model"
)

// WebhookEventRepository handles webhook event storage and processing
// outcomes. Recording happens before any handler runs so a crash
// mid-handler still leaves the delivery on record.
type WebhookEventRepository interface {
	Record(ctx context.Context, eventID, eventType string, data json.RawMessage) error
	GetByEventID(ctx context.Context, eventID string) (*model.WebhookEvent, error)
	MarkProcessed(ctx context.Context, eventID string) error
	MarkFailed(ctx context.Context, eventID string, procErr error) error
	ListUnprocessed(ctx context.Context, limit int) ([]*model.WebhookEvent, error)
}

type webhookEventRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewWebhookEventRepository creates a new webhook event repository
func NewWebhookEventRepository(db *gorm.DB, logger *zap.Logger) WebhookEventRepository {
	return &webhookEventRepository{
		db:     db,
		logger: logger,
	}
}

// Record persists a new webhook event with processed=false. A conflict
// on the provider event id leaves the existing row untouched and
// reports ErrDuplicateEvent so the caller can skip dispatch.
func (r *webhookEventRepository) Record(ctx context.Context, eventID, eventType string, data json.RawMessage) error {
	var eventData model.JSONB
	if err := json.Unmarshal(data, &eventData); err != nil {
		return fmt.Errorf("failed to decode event payload: %w", err)
	}

	event := &model.WebhookEvent{
		ProviderEventID: eventID,
		EventType:       eventType,
		Data:            eventData,
		Processed:       false,
		ReceivedAt:      time.Now(),
	}

	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(event)

	if result.Error != nil {
		r.logger.Error("Failed to record webhook event",
			zap.String("event_id", eventID),
			zap.String("event_type", eventType),
			zap.Error(result.Error))
		return fmt.Errorf("failed to record webhook event: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return domainErrors.ErrDuplicateEvent
	}

	return nil
}

// GetByEventID retrieves a webhook event by its provider event id,
// returning nil when no row exists.
func (r *webhookEventRepository) GetByEventID(ctx context.Context, eventID string) (*model.WebhookEvent, error) {
	var event model.WebhookEvent

	err := r.db.WithContext(ctx).
		Where("provider_event_id = ?", eventID).
		First(&event).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		r.logger.Error("Failed to get webhook event",
			zap.String("event_id", eventID),
			zap.Error(err))
		return nil, fmt.Errorf("failed to get webhook event: %w", err)
	}

	return &event, nil
}

// MarkProcessed sets processed=true with the completion timestamp.
func (r *webhookEventRepository) MarkProcessed(ctx context.Context, eventID string) error {
	now := time.Now()

	result := r.db.WithContext(ctx).
		Model(&model.WebhookEvent{}).
		Where("provider_event_id = ?", eventID).
		Updates(map[string]interface{}{
			"processed":    true,
			"processed_at": &now,
			"error":        nil,
		})

	if result.Error != nil {
		r.logger.Error("Failed to mark webhook event as processed",
			zap.String("event_id", eventID),
			zap.Error(result.Error))
		return fmt.Errorf("failed to mark webhook event as processed: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("webhook event not found: %s", eventID)
	}

	return nil
}

// MarkFailed stores the error detail; processed stays false, leaving
// the row in the received-but-errored state for external replay.
func (r *webhookEventRepository) MarkFailed(ctx context.Context, eventID string, procErr error) error {
	errorMsg := procErr.Error()

	result := r.db.WithContext(ctx).
		Model(&model.WebhookEvent{}).
		Where("provider_event_id = ?", eventID).
		Update("error", &errorMsg)

	if result.Error != nil {
		r.logger.Error("Failed to mark webhook event as failed",
			zap.String("event_id", eventID),
			zap.Error(result.Error))
		return fmt.Errorf("failed to mark webhook event as failed: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("webhook event not found: %s", eventID)
	}

	return nil
}

// ListUnprocessed retrieves events still awaiting successful
// processing, oldest first, for manual replay tooling.
func (r *webhookEventRepository) ListUnprocessed(ctx context.Context, limit int) ([]*model.WebhookEvent, error) {
	var events []*model.WebhookEvent

	query := r.db.WithContext(ctx).
		Where("processed = ?", false).
		Order("received_at ASC")

	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&events).Error; err != nil {
		r.logger.Error("Failed to list unprocessed webhook events", zap.Error(err))
		return nil, fmt.Errorf("failed to list unprocessed webhook events: %w", err)
	}

	return events, nil
}
