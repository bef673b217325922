package model

import (
	"time"
)

// WebhookEvent is the audit record of one received gateway
// notification. A row exists for every verified delivery, written
// before any handler runs; re-delivery of the same provider event id
// never creates a second row.
type WebhookEvent struct {
	ID              int64      `gorm:"primaryKey;autoIncrement" json:"id"`
	ProviderEventID string     `gorm:"column:provider_event_id;unique;not null;size:255;index" json:"provider_event_id"`
	EventType       string     `gorm:"not null;size:100;index" json:"event_type"`
	Data            JSONB      `gorm:"type:jsonb;not null" json:"data"`
	Processed       bool       `gorm:"not null;default:false;index" json:"processed"`
	ProcessedAt     *time.Time `json:"processed_at,omitempty"`
	Error           *string    `json:"error,omitempty"`
	ReceivedAt      time.Time  `gorm:"not null" json:"received_at"`
	CreatedAt       time.Time  `gorm:"default:now()" json:"created_at"`
}

// TableName specifies the table name for GORM
func (WebhookEvent) TableName() string {
	return "webhook_events"
}
