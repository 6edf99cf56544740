package model

import "time"

// WebhookEvent records a payment provider event that has been applied, so
// redeliveries of the same event id become no-ops.
type WebhookEvent struct {
	EventID     string `gorm:"primaryKey;size:128;not null"`
	EventType   string `gorm:"size:64;index"`
	ProcessedAt time.Time
	CreatedAt   time.Time
}
