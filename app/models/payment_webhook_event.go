package models

import "time"

// PaymentWebhookEvent stores provider webhook deliveries with
// deduplication metadata for idempotent processing. The unique index on
// (provider, external_id, event_type) makes replays no-ops at the
// database level.
type PaymentWebhookEvent struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	Provider        string     `gorm:"type:varchar(20);not null;index:ux_payment_webhook_events_dedup,unique,priority:1;index" json:"provider"`
	ExternalID      string     `gorm:"type:varchar(191);not null;default:'';index:ux_payment_webhook_events_dedup,unique,priority:2" json:"external_id"`
	EventType       string     `gorm:"type:varchar(100);not null;index:ux_payment_webhook_events_dedup,unique,priority:3;index" json:"event_type"`
	PayloadJSON     string     `gorm:"type:longtext;not null" json:"payload_json"`
	SignatureValid  bool       `gorm:"default:false;index" json:"signature_valid"`
	ProcessedAt     *time.Time `gorm:"type:timestamp;default:null" json:"processed_at,omitempty"`
	ProcessingError string     `gorm:"type:text" json:"processing_error"`
	CreatedAt       time.Time  `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt       time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}
