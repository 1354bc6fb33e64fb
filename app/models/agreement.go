package models

import "time"

// Agreement is the local record a provider payment is attached to. The
// external reference sent to the provider points back at this row, and
// webhook processing keeps its payment fields in sync.
type Agreement struct {
	ID                uint       `gorm:"primaryKey" json:"id"`
	ExternalReference string     `gorm:"type:varchar(191);not null;uniqueIndex" json:"external_reference"`
	CompanyID         string     `gorm:"type:varchar(64);not null;default:'';index" json:"company_id"`
	ProviderPaymentID string     `gorm:"type:varchar(191);not null;default:'';index" json:"provider_payment_id"`
	PaymentStatus     string     `gorm:"type:varchar(20);not null;default:'pending';index" json:"payment_status"`
	PaidAmountCents   int64      `gorm:"not null;default:0" json:"paid_amount_cents"`
	PaidAt            *time.Time `gorm:"type:timestamp;default:null" json:"paid_at,omitempty"`
	CancelledAt       *time.Time `gorm:"type:timestamp;default:null" json:"cancelled_at,omitempty"`
	CreatedAt         time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt         time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}
