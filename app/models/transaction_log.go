package models

import "time"

// TransactionLog records one sanitized provider interaction. Rows are
// append-only; nothing in the codebase updates or deletes them.
type TransactionLog struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Provider     string    `gorm:"type:varchar(20);not null;index" json:"provider"`
	Operation    string    `gorm:"type:varchar(50);not null;index" json:"operation"`
	RequestData  string    `gorm:"type:longtext;not null" json:"request_data"`
	ResponseData *string   `gorm:"type:longtext" json:"response_data,omitempty"`
	ErrorMessage *string   `gorm:"type:text" json:"error_message,omitempty"`
	CompanyID    string    `gorm:"type:varchar(64);not null;default:'';index" json:"company_id"`
	DurationMs   int64     `gorm:"not null;default:0" json:"duration_ms"`
	CreatedAt    time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}
