package models

import "time"

// ReceiptScan records the outcome of one receipt pipeline run for a user.
// Only the summary is persisted; the structured item list is returned to the
// caller and not stored.
type ReceiptScan struct {
	ID           uint `gorm:"primaryKey"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
	UserID       uint    `gorm:"index;not null;uniqueIndex:idx_user_scan_file"`
	FileName     string  `gorm:"size:255;not null;uniqueIndex:idx_user_scan_file"`
	RawText      string  `gorm:"type:text"`
	ItemCount    int     `gorm:"not null"`
	Confidence   float64 `gorm:"not null"`
	ProcessingMS int64   `gorm:"not null"`
	// Mark scan as failed so the front-end/admin can review instead of the row disappearing.
	Failed       bool   `gorm:"default:false;index"`
	FailedReason string `gorm:"size:255"`
}
