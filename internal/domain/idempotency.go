// Package domain defines the core persistence models for the broker.
package domain

import "time"

// Idempotency records the outcome of a previously processed publish request,
// keyed by (sender_id, queue_id, key). It enables safe retries for POST
// operations by returning the originally produced message without publishing
// a second copy.
type Idempotency struct {
	ID        string    `gorm:"type:TEXT NOT NULL;primaryKey"`
	SenderID  int64     `gorm:"not null;uniqueIndex:ux_sender_queue_key,priority:1"`
	QueueID   int64     `gorm:"not null;uniqueIndex:ux_sender_queue_key,priority:2"`
	Key       string    `gorm:"type:TEXT NOT NULL;uniqueIndex:ux_sender_queue_key,priority:3"`
	MessageID int64     `gorm:"not null"`
	Status    int       `gorm:"type:INTEGER NOT NULL"`
	CreatedOn time.Time `gorm:"type:DATETIME NOT NULL;autoCreateTime"`
	ExpiresOn time.Time `gorm:"type:DATETIME NOT NULL;index"`
}

// TableName implements the GORM tabler interface.
func (Idempotency) TableName() string { return "idempotency" }
