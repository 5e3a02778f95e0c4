// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides small aggregate/statistics queries used
// primarily for conditional responses (ETag generation) in the HTTP layer.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/pkarvelas/go-mq-backend/internal/domain"
)

// MessagesStats returns aggregate metadata for a queue's messages: the total
// row count and the maximum message id. The id is monotonic (auto-increment),
// so (count, maxID) changes whenever a message is added; status transitions
// on existing rows are not reflected, which is acceptable for the weak ETags
// these feed.
//
// When the queue has no messages, maxID is 0.
func MessagesStats(ctx context.Context, db *gorm.DB, queueID int64) (count int64, maxID int64, err error) {
	q := db.WithContext(ctx).Model(&domain.Message{}).Where("queue_id = ?", queueID)

	if err = q.Count(&count).Error; err != nil {
		return 0, 0, err
	}
	if count == 0 {
		return 0, 0, nil
	}

	var row struct {
		ID int64
	}
	if err = q.Select("id").Order("id DESC").Limit(1).Scan(&row).Error; err != nil {
		return 0, 0, err
	}
	return count, row.ID, nil
}

// SubscriptionsStats returns the current (non-deleted) subscription count and
// maximum subscription id for a queue, for the same conditional-response use.
func SubscriptionsStats(ctx context.Context, db *gorm.DB, queueID int64) (count int64, maxID int64, err error) {
	q := db.WithContext(ctx).Model(&domain.Subscription{}).
		Where("queue_id = ? AND is_deleted = ?", queueID, false)

	if err = q.Count(&count).Error; err != nil {
		return 0, 0, err
	}
	if count == 0 {
		return 0, 0, nil
	}

	var row struct {
		ID int64
	}
	if err = q.Select("id").Order("id DESC").Limit(1).Scan(&row).Error; err != nil {
		return 0, 0, err
	}
	return count, row.ID, nil
}
