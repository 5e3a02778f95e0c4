// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Message
// model: insertion, visibility queries, and the reserve/delete status
// transitions.
//
// Concurrency note: the AVAILABLE→RESERVED transition is a single conditional
// UPDATE whose WHERE clause re-checks effective availability server-side, so
// exactly one of N concurrent reservers wins. Losers observe zero rows
// affected (ErrUnavailable) and are expected to re-query, not to error.
package repo

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/pkarvelas/go-mq-backend/internal/domain"
	"github.com/pkarvelas/go-mq-backend/internal/visibility"
)

// ErrUnavailable signals that a reserve lost the race: the target message was
// taken by another consumer, deleted, or never existed. It is a normal
// outcome of contention, not a failure; callers re-query for candidates.
var ErrUnavailable = errors.New("message unavailable")

// MessageQuery shapes a delivery or browse query against the message store.
type MessageQuery struct {
	// QueueID scopes the query; required.
	QueueID int64
	// Statuses are the requested *effective* statuses. Empty is an error
	// (visibility.ErrEmptyStatusSet).
	Statuses []domain.MessageStatus
	// SubscriberID selects the filter mode: nil returns unaddressed rows
	// only (subscription_id IS NULL); non-nil joins subscriptions and
	// returns rows addressed to that subscriber.
	SubscriberID *int64
	// Limit/Offset paginate; Limit <= 0 returns everything.
	Limit  int
	Offset int
	// Now is the visibility snapshot instant; zero means time.Now().UTC().
	// One value is used for every timeout comparison in the query.
	Now time.Time
}

// apply composes the query's filters onto tx. Results are always ordered by
// primary key ascending, which is insertion order: FIFO delivery per queue.
func (q MessageQuery) apply(ctx context.Context, db *gorm.DB) (*gorm.DB, error) {
	now := q.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}
	pred, err := visibility.Predicate(q.Statuses, now)
	if err != nil {
		return nil, err
	}

	tx := db.WithContext(ctx).Model(&domain.Message{}).
		Where("messages.queue_id = ?", q.QueueID)
	if pred != nil {
		tx = tx.Where(pred)
	}
	if q.SubscriberID != nil {
		tx = tx.Joins("JOIN subscriptions ON subscriptions.id = messages.subscription_id").
			Where("subscriptions.subscriber_id = ?", *q.SubscriberID)
	} else {
		tx = tx.Where("messages.subscription_id IS NULL")
	}
	return tx, nil
}

// CreateMessage inserts a message row. A zero Status defaults to AVAILABLE
// and a zero CreatedOn is stamped with the current UTC time, so fan-out
// copies get their own creation instant rather than the source's.
func CreateMessage(ctx context.Context, db *gorm.DB, m *domain.Message) error {
	if m.Status == 0 {
		m.Status = domain.StatusAvailable
	}
	if m.CreatedOn.IsZero() {
		m.CreatedOn = time.Now().UTC()
	}
	return db.WithContext(ctx).Create(m).Error
}

// GetMessage fetches a message by id, or ErrNotFound.
func GetMessage(ctx context.Context, db *gorm.DB, id int64) (*domain.Message, error) {
	var m domain.Message
	if err := db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, err
	}
	return &m, nil
}

// ListMessages returns the messages matching q, ordered id ascending.
func ListMessages(ctx context.Context, db *gorm.DB, q MessageQuery) ([]domain.Message, error) {
	tx, err := q.apply(ctx, db)
	if err != nil {
		return nil, err
	}
	tx = tx.Order("messages.id ASC")
	if q.Limit > 0 {
		tx = tx.Limit(q.Limit)
	}
	if q.Offset > 0 {
		tx = tx.Offset(q.Offset)
	}
	var out []domain.Message
	err = tx.Find(&out).Error
	return out, err
}

// CountMessages returns the number of messages matching q, ignoring
// Limit/Offset. Use it alongside ListMessages for pagination metadata.
func CountMessages(ctx context.Context, db *gorm.DB, q MessageQuery) (int64, error) {
	tx, err := q.apply(ctx, db)
	if err != nil {
		return 0, err
	}
	var total int64
	err = tx.Count(&total).Error
	return total, err
}

// ReserveMessage attempts the AVAILABLE→RESERVED transition on message id,
// granting a lease of the given duration.
//
// The UPDATE's WHERE clause re-checks effective availability (stored
// AVAILABLE, or RESERVED with a lapsed timeout) so the transition is atomic
// under concurrency. Re-reserving a lapsed reservation overwrites
// reserved_on/times_out_on; the stored status stays RESERVED.
//
// Returns the reserved row on success, ErrUnavailable when zero rows were
// affected, or the raw store error.
func ReserveMessage(ctx context.Context, db *gorm.DB, id int64, lease time.Duration) (*domain.Message, error) {
	now := time.Now().UTC()
	pred, err := visibility.Predicate([]domain.MessageStatus{domain.StatusAvailable}, now)
	if err != nil {
		return nil, err
	}

	res := db.WithContext(ctx).Model(&domain.Message{}).
		Where("id = ?", id).
		Where(pred).
		Updates(map[string]any{
			"status":       domain.StatusReserved,
			"reserved_on":  now,
			"times_out_on": now.Add(lease),
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrUnavailable
	}
	return GetMessage(ctx, db, id)
}

// DeleteMessage performs the soft delete (→DELETED), stamping deleted_on.
//
// Deleting an already-deleted message is an idempotent no-op: the stored
// deletion timestamp never regresses. A missing message is ErrNotFound.
func DeleteMessage(ctx context.Context, db *gorm.DB, id int64) error {
	res := db.WithContext(ctx).Model(&domain.Message{}).
		Where("id = ? AND status <> ?", id, domain.StatusDeleted).
		Updates(map[string]any{
			"status":     domain.StatusDeleted,
			"deleted_on": time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		// Either already deleted (fine) or the row does not exist.
		var n int64
		if err := db.WithContext(ctx).Model(&domain.Message{}).Where("id = ?", id).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return ErrNotFound
		}
	}
	return nil
}
