// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the
// Subscription model and its category rules.
//
// Category filtering happens in Go via the match package rather than through
// driver LIKE clauses, so the inclusion/exclusion semantics are identical
// across stores and unit-testable without a live database. Subscriptions are
// fetched with rules preloaded and then sieved.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/pkarvelas/go-mq-backend/internal/domain"
	"github.com/pkarvelas/go-mq-backend/internal/match"
)

// SubscriptionQuery shapes a subscription lookup.
type SubscriptionQuery struct {
	// QueueID scopes the query; required.
	QueueID int64
	// SubscriberID optionally restricts to one subscriber.
	SubscriberID *int64
	// Categories, when non-empty, keeps only subscriptions whose rule set
	// accepts every listed category (AND across categories, OR across a
	// subscription's own rules). Nil/empty disables category filtering.
	Categories []string
	// IncludeDeleted lifts the default is_deleted = false restriction.
	IncludeDeleted bool
}

// CreateSubscription inserts a subscription together with its category rules
// in one transaction. CreatedOn is stamped in UTC when unset.
func CreateSubscription(ctx context.Context, db *gorm.DB, sub *domain.Subscription) error {
	if sub.CreatedOn.IsZero() {
		sub.CreatedOn = time.Now().UTC()
	}
	return db.WithContext(ctx).Create(sub).Error
}

// GetSubscription fetches a subscription by id with its rules preloaded,
// or ErrNotFound. Soft-deleted subscriptions are still retrievable by id;
// history stays addressable.
func GetSubscription(ctx context.Context, db *gorm.DB, id int64) (*domain.Subscription, error) {
	var sub domain.Subscription
	err := db.WithContext(ctx).Preload("Categories").Where("id = ?", id).First(&sub).Error
	if err != nil {
		return nil, err
	}
	return &sub, nil
}

// ListSubscriptions returns the subscriptions matching q, rules preloaded,
// ordered by id ascending.
func ListSubscriptions(ctx context.Context, db *gorm.DB, q SubscriptionQuery) ([]domain.Subscription, error) {
	tx := db.WithContext(ctx).
		Preload("Categories").
		Where("queue_id = ?", q.QueueID)
	if !q.IncludeDeleted {
		tx = tx.Where("is_deleted = ?", false)
	}
	if q.SubscriberID != nil {
		tx = tx.Where("subscriber_id = ?", *q.SubscriberID)
	}

	var out []domain.Subscription
	if err := tx.Order("id ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	if len(q.Categories) == 0 {
		return out, nil
	}

	kept := out[:0]
	for i := range out {
		ok, err := subscriptionMatches(&out[i], q.Categories)
		if err != nil {
			return nil, err
		}
		if ok {
			kept = append(kept, out[i])
		}
	}
	return kept, nil
}

// SoftDeleteSubscription flips is_deleted on the subscription. The row and
// its message associations are retained. Returns ErrNotFound when no such
// subscription exists.
func SoftDeleteSubscription(ctx context.Context, db *gorm.DB, id int64) error {
	res := db.WithContext(ctx).Model(&domain.Subscription{}).
		Where("id = ?", id).
		Update("is_deleted", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ReplaceCategories swaps the subscription's rule set wholesale: existing
// rules are deleted and the new set inserted in one transaction. Rules are
// never mutated in place.
func ReplaceCategories(ctx context.Context, db *gorm.DB, subscriptionID int64, rules []domain.SubscriptionCategory) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&domain.Subscription{}).Where("id = ?", subscriptionID).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return ErrNotFound
		}
		if err := tx.Where("subscription_id = ?", subscriptionID).
			Delete(&domain.SubscriptionCategory{}).Error; err != nil {
			return err
		}
		for i := range rules {
			rules[i].ID = 0
			rules[i].SubscriptionID = subscriptionID
		}
		if len(rules) == 0 {
			return nil
		}
		return tx.Create(&rules).Error
	})
}

// subscriptionMatches evaluates the subscription's rule set against every
// supplied category value.
func subscriptionMatches(sub *domain.Subscription, categories []string) (bool, error) {
	rules := make([]match.Rule, 0, len(sub.Categories))
	for _, c := range sub.Categories {
		rules = append(rules, match.Rule{Pattern: c.Category, Exception: c.IsException})
	}
	rs, err := match.NewRuleSet(rules)
	if err != nil {
		return false, err
	}
	return rs.MatchesAll(categories), nil
}
