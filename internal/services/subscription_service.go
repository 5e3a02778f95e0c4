package services

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/pkarvelas/go-mq-backend/internal/domain"
	"github.com/pkarvelas/go-mq-backend/internal/repo"
)

// SubscriptionService manages subscription registration and category rules.
type SubscriptionService struct {
	DB *gorm.DB

	// LabelMaxLen clips subscription labels; <= 0 disables clipping.
	LabelMaxLen int
}

// NewSubscriptionService returns a SubscriptionService with default limits.
func NewSubscriptionService(db *gorm.DB) *SubscriptionService {
	return &SubscriptionService{DB: db, LabelMaxLen: 128}
}

// RuleInput is one category rule supplied by a caller.
type RuleInput struct {
	Pattern   string `json:"pattern"`
	Exception bool   `json:"exception"`
}

// Subscribe registers a subscriber on a queue with an optional rule set.
// An empty rule set means the subscription accepts every category.
func (s *SubscriptionService) Subscribe(ctx context.Context, queueID, subscriberID int64, label string, rules []RuleInput) (*domain.Subscription, error) {
	if _, err := repo.GetQueue(ctx, s.DB, queueID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrQueueNotFound
		}
		return nil, err
	}

	cats, err := s.buildCategories(rules)
	if err != nil {
		return nil, err
	}

	sub := &domain.Subscription{
		QueueID:      queueID,
		SubscriberID: subscriberID,
		Label:        s.clipLabel(label),
		Categories:   cats,
	}
	if err := repo.CreateSubscription(ctx, s.DB, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

// Get fetches one subscription, including its rules. Soft-deleted
// subscriptions remain retrievable by id.
func (s *SubscriptionService) Get(ctx context.Context, id int64) (*domain.Subscription, error) {
	sub, err := repo.GetSubscription(ctx, s.DB, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrSubscriptionNotFound
	}
	return sub, err
}

// List returns a queue's current subscriptions, optionally narrowed to one
// subscriber and to those whose rule sets accept all given categories.
func (s *SubscriptionService) List(ctx context.Context, queueID int64, subscriberID *int64, categories []string) ([]domain.Subscription, error) {
	if _, err := repo.GetQueue(ctx, s.DB, queueID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrQueueNotFound
		}
		return nil, err
	}
	return repo.ListSubscriptions(ctx, s.DB, repo.SubscriptionQuery{
		QueueID:      queueID,
		SubscriberID: subscriberID,
		Categories:   categories,
	})
}

// Unsubscribe soft-deletes a subscription. Already-delivered copies stay
// untouched; the subscription merely stops receiving new fan-out.
func (s *SubscriptionService) Unsubscribe(ctx context.Context, id int64) error {
	err := repo.SoftDeleteSubscription(ctx, s.DB, id)
	if errors.Is(err, repo.ErrNotFound) {
		return ErrSubscriptionNotFound
	}
	return err
}

// ReplaceRules swaps a subscription's rule set wholesale.
func (s *SubscriptionService) ReplaceRules(ctx context.Context, id int64, rules []RuleInput) (*domain.Subscription, error) {
	cats, err := s.buildCategories(rules)
	if err != nil {
		return nil, err
	}
	if err := repo.ReplaceCategories(ctx, s.DB, id, cats); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *SubscriptionService) buildCategories(rules []RuleInput) ([]domain.SubscriptionCategory, error) {
	cats := make([]domain.SubscriptionCategory, 0, len(rules))
	for _, r := range rules {
		p := strings.TrimSpace(r.Pattern)
		if p == "" {
			return nil, ErrEmptyCategoryPattern
		}
		cats = append(cats, domain.SubscriptionCategory{
			Category:    p,
			IsException: r.Exception,
		})
	}
	return cats, nil
}

func (s *SubscriptionService) clipLabel(label string) string {
	label = strings.TrimSpace(label)
	if s.LabelMaxLen > 0 && len(label) > s.LabelMaxLen {
		return label[:s.LabelMaxLen]
	}
	return label
}
