// Package services – MessageService
//
// This file implements MessageService, the application-level component that
// owns the message lifecycle: publishing (with per-subscription fan-out),
// receiving (reserve under a lease), acknowledging, and browsing. It
// validates inputs, verifies queue/subscription targets, and persists the
// original message together with its fan-out copies atomically.
//
// Observability: the lifecycle methods are OpenTelemetry-instrumented; spans
// include queue/message identifiers and batch parameters where applicable.
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/pkarvelas/go-mq-backend/internal/domain"
	"github.com/pkarvelas/go-mq-backend/internal/repo"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const defaultMimeType = "application/octet-stream"

// MessageService coordinates message persistence, fan-out, and delivery.
type MessageService struct {
	DB *gorm.DB

	// DefaultLease is used when a receive request does not name a lease.
	DefaultLease time.Duration
	// MaxLease caps caller-supplied lease durations.
	MaxLease time.Duration
	// MaxBodyBytes caps published payloads; <= 0 disables the check.
	MaxBodyBytes int
	// MaxReceiveBatch caps how many messages one receive call may reserve.
	MaxReceiveBatch int
}

// PublishInput describes one produced message.
type PublishInput struct {
	QueueID  int64
	SenderID int64
	MimeType string
	Body     []byte

	// Categories narrow the fan-out: only current subscriptions whose rule
	// sets accept every listed category receive a copy. Nil/empty fans out
	// to all current subscriptions.
	Categories []string

	// SubscriptionID, when set, addresses the message point-to-point to one
	// subscription and skips fan-out entirely.
	SubscriptionID *int64
}

// PublishResult reports the persisted original and the number of fan-out
// copies materialized for it.
type PublishResult struct {
	Message *domain.Message `json:"message"`
	Copies  int             `json:"copies"`
}

// ReceiveInput describes one consumer poll.
type ReceiveInput struct {
	QueueID int64
	// SubscriberID selects addressed delivery; nil polls the unaddressed
	// (queue-level) stream. The two modes are mutually exclusive.
	SubscriberID *int64
	// Lease is the reservation duration; zero means DefaultLease.
	Lease time.Duration
	// Max is the batch size; values < 1 mean 1.
	Max int
}

// Publish validates the input, persists the original message, and fans it
// out to matching current subscriptions, all in one transaction.
//
// The unaddressed original is retained alongside its copies, keeping the
// queue-level stream visible to consumers that poll without a subscription.
// Cloning never mutates the original; each copy gets a fresh id, its own
// created_on, a parent link, and status AVAILABLE.
func (s *MessageService) Publish(ctx context.Context, in PublishInput) (*PublishResult, error) {
	tr := otel.Tracer("services/MessageService")
	ctx, span := tr.Start(ctx, "Publish",
		trace.WithAttributes(
			attribute.Int64("queue.id", in.QueueID),
			attribute.Int64("sender.id", in.SenderID),
		),
	)
	defer span.End()

	if s.MaxBodyBytes > 0 && len(in.Body) > s.MaxBodyBytes {
		return nil, ErrBodyTooLarge
	}
	mime := strings.TrimSpace(in.MimeType)
	if mime == "" {
		mime = defaultMimeType
	}

	var out PublishResult
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := repo.GetQueue(ctx, tx, in.QueueID); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return ErrQueueNotFound
			}
			return err
		}

		msg := &domain.Message{
			QueueID:  in.QueueID,
			SenderID: in.SenderID,
			MimeType: mime,
			Body:     in.Body,
			Status:   domain.StatusAvailable,
		}

		// Point-to-point: address the original itself, no fan-out.
		if in.SubscriptionID != nil {
			sub, err := repo.GetSubscription(ctx, tx, *in.SubscriptionID)
			if err != nil || sub.IsDeleted {
				return ErrSubscriptionNotFound
			}
			if sub.QueueID != in.QueueID {
				return ErrSubscriptionMismatch
			}
			msg.SubscriptionID = in.SubscriptionID
			if err := repo.CreateMessage(ctx, tx, msg); err != nil {
				return err
			}
			out.Message = msg
			return nil
		}

		if err := repo.CreateMessage(ctx, tx, msg); err != nil {
			return err
		}

		subs, err := repo.ListSubscriptions(ctx, tx, repo.SubscriptionQuery{
			QueueID:    in.QueueID,
			Categories: in.Categories,
		})
		if err != nil {
			return err
		}
		for i := range subs {
			copyMsg := msg.Clone(subs[i].ID)
			if err := repo.CreateMessage(ctx, tx, copyMsg); err != nil {
				return err
			}
		}
		out.Message = msg
		out.Copies = len(subs)
		return nil
	})
	if err != nil {
		return nil, err
	}

	mqPublished.WithLabelValues(queueLabel(in.QueueID)).Inc()
	mqFanout.WithLabelValues(queueLabel(in.QueueID)).Add(float64(out.Copies))
	span.SetAttributes(attribute.Int("fanout.copies", out.Copies))
	return &out, nil
}

// Receive polls for effectively available messages and reserves up to
// in.Max of them under a lease.
//
// Candidates are selected FIFO and each reservation is an independent
// conditional update; losing a row to a concurrent consumer is expected and
// simply moves on to the next candidate. An empty result means "nothing
// available right now" — callers implement their own backoff and retry.
func (s *MessageService) Receive(ctx context.Context, in ReceiveInput) ([]domain.Message, error) {
	tr := otel.Tracer("services/MessageService")
	ctx, span := tr.Start(ctx, "Receive",
		trace.WithAttributes(
			attribute.Int64("queue.id", in.QueueID),
			attribute.Int("max", in.Max),
		),
	)
	defer span.End()

	lease := in.Lease
	if lease == 0 {
		lease = s.DefaultLease
	}
	if lease <= 0 || (s.MaxLease > 0 && lease > s.MaxLease) {
		return nil, ErrInvalidLease
	}

	max := in.Max
	if max < 1 {
		max = 1
	}
	if s.MaxReceiveBatch > 0 && max > s.MaxReceiveBatch {
		max = s.MaxReceiveBatch
	}

	if _, err := repo.GetQueue(ctx, s.DB, in.QueueID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrQueueNotFound
		}
		return nil, err
	}

	got := make([]domain.Message, 0, max)
	// Two selection passes: if every candidate of the first pass was lost
	// to concurrent consumers, a fresh query sees the next tranche.
	for pass := 0; pass < 2 && len(got) < max; pass++ {
		candidates, err := repo.ListMessages(ctx, s.DB, repo.MessageQuery{
			QueueID:      in.QueueID,
			Statuses:     []domain.MessageStatus{domain.StatusAvailable},
			SubscriberID: in.SubscriberID,
			Limit:        max * 2,
		})
		if err != nil {
			return nil, err
		}
		if len(candidates) == 0 {
			break
		}

		progressed := false
		for i := range candidates {
			if len(got) >= max {
				break
			}
			m, err := repo.ReserveMessage(ctx, s.DB, candidates[i].ID, lease)
			if errors.Is(err, repo.ErrUnavailable) {
				mqReserveConflicts.WithLabelValues(queueLabel(in.QueueID)).Inc()
				continue
			}
			if err != nil {
				return nil, err
			}
			got = append(got, *m)
			progressed = true
		}
		if !progressed {
			break
		}
	}

	mqReserved.WithLabelValues(queueLabel(in.QueueID)).Add(float64(len(got)))
	span.SetAttributes(attribute.Int("received", len(got)))
	return got, nil
}

// Ack acknowledges a processed message, transitioning it to DELETED.
// Acking an already-deleted message is an idempotent no-op.
func (s *MessageService) Ack(ctx context.Context, messageID int64) error {
	tr := otel.Tracer("services/MessageService")
	ctx, span := tr.Start(ctx, "Ack",
		trace.WithAttributes(attribute.Int64("message.id", messageID)),
	)
	defer span.End()

	err := repo.DeleteMessage(ctx, s.DB, messageID)
	if errors.Is(err, repo.ErrNotFound) {
		return ErrMessageNotFound
	}
	if err == nil {
		mqAcked.Inc()
	}
	return err
}

// Get fetches a single message by id.
func (s *MessageService) Get(ctx context.Context, id int64) (*domain.Message, error) {
	m, err := repo.GetMessage(ctx, s.DB, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrMessageNotFound
	}
	return m, err
}

// ListPage browses a queue's messages by effective status, paginated.
// Deleted messages stay reachable here by explicitly requesting the
// "deleted" status; default delivery queries never see them.
func (s *MessageService) ListPage(ctx context.Context, queueID int64, statuses []domain.MessageStatus, subscriberID *int64, page, pageSize int) ([]domain.Message, int64, error) {
	if len(statuses) == 0 {
		return nil, 0, ErrInvalidStatusFilter
	}
	for _, st := range statuses {
		if !st.Valid() {
			return nil, 0, ErrInvalidStatusFilter
		}
	}

	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}

	if _, err := repo.GetQueue(ctx, s.DB, queueID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, 0, ErrQueueNotFound
		}
		return nil, 0, err
	}

	// One visibility snapshot shared by the count and the page.
	q := repo.MessageQuery{
		QueueID:      queueID,
		Statuses:     statuses,
		SubscriberID: subscriberID,
		Now:          time.Now().UTC(),
	}
	total, err := repo.CountMessages(ctx, s.DB, q)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.Message{}, 0, nil
	}

	q.Offset = (page - 1) * pageSize
	q.Limit = pageSize
	items, err := repo.ListMessages(ctx, s.DB, q)
	return items, total, err
}
