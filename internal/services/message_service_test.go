package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/pkarvelas/go-mq-backend/internal/domain"
	"github.com/pkarvelas/go-mq-backend/internal/repo"
)

// newSvcDB opens a throwaway SQLite database with the full broker schema.
func newSvcDB(t *testing.T) *gorm.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), fmt.Sprintf("svc-%s.db", t.Name()))
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func newMsgService(db *gorm.DB) *MessageService {
	return &MessageService{
		DB:              db,
		DefaultLease:    30 * time.Second,
		MaxLease:        15 * time.Minute,
		MaxBodyBytes:    1 << 20,
		MaxReceiveBatch: 100,
	}
}

func seedQueue(t *testing.T, db *gorm.DB) *domain.Queue {
	t.Helper()
	q, err := repo.CreateQueue(context.Background(), db, "t-"+t.Name())
	if err != nil {
		t.Fatalf("seed queue: %v", err)
	}
	return q
}

func seedSub(t *testing.T, db *gorm.DB, queueID, subscriberID int64, rules ...domain.SubscriptionCategory) *domain.Subscription {
	t.Helper()
	sub := &domain.Subscription{QueueID: queueID, SubscriberID: subscriberID, Categories: rules}
	if err := repo.CreateSubscription(context.Background(), db, sub); err != nil {
		t.Fatalf("seed subscription: %v", err)
	}
	return sub
}

func TestMessageService_Publish_FanOut(t *testing.T) {
	db := newSvcDB(t)
	svc := newMsgService(db)
	ctx := context.Background()
	q := seedQueue(t, db)

	all := seedSub(t, db, q.ID, 1)
	orders := seedSub(t, db, q.ID, 2, domain.SubscriptionCategory{Category: "orders.%"})
	gone := seedSub(t, db, q.ID, 3)
	if err := repo.SoftDeleteSubscription(ctx, db, gone.ID); err != nil {
		t.Fatalf("soft delete: %v", err)
	}

	res, err := svc.Publish(ctx, PublishInput{
		QueueID:    q.ID,
		SenderID:   9,
		Body:       []byte("payload"),
		Categories: []string{"orders.created"},
	})
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if res.Copies != 2 {
		t.Fatalf("copies = %d, want 2 (wildcard + orders, not the deleted one)", res.Copies)
	}
	if res.Message.SubscriptionID != nil || res.Message.MessageID != nil {
		t.Fatalf("original must stay unaddressed: %+v", res.Message)
	}
	if res.Message.MimeType != "application/octet-stream" {
		t.Fatalf("mimetype = %q, want the default", res.Message.MimeType)
	}

	var copies []domain.Message
	if err := db.Where("message_id = ?", res.Message.ID).Order("id ASC").Find(&copies).Error; err != nil {
		t.Fatalf("load copies: %v", err)
	}
	if len(copies) != 2 {
		t.Fatalf("stored copies = %d, want 2", len(copies))
	}
	targets := map[int64]bool{}
	for _, c := range copies {
		if c.SubscriptionID == nil {
			t.Fatalf("copy %d has no subscription", c.ID)
		}
		targets[*c.SubscriptionID] = true
		if c.Status != domain.StatusAvailable {
			t.Fatalf("copy status = %v", c.Status)
		}
		if !bytes.Equal(c.Body, res.Message.Body) {
			t.Fatalf("copy body = %q", c.Body)
		}
		if c.CreatedOn.IsZero() {
			t.Fatal("copy created_on not stamped")
		}
	}
	if !targets[all.ID] || !targets[orders.ID] {
		t.Fatalf("copies addressed to %v, want subs %d and %d", targets, all.ID, orders.ID)
	}
}

func TestMessageService_Publish_CategoryNarrowsFanOut(t *testing.T) {
	db := newSvcDB(t)
	svc := newMsgService(db)
	ctx := context.Background()
	q := seedQueue(t, db)

	seedSub(t, db, q.ID, 1, domain.SubscriptionCategory{Category: "invoices.%"})

	res, err := svc.Publish(ctx, PublishInput{
		QueueID:    q.ID,
		Body:       []byte("x"),
		Categories: []string{"orders.created"},
	})
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if res.Copies != 0 {
		t.Fatalf("copies = %d, want 0", res.Copies)
	}
}

func TestMessageService_Publish_Direct(t *testing.T) {
	db := newSvcDB(t)
	svc := newMsgService(db)
	ctx := context.Background()
	q := seedQueue(t, db)
	sub := seedSub(t, db, q.ID, 1)
	// A second subscription that must NOT receive a copy on direct publish.
	seedSub(t, db, q.ID, 2)

	res, err := svc.Publish(ctx, PublishInput{
		QueueID:        q.ID,
		Body:           []byte("direct"),
		SubscriptionID: &sub.ID,
	})
	if err != nil {
		t.Fatalf("Publish direct: %v", err)
	}
	if res.Copies != 0 {
		t.Fatalf("copies = %d, want 0 on direct publish", res.Copies)
	}
	if res.Message.SubscriptionID == nil || *res.Message.SubscriptionID != sub.ID {
		t.Fatalf("message not addressed: %+v", res.Message)
	}

	var total int64
	if err := db.Model(&domain.Message{}).Count(&total).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	if total != 1 {
		t.Fatalf("rows = %d, want 1 (no fan-out)", total)
	}
}

func TestMessageService_Publish_DirectErrors(t *testing.T) {
	db := newSvcDB(t)
	svc := newMsgService(db)
	ctx := context.Background()
	q := seedQueue(t, db)
	other, err := repo.CreateQueue(ctx, db, "other-"+t.Name())
	if err != nil {
		t.Fatalf("seed queue: %v", err)
	}
	foreign := seedSub(t, db, other.ID, 1)
	deleted := seedSub(t, db, q.ID, 2)
	if err := repo.SoftDeleteSubscription(ctx, db, deleted.ID); err != nil {
		t.Fatalf("soft delete: %v", err)
	}

	if _, err := svc.Publish(ctx, PublishInput{QueueID: q.ID, Body: []byte("x"), SubscriptionID: &foreign.ID}); !errors.Is(err, ErrSubscriptionMismatch) {
		t.Fatalf("foreign sub error = %v, want ErrSubscriptionMismatch", err)
	}
	if _, err := svc.Publish(ctx, PublishInput{QueueID: q.ID, Body: []byte("x"), SubscriptionID: &deleted.ID}); !errors.Is(err, ErrSubscriptionNotFound) {
		t.Fatalf("deleted sub error = %v, want ErrSubscriptionNotFound", err)
	}
	missing := int64(9999)
	if _, err := svc.Publish(ctx, PublishInput{QueueID: q.ID, Body: []byte("x"), SubscriptionID: &missing}); !errors.Is(err, ErrSubscriptionNotFound) {
		t.Fatalf("missing sub error = %v, want ErrSubscriptionNotFound", err)
	}
}

func TestMessageService_Publish_Validation(t *testing.T) {
	db := newSvcDB(t)
	svc := newMsgService(db)
	svc.MaxBodyBytes = 4
	ctx := context.Background()
	q := seedQueue(t, db)

	if _, err := svc.Publish(ctx, PublishInput{QueueID: q.ID, Body: []byte("too big")}); !errors.Is(err, ErrBodyTooLarge) {
		t.Fatalf("oversize error = %v, want ErrBodyTooLarge", err)
	}
	if _, err := svc.Publish(ctx, PublishInput{QueueID: 4242, Body: []byte("x")}); !errors.Is(err, ErrQueueNotFound) {
		t.Fatalf("missing queue error = %v, want ErrQueueNotFound", err)
	}
}

func TestMessageService_Receive_FIFOAndLease(t *testing.T) {
	db := newSvcDB(t)
	svc := newMsgService(db)
	ctx := context.Background()
	q := seedQueue(t, db)

	var want []int64
	for i := 0; i < 3; i++ {
		res, err := svc.Publish(ctx, PublishInput{QueueID: q.ID, Body: []byte{byte('a' + i)}})
		if err != nil {
			t.Fatalf("Publish: %v", err)
		}
		want = append(want, res.Message.ID)
	}

	got, err := svc.Receive(ctx, ReceiveInput{QueueID: q.ID, Max: 2})
	if err != nil {
		t.Fatalf("Receive: %v", err)
	}
	if len(got) != 2 || got[0].ID != want[0] || got[1].ID != want[1] {
		t.Fatalf("received %+v, want first two of %v", got, want)
	}
	for _, m := range got {
		if m.Status != domain.StatusReserved || m.TimesOutOn == nil {
			t.Fatalf("message %d not reserved: %+v", m.ID, m)
		}
		if lease := m.TimesOutOn.Sub(*m.ReservedOn); lease != svc.DefaultLease {
			t.Fatalf("lease = %v, want default %v", lease, svc.DefaultLease)
		}
	}

	// Reserved messages are invisible to the next poll; only the third remains.
	rest, err := svc.Receive(ctx, ReceiveInput{QueueID: q.ID, Max: 10})
	if err != nil {
		t.Fatalf("Receive rest: %v", err)
	}
	if len(rest) != 1 || rest[0].ID != want[2] {
		t.Fatalf("second poll = %+v, want only %d", rest, want[2])
	}

	// Drained queue returns empty, not an error.
	empty, err := svc.Receive(ctx, ReceiveInput{QueueID: q.ID})
	if err != nil {
		t.Fatalf("Receive empty: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("drained poll = %+v, want empty", empty)
	}
}

func TestMessageService_Receive_Validation(t *testing.T) {
	db := newSvcDB(t)
	svc := newMsgService(db)
	ctx := context.Background()
	q := seedQueue(t, db)

	if _, err := svc.Receive(ctx, ReceiveInput{QueueID: q.ID, Lease: -time.Second}); !errors.Is(err, ErrInvalidLease) {
		t.Fatalf("negative lease = %v, want ErrInvalidLease", err)
	}
	if _, err := svc.Receive(ctx, ReceiveInput{QueueID: q.ID, Lease: time.Hour}); !errors.Is(err, ErrInvalidLease) {
		t.Fatalf("over-max lease = %v, want ErrInvalidLease", err)
	}
	if _, err := svc.Receive(ctx, ReceiveInput{QueueID: 4242}); !errors.Is(err, ErrQueueNotFound) {
		t.Fatalf("missing queue = %v, want ErrQueueNotFound", err)
	}
}

func TestMessageService_Receive_BatchClamp(t *testing.T) {
	db := newSvcDB(t)
	svc := newMsgService(db)
	svc.MaxReceiveBatch = 2
	ctx := context.Background()
	q := seedQueue(t, db)

	for i := 0; i < 4; i++ {
		if _, err := svc.Publish(ctx, PublishInput{QueueID: q.ID, Body: []byte("x")}); err != nil {
			t.Fatalf("Publish: %v", err)
		}
	}
	got, err := svc.Receive(ctx, ReceiveInput{QueueID: q.ID, Max: 50})
	if err != nil {
		t.Fatalf("Receive: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("received %d, want clamp at 2", len(got))
	}
}

func TestMessageService_Receive_Addressed(t *testing.T) {
	db := newSvcDB(t)
	svc := newMsgService(db)
	ctx := context.Background()
	q := seedQueue(t, db)
	sub := seedSub(t, db, q.ID, 77)

	res, err := svc.Publish(ctx, PublishInput{QueueID: q.ID, Body: []byte("x")})
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if res.Copies != 1 {
		t.Fatalf("copies = %d, want 1", res.Copies)
	}

	sid := sub.SubscriberID
	mine, err := svc.Receive(ctx, ReceiveInput{QueueID: q.ID, SubscriberID: &sid, Max: 10})
	if err != nil {
		t.Fatalf("Receive addressed: %v", err)
	}
	if len(mine) != 1 {
		t.Fatalf("addressed poll = %d messages, want 1", len(mine))
	}
	if mine[0].SubscriptionID == nil || *mine[0].SubscriptionID != sub.ID {
		t.Fatalf("received wrong row: %+v", mine[0])
	}

	// The unaddressed stream still holds the original.
	plain, err := svc.Receive(ctx, ReceiveInput{QueueID: q.ID, Max: 10})
	if err != nil {
		t.Fatalf("Receive unaddressed: %v", err)
	}
	if len(plain) != 1 || plain[0].ID != res.Message.ID {
		t.Fatalf("unaddressed poll = %+v, want the original %d", plain, res.Message.ID)
	}
}

func TestMessageService_Receive_RedeliveryAfterLapse(t *testing.T) {
	db := newSvcDB(t)
	svc := newMsgService(db)
	ctx := context.Background()
	q := seedQueue(t, db)

	res, err := svc.Publish(ctx, PublishInput{QueueID: q.ID, Body: []byte("x")})
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}

	// Simulate a lapsed lease rather than sleeping through one.
	past := time.Now().UTC().Add(-time.Minute)
	err = db.Model(&domain.Message{}).Where("id = ?", res.Message.ID).
		Updates(map[string]any{"status": domain.StatusReserved, "reserved_on": past, "times_out_on": past}).Error
	if err != nil {
		t.Fatalf("simulate lapse: %v", err)
	}

	got, err := svc.Receive(ctx, ReceiveInput{QueueID: q.ID})
	if err != nil {
		t.Fatalf("Receive: %v", err)
	}
	if len(got) != 1 || got[0].ID != res.Message.ID {
		t.Fatalf("lapsed message not redelivered: %+v", got)
	}
}

func TestMessageService_AckAndGet(t *testing.T) {
	db := newSvcDB(t)
	svc := newMsgService(db)
	ctx := context.Background()
	q := seedQueue(t, db)

	res, err := svc.Publish(ctx, PublishInput{QueueID: q.ID, Body: []byte("x")})
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	id := res.Message.ID

	if err := svc.Ack(ctx, id); err != nil {
		t.Fatalf("Ack: %v", err)
	}
	// Idempotent re-ack.
	if err := svc.Ack(ctx, id); err != nil {
		t.Fatalf("second Ack: %v", err)
	}
	if err := svc.Ack(ctx, 9999); !errors.Is(err, ErrMessageNotFound) {
		t.Fatalf("ack missing = %v, want ErrMessageNotFound", err)
	}

	got, err := svc.Get(ctx, id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status != domain.StatusDeleted {
		t.Fatalf("status after ack = %v, want deleted", got.Status)
	}
	if _, err := svc.Get(ctx, 9999); !errors.Is(err, ErrMessageNotFound) {
		t.Fatalf("get missing = %v, want ErrMessageNotFound", err)
	}

	// Acked messages never come back.
	empty, err := svc.Receive(ctx, ReceiveInput{QueueID: q.ID})
	if err != nil {
		t.Fatalf("Receive: %v", err)
	}
	if len(empty) != 0 {
		t.Fatalf("acked message redelivered: %+v", empty)
	}
}

func TestMessageService_ListPage(t *testing.T) {
	db := newSvcDB(t)
	svc := newMsgService(db)
	ctx := context.Background()
	q := seedQueue(t, db)

	var ids []int64
	for i := 0; i < 5; i++ {
		res, err := svc.Publish(ctx, PublishInput{QueueID: q.ID, Body: []byte("x")})
		if err != nil {
			t.Fatalf("Publish: %v", err)
		}
		ids = append(ids, res.Message.ID)
	}
	if err := svc.Ack(ctx, ids[0]); err != nil {
		t.Fatalf("Ack: %v", err)
	}

	avail := []domain.MessageStatus{domain.StatusAvailable}
	items, total, err := svc.ListPage(ctx, q.ID, avail, nil, 1, 3)
	if err != nil {
		t.Fatalf("ListPage: %v", err)
	}
	if total != 4 {
		t.Fatalf("total = %d, want 4", total)
	}
	if len(items) != 3 || items[0].ID != ids[1] {
		t.Fatalf("page 1 = %+v", items)
	}
	items, _, err = svc.ListPage(ctx, q.ID, avail, nil, 2, 3)
	if err != nil {
		t.Fatalf("ListPage page 2: %v", err)
	}
	if len(items) != 1 || items[0].ID != ids[4] {
		t.Fatalf("page 2 = %+v", items)
	}

	// Deleted rows stay reachable when asked for explicitly.
	items, total, err = svc.ListPage(ctx, q.ID, []domain.MessageStatus{domain.StatusDeleted}, nil, 1, 10)
	if err != nil {
		t.Fatalf("ListPage deleted: %v", err)
	}
	if total != 1 || len(items) != 1 || items[0].ID != ids[0] {
		t.Fatalf("deleted page = %+v (total %d)", items, total)
	}

	if _, _, err := svc.ListPage(ctx, q.ID, nil, nil, 1, 10); !errors.Is(err, ErrInvalidStatusFilter) {
		t.Fatalf("empty filter = %v, want ErrInvalidStatusFilter", err)
	}
	if _, _, err := svc.ListPage(ctx, q.ID, []domain.MessageStatus{99}, nil, 1, 10); !errors.Is(err, ErrInvalidStatusFilter) {
		t.Fatalf("unknown filter = %v, want ErrInvalidStatusFilter", err)
	}
	if _, _, err := svc.ListPage(ctx, 4242, avail, nil, 1, 10); !errors.Is(err, ErrQueueNotFound) {
		t.Fatalf("missing queue = %v, want ErrQueueNotFound", err)
	}
}
