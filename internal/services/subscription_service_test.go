package services

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestSubscriptionService_Subscribe(t *testing.T) {
	db := newSvcDB(t)
	svc := NewSubscriptionService(db)
	ctx := context.Background()
	q := seedQueue(t, db)

	sub, err := svc.Subscribe(ctx, q.ID, 7, "  order events  ", []RuleInput{
		{Pattern: " orders.% "},
		{Pattern: "debug.%", Exception: true},
	})
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	if sub.ID == 0 {
		t.Fatal("expected assigned id")
	}
	if sub.Label != "order events" {
		t.Fatalf("label = %q, want trimmed", sub.Label)
	}
	if len(sub.Categories) != 2 {
		t.Fatalf("rules = %d, want 2", len(sub.Categories))
	}
	if sub.Categories[0].Category != "orders.%" {
		t.Fatalf("pattern not trimmed: %q", sub.Categories[0].Category)
	}
	if !sub.Categories[1].IsException {
		t.Fatal("exception flag lost")
	}
}

func TestSubscriptionService_Subscribe_Errors(t *testing.T) {
	db := newSvcDB(t)
	svc := NewSubscriptionService(db)
	ctx := context.Background()
	q := seedQueue(t, db)

	if _, err := svc.Subscribe(ctx, 4242, 1, "", nil); !errors.Is(err, ErrQueueNotFound) {
		t.Fatalf("missing queue = %v, want ErrQueueNotFound", err)
	}
	if _, err := svc.Subscribe(ctx, q.ID, 1, "", []RuleInput{{Pattern: "  "}}); !errors.Is(err, ErrEmptyCategoryPattern) {
		t.Fatalf("blank pattern = %v, want ErrEmptyCategoryPattern", err)
	}
}

func TestSubscriptionService_LabelClipped(t *testing.T) {
	db := newSvcDB(t)
	svc := NewSubscriptionService(db)
	svc.LabelMaxLen = 8
	q := seedQueue(t, db)

	sub, err := svc.Subscribe(context.Background(), q.ID, 1, strings.Repeat("x", 20), nil)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	if len(sub.Label) != 8 {
		t.Fatalf("label length = %d, want 8", len(sub.Label))
	}
}

func TestSubscriptionService_GetListUnsubscribe(t *testing.T) {
	db := newSvcDB(t)
	svc := NewSubscriptionService(db)
	ctx := context.Background()
	q := seedQueue(t, db)

	a, err := svc.Subscribe(ctx, q.ID, 1, "a", []RuleInput{{Pattern: "orders.%"}})
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}
	b, err := svc.Subscribe(ctx, q.ID, 2, "b", nil)
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	got, err := svc.Get(ctx, a.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(got.Categories) != 1 {
		t.Fatalf("rules not preloaded: %+v", got)
	}
	if _, err := svc.Get(ctx, 9999); !errors.Is(err, ErrSubscriptionNotFound) {
		t.Fatalf("get missing = %v, want ErrSubscriptionNotFound", err)
	}

	subs, err := svc.List(ctx, q.ID, nil, nil)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(subs) != 2 {
		t.Fatalf("list = %d, want 2", len(subs))
	}

	// Category sieve: only the unrestricted subscription accepts "invoices".
	subs, err = svc.List(ctx, q.ID, nil, []string{"invoices"})
	if err != nil {
		t.Fatalf("List with category: %v", err)
	}
	if len(subs) != 1 || subs[0].ID != b.ID {
		t.Fatalf("sieved list = %+v, want only %d", subs, b.ID)
	}

	if _, err := svc.List(ctx, 4242, nil, nil); !errors.Is(err, ErrQueueNotFound) {
		t.Fatalf("list missing queue = %v, want ErrQueueNotFound", err)
	}

	if err := svc.Unsubscribe(ctx, a.ID); err != nil {
		t.Fatalf("Unsubscribe: %v", err)
	}
	subs, err = svc.List(ctx, q.ID, nil, nil)
	if err != nil {
		t.Fatalf("List after unsubscribe: %v", err)
	}
	if len(subs) != 1 || subs[0].ID != b.ID {
		t.Fatalf("list after unsubscribe = %+v", subs)
	}
	// Still addressable by id.
	got, err = svc.Get(ctx, a.ID)
	if err != nil {
		t.Fatalf("Get after unsubscribe: %v", err)
	}
	if !got.IsDeleted {
		t.Fatal("expected is_deleted = true")
	}
	if err := svc.Unsubscribe(ctx, 9999); !errors.Is(err, ErrSubscriptionNotFound) {
		t.Fatalf("unsubscribe missing = %v, want ErrSubscriptionNotFound", err)
	}
}

func TestSubscriptionService_ReplaceRules(t *testing.T) {
	db := newSvcDB(t)
	svc := NewSubscriptionService(db)
	ctx := context.Background()
	q := seedQueue(t, db)

	sub, err := svc.Subscribe(ctx, q.ID, 1, "", []RuleInput{{Pattern: "old.%"}})
	if err != nil {
		t.Fatalf("Subscribe: %v", err)
	}

	got, err := svc.ReplaceRules(ctx, sub.ID, []RuleInput{{Pattern: "new.%"}, {Pattern: "trace", Exception: true}})
	if err != nil {
		t.Fatalf("ReplaceRules: %v", err)
	}
	if len(got.Categories) != 2 || got.Categories[0].Category != "new.%" {
		t.Fatalf("replaced rules = %+v", got.Categories)
	}

	if _, err := svc.ReplaceRules(ctx, sub.ID, []RuleInput{{Pattern: ""}}); !errors.Is(err, ErrEmptyCategoryPattern) {
		t.Fatalf("blank pattern = %v, want ErrEmptyCategoryPattern", err)
	}
	if _, err := svc.ReplaceRules(ctx, 9999, nil); !errors.Is(err, ErrSubscriptionNotFound) {
		t.Fatalf("missing sub = %v, want ErrSubscriptionNotFound", err)
	}
}
