package domain

import (
	"bytes"
	"testing"
	"time"
)

func TestMessage_Clone(t *testing.T) {
	created := time.Date(2025, 3, 4, 5, 6, 7, 0, time.UTC)
	reserved := created.Add(time.Second)
	src := &Message{
		ID:         42,
		QueueID:    7,
		CreatedOn:  created,
		SenderID:   99,
		Status:     StatusReserved,
		ReservedOn: &reserved,
		MimeType:   "application/json",
		Body:       []byte(`{"k":"v"}`),
	}

	c := src.Clone(13)

	if c.ID != 0 {
		t.Fatalf("clone ID = %d, want 0 (assigned on insert)", c.ID)
	}
	if c.QueueID != src.QueueID || c.SenderID != src.SenderID || c.MimeType != src.MimeType {
		t.Fatalf("clone did not preserve queue/sender/mimetype: %+v", c)
	}
	if c.MessageID == nil || *c.MessageID != src.ID {
		t.Fatalf("clone parent link = %v, want %d", c.MessageID, src.ID)
	}
	if c.SubscriptionID == nil || *c.SubscriptionID != 13 {
		t.Fatalf("clone subscription = %v, want 13", c.SubscriptionID)
	}
	if c.Status != StatusAvailable {
		t.Fatalf("clone status = %v, want available", c.Status)
	}
	if !c.CreatedOn.IsZero() {
		t.Fatalf("clone CreatedOn = %v, want zero (stamped on insert)", c.CreatedOn)
	}
	if c.ReservedOn != nil || c.TimesOutOn != nil || c.DeletedOn != nil {
		t.Fatal("clone inherited timing metadata from source")
	}
	if !bytes.Equal(c.Body, src.Body) {
		t.Fatalf("clone body = %q, want %q", c.Body, src.Body)
	}

	// Body is an independent copy: mutating it must not touch the source.
	c.Body[0] = 'X'
	if src.Body[0] == 'X' {
		t.Fatal("clone body aliases source body")
	}

	// The source itself is untouched.
	if src.Status != StatusReserved || src.MessageID != nil || src.SubscriptionID != nil {
		t.Fatalf("Clone mutated its receiver: %+v", src)
	}
}

func TestMessage_Clone_EmptyBody(t *testing.T) {
	src := &Message{ID: 1, QueueID: 2}
	c := src.Clone(3)
	if len(c.Body) != 0 {
		t.Fatalf("clone of empty body has %d bytes", len(c.Body))
	}
}
