package domain

import (
	"testing"
	"time"
)

func TestMessageStatus_Valid(t *testing.T) {
	for _, s := range []MessageStatus{StatusAvailable, StatusReserved, StatusDeleted} {
		if !s.Valid() {
			t.Fatalf("expected %v to be valid", s)
		}
	}
	for _, s := range []MessageStatus{0, 4, -1} {
		if s.Valid() {
			t.Fatalf("expected %d to be invalid", int(s))
		}
	}
}

func TestMessageStatus_String(t *testing.T) {
	cases := map[MessageStatus]string{
		StatusAvailable: "available",
		StatusReserved:  "reserved",
		StatusDeleted:   "deleted",
	}
	for s, want := range cases {
		if got := s.String(); got != want {
			t.Fatalf("String(%d) = %q, want %q", int(s), got, want)
		}
	}
	if got := MessageStatus(7).String(); got != "status(7)" {
		t.Fatalf("unknown status String = %q", got)
	}
}

func TestParseStatus(t *testing.T) {
	for name, want := range map[string]MessageStatus{
		"available": StatusAvailable,
		"reserved":  StatusReserved,
		"deleted":   StatusDeleted,
	} {
		got, err := ParseStatus(name)
		if err != nil {
			t.Fatalf("ParseStatus(%q) error: %v", name, err)
		}
		if got != want {
			t.Fatalf("ParseStatus(%q) = %v, want %v", name, got, want)
		}
	}
	if _, err := ParseStatus("AVAILABLE"); err == nil {
		t.Fatal("expected error for unknown status name")
	}
	if _, err := ParseStatus(""); err == nil {
		t.Fatal("expected error for empty status name")
	}
}

func TestMessage_EffectiveStatus(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Minute)
	future := now.Add(time.Minute)

	tests := []struct {
		name string
		msg  Message
		want MessageStatus
	}{
		{"available stays available", Message{Status: StatusAvailable}, StatusAvailable},
		{"deleted stays deleted", Message{Status: StatusDeleted, DeletedOn: &past}, StatusDeleted},
		{"reserved within lease", Message{Status: StatusReserved, TimesOutOn: &future}, StatusReserved},
		{"reserved with lapsed lease", Message{Status: StatusReserved, TimesOutOn: &past}, StatusAvailable},
		{"reserved at exact expiry", Message{Status: StatusReserved, TimesOutOn: &now}, StatusAvailable},
		{"reserved with nil timeout", Message{Status: StatusReserved}, StatusReserved},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.msg.EffectiveStatus(now); got != tc.want {
				t.Fatalf("EffectiveStatus = %v, want %v", got, tc.want)
			}
		})
	}
}
