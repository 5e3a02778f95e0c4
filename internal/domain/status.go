package domain

import (
	"fmt"
	"time"
)

// MessageStatus is the stored lifecycle status of a message row.
//
// The stored value is deliberately coarse: a RESERVED message whose lease has
// lapsed is still stored as RESERVED but is *observed* as AVAILABLE by the
// visibility layer. See Message.EffectiveStatus.
type MessageStatus int

const (
	// StatusAvailable marks a message that may be reserved by any consumer.
	StatusAvailable MessageStatus = 1
	// StatusReserved marks a message claimed by a consumer under a lease.
	StatusReserved MessageStatus = 2
	// StatusDeleted marks an acknowledged message. Terminal; the row is
	// retained as an audit trail (soft delete).
	StatusDeleted MessageStatus = 3
)

// Valid reports whether s is one of the three known statuses.
func (s MessageStatus) Valid() bool {
	switch s {
	case StatusAvailable, StatusReserved, StatusDeleted:
		return true
	}
	return false
}

// String returns the lowercase name used in logs and API payloads.
func (s MessageStatus) String() string {
	switch s {
	case StatusAvailable:
		return "available"
	case StatusReserved:
		return "reserved"
	case StatusDeleted:
		return "deleted"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// ParseStatus maps an API status name to its MessageStatus value.
func ParseStatus(name string) (MessageStatus, error) {
	switch name {
	case "available":
		return StatusAvailable, nil
	case "reserved":
		return StatusReserved, nil
	case "deleted":
		return StatusDeleted, nil
	}
	return 0, fmt.Errorf("unknown message status %q", name)
}

// EffectiveStatus computes the logically observed status of m at the given
// instant. A RESERVED message whose lease timeout has elapsed is effectively
// AVAILABLE (redeliverable); the stored row is never rewritten on lapse.
func (m *Message) EffectiveStatus(now time.Time) MessageStatus {
	if m.Status == StatusReserved && m.TimesOutOn != nil && !m.TimesOutOn.After(now) {
		return StatusAvailable
	}
	return m.Status
}
