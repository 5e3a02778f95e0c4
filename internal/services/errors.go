// Package services defines the business logic for queues, messages, and
// subscriptions. This file centralizes common service-level error values so
// that they can be consistently returned by service methods and checked by
// callers.
//
// These errors are intended for internal use by the service layer; translation
// into user-facing messages or HTTP status codes is performed at the
// handler layer.
package services

import "errors"

// Queue-related errors.
var (
	// ErrQueueNotFound indicates that the requested queue does not exist.
	ErrQueueNotFound = errors.New("queue not found")

	// ErrQueueExists is returned when creating a queue whose name is taken.
	ErrQueueExists = errors.New("queue already exists")

	// ErrEmptyQueueName is returned when a queue name normalizes to "".
	ErrEmptyQueueName = errors.New("queue name is empty")

	// ErrQueueNameTooLong is returned when a queue name exceeds the limit.
	ErrQueueNameTooLong = errors.New("queue name too long")
)

// Message-related errors.
var (
	// ErrMessageNotFound indicates that the requested message does not exist.
	ErrMessageNotFound = errors.New("message not found")

	// ErrBodyTooLarge is returned when a published body exceeds the
	// configured size cap.
	ErrBodyTooLarge = errors.New("message body too large")

	// ErrInvalidLease is returned when a requested reservation lease is
	// negative or exceeds the configured maximum.
	ErrInvalidLease = errors.New("invalid lease duration")

	// ErrInvalidStatusFilter is returned when a browse request carries an
	// empty or unknown status set. An empty set is rejected rather than
	// treated as unconstrained.
	ErrInvalidStatusFilter = errors.New("invalid status filter")
)

// Subscription-related errors.
var (
	// ErrSubscriptionNotFound indicates that the requested subscription does
	// not exist (or, for publish targets, is soft-deleted).
	ErrSubscriptionNotFound = errors.New("subscription not found")

	// ErrSubscriptionMismatch is returned when a directly addressed publish
	// names a subscription belonging to a different queue.
	ErrSubscriptionMismatch = errors.New("subscription belongs to another queue")

	// ErrEmptyCategoryPattern is returned when a category rule has a blank
	// pattern.
	ErrEmptyCategoryPattern = errors.New("category pattern is empty")
)
