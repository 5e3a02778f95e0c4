// Package visibility translates logical message-status requests into store
// predicates.
//
// The stored status column is coarse: a RESERVED row whose lease has lapsed
// is *effectively* AVAILABLE again, without any write ever marking it so.
// This package owns that derived-state arithmetic. Given a set of requested
// logical statuses and a single wall-clock instant, it produces a composable
// GORM clause expression:
//
//	AVAILABLE ⇒ status = available OR (status = reserved AND times_out_on <= now)
//	RESERVED  ⇒ status = reserved AND times_out_on > now
//	DELETED   ⇒ status = deleted
//
// with the requested statuses OR'd together. Two unions collapse to cheaper
// forms: {AVAILABLE, RESERVED} — the overwhelmingly common "not yet deleted"
// request — becomes status != deleted, and the full set becomes no predicate
// at all. The same `now` must be reused for every timeout comparison within
// one query so the snapshot is consistent; callers pass it in UTC.
package visibility

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm/clause"

	"github.com/pkarvelas/go-mq-backend/internal/domain"
)

// Column names in the messages table referenced by the predicates.
const (
	colStatus     = "status"
	colTimesOutOn = "times_out_on"
)

// ErrEmptyStatusSet is returned when no statuses are requested. An empty
// request most naturally means "give me nothing", which is never what a
// caller intends, so it fails fast instead of silently matching everything.
var ErrEmptyStatusSet = errors.New("visibility: empty status set")

// Normalize validates and deduplicates a requested status set, returning the
// member flags. Unknown statuses are a configuration error at call time.
func Normalize(statuses []domain.MessageStatus) (available, reserved, deleted bool, err error) {
	if len(statuses) == 0 {
		return false, false, false, ErrEmptyStatusSet
	}
	for _, s := range statuses {
		switch s {
		case domain.StatusAvailable:
			available = true
		case domain.StatusReserved:
			reserved = true
		case domain.StatusDeleted:
			deleted = true
		default:
			return false, false, false, fmt.Errorf("visibility: invalid message status %d", int(s))
		}
	}
	return available, reserved, deleted, nil
}

// Predicate builds the store predicate selecting messages whose *effective*
// status at the instant now is one of the requested statuses.
//
// The returned expression is nil (no constraint) when all three statuses are
// requested. The caller is responsible for computing now once per query and
// reusing it for any related comparisons.
func Predicate(statuses []domain.MessageStatus, now time.Time) (clause.Expression, error) {
	available, reserved, deleted, err := Normalize(statuses)
	if err != nil {
		return nil, err
	}

	switch {
	case available && reserved && deleted:
		// Unconstrained.
		return nil, nil
	case available && reserved:
		// Anything not deleted is either available or within/past a lease;
		// the general expansion below would OR two overlapping branches.
		return clause.Neq{Column: colStatus, Value: domain.StatusDeleted}, nil
	}

	now = now.UTC()
	var exprs []clause.Expression
	if available {
		exprs = append(exprs, clause.Or(
			clause.Eq{Column: colStatus, Value: domain.StatusAvailable},
			clause.And(
				clause.Eq{Column: colStatus, Value: domain.StatusReserved},
				clause.Lte{Column: colTimesOutOn, Value: now},
			),
		))
	}
	if reserved {
		exprs = append(exprs, clause.And(
			clause.Eq{Column: colStatus, Value: domain.StatusReserved},
			clause.Gt{Column: colTimesOutOn, Value: now},
		))
	}
	if deleted {
		exprs = append(exprs, clause.Eq{Column: colStatus, Value: domain.StatusDeleted})
	}

	if len(exprs) == 1 {
		// Wrap so a nested OR keeps its parentheses when AND'ed with the
		// caller's queue/subscriber filters.
		return clause.And(exprs[0]), nil
	}
	return clause.And(clause.Or(exprs...)), nil
}
