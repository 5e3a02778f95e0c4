// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Queue model.
//
// All functions accept a context and a *gorm.DB handle, making them safe for
// use within transactions or connection-scoped operations. They follow the
// "thin repository" approach: no business logic, only CRUD persistence and
// query composition.
//
// Error semantics:
//   - When a queue is not found, functions return ErrNotFound (an alias of
//     gorm.ErrRecordNotFound).
//   - Inserting a queue whose name already exists returns ErrDuplicate.
//   - On other DB errors (connectivity, constraint violations), the raw gorm
//     error is propagated.
package repo

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/pkarvelas/go-mq-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// ErrDuplicate indicates a unique-constraint violation, e.g. creating a
// queue with a name that is already taken.
var ErrDuplicate = errors.New("duplicate")

// CreateQueue inserts a new queue with the given name. CreatedOn is set to
// UTC. A name collision is reported as ErrDuplicate.
func CreateQueue(ctx context.Context, db *gorm.DB, name string) (*domain.Queue, error) {
	q := &domain.Queue{
		Name:      name,
		CreatedOn: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(q).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return q, nil
}

// GetQueue fetches a queue by id, or ErrNotFound.
func GetQueue(ctx context.Context, db *gorm.DB, id int64) (*domain.Queue, error) {
	var q domain.Queue
	if err := db.WithContext(ctx).Where("id = ?", id).First(&q).Error; err != nil {
		return nil, err
	}
	return &q, nil
}

// GetQueueByName fetches a queue by its unique name, or ErrNotFound.
func GetQueueByName(ctx context.Context, db *gorm.DB, name string) (*domain.Queue, error) {
	var q domain.Queue
	if err := db.WithContext(ctx).Where("name = ?", name).First(&q).Error; err != nil {
		return nil, err
	}
	return &q, nil
}

// ListQueues returns all queues in creation (id) order.
func ListQueues(ctx context.Context, db *gorm.DB) ([]domain.Queue, error) {
	var out []domain.Queue
	err := db.WithContext(ctx).Order("id ASC").Find(&out).Error
	return out, err
}

// isUniqueViolation detects unique-constraint failures across drivers.
// glebarez/sqlite often returns plain-text errors for UNIQUE violations.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	low := strings.ToLower(err.Error())
	return strings.Contains(low, "unique constraint failed") ||
		strings.Contains(low, "constraint failed: unique") ||
		strings.Contains(low, "duplicate key")
}
