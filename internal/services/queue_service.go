// Package services – QueueService
//
// This file implements the QueueService, which manages the queue registry.
// It normalizes queue names into stable slugs, enforces uniqueness, and
// coordinates repository operations for creating, fetching, and listing
// queues. Service-level errors (e.g. ErrQueueExists) are returned for
// predictable cases so handlers can map them to HTTP results consistently.
package services

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/pkarvelas/go-mq-backend/internal/domain"
	"github.com/pkarvelas/go-mq-backend/internal/repo"
)

// QueueRepo defines the repository contract required by QueueService.
type QueueRepo interface {
	// CreateQueue inserts a new queue row with the given (normalized) name.
	CreateQueue(ctx context.Context, db *gorm.DB, name string) (*domain.Queue, error)

	// GetQueue fetches a queue by id.
	GetQueue(ctx context.Context, db *gorm.DB, id int64) (*domain.Queue, error)

	// GetQueueByName fetches a queue by its unique name.
	GetQueueByName(ctx context.Context, db *gorm.DB, name string) (*domain.Queue, error)

	// ListQueues returns all queues in creation order.
	ListQueues(ctx context.Context, db *gorm.DB) ([]domain.Queue, error)
}

// QueueService provides queue-registry operations. It enforces name rules
// and translates persistence errors into service sentinels.
type QueueService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Repo is the queue repository used by this service.
	Repo QueueRepo

	// NameMaxLen caps queue names by rune length.
	NameMaxLen int
}

// NewQueueService constructs a QueueService with the default name limit.
func NewQueueService(db *gorm.DB, r QueueRepo) *QueueService {
	return &QueueService{
		DB:         db,
		Repo:       r,
		NameMaxLen: 128,
	}
}

// Create registers a new queue under the normalized form of name.
func (s *QueueService) Create(ctx context.Context, name string) (*domain.Queue, error) {
	name = NormalizeQueueName(name)
	if name == "" {
		return nil, ErrEmptyQueueName
	}
	if s.NameMaxLen > 0 && utf8.RuneCountInString(name) > s.NameMaxLen {
		return nil, ErrQueueNameTooLong
	}
	q, err := s.Repo.CreateQueue(ctx, s.DB, name)
	if errors.Is(err, repo.ErrDuplicate) {
		return nil, ErrQueueExists
	}
	return q, err
}

// Get fetches a queue by id, mapping missing rows to ErrQueueNotFound.
func (s *QueueService) Get(ctx context.Context, id int64) (*domain.Queue, error) {
	q, err := s.Repo.GetQueue(ctx, s.DB, id)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrQueueNotFound
	}
	return q, err
}

// GetByName fetches a queue by its normalized name.
func (s *QueueService) GetByName(ctx context.Context, name string) (*domain.Queue, error) {
	q, err := s.Repo.GetQueueByName(ctx, s.DB, NormalizeQueueName(name))
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrQueueNotFound
	}
	return q, err
}

// List returns all queues.
func (s *QueueService) List(ctx context.Context) ([]domain.Queue, error) {
	return s.Repo.ListQueues(ctx, s.DB)
}

// NormalizeQueueName lowercases a queue name, trims it, and collapses runs
// of whitespace into single hyphens, producing a slug like "order-events".
func NormalizeQueueName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return whitespaceRE.ReplaceAllString(s, "-")
}

// whitespaceRE collapses consecutive whitespace.
var whitespaceRE = regexp.MustCompile(`\s+`)
