// Queue HTTP handlers.
//
// This file exposes REST endpoints for queue resources:
//   - POST /queues        (create)
//   - GET  /queues        (list)
//   - GET  /queues/{id}   (fetch one)
//
// It also defines the Handlers aggregate and the abstract service contracts
// the whole HTTP layer depends on. Handlers are transport-thin: they validate
// input, call application services, and translate results into HTTP responses.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/pkarvelas/go-mq-backend/internal/domain"
	"github.com/pkarvelas/go-mq-backend/internal/services"
	"github.com/pkarvelas/go-mq-backend/internal/utils"
)

//
// Service contracts (context-aware)
//

// QueueService defines queue registry operations consumed by HTTP handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type QueueService interface {
	// Create registers a new queue under a normalized name.
	Create(ctx context.Context, name string) (*domain.Queue, error)
	// Get fetches one queue by id.
	Get(ctx context.Context, id int64) (*domain.Queue, error)
	// GetByName fetches one queue by its normalized name.
	GetByName(ctx context.Context, name string) (*domain.Queue, error)
	// List returns all queues, oldest first.
	List(ctx context.Context) ([]domain.Queue, error)
}

// MessageService defines message lifecycle operations consumed by HTTP handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type MessageService interface {
	// Publish persists a message and fans it out to matching subscriptions.
	Publish(ctx context.Context, in services.PublishInput) (*services.PublishResult, error)
	// Receive reserves up to a batch of available messages under a lease.
	Receive(ctx context.Context, in services.ReceiveInput) ([]domain.Message, error)
	// Ack marks a delivered message as processed.
	Ack(ctx context.Context, messageID int64) error
	// Get fetches one message by id.
	Get(ctx context.Context, id int64) (*domain.Message, error)
	// ListPage browses a queue's messages by effective status, paginated.
	ListPage(ctx context.Context, queueID int64, statuses []domain.MessageStatus, subscriberID *int64, page, pageSize int) ([]domain.Message, int64, error)
}

// SubscriptionService defines subscription registry operations consumed by
// HTTP handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type SubscriptionService interface {
	// Subscribe registers a subscriber on a queue with an optional rule set.
	Subscribe(ctx context.Context, queueID, subscriberID int64, label string, rules []services.RuleInput) (*domain.Subscription, error)
	// Get fetches one subscription by id, rules included.
	Get(ctx context.Context, id int64) (*domain.Subscription, error)
	// List returns a queue's current subscriptions, optionally filtered.
	List(ctx context.Context, queueID int64, subscriberID *int64, categories []string) ([]domain.Subscription, error)
	// Unsubscribe soft-deletes a subscription.
	Unsubscribe(ctx context.Context, id int64) error
	// ReplaceRules swaps a subscription's category rule set.
	ReplaceRules(ctx context.Context, id int64, rules []services.RuleInput) (*domain.Subscription, error)
}

//
// Handler wiring
//

// Handlers groups HTTP endpoints for queues, messages, and subscriptions.
// It depends on abstract service interfaces to keep transport concerns
// separate from business logic.
type Handlers struct {
	queueSvc QueueService
	msgSvc   MessageService
	subSvc   SubscriptionService
}

// New constructs and returns a Handlers instance bound to the given services.
func New(queueSvc QueueService, msgSvc MessageService, subSvc SubscriptionService) *Handlers {
	return &Handlers{queueSvc: queueSvc, msgSvc: msgSvc, subSvc: subSvc}
}

// senderID extracts the calling producer/consumer id from Gin context (set by
// upstream middleware). If absent, it falls back to the "X-Sender-ID" header
// (tests use it), and finally to 0 (anonymous). It never touches c.Request if
// it's nil.
func senderID(c *gin.Context) int64 {
	if v, ok := c.Get("senderID"); ok {
		if n, ok := v.(int64); ok && n != 0 {
			return n
		}
	}
	if c != nil && c.Request != nil {
		if h := strings.TrimSpace(c.GetHeader("X-Sender-ID")); h != "" {
			return utils.Atoi64Default(h, 0)
		}
	}
	return 0
}

// pathID parses a numeric id path parameter; returns (0, false) on junk.
func pathID(c *gin.Context, name string) (int64, bool) {
	n := utils.Atoi64Default(strings.TrimSpace(c.Param(name)), -1)
	if n < 1 {
		return 0, false
	}
	return n, true
}

//
// DTOs
//

// CreateQueueRequest is the JSON payload for creating a queue.
type CreateQueueRequest struct {
	// Name is the queue name; it is normalized (lowercased, slugged) on create.
	Name string `json:"name" binding:"required,min=1" example:"orders"`
}

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// ListQueuesResponse wraps the full queue registry.
type ListQueuesResponse struct {
	Queues []domain.Queue `json:"queues"`
}

//
// Helpers
//

// clampPagination parses and bounds page and page_size query params to sane
// defaults and limits, returning (page, pageSize).
func clampPagination(c *gin.Context) (page, pageSize int) {
	const (
		defaultPage     = 1
		defaultPageSize = 20
		maxPageSize     = 100
	)
	page = utils.AtoiDefault(c.Query("page"), defaultPage)
	if page < 1 {
		page = 1
	}
	pageSize = utils.AtoiDefault(c.Query("page_size"), defaultPageSize)
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return
}

//
// Handlers
//

// CreateQueue godoc
// @ID          createQueue
// @Summary     Create a queue
// @Description Registers a named queue. Names are normalized (lowercased, whitespace slugged) and must be unique.
// @Tags        Queues
// @Accept      json
// @Produce     json
//
// @Param       body  body  handlers.CreateQueueRequest  true  "Create queue payload"
//
// @Success     201  {object}  domain.Queue
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     409  {object}  handlers.ErrorResponse  "Queue already exists"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /queues [post]
func (h *Handlers) CreateQueue(c *gin.Context) {
	var req CreateQueueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "name required")
		return
	}

	q, err := h.queueSvc.Create(c.Request.Context(), req.Name)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmptyQueueName), errors.Is(err, services.ErrQueueNameTooLong):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		case errors.Is(err, services.ErrQueueExists):
			fail(c, http.StatusConflict, ErrCodeConflict, "queue already exists")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeCreateFailed, err.Error())
		}
		return
	}
	ok(c, http.StatusCreated, q)
}

// ListQueues godoc
// @ID          listQueues
// @Summary     List queues
// @Description Returns all registered queues, oldest first.
// @Tags        Queues
// @Produce     json
//
// @Success     200  {object}  handlers.ListQueuesResponse
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /queues [get]
func (h *Handlers) ListQueues(c *gin.Context) {
	items, err := h.queueSvc.List(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, ListQueuesResponse{Queues: items})
}

// GetQueue godoc
// @ID          getQueue
// @Summary     Fetch a queue
// @Description Returns a queue by numeric id.
// @Tags        Queues
// @Produce     json
//
// @Param       id  path  int  true  "Queue ID"  example(42)
//
// @Success     200  {object}  domain.Queue
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "Queue not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /queues/{id} [get]
func (h *Handlers) GetQueue(c *gin.Context) {
	id, okID := pathID(c, "id")
	if !okID {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "queue id must be a positive integer")
		return
	}

	q, err := h.queueSvc.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrQueueNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "queue not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, q)
}

// parseLease reads a lease duration from a string like "30s" or "5m".
// Bare integers are taken as seconds. Empty input returns 0 (service default).
func parseLease(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d, nil
	}
	if n := utils.Atoi64Default(raw, -1); n >= 0 {
		return time.Duration(n) * time.Second, nil
	}
	return 0, errors.New("invalid lease duration")
}
