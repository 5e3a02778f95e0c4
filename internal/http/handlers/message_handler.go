// Message HTTP handlers.
//
// This file exposes REST endpoints for the message lifecycle:
//   - POST /queues/{id}/messages  (publish, with fan-out to subscriptions)
//   - POST /queues/{id}/receive   (reserve a batch under a lease)
//   - GET  /queues/{id}/messages  (browse by effective status, paginated, ETag)
//   - GET  /messages/{id}         (fetch one)
//   - POST /messages/{id}/ack     (acknowledge processing)
//
// Handlers are transport-thin:
//   - validate & normalize inputs (status filters, lease durations, batch sizes)
//   - delegate to application services (MessageService)
//   - implement conditional responses (ETag) and idempotency semantics
//
// Idempotency:
// If the client supplies an Idempotency-Key header and a previous successful
// publish exists for (sender, queue, key), the handler returns the recorded
// message and sets `Idempotency-Replayed: true`.
package handlers

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/pkarvelas/go-mq-backend/internal/domain"
	"github.com/pkarvelas/go-mq-backend/internal/repo"
	"github.com/pkarvelas/go-mq-backend/internal/services"
)

//
// DTOs
//

// PublishMessageRequest is the JSON payload for publishing a message.
//
// Body is base64-encoded on the wire so that arbitrary binary payloads
// survive JSON transport. MimeType defaults to application/octet-stream.
type PublishMessageRequest struct {
	// Body is the base64-encoded payload. Must be non-empty.
	Body string `json:"body" binding:"required,min=1" example:"eyJvcmRlcl9pZCI6IDQyfQ=="`
	// MimeType describes the payload; defaults to application/octet-stream.
	MimeType string `json:"mime_type" example:"application/json"`
	// Categories narrow fan-out to subscriptions matching all of them.
	Categories []string `json:"categories" example:"orders.created"`
	// SubscriptionID addresses the message to one subscription, skipping fan-out.
	SubscriptionID *int64 `json:"subscription_id"`
}

// PublishMessageResponse is the JSON envelope for a published message.
type PublishMessageResponse struct {
	// Message is the persisted original.
	Message *domain.Message `json:"message"`
	// Copies is how many fan-out copies were materialized.
	Copies int `json:"copies"`
}

// ReceiveMessagesRequest is the JSON payload for a consumer poll.
type ReceiveMessagesRequest struct {
	// SubscriberID selects addressed delivery; omit to poll the queue-level stream.
	SubscriberID *int64 `json:"subscriber_id"`
	// Lease is the reservation duration, e.g. "30s"; bare integers mean seconds.
	Lease string `json:"lease" example:"30s"`
	// Max is the batch size (default 1).
	Max int `json:"max" example:"10"`
}

// ReceiveMessagesResponse contains the reserved batch.
type ReceiveMessagesResponse struct {
	Messages []domain.Message `json:"messages"`
}

// ListQueueMessagesResponse contains a page of messages and pagination metadata.
type ListQueueMessagesResponse struct {
	Messages   []domain.Message `json:"messages"`
	Pagination Pagination       `json:"pagination"`
}

//
// Helpers
//

// parseStatuses turns a comma-separated status filter ("available,reserved")
// into domain statuses. Empty input defaults to available only.
func parseStatuses(raw string) ([]domain.MessageStatus, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return []domain.MessageStatus{domain.StatusAvailable}, nil
	}
	parts := strings.Split(raw, ",")
	out := make([]domain.MessageStatus, 0, len(parts))
	for _, p := range parts {
		st, err := domain.ParseStatus(strings.TrimSpace(p))
		if err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, nil
}

// optionalSubscriberID reads the subscriber query parameter, if present.
func optionalSubscriberID(c *gin.Context) *int64 {
	raw := strings.TrimSpace(c.Query("subscriber_id"))
	if raw == "" {
		return nil
	}
	var n int64
	if _, err := fmt.Sscanf(raw, "%d", &n); err != nil || n < 1 {
		return nil
	}
	return &n
}

//
// Handlers
//

// PublishMessage godoc
// @ID          publishMessage
// @Summary     Publish a message
// @Description Persists a message on the queue and clones a copy for every current subscription whose category rules accept it.
// @Description Supports idempotency via the Idempotency-Key header (same key → same result).
// @Tags        Messages
// @Accept      json
// @Produce     json
//
// @Param       X-Sender-ID      header  int     false "Producer ID"  example(7)
// @Param       Idempotency-Key  header  string  false "Idempotency key for safe retries (UUID recommended)"  example(7a8d9f4c-1b2a-4c3d-8e9f-0123456789ab)
// @Param       id               path    int     true  "Queue ID"     example(42)
// @Param       body             body    handlers.PublishMessageRequest  true  "Message payload"
//
// @Success     201  {object}  handlers.PublishMessageResponse  "Published message"
// @Failure     400  {object}  handlers.ErrorResponse           "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse           "Queue not found"
// @Failure     413  {object}  handlers.ErrorResponse           "Payload too large"
// @Failure     500  {object}  handlers.ErrorResponse           "Internal error"
// @Router      /queues/{id}/messages [post]
func (h *Handlers) PublishMessage(c *gin.Context) {
	ctx := c.Request.Context()

	queueID, okID := pathID(c, "id")
	if !okID {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "queue id must be a positive integer")
		return
	}

	var req PublishMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "body required")
		return
	}
	payload, err := base64.StdEncoding.DecodeString(req.Body)
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "body must be base64-encoded")
		return
	}
	if len(payload) == 0 {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "body required")
		return
	}

	currentSender := senderID(c)

	// Idempotency (replay path) – read validated key if present.
	idemKey := strings.TrimSpace(c.GetHeader("Idempotency-Key"))
	if idemKey != "" {
		if svc, okSvc := h.msgSvc.(*services.MessageService); okSvc && svc.DB != nil {
			if rec, err := repo.GetIdempotency(ctx, svc.DB, currentSender, queueID, idemKey, time.Now().UTC()); err == nil && rec != nil {
				if prev, err2 := repo.GetMessage(ctx, svc.DB, rec.MessageID); err2 == nil {
					c.Header("Idempotency-Replayed", "true")
					ok(c, http.StatusCreated, PublishMessageResponse{Message: prev})
					return
				}
			}
		}
	}

	res, err := h.msgSvc.Publish(ctx, services.PublishInput{
		QueueID:        queueID,
		SenderID:       currentSender,
		MimeType:       req.MimeType,
		Body:           payload,
		Categories:     req.Categories,
		SubscriptionID: req.SubscriptionID,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrQueueNotFound):
			fail(c, http.StatusNotFound, ErrCodeNotFound, "queue not found")
		case errors.Is(err, services.ErrSubscriptionNotFound):
			fail(c, http.StatusNotFound, ErrCodeNotFound, "subscription not found")
		case errors.Is(err, services.ErrSubscriptionMismatch):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "subscription belongs to another queue")
		case errors.Is(err, services.ErrBodyTooLarge):
			fail(c, http.StatusRequestEntityTooLarge, ErrCodeBadRequest, "payload too large")
		default:
			fail(c, http.StatusInternalServerError, ErrCodePublishFailed, err.Error())
		}
		return
	}

	// Idempotency (store path) – best effort.
	if idemKey != "" {
		if svc, okSvc := h.msgSvc.(*services.MessageService); okSvc && svc.DB != nil {
			ttl := 24 * time.Hour
			_, _ = repo.CreateIdempotency(ctx, svc.DB, currentSender, queueID, idemKey, res.Message.ID, http.StatusCreated, ttl)
		}
	}

	ok(c, http.StatusCreated, PublishMessageResponse{Message: res.Message, Copies: res.Copies})
}

// ReceiveMessages godoc
// @ID          receiveMessages
// @Summary     Receive (reserve) messages
// @Description Reserves up to `max` available messages under a lease. Reserved messages become
// @Description invisible to other consumers until acknowledged or the lease lapses, after which
// @Description they are redelivered. An empty list means nothing is available right now.
// @Tags        Messages
// @Accept      json
// @Produce     json
//
// @Param       id    path  int  true  "Queue ID"  example(42)
// @Param       body  body  handlers.ReceiveMessagesRequest  true  "Receive parameters"
//
// @Success     200  {object}  handlers.ReceiveMessagesResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "Queue not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /queues/{id}/receive [post]
func (h *Handlers) ReceiveMessages(c *gin.Context) {
	queueID, okID := pathID(c, "id")
	if !okID {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "queue id must be a positive integer")
		return
	}

	var req ReceiveMessagesRequest
	if c.Request.Body != nil && c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
			return
		}
	}

	lease, err := parseLease(req.Lease)
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid lease duration")
		return
	}

	msgs, err := h.msgSvc.Receive(c.Request.Context(), services.ReceiveInput{
		QueueID:      queueID,
		SubscriberID: req.SubscriberID,
		Lease:        lease,
		Max:          req.Max,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrQueueNotFound):
			fail(c, http.StatusNotFound, ErrCodeNotFound, "queue not found")
		case errors.Is(err, services.ErrInvalidLease):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid lease duration")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeReceiveFailed, err.Error())
		}
		return
	}
	if msgs == nil {
		msgs = []domain.Message{}
	}
	ok(c, http.StatusOK, ReceiveMessagesResponse{Messages: msgs})
}

// AckMessage godoc
// @ID          ackMessage
// @Summary     Acknowledge a message
// @Description Marks a delivered message as processed. Acknowledging an already-acknowledged
// @Description message is a no-op and still returns 204.
// @Tags        Messages
// @Produce     json
//
// @Param       id  path  int  true  "Message ID"  example(1001)
//
// @Success     204  {string}  string  "No Content"
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "Message not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /messages/{id}/ack [post]
func (h *Handlers) AckMessage(c *gin.Context) {
	id, okID := pathID(c, "id")
	if !okID {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "message id must be a positive integer")
		return
	}

	if err := h.msgSvc.Ack(c.Request.Context(), id); err != nil {
		if errors.Is(err, services.ErrMessageNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "message not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeAckFailed, err.Error())
		return
	}
	noContent(c)
}

// GetMessage godoc
// @ID          getMessage
// @Summary     Fetch a message
// @Description Returns a message by id, regardless of status.
// @Tags        Messages
// @Produce     json
//
// @Param       id  path  int  true  "Message ID"  example(1001)
//
// @Success     200  {object}  domain.Message
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "Message not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /messages/{id} [get]
func (h *Handlers) GetMessage(c *gin.Context) {
	id, okID := pathID(c, "id")
	if !okID {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "message id must be a positive integer")
		return
	}

	m, err := h.msgSvc.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrMessageNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "message not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, m)
}

// ListQueueMessages godoc
// @ID          listQueueMessages
// @Summary     Browse queue messages
// @Description Returns a paginated page of a queue's messages filtered by effective status
// @Description (comma-separated: available, reserved, deleted; default available). Supports
// @Description weak ETag via If-None-Match and may return 304.
// @Tags        Messages
// @Produce     json
//
// @Param       id             path   int     true  "Queue ID"                      example(42)
// @Param       status         query  string  false "Status filter (comma-separated)" example(available,reserved)
// @Param       subscriber_id  query  int     false "Restrict to one subscriber's copies"
// @Param       page           query  int     false "Page number"     minimum(1) default(1)
// @Param       page_size      query  int     false "Items per page"  minimum(1) maximum(100) default(20)
//
// @Success     200  {object}  handlers.ListQueueMessagesResponse
// @Header      200  {string}  ETag  "Weak ETag for current result"
// @Success     304  {string}  string "Not Modified"
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "Queue not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /queues/{id}/messages [get]
func (h *Handlers) ListQueueMessages(c *gin.Context) {
	ctx := c.Request.Context()

	queueID, okID := pathID(c, "id")
	if !okID {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "queue id must be a positive integer")
		return
	}

	statuses, err := parseStatuses(c.Query("status"))
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "unknown status in filter")
		return
	}

	// ETag pre-check (best effort). Keyed on row count and max id so any
	// publish invalidates it; status transitions are deliberately excluded
	// since browse results depend on time-derived visibility anyway.
	var db *gorm.DB
	if svc, okSvc := h.msgSvc.(*services.MessageService); okSvc {
		db = svc.DB
	}
	if db != nil {
		count, maxID, err := repo.MessagesStats(ctx, db, queueID)
		if err == nil {
			etag := fmt.Sprintf(`W/"messages:%d:%d:%d"`, queueID, count, maxID)
			c.Header("ETag", etag)
			if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
				c.Status(http.StatusNotModified)
				return
			}
		}
	}

	page, pageSize := clampPagination(c)

	items, total, err := h.msgSvc.ListPage(ctx, queueID, statuses, optionalSubscriberID(c), page, pageSize)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrQueueNotFound):
			fail(c, http.StatusNotFound, ErrCodeNotFound, "queue not found")
		case errors.Is(err, services.ErrInvalidStatusFilter):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid status filter")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		}
		return
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	ok(c, http.StatusOK, ListQueueMessagesResponse{
		Messages: items,
		Pagination: Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
		},
	})
}
