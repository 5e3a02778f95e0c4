// Subscription HTTP handlers.
//
// This file exposes REST endpoints for subscription resources:
//   - POST   /queues/{id}/subscriptions       (subscribe)
//   - GET    /queues/{id}/subscriptions       (list current, filterable)
//   - GET    /subscriptions/{id}              (fetch one, rules included)
//   - DELETE /subscriptions/{id}              (unsubscribe, soft delete)
//   - PUT    /subscriptions/{id}/categories   (replace the rule set)
package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/pkarvelas/go-mq-backend/internal/domain"
	"github.com/pkarvelas/go-mq-backend/internal/services"
)

//
// DTOs
//

// CategoryRule is one category pattern in a subscription's rule set.
//
// Patterns use SQL LIKE syntax: `%` matches any run of characters, `_` one
// character, and matching is case-insensitive. An exception rule inverts:
// the subscription accepts a category only when the pattern does NOT match.
type CategoryRule struct {
	// Pattern is the LIKE-style category pattern.
	Pattern string `json:"pattern" binding:"required,min=1" example:"orders.%"`
	// Exception inverts the rule.
	Exception bool `json:"exception" example:"false"`
}

// CreateSubscriptionRequest is the JSON payload for registering a subscription.
type CreateSubscriptionRequest struct {
	// SubscriberID identifies the consuming party.
	SubscriberID int64 `json:"subscriber_id" binding:"required,min=1" example:"7"`
	// Label optionally names the subscription for operators.
	Label string `json:"label" example:"billing-worker"`
	// Rules is the category rule set; empty accepts every category.
	Rules []CategoryRule `json:"rules"`
}

// ReplaceCategoriesRequest is the JSON payload for swapping a rule set.
type ReplaceCategoriesRequest struct {
	Rules []CategoryRule `json:"rules"`
}

// ListSubscriptionsResponse wraps a queue's current subscriptions.
type ListSubscriptionsResponse struct {
	Subscriptions []domain.Subscription `json:"subscriptions"`
}

func toRuleInputs(rules []CategoryRule) []services.RuleInput {
	out := make([]services.RuleInput, 0, len(rules))
	for _, r := range rules {
		out = append(out, services.RuleInput{Pattern: r.Pattern, Exception: r.Exception})
	}
	return out
}

//
// Handlers
//

// CreateSubscription godoc
// @ID          createSubscription
// @Summary     Subscribe to a queue
// @Description Registers a subscriber on the queue. From this point on, matching published
// @Description messages are cloned for this subscription. An empty rule set matches everything.
// @Tags        Subscriptions
// @Accept      json
// @Produce     json
//
// @Param       id    path  int  true  "Queue ID"  example(42)
// @Param       body  body  handlers.CreateSubscriptionRequest  true  "Subscription payload"
//
// @Success     201  {object}  domain.Subscription
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "Queue not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /queues/{id}/subscriptions [post]
func (h *Handlers) CreateSubscription(c *gin.Context) {
	queueID, okID := pathID(c, "id")
	if !okID {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "queue id must be a positive integer")
		return
	}

	var req CreateSubscriptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "subscriber_id required")
		return
	}

	sub, err := h.subSvc.Subscribe(c.Request.Context(), queueID, req.SubscriberID, req.Label, toRuleInputs(req.Rules))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrQueueNotFound):
			fail(c, http.StatusNotFound, ErrCodeNotFound, "queue not found")
		case errors.Is(err, services.ErrEmptyCategoryPattern):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "category patterns must be non-empty")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeCreateFailed, err.Error())
		}
		return
	}
	ok(c, http.StatusCreated, sub)
}

// ListSubscriptions godoc
// @ID          listSubscriptions
// @Summary     List a queue's subscriptions
// @Description Returns the queue's current (non-deleted) subscriptions. Optionally narrowed
// @Description to one subscriber and to those whose rules accept all given categories.
// @Tags        Subscriptions
// @Produce     json
//
// @Param       id             path   int     true  "Queue ID"                          example(42)
// @Param       subscriber_id  query  int     false "Restrict to one subscriber"
// @Param       category       query  string  false "Categories the rules must accept (repeatable)"
//
// @Success     200  {object}  handlers.ListSubscriptionsResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "Queue not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /queues/{id}/subscriptions [get]
func (h *Handlers) ListSubscriptions(c *gin.Context) {
	queueID, okID := pathID(c, "id")
	if !okID {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "queue id must be a positive integer")
		return
	}

	var categories []string
	for _, v := range c.QueryArray("category") {
		if v = strings.TrimSpace(v); v != "" {
			categories = append(categories, v)
		}
	}

	subs, err := h.subSvc.List(c.Request.Context(), queueID, optionalSubscriberID(c), categories)
	if err != nil {
		if errors.Is(err, services.ErrQueueNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "queue not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, err.Error())
		return
	}
	if subs == nil {
		subs = []domain.Subscription{}
	}
	ok(c, http.StatusOK, ListSubscriptionsResponse{Subscriptions: subs})
}

// GetSubscription godoc
// @ID          getSubscription
// @Summary     Fetch a subscription
// @Description Returns a subscription by id, category rules included. Soft-deleted
// @Description subscriptions remain retrievable.
// @Tags        Subscriptions
// @Produce     json
//
// @Param       id  path  int  true  "Subscription ID"  example(13)
//
// @Success     200  {object}  domain.Subscription
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "Subscription not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /subscriptions/{id} [get]
func (h *Handlers) GetSubscription(c *gin.Context) {
	id, okID := pathID(c, "id")
	if !okID {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "subscription id must be a positive integer")
		return
	}

	sub, err := h.subSvc.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrSubscriptionNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "subscription not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	ok(c, http.StatusOK, sub)
}

// DeleteSubscription godoc
// @ID          deleteSubscription
// @Summary     Unsubscribe
// @Description Soft-deletes a subscription. Copies already fanned out stay deliverable;
// @Description the subscription simply stops receiving new messages.
// @Tags        Subscriptions
// @Produce     json
//
// @Param       id  path  int  true  "Subscription ID"  example(13)
//
// @Success     204  {string}  string  "No Content"
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "Subscription not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /subscriptions/{id} [delete]
func (h *Handlers) DeleteSubscription(c *gin.Context) {
	id, okID := pathID(c, "id")
	if !okID {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "subscription id must be a positive integer")
		return
	}

	if err := h.subSvc.Unsubscribe(c.Request.Context(), id); err != nil {
		if errors.Is(err, services.ErrSubscriptionNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "subscription not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		return
	}
	noContent(c)
}

// ReplaceSubscriptionCategories godoc
// @ID          replaceSubscriptionCategories
// @Summary     Replace a subscription's category rules
// @Description Swaps the rule set wholesale. An empty rule set makes the subscription
// @Description accept every category again. Takes effect for subsequent publishes only.
// @Tags        Subscriptions
// @Accept      json
// @Produce     json
//
// @Param       id    path  int  true  "Subscription ID"  example(13)
// @Param       body  body  handlers.ReplaceCategoriesRequest  true  "New rule set"
//
// @Success     200  {object}  domain.Subscription
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "Subscription not found"
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /subscriptions/{id}/categories [put]
func (h *Handlers) ReplaceSubscriptionCategories(c *gin.Context) {
	id, okID := pathID(c, "id")
	if !okID {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "subscription id must be a positive integer")
		return
	}

	var req ReplaceCategoriesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	sub, err := h.subSvc.ReplaceRules(c.Request.Context(), id, toRuleInputs(req.Rules))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrSubscriptionNotFound):
			fail(c, http.StatusNotFound, ErrCodeNotFound, "subscription not found")
		case errors.Is(err, services.ErrEmptyCategoryPattern):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, "category patterns must be non-empty")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}
	ok(c, http.StatusOK, sub)
}
