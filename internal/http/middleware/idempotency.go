// Package middleware contains shared Gin middleware used by the HTTP layer.
package middleware

import (
	"context"
	"net/http"
	"regexp"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// HeaderIdempotencyKey is the request header producers send so that retried
// publishes are deduplicated instead of enqueued twice.
const HeaderIdempotencyKey = "Idempotency-Key"

// Context keys stashed by IdempotencyValidator; read via the accessors below.
const (
	ctxKeyIdemKey    = "idem.key"
	ctxKeyIdemReplay = "idem.replay"
	ctxKeyRateBypass = "rate.bypass" // replayed requests skip rate limiting
)

// GetIdempotencyKey returns the validated key for this request. Handlers use
// this instead of reading the header so they only ever see validated values.
func GetIdempotencyKey(c *gin.Context) (string, bool) {
	v, ok := c.Get(ctxKeyIdemKey)
	if !ok {
		return "", false
	}
	s, _ := v.(string)
	return s, s != ""
}

// IsReplay reports whether this request matches a previously completed
// publish for the same (sender, queue, key) tuple.
func IsReplay(c *gin.Context) bool {
	v, ok := c.Get(ctxKeyIdemReplay)
	if !ok {
		return false
	}
	b, _ := v.(bool)
	return b
}

// IdempotencyOptions configures header validation. TTL enforcement lives in
// the lookup, not here.
type IdempotencyOptions struct {
	// MaxLen caps the accepted key length; <= 0 defaults to 200.
	MaxLen int
	// Pattern restricts allowed characters. Nil uses a token pattern of
	// letters, digits, and ._~-: which covers UUIDs and ULIDs.
	Pattern *regexp.Regexp
}

// IdempotencyLookup answers whether a still-valid publish record exists for
// (senderID, queueID, key) at now. Lookup failures must return an error
// rather than a false positive; the middleware treats errors as "no replay".
type IdempotencyLookup func(ctx context.Context, senderID, queueID int64, key string, now time.Time) (exists bool, err error)

// IdempotencyValidator validates the Idempotency-Key header when present,
// stashes it in the context, and consults the lookup to flag replays.
// Requests without the header pass through untouched; invalid keys get a
// 400 before any handler runs. The middleware never serves the cached
// response itself; the publish handler decides how to answer a replay.
func IdempotencyValidator(opts IdempotencyOptions, lookup IdempotencyLookup) gin.HandlerFunc {
	maxLen := opts.MaxLen
	if maxLen <= 0 {
		maxLen = 200
	}
	pat := opts.Pattern
	if pat == nil {
		pat = regexp.MustCompile(`^[A-Za-z0-9._~\-:]+$`)
	}

	return func(c *gin.Context) {
		key := c.GetHeader(HeaderIdempotencyKey)
		if key == "" {
			c.Next()
			return
		}
		if len(key) > maxLen || !pat.MatchString(key) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"code":    "bad_idempotency_key",
				"message": "invalid Idempotency-Key",
			})
			return
		}

		c.Set(ctxKeyIdemKey, key)

		if lookup != nil {
			// Publish routes carry the queue in :id.
			queueID, _ := strconv.ParseInt(c.Param("id"), 10, 64)
			now := time.Now().UTC()
			if exists, _ := lookup(c.Request.Context(), senderIDFromCtx(c), queueID, key, now); exists {
				c.Set(ctxKeyIdemReplay, true)
				c.Set(ctxKeyRateBypass, true)
			}
		}

		c.Next()
	}
}

// senderIDFromCtx resolves the producer identity: the context value set by
// identity middleware wins, then the X-Sender-ID header, then 0 (anonymous).
func senderIDFromCtx(c *gin.Context) int64 {
	if v, ok := c.Get("senderID"); ok {
		if n, ok := v.(int64); ok && n != 0 {
			return n
		}
	}
	if h := c.GetHeader("X-Sender-ID"); h != "" {
		if n, err := strconv.ParseInt(h, 10, 64); err == nil {
			return n
		}
	}
	return 0
}
