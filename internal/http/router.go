// Package httpapi assembles the broker's HTTP surface: the middleware chain,
// the route table, and the dependency injection from database to services to
// handlers.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/pkarvelas/go-mq-backend/internal/config"
	"github.com/pkarvelas/go-mq-backend/internal/domain"
	"github.com/pkarvelas/go-mq-backend/internal/http/handlers"
	"github.com/pkarvelas/go-mq-backend/internal/http/middleware"
	"github.com/pkarvelas/go-mq-backend/internal/repo"
	"github.com/pkarvelas/go-mq-backend/internal/services"
)

// queueRepoShim adapts the repository free functions to the services.QueueRepo
// interface expected by the QueueService. This keeps services decoupled from
// the concrete repo package while reusing existing functions.
type queueRepoShim struct{}

// CreateQueue proxies repo.CreateQueue.
func (queueRepoShim) CreateQueue(ctx context.Context, db *gorm.DB, name string) (*domain.Queue, error) {
	return repo.CreateQueue(ctx, db, name)
}

// GetQueue proxies repo.GetQueue.
func (queueRepoShim) GetQueue(ctx context.Context, db *gorm.DB, id int64) (*domain.Queue, error) {
	return repo.GetQueue(ctx, db, id)
}

// GetQueueByName proxies repo.GetQueueByName.
func (queueRepoShim) GetQueueByName(ctx context.Context, db *gorm.DB, name string) (*domain.Queue, error) {
	return repo.GetQueueByName(ctx, db, name)
}

// ListQueues proxies repo.ListQueues.
func (queueRepoShim) ListQueues(ctx context.Context, db *gorm.DB) ([]domain.Queue, error) {
	return repo.ListQueues(ctx, db)
}

// RegisterRoutes installs the middleware chain and mounts the versioned API
// under cfg.APIBasePath. Ordering is deliberate: tracing wraps everything,
// the request ID must exist before logging, recovery runs after the logger
// so panics carry request context, and the idempotency validator runs before
// the rate limiter so replayed publishes are not charged tokens.
func RegisterRoutes(r *gin.Engine, db *gorm.DB, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())

	// Transport-level cap; the service enforces the exact payload limit on
	// the decoded body. The factor of two covers base64 expansion.
	r.Use(limitBody(int64(cfg.MaxHeaderBytes) + int64(cfg.MaxBodyBytes)*2))

	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Message listings compress well: JSON envelopes around base64 bodies.
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	r.Use(middleware.IdempotencyValidator(
		middleware.IdempotencyOptions{
			MaxLen: 200,
		},
		func(ctx context.Context, senderID, queueID int64, key string, now time.Time) (bool, error) {
			rec, err := repo.GetIdempotency(ctx, db, senderID, queueID, key, now)
			if err != nil || rec == nil {
				return false, nil
			}
			return true, nil
		},
	))

	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyBySenderOrIP())
	r.Use(rl.Handler())

	corsAllowHeaders := []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Sender-ID", middleware.HeaderIdempotencyKey}
	corsExposeHeaders := []string{"X-Request-ID", "Idempotency-Replayed", "Content-Length"}
	if len(cfg.CORS.AllowedOrigins) == 0 {
		// No allowlist configured: open CORS. The explicit ACAO header also
		// covers requests that carry no Origin at all (health probes, curl).
		r.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     corsAllowHeaders,
			ExposeHeaders:    corsExposeHeaders,
			AllowCredentials: false, // must remain false with AllowAllOrigins
			MaxAge:           12 * time.Hour,
		}))
	} else {
		allowed := make(map[string]struct{}, len(cfg.CORS.AllowedOrigins))
		for _, o := range cfg.CORS.AllowedOrigins {
			allowed[o] = struct{}{}
		}
		// Echo the origin for allowlisted callers on top of gin-contrib/cors.
		r.Use(func(c *gin.Context) {
			if origin := c.GetHeader("Origin"); origin != "" {
				if _, ok := allowed[origin]; ok {
					h := c.Writer.Header()
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
			}
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     corsAllowHeaders,
			ExposeHeaders:    corsExposeHeaders,
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	}

	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      false,
		EnablePolicy: true,
	}))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Liveness/health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	// Swagger UI (opt-in; serves generated docs from the docs package)
	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Dependency injection: services ← repo/db
	queueSvc := services.NewQueueService(db, queueRepoShim{})
	msgSvc := &services.MessageService{
		DB:              db,
		DefaultLease:    cfg.DefaultLease,
		MaxLease:        cfg.MaxLease,
		MaxBodyBytes:    cfg.MaxBodyBytes,
		MaxReceiveBatch: cfg.ReceiveMaxBatch,
	}
	subSvc := services.NewSubscriptionService(db)
	h := handlers.New(queueSvc, msgSvc, subSvc)

	// Public API
	apiBase := cfg.APIBasePath // e.g. "/api/v1"
	api := groupWithPrefix(r, apiBase)
	{
		// Queues
		api.POST("/queues", h.CreateQueue)
		api.GET("/queues", h.ListQueues)
		api.GET("/queues/:id", h.GetQueue)

		// Messages
		api.POST("/queues/:id/messages", h.PublishMessage)
		api.GET("/queues/:id/messages", h.ListQueueMessages)
		api.POST("/queues/:id/receive", h.ReceiveMessages)
		api.GET("/messages/:id", h.GetMessage)
		api.POST("/messages/:id/ack", h.AckMessage)

		// Subscriptions
		api.POST("/queues/:id/subscriptions", h.CreateSubscription)
		api.GET("/queues/:id/subscriptions", h.ListSubscriptions)
		api.GET("/subscriptions/:id", h.GetSubscription)
		api.DELETE("/subscriptions/:id", h.DeleteSubscription)
		api.PUT("/subscriptions/:id/categories", h.ReplaceSubscriptionCategories)
	}
}

// limitBody returns a Gin middleware that caps the request body size for all
// endpoints to maxBytes using http.MaxBytesReader. Requests exceeding the cap
// will cause downstream body reads to error.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
