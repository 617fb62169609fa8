// Package api exposes token aggregation over HTTP.
package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"solana-token-info/internal/solana"
	"solana-token-info/internal/token"
)

// Aggregator is the subset of token.Aggregator used by the handlers.
type Aggregator interface {
	Aggregate(ctx context.Context, addr solana.PublicKey) (*token.Report, error)
	AggregateAll(ctx context.Context, addrs []solana.PublicKey, concurrency int) []token.Result
}

// Router wraps the Gin engine with the token handlers.
type Router struct {
	engine  *gin.Engine
	tokens  *TokenHandler
	metrics http.Handler
	logger  *zap.Logger
}

// NewRouter creates a Router. metrics may be nil to disable /metrics.
func NewRouter(agg Aggregator, concurrency int, metrics http.Handler, logger *zap.Logger) *Router {
	gin.SetMode(gin.ReleaseMode)
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.Named("api")

	r := &Router{
		engine:  gin.New(),
		tokens:  NewTokenHandler(agg, concurrency, logger),
		metrics: metrics,
		logger:  logger,
	}

	r.setupMiddleware()
	r.setupRoutes()

	return r
}

func (r *Router) setupMiddleware() {
	r.engine.Use(Recovery(r.logger))
	r.engine.Use(Logger(r.logger))
}

func (r *Router) setupRoutes() {
	r.engine.GET("/health", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	if r.metrics != nil {
		r.engine.GET("/metrics", gin.WrapH(r.metrics))
	}

	tokens := r.engine.Group("/tokens")
	{
		tokens.GET("/:address", r.tokens.Get)
		tokens.POST("", r.tokens.Batch)
	}
}

// Handler returns the router as an http.Handler.
func (r *Router) Handler() http.Handler {
	return r.engine
}
