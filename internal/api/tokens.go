package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"solana-token-info/internal/solana"
	"solana-token-info/internal/token"
)

// MaxBatchSize bounds the number of addresses in one POST /tokens request.
const MaxBatchSize = 100

// TokenHandler handles token report requests.
type TokenHandler struct {
	agg         Aggregator
	concurrency int
	logger      *zap.Logger
}

// NewTokenHandler creates a new TokenHandler.
func NewTokenHandler(agg Aggregator, concurrency int, logger *zap.Logger) *TokenHandler {
	return &TokenHandler{agg: agg, concurrency: concurrency, logger: logger}
}

// BatchRequest is the body of POST /tokens.
type BatchRequest struct {
	Addresses []string `json:"addresses"`
}

// BatchItem is one element of the POST /tokens response.
type BatchItem struct {
	Address   string `json:"address"`
	Outcome   string `json:"outcome"`
	Report    string `json:"report,omitempty"`
	Error     string `json:"error,omitempty"`
	ElapsedMS int64  `json:"elapsed_ms"`
}

// Get returns the text report for one token.
// GET /tokens/:address
func (h *TokenHandler) Get(c *gin.Context) {
	addr, err := solana.ParsePublicKey(c.Param("address"))
	if err != nil {
		c.String(http.StatusBadRequest, err.Error()+"\n")
		return
	}

	report, err := h.agg.Aggregate(c.Request.Context(), addr)
	if err != nil {
		h.logger.Warn("Aggregation failed", zap.Stringer("address", addr), zap.Error(err))
		c.String(http.StatusBadGateway, err.Error()+"\n")
		return
	}

	c.String(http.StatusOK, report.String())
}

// Batch aggregates several tokens. Invalid addresses are reported per item.
// POST /tokens
func (h *TokenHandler) Batch(c *gin.Context) {
	var req BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	if len(req.Addresses) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "addresses must not be empty"})
		return
	}
	if len(req.Addresses) > MaxBatchSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "too many addresses"})
		return
	}

	items := make([]BatchItem, len(req.Addresses))
	var (
		valid   []solana.PublicKey
		indices []int
	)
	for i, raw := range req.Addresses {
		items[i].Address = raw
		addr, err := solana.ParsePublicKey(raw)
		if err != nil {
			items[i].Outcome = token.OutcomeFailed
			items[i].Error = err.Error()
			continue
		}
		valid = append(valid, addr)
		indices = append(indices, i)
	}

	results := h.agg.AggregateAll(c.Request.Context(), valid, h.concurrency)
	for j, res := range results {
		item := &items[indices[j]]
		item.ElapsedMS = res.Elapsed.Milliseconds()
		if res.Err != nil {
			item.Outcome = token.OutcomeFailed
			item.Error = res.Err.Error()
			continue
		}
		item.Outcome = res.Report.Outcome()
		item.Report = res.Report.String()
	}

	c.JSON(http.StatusOK, items)
}
