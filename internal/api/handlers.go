// Package api exposes the token cache, quotes and amount formatting over
// HTTP.
package api

import (
	"context"
	"errors"
	"math/big"
	"net/http"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"tokenScope/internal/amount"
	"tokenScope/internal/exchange"
	"tokenScope/internal/model"
	"tokenScope/internal/pricing"
	"tokenScope/internal/tokens"
)

// TokenStore is the part of cache.Store the handlers use.
type TokenStore interface {
	GetAll(networkID uint64, requireTradable bool) map[common.Address]model.TokenRecord
	IsFetching(networkID uint64) bool
	ResolveToken(ctx context.Context, networkID uint64, token common.Address) (model.TokenRecord, error)
	Refresh(ctx context.Context, networkID uint64) bool
}

type Quoter interface {
	Quote(ctx context.Context, direction pricing.Direction, amount *big.Int, in, out model.TokenRecord) (pricing.Quote, error)
}

type Handler struct {
	store    TokenStore
	quoter   Quoter
	networks map[uint64]struct{}
	fallback uint64
	// refreshCtx outlives requests so refreshes started over HTTP finish.
	refreshCtx context.Context
	metrics    *Metrics
	logger     *zap.Logger
}

// NewHandler serves the given networks; the first one is used when a quote
// request names none.
func NewHandler(ctx context.Context, store TokenStore, quoter Quoter, networks []uint64, metrics *Metrics, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Handler{
		store:      store,
		quoter:     quoter,
		networks:   make(map[uint64]struct{}, len(networks)),
		refreshCtx: ctx,
		metrics:    metrics,
		logger:     logger,
	}
	for i, id := range networks {
		if i == 0 {
			h.fallback = id
		}
		h.networks[id] = struct{}{}
	}
	return h
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.Health)
	r.GET("/format", h.Format)
	r.POST("/quote", h.Quote)

	networks := r.Group("/networks/:network")
	networks.GET("/tokens", h.ListTokens)
	networks.GET("/tokens/:address", h.GetToken)
	networks.GET("/fetching", h.Fetching)
	networks.POST("/refresh", h.Refresh)
}

func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) network(c *gin.Context, input string) (uint64, bool) {
	if input == "" {
		return h.fallback, true
	}
	id, err := model.ParseNetwork(input)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return 0, false
	}
	if _, ok := h.networks[id]; !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": tokens.ErrUnknownNetwork.Error()})
		return 0, false
	}
	return id, true
}

// ListTokens returns the cached tokens of a network sorted by symbol.
func (h *Handler) ListTokens(c *gin.Context) {
	networkID, ok := h.network(c, c.Param("network"))
	if !ok {
		return
	}
	tradable, _ := strconv.ParseBool(c.DefaultQuery("tradable", "false"))

	all := h.store.GetAll(networkID, tradable)
	list := make([]model.TokenRecord, 0, len(all))
	for _, rec := range all {
		list = append(list, rec)
	}
	model.SortRecords(list)

	c.JSON(http.StatusOK, gin.H{
		"network":  model.NetworkName(networkID),
		"fetching": h.store.IsFetching(networkID),
		"tokens":   list,
	})
}

func (h *Handler) GetToken(c *gin.Context) {
	networkID, ok := h.network(c, c.Param("network"))
	if !ok {
		return
	}
	addr, err := tokens.ParseToken(c.Param("address"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rec, err := h.store.ResolveToken(c.Request.Context(), networkID, addr)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": rec, "tradable": rec.IsTradable()})
}

func (h *Handler) Fetching(c *gin.Context) {
	networkID, ok := h.network(c, c.Param("network"))
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"fetching": h.store.IsFetching(networkID)})
}

func (h *Handler) Refresh(c *gin.Context) {
	networkID, ok := h.network(c, c.Param("network"))
	if !ok {
		return
	}
	started := h.store.Refresh(h.refreshCtx, networkID)
	c.JSON(http.StatusAccepted, gin.H{"started": started})
}

// Format renders a base unit amount: /format?amount=1500000&base=6&display=2
func (h *Handler) Format(c *gin.Context) {
	value, ok := new(big.Int).SetString(c.Query("amount"), 10)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": amount.ErrInvalidAmount.Error()})
		return
	}
	base, err := strconv.Atoi(c.DefaultQuery("base", "18"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid base"})
		return
	}
	display, err := strconv.Atoi(c.DefaultQuery("display", "4"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid display"})
		return
	}
	lessThan, _ := strconv.ParseBool(c.DefaultQuery("less_than", "true"))

	out, err := amount.Format(value, base, display, lessThan)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"formatted": out})
}

type quoteRequest struct {
	Network   string `json:"network"`
	Input     string `json:"input" binding:"required"`
	Output    string `json:"output" binding:"required"`
	Amount    string `json:"amount" binding:"required"`
	Direction string `json:"direction"`
}

type quoteResponse struct {
	pricing.Quote
	Input           model.TokenRecord `json:"input"`
	Output          model.TokenRecord `json:"output"`
	InputFormatted  string            `json:"input_formatted"`
	OutputFormatted string            `json:"output_formatted"`
}

// Quote prices a trade. Amount is a decimal string in units of the input
// token for exact input trades and of the output token otherwise.
func (h *Handler) Quote(c *gin.Context) {
	var req quoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	networkID, ok := h.network(c, req.Network)
	if !ok {
		return
	}
	direction := pricing.ExactInput
	if req.Direction != "" {
		var err error
		if direction, err = pricing.ParseDirection(req.Direction); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	ctx := c.Request.Context()
	in, err := h.resolve(ctx, networkID, req.Input)
	if err != nil {
		h.quoteFailed(c, direction, err)
		return
	}
	out, err := h.resolve(ctx, networkID, req.Output)
	if err != nil {
		h.quoteFailed(c, direction, err)
		return
	}

	fixed := in
	if direction == pricing.ExactOutput {
		fixed = out
	}
	if fixed.Decimals < 0 {
		h.quoteFailed(c, direction, exchange.ErrNotTradable)
		return
	}
	value, err := amount.ParseUnits(req.Amount, fixed.Decimals)
	if err != nil {
		h.quoteFailed(c, direction, err)
		return
	}

	quote, err := h.quoter.Quote(ctx, direction, value, in, out)
	if err != nil {
		h.quoteFailed(c, direction, err)
		return
	}
	h.metrics.observeQuote(string(direction), "ok")
	c.JSON(http.StatusOK, quoteResponse{
		Quote:           quote,
		Input:           in,
		Output:          out,
		InputFormatted:  amount.FormatUnits(quote.InputAmount, in.Decimals),
		OutputFormatted: amount.FormatUnits(quote.OutputAmount, out.Decimals),
	})
}

func (h *Handler) resolve(ctx context.Context, networkID uint64, input string) (model.TokenRecord, error) {
	addr, err := tokens.ParseToken(input)
	if err != nil {
		return model.TokenRecord{}, err
	}
	return h.store.ResolveToken(ctx, networkID, addr)
}

func (h *Handler) quoteFailed(c *gin.Context, direction pricing.Direction, err error) {
	h.metrics.observeQuote(string(direction), "error")
	h.fail(c, err)
}

func (h *Handler) fail(c *gin.Context, err error) {
	status := statusOf(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, tokens.ErrInvalidAddress),
		errors.Is(err, amount.ErrInvalidAmount),
		errors.Is(err, pricing.ErrInvalidAmount),
		errors.Is(err, pricing.ErrInvalidDecimals),
		errors.Is(err, exchange.ErrSamePair),
		errors.Is(err, exchange.ErrNotTradable):
		return http.StatusBadRequest
	case errors.Is(err, tokens.ErrUnknownNetwork):
		return http.StatusNotFound
	case errors.Is(err, pricing.ErrInsufficientLiquidity):
		return http.StatusUnprocessableEntity
	case errors.Is(err, tokens.ErrResolutionFailure):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
