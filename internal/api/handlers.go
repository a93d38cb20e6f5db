package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/muhammadchandra19/market-sim/internal/app/engine"
	marketv1 "github.com/muhammadchandra19/market-sim/internal/domain/market/v1"
	"github.com/muhammadchandra19/market-sim/pkg/util"
)

// MarketService is the part of the engine the HTTP surface needs.
type MarketService interface {
	Submit(ctx context.Context, input marketv1.OrderInput) (marketv1.Order, *marketv1.MatchingPair, error)
	BestOffer() (marketv1.Order, bool)
	Orders() []marketv1.Order
	Order(id string) (marketv1.Order, bool)
	Pairs() []marketv1.MatchingPair
	Stats() engine.Stats
}

var _ MarketService = (*engine.Engine)(nil)

// ViewReader returns the latest event JSON cached for a symbol, empty when none.
type ViewReader interface {
	View(ctx context.Context, symbol string) (string, error)
}

// PlaceOrderRequest is the body of POST /api/orders.
type PlaceOrderRequest struct {
	Symbol   string        `json:"symbol" binding:"required"`
	Price    float64       `json:"price" binding:"required,gt=0"`
	Quantity *int64        `json:"quantity" binding:"required,gte=0"`
	Side     marketv1.Side `json:"type" binding:"required,oneof=BUY SELL"`
}

func (r PlaceOrderRequest) toInput() marketv1.OrderInput {
	return marketv1.OrderInput{
		Symbol:   r.Symbol,
		Price:    r.Price,
		Quantity: *r.Quantity,
		Side:     r.Side,
	}
}

// PlaceOrderResponse carries the stored order and the pair it joined, if any.
type PlaceOrderResponse struct {
	Order marketv1.Order         `json:"order"`
	Pair  *marketv1.MatchingPair `json:"pair"`
}

// BestOfferResponse wraps the best offer; Order is null when there is none.
type BestOfferResponse struct {
	Order *marketv1.Order `json:"order"`
}

// Handler serves the market HTTP routes.
type Handler struct {
	market MarketService
	views  ViewReader
}

// NewHandler creates a Handler. views may be nil when no view cache is configured.
func NewHandler(market MarketService, views ViewReader) *Handler {
	return &Handler{market: market, views: views}
}

// PlaceOrder validates and submits an order.
func (h *Handler) PlaceOrder(c *gin.Context) {
	var req PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithBindingError(c, err)
		return
	}

	ctx := util.WithSource(c.Request.Context(), "http")
	order, pair, err := h.market.Submit(ctx, req.toInput())
	if err != nil {
		AbortWithDomainError(c, err)
		return
	}

	c.JSON(http.StatusCreated, PlaceOrderResponse{Order: order, Pair: pair})
}

// ListOrders returns every order in submission order.
func (h *Handler) ListOrders(c *gin.Context) {
	c.JSON(http.StatusOK, h.market.Orders())
}

// GetOrder returns one order by id.
func (h *Handler) GetOrder(c *gin.Context) {
	order, ok := h.market.Order(c.Param("id"))
	if !ok {
		AbortWithError(c, http.StatusNotFound, ErrCodeOrderNotFound, "order not found")
		return
	}

	c.JSON(http.StatusOK, order)
}

// GetBestOffer returns the cheapest open sell order.
func (h *Handler) GetBestOffer(c *gin.Context) {
	var resp BestOfferResponse
	if order, ok := h.market.BestOffer(); ok {
		resp.Order = &order
	}

	c.JSON(http.StatusOK, resp)
}

// ListPairs returns the pairs still being filled.
func (h *Handler) ListPairs(c *gin.Context) {
	c.JSON(http.StatusOK, h.market.Pairs())
}

// GetStats returns the engine counters.
func (h *Handler) GetStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.market.Stats())
}

// GetView returns the latest event cached for a symbol.
func (h *Handler) GetView(c *gin.Context) {
	if h.views == nil {
		AbortWithError(c, http.StatusServiceUnavailable, ErrCodeViewUnavailable, "view cache is not configured")
		return
	}

	view, err := h.views.View(c.Request.Context(), c.Param("symbol"))
	if err != nil {
		AbortWithError(c, http.StatusServiceUnavailable, ErrCodeViewUnavailable, err.Error())
		return
	}
	if view == "" {
		AbortWithError(c, http.StatusNotFound, ErrCodeViewNotFound, "no event for symbol")
		return
	}

	c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(view))
}
