package v1

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/divinecoid/sabkabazaar/internal/service"
	"github.com/divinecoid/sabkabazaar/pkg/middleware"
)

type CartHandler struct {
	cartService *service.CartService
	logger      *slog.Logger
}

func NewCartHandler(cartService *service.CartService, logger *slog.Logger) *CartHandler {
	return &CartHandler{cartService: cartService, logger: logger}
}

type AddToCartRequest struct {
	ProductID string `json:"productId" binding:"required"`
	// Quantity defaults to 1 when omitted.
	Quantity *int `json:"quantity"`
}

type UpdateCartRequest struct {
	Quantity int `json:"quantity"`
}

func (h *CartHandler) List(c *gin.Context) {
	cart, err := h.cartService.List(c.Request.Context(), middleware.CurrentUser(c).ID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, "Cart retrieved successfully", cart)
}

func (h *CartHandler) Add(c *gin.Context) {
	var req AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}
	quantity := 1
	if req.Quantity != nil {
		quantity = *req.Quantity
	}

	line, err := h.cartService.Add(c.Request.Context(), middleware.CurrentUser(c).ID, req.ProductID, quantity)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, "Item added to cart", gin.H{"item": line})
}

func (h *CartHandler) Update(c *gin.Context) {
	var req UpdateCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	line, err := h.cartService.Update(c.Request.Context(), middleware.CurrentUser(c).ID, c.Param("id"), req.Quantity)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, "Cart item updated", gin.H{"item": line})
}

func (h *CartHandler) Remove(c *gin.Context) {
	if err := h.cartService.Remove(c.Request.Context(), middleware.CurrentUser(c).ID, c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, "Cart item removed", nil)
}

func (h *CartHandler) Clear(c *gin.Context) {
	if err := h.cartService.Clear(c.Request.Context(), middleware.CurrentUser(c).ID); err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, "Cart cleared", nil)
}
