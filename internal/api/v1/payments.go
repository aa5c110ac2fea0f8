package v1

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/divinecoid/sabkabazaar/internal/service"
	"github.com/divinecoid/sabkabazaar/pkg/middleware"
)

type PaymentHandler struct {
	paymentService *service.PaymentService
	logger         *slog.Logger
}

func NewPaymentHandler(paymentService *service.PaymentService, logger *slog.Logger) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService, logger: logger}
}

// CreateGatewayOrderRequest.Amount is in minor units (paise).
type CreateGatewayOrderRequest struct {
	Amount int64 `json:"amount" binding:"required"`
}

type VerifyPaymentRequest struct {
	RazorpayOrderID   string             `json:"razorpayOrderId" binding:"required"`
	RazorpayPaymentID string             `json:"razorpayPaymentId" binding:"required"`
	RazorpaySignature string             `json:"razorpaySignature" binding:"required"`
	Items             []OrderItemRequest `json:"items"`
	Total             *int64             `json:"total"`
}

func (h *PaymentHandler) Key(c *gin.Context) {
	respond(c, http.StatusOK, "Payment key", gin.H{"key": h.paymentService.KeyID()})
}

func (h *PaymentHandler) CreateOrder(c *gin.Context) {
	var req CreateGatewayOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	order, err := h.paymentService.CreateGatewayOrder(c.Request.Context(), req.Amount)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, "Payment order created", gin.H{
		"orderId":  order.ID,
		"amount":   order.Amount,
		"currency": order.Currency,
	})
}

func (h *PaymentHandler) Verify(c *gin.Context) {
	var req VerifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	order, err := h.paymentService.Verify(c.Request.Context(), middleware.CurrentUser(c), service.VerifyInput{
		GatewayOrderID: req.RazorpayOrderID,
		PaymentID:      req.RazorpayPaymentID,
		Signature:      req.RazorpaySignature,
		Items:          toItemInputs(req.Items),
		ClientTotal:    req.Total,
	})
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, "Payment verified", gin.H{
		"success": true,
		"orderId": order.ID,
		"order":   order,
	})
}
