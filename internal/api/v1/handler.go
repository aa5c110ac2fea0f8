package v1

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/divinecoid/sabkabazaar/internal/payment"
	"github.com/divinecoid/sabkabazaar/internal/service"
)

const (
	RequestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
)

// APIResponse represents the standard API response format
type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
	Errors  interface{} `json:"errors"`
	Meta    MetaData    `json:"meta"`
}

// MetaData represents metadata for API responses
type MetaData struct {
	RequestID string `json:"request_id"`
	Timestamp string `json:"timestamp"`
}

// RequestID echoes the caller's X-Request-ID or assigns a new one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

func meta(c *gin.Context) MetaData {
	id := c.GetString(requestIDKey)
	if id == "" {
		id = c.GetHeader(RequestIDHeader)
	}
	return MetaData{
		RequestID: id,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
}

func respond(c *gin.Context, status int, message string, data interface{}) {
	c.JSON(status, APIResponse{
		Success: true,
		Message: message,
		Data:    data,
		Meta:    meta(c),
	})
}

func fail(c *gin.Context, status int, message string, errs interface{}) {
	c.AbortWithStatusJSON(status, APIResponse{
		Success: false,
		Message: message,
		Errors:  errs,
		Meta:    meta(c),
	})
}

// Deny is the rejection writer handed to the auth middleware.
func Deny(c *gin.Context, status int, message string) {
	fail(c, status, message, nil)
}

func bindFailed(c *gin.Context, err error) {
	fail(c, http.StatusBadRequest, "Invalid request parameters", gin.H{
		"validation_error": err.Error(),
	})
}

// respondError maps service errors to HTTP responses. Anything unexpected
// becomes a 500 whose detail is only logged.
func respondError(c *gin.Context, logger *slog.Logger, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		fail(c, http.StatusBadRequest, "Invalid request parameters", gin.H{verr.Field: verr.Message})
	case errors.Is(err, service.ErrEmailExists),
		errors.Is(err, service.ErrInsufficientStock),
		errors.Is(err, service.ErrProductUnavailable),
		errors.Is(err, service.ErrEmptyOrder),
		errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, service.ErrInvalidTransition),
		errors.Is(err, service.ErrNotPending),
		errors.Is(err, service.ErrInvalidSignature),
		errors.Is(err, service.ErrAmountMismatch),
		errors.Is(err, service.ErrAlreadyReviewed):
		fail(c, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, service.ErrInvalidCredentials):
		fail(c, http.StatusUnauthorized, err.Error(), nil)
	case errors.Is(err, service.ErrUnauthorized):
		fail(c, http.StatusUnauthorized, "Unauthorized", nil)
	case errors.Is(err, service.ErrForbidden):
		fail(c, http.StatusForbidden, "Unauthorized", nil)
	case errors.Is(err, service.ErrNotFound):
		fail(c, http.StatusNotFound, "Not found", nil)
	case errors.Is(err, payment.ErrGateway):
		logger.Error("payment gateway call failed", "request_id", c.GetString(requestIDKey), "error", err)
		fail(c, http.StatusInternalServerError, payment.ErrGateway.Error(), nil)
	default:
		logger.Error("request failed", "request_id", c.GetString(requestIDKey), "path", c.FullPath(), "error", err)
		fail(c, http.StatusInternalServerError, "Internal server error", nil)
	}
}

// Pinger reports whether the database is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	db     Pinger
	logger *slog.Logger
}

func NewHealthHandler(db Pinger, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{db: db, logger: logger}
}

func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.Ping(ctx); err != nil {
		h.logger.Error("health check failed", "error", err)
		fail(c, http.StatusServiceUnavailable, "Database unavailable", nil)
		return
	}
	respond(c, http.StatusOK, "OK", gin.H{"status": "ok"})
}
