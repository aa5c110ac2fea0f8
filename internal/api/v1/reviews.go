package v1

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/divinecoid/sabkabazaar/internal/service"
	"github.com/divinecoid/sabkabazaar/pkg/middleware"
)

type ReviewHandler struct {
	reviewService *service.ReviewService
	logger        *slog.Logger
}

func NewReviewHandler(reviewService *service.ReviewService, logger *slog.Logger) *ReviewHandler {
	return &ReviewHandler{reviewService: reviewService, logger: logger}
}

type ReviewRequest struct {
	Rating  int    `json:"rating" binding:"required,min=1,max=5"`
	Comment string `json:"comment"`
}

func (h *ReviewHandler) List(c *gin.Context) {
	reviews, err := h.reviewService.ListForProduct(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, "Reviews retrieved successfully", gin.H{"reviews": reviews})
}

func (h *ReviewHandler) Create(c *gin.Context) {
	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	review, err := h.reviewService.Create(c.Request.Context(), middleware.CurrentUser(c).ID, c.Param("id"), req.Rating, req.Comment)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusCreated, "Review created", gin.H{"review": review})
}

func (h *ReviewHandler) Update(c *gin.Context) {
	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindFailed(c, err)
		return
	}

	review, err := h.reviewService.Update(c.Request.Context(), middleware.CurrentUser(c).ID, c.Param("id"), req.Rating, req.Comment)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, "Review updated", gin.H{"review": review})
}

func (h *ReviewHandler) Delete(c *gin.Context) {
	if err := h.reviewService.Delete(c.Request.Context(), middleware.CurrentUser(c).ID, c.Param("id")); err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, "Review deleted", nil)
}
