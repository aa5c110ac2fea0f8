package v1

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/divinecoid/sabkabazaar/internal/service"
)

type ProductHandler struct {
	productService *service.ProductService
	logger         *slog.Logger
}

func NewProductHandler(productService *service.ProductService, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{productService: productService, logger: logger}
}

func (h *ProductHandler) List(c *gin.Context) {
	filter := service.ProductFilter{
		Category: c.Query("category"),
		Query:    c.Query("q"),
	}
	for name, dst := range map[string]*int{"limit": &filter.Limit, "offset": &filter.Offset} {
		raw := c.Query(name)
		if raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			fail(c, http.StatusBadRequest, "Invalid request parameters", gin.H{name: "must be an integer"})
			return
		}
		*dst = n
	}

	page, err := h.productService.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, "Products retrieved successfully", page)
}

func (h *ProductHandler) Get(c *gin.Context) {
	product, err := h.productService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, "Product retrieved successfully", gin.H{"product": product})
}

// Import takes a multipart "file" field holding an xlsx workbook.
func (h *ProductHandler) Import(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		fail(c, http.StatusBadRequest, "File upload failed", gin.H{
			"upload_error": "Failed to process uploaded file",
			"details":      err.Error(),
		})
		return
	}

	f, err := file.Open()
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	defer f.Close()

	result, err := h.productService.Import(c.Request.Context(), f)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	respond(c, http.StatusOK, "Upload successful", result)
}
