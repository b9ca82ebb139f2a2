package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	appcatalog "github.com/storefront/backend/internal/application/catalog"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
	"golang.org/x/text/language"
)

// ProductService is the catalog surface the storefront exposes
type ProductService interface {
	GetByID(ctx context.Context, id uuid.UUID, lang language.Tag) (*appcatalog.ProductResponse, error)
	Update(ctx context.Context, id uuid.UUID, req appcatalog.UpdateProductRequest, lang language.Tag) (*appcatalog.ProductResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// ProductHandler handles catalog product endpoints
type ProductHandler struct {
	BaseHandler
	products ProductService
}

// NewProductHandler creates a new ProductHandler
func NewProductHandler(products ProductService) *ProductHandler {
	return &ProductHandler{products: products}
}

// Get returns a product localized to the request language
func (h *ProductHandler) Get(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	lang := requestLanguage(c)
	p, err := h.products.GetByID(c.Request.Context(), id, lang)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.Header("Content-Language", lang.String())
	h.Success(c, p)
}

// Update applies a partial staff edit
func (h *ProductHandler) Update(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req appcatalog.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleBindError(c, err)
		return
	}

	p, err := h.products.Update(c.Request.Context(), id, req, requestLanguage(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, p)
}

// Delete removes a product no order references
func (h *ProductHandler) Delete(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	if err := h.products.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
