package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
	"golang.org/x/text/language"
)

// UpdateProductRequest represents a staff edit. Nil fields are left unchanged.
type UpdateProductRequest struct {
	Price    *string                `json:"price" binding:"omitempty,money"`
	Stock    *int                   `json:"stock" binding:"omitempty,min=0"`
	IsActive *bool                  `json:"isActive"`
	Name     *catalog.LocalizedText `json:"name"`
}

// IsEmpty reports whether the request changes nothing
func (r UpdateProductRequest) IsEmpty() bool {
	return r.Price == nil && r.Stock == nil && r.IsActive == nil && r.Name == nil
}

// ProductResponse represents a product in API responses, localized to one language
type ProductResponse struct {
	ID               uuid.UUID         `json:"id"`
	Name             string            `json:"name"`
	Description      string            `json:"description"`
	Language         string            `json:"language"`
	Price            valueobject.Money `json:"price"`
	DiscountPercent  decimal.Decimal   `json:"discountPercent"`
	Stock            int               `json:"stock"`
	StockState       string            `json:"stockState"`
	SubCategoryID    *uuid.UUID        `json:"subCategoryId,omitempty"`
	SubSubCategoryID *uuid.UUID        `json:"subSubCategoryId,omitempty"`
	Images           []string          `json:"images"`
	IsActive         bool              `json:"isActive"`
	DisplayOrder     int               `json:"displayOrder"`
	CreatedAt        time.Time         `json:"createdAt"`
	UpdatedAt        time.Time         `json:"updatedAt"`
	Version          int               `json:"version"`
}

// ToProductResponse converts a domain Product to ProductResponse.
// images replaces the stored keys, typically with presigned URLs.
func ToProductResponse(p *catalog.Product, lang language.Tag, images []string, lowStockThreshold int) ProductResponse {
	if images == nil {
		images = []string{}
	}
	return ProductResponse{
		ID:               p.ID,
		Name:             p.Name.In(lang),
		Description:      p.Description.In(lang),
		Language:         lang.String(),
		Price:            p.Price,
		DiscountPercent:  p.DiscountPercent,
		Stock:            p.Stock,
		StockState:       string(catalog.StockStateFor(p.Stock, lowStockThreshold)),
		SubCategoryID:    p.Category.SubCategoryID,
		SubSubCategoryID: p.Category.SubSubCategoryID,
		Images:           images,
		IsActive:         p.IsActive,
		DisplayOrder:     p.DisplayOrder,
		CreatedAt:        p.CreatedAt,
		UpdatedAt:        p.UpdatedAt,
		Version:          p.Version,
	}
}
