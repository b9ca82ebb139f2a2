package catalog

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
)

// StockState classifies a product's stock level
type StockState string

const (
	StockStateInStock    StockState = "in_stock"
	StockStateLowStock   StockState = "low_stock"
	StockStateOutOfStock StockState = "out_of_stock"
)

// Product represents a sellable item in the catalog
type Product struct {
	shared.BaseAggregateRoot
	Name            LocalizedText
	Description     LocalizedText
	Price           valueobject.Money
	Stock           int
	DiscountPercent decimal.Decimal
	Category        CategoryRef
	Images          []string
	IsActive        bool
	DisplayOrder    int
}

// NewProductInput holds the fields required to create a product
type NewProductInput struct {
	Name            LocalizedText
	Description     LocalizedText
	Price           valueobject.Money
	Stock           int
	DiscountPercent decimal.Decimal
	Category        CategoryRef
	Images          []string
	DisplayOrder    int
}

// NewProduct creates an active product after validating its invariants
func NewProduct(in NewProductInput) (*Product, error) {
	p := &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Description:       in.Description,
		Images:            append([]string(nil), in.Images...),
		IsActive:          true,
		DisplayOrder:      in.DisplayOrder,
	}
	if err := p.Rename(in.Name); err != nil {
		return nil, err
	}
	if err := p.SetPrice(in.Price); err != nil {
		return nil, err
	}
	if err := p.SetStock(in.Stock); err != nil {
		return nil, err
	}
	if err := p.SetDiscount(in.DiscountPercent); err != nil {
		return nil, err
	}
	if err := p.AssignCategory(in.Category); err != nil {
		return nil, err
	}
	return p, nil
}

// Rename updates the localized name
func (p *Product) Rename(name LocalizedText) error {
	if name.En == "" {
		return shared.NewValidationError("name.en", "English product name is required")
	}
	p.Name = name
	p.Touch()
	return nil
}

// SetPrice updates the list price. Existing order lines keep their snapshot.
func (p *Product) SetPrice(price valueobject.Money) error {
	if price.IsNegative() {
		return shared.NewValidationError("price", "Price cannot be negative")
	}
	p.Price = price.Round()
	p.Touch()
	return nil
}

// SetStock overwrites the stock level; used by catalog administration
func (p *Product) SetStock(stock int) error {
	if stock < 0 {
		return shared.NewValidationError("stock", "Stock cannot be negative")
	}
	p.Stock = stock
	p.Touch()
	return nil
}

// SetDiscount updates the discount percentage
func (p *Product) SetDiscount(percent decimal.Decimal) error {
	if percent.IsNegative() || percent.GreaterThan(decimal.NewFromInt(100)) {
		return shared.NewValidationError("discountPercent", "Discount must be between 0 and 100")
	}
	p.DiscountPercent = percent
	p.Touch()
	return nil
}

// AssignCategory sets the product's category pointer. Exactly one level must be given.
func (p *Product) AssignCategory(ref CategoryRef) error {
	if ref.SubCategoryID != nil && ref.SubSubCategoryID != nil {
		return shared.NewValidationError("category", "Product cannot reference both a subcategory and a subsubcategory")
	}
	if ref.SubCategoryID == nil && ref.SubSubCategoryID == nil {
		return shared.NewValidationError("category", "Product must reference a subcategory or a subsubcategory")
	}
	p.Category = ref
	p.Touch()
	return nil
}

// SetActive toggles storefront visibility
func (p *Product) SetActive(active bool) {
	p.IsActive = active
	p.Touch()
}

// CanFulfil reports whether requested units are available
func (p *Product) CanFulfil(quantity int) bool {
	return quantity > 0 && p.Stock >= quantity
}

// StockStateFor classifies the stock level against a low-stock threshold
func StockStateFor(stock, lowStockThreshold int) StockState {
	switch {
	case stock <= 0:
		return StockStateOutOfStock
	case stock <= lowStockThreshold:
		return StockStateLowStock
	default:
		return StockStateInStock
	}
}

// NewInsufficientStockError names the product and the shortfall
func NewInsufficientStockError(productID uuid.UUID, name string, available, requested int) *shared.DomainError {
	msg := fmt.Sprintf("Insufficient stock for %s: available %d, requested %d", name, available, requested)
	err := shared.NewDomainError(shared.CodeInsufficientStock, msg)
	err.Details = []shared.ErrorDetail{{
		Field:   productID.String(),
		Message: fmt.Sprintf("available %d, requested %d", available, requested),
	}}
	return err
}
