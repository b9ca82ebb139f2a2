package catalog

import (
	"context"

	"github.com/google/uuid"
)

// ProductRepository defines the persistence contract for products
type ProductRepository interface {
	// FindByID finds a product by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// FindByIDs finds products by IDs; missing ids are simply absent from the result
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Product, error)

	// Save creates or updates a product
	Save(ctx context.Context, product *Product) error

	// DecrementStock atomically subtracts quantity when enough stock remains.
	// Returns false when the conditional update matched no row.
	DecrementStock(ctx context.Context, id uuid.UUID, quantity int) (bool, error)

	// Delete removes a product. Fails with a conflict when order items reference it.
	Delete(ctx context.Context, id uuid.UUID) error

	// IsReferencedByOrders reports whether any order item points at the product
	IsReferencedByOrders(ctx context.Context, id uuid.UUID) (bool, error)
}

// CategoryRepository reads the category hierarchy
type CategoryRepository interface {
	// LoadTaxonomy fetches all three levels as a flat index
	LoadTaxonomy(ctx context.Context) (*Taxonomy, error)

	// SaveCategory creates or updates a top-level category
	SaveCategory(ctx context.Context, c *Category) error

	// SaveSubCategory creates or updates a subcategory
	SaveSubCategory(ctx context.Context, s *SubCategory) error

	// SaveSubSubCategory creates or updates a subsubcategory
	SaveSubSubCategory(ctx context.Context, s *SubSubCategory) error
}
