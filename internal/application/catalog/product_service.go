package catalog

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
	"go.uber.org/zap"
	"golang.org/x/text/language"
)

// ImagePresigner turns a stored image key into a time-limited URL
type ImagePresigner interface {
	PresignGet(ctx context.Context, key string) (string, error)
}

// ProductService handles the catalog operations the storefront exposes
type ProductService struct {
	productRepo       catalog.ProductRepository
	presigner         ImagePresigner
	lowStockThreshold int
	logger            *zap.Logger
}

// NewProductService creates a new ProductService. presigner may be nil, in which
// case stored image keys are returned unchanged.
func NewProductService(
	productRepo catalog.ProductRepository,
	presigner ImagePresigner,
	lowStockThreshold int,
	logger *zap.Logger,
) *ProductService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if lowStockThreshold <= 0 {
		lowStockThreshold = 10
	}
	return &ProductService{
		productRepo:       productRepo,
		presigner:         presigner,
		lowStockThreshold: lowStockThreshold,
		logger:            logger,
	}
}

// GetByID returns a product localized to lang
func (s *ProductService) GetByID(ctx context.Context, id uuid.UUID, lang language.Tag) (*ProductResponse, error) {
	product, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToProductResponse(product, lang, s.imageURLs(ctx, product), s.lowStockThreshold)
	return &resp, nil
}

// Update applies a staff edit. Order items keep their own price and name snapshots,
// so nothing here touches existing orders.
func (s *ProductService) Update(ctx context.Context, id uuid.UUID, req UpdateProductRequest, lang language.Tag) (*ProductResponse, error) {
	if req.IsEmpty() {
		return nil, shared.NewValidationError("", "No fields to update")
	}

	product, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if err := product.Rename(*req.Name); err != nil {
			return nil, err
		}
	}
	if req.Price != nil {
		price, err := valueobject.ParseMoney(strings.TrimSpace(*req.Price))
		if err != nil {
			return nil, shared.NewValidationError("price", "Price must be a decimal with at most two fractional digits")
		}
		if err := product.SetPrice(price); err != nil {
			return nil, err
		}
	}
	if req.Stock != nil {
		if err := product.SetStock(*req.Stock); err != nil {
			return nil, err
		}
	}
	if req.IsActive != nil {
		product.SetActive(*req.IsActive)
	}
	product.IncrementVersion()

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}

	s.logger.Info("Product updated",
		zap.String("product_id", product.ID.String()),
		zap.Int("stock", product.Stock),
		zap.String("price", product.Price.String()),
	)

	resp := ToProductResponse(product, lang, s.imageURLs(ctx, product), s.lowStockThreshold)
	return &resp, nil
}

// Delete removes a product that no order item references
func (s *ProductService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.find(ctx, id); err != nil {
		return err
	}

	referenced, err := s.productRepo.IsReferencedByOrders(ctx, id)
	if err != nil {
		return err
	}
	if referenced {
		return shared.NewConflictError("Product is referenced by existing orders and cannot be deleted")
	}

	if err := s.productRepo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Product deleted", zap.String("product_id", id.String()))
	return nil
}

func (s *ProductService) find(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewNotFoundError("product", id)
		}
		return nil, err
	}
	return product, nil
}

// imageURLs presigns each stored key. A key that fails to presign is dropped
// from the response rather than failing the read.
func (s *ProductService) imageURLs(ctx context.Context, p *catalog.Product) []string {
	if s.presigner == nil {
		return append([]string(nil), p.Images...)
	}
	urls := make([]string, 0, len(p.Images))
	for _, key := range p.Images {
		url, err := s.presigner.PresignGet(ctx, key)
		if err != nil {
			s.logger.Warn("Failed to presign product image",
				zap.String("product_id", p.ID.String()),
				zap.String("key", key),
				zap.Error(err),
			)
			continue
		}
		urls = append(urls, url)
	}
	return urls
}
