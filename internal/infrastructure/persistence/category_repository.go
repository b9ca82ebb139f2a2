package persistence

import (
	"context"

	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormCategoryRepository implements catalog.CategoryRepository using GORM
type GormCategoryRepository struct {
	db *gorm.DB
}

// NewGormCategoryRepository creates a new GormCategoryRepository
func NewGormCategoryRepository(db *gorm.DB) *GormCategoryRepository {
	return &GormCategoryRepository{db: db}
}

// LoadTaxonomy reads all three levels in display order
func (r *GormCategoryRepository) LoadTaxonomy(ctx context.Context) (*catalog.Taxonomy, error) {
	db := r.db.WithContext(ctx)

	var cats []models.CategoryModel
	if err := db.Order("display_order ASC, id ASC").Find(&cats).Error; err != nil {
		return nil, err
	}
	var subs []models.SubCategoryModel
	if err := db.Order("display_order ASC, id ASC").Find(&subs).Error; err != nil {
		return nil, err
	}
	var subSubs []models.SubSubCategoryModel
	if err := db.Order("display_order ASC, id ASC").Find(&subSubs).Error; err != nil {
		return nil, err
	}

	categories := make([]catalog.Category, len(cats))
	for i := range cats {
		categories[i] = cats[i].ToDomain()
	}
	subCategories := make([]catalog.SubCategory, len(subs))
	for i := range subs {
		subCategories[i] = subs[i].ToDomain()
	}
	subSubCategories := make([]catalog.SubSubCategory, len(subSubs))
	for i := range subSubs {
		subSubCategories[i] = subSubs[i].ToDomain()
	}
	return catalog.NewTaxonomy(categories, subCategories, subSubCategories), nil
}

// SaveCategory creates or updates a top-level category
func (r *GormCategoryRepository) SaveCategory(ctx context.Context, c *catalog.Category) error {
	return r.upsert(ctx, models.CategoryModelFromDomain(c))
}

// SaveSubCategory creates or updates a subcategory
func (r *GormCategoryRepository) SaveSubCategory(ctx context.Context, s *catalog.SubCategory) error {
	return r.upsert(ctx, models.SubCategoryModelFromDomain(s))
}

// SaveSubSubCategory creates or updates a subsubcategory
func (r *GormCategoryRepository) SaveSubSubCategory(ctx context.Context, s *catalog.SubSubCategory) error {
	return r.upsert(ctx, models.SubSubCategoryModelFromDomain(s))
}

func (r *GormCategoryRepository) upsert(ctx context.Context, model any) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{UpdateAll: true}).Create(model).Error
}

// Ensure GormCategoryRepository implements catalog.CategoryRepository
var _ catalog.CategoryRepository = (*GormCategoryRepository)(nil)
