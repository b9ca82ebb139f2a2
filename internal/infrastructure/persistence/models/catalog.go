package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
)

// ProductModel is the persistence model for the Product aggregate
type ProductModel struct {
	AggregateModel
	Name             LocalizedColumns `gorm:"embedded;embeddedPrefix:name_"`
	Description      LocalizedColumns `gorm:"embedded;embeddedPrefix:description_"`
	Price            decimal.Decimal  `gorm:"type:numeric(12,2);not null;default:0"`
	Stock            int              `gorm:"not null;default:0;check:chk_products_stock_non_negative,stock >= 0"`
	DiscountPercent  decimal.Decimal  `gorm:"type:numeric(5,2);not null;default:0"`
	SubCategoryID    *uuid.UUID       `gorm:"type:uuid;index"`
	SubSubCategoryID *uuid.UUID       `gorm:"type:uuid;index"`
	Images           StringList       `gorm:"type:text;not null;default:'[]'"`
	IsActive         bool             `gorm:"not null;default:true"`
	DisplayOrder     int              `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product
func (m *ProductModel) ToDomain() *catalog.Product {
	return &catalog.Product{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Name:              m.Name.ToDomain(),
		Description:       m.Description.ToDomain(),
		Price:             valueobject.NewMoney(m.Price).Round(),
		Stock:             m.Stock,
		DiscountPercent:   m.DiscountPercent,
		Category: catalog.CategoryRef{
			SubCategoryID:    m.SubCategoryID,
			SubSubCategoryID: m.SubSubCategoryID,
		},
		Images:       append([]string(nil), m.Images...),
		IsActive:     m.IsActive,
		DisplayOrder: m.DisplayOrder,
	}
}

// FromDomain populates the persistence model from a domain Product
func (m *ProductModel) FromDomain(p *catalog.Product) {
	m.FromDomainAggregateRoot(p.BaseAggregateRoot)
	m.Name = LocalizedColumnsFromDomain(p.Name)
	m.Description = LocalizedColumnsFromDomain(p.Description)
	m.Price = p.Price.Amount()
	m.Stock = p.Stock
	m.DiscountPercent = p.DiscountPercent
	m.SubCategoryID = p.Category.SubCategoryID
	m.SubSubCategoryID = p.Category.SubSubCategoryID
	m.Images = StringList(append([]string(nil), p.Images...))
	m.IsActive = p.IsActive
	m.DisplayOrder = p.DisplayOrder
}

// ProductModelFromDomain creates a new persistence model from a domain Product
func ProductModelFromDomain(p *catalog.Product) *ProductModel {
	m := &ProductModel{}
	m.FromDomain(p)
	return m
}

// CategoryModel is the persistence model for a top-level category
type CategoryModel struct {
	BaseModel
	Name         LocalizedColumns `gorm:"embedded;embeddedPrefix:name_"`
	Description  LocalizedColumns `gorm:"embedded;embeddedPrefix:description_"`
	Slug         string           `gorm:"type:varchar(120);not null;uniqueIndex:idx_categories_slug"`
	DisplayOrder int              `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (CategoryModel) TableName() string {
	return "categories"
}

// ToDomain converts the persistence model to a domain Category
func (m *CategoryModel) ToDomain() catalog.Category {
	return catalog.Category{
		BaseEntity:   m.BaseModel.ToDomain(),
		Name:         m.Name.ToDomain(),
		Description:  m.Description.ToDomain(),
		Slug:         m.Slug,
		DisplayOrder: m.DisplayOrder,
	}
}

// CategoryModelFromDomain creates a persistence model from a domain Category
func CategoryModelFromDomain(c *catalog.Category) *CategoryModel {
	m := &CategoryModel{
		Name:         LocalizedColumnsFromDomain(c.Name),
		Description:  LocalizedColumnsFromDomain(c.Description),
		Slug:         c.Slug,
		DisplayOrder: c.DisplayOrder,
	}
	m.FromDomainBaseEntity(c.BaseEntity)
	return m
}

// SubCategoryModel is the persistence model for a subcategory
type SubCategoryModel struct {
	BaseModel
	CategoryID   uuid.UUID        `gorm:"type:uuid;not null;index"`
	Name         LocalizedColumns `gorm:"embedded;embeddedPrefix:name_"`
	Description  LocalizedColumns `gorm:"embedded;embeddedPrefix:description_"`
	Slug         string           `gorm:"type:varchar(120);not null;uniqueIndex:idx_sub_categories_slug"`
	DisplayOrder int              `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (SubCategoryModel) TableName() string {
	return "sub_categories"
}

// ToDomain converts the persistence model to a domain SubCategory
func (m *SubCategoryModel) ToDomain() catalog.SubCategory {
	return catalog.SubCategory{
		BaseEntity:   m.BaseModel.ToDomain(),
		CategoryID:   m.CategoryID,
		Name:         m.Name.ToDomain(),
		Description:  m.Description.ToDomain(),
		Slug:         m.Slug,
		DisplayOrder: m.DisplayOrder,
	}
}

// SubCategoryModelFromDomain creates a persistence model from a domain SubCategory
func SubCategoryModelFromDomain(s *catalog.SubCategory) *SubCategoryModel {
	m := &SubCategoryModel{
		CategoryID:   s.CategoryID,
		Name:         LocalizedColumnsFromDomain(s.Name),
		Description:  LocalizedColumnsFromDomain(s.Description),
		Slug:         s.Slug,
		DisplayOrder: s.DisplayOrder,
	}
	m.FromDomainBaseEntity(s.BaseEntity)
	return m
}

// SubSubCategoryModel is the persistence model for a subsubcategory
type SubSubCategoryModel struct {
	BaseModel
	SubCategoryID uuid.UUID        `gorm:"type:uuid;not null;index"`
	Name          LocalizedColumns `gorm:"embedded;embeddedPrefix:name_"`
	Description   LocalizedColumns `gorm:"embedded;embeddedPrefix:description_"`
	Slug          string           `gorm:"type:varchar(120);not null;uniqueIndex:idx_sub_sub_categories_slug"`
	DisplayOrder  int              `gorm:"not null;default:0"`
}

// TableName returns the table name for GORM
func (SubSubCategoryModel) TableName() string {
	return "sub_sub_categories"
}

// ToDomain converts the persistence model to a domain SubSubCategory
func (m *SubSubCategoryModel) ToDomain() catalog.SubSubCategory {
	return catalog.SubSubCategory{
		BaseEntity:    m.BaseModel.ToDomain(),
		SubCategoryID: m.SubCategoryID,
		Name:          m.Name.ToDomain(),
		Description:   m.Description.ToDomain(),
		Slug:          m.Slug,
		DisplayOrder:  m.DisplayOrder,
	}
}

// SubSubCategoryModelFromDomain creates a persistence model from a domain SubSubCategory
func SubSubCategoryModelFromDomain(s *catalog.SubSubCategory) *SubSubCategoryModel {
	m := &SubSubCategoryModel{
		SubCategoryID: s.SubCategoryID,
		Name:          LocalizedColumnsFromDomain(s.Name),
		Description:   LocalizedColumnsFromDomain(s.Description),
		Slug:          s.Slug,
		DisplayOrder:  s.DisplayOrder,
	}
	m.FromDomainBaseEntity(s.BaseEntity)
	return m
}
