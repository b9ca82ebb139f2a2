package catalog

import (
	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
)

// Category is the top level of the product taxonomy
type Category struct {
	shared.BaseEntity
	Name         LocalizedText
	Description  LocalizedText
	Slug         string
	DisplayOrder int
}

// SubCategory belongs to a Category. Products attach either here or to one of its SubSubCategories.
type SubCategory struct {
	shared.BaseEntity
	CategoryID   uuid.UUID
	Name         LocalizedText
	Description  LocalizedText
	Slug         string
	DisplayOrder int
}

// SubSubCategory is the optional third taxonomy level
type SubSubCategory struct {
	shared.BaseEntity
	SubCategoryID uuid.UUID
	Name          LocalizedText
	Description   LocalizedText
	Slug          string
	DisplayOrder  int
}

// NewCategory creates a top-level category
func NewCategory(name LocalizedText, slug string) (*Category, error) {
	if err := validateTaxonomyNode(name, slug); err != nil {
		return nil, err
	}
	return &Category{
		BaseEntity: shared.NewBaseEntity(),
		Name:       name,
		Slug:       slug,
	}, nil
}

// NewSubCategory creates a subcategory under the given category
func NewSubCategory(categoryID uuid.UUID, name LocalizedText, slug string) (*SubCategory, error) {
	if categoryID == uuid.Nil {
		return nil, shared.NewValidationError("categoryId", "Parent category is required")
	}
	if err := validateTaxonomyNode(name, slug); err != nil {
		return nil, err
	}
	return &SubCategory{
		BaseEntity: shared.NewBaseEntity(),
		CategoryID: categoryID,
		Name:       name,
		Slug:       slug,
	}, nil
}

// NewSubSubCategory creates a subsubcategory under the given subcategory
func NewSubSubCategory(subCategoryID uuid.UUID, name LocalizedText, slug string) (*SubSubCategory, error) {
	if subCategoryID == uuid.Nil {
		return nil, shared.NewValidationError("subCategoryId", "Parent subcategory is required")
	}
	if err := validateTaxonomyNode(name, slug); err != nil {
		return nil, err
	}
	return &SubSubCategory{
		BaseEntity:    shared.NewBaseEntity(),
		SubCategoryID: subCategoryID,
		Name:          name,
		Slug:          slug,
	}, nil
}

func validateTaxonomyNode(name LocalizedText, slug string) error {
	if name.En == "" {
		return shared.NewValidationError("name.en", "English name is required")
	}
	if slug == "" {
		return shared.NewValidationError("slug", "Slug is required")
	}
	return nil
}

// Attribute is a filterable product attribute with predefined values.
// It attaches to exactly one of a subcategory or a subsubcategory.
type Attribute struct {
	shared.BaseEntity
	Name             LocalizedText
	SubCategoryID    *uuid.UUID
	SubSubCategoryID *uuid.UUID
	Values           []LocalizedText
}

// NewAttribute creates an attribute attached to exactly one taxonomy level
func NewAttribute(name LocalizedText, subCategoryID, subSubCategoryID *uuid.UUID) (*Attribute, error) {
	if name.En == "" {
		return nil, shared.NewValidationError("name.en", "English name is required")
	}
	if (subCategoryID == nil) == (subSubCategoryID == nil) {
		return nil, shared.NewValidationError("subCategoryId", "Attribute must belong to exactly one of subcategory or subsubcategory")
	}
	return &Attribute{
		BaseEntity:       shared.NewBaseEntity(),
		Name:             name,
		SubCategoryID:    subCategoryID,
		SubSubCategoryID: subSubCategoryID,
	}, nil
}
