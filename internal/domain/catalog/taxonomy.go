package catalog

import (
	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
)

// UncategorizedID is the bucket key for products without a resolvable top-level category
var UncategorizedID = uuid.Nil

// UncategorizedName is the display name of the uncategorized bucket
var UncategorizedName = LocalizedText{En: "Uncategorized", Fr: "Non classé", Ar: "غير مصنف"}

// CategoryRef is the exclusive category pointer carried by a product
type CategoryRef struct {
	SubCategoryID    *uuid.UUID
	SubSubCategoryID *uuid.UUID
}

// Taxonomy is an in-memory index over the flat category hierarchy
type Taxonomy struct {
	categories     map[uuid.UUID]Category
	subCategories  map[uuid.UUID]SubCategory
	subSubs        map[uuid.UUID]SubSubCategory
	subHasChildren map[uuid.UUID]bool
}

// NewTaxonomy indexes the three taxonomy levels by id
func NewTaxonomy(categories []Category, subCategories []SubCategory, subSubs []SubSubCategory) *Taxonomy {
	t := &Taxonomy{
		categories:     make(map[uuid.UUID]Category, len(categories)),
		subCategories:  make(map[uuid.UUID]SubCategory, len(subCategories)),
		subSubs:        make(map[uuid.UUID]SubSubCategory, len(subSubs)),
		subHasChildren: make(map[uuid.UUID]bool),
	}
	for _, c := range categories {
		t.categories[c.ID] = c
	}
	for _, s := range subCategories {
		t.subCategories[s.ID] = s
	}
	for _, ss := range subSubs {
		t.subSubs[ss.ID] = ss
		t.subHasChildren[ss.SubCategoryID] = true
	}
	return t
}

// ResolveTopLevel walks a product's category pointer up to its top-level category.
// A subsubcategory pointer takes the subsubcategory -> subcategory -> category path;
// a subcategory pointer takes the direct path. Exactly one path is followed, so a product
// resolves to at most one category. ok is false when any link in the chain is missing.
func (t *Taxonomy) ResolveTopLevel(ref CategoryRef) (categoryID uuid.UUID, ok bool) {
	var subID uuid.UUID
	switch {
	case ref.SubSubCategoryID != nil:
		ss, found := t.subSubs[*ref.SubSubCategoryID]
		if !found {
			return UncategorizedID, false
		}
		subID = ss.SubCategoryID
	case ref.SubCategoryID != nil:
		subID = *ref.SubCategoryID
	default:
		return UncategorizedID, false
	}

	sub, found := t.subCategories[subID]
	if !found {
		return UncategorizedID, false
	}
	if _, found := t.categories[sub.CategoryID]; !found {
		return UncategorizedID, false
	}
	return sub.CategoryID, true
}

// TopLevelMap precomputes product id -> top-level category id.
// Unresolvable products map to UncategorizedID.
func (t *Taxonomy) TopLevelMap(refs map[uuid.UUID]CategoryRef) map[uuid.UUID]uuid.UUID {
	out := make(map[uuid.UUID]uuid.UUID, len(refs))
	for productID, ref := range refs {
		categoryID, _ := t.ResolveTopLevel(ref)
		out[productID] = categoryID
	}
	return out
}

// CategoryName returns the localized name of a top-level category, or the uncategorized name
func (t *Taxonomy) CategoryName(id uuid.UUID) LocalizedText {
	if c, ok := t.categories[id]; ok {
		return c.Name
	}
	return UncategorizedName
}

// Category returns a top-level category by id
func (t *Taxonomy) Category(id uuid.UUID) (Category, bool) {
	c, ok := t.categories[id]
	return c, ok
}

// SubSubCategoryIDs returns the children of a subcategory
func (t *Taxonomy) SubSubCategoryIDs(subCategoryID uuid.UUID) []uuid.UUID {
	var ids []uuid.UUID
	for id, ss := range t.subSubs {
		if ss.SubCategoryID == subCategoryID {
			ids = append(ids, id)
		}
	}
	return ids
}

// CanAttachAttribute enforces that a subcategory owning subsubcategories carries no attributes itself
func (t *Taxonomy) CanAttachAttribute(a *Attribute) error {
	if a.SubCategoryID != nil {
		if _, ok := t.subCategories[*a.SubCategoryID]; !ok {
			return shared.NewNotFoundError("subcategory", *a.SubCategoryID)
		}
		if t.subHasChildren[*a.SubCategoryID] {
			return shared.NewValidationError("subCategoryId", "Subcategory has subsubcategories; attach the attribute to a subsubcategory")
		}
	}
	if a.SubSubCategoryID != nil {
		if _, ok := t.subSubs[*a.SubSubCategoryID]; !ok {
			return shared.NewNotFoundError("subsubcategory", *a.SubSubCategoryID)
		}
	}
	return nil
}
