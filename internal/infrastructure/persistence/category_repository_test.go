package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

type seededTaxonomy struct {
	category    *catalog.Category
	sub         *catalog.SubCategory
	subSub      *catalog.SubSubCategory
	otherSub    *catalog.SubCategory
	otherSubSub *catalog.SubSubCategory
}

func seedTaxonomy(t *testing.T, repo *GormCategoryRepository) seededTaxonomy {
	t.Helper()
	ctx := context.Background()

	cat, err := catalog.NewCategory(catalog.LocalizedText{En: "Electronics", Fr: "Électronique"}, "electronics")
	require.NoError(t, err)
	require.NoError(t, repo.SaveCategory(ctx, cat))

	sub, err := catalog.NewSubCategory(cat.ID, catalog.LocalizedText{En: "Lighting"}, "lighting")
	require.NoError(t, err)
	require.NoError(t, repo.SaveSubCategory(ctx, sub))

	subSub, err := catalog.NewSubSubCategory(sub.ID, catalog.LocalizedText{En: "Desk lamps"}, "desk-lamps")
	require.NoError(t, err)
	require.NoError(t, repo.SaveSubSubCategory(ctx, subSub))

	otherSub, err := catalog.NewSubCategory(cat.ID, catalog.LocalizedText{En: "Audio"}, "audio")
	require.NoError(t, err)
	otherSub.DisplayOrder = 2
	require.NoError(t, repo.SaveSubCategory(ctx, otherSub))

	otherSubSub, err := catalog.NewSubSubCategory(otherSub.ID, catalog.LocalizedText{En: "Speakers"}, "speakers")
	require.NoError(t, err)
	require.NoError(t, repo.SaveSubSubCategory(ctx, otherSubSub))

	return seededTaxonomy{category: cat, sub: sub, subSub: subSub, otherSub: otherSub, otherSubSub: otherSubSub}
}

func TestGormCategoryRepository_LoadTaxonomy(t *testing.T) {
	repo := NewGormCategoryRepository(newSQLiteDB(t))
	ctx := context.Background()
	seeded := seedTaxonomy(t, repo)

	tax, err := repo.LoadTaxonomy(ctx)
	require.NoError(t, err)

	top, ok := tax.ResolveTopLevel(catalog.CategoryRef{SubSubCategoryID: &seeded.subSub.ID})
	require.True(t, ok)
	assert.Equal(t, seeded.category.ID, top)

	top, ok = tax.ResolveTopLevel(catalog.CategoryRef{SubCategoryID: &seeded.otherSub.ID})
	require.True(t, ok)
	assert.Equal(t, seeded.category.ID, top)

	assert.Equal(t, "Électronique", tax.CategoryName(seeded.category.ID).In(language.French))
	assert.Equal(t, []uuid.UUID{seeded.subSub.ID}, tax.SubSubCategoryIDs(seeded.sub.ID))
}

func TestGormCategoryRepository_SaveUpdatesExisting(t *testing.T) {
	repo := NewGormCategoryRepository(newSQLiteDB(t))
	ctx := context.Background()
	seeded := seedTaxonomy(t, repo)

	seeded.category.Name = catalog.LocalizedText{En: "Gadgets", Ar: "أدوات"}
	require.NoError(t, repo.SaveCategory(ctx, seeded.category))

	tax, err := repo.LoadTaxonomy(ctx)
	require.NoError(t, err)
	got, ok := tax.Category(seeded.category.ID)
	require.True(t, ok)
	assert.Equal(t, "Gadgets", got.Name.En)
	assert.Equal(t, "أدوات", got.Name.In(language.Arabic))
}
