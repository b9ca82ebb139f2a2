package catalog

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func ptr(id uuid.UUID) *uuid.UUID { return &id }

// testTaxonomy builds:
//
//	Electronics -> Phones            (leaf subcategory)
//	Electronics -> Audio -> Headsets (subcategory with child)
//	Home        -> Kitchen
func testTaxonomy(t *testing.T) (*Taxonomy, map[string]uuid.UUID) {
	t.Helper()
	electronics, err := NewCategory(LocalizedText{En: "Electronics", Fr: "Électronique", Ar: "إلكترونيات"}, "electronics")
	require.NoError(t, err)
	home, err := NewCategory(LocalizedText{En: "Home"}, "home")
	require.NoError(t, err)

	phones, err := NewSubCategory(electronics.ID, LocalizedText{En: "Phones"}, "phones")
	require.NoError(t, err)
	audio, err := NewSubCategory(electronics.ID, LocalizedText{En: "Audio"}, "audio")
	require.NoError(t, err)
	kitchen, err := NewSubCategory(home.ID, LocalizedText{En: "Kitchen"}, "kitchen")
	require.NoError(t, err)

	headsets, err := NewSubSubCategory(audio.ID, LocalizedText{En: "Headsets"}, "headsets")
	require.NoError(t, err)

	tax := NewTaxonomy(
		[]Category{*electronics, *home},
		[]SubCategory{*phones, *audio, *kitchen},
		[]SubSubCategory{*headsets},
	)
	return tax, map[string]uuid.UUID{
		"electronics": electronics.ID,
		"home":        home.ID,
		"phones":      phones.ID,
		"audio":       audio.ID,
		"kitchen":     kitchen.ID,
		"headsets":    headsets.ID,
	}
}

func TestTaxonomy_ResolveTopLevel(t *testing.T) {
	tax, ids := testTaxonomy(t)

	tests := []struct {
		name   string
		ref    CategoryRef
		want   uuid.UUID
		wantOK bool
	}{
		{name: "direct subcategory", ref: CategoryRef{SubCategoryID: ptr(ids["phones"])}, want: ids["electronics"], wantOK: true},
		{name: "via subsubcategory", ref: CategoryRef{SubSubCategoryID: ptr(ids["headsets"])}, want: ids["electronics"], wantOK: true},
		{name: "other tree", ref: CategoryRef{SubCategoryID: ptr(ids["kitchen"])}, want: ids["home"], wantOK: true},
		{name: "unknown subcategory", ref: CategoryRef{SubCategoryID: ptr(uuid.New())}, want: UncategorizedID},
		{name: "unknown subsubcategory", ref: CategoryRef{SubSubCategoryID: ptr(uuid.New())}, want: UncategorizedID},
		{name: "empty ref", ref: CategoryRef{}, want: UncategorizedID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := tax.ResolveTopLevel(tt.ref)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTaxonomy_TopLevelMap_EachProductOnce(t *testing.T) {
	tax, ids := testTaxonomy(t)
	viaSub := uuid.New()
	viaSubSub := uuid.New()
	orphan := uuid.New()

	m := tax.TopLevelMap(map[uuid.UUID]CategoryRef{
		viaSub:    {SubCategoryID: ptr(ids["phones"])},
		viaSubSub: {SubSubCategoryID: ptr(ids["headsets"])},
		orphan:    {SubCategoryID: ptr(uuid.New())},
	})

	require.Len(t, m, 3)
	assert.Equal(t, ids["electronics"], m[viaSub])
	assert.Equal(t, ids["electronics"], m[viaSubSub])
	assert.Equal(t, UncategorizedID, m[orphan])
	assert.Equal(t, "Uncategorized", tax.CategoryName(m[orphan]).En)
	assert.Equal(t, "Électronique", tax.CategoryName(ids["electronics"]).In(language.French))
}

func TestTaxonomy_CanAttachAttribute(t *testing.T) {
	tax, ids := testTaxonomy(t)

	onLeaf, err := NewAttribute(LocalizedText{En: "Storage"}, ptr(ids["phones"]), nil)
	require.NoError(t, err)
	assert.NoError(t, tax.CanAttachAttribute(onLeaf))

	onParent, err := NewAttribute(LocalizedText{En: "Connector"}, ptr(ids["audio"]), nil)
	require.NoError(t, err)
	assert.ErrorIs(t, tax.CanAttachAttribute(onParent), shared.ErrValidation)

	onSubSub, err := NewAttribute(LocalizedText{En: "Connector"}, nil, ptr(ids["headsets"]))
	require.NoError(t, err)
	assert.NoError(t, tax.CanAttachAttribute(onSubSub))

	missing, err := NewAttribute(LocalizedText{En: "Color"}, ptr(uuid.New()), nil)
	require.NoError(t, err)
	assert.ErrorIs(t, tax.CanAttachAttribute(missing), shared.ErrNotFound)

	assert.ElementsMatch(t, []uuid.UUID{ids["headsets"]}, tax.SubSubCategoryIDs(ids["audio"]))
}

func TestNewAttribute_ExactlyOneParent(t *testing.T) {
	_, err := NewAttribute(LocalizedText{En: "Size"}, nil, nil)
	assert.ErrorIs(t, err, shared.ErrValidation)

	_, err = NewAttribute(LocalizedText{En: "Size"}, ptr(uuid.New()), ptr(uuid.New()))
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func validProductInput() NewProductInput {
	sub := uuid.New()
	return NewProductInput{
		Name:     LocalizedText{En: "Widget"},
		Price:    valueobject.MustParseMoney("10.00"),
		Stock:    5,
		Category: CategoryRef{SubCategoryID: &sub},
	}
}

func TestNewProduct(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		p, err := NewProduct(validProductInput())
		require.NoError(t, err)
		assert.True(t, p.IsActive)
		assert.Equal(t, 1, p.Version)
		assert.Equal(t, "10.00", p.Price.String())
	})

	tests := []struct {
		name   string
		mutate func(in *NewProductInput)
	}{
		{name: "missing english name", mutate: func(in *NewProductInput) { in.Name = LocalizedText{Fr: "Bidule"} }},
		{name: "negative stock", mutate: func(in *NewProductInput) { in.Stock = -1 }},
		{name: "negative price", mutate: func(in *NewProductInput) { in.Price = valueobject.NewMoney(decimal.NewFromInt(-1)) }},
		{name: "discount above 100", mutate: func(in *NewProductInput) { in.DiscountPercent = decimal.NewFromInt(101) }},
		{name: "both category refs", mutate: func(in *NewProductInput) { in.Category.SubSubCategoryID = ptr(uuid.New()) }},
		{name: "no category ref", mutate: func(in *NewProductInput) { in.Category = CategoryRef{} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validProductInput()
			tt.mutate(&in)
			_, err := NewProduct(in)
			assert.ErrorIs(t, err, shared.ErrValidation)
		})
	}
}

func TestProduct_CanFulfil(t *testing.T) {
	p, err := NewProduct(validProductInput())
	require.NoError(t, err)

	assert.True(t, p.CanFulfil(5))
	assert.False(t, p.CanFulfil(6))
	assert.False(t, p.CanFulfil(0))
}

func TestStockStateFor(t *testing.T) {
	assert.Equal(t, StockStateOutOfStock, StockStateFor(0, 10))
	assert.Equal(t, StockStateLowStock, StockStateFor(10, 10))
	assert.Equal(t, StockStateInStock, StockStateFor(11, 10))
}

func TestNewInsufficientStockError(t *testing.T) {
	id := uuid.New()
	err := NewInsufficientStockError(id, "Widget", 1, 3)

	assert.ErrorIs(t, err, shared.ErrInsufficientStock)
	assert.Contains(t, err.Message, "Widget")
	require.Len(t, err.Details, 1)
	assert.Equal(t, id.String(), err.Details[0].Field)
}

func TestMatchLanguage(t *testing.T) {
	tests := []struct {
		input string
		want  language.Tag
	}{
		{input: "fr-CA,fr;q=0.9,en;q=0.8", want: language.French},
		{input: "ar", want: language.Arabic},
		{input: "de-DE", want: language.English},
		{input: "", want: language.English},
		{input: "!!garbage", want: language.English},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchLanguage(tt.input))
		})
	}
}

func TestLocalizedText_In(t *testing.T) {
	text := LocalizedText{En: "Shoes", Fr: "Chaussures"}

	assert.Equal(t, "Chaussures", text.In(language.French))
	assert.Equal(t, "Shoes", text.In(language.Arabic), "missing translation falls back to english")
	assert.Equal(t, "Shoes", text.In(language.English))
	assert.True(t, LocalizedText{}.IsEmpty())
}
