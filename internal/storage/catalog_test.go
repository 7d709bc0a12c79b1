package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ananth-NQI/shopbot-backend/internal/models"
)

const catalogJSON = `{
  "featuredImage": "https://img.example.com/featured.jpg",
  "categories": [
    {"id": 1, "name": "Shirts", "image": "https://img.example.com/shirts.jpg"},
    {"id": 2, "name": "Shoes"}
  ],
  "products": [
    {"id": 10, "name": "Oxford Shirt", "price": 29.99, "description": "Cotton button-down", "category": 1, "sizes": ["S","M","L"], "colors": ["white","blue"]},
    {"id": 11, "name": "Linen Shirt", "price": "35.50", "description": "Breathable summer shirt", "category": 1},
    {"id": "sneaker-1", "name": "Runner", "price": 80, "description": "Lightweight running shoe", "category": 2}
  ]
}`

func writeCatalog(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "database.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadCatalog(t *testing.T) {
	c, err := LoadCatalog(writeCatalog(t, catalogJSON))
	require.NoError(t, err)

	assert.Equal(t, "https://img.example.com/featured.jpg", c.FeaturedImage())

	cats := c.ListCategories()
	require.Len(t, cats, 2)
	assert.Equal(t, models.ID("1"), cats[0].ID)
	assert.Equal(t, "Shoes", cats[1].Name)

	shirts := c.ListProductsByCategory("1")
	require.Len(t, shirts, 2)
	assert.Equal(t, "Oxford Shirt", shirts[0].Name)
	assert.True(t, decimal.RequireFromString("29.99").Equal(shirts[0].Price))
	assert.True(t, decimal.RequireFromString("35.5").Equal(shirts[1].Price))

	p, ok := c.FindProductByID("sneaker-1")
	require.True(t, ok)
	assert.Equal(t, models.ID("2"), p.CategoryID)

	_, ok = c.FindProductByID("404")
	assert.False(t, ok)
}

func TestCatalogFindCategoryByName(t *testing.T) {
	c, err := LoadCatalog(writeCatalog(t, catalogJSON))
	require.NoError(t, err)

	cat, ok := c.FindCategoryByName("  sHoEs ")
	require.True(t, ok)
	assert.Equal(t, models.ID("2"), cat.ID)

	_, ok = c.FindCategoryByName("Hats")
	assert.False(t, ok)
}

func TestCatalogSearchProducts(t *testing.T) {
	c, err := LoadCatalog(writeCatalog(t, catalogJSON))
	require.NoError(t, err)

	tests := []struct {
		keyword string
		want    []models.ID
	}{
		{"shirt", []models.ID{"10", "11"}},
		{"SUMMER", []models.ID{"11"}},
		{"running", []models.ID{"sneaker-1"}},
		{"zzz-nonexistent", nil},
	}
	for _, tt := range tests {
		t.Run(tt.keyword, func(t *testing.T) {
			var got []models.ID
			for _, p := range c.SearchProducts(tt.keyword) {
				got = append(got, p.ID)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCatalogIsImmutable(t *testing.T) {
	c, err := LoadCatalog(writeCatalog(t, catalogJSON))
	require.NoError(t, err)

	cats := c.ListCategories()
	cats[0].Name = "Changed"
	shirts := c.ListProductsByCategory("1")
	shirts[0].Sizes[0] = "XXL"
	found, _ := c.FindProductByID("10")
	found.Colors[0] = "mauve"
	hits := c.SearchProducts(found.Name)
	require.NotEmpty(t, hits)
	hits[0].Sizes[0] = "XS"

	again, _ := c.FindCategoryByName("Shirts")
	assert.Equal(t, "Shirts", again.Name)
	p, _ := c.FindProductByID("10")
	assert.Equal(t, "S", p.Sizes[0])
	assert.Equal(t, "white", p.Colors[0])
}

func TestNewCatalogValidation(t *testing.T) {
	tests := []struct {
		name       string
		categories []models.Category
		products   []models.Product
	}{
		{
			name:       "duplicate category name",
			categories: []models.Category{{ID: "1", Name: "Shirts"}, {ID: "2", Name: "SHIRTS"}},
		},
		{
			name:       "category without id",
			categories: []models.Category{{Name: "Shirts"}},
		},
		{
			name:     "negative price",
			products: []models.Product{{ID: "1", Name: "Broken", Price: decimal.NewFromInt(-1)}},
		},
		{
			name:     "duplicate product id",
			products: []models.Product{{ID: "1", Name: "A"}, {ID: "1", Name: "B"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewCatalog("", tt.categories, tt.products)
			require.ErrorIs(t, err, ErrCatalogInvalid)
		})
	}
}

func TestLoadCatalogErrors(t *testing.T) {
	_, err := LoadCatalog(filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)

	_, err = LoadCatalog(writeCatalog(t, `{"categories": [`))
	require.ErrorIs(t, err, ErrCatalogInvalid)
}

func TestShippedCatalogLoads(t *testing.T) {
	c, err := LoadCatalog(filepath.Join("..", "..", "database.json"))
	require.NoError(t, err)
	assert.NotEmpty(t, c.ListCategories())
	for _, cat := range c.ListCategories() {
		assert.NotEmpty(t, c.ListProductsByCategory(cat.ID), cat.Name)
	}
}
