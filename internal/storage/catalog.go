package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/Ananth-NQI/shopbot-backend/internal/models"
)

// catalogFile is the on-disk layout produced by the catalog scraper
type catalogFile struct {
	FeaturedImage string            `json:"featuredImage"`
	Categories    []models.Category `json:"categories"`
	Products      []models.Product  `json:"products"`
}

// Catalog is an immutable snapshot of categories and products. It is
// built once at startup and safe for concurrent readers.
type Catalog struct {
	featuredImage string
	categories    []models.Category
	products      []models.Product
	productIndex  map[models.ID]int
	categoryIndex map[models.ID]int
	nameIndex     map[string]int
}

// LoadCatalog reads and validates a catalog JSON file
func LoadCatalog(path string) (*Catalog, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	var file catalogFile
	if err := json.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", ErrCatalogInvalid, path, err)
	}
	return NewCatalog(file.FeaturedImage, file.Categories, file.Products)
}

// NewCatalog validates and indexes the given entries. The slices are copied.
func NewCatalog(featuredImage string, categories []models.Category, products []models.Product) (*Catalog, error) {
	c := &Catalog{
		featuredImage: featuredImage,
		categories:    slices.Clone(categories),
		products:      slices.Clone(products),
		productIndex:  make(map[models.ID]int, len(products)),
		categoryIndex: make(map[models.ID]int, len(categories)),
		nameIndex:     make(map[string]int, len(categories)),
	}

	for i, cat := range c.categories {
		if cat.ID == "" {
			return nil, fmt.Errorf("%w: category #%d has no id", ErrCatalogInvalid, i+1)
		}
		key := strings.ToLower(strings.TrimSpace(cat.Name))
		if key == "" {
			return nil, fmt.Errorf("%w: category %s has no name", ErrCatalogInvalid, cat.ID)
		}
		if _, dup := c.categoryIndex[cat.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate category id %s", ErrCatalogInvalid, cat.ID)
		}
		if _, dup := c.nameIndex[key]; dup {
			return nil, fmt.Errorf("%w: duplicate category name %q", ErrCatalogInvalid, cat.Name)
		}
		c.categoryIndex[cat.ID] = i
		c.nameIndex[key] = i
	}

	for i, p := range c.products {
		if p.ID == "" {
			return nil, fmt.Errorf("%w: product #%d has no id", ErrCatalogInvalid, i+1)
		}
		if _, dup := c.productIndex[p.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate product id %s", ErrCatalogInvalid, p.ID)
		}
		if p.Price.IsNegative() {
			return nil, fmt.Errorf("%w: product %s has a negative price", ErrCatalogInvalid, p.ID)
		}
		c.products[i].Sizes = slices.Clone(p.Sizes)
		c.products[i].Colors = slices.Clone(p.Colors)
		c.productIndex[p.ID] = i
	}

	return c, nil
}

// FeaturedImage is the image shown with the main menu, if any
func (c *Catalog) FeaturedImage() string {
	return c.featuredImage
}

// ListCategories returns the categories in menu order
func (c *Catalog) ListCategories() []models.Category {
	return slices.Clone(c.categories)
}

// FindCategoryByID looks up a category by id
func (c *Catalog) FindCategoryByID(id models.ID) (models.Category, bool) {
	i, ok := c.categoryIndex[id]
	if !ok {
		return models.Category{}, false
	}
	return c.categories[i], true
}

// FindCategoryByName matches a category name case-insensitively
func (c *Catalog) FindCategoryByName(name string) (models.Category, bool) {
	i, ok := c.nameIndex[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return models.Category{}, false
	}
	return c.categories[i], true
}

// ListProductsByCategory returns a category's products in catalog order
func (c *Catalog) ListProductsByCategory(categoryID models.ID) []models.Product {
	var out []models.Product
	for _, p := range c.products {
		if p.CategoryID == categoryID {
			out = append(out, cloneProduct(p))
		}
	}
	return out
}

// FindProductByID looks up a product by id
func (c *Catalog) FindProductByID(id models.ID) (models.Product, bool) {
	i, ok := c.productIndex[id]
	if !ok {
		return models.Product{}, false
	}
	return cloneProduct(c.products[i]), true
}

// SearchProducts matches keyword as a case-insensitive substring of the
// product name or description
func (c *Catalog) SearchProducts(keyword string) []models.Product {
	needle := strings.ToLower(keyword)
	var out []models.Product
	for _, p := range c.products {
		if strings.Contains(strings.ToLower(p.Name), needle) ||
			strings.Contains(strings.ToLower(p.Description), needle) {
			out = append(out, cloneProduct(p))
		}
	}
	return out
}

// cloneProduct copies the option slices so callers cannot reach into the
// shared catalog
func cloneProduct(p models.Product) models.Product {
	p.Sizes = slices.Clone(p.Sizes)
	p.Colors = slices.Clone(p.Colors)
	return p
}
