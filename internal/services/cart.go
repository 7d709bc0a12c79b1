package services

import (
	"github.com/shopspring/decimal"

	"github.com/Ananth-NQI/shopbot-backend/internal/models"
)

// Catalog is what the conversation needs from the product catalog.
// *storage.Catalog implements it.
type Catalog interface {
	FeaturedImage() string
	ListCategories() []models.Category
	FindCategoryByID(id models.ID) (models.Category, bool)
	FindCategoryByName(name string) (models.Category, bool)
	ListProductsByCategory(categoryID models.ID) []models.Product
	FindProductByID(id models.ID) (models.Product, bool)
	SearchProducts(keyword string) []models.Product
}

// PricedLine is a cart line joined with its product
type PricedLine struct {
	Line    models.CartLine
	Product models.Product
	Total   decimal.Decimal
}

// LineTotal is price times quantity
func LineTotal(product models.Product, line models.CartLine) decimal.Decimal {
	return product.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
}

// PriceCart resolves every line against the catalog. Lines whose product
// has disappeared are skipped and contribute nothing to the total.
func PriceCart(catalog Catalog, cart []models.CartLine) ([]PricedLine, decimal.Decimal) {
	total := decimal.Zero
	priced := make([]PricedLine, 0, len(cart))
	for _, line := range cart {
		product, ok := catalog.FindProductByID(models.ID(line.ProductID))
		if !ok {
			continue
		}
		lineTotal := LineTotal(product, line)
		total = total.Add(lineTotal)
		priced = append(priced, PricedLine{Line: line, Product: product, Total: lineTotal})
	}
	return priced, total
}

// CartTotal sums the lines that still resolve
func CartTotal(catalog Catalog, cart []models.CartLine) decimal.Decimal {
	_, total := PriceCart(catalog, cart)
	return total
}
