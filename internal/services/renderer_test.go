package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ananth-NQI/shopbot-backend/internal/config"
	"github.com/Ananth-NQI/shopbot-backend/internal/models"
	"github.com/Ananth-NQI/shopbot-backend/internal/storage"
)

func TestMainMenu(t *testing.T) {
	catalog := testCatalog(t)
	r := NewRenderer(catalog, testSettings())

	reply := r.MainMenu("Ada")
	assert.Equal(t, "https://cdn.example.test/featured.jpg", reply.ImageURL)
	assert.Empty(t, reply.Text)
	assert.Equal(t, "Hello Ada! 👋\nWelcome to Shop Bot.\n\nPlease select a category by number:\n1. Shirts\n2. Shoes\n3. Hats\n\nOr type 'search' to find specific products.", reply.Caption)
}

func TestImageFallbacks(t *testing.T) {
	catalog := testCatalog(t)
	blue, _ := catalog.FindProductByID("10")
	red, _ := catalog.FindProductByID("11")
	runner, _ := catalog.FindProductByID("20")
	shoes, _ := catalog.FindCategoryByID("2")

	noDefault := testSettings()
	noDefault.DefaultImage = ""

	tests := []struct {
		name     string
		settings config.Settings
		render   func(r *Renderer) Reply
		want     string
	}{
		{"product image", testSettings(), func(r *Renderer) Reply { return r.ProductDetail(blue) }, "https://cdn.example.test/blue.jpg"},
		{"category image", testSettings(), func(r *Renderer) Reply { return r.ProductDetail(red) }, "https://cdn.example.test/shirts.jpg"},
		{"default image", testSettings(), func(r *Renderer) Reply { return r.ProductDetail(runner) }, "https://cdn.example.test/default.jpg"},
		{"text only", noDefault, func(r *Renderer) Reply { return r.ProductDetail(runner) }, ""},
		{"category without image", testSettings(), func(r *Renderer) Reply { return r.CategoryProducts(shoes, nil) }, "https://cdn.example.test/default.jpg"},
		{"checkout falls back to default", testSettings(), func(r *Renderer) Reply {
			return r.Checkout([]models.CartLine{models.NewCartLine("10", 1, "", "")}, "Ada")
		}, "https://cdn.example.test/default.jpg"},
		{"cart image", testSettings(), func(r *Renderer) Reply {
			return r.Cart([]models.CartLine{models.NewCartLine("10", 1, "", "")})
		}, "https://cdn.example.test/cart.jpg"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reply := tt.render(NewRenderer(catalog, tt.settings))
			assert.Equal(t, tt.want, reply.ImageURL)
			assert.Equal(t, tt.want != "", reply.HasImage())
			assert.NotEmpty(t, reply.Body())
		})
	}
}

func TestMainMenuWithoutFeaturedImage(t *testing.T) {
	catalog, err := storage.NewCatalog("", []models.Category{{ID: "1", Name: "Shirts", Image: "https://cdn.example.test/shirts.jpg"}}, nil)
	require.NoError(t, err)
	reply := NewRenderer(catalog, config.DefaultSettings()).MainMenu("Ada")
	assert.Equal(t, "https://cdn.example.test/shirts.jpg", reply.ImageURL)
}

func TestProductDetail(t *testing.T) {
	catalog := testCatalog(t)
	blue, _ := catalog.FindProductByID("10")
	runner, _ := catalog.FindProductByID("20")
	r := NewRenderer(catalog, testSettings())

	body := r.ProductDetail(blue).Body()
	assert.Contains(t, body, "*Blue Shirt*\nPrice: $19.99\nDescription: Cotton shirt")
	assert.Contains(t, body, "Available Sizes: M, L")
	assert.Contains(t, body, "Available Colors: blue")

	body = r.ProductDetail(runner).Body()
	assert.NotContains(t, body, "Available Sizes")
}

func TestCartRendering(t *testing.T) {
	catalog := testCatalog(t)
	settings := testSettings()
	settings.Currency = "₹"
	r := NewRenderer(catalog, settings)

	cart := []models.CartLine{
		models.NewCartLine("11", 3, "M", "red"),
		models.NewCartLine("gone", 1, "", ""),
	}
	body := r.Cart(cart).Body()
	assert.Contains(t, body, "1. Red Shirt\nQty: 3, Size: M, Color: red\nPrice: ₹0.30")
	assert.Contains(t, body, "*Total: ₹0.30*")
	assert.NotContains(t, body, "2.")

	// a cart whose products all vanished renders as empty
	assert.Equal(t, r.EmptyCart(), r.Cart([]models.CartLine{models.NewCartLine("gone", 1, "", "")}))
}

func TestOrderConfirmed(t *testing.T) {
	r := NewRenderer(testCatalog(t), testSettings())
	reply := r.OrderConfirmed("Ada", decimal.RequireFromString("12.5"), "")
	assert.Equal(t, "Thank you for your order, Ada! Your payment of $12.50 has been processed successfully.\n\nYour order will be delivered in 3-5 business days.", reply.Text)
	assert.False(t, reply.HasImage())
}

func TestReplyTextOnly(t *testing.T) {
	r := Reply{Caption: "hello", ImageURL: "https://cdn.example.test/x.jpg", Image: []byte{1}}
	assert.Equal(t, Reply{Text: "hello"}, r.TextOnly())
}
