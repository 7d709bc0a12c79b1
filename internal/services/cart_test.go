package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ananth-NQI/shopbot-backend/internal/models"
)

func TestPriceCart(t *testing.T) {
	catalog := testCatalog(t)

	tests := []struct {
		name      string
		cart      []models.CartLine
		wantLines int
		wantTotal string
	}{
		{"empty", nil, 0, "0"},
		{"single", []models.CartLine{models.NewCartLine("10", 2, "", "")}, 1, "39.98"},
		{"no float drift", []models.CartLine{
			models.NewCartLine("11", 1, "", ""),
			models.NewCartLine("20", 1, "", ""),
		}, 2, "0.3"},
		{"vanished lines skipped", []models.CartLine{
			models.NewCartLine("gone", 4, "", ""),
			models.NewCartLine("21", 3, "", ""),
		}, 1, "15"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines, total := PriceCart(catalog, tt.cart)
			assert.Len(t, lines, tt.wantLines)
			assert.True(t, total.Equal(decimal.RequireFromString(tt.wantTotal)), total.String())
			assert.True(t, CartTotal(catalog, tt.cart).Equal(total))
		})
	}
}

func TestLineTotal(t *testing.T) {
	catalog := testCatalog(t)
	p, ok := catalog.FindProductByID("10")
	require.True(t, ok)
	assert.Equal(t, "99.95", LineTotal(p, models.NewCartLine("10", 5, "", "")).StringFixed(2))
}
