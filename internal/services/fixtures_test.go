package services

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/Ananth-NQI/shopbot-backend/internal/config"
	"github.com/Ananth-NQI/shopbot-backend/internal/models"
	"github.com/Ananth-NQI/shopbot-backend/internal/storage"
)

var testNow = time.Date(2026, 6, 1, 9, 0, 0, 0, time.UTC)

func testSettings() config.Settings {
	s := config.DefaultSettings()
	s.DefaultImage = "https://cdn.example.test/default.jpg"
	s.CartImage = "https://cdn.example.test/cart.jpg"
	return s
}

func testCatalog(t *testing.T) *storage.Catalog {
	t.Helper()
	catalog, err := storage.NewCatalog("https://cdn.example.test/featured.jpg",
		[]models.Category{
			{ID: "1", Name: "Shirts", Image: "https://cdn.example.test/shirts.jpg"},
			{ID: "2", Name: "Shoes"},
			{ID: "3", Name: "Hats"},
		},
		[]models.Product{
			{ID: "10", Name: "Blue Shirt", Price: decimal.RequireFromString("19.99"), Description: "Cotton shirt", CategoryID: "1",
				Image: "https://cdn.example.test/blue.jpg", Sizes: []string{"M", "L"}, Colors: []string{"blue"}},
			{ID: "11", Name: "Red Shirt", Price: decimal.RequireFromString("0.10"), Description: "Linen shirt", CategoryID: "1"},
			{ID: "20", Name: "Runner", Price: decimal.RequireFromString("0.20"), Description: "Light running shoe", CategoryID: "2"},
			{ID: "21", Name: "2", Price: decimal.RequireFromString("5"), Description: "Numbered model", CategoryID: "2"},
		})
	require.NoError(t, err)
	return catalog
}

func newTestEngine(t *testing.T) *ConversationEngine {
	t.Helper()
	catalog := testCatalog(t)
	engine := NewConversationEngine(catalog, NewRenderer(catalog, testSettings()), time.Hour)
	engine.newOrderRef = func() string { return "ORD-TEST" }
	return engine
}

// converse feeds messages one minute apart and returns the final session
// together with every outcome
func converse(e *ConversationEngine, s models.Session, msgs ...string) (models.Session, []Outcome) {
	var outs []Outcome
	at := testNow
	for _, m := range msgs {
		var out Outcome
		s, out = e.Transition(s, m, "Ada", at)
		outs = append(outs, out)
		at = at.Add(time.Minute)
	}
	return s, outs
}
