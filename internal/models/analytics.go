package models

import (
	"time"

	"gorm.io/datatypes"
)

// Analytics actions emitted by the conversation
const (
	ActionProductView = "product_view"
	ActionCartAdd     = "cart_add"
	ActionCheckout    = "checkout"
	ActionSearch      = "search"
)

// AnalyticsEvent is one recorded user interaction
type AnalyticsEvent struct {
	ID        string         `json:"id" gorm:"primaryKey;size:36"`
	UserID    string         `json:"user_id" gorm:"index;size:128"`
	Action    string         `json:"action" gorm:"index;size:32"`
	Details   datatypes.JSON `json:"details"`
	Timestamp time.Time      `json:"timestamp" gorm:"index"`
}

// ProductViewCount pairs a product with how often it was viewed
type ProductViewCount struct {
	ProductID string `json:"product_id"`
	Views     int    `json:"views"`
}

// SearchSummary is a past search shown in reports
type SearchSummary struct {
	Timestamp    time.Time `json:"timestamp"`
	Keyword      string    `json:"keyword"`
	ResultsCount int       `json:"results_count"`
}

// AnalyticsSummary aggregates events within a report period
type AnalyticsSummary struct {
	TotalInteractions int `json:"total_interactions"`
	UniqueUsers       int `json:"unique_users"`
	ProductViews      int `json:"product_views"`
	CartAdditions     int `json:"cart_additions"`
	CartQuantity      int `json:"cart_quantity"`
	Checkouts         int `json:"checkouts"`
	Searches          int `json:"searches"`
}

// AnalyticsReport is returned by the admin analytics endpoint
type AnalyticsReport struct {
	Period         string             `json:"period"`
	Start          time.Time          `json:"start"`
	End            time.Time          `json:"end"`
	Summary        AnalyticsSummary   `json:"summary"`
	TopProducts    []ProductViewCount `json:"top_products"`
	RecentSearches []SearchSummary    `json:"recent_searches"`
}
