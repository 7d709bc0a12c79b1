package models

const (
	DefaultSize  = "Standard"
	DefaultColor = "Default"
)

// CartLine is one product selection awaiting checkout. Lines are never
// edited after they are added; confirm clears the whole cart.
type CartLine struct {
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
	Size      string `json:"size"`
	Color     string `json:"color"`
}

// NewCartLine fills in the default size and color when they are blank
func NewCartLine(productID string, quantity int, size, color string) CartLine {
	if size == "" {
		size = DefaultSize
	}
	if color == "" {
		color = DefaultColor
	}
	return CartLine{
		ProductID: productID,
		Quantity:  quantity,
		Size:      size,
		Color:     color,
	}
}
