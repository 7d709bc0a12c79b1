package services

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Ananth-NQI/shopbot-backend/internal/config"
	"github.com/Ananth-NQI/shopbot-backend/internal/models"
)

// Reply is one outbound chat message. Views with a picture carry a
// Caption and ImageURL; everything else is plain Text.
type Reply struct {
	Text     string `json:"text,omitempty"`
	Caption  string `json:"caption,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
	Image    []byte `json:"-"`
}

// Body is the message text regardless of how the reply is shaped
func (r Reply) Body() string {
	if r.Caption != "" {
		return r.Caption
	}
	return r.Text
}

// HasImage reports whether the reply should go out with a picture
func (r Reply) HasImage() bool {
	return r.ImageURL != ""
}

// TextOnly drops the picture and keeps the words
func (r Reply) TextOnly() Reply {
	return Reply{Text: r.Body()}
}

// Renderer builds the message for every step of the conversation
type Renderer struct {
	catalog  Catalog
	settings config.Settings
}

// NewRenderer creates a renderer over a catalog and the shop settings
func NewRenderer(catalog Catalog, settings config.Settings) *Renderer {
	return &Renderer{
		catalog:  catalog,
		settings: settings,
	}
}

func (r *Renderer) money(d decimal.Decimal) string {
	return r.settings.Currency + d.StringFixed(2)
}

// withImage picks the first non-empty image reference, falling back to
// the configured default image
func (r *Renderer) withImage(caption string, refs ...string) Reply {
	refs = append(refs, r.settings.DefaultImage)
	for _, ref := range refs {
		if ref = strings.TrimSpace(ref); ref != "" {
			return Reply{Caption: caption, ImageURL: ref}
		}
	}
	return Reply{Text: caption}
}

// Text wraps a plain message
func (r *Renderer) Text(msg string) Reply {
	return Reply{Text: msg}
}

// MainMenu lists the categories
func (r *Renderer) MainMenu(userName string) Reply {
	categories := r.catalog.ListCategories()

	var b strings.Builder
	fmt.Fprintf(&b, "Hello %s! 👋\nWelcome to %s.\n\nPlease select a category by number:", userName, r.settings.BotName)
	for i, c := range categories {
		fmt.Fprintf(&b, "\n%d. %s", i+1, c.Name)
	}
	b.WriteString("\n\nOr type 'search' to find specific products.")

	var firstCategoryImage string
	if len(categories) > 0 {
		firstCategoryImage = categories[0].Image
	}
	return r.withImage(b.String(), r.catalog.FeaturedImage(), firstCategoryImage)
}

// InvalidSelection is sent when a number or name matches nothing
func (r *Renderer) InvalidSelection(count int) Reply {
	if count == 0 {
		return r.Text(`There is nothing to choose from here. Type "search" to try another keyword or "menu" to return.`)
	}
	return r.Text(fmt.Sprintf("Invalid selection. Please choose a number between 1 and %d.", count))
}

// EmptyCategory is sent when a category has nothing to show
func (r *Renderer) EmptyCategory(category models.Category) Reply {
	return r.Text(fmt.Sprintf("No products found in %s. Please select another category.", category.Name))
}

// CategoryNotFound is sent when the browsed category left the catalog
func (r *Renderer) CategoryNotFound() Reply {
	return r.Text("Category not found. Please return to main menu.")
}

// CategoryProducts lists a category's products with prices
func (r *Renderer) CategoryProducts(category models.Category, products []models.Product) Reply {
	var b strings.Builder
	fmt.Fprintf(&b, "*%s*\n\nSelect a product by number:", category.Name)
	for i, p := range products {
		fmt.Fprintf(&b, "\n%d. %s - %s", i+1, p.Name, r.money(p.Price))
	}
	return r.withImage(b.String(), category.Image)
}

// ProductDetail shows one product and how to order it
func (r *Renderer) ProductDetail(p models.Product) Reply {
	var b strings.Builder
	fmt.Fprintf(&b, "*%s*\n", p.Name)
	fmt.Fprintf(&b, "Price: %s\n", r.money(p.Price))
	fmt.Fprintf(&b, "Description: %s\n\n", p.Description)
	if len(p.Sizes) > 0 {
		fmt.Fprintf(&b, "Available Sizes: %s\n", strings.Join(p.Sizes, ", "))
	}
	if len(p.Colors) > 0 {
		fmt.Fprintf(&b, "Available Colors: %s\n", strings.Join(p.Colors, ", "))
	}
	b.WriteString("\nTo purchase, please enter quantity, size, and color (comma separated).\nExample: \"2,L,blue\"")

	var categoryImage string
	if c, ok := r.catalog.FindCategoryByID(p.CategoryID); ok {
		categoryImage = c.Image
	}
	return r.withImage(b.String(), p.Image, categoryImage)
}

// ProductUnavailable is sent when the product being ordered disappeared
func (r *Renderer) ProductUnavailable() Reply {
	return r.Text("Sorry, that product is no longer available.")
}

// SearchPrompt asks for a keyword
func (r *Renderer) SearchPrompt() Reply {
	return r.Text("Please enter a keyword to search for products:")
}

// SearchResults lists the products matching a keyword
func (r *Renderer) SearchResults(query string, results []models.Product) Reply {
	if len(results) == 0 {
		return r.Text(fmt.Sprintf("No products found for %q. Try different keywords or type \"menu\" to return.", query))
	}
	var b strings.Builder
	fmt.Fprintf(&b, "Search Results for %q:\n\n", query)
	for i, p := range results {
		fmt.Fprintf(&b, "%d. %s - %s\n", i+1, p.Name, r.money(p.Price))
	}
	b.WriteString("\nSelect a product by number.")
	return r.Text(b.String())
}

// QuantityPrompt is sent when the order line could not be read
func (r *Renderer) QuantityPrompt() Reply {
	return r.Text(`Please specify quantity, size, and color (e.g. "2,L,blue"):`)
}

// EmptyCart is sent when there is nothing to show or pay for
func (r *Renderer) EmptyCart() Reply {
	return r.Text("Your cart is empty. Please add items to your cart.")
}

// Cart lists the cart with line totals and the grand total
func (r *Renderer) Cart(cart []models.CartLine) Reply {
	lines, total := PriceCart(r.catalog, cart)
	if len(lines) == 0 {
		return r.EmptyCart()
	}

	var b strings.Builder
	b.WriteString("*Your Shopping Cart*\n\n")
	for i, l := range lines {
		fmt.Fprintf(&b, "%d. %s\nQty: %d, Size: %s, Color: %s\nPrice: %s\n\n",
			i+1, l.Product.Name, l.Line.Quantity, l.Line.Size, l.Line.Color, r.money(l.Total))
	}
	fmt.Fprintf(&b, "*Total: %s*\n\n", r.money(total))
	b.WriteString(r.cartOptions())
	return r.withImage(b.String(), r.settings.CartImage)
}

func (r *Renderer) cartOptions() string {
	return `Type "checkout" to proceed with payment or "continue" to add more items.`
}

// CartOptions repeats what can be done from the cart
func (r *Renderer) CartOptions() Reply {
	return r.Text(r.cartOptions())
}

// Checkout summarizes the order before confirmation
func (r *Renderer) Checkout(cart []models.CartLine, userName string) Reply {
	lines, total := PriceCart(r.catalog, cart)
	if len(lines) == 0 {
		return r.EmptyCart()
	}

	var b strings.Builder
	fmt.Fprintf(&b, "*Checkout Summary for %s*\n\n", userName)
	for _, l := range lines {
		fmt.Fprintf(&b, "%s (%dx) - %s\n", l.Product.Name, l.Line.Quantity, r.money(l.Total))
	}
	fmt.Fprintf(&b, "\n*Total Amount: %s*\n\n", r.money(total))
	fmt.Fprintf(&b, "Payment Method: %s\n\n", r.settings.PaymentMethod)
	b.WriteString(r.checkoutOptions())
	return r.withImage(b.String(), r.settings.CheckoutImage)
}

func (r *Renderer) checkoutOptions() string {
	return `Type "confirm" to complete your order or "cancel" to return to main menu.`
}

// CheckoutOptions repeats what can be done at checkout
func (r *Renderer) CheckoutOptions() Reply {
	return r.Text(r.checkoutOptions())
}

// OrderConfirmed thanks the user and reports the charged total
func (r *Renderer) OrderConfirmed(userName string, total decimal.Decimal, orderRef string) Reply {
	msg := fmt.Sprintf("Thank you for your order, %s! Your payment of %s has been processed successfully.\n\nYour order will be delivered in %s.",
		userName, r.money(total), r.settings.DeliveryEstimate)
	if orderRef != "" {
		msg += fmt.Sprintf("\nOrder reference: %s", orderRef)
	}
	return r.Text(msg)
}

// OrderCanceled is sent before returning to the menu
func (r *Renderer) OrderCanceled() Reply {
	return r.Text("Order canceled. Returning to main menu.")
}

// ResumePrompt offers to continue after a long pause
func (r *Renderer) ResumePrompt(userName string) Reply {
	return r.Text(fmt.Sprintf("Welcome back %s! Would you like to continue where you left off or start over?\n1. Continue\n2. Start Over", userName))
}
