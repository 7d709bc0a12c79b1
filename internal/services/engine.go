package services

import (
	"strconv"
	"strings"
	"time"

	"github.com/Ananth-NQI/shopbot-backend/internal/models"
	"github.com/Ananth-NQI/shopbot-backend/internal/utils"
)

// DefaultIdleTimeout is how long a user can be away before being asked
// whether to continue or start over
const DefaultIdleTimeout = time.Hour

// Event is an analytics notification produced by a transition
type Event struct {
	Action  string
	Details map[string]interface{}
}

// Outcome is everything a transition wants done besides the new session
type Outcome struct {
	Replies []Reply
	Events  []Event
	// ScheduleMenu asks for the main menu to be sent shortly after an order
	ScheduleMenu bool
}

func (o *Outcome) reply(r ...Reply) {
	o.Replies = append(o.Replies, r...)
}

func (o *Outcome) emit(action string, details map[string]interface{}) {
	o.Events = append(o.Events, Event{Action: action, Details: details})
}

// ConversationEngine advances a session by one inbound message. It does no
// I/O besides read-only catalog queries and never mutates its input.
type ConversationEngine struct {
	catalog     Catalog
	renderer    *Renderer
	idleTimeout time.Duration
	newOrderRef func() string
}

// NewConversationEngine creates the state machine
func NewConversationEngine(catalog Catalog, renderer *Renderer, idleTimeout time.Duration) *ConversationEngine {
	if idleTimeout <= 0 {
		idleTimeout = DefaultIdleTimeout
	}
	return &ConversationEngine{
		catalog:     catalog,
		renderer:    renderer,
		idleTimeout: idleTimeout,
		newOrderRef: func() string { return utils.GenerateSecureID("ORD") },
	}
}

// Transition processes one message and returns the next session
func (e *ConversationEngine) Transition(prev models.Session, rawText, userName string, now time.Time) (models.Session, Outcome) {
	s := prev.Clone()
	input := strings.TrimSpace(rawText)
	cmd := strings.ToLower(input)
	var out Outcome

	// "menu" wins over everything, including a pending resume prompt
	if cmd == "menu" {
		s.CurrentCategory = ""
		s.CurrentItem = ""
		s.SearchResults = nil
		s.Cart = []models.CartLine{}
		s.TempState = ""
		e.toMainMenu(&s, userName, &out)
		commit(&s, now)
		return s, out
	}

	if e.idle(s, now) {
		s.TempState = models.TempStateReturning
		out.reply(e.renderer.ResumePrompt(userName))
		return s, out
	}

	if s.TempState == models.TempStateReturning {
		s.TempState = ""
		if input != "1" && cmd != "continue" {
			s.State = models.StateInitial
			s.CurrentCategory = ""
			s.CurrentItem = ""
			s.SearchResults = nil
			s.Cart = []models.CartLine{}
		}
	}

	e.dispatch(&s, input, cmd, userName, &out)
	commit(&s, now)
	return s, out
}

// ReturnToMenu is the deferred follow-up to a confirmed order. It is not a
// user turn, so lastState and lastInteraction stay as the order left them.
func (e *ConversationEngine) ReturnToMenu(prev models.Session, userName string) (models.Session, Outcome, bool) {
	if prev.State != models.StateInitial {
		return prev, Outcome{}, false
	}
	s := prev.Clone()
	var out Outcome
	e.toMainMenu(&s, userName, &out)
	return s, out, true
}

func (e *ConversationEngine) idle(s models.Session, now time.Time) bool {
	return s.TempState != models.TempStateReturning &&
		s.LastInteraction != nil &&
		s.LastState != models.StateInitial &&
		now.Sub(*s.LastInteraction) > e.idleTimeout
}

func commit(s *models.Session, now time.Time) {
	at := now
	s.LastInteraction = &at
	s.LastState = s.State
}

func (e *ConversationEngine) toMainMenu(s *models.Session, userName string, out *Outcome) {
	s.State = models.StateMainMenu
	out.reply(e.renderer.MainMenu(userName))
}

func (e *ConversationEngine) dispatch(s *models.Session, input, cmd, userName string, out *Outcome) {
	switch s.State {
	case models.StateInitial:
		e.toMainMenu(s, userName, out)

	case models.StateMainMenu:
		if cmd == "search" {
			out.reply(e.renderer.SearchPrompt())
			s.State = models.StateSearching
			return
		}
		e.selectCategory(s, input, out)

	case models.StateSearching:
		results := e.catalog.SearchProducts(input)
		s.SearchResults = make([]string, 0, len(results))
		for _, p := range results {
			s.SearchResults = append(s.SearchResults, string(p.ID))
		}
		out.reply(e.renderer.SearchResults(input, results))
		out.emit(models.ActionSearch, map[string]interface{}{
			"keyword":      input,
			"resultsCount": len(results),
		})
		s.State = models.StateSearchResults

	case models.StateSearchResults:
		if cmd == "search" {
			out.reply(e.renderer.SearchPrompt())
			s.State = models.StateSearching
			return
		}
		// positions follow the list as shown; a product gone since then
		// keeps its slot as a zero value
		results := make([]models.Product, len(s.SearchResults))
		for i, id := range s.SearchResults {
			if p, ok := e.catalog.FindProductByID(models.ID(id)); ok {
				results[i] = p
			}
		}
		e.selectProduct(s, input, results, out)

	case models.StateCategorySelected:
		category, ok := e.catalog.FindCategoryByName(s.CurrentCategory)
		if !ok {
			out.reply(e.renderer.CategoryNotFound())
			return
		}
		e.selectProduct(s, input, e.catalog.ListProductsByCategory(category.ID), out)

	case models.StateItemSelected:
		e.addToCart(s, input, userName, out)

	case models.StateCart:
		switch cmd {
		case "checkout":
			// lines whose product left the catalog cannot be paid for
			if lines, _ := PriceCart(e.catalog, s.Cart); len(lines) == 0 {
				out.reply(e.renderer.EmptyCart())
				return
			}
			out.reply(e.renderer.Checkout(s.Cart, userName))
			s.State = models.StateCheckout
		case "continue":
			e.toMainMenu(s, userName, out)
		default:
			out.reply(e.renderer.CartOptions())
		}

	case models.StateCheckout:
		switch cmd {
		case "confirm":
			if lines, _ := PriceCart(e.catalog, s.Cart); len(lines) == 0 {
				out.reply(e.renderer.EmptyCart())
				s.State = models.StateCart
				return
			}
			e.confirm(s, userName, out)
		case "cancel":
			out.reply(e.renderer.OrderCanceled())
			e.toMainMenu(s, userName, out)
		default:
			out.reply(e.renderer.CheckoutOptions())
		}

	default:
		e.toMainMenu(s, userName, out)
	}
}

func (e *ConversationEngine) selectCategory(s *models.Session, input string, out *Outcome) {
	categories := e.catalog.ListCategories()
	category, ok := pick(input, categories, func(c models.Category) string { return c.Name })
	if !ok {
		out.reply(e.renderer.InvalidSelection(len(categories)))
		return
	}

	products := e.catalog.ListProductsByCategory(category.ID)
	if len(products) == 0 {
		out.reply(e.renderer.EmptyCategory(category))
		return
	}

	out.reply(e.renderer.CategoryProducts(category, products))
	s.CurrentCategory = category.Name
	s.State = models.StateCategorySelected
}

func (e *ConversationEngine) selectProduct(s *models.Session, input string, products []models.Product, out *Outcome) {
	product, ok := pick(input, products, func(p models.Product) string { return p.Name })
	if !ok {
		out.reply(e.renderer.InvalidSelection(len(products)))
		return
	}
	if product.ID == "" {
		out.reply(e.renderer.ProductUnavailable())
		return
	}

	out.reply(e.renderer.ProductDetail(product))
	out.emit(models.ActionProductView, map[string]interface{}{
		"productId": string(product.ID),
	})
	s.CurrentItem = string(product.ID)
	s.State = models.StateItemSelected
}

func (e *ConversationEngine) addToCart(s *models.Session, input, userName string, out *Outcome) {
	line, ok := parseOrderLine(s.CurrentItem, input)
	if !ok {
		out.reply(e.renderer.QuantityPrompt())
		return
	}

	if _, exists := e.catalog.FindProductByID(models.ID(s.CurrentItem)); !exists {
		out.reply(e.renderer.ProductUnavailable())
		s.CurrentItem = ""
		e.toMainMenu(s, userName, out)
		return
	}

	s.Cart = append(s.Cart, line)
	out.reply(e.renderer.Cart(s.Cart))
	out.emit(models.ActionCartAdd, map[string]interface{}{
		"productId": line.ProductID,
		"quantity":  line.Quantity,
		"size":      line.Size,
		"color":     line.Color,
	})
	s.State = models.StateCart
}

func (e *ConversationEngine) confirm(s *models.Session, userName string, out *Outcome) {
	// total is derived from the cart as it is right now, never cached
	total := CartTotal(e.catalog, s.Cart)
	orderRef := e.newOrderRef()

	out.reply(e.renderer.OrderConfirmed(userName, total, orderRef))
	out.emit(models.ActionCheckout, map[string]interface{}{
		"items":    s.Cart,
		"total":    total.StringFixed(2),
		"orderRef": orderRef,
	})
	out.ScheduleMenu = true

	s.Cart = []models.CartLine{}
	s.CurrentItem = ""
	s.State = models.StateInitial
}

// parseOrderLine reads "qty,size,color" where size and color are optional
func parseOrderLine(productID, input string) (models.CartLine, bool) {
	parts := strings.Split(input, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	qty, err := strconv.Atoi(parts[0])
	if err != nil || qty <= 0 {
		return models.CartLine{}, false
	}

	var size, color string
	if len(parts) > 1 {
		size = parts[1]
	}
	if len(parts) > 2 {
		color = parts[2]
	}
	return models.NewCartLine(productID, qty, size, color), true
}

// pick selects from the list as displayed: a number is a 1-based position
// first, and only otherwise (or when out of range) an exact name match
func pick[T any](input string, items []T, name func(T) string) (T, bool) {
	var zero T
	input = strings.TrimSpace(input)
	if n, err := strconv.Atoi(input); err == nil && n >= 1 && n <= len(items) {
		return items[n-1], true
	}
	for _, item := range items {
		if n := name(item); n != "" && strings.EqualFold(n, input) {
			return item, true
		}
	}
	return zero, false
}
