// Package shoptools exposes the shop operations as agent-callable function
// tools. Each tool resolves against a Binding, which serializes access to
// one conversation's shop session.
package shoptools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/nlpodyssey/openai-agents-go/agents"

	"github.com/kgomo/shopmate/pkg/shop"
)

// Binding pairs a shop session with a mutex. The session itself is not safe
// for concurrent use, and agent runtimes may execute tool calls in
// parallel.
type Binding struct {
	mu      sync.Mutex
	session *shop.Session
}

// Bind wraps a session for tool use. A nil session gets a fresh one over
// the default catalog.
func Bind(session *shop.Session) *Binding {
	if session == nil {
		session = shop.NewSession(nil)
	}
	return &Binding{session: session}
}

// do runs op under the lock and renders its result as indented JSON, which
// is the text handed back to the model.
func (b *Binding) do(op func(s *shop.Session) any) (string, error) {
	b.mu.Lock()
	result := op(b.session)
	b.mu.Unlock()

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal tool result: %w", err)
	}
	return string(out), nil
}

type searchProductParams struct {
	Query string `json:"query"`
}

// SearchProductTool looks a product up by name, tolerating typos and
// partial names, and records the query in the session's search history.
func SearchProductTool(b *Binding) agents.FunctionTool {
	return agents.NewFunctionTool(
		"search_product",
		"Search the catalog for a product by name. The search is fuzzy, so the name does not have to be exact. Returns full product details or suggestions when nothing matches.",
		func(_ context.Context, params searchProductParams) (string, error) {
			if strings.TrimSpace(params.Query) == "" {
				return "", fmt.Errorf("query is required")
			}
			return b.do(func(s *shop.Session) any {
				return s.SearchProduct(params.Query)
			})
		},
	)
}

type addToCartParams struct {
	Product  string `json:"product"`
	Quantity int    `json:"quantity,omitempty"`
}

// AddToCartTool adds units of a product to the cart, with fuzzy product
// resolution and stock checking.
func AddToCartTool(b *Binding) agents.FunctionTool {
	return agents.NewFunctionTool(
		"add_to_cart",
		"Add a product to the shopping cart. The product name is matched fuzzily. Quantity defaults to 1. Fails with a stock breakdown when not enough units are available.",
		func(_ context.Context, params addToCartParams) (string, error) {
			if strings.TrimSpace(params.Product) == "" {
				return "", fmt.Errorf("product is required")
			}
			if params.Quantity == 0 {
				params.Quantity = 1
			}
			return b.do(func(s *shop.Session) any {
				return s.AddToCart(params.Product, params.Quantity)
			})
		},
	)
}

type noParams struct{}

// ViewCartTool shows the cart contents with the full price breakdown.
func ViewCartTool(b *Binding) agents.FunctionTool {
	return agents.NewFunctionTool(
		"view_cart",
		"Show the current cart: items, quantities, subtotal, discount, tax, shipping, and total. Reports an empty status when there is nothing in the cart.",
		func(_ context.Context, _ noParams) (string, error) {
			return b.do(func(s *shop.Session) any {
				return s.ViewCart()
			})
		},
	)
}

type applyDiscountParams struct {
	Code string `json:"code"`
}

// ApplyDiscountTool applies a discount code to the cart.
func ApplyDiscountTool(b *Binding) agents.FunctionTool {
	return agents.NewFunctionTool(
		"apply_discount",
		"Apply a discount code to the cart. The cart must not be empty. Invalid codes fail with the list of valid codes.",
		func(_ context.Context, params applyDiscountParams) (string, error) {
			if strings.TrimSpace(params.Code) == "" {
				return "", fmt.Errorf("code is required")
			}
			return b.do(func(s *shop.Session) any {
				return s.ApplyDiscount(params.Code)
			})
		},
	)
}

type removeFromCartParams struct {
	Product  string `json:"product"`
	Quantity *int   `json:"quantity,omitempty"`
}

// RemoveFromCartTool removes a product from the cart, fully or partially.
func RemoveFromCartTool(b *Binding) agents.FunctionTool {
	return agents.NewFunctionTool(
		"remove_from_cart",
		"Remove a product from the cart. Omit quantity to remove the product entirely; give a quantity to remove only that many units.",
		func(_ context.Context, params removeFromCartParams) (string, error) {
			if strings.TrimSpace(params.Product) == "" {
				return "", fmt.Errorf("product is required")
			}
			return b.do(func(s *shop.Session) any {
				return s.RemoveFromCart(params.Product, params.Quantity)
			})
		},
	)
}

// ClearCartTool empties the cart and resets any applied discount.
func ClearCartTool(b *Binding) agents.FunctionTool {
	return agents.NewFunctionTool(
		"clear_cart",
		"Empty the cart completely and reset any applied discount code. Reports how many products and units were removed.",
		func(_ context.Context, _ noParams) (string, error) {
			return b.do(func(s *shop.Session) any {
				return s.ClearCart()
			})
		},
	)
}

// CartTotalTool computes the detailed cost breakdown for the cart.
func CartTotalTool(b *Binding) agents.FunctionTool {
	return agents.NewFunctionTool(
		"cart_total",
		"Calculate the detailed cart total: per-item subtotals, discount, tax, shipping, final total, and any savings.",
		func(_ context.Context, _ noParams) (string, error) {
			return b.do(func(s *shop.Session) any {
				return s.CartTotal()
			})
		},
	)
}

type recommendParams struct {
	Category string `json:"category,omitempty"`
}

// RecommendTool suggests top-rated products, optionally within a category.
func RecommendTool(b *Binding) agents.FunctionTool {
	return agents.NewFunctionTool(
		"recommend_products",
		"Recommend up to three top-rated products, optionally filtered by category. Unknown categories fail with the list of available categories.",
		func(_ context.Context, params recommendParams) (string, error) {
			return b.do(func(s *shop.Session) any {
				return s.Recommend(strings.TrimSpace(params.Category))
			})
		},
	)
}

// SearchHistoryTool returns the most recent search queries.
func SearchHistoryTool(b *Binding) agents.FunctionTool {
	return agents.NewFunctionTool(
		"search_history",
		"Show the customer's most recent product searches (up to five).",
		func(_ context.Context, _ noParams) (string, error) {
			return b.do(func(s *shop.Session) any {
				return s.RecentSearches()
			})
		},
	)
}
