package shop

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// SearchProduct looks a product up by (possibly approximate) name. The raw
// query is recorded in the search history whether or not it resolves.
func (s *Session) SearchProduct(query string) SearchResult {
	s.recordSearch(query)

	_, p, ok := s.catalog.Resolve(query)
	if !ok {
		var suggestions []string
		for i, cand := range s.catalog.Products() {
			if i >= 3 {
				break
			}
			suggestions = append(suggestions, fmt.Sprintf("%s (%s)", cand.Name, FormatPrice(cand.Price)))
		}
		return SearchResult{
			Status:      StatusNotFound,
			Message:     fmt.Sprintf("No product found for %q.", query),
			Suggestions: suggestions,
		}
	}

	view := productView(p)
	return SearchResult{
		Status:  StatusSuccess,
		Message: fmt.Sprintf("Product %q found.", p.Name),
		Product: &view,
	}
}

// AddToCart resolves a product and adds qty units, enforcing the stock cap
// against what is already in the cart. On any failure the cart is left
// untouched.
func (s *Session) AddToCart(query string, qty int) AddResult {
	if qty <= 0 {
		return AddResult{
			Status:  StatusError,
			Error:   ErrValidation,
			Message: "Quantity must be a positive whole number.",
		}
	}

	_, p, ok := s.catalog.Resolve(query)
	if !ok {
		return AddResult{
			Status:  StatusError,
			Error:   ErrNotFound,
			Message: fmt.Sprintf("No product found for %q. Try searching the catalog for options.", query),
		}
	}

	inCart := s.cart.QuantityOf(p.ID)
	if inCart+qty > p.Stock {
		available := p.Stock - inCart
		return AddResult{
			Status:  StatusError,
			Error:   ErrStock,
			Message: fmt.Sprintf("Not enough stock: only %d units of %q are available.", available, p.Name),
			Stock: &StockInfo{
				Stock:     p.Stock,
				InCart:    inCart,
				Available: available,
			},
		}
	}

	s.cart.Add(p, qty)
	subtotal := s.cart.Subtotal()

	return AddResult{
		Status:  StatusSuccess,
		Message: fmt.Sprintf("Added %dx %q to the cart.", qty, p.Name),
		Added: &AddedItem{
			Name:      p.Name,
			Quantity:  qty,
			UnitPrice: FormatPrice(p.Price),
			Subtotal:  FormatPrice(p.Price.Mul(decimal.NewFromInt(int64(qty)))),
		},
		Cart: &CartBrief{
			TotalUnits:   s.cart.TotalUnits(),
			Subtotal:     FormatPrice(subtotal),
			FreeShipping: subtotal.GreaterThanOrEqual(ShippingThreshold),
		},
	}
}

// ViewCart renders the cart with a full price breakdown. An empty cart is a
// distinct empty status, not an error.
func (s *Session) ViewCart() ViewResult {
	if s.cart.IsEmpty() {
		return ViewResult{
			Status:     StatusEmpty,
			Message:    "The cart is empty.",
			Suggestion: "Search the catalog or ask for recommendations.",
		}
	}

	totals := ComputeTotals(&s.cart)
	res := ViewResult{
		Status:        StatusSuccess,
		Message:       fmt.Sprintf("The cart has %d units across %d products.", s.cart.TotalUnits(), s.cart.Len()),
		Items:         lineViews(s.cart.Lines()),
		TotalProducts: s.cart.Len(),
		TotalUnits:    s.cart.TotalUnits(),
		Totals:        totalsView(totals),
	}
	if totals.Discount.IsPositive() {
		res.Savings = fmt.Sprintf("You are saving %s!", FormatPrice(totals.Discount))
	}
	if totals.FreeShipping {
		res.Shipping = "Free shipping included!"
	}
	return res
}

// ApplyDiscount validates and applies a discount code to a non-empty cart.
// Re-applying the same valid code succeeds and reports the same discount.
func (s *Session) ApplyDiscount(code string) DiscountResult {
	if s.cart.IsEmpty() {
		return DiscountResult{
			Status:  StatusError,
			Error:   ErrEmptyCart,
			Message: "The cart is empty. Add products before applying a discount.",
		}
	}

	normalized := NormalizeDiscountCode(code)
	rate, ok := DiscountRate(normalized)
	if !ok {
		return DiscountResult{
			Status:     StatusError,
			Error:      ErrInvalidCode,
			Message:    fmt.Sprintf("Discount code %q is not valid.", code),
			ValidCodes: ValidDiscountCodes(),
		}
	}

	s.cart.SetDiscountCode(normalized)
	totals := ComputeTotals(&s.cart)
	percent := rate.Mul(decimal.NewFromInt(100)).IntPart()

	return DiscountResult{
		Status:  StatusSuccess,
		Message: fmt.Sprintf("Code %q applied: %d%% off.", normalized, percent),
		Discount: &DiscountView{
			Code:     normalized,
			Percent:  fmt.Sprintf("%d%%", percent),
			Amount:   FormatPrice(totals.Discount),
			Subtotal: FormatPrice(totals.Subtotal),
			Total:    FormatPrice(totals.Total),
		},
	}
}

// RemoveFromCart takes units of a product out of the cart. A nil quantity
// (or one at least the line quantity) removes the line entirely; a smaller
// positive quantity decrements it.
func (s *Session) RemoveFromCart(query string, quantity *int) RemoveResult {
	if quantity != nil && *quantity <= 0 {
		return RemoveResult{
			Status:  StatusError,
			Error:   ErrValidation,
			Message: "Quantity must be greater than zero.",
		}
	}

	_, p, ok := s.catalog.Resolve(query)
	if !ok {
		return RemoveResult{
			Status:  StatusError,
			Error:   ErrNotFound,
			Message: fmt.Sprintf("Product %q not found in the cart.", query),
		}
	}

	current := s.cart.QuantityOf(p.ID)
	if current == 0 {
		return RemoveResult{
			Status:  StatusError,
			Error:   ErrNotFound,
			Message: fmt.Sprintf("%q is not in the cart.", p.Name),
		}
	}

	if quantity == nil || *quantity >= current {
		removed := s.cart.RemoveLine(p.ID)
		return RemoveResult{
			Status:       StatusSuccess,
			Message:      fmt.Sprintf("Removed %q from the cart.", p.Name),
			Product:      p.Name,
			UnitsRemoved: removed,
		}
	}

	line, _ := s.cart.Decrement(p.ID, *quantity)
	return RemoveResult{
		Status:       StatusSuccess,
		Message:      fmt.Sprintf("Removed %d units of %q.", *quantity, p.Name),
		Product:      p.Name,
		UnitsRemoved: *quantity,
		UnitsLeft:    line.Quantity,
	}
}

// ClearCart empties the cart and resets the discount code. It always
// succeeds, even on an already-empty cart.
func (s *Session) ClearCart() ClearResult {
	products, units := s.cart.Clear()
	return ClearResult{
		Status:          StatusSuccess,
		Message:         "Cart cleared.",
		ProductsRemoved: products,
		UnitsRemoved:    units,
	}
}

// CartTotal produces the detailed cost breakdown, including savings from
// discounts and waived shipping.
func (s *Session) CartTotal() TotalResult {
	if s.cart.IsEmpty() {
		return TotalResult{
			Status:  StatusEmpty,
			Message: "The cart is empty.",
		}
	}

	totals := ComputeTotals(&s.cart)
	taxPercent := TaxRate.Mul(decimal.NewFromInt(100)).IntPart()

	res := TotalResult{
		Status:       StatusSuccess,
		Message:      fmt.Sprintf("Total due: %s", FormatPrice(totals.Total)),
		Items:        lineViews(s.cart.Lines()),
		Totals:       totalsView(totals),
		TaxRate:      fmt.Sprintf("%d%%", taxPercent),
		FreeShipOver: FormatPrice(ShippingThreshold),
	}

	var savings []string
	saved := decimal.Zero
	if totals.Discount.IsPositive() {
		savings = append(savings, fmt.Sprintf("Discount: %s", FormatPrice(totals.Discount)))
		saved = saved.Add(totals.Discount)
	}
	if totals.FreeShipping {
		savings = append(savings, fmt.Sprintf("Free shipping: %s", FormatPrice(ShippingCost)))
		saved = saved.Add(ShippingCost)
	}
	if len(savings) > 0 {
		res.Savings = &SavingsView{
			Items: savings,
			Total: FormatPrice(saved),
		}
	}
	return res
}

// Recommend returns the top three products ranked by rating, then review
// count. A non-empty category filters the candidates first (case
// insensitive, exact match).
func (s *Session) Recommend(category string) RecommendResult {
	candidates := s.catalog.Products()

	if category != "" {
		var filtered []Product
		for _, p := range candidates {
			if strings.EqualFold(p.Category, category) {
				filtered = append(filtered, p)
			}
		}
		if len(filtered) == 0 {
			return RecommendResult{
				Status:     StatusError,
				Error:      ErrCategoryNotFound,
				Message:    fmt.Sprintf("No products in category %q.", category),
				Categories: s.catalog.Categories(),
			}
		}
		candidates = filtered
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Rating != candidates[j].Rating {
			return candidates[i].Rating > candidates[j].Rating
		}
		return candidates[i].Reviews > candidates[j].Reviews
	})

	if len(candidates) > 3 {
		candidates = candidates[:3]
	}

	views := make([]RecommendationView, 0, len(candidates))
	for _, p := range candidates {
		views = append(views, RecommendationView{
			Name:        p.Name,
			Price:       FormatPrice(p.Price),
			Rating:      fmt.Sprintf("%.1f/5.0", p.Rating),
			Category:    p.Category,
			Description: p.Description,
			Available:   p.Stock > 0,
		})
	}

	label := category
	if label == "" {
		label = "All"
	}
	return RecommendResult{
		Status:          StatusSuccess,
		Message:         fmt.Sprintf("Top %d recommended products", len(views)),
		Category:        label,
		Recommendations: views,
	}
}

// RecentSearches returns up to the last five recorded queries in insertion
// order.
func (s *Session) RecentSearches() HistoryResult {
	if len(s.searches) == 0 {
		return HistoryResult{
			Status:  StatusEmpty,
			Message: "No recent searches.",
		}
	}

	start := 0
	if len(s.searches) > 5 {
		start = len(s.searches) - 5
	}
	recent := make([]string, len(s.searches)-start)
	copy(recent, s.searches[start:])

	return HistoryResult{
		Status:        StatusSuccess,
		Message:       fmt.Sprintf("Last %d searches.", len(recent)),
		Recent:        recent,
		TotalSearches: len(s.searches),
	}
}

func productView(p Product) ProductView {
	return ProductView{
		ID:             p.ID,
		Name:           p.Name,
		Price:          p.Price.StringFixed(2),
		PriceFormatted: FormatPrice(p.Price),
		Stock:          p.Stock,
		Features:       p.Features,
		Category:       p.Category,
		Description:    p.Description,
		Rating:         fmt.Sprintf("%.1f/5.0 (%d reviews)", p.Rating, p.Reviews),
		Available:      p.Stock > 0,
	}
}

func lineViews(lines []CartLine) []LineView {
	out := make([]LineView, 0, len(lines))
	for _, l := range lines {
		out = append(out, LineView{
			Name:      l.Name,
			Quantity:  l.Quantity,
			UnitPrice: FormatPrice(l.UnitPrice),
			Subtotal:  FormatPrice(l.Subtotal),
		})
	}
	return out
}

func totalsView(t Totals) *TotalsView {
	v := &TotalsView{
		Subtotal:     FormatPrice(t.Subtotal),
		Tax:          FormatPrice(t.Tax),
		Shipping:     FormatPrice(t.Shipping),
		FreeShipping: t.FreeShipping,
		Total:        FormatPrice(t.Total),
	}
	if t.Discount.IsPositive() {
		v.Discount = FormatPrice(t.Discount)
		v.DiscountCode = t.DiscountCode
	}
	return v
}
