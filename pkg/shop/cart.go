package shop

import "github.com/shopspring/decimal"

// CartLine is one product in the cart. Name and UnitPrice are snapshots
// taken when the product was first added. Quantity is always positive; a
// line that would reach zero is removed instead.
type CartLine struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// Cart holds an ordered set of lines (one per product id) plus an optional
// applied discount code. It is not safe for concurrent use; callers that
// share a cart across goroutines must serialize access.
type Cart struct {
	lines        []CartLine
	discountCode string
}

// Lines returns a copy of the cart lines in insertion order.
func (c *Cart) Lines() []CartLine {
	out := make([]CartLine, len(c.lines))
	copy(out, c.lines)
	return out
}

// Len is the number of distinct products in the cart.
func (c *Cart) Len() int {
	return len(c.lines)
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return len(c.lines) == 0
}

// TotalUnits is the sum of line quantities.
func (c *Cart) TotalUnits() int {
	units := 0
	for _, l := range c.lines {
		units += l.Quantity
	}
	return units
}

// QuantityOf returns the quantity of the given product currently in the
// cart, or zero if absent.
func (c *Cart) QuantityOf(productID string) int {
	if i := c.lineIndex(productID); i >= 0 {
		return c.lines[i].Quantity
	}
	return 0
}

// Subtotal sums line subtotals.
func (c *Cart) Subtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, l := range c.lines {
		sum = sum.Add(l.Subtotal)
	}
	return sum
}

// DiscountCode returns the applied code, or "" if none.
func (c *Cart) DiscountCode() string {
	return c.discountCode
}

// SetDiscountCode records an already-validated discount code.
func (c *Cart) SetDiscountCode(code string) {
	c.discountCode = code
}

// Add puts qty units of p in the cart, incrementing the existing line or
// appending a new one with snapshot price. The caller is responsible for
// quantity and stock validation.
func (c *Cart) Add(p Product, qty int) CartLine {
	if i := c.lineIndex(p.ID); i >= 0 {
		c.lines[i].Quantity += qty
		c.lines[i].Subtotal = c.lines[i].UnitPrice.Mul(decimal.NewFromInt(int64(c.lines[i].Quantity)))
		return c.lines[i]
	}
	line := CartLine{
		ProductID: p.ID,
		Name:      p.Name,
		UnitPrice: p.Price,
		Quantity:  qty,
		Subtotal:  p.Price.Mul(decimal.NewFromInt(int64(qty))),
	}
	c.lines = append(c.lines, line)
	return line
}

// RemoveLine deletes the whole line for productID, returning the removed
// quantity. It is a no-op for products not in the cart.
func (c *Cart) RemoveLine(productID string) int {
	i := c.lineIndex(productID)
	if i < 0 {
		return 0
	}
	removed := c.lines[i].Quantity
	c.lines = append(c.lines[:i], c.lines[i+1:]...)
	return removed
}

// Decrement takes qty units off the line for productID and recomputes its
// subtotal. qty must be positive and strictly less than the line quantity.
func (c *Cart) Decrement(productID string, qty int) (CartLine, bool) {
	i := c.lineIndex(productID)
	if i < 0 || qty <= 0 || qty >= c.lines[i].Quantity {
		return CartLine{}, false
	}
	c.lines[i].Quantity -= qty
	c.lines[i].Subtotal = c.lines[i].UnitPrice.Mul(decimal.NewFromInt(int64(c.lines[i].Quantity)))
	return c.lines[i], true
}

// Clear removes every line and resets the discount code, returning the
// number of products and units removed.
func (c *Cart) Clear() (products, units int) {
	products = len(c.lines)
	units = c.TotalUnits()
	c.lines = nil
	c.discountCode = ""
	return products, units
}

func (c *Cart) lineIndex(productID string) int {
	for i := range c.lines {
		if c.lines[i].ProductID == productID {
			return i
		}
	}
	return -1
}
