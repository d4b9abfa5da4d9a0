package shop

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Pricing constants. Tax applies to the post-discount subtotal; shipping is
// waived when the pre-discount subtotal reaches the threshold.
var (
	TaxRate           = decimal.NewFromFloat(0.08)
	ShippingThreshold = decimal.NewFromInt(100)
	ShippingCost      = decimal.NewFromInt(10)
)

// discountCodes maps a discount code to its fractional rate. The slice keeps
// a fixed order for listing valid codes in error payloads.
var discountCodeOrder = []string{"WELCOME10", "SAVE20", "VIP30"}

var discountRates = map[string]decimal.Decimal{
	"WELCOME10": decimal.NewFromFloat(0.10),
	"SAVE20":    decimal.NewFromFloat(0.20),
	"VIP30":     decimal.NewFromFloat(0.30),
}

// DiscountRate returns the fractional rate for a normalized (trimmed,
// uppercased) discount code.
func DiscountRate(code string) (decimal.Decimal, bool) {
	rate, ok := discountRates[NormalizeDiscountCode(code)]
	return rate, ok
}

// NormalizeDiscountCode trims and uppercases a code.
func NormalizeDiscountCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// ValidDiscountCodes lists the recognized codes in a fixed order.
func ValidDiscountCodes() []string {
	out := make([]string, len(discountCodeOrder))
	copy(out, discountCodeOrder)
	return out
}

// Totals is a full price breakdown for a cart snapshot. It is always
// recomputed from the current lines and discount code, never cached.
type Totals struct {
	Subtotal     decimal.Decimal
	DiscountCode string
	Discount     decimal.Decimal
	Tax          decimal.Decimal
	Shipping     decimal.Decimal
	FreeShipping bool
	Total        decimal.Decimal
}

// ComputeTotals applies the pricing policy to a cart.
func ComputeTotals(cart *Cart) Totals {
	subtotal := cart.Subtotal()

	discount := decimal.Zero
	code := cart.DiscountCode()
	if code != "" {
		if rate, ok := discountRates[code]; ok {
			discount = subtotal.Mul(rate)
		}
	}

	tax := subtotal.Sub(discount).Mul(TaxRate)

	// Shipping eligibility is judged on the pre-discount subtotal.
	shipping := ShippingCost
	free := subtotal.GreaterThanOrEqual(ShippingThreshold)
	if free {
		shipping = decimal.Zero
	}

	return Totals{
		Subtotal:     subtotal,
		DiscountCode: code,
		Discount:     discount,
		Tax:          tax,
		Shipping:     shipping,
		FreeShipping: free,
		Total:        subtotal.Sub(discount).Add(tax).Add(shipping),
	}
}

// FormatPrice renders a money amount as "$1,234.56".
func FormatPrice(d decimal.Decimal) string {
	s := d.StringFixed(2)

	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}

	dot := strings.IndexByte(s, '.')
	whole, frac := s[:dot], s[dot:]

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	b.WriteByte('$')
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	b.WriteString(frac)
	return b.String()
}
