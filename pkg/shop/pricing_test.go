package shop

import (
	"testing"

	"github.com/shopspring/decimal"
)

func mustProduct(t *testing.T, c *Catalog, key string) Product {
	t.Helper()
	p, ok := c.Lookup(key)
	if !ok {
		t.Fatalf("catalog missing %q", key)
	}
	return p
}

func TestComputeTotalsNoDiscountBelowThreshold(t *testing.T) {
	c := DefaultCatalog()
	var cart Cart
	cart.Add(mustProduct(t, c, "mouse gaming pro"), 1)

	totals := ComputeTotals(&cart)

	if got := totals.Subtotal.StringFixed(2); got != "80.00" {
		t.Errorf("subtotal = %s, want 80.00", got)
	}
	if !totals.Discount.IsZero() {
		t.Errorf("discount = %s, want 0", totals.Discount)
	}
	if got := totals.Tax.StringFixed(2); got != "6.40" {
		t.Errorf("tax = %s, want 6.40", got)
	}
	if got := totals.Shipping.StringFixed(2); got != "10.00" {
		t.Errorf("shipping = %s, want 10.00", got)
	}
	if totals.FreeShipping {
		t.Error("free shipping below threshold")
	}
	if got := totals.Total.StringFixed(2); got != "96.40" {
		t.Errorf("total = %s, want 96.40", got)
	}
}

func TestComputeTotalsNoDiscountOverThreshold(t *testing.T) {
	c := DefaultCatalog()
	var cart Cart
	cart.Add(mustProduct(t, c, "mouse gaming pro"), 2)

	totals := ComputeTotals(&cart)

	if got := totals.Subtotal.StringFixed(2); got != "160.00" {
		t.Errorf("subtotal = %s, want 160.00", got)
	}
	if got := totals.Tax.StringFixed(2); got != "12.80" {
		t.Errorf("tax = %s, want 12.80", got)
	}
	if !totals.Shipping.IsZero() || !totals.FreeShipping {
		t.Errorf("shipping = %s free=%v, want free", totals.Shipping, totals.FreeShipping)
	}
	if got := totals.Total.StringFixed(2); got != "172.80" {
		t.Errorf("total = %s, want 172.80", got)
	}
}

func TestComputeTotalsWithDiscountAndFreeShipping(t *testing.T) {
	c := DefaultCatalog()
	var cart Cart
	cart.Add(mustProduct(t, c, "mouse gaming pro"), 1)        // 80
	cart.Add(mustProduct(t, c, "mechanical keyboard rgb"), 1) // 120
	cart.SetDiscountCode("WELCOME10")

	totals := ComputeTotals(&cart)

	if got := totals.Subtotal.StringFixed(2); got != "200.00" {
		t.Errorf("subtotal = %s, want 200.00", got)
	}
	if got := totals.Discount.StringFixed(2); got != "20.00" {
		t.Errorf("discount = %s, want 20.00", got)
	}
	// Tax applies to the discounted subtotal (180).
	if got := totals.Tax.StringFixed(2); got != "14.40" {
		t.Errorf("tax = %s, want 14.40", got)
	}
	if !totals.Shipping.IsZero() || !totals.FreeShipping {
		t.Errorf("shipping = %s free=%v, want free", totals.Shipping, totals.FreeShipping)
	}
	if got := totals.Total.StringFixed(2); got != "194.40" {
		t.Errorf("total = %s, want 194.40", got)
	}
}

func TestShippingJudgedOnPreDiscountSubtotal(t *testing.T) {
	// Subtotal lands exactly on the threshold; the 30% discount drops the
	// payable amount below it, but shipping stays free.
	c := NewCatalog()
	if err := c.Add("widget", Product{ID: "W1", Name: "Widget", Price: decimal.NewFromInt(100), Stock: 10}); err != nil {
		t.Fatal(err)
	}

	var cart Cart
	cart.Add(mustProduct(t, c, "widget"), 1)
	cart.SetDiscountCode("VIP30")

	totals := ComputeTotals(&cart)

	if got := totals.Discount.StringFixed(2); got != "30.00" {
		t.Errorf("discount = %s, want 30.00", got)
	}
	if got := totals.Tax.StringFixed(2); got != "5.60" {
		t.Errorf("tax = %s, want 5.60", got)
	}
	if !totals.FreeShipping {
		t.Error("shipping eligibility must use the pre-discount subtotal")
	}
	if got := totals.Total.StringFixed(2); got != "75.60" {
		t.Errorf("total = %s, want 75.60", got)
	}
}

func TestComputeTotalsEmptyCart(t *testing.T) {
	var cart Cart
	totals := ComputeTotals(&cart)

	if !totals.Subtotal.IsZero() || !totals.Tax.IsZero() || !totals.Discount.IsZero() {
		t.Errorf("empty cart totals not zero: %+v", totals)
	}
	// An empty cart is below the threshold, so the flat rate applies.
	if got := totals.Shipping.StringFixed(2); got != "10.00" {
		t.Errorf("shipping = %s, want 10.00", got)
	}
}

func TestDiscountRate(t *testing.T) {
	tests := []struct {
		code     string
		wantRate string
		wantOK   bool
	}{
		{code: "WELCOME10", wantRate: "0.1", wantOK: true},
		{code: "save20", wantRate: "0.2", wantOK: true},
		{code: "  vip30  ", wantRate: "0.3", wantOK: true},
		{code: "BOGUS", wantOK: false},
		{code: "", wantOK: false},
	}

	for _, tt := range tests {
		rate, ok := DiscountRate(tt.code)
		if ok != tt.wantOK {
			t.Errorf("DiscountRate(%q) ok = %v, want %v", tt.code, ok, tt.wantOK)
			continue
		}
		if ok && rate.String() != tt.wantRate {
			t.Errorf("DiscountRate(%q) = %s, want %s", tt.code, rate, tt.wantRate)
		}
	}
}

func TestFormatPrice(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "$0.00"},
		{"9.5", "$9.50"},
		{"80", "$80.00"},
		{"182.8", "$182.80"},
		{"1500", "$1,500.00"},
		{"1234567.891", "$1,234,567.89"},
		{"-42", "-$42.00"},
	}

	for _, tt := range tests {
		d, err := decimal.NewFromString(tt.in)
		if err != nil {
			t.Fatalf("bad test input %q: %v", tt.in, err)
		}
		if got := FormatPrice(d); got != tt.want {
			t.Errorf("FormatPrice(%s) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
