package shop

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(n int) *int { return &n }

func TestSearchProduct(t *testing.T) {
	s := NewSession(nil)

	res := s.SearchProduct("mouse gaming pro")
	require.Equal(t, StatusSuccess, res.Status)
	require.NotNil(t, res.Product)
	assert.Equal(t, "MOU002", res.Product.ID)
	assert.Equal(t, "$80.00", res.Product.PriceFormatted)
	assert.True(t, res.Product.Available)

	res = s.SearchProduct("whatever this is")
	assert.Equal(t, StatusNotFound, res.Status)
	assert.Nil(t, res.Product)
	assert.Len(t, res.Suggestions, 3)

	// Both queries, resolved or not, are in the history.
	assert.Equal(t, 2, s.SearchCount())
}

func TestAddToCartValidation(t *testing.T) {
	s := NewSession(nil)

	for _, qty := range []int{0, -1, -100} {
		res := s.AddToCart("mouse gaming pro", qty)
		assert.Equal(t, StatusError, res.Status)
		assert.Equal(t, ErrValidation, res.Error)
	}
	assert.True(t, s.Cart().IsEmpty())

	res := s.AddToCart("nonexistent thing", 1)
	assert.Equal(t, StatusError, res.Status)
	assert.Equal(t, ErrNotFound, res.Error)
	assert.True(t, s.Cart().IsEmpty())
}

func TestAddToCartAccumulates(t *testing.T) {
	s := NewSession(nil)

	res := s.AddToCart("mouse gaming pro", 2)
	require.Equal(t, StatusSuccess, res.Status)
	require.NotNil(t, res.Added)
	assert.Equal(t, 2, res.Added.Quantity)
	assert.Equal(t, "$160.00", res.Added.Subtotal)
	require.NotNil(t, res.Cart)
	assert.Equal(t, 2, res.Cart.TotalUnits)
	assert.True(t, res.Cart.FreeShipping) // 160 >= 100

	res = s.AddToCart("Mouse Gaming Pro", 3)
	require.Equal(t, StatusSuccess, res.Status)
	assert.Equal(t, 5, s.Cart().QuantityOf("MOU002"))
	assert.Equal(t, 1, s.Cart().Len())
}

func TestAddToCartStockCap(t *testing.T) {
	s := NewSession(nil)

	// Monitor 4K HDR has stock 5.
	res := s.AddToCart("monitor 4k hdr", 20)
	require.Equal(t, StatusError, res.Status)
	assert.Equal(t, ErrStock, res.Error)
	require.NotNil(t, res.Stock)
	assert.Equal(t, 5, res.Stock.Stock)
	assert.Equal(t, 0, res.Stock.InCart)
	assert.Equal(t, 5, res.Stock.Available)
	assert.True(t, s.Cart().IsEmpty(), "failed add must leave the cart unchanged")

	require.Equal(t, StatusSuccess, s.AddToCart("monitor 4k hdr", 3).Status)

	res = s.AddToCart("monitor 4k hdr", 3)
	require.Equal(t, StatusError, res.Status)
	assert.Equal(t, ErrStock, res.Error)
	require.NotNil(t, res.Stock)
	assert.Equal(t, 3, res.Stock.InCart)
	assert.Equal(t, 2, res.Stock.Available)
	assert.Equal(t, 3, s.Cart().QuantityOf("MON003"))

	// Exactly exhausting the stock is allowed.
	assert.Equal(t, StatusSuccess, s.AddToCart("monitor 4k hdr", 2).Status)
	assert.Equal(t, 5, s.Cart().QuantityOf("MON003"))
}

func TestViewCart(t *testing.T) {
	s := NewSession(nil)

	res := s.ViewCart()
	assert.Equal(t, StatusEmpty, res.Status)
	assert.Nil(t, res.Totals)

	require.Equal(t, StatusSuccess, s.AddToCart("mouse gaming pro", 2).Status)

	res = s.ViewCart()
	require.Equal(t, StatusSuccess, res.Status)
	require.NotNil(t, res.Totals)
	assert.Equal(t, "$160.00", res.Totals.Subtotal)
	assert.Equal(t, "$12.80", res.Totals.Tax)
	assert.Equal(t, "$0.00", res.Totals.Shipping)
	assert.True(t, res.Totals.FreeShipping)
	assert.Equal(t, "$172.80", res.Totals.Total)
	assert.Equal(t, 1, res.TotalProducts)
	assert.Equal(t, 2, res.TotalUnits)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "Mouse Gaming Pro", res.Items[0].Name)
}

func TestApplyDiscount(t *testing.T) {
	s := NewSession(nil)

	res := s.ApplyDiscount("WELCOME10")
	assert.Equal(t, StatusError, res.Status)
	assert.Equal(t, ErrEmptyCart, res.Error)

	require.Equal(t, StatusSuccess, s.AddToCart("mouse gaming pro", 1).Status)        // 80
	require.Equal(t, StatusSuccess, s.AddToCart("mechanical keyboard rgb", 1).Status) // 120

	res = s.ApplyDiscount("NOPE")
	assert.Equal(t, StatusError, res.Status)
	assert.Equal(t, ErrInvalidCode, res.Error)
	assert.Equal(t, []string{"WELCOME10", "SAVE20", "VIP30"}, res.ValidCodes)
	assert.Empty(t, s.Cart().DiscountCode())

	res = s.ApplyDiscount("  welcome10 ")
	require.Equal(t, StatusSuccess, res.Status)
	require.NotNil(t, res.Discount)
	assert.Equal(t, "WELCOME10", res.Discount.Code)
	assert.Equal(t, "10%", res.Discount.Percent)
	assert.Equal(t, "$20.00", res.Discount.Amount)
	assert.Equal(t, "$200.00", res.Discount.Subtotal)
	assert.Equal(t, "$194.40", res.Discount.Total)

	// Re-applying the same code succeeds and reports the same numbers.
	again := s.ApplyDiscount("WELCOME10")
	require.Equal(t, StatusSuccess, again.Status)
	assert.Equal(t, res.Discount, again.Discount)
}

func TestRemoveFromCart(t *testing.T) {
	s := NewSession(nil)

	res := s.RemoveFromCart("mouse gaming pro", nil)
	assert.Equal(t, StatusError, res.Status)
	assert.Equal(t, ErrNotFound, res.Error)

	res = s.RemoveFromCart("totally unknown", nil)
	assert.Equal(t, StatusError, res.Status)
	assert.Equal(t, ErrNotFound, res.Error)

	require.Equal(t, StatusSuccess, s.AddToCart("mouse gaming pro", 5).Status)

	res = s.RemoveFromCart("mouse gaming pro", intPtr(0))
	assert.Equal(t, StatusError, res.Status)
	assert.Equal(t, ErrValidation, res.Error)
	assert.Equal(t, 5, s.Cart().QuantityOf("MOU002"))

	res = s.RemoveFromCart("mouse gaming pro", intPtr(2))
	require.Equal(t, StatusSuccess, res.Status)
	assert.Equal(t, 2, res.UnitsRemoved)
	assert.Equal(t, 3, res.UnitsLeft)
	assert.Equal(t, 3, s.Cart().QuantityOf("MOU002"))

	// Removing at least the current quantity deletes the line, same as
	// omitting the quantity.
	res = s.RemoveFromCart("mouse gaming pro", intPtr(10))
	require.Equal(t, StatusSuccess, res.Status)
	assert.Equal(t, 3, res.UnitsRemoved)
	assert.True(t, s.Cart().IsEmpty())

	require.Equal(t, StatusSuccess, s.AddToCart("mouse gaming pro", 4).Status)
	res = s.RemoveFromCart("mouse gaming pro", nil)
	require.Equal(t, StatusSuccess, res.Status)
	assert.Equal(t, 4, res.UnitsRemoved)
	assert.True(t, s.Cart().IsEmpty())
}

func TestClearCart(t *testing.T) {
	s := NewSession(nil)

	res := s.ClearCart()
	assert.Equal(t, StatusSuccess, res.Status)
	assert.Zero(t, res.ProductsRemoved)
	assert.Zero(t, res.UnitsRemoved)

	require.Equal(t, StatusSuccess, s.AddToCart("mouse gaming pro", 2).Status)
	require.Equal(t, StatusSuccess, s.AddToCart("gaming headset 7.1", 1).Status)
	require.Equal(t, StatusSuccess, s.ApplyDiscount("SAVE20").Status)

	res = s.ClearCart()
	assert.Equal(t, StatusSuccess, res.Status)
	assert.Equal(t, 2, res.ProductsRemoved)
	assert.Equal(t, 3, res.UnitsRemoved)
	assert.True(t, s.Cart().IsEmpty())
	assert.Empty(t, s.Cart().DiscountCode())
}

func TestCartTotal(t *testing.T) {
	s := NewSession(nil)

	res := s.CartTotal()
	assert.Equal(t, StatusEmpty, res.Status)

	require.Equal(t, StatusSuccess, s.AddToCart("mouse gaming pro", 1).Status)        // 80
	require.Equal(t, StatusSuccess, s.AddToCart("mechanical keyboard rgb", 1).Status) // 120
	require.Equal(t, StatusSuccess, s.ApplyDiscount("WELCOME10").Status)

	res = s.CartTotal()
	require.Equal(t, StatusSuccess, res.Status)
	require.NotNil(t, res.Totals)
	assert.Equal(t, "$200.00", res.Totals.Subtotal)
	assert.Equal(t, "$20.00", res.Totals.Discount)
	assert.Equal(t, "WELCOME10", res.Totals.DiscountCode)
	assert.Equal(t, "$14.40", res.Totals.Tax)
	assert.Equal(t, "$0.00", res.Totals.Shipping)
	assert.Equal(t, "$194.40", res.Totals.Total)
	assert.Equal(t, "8%", res.TaxRate)
	require.NotNil(t, res.Savings)
	// Discount plus the waived shipping cost.
	assert.Equal(t, "$30.00", res.Savings.Total)
	assert.Len(t, res.Savings.Items, 2)
}

func TestRecommend(t *testing.T) {
	s := NewSession(nil)

	res := s.Recommend("")
	require.Equal(t, StatusSuccess, res.Status)
	require.Len(t, res.Recommendations, 3)
	// Ranked by rating, then review count.
	assert.Equal(t, "Monitor 4K HDR", res.Recommendations[0].Name)
	assert.Equal(t, "Laptop Gamer Pro", res.Recommendations[1].Name)
	assert.Equal(t, "Mouse Gaming Pro", res.Recommendations[2].Name)
	assert.Equal(t, "All", res.Category)

	res = s.Recommend("PERIPHERALS")
	require.Equal(t, StatusSuccess, res.Status)
	require.Len(t, res.Recommendations, 2)
	assert.Equal(t, "Mouse Gaming Pro", res.Recommendations[0].Name)
	assert.Equal(t, "Mechanical Keyboard RGB", res.Recommendations[1].Name)

	res = s.Recommend("Toys")
	assert.Equal(t, StatusError, res.Status)
	assert.Equal(t, ErrCategoryNotFound, res.Error)
	assert.Equal(t, []string{"Computers", "Peripherals", "Monitors", "Audio"}, res.Categories)
}

func TestRecentSearches(t *testing.T) {
	s := NewSession(nil)

	res := s.RecentSearches()
	assert.Equal(t, StatusEmpty, res.Status)

	queries := []string{"one", "two", "three", "  Mouse ", "five", "six", "seven"}
	for _, q := range queries {
		s.SearchProduct(q)
	}

	res = s.RecentSearches()
	require.Equal(t, StatusSuccess, res.Status)
	// Last five, raw and in insertion order.
	assert.Equal(t, []string{"three", "  Mouse ", "five", "six", "seven"}, res.Recent)
	assert.Equal(t, 7, res.TotalSearches)
}
