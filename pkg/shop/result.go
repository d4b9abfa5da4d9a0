package shop

// Status is the outcome tag carried by every operation result.
type Status string

const (
	StatusSuccess  Status = "success"
	StatusError    Status = "error"
	StatusEmpty    Status = "empty"
	StatusNotFound Status = "not_found"
)

// ErrorKind classifies error results. Empty for non-error statuses.
type ErrorKind string

const (
	ErrValidation       ErrorKind = "validation"
	ErrNotFound         ErrorKind = "not_found"
	ErrStock            ErrorKind = "stock"
	ErrEmptyCart        ErrorKind = "empty_cart"
	ErrInvalidCode      ErrorKind = "invalid_code"
	ErrCategoryNotFound ErrorKind = "category_not_found"
)

// ProductView is the presentation shape of a catalog product.
type ProductView struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Price          string   `json:"price"`
	PriceFormatted string   `json:"price_formatted"`
	Stock          int      `json:"stock"`
	Features       []string `json:"features"`
	Category       string   `json:"category"`
	Description    string   `json:"description"`
	Rating         string   `json:"rating"`
	Available      bool     `json:"available"`
}

// SearchResult is returned by SearchProduct.
type SearchResult struct {
	Status      Status       `json:"status"`
	Message     string       `json:"message"`
	Product     *ProductView `json:"product,omitempty"`
	Suggestions []string     `json:"suggestions,omitempty"`
}

// AddedItem describes what an add operation put in the cart.
type AddedItem struct {
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
	Subtotal  string `json:"subtotal"`
}

// CartBrief is the short cart summary attached to successful adds.
type CartBrief struct {
	TotalUnits   int    `json:"total_units"`
	Subtotal     string `json:"subtotal"`
	FreeShipping bool   `json:"free_shipping"`
}

// StockInfo is the payload of a stock error: how many units exist, how many
// are already in the cart, and how many can still be added.
type StockInfo struct {
	Stock     int `json:"stock"`
	InCart    int `json:"in_cart"`
	Available int `json:"available"`
}

// AddResult is returned by AddToCart.
type AddResult struct {
	Status  Status     `json:"status"`
	Message string     `json:"message"`
	Error   ErrorKind  `json:"error,omitempty"`
	Added   *AddedItem `json:"added,omitempty"`
	Cart    *CartBrief `json:"cart,omitempty"`
	Stock   *StockInfo `json:"stock_info,omitempty"`
}

// LineView is the presentation shape of a cart line.
type LineView struct {
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	UnitPrice string `json:"unit_price"`
	Subtotal  string `json:"subtotal"`
}

// TotalsView is the formatted price breakdown.
type TotalsView struct {
	Subtotal     string `json:"subtotal"`
	DiscountCode string `json:"discount_code,omitempty"`
	Discount     string `json:"discount,omitempty"`
	Tax          string `json:"tax"`
	Shipping     string `json:"shipping"`
	FreeShipping bool   `json:"free_shipping"`
	Total        string `json:"total"`
}

// ViewResult is returned by ViewCart.
type ViewResult struct {
	Status        Status      `json:"status"`
	Message       string      `json:"message"`
	Items         []LineView  `json:"items,omitempty"`
	TotalProducts int         `json:"total_products,omitempty"`
	TotalUnits    int         `json:"total_units,omitempty"`
	Totals        *TotalsView `json:"totals,omitempty"`
	Savings       string      `json:"savings,omitempty"`
	Shipping      string      `json:"shipping_note,omitempty"`
	Suggestion    string      `json:"suggestion,omitempty"`
}

// DiscountView is the payload of a successful discount application.
type DiscountView struct {
	Code     string `json:"code"`
	Percent  string `json:"percent"`
	Amount   string `json:"amount"`
	Subtotal string `json:"subtotal"`
	Total    string `json:"total"`
}

// DiscountResult is returned by ApplyDiscount.
type DiscountResult struct {
	Status     Status        `json:"status"`
	Message    string        `json:"message"`
	Error      ErrorKind     `json:"error,omitempty"`
	ValidCodes []string      `json:"valid_codes,omitempty"`
	Discount   *DiscountView `json:"discount,omitempty"`
}

// RemoveResult is returned by RemoveFromCart.
type RemoveResult struct {
	Status       Status    `json:"status"`
	Message      string    `json:"message"`
	Error        ErrorKind `json:"error,omitempty"`
	Product      string    `json:"product,omitempty"`
	UnitsRemoved int       `json:"units_removed,omitempty"`
	UnitsLeft    int       `json:"units_left,omitempty"`
}

// ClearResult is returned by ClearCart.
type ClearResult struct {
	Status          Status `json:"status"`
	Message         string `json:"message"`
	ProductsRemoved int    `json:"products_removed"`
	UnitsRemoved    int    `json:"units_removed"`
}

// SavingsView lists what the shopper saved (discount, waived shipping).
type SavingsView struct {
	Items []string `json:"items"`
	Total string   `json:"total"`
}

// TotalResult is returned by CartTotal.
type TotalResult struct {
	Status       Status       `json:"status"`
	Message      string       `json:"message"`
	Items        []LineView   `json:"items,omitempty"`
	Totals       *TotalsView  `json:"totals,omitempty"`
	TaxRate      string       `json:"tax_rate,omitempty"`
	FreeShipOver string       `json:"free_shipping_over,omitempty"`
	Savings      *SavingsView `json:"savings,omitempty"`
}

// RecommendationView is one recommended product.
type RecommendationView struct {
	Name        string `json:"name"`
	Price       string `json:"price"`
	Rating      string `json:"rating"`
	Category    string `json:"category"`
	Description string `json:"description"`
	Available   bool   `json:"available"`
}

// RecommendResult is returned by Recommend.
type RecommendResult struct {
	Status          Status               `json:"status"`
	Message         string               `json:"message"`
	Error           ErrorKind            `json:"error,omitempty"`
	Category        string               `json:"category,omitempty"`
	Categories      []string             `json:"available_categories,omitempty"`
	Recommendations []RecommendationView `json:"recommendations,omitempty"`
}

// HistoryResult is returned by RecentSearches.
type HistoryResult struct {
	Status        Status   `json:"status"`
	Message       string   `json:"message"`
	Recent        []string `json:"recent,omitempty"`
	TotalSearches int      `json:"total_searches,omitempty"`
}
