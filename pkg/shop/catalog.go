package shop

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Product is a single catalog entry. Products are immutable after the
// catalog is built; Stock is the number of units available for sale and is
// only ever read (the cart treats it as a cap, it is never decremented).
type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
	Features    []string        `json:"features"`
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Rating      float64         `json:"rating"`
	Reviews     int             `json:"reviews"`
}

// Catalog is a read-only product registry keyed by normalized product name.
// Keys keep their insertion order so that lookups and fuzzy matching are
// deterministic.
type Catalog struct {
	keys     []string
	products map[string]Product
}

func NewCatalog() *Catalog {
	return &Catalog{
		products: make(map[string]Product),
	}
}

// Add registers a product under the normalized form of key. Duplicate keys
// are rejected.
func (c *Catalog) Add(key string, p Product) error {
	k := normalizeKey(key)
	if k == "" {
		return fmt.Errorf("catalog key is empty")
	}
	if _, exists := c.products[k]; exists {
		return fmt.Errorf("duplicate catalog key %q", k)
	}
	c.keys = append(c.keys, k)
	c.products[k] = p
	return nil
}

// Lookup returns the product stored under the normalized form of key.
func (c *Catalog) Lookup(key string) (Product, bool) {
	p, ok := c.products[normalizeKey(key)]
	return p, ok
}

// Keys returns the catalog keys in insertion order.
func (c *Catalog) Keys() []string {
	out := make([]string, len(c.keys))
	copy(out, c.keys)
	return out
}

// Products returns all products in insertion order.
func (c *Catalog) Products() []Product {
	out := make([]Product, 0, len(c.keys))
	for _, k := range c.keys {
		out = append(out, c.products[k])
	}
	return out
}

// Categories returns the distinct product categories in insertion order.
func (c *Catalog) Categories() []string {
	seen := make(map[string]bool)
	var out []string
	for _, k := range c.keys {
		cat := c.products[k].Category
		if !seen[cat] {
			seen[cat] = true
			out = append(out, cat)
		}
	}
	return out
}

func (c *Catalog) Len() int {
	return len(c.keys)
}

func normalizeKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// DefaultCatalog returns the built-in gaming-gear catalog.
func DefaultCatalog() *Catalog {
	c := NewCatalog()
	entries := []struct {
		key string
		p   Product
	}{
		{
			key: "laptop gamer pro",
			p: Product{
				ID:          "LPG001",
				Name:        "Laptop Gamer Pro",
				Price:       decimal.NewFromInt(1500),
				Stock:       10,
				Features:    []string{"RTX 4070", "32GB RAM", "1TB SSD", "144Hz display"},
				Category:    "Computers",
				Description: "High-end gaming laptop for the most demanding titles",
				Rating:      4.8,
				Reviews:     127,
			},
		},
		{
			key: "mechanical keyboard rgb",
			p: Product{
				ID:          "TEC005",
				Name:        "Mechanical Keyboard RGB",
				Price:       decimal.NewFromInt(120),
				Stock:       25,
				Features:    []string{"Cherry MX switches", "Per-key RGB", "TKL", "USB-C"},
				Category:    "Peripherals",
				Description: "Premium mechanical keyboard with full RGB lighting",
				Rating:      4.6,
				Reviews:     89,
			},
		},
		{
			key: "monitor 4k hdr",
			p: Product{
				ID:          "MON003",
				Name:        "Monitor 4K HDR",
				Price:       decimal.NewFromInt(400),
				Stock:       5,
				Features:    []string{"27 inch", "144Hz", "HDR10", "G-Sync compatible"},
				Category:    "Monitors",
				Description: "4K gaming monitor with HDR for an immersive picture",
				Rating:      4.9,
				Reviews:     203,
			},
		},
		{
			key: "mouse gaming pro",
			p: Product{
				ID:          "MOU002",
				Name:        "Mouse Gaming Pro",
				Price:       decimal.NewFromInt(80),
				Stock:       15,
				Features:    []string{"16000 DPI", "RGB", "8 programmable buttons", "Wireless"},
				Category:    "Peripherals",
				Description: "Professional gaming mouse with a high-precision sensor",
				Rating:      4.7,
				Reviews:     156,
			},
		},
		{
			key: "gaming headset 7.1",
			p: Product{
				ID:          "AUR004",
				Name:        "Gaming Headset 7.1",
				Price:       decimal.NewFromInt(150),
				Stock:       8,
				Features:    []string{"7.1 surround sound", "Retractable mic", "RGB", "Noise cancellation"},
				Category:    "Audio",
				Description: "Gaming headset with surround sound for maximum immersion",
				Rating:      4.5,
				Reviews:     94,
			},
		},
	}
	for _, e := range entries {
		// Keys are hardcoded and unique, Add cannot fail here.
		_ = c.Add(e.key, e.p)
	}
	return c
}
