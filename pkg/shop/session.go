// Package shop implements the catalog, cart, pricing, and search operations
// behind the Shopmate shopping assistant. All state lives in an explicitly
// constructed Session so that each conversation (or test) gets its own cart
// and search history.
package shop

// Session bundles the shared catalog with one conversation's mutable state:
// the cart and the search history. Sessions are cheap; create one per
// conversation or user.
//
// A Session is not safe for concurrent use. Callers whose environment may
// invoke operations concurrently (an HTTP server, for example) must wrap
// mutations in their own lock.
type Session struct {
	catalog  *Catalog
	cart     Cart
	searches []string
}

// NewSession creates a session over the given catalog. A nil catalog means
// the built-in default catalog.
func NewSession(catalog *Catalog) *Session {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	return &Session{catalog: catalog}
}

// Catalog returns the session's product catalog.
func (s *Session) Catalog() *Catalog {
	return s.catalog
}

// Cart returns the session's cart.
func (s *Session) Cart() *Cart {
	return &s.cart
}

// recordSearch appends the raw query to the search history. Queries are
// stored exactly as received, resolved or not.
func (s *Session) recordSearch(query string) {
	s.searches = append(s.searches, query)
}

// SearchCount is the total number of recorded searches.
func (s *Session) SearchCount() int {
	return len(s.searches)
}
