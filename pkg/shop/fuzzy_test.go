package shop

import (
	"testing"
)

func TestResolveExact(t *testing.T) {
	c := DefaultCatalog()

	tests := []struct {
		name    string
		query   string
		wantKey string
	}{
		{name: "exact key", query: "mouse gaming pro", wantKey: "mouse gaming pro"},
		{name: "mixed case", query: "Mouse Gaming Pro", wantKey: "mouse gaming pro"},
		{name: "surrounding whitespace", query: "  LAPTOP GAMER PRO  ", wantKey: "laptop gamer pro"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, p, ok := c.Resolve(tt.query)
			if !ok {
				t.Fatalf("Resolve(%q) not found", tt.query)
			}
			if key != tt.wantKey {
				t.Errorf("Resolve(%q) key = %q, want %q", tt.query, key, tt.wantKey)
			}
			if p.ID == "" {
				t.Errorf("Resolve(%q) returned empty product", tt.query)
			}
		})
	}
}

func TestResolveApproximate(t *testing.T) {
	c := DefaultCatalog()

	tests := []struct {
		name    string
		query   string
		wantKey string
		wantOK  bool
	}{
		{name: "single typo", query: "mouse gamin pro", wantKey: "mouse gaming pro", wantOK: true},
		{name: "truncated", query: "monitor 4k", wantKey: "monitor 4k hdr", wantOK: true},
		{name: "transposed", query: "laptop gmaer pro", wantKey: "laptop gamer pro", wantOK: true},
		{name: "unrelated", query: "smartphone", wantOK: false},
		{name: "empty", query: "   ", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key, _, ok := c.Resolve(tt.query)
			if ok != tt.wantOK {
				t.Fatalf("Resolve(%q) ok = %v, want %v", tt.query, ok, tt.wantOK)
			}
			if ok && key != tt.wantKey {
				t.Errorf("Resolve(%q) key = %q, want %q", tt.query, key, tt.wantKey)
			}
		})
	}
}

func TestResolveCutoffInclusive(t *testing.T) {
	c := NewCatalog()
	if err := c.Add("abcde", Product{ID: "P1", Name: "abcde"}); err != nil {
		t.Fatal(err)
	}

	// distance("abc", "abcde") = 2, max len 5 -> similarity exactly 0.6
	key, _, ok := c.Resolve("abc")
	if !ok {
		t.Fatalf("similarity 0.6 should match (cutoff is inclusive)")
	}
	if key != "abcde" {
		t.Errorf("key = %q, want %q", key, "abcde")
	}

	// distance("ab", "abcde") = 3, max len 5 -> similarity 0.4
	if _, _, ok := c.Resolve("ab"); ok {
		t.Fatalf("similarity 0.4 should not match")
	}
}

func TestResolveTieBreakFirstKey(t *testing.T) {
	c := NewCatalog()
	if err := c.Add("abcd", Product{ID: "P1"}); err != nil {
		t.Fatal(err)
	}
	if err := c.Add("abce", Product{ID: "P2"}); err != nil {
		t.Fatal(err)
	}

	// "abcf" is distance 1 from both keys; the earlier key must win.
	key, p, ok := c.Resolve("abcf")
	if !ok {
		t.Fatal("expected a match")
	}
	if key != "abcd" || p.ID != "P1" {
		t.Errorf("tie broke to %q (%s), want abcd (P1)", key, p.ID)
	}
}

func TestLevenshteinDistance(t *testing.T) {
	tests := []struct {
		s1, s2 string
		want   int
	}{
		{"", "", 0},
		{"", "abc", 3},
		{"abc", "", 3},
		{"abc", "abc", 0},
		{"kitten", "sitting", 3},
		{"flaw", "lawn", 2},
	}

	for _, tt := range tests {
		if got := levenshteinDistance(tt.s1, tt.s2); got != tt.want {
			t.Errorf("levenshteinDistance(%q, %q) = %d, want %d", tt.s1, tt.s2, got, tt.want)
		}
	}
}
