package shoptools

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kgomo/shopmate/pkg/shop"
)

func TestBindingRendersJSON(t *testing.T) {
	b := Bind(nil)

	out, err := b.do(func(s *shop.Session) any {
		return s.AddToCart("mouse gaming pro", 2)
	})
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, "success", decoded["status"])
	assert.NotEmpty(t, decoded["message"])
}

func TestBindingSharesOneSession(t *testing.T) {
	session := shop.NewSession(nil)
	b := Bind(session)

	_, err := b.do(func(s *shop.Session) any {
		return s.AddToCart("monitor 4k hdr", 1)
	})
	require.NoError(t, err)

	// The binding mutates the caller's session, not a copy.
	assert.Equal(t, 1, session.Cart().TotalUnits())
}

func TestBindingConcurrentMutations(t *testing.T) {
	b := Bind(nil)

	done := make(chan struct{})
	for i := 0; i < 10; i++ {
		go func() {
			defer func() { done <- struct{}{} }()
			_, _ = b.do(func(s *shop.Session) any {
				return s.AddToCart("mechanical keyboard rgb", 1)
			})
		}()
	}
	for i := 0; i < 10; i++ {
		<-done
	}

	out, err := b.do(func(s *shop.Session) any {
		return s.ViewCart()
	})
	require.NoError(t, err)

	var res shop.ViewResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, 10, res.TotalUnits)
}
