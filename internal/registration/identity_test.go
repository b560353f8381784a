package registration

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slammedialab/vercel-siteid/internal/shopify"
	"github.com/slammedialab/vercel-siteid/internal/shopify/shopifytest"
)

func TestIdentityResolver_FindExact(t *testing.T) {
	ctx := context.Background()

	t.Run("matches the same address case-insensitively", func(t *testing.T) {
		store, fake := newFakeStore(t)
		id := fake.Seed(shopifytest.Customer{Email: "Ada@Example.com"})

		got, ok := NewIdentityResolver(store, nil).FindExact(ctx, "  ada@example.COM ")
		require.True(t, ok)
		assert.Equal(t, shopify.CustomerID(id), got)
	})

	t.Run("never accepts a near match from a tokenizing index", func(t *testing.T) {
		store, fake := newFakeStore(t)
		fake.FuzzySearch = true
		fake.Seed(shopifytest.Customer{Email: "ab@x.com"})
		fake.Seed(shopifytest.Customer{Email: "a@x.co"})
		resolver := NewIdentityResolver(store, nil)

		for _, query := range []string{"a@x.com", "a@x.c"} {
			_, ok := resolver.FindExact(ctx, query)
			assert.False(t, ok, query)
		}
	})

	t.Run("only the first candidate is considered", func(t *testing.T) {
		store, fake := newFakeStore(t)
		fake.FuzzySearch = true
		fake.Seed(shopifytest.Customer{Email: "a@x.co"})
		fake.Seed(shopifytest.Customer{Email: "a@x.com"})

		_, ok := NewIdentityResolver(store, nil).FindExact(ctx, "a@x.com")
		assert.False(t, ok)
	})

	t.Run("search failure is treated as not found", func(t *testing.T) {
		store, fake := newFakeStore(t)
		fake.Seed(shopifytest.Customer{Email: "ada@example.com"})
		fake.FailNext(http.MethodGet, "/customers/search.json", http.StatusInternalServerError, `{}`, 5)

		_, ok := NewIdentityResolver(store, nil).FindExact(ctx, "ada@example.com")
		assert.False(t, ok)
	})

	t.Run("blank address skips the search", func(t *testing.T) {
		store, fake := newFakeStore(t)

		_, ok := NewIdentityResolver(store, nil).FindExact(ctx, "   ")
		assert.False(t, ok)
		assert.Empty(t, fake.Calls())
	})
}
