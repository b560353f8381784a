package registration

import (
	"context"
	"testing"
	"time"

	"github.com/slammedialab/vercel-siteid/internal/shopify"
	"github.com/slammedialab/vercel-siteid/internal/shopify/shopifytest"
)

func noSleep(context.Context, time.Duration) error { return nil }

func newFakeStore(t *testing.T) (*shopify.Customers, *shopifytest.Server) {
	t.Helper()
	fake := shopifytest.NewServer(t)
	client := shopify.NewClient(
		shopify.Config{AccessToken: shopifytest.Token},
		shopify.WithBaseURL(fake.BaseURL()),
		shopify.WithSleeper(noSleep),
	)
	return shopify.NewCustomers(client), fake
}

func metafield(c shopifytest.Customer, namespace, key string) (shopifytest.Metafield, int) {
	var found shopifytest.Metafield
	n := 0
	for _, mf := range c.Metafields {
		if mf.Namespace == namespace && mf.Key == key {
			found = mf
			n++
		}
	}
	return found, n
}
