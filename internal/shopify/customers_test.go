package shopify

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slammedialab/vercel-siteid/internal/shopify/shopifytest"
)

func newTestCustomers(t *testing.T) (*Customers, *shopifytest.Server) {
	t.Helper()
	fake := shopifytest.NewServer(t)
	client := NewClient(Config{AccessToken: shopifytest.Token}, WithBaseURL(fake.BaseURL()))
	return NewCustomers(client), fake
}

func TestCustomers_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("sends a verified, silent create with tags", func(t *testing.T) {
		customers, fake := newTestCustomers(t)

		got, err := customers.Create(ctx, CustomerInput{
			Email:     "ada@example.com",
			FirstName: "Ada",
			Password:  "secret",
			Tags:      []string{"site:100001", "site:100001", " b2b "},
		})
		require.NoError(t, err)
		assert.False(t, got.ID.IsZero())

		stored, ok := fake.Customer(int64(got.ID))
		require.True(t, ok)
		assert.Equal(t, "site:100001, b2b", stored.Tags)
		assert.Equal(t, "secret", stored.Password)

		calls := fake.Calls()
		require.Len(t, calls, 1)
		assert.Contains(t, calls[0].Body, `"verified_email":true`)
		assert.Contains(t, calls[0].Body, `"send_email_welcome":false`)
		assert.Contains(t, calls[0].Body, `"password_confirmation":"secret"`)
	})

	t.Run("missing id in response yields a zero id", func(t *testing.T) {
		customers, fake := newTestCustomers(t)
		fake.OmitCreateID = true

		got, err := customers.Create(ctx, CustomerInput{Email: "ada@example.com"})
		require.NoError(t, err)
		assert.True(t, got.ID.IsZero())
	})

	t.Run("duplicate email surfaces as email taken", func(t *testing.T) {
		customers, fake := newTestCustomers(t)
		fake.Seed(shopifytest.Customer{Email: "ada@example.com"})

		_, err := customers.Create(ctx, CustomerInput{Email: "ada@example.com"})
		require.Error(t, err)
		assert.True(t, IsEmailTaken(err))
	})
}

func TestCustomers_SearchAndGet(t *testing.T) {
	ctx := context.Background()
	customers, fake := newTestCustomers(t)
	id := fake.Seed(shopifytest.Customer{Email: "ada@example.com", Tags: "vip, site:1"})

	found, err := customers.SearchByEmail(ctx, "ada@example.com")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, CustomerID(id), found[0].ID)
	assert.Equal(t, []string{"vip", "site:1"}, found[0].TagList())

	calls := fake.Calls()
	assert.Equal(t, `email:"ada@example.com"`, mustQuery(t, calls[0].Query, "query"))

	got, err := customers.Get(ctx, CustomerID(id))
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", got.Email)

	_, err = customers.Get(ctx, CustomerID(999999))
	rce, ok := AsRemoteCallError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, rce.StatusCode)
}

func TestCustomers_UpdateAndTags(t *testing.T) {
	ctx := context.Background()
	customers, fake := newTestCustomers(t)
	id := CustomerID(fake.Seed(shopifytest.Customer{Email: "ada@example.com", FirstName: "Old", Tags: "a"}))

	_, err := customers.Update(ctx, id, CustomerInput{FirstName: "Ada", Email: "ignored@example.com", Password: "x"})
	require.NoError(t, err)
	require.NoError(t, customers.SetTags(ctx, id, []string{"a", "b", "a"}))

	stored, _ := fake.Customer(int64(id))
	assert.Equal(t, "Ada", stored.FirstName)
	assert.Equal(t, "ada@example.com", stored.Email)
	assert.Equal(t, "a, b", stored.Tags)

	for _, c := range fake.Calls() {
		assert.NotContains(t, c.Body, "password")
	}
}

func TestCustomers_Metafields(t *testing.T) {
	ctx := context.Background()
	customers, fake := newTestCustomers(t)
	id := CustomerID(fake.Seed(shopifytest.Customer{Email: "ada@example.com"}))

	created, err := customers.CreateMetafield(ctx, id, Metafield{Namespace: "custom", Key: "site_id", Value: "100001", Type: TypeSingleLineText})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)

	created.Value = "100002"
	_, err = customers.UpdateMetafield(ctx, id, *created)
	require.NoError(t, err)

	list, err := customers.ListMetafields(ctx, id)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "100002", list[0].Value)

	_, err = customers.UpdateMetafield(ctx, id, Metafield{Namespace: "custom", Key: "x"})
	assert.ErrorContains(t, err, "missing id")
}

func mustQuery(t *testing.T, raw, key string) string {
	t.Helper()
	values, err := url.ParseQuery(raw)
	require.NoError(t, err)
	return values.Get(key)
}
