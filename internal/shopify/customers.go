package shopify

import (
	"context"
	"fmt"
	"net/http"
)

// Doer is the call surface of Client. The typed adapters depend on it so
// they can be exercised against any transport.
type Doer interface {
	Do(ctx context.Context, method, path string, opts ...CallOption) (*Response, error)
}

// Customers is the typed adapter over the customer and metafield endpoints.
type Customers struct {
	client Doer
}

// NewCustomers wraps a Doer (normally *Client).
func NewCustomers(client Doer) *Customers {
	return &Customers{client: client}
}

// SearchByEmail runs an exact, quoted-value search. The store's index may
// still return token or prefix matches; callers must verify the email.
func (c *Customers) SearchByEmail(ctx context.Context, email string) ([]Customer, error) {
	resp, err := c.client.Do(ctx, http.MethodGet, "/customers/search.json",
		WithQuery(map[string]any{
			"query":  fmt.Sprintf("email:%q", email),
			"fields": "id,email,tags",
			"limit":  5,
		}),
	)
	if err != nil {
		return nil, err
	}
	var out customersResponse
	if err := resp.Decode(&out); err != nil {
		return nil, err
	}
	return out.Customers, nil
}

// Create submits a new customer with a verified email and no welcome mail.
// The returned customer may carry a zero ID if the store omitted it.
func (c *Customers) Create(ctx context.Context, in CustomerInput) (*Customer, error) {
	verified, welcome := true, false
	payload := customerPayload{
		Email:                in.Email,
		FirstName:            in.FirstName,
		LastName:             in.LastName,
		Phone:                in.Phone,
		Password:             in.Password,
		PasswordConfirmation: in.Password,
		VerifiedEmail:        &verified,
		SendEmailWelcome:     &welcome,
	}
	if len(in.Tags) > 0 {
		tags := JoinTags(in.Tags)
		payload.Tags = &tags
	}
	resp, err := c.client.Do(ctx, http.MethodPost, "/customers.json",
		WithBody(customerEnvelope{Customer: payload}),
	)
	if err != nil {
		return nil, err
	}
	return decodeCustomer(resp)
}

// Get fetches the canonical record.
func (c *Customers) Get(ctx context.Context, id CustomerID) (*Customer, error) {
	resp, err := c.client.Do(ctx, http.MethodGet, customerPath(id))
	if err != nil {
		return nil, err
	}
	cust, err := decodeCustomer(resp)
	if err != nil {
		return nil, err
	}
	if cust.ID.IsZero() {
		return nil, fmt.Errorf("customer %s: empty response", id)
	}
	return cust, nil
}

// Update writes the mutable profile fields. Email and password are never
// sent.
func (c *Customers) Update(ctx context.Context, id CustomerID, in CustomerInput) (*Customer, error) {
	payload := customerPayload{
		ID:        id,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Phone:     in.Phone,
	}
	resp, err := c.client.Do(ctx, http.MethodPut, customerPath(id),
		WithBody(customerEnvelope{Customer: payload}),
	)
	if err != nil {
		return nil, err
	}
	return decodeCustomer(resp)
}

// SetTags replaces the record's tag string.
func (c *Customers) SetTags(ctx context.Context, id CustomerID, tags []string) error {
	joined := JoinTags(tags)
	_, err := c.client.Do(ctx, http.MethodPut, customerPath(id),
		WithBody(customerEnvelope{Customer: customerPayload{ID: id, Tags: &joined}}),
	)
	return err
}

func customerPath(id CustomerID) string {
	return "/customers/" + id.String() + ".json"
}

func decodeCustomer(resp *Response) (*Customer, error) {
	var out customerResponse
	if err := resp.Decode(&out); err != nil {
		return nil, err
	}
	if out.Customer == nil {
		return &Customer{}, nil
	}
	return out.Customer, nil
}
