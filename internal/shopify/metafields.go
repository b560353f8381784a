package shopify

import (
	"context"
	"fmt"
	"net/http"
)

// ListMetafields returns every metafield on a customer.
func (c *Customers) ListMetafields(ctx context.Context, owner CustomerID) ([]Metafield, error) {
	resp, err := c.client.Do(ctx, http.MethodGet, metafieldsPath(owner),
		WithQuery(map[string]any{"limit": 250}),
	)
	if err != nil {
		return nil, err
	}
	var out metafieldsResponse
	if err := resp.Decode(&out); err != nil {
		return nil, err
	}
	return out.Metafields, nil
}

// CreateMetafield adds a metafield to a customer.
func (c *Customers) CreateMetafield(ctx context.Context, owner CustomerID, mf Metafield) (*Metafield, error) {
	mf.ID = 0
	resp, err := c.client.Do(ctx, http.MethodPost, metafieldsPath(owner),
		WithBody(metafieldEnvelope{Metafield: mf}),
	)
	if err != nil {
		return nil, err
	}
	return decodeMetafield(resp, mf)
}

// UpdateMetafield rewrites the value (and type) of an existing metafield.
func (c *Customers) UpdateMetafield(ctx context.Context, owner CustomerID, mf Metafield) (*Metafield, error) {
	if mf.ID == 0 {
		return nil, fmt.Errorf("update metafield %s.%s: missing id", mf.Namespace, mf.Key)
	}
	path := fmt.Sprintf("/customers/%s/metafields/%d.json", owner, mf.ID)
	resp, err := c.client.Do(ctx, http.MethodPut, path,
		WithBody(metafieldEnvelope{Metafield: mf}),
	)
	if err != nil {
		return nil, err
	}
	return decodeMetafield(resp, mf)
}

func metafieldsPath(owner CustomerID) string {
	return "/customers/" + owner.String() + "/metafields.json"
}

func decodeMetafield(resp *Response, sent Metafield) (*Metafield, error) {
	var out metafieldResponse
	if err := resp.Decode(&out); err != nil {
		return nil, err
	}
	if out.Metafield == nil {
		return &sent, nil
	}
	return out.Metafield, nil
}
