package registration

import (
	"context"
	"fmt"

	"github.com/slammedialab/vercel-siteid/internal/shopify"
	"github.com/slammedialab/vercel-siteid/internal/siteid"
	dErrors "github.com/slammedialab/vercel-siteid/pkg/domain-errors"
)

// Attribute is one desired (namespace, key) value on a customer.
type Attribute struct {
	Namespace string
	Key       string
	Type      string
	Value     string
}

func desiredAttributes(req Request, site siteid.Result) []Attribute {
	text := func(key, value string) Attribute {
		return Attribute{Namespace: AttributeNamespace, Key: key, Type: shopify.TypeSingleLineText, Value: value}
	}
	attrs := []Attribute{text("site_id", site.SiteID)}
	if site.AccountName != "" {
		attrs = append(attrs, text("account_name", site.AccountName))
	}
	if site.AccountID != "" {
		attrs = append(attrs, text("account_id", site.AccountID))
	}
	if req.TitleRole != "" {
		attrs = append(attrs, text("title_role", req.TitleRole))
	}
	return attrs
}

// UpsertAttribute writes attr on owner, updating the existing metafield for
// the same (namespace, key) when there is one. It never creates a second.
func UpsertAttribute(ctx context.Context, store AttributeStore, owner shopify.CustomerID, attr Attribute) (*shopify.Metafield, error) {
	existing, err := store.ListMetafields(ctx, owner)
	if err != nil {
		return nil, attributeError(err, attr)
	}
	return upsertAttribute(ctx, store, owner, existing, attr)
}

func upsertAttribute(ctx context.Context, store AttributeStore, owner shopify.CustomerID, existing []shopify.Metafield, attr Attribute) (*shopify.Metafield, error) {
	for _, mf := range existing {
		if mf.Namespace != attr.Namespace || mf.Key != attr.Key {
			continue
		}
		if mf.Value == attr.Value && mf.Type == attr.Type {
			current := mf
			return &current, nil
		}
		mf.Value = attr.Value
		mf.Type = attr.Type
		updated, err := store.UpdateMetafield(ctx, owner, mf)
		if err != nil {
			return nil, attributeError(err, attr)
		}
		return updated, nil
	}

	created, err := store.CreateMetafield(ctx, owner, shopify.Metafield{
		Namespace: attr.Namespace,
		Key:       attr.Key,
		Value:     attr.Value,
		Type:      attr.Type,
	})
	if err != nil {
		return nil, attributeError(err, attr)
	}
	return created, nil
}

func attributeError(err error, attr Attribute) error {
	if rce, ok := shopify.AsRemoteCallError(err); ok && rce.StatusCode == 422 {
		msg := fmt.Sprintf("Could not save %s", attr.Key)
		if ve := rce.ValidationErrors(); len(ve) > 0 {
			msg += ": " + ve.String()
		}
		return dErrors.Wrap(err, dErrors.CodeAttributeWrite, msg)
	}
	return remoteError(err)
}
