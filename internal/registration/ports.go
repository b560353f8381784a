package registration

import (
	"context"

	"github.com/slammedialab/vercel-siteid/internal/audit"
	"github.com/slammedialab/vercel-siteid/internal/shopify"
	"github.com/slammedialab/vercel-siteid/internal/siteid"
)

//go:generate mockgen -source=ports.go -destination=mocks/mocks.go -package=mocks CustomerStore,SiteValidator,AuditPublisher

// CustomerStore is the remote record store as the engine sees it.
// *shopify.Customers implements it.
type CustomerStore interface {
	SearchByEmail(ctx context.Context, email string) ([]shopify.Customer, error)
	Create(ctx context.Context, in shopify.CustomerInput) (*shopify.Customer, error)
	Get(ctx context.Context, id shopify.CustomerID) (*shopify.Customer, error)
	Update(ctx context.Context, id shopify.CustomerID, in shopify.CustomerInput) (*shopify.Customer, error)
	SetTags(ctx context.Context, id shopify.CustomerID, tags []string) error
	AttributeStore
}

// AttributeStore is the per-owner metafield surface.
type AttributeStore interface {
	ListMetafields(ctx context.Context, owner shopify.CustomerID) ([]shopify.Metafield, error)
	CreateMetafield(ctx context.Context, owner shopify.CustomerID, mf shopify.Metafield) (*shopify.Metafield, error)
	UpdateMetafield(ctx context.Context, owner shopify.CustomerID, mf shopify.Metafield) (*shopify.Metafield, error)
}

// SiteValidator resolves a site id against the directory.
type SiteValidator interface {
	Validate(ctx context.Context, raw string) (siteid.Result, error)
}

// AuditPublisher records reconciliation outcomes.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event)
}
