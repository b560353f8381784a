package registration

import (
	"context"
	"log/slog"

	"github.com/slammedialab/vercel-siteid/internal/shopify"
	"github.com/slammedialab/vercel-siteid/pkg/email"
)

// Searcher runs the store's email search.
type Searcher interface {
	SearchByEmail(ctx context.Context, email string) ([]shopify.Customer, error)
}

// IdentityResolver finds a record by exact email. The store's search index
// tokenizes addresses, so its first hit is only trusted when the emails are
// identical after normalization.
type IdentityResolver struct {
	store  Searcher
	logger *slog.Logger
}

func NewIdentityResolver(store Searcher, logger *slog.Logger) *IdentityResolver {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &IdentityResolver{store: store, logger: logger}
}

// FindExact returns the identifier of the record whose email equals address.
// A failed search counts as not found; the create that follows is the
// authoritative check.
func (r *IdentityResolver) FindExact(ctx context.Context, address string) (shopify.CustomerID, bool) {
	query := email.Normalize(address)
	if query == "" {
		return 0, false
	}

	candidates, err := r.store.SearchByEmail(ctx, query)
	if err != nil {
		r.logger.WarnContext(ctx, "customer search failed, treating as not found", "error", err)
		return 0, false
	}
	if len(candidates) == 0 {
		return 0, false
	}

	first := candidates[0]
	if first.ID.IsZero() || !email.SameIdentity(first.Email, query) {
		r.logger.DebugContext(ctx, "customer search returned a near match", "candidate_id", first.ID.String())
		return 0, false
	}
	return first.ID, true
}
