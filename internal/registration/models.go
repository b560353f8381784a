// Package registration reconciles a registration request against the remote
// customer store: look the identity up, create or update it, confirm it, then
// merge tags and upsert attributes.
package registration

import "github.com/slammedialab/vercel-siteid/internal/shopify"

// Action reports which branch a reconciliation took.
type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
)

const (
	// ApprovedTag is present on every successfully reconciled record.
	ApprovedTag = "approved"

	// AttributeNamespace holds every attribute this service writes.
	AttributeNamespace = "custom"

	minPasswordLength = 8
)

// Request is one registration attempt. Field names in validation errors
// follow the json tags.
type Request struct {
	Email      string `json:"email" validate:"required,email,max=254"`
	FirstName  string `json:"firstName" validate:"max=255"`
	LastName   string `json:"lastName" validate:"max=255"`
	Phone      string `json:"phone" validate:"max=32"`
	SiteID     string `json:"siteId" validate:"required,max=64"`
	TitleRole  string `json:"titleRole" validate:"max=255"`
	Password   string `json:"password" validate:"max=128"`
	UpdateOnly bool   `json:"update"`
}

// Result is a successful reconciliation. Password is set only for a record
// created by this call, and only when the service is configured to return it.
type Result struct {
	Action     Action
	CustomerID shopify.CustomerID
	Email      string
	SiteID     string
	Password   string
}
