// Package audit records the outcome of every registration reconciliation.
// Events never carry passwords or access tokens.
package audit

import (
	"time"

	"github.com/google/uuid"
)

// Action names what happened to a registration.
type Action string

const (
	ActionRegistrationCreated Action = "registration_created"
	ActionRegistrationUpdated Action = "registration_updated"
	ActionRegistrationFailed  Action = "registration_failed"
	ActionIdentityMismatch    Action = "identity_mismatch"
)

// Event is emitted from the reconciliation engine. Keep it transport-agnostic
// so stores and sinks can fan out.
type Event struct {
	ID         uuid.UUID `json:"id"`
	Timestamp  time.Time `json:"timestamp"`
	Action     Action    `json:"action"`
	CustomerID int64     `json:"customerId,omitempty"`
	Email      string    `json:"email"`
	SiteID     string    `json:"siteId,omitempty"`
	RequestID  string    `json:"requestId,omitempty"`
	ClientIP   string    `json:"clientIp,omitempty"`
	Device     string    `json:"device,omitempty"`
	Code       string    `json:"code,omitempty"`
	Reason     string    `json:"reason,omitempty"`
}
