package shopify

import (
	"strconv"
	"strings"
)

// CustomerID is the store's numeric record identifier. Zero means "none".
type CustomerID int64

func (id CustomerID) String() string {
	return strconv.FormatInt(int64(id), 10)
}

// IsZero reports whether the identifier is absent.
func (id CustomerID) IsZero() bool {
	return id == 0
}

// Customer is the subset of the store's customer resource this service reads.
type Customer struct {
	ID        CustomerID `json:"id"`
	Email     string     `json:"email"`
	FirstName string     `json:"first_name,omitempty"`
	LastName  string     `json:"last_name,omitempty"`
	Phone     string     `json:"phone,omitempty"`
	Tags      string     `json:"tags"`
}

// TagList splits the comma-separated tag string, trimmed and deduplicated.
func (c Customer) TagList() []string {
	return SplitTags(c.Tags)
}

// SplitTags parses the store's comma-separated tag representation.
func SplitTags(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	return cleanTags(strings.Split(raw, ","))
}

// JoinTags renders tags the way the store stores them.
func JoinTags(tags []string) string {
	return strings.Join(cleanTags(tags), ", ")
}

// cleanTags trims each tag and drops blanks and repeats, keeping the first
// spelling in order. The store compares tags case-insensitively.
func cleanTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		key := strings.ToLower(t)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, t)
	}
	return out
}

// CustomerInput carries the writable fields for create and update. Empty
// fields are omitted from the request.
type CustomerInput struct {
	Email     string
	FirstName string
	LastName  string
	Phone     string
	Password  string
	Tags      []string
}

// Metafield types used by this service.
const (
	TypeSingleLineText = "single_line_text_field"
	TypeBoolean        = "boolean"
)

// Metafield is one typed (namespace, key) attribute on an owner record.
type Metafield struct {
	ID        int64  `json:"id,omitempty"`
	Namespace string `json:"namespace"`
	Key       string `json:"key"`
	Value     string `json:"value"`
	Type      string `json:"type"`
}

type customerPayload struct {
	ID                   CustomerID `json:"id,omitempty"`
	Email                string     `json:"email,omitempty"`
	FirstName            string     `json:"first_name,omitempty"`
	LastName             string     `json:"last_name,omitempty"`
	Phone                string     `json:"phone,omitempty"`
	Password             string     `json:"password,omitempty"`
	PasswordConfirmation string     `json:"password_confirmation,omitempty"`
	Tags                 *string    `json:"tags,omitempty"`
	VerifiedEmail        *bool      `json:"verified_email,omitempty"`
	SendEmailWelcome     *bool      `json:"send_email_welcome,omitempty"`
}

type customerEnvelope struct {
	Customer customerPayload `json:"customer"`
}

type customerResponse struct {
	Customer *Customer `json:"customer"`
}

type customersResponse struct {
	Customers []Customer `json:"customers"`
}

type metafieldEnvelope struct {
	Metafield Metafield `json:"metafield"`
}

type metafieldResponse struct {
	Metafield *Metafield `json:"metafield"`
}

type metafieldsResponse struct {
	Metafields []Metafield `json:"metafields"`
}
