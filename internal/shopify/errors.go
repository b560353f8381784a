package shopify

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
)

const snippetLimit = 400

// RemoteCallError is a non-2xx outcome after retries, or a transport failure
// (StatusCode 0).
type RemoteCallError struct {
	Method     string
	Path       string
	StatusCode int
	Status     string
	Snippet    string
	Attempts   int
	Body       []byte
	Err        error

	transport bool
}

func (e *RemoteCallError) Error() string {
	msg := fmt.Sprintf("shopify %s %s: %d %s", e.Method, e.Path, e.StatusCode, e.Status)
	if e.Attempts > 1 {
		msg += fmt.Sprintf(" after %d attempts", e.Attempts)
	}
	if e.Snippet != "" {
		msg += ": " + e.Snippet
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *RemoteCallError) Unwrap() error {
	return e.Err
}

// Transient reports whether the failure is worth retrying: rate limiting,
// server errors and transport failures. Other 4xx are caller errors.
func (e *RemoteCallError) Transient() bool {
	return e.StatusCode == 429 || e.StatusCode >= 500 || e.transport
}

// ValidationErrors decodes a 422 payload of the form
// {"errors": {"email": ["has already been taken"]}} or {"errors": "msg"}.
// Returns nil when the body carries no structured errors.
func (e *RemoteCallError) ValidationErrors() ValidationErrors {
	if e.StatusCode != 422 || len(e.Body) == 0 {
		return nil
	}
	var payload struct {
		Errors json.RawMessage `json:"errors"`
	}
	if err := json.Unmarshal(e.Body, &payload); err != nil || len(payload.Errors) == 0 {
		return nil
	}

	var byField map[string][]string
	if err := json.Unmarshal(payload.Errors, &byField); err == nil {
		return ValidationErrors(byField)
	}
	var byFieldSingle map[string]string
	if err := json.Unmarshal(payload.Errors, &byFieldSingle); err == nil {
		out := make(ValidationErrors, len(byFieldSingle))
		for k, v := range byFieldSingle {
			out[k] = []string{v}
		}
		return out
	}
	var base string
	if err := json.Unmarshal(payload.Errors, &base); err == nil && base != "" {
		return ValidationErrors{"base": {base}}
	}
	var list []string
	if err := json.Unmarshal(payload.Errors, &list); err == nil && len(list) > 0 {
		return ValidationErrors{"base": list}
	}
	return nil
}

// ValidationErrors maps a resource field to its validation messages.
type ValidationErrors map[string][]string

// Has reports whether field has a message containing fragment (case-insensitive).
func (v ValidationErrors) Has(field, fragment string) bool {
	fragment = strings.ToLower(fragment)
	for _, msg := range v[field] {
		if strings.Contains(strings.ToLower(msg), fragment) {
			return true
		}
	}
	return false
}

func (v ValidationErrors) String() string {
	fields := make([]string, 0, len(v))
	for f := range v {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, f+" "+strings.Join(v[f], ", "))
	}
	return strings.Join(parts, "; ")
}

// AsRemoteCallError extracts a *RemoteCallError from err's chain.
func AsRemoteCallError(err error) (*RemoteCallError, bool) {
	var rce *RemoteCallError
	if errors.As(err, &rce) {
		return rce, true
	}
	return nil, false
}

// IsEmailTaken reports whether err is the store rejecting a create because
// the email already belongs to a record. The structured errors.email entry is
// preferred; matching the raw snippet is a fallback for payload shapes the
// decoder does not know.
func IsEmailTaken(err error) bool {
	rce, ok := AsRemoteCallError(err)
	if !ok || rce.StatusCode != 422 {
		return false
	}
	if ve := rce.ValidationErrors(); ve != nil {
		if ve.Has("email", "taken") {
			return true
		}
		for _, msg := range ve["base"] {
			if mentionsTakenEmail(msg) {
				return true
			}
		}
		return false
	}
	return mentionsTakenEmail(rce.Snippet)
}

func mentionsTakenEmail(msg string) bool {
	msg = strings.ToLower(msg)
	return strings.Contains(msg, "email") && strings.Contains(msg, "taken")
}

func truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit])
}
