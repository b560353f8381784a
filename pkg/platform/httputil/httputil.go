// Package httputil holds small JSON helpers shared by handlers.
package httputil

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	dErrors "github.com/slammedialab/vercel-siteid/pkg/domain-errors"
)

// MaxBodyBytes caps inbound JSON bodies.
const MaxBodyBytes = 64 << 10

// WriteJSON writes v as a JSON response with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// DecodeJSON reads a size-limited JSON body into a T. Decode failures come
// back as CodeBadRequest errors.
func DecodeJSON[T any](w http.ResponseWriter, r *http.Request) (*T, error) {
	var out T
	if r.Body == nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "Request body is required")
	}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err := dec.Decode(&out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, dErrors.New(dErrors.CodeBadRequest, "Request body is required")
		}
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, dErrors.New(dErrors.CodeBadRequest, fmt.Sprintf("Request body exceeds %d bytes", tooLarge.Limit))
		}
		return nil, dErrors.Wrap(err, dErrors.CodeBadRequest, "Invalid JSON body")
	}
	return &out, nil
}
