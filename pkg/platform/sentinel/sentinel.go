// Package sentinel holds infrastructure facts that stores return, possibly
// wrapped, for callers to translate. Input problems use pkg/domain-errors.
package sentinel

import "errors"

// ErrNotFound means the store has no value for the key.
var ErrNotFound = errors.New("not found")
