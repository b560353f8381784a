// Package siteid checks inbound site identifiers against the directory.
package siteid

import (
	"context"
	"strings"

	"github.com/slammedialab/vercel-siteid/internal/directory"
	dErrors "github.com/slammedialab/vercel-siteid/pkg/domain-errors"
)

// DirectoryReader yields the current directory generation.
type DirectoryReader interface {
	Get(ctx context.Context) (*directory.Directory, error)
}

// Result is the outcome of one validation. AccountName and AccountID are
// set only when the directory has them.
type Result struct {
	Valid       bool
	SiteID      string
	AccountName string
	AccountID   string
}

type Validator struct {
	directory DirectoryReader
}

func New(dir DirectoryReader) *Validator {
	return &Validator{directory: dir}
}

// Validate trims raw and looks it up. An unknown or blank id is a normal
// invalid result; only a directory that cannot be loaded is an error.
func (v *Validator) Validate(ctx context.Context, raw string) (Result, error) {
	id := strings.TrimSpace(raw)
	if id == "" {
		return Result{}, nil
	}

	dir, err := v.directory.Get(ctx)
	if err != nil {
		return Result{SiteID: id}, dErrors.Wrap(err, dErrors.CodeDirectoryUnavailable, "Site directory is unavailable")
	}

	entry, ok := dir.Lookup(id)
	if !ok {
		return Result{SiteID: id}, nil
	}
	return Result{
		Valid:       true,
		SiteID:      id,
		AccountName: entry.AccountName,
		AccountID:   entry.AccountID,
	}, nil
}
