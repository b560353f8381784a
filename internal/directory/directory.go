// Package directory resolves site identifiers to account metadata from a
// periodically refreshed tabular export.
package directory

import (
	"sort"
	"strings"
	"time"
)

// Entry is one row of the directory.
type Entry struct {
	SiteID      string `json:"siteId"`
	AccountName string `json:"accountName,omitempty"`
	AccountID   string `json:"accountId,omitempty"`
}

// Directory is an immutable generation of the site map. A *Directory is never
// modified after New returns, so it can be shared between goroutines freely.
type Directory struct {
	entries map[string]Entry
	builtAt time.Time
}

// New builds a generation from rows. Rows without a site id are skipped; a
// later row for the same site id replaces an earlier one.
func New(rows []Entry, builtAt time.Time) *Directory {
	entries := make(map[string]Entry, len(rows))
	for _, row := range rows {
		row.SiteID = strings.TrimSpace(row.SiteID)
		if row.SiteID == "" {
			continue
		}
		row.AccountName = strings.TrimSpace(row.AccountName)
		row.AccountID = strings.TrimSpace(row.AccountID)
		entries[row.SiteID] = row
	}
	return &Directory{entries: entries, builtAt: builtAt}
}

// Lookup returns the entry for a trimmed site id.
func (d *Directory) Lookup(siteID string) (Entry, bool) {
	if d == nil {
		return Entry{}, false
	}
	e, ok := d.entries[strings.TrimSpace(siteID)]
	return e, ok
}

// Contains reports whether siteID is known.
func (d *Directory) Contains(siteID string) bool {
	_, ok := d.Lookup(siteID)
	return ok
}

func (d *Directory) Len() int {
	if d == nil {
		return 0
	}
	return len(d.entries)
}

func (d *Directory) BuiltAt() time.Time {
	if d == nil {
		return time.Time{}
	}
	return d.builtAt
}

// Entries returns a copy of every row, ordered by site id.
func (d *Directory) Entries() []Entry {
	if d == nil {
		return nil
	}
	out := make([]Entry, 0, len(d.entries))
	for _, e := range d.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SiteID < out[j].SiteID })
	return out
}

// fresh reports whether the generation is still within ttl at now.
func (d *Directory) fresh(now time.Time, ttl time.Duration) bool {
	return d != nil && now.Sub(d.builtAt) < ttl
}
