package directory

import "time"

// staticEntries is served when no export URL is configured.
var staticEntries = []Entry{
	{SiteID: "910001", AccountName: "Slammedia Demo Academy", AccountID: "ACC-910001"},
	{SiteID: "910002", AccountName: "Slammedia Demo High School", AccountID: "ACC-910002"},
	{SiteID: "910003", AccountName: "Slammedia Training Site"},
}

// Fallback returns the embedded directory.
func Fallback() *Directory {
	return New(staticEntries, time.Time{})
}
