package directory

import (
	"fmt"
	"strings"
)

// SourceError means the tabular export could not be fetched.
type SourceError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *SourceError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("directory source %s: status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("directory source %s: %v", e.URL, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// SchemaError means no site id column could be found in the header row.
type SchemaError struct {
	Headers []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("directory schema: no site id column in header [%s]", strings.Join(e.Headers, ", "))
}
