package directory

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

var (
	siteIDAliases      = []string{"site id", "siteid", "site_id", "site", "site number", "id"}
	accountNameAliases = []string{"account name", "accountname", "account_name", "account", "name", "school"}
	accountIDAliases   = []string{"account id", "accountid", "account_id", "acct id"}
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// columns holds resolved header indexes; -1 means absent.
type columns struct {
	siteID      int
	accountName int
	accountID   int
}

func resolveColumns(header []string) (columns, error) {
	index := make(map[string]int, len(header))
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(h))
		if _, dup := index[key]; !dup {
			index[key] = i
		}
	}
	find := func(aliases []string) int {
		for _, alias := range aliases {
			if i, ok := index[alias]; ok {
				return i
			}
		}
		return -1
	}

	cols := columns{
		siteID:      find(siteIDAliases),
		accountName: find(accountNameAliases),
		accountID:   find(accountIDAliases),
	}
	if cols.siteID < 0 {
		return cols, &SchemaError{Headers: append([]string(nil), header...)}
	}
	return cols, nil
}

// Parse reads a CSV export into rows. Quoted fields may contain commas,
// doubled quotes and line breaks; CRLF and LF line endings are both accepted.
// Rows with an empty site id are dropped.
func Parse(r io.Reader) ([]Entry, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read directory: %w", err)
	}
	raw = bytes.TrimPrefix(raw, utf8BOM)

	reader := csv.NewReader(bytes.NewReader(raw))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, &SchemaError{}
	}
	if err != nil {
		return nil, fmt.Errorf("parse directory header: %w", err)
	}
	cols, err := resolveColumns(header)
	if err != nil {
		return nil, err
	}

	var rows []Entry
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse directory row: %w", err)
		}
		siteID := strings.TrimSpace(field(record, cols.siteID))
		if siteID == "" {
			continue
		}
		rows = append(rows, Entry{
			SiteID:      siteID,
			AccountName: strings.TrimSpace(field(record, cols.accountName)),
			AccountID:   strings.TrimSpace(field(record, cols.accountID)),
		})
	}
	return rows, nil
}

func field(record []string, i int) string {
	if i < 0 || i >= len(record) {
		return ""
	}
	return record[i]
}
