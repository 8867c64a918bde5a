package domain

import (
	"sort"
	"strings"

	"github.com/custodia-labs/vepctl/internal/core/keygen"
)

// RawRecord is one row of a voter file before renaming.
// It is the record source's output.
type RawRecord struct {
	// Source is the file the record was read from.
	Source string

	// Line is the 1-based row number within Source.
	Line int

	// Fields maps source column names to raw values.
	Fields map[string]string
}

// Fingerprint returns the content fingerprint of the record's fields.
// Two rows with identical column/value pairs share a fingerprint regardless
// of column order or source file.
func (r RawRecord) Fingerprint() string {
	keys := make([]string, 0, len(r.Fields))
	for k := range r.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteByte('\x1f')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(r.Fields[k])
	}
	return keygen.Fingerprint(b.String())
}
