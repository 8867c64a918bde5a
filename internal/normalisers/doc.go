// Package normalisers groups the field-level cleaners used by the cleanup
// stages. Each subpackage handles one kind of value:
//
//   - date: strptime-style parsing with per-jurisdiction formats
//   - phone: E.164 formatting and type detection
//   - address: street standardisation and ZIP handling
//   - district: fuzzy matching of district field names
//   - vendor: vendor name and tag extraction
//   - election: vote history field parsing
//   - vepkey: name folding and VEP key construction
//
// Normalisers are pure functions over strings and domain values; they
// never touch storage.
package normalisers
