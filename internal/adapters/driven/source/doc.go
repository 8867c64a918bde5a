// Package source reads voter files into raw records.
//
// Delimited text (.csv, .tsv, .txt) is read with encoding/csv; spreadsheets
// (.xlsx) with excelize. The first row of every file is the header and each
// later row becomes one domain.RawRecord keyed by header name.
package source
