// Package date composes and parses the dates found in voter files.
//
// Dates are matched against strptime-style patterns, tried in order. Dates
// of birth may be assembled from separate year, month and day columns and
// are repaired where the repair is unambiguous.
package date

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/itchyny/timefmt-go"

	"github.com/custodia-labs/vepctl/internal/core/domain"
)

// Correction notes recorded while composing a date of birth.
const (
	NoteYearMonthDay   = "Combined yearmonth and day values to create a valid date"
	NoteYearMonth      = "Combined yearmonth with day 01 to create a valid date"
	NoteYearMonthParts = "Combined year, month, and day values to create a valid date"
	NoteYearAndMonth   = "Combined year and month values to create a valid date"
	NoteYearOnly       = "Combined year with month and day 01 to create a valid date"
	NoteSixChars       = "DOB only has 6 characters. Attempting to validate by adding 01 for the day."
	NoteZeroDay        = "Replaced 00 day with 01"
	NoteTwoDigitYear   = "Expanded two digit year"
	NoteConverted      = "Converted values to a valid date"
	NoteRemoved        = "DOB is not a valid date. Removed DOB."
)

const compactLayout = "%Y%m%d"

// Parts are the date of birth fields of one record.
type Parts struct {
	Full      string
	YearMonth string
	Year      string
	Month     string
	Day       string
}

// IsEmpty reports whether no part is present.
func (p Parts) IsEmpty() bool {
	return p.Full == "" && p.YearMonth == "" && p.Year == "" && p.Month == "" && p.Day == ""
}

// Result is a composed date of birth.
type Result struct {
	// Date is nil when no candidate parsed.
	Date *time.Time

	// Value is the composed string that was parsed.
	Value string

	Notes []string
}

// Parser parses dates against an ordered list of patterns.
type Parser struct {
	formats []string
	now     func() time.Time
}

// Option configures a Parser.
type Option func(*Parser)

// WithClock sets the clock used to reject dates of birth in the future.
func WithClock(now func() time.Time) Option {
	return func(p *Parser) {
		if now != nil {
			p.now = now
		}
	}
}

// NewParser returns a parser for formats. Without any format it fails with
// a missing_date_format validation error.
func NewParser(formats []string, opts ...Option) (*Parser, error) {
	kept := make([]string, 0, len(formats))
	for _, f := range formats {
		if f = strings.TrimSpace(f); f != "" {
			kept = append(kept, f)
		}
	}
	if len(kept) == 0 {
		return nil, domain.NewValidationError(
			domain.ErrTypeMissingDateFormat,
			"date format is missing for this file",
		)
	}

	p := &Parser{formats: kept, now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Formats returns the patterns in the order they are tried.
func (p *Parser) Formats() []string {
	return append([]string(nil), p.formats...)
}

// Parse returns the date of the first pattern that matches value.
func (p *Parser) Parse(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range p.formats {
		t, err := timefmt.Parse(value, layout)
		if err == nil {
			return dateOnly(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q matches none of %v", domain.ErrInvalidInput, value, p.formats)
}

// RegistrationDate parses a voter registration date. Failure of every
// pattern is an invalid_registration_date validation error.
func (p *Parser) RegistrationDate(value string) (time.Time, error) {
	t, err := p.Parse(value)
	if err != nil {
		return time.Time{}, domain.NewValidationError(
			domain.ErrTypeInvalidRegistrationDate,
			fmt.Sprintf("invalid voter registration date for record: %s", value),
			"voter_registration_date", value,
		)
	}
	return t, nil
}

// ComposeDOB assembles and parses a date of birth.
//
// A full date wins over a year and month pair, which wins over a separate
// year. Missing month and day default to 01. The parsed date must lie in the
// past; a result without a date means no candidate was usable.
func (p *Parser) ComposeDOB(parts Parts) Result {
	var res Result
	value := p.compose(parts, &res)
	if value == "" {
		return res
	}

	if strings.HasSuffix(value, "00") {
		value = value[:len(value)-2] + "01"
		res.Notes = append(res.Notes, NoteZeroDay)
	}

	now := p.now()
	for _, c := range p.candidates(value, parts.Full) {
		t, err := p.Parse(c.value)
		if err != nil || !t.Before(now) {
			continue
		}
		if c.note != "" {
			res.Notes = append(res.Notes, c.note)
		}
		res.Date = &t
		res.Value = c.value
		res.Notes = append(res.Notes, NoteConverted)
		return res
	}

	res.Value = value
	res.Notes = append(res.Notes, NoteRemoved)
	return res
}

func (p *Parser) compose(parts Parts, res *Result) string {
	if full := strings.TrimSpace(parts.Full); full != "" {
		value := strings.ReplaceAll(full, "-", "")
		if len(value) == 6 && p.hasLayout(compactLayout) {
			res.Notes = append(res.Notes, NoteSixChars)
			value += "01"
		}
		return value
	}

	switch {
	case parts.YearMonth != "" && parts.Day != "":
		res.Notes = append(res.Notes, NoteYearMonthDay)
		return parts.YearMonth + pad2(parts.Day)
	case parts.YearMonth != "":
		res.Notes = append(res.Notes, NoteYearMonth)
		return parts.YearMonth + "01"
	case parts.Year != "" && parts.Month != "" && parts.Day != "":
		res.Notes = append(res.Notes, NoteYearMonthParts)
		return parts.Year + pad2(parts.Month) + pad2(parts.Day)
	case parts.Year != "" && parts.Month != "":
		res.Notes = append(res.Notes, NoteYearAndMonth)
		return parts.Year + pad2(parts.Month) + "01"
	case parts.Year != "":
		res.Notes = append(res.Notes, NoteYearOnly)
		return parts.Year + "0101"
	default:
		return ""
	}
}

type candidate struct {
	value string
	note  string
}

// candidates lists the strings tried in order: the repaired value, its
// two digit year expansion and the untouched full date.
func (p *Parser) candidates(value, full string) []candidate {
	out := []candidate{{value: value}}
	original := strings.ReplaceAll(strings.TrimSpace(full), "-", "")
	if len(original) == 6 && isDigits(original) {
		out = append(out, candidate{value: p.expandYear(original), note: NoteTwoDigitYear})
	}
	if full = strings.TrimSpace(full); full != "" && full != value {
		out = append(out, candidate{value: full})
	}
	return out
}

// expandYear turns YYMMDD into YYYYMMDD, picking the most recent century
// that does not put the year in the future.
func (p *Parser) expandYear(yymmdd string) string {
	yy, _ := strconv.Atoi(yymmdd[:2])
	current := p.now().Year()
	century := current / 100 * 100
	if century+yy > current {
		century -= 100
	}
	return strconv.Itoa(century+yy) + yymmdd[2:]
}

func (p *Parser) hasLayout(layout string) bool {
	for _, f := range p.formats {
		if strings.Contains(f, layout) {
			return true
		}
	}
	return false
}

func pad2(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
