package address

import (
	"errors"
	"strings"
)

// ErrUnparseable is returned when free text lacks the components of a
// deliverable address.
var ErrUnparseable = errors.New("address could not be standardized")

// Lines is an address in USPS line form.
type Lines struct {
	Line1 string
	Line2 string
	City  string
	State string
	Zip5  string
	Zip4  string
}

// Zipcode returns the ZIP or ZIP+4 code.
func (l Lines) Zipcode() string {
	if l.Zip5 != "" && l.Zip4 != "" {
		return l.Zip5 + "-" + l.Zip4
	}
	return l.Zip5
}

// Standardized returns the single line form: the non-empty lines joined
// by ", ".
func (l Lines) Standardized() string {
	parts := make([]string, 0, 5)
	for _, p := range []string{l.Line1, l.Line2, l.City, l.State, l.Zipcode()} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

// IsEmpty reports whether no line is set.
func (l Lines) IsEmpty() bool {
	return l.Standardized() == ""
}

// Standardize normalises a free-text address into upper-case USPS form
// with abbreviated suffixes, directionals and unit designators.
//
// The result must have a street line (house number and street, or a post
// office box) and either a city with a state or a ZIP code; otherwise
// ErrUnparseable is returned.
func Standardize(text string) (Lines, error) {
	var (
		l                  Lines
		number, street     []string
		box, unit, city    []string
		state, zip         []string
		hasNumber, hasBox  bool
		hasStreet, hasUnit bool
	)

	for _, t := range Tokenize(text) {
		switch t.Label {
		case AddressNumber:
			number = append(number, t.Text)
			hasNumber = true
		case StreetNamePreDirectional, StreetNamePostDirectional:
			street = append(street, directionals[t.Text])
		case StreetName:
			street = append(street, t.Text)
			hasStreet = true
		case StreetNamePostType:
			street = append(street, streetSuffixes[t.Text])
		case USPSBoxType:
		case USPSBoxID:
			box = append(box, t.Text)
			hasBox = true
		case OccupancyType:
			unit = append(unit, occupancyTypes[t.Text])
		case OccupancyIdentifier:
			unit = append(unit, t.Text)
			hasUnit = true
		case PlaceName:
			city = append(city, t.Text)
		case StateName:
			state = append(state, t.Text)
		case ZipCode:
			zip = append(zip, t.Text)
		}
	}

	switch {
	case hasNumber && hasStreet:
		l.Line1 = strings.Join(append(number, street...), " ")
	case hasBox:
		l.Line1 = "PO BOX " + strings.Join(box, " ")
	default:
		return Lines{}, ErrUnparseable
	}
	if hasUnit {
		l.Line2 = strings.Join(unit, " ")
	}
	l.City = strings.Join(city, " ")
	if len(state) > 0 {
		l.State = states[strings.Join(state, " ")]
	}
	l.Zip5, l.Zip4 = splitZip(strings.Join(zip, " "))

	if (l.City == "" || l.State == "") && l.Zip5 == "" {
		return Lines{}, ErrUnparseable
	}
	return l, nil
}

// Fallback maps the tokens of text onto address lines without requiring a
// complete address. Street and box tokens build line 1, unit tokens line 2,
// place names the city.
func Fallback(text string) Lines {
	var line1, line2, city, state, zip []string
	for _, t := range Tokenize(text) {
		switch t.Label {
		case AddressNumber, StreetNamePreDirectional, StreetName, StreetNamePostType,
			StreetNamePostDirectional, USPSBoxType, USPSBoxID:
			line1 = append(line1, t.Text)
		case OccupancyType, OccupancyIdentifier:
			line2 = append(line2, t.Text)
		case PlaceName:
			city = append(city, t.Text)
		case StateName:
			state = append(state, t.Text)
		case ZipCode:
			zip = append(zip, t.Text)
		}
	}

	l := Lines{
		Line1: strings.Join(line1, " "),
		Line2: strings.Join(line2, " "),
		City:  strings.Join(city, " "),
	}
	if len(state) > 0 {
		name := strings.Join(state, " ")
		if abbr, ok := states[name]; ok {
			name = abbr
		}
		l.State = name
	}
	l.Zip5, l.Zip4 = splitZip(strings.Join(zip, " "))
	return l
}

// Parts tokenizes a standardized address into a component bag. Repeated
// components are joined with a space.
func Parts(standardized string) map[string]string {
	tokens := Tokenize(strings.ReplaceAll(standardized, ",", ""))
	if len(tokens) == 0 {
		return nil
	}
	parts := make(map[string]string, len(tokens))
	for _, t := range tokens {
		key := string(t.Label)
		if prev, ok := parts[key]; ok {
			parts[key] = prev + " " + t.Text
			continue
		}
		parts[key] = t.Text
	}
	return parts
}

func splitZip(zip string) (zip5, zip4 string) {
	zip = strings.TrimSpace(zip)
	if zip == "" {
		return "", ""
	}
	if i := strings.IndexAny(zip, "- "); i >= 0 {
		return zip[:i], strings.TrimSpace(zip[i+1:])
	}
	if len(zip) == 9 {
		return zip[:5], zip[5:]
	}
	return zip, ""
}
