// Package address standardizes the residence and mailing addresses of a
// record and derives their identity keys.
package address

import (
	"sort"
	"strings"

	"github.com/custodia-labs/vepctl/internal/core/domain"
)

// Correction notes.
const (
	NoteFromParts    = "Reconstructed address from USPS component fields"
	NoteConcatenated = "Combined address fields into one line"
	NoteStandardized = "Standardized address"
	NoteFallback     = "Address could not be standardized, parsed with the fallback tokenizer"
)

// componentRanks orders address fields by suffix so the free-text form
// reads like a postal address regardless of source column order. Longer
// suffixes are listed before the shorter suffixes they end with.
var componentRanks = []struct {
	suffix string
	rank   int
}{
	{"address_number", 0},
	{"house_number", 0},
	{"street_number", 0},
	{"predirectional", 1},
	{"pre_direction", 1},
	{"street_name", 2},
	{"street_suffix", 3},
	{"street_type", 3},
	{"postdirectional", 4},
	{"post_direction", 4},
	{"address1", 5},
	{"address_line_1", 5},
	{"line1", 5},
	{"street", 5},
	{"address", 5},
	{"address2", 6},
	{"address_line_2", 6},
	{"line2", 6},
	{"unit_type", 6},
	{"unit_number", 7},
	{"unit", 7},
	{"city", 8},
	{"state", 9},
	{"zip5", 10},
	{"zipcode", 10},
	{"zip", 10},
	{"zip4", 11},
}

const unknownRank = 7

// Resolver builds standardized addresses from canonical address fields.
type Resolver struct{}

// NewResolver creates an address resolver.
func NewResolver() *Resolver {
	return &Resolver{}
}

// Resolve builds the address of type t from its fields.
//
// Fields keyed by USPS component ("<type>_part_<component>") are
// reconstructed into one line in component order; any other fields are
// concatenated. County and country are taken as given. A nil address is
// returned when no field describes a location. The returned address is keyed;
// an address that yields no standardized form is an
// address_not_standardized error.
func (r *Resolver) Resolve(t domain.AddressType, fields []domain.Field) (*domain.Address, []string, error) {
	if len(fields) == 0 {
		return nil, nil, nil
	}

	ordered := make([]domain.Field, len(fields))
	copy(ordered, fields)
	sort.SliceStable(ordered, func(i, j int) bool {
		return rank(t, ordered[i].Name) < rank(t, ordered[j].Name)
	})

	addr := &domain.Address{
		Type:        t,
		IsResidence: t == domain.AddressResidence,
		IsMailing:   t == domain.AddressMail,
	}

	var notes []string
	if partKeyed(t, ordered) {
		notes = append(notes, NoteFromParts)
	} else {
		notes = append(notes, NoteConcatenated)
	}

	var text []string
	var zip5, zip4 string
	for _, f := range ordered {
		switch component(t, f.Name) {
		case "county":
			addr.County = f.Value
		case "country":
			addr.Country = f.Value
		case "zip5", "zipcode", "zip":
			zip5 = f.Value
		case "zip4":
			zip4 = f.Value
		default:
			text = append(text, f.Value)
		}
	}
	if zip5 != "" && zip4 != "" {
		text = append(text, zip5+"-"+zip4)
	} else if zip5 != "" {
		text = append(text, zip5)
	}

	if len(text) == 0 {
		return nil, nil, nil
	}

	line := strings.Join(text, " ")
	lines, err := Standardize(line)
	if err != nil {
		lines = Fallback(line)
		notes = append(notes, NoteFallback)
	} else {
		notes = append(notes, NoteStandardized)
	}

	addr.Line1 = lines.Line1
	addr.Line2 = lines.Line2
	addr.City = lines.City
	addr.State = lines.State
	addr.Zip5 = lines.Zip5
	addr.Zip4 = lines.Zip4
	addr.Zipcode = lines.Zipcode()
	addr.Standardized = lines.Standardized()
	addr.Parts = Parts(addr.Standardized)

	if err := addr.Rekey(); err != nil {
		return nil, notes, domain.NewValidationError(
			domain.ErrTypeAddressNotStandardized,
			"address must be standardized before a key can be generated",
			"address_type", string(t),
			"input", line,
		)
	}
	return addr, notes, nil
}

// component strips the type prefix and any "part_" marker from name.
func component(t domain.AddressType, name string) string {
	c := strings.TrimPrefix(name, string(t)+"_")
	return strings.TrimPrefix(c, "part_")
}

func partKeyed(t domain.AddressType, fields []domain.Field) bool {
	prefix := string(t) + "_part_"
	for _, f := range fields {
		if !strings.HasPrefix(f.Name, prefix) {
			return false
		}
	}
	return true
}

func rank(t domain.AddressType, name string) int {
	c := component(t, name)
	for _, cr := range componentRanks {
		if strings.HasSuffix(c, cr.suffix) {
			return cr.rank
		}
	}
	return unknownRank
}
