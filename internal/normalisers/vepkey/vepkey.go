// Package vepkey derives the candidate keys used to link one voter across
// independently sourced files.
//
// The short key is the first five letters of the first and last names
// followed by the ZIP code. The long key adds the date of birth. The best
// key is the most specific key available: long, then short, then name with
// date of birth.
package vepkey

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/custodia-labs/vepctl/internal/core/domain"
	"github.com/custodia-labs/vepctl/internal/core/keygen"
)

const (
	nameFragment = 5
	dobLayout    = "20060102"
	model        = "vep_keys"
)

var notAlnum = regexp.MustCompile(`[^a-zA-Z0-9 ]`)

// Input is the resolved part of a record the keys are derived from.
type Input struct {
	Name         *domain.PersonName
	Registration *domain.VoterRegistration
	Addresses    []domain.Address
}

// Builder derives VEP keys.
type Builder struct {
	strictDOB bool
	prefer    domain.AddressType
}

// Option configures a Builder.
type Option func(*Builder)

// WithStrictDOB makes a missing date of birth a missing_dob error.
func WithStrictDOB(strict bool) Option {
	return func(b *Builder) {
		b.strictDOB = strict
	}
}

// WithPreferredAddress selects which address type supplies the ZIP code
// when both are present. The default is the residence address.
func WithPreferredAddress(t domain.AddressType) Option {
	return func(b *Builder) {
		if t == domain.AddressResidence || t == domain.AddressMail {
			b.prefer = t
		}
	}
}

// NewBuilder creates a key builder.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{prefer: domain.AddressResidence}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build derives the keys of in. It returns nil without error when no key
// can be derived.
//
// A missing name part is an error. Keys built from the mailing ZIP while the
// residence address carries a ZIP are a
// uses_mailzip_with_residential_zip_present error.
func (b *Builder) Build(in Input) (*domain.VEPMatch, error) {
	first, last, err := checkName(in.Name)
	if err != nil {
		return nil, err
	}

	dob := ""
	if in.Name.DOB != nil {
		dob = in.Name.DOB.Format(dobLayout)
	} else if b.strictDOB {
		return nil, domain.NewValidationError(
			domain.ErrTypeMissingDOB,
			"missing date of birth, unable to generate a strong key to match with",
			"validator_model", model,
		)
	}

	m := &domain.VEPMatch{}
	if in.Registration.IsFresh() {
		m.RegistrationDate = in.Registration.EDR.Format(dobLayout)
	}

	addr := b.pick(in.Addresses)
	initial := fragment(first) + fragment(last)

	if addr != nil && strings.TrimSpace(addr.Zip5) != "" {
		key := Clean(initial + strings.TrimSpace(addr.Zip5))
		m.Short, m.BestKey, m.FullKey = key, key, key
		if dob != "" {
			key = Clean(initial + strings.TrimSpace(addr.Zip5) + dob)
			m.Long, m.BestKey, m.FullKey = key, key, key
		}
		m.FullKeyHash = keygen.Fingerprint(m.FullKey)
	}

	if dob != "" {
		m.NameDOB = Clean(initial + dob)
		if m.BestKey == "" {
			m.BestKey = m.NameDOB
		}
	}

	if addr != nil && addr.Standardized != "" {
		text := strings.NewReplacer(" ", "", ",", "").Replace(addr.Standardized)
		m.AddrText = Clean(text)
		m.AddrKey = keygen.Fingerprint(m.AddrText)
	}

	if !m.HasKeys() {
		return nil, nil
	}

	if addr != nil && addr.Type == domain.AddressMail {
		m.UsesMailZip = true
		if res := find(in.Addresses, domain.AddressResidence); res != nil && res.Zip5 != "" {
			return nil, domain.NewValidationError(
				domain.ErrTypeUsesMailZipWithResidenceZip,
				"VEP keys are being generated with a mail zipcode, but residential zips are present",
				"mail_zip5", addr.Zip5,
				"residence_zip5", res.Zip5,
			)
		}
	}

	m.Rekey()
	return m, nil
}

// pick returns the preferred address, falling back to the other type.
func (b *Builder) pick(addresses []domain.Address) *domain.Address {
	if a := find(addresses, b.prefer); a != nil {
		return a
	}
	for _, t := range domain.AddressTypes {
		if a := find(addresses, t); a != nil {
			return a
		}
	}
	return nil
}

func find(addresses []domain.Address, t domain.AddressType) *domain.Address {
	for i := range addresses {
		if addresses[i].Type == t {
			return &addresses[i]
		}
	}
	return nil
}

func checkName(name *domain.PersonName) (first, last string, err error) {
	if name == nil {
		return "", "", domain.NewValidationError(
			domain.ErrTypeMissingName,
			"missing name details, unable to generate a strong key to match with",
			"validator_model", model,
		)
	}

	first, last = strings.TrimSpace(name.First), strings.TrimSpace(name.Last)
	var errType, part string
	switch {
	case first == "" && last == "":
		errType, part = domain.ErrTypeMissingFirstAndLastName, "first and last"
	case first == "":
		errType, part = domain.ErrTypeMissingFirstName, "first"
	case last == "":
		errType, part = domain.ErrTypeMissingLastName, "last"
	default:
		return first, last, nil
	}
	return "", "", domain.NewValidationError(
		errType,
		"missing "+part+" name, unable to generate a strong key to match with",
		"validator_model", model,
	)
}

// fragment is the first five letters of a folded name.
func fragment(name string) string {
	r := []rune(Fold(name))
	if len(r) > nameFragment {
		r = r[:nameFragment]
	}
	return strings.TrimSpace(string(r))
}

// Fold strips diacritics, so "José" becomes "Jose".
func Fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// Clean drops every character other than ASCII letters, digits and spaces.
func Clean(s string) string {
	return notAlnum.ReplaceAllString(s, "")
}
