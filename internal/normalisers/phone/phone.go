// Package phone validates and formats the contact phone numbers of a record.
package phone

import (
	"errors"
	"fmt"

	"github.com/nyaruka/phonenumbers"

	"github.com/custodia-labs/vepctl/internal/core/domain"
)

// DefaultRegion is the numbering plan numbers are validated against.
const DefaultRegion = "US"

// Correction notes.
const (
	NoteInvalid     = "Phone number is not a valid US phone number"
	NoteParseFailed = "Failed to parse phone number"
	NoteValidated   = "Phone number successfully validated"
)

// Parse failures. Both wrap domain.ErrInvalidInput.
var (
	ErrUnparseable   = fmt.Errorf("%w: %s", domain.ErrInvalidInput, NoteParseFailed)
	ErrInvalidNumber = fmt.Errorf("%w: %s", domain.ErrInvalidInput, NoteInvalid)
)

// Resolver turns phone slots into validated numbers.
type Resolver struct {
	region string
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithRegion sets the region used to parse numbers without a country code.
func WithRegion(region string) Option {
	return func(r *Resolver) {
		if region != "" {
			r.region = region
		}
	}
}

// NewResolver creates a resolver for DefaultRegion.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{region: DefaultRegion}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Parse validates one number and returns its E.164 form with the area code
// and subscriber number split out.
func (r *Resolver) Parse(raw string) (e164, areaCode, number string, err error) {
	num, err := phonenumbers.Parse(raw, r.region)
	if err != nil {
		return "", "", "", ErrUnparseable
	}
	if !phonenumbers.IsValidNumber(num) {
		return "", "", "", ErrInvalidNumber
	}

	national := phonenumbers.GetNationalSignificantNumber(num)
	if len(national) > 3 {
		areaCode, number = national[:3], national[3:]
	}
	return phonenumbers.Format(num, phonenumbers.E164), areaCode, number, nil
}

// Resolve validates every slot. A slot's combined number is tried first;
// a 3 digit area code with a 7 digit number is tried as well and kept when
// it yields a different number. Invalid numbers only produce notes, keyed
// "phone_<type>". A formatted number is never returned twice.
func (r *Resolver) Resolve(slots []domain.PhoneSlot) ([]domain.PhoneNumber, domain.Corrections) {
	var phones []domain.PhoneNumber
	notes := make(domain.Corrections)
	seen := make(map[string]bool)

	add := func(slot domain.PhoneSlot, raw, addedNote string) {
		key := "phone_" + slot.Type
		e164, area, number, err := r.Parse(raw)
		if err != nil {
			notes.Add(key, noteFor(err))
			return
		}
		notes.Add(key, NoteValidated)
		if seen[e164] {
			return
		}
		seen[e164] = true
		phones = append(phones, domain.NewPhoneNumber(slot.Type, e164, area, number, slot.Reliability))
		notes.Add(key, addedNote)
	}

	for _, slot := range slots {
		if slot.Number != "" {
			add(slot, slot.Number, fmt.Sprintf("%s was successfully validated and formatted", slot.Type))
		}
		if len(slot.AreaCode) == 3 && len(slot.Subscriber) == 7 {
			add(slot, slot.AreaCode+slot.Subscriber, fmt.Sprintf("Additional number added for %s", slot.Type))
		}
	}
	return phones, notes
}

func noteFor(err error) string {
	if errors.Is(err, ErrUnparseable) {
		return NoteParseFailed
	}
	return NoteInvalid
}
