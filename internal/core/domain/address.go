package domain

import (
	"fmt"

	"github.com/custodia-labs/vepctl/internal/core/keygen"
)

// AddressType distinguishes residence from mailing addresses.
type AddressType string

const (
	AddressResidence AddressType = "residence"
	AddressMail      AddressType = "mail"
)

// AddressTypes lists the recognised address types in preference order.
var AddressTypes = []AddressType{AddressResidence, AddressMail}

// Address is a standardized postal address.
type Address struct {
	ID           string            `json:"id"`
	Type         AddressType       `json:"address_type"`
	Line1        string            `json:"address1,omitempty"`
	Line2        string            `json:"address2,omitempty"`
	City         string            `json:"city,omitempty"`
	State        string            `json:"state,omitempty"`
	Zip5         string            `json:"zip5,omitempty"`
	Zip4         string            `json:"zip4,omitempty"`
	Zipcode      string            `json:"zipcode,omitempty"`
	County       string            `json:"county,omitempty"`
	Country      string            `json:"country,omitempty"`
	Standardized string            `json:"standardized,omitempty"`
	Parts        map[string]string `json:"address_parts,omitempty"`
	IsMailing    bool              `json:"is_mailing,omitempty"`
	IsResidence  bool              `json:"is_residence,omitempty"`
	Other        map[string]string `json:"other_fields,omitempty"`
}

var _ Entity = (*Address)(nil)

func (a *Address) Kind() EntityKind { return KindAddress }
func (a *Address) Key() string      { return a.ID }

// Rekey derives the identity key from the standardized form.
func (a *Address) Rekey() error {
	if a.Standardized == "" {
		return fmt.Errorf("%w: %s address", ErrNotStandardized, a.Type)
	}
	a.ID = keygen.MustStaticKey(a.Standardized)
	return nil
}

// Fill copies missing fields from other.
func (a *Address) Fill(other Entity) bool {
	o, ok := other.(*Address)
	if !ok {
		return false
	}
	changed := fillString(&a.Line1, o.Line1)
	changed = fillString(&a.Line2, o.Line2) || changed
	changed = fillString(&a.City, o.City) || changed
	changed = fillString(&a.State, o.State) || changed
	changed = fillString(&a.Zipcode, o.Zipcode) || changed
	changed = fillString(&a.Zip5, o.Zip5) || changed
	changed = fillString(&a.Zip4, o.Zip4) || changed
	changed = fillString(&a.County, o.County) || changed
	changed = fillString(&a.Country, o.Country) || changed
	changed = fillString(&a.Standardized, o.Standardized) || changed
	if len(a.Parts) == 0 && len(o.Parts) > 0 {
		a.Parts = cloneMap(o.Parts)
		changed = true
	}
	if !a.IsMailing && o.IsMailing {
		a.IsMailing = true
		changed = true
	}
	if !a.IsResidence && o.IsResidence {
		a.IsResidence = true
		changed = true
	}
	return fillMap(&a.Other, o.Other) || changed
}

// Clone returns a deep copy.
func (a Address) Clone() Address {
	a.Parts = cloneMap(a.Parts)
	a.Other = cloneMap(a.Other)
	return a
}
