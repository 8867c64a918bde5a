package domain

import (
	"time"

	"github.com/custodia-labs/vepctl/internal/core/keygen"
)

// FreshRegistrationCutoff is the earliest registration date usable as a
// freshness signal for matching keys.
var FreshRegistrationCutoff = time.Date(2021, time.January, 1, 0, 0, 0, 0, time.UTC)

// VoterRegistration is a voter's registration with a jurisdiction.
// Two registrations are the same entity when their VUIDs match.
type VoterRegistration struct {
	ID             string            `json:"id"`
	VUID           string            `json:"vuid"`
	EDR            *time.Time        `json:"edr,omitempty"`
	Status         string            `json:"status,omitempty"`
	County         string            `json:"county,omitempty"`
	PrecinctNumber string            `json:"precinct_number,omitempty"`
	PrecinctName   string            `json:"precinct_name,omitempty"`
	PoliticalTags  map[string]string `json:"political_tags,omitempty"`
	Attributes     map[string]string `json:"attributes,omitempty"`
}

var _ Entity = (*VoterRegistration)(nil)

func (v *VoterRegistration) Kind() EntityKind { return KindRegistration }
func (v *VoterRegistration) Key() string      { return v.ID }

// Rekey derives the identity key from the VUID.
func (v *VoterRegistration) Rekey() string {
	v.ID = keygen.MustStaticKey(v.VUID)
	return v.ID
}

// IsFresh reports whether the registration date is on or after the cutoff.
func (v *VoterRegistration) IsFresh() bool {
	return v != nil && v.EDR != nil && !v.EDR.Before(FreshRegistrationCutoff)
}

// Fill copies missing fields from other.
func (v *VoterRegistration) Fill(other Entity) bool {
	o, ok := other.(*VoterRegistration)
	if !ok {
		return false
	}
	changed := false
	if v.EDR == nil && o.EDR != nil {
		d := *o.EDR
		v.EDR = &d
		changed = true
	}
	changed = fillString(&v.Status, o.Status) || changed
	changed = fillString(&v.County, o.County) || changed
	changed = fillString(&v.PrecinctNumber, o.PrecinctNumber) || changed
	changed = fillString(&v.PrecinctName, o.PrecinctName) || changed
	changed = fillMap(&v.PoliticalTags, o.PoliticalTags) || changed
	return fillMap(&v.Attributes, o.Attributes) || changed
}

// Clone returns a deep copy.
func (v *VoterRegistration) Clone() *VoterRegistration {
	if v == nil {
		return nil
	}
	c := *v
	if v.EDR != nil {
		d := *v.EDR
		c.EDR = &d
	}
	c.PoliticalTags = cloneMap(v.PoliticalTags)
	c.Attributes = cloneMap(v.Attributes)
	return &c
}
