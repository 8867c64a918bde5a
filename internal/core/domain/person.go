package domain

import (
	"time"
)

// PersonName is a person's name and date of birth.
type PersonName struct {
	ID     string            `json:"id"`
	Prefix string            `json:"prefix,omitempty"`
	First  string            `json:"first,omitempty"`
	Middle string            `json:"middle,omitempty"`
	Last   string            `json:"last,omitempty"`
	Suffix string            `json:"suffix,omitempty"`
	DOB    *time.Time        `json:"dob,omitempty"`
	Gender string            `json:"gender,omitempty"`
	Other  map[string]string `json:"other_fields,omitempty"`
}

var _ Entity = (*PersonName)(nil)

// NewPersonName builds a PersonName from renamed person fields.
// The date of birth is set separately with WithDOB.
func NewPersonName(f PersonFields) *PersonName {
	p := &PersonName{
		Prefix: f.Prefix,
		First:  f.First,
		Middle: f.Middle,
		Last:   f.Last,
		Suffix: f.Suffix,
		Gender: f.Gender,
		Other:  cloneMap(f.Other),
	}
	p.Rekey()
	return p
}

func (p *PersonName) Kind() EntityKind { return KindPerson }
func (p *PersonName) Key() string      { return p.ID }

// Rekey recomputes the identity key from prefix, first, middle, last,
// suffix and date of birth.
func (p *PersonName) Rekey() string {
	dob := ""
	if p.DOB != nil {
		dob = p.DOB.Format(time.DateOnly)
	}
	p.ID = joinedKey(p.Prefix, p.First, p.Middle, p.Last, p.Suffix, dob)
	return p.ID
}

// WithDOB returns a copy carrying dob and a recomputed key.
func (p *PersonName) WithDOB(dob *time.Time) *PersonName {
	c := p.Clone()
	c.DOB = dob
	c.Rekey()
	return c
}

// Fill copies missing fields from other.
func (p *PersonName) Fill(other Entity) bool {
	o, ok := other.(*PersonName)
	if !ok {
		return false
	}
	changed := fillString(&p.Prefix, o.Prefix)
	changed = fillString(&p.First, o.First) || changed
	changed = fillString(&p.Middle, o.Middle) || changed
	changed = fillString(&p.Last, o.Last) || changed
	changed = fillString(&p.Suffix, o.Suffix) || changed
	changed = fillString(&p.Gender, o.Gender) || changed
	if p.DOB == nil && o.DOB != nil {
		d := *o.DOB
		p.DOB = &d
		changed = true
	}
	return fillMap(&p.Other, o.Other) || changed
}

// Clone returns a deep copy.
func (p *PersonName) Clone() *PersonName {
	if p == nil {
		return nil
	}
	c := *p
	if p.DOB != nil {
		d := *p.DOB
		c.DOB = &d
	}
	c.Other = cloneMap(p.Other)
	return &c
}
