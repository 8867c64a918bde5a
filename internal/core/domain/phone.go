package domain

import "github.com/custodia-labs/vepctl/internal/core/keygen"

// Phone types seen in voter files. Any other slot name is kept verbatim.
const (
	PhoneMobile   = "mobile"
	PhoneLandline = "landline"
	PhoneUnknown  = "unknown"
)

// PhoneNumber is a validated US phone number.
type PhoneNumber struct {
	ID          string `json:"id"`
	Type        string `json:"phone_type"`
	Phone       string `json:"phone"`
	AreaCode    string `json:"areacode"`
	Number      string `json:"number"`
	Reliability string `json:"reliability,omitempty"`
}

var _ Entity = (*PhoneNumber)(nil)

// NewPhoneNumber builds a keyed PhoneNumber from an E.164 string.
func NewPhoneNumber(phoneType, e164, areaCode, number, reliability string) PhoneNumber {
	p := PhoneNumber{
		Type:        phoneType,
		Phone:       e164,
		AreaCode:    areaCode,
		Number:      number,
		Reliability: reliability,
	}
	p.ID = keygen.MustStaticKey(e164)
	return p
}

func (p *PhoneNumber) Kind() EntityKind { return KindPhone }
func (p *PhoneNumber) Key() string      { return p.ID }

// Fill copies missing fields from other.
func (p *PhoneNumber) Fill(other Entity) bool {
	o, ok := other.(*PhoneNumber)
	if !ok {
		return false
	}
	changed := fillString(&p.Type, o.Type)
	changed = fillString(&p.AreaCode, o.AreaCode) || changed
	changed = fillString(&p.Number, o.Number) || changed
	return fillString(&p.Reliability, o.Reliability) || changed
}
