package domain

// Field is a canonical field name with its value.
type Field struct {
	Name  string
	Value string
}

// CanonicalRecord is the output of the renaming stage: a record whose raw
// column names have been mapped to canonical names and grouped by the kind
// of entity they describe. Empty values are never present.
type CanonicalRecord struct {
	// Raw is the original row, sentinel values included.
	Raw RawRecord

	// Renamed holds every canonical field, ungrouped.
	Renamed map[string]string

	Person       PersonFields
	Registration RegistrationFields

	// Addresses holds the fields of each address type in component order.
	Addresses map[AddressType][]Field

	// Phones holds one slot per contact_phone_<type> group.
	Phones []PhoneSlot

	// Districts holds the fields of each level with the district_<level>_
	// prefix removed.
	Districts map[DistrictLevel][]Field

	// Vendors holds vendor_<name>_<tag> groups.
	Vendors []VendorGroup

	// Elections holds election_<year>_<type>_<attr> fields.
	Elections []Field

	// Extra holds canonical fields that belong to no group.
	Extra map[string]string

	DateFormats []string
	Settings    Settings
}

// PersonFields are the person_* canonical fields.
type PersonFields struct {
	Prefix string
	First  string
	Middle string
	Last   string
	Suffix string
	Gender string

	DOB          string
	DOBYearMonth string
	DOBYear      string
	DOBMonth     string
	DOBDay       string

	Other map[string]string
}

// HasName reports whether any person_name_* field is present.
func (p PersonFields) HasName() bool {
	return p.Prefix != "" || p.First != "" || p.Middle != "" || p.Last != "" || p.Suffix != ""
}

// IsEmpty reports whether no person field is present.
func (p PersonFields) IsEmpty() bool {
	return !p.HasName() && p.Gender == "" && !p.HasDOBParts() && len(p.Other) == 0
}

// HasDOBParts reports whether any date of birth field is present.
func (p PersonFields) HasDOBParts() bool {
	return p.DOB != "" || p.DOBYearMonth != "" || p.DOBYear != "" || p.DOBMonth != "" || p.DOBDay != ""
}

// RegistrationFields are the voter_* canonical fields.
type RegistrationFields struct {
	VUID             string
	RegistrationDate string
	Status           string
	County           string
	PrecinctNumber   string
	PrecinctName     string
	PoliticalTags    map[string]string
	Attributes       map[string]string
}

// IsEmpty reports whether no voter field is present.
func (r RegistrationFields) IsEmpty() bool {
	return r.VUID == "" && r.RegistrationDate == "" && r.Status == "" && r.County == "" &&
		r.PrecinctNumber == "" && r.PrecinctName == "" &&
		len(r.PoliticalTags) == 0 && len(r.Attributes) == 0
}

// PhoneSlot groups the fields of one contact_phone_<type>.
type PhoneSlot struct {
	Type        string
	Number      string
	AreaCode    string
	Subscriber  string
	Reliability string
}

// VendorGroup groups the fields of one vendor_<name>.
type VendorGroup struct {
	Name string
	Tags []Field
}
