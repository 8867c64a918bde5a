package services

import (
	"maps"
	"slices"
	"strings"

	"github.com/custodia-labs/vepctl/internal/core/domain"
)

// ModelRename names the renaming stage in error details.
const ModelRename = "rename"

// nullAlias in an alias list stands for the canonical name itself.
const nullAlias = "null"

// Renamer maps raw column names to canonical field names and groups the
// canonical fields by the entity they describe.
type Renamer struct{}

// NewRenamer creates a renamer.
func NewRenamer() *Renamer {
	return &Renamer{}
}

// Rename applies cfg's alias table to raw. Blank, `"` and "null" values
// are dropped first. For each canonical field the first alias present in
// the row wins; exact column matches take precedence over case-insensitive
// ones. Errors are returned as *domain.StageError tagged rename.
func (r *Renamer) Rename(cfg *domain.AliasConfig, raw domain.RawRecord) (*domain.CanonicalRecord, error) {
	if cfg == nil {
		return nil, renameError(domain.NewValidationError(domain.ErrTypeInternal, "no alias configuration"))
	}

	present := clearBlank(raw.Fields)
	folded := make(map[string]string, len(present))
	for _, k := range slices.Sorted(maps.Keys(present)) {
		lk := strings.ToLower(k)
		if _, ok := folded[lk]; !ok {
			folded[lk] = present[k]
		}
	}

	renamed := make(map[string]string, len(cfg.Fields))
	for canonical, aliases := range cfg.Fields {
		if v, ok := lookup(canonical, aliases, present, folded); ok {
			renamed[canonical] = v
		}
	}

	for _, rep := range cfg.Settings.ReplaceChars {
		v, ok := renamed[rep.Field]
		if !ok || rep.Old == "" {
			continue
		}
		v = strings.ReplaceAll(v, rep.Old, rep.New)
		if isBlank(v) {
			delete(renamed, rep.Field)
			continue
		}
		renamed[rep.Field] = v
	}

	if len(renamed) == 0 {
		return nil, renameError(domain.NewValidationError(
			domain.ErrTypeUnmappedRecord,
			"no column of the record matches the alias configuration",
			"source", raw.Source,
		))
	}

	if err := fillState(renamed, cfg.Settings); err != nil {
		return nil, renameError(err)
	}

	out := group(renamed)
	out.Raw = raw
	out.Renamed = renamed
	out.DateFormats = slices.Clone(cfg.DateFormats)
	out.Settings = cfg.Settings
	return out, nil
}

func renameError(ve *domain.ValidationError) *domain.StageError {
	return &domain.StageError{
		Stage:  domain.FailureRename,
		Model:  ModelRename,
		Errors: []domain.ValidationError{*ve},
	}
}

func isBlank(v string) bool {
	switch strings.TrimSpace(v) {
	case "", `"`, nullAlias:
		return true
	}
	return false
}

// clearBlank drops sentinel keys and values.
func clearBlank(fields map[string]string) map[string]string {
	out := make(map[string]string, len(fields))
	for k, v := range fields {
		if isBlank(k) || isBlank(v) {
			continue
		}
		out[k] = strings.TrimSpace(v)
	}
	return out
}

func lookup(canonical string, aliases []string, present, folded map[string]string) (string, bool) {
	if len(aliases) == 0 {
		aliases = []string{canonical}
	}
	for _, alias := range aliases {
		if alias == nullAlias || alias == "" {
			alias = canonical
		}
		if v, ok := present[alias]; ok {
			return v, true
		}
	}
	for _, alias := range aliases {
		if alias == nullAlias || alias == "" {
			alias = canonical
		}
		if v, ok := folded[strings.ToLower(alias)]; ok {
			return v, true
		}
	}
	return "", false
}

// fillState adds the configured state to addresses that have none. Part
// keyed addresses get <type>_part_state, free text ones <type>_state.
func fillState(renamed map[string]string, s domain.Settings) *domain.ValidationError {
	for _, t := range domain.AddressTypes {
		prefix := string(t) + "_"
		partPrefix := prefix + "part_"

		var count, parts int
		for k := range renamed {
			if !strings.HasPrefix(k, prefix) {
				continue
			}
			count++
			if strings.HasPrefix(k, partPrefix) {
				parts++
			}
		}
		if count == 0 {
			continue
		}
		if _, ok := renamed[prefix+"state"]; ok {
			continue
		}
		if _, ok := renamed[partPrefix+"state"]; ok {
			continue
		}
		if s.StateAbbreviation == "" {
			return domain.NewValidationError(
				domain.ErrTypeMissingStateSetting,
				"address has no state and the configuration sets no state abbreviation",
				"address_type", string(t),
			)
		}
		state := strings.ToUpper(s.StateAbbreviation)
		if parts == count {
			renamed[partPrefix+"state"] = state
		} else {
			renamed[prefix+"state"] = state
		}
	}
	return nil
}

// group sorts canonical fields into the typed record.
func group(renamed map[string]string) *domain.CanonicalRecord {
	out := &domain.CanonicalRecord{
		Addresses: make(map[domain.AddressType][]domain.Field),
		Districts: make(map[domain.DistrictLevel][]domain.Field),
	}
	phones := make(map[string]*domain.PhoneSlot)
	vendors := make(map[string][]domain.Field)

	names := slices.Sorted(maps.Keys(renamed))
	for _, name := range names {
		v := renamed[name]
		switch {
		case strings.HasPrefix(name, "person_"):
			groupPerson(&out.Person, strings.TrimPrefix(name, "person_"), v)

		case strings.HasPrefix(name, "voter_"):
			groupRegistration(&out.Registration, strings.TrimPrefix(name, "voter_"), v)

		case strings.HasPrefix(name, string(domain.AddressResidence)+"_"):
			out.Addresses[domain.AddressResidence] = append(out.Addresses[domain.AddressResidence], domain.Field{Name: name, Value: v})

		case strings.HasPrefix(name, string(domain.AddressMail)+"_"):
			out.Addresses[domain.AddressMail] = append(out.Addresses[domain.AddressMail], domain.Field{Name: name, Value: v})

		case strings.HasPrefix(name, "contact_phone_"):
			groupPhone(phones, strings.TrimPrefix(name, "contact_phone_"), v)

		case strings.HasPrefix(name, "district_"):
			level, rest, ok := strings.Cut(strings.TrimPrefix(name, "district_"), "_")
			if !ok || rest == "" || !slices.Contains(domain.DistrictLevels, domain.DistrictLevel(level)) {
				setExtra(out, name, v)
				continue
			}
			l := domain.DistrictLevel(level)
			out.Districts[l] = append(out.Districts[l], domain.Field{Name: rest, Value: v})

		case strings.HasPrefix(name, "vendor_"):
			vendor, tag, ok := strings.Cut(strings.TrimPrefix(name, "vendor_"), "_")
			if !ok || vendor == "" || tag == "" {
				setExtra(out, name, v)
				continue
			}
			vendors[vendor] = append(vendors[vendor], domain.Field{Name: tag, Value: v})

		case strings.HasPrefix(name, "election_"):
			out.Elections = append(out.Elections, domain.Field{Name: name, Value: v})

		default:
			setExtra(out, name, v)
		}
	}

	for _, t := range slices.Sorted(maps.Keys(phones)) {
		out.Phones = append(out.Phones, *phones[t])
	}
	for _, name := range slices.Sorted(maps.Keys(vendors)) {
		out.Vendors = append(out.Vendors, domain.VendorGroup{Name: name, Tags: vendors[name]})
	}
	return out
}

func groupPerson(p *domain.PersonFields, name, v string) {
	switch name {
	case "name_prefix":
		p.Prefix = v
	case "name_first":
		p.First = v
	case "name_middle":
		p.Middle = v
	case "name_last":
		p.Last = v
	case "name_suffix":
		p.Suffix = v
	case "gender":
		p.Gender = v
	case "dob":
		p.DOB = v
	case "dob_yearmonth":
		p.DOBYearMonth = v
	case "dob_year":
		p.DOBYear = v
	case "dob_month":
		p.DOBMonth = v
	case "dob_day":
		p.DOBDay = v
	default:
		if p.Other == nil {
			p.Other = make(map[string]string)
		}
		p.Other[name] = v
	}
}

func groupRegistration(r *domain.RegistrationFields, name, v string) {
	switch {
	case name == "vuid" || name == "id":
		r.VUID = v
	case name == "registration_date" || name == "edr":
		r.RegistrationDate = v
	case name == "status" || strings.HasSuffix(name, "_status"):
		r.Status = v
	case name == "precinct_number":
		r.PrecinctNumber = v
	case name == "precinct_name":
		r.PrecinctName = v
	case name == "county":
		r.County = v
	case strings.HasPrefix(name, "profile_"):
		if r.PoliticalTags == nil {
			r.PoliticalTags = make(map[string]string)
		}
		r.PoliticalTags[strings.TrimPrefix(name, "profile_")] = v
	default:
		if r.Attributes == nil {
			r.Attributes = make(map[string]string)
		}
		r.Attributes[name] = v
	}
}

var phoneParts = []string{"_areacode", "_area_code", "_number", "_reliability"}

func groupPhone(slots map[string]*domain.PhoneSlot, name, v string) {
	part := ""
	for _, suffix := range phoneParts {
		if strings.HasSuffix(name, suffix) && len(name) > len(suffix) {
			part = suffix
			name = strings.TrimSuffix(name, suffix)
			break
		}
	}
	slot, ok := slots[name]
	if !ok {
		slot = &domain.PhoneSlot{Type: name}
		slots[name] = slot
	}
	switch part {
	case "_areacode", "_area_code":
		slot.AreaCode = v
	case "_number":
		slot.Subscriber = v
	case "_reliability":
		slot.Reliability = v
	default:
		slot.Number = v
	}
}

func setExtra(out *domain.CanonicalRecord, name, v string) {
	if out.Extra == nil {
		out.Extra = make(map[string]string)
	}
	out.Extra[name] = v
}
