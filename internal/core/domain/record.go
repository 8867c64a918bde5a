package domain

import (
	"maps"
	"regexp"
	"slices"
	"strings"
	"time"
)

// DataSource is a file records were ingested from.
type DataSource struct {
	File          string     `json:"file"`
	ProcessedDate *time.Time `json:"processed_date,omitempty"`
}

var _ Entity = (*DataSource)(nil)

func (d *DataSource) Kind() EntityKind { return KindDataSource }
func (d *DataSource) Key() string      { return d.File }

// Fill copies a missing processed date.
func (d *DataSource) Fill(other Entity) bool {
	o, ok := other.(*DataSource)
	if !ok || d.ProcessedDate != nil || o.ProcessedDate == nil {
		return false
	}
	t := *o.ProcessedDate
	d.ProcessedDate = &t
	return true
}

// Corrections collects correction notes keyed by the field group they
// apply to, e.g. "dob" or "phone_mobile".
type Corrections map[string][]string

// Add appends notes under key.
func (c Corrections) Add(key string, notes ...string) {
	if len(notes) == 0 {
		return
	}
	c[key] = append(c[key], notes...)
}

// Clone returns a deep copy.
func (c Corrections) Clone() Corrections {
	out := make(Corrections, len(c))
	for k, v := range c {
		out[k] = slices.Clone(v)
	}
	return out
}

// InputData is the provenance snapshot of a record.
type InputData struct {
	Original    map[string]string `json:"original_data"`
	Renamed     map[string]string `json:"renamed_data"`
	Corrections Corrections       `json:"corrections,omitempty"`
	Settings    Settings          `json:"settings"`
	DateFormats []string          `json:"date_format"`
}

// Record is the aggregate produced by the cleanup stage.
type Record struct {
	// ID is the content fingerprint of the raw row.
	ID string `json:"id"`

	Name         *PersonName        `json:"name,omitempty"`
	Registration *VoterRegistration `json:"voter_registration,omitempty"`
	Addresses    []Address          `json:"address_list,omitempty"`
	Phones       []PhoneNumber      `json:"phone,omitempty"`
	Districts    *DistrictSet       `json:"district_set,omitempty"`
	VendorNames  []VendorName       `json:"vendor_names,omitempty"`
	VendorTags   []VendorTags       `json:"vendor_tags,omitempty"`
	VEP          *VEPMatch          `json:"vep_keys,omitempty"`
	Elections    []Election         `json:"elections,omitempty"`
	VoteMethods  []VoteMethod       `json:"vote_methods,omitempty"`
	Votes        []Vote             `json:"vote_history,omitempty"`
	DataSources  []DataSource       `json:"data_source,omitempty"`
	Input        InputData          `json:"input_data"`
	Turnout      *TurnoutScore      `json:"turnout,omitempty"`
}

// Address returns the first address of type t, or nil.
func (r *Record) Address(t AddressType) *Address {
	for i := range r.Addresses {
		if r.Addresses[i].Type == t {
			return &r.Addresses[i]
		}
	}
	return nil
}

// Clone returns a deep copy, so stages can modify their input freely.
func (r Record) Clone() Record {
	c := r
	c.Name = r.Name.Clone()
	c.Registration = r.Registration.Clone()
	c.Districts = r.Districts.Clone()
	if r.VEP != nil {
		v := *r.VEP
		c.VEP = &v
	}
	if r.Turnout != nil {
		t := *r.Turnout
		t.ByType = maps.Clone(r.Turnout.ByType)
		c.Turnout = &t
	}
	c.Addresses = make([]Address, len(r.Addresses))
	for i, a := range r.Addresses {
		c.Addresses[i] = a.Clone()
	}
	c.VendorTags = make([]VendorTags, len(r.VendorTags))
	for i, v := range r.VendorTags {
		v.Tags = cloneMap(v.Tags)
		c.VendorTags[i] = v
	}
	c.Phones = slices.Clone(r.Phones)
	c.VendorNames = slices.Clone(r.VendorNames)
	c.Elections = slices.Clone(r.Elections)
	c.VoteMethods = slices.Clone(r.VoteMethods)
	c.Votes = slices.Clone(r.Votes)
	c.DataSources = slices.Clone(r.DataSources)
	c.Input.Original = cloneMap(r.Input.Original)
	c.Input.Renamed = cloneMap(r.Input.Renamed)
	c.Input.Corrections = r.Input.Corrections.Clone()
	c.Input.DateFormats = slices.Clone(r.Input.DateFormats)
	return c
}

var nonWord = regexp.MustCompile(`[^a-z0-9]+`)

// snake lower-cases s and joins its words with underscores.
func snake(s string) string {
	return strings.Trim(nonWord.ReplaceAllString(strings.ToLower(s), "_"), "_")
}

// Flatten returns a flat column/value view of the record for export.
func (r *Record) Flatten() map[string]string {
	out := make(map[string]string)
	if r.Name != nil {
		out["first_name"] = r.Name.First
		out["last_name"] = r.Name.Last
		if r.Name.DOB != nil {
			out["dob"] = r.Name.DOB.Format(time.DateOnly)
		}
	}
	if r.Registration != nil {
		out["voter_id"] = r.Registration.VUID
	}

	for _, a := range r.Addresses {
		t := string(a.Type)
		out[snake(t+"_std")] = a.Standardized
		out[snake(t+"_city")] = a.City
		out[snake(t+"_state")] = a.State
		out[snake(t+"_zip")] = a.Zip5
	}

	if r.Districts != nil {
		for _, d := range r.Districts.Districts {
			out[snake(string(d.Type)+"_"+d.Name)] = d.Number
		}
	}

	for _, p := range r.Phones {
		out[snake(p.Type+"_phone")] = p.Phone
	}

	for _, v := range r.Votes {
		out[snake(v.Election+"_method")] = v.Method
		if v.Party != "" {
			out[snake(v.Election+"_party")] = v.Party
		}
	}

	if r.VEP != nil {
		out["vep_best_key"] = r.VEP.BestKey
		out["vep_full_key_hash"] = r.VEP.FullKeyHash
	}

	return out
}
