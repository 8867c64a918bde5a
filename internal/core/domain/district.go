package domain

import (
	"sort"
	"strings"

	"github.com/custodia-labs/vepctl/internal/core/keygen"
)

// DistrictLevel is the level of government a district belongs to.
type DistrictLevel string

const (
	LevelCity    DistrictLevel = "city"
	LevelCounty  DistrictLevel = "county"
	LevelState   DistrictLevel = "state"
	LevelFederal DistrictLevel = "federal"
	LevelCourt   DistrictLevel = "court"
)

// DistrictLevels lists the levels in resolution order.
var DistrictLevels = []DistrictLevel{LevelCity, LevelCounty, LevelState, LevelFederal, LevelCourt}

// District is a membership in one electoral or judicial district.
type District struct {
	ID         string            `json:"id"`
	StateAbbv  string            `json:"state_abbv,omitempty"`
	City       string            `json:"city,omitempty"`
	County     string            `json:"county,omitempty"`
	Type       DistrictLevel     `json:"type"`
	Name       string            `json:"name,omitempty"`
	Number     string            `json:"number,omitempty"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

var _ Entity = (*District)(nil)

func (d *District) Kind() EntityKind { return KindDistrict }
func (d *District) Key() string      { return d.ID }

// Rekey derives the identity key. A city scope takes precedence over a
// county scope; with neither, only state, type, name and number are used.
func (d *District) Rekey() string {
	switch {
	case d.City != "":
		d.ID = tupleKey(d.StateAbbv, d.City, string(d.Type), d.Name, d.Number)
	case d.County != "":
		d.ID = tupleKey(d.StateAbbv, d.County, string(d.Type), d.Name, d.Number)
	default:
		d.ID = tupleKey(d.StateAbbv, string(d.Type), d.Name, d.Number)
	}
	return d.ID
}

// Fill copies missing scope, name and number fields and missing attributes.
func (d *District) Fill(other Entity) bool {
	o, ok := other.(*District)
	if !ok {
		return false
	}
	changed := fillString(&d.City, o.City)
	changed = fillString(&d.County, o.County) || changed
	changed = fillString(&d.Name, o.Name) || changed
	changed = fillString(&d.Number, o.Number) || changed
	return fillMap(&d.Attributes, o.Attributes) || changed
}

// Clone returns a deep copy.
func (d District) Clone() District {
	d.Attributes = cloneMap(d.Attributes)
	return d
}

// DistrictSet is the deduplicated collection of a record's districts.
// Its key depends only on the member keys, so any two records with the
// same memberships share one set.
type DistrictSet struct {
	ID        string     `json:"id"`
	Districts []District `json:"districts"`
}

var _ Entity = (*DistrictSet)(nil)

// NewDistrictSet builds a keyed set from districts.
func NewDistrictSet(districts ...District) *DistrictSet {
	s := &DistrictSet{}
	for _, d := range districts {
		s.AddOrUpdate(d)
	}
	s.Rekey()
	return s
}

func (s *DistrictSet) Kind() EntityKind { return KindDistrictSet }
func (s *DistrictSet) Key() string      { return s.ID }

// Rekey derives the key from the sorted member keys.
func (s *DistrictSet) Rekey() string {
	ids := make([]string, len(s.Districts))
	for i, d := range s.Districts {
		ids[i] = d.ID
	}
	sort.Strings(ids)
	s.ID = keygen.MustStaticKey(strings.Join(ids, "_"))
	return s.ID
}

// AddOrUpdate adds d, or fills the existing member with the same key.
// It reports whether the set changed. The key is recomputed afterwards.
func (s *DistrictSet) AddOrUpdate(d District) bool {
	defer s.Rekey()
	for i := range s.Districts {
		if s.Districts[i].ID == d.ID {
			return s.Districts[i].Fill(&d)
		}
	}
	s.Districts = append(s.Districts, d.Clone())
	return true
}

// Fill merges the members of other member-wise.
func (s *DistrictSet) Fill(other Entity) bool {
	o, ok := other.(*DistrictSet)
	if !ok {
		return false
	}
	changed := false
	for _, d := range o.Districts {
		changed = s.AddOrUpdate(d) || changed
	}
	return changed
}

// Len returns the number of members.
func (s *DistrictSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Districts)
}

// Clone returns a deep copy.
func (s *DistrictSet) Clone() *DistrictSet {
	if s == nil {
		return nil
	}
	c := &DistrictSet{ID: s.ID, Districts: make([]District, len(s.Districts))}
	for i, d := range s.Districts {
		c.Districts[i] = d.Clone()
	}
	return c
}
