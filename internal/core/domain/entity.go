package domain

import (
	"encoding/json"
	"fmt"
	"maps"
	"strings"

	"github.com/custodia-labs/vepctl/internal/core/keygen"
)

// EntityKind names a pooled entity type.
type EntityKind string

const (
	KindPerson       EntityKind = "person_name"
	KindAddress      EntityKind = "address"
	KindPhone        EntityKind = "phone_number"
	KindRegistration EntityKind = "voter_registration"
	KindDistrict     EntityKind = "district"
	KindDistrictSet  EntityKind = "district_set"
	KindVendorName   EntityKind = "vendor_name"
	KindVendorTags   EntityKind = "vendor_tags"
	KindVEPMatch     EntityKind = "vep_match"
	KindElection     EntityKind = "election"
	KindVoteMethod   EntityKind = "vote_method"
	KindDataSource   EntityKind = "data_source"
)

// EntityKinds lists every pooled entity kind in merge order.
var EntityKinds = []EntityKind{
	KindPerson, KindRegistration, KindVEPMatch, KindAddress, KindPhone,
	KindDataSource, KindElection, KindVoteMethod, KindDistrict,
	KindDistrictSet, KindVendorName, KindVendorTags,
}

// Entity is a sub-entity identified by a deterministic key.
type Entity interface {
	Kind() EntityKind
	Key() string

	// Fill copies fields from other into empty fields of the receiver.
	// It never overwrites populated data and reports whether anything changed.
	Fill(other Entity) bool
}

// NewEntity returns an empty entity of the given kind for decoding.
func NewEntity(kind EntityKind) (Entity, error) {
	switch kind {
	case KindPerson:
		return &PersonName{}, nil
	case KindAddress:
		return &Address{}, nil
	case KindPhone:
		return &PhoneNumber{}, nil
	case KindRegistration:
		return &VoterRegistration{}, nil
	case KindDistrict:
		return &District{}, nil
	case KindDistrictSet:
		return &DistrictSet{}, nil
	case KindVendorName:
		return &VendorName{}, nil
	case KindVendorTags:
		return &VendorTags{}, nil
	case KindVEPMatch:
		return &VEPMatch{}, nil
	case KindElection:
		return &Election{}, nil
	case KindVoteMethod:
		return &VoteMethod{}, nil
	case KindDataSource:
		return &DataSource{}, nil
	default:
		return nil, fmt.Errorf("%w: entity kind %q", ErrUnsupportedType, kind)
	}
}

// EncodeEntity serialises an entity for storage.
func EncodeEntity(e Entity) ([]byte, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("encoding %s: %w", e.Kind(), err)
	}
	return data, nil
}

// DecodeEntity deserialises an entity of the given kind.
func DecodeEntity(kind EntityKind, data []byte) (Entity, error) {
	e, err := NewEntity(kind)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(data, e); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", kind, err)
	}
	return e, nil
}

// EntityRef identifies a pooled entity.
type EntityRef struct {
	Kind EntityKind `json:"kind"`
	Key  string     `json:"key"`
}

// tupleKey is the identity key of an ordered tuple of optional strings.
// Empty parts render as "None".
func tupleKey(parts ...string) string {
	tuple := make(keygen.Tuple, len(parts))
	for i, p := range parts {
		if p == "" {
			tuple[i] = nil
			continue
		}
		tuple[i] = p
	}
	rendered, _ := keygen.Render(tuple)
	return keygen.MustStaticKey(rendered)
}

// joinedKey is the identity key of the non-empty parts joined by "_".
func joinedKey(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return keygen.MustStaticKey(strings.Join(kept, "_"))
}

func fillString(dst *string, src string) bool {
	if *dst == "" && src != "" {
		*dst = src
		return true
	}
	return false
}

// fillMap adds keys of src missing from *dst.
func fillMap(dst *map[string]string, src map[string]string) bool {
	changed := false
	for k, v := range src {
		if _, ok := (*dst)[k]; ok {
			continue
		}
		if *dst == nil {
			*dst = make(map[string]string, len(src))
		}
		(*dst)[k] = v
		changed = true
	}
	return changed
}

func cloneMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	return maps.Clone(m)
}
