package cleanup

import (
	"time"

	"github.com/custodia-labs/vepctl/internal/core/domain"
	"github.com/custodia-labs/vepctl/internal/core/ports/driven"
	"github.com/custodia-labs/vepctl/internal/normalisers/phone"
)

// Stage names.
const (
	StagePerson       = "person"
	StageRegistration = "registration"
	StageAddress      = "address"
	StagePhone        = "phone"
	StageDOB          = "dob"
	StageVendor       = "vendor"
	StageDistrict     = "district"
	StageStructure    = "structure"
	StageElection     = "election"
	StageVEPKey       = "vepkey"
	StageProvenance   = "provenance"
)

// Correction note keys not derived from a field group.
const (
	NoteKeyDOB          = "dob"
	NoteKeyRegistration = "voter_registration"
	NoteKeyDistricts    = "districts"
	NoteKeyElections    = "elections"
)

// DefaultOrder is the stage order of the standard pipeline. Stages that
// read other entities run after the stages that build them.
var DefaultOrder = []string{
	StagePerson,
	StageRegistration,
	StageAddress,
	StagePhone,
	StageDOB,
	StageVendor,
	StageDistrict,
	StageStructure,
	StageElection,
	StageVEPKey,
	StageProvenance,
}

// RegisterDefaults registers all built-in stages with the registry.
func RegisterDefaults(r *Registry) {
	r.Register(StagePerson, func(map[string]any) (driven.CleanupStage, error) {
		return NewPersonStage(), nil
	})
	r.Register(StageRegistration, func(map[string]any) (driven.CleanupStage, error) {
		return NewRegistrationStage(), nil
	})
	r.Register(StageAddress, func(map[string]any) (driven.CleanupStage, error) {
		return NewAddressStage(), nil
	})
	r.Register(StagePhone, buildPhone)
	r.Register(StageDOB, buildDOB)
	r.Register(StageVendor, func(map[string]any) (driven.CleanupStage, error) {
		return NewVendorStage(), nil
	})
	r.Register(StageDistrict, buildDistrict)
	r.Register(StageStructure, func(map[string]any) (driven.CleanupStage, error) {
		return NewStructureStage(), nil
	})
	r.Register(StageElection, func(map[string]any) (driven.CleanupStage, error) {
		return NewElectionStage(), nil
	})
	r.Register(StageVEPKey, buildVEPKey)
	r.Register(StageProvenance, func(cfg map[string]any) (driven.CleanupStage, error) {
		return NewProvenanceStage(getClockFromConfig(cfg)), nil
	})
}

// NewDefaultPipeline builds the standard pipeline. cfg holds per-stage
// config keyed by stage name and may be nil.
func NewDefaultPipeline(cfg map[string]map[string]any) (*Pipeline, error) {
	r := NewRegistry()
	RegisterDefaults(r)
	return r.BuildPipeline(DefaultOrder, cfg)
}

// buildPhone supports:
//   - region (string): numbering plan region (default: US)
func buildPhone(cfg map[string]any) (driven.CleanupStage, error) {
	region := getStringFromConfig(cfg, "region")
	if region == "" {
		region = phone.DefaultRegion
	}
	return NewPhoneStage(region), nil
}

// buildDOB supports:
//   - strict (bool): unusable dates of birth are errors
//   - clock (func() time.Time)
func buildDOB(cfg map[string]any) (driven.CleanupStage, error) {
	return NewDOBStage(
		WithStrictDOB(getBoolFromConfig(cfg, "strict")),
		WithDOBClock(getClockFromConfig(cfg)),
	), nil
}

// buildDistrict supports:
//   - threshold (int): similarity threshold, overriding file settings
//   - clock (func() time.Time)
func buildDistrict(cfg map[string]any) (driven.CleanupStage, error) {
	return NewDistrictStage(
		WithDistrictThreshold(getIntFromConfig(cfg, "threshold")),
		WithDistrictClock(getClockFromConfig(cfg)),
	), nil
}

// buildVEPKey supports:
//   - prefer (string): "residence" (default) or "mail"
//   - strict (bool): a date of birth is required
func buildVEPKey(cfg map[string]any) (driven.CleanupStage, error) {
	prefer := domain.AddressType(getStringFromConfig(cfg, "prefer"))
	if prefer == "" {
		prefer = domain.AddressResidence
	}
	return NewVEPKeyStage(prefer, getBoolFromConfig(cfg, "strict")), nil
}

// getIntFromConfig safely extracts an int from generic config map.
// Handles int, int64, and float64 types that may come from TOML/JSON parsing.
func getIntFromConfig(cfg map[string]any, key string) int {
	switch v := cfg[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}

func getBoolFromConfig(cfg map[string]any, key string) bool {
	v, _ := cfg[key].(bool)
	return v
}

func getStringFromConfig(cfg map[string]any, key string) string {
	v, _ := cfg[key].(string)
	return v
}

func getClockFromConfig(cfg map[string]any) func() time.Time {
	v, _ := cfg["clock"].(func() time.Time)
	return v
}
