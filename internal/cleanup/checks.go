package cleanup

import (
	"context"
	"maps"
	"time"

	"github.com/custodia-labs/vepctl/internal/core/domain"
	"github.com/custodia-labs/vepctl/internal/core/ports/driven"
	"github.com/custodia-labs/vepctl/internal/normalisers/vepkey"
)

// StructureStage checks that every field group present after renaming
// produced its entity.
type StructureStage struct{}

var _ driven.CleanupStage = (*StructureStage)(nil)

// NewStructureStage creates a structure check stage.
func NewStructureStage() *StructureStage {
	return &StructureStage{}
}

func (s *StructureStage) Name() string { return StageStructure }

// Apply reports every failed check at once.
func (s *StructureStage) Apply(_ context.Context, rec domain.Record, src *domain.CanonicalRecord, _ domain.Corrections) (domain.Record, error) {
	var errs []domain.ValidationError
	fail := func(errType, msg string) {
		errs = append(errs, *domain.NewValidationError(errType, msg, "validator_model", StageStructure))
	}

	if src.Person.IsEmpty() {
		fail(domain.ErrTypeMissingPersonDetails, "missing person details, unable to generate a strong key to match with")
	}
	if rec.Name == nil && src.Person.HasName() {
		fail(domain.ErrTypeMissingNameObject, "there is name data in the renamed record, but no name was created")
	}
	if len(rec.Phones) == 0 && phoneFieldCount(src.Phones) > 1 {
		fail(domain.ErrTypeMissingPhoneObject, "there is phone data in the renamed record, but no phone was created")
	}

	switch {
	case len(rec.Addresses) == 0:
		if src.Settings.RequireAddress {
			fail(domain.ErrTypeMissingAddress, "missing address information, unable to generate VEP keys")
		}
	case src.Settings.IsVoterFile() && !hasResidence(rec.Addresses):
		fail(domain.ErrTypeMissingResidentialAddress, "missing residential address information for voter record")
	}

	if rec.Registration == nil && !src.Registration.IsEmpty() {
		fail(domain.ErrTypeMissingVoterRegistration, "there is voter registration data in the renamed record, but no registration was created")
	}
	if rec.Districts.Len() == 0 && len(src.Districts) > 0 {
		fail(domain.ErrTypeMissingDistricts, "there is district data in the renamed record, but no district was created")
	}
	if len(rec.VendorNames) == 0 && len(src.Vendors) > 0 {
		fail(domain.ErrTypeMissingVendors, "there is vendor data in the renamed record, but no vendor was created")
	}

	if len(errs) > 0 {
		return rec, &domain.StageError{Stage: domain.FailureCleanup, Model: StageStructure, Errors: errs}
	}
	return rec, nil
}

func phoneFieldCount(slots []domain.PhoneSlot) int {
	n := 0
	for _, s := range slots {
		for _, v := range []string{s.Number, s.AreaCode, s.Subscriber, s.Reliability} {
			if v != "" {
				n++
			}
		}
	}
	return n
}

func hasResidence(addresses []domain.Address) bool {
	for _, a := range addresses {
		if a.IsResidence {
			return true
		}
	}
	return false
}

// VEPKeyStage derives the record's VEP matching keys.
type VEPKeyStage struct {
	strict bool
	prefer domain.AddressType
}

var _ driven.CleanupStage = (*VEPKeyStage)(nil)

// NewVEPKeyStage creates a key stage. prefer selects the address type the
// ZIP code is taken from; strict requires a date of birth for every file.
func NewVEPKeyStage(prefer domain.AddressType, strict bool) *VEPKeyStage {
	return &VEPKeyStage{strict: strict, prefer: prefer}
}

func (s *VEPKeyStage) Name() string { return StageVEPKey }

func (s *VEPKeyStage) Apply(_ context.Context, rec domain.Record, src *domain.CanonicalRecord, _ domain.Corrections) (domain.Record, error) {
	b := vepkey.NewBuilder(
		vepkey.WithStrictDOB(s.strict || src.Settings.StrictDOB),
		vepkey.WithPreferredAddress(s.prefer),
	)
	m, err := b.Build(vepkey.Input{
		Name:         rec.Name,
		Registration: rec.Registration,
		Addresses:    rec.Addresses,
	})
	if err != nil {
		return rec, err
	}
	rec.VEP = m
	return rec, nil
}

// FileOriginField is the raw column naming the file a row came from.
const FileOriginField = "file_origin"

// ProvenanceStage records where the record came from and what it looked
// like before cleanup.
type ProvenanceStage struct {
	now func() time.Time
}

var _ driven.CleanupStage = (*ProvenanceStage)(nil)

// NewProvenanceStage creates a provenance stage. A nil clock uses time.Now.
func NewProvenanceStage(now func() time.Time) *ProvenanceStage {
	if now == nil {
		now = time.Now
	}
	return &ProvenanceStage{now: now}
}

func (s *ProvenanceStage) Name() string { return StageProvenance }

// Apply takes the data source from the file_origin column, falling back to
// the file the row was read from.
func (s *ProvenanceStage) Apply(_ context.Context, rec domain.Record, src *domain.CanonicalRecord, _ domain.Corrections) (domain.Record, error) {
	file := src.Raw.Fields[FileOriginField]
	if file == "" {
		file = src.Raw.Source
	}
	if file != "" {
		processed := s.now().UTC().Truncate(time.Second)
		rec.DataSources = []domain.DataSource{{File: file, ProcessedDate: &processed}}
	}

	rec.Input = domain.InputData{
		Original:    maps.Clone(src.Raw.Fields),
		Renamed:     maps.Clone(src.Renamed),
		Corrections: rec.Input.Corrections,
		Settings:    src.Settings,
		DateFormats: append([]string(nil), src.DateFormats...),
	}
	return rec, nil
}
