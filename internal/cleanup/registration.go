package cleanup

import (
	"context"
	"maps"

	"github.com/custodia-labs/vepctl/internal/core/domain"
	"github.com/custodia-labs/vepctl/internal/core/ports/driven"
	"github.com/custodia-labs/vepctl/internal/normalisers/date"
)

// RegistrationStage builds the VoterRegistration from voter_* fields.
type RegistrationStage struct{}

var _ driven.CleanupStage = (*RegistrationStage)(nil)

// NewRegistrationStage creates a registration stage.
func NewRegistrationStage() *RegistrationStage {
	return &RegistrationStage{}
}

func (s *RegistrationStage) Name() string { return StageRegistration }

// Apply parses the registration date against the file's date formats. An
// unparseable registration date makes the record invalid.
func (s *RegistrationStage) Apply(_ context.Context, rec domain.Record, src *domain.CanonicalRecord, notes domain.Corrections) (domain.Record, error) {
	f := src.Registration
	if f.IsEmpty() {
		return rec, nil
	}

	reg := &domain.VoterRegistration{
		VUID:           squash(f.VUID),
		Status:         f.Status,
		County:         f.County,
		PrecinctNumber: f.PrecinctNumber,
		PrecinctName:   f.PrecinctName,
		PoliticalTags:  maps.Clone(f.PoliticalTags),
		Attributes:     maps.Clone(f.Attributes),
	}

	if f.RegistrationDate != "" {
		parser, err := date.NewParser(src.DateFormats)
		if err != nil {
			return rec, err
		}
		edr, err := parser.RegistrationDate(f.RegistrationDate)
		if err != nil {
			return rec, err
		}
		reg.EDR = &edr
		notes.Add(NoteKeyRegistration, "Parsed voter registration date")
	}

	reg.Rekey()
	rec.Registration = reg
	return rec, nil
}
