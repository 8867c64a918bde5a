package services

import (
	"github.com/custodia-labs/vepctl/internal/core/domain"
)

// ModelFinal names the final check in error details.
const ModelFinal = "final"

// FinalCheck re-validates a cleaned record before it is released for
// merging: the person must be present, every entity key must match its
// fields and a mail-zip VEP match must not coexist with a residence zip.
func FinalCheck(rec domain.Record) error {
	var errs []domain.ValidationError
	add := func(errType, msg string, kv ...string) {
		errs = append(errs, *domain.NewValidationError(errType, msg, kv...))
	}

	if rec.ID == "" {
		add(domain.ErrTypeInternal, "record has no fingerprint")
	}

	if rec.Name == nil {
		add(domain.ErrTypeMissingNameObject, "record has no person name")
	} else if c := rec.Name.Clone(); c.Rekey() != rec.Name.ID {
		add(domain.ErrTypeInternal, "person name key is stale", "key", rec.Name.ID)
	}

	if rec.Registration != nil {
		if c := rec.Registration.Clone(); c.Rekey() != rec.Registration.ID {
			add(domain.ErrTypeInternal, "voter registration key is stale", "key", rec.Registration.ID)
		}
	}

	for _, a := range rec.Addresses {
		c := a.Clone()
		if err := c.Rekey(); err != nil {
			add(domain.ErrTypeAddressNotStandardized, err.Error(), "address_type", string(a.Type))
			continue
		}
		if c.ID != a.ID {
			add(domain.ErrTypeInternal, "address key is stale", "key", a.ID)
		}
	}

	if rec.Districts != nil {
		if c := rec.Districts.Clone(); c.Rekey() != rec.Districts.ID {
			add(domain.ErrTypeInternal, "district set key is stale", "key", rec.Districts.ID)
		}
	}

	if rec.VEP != nil {
		if !rec.VEP.HasKeys() {
			add(domain.ErrTypeInternal, "vep match carries no keys")
		}
		if res := rec.Address(domain.AddressResidence); rec.VEP.UsesMailZip && res != nil && res.Zip5 != "" {
			add(domain.ErrTypeUsesMailZipWithResidenceZip,
				"vep keys use the mailing zip while a residential zip is present",
				"residence_zip5", res.Zip5)
		}
	}

	if len(errs) == 0 {
		return nil
	}
	return &domain.StageError{Stage: domain.FailureFinal, Model: ModelFinal, Errors: errs}
}
