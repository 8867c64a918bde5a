package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/custodia-labs/vepctl/internal/core/keygen"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates an entity already exists.
	// Stores return it when a concurrent writer inserted the same identity key.
	ErrAlreadyExists = errors.New("already exists")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUnsupportedType indicates a value that cannot be rendered into a key.
	ErrUnsupportedType = keygen.ErrUnsupportedType

	// ErrNotStandardized indicates an address without a standardized form.
	ErrNotStandardized = errors.New("address not standardized")

	// ErrConflict indicates a transient commit conflict that may succeed on retry.
	ErrConflict = errors.New("commit conflict")

	// ErrLockTimeout indicates a key lock could not be acquired in time.
	ErrLockTimeout = errors.New("lock timeout")
)

// Error types reported on invalid records. The names are stable and are
// used as keys in error-type counts.
const (
	ErrTypeMissingName                 = "missing_name"
	ErrTypeMissingFirstName            = "missing_first_name"
	ErrTypeMissingLastName             = "missing_last_name"
	ErrTypeMissingFirstAndLastName     = "missing_first_and_last_name"
	ErrTypeMissingDOB                  = "missing_dob"
	ErrTypeInvalidDOB                  = "invalid_dob"
	ErrTypeMissingDateFormat           = "missing_date_format"
	ErrTypeInvalidRegistrationDate     = "invalid_registration_date"
	ErrTypeUsesMailZipWithResidenceZip = "uses_mailzip_with_residential_zip_present"
	ErrTypeMissingPersonDetails        = "missing_person_details"
	ErrTypeMissingNameObject           = "missing_name_object"
	ErrTypeMissingPhoneObject          = "missing_phone_object"
	ErrTypeMissingAddress              = "missing_address"
	ErrTypeMissingResidentialAddress   = "missing_residential_address"
	ErrTypeMissingVoterRegistration    = "missing_voter_registration"
	ErrTypeMissingDistricts            = "missing_districts"
	ErrTypeMissingVendors              = "missing_vendors"
	ErrTypeUnsupportedKeyType          = "unsupported_type_for_key_generation"
	ErrTypeAddressNotStandardized      = "address_not_standardized"
	ErrTypeMissingStateSetting         = "missing_state_setting"
	ErrTypeUnmappedRecord              = "unmapped_record"
	ErrTypeStoreConflict               = "store_conflict"
	ErrTypeInternal                    = "internal_error"
)

// PointOfFailure names the pipeline stage where a record became invalid.
type PointOfFailure string

const (
	// FailureRename marks aliasing and field assignment failures.
	FailureRename PointOfFailure = "rename"
	// FailureCleanup marks hard errors raised while normalising fields.
	FailureCleanup PointOfFailure = "cleanup"
	// FailureFinal marks failures of the optional final re-validation.
	FailureFinal PointOfFailure = "final"
	// FailureMerge marks records diverted by the merge layer.
	FailureMerge PointOfFailure = "merge"
)

// ValidationError is a single structured validation failure.
type ValidationError struct {
	// Type is the stable error identifier, e.g. "missing_last_name".
	Type string `json:"type"`

	// Message is a human-readable description.
	Message string `json:"message"`

	// Context carries the values involved in the failure.
	Context map[string]string `json:"context,omitempty"`
}

// NewValidationError creates a ValidationError with optional context pairs.
// Context is given as alternating key, value strings.
func NewValidationError(errType, message string, kv ...string) *ValidationError {
	e := &ValidationError{Type: errType, Message: message}
	if len(kv) > 1 {
		e.Context = make(map[string]string, len(kv)/2)
		for i := 0; i+1 < len(kv); i += 2 {
			e.Context[kv[i]] = kv[i+1]
		}
	}
	return e
}

func (e *ValidationError) Error() string {
	return e.Type + ": " + e.Message
}

// StageError wraps the validation errors raised by one pipeline stage.
type StageError struct {
	// Stage is where the record failed.
	Stage PointOfFailure

	// Model names the component that raised the errors (e.g. "person").
	Model string

	// Errors lists the underlying validation errors.
	Errors []ValidationError
}

func (e *StageError) Error() string {
	types := make([]string, 0, len(e.Errors))
	for _, ve := range e.Errors {
		types = append(types, ve.Type)
	}
	return fmt.Sprintf("%s/%s: %s", e.Stage, e.Model, strings.Join(types, ", "))
}

// Types returns the distinct error types, sorted.
func (e *StageError) Types() []string {
	seen := make(map[string]struct{}, len(e.Errors))
	for _, ve := range e.Errors {
		seen[ve.Type] = struct{}{}
	}
	types := make([]string, 0, len(seen))
	for t := range seen {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

// AsStageError converts err into a StageError tagged with stage and model.
// ValidationErrors are wrapped, StageErrors are returned as is, and any
// other error becomes an internal error entry.
func AsStageError(err error, stage PointOfFailure, model string) *StageError {
	var se *StageError
	if errors.As(err, &se) {
		return se
	}

	var ve *ValidationError
	if errors.As(err, &ve) {
		return &StageError{Stage: stage, Model: model, Errors: []ValidationError{*ve}}
	}

	errType := ErrTypeInternal
	switch {
	case errors.Is(err, ErrUnsupportedType):
		errType = ErrTypeUnsupportedKeyType
	case errors.Is(err, ErrNotStandardized):
		errType = ErrTypeAddressNotStandardized
	}
	return &StageError{
		Stage:  stage,
		Model:  model,
		Errors: []ValidationError{{Type: errType, Message: err.Error()}},
	}
}
