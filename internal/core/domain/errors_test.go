package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestErrors_Existence tests that all error variables exist and are not nil
func TestErrors_Existence(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrNotFound", ErrNotFound},
		{"ErrAlreadyExists", ErrAlreadyExists},
		{"ErrInvalidInput", ErrInvalidInput},
		{"ErrUnsupportedType", ErrUnsupportedType},
		{"ErrNotStandardized", ErrNotStandardized},
		{"ErrConflict", ErrConflict},
		{"ErrLockTimeout", ErrLockTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.err)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

func TestErrNotFound(t *testing.T) {
	assert.Equal(t, "not found", ErrNotFound.Error())
	assert.True(t, errors.Is(ErrNotFound, ErrNotFound))
	assert.False(t, errors.Is(ErrNotFound, ErrAlreadyExists))
}

func TestNewValidationError_Context(t *testing.T) {
	ve := NewValidationError(ErrTypeInvalidRegistrationDate, "bad date", "voter_registration_date", "13/45/2020")

	assert.Equal(t, "invalid_registration_date: bad date", ve.Error())
	assert.Equal(t, "13/45/2020", ve.Context["voter_registration_date"])
}

func TestNewValidationError_NoContext(t *testing.T) {
	ve := NewValidationError(ErrTypeMissingName, "no name")
	assert.Nil(t, ve.Context)
}

func TestAsStageError_WrapsValidationError(t *testing.T) {
	ve := NewValidationError(ErrTypeMissingLastName, "missing last")
	err := fmt.Errorf("vepkey: %w", ve)

	se := AsStageError(err, FailureCleanup, "vepkey")

	require.Len(t, se.Errors, 1)
	assert.Equal(t, FailureCleanup, se.Stage)
	assert.Equal(t, "vepkey", se.Model)
	assert.Equal(t, ErrTypeMissingLastName, se.Errors[0].Type)
	assert.Equal(t, "cleanup/vepkey: missing_last_name", se.Error())
}

func TestAsStageError_PassesThroughStageError(t *testing.T) {
	orig := &StageError{Stage: FailureRename, Model: "renamer", Errors: []ValidationError{{Type: "x"}}}
	se := AsStageError(fmt.Errorf("wrapped: %w", orig), FailureCleanup, "other")
	assert.Same(t, orig, se)
}

func TestAsStageError_MapsSentinels(t *testing.T) {
	se := AsStageError(fmt.Errorf("addr: %w", ErrNotStandardized), FailureCleanup, "address")
	assert.Equal(t, ErrTypeAddressNotStandardized, se.Errors[0].Type)

	se = AsStageError(fmt.Errorf("key: %w", ErrUnsupportedType), FailureCleanup, "keygen")
	assert.Equal(t, ErrTypeUnsupportedKeyType, se.Errors[0].Type)

	se = AsStageError(errors.New("boom"), FailureFinal, "final")
	assert.Equal(t, ErrTypeInternal, se.Errors[0].Type)
}

func TestStageError_Types(t *testing.T) {
	se := &StageError{Errors: []ValidationError{{Type: "b"}, {Type: "a"}, {Type: "b"}}}
	assert.Equal(t, []string{"a", "b"}, se.Types())
}
