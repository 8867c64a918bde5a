package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStoreDriver_IsValid(t *testing.T) {
	for _, d := range AllStoreDrivers() {
		assert.True(t, d.IsValid(), d.String())
	}
	assert.False(t, StoreDriver("mysql").IsValid())
}

func TestDefaultAppSettings(t *testing.T) {
	s := DefaultAppSettings()

	assert.GreaterOrEqual(t, s.Processing.Workers, 1)
	assert.Equal(t, AddressResidence, s.Processing.PreferAddress)
	assert.Equal(t, StoreSQLite, s.Store.Driver)
	assert.Equal(t, 3, s.Merge.MaxRetries)
	assert.NoError(t, s.Validate())
}

func TestAppSettings_Validate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*AppSettings)
	}{
		{"zero workers", func(s *AppSettings) { s.Processing.Workers = 0 }},
		{"bad address type", func(s *AppSettings) { s.Processing.PreferAddress = "work" }},
		{"threshold too high", func(s *AppSettings) { s.Processing.DistrictThreshold = 101 }},
		{"bad driver", func(s *AppSettings) { s.Store.Driver = "mysql" }},
		{"postgres without dsn", func(s *AppSettings) { s.Store.Driver = StorePostgres }},
		{"negative retries", func(s *AppSettings) { s.Merge.MaxRetries = -1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultAppSettings()
			tt.mutate(&s)
			err := s.Validate()
			assert.True(t, errors.Is(err, ErrInvalidInput), "got %v", err)
		})
	}
}
