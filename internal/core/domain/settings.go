package domain

import (
	"fmt"
	"runtime"
)

// StoreDriver selects the entity store implementation.
type StoreDriver string

// Available store drivers.
const (
	// StoreMemory keeps the entity pool in process memory.
	StoreMemory StoreDriver = "memory"

	// StoreSQLite is an embedded SQLite database file.
	StoreSQLite StoreDriver = "sqlite"

	// StorePostgres is a PostgreSQL server.
	StorePostgres StoreDriver = "postgres"
)

// IsValid returns true if the store driver is recognised.
func (d StoreDriver) IsValid() bool {
	switch d {
	case StoreMemory, StoreSQLite, StorePostgres:
		return true
	default:
		return false
	}
}

// String returns the string representation.
func (d StoreDriver) String() string {
	return string(d)
}

// AllStoreDrivers returns every store driver.
func AllStoreDrivers() []StoreDriver {
	return []StoreDriver{StoreMemory, StoreSQLite, StorePostgres}
}

// ProcessingSettings control the validation pipeline.
type ProcessingSettings struct {
	// Workers is the number of records transformed concurrently.
	Workers int

	// StrictDOB makes a missing or unusable date of birth an error for
	// every file.
	StrictDOB bool

	// FinalValidation re-checks merged-ready records before output.
	FinalValidation bool

	// PreferAddress is the address type VEP keys take their ZIP from.
	PreferAddress AddressType

	// DistrictThreshold overrides every file's district similarity
	// threshold when non-zero.
	DistrictThreshold int
}

// StoreSettings select and locate the entity store.
type StoreSettings struct {
	Driver StoreDriver

	// DSN is the database file for sqlite or the connection string for
	// postgres. Empty selects the default database file.
	DSN string
}

// MergeSettings control entity resolution.
type MergeSettings struct {
	// MaxRetries bounds retries of a record transaction that hit a
	// transient store conflict.
	MaxRetries int
}

// LockSettings configure cross-process key locks.
type LockSettings struct {
	// RedisAddr enables Redis key locks when set, e.g. "localhost:6379".
	RedisAddr string

	// Prefix namespaces lock keys.
	Prefix string
}

// AppSettings holds all application settings.
type AppSettings struct {
	Processing ProcessingSettings
	Store      StoreSettings
	Merge      MergeSettings
	Lock       LockSettings

	// FieldsDir holds the jurisdiction alias files.
	FieldsDir string
}

// DefaultWorkers leaves one CPU for reading and merging.
func DefaultWorkers() int {
	return max(1, runtime.NumCPU()-1)
}

// DefaultAppSettings returns settings with sensible defaults.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Processing: ProcessingSettings{
			Workers:       DefaultWorkers(),
			PreferAddress: AddressResidence,
		},
		Store: StoreSettings{
			Driver: StoreSQLite,
		},
		Merge: MergeSettings{
			MaxRetries: 3,
		},
		Lock: LockSettings{
			Prefix: "vepctl:lock:",
		},
	}
}

// Validate checks the settings for values no component accepts.
func (s AppSettings) Validate() error {
	if s.Processing.Workers < 1 {
		return fmt.Errorf("%w: workers must be at least 1, got %d", ErrInvalidInput, s.Processing.Workers)
	}
	switch s.Processing.PreferAddress {
	case AddressResidence, AddressMail:
	default:
		return fmt.Errorf("%w: unknown address type %q", ErrInvalidInput, s.Processing.PreferAddress)
	}
	if t := s.Processing.DistrictThreshold; t < 0 || t > 100 {
		return fmt.Errorf("%w: district threshold must be between 0 and 100, got %d", ErrInvalidInput, t)
	}
	if !s.Store.Driver.IsValid() {
		return fmt.Errorf("%w: unknown store driver %q", ErrInvalidInput, s.Store.Driver)
	}
	if s.Store.Driver == StorePostgres && s.Store.DSN == "" {
		return fmt.Errorf("%w: postgres store requires a dsn", ErrInvalidInput)
	}
	if s.Merge.MaxRetries < 0 {
		return fmt.Errorf("%w: max retries must not be negative", ErrInvalidInput)
	}
	return nil
}
