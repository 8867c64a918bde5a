package services

import (
	"fmt"
	"maps"
	"slices"
	"strconv"

	"github.com/custodia-labs/vepctl/internal/core/domain"
	"github.com/custodia-labs/vepctl/internal/core/ports/driven"
	"github.com/custodia-labs/vepctl/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
const (
	keyWorkers           = "processing.workers"
	keyStrictDOB         = "processing.strict_dob"
	keyFinalValidation   = "processing.final_validation"
	keyPreferAddress     = "processing.prefer_address"
	keyDistrictThreshold = "processing.district_threshold"
	keyStoreDriver       = "store.driver"
	keyStoreDSN          = "store.dsn"
	keyMaxRetries        = "merge.max_retries"
	keyRedisAddr         = "lock.redis_addr"
	keyLockPrefix        = "lock.prefix"
	keyFieldsDir         = "fields.dir"
)

// setters parse a string value into one setting.
var setters = map[string]func(*domain.AppSettings, string) error{
	keyWorkers: func(s *domain.AppSettings, v string) error {
		return parseInt(v, &s.Processing.Workers)
	},
	keyStrictDOB: func(s *domain.AppSettings, v string) error {
		return parseBool(v, &s.Processing.StrictDOB)
	},
	keyFinalValidation: func(s *domain.AppSettings, v string) error {
		return parseBool(v, &s.Processing.FinalValidation)
	},
	keyPreferAddress: func(s *domain.AppSettings, v string) error {
		s.Processing.PreferAddress = domain.AddressType(v)
		return nil
	},
	keyDistrictThreshold: func(s *domain.AppSettings, v string) error {
		return parseInt(v, &s.Processing.DistrictThreshold)
	},
	keyStoreDriver: func(s *domain.AppSettings, v string) error {
		s.Store.Driver = domain.StoreDriver(v)
		return nil
	},
	keyStoreDSN: func(s *domain.AppSettings, v string) error {
		s.Store.DSN = v
		return nil
	},
	keyMaxRetries: func(s *domain.AppSettings, v string) error {
		return parseInt(v, &s.Merge.MaxRetries)
	},
	keyRedisAddr: func(s *domain.AppSettings, v string) error {
		s.Lock.RedisAddr = v
		return nil
	},
	keyLockPrefix: func(s *domain.AppSettings, v string) error {
		s.Lock.Prefix = v
		return nil
	},
	keyFieldsDir: func(s *domain.AppSettings, v string) error {
		s.FieldsDir = v
		return nil
	},
}

// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore) *SettingsService {
	return &SettingsService{configStore: configStore}
}

// Get retrieves current application settings.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	settings := &domain.AppSettings{
		Processing: domain.ProcessingSettings{
			Workers:           s.getInt(keyWorkers, defaults.Processing.Workers),
			StrictDOB:         s.getBool(keyStrictDOB, defaults.Processing.StrictDOB),
			FinalValidation:   s.getBool(keyFinalValidation, defaults.Processing.FinalValidation),
			PreferAddress:     s.getAddressType(defaults.Processing.PreferAddress),
			DistrictThreshold: s.getInt(keyDistrictThreshold, defaults.Processing.DistrictThreshold),
		},
		Store: domain.StoreSettings{
			Driver: s.getStoreDriver(defaults.Store.Driver),
			DSN:    s.configStore.GetString(keyStoreDSN),
		},
		Merge: domain.MergeSettings{
			MaxRetries: s.getInt(keyMaxRetries, defaults.Merge.MaxRetries),
		},
		Lock: domain.LockSettings{
			RedisAddr: s.configStore.GetString(keyRedisAddr),
			Prefix:    s.getString(keyLockPrefix, defaults.Lock.Prefix),
		},
		FieldsDir: s.getString(keyFieldsDir, defaults.FieldsDir),
	}

	return settings, nil
}

// Save validates and persists application settings.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	if err := settings.Validate(); err != nil {
		return err
	}

	values := map[string]any{
		keyWorkers:           settings.Processing.Workers,
		keyStrictDOB:         settings.Processing.StrictDOB,
		keyFinalValidation:   settings.Processing.FinalValidation,
		keyPreferAddress:     string(settings.Processing.PreferAddress),
		keyDistrictThreshold: settings.Processing.DistrictThreshold,
		keyStoreDriver:       settings.Store.Driver.String(),
		keyStoreDSN:          optional(settings.Store.DSN),
		keyMaxRetries:        settings.Merge.MaxRetries,
		keyRedisAddr:         optional(settings.Lock.RedisAddr),
		keyLockPrefix:        settings.Lock.Prefix,
		keyFieldsDir:         optional(settings.FieldsDir),
	}
	if err := s.configStore.SetAll(values); err != nil {
		return fmt.Errorf("saving settings: %w", err)
	}
	return nil
}

// optional maps an empty string to nil so the key is dropped from the file.
func optional(v string) any {
	if v == "" {
		return nil
	}
	return v
}

// Set updates one setting by its config key.
func (s *SettingsService) Set(key, value string) error {
	set, ok := setters[key]
	if !ok {
		return fmt.Errorf("%w: unknown setting %q", domain.ErrInvalidInput, key)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}
	if err := set(settings, value); err != nil {
		return fmt.Errorf("%w: %s: %w", domain.ErrInvalidInput, key, err)
	}
	return s.Save(settings)
}

// Keys returns every settable config key, sorted.
func (s *SettingsService) Keys() []string {
	return slices.Sorted(maps.Keys(setters))
}

// GetDefaults returns default settings.
func (s *SettingsService) GetDefaults() domain.AppSettings {
	return domain.DefaultAppSettings()
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getBool(key string, defaultVal bool) bool {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetBool(key)
}

func (s *SettingsService) getAddressType(defaultVal domain.AddressType) domain.AddressType {
	val := domain.AddressType(s.configStore.GetString(keyPreferAddress))
	if !slices.Contains(domain.AddressTypes, val) {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getStoreDriver(defaultVal domain.StoreDriver) domain.StoreDriver {
	driver := domain.StoreDriver(s.configStore.GetString(keyStoreDriver))
	if !driver.IsValid() {
		return defaultVal
	}
	return driver
}

func parseInt(v string, dst *int) error {
	n, err := strconv.Atoi(v)
	if err != nil {
		return err
	}
	*dst = n
	return nil
}

func parseBool(v string, dst *bool) error {
	b, err := strconv.ParseBool(v)
	if err != nil {
		return err
	}
	*dst = b
	return nil
}
