package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/vepctl/internal/adapters/driven/config/file"
	"github.com/custodia-labs/vepctl/internal/adapters/driven/lock/redislock"
	"github.com/custodia-labs/vepctl/internal/cleanup"
	"github.com/custodia-labs/vepctl/internal/core/domain"
	"github.com/custodia-labs/vepctl/internal/core/ports/driving"
	"github.com/custodia-labs/vepctl/internal/core/services"
)

// configDir writes settings into a fresh config directory.
func configDir(t *testing.T, values map[string]any) string {
	t.Helper()
	dir := t.TempDir()
	store, err := file.NewConfigStore(dir)
	require.NoError(t, err)
	for k, v := range values {
		require.NoError(t, store.Set(k, v))
	}
	return dir
}

const txAliases = `[FIELDS]
person_name_first = ["FNAME"]
person_name_last = ["LNAME"]
person_dob = "DOB"
voter_vuid = "VUID"
voter_registration_date = "EDR"
residence_part_address_number = "HOUSE"
residence_part_street_name = "STREET"
residence_part_street_suffix = "SUFFIX"
residence_part_city = "CITY"
residence_part_zip5 = "ZIP"

[SETTINGS]
FILE-TYPE = "voterfile"

[SETTINGS.FIELD-FORMATTING]
date = "%Y%m%d"

[SETTINGS.STATE]
abbreviation = "TX"
`

func TestNewApp_MemoryStoreEndToEnd(t *testing.T) {
	fields := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(fields, "tx"), 0700))
	require.NoError(t, os.WriteFile(filepath.Join(fields, "tx", "voterfile.toml"), []byte(txAliases), 0600))

	input := filepath.Join(t.TempDir(), "tx.csv")
	require.NoError(t, os.WriteFile(input, []byte(
		"FNAME,LNAME,DOB,VUID,EDR,HOUSE,STREET,SUFFIX,CITY,ZIP\n"+
			"Jane,Doe,19800115,1001,20100304,123,Main,St,Austin,78701\n"+
			",,,,,,,,,\n"), 0600))

	a, err := newApp(configDir(t, map[string]any{
		"store.driver":       "memory",
		"fields.dir":         fields,
		"processing.workers": 2,
	}))
	require.NoError(t, err)
	defer a.Close()

	require.NotNil(t, a.services.Ingest)
	require.NotNil(t, a.services.Records)
	require.NotNil(t, a.services.Jurisdiction)
	require.NotNil(t, a.services.Settings)
	require.NotNil(t, a.services.Metrics)

	ctx := context.Background()
	report, err := a.services.Ingest.Ingest(ctx, driving.IngestRequest{
		Path:         input,
		Jurisdiction: domain.Jurisdiction{State: "tx"},
		Merge:        true,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), report.Counts.Total)
	assert.Equal(t, int64(1), report.Counts.Valid)
	assert.Equal(t, 1, report.Merged)

	counts, err := a.services.Records.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, counts["record"])
}

func TestNewApp_StoreUnavailableDisablesMerge(t *testing.T) {
	a, err := newApp(configDir(t, map[string]any{
		"store.driver": "postgres",
		"store.dsn":    "postgres://nobody@127.0.0.1:1/none?connect_timeout=1",
	}))
	require.NoError(t, err)
	defer a.Close()

	assert.Nil(t, a.services.Records)
	assert.NotNil(t, a.services.Ingest)
}

func TestNewApp_SQLiteStore(t *testing.T) {
	db := filepath.Join(t.TempDir(), "pool.db")
	a, err := newApp(configDir(t, map[string]any{
		"store.driver": "sqlite",
		"store.dsn":    db,
	}))
	require.NoError(t, err)
	defer a.Close()

	require.NotNil(t, a.services.Records)
	_, err = os.Stat(db)
	assert.NoError(t, err)
}

func TestOpenLocker(t *testing.T) {
	ctx := context.Background()
	a := &app{}

	l, err := openLocker(ctx, domain.LockSettings{}, a)
	require.NoError(t, err)
	assert.IsType(t, &services.KeyLocks{}, l)
	assert.Empty(t, a.closers)

	mr := miniredis.RunT(t)
	l, err = openLocker(ctx, domain.LockSettings{RedisAddr: mr.Addr(), Prefix: "vep:"}, a)
	require.NoError(t, err)
	assert.IsType(t, &redislock.Locker{}, l)
	assert.Len(t, a.closers, 1)
	a.Close()
}

func TestPipelineConfig(t *testing.T) {
	s := domain.DefaultAppSettings()
	s.Processing.StrictDOB = true
	s.Processing.PreferAddress = domain.AddressMail

	cfg := pipelineConfig(&s)
	assert.Equal(t, true, cfg[cleanup.StageDOB]["strict"])
	assert.Equal(t, "mail", cfg[cleanup.StageVEPKey]["prefer"])
	assert.NotContains(t, cfg, cleanup.StageDistrict)

	s.Processing.DistrictThreshold = 80
	assert.Equal(t, 80, pipelineConfig(&s)[cleanup.StageDistrict]["threshold"])
}
