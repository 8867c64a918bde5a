package services

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/vepctl/internal/cleanup"
	"github.com/custodia-labs/vepctl/internal/core/domain"
	"github.com/custodia-labs/vepctl/internal/core/ports/driven"
)

// --- Shared fixtures for the record pipeline tests ---

func fixedClock() time.Time {
	return time.Date(2024, time.June, 1, 9, 30, 0, 0, time.UTC)
}

// txConfig is a small Texas voter file layout.
func txConfig() *domain.AliasConfig {
	return &domain.AliasConfig{
		Jurisdiction: domain.Jurisdiction{State: "tx", FileType: domain.FileTypeVoterFile},
		Fields: map[string][]string{
			"person_name_first":             {"FIRST_NAME", "FNAME"},
			"person_name_last":              {"LAST_NAME"},
			"person_dob":                    {"DOB"},
			"voter_vuid":                    {"VUID"},
			"voter_registration_date":       {"EDR"},
			"residence_part_address_number": {"HOUSE"},
			"residence_part_street_name":    {"STREET"},
			"residence_part_street_suffix":  {"SUFFIX"},
			"residence_part_city":           {"CITY"},
			"residence_part_zip5":           {"ZIP"},
			"election_2022_general_method":  {"GEN22"},
		},
		DateFormats: []string{"%Y%m%d"},
		Settings: domain.Settings{
			StateAbbreviation: "TX",
			FileType:          domain.FileTypeVoterFile,
		},
	}
}

// txRow is a raw row that passes every stage under txConfig.
func txRow(line int, first, last, vuid string) domain.RawRecord {
	return domain.RawRecord{
		Source: "tx.csv",
		Line:   line,
		Fields: map[string]string{
			"FIRST_NAME": first,
			"LAST_NAME":  last,
			"DOB":        "19800115",
			"VUID":       vuid,
			"EDR":        "20100304",
			"HOUSE":      "123",
			"STREET":     "Main",
			"SUFFIX":     "St",
			"CITY":       "Austin",
			"ZIP":        "78701",
			"GEN22":      "early",
		},
	}
}

func testPipeline(t *testing.T) driven.CleanupPipeline {
	t.Helper()
	clock := map[string]any{"clock": fixedClock}
	p, err := cleanup.NewDefaultPipeline(map[string]map[string]any{
		cleanup.StageDOB:        clock,
		cleanup.StageDistrict:   clock,
		cleanup.StageProvenance: clock,
	})
	require.NoError(t, err)
	return p
}

func sequentialIDs() func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return "err-" + strconv.Itoa(n)
	}
}

// validRecord runs a row through the pipeline.
func validRecord(t *testing.T, raw domain.RawRecord) domain.Record {
	t.Helper()
	v := NewValidator(testPipeline(t))
	rec, inv := v.ValidateOne(context.Background(), txConfig(), raw)
	require.Nil(t, inv, "row rejected: %+v", inv)
	return *rec
}

// recordingMetrics implements driven.MetricsRecorder for testing.
type recordingMetrics struct {
	mu        sync.Mutex
	outcomes  map[bool]int
	errors    map[string]int
	merges    map[string]int
	durations map[string]int
}

var _ driven.MetricsRecorder = (*recordingMetrics)(nil)

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{
		outcomes:  make(map[bool]int),
		errors:    make(map[string]int),
		merges:    make(map[string]int),
		durations: make(map[string]int),
	}
}

func (m *recordingMetrics) RecordOutcome(valid bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.outcomes[valid]++
}

func (m *recordingMetrics) RecordError(stage, errType string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[stage+"/"+errType]++
}

func (m *recordingMetrics) RecordMerge(kind string, created bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.merges[kind+"/"+strconv.FormatBool(created)]++
}

func (m *recordingMetrics) ObserveDuration(phase string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.durations[phase]++
}
