package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/custodia-labs/vepctl/internal/core/domain"
	"github.com/custodia-labs/vepctl/internal/core/ports/driving"
)

// --- Mock implementations ---

type mockIngestService struct {
	req    driving.IngestRequest
	valid  []domain.Record
	bad    []domain.InvalidRecord
	report *driving.IngestReport
	err    error
}

func (m *mockIngestService) Ingest(_ context.Context, req driving.IngestRequest) (*driving.IngestReport, error) {
	m.req = req
	for _, r := range m.valid {
		if req.OnValid != nil {
			req.OnValid(r)
		}
	}
	for _, r := range m.bad {
		if req.OnInvalid != nil {
			req.OnInvalid(r)
		}
	}
	return m.report, m.err
}

func (m *mockIngestService) Status() driving.IngestStatus { return driving.IngestStatus{} }

type mockRecordService struct {
	records []domain.Record
	counts  map[string]int
	scored  int
}

func (m *mockRecordService) Get(_ context.Context, id string) (*domain.Record, error) {
	for i := range m.records {
		if m.records[i].ID == id {
			return &m.records[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockRecordService) List(_ context.Context, after string, limit int) ([]domain.Record, error) {
	var out []domain.Record
	for _, r := range m.records {
		if r.ID > after {
			out = append(out, r)
		}
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (m *mockRecordService) Counts(context.Context) (map[string]int, error) { return m.counts, nil }

func (m *mockRecordService) ScoreTurnout(context.Context) (int, error) { return m.scored, nil }

type mockJurisdictionService struct {
	configs map[domain.Jurisdiction]*domain.AliasConfig
}

func (m *mockJurisdictionService) List(context.Context) ([]domain.Jurisdiction, error) {
	var out []domain.Jurisdiction
	for j := range m.configs {
		out = append(out, j)
	}
	return out, nil
}

func (m *mockJurisdictionService) Describe(_ context.Context, j domain.Jurisdiction) (*domain.AliasConfig, error) {
	cfg, ok := m.configs[j]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return cfg, nil
}

type mockSettingsService struct {
	settings domain.AppSettings
	set      map[string]string
	saved    *domain.AppSettings
}

func (m *mockSettingsService) Get() (*domain.AppSettings, error) {
	s := m.settings
	return &s, nil
}

func (m *mockSettingsService) Save(s *domain.AppSettings) error {
	if err := s.Validate(); err != nil {
		return err
	}
	m.saved = s
	return nil
}

func (m *mockSettingsService) Set(key, value string) error {
	if !strings.Contains(key, ".") {
		return domain.ErrInvalidInput
	}
	m.set[key] = value
	return nil
}

func (m *mockSettingsService) Keys() []string { return []string{"processing.workers", "store.driver"} }

func (m *mockSettingsService) GetDefaults() domain.AppSettings { return domain.DefaultAppSettings() }

type mockMetrics struct{ path string }

func (m *mockMetrics) WriteTextfile(path string) error {
	m.path = path
	return nil
}

// --- Helpers ---

// setupTestServices installs mocks and restores the previous services.
func setupTestServices(s Services) func() {
	prev := Services{
		Ingest:       ingestService,
		Records:      recordService,
		Jurisdiction: jurisdictionService,
		Settings:     settingsService,
		Metrics:      metricsWriter,
	}
	SetServices(s)
	return func() { SetServices(prev) }
}

// resetFlags restores every flag to its default so runs do not leak.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

// execute runs the root command with args and returns its output.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return buf.String(), err
}
