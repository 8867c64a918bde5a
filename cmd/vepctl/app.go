package main

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/vepctl/internal/adapters/driven/config/file"
	"github.com/custodia-labs/vepctl/internal/adapters/driven/lock/redislock"
	"github.com/custodia-labs/vepctl/internal/adapters/driven/source"
	"github.com/custodia-labs/vepctl/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/vepctl/internal/adapters/driven/storage/sqlstore"
	"github.com/custodia-labs/vepctl/internal/adapters/driving/cli"
	"github.com/custodia-labs/vepctl/internal/cleanup"
	"github.com/custodia-labs/vepctl/internal/core/domain"
	"github.com/custodia-labs/vepctl/internal/core/ports/driven"
	"github.com/custodia-labs/vepctl/internal/core/services"
	"github.com/custodia-labs/vepctl/internal/logger"
	"github.com/custodia-labs/vepctl/internal/metrics"
)

// connectTimeout bounds store and Redis connection attempts at startup.
const connectTimeout = 10 * time.Second

// app holds the wired services and the resources to release on exit.
type app struct {
	services cli.Services
	closers  []func() error
}

// Close releases every opened resource in reverse order.
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			logger.Warn("Closing resource: %v", err)
		}
	}
}

// newApp wires the adapters and services from the settings stored in
// configDir (~/.vepctl when empty). A store or lock that cannot be opened
// disables merging instead of failing startup, so validate and settings
// keep working.
func newApp(configDir string) (*app, error) {
	configStore, err := file.NewConfigStore(configDir)
	if err != nil {
		return nil, fmt.Errorf("opening config: %w", err)
	}
	settingsService := services.NewSettingsService(configStore)
	settings, err := settingsService.Get()
	if err != nil {
		return nil, fmt.Errorf("loading settings: %w", err)
	}

	aliases, err := file.NewAliasStore(settings.FieldsDir)
	if err != nil {
		return nil, fmt.Errorf("opening fields directory: %w", err)
	}

	pipeline, err := cleanup.NewDefaultPipeline(pipelineConfig(settings))
	if err != nil {
		return nil, fmt.Errorf("building cleanup pipeline: %w", err)
	}

	recorder := metrics.New()
	validator := services.NewValidator(pipeline,
		services.WithWorkers(settings.Processing.Workers),
		services.WithFinalCheck(settings.Processing.FinalValidation),
		services.WithValidatorMetrics(recorder),
	)

	a := &app{}
	ingestOpts := []services.IngestOption{
		services.WithMergeWorkers(settings.Processing.Workers),
		services.WithIngestMetrics(recorder),
	}

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	var recordService *services.RecordService
	store, err := openStore(ctx, settings.Store)
	if err != nil {
		logger.Warn("Entity store unavailable, merging disabled: %v", err)
	} else {
		a.closers = append(a.closers, store.Close)

		locker, err := openLocker(ctx, settings.Lock, a)
		if err != nil {
			return nil, err
		}
		merger := services.NewMerger(store, locker,
			services.WithMaxRetries(settings.Merge.MaxRetries),
			services.WithMergeMetrics(recorder),
		)
		ingestOpts = append(ingestOpts, services.WithMerger(merger))
		recordService = services.NewRecordService(store, services.NewParticipationScorer())
	}

	a.services = cli.Services{
		Ingest:       services.NewIngestService(source.NewFactory(), aliases, validator, ingestOpts...),
		Jurisdiction: services.NewJurisdictionService(aliases),
		Settings:     settingsService,
		Metrics:      recorder,
	}
	if recordService != nil {
		a.services.Records = recordService
	}
	return a, nil
}

// pipelineConfig maps settings onto per-stage cleanup config.
func pipelineConfig(s *domain.AppSettings) map[string]map[string]any {
	cfg := map[string]map[string]any{
		cleanup.StageDOB: {"strict": s.Processing.StrictDOB},
		cleanup.StageVEPKey: {
			"prefer": string(s.Processing.PreferAddress),
			"strict": s.Processing.StrictDOB,
		},
	}
	if s.Processing.DistrictThreshold > 0 {
		cfg[cleanup.StageDistrict] = map[string]any{"threshold": s.Processing.DistrictThreshold}
	}
	return cfg
}

func openStore(ctx context.Context, s domain.StoreSettings) (driven.EntityStore, error) {
	switch s.Driver {
	case domain.StoreMemory:
		return memory.NewEntityStore(), nil
	case domain.StorePostgres:
		return sqlstore.NewPostgresStore(ctx, s.DSN)
	default:
		return sqlstore.NewSQLiteStore(s.DSN)
	}
}

// openLocker returns Redis locks when configured and in-process locks
// otherwise.
func openLocker(ctx context.Context, s domain.LockSettings, a *app) (driven.KeyLocker, error) {
	if s.RedisAddr == "" {
		return services.NewKeyLocks(services.DefaultStripes), nil
	}
	locker, err := redislock.Dial(ctx, s.RedisAddr, s.Prefix)
	if err != nil {
		return nil, fmt.Errorf("opening lock server: %w", err)
	}
	a.closers = append(a.closers, locker.Close)
	return locker, nil
}
