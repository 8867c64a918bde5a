package services

import (
	"context"
	"maps"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/vepctl/internal/core/domain"
	"github.com/custodia-labs/vepctl/internal/core/ports/driven"
	"github.com/custodia-labs/vepctl/internal/core/ports/driving"
	"github.com/custodia-labs/vepctl/internal/logger"
)

// Ensure Validator implements the interface.
var _ driving.RecordValidator = (*Validator)(nil)

// ModelCleanup names the cleanup pipeline in error details when a stage
// does not name itself.
const ModelCleanup = "cleanup"

// Validator threads raw records through renaming, cleanup and the
// optional final check, on a pool of workers.
type Validator struct {
	renamer  *Renamer
	pipeline driven.CleanupPipeline
	workers  int
	final    bool
	metrics  driven.MetricsRecorder
	newID    func() string

	valid   atomic.Int64
	invalid atomic.Int64
	total   atomic.Int64

	mu        sync.Mutex
	errCounts domain.ErrorCounts
}

// ValidatorOption configures a Validator.
type ValidatorOption func(*Validator)

// WithWorkers sets the number of records transformed concurrently.
func WithWorkers(n int) ValidatorOption {
	return func(v *Validator) {
		if n > 0 {
			v.workers = n
		}
	}
}

// WithFinalCheck enables re-validation of cleaned records.
func WithFinalCheck(enabled bool) ValidatorOption {
	return func(v *Validator) {
		v.final = enabled
	}
}

// WithValidatorMetrics reports outcomes and errors to m.
func WithValidatorMetrics(m driven.MetricsRecorder) ValidatorOption {
	return func(v *Validator) {
		v.metrics = m
	}
}

// WithErrorID replaces the error id generator. Used by tests.
func WithErrorID(fn func() string) ValidatorOption {
	return func(v *Validator) {
		v.newID = fn
	}
}

// NewValidator creates a validator around a cleanup pipeline.
func NewValidator(pipeline driven.CleanupPipeline, opts ...ValidatorOption) *Validator {
	v := &Validator{
		renamer:   NewRenamer(),
		pipeline:  pipeline,
		workers:   domain.DefaultWorkers(),
		newID:     uuid.NewString,
		errCounts: make(domain.ErrorCounts),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Validate resets the counters and starts the workers. Both returned
// channels must be drained: records already pulled from the input are
// always delivered, even after ctx is cancelled.
func (v *Validator) Validate(ctx context.Context, cfg *domain.AliasConfig, records <-chan domain.RawRecord) (<-chan domain.Record, <-chan domain.InvalidRecord) {
	v.reset()

	validCh := make(chan domain.Record)
	invalidCh := make(chan domain.InvalidRecord)

	go func() {
		defer close(validCh)
		defer close(invalidCh)

		var g errgroup.Group
		for range v.workers {
			g.Go(func() error {
				for {
					select {
					case <-ctx.Done():
						return nil
					case raw, ok := <-records:
						if !ok {
							return nil
						}
						rec, inv := v.ValidateOne(ctx, cfg, raw)
						if rec != nil {
							validCh <- *rec
						} else {
							invalidCh <- *inv
						}
					}
				}
			})
		}
		_ = g.Wait()

		c := v.Counts()
		logger.Info("Validation complete: %d valid, %d invalid, %d total", c.Valid, c.Invalid, c.Total)
	}()

	return validCh, invalidCh
}

// ValidateOne runs one record through every stage. Cancelling ctx does not
// abort a record that has already been pulled.
func (v *Validator) ValidateOne(ctx context.Context, cfg *domain.AliasConfig, raw domain.RawRecord) (*domain.Record, *domain.InvalidRecord) {
	start := time.Now()
	v.total.Add(1)
	defer func() {
		if v.metrics != nil {
			v.metrics.ObserveDuration("validate", time.Since(start))
		}
	}()

	src, err := v.renamer.Rename(cfg, raw)
	if err != nil {
		return nil, v.reject(raw, err, domain.FailureRename, ModelRename)
	}

	rec, err := v.pipeline.Process(context.WithoutCancel(ctx), src)
	if err != nil {
		return nil, v.reject(raw, err, domain.FailureCleanup, ModelCleanup)
	}

	if v.final {
		if err := FinalCheck(rec); err != nil {
			return nil, v.reject(raw, err, domain.FailureFinal, ModelFinal)
		}
	}

	v.valid.Add(1)
	if v.metrics != nil {
		v.metrics.RecordOutcome(true)
	}
	return &rec, nil
}

func (v *Validator) reject(raw domain.RawRecord, err error, stage domain.PointOfFailure, model string) *domain.InvalidRecord {
	se := domain.AsStageError(err, stage, model)
	types := se.Types()

	v.invalid.Add(1)
	v.mu.Lock()
	for _, t := range types {
		v.errCounts[t]++
	}
	v.mu.Unlock()

	if v.metrics != nil {
		v.metrics.RecordOutcome(false)
		for _, t := range types {
			v.metrics.RecordError(string(se.Stage), t)
		}
	}

	logger.With("source", raw.Source, "line", raw.Line).Debugf("Record rejected: %s", se)

	return &domain.InvalidRecord{
		Source: raw.Source,
		Line:   raw.Line,
		Raw:    raw.Fields,
		Details: domain.ErrorDetails{
			ErrorID:        v.newID(),
			PointOfFailure: se.Stage,
			Model:          se.Model,
			Errors:         se.Errors,
		},
	}
}

// Counts returns running totals of the current pass.
func (v *Validator) Counts() domain.ValidationCounts {
	return domain.ValidationCounts{
		Valid:   v.valid.Load(),
		Invalid: v.invalid.Load(),
		Total:   v.total.Load(),
	}
}

// ErrorCounts returns a copy of the error type occurrences.
func (v *Validator) ErrorCounts() domain.ErrorCounts {
	v.mu.Lock()
	defer v.mu.Unlock()
	return maps.Clone(v.errCounts)
}

func (v *Validator) reset() {
	v.valid.Store(0)
	v.invalid.Store(0)
	v.total.Store(0)
	v.mu.Lock()
	v.errCounts = make(domain.ErrorCounts)
	v.mu.Unlock()
}
