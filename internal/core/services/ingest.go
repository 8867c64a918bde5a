package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/vepctl/internal/core/domain"
	"github.com/custodia-labs/vepctl/internal/core/ports/driven"
	"github.com/custodia-labs/vepctl/internal/core/ports/driving"
	"github.com/custodia-labs/vepctl/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// IngestService reads a voter file, validates every row and merges the
// valid records into the entity pool.
type IngestService struct {
	sources   driven.SourceFactory
	aliases   driven.AliasProvider
	validator driving.RecordValidator
	merger    *Merger
	metrics   driven.MetricsRecorder
	workers   int
	newID     func() string

	mu     sync.RWMutex
	status driving.IngestStatus
}

// IngestOption configures an IngestService.
type IngestOption func(*IngestService)

// WithMerger enables merging into the entity pool.
func WithMerger(m *Merger) IngestOption {
	return func(s *IngestService) {
		s.merger = m
	}
}

// WithMergeWorkers sets how many valid records are merged concurrently.
func WithMergeWorkers(n int) IngestOption {
	return func(s *IngestService) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithIngestMetrics reports merge failures to m.
func WithIngestMetrics(m driven.MetricsRecorder) IngestOption {
	return func(s *IngestService) {
		s.metrics = m
	}
}

// NewIngestService creates an ingest service.
func NewIngestService(
	sources driven.SourceFactory,
	aliases driven.AliasProvider,
	validator driving.RecordValidator,
	opts ...IngestOption,
) *IngestService {
	s := &IngestService{
		sources:   sources,
		aliases:   aliases,
		validator: validator,
		workers:   domain.DefaultWorkers(),
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// outcome is one decided record on its way to the caller.
type outcome struct {
	valid       *domain.Record
	invalid     *domain.InvalidRecord
	merged      bool
	mergeFailed bool
}

// Ingest processes one file. Cancelling ctx stops reading; records
// already read are still validated and merged.
//
//nolint:gocognit // Orchestration function coordinating the read, validate and merge goroutines
func (s *IngestService) Ingest(ctx context.Context, req driving.IngestRequest) (*driving.IngestReport, error) {
	if req.Path == "" {
		return nil, fmt.Errorf("%w: path is required", domain.ErrInvalidInput)
	}
	if req.Merge && s.merger == nil {
		return nil, errors.New("merge: entity store not configured")
	}

	cfg, err := s.aliases.Load(ctx, req.Jurisdiction)
	if err != nil {
		return nil, fmt.Errorf("load alias configuration: %w", err)
	}

	src, err := s.sources.Open(ctx, req.Path)
	if err != nil {
		return nil, fmt.Errorf("open source: %w", err)
	}
	defer src.Close()

	report := &driving.IngestReport{
		RunID:       s.newID(),
		Source:      src.Name(),
		ErrorCounts: make(domain.ErrorCounts),
	}
	start := time.Now()

	s.setStatus(driving.IngestStatus{Running: true, Source: src.Name()})
	defer s.setStatus(driving.IngestStatus{})

	log := logger.With("run_id", report.RunID, "source", src.Name())
	log.Infof("Starting ingest of %s/%s", req.Jurisdiction.State, req.Jurisdiction.FileType)

	rawCh, readErrs := src.Records(ctx)

	var readWG sync.WaitGroup
	readWG.Add(1)
	go func() {
		defer readWG.Done()
		for err := range readErrs {
			report.ReadErrors++
			log.Warnf("Read error: %v", err)
		}
	}()

	validCh, invalidCh := s.validator.Validate(ctx, cfg, rawCh)

	// In-flight records finish merging after cancellation.
	mergeCtx := context.WithoutCancel(ctx)
	out := make(chan outcome)

	var g errgroup.Group
	for range s.workers {
		g.Go(func() error {
			for rec := range validCh {
				if !req.Merge {
					out <- outcome{valid: &rec}
					continue
				}
				res, err := s.merger.Merge(mergeCtx, rec)
				if err != nil {
					inv := MergeFailure(rec, s.newID(), err)
					log.Errorf("Merge failed for record %s: %v", rec.ID, err)
					out <- outcome{invalid: &inv, mergeFailed: true}
					continue
				}
				out <- outcome{valid: &res.Record, merged: true}
			}
			return nil
		})
	}
	g.Go(func() error {
		for inv := range invalidCh {
			out <- outcome{invalid: &inv}
		}
		return nil
	})
	go func() {
		_ = g.Wait()
		close(out)
	}()

	for o := range out {
		switch {
		case o.valid != nil:
			if o.merged {
				report.Merged++
			}
			if req.OnValid != nil {
				req.OnValid(*o.valid)
			}
		case o.invalid != nil:
			if o.mergeFailed {
				report.MergeFailed++
				for _, ve := range o.invalid.Details.Errors {
					report.ErrorCounts[ve.Type]++
					if s.metrics != nil {
						s.metrics.RecordError(string(domain.FailureMerge), ve.Type)
					}
				}
			}
			if req.OnInvalid != nil {
				req.OnInvalid(*o.invalid)
			}
		}
		s.progress(report.Merged)
	}
	readWG.Wait()

	report.Counts = s.validator.Counts()
	for t, n := range s.validator.ErrorCounts() {
		report.ErrorCounts[t] += n
	}
	report.Duration = time.Since(start)

	log.Infof("Ingest complete: %d valid, %d invalid, %d merged, %d merge failures in %s",
		report.Counts.Valid, report.Counts.Invalid, report.Merged, report.MergeFailed, report.Duration.Round(time.Millisecond))

	if err := ctx.Err(); err != nil {
		return report, fmt.Errorf("ingest interrupted: %w", err)
	}
	return report, nil
}

// Status returns the progress of the running ingest.
func (s *IngestService) Status() driving.IngestStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := s.status
	if st.Running {
		st.Counts = s.validator.Counts()
	}
	return st
}

func (s *IngestService) setStatus(st driving.IngestStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = st
}

func (s *IngestService) progress(merged int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status.Merged = merged
}
