// Package cleanup normalises renamed records into keyed entity graphs.
package cleanup

import (
	"context"
	"fmt"

	"github.com/custodia-labs/vepctl/internal/core/domain"
	"github.com/custodia-labs/vepctl/internal/core/ports/driven"
)

// Pipeline chains CleanupStages and runs them in order.
// It implements the CleanupPipeline interface.
type Pipeline struct {
	stages []driven.CleanupStage
}

var _ driven.CleanupPipeline = (*Pipeline)(nil)

// NewPipeline creates a pipeline with the given stages.
// Stages are executed in the order provided.
func NewPipeline(stages ...driven.CleanupStage) *Pipeline {
	return &Pipeline{
		stages: stages,
	}
}

// Process runs the record through all stages in order. The first stage
// receives a record carrying only the raw fingerprint. Correction notes of
// every stage are collected into the record's input data.
//
// A stage failure is returned as a *domain.StageError at the cleanup point
// of failure, with the stage name as model.
func (p *Pipeline) Process(ctx context.Context, src *domain.CanonicalRecord) (domain.Record, error) {
	if src == nil {
		return domain.Record{}, fmt.Errorf("record is nil")
	}

	rec := domain.Record{ID: src.Raw.Fingerprint()}
	notes := make(domain.Corrections)

	for _, stage := range p.stages {
		if err := ctx.Err(); err != nil {
			return domain.Record{}, err
		}
		next, err := stage.Apply(ctx, rec, src, notes)
		if err != nil {
			return domain.Record{}, domain.AsStageError(err, domain.FailureCleanup, stage.Name())
		}
		rec = next
	}

	if len(notes) > 0 {
		rec.Input.Corrections = notes
	}
	return rec, nil
}

// Add appends a stage to the pipeline.
func (p *Pipeline) Add(stage driven.CleanupStage) {
	p.stages = append(p.stages, stage)
}

// Len returns the number of stages in the pipeline.
func (p *Pipeline) Len() int {
	return len(p.stages)
}

// Names returns the stage names in execution order.
func (p *Pipeline) Names() []string {
	names := make([]string, len(p.stages))
	for i, s := range p.stages {
		names[i] = s.Name()
	}
	return names
}
