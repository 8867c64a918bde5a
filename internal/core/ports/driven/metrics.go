package driven

import "time"

// MetricsRecorder receives pipeline measurements.
type MetricsRecorder interface {
	// RecordOutcome counts one record as valid or invalid.
	RecordOutcome(valid bool)

	// RecordError counts one validation error by stage and type.
	RecordError(stage, errType string)

	// RecordMerge counts one entity as newly created or merged into an
	// existing one.
	RecordMerge(kind string, created bool)

	// ObserveDuration records how long one record spent in a phase, e.g.
	// "validate" or "merge".
	ObserveDuration(phase string, d time.Duration)
}
