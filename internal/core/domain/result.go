package domain

// ErrorDetails describes why a record was rejected.
type ErrorDetails struct {
	// ErrorID uniquely identifies this rejection.
	ErrorID string `json:"error_id"`

	PointOfFailure PointOfFailure    `json:"point_of_failure"`
	Model          string            `json:"model"`
	Errors         []ValidationError `json:"errors"`
}

// InvalidRecord is a rejected record with its raw input.
type InvalidRecord struct {
	Source  string            `json:"source"`
	Line    int               `json:"line"`
	Raw     map[string]string `json:"raw"`
	Details ErrorDetails      `json:"details"`
}

// ValidationCounts are running totals of a validation pass.
type ValidationCounts struct {
	Valid   int64 `json:"valid"`
	Invalid int64 `json:"invalid"`
	Total   int64 `json:"total"`
}

// ErrorCounts maps error types to occurrence counts.
type ErrorCounts map[string]int64
