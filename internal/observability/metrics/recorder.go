// Package metrics provides custom Prometheus metrics for the sightings service.
package metrics

// Recorder defines a minimal interface for recording metrics.
// Components depend on it rather than on concrete metric structs.
type Recorder interface {
	// RecordOperation records an operation with its status ("success", "error").
	RecordOperation(operation, status string)

	// RecordDuration records the duration of an operation in seconds.
	RecordDuration(operation string, seconds float64)

	// RecordError records an error occurrence with its type.
	// The errorType parameter categorizes the error (e.g., "not_found", "constraint").
	RecordError(operation, errorType string)

	// RecordQueryResultSize records how many rows a read returned.
	RecordQueryResultSize(operation string, rows int)
}

var (
	_ Recorder = (*DatastoreMetrics)(nil)
	_ Recorder = (*TestRecorder)(nil)
)
