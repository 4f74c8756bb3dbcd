// Package metrics provides lightweight hooks for instrumentation.
package metrics

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// User resource metrics
	IncUserCreated()
	IncUserUpdated()
	IncUserDeleted()

	// Transport metrics
	IncErrorResponse(code string) // code: the error kind, e.g. "NOT_FOUND"
	IncRateLimited()

	// Event stream metrics
	IncEventPublished(result string) // result: "success" or "dropped"
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
