package metrics

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncUserCreated is a no-op.
func (n *NoopRecorder) IncUserCreated() {}

// IncUserUpdated is a no-op.
func (n *NoopRecorder) IncUserUpdated() {}

// IncUserDeleted is a no-op.
func (n *NoopRecorder) IncUserDeleted() {}

// IncErrorResponse is a no-op.
func (n *NoopRecorder) IncErrorResponse(code string) {}

// IncRateLimited is a no-op.
func (n *NoopRecorder) IncRateLimited() {}

// IncEventPublished is a no-op.
func (n *NoopRecorder) IncEventPublished(result string) {}
