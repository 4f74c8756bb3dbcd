package metrics

import (
	"sync"
	"sync/atomic"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	UsersCreated    uint64
	UsersUpdated    uint64
	UsersDeleted    uint64
	RateLimited     uint64
	EventsPublished uint64
	EventsDropped   uint64
	ErrorResponses  map[string]uint64
}

// InMemoryRecorder stores metrics in memory.
type InMemoryRecorder struct {
	usersCreated uint64
	usersUpdated uint64
	usersDeleted uint64
	rateLimited  uint64

	eventsPublished uint64
	eventsDropped   uint64

	mu             sync.Mutex
	errorResponses map[string]uint64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{errorResponses: make(map[string]uint64)}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	m.mu.Lock()
	errs := make(map[string]uint64, len(m.errorResponses))
	for code, n := range m.errorResponses {
		errs[code] = n
	}
	m.mu.Unlock()

	return Snapshot{
		UsersCreated:    atomic.LoadUint64(&m.usersCreated),
		UsersUpdated:    atomic.LoadUint64(&m.usersUpdated),
		UsersDeleted:    atomic.LoadUint64(&m.usersDeleted),
		RateLimited:     atomic.LoadUint64(&m.rateLimited),
		EventsPublished: atomic.LoadUint64(&m.eventsPublished),
		EventsDropped:   atomic.LoadUint64(&m.eventsDropped),
		ErrorResponses:  errs,
	}
}

// IncUserCreated increments the user created counter.
func (m *InMemoryRecorder) IncUserCreated() {
	atomic.AddUint64(&m.usersCreated, 1)
}

// IncUserUpdated increments the user updated counter.
func (m *InMemoryRecorder) IncUserUpdated() {
	atomic.AddUint64(&m.usersUpdated, 1)
}

// IncUserDeleted increments the user deleted counter.
func (m *InMemoryRecorder) IncUserDeleted() {
	atomic.AddUint64(&m.usersDeleted, 1)
}

// IncErrorResponse counts an error response by code.
func (m *InMemoryRecorder) IncErrorResponse(code string) {
	m.mu.Lock()
	m.errorResponses[code]++
	m.mu.Unlock()
}

// IncRateLimited counts a rejected request.
func (m *InMemoryRecorder) IncRateLimited() {
	atomic.AddUint64(&m.rateLimited, 1)
}

// IncEventPublished counts a stream publish by outcome.
func (m *InMemoryRecorder) IncEventPublished(result string) {
	if result == "success" {
		atomic.AddUint64(&m.eventsPublished, 1)
		return
	}
	atomic.AddUint64(&m.eventsDropped, 1)
}
