package pipeline

import (
	"sync"
	"time"
)

// RunRegistry tracks event channels for in-flight background runs so watch
// endpoints can attach to them. Channels are closed by the run goroutine on
// completion or error and dropped from the registry shortly after.
type RunRegistry struct {
	mu   sync.RWMutex
	runs map[string]chan Event
}

func NewRunRegistry() *RunRegistry {
	return &RunRegistry{runs: make(map[string]chan Event)}
}

// Open allocates the event channel for runID.
func (r *RunRegistry) Open(runID string) chan Event {
	ch := make(chan Event, 64)
	r.mu.Lock()
	r.runs[runID] = ch
	r.mu.Unlock()
	return ch
}

// Get returns the event channel for runID.
func (r *RunRegistry) Get(runID string) (chan Event, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ch, ok := r.runs[runID]
	return ch, ok
}

// CloseAndForget closes the channel and removes the run after a grace period
// that lets late watchers drain buffered events.
func (r *RunRegistry) CloseAndForget(runID string) {
	r.mu.RLock()
	ch, ok := r.runs[runID]
	r.mu.RUnlock()
	if !ok {
		return
	}
	close(ch)
	go func() {
		time.Sleep(30 * time.Second)
		r.mu.Lock()
		delete(r.runs, runID)
		r.mu.Unlock()
	}()
}
