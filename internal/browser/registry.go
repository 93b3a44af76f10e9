package browser

import (
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	defaultRegistrySize = 1024
	defaultRegistryTTL  = 30 * time.Minute
)

// Instance is the view model of one browser session. All transitions go
// through Dispatch so concurrent request handlers see a serial history.
type Instance struct {
	mu         sync.Mutex
	reducer    Reducer
	state      State
	generation uint64
}

func NewInstance(reducer Reducer) *Instance {
	return &Instance{reducer: reducer, state: NewState()}
}

// Activate resets the instance to a fresh loading state and returns the new
// generation that results of this activation must carry.
func (i *Instance) Activate() uint64 {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.generation++
	i.state, _ = i.reducer.Reduce(i.state, Activated{Generation: i.generation})
	return i.generation
}

// Dispatch applies ev and reports whether it was applied.
func (i *Instance) Dispatch(ev Event) (State, bool) {
	i.mu.Lock()
	defer i.mu.Unlock()
	next, ok := i.reducer.Reduce(i.state, ev)
	i.state = next
	return next, ok
}

// Apply dispatches events in order and returns the resulting state.
func (i *Instance) Apply(events ...Event) State {
	i.mu.Lock()
	defer i.mu.Unlock()
	for _, ev := range events {
		i.state, _ = i.reducer.Reduce(i.state, ev)
	}
	return i.state
}

func (i *Instance) Snapshot() State {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.state
}

// View derives the current render model.
func (i *Instance) View() View {
	return i.reducer.View(i.Snapshot())
}

// Activated reports whether the instance has been mounted at least once.
func (i *Instance) Activated() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.generation > 0
}

// Registry keeps one Instance per session id. Idle sessions expire after the
// TTL and the least recently used are evicted beyond the size bound.
type Registry struct {
	mu        sync.Mutex
	reducer   Reducer
	instances *expirable.LRU[string, *Instance]
}

func NewRegistry(reducer Reducer, size int, ttl time.Duration) *Registry {
	if size <= 0 {
		size = defaultRegistrySize
	}
	if ttl <= 0 {
		ttl = defaultRegistryTTL
	}
	return &Registry{
		reducer:   reducer,
		instances: expirable.NewLRU[string, *Instance](size, nil, ttl),
	}
}

// Get returns the instance of sessionID, creating it when absent.
func (r *Registry) Get(sessionID string) *Instance {
	r.mu.Lock()
	defer r.mu.Unlock()
	if inst, ok := r.instances.Get(sessionID); ok {
		return inst
	}
	inst := NewInstance(r.reducer)
	r.instances.Add(sessionID, inst)
	return inst
}

// Lookup returns the instance of sessionID without creating one.
func (r *Registry) Lookup(sessionID string) (*Instance, bool) {
	return r.instances.Get(sessionID)
}

func (r *Registry) Remove(sessionID string) {
	r.instances.Remove(sessionID)
}

func (r *Registry) Len() int {
	return r.instances.Len()
}

func (r *Registry) Reducer() Reducer {
	return r.reducer
}
