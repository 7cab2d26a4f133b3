package app

import (
	"sync"

	"trivia-session-service/internal/session"
)

// Registry tracks live session runners so the server can enumerate and
// stop them on shutdown.
type Registry struct {
	mu      sync.RWMutex
	runners map[string]*session.Runner
}

func NewRegistry() *Registry {
	return &Registry{runners: make(map[string]*session.Runner)}
}

func (r *Registry) Add(runner *session.Runner) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runners[runner.ID] = runner
}

func (r *Registry) Get(id string) (*session.Runner, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	runner, ok := r.runners[id]
	return runner, ok
}

// Remove drops a runner from the registry and stops it.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	runner, ok := r.runners[id]
	delete(r.runners, id)
	r.mu.Unlock()
	if ok {
		runner.Stop()
	}
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.runners)
}

// StopAll stops every live runner; used on graceful shutdown.
func (r *Registry) StopAll() {
	r.mu.Lock()
	runners := make([]*session.Runner, 0, len(r.runners))
	for id, runner := range r.runners {
		runners = append(runners, runner)
		delete(r.runners, id)
	}
	r.mu.Unlock()
	for _, runner := range runners {
		runner.Stop()
	}
}
