package render

import (
	"fmt"
	"sync"

	"sceneforge/internal/services"
)

// Guard enforces the single-flight policy: at most one job across both
// classes may be dispatched or watching at any moment.
//
// Each class carries an optional liveness probe reporting whether a process
// still backs its active job. When a class looks busy but its probe says the
// backing process is gone, the flag is stale; Acquire repairs it instead of
// rejecting the new job.
type Guard struct {
	mu       sync.Mutex
	states   map[Class]State
	owners   map[Class]string
	liveness map[Class]func() bool
}

// NewGuard returns a guard with both classes idle.
func NewGuard() *Guard {
	return &Guard{
		states:   map[Class]State{ClassRender: StateIdle, ClassPreview: StateIdle},
		owners:   make(map[Class]string),
		liveness: make(map[Class]func() bool),
	}
}

// SetLiveness registers the probe consulted during stale-flag reconciliation.
func (g *Guard) SetLiveness(class Class, probe func() bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.liveness[class] = probe
}

// Acquire admits a job of the given class, transitioning it to Dispatched.
// Returns ErrBusy when either class is already active and not stale.
func (g *Guard) Acquire(class Class) error {
	if !class.Valid() {
		return services.Wrap(services.ErrValidation, "guard", "acquire", fmt.Sprintf("unknown job class %q", class), nil)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	for _, other := range []Class{ClassRender, ClassPreview} {
		if !g.states[other].Busy() {
			continue
		}
		if probe := g.liveness[other]; probe != nil && !probe() {
			// Backing process is gone; repair the stale flag.
			g.states[other] = StateIdle
			g.owners[other] = ""
			continue
		}
		return services.Wrap(services.ErrBusy, "guard", "acquire",
			fmt.Sprintf("a %s job is already active", other), nil)
	}

	g.states[class] = StateDispatched
	g.owners[class] = ""
	return nil
}

// MarkWatching transitions an admitted class to Watching and records the job
// that owns the slot until its watcher concludes.
func (g *Guard) MarkWatching(class Class, jobID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.states[class] == StateDispatched {
		g.states[class] = StateWatching
		g.owners[class] = jobID
	}
}

// Release returns a class to idle, but only for the job that owns it. A
// watcher whose job was superseded after Stop must not wipe the state of the
// job admitted in its place. Idempotent for the owner.
func (g *Guard) Release(class Class, jobID string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.owners[class] != jobID {
		return
	}
	g.states[class] = StateIdle
	g.owners[class] = ""
}

// Owns reports whether the class is busy on behalf of the given job. A
// superseded watcher observes false and winds down as cancelled.
func (g *Guard) Owns(class Class, jobID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.states[class].Busy() && g.owners[class] == jobID
}

// ReleaseAll resets both classes unconditionally. Used by Stop, which must
// clear the flags even when signaling the underlying process fails.
func (g *Guard) ReleaseAll() {
	g.mu.Lock()
	defer g.mu.Unlock()
	for class := range g.states {
		g.states[class] = StateIdle
		g.owners[class] = ""
	}
}

// State returns the current state of a class.
func (g *Guard) State(class Class) State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.states[class]
}

// Snapshot returns a read-only copy of both class states.
func (g *Guard) Snapshot() map[Class]State {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make(map[Class]State, len(g.states))
	for class, state := range g.states {
		out[class] = state
	}
	return out
}
