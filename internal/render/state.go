package render

// Class identifies a job class. The two classes are mutually exclusive: a
// render blocks previews and vice versa.
type Class string

const (
	ClassRender  Class = "render"
	ClassPreview Class = "preview"
)

// Valid reports whether the class is one of the two known job classes.
func (c Class) Valid() bool {
	return c == ClassRender || c == ClassPreview
}

// State is the lifecycle of a job class, owned by the Guard. Only the
// dispatcher and the owning watcher transition it; everything else reads
// snapshots.
type State int

const (
	// StateIdle means no job of the class is active.
	StateIdle State = iota
	// StateDispatched means the command line has been admitted but not yet
	// handed to a watcher.
	StateDispatched
	// StateWatching means a completion watcher is polling for the outcome.
	StateWatching
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDispatched:
		return "dispatched"
	case StateWatching:
		return "watching"
	default:
		return "unknown"
	}
}

// Busy reports whether the state blocks admission of a new job.
func (s State) Busy() bool {
	return s != StateIdle
}

// Outcome is the terminal result a watcher reaches.
type Outcome string

const (
	OutcomeSucceeded Outcome = "succeeded"
	OutcomeFailed    Outcome = "failed"
	OutcomeTimedOut  Outcome = "timed_out"
	OutcomeCancelled Outcome = "cancelled"
)
