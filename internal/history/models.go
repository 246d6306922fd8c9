package history

import "time"

// State represents the lifecycle of a recorded job.
type State string

const (
	StateRunning   State = "running"
	StateSucceeded State = "succeeded"
	StateFailed    State = "failed"
	StateTimedOut  State = "timed_out"
	StateCancelled State = "cancelled"
)

var allStates = []State{
	StateRunning,
	StateSucceeded,
	StateFailed,
	StateTimedOut,
	StateCancelled,
}

var stateSet = func() map[State]struct{} {
	set := make(map[State]struct{}, len(allStates))
	for _, state := range allStates {
		set[state] = struct{}{}
	}
	return set
}()

// Valid reports whether the state is one of the known lifecycle states.
func (s State) Valid() bool {
	_, ok := stateSet[s]
	return ok
}

// Terminal reports whether the state ends a job's lifecycle.
func (s State) Terminal() bool {
	return s.Valid() && s != StateRunning
}

// DaemonStopMessage is the error recorded when jobs are closed out because
// the daemon shut down underneath them.
const DaemonStopMessage = "daemon stopped"

// Record is a job history row persisted in SQLite.
type Record struct {
	ID           int64
	JobID        string
	Class        string
	SceneName    string
	EntryPoint   string
	Quality      string
	FrameRate    int
	Format       string
	Command      string
	State        State
	ArtifactPath string
	ErrorMessage string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	CompletedAt  time.Time
}

// Summary describes aggregated history counts per lifecycle state.
type Summary struct {
	Total     int
	Running   int
	Succeeded int
	Failed    int
	TimedOut  int
	Cancelled int
}
