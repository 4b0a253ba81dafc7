// Package pulse implements the periodic summary engine: a shared window
// accumulator fed by the output stream and a timer-driven scheduler that
// drains it into one-line pulses.
package pulse

// State represents the lifecycle of the pulse scheduler.
type State int

const (
	// StateIdle is the initial state before the child process starts.
	StateIdle State = iota

	// StateRunning indicates the child is active and pulses are being
	// emitted on the configured interval.
	StateRunning

	// StateDraining indicates the child has exited and the final
	// unconditional pulse is being emitted.
	StateDraining

	// StateStopped is terminal; no further pulses are emitted.
	StateStopped
)

// String returns a human-readable name for the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateDraining:
		return "draining"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// IsTerminal returns true once the scheduler will emit no further pulses.
func (s State) IsTerminal() bool {
	return s == StateStopped
}
