package domain

// SimulationStatus is the lifecycle state of a simulation session
type SimulationStatus string

const (
	StatusIdle       SimulationStatus = "Idle"
	StatusRunning    SimulationStatus = "Running"
	StatusPaused     SimulationStatus = "Paused"
	StatusTerminated SimulationStatus = "Terminated"
)

// CanTransition reports whether the state machine allows moving to next.
// Terminated is final. Idle may be torn down without ever running.
func (s SimulationStatus) CanTransition(next SimulationStatus) bool {
	switch s {
	case StatusIdle:
		return next == StatusRunning || next == StatusTerminated
	case StatusRunning:
		return next == StatusPaused || next == StatusTerminated
	case StatusPaused:
		return next == StatusRunning || next == StatusTerminated
	default:
		return false
	}
}
