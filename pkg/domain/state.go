package domain

// State is the progress of a project or a task.
type State string

const (
	StatePending    State = "pending"
	StateInProgress State = "in_progress"
	StateDone       State = "done"
)

func (s State) IsValid() bool {
	switch s {
	case StatePending, StateInProgress, StateDone:
		return true
	default:
		return false
	}
}
