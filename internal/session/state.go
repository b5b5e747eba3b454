package session

// State is a position in the session state machine.
type State int

const (
	Idle State = iota
	AwaitingInput
	Resolving
	Rendering
	Dispatching
	Reporting
	Exit
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case AwaitingInput:
		return "awaiting_input"
	case Resolving:
		return "resolving"
	case Rendering:
		return "rendering"
	case Dispatching:
		return "dispatching"
	case Reporting:
		return "reporting"
	case Exit:
		return "exit"
	default:
		return "unknown"
	}
}

// Observer is notified of every state change.
type Observer func(from, to State)
