package repl

// State is a stage of the interactive session.
type State int

const (
	StateConnecting State = iota
	StateMenuWait
	StateAwaitingPathInput
	StateSending
	StateClosed
)

var stateNames = [...]string{
	StateConnecting:        "connecting",
	StateMenuWait:          "menu-wait",
	StateAwaitingPathInput: "awaiting-path-input",
	StateSending:           "sending",
	StateClosed:            "closed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}
