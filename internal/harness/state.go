package harness

// State is a position in the profile flow.
type State int

const (
	StateIdle State = iota
	StateRegistering
	StateAwaitingOTP
	StateVerifying
	StateFetchingProfile
	StateUpdatingProfile
	StateDone
	StateAborted
)

var stateNames = map[State]string{
	StateIdle:            "idle",
	StateRegistering:     "registering",
	StateAwaitingOTP:     "awaiting_otp",
	StateVerifying:       "verifying",
	StateFetchingProfile: "fetching_profile",
	StateUpdatingProfile: "updating_profile",
	StateDone:            "done",
	StateAborted:         "aborted",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

// Terminal reports whether no transition leaves s.
func (s State) Terminal() bool {
	return s == StateDone || s == StateAborted
}

// next is the only forward edge out of each non-terminal state.
var next = map[State]State{
	StateIdle:            StateRegistering,
	StateRegistering:     StateAwaitingOTP,
	StateAwaitingOTP:     StateVerifying,
	StateVerifying:       StateFetchingProfile,
	StateFetchingProfile: StateUpdatingProfile,
	StateUpdatingProfile: StateDone,
}

// canTransition allows the single forward edge, or abort from any non-terminal state.
func canTransition(from, to State) bool {
	if from.Terminal() {
		return false
	}
	if to == StateAborted {
		return true
	}
	return next[from] == to
}
