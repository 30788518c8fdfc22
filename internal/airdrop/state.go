package airdrop

// State is a step of one submission.
type State int

const (
	StateIdle State = iota
	StateValidating
	StateBlocked
	StateResolving
	StateReady
	StateSubmitting
	StateApproving
	StateAwaitingAirdrop
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateValidating:
		return "validating"
	case StateBlocked:
		return "blocked"
	case StateResolving:
		return "resolving"
	case StateReady:
		return "ready"
	case StateSubmitting:
		return "submitting"
	case StateApproving:
		return "approving"
	case StateAwaitingAirdrop:
		return "awaiting-airdrop"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Running reports whether a submission holds the form.
func (s State) Running() bool {
	switch s {
	case StateValidating, StateResolving, StateReady, StateSubmitting, StateApproving, StateAwaitingAirdrop:
		return true
	}
	return false
}

// Terminal reports whether the machine waits for an edit or retry.
func (s State) Terminal() bool {
	return s == StateBlocked || s == StateDone || s == StateFailed
}
