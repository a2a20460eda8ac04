package respond

// State tracks how far a response has progressed. Transitions only move
// forward: Initial -> HeadersCommitted -> Completed.
type State uint8

const (
	// StateInitial means no status or headers have been finalized and no
	// bytes have been handed to the transport. All mutations are legal.
	StateInitial State = iota

	// StateHeadersCommitted means the status line and headers are frozen
	// and transmitted (or queued for transmission). Only body writes are
	// legal from here.
	StateHeadersCommitted

	// StateCompleted means the body is finished and the on-completed chain
	// has run. The response is read-only.
	StateCompleted
)

func (s State) String() string {
	switch s {
	case StateInitial:
		return "initial"
	case StateHeadersCommitted:
		return "headers-committed"
	case StateCompleted:
		return "completed"
	default:
		return "unknown"
	}
}
