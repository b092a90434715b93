package chatreply

// TextHandler receives the cumulative reply text each time a chunk is decoded.
// It is called from the call's goroutine; implementations must not block for long.
type TextHandler func(text string)

// CallState is the lifecycle state of a single reply call.
//
//	idle -> sending -> streaming -> {done | cancelled | failed}
//
// sending may move straight to a terminal state when no text ever arrives.
type CallState int

const (
	CallIdle CallState = iota
	CallSending
	CallStreaming
	CallDone
	CallCancelled
	CallFailed
)

// String returns the lowercase state name
func (s CallState) String() string {
	switch s {
	case CallIdle:
		return "idle"
	case CallSending:
		return "sending"
	case CallStreaming:
		return "streaming"
	case CallDone:
		return "done"
	case CallCancelled:
		return "cancelled"
	case CallFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// IsTerminal returns true for done, cancelled and failed
func (s CallState) IsTerminal() bool {
	return s == CallDone || s == CallCancelled || s == CallFailed
}
