package chatreply

// Reply is the outcome of a finished call.
type Reply struct {
	// Text is the full reply, or the partial text when the call was cancelled
	Text string

	// Provider is the provider that produced the reply
	Provider ProviderID

	// Model is the model that was requested
	Model string

	// Cancelled is true if the call was cancelled before the provider finished
	Cancelled bool

	// State is the terminal state of the call
	State CallState
}
