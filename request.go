package chatreply

// ReplyRequest contains the parameters for one reply.
type ReplyRequest struct {
	// Settings selects and configures the provider
	Settings Settings

	// Messages contains the conversation history.
	// The dispatcher trims and sequences it before handing it to the provider.
	Messages []Message
}

// SystemPrompt returns the content of the leading system message, if any
func (r *ReplyRequest) SystemPrompt() string {
	if len(r.Messages) > 0 && r.Messages[0].Role == RoleSystem {
		return r.Messages[0].Content
	}
	return ""
}

// Conversation returns the messages after the leading system message
func (r *ReplyRequest) Conversation() []Message {
	if len(r.Messages) > 0 && r.Messages[0].Role == RoleSystem {
		return r.Messages[1:]
	}
	return r.Messages
}
