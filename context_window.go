package chatreply

// ContextLimit bounds how much history is submitted with a request.
// Zero values mean "no limit".
type ContextLimit struct {
	// MaxMessages caps the number of non-system messages kept
	MaxMessages int

	// MaxTokens caps the estimated tokens of everything kept (system included)
	MaxTokens int
}

// IsZero returns true if neither limit is set
func (l ContextLimit) IsZero() bool {
	return l.MaxMessages <= 0 && l.MaxTokens <= 0
}

// TrimContext drops the oldest history so that msgs fits within limit.
//
// System messages are always kept and charged first. Non-system messages are
// kept newest-first while both limits allow; the newest one is kept even if
// it alone exceeds the token budget. Empty non-system messages are dropped
// without counting against MaxMessages. Relative order is preserved.
func TrimContext(msgs []Message, limit ContextLimit) []Message {
	if limit.IsZero() {
		return append([]Message(nil), msgs...)
	}

	budget := limit.MaxTokens
	for _, msg := range msgs {
		if msg.Role == RoleSystem {
			budget -= EstimateMessageTokens(msg)
		}
	}

	keep := make([]bool, len(msgs))
	kept := 0
	for i := len(msgs) - 1; i >= 0; i-- {
		msg := msgs[i]
		if msg.Role == RoleSystem {
			keep[i] = true
			continue
		}
		if msg.IsEmpty() {
			continue
		}
		if limit.MaxMessages > 0 && kept >= limit.MaxMessages {
			continue
		}
		cost := EstimateMessageTokens(msg)
		if limit.MaxTokens > 0 && kept > 0 && cost > budget {
			// Older messages are only dropped, never re-admitted after a gap.
			limit.MaxMessages = kept
			continue
		}
		keep[i] = true
		kept++
		budget -= cost
	}

	out := make([]Message, 0, len(msgs))
	for i, msg := range msgs {
		if keep[i] {
			out = append(out, msg)
		}
	}
	return out
}
