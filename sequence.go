package chatreply

import "strings"

// messageSeparator joins the contents of merged messages
const messageSeparator = "\n\n"

// SequenceMessages canonicalizes an arbitrary message list into the shape every
// provider accepts: an optional leading system message followed by strictly
// alternating user and assistant messages.
//
// Rules, applied in order:
//  1. Empty messages (no content, no pictures) are dropped.
//  2. All system messages are concatenated into one leading system message.
//  3. Consecutive messages with the same role are concatenated.
//  4. A leading assistant message is block-quoted and merged into the first
//     user message (or becomes a user message when none follows).
//  5. A lone system message is downgraded to a user message.
//
// Unknown roles are treated as user. The input slice is never modified.
// The result is never nil.
func SequenceMessages(msgs []Message) []Message {
	var system *Message
	turns := make([]Message, 0, len(msgs))

	for _, msg := range msgs {
		if msg.IsEmpty() {
			continue
		}

		role := msg.Role
		if !role.IsValid() {
			role = RoleUser
		}

		if role == RoleSystem {
			if system == nil {
				merged := msg.clone()
				system = &merged
			} else {
				mergeInto(system, msg)
			}
			continue
		}

		if n := len(turns); n > 0 && turns[n-1].Role == role {
			mergeInto(&turns[n-1], msg)
			continue
		}

		next := msg.clone()
		next.Role = role
		turns = append(turns, next)
	}

	// Providers reject conversations that open with the assistant, so the
	// opening assistant text is carried as quoted context in the user turn.
	if len(turns) > 0 && turns[0].Role == RoleAssistant {
		lead := turns[0]
		quoted := QuoteBlock(lead.Content)

		if len(turns) > 1 {
			user := turns[1]
			user.Content = joinContent(quoted, user.Content)
			user.Pictures = appendPictures(lead.Pictures, user.Pictures)
			turns[1] = user
			turns = turns[1:]
		} else {
			lead.Role = RoleUser
			lead.Content = quoted
			turns[0] = lead
		}
	}

	result := make([]Message, 0, len(turns)+1)
	if system != nil {
		result = append(result, *system)
	}
	result = append(result, turns...)

	if len(result) == 1 && result[0].Role == RoleSystem {
		result[0].Role = RoleUser
	}

	return result
}

// QuoteBlock formats text as a markdown block quote by prefixing every line with "> ".
// Empty text stays empty.
func QuoteBlock(text string) string {
	if text == "" {
		return ""
	}
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = "> " + line
	}
	return strings.Join(lines, "\n")
}

// mergeInto appends src's content and pictures to dst
func mergeInto(dst *Message, src Message) {
	dst.Content = joinContent(dst.Content, src.Content)
	dst.Pictures = appendPictures(dst.Pictures, src.Pictures)
}

// joinContent joins two contents with the message separator, skipping empty sides
func joinContent(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	default:
		return a + messageSeparator + b
	}
}

// appendPictures returns a fresh slice holding a followed by b (nil when both are empty)
func appendPictures(a, b []Picture) []Picture {
	if len(a) == 0 && len(b) == 0 {
		return nil
	}
	out := make([]Picture, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}
