package chatreply

import "strings"

// PictureTokens is the flat token cost charged for each attached picture
const PictureTokens = 85

// EstimateTokens is a best-effort, provider-neutral token estimate.
// tokens ≈ len(text)/4, at least 1 for non-blank text.
func EstimateTokens(text string) int {
	text = strings.TrimSpace(text)
	if text == "" {
		return 0
	}
	n := len(text) / 4
	if n < 1 {
		n = 1
	}
	return n
}

// EstimateMessageTokens estimates the tokens of a single message including its pictures
func EstimateMessageTokens(msg Message) int {
	return EstimateTokens(msg.Content) + len(msg.Pictures)*PictureTokens
}

// EstimateMessagesTokens sums EstimateMessageTokens over msgs
func EstimateMessagesTokens(msgs []Message) int {
	total := 0
	for _, msg := range msgs {
		total += EstimateMessageTokens(msg)
	}
	return total
}
