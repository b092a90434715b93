package chatreply

import "strings"

// Role identifies the author of a message.
type Role string

// Message roles
const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// String returns the wire representation of the role
func (r Role) String() string {
	return string(r)
}

// IsValid returns true for the three known roles
func (r Role) IsValid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant:
		return true
	default:
		return false
	}
}

// Picture is an image attached to a message.
//
// URL is either a remote address ("https://...") or an inline data URL
// ("data:image/png;base64,...").
type Picture struct {
	URL string `json:"url"`
}

// IsDataURL returns true if the picture is inlined as a base64 data URL
func (p Picture) IsDataURL() bool {
	return strings.HasPrefix(p.URL, "data:")
}

// DataURLParts splits a base64 data URL into its media type and payload.
// ok is false for remote URLs or malformed data URLs.
func (p Picture) DataURLParts() (mediaType, data string, ok bool) {
	if !p.IsDataURL() {
		return "", "", false
	}
	header, payload, found := strings.Cut(strings.TrimPrefix(p.URL, "data:"), ",")
	if !found {
		return "", "", false
	}
	mediaType, isBase64 := strings.CutSuffix(header, ";base64")
	if !isBase64 || mediaType == "" {
		return "", "", false
	}
	return mediaType, payload, true
}

// Message is a single role-tagged entry of a conversation.
//
// Messages handed to the library are treated as immutable; the sequencer and
// the context trimmer operate on copies.
type Message struct {
	// ID is the caller-assigned identifier (kept on the first message of a merged run)
	ID string `json:"id"`

	// Role is system, user or assistant
	Role Role `json:"role"`

	// Content is the plain text content
	Content string `json:"content"`

	// Pictures are optional images attached to the message
	Pictures []Picture `json:"pictures,omitempty"`
}

// IsEmpty returns true if the message carries neither text nor pictures
func (m Message) IsEmpty() bool {
	return m.Content == "" && len(m.Pictures) == 0
}

// HasPictures returns true if the message has at least one picture
func (m Message) HasPictures() bool {
	return len(m.Pictures) > 0
}

// clone returns a copy that does not share the Pictures backing array
func (m Message) clone() Message {
	if m.Pictures != nil {
		m.Pictures = append([]Picture(nil), m.Pictures...)
	}
	return m
}

// NewSystemMessage builds a system message
func NewSystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content}
}

// NewUserMessage builds a user message
func NewUserMessage(content string, pictures ...Picture) Message {
	return Message{Role: RoleUser, Content: content, Pictures: pictures}
}

// NewAssistantMessage builds an assistant message
func NewAssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}
