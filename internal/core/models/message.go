package models

// Role identifies the author of a chat message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single entry in a session's message log.
type Message struct {
	Role      Role     `json:"role"`
	Content   string   `json:"content"`
	Sources   []Source `json:"sources,omitempty"`
	HasAnswer *bool    `json:"has_answer,omitempty"`
	Error     bool     `json:"error,omitempty"`
}

// Source is a backend-supplied citation attached to an assistant answer.
// It is opaque to the client beyond display.
type Source struct {
	Filename string `json:"filename"`
	Page     int    `json:"page"`
	Type     string `json:"type,omitempty"` // "table" for table extracts
}

// UserMessage builds a plain user message.
func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// ErrorMessage builds a synthetic assistant message describing a failure.
// It never carries sources.
func ErrorMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content, Error: true}
}
