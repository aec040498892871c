package models

import (
	"strconv"
	"time"
)

// DefaultTitle is the placeholder title a session carries until it gains
// its first user message.
const DefaultTitle = "New chat"

const (
	// TitleLimit is the maximum title length in characters.
	TitleLimit = 30
	// PreviewLimit is the maximum lastMessage preview length in characters.
	PreviewLimit = 50
)

// Session is one persisted conversation thread. The message log is
// chronological and append-only from the UI's perspective.
type Session struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Messages    []Message `json:"messages"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	LastMessage *string   `json:"lastMessage"`
}

// NewSession creates an empty session with a creation-time id and the
// placeholder title.
func NewSession(now time.Time) *Session {
	return &Session{
		ID:        strconv.FormatInt(now.UnixMilli(), 10),
		Title:     DefaultTitle,
		Messages:  []Message{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// DeriveTitle returns the session title after the log gained messages.
// The title is rewritten exactly once: only while it still holds the
// placeholder, from the first user-authored message, truncated to
// TitleLimit characters with a trailing ellipsis marker.
func DeriveTitle(current string, messages []Message) string {
	if current != DefaultTitle {
		return current
	}
	for _, m := range messages {
		if m.Role == RoleUser {
			return Truncate(m.Content, TitleLimit)
		}
	}
	return current
}

// Preview returns the lastMessage preview for a log, or nil for an empty log.
func Preview(messages []Message) *string {
	if len(messages) == 0 {
		return nil
	}
	p := Truncate(messages[len(messages)-1].Content, PreviewLimit)
	return &p
}

// Truncate shortens s to limit characters, appending "..." only when the
// original exceeds the limit. Counting is rune-based, not byte-based.
func Truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit]) + "..."
}
