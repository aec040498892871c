package models

import (
	"strings"
	"testing"
	"time"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		limit int
		want  string
	}{
		{name: "under limit", in: "short", limit: 30, want: "short"},
		{name: "exactly at limit", in: strings.Repeat("a", 30), limit: 30, want: strings.Repeat("a", 30)},
		{name: "over limit", in: strings.Repeat("a", 31), limit: 30, want: strings.Repeat("a", 30) + "..."},
		{name: "multibyte runes counted as characters", in: strings.Repeat("한", 35), limit: 30, want: strings.Repeat("한", 30) + "..."},
		{name: "empty", in: "", limit: 50, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Truncate(tt.in, tt.limit); got != tt.want {
				t.Errorf("Truncate(%q, %d) = %q, want %q", tt.in, tt.limit, got, tt.want)
			}
		})
	}
}

func TestDeriveTitle(t *testing.T) {
	long := strings.Repeat("x", 40)

	tests := []struct {
		name     string
		current  string
		messages []Message
		want     string
	}{
		{
			name:     "placeholder with user message",
			current:  DefaultTitle,
			messages: []Message{UserMessage("What is the refund policy?")},
			want:     "What is the refund policy?",
		},
		{
			name:     "placeholder with long user message",
			current:  DefaultTitle,
			messages: []Message{UserMessage(long)},
			want:     long[:30] + "...",
		},
		{
			name:    "assistant-only log keeps placeholder",
			current: DefaultTitle,
			messages: []Message{
				ErrorMessage("backend unreachable"),
			},
			want: DefaultTitle,
		},
		{
			name:    "already rewritten title never changes",
			current: "earlier question",
			messages: []Message{
				UserMessage("a completely different question"),
			},
			want: "earlier question",
		},
		{
			name:     "empty log keeps placeholder",
			current:  DefaultTitle,
			messages: nil,
			want:     DefaultTitle,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DeriveTitle(tt.current, tt.messages); got != tt.want {
				t.Errorf("DeriveTitle() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPreview(t *testing.T) {
	if got := Preview(nil); got != nil {
		t.Errorf("Preview(nil) = %q, want nil", *got)
	}

	long := strings.Repeat("b", 60)
	msgs := []Message{
		UserMessage("first"),
		{Role: RoleAssistant, Content: long},
	}
	got := Preview(msgs)
	if got == nil {
		t.Fatal("Preview() = nil, want value")
	}
	if want := long[:50] + "..."; *got != want {
		t.Errorf("Preview() = %q, want %q", *got, want)
	}
}

func TestNewSession(t *testing.T) {
	now := time.Date(2025, 8, 30, 12, 0, 0, 0, time.UTC)
	s := NewSession(now)

	if s.ID != "1756555200000" {
		t.Errorf("ID = %q, want creation-time millis", s.ID)
	}
	if s.Title != DefaultTitle {
		t.Errorf("Title = %q, want %q", s.Title, DefaultTitle)
	}
	if len(s.Messages) != 0 {
		t.Errorf("Messages = %v, want empty", s.Messages)
	}
	if s.LastMessage != nil {
		t.Errorf("LastMessage = %q, want nil", *s.LastMessage)
	}
}
