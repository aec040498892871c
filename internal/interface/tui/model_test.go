package tui

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/minjae-ko/docchat/internal/core/api"
	"github.com/minjae-ko/docchat/internal/core/config"
	"github.com/minjae-ko/docchat/internal/core/models"
	"github.com/minjae-ko/docchat/internal/core/status"
	"github.com/minjae-ko/docchat/internal/core/store"
)

func newTestModel(t *testing.T) Model {
	t.Helper()

	st, err := store.Open(filepath.Join(t.TempDir(), "sessions.db"))
	if err != nil {
		t.Fatalf("store.Open() error = %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })

	cfg := &config.Config{
		ServerURL:      "http://127.0.0.1:1", // never reached in these tests
		RequestTimeout: time.Second,
		PollInterval:   config.DefaultPollInterval,
		ExportTemplate: config.DefaultExportTemplate,
	}
	return New(cfg, api.New(cfg.ServerURL, cfg.RequestTimeout), st)
}

func pressEnter(t *testing.T, m Model) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return next.(Model), cmd
}

func TestOfflineSubmitAppendsLocalNotice(t *testing.T) {
	m := newTestModel(t)
	m.health = status.Offline

	sess, err := m.store.CreateSession()
	if err != nil {
		t.Fatal(err)
	}
	m.input.SetValue("What is the refund policy?")

	m, cmd := pressEnter(t, m)
	if cmd != nil {
		t.Error("offline submit issued a command; no network call may occur")
	}

	msgs := m.store.Active().Messages
	if len(msgs) != 1 {
		t.Fatalf("len(messages) = %d, want exactly one assistant entry", len(msgs))
	}
	if msgs[0].Role != models.RoleAssistant || !msgs[0].Error {
		t.Errorf("message = %+v, want assistant error", msgs[0])
	}
	if len(msgs[0].Sources) != 0 {
		t.Errorf("offline notice carries sources: %v", msgs[0].Sources)
	}
	if m.store.Active().ID != sess.ID {
		t.Errorf("active session changed to %q", m.store.Active().ID)
	}
}

func TestBlankSubmitIsRejectedLocally(t *testing.T) {
	m := newTestModel(t)
	m.health = status.Online

	if _, err := m.store.CreateSession(); err != nil {
		t.Fatal(err)
	}
	m.input.SetValue("   ")

	m, cmd := pressEnter(t, m)
	if cmd != nil {
		t.Error("blank submit issued a command")
	}
	if got := len(m.store.Active().Messages); got != 0 {
		t.Errorf("len(messages) = %d, want 0", got)
	}
}

func TestSubmitWhilePendingIsIgnored(t *testing.T) {
	m := newTestModel(t)
	m.health = status.Online

	if _, err := m.store.CreateSession(); err != nil {
		t.Fatal(err)
	}

	m.input.SetValue("first")
	m, cmd := pressEnter(t, m)
	if cmd == nil {
		t.Fatal("online submit issued no query command")
	}
	if got := len(m.store.Active().Messages); got != 1 {
		t.Fatalf("len(messages) = %d, want user message appended", got)
	}

	m.input.SetValue("second")
	m, cmd = pressEnter(t, m)
	if cmd != nil {
		t.Error("second submit issued a command while a query was pending")
	}
	if got := len(m.store.Active().Messages); got != 1 {
		t.Errorf("len(messages) = %d, want still 1", got)
	}
}

func TestQueryResultAppliedToOwningSession(t *testing.T) {
	m := newTestModel(t)
	m.health = status.Online

	owner, _ := m.store.CreateSession()
	m.input.SetValue("What is the refund policy?")
	m, _ = pressEnter(t, m)
	gen := m.queryGen[owner.ID]

	// The user switches to a different chat before the answer lands.
	other, _ := m.store.CreateSession()

	next, _ := m.Update(queryDoneMsg{
		sessionID: owner.ID,
		gen:       gen,
		result: &api.QueryResult{
			Answer:    "Refunds are issued within 14 days.",
			Sources:   []models.Source{{Filename: "policy.pdf", Page: 3}},
			HasAnswer: true,
		},
	})
	m = next.(Model)

	var ownerSess *models.Session
	for _, s := range m.store.Sessions() {
		if s.ID == owner.ID {
			ownerSess = s
		}
	}
	if ownerSess == nil {
		t.Fatal("owning session disappeared")
	}
	if got := len(ownerSess.Messages); got != 2 {
		t.Fatalf("owner len(messages) = %d, want user + assistant", got)
	}
	reply := ownerSess.Messages[1]
	if reply.Role != models.RoleAssistant || len(reply.Sources) != 1 {
		t.Errorf("reply = %+v", reply)
	}
	if title := ownerSess.Title; title != "What is the refund policy?" {
		t.Errorf("title = %q", title)
	}

	for _, s := range m.store.Sessions() {
		if s.ID == other.ID && len(s.Messages) != 0 {
			t.Errorf("result leaked into the session active at arrival time")
		}
	}
}

func TestQueryResultForDeletedSessionIsDiscarded(t *testing.T) {
	m := newTestModel(t)
	m.health = status.Online

	owner, _ := m.store.CreateSession()
	m.input.SetValue("doomed question")
	m, _ = pressEnter(t, m)
	gen := m.queryGen[owner.ID]

	survivor, _ := m.store.CreateSession()
	if err := m.store.DeleteSession(owner.ID); err != nil {
		t.Fatal(err)
	}

	next, _ := m.Update(queryDoneMsg{
		sessionID: owner.ID,
		gen:       gen,
		result:    &api.QueryResult{Answer: "too late"},
	})
	m = next.(Model)

	for _, s := range m.store.Sessions() {
		if len(s.Messages) != 0 {
			t.Errorf("stale result applied to session %q", s.ID)
		}
	}
	if m.store.ActiveID() != survivor.ID {
		t.Errorf("active = %q, want %q", m.store.ActiveID(), survivor.ID)
	}
}

func TestUploadFailureShowsBackendErrorWithoutRefetch(t *testing.T) {
	m := newTestModel(t)
	m.uploading = true

	next, cmd := m.Update(uploadErrMsg{
		err: &api.APIError{StatusCode: 400, Message: "unsupported format"},
	})
	m = next.(Model)

	if cmd != nil {
		t.Error("upload failure triggered a command; the listing must not be refetched")
	}
	if m.banner != "unsupported format" {
		t.Errorf("banner = %q, want the backend error verbatim", m.banner)
	}
	if !m.bannerErr {
		t.Error("banner not marked as an error")
	}
	if m.uploading {
		t.Error("still marked uploading after failure")
	}
}

func TestQueryFailureAppendsErrorBubble(t *testing.T) {
	m := newTestModel(t)
	m.health = status.Online

	owner, _ := m.store.CreateSession()
	m.input.SetValue("anything")
	m, _ = pressEnter(t, m)

	next, _ := m.Update(queryErrMsg{
		sessionID: owner.ID,
		gen:       m.queryGen[owner.ID],
		err:       &api.APIError{StatusCode: 500, Message: "vector store exploded"},
	})
	m = next.(Model)

	msgs := m.store.Active().Messages
	if got := len(msgs); got != 2 {
		t.Fatalf("len(messages) = %d, want user + error entry", got)
	}
	last := msgs[1]
	if !last.Error || last.Role != models.RoleAssistant {
		t.Errorf("last = %+v, want assistant error", last)
	}
	if want := "vector store exploded"; !strings.Contains(last.Content, want) {
		t.Errorf("error content %q does not carry backend message %q", last.Content, want)
	}
	if m.pending[owner.ID] {
		t.Error("query still marked pending after failure")
	}
}
