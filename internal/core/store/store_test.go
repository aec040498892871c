package store

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/minjae-ko/docchat/internal/core/models"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "sessions.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

// fixed clock that advances one second per call, so creation-time ids and
// updatedAt values are distinct and deterministic
func testClock(start time.Time) func() time.Time {
	now := start
	return func() time.Time {
		now = now.Add(time.Second)
		return now
	}
}

func TestActiveIDAlwaysInCollection(t *testing.T) {
	s := openTestStore(t)
	s.now = testClock(time.Date(2025, 8, 30, 10, 0, 0, 0, time.UTC))

	check := func(step string) {
		t.Helper()
		id := s.ActiveID()
		if id == "" {
			if len(s.Sessions()) != 0 {
				t.Errorf("%s: active id empty with %d sessions", step, len(s.Sessions()))
			}
			return
		}
		if s.find(id) == nil {
			t.Errorf("%s: active id %q not in collection", step, id)
		}
	}

	var ids []string
	for i := 0; i < 3; i++ {
		sess, err := s.CreateSession()
		if err != nil {
			t.Fatalf("CreateSession() error = %v", err)
		}
		ids = append(ids, sess.ID)
		check("create")
	}

	for _, id := range ids {
		if err := s.DeleteSession(id); err != nil {
			t.Fatalf("DeleteSession() error = %v", err)
		}
		check("delete")
	}

	if s.ActiveID() != "" {
		t.Errorf("active id = %q after deleting all sessions, want empty", s.ActiveID())
	}
}

func TestCreateSessionPrependsNewestFirst(t *testing.T) {
	s := openTestStore(t)
	s.now = testClock(time.Date(2025, 8, 30, 10, 0, 0, 0, time.UTC))

	first, _ := s.CreateSession()
	second, _ := s.CreateSession()

	sessions := s.Sessions()
	if len(sessions) != 2 {
		t.Fatalf("len(sessions) = %d, want 2", len(sessions))
	}
	if sessions[0].ID != second.ID || sessions[1].ID != first.ID {
		t.Errorf("order = [%s %s], want newest first", sessions[0].ID, sessions[1].ID)
	}
	if s.ActiveID() != second.ID {
		t.Errorf("active = %q, want newly created session", s.ActiveID())
	}
}

func TestAppendExchangeIdempotent(t *testing.T) {
	s := openTestStore(t)
	s.now = testClock(time.Date(2025, 8, 30, 10, 0, 0, 0, time.UTC))

	sess, _ := s.CreateSession()
	msgs := []models.Message{
		models.UserMessage("What is the refund policy?"),
		{Role: models.RoleAssistant, Content: "Refunds are issued within 14 days."},
	}

	if err := s.AppendExchange(sess.ID, msgs); err != nil {
		t.Fatalf("AppendExchange() error = %v", err)
	}
	firstUpdated := s.Active().UpdatedAt

	if err := s.AppendExchange(sess.ID, msgs); err != nil {
		t.Fatalf("AppendExchange() error = %v", err)
	}

	got := s.Active()
	if len(got.Messages) != 2 {
		t.Errorf("len(messages) = %d, want 2", len(got.Messages))
	}
	if got.Title != "What is the refund policy?" {
		t.Errorf("title = %q", got.Title)
	}
	if got.LastMessage == nil || *got.LastMessage != "Refunds are issued within 14 days." {
		t.Errorf("lastMessage = %v", got.LastMessage)
	}
	if !got.UpdatedAt.After(firstUpdated) {
		t.Errorf("updatedAt = %v, want newer than %v", got.UpdatedAt, firstUpdated)
	}
}

func TestTitleRewriteFiresExactlyOnce(t *testing.T) {
	s := openTestStore(t)
	s.now = testClock(time.Date(2025, 8, 30, 10, 0, 0, 0, time.UTC))

	sess, _ := s.CreateSession()

	// An assistant-only log (offline notice) keeps the placeholder.
	offline := []models.Message{models.ErrorMessage("backend unreachable")}
	if err := s.AppendExchange(sess.ID, offline); err != nil {
		t.Fatal(err)
	}
	if got := s.Active().Title; got != models.DefaultTitle {
		t.Errorf("title = %q, want placeholder until first user message", got)
	}

	log1 := append(offline, models.UserMessage("first question"))
	if err := s.AppendExchange(sess.ID, log1); err != nil {
		t.Fatal(err)
	}
	if got := s.Active().Title; got != "first question" {
		t.Errorf("title = %q, want %q", got, "first question")
	}

	log2 := append(log1, models.UserMessage("second question"))
	if err := s.AppendExchange(sess.ID, log2); err != nil {
		t.Fatal(err)
	}
	if got := s.Active().Title; got != "first question" {
		t.Errorf("title = %q, rewrite must fire exactly once", got)
	}
}

func TestLastMessageTruncatedTo50(t *testing.T) {
	s := openTestStore(t)
	s.now = testClock(time.Date(2025, 8, 30, 10, 0, 0, 0, time.UTC))

	sess, _ := s.CreateSession()
	long := strings.Repeat("z", 80)
	if err := s.AppendExchange(sess.ID, []models.Message{models.UserMessage(long)}); err != nil {
		t.Fatal(err)
	}

	got := s.Active().LastMessage
	if got == nil {
		t.Fatal("lastMessage = nil")
	}
	if want := strings.Repeat("z", 50) + "..."; *got != want {
		t.Errorf("lastMessage = %q, want %q", *got, want)
	}
}

func TestDeleteActiveReselectsFirstRemaining(t *testing.T) {
	s := openTestStore(t)
	s.now = testClock(time.Date(2025, 8, 30, 10, 0, 0, 0, time.UTC))

	older, _ := s.CreateSession()
	newer, _ := s.CreateSession() // active, first in stored order

	if err := s.DeleteSession(newer.ID); err != nil {
		t.Fatal(err)
	}
	if s.ActiveID() != older.ID {
		t.Errorf("active = %q, want first remaining session %q", s.ActiveID(), older.ID)
	}

	if err := s.DeleteSession(older.ID); err != nil {
		t.Fatal(err)
	}
	if s.ActiveID() != "" {
		t.Errorf("active = %q after last delete, want empty", s.ActiveID())
	}
}

func TestDeleteInactiveKeepsSelection(t *testing.T) {
	s := openTestStore(t)
	s.now = testClock(time.Date(2025, 8, 30, 10, 0, 0, 0, time.UTC))

	older, _ := s.CreateSession()
	newer, _ := s.CreateSession()

	if err := s.DeleteSession(older.ID); err != nil {
		t.Fatal(err)
	}
	if s.ActiveID() != newer.ID {
		t.Errorf("active = %q, want unchanged %q", s.ActiveID(), newer.ID)
	}
}

func TestAppendExchangeUnknownIDIsNoop(t *testing.T) {
	s := openTestStore(t)
	s.now = testClock(time.Date(2025, 8, 30, 10, 0, 0, 0, time.UTC))

	sess, _ := s.CreateSession()
	if err := s.AppendExchange("nope", []models.Message{models.UserMessage("hi")}); err != nil {
		t.Fatalf("AppendExchange(unknown) error = %v", err)
	}
	if got := len(s.find(sess.ID).Messages); got != 0 {
		t.Errorf("messages leaked into another session: %d", got)
	}
}

func TestReloadSelectsMostRecentlyUpdated(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.db")

	s, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	s.now = testClock(time.Date(2025, 8, 30, 10, 0, 0, 0, time.UTC))

	older, _ := s.CreateSession()
	_, _ = s.CreateSession()

	// Touch the older session last so it has the newest updatedAt while
	// sitting second in stored order.
	if err := s.AppendExchange(older.ID, []models.Message{models.UserMessage("touched")}); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()

	if reopened.LoadErr() != nil {
		t.Fatalf("LoadErr() = %v", reopened.LoadErr())
	}
	if got := reopened.ActiveID(); got != older.ID {
		t.Errorf("active after reload = %q, want most recently updated %q", got, older.ID)
	}
	// Stored order is insertion order, not updatedAt order.
	if reopened.Sessions()[1].ID != older.ID {
		t.Errorf("stored order was re-sorted: %v", []string{reopened.Sessions()[0].ID, reopened.Sessions()[1].ID})
	}
}

func TestCorruptBlobDegradesToEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.db")

	conn, err := openDB(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := writeBlob(conn, storageKey, "{not json"); err != nil {
		t.Fatal(err)
	}
	_ = conn.Close()

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() error = %v, corrupt blob must not be fatal", err)
	}
	defer s.Close()

	if s.LoadErr() == nil {
		t.Error("LoadErr() = nil, want parse error")
	}
	if len(s.Sessions()) != 0 {
		t.Errorf("sessions = %d, want empty collection", len(s.Sessions()))
	}
	if s.ActiveID() != "" {
		t.Errorf("active = %q, want empty", s.ActiveID())
	}
}

func TestWriteFailureLeavesMemoryUntouched(t *testing.T) {
	s := openTestStore(t)
	s.now = testClock(time.Date(2025, 8, 30, 10, 0, 0, 0, time.UTC))

	sess, _ := s.CreateSession()

	// Closing the connection makes the next durable write fail.
	_ = s.conn.Close()

	err := s.AppendExchange(sess.ID, []models.Message{models.UserMessage("lost")})
	if err == nil {
		t.Fatal("AppendExchange() error = nil, want write failure")
	}
	if got := len(s.find(sess.ID).Messages); got != 0 {
		t.Errorf("in-memory log advanced to %d messages despite failed write", got)
	}

	if _, err := s.CreateSession(); err == nil {
		t.Fatal("CreateSession() error = nil, want write failure")
	}
	if len(s.Sessions()) != 1 {
		t.Errorf("sessions = %d, want 1 (failed create must not mutate)", len(s.Sessions()))
	}
	if s.ActiveID() != sess.ID {
		t.Errorf("active = %q, want unchanged %q", s.ActiveID(), sess.ID)
	}
}
