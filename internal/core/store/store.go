// Package store persists a user's chat sessions. The collection is kept
// newest-first in memory and written through to durable storage on every
// mutation; memory is only updated after the write succeeds, so the UI and
// the persisted state never diverge.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"strconv"
	"time"

	"github.com/minjae-ko/docchat/internal/core/models"
)

// Store holds the session collection and the active selection.
type Store struct {
	conn     *sql.DB
	sessions []*models.Session
	activeID string
	loadErr  error

	now func() time.Time
}

// Open opens (or creates) the store at path and loads the session
// collection. A corrupt blob degrades to an empty collection; the parse
// error is retained on the store and logged, never fatal.
func Open(path string) (*Store, error) {
	conn, err := openDB(path)
	if err != nil {
		return nil, err
	}

	s := &Store{conn: conn, now: time.Now}
	s.load()
	return s, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.conn.Close()
}

// LoadErr reports the error from the initial load, if any.
func (s *Store) LoadErr() error {
	return s.loadErr
}

// Sessions returns the collection in stored order (newest-first insertion
// order; never re-sorted on update).
func (s *Store) Sessions() []*models.Session {
	return s.sessions
}

// ActiveID returns the selected session id, or "" when nothing is selected.
func (s *Store) ActiveID() string {
	return s.activeID
}

// Active returns the selected session, or nil.
func (s *Store) Active() *models.Session {
	return s.find(s.activeID)
}

func (s *Store) load() {
	blob, ok, err := readBlob(s.conn, storageKey)
	if err != nil {
		s.loadErr = fmt.Errorf("read sessions: %w", err)
		log.Printf("store: %v", s.loadErr)
		return
	}
	if !ok {
		return
	}

	var sessions []*models.Session
	if err := json.Unmarshal([]byte(blob), &sessions); err != nil {
		s.loadErr = fmt.Errorf("parse sessions: %w", err)
		log.Printf("store: %v (starting with an empty session list)", s.loadErr)
		return
	}
	s.sessions = sessions

	// Initial selection: most recently updated session becomes active.
	if s.activeID == "" && len(sessions) > 0 {
		sorted := make([]*models.Session, len(sessions))
		copy(sorted, sessions)
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].UpdatedAt.After(sorted[j].UpdatedAt)
		})
		s.activeID = sorted[0].ID
	}
}

// persist writes the full collection in a single statement, then swaps the
// in-memory mirror. On failure the in-memory state is left untouched.
func (s *Store) persist(next []*models.Session) error {
	blob, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("serialize sessions: %w", err)
	}
	if err := writeBlob(s.conn, storageKey, string(blob)); err != nil {
		log.Printf("store: write sessions: %v", err)
		return fmt.Errorf("write sessions: %w", err)
	}
	s.sessions = next
	return nil
}

// CreateSession prepends a fresh empty session, persists, and selects it.
func (s *Store) CreateSession() (*models.Session, error) {
	now := s.now()
	sess := models.NewSession(now)

	// Creation-time ids collide when two sessions are created within the
	// same millisecond; bump until unique.
	for s.find(sess.ID) != nil {
		now = now.Add(time.Millisecond)
		sess.ID = strconv.FormatInt(now.UnixMilli(), 10)
	}

	next := make([]*models.Session, 0, len(s.sessions)+1)
	next = append(next, sess)
	next = append(next, s.sessions...)

	if err := s.persist(next); err != nil {
		return nil, err
	}
	s.activeID = sess.ID
	return sess, nil
}

// SelectSession sets the active session. Unknown ids are ignored.
func (s *Store) SelectSession(id string) {
	if s.find(id) == nil {
		return
	}
	s.activeID = id
}

// DeleteSession removes the session with the given id. If it was active,
// the first remaining session (in stored order) becomes active, or the
// selection is cleared when none remain.
func (s *Store) DeleteSession(id string) error {
	if s.find(id) == nil {
		return nil
	}

	next := make([]*models.Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		if sess.ID != id {
			next = append(next, sess)
		}
	}

	if err := s.persist(next); err != nil {
		return err
	}

	if s.activeID == id {
		if len(next) > 0 {
			s.activeID = next[0].ID
		} else {
			s.activeID = ""
		}
	}
	return nil
}

// AppendExchange replaces the full message log of the session with msgs
// (the caller supplies the complete updated log), recomputes the preview
// and the title, and refreshes updatedAt. Unknown ids are a no-op.
func (s *Store) AppendExchange(id string, msgs []models.Message) error {
	if s.find(id) == nil {
		return nil
	}

	next := make([]*models.Session, len(s.sessions))
	for i, sess := range s.sessions {
		if sess.ID != id {
			next[i] = sess
			continue
		}
		updated := *sess
		updated.Messages = msgs
		updated.LastMessage = models.Preview(msgs)
		updated.Title = models.DeriveTitle(sess.Title, msgs)
		updated.UpdatedAt = s.now()
		next[i] = &updated
	}

	return s.persist(next)
}

func (s *Store) find(id string) *models.Session {
	if id == "" {
		return nil
	}
	for _, sess := range s.sessions {
		if sess.ID == id {
			return sess
		}
	}
	return nil
}
