package store

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
)

// newTestStore creates a Store backed by a temporary database file.
func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() {
		s.Close()
	})

	return s
}

func TestSessionRepository_Create(t *testing.T) {
	s := newTestStore(t)
	repo := s.Sessions()

	sess := &Session{}
	if err := repo.Create(sess); err != nil {
		t.Fatalf("failed to create session: %v", err)
	}

	if _, err := uuid.Parse(sess.ID); err != nil {
		t.Errorf("ID %q is not a UUID: %v", sess.ID, err)
	}
	if sess.StartedAt.IsZero() {
		t.Error("StartedAt should be set after create")
	}

	got, err := repo.GetByID(sess.ID)
	if err != nil {
		t.Fatalf("failed to get session: %v", err)
	}
	if got.TransitionStyle != "scripted" {
		t.Errorf("TransitionStyle = %q, want scripted", got.TransitionStyle)
	}
	if got.Completed || got.EndedAt != nil {
		t.Errorf("new session completed %v ended %v, want open", got.Completed, got.EndedAt)
	}
	if !got.StartedAt.Equal(sess.StartedAt) {
		t.Errorf("StartedAt = %v, want %v", got.StartedAt, sess.StartedAt)
	}
}

func TestSessionRepository_GetByID_NotFound(t *testing.T) {
	s := newTestStore(t)

	if _, err := s.Sessions().GetByID("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID() error = %v, want ErrNotFound", err)
	}
}

func TestSessionRepository_RecordEvent(t *testing.T) {
	s := newTestStore(t)
	repo := s.Sessions()

	sess := &Session{ID: "session-1", StartedAt: time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)}
	if err := repo.Create(sess); err != nil {
		t.Fatalf("failed to create session: %v", err)
	}

	events := []PhaseEvent{
		{Seq: 1, Phase: "title", Chapter: 0},
		{Seq: 160, Phase: "experience", Chapter: 0, Hand: true},
		{Seq: 520, Phase: "reflection", Chapter: 0, Hand: true},
		{Seq: 700, Phase: "transition", Chapter: 0, Hand: true},
		{Seq: 1610, Phase: "title", Chapter: 1},
	}
	for i := range events {
		events[i].SessionID = sess.ID
		events[i].EnteredAt = sess.StartedAt.Add(time.Duration(i) * time.Second)
		if err := repo.RecordEvent(&events[i]); err != nil {
			t.Fatalf("RecordEvent(%d) error = %v", i, err)
		}
		if events[i].ID == 0 {
			t.Errorf("event %d ID not set", i)
		}
	}

	got, err := repo.Events(sess.ID)
	if err != nil {
		t.Fatalf("Events() error = %v", err)
	}
	if len(got) != len(events) {
		t.Fatalf("Events() returned %d events, want %d", len(got), len(events))
	}
	for i := range got {
		if got[i].Phase != events[i].Phase || got[i].Seq != events[i].Seq || got[i].Hand != events[i].Hand {
			t.Errorf("event %d = %+v, want %+v", i, got[i], events[i])
		}
	}

	loaded, err := repo.GetByID(sess.ID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if loaded.ChapterReached != 1 {
		t.Errorf("ChapterReached = %d, want 1", loaded.ChapterReached)
	}
	if loaded.Events != len(events) {
		t.Errorf("Events = %d, want %d", loaded.Events, len(events))
	}
}

func TestSessionRepository_RecordEvent_Validation(t *testing.T) {
	s := newTestStore(t)
	repo := s.Sessions()

	t.Run("unknown session", func(t *testing.T) {
		err := repo.RecordEvent(&PhaseEvent{SessionID: "ghost", Phase: "title", EnteredAt: time.Now()})
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("RecordEvent() error = %v, want ErrNotFound", err)
		}
	})

	t.Run("unknown phase", func(t *testing.T) {
		sess := &Session{}
		repo.Create(sess)
		err := repo.RecordEvent(&PhaseEvent{SessionID: sess.ID, Phase: "intermission", EnteredAt: time.Now()})
		if err == nil {
			t.Error("RecordEvent() accepted an unknown phase")
		}
		loaded, _ := repo.GetByID(sess.ID)
		if loaded.Events != 0 {
			t.Errorf("Events = %d after a rejected event, want 0", loaded.Events)
		}
	})
}

func TestSessionRepository_CompleteAndEnd(t *testing.T) {
	s := newTestStore(t)
	repo := s.Sessions()

	done := &Session{}
	repo.Create(done)
	at := time.Date(2026, 3, 1, 18, 5, 0, 0, time.UTC)
	if err := repo.Complete(done.ID, at); err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	got, _ := repo.GetByID(done.ID)
	if !got.Completed || got.EndedAt == nil || !got.EndedAt.Equal(at) {
		t.Errorf("completed session = %+v, want completed at %v", got, at)
	}

	// End after completion keeps the completion time.
	if err := repo.End(done.ID, at.Add(time.Minute)); err != nil {
		t.Fatalf("End() error = %v", err)
	}
	got, _ = repo.GetByID(done.ID)
	if !got.EndedAt.Equal(at) {
		t.Errorf("EndedAt = %v after End, want %v", got.EndedAt, at)
	}

	abandoned := &Session{}
	repo.Create(abandoned)
	if err := repo.End(abandoned.ID, at); err != nil {
		t.Fatalf("End() error = %v", err)
	}
	got, _ = repo.GetByID(abandoned.ID)
	if got.Completed || got.EndedAt == nil {
		t.Errorf("abandoned session = %+v, want ended and not completed", got)
	}

	if err := repo.Complete("missing", at); !errors.Is(err, ErrNotFound) {
		t.Errorf("Complete(missing) error = %v, want ErrNotFound", err)
	}
}

func TestSessionRepository_List(t *testing.T) {
	s := newTestStore(t)
	repo := s.Sessions()

	base := time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)
	for i, id := range []string{"first", "second", "third"} {
		if err := repo.Create(&Session{ID: id, StartedAt: base.Add(time.Duration(i) * time.Hour)}); err != nil {
			t.Fatalf("Create(%s) error = %v", id, err)
		}
	}

	all, err := repo.List(0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(all) != 3 || all[0].ID != "third" || all[2].ID != "first" {
		t.Errorf("List(0) order = %v, want newest first", ids(all))
	}

	limited, err := repo.List(2)
	if err != nil {
		t.Fatalf("List(2) error = %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("List(2) returned %d sessions, want 2", len(limited))
	}
}

func TestSessionRepository_Delete(t *testing.T) {
	s := newTestStore(t)
	repo := s.Sessions()

	sess := &Session{}
	repo.Create(sess)
	repo.RecordEvent(&PhaseEvent{SessionID: sess.ID, Seq: 1, Phase: "title", EnteredAt: time.Now()})

	if err := repo.Delete(sess.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := repo.GetByID(sess.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetByID() after delete error = %v, want ErrNotFound", err)
	}

	// Events go with the session.
	var n int
	s.DB().QueryRow(`SELECT COUNT(*) FROM phase_events WHERE session_id = ?`, sess.ID).Scan(&n)
	if n != 0 {
		t.Errorf("%d events left after delete, want 0", n)
	}

	if err := repo.Delete(sess.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second Delete() error = %v, want ErrNotFound", err)
	}
}

func ids(sessions []*Session) []string {
	out := make([]string, len(sessions))
	for i, s := range sessions {
		out[i] = s.ID
	}
	return out
}
