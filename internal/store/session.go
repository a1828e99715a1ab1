package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a requested resource does not exist.
var ErrNotFound = errors.New("not found")

// Session is one run of the journey, from the first title to completion or
// restart.
type Session struct {
	ID              string     `json:"id"`
	TransitionStyle string     `json:"transition_style"`
	ChapterReached  int        `json:"chapter_reached"`
	Completed       bool       `json:"completed"`
	StartedAt       time.Time  `json:"started_at"`
	EndedAt         *time.Time `json:"ended_at,omitempty"`
	Events          int        `json:"events"`
}

// PhaseEvent records a phase being entered.
type PhaseEvent struct {
	ID        int64     `json:"id"`
	SessionID string    `json:"session_id"`
	Seq       uint64    `json:"seq"`
	Phase     string    `json:"phase"`
	Chapter   int       `json:"chapter"`
	Hand      bool      `json:"hand"`
	EnteredAt time.Time `json:"entered_at"`
}

// SessionRepository provides access to sessions and their phase events.
type SessionRepository struct {
	db *sql.DB
}

// Sessions returns the session repository for this store.
func (s *Store) Sessions() *SessionRepository {
	return &SessionRepository{db: s.db}
}

// Create inserts a new session. An empty ID is filled with a fresh UUID and
// a zero StartedAt with the current time.
func (r *SessionRepository) Create(sess *Session) error {
	if sess.ID == "" {
		sess.ID = uuid.NewString()
	}
	if sess.StartedAt.IsZero() {
		sess.StartedAt = time.Now()
	}
	if sess.TransitionStyle == "" {
		sess.TransitionStyle = "scripted"
	}

	_, err := r.db.Exec(
		`INSERT INTO sessions (id, transition_style, chapter_reached, completed, started_at)
		 VALUES (?, ?, ?, ?, ?)`,
		sess.ID, sess.TransitionStyle, sess.ChapterReached, sess.Completed, sess.StartedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

const sessionColumns = `s.id, s.transition_style, s.chapter_reached, s.completed, s.started_at, s.ended_at,
	(SELECT COUNT(*) FROM phase_events e WHERE e.session_id = s.id)`

type scanner interface {
	Scan(dest ...any) error
}

func scanSession(row scanner) (*Session, error) {
	sess := &Session{}
	var completed int
	var ended sql.NullTime
	if err := row.Scan(&sess.ID, &sess.TransitionStyle, &sess.ChapterReached, &completed, &sess.StartedAt, &ended, &sess.Events); err != nil {
		return nil, err
	}
	sess.Completed = completed != 0
	if ended.Valid {
		t := ended.Time
		sess.EndedAt = &t
	}
	return sess, nil
}

// GetByID retrieves a session by its ID.
func (r *SessionRepository) GetByID(id string) (*Session, error) {
	sess, err := scanSession(r.db.QueryRow(`SELECT `+sessionColumns+` FROM sessions s WHERE s.id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return sess, nil
}

// List returns the most recent sessions first. limit <= 0 returns all.
func (r *SessionRepository) List(limit int) ([]*Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM sessions s ORDER BY s.started_at DESC, s.rowid DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*Session
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, sess)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return sessions, nil
}

// RecordEvent appends a phase event and raises the session's chapter
// reached if the event is further along.
func (r *SessionRepository) RecordEvent(e *PhaseEvent) error {
	tx, err := r.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.Exec(
		`UPDATE sessions SET chapter_reached = MAX(chapter_reached, ?) WHERE id = ?`,
		e.Chapter, e.SessionID,
	)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return ErrNotFound
	}

	res, err = tx.Exec(
		`INSERT INTO phase_events (session_id, seq, phase, chapter, hand, entered_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		e.SessionID, e.Seq, e.Phase, e.Chapter, e.Hand, e.EnteredAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert phase event: %w", err)
	}
	if e.ID, err = res.LastInsertId(); err != nil {
		return err
	}

	return tx.Commit()
}

// Events returns a session's phase events in the order they happened.
func (r *SessionRepository) Events(sessionID string) ([]PhaseEvent, error) {
	rows, err := r.db.Query(
		`SELECT id, session_id, seq, phase, chapter, hand, entered_at
		 FROM phase_events WHERE session_id = ? ORDER BY id`,
		sessionID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []PhaseEvent
	for rows.Next() {
		var e PhaseEvent
		var hand int
		if err := rows.Scan(&e.ID, &e.SessionID, &e.Seq, &e.Phase, &e.Chapter, &hand, &e.EnteredAt); err != nil {
			return nil, err
		}
		e.Hand = hand != 0
		events = append(events, e)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return events, nil
}

// Complete marks a session as having reached the end of the journey.
func (r *SessionRepository) Complete(id string, at time.Time) error {
	return r.exec(`UPDATE sessions SET completed = 1, ended_at = ? WHERE id = ?`, at.UTC(), id)
}

// End closes a session that was abandoned or restarted. Sessions that are
// already ended keep their first end time.
func (r *SessionRepository) End(id string, at time.Time) error {
	return r.exec(`UPDATE sessions SET ended_at = COALESCE(ended_at, ?) WHERE id = ?`, at.UTC(), id)
}

// Delete removes a session and its events.
func (r *SessionRepository) Delete(id string) error {
	return r.exec(`DELETE FROM sessions WHERE id = ?`, id)
}

func (r *SessionRepository) exec(query string, args ...any) error {
	result, err := r.db.Exec(query, args...)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrNotFound
	}

	return nil
}
