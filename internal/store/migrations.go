package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Sessions table - one row per run of the journey
		`CREATE TABLE IF NOT EXISTS sessions (
			id TEXT PRIMARY KEY,
			transition_style TEXT NOT NULL DEFAULT 'scripted',
			chapter_reached INTEGER NOT NULL DEFAULT 0,
			completed INTEGER NOT NULL DEFAULT 0,
			started_at DATETIME NOT NULL,
			ended_at DATETIME
		)`,

		// Phase events table - every phase entered during a session
		`CREATE TABLE IF NOT EXISTS phase_events (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL REFERENCES sessions(id) ON DELETE CASCADE,
			seq INTEGER NOT NULL,
			phase TEXT NOT NULL CHECK(phase IN ('title', 'experience', 'reflection', 'transition', 'complete')),
			chapter INTEGER NOT NULL,
			hand INTEGER NOT NULL DEFAULT 0,
			entered_at DATETIME NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_phase_events_session_id ON phase_events(session_id)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_started_at ON sessions(started_at)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
