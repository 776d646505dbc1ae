package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// Profiles table - named sets of pipeline tuning
		`CREATE TABLE IF NOT EXISTS profiles (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL UNIQUE,
			detection_threshold REAL NOT NULL DEFAULT 0,
			movement_scale REAL NOT NULL DEFAULT 2.0,
			smooth_factor REAL NOT NULL DEFAULT 0.5 CHECK(smooth_factor >= 0 AND smooth_factor < 1),
			value_change_threshold REAL NOT NULL DEFAULT 0.01,
			log_interval_ms INTEGER NOT NULL DEFAULT 500,
			channels TEXT NOT NULL DEFAULT '{}',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		// Settings table - stores application settings as key-value pairs
		`CREATE TABLE IF NOT EXISTS settings (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
