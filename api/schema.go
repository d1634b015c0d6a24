package main

import (
	"context"
	"time"
)

// ensureSchema creates the three tables on startup if they are missing.
// The unique (habit_id, date) pair backs the toggle's ON CONFLICT insert,
// and the cascades keep log rows from outliving their habit.
func (s *storage) ensureSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id BIGSERIAL PRIMARY KEY,
			created_at TIMESTAMP(0) WITH TIME ZONE NOT NULL DEFAULT NOW(),
			username TEXT UNIQUE NOT NULL,
			email TEXT NOT NULL DEFAULT '',
			password_hash BYTEA NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS habits (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			name TEXT NOT NULL,
			completed BOOLEAN NOT NULL DEFAULT FALSE
		)`,
		`CREATE TABLE IF NOT EXISTS completion_logs (
			id BIGSERIAL PRIMARY KEY,
			habit_id BIGINT NOT NULL REFERENCES habits(id) ON DELETE CASCADE,
			date DATE NOT NULL,
			UNIQUE (habit_id, date)
		)`,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	for _, stmt := range statements {
		_, err := s.db.ExecContext(ctx, stmt)
		if err != nil {
			return err
		}
	}
	return nil
}
