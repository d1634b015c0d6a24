package main

import (
	"context"
	"database/sql"
	"errors"
	"time"

	_ "github.com/lib/pq"
)

func openDB(cfg config) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.db.dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.db.maxOpenConnections)
	db.SetMaxIdleConns(cfg.db.maxIdleConnections)
	db.SetConnMaxIdleTime(cfg.db.maxIdleTime)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err = db.PingContext(ctx)
	if err != nil {
		return nil, err
	}

	return db, nil
}

type storage struct {
	db *sql.DB
}

func newStorage(db *sql.DB) *storage {
	return &storage{
		db: db,
	}
}

func (s *storage) getUserByUsername(username string) (*user, error) {
	query := `SELECT id, created_at, username, email, password_hash
			  FROM users
			  WHERE username = $1`
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	row := s.db.QueryRowContext(ctx, query, username)
	var u user
	err := row.Scan(&u.ID, &u.CreatedAt, &u.Username, &u.Email, &u.PasswordHash)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, nil
		default:
			return nil, err
		}
	}
	return &u, nil
}

func (s *storage) getUserByID(id int) (*user, error) {
	query := `SELECT id, created_at, username, email, password_hash
			  FROM users
			  WHERE id = $1`
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	row := s.db.QueryRowContext(ctx, query, id)
	var u user
	err := row.Scan(&u.ID, &u.CreatedAt, &u.Username, &u.Email, &u.PasswordHash)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, nil
		default:
			return nil, err
		}
	}
	return &u, nil
}

func (s *storage) insertUser(u *user) error {
	query := `INSERT INTO users (username, email, password_hash)
			  VALUES ($1, $2, $3)
			  RETURNING id, created_at`

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	row := s.db.QueryRowContext(ctx, query, u.Username, u.Email, u.PasswordHash)
	err := row.Scan(&u.ID, &u.CreatedAt)
	return err
}

func (s *storage) getHabits(userID int) ([]habit, error) {
	query := `SELECT id, user_id, name, completed
			  FROM habits
			  WHERE user_id = $1
			  ORDER BY id`
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	habits := []habit{}
	for rows.Next() {
		var h habit
		err := rows.Scan(&h.ID, &h.UserID, &h.Name, &h.Completed)
		if err != nil {
			return nil, err
		}
		habits = append(habits, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return habits, nil
}

func (s *storage) getHabit(id, userID int) (*habit, error) {
	query := `SELECT id, user_id, name, completed
			  FROM habits
			  WHERE id = $1 AND user_id = $2`
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	row := s.db.QueryRowContext(ctx, query, id, userID)
	var h habit
	err := row.Scan(&h.ID, &h.UserID, &h.Name, &h.Completed)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, nil
		default:
			return nil, err
		}
	}
	return &h, nil
}

func (s *storage) insertHabit(h *habit) error {
	query := `INSERT INTO habits (user_id, name)
			  VALUES ($1, $2)
			  RETURNING id, completed`

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	row := s.db.QueryRowContext(ctx, query, h.UserID, h.Name)
	err := row.Scan(&h.ID, &h.Completed)
	return err
}

// deleteHabit removes a habit scoped to its owner. Log rows go with it via
// the ON DELETE CASCADE on completion_logs. Reports whether a row matched.
func (s *storage) deleteHabit(id, userID int) (bool, error) {
	query := `DELETE FROM habits
			  WHERE id = $1 AND user_id = $2`
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	result, err := s.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// resetHabits clears the completed flag on every habit the user owns.
// Completion logs are left alone: history survives a reset.
func (s *storage) resetHabits(userID int) error {
	query := `UPDATE habits
			  SET completed = FALSE
			  WHERE user_id = $1`
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_, err := s.db.ExecContext(ctx, query, userID)
	return err
}

// toggleHabit flips the completed flag and keeps today's log row in step,
// both inside one transaction. Turning a habit on records a completion for
// today; turning it off removes today's record and no other date.
func (s *storage) toggleHabit(h *habit, today time.Time) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	completed := !h.Completed

	_, err = tx.ExecContext(ctx, `UPDATE habits SET completed = $1 WHERE id = $2`, completed, h.ID)
	if err != nil {
		return err
	}

	if completed {
		_, err = tx.ExecContext(ctx, `INSERT INTO completion_logs (habit_id, date)
									  VALUES ($1, $2)
									  ON CONFLICT (habit_id, date) DO NOTHING`, h.ID, today)
	} else {
		_, err = tx.ExecContext(ctx, `DELETE FROM completion_logs
									  WHERE habit_id = $1 AND date = $2`, h.ID, today)
	}
	if err != nil {
		return err
	}

	err = tx.Commit()
	if err != nil {
		return err
	}
	h.Completed = completed
	return nil
}

// getCompletionHistory counts log rows per date across all of the user's
// habits inside the inclusive [from, to] window. Dates with no completions
// are simply absent from the map.
func (s *storage) getCompletionHistory(userID int, from, to time.Time) (map[string]int, error) {
	query := `SELECT l.date, COUNT(l.id)
			  FROM completion_logs l
			  JOIN habits h ON h.id = l.habit_id
			  WHERE h.user_id = $1 AND l.date >= $2 AND l.date <= $3
			  GROUP BY l.date`
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	rows, err := s.db.QueryContext(ctx, query, userID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	history := map[string]int{}
	for rows.Next() {
		var date time.Time
		var count int
		err := rows.Scan(&date, &count)
		if err != nil {
			return nil, err
		}
		history[date.Format("2006-01-02")] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return history, nil
}
