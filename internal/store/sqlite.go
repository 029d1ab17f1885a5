package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"tasktracker/internal/db"
	"tasktracker/internal/domain"
	"tasktracker/internal/events"
	"tasktracker/internal/migrate"
)

// SQLite keeps tasks in a private in-memory SQLite database. The pool holds a
// single connection, so calls are serialized by database/sql. Every mutation
// also appends a row to the events table in the same transaction.
type SQLite struct {
	DB     *sql.DB
	Events events.Writer
}

func NewSQLite() (*SQLite, error) {
	conn, err := db.Open(db.Config{})
	if err != nil {
		return nil, err
	}
	if _, err := migrate.Migrate(context.Background(), conn); err != nil {
		conn.Close()
		return nil, err
	}
	return &SQLite{DB: conn}, nil
}

func scanTask(row interface{ Scan(...any) error }) (domain.Task, error) {
	var t domain.Task
	err := row.Scan(&t.ID, &t.Title, &t.Done)
	return t, err
}

func (s *SQLite) Create(ctx context.Context, t domain.Task) (domain.Task, error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return domain.Task{}, err
	}
	defer tx.Rollback()
	var exists int
	err = tx.QueryRowContext(ctx, `SELECT 1 FROM tasks WHERE id=?`, t.ID).Scan(&exists)
	switch {
	case err == nil:
		return domain.Task{}, fmt.Errorf("create task %d: %w", t.ID, ErrDuplicateID)
	case !errors.Is(err, sql.ErrNoRows):
		return domain.Task{}, err
	}
	if _, err := tx.ExecContext(ctx, `INSERT INTO tasks(id,title,done) VALUES (?,?,?)`, t.ID, t.Title, t.Done); err != nil {
		return domain.Task{}, fmt.Errorf("insert task: %w", err)
	}
	if err := s.Events.Append(ctx, tx, events.TaskCreated, t.ID, events.Payload{"title": t.Title, "done": t.Done}); err != nil {
		return domain.Task{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.Task{}, err
	}
	return t, nil
}

func (s *SQLite) List(ctx context.Context) ([]domain.Task, error) {
	rows, err := s.DB.QueryContext(ctx, `SELECT id,title,done FROM tasks ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	res := []domain.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		res = append(res, t)
	}
	return res, rows.Err()
}

func (s *SQLite) Get(ctx context.Context, id int) (domain.Task, error) {
	t, err := scanTask(s.DB.QueryRowContext(ctx, `SELECT id,title,done FROM tasks WHERE id=?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Task{}, fmt.Errorf("get task %d: %w", id, ErrNotFound)
	}
	return t, err
}

func (s *SQLite) SetDone(ctx context.Context, id int, done bool) (domain.Task, error) {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return domain.Task{}, err
	}
	defer tx.Rollback()
	res, err := tx.ExecContext(ctx, `UPDATE tasks SET done=? WHERE id=?`, done, id)
	if err != nil {
		return domain.Task{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.Task{}, fmt.Errorf("update task %d: %w", id, ErrNotFound)
	}
	t, err := scanTask(tx.QueryRowContext(ctx, `SELECT id,title,done FROM tasks WHERE id=?`, id))
	if err != nil {
		return domain.Task{}, err
	}
	if err := s.Events.Append(ctx, tx, events.TaskUpdated, id, events.Payload{"done": done}); err != nil {
		return domain.Task{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.Task{}, err
	}
	return t, nil
}

func (s *SQLite) Delete(ctx context.Context, id int) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	res, err := tx.ExecContext(ctx, `DELETE FROM tasks WHERE id=?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("delete task %d: %w", id, ErrNotFound)
	}
	if err := s.Events.Append(ctx, tx, events.TaskDeleted, id, nil); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLite) Len(ctx context.Context) (int, error) {
	var n int
	err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM tasks`).Scan(&n)
	return n, err
}

// History returns the audit trail of mutations, oldest first.
func (s *SQLite) History(ctx context.Context) ([]events.Event, error) {
	return events.List(ctx, s.DB)
}

func (s *SQLite) Close() error { return s.DB.Close() }
