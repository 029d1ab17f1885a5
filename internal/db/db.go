package db

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

type Config struct {
	// Name identifies the in-memory database; empty picks a fresh random one.
	Name string
}

// DSN returns the sqlite URI for a private in-memory database.
func DSN(name string) string {
	return fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
}

// Open opens an in-memory SQLite database pinned to a single connection.
// The database lives as long as that connection and is gone after Close.
func Open(cfg Config) (*sql.DB, error) {
	name := cfg.Name
	if name == "" {
		name = "tasks-" + uuid.NewString()
	}
	conn, err := sql.Open("sqlite", DSN(name))
	if err != nil {
		return nil, err
	}
	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)
	conn.SetConnMaxLifetime(0)
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("open sqlite %s: %w", name, err)
	}
	return conn, nil
}
