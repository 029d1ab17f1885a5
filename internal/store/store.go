package store

import (
	"context"
	"errors"
	"fmt"

	"tasktracker/internal/domain"
)

var (
	ErrNotFound    = errors.New("task not found")
	ErrDuplicateID = errors.New("task id already exists")
)

const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
)

// Store owns the task collection. Implementations serialize every call and
// hand out copies, never references into their internal state.
type Store interface {
	// Create appends t, or returns ErrDuplicateID leaving the collection unchanged.
	Create(ctx context.Context, t domain.Task) (domain.Task, error)
	// List returns every task in insertion order.
	List(ctx context.Context) ([]domain.Task, error)
	Get(ctx context.Context, id int) (domain.Task, error)
	// SetDone changes only the done flag of the task with the given id.
	SetDone(ctx context.Context, id int, done bool) (domain.Task, error)
	Delete(ctx context.Context, id int) error
	Len(ctx context.Context) (int, error)
	Close() error
}

// Open builds the store backend named by driver.
func Open(driver string) (Store, error) {
	switch driver {
	case "", DriverMemory:
		return NewMemory(), nil
	case DriverSQLite:
		return NewSQLite()
	default:
		return nil, fmt.Errorf("invalid store driver %q", driver)
	}
}
