package store

import (
	"context"
	"fmt"
	"sync"

	"tasktracker/internal/domain"
)

// Memory keeps tasks in an ordered slice with an id->position index.
type Memory struct {
	mu    sync.Mutex
	tasks []domain.Task
	index map[int]int
}

func NewMemory() *Memory {
	return &Memory{index: map[int]int{}}
}

func (m *Memory) Create(_ context.Context, t domain.Task) (domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.index[t.ID]; ok {
		return domain.Task{}, fmt.Errorf("create task %d: %w", t.ID, ErrDuplicateID)
	}
	m.index[t.ID] = len(m.tasks)
	m.tasks = append(m.tasks, t)
	return t, nil
}

func (m *Memory) List(_ context.Context) ([]domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	res := make([]domain.Task, len(m.tasks))
	copy(res, m.tasks)
	return res, nil
}

func (m *Memory) Get(_ context.Context, id int) (domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	pos, ok := m.index[id]
	if !ok {
		return domain.Task{}, fmt.Errorf("get task %d: %w", id, ErrNotFound)
	}
	return m.tasks[pos], nil
}

func (m *Memory) SetDone(_ context.Context, id int, done bool) (domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	pos, ok := m.index[id]
	if !ok {
		return domain.Task{}, fmt.Errorf("update task %d: %w", id, ErrNotFound)
	}
	m.tasks[pos].Done = done
	return m.tasks[pos], nil
}

func (m *Memory) Delete(_ context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	pos, ok := m.index[id]
	if !ok {
		return fmt.Errorf("delete task %d: %w", id, ErrNotFound)
	}
	m.tasks = append(m.tasks[:pos], m.tasks[pos+1:]...)
	delete(m.index, id)
	// positions after the removed slot shift down by one
	for i := pos; i < len(m.tasks); i++ {
		m.index[m.tasks[i].ID] = i
	}
	return nil
}

func (m *Memory) Len(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tasks), nil
}

func (m *Memory) Close() error { return nil }
