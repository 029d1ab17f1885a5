package engine

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"tasktracker/internal/domain"
	"tasktracker/internal/store"
)

const (
	MsgTaskAdded   = "Task added"
	MsgTaskUpdated = "Task updated"
	MsgTaskDeleted = "Task deleted"
)

// Engine runs the task operations against a Store.
type Engine struct {
	Store store.Store
	Log   logrus.FieldLogger
}

func New(s store.Store, log logrus.FieldLogger) Engine {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return Engine{Store: s, Log: log}
}

// Result is what a mutating operation reports back. Task is nil for deletes.
type Result struct {
	Message string
	Task    *domain.Task
}

// CreateTask stores t unless its id is already taken.
func (e Engine) CreateTask(ctx context.Context, t domain.Task) (Result, error) {
	created, err := e.Store.Create(ctx, t)
	if err != nil {
		e.logRejected(err, "create", t.ID)
		return Result{}, err
	}
	e.Log.WithFields(logrus.Fields{"task_id": created.ID, "done": created.Done}).Debug("task added")
	return Result{Message: MsgTaskAdded, Task: &created}, nil
}

// ListTasks returns a snapshot of all tasks in insertion order.
func (e Engine) ListTasks(ctx context.Context) ([]domain.Task, error) {
	return e.Store.List(ctx)
}

// SetTaskDone updates the done flag of task id.
func (e Engine) SetTaskDone(ctx context.Context, id int, done bool) (Result, error) {
	updated, err := e.Store.SetDone(ctx, id, done)
	if err != nil {
		e.logRejected(err, "update", id)
		return Result{}, err
	}
	e.Log.WithFields(logrus.Fields{"task_id": id, "done": done}).Debug("task updated")
	return Result{Message: MsgTaskUpdated, Task: &updated}, nil
}

// DeleteTask removes task id.
func (e Engine) DeleteTask(ctx context.Context, id int) (Result, error) {
	if err := e.Store.Delete(ctx, id); err != nil {
		e.logRejected(err, "delete", id)
		return Result{}, err
	}
	e.Log.WithField("task_id", id).Debug("task deleted")
	return Result{Message: MsgTaskDeleted}, nil
}

func (e Engine) logRejected(err error, op string, id int) {
	entry := e.Log.WithFields(logrus.Fields{"op": op, "task_id": id})
	if errors.Is(err, store.ErrNotFound) || errors.Is(err, store.ErrDuplicateID) {
		entry.WithError(err).Info("task operation rejected")
		return
	}
	entry.WithError(err).Error("task operation failed")
}
