package tui

import (
	"context"
	"net/http"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tasksdk "tasktracker/sdk/go"
)

type fakeClient struct {
	tasks []tasksdk.Task
}

func (f *fakeClient) ListTasks(context.Context) ([]tasksdk.Task, error) {
	out := make([]tasksdk.Task, len(f.tasks))
	copy(out, f.tasks)
	return out, nil
}

func (f *fakeClient) CreateTask(_ context.Context, id int, title string, done bool) (tasksdk.TaskResult, error) {
	for _, t := range f.tasks {
		if t.ID == id {
			return tasksdk.TaskResult{}, &tasksdk.APIError{StatusCode: http.StatusBadRequest, Detail: "Task ID already exists"}
		}
	}
	t := tasksdk.Task{ID: id, Title: title, Done: done}
	f.tasks = append(f.tasks, t)
	return tasksdk.TaskResult{Message: "Task added", Task: t}, nil
}

func (f *fakeClient) SetDone(_ context.Context, id int, done bool) (tasksdk.TaskResult, error) {
	for i := range f.tasks {
		if f.tasks[i].ID == id {
			f.tasks[i].Done = done
			return tasksdk.TaskResult{Message: "Task updated", Task: f.tasks[i]}, nil
		}
	}
	return tasksdk.TaskResult{}, &tasksdk.APIError{StatusCode: http.StatusNotFound, Detail: "Task not found"}
}

func (f *fakeClient) DeleteTask(_ context.Context, id int) (string, error) {
	for i := range f.tasks {
		if f.tasks[i].ID == id {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			return "Task deleted", nil
		}
	}
	return "", &tasksdk.APIError{StatusCode: http.StatusNotFound, Detail: "Task not found"}
}

func keyRunes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

var (
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyEsc   = tea.KeyMsg{Type: tea.KeyEscape}
	keySpace = tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
)

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	nm, ok := next.(Model)
	require.True(t, ok)
	return nm, cmd
}

// settle runs an API command and feeds results back until the task list is
// reloaded.
func settle(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	for i := 0; cmd != nil && i < 4; i++ {
		msg := cmd()
		switch msg.(type) {
		case tasksLoadedMsg:
			m, _ = update(t, m, msg)
			return m
		case opDoneMsg:
			m, cmd = update(t, m, msg)
		default:
			t.Fatalf("unexpected message %T", msg)
		}
	}
	return m
}

func typeText(t *testing.T, m Model, s string) Model {
	t.Helper()
	for _, r := range s {
		m, _ = update(t, m, keyRunes(string(r)))
	}
	return m
}

func addTask(t *testing.T, m Model, id, title string) Model {
	t.Helper()
	m, _ = update(t, m, keyRunes("a"))
	require.Equal(t, modeAddID, m.mode)
	m = typeText(t, m, id)
	m, _ = update(t, m, keyEnter)
	require.Equal(t, modeAddTitle, m.mode, m.errMsg)
	m = typeText(t, m, title)
	m, cmd := update(t, m, keyEnter)
	require.Equal(t, modeBrowse, m.mode)
	return settle(t, m, cmd)
}

func TestInitLoadsTasks(t *testing.T) {
	c := &fakeClient{tasks: []tasksdk.Task{{ID: 1, Title: "Buy milk"}, {ID: 2, Title: "Walk", Done: true}}}
	m := New(c)
	m = settle(t, m, m.Init())
	require.Len(t, m.tasks, 2)
	done, pending := m.counts()
	assert.Equal(t, 1, done)
	assert.Equal(t, 1, pending)
	assert.Contains(t, m.View(), "Buy milk")
}

func TestEmptyState(t *testing.T) {
	m := New(&fakeClient{})
	m = settle(t, m, m.Init())
	assert.Contains(t, m.View(), "No tasks yet")
}

func TestAddToggleDelete(t *testing.T) {
	c := &fakeClient{}
	m := New(c)
	m = settle(t, m, m.Init())

	m = addTask(t, m, "7", "Write report")
	require.Equal(t, []tasksdk.Task{{ID: 7, Title: "Write report"}}, c.tasks)
	assert.Equal(t, "Task added", m.status)
	require.Len(t, m.tasks, 1)

	m, cmd := update(t, m, keySpace)
	m = settle(t, m, cmd)
	assert.True(t, c.tasks[0].Done)
	assert.Equal(t, "Task updated", m.status)

	m, cmd = update(t, m, keySpace)
	m = settle(t, m, cmd)
	assert.False(t, c.tasks[0].Done)

	m, cmd = update(t, m, keyRunes("d"))
	m = settle(t, m, cmd)
	assert.Empty(t, c.tasks)
	assert.Empty(t, m.tasks)
	assert.Equal(t, "Task deleted", m.status)
}

func TestDuplicateShowsServerDetail(t *testing.T) {
	c := &fakeClient{tasks: []tasksdk.Task{{ID: 1, Title: "Buy milk"}}}
	m := New(c)
	m = settle(t, m, m.Init())

	m = addTask(t, m, "1", "Dup")
	assert.Equal(t, "Task ID already exists", m.errMsg)
	assert.Len(t, c.tasks, 1)
	assert.Contains(t, m.View(), "Task ID already exists")
}

func TestInvalidIDStaysInInput(t *testing.T) {
	m := New(&fakeClient{})
	m, _ = update(t, m, keyRunes("a"))
	m = typeText(t, m, "abc")
	m, cmd := update(t, m, keyEnter)
	assert.Nil(t, cmd)
	assert.Equal(t, modeAddID, m.mode)
	assert.NotEmpty(t, m.errMsg)

	m, _ = update(t, m, keyEsc)
	assert.Equal(t, modeBrowse, m.mode)
}

func TestEmptyTitleIsRejected(t *testing.T) {
	c := &fakeClient{}
	m := New(c)
	m, _ = update(t, m, keyRunes("a"))
	m = typeText(t, m, "3")
	m, _ = update(t, m, keyEnter)
	m, cmd := update(t, m, keyEnter)
	assert.Nil(t, cmd)
	assert.Equal(t, modeAddTitle, m.mode)
	assert.Empty(t, c.tasks)
}

func TestQuit(t *testing.T) {
	m := New(&fakeClient{})
	_, cmd := update(t, m, keyRunes("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}
