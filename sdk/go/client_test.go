package tasksdk_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tasksdk "tasktracker/sdk/go"

	"tasktracker/internal/engine"
	"tasktracker/internal/logging"
	"tasktracker/internal/server"
	"tasktracker/internal/store"
)

func newClient(t *testing.T) *tasksdk.Client {
	t.Helper()
	handler, err := server.New(server.Config{Engine: engine.New(store.NewMemory(), logging.Discard())})
	require.NoError(t, err)
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	return tasksdk.New(ts.URL + "/")
}

func TestClientRoundTrip(t *testing.T) {
	c := newClient(t)
	ctx := context.Background()

	require.NoError(t, c.Health(ctx))

	tasks, err := c.ListTasks(ctx)
	require.NoError(t, err)
	assert.Empty(t, tasks)

	res, err := c.CreateTask(ctx, 1, "Buy milk", false)
	require.NoError(t, err)
	assert.Equal(t, "Task added", res.Message)
	assert.Equal(t, tasksdk.Task{ID: 1, Title: "Buy milk"}, res.Task)

	res, err = c.SetDone(ctx, 1, true)
	require.NoError(t, err)
	assert.Equal(t, "Task updated", res.Message)
	assert.True(t, res.Task.Done)

	tasks, err = c.ListTasks(ctx)
	require.NoError(t, err)
	assert.Equal(t, []tasksdk.Task{{ID: 1, Title: "Buy milk", Done: true}}, tasks)

	msg, err := c.DeleteTask(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Task deleted", msg)
}

func TestClientSurfacesDetail(t *testing.T) {
	c := newClient(t)
	ctx := context.Background()

	_, err := c.CreateTask(ctx, 1, "a", false)
	require.NoError(t, err)
	_, err = c.CreateTask(ctx, 1, "b", false)
	require.Error(t, err)
	var apiErr *tasksdk.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "Task ID already exists", tasksdk.Detail(err))
	assert.False(t, tasksdk.IsNotFound(err))

	_, err = c.DeleteTask(ctx, 42)
	require.Error(t, err)
	assert.True(t, tasksdk.IsNotFound(err))
	assert.Equal(t, "Task not found", tasksdk.Detail(err))
}
