package server

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	humachi "github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"tasktracker/internal/domain"
	"tasktracker/internal/engine"
	"tasktracker/internal/store"
)

const (
	DetailDuplicateID = "Task ID already exists"
	DetailNotFound    = "Task not found"
	DetailInternal    = "internal error"
)

// Config for the HTTP API handler.
type Config struct {
	Engine   engine.Engine
	BasePath string
	Logger   logrus.FieldLogger
}

// apiError is the error envelope: {"detail": "..."} plus per-field errors
// when request validation failed.
type apiError struct {
	status int
	Detail string              `json:"detail" example:"Task not found"`
	Errors []*huma.ErrorDetail `json:"errors,omitempty"`
}

func (e *apiError) GetStatus() int { return e.status }
func (e *apiError) Error() string  { return e.Detail }

func newAPIError(status int, detail string, errs ...error) huma.StatusError {
	out := &apiError{status: status, Detail: detail}
	for _, err := range errs {
		if err == nil {
			continue
		}
		var d huma.ErrorDetailer
		if errors.As(err, &d) {
			out.Errors = append(out.Errors, d.ErrorDetail())
			continue
		}
		out.Errors = append(out.Errors, &huma.ErrorDetail{Message: err.Error()})
	}
	return out
}

// requestErrorStatus reports unparsable request bodies as 422 like every
// other malformed input. The API's own 400 (duplicate id) is built directly
// with newAPIError and never passes through here.
func requestErrorStatus(status int) int {
	if status == http.StatusBadRequest {
		return http.StatusUnprocessableEntity
	}
	return status
}

// New returns an HTTP handler exposing the task API.
func New(cfg Config) (http.Handler, error) {
	basePath := strings.TrimSuffix(cfg.BasePath, "/")
	if basePath != "" && !strings.HasPrefix(basePath, "/") {
		basePath = "/" + basePath
	}
	log := cfg.Logger
	if log == nil {
		log = cfg.Engine.Log
	}
	if log == nil {
		log = logrus.StandardLogger()
	}

	huma.DefaultArrayNullable = false
	huma.NewError = func(status int, msg string, errs ...error) huma.StatusError {
		return newAPIError(requestErrorStatus(status), msg, errs...)
	}
	huma.NewErrorWithContext = func(_ huma.Context, status int, msg string, errs ...error) huma.StatusError {
		return newAPIError(requestErrorStatus(status), msg, errs...)
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(requestLogger(log))
	router.Use(middleware.Recoverer)
	router.Use(allowAllCORS())

	hcfg := huma.DefaultConfig("Task Tracker API", "1.0.0")
	hcfg.OpenAPIPath = "/openapi"
	hcfg.DocsPath = "/docs"
	// no $schema links in response bodies
	hcfg.CreateHooks = nil
	api := humachi.New(router, hcfg)

	var group huma.API = api
	if basePath != "" {
		group = huma.NewGroup(api, basePath)
	}
	registerHealth(group)
	registerTasks(group, cfg.Engine, log)
	return router, nil
}

func handleError(log logrus.FieldLogger, err error) huma.StatusError {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, store.ErrDuplicateID):
		return newAPIError(http.StatusBadRequest, DetailDuplicateID)
	case errors.Is(err, store.ErrNotFound):
		return newAPIError(http.StatusNotFound, DetailNotFound)
	default:
		log.WithError(err).Error("unhandled task error")
		return newAPIError(http.StatusInternalServerError, DetailInternal)
	}
}

func registerHealth(api huma.API) {
	huma.Register(api, huma.Operation{
		OperationID: "health",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body HealthResponse
	}, error) {
		return &struct {
			Body HealthResponse
		}{Body: HealthResponse{Status: "ok"}}, nil
	})
}

type taskIDPath struct {
	TaskID int `path:"task_id" doc:"Task identifier"`
}

type setDoneInput struct {
	TaskID int  `path:"task_id" doc:"Task identifier"`
	Done   bool `query:"done" required:"true" doc:"New done flag"`
}

func registerTasks(api huma.API, e engine.Engine, log logrus.FieldLogger) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-task",
		Method:        http.MethodPost,
		Path:          "/tasks",
		Summary:       "Create task",
		DefaultStatus: http.StatusOK,
		Errors:        []int{http.StatusBadRequest, http.StatusUnprocessableEntity},
	}, func(ctx context.Context, input *struct {
		Body CreateTaskRequest
	}) (*struct {
		Body TaskResultResponse
	}, error) {
		res, err := e.CreateTask(ctx, input.Body.task())
		if err != nil {
			return nil, handleError(log, err)
		}
		return &struct {
			Body TaskResultResponse
		}{Body: TaskResultResponse{Message: res.Message, Task: *res.Task}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "list-tasks",
		Method:        http.MethodGet,
		Path:          "/tasks",
		Summary:       "List tasks",
		DefaultStatus: http.StatusOK,
	}, func(ctx context.Context, _ *struct{}) (*struct {
		Body []domain.Task
	}, error) {
		tasks, err := e.ListTasks(ctx)
		if err != nil {
			return nil, handleError(log, err)
		}
		if tasks == nil {
			tasks = []domain.Task{}
		}
		return &struct {
			Body []domain.Task
		}{Body: tasks}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "update-task",
		Method:        http.MethodPut,
		Path:          "/tasks/{task_id}",
		Summary:       "Set task done flag",
		DefaultStatus: http.StatusOK,
		Errors:        []int{http.StatusNotFound, http.StatusUnprocessableEntity},
	}, func(ctx context.Context, input *setDoneInput) (*struct {
		Body TaskResultResponse
	}, error) {
		res, err := e.SetTaskDone(ctx, input.TaskID, input.Done)
		if err != nil {
			return nil, handleError(log, err)
		}
		return &struct {
			Body TaskResultResponse
		}{Body: TaskResultResponse{Message: res.Message, Task: *res.Task}}, nil
	})

	huma.Register(api, huma.Operation{
		OperationID:   "delete-task",
		Method:        http.MethodDelete,
		Path:          "/tasks/{task_id}",
		Summary:       "Delete task",
		DefaultStatus: http.StatusOK,
		Errors:        []int{http.StatusNotFound, http.StatusUnprocessableEntity},
	}, func(ctx context.Context, input *taskIDPath) (*struct {
		Body MessageResponse
	}, error) {
		res, err := e.DeleteTask(ctx, input.TaskID)
		if err != nil {
			return nil, handleError(log, err)
		}
		return &struct {
			Body MessageResponse
		}{Body: MessageResponse{Message: res.Message}}, nil
	})
}
