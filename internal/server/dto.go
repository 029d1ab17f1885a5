package server

import (
	"encoding/json"
	"fmt"

	"tasktracker/internal/domain"
)

// Request payloads

// CreateTaskRequest ignores unknown fields; only id, title and done are read.
type CreateTaskRequest struct {
	_     struct{} `json:"-" additionalProperties:"true"`
	ID    int      `json:"id" example:"1"`
	Title string   `json:"title" example:"Buy milk"`
	Done  bool     `json:"done,omitempty" default:"false"`
}

// UnmarshalJSON rejects explicit nulls, which would otherwise decode as zero values.
func (r *CreateTaskRequest) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	for _, name := range []string{"id", "title", "done"} {
		if v, ok := fields[name]; ok && string(v) == "null" {
			return fmt.Errorf("%s: must not be null", name)
		}
	}
	type plain CreateTaskRequest
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*r = CreateTaskRequest(p)
	return nil
}

func (r CreateTaskRequest) task() domain.Task {
	return domain.Task{ID: r.ID, Title: r.Title, Done: r.Done}
}

// Response payloads

type TaskResultResponse struct {
	Message string      `json:"message" example:"Task added"`
	Task    domain.Task `json:"task"`
}

type MessageResponse struct {
	Message string `json:"message" example:"Task deleted"`
}

type HealthResponse struct {
	Status string `json:"status" example:"ok"`
}
