package models

import (
	"encoding/json"

	"github.com/google/uuid"
)

// Task is the single persisted entity.
type Task struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	IsCompleted bool      `json:"isCompleted"`
}

// taskPayload is the writable subset of Task accepted from clients. Any "id"
// in the body is dropped here; the caller assigns one.
type taskPayload struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	IsCompleted bool   `json:"isCompleted"`
}

// DecodeTask parses a request body into a Task with a zero ID. A body of
// JSON null yields (nil, nil) so callers can tell an absent object from a
// syntax error. Null or missing strings decode as "", a missing flag as false.
func DecodeTask(body []byte) (*Task, error) {
	var p *taskPayload
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, err
	}
	if p == nil {
		return nil, nil
	}
	return &Task{
		Title:       p.Title,
		Description: p.Description,
		IsCompleted: p.IsCompleted,
	}, nil
}
