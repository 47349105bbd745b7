package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"task_api/store"
)

// UpdateHandler rewrites an existing task in place.
type UpdateHandler struct {
	repo store.Repository
}

// NewUpdateHandler creates a new UpdateHandler.
func NewUpdateHandler(repo store.Repository) *UpdateHandler {
	return &UpdateHandler{repo: repo}
}

// Handle decodes the payload, forces the path id onto it, and echoes the
// payload back on success without re-reading the row.
func (h *UpdateHandler) Handle(ctx context.Context, r *http.Request) ([]byte, int, error) {
	if r.Method != http.MethodPut {
		return methodNotAllowed(r.Method)
	}

	id, err := pathID(r)
	if err != nil {
		return []byte(msgNotFound), http.StatusNotFound, err
	}
	slog.Info("UpdateTask triggered", "id", id)

	task, body, status, err := decodeBody(r, msgInvalidJSON)
	if err != nil {
		return body, status, err
	}

	// The path id always wins over anything the body carried.
	task.ID = id

	if err := h.repo.Update(ctx, *task); err != nil {
		body, status := storeFailure(err, "Error updating task.")
		return body, status, fmt.Errorf("update failed for task %s: %w", id, err)
	}

	return encode(task, http.StatusOK)
}
