package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"task_api/store"
)

// DeleteHandler removes a task by id.
type DeleteHandler struct {
	repo store.Repository
}

// NewDeleteHandler creates a new DeleteHandler.
func NewDeleteHandler(repo store.Repository) *DeleteHandler {
	return &DeleteHandler{repo: repo}
}

// Handle deletes the row keyed by the path id and answers 204 with no body.
func (h *DeleteHandler) Handle(ctx context.Context, r *http.Request) ([]byte, int, error) {
	if r.Method != http.MethodDelete {
		return methodNotAllowed(r.Method)
	}

	id, err := pathID(r)
	if err != nil {
		return []byte(msgNotFound), http.StatusNotFound, err
	}
	slog.Info("DeleteTask triggered", "id", id)

	if err := h.repo.Delete(ctx, id); err != nil {
		body, status := storeFailure(err, "Error deleting task.")
		return body, status, fmt.Errorf("error deleting task %s: %w", id, err)
	}

	slog.Info("Task deleted", "id", id)
	return nil, http.StatusNoContent, nil
}
