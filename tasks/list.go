package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"task_api/store"
)

// ListHandler returns every stored task.
type ListHandler struct {
	repo store.Repository
}

// NewListHandler creates a new ListHandler.
func NewListHandler(repo store.Repository) *ListHandler {
	return &ListHandler{repo: repo}
}

// Handle selects the whole table. Order is whatever the store yields.
func (h *ListHandler) Handle(ctx context.Context, r *http.Request) ([]byte, int, error) {
	if r.Method != http.MethodGet {
		return methodNotAllowed(r.Method)
	}
	slog.Info("GetTasks triggered")

	tasks, err := h.repo.SelectAll(ctx)
	if err != nil {
		body, status := storeFailure(err, "Error fetching tasks from the database.")
		return body, status, fmt.Errorf("error fetching tasks: %w", err)
	}

	slog.Info("Fetched tasks from the database", "count", len(tasks))
	return encode(tasks, http.StatusOK)
}
