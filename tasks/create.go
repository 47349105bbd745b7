package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"task_api/store"

	"github.com/google/uuid"
)

// CreateHandler inserts a new task under a freshly minted id.
type CreateHandler struct {
	repo  store.Repository
	newID func() uuid.UUID
}

// NewCreateHandler creates a new CreateHandler.
func NewCreateHandler(repo store.Repository) *CreateHandler {
	return &CreateHandler{repo: repo, newID: uuid.New}
}

// Handle decodes the payload, assigns the id and persists the row.
func (h *CreateHandler) Handle(ctx context.Context, r *http.Request) ([]byte, int, error) {
	if r.Method != http.MethodPost {
		return methodNotAllowed(r.Method)
	}
	slog.Info("CreateTask triggered")

	task, body, status, err := decodeBody(r, msgInvalidTask)
	if err != nil {
		return body, status, err
	}

	task.ID = h.newID()

	if err := h.repo.Insert(ctx, *task); err != nil {
		body, status := storeFailure(err, "Error saving task to database.")
		return body, status, fmt.Errorf("database insert failed for task %s: %w", task.ID, err)
	}

	slog.Info("Task created", "id", task.ID)
	return encode(task, http.StatusCreated)
}
