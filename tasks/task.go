package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	dberrors "task_api/errors"
	"task_api/models"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// Handler defines the interface for one task operation initiated by an HTTP
// request. It returns the response body, the HTTP status code, and an error
// that is logged server-side only; the body never carries error detail.
type Handler interface {
	Handle(ctx context.Context, r *http.Request) (body []byte, httpStatusCode int, err error)
}

// MaxBodyBytes caps the size of a create or update payload.
const MaxBodyBytes = 1 << 20

const (
	msgMalformedJSON = "Malformed JSON."
	msgInvalidTask   = "Invalid task format in JSON."
	msgInvalidJSON   = "Invalid JSON."
	msgNotFound      = "Task not found."
	msgNoConnString  = "Database connection string is not set."
)

// decodeBody reads and decodes a task payload. On failure it returns the
// client-facing message and a 400 alongside an *errors.InputError. nullMsg is
// the body sent when the payload is absent or JSON null.
func decodeBody(r *http.Request, nullMsg string) (*models.Task, []byte, int, error) {
	if r.Body == nil {
		return nil, []byte(nullMsg), http.StatusBadRequest, dberrors.NewInputError("request body is empty")
	}
	raw, err := io.ReadAll(io.LimitReader(r.Body, MaxBodyBytes+1))
	if err != nil {
		return nil, []byte(msgMalformedJSON), http.StatusBadRequest, dberrors.NewInputError(fmt.Sprintf("failed to read body: %v", err))
	}
	if len(raw) > MaxBodyBytes {
		return nil, []byte(msgMalformedJSON), http.StatusBadRequest, dberrors.NewInputError("request body too large")
	}

	task, err := models.DecodeTask(raw)
	if err != nil {
		return nil, []byte(msgMalformedJSON), http.StatusBadRequest, dberrors.NewInputError(fmt.Sprintf("JSON deserialization failed: %v", err))
	}
	if task == nil {
		return nil, []byte(nullMsg), http.StatusBadRequest, dberrors.NewInputError("deserialized task is null")
	}
	return task, nil, 0, nil
}

// pathID reads the {id} route variable.
func pathID(r *http.Request) (uuid.UUID, error) {
	raw, ok := mux.Vars(r)["id"]
	if !ok || raw == "" {
		return uuid.Nil, errors.New("missing task id in path")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid task id %q: %w", raw, err)
	}
	return id, nil
}

// storeFailure picks the 404 or 500 response for a repository error.
func storeFailure(err error, internalMsg string) ([]byte, int) {
	var nf *dberrors.NotFoundError
	if errors.As(err, &nf) {
		return []byte(msgNotFound), http.StatusNotFound
	}
	var cfgErr *dberrors.ConfigError
	if errors.As(err, &cfgErr) {
		return []byte(msgNoConnString), http.StatusInternalServerError
	}
	return []byte(internalMsg), http.StatusInternalServerError
}

func encode(v any, status int) ([]byte, int, error) {
	out, err := json.Marshal(v)
	if err != nil {
		return []byte("Error encoding response."), http.StatusInternalServerError, fmt.Errorf("failed to encode response: %w", err)
	}
	return out, status, nil
}

func methodNotAllowed(method string) ([]byte, int, error) {
	return []byte("Method not allowed"), http.StatusMethodNotAllowed, fmt.Errorf("method %s not allowed", method)
}
